package provider

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a provider failure. The orchestrator's retry decision
// is a property of the kind, never of which provider raised it.
type Kind uint8

const (
	// KindConfiguration: a required credential is absent or rejected.
	KindConfiguration Kind = iota + 1
	// KindUnavailable: the provider is recognized but not usable (no key).
	KindUnavailable
	// KindNetwork: transport-level failure (timeout, refused connection).
	KindNetwork
	// KindRateLimit: the provider signaled throttling.
	KindRateLimit
	// KindFormat: the provider responded but the payload could not be
	// normalized; indicates schema drift rather than a transient fault.
	KindFormat
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindUnavailable:
		return "unavailable"
	case KindNetwork:
		return "network"
	case KindRateLimit:
		return "rate_limit"
	case KindFormat:
		return "format"
	}
	return "unknown"
}

// Error is the typed failure every adapter error is normalized into
// before it crosses the orchestrator boundary.
type Error struct {
	Provider ID
	Kind     Kind
	Op       string
	Err      error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s: %s", e.Provider, e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %s: %v", e.Provider, e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError wraps err as a typed provider failure.
func NewError(id ID, kind Kind, op string, err error) *Error {
	return &Error{Provider: id, Kind: kind, Op: op, Err: err}
}

// Errorf builds a typed provider failure from a format string.
func Errorf(id ID, kind Kind, op, format string, args ...any) *Error {
	return &Error{Provider: id, Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf extracts the failure kind, or zero for foreign errors.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return 0
}

// Retryable reports whether another provider may still succeed after
// this failure. Configuration and availability problems are caller-side
// and abort the fallback chain.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindNetwork, KindRateLimit, KindFormat:
		return true
	}
	return false
}

// ClassifyHTTP maps a transport error or non-2xx status onto a failure
// kind. Cancellation propagates as Network so deadline overruns count as
// retryable for fallback purposes.
func ClassifyHTTP(id ID, op string, status int, err error) *Error {
	if err != nil {
		return NewError(id, KindNetwork, op, err)
	}
	switch {
	case status == http.StatusTooManyRequests:
		return Errorf(id, KindRateLimit, op, "status %d", status)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return Errorf(id, KindConfiguration, op, "credentials rejected with status %d", status)
	case status >= 500:
		return Errorf(id, KindNetwork, op, "upstream status %d", status)
	default:
		return Errorf(id, KindFormat, op, "unexpected status %d", status)
	}
}

// Attempt records one provider try inside a fallback chain.
type Attempt struct {
	Provider ID
	Err      error
}

// ExhaustedError aggregates every failed attempt of a fallback chain,
// in attempt order.
type ExhaustedError struct {
	Op       string
	Attempts []Attempt
}

func (e *ExhaustedError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %v", a.Provider, a.Err))
	}
	return fmt.Sprintf("%s: all providers exhausted [%s]", e.Op, strings.Join(parts, "; "))
}
