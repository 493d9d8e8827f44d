package httpx

import (
	"net"
	"net/http"
	"time"
)

// Doer is the transport surface adapters depend on. Each adapter test
// package generates its own mock of this interface.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a small wrapper around http.Client with sane defaults and an
// optional per-client token bucket so one chatty provider cannot burn
// through its upstream quota.
type Client struct {
	HTTP      *http.Client
	UserAgent string
	Headers   map[string]string
	Limiter   *TokenBucket
}

func New(timeout time.Duration) *Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 3 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          200,
		MaxIdleConnsPerHost:   100,
		MaxConnsPerHost:       100,
		ForceAttemptHTTP2:     true,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   3 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: 5 * time.Second,
	}
	return &Client{HTTP: &http.Client{Timeout: timeout, Transport: transport}, UserAgent: "marketdata/1.0"}
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(req.Context()); err != nil {
			return nil, err
		}
	}
	if c.UserAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	for k, v := range c.Headers {
		if req.Header.Get(k) == "" {
			req.Header.Set(k, v)
		}
	}
	return c.HTTP.Do(req)
}
