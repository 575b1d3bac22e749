package utils

import (
	"net"
	"net/http"
	"time"
)

const (
	defaultClientTimeout   = 30 * time.Second
	defaultIdleConnTimeout = 90 * time.Second
	defaultMaxIdleConns    = 2 // one prediction and one insights fetch at most

	dialTimeout   = 2 * time.Second
	dialKeepAlive = 30 * time.Second

	// deadlineSlack lets the caller's own deadline fire first so it is reported as a timeout, not a client abort.
	deadlineSlack = time.Second

	userAgent = "fraud-dashboard/1"
)

// ClientConfig captures the tunables for the scoring service HTTP client.
type ClientConfig struct {
	ClientTimeout         time.Duration
	ResponseHeaderTimeout time.Duration // zero leaves it to ClientTimeout
	MaxIdleConnsPerHost   int
}

type ClientOption func(*ClientConfig)

func WithClientTimeout(d time.Duration) ClientOption {
	return func(c *ClientConfig) { c.ClientTimeout = d }
}

// WithRequestDeadlines sizes the client around the longest per-request deadline the callers apply.
func WithRequestDeadlines(deadlines ...time.Duration) ClientOption {
	return func(c *ClientConfig) {
		var longest time.Duration
		for _, d := range deadlines {
			if d > longest {
				longest = d
			}
		}
		if longest <= 0 {
			return
		}
		c.ClientTimeout = longest + deadlineSlack
		c.ResponseHeaderTimeout = longest + deadlineSlack
	}
}

// NewHTTPClient builds the client used against the scoring service. Every request carries a User-Agent.
func NewHTTPClient(opts ...ClientOption) *http.Client {
	cfg := ClientConfig{ClientTimeout: defaultClientTimeout, MaxIdleConnsPerHost: defaultMaxIdleConns}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.ClientTimeout <= 0 {
		cfg.ClientTimeout = defaultClientTimeout
	}
	if cfg.MaxIdleConnsPerHost <= 0 {
		cfg.MaxIdleConnsPerHost = defaultMaxIdleConns
	}

	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   dialTimeout,
			KeepAlive: dialKeepAlive,
		}).DialContext,
		MaxIdleConnsPerHost:   cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:       defaultIdleConnTimeout,
		ResponseHeaderTimeout: cfg.ResponseHeaderTimeout,
	}
	return &http.Client{
		Transport: userAgentTransport{next: tr},
		Timeout:   cfg.ClientTimeout,
	}
}

type userAgentTransport struct {
	next http.RoundTripper
}

func (t userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return t.next.RoundTrip(req)
	}
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", userAgent)
	return t.next.RoundTrip(req)
}
