package httpx

import (
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Client is a small wrapper around http.Client with sane defaults.
// It sets User-Agent and default headers and logs every exchange.
type Client struct {
	HTTP      *http.Client
	UserAgent string
	Headers   map[string]string
	Logger    *zap.Logger
}

func New(timeout time.Duration, logger *zap.Logger) *Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 3 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   10,
		ForceAttemptHTTP2:     true,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   3 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: 5 * time.Second,
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		HTTP:      &http.Client{Timeout: timeout, Transport: transport},
		UserAgent: "stockdetail/1.0",
		Logger:    logger,
	}
}

// Do sends req. The request's context governs cancellation.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.UserAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	for k, v := range c.Headers {
		if req.Header.Get(k) == "" {
			req.Header.Set(k, v)
		}
	}

	start := time.Now()
	res, err := c.HTTP.Do(req)
	if c.Logger != nil {
		fields := []zap.Field{
			zap.String("method", req.Method),
			zap.String("url", redact(req)),
			zap.Duration("elapsed", time.Since(start)),
		}
		if err != nil {
			c.Logger.Debug("http request failed", append(fields, zap.Error(err))...)
		} else {
			c.Logger.Debug("http request", append(fields, zap.Int("status", res.StatusCode))...)
		}
	}
	return res, err
}

// redact drops the api_key query parameter from logged URLs.
func redact(req *http.Request) string {
	u := *req.URL
	q := u.Query()
	if q.Has("api_key") {
		q.Set("api_key", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}
