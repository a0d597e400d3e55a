package rest

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"stockdetail/internal/provider/stocks"
)

// ErrorMessage converts a request error into a message fit for the UI.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var statusErr *stocks.HTTPStatusError
	if errors.As(err, &statusErr) {
		if text := http.StatusText(statusErr.StatusCode); text != "" {
			return fmt.Sprintf("Server error %d: %s", statusErr.StatusCode, text)
		}
		return fmt.Sprintf("Server error %d", statusErr.StatusCode)
	}

	var apiErr *stocks.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}

	if errors.Is(err, context.Canceled) {
		return "Request cancelled"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "Request timed out"
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "Request timed out"
	}

	var dnsErr *net.DNSError
	var opErr *net.OpError
	if errors.As(err, &dnsErr) || errors.As(err, &opErr) {
		return "Unable to reach server"
	}

	return "Unexpected error: " + err.Error()
}
