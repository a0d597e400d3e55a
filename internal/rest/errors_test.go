package rest_test

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"stockdetail/internal/provider/stocks"
	"stockdetail/internal/rest"
)

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"status", fmt.Errorf("quote: %w", &stocks.HTTPStatusError{StatusCode: http.StatusNotFound}), "Server error 404: Not Found"},
		{"unknown status", &stocks.HTTPStatusError{StatusCode: 599}, "Server error 599"},
		{"api", &stocks.APIError{Message: "No symbol matches found for XYZ"}, "No symbol matches found for XYZ"},
		{"cancelled", fmt.Errorf("performing request: %w", context.Canceled), "Request cancelled"},
		{"deadline", context.DeadlineExceeded, "Request timed out"},
		{"dns", &net.DNSError{Err: "no such host", Name: "example.invalid"}, "Unable to reach server"},
		{"op", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}, "Unable to reach server"},
		{"other", errors.New("boom"), "Unexpected error: boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, rest.ErrorMessage(tt.err))
		})
	}
}
