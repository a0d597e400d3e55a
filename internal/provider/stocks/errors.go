package stocks

import (
	"fmt"
	"net/http"
)

// HTTPStatusError is returned for any non-2xx response.
type HTTPStatusError struct {
	StatusCode int
	// Body holds at most the first 2KiB of the response body.
	Body string
}

func (e *HTTPStatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status code: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("unexpected status code: %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Body)
}

// APIError is returned when the API answers 200 with an error document,
// e.g. {"Message":"No symbol matches found for XYZ"}.
type APIError struct {
	Message string
}

func (e *APIError) Error() string { return "api error: " + e.Message }
