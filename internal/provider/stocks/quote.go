package stocks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"strings"

	"stockdetail/internal/provider"
)

// FormatJSON is the only response format the client can decode.
const FormatJSON = "json"

// maxQuoteBody caps how much of a quote response is read.
const maxQuoteBody = 1 << 20

// ErrUnsupportedFormat is returned before any I/O when the format is not FormatJSON.
var ErrUnsupportedFormat = errors.New("unsupported format")

// quoteBody is the union of a quote and the API's error document.
type quoteBody struct {
	provider.Quote
	Message string `json:"Message"`
}

// Quote retrieves the quote for symbol.
//
// A 2xx response with an empty or null body returns a Response with a nil Body.
func (c *StocksAPIClient) Quote(ctx context.Context, format, symbol string) (*provider.Response, error) {
	if !strings.EqualFold(format, FormatJSON) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	query := maps.Clone(c.query)
	query.Set("symbol", symbol)

	endpoint := fmt.Sprintf("%s/Quote/%s?%s", strings.TrimRight(c.baseURL, "/"), url.PathEscape(strings.ToLower(format)), query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header = c.header.Clone()
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("performing request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 2<<10))
		return nil, &HTTPStatusError{StatusCode: res.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	b, err := io.ReadAll(io.LimitReader(res.Body, maxQuoteBody))
	if err != nil {
		return nil, fmt.Errorf("reading quote response: %w", err)
	}

	out := &provider.Response{StatusCode: res.StatusCode}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return out, nil
	}

	var body quoteBody
	if err := json.Unmarshal(b, &body); err != nil {
		return nil, fmt.Errorf("decoding quote response: %w", err)
	}
	if body.Symbol == "" && body.Message != "" {
		return nil, &APIError{Message: body.Message}
	}
	q := body.Quote
	out.Body = &q
	return out, nil
}
