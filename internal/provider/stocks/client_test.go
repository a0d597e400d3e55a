package stocks_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	stocks "stockdetail/internal/provider/stocks"
)

func okResponse(t *testing.T, v any) *http.Response {
	t.Helper()
	buffer := &bytes.Buffer{}
	require.NoError(t, json.NewEncoder(buffer).Encode(v))
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(buffer),
	}
}

func TestNewStocksAPIClient(t *testing.T) {
	t.Parallel()

	// Assert: a client is always returned.
	client := stocks.NewStocksAPIClient()
	require.NotNilf(t, client, "unexpected nil client")
}

func TestWithBaseURL(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller
	ctrl := gomock.NewController(t)

	// Arrange: create a mock http client
	httpClient := NewMockHTTPClient(ctrl)

	// Arrange: define a base url
	baseURL := "http://localhost:8080"

	// Assert: stub the Do method
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Truef(t, strings.HasPrefix(req.URL.String(), baseURL), "expected url to start with base url, received: %s", req.URL.String())
			return okResponse(t, map[string]any{"Symbol": "AAPL"}), nil
		}).
		Times(1)

	// Arrange: create a new client.
	client := stocks.NewStocksAPIClient(stocks.WithHTTPClient(httpClient), stocks.WithBaseURL(baseURL))

	// Act: call Quote with the overridden base URL.
	_, err := client.Quote(t.Context(), stocks.FormatJSON, "AAPL")
	require.NoError(t, err)
}

func TestWithHeader(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller
	ctrl := gomock.NewController(t)

	// Arrange: create a mock http client
	httpClient := NewMockHTTPClient(ctrl)

	// Assert: stub the Do method to check the header
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, "bar", req.Header.Get("foo"))
			require.Equal(t, "application/json", req.Header.Get("Accept"))
			return okResponse(t, map[string]any{"Symbol": "AAPL"}), nil
		}).
		Times(1)

	// Arrange: create a new client with a custom header.
	client := stocks.NewStocksAPIClient(stocks.WithHTTPClient(httpClient), stocks.WithHeader(http.Header{
		"foo": []string{"bar"},
	}))

	// Act: call Quote with the custom header.
	_, err := client.Quote(t.Context(), stocks.FormatJSON, "AAPL")
	require.NoError(t, err)
}

func TestWithAPIKey(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)

	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, "secret", req.URL.Query().Get("api_key"))
			return okResponse(t, map[string]any{"Symbol": "AAPL"}), nil
		}).
		Times(2)

	client := stocks.NewStocksAPIClient(stocks.WithHTTPClient(httpClient), stocks.WithAPIKey("secret"))

	// Act: two calls must not leak the symbol of the first into the shared query.
	_, err := client.Quote(t.Context(), stocks.FormatJSON, "AAPL")
	require.NoError(t, err)
	_, err = client.Quote(t.Context(), stocks.FormatJSON, "MSFT")
	require.NoError(t, err)
}
