package stocks

import (
	"net/http"
	"net/url"
)

// baseURL is the default Markit On Demand endpoint.
const baseURL = "https://dev.markitondemand.com/MODApis/Api/v2"

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=stocks_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// StocksAPIClient is a client for the stocks quote API.
type StocksAPIClient struct {
	// baseURL is the base URL for the API.
	baseURL string
	// httpClient is the HTTP client.
	httpClient HTTPClient
	// header contains additional headers to be sent with each request.
	header http.Header
	// query contains additional query parameters to be sent with each request.
	query url.Values
}

// StocksAPIClientOption is a configuration option for the stocks API client.
type StocksAPIClientOption func(*StocksAPIClient)

// WithBaseURL sets the base URL for the API.
func WithBaseURL(baseURL string) StocksAPIClientOption {
	return func(c *StocksAPIClient) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client for the API.
func WithHTTPClient(httpClient HTTPClient) StocksAPIClientOption {
	return func(c *StocksAPIClient) {
		c.httpClient = httpClient
	}
}

// WithHeader sets additional headers to be sent with each request.
func WithHeader(header http.Header) StocksAPIClientOption {
	return func(c *StocksAPIClient) {
		for key, values := range header {
			for _, value := range values {
				c.header.Add(key, value)
			}
		}
	}
}

// WithAPIKey adds an api_key query parameter to each request.
func WithAPIKey(key string) StocksAPIClientOption {
	return func(c *StocksAPIClient) {
		if key != "" {
			c.query.Set("api_key", key)
		}
	}
}

// NewStocksAPIClient creates a new stocks API client.
func NewStocksAPIClient(options ...StocksAPIClientOption) *StocksAPIClient {
	var client = &StocksAPIClient{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		header:     http.Header{},
		query:      url.Values{},
	}
	for _, option := range options {
		option(client)
	}
	return client
}
