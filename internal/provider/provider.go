package provider

import (
	"context"

	"github.com/shopspring/decimal"
)

// Quote is a single stock quote as returned by the quote service.
// Prices are decimals to avoid float rounding.
type Quote struct {
	Status           string          `json:"Status"`
	Name             string          `json:"Name"`
	Symbol           string          `json:"Symbol"`
	LastPrice        decimal.Decimal `json:"LastPrice"`
	Change           decimal.Decimal `json:"Change"`
	ChangePercent    decimal.Decimal `json:"ChangePercent"`
	Timestamp        string          `json:"Timestamp"`
	MSDate           float64         `json:"MSDate"`
	MarketCap        decimal.Decimal `json:"MarketCap"`
	Volume           int64           `json:"Volume"`
	ChangeYTD        decimal.Decimal `json:"ChangeYTD"`
	ChangePercentYTD decimal.Decimal `json:"ChangePercentYTD"`
	High             decimal.Decimal `json:"High"`
	Low              decimal.Decimal `json:"Low"`
	Open             decimal.Decimal `json:"Open"`
}

// Response wraps a successful HTTP exchange. Body is nil when the server
// answered 2xx without a quote.
type Response struct {
	StatusCode int
	Body       *Quote
}

// QuoteService fetches a quote for one symbol in the given wire format.
//
//go:generate mockgen -package=viewmodel_test -destination=../viewmodel/mock_quote_service_test.go -source=provider.go QuoteService
type QuoteService interface {
	Quote(ctx context.Context, format, symbol string) (*Response, error)
}
