package viewmodel

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"stockdetail/internal/connectivity"
	"stockdetail/internal/metrics"
	"stockdetail/internal/observable"
	"stockdetail/internal/provider"
	"stockdetail/internal/rest"
)

const (
	// ExtraSymbol is the Extras key holding the instrument symbol.
	ExtraSymbol = "symbol"
	// QuoteCallType keys quote requests in the in-flight tracker.
	QuoteCallType = "quote"

	// DefaultChartURLTemplate is the chart image URL, with %s for the symbol.
	DefaultChartURLTemplate = "https://chart.finance.yahoo.com/z?s=%s&t=6m&q=l&l=on&z=l"
	// DefaultFormat is the wire format requested from the quote service.
	DefaultFormat = "json"
)

// Extras are the startup parameters the view-model is created with.
type Extras map[string]any

// ErrorHandler receives a human-readable message for a failed request.
type ErrorHandler func(message string)

// StockDetail loads the quote of a single symbol and exposes it, with a
// State flag, as observable fields for a bound view.
//
// State always follows the last transition: OFFLINE when a load found the
// network down, PROGRESS while a request is in flight, then CONTENT or EMPTY
// depending on whether a quote is held.
type StockDetail struct {
	State *observable.Field[State]
	Quote *observable.Field[*provider.Quote]

	symbol           string
	chartURLTemplate string
	format           string

	service provider.QuoteService
	checker connectivity.Checker
	manager *rest.Manager
	onError ErrorHandler
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// Option configures a StockDetail.
type Option func(*StockDetail)

// WithChartURLTemplate sets the fmt template ChartURL fills with the symbol.
func WithChartURLTemplate(tmpl string) Option {
	return func(vm *StockDetail) { vm.chartURLTemplate = tmpl }
}

// WithFormat sets the wire format passed to the quote service.
func WithFormat(format string) Option {
	return func(vm *StockDetail) { vm.format = format }
}

// WithConnectivity sets the online check. Defaults to always online.
func WithConnectivity(c connectivity.Checker) Option {
	return func(vm *StockDetail) { vm.checker = c }
}

// WithManager shares an in-flight tracker with other components.
func WithManager(m *rest.Manager) Option {
	return func(vm *StockDetail) { vm.manager = m }
}

// WithErrorHandler sets where request failures are reported. Defaults to a warning log.
func WithErrorHandler(h ErrorHandler) Option {
	return func(vm *StockDetail) { vm.onError = h }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(vm *StockDetail) { vm.logger = l }
}

// WithMetrics sets where request outcomes are counted. Nil disables metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(vm *StockDetail) { vm.metrics = m }
}

// New creates a view-model for the symbol found in extras. A nil bundle, or
// one without a string under ExtraSymbol, leaves the symbol empty.
func New(extras Extras, service provider.QuoteService, opts ...Option) *StockDetail {
	vm := &StockDetail{
		State:            observable.NewField(StateEmpty),
		Quote:            observable.NewField[*provider.Quote](nil),
		chartURLTemplate: DefaultChartURLTemplate,
		format:           DefaultFormat,
		service:          service,
	}
	for _, opt := range opts {
		opt(vm)
	}
	if vm.logger == nil {
		vm.logger = zap.NewNop()
	}
	if vm.checker == nil {
		vm.checker = connectivity.Static(true)
	}
	if vm.manager == nil {
		vm.manager = rest.NewManager(vm.logger)
	}
	if vm.onError == nil {
		logger := vm.logger
		vm.onError = func(msg string) { logger.Warn("quote request failed", zap.String("error", msg)) }
	}
	vm.handleExtras(extras)
	return vm
}

func (vm *StockDetail) handleExtras(extras Extras) {
	if extras == nil {
		return
	}
	if s, ok := extras[ExtraSymbol].(string); ok {
		vm.symbol = s
	}
}

// Symbol returns the symbol parsed at construction.
func (vm *StockDetail) Symbol() string { return vm.symbol }

// OnStart loads the quote unless one is already held.
func (vm *StockDetail) OnStart(ctx context.Context) {
	if vm.Quote.Get() == nil {
		vm.LoadData(ctx)
	}
}

// OnCleared cancels every outstanding request. Canceled requests change
// nothing, and later loads are ignored.
func (vm *StockDetail) OnCleared() {
	vm.manager.CancelAll()
}

// LoadData fetches the quote. It does nothing while a quote request is in
// flight. Field subscribers must not call it synchronously.
func (vm *StockDetail) LoadData(ctx context.Context) {
	vm.sendQuote(ctx, vm.symbol)
}

// RefreshData behaves exactly like LoadData, in-flight guard included.
func (vm *StockDetail) RefreshData(ctx context.Context) {
	vm.sendQuote(ctx, vm.symbol)
}

// ChartURL returns the chart image URL for the symbol.
func (vm *StockDetail) ChartURL() string {
	return fmt.Sprintf(vm.chartURLTemplate, vm.symbol)
}

// Wait blocks until every issued request has completed and been applied.
func (vm *StockDetail) Wait() {
	vm.manager.Wait()
}

func (vm *StockDetail) sendQuote(ctx context.Context, symbol string) {
	online := vm.checker.Online(ctx)

	// Holding the delivery lock keeps a completion from landing between the
	// in-flight check and the PROGRESS transition.
	vm.manager.Do(func() {
		if vm.manager.Closed() {
			return
		}
		if !online {
			vm.metrics.Offline()
			vm.State.Set(StateOffline)
			return
		}
		if vm.manager.IsRunning(QuoteCallType) {
			vm.metrics.Skipped()
			return
		}

		vm.State.Set(StateProgress)
		vm.logger.Debug("loading quote", zap.String("symbol", symbol))

		started := time.Now()
		rest.Run(vm.manager, ctx, QuoteCallType,
			func(ctx context.Context) (*provider.Response, error) {
				return vm.service.Quote(ctx, vm.format, symbol)
			},
			func(res *provider.Response) {
				var q *provider.Quote
				if res != nil {
					q = res.Body
				}
				if q == nil {
					vm.metrics.ObserveRequest(metrics.OutcomeEmpty, started)
				} else {
					vm.metrics.ObserveRequest(metrics.OutcomeSuccess, started)
				}
				vm.Quote.Set(q)
				vm.setState()
			},
			func(err error) {
				vm.metrics.ObserveRequest(metrics.OutcomeError, started)
				vm.onError(rest.ErrorMessage(err))
				vm.setState()
			},
		)
	})
}

func (vm *StockDetail) setState() {
	if vm.Quote.Get() != nil {
		vm.State.Set(StateContent)
	} else {
		vm.State.Set(StateEmpty)
	}
}
