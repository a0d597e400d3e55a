package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"stockdetail/internal/config"
	"stockdetail/internal/connectivity"
	"stockdetail/internal/httpx"
	"stockdetail/internal/logger"
	"stockdetail/internal/metrics"
	"stockdetail/internal/provider"
	"stockdetail/internal/provider/ratelimit"
	"stockdetail/internal/provider/stocks"
	"stockdetail/internal/viewmodel"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		// logger level comes from config, so fall back to a default logger here
		zap.NewExample().Fatal("config", zap.Error(err))
	}
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	v := build(cfg, log, metrics.New(reg), nil)

	mux := v.routes()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           withJSONHeaders(withGzip(recoverPanic(log, mux))),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	v.vm.OnStart(ctx)

	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr), zap.String("symbol", v.vm.Symbol()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server", zap.Error(err))
		}
	}()

	// graceful shutdown
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	v.vm.OnCleared()
	v.vm.Wait()
}

// build wires the view-model from config. A non-nil service replaces the
// HTTP quote client.
func build(cfg config.Config, log *zap.Logger, m *metrics.Metrics, service provider.QuoteService) *view {
	if service == nil {
		hc := httpx.New(time.Duration(cfg.Server.RequestTimeoutSec)*time.Second, log)
		service = stocks.NewStocksAPIClient(
			stocks.WithBaseURL(cfg.Stocks.BaseURL),
			stocks.WithHTTPClient(hc),
			stocks.WithAPIKey(cfg.Stocks.APIKey),
		)
	}
	service = ratelimit.Wrap(service, cfg.Stocks.MaxRequestsPerMinute, cfg.Stocks.Burst,
		time.Duration(cfg.Stocks.MinRequestIntervalSec)*time.Second)

	var checker connectivity.Checker = connectivity.Static(true)
	if !cfg.Connectivity.AssumeOnline {
		checker = connectivity.NewDialer(cfg.Connectivity.CheckAddress,
			time.Duration(cfg.Connectivity.CheckTimeoutSec)*time.Second,
			time.Duration(cfg.Connectivity.CacheSec)*time.Second, log)
	}

	v := &view{logger: log}
	v.vm = viewmodel.New(viewmodel.Extras{viewmodel.ExtraSymbol: cfg.Symbol}, service,
		viewmodel.WithFormat(cfg.Stocks.Format),
		viewmodel.WithChartURLTemplate(cfg.Stocks.ChartURLTemplate),
		viewmodel.WithConnectivity(checker),
		viewmodel.WithErrorHandler(v.handleError),
		viewmodel.WithLogger(log),
		viewmodel.WithMetrics(m),
	)
	v.vm.State.Subscribe(func(s viewmodel.State) {
		log.Info("state changed", zap.String("symbol", v.vm.Symbol()), zap.Stringer("state", s))
	})
	return v
}
