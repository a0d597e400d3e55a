package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"stockdetail/internal/config"
	"stockdetail/internal/connectivity"
	"stockdetail/internal/httpx"
	"stockdetail/internal/logger"
	"stockdetail/internal/provider"
	"stockdetail/internal/provider/ratelimit"
	"stockdetail/internal/provider/stocks"
	"stockdetail/internal/rest"
	"stockdetail/internal/viewmodel"
)

type result struct {
	Symbol   string          `json:"symbol"`
	State    string          `json:"state"`
	Quote    *provider.Quote `json:"quote,omitempty"`
	ChartURL string          `json:"chart_url"`
	Error    string          `json:"error,omitempty"`
}

func main() {
	var symbolsCSV string
	var configPath string
	var timeout int
	var parallel int

	flag.StringVar(&symbolsCSV, "symbols", os.Getenv("SYMBOLS"), "comma-separated symbols (default: config symbol)")
	flag.StringVar(&configPath, "config", os.Getenv("CONFIG_FILE"), "path to config.json (optional)")
	flag.IntVar(&timeout, "timeout", 0, "overall timeout seconds (0 = request timeout from config)")
	flag.IntVar(&parallel, "parallel", 4, "maximum symbols fetched at once")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	symbols := splitCSV(symbolsCSV)
	if len(symbols) == 0 {
		symbols = []string{cfg.Symbol}
	}
	if timeout <= 0 {
		timeout = cfg.Server.RequestTimeoutSec
	}

	hc := httpx.New(time.Duration(cfg.Server.RequestTimeoutSec)*time.Second, log)
	var service provider.QuoteService = stocks.NewStocksAPIClient(
		stocks.WithBaseURL(cfg.Stocks.BaseURL),
		stocks.WithHTTPClient(hc),
		stocks.WithAPIKey(cfg.Stocks.APIKey),
	)
	service = ratelimit.Wrap(service, cfg.Stocks.MaxRequestsPerMinute, cfg.Stocks.Burst,
		time.Duration(cfg.Stocks.MinRequestIntervalSec)*time.Second)

	var checker connectivity.Checker = connectivity.Static(true)
	if !cfg.Connectivity.AssumeOnline {
		checker = connectivity.NewDialer(cfg.Connectivity.CheckAddress,
			time.Duration(cfg.Connectivity.CheckTimeoutSec)*time.Second,
			time.Duration(cfg.Connectivity.CacheSec)*time.Second, log)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
	defer cancel()

	opts := []viewmodel.Option{
		viewmodel.WithFormat(cfg.Stocks.Format),
		viewmodel.WithChartURLTemplate(cfg.Stocks.ChartURLTemplate),
		viewmodel.WithConnectivity(checker),
		viewmodel.WithLogger(log),
	}
	results, err := fetchAll(ctx, symbols, parallel, service, log, opts...)
	if err != nil {
		log.Error("fetch", zap.Error(err))
	}
	if err := writeResults(os.Stdout, results); err != nil {
		log.Error("write results", zap.Error(err))
		os.Exit(1)
	}
	for _, r := range results {
		if r.State != viewmodel.StateContent.String() {
			os.Exit(2)
		}
	}
}

// fetchAll runs one view-model per symbol through OnStart and collects its
// final state. Results keep the order of symbols. A canceled ctx clears the
// outstanding view-models and is returned as the error.
func fetchAll(ctx context.Context, symbols []string, parallel int, service provider.QuoteService, log *zap.Logger, opts ...viewmodel.Option) ([]result, error) {
	if parallel <= 0 {
		parallel = 1
	}
	results := make([]result, len(symbols))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i, sym := range symbols {
		g.Go(func() error {
			var mu sync.Mutex
			var lastErr string
			vmOpts := append(append([]viewmodel.Option(nil), opts...),
				viewmodel.WithManager(rest.NewManager(log)),
				viewmodel.WithErrorHandler(func(msg string) {
					mu.Lock()
					lastErr = msg
					mu.Unlock()
				}),
			)
			vm := viewmodel.New(viewmodel.Extras{viewmodel.ExtraSymbol: sym}, service, vmOpts...)

			vm.OnStart(gctx)
			done := make(chan struct{})
			go func() {
				vm.Wait()
				close(done)
			}()
			select {
			case <-done:
			case <-gctx.Done():
				vm.OnCleared()
				<-done
				return gctx.Err()
			}

			mu.Lock()
			defer mu.Unlock()
			results[i] = result{
				Symbol:   sym,
				State:    vm.State.Get().String(),
				Quote:    vm.Quote.Get(),
				ChartURL: vm.ChartURL(),
				Error:    lastErr,
			}
			return nil
		})
	}
	err := g.Wait()
	for i := range results {
		if results[i].Symbol == "" {
			results[i] = result{Symbol: symbols[i], State: "cancelled"}
		}
	}
	return results, err
}

func writeResults(w io.Writer, results []result) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
