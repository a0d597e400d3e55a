package main

import (
	"compress/gzip"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"

	"go.uber.org/zap"

	"stockdetail/internal/provider"
	"stockdetail/internal/viewmodel"
)

// stateResponse is the JSON view of the view-model.
type stateResponse struct {
	Symbol    string          `json:"symbol"`
	State     string          `json:"state"`
	StateCode int             `json:"state_code"`
	Quote     *provider.Quote `json:"quote"`
	ChartURL  string          `json:"chart_url"`
	LastError string          `json:"last_error,omitempty"`
}

// view binds a StockDetail to HTTP and remembers the last reported error.
type view struct {
	vm     *viewmodel.StockDetail
	logger *zap.Logger

	mu        sync.Mutex
	lastError string
}

func (v *view) handleError(msg string) {
	v.mu.Lock()
	v.lastError = msg
	v.mu.Unlock()
	v.logger.Warn("quote request failed", zap.String("symbol", v.vm.Symbol()), zap.String("error", msg))
}

func (v *view) snapshot() stateResponse {
	v.mu.Lock()
	lastError := v.lastError
	v.mu.Unlock()
	state := v.vm.State.Get()
	return stateResponse{
		Symbol:    v.vm.Symbol(),
		State:     state.String(),
		StateCode: int(state),
		Quote:     v.vm.Quote.Get(),
		ChartURL:  v.vm.ChartURL(),
		LastError: lastError,
	}
}

func (v *view) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`"ok"`))
	})
	mux.HandleFunc("/api/state", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, v.snapshot())
	})
	mux.HandleFunc("/api/refresh", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		v.vm.RefreshData(r.Context())
		writeJSON(w, http.StatusAccepted, v.snapshot())
	})
	mux.HandleFunc("/api/chart", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"url": v.vm.ChartURL()})
	})
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func withJSONHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withGzip compresses the response when the client supports gzip.
func withGzip(next http.Handler) http.Handler {
	var gzPool = sync.Pool{New: func() any {
		w, _ := gzip.NewWriterLevel(io.Discard, gzip.BestSpeed)
		return w
	}}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}
		gz := gzPool.Get().(*gzip.Writer)
		gz.Reset(w)
		defer func() {
			_ = gz.Close()
			gz.Reset(io.Discard)
			gzPool.Put(gz)
		}()
		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Add("Vary", "Accept-Encoding")
		next.ServeHTTP(gzipResponseWriter{ResponseWriter: w, Writer: gz}, r)
	})
}

type gzipResponseWriter struct {
	http.ResponseWriter
	Writer io.Writer
}

func (g gzipResponseWriter) Write(b []byte) (int, error) {
	return g.Writer.Write(b)
}

// recoverPanic turns handler panics into 500s.
func recoverPanic(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("handler panic", zap.Any("panic", rec), zap.String("path", r.URL.Path))
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
