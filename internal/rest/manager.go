package rest

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Manager tracks in-flight requests keyed by call type. At most one request
// per call type runs at a time, and completions are delivered one at a time.
type Manager struct {
	logger *zap.Logger

	mu      sync.Mutex
	running map[string]*call
	closed  bool

	// deliver serializes completion callbacks.
	deliver sync.Mutex
	wg      sync.WaitGroup
}

type call struct {
	cancel    context.CancelFunc
	cancelled bool
}

// NewManager returns an empty Manager. A nil logger disables logging.
func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{logger: logger, running: make(map[string]*call)}
}

// IsRunning reports whether a request of callType is in flight.
func (m *Manager) IsRunning(callType string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.running[callType]
	return ok
}

// Running returns the number of in-flight requests.
func (m *Manager) Running() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.running)
}

// Closed reports whether CancelAll has been called.
func (m *Manager) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Do runs fn while holding the delivery lock, so fn never interleaves with a
// completion callback. It must not be called from inside a callback.
func (m *Manager) Do(fn func()) {
	m.deliver.Lock()
	defer m.deliver.Unlock()
	fn()
}

// Run starts fn in its own goroutine under callType and reports whether it
// was started. It returns false without calling fn when a request of the same
// call type is already in flight, or once CancelAll has been called.
//
// fn gets a context that keeps ctx's values but is canceled only by
// CancelAll. Exactly one of onSuccess or onError is called once fn returns,
// unless the request was canceled, in which case neither is.
func Run[T any](m *Manager, ctx context.Context, callType string, fn func(context.Context) (T, error), onSuccess func(T), onError func(error)) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	if _, ok := m.running[callType]; ok {
		m.mu.Unlock()
		return false
	}
	cctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c := &call{cancel: cancel}
	m.running[callType] = c
	m.wg.Add(1)
	m.mu.Unlock()

	m.logger.Debug("request started", zap.String("call_type", callType))

	go func() {
		defer m.wg.Done()
		defer cancel()

		start := time.Now()
		v, err := fn(cctx)

		m.deliver.Lock()
		defer m.deliver.Unlock()

		m.mu.Lock()
		if m.running[callType] == c {
			delete(m.running, callType)
		}
		cancelled := c.cancelled
		m.mu.Unlock()

		if cancelled {
			m.logger.Debug("request cancelled", zap.String("call_type", callType), zap.Duration("elapsed", time.Since(start)))
			return
		}
		m.logger.Debug("request finished", zap.String("call_type", callType), zap.Duration("elapsed", time.Since(start)), zap.Error(err))

		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		if onSuccess != nil {
			onSuccess(v)
		}
	}()
	return true
}

// CancelAll cancels every in-flight request and closes the manager. Canceled
// requests deliver no callbacks, and Run refuses new requests afterwards.
func (m *Manager) CancelAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	for callType, c := range m.running {
		c.cancelled = true
		c.cancel()
		delete(m.running, callType)
	}
}

// Wait blocks until every started request has returned and its callbacks,
// if any, have run.
func (m *Manager) Wait() {
	m.wg.Wait()
}
