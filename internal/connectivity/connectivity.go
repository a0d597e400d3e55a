package connectivity

import (
	"context"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Checker answers whether the network is reachable.
type Checker interface {
	Online(ctx context.Context) bool
}

// Static is a Checker with a fixed answer.
type Static bool

func (s Static) Online(context.Context) bool { return bool(s) }

// Dialer reports online when a TCP connection to Address succeeds within
// Timeout. Results are reused for CacheFor.
type Dialer struct {
	Address  string
	Timeout  time.Duration
	CacheFor time.Duration
	Logger   *zap.Logger

	// dial is replaced in tests.
	dial func(ctx context.Context, network, address string) (net.Conn, error)

	mu      sync.Mutex
	checked time.Time
	online  bool
}

// NewDialer returns a Dialer probing address.
func NewDialer(address string, timeout, cacheFor time.Duration, logger *zap.Logger) *Dialer {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dialer{Address: address, Timeout: timeout, CacheFor: cacheFor, Logger: logger}
}

// Online dials Address unless a cached answer is still fresh. The lock is
// released while dialing, so concurrent callers dial independently.
func (d *Dialer) Online(ctx context.Context) bool {
	d.mu.Lock()
	if d.CacheFor > 0 && !d.checked.IsZero() && time.Since(d.checked) < d.CacheFor {
		online := d.online
		d.mu.Unlock()
		return online
	}
	d.mu.Unlock()

	dial := d.dial
	if dial == nil {
		dial = (&net.Dialer{}).DialContext
	}
	ctx, cancel := context.WithTimeout(ctx, d.Timeout)
	defer cancel()

	online := true
	conn, err := dial(ctx, "tcp", d.Address)
	if err != nil {
		d.Logger.Debug("connectivity check failed", zap.String("address", d.Address), zap.Error(err))
		online = false
	} else {
		_ = conn.Close()
	}

	d.mu.Lock()
	d.online = online
	d.checked = time.Now()
	d.mu.Unlock()
	return online
}
