package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"stockdetail/internal/provider"
)

// Limited wraps a QuoteService and gates calls with a token bucket.
// Callers wait for a token or return early if the context is canceled.
type Limited struct {
	S provider.QuoteService
	L *rate.Limiter
}

// PerMinute returns a limiter allowing rpm requests per minute with the given burst.
func PerMinute(rpm, burst int) *rate.Limiter {
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(float64(rpm)/60.0), burst)
}

// MinInterval returns a limiter allowing one request per interval.
func MinInterval(interval time.Duration) *rate.Limiter {
	return rate.NewLimiter(rate.Every(interval), 1)
}

// Wrap gates s with the configured limit. Preference: requests per minute,
// then minimum interval; with neither set s is returned unchanged.
func Wrap(s provider.QuoteService, rpm, burst int, minInterval time.Duration) provider.QuoteService {
	switch {
	case rpm > 0:
		return &Limited{S: s, L: PerMinute(rpm, burst)}
	case minInterval > 0:
		return &Limited{S: s, L: MinInterval(minInterval)}
	default:
		return s
	}
}

func (l *Limited) Quote(ctx context.Context, format, symbol string) (*provider.Response, error) {
	if l.L != nil {
		if err := l.L.Wait(ctx); err != nil {
			return nil, err
		}
	}
	return l.S.Quote(ctx, format, symbol)
}
