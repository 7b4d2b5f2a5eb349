package contentapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// retryPolicy applies uniform retry semantics to every upstream call:
// up to Attempts tries with exponential backoff (Base doubled per attempt,
// capped at Max). 429 responses and 5xx/transport failures are retried;
// 401/403 map to ErrAuth immediately; any other 4xx is terminal.
type retryPolicy struct {
	Attempts int
	Base     time.Duration
	Max      time.Duration
}

func (p retryPolicy) attempts() int {
	if p.Attempts <= 0 {
		return 3
	}
	return p.Attempts
}

func (p retryPolicy) delay(attempt int) time.Duration {
	base := p.Base
	if base <= 0 {
		base = time.Second
	}
	d := base << uint(attempt)
	if p.Max > 0 && d > p.Max {
		return p.Max
	}
	return d
}

func (p retryPolicy) sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// retryable reports whether a response status should be retried. 429 is
// always retried; it does not count as a terminal client error.
func retryable(status int) bool {
	if status == http.StatusTooManyRequests {
		return true
	}
	return status >= 500
}

func terminalAuth(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}

func logRetry(log *slog.Logger, endpoint string, attempt, status int, wait time.Duration) {
	if log == nil {
		return
	}
	log.Warn("retrying content api call",
		"endpoint", endpoint,
		"attempt", attempt+1,
		"status", status,
		"backoff", wait,
	)
}
