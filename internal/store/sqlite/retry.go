package sqlite

import (
	"context"
	"time"

	"github.com/hawkline/depthwatch/internal/domain"
)

// withReadRetry runs op up to attempts times, sleeping backoff between
// attempts that failed with lock contention. Any other error aborts the loop
// immediately. If every attempt hits contention, domain.ErrLockContention is
// returned so the caller can map exhaustion to an empty result.
func withReadRetry(ctx context.Context, attempts int, backoff time.Duration, op func() error) error {
	for i := 0; i < attempts; i++ {
		err := op()
		if err == nil {
			return nil
		}
		if !isLockContention(err) {
			return err
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return domain.ErrLockContention
}
