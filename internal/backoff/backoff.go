// Package backoff holds the retry policy shared by the Trakt and TMDB
// clients: exponential delays doubling from 2 units, capped at 20 units,
// for at most 5 attempts.
package backoff

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
)

type Policy struct {
	Attempts uint
	Unit     time.Duration
	Cap      time.Duration
}

// Default returns the production policy: 5 attempts with delays of
// 2s, 4s, 8s, 16s, 20s. Tests shrink Unit to avoid real sleeps.
func Default() Policy {
	return Policy{Attempts: 5, Unit: time.Second, Cap: 20 * time.Second}
}

// Options builds the retry-go option set for this policy. The last
// underlying error is surfaced when all attempts are exhausted.
func (p Policy) Options(ctx context.Context) []retry.Option {
	return []retry.Option{
		retry.Attempts(p.Attempts),
		retry.DelayType(func(n uint, _ error, _ *retry.Config) time.Duration {
			wait := p.Unit << (n + 1)
			if wait > p.Cap {
				wait = p.Cap
			}
			return wait
		}),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
	}
}
