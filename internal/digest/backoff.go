package digest

import (
	"math"
	"math/rand"
	"time"
)

// ExponentialBackoff returns the delay before retry number attempt+1.
// attempt=0 => ~1s, attempt=1 => ~2s, attempt=2 => ~4s, capped at 30s,
// with a little jitter to avoid lockstep retries.
func ExponentialBackoff(attempt int) time.Duration {
	base := time.Second

	capDelay := 30 * time.Second

	multiple := math.Pow(2, float64(attempt))
	delay := time.Duration(float64(base) * multiple)

	if delay > capDelay {
		delay = capDelay
	}

	delay += time.Duration(rand.Intn(250)) * time.Millisecond
	return delay
}
