package gormstore

import (
	"time"

	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// newLoginLimiter caps session creations per email per window, the way the
// hosted service throttles its login endpoint. A limit of 0 returns nil.
func newLoginLimiter(limit int, window time.Duration) *limiter.Limiter {
	if limit <= 0 {
		return nil
	}
	return limiter.New(memory.NewStore(), limiter.Rate{Period: window, Limit: int64(limit)})
}
