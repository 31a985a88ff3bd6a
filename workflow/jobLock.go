package workflow

import (
	"context"
	"time"

	"github.com/bsm/redislock"
	"github.com/regulens/synapse_backend/config"
)

// AcquireJobLock serializes a named background job across instances. Returns
// (nil, nil) when redis is not configured so single-instance deployments run
// without it.
func AcquireJobLock(ctx context.Context, name string, ttl time.Duration) (*redislock.Lock, error) {
	locker := config.GetRedisLock()
	if locker == nil {
		return nil, nil
	}
	lock, err := locker.Obtain(ctx, "job:"+name, ttl, nil)
	if err == redislock.ErrNotObtained {
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	return lock, nil
}

func ReleaseJobLock(ctx context.Context, lock *redislock.Lock) {
	if lock == nil {
		return
	}
	_ = lock.Release(ctx)
}
