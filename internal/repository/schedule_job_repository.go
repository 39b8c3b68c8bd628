package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	appErrors "github.com/noah-isme/course-scheduler/pkg/errors"
)

// ScheduleJobRepository persists the state of asynchronous schedule
// generation jobs in the same Redis keyspace as cached results, reusing
// CacheRepository's Get/Set primitives.
type ScheduleJobRepository struct {
	cache *CacheRepository
	ttl   time.Duration
}

// NewScheduleJobRepository constructs a ScheduleJobRepository.
func NewScheduleJobRepository(cache *CacheRepository, ttl time.Duration) *ScheduleJobRepository {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ScheduleJobRepository{cache: cache, ttl: ttl}
}

func scheduleJobKey(jobID string) string {
	return fmt.Sprintf("schedule-job:%s", jobID)
}

// Save stores state as the current recorded state for jobID, replacing any
// earlier one; the value is stored as given.
func (r *ScheduleJobRepository) Save(ctx context.Context, jobID string, state interface{}) error {
	return r.cache.Set(ctx, scheduleJobKey(jobID), state, r.ttl)
}

// Load retrieves a job's recorded state into dest, returning false if no
// entry exists.
func (r *ScheduleJobRepository) Load(ctx context.Context, jobID string, dest interface{}) (bool, error) {
	err := r.cache.Get(ctx, scheduleJobKey(jobID), dest)
	if err != nil {
		if errors.Is(err, appErrors.ErrCacheMiss) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
