package service

import (
	"context"
	"time"

	"github.com/noah-isme/course-scheduler/internal/engine"
)

type scheduleJobRepository interface {
	Save(ctx context.Context, jobID string, state interface{}) error
	Load(ctx context.Context, jobID string, dest interface{}) (bool, error)
}

// RedisScheduleJobStore adapts a scheduleJobRepository to ScheduleJobStore,
// translating a raw Generate outcome into the recorded ScheduleJobState.
type RedisScheduleJobStore struct {
	repo scheduleJobRepository
}

// NewRedisScheduleJobStore constructs a RedisScheduleJobStore.
func NewRedisScheduleJobStore(repo scheduleJobRepository) *RedisScheduleJobStore {
	return &RedisScheduleJobStore{repo: repo}
}

// Save records the outcome of an asynchronous planning run.
func (s *RedisScheduleJobStore) Save(ctx context.Context, jobID string, result *engine.Result, genErr error) error {
	state := ScheduleJobState{
		JobID:     jobID,
		UpdatedAt: time.Now().UTC(),
	}
	switch {
	case genErr != nil:
		state.Status = "failed"
		state.Error = genErr.Error()
	case result != nil:
		state.Status = "completed"
		state.Result = result
	default:
		state.Status = "pending"
	}
	return s.repo.Save(ctx, jobID, state)
}

// Load retrieves the recorded state for jobID.
func (s *RedisScheduleJobStore) Load(ctx context.Context, jobID string) (*ScheduleJobState, bool, error) {
	var state ScheduleJobState
	ok, err := s.repo.Load(ctx, jobID, &state)
	if err != nil || !ok {
		return nil, ok, err
	}
	return &state, true, nil
}
