package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/course-scheduler/internal/engine"
	"github.com/noah-isme/course-scheduler/pkg/config"
	"github.com/noah-isme/course-scheduler/pkg/jobs"
)

type fakeEngine struct {
	result engine.Result
	err    error
	calls  int
}

func (f *fakeEngine) Generate(ctx context.Context, studentID string, desiredSubjectIDs []string, academicPeriodID string, level engine.OptimizationLevel) (engine.Result, error) {
	f.calls++
	return f.result, f.err
}

type fakeJobStore struct {
	states map[string]*ScheduleJobState
}

func newFakeJobStore() *fakeJobStore {
	return &fakeJobStore{states: make(map[string]*ScheduleJobState)}
}

func (f *fakeJobStore) Save(ctx context.Context, jobID string, result *engine.Result, err error) error {
	state := &ScheduleJobState{JobID: jobID, UpdatedAt: time.Now()}
	switch {
	case err != nil:
		state.Status = "failed"
		state.Error = err.Error()
	case result != nil:
		state.Status = "completed"
		state.Result = result
	default:
		state.Status = "pending"
	}
	f.states[jobID] = state
	return nil
}

func (f *fakeJobStore) Load(ctx context.Context, jobID string) (*ScheduleJobState, bool, error) {
	state, ok := f.states[jobID]
	return state, ok, nil
}

func TestSchedulingServiceGenerateSynchronous(t *testing.T) {
	eng := &fakeEngine{result: engine.Result{Feasible: true, Status: engine.StatusOptimal}}
	svc := NewSchedulingService(eng, nil, nil, nil, config.SchedulerConfig{DefaultLevel: "low"}, zap.NewNop())

	result, err := svc.Generate(context.Background(), GenerateScheduleRequest{
		StudentID:         "s1",
		DesiredSubjectIDs: []string{"sub1"},
	})
	require.NoError(t, err)
	assert.True(t, result.Feasible)
	assert.Equal(t, 1, eng.calls)
}

func TestSchedulingServiceGenerateTranslatesEngineErrors(t *testing.T) {
	eng := &fakeEngine{err: engine.ErrStudentNotFound}
	svc := NewSchedulingService(eng, nil, nil, nil, config.SchedulerConfig{DefaultLevel: "low"}, zap.NewNop())

	_, err := svc.Generate(context.Background(), GenerateScheduleRequest{
		StudentID:         "missing",
		DesiredSubjectIDs: []string{"sub1"},
	})
	require.Error(t, err)
}

func TestSchedulingServiceGenerateAsyncRequiresQueueAndStore(t *testing.T) {
	eng := &fakeEngine{result: engine.Result{Feasible: true}}
	svc := NewSchedulingService(eng, nil, nil, nil, config.SchedulerConfig{}, zap.NewNop())

	_, err := svc.GenerateAsync(context.Background(), GenerateScheduleRequest{StudentID: "s1", DesiredSubjectIDs: []string{"sub1"}})
	require.Error(t, err)
}

func TestSchedulingServiceJobHandlerPersistsCompletion(t *testing.T) {
	eng := &fakeEngine{result: engine.Result{Feasible: true, Status: engine.StatusFeasible}}
	store := newFakeJobStore()
	svc := NewSchedulingService(eng, nil, nil, store, config.SchedulerConfig{DefaultLevel: "low"}, zap.NewNop())

	handler := svc.JobHandler()
	job := jobs.Job{ID: "job-1", Type: "schedule.generate", Payload: GenerateScheduleRequest{StudentID: "s1", DesiredSubjectIDs: []string{"sub1"}}}

	err := handler(context.Background(), job)
	require.NoError(t, err)

	state, ok, err := store.Load(context.Background(), job.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "completed", state.Status)
	require.NotNil(t, state.Result)
	assert.True(t, state.Result.Feasible)
}

func TestSchedulingServiceJobHandlerPersistsFailure(t *testing.T) {
	eng := &fakeEngine{err: engine.ErrNoActivePeriod}
	store := newFakeJobStore()
	svc := NewSchedulingService(eng, nil, nil, store, config.SchedulerConfig{DefaultLevel: "low"}, zap.NewNop())

	handler := svc.JobHandler()
	job := jobs.Job{ID: "job-1", Type: "schedule.generate", Payload: GenerateScheduleRequest{StudentID: "s1", DesiredSubjectIDs: []string{"sub1"}}}

	err := handler(context.Background(), job)
	require.Error(t, err)

	state, ok, loadErr := store.Load(context.Background(), job.ID)
	require.NoError(t, loadErr)
	require.True(t, ok)
	assert.Equal(t, "failed", state.Status)
}
