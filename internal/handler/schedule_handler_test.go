package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/course-scheduler/internal/engine"
	"github.com/noah-isme/course-scheduler/internal/service"
	"github.com/noah-isme/course-scheduler/pkg/config"
	"github.com/noah-isme/course-scheduler/pkg/storage"
)

type fakeSchedulingEngine struct {
	result engine.Result
	err    error
}

func (f *fakeSchedulingEngine) Generate(ctx context.Context, studentID string, desiredSubjectIDs []string, academicPeriodID string, level engine.OptimizationLevel) (engine.Result, error) {
	return f.result, f.err
}

type fakeJobStore struct {
	states map[string]*service.ScheduleJobState
}

func newFakeJobStore() *fakeJobStore {
	return &fakeJobStore{states: make(map[string]*service.ScheduleJobState)}
}

func (f *fakeJobStore) Save(ctx context.Context, jobID string, result *engine.Result, err error) error {
	state := &service.ScheduleJobState{JobID: jobID, UpdatedAt: time.Now()}
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

func (f *fakeJobStore) Load(ctx context.Context, jobID string) (*service.ScheduleJobState, bool, error) {
	state, ok := f.states[jobID]
	return state, ok, nil
}

func newTestScheduleHandler(t *testing.T, eng *fakeSchedulingEngine, jobStore service.ScheduleJobStore) *ScheduleHandler {
	t.Helper()
	schedulingSvc := service.NewSchedulingService(eng, nil, nil, jobStore, config.SchedulerConfig{DefaultLevel: "low"}, zap.NewNop())

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)
	exportSvc := service.NewExportService(store, signer, service.ExportConfig{APIPrefix: "/api/v1"}, zap.NewNop(), nil, nil)

	return NewScheduleHandler(schedulingSvc, exportSvc)
}

func TestScheduleHandlerGenerateSynchronous(t *testing.T) {
	gin.SetMode(gin.TestMode)
	eng := &fakeSchedulingEngine{result: engine.Result{Feasible: true, Status: engine.StatusOptimal}}
	h := newTestScheduleHandler(t, eng, newFakeJobStore())

	body, _ := json.Marshal(service.GenerateScheduleRequest{StudentID: "s1", DesiredSubjectIDs: []string{"sub1"}})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/schedules/generate", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Generate(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestScheduleHandlerGenerateAsyncForHighLevel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	eng := &fakeSchedulingEngine{result: engine.Result{Feasible: true}}
	h := newTestScheduleHandler(t, eng, newFakeJobStore())

	body, _ := json.Marshal(service.GenerateScheduleRequest{
		StudentID:         "s1",
		DesiredSubjectIDs: []string{"sub1"},
		OptimizationLevel: string(engine.LevelHigh),
	})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/schedules/generate", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Generate(c)

	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestScheduleHandlerJobStatusNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	eng := &fakeSchedulingEngine{}
	h := newTestScheduleHandler(t, eng, newFakeJobStore())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/schedules/jobs/missing", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	h.JobStatus(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestScheduleHandlerExportAndDownload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	eng := &fakeSchedulingEngine{}
	jobStore := newFakeJobStore()
	result := &engine.Result{
		Feasible:           true,
		SelectedSectionIDs: []string{"sec-1"},
		CoveredSubjectIDs:  []string{"sub-1"},
	}
	require.NoError(t, jobStore.Save(context.Background(), "job-1", result, nil))

	h := newTestScheduleHandler(t, eng, jobStore)

	exportBody, _ := json.Marshal(ExportRequest{JobID: "job-1", Format: "csv"})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/schedules/export", bytes.NewReader(exportBody))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Export(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data service.ScheduleExportResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.NotEmpty(t, envelope.Data.Token)
}

func TestScheduleHandlerExportRejectsIncompleteJob(t *testing.T) {
	gin.SetMode(gin.TestMode)
	eng := &fakeSchedulingEngine{}
	jobStore := newFakeJobStore()
	require.NoError(t, jobStore.Save(context.Background(), "job-pending", nil, nil))

	h := newTestScheduleHandler(t, eng, jobStore)

	exportBody, _ := json.Marshal(ExportRequest{JobID: "job-pending", Format: "csv"})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/schedules/export", bytes.NewReader(exportBody))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Export(c)

	assert.Equal(t, http.StatusPreconditionFailed, w.Code)
}
