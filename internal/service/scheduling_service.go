package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/noah-isme/course-scheduler/internal/engine"
	"github.com/noah-isme/course-scheduler/pkg/config"
	appErrors "github.com/noah-isme/course-scheduler/pkg/errors"
	"github.com/noah-isme/course-scheduler/pkg/jobs"
)

// engineObserver is the concrete engine.Observer implementation backing
// scheduler_cp_solve_seconds and scheduler_ga_generations_total, keeping
// internal/engine free of a direct Prometheus dependency.
type engineObserver struct {
	phaseDuration *prometheus.HistogramVec
	gaPhases      prometheus.Counter
	phaseStarts   map[string]time.Time
}

func newEngineObserver(registry *prometheus.Registry) *engineObserver {
	obs := &engineObserver{
		phaseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scheduler_cp_solve_seconds",
			Help:    "Duration of each scheduling engine phase in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"phase"}),
		gaPhases: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scheduler_ga_generations_total",
			Help: "Total number of genetic algorithm optimization phases run",
		}),
		phaseStarts: make(map[string]time.Time),
	}
	registry.MustRegister(obs.phaseDuration, obs.gaPhases)
	return obs
}

func (o *engineObserver) PhaseStarted(phase string) {
	o.phaseStarts[phase] = time.Now()
}

func (o *engineObserver) PhaseFinished(phase string, elapsed time.Duration) {
	o.phaseDuration.WithLabelValues(phase).Observe(elapsed.Seconds())
	if phase == "GaOptimizing" {
		o.gaPhases.Inc()
	}
}

// NewEngineObserver builds an engine.Observer backed by the given
// Prometheus registry.
func NewEngineObserver(registry *prometheus.Registry) engine.Observer {
	return newEngineObserver(registry)
}

// GenerateScheduleRequest captures the inputs for a planning run.
type GenerateScheduleRequest struct {
	StudentID         string   `json:"student_id" validate:"required"`
	DesiredSubjectIDs []string `json:"desired_subject_ids" validate:"required,min=1"`
	AcademicPeriodID  string   `json:"academic_period_id"`
	OptimizationLevel string   `json:"optimization_level" validate:"omitempty,oneof=none low medium high"`
	Async             bool     `json:"async"`
}

// SchedulingEngine is the subset of engine.Engine the service depends on.
type SchedulingEngine interface {
	Generate(ctx context.Context, studentID string, desiredSubjectIDs []string, academicPeriodID string, level engine.OptimizationLevel) (engine.Result, error)
}

// ScheduleJobStore persists async job state so status can be polled after
// an asynchronous POST /schedules/generate returns.
type ScheduleJobStore interface {
	Save(ctx context.Context, jobID string, result *engine.Result, err error) error
	Load(ctx context.Context, jobID string) (*ScheduleJobState, bool, error)
}

// ScheduleJobState is the recorded outcome of an asynchronous planning run.
type ScheduleJobState struct {
	JobID     string        `json:"job_id"`
	Status    string        `json:"status"`
	Result    *engine.Result `json:"result,omitempty"`
	Error     string        `json:"error,omitempty"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// SchedulingService wires the hybrid CP/GA engine to caching and
// asynchronous dispatch for the high optimization level.
type SchedulingService struct {
	engine   SchedulingEngine
	cache    *CacheService
	queue    *jobs.Queue
	jobStore ScheduleJobStore
	cfg      config.SchedulerConfig
	logger   *zap.Logger
}

// NewSchedulingService constructs a scheduling service. queue and jobStore
// may be nil, in which case async requests are rejected.
func NewSchedulingService(eng SchedulingEngine, cache *CacheService, queue *jobs.Queue, jobStore ScheduleJobStore, cfg config.SchedulerConfig, logger *zap.Logger) *SchedulingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SchedulingService{engine: eng, cache: cache, queue: queue, jobStore: jobStore, cfg: cfg, logger: logger}
}

func cacheKey(studentID, periodID, level string) string {
	return fmt.Sprintf("schedule:%s:%s:%s", studentID, periodID, level)
}

// Generate runs the engine synchronously, consulting and populating the
// result cache keyed by student, period and optimization level.
func (s *SchedulingService) Generate(ctx context.Context, req GenerateScheduleRequest) (*engine.Result, error) {
	level := engine.OptimizationLevel(req.OptimizationLevel)
	if level == "" {
		level = engine.OptimizationLevel(s.cfg.DefaultLevel)
	}

	key := cacheKey(req.StudentID, req.AcademicPeriodID, string(level))
	if s.cache != nil && s.cache.Enabled() {
		var cached engine.Result
		hit, err := s.cache.Get(ctx, key, &cached)
		if err == nil && hit {
			return &cached, nil
		}
	}

	result, err := s.engine.Generate(ctx, req.StudentID, req.DesiredSubjectIDs, req.AcademicPeriodID, level)
	if err != nil {
		return nil, translateEngineError(err)
	}

	if s.cache != nil && s.cache.Enabled() {
		if err := s.cache.Set(ctx, key, result, s.cfg.ResultCacheTTL); err != nil {
			s.logger.Warn("failed to cache schedule result", zap.String("key", key), zap.Error(err))
		}
	}

	return &result, nil
}

// GenerateAsync enqueues a planning run for later retrieval, used for the
// "high" optimization level where GA convergence can take longer than an
// HTTP request is willing to block for.
func (s *SchedulingService) GenerateAsync(ctx context.Context, req GenerateScheduleRequest) (string, error) {
	if s.queue == nil || s.jobStore == nil {
		return "", appErrors.Clone(appErrors.ErrInternal, "async scheduling is not configured")
	}

	jobID := uuid.NewString()
	if err := s.jobStore.Save(ctx, jobID, nil, nil); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record schedule job")
	}

	payload := req
	job := jobs.Job{ID: jobID, Type: "schedule.generate", Payload: payload}
	if err := s.queue.Enqueue(job); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue schedule job")
	}
	return jobID, nil
}

// JobStatus reports the recorded state of an asynchronous planning run.
func (s *SchedulingService) JobStatus(ctx context.Context, jobID string) (*ScheduleJobState, error) {
	if s.jobStore == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule job not found")
	}
	state, ok, err := s.jobStore.Load(ctx, jobID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule job")
	}
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule job not found")
	}
	return state, nil
}

// JobHandler returns the jobs.Handler the queue should dispatch
// "schedule.generate" jobs to.
func (s *SchedulingService) JobHandler() jobs.Handler {
	return func(ctx context.Context, job jobs.Job) error {
		req, ok := job.Payload.(GenerateScheduleRequest)
		if !ok {
			return fmt.Errorf("unexpected payload type %T for job %s", job.Payload, job.ID)
		}
		result, err := s.Generate(ctx, req)
		if err != nil {
			if saveErr := s.jobStore.Save(ctx, job.ID, nil, err); saveErr != nil {
				s.logger.Error("failed to persist failed schedule job", zap.String("job_id", job.ID), zap.Error(saveErr))
			}
			return err
		}
		if err := s.jobStore.Save(ctx, job.ID, result, nil); err != nil {
			s.logger.Error("failed to persist completed schedule job", zap.String("job_id", job.ID), zap.Error(err))
			return err
		}
		return nil
	}
}

func translateEngineError(err error) error {
	switch err.(type) {
	case *engine.ValidationError:
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	case *engine.SubjectOutsideProgramError:
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	switch err {
	case engine.ErrStudentNotFound:
		return appErrors.Clone(appErrors.ErrNotFound, "student not found")
	case engine.ErrNoActivePeriod:
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "no active academic period")
	default:
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate schedule")
	}
}
