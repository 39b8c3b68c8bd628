package engine

import (
	"context"
	"fmt"
	"time"
)

// OptimizationLevel is the closed enum Generate accepts.
type OptimizationLevel string

const (
	LevelNone   OptimizationLevel = "none"
	LevelLow    OptimizationLevel = "low"
	LevelMedium OptimizationLevel = "medium"
	LevelHigh   OptimizationLevel = "high"
)

func (l OptimizationLevel) valid() bool {
	switch l {
	case LevelNone, LevelLow, LevelMedium, LevelHigh, "":
		return true
	default:
		return false
	}
}

// Observer receives phase-transition notifications from a planning run.
// It exists so the engine can report timing and status to the service
// layer's logger/metrics without importing either directly, keeping the
// engine transport- and observability-stack-agnostic.
type Observer interface {
	PhaseStarted(phase string)
	PhaseFinished(phase string, elapsed time.Duration)
}

type noopObserver struct{}

func (noopObserver) PhaseStarted(string)                     {}
func (noopObserver) PhaseFinished(string, time.Duration) {}

// Config tunes a single Engine instance.
type Config struct {
	CPTimeout time.Duration
	GAWorkers int
	Observer  Observer
	// Seed fixes the GA's master random stream for reproducibility.
	// Nil means "derive from wall clock", making the run non-reproducible
	// by design — callers that need determinism must supply a seed.
	Seed func() int64
}

// Engine is the hybrid CP/GA scheduling engine. It is stateless and safe
// for concurrent use by multiple goroutines running independent planning
// runs: each call to Generate owns its own candidate pool, RNG and
// working assignment.
type Engine struct {
	catalog  CatalogReader
	students StudentReader
	cfg      Config
}

// New constructs an Engine. cfg.CPTimeout defaults to 30s and
// cfg.Observer defaults to a no-op if unset.
func New(catalog CatalogReader, students StudentReader, cfg Config) *Engine {
	if cfg.CPTimeout <= 0 {
		cfg.CPTimeout = 30 * time.Second
	}
	if cfg.Observer == nil {
		cfg.Observer = noopObserver{}
	}
	if cfg.Seed == nil {
		cfg.Seed = func() int64 { return time.Now().UnixNano() }
	}
	return &Engine{catalog: catalog, students: students, cfg: cfg}
}

// Generate is the engine's single exposed operation.
func (e *Engine) Generate(ctx context.Context, studentID string, desiredSubjectIDs []string, academicPeriodID string, level OptimizationLevel) (Result, error) {
	start := time.Now()

	if len(desiredSubjectIDs) == 0 {
		return Result{}, &ValidationError{Reason: "desired_subject_ids must not be empty"}
	}
	if !level.valid() {
		return Result{}, &ValidationError{Reason: fmt.Sprintf("unknown optimization_level %q", level)}
	}
	if level == "" {
		level = LevelNone
	}

	student, err := e.students.StudentByID(ctx, studentID)
	if err != nil {
		return Result{}, err
	}
	if student == nil {
		return Result{}, ErrStudentNotFound
	}

	period, err := e.resolvePeriod(ctx, academicPeriodID)
	if err != nil {
		return Result{}, err
	}

	for _, subjectID := range desiredSubjectIDs {
		inProgram, err := e.catalog.SubjectExistsInProgram(ctx, subjectID, student.ProgramID)
		if err != nil {
			return Result{}, err
		}
		if !inProgram {
			return Result{}, &SubjectOutsideProgramError{SubjectID: subjectID}
		}
	}

	studentCtx, err := e.buildStudentContext(ctx, student, desiredSubjectIDs)
	if err != nil {
		return Result{}, err
	}

	e.cfg.Observer.PhaseStarted("Loading")
	loadStart := time.Now()
	loaded, err := loadCandidates(ctx, e.catalog, studentCtx, period.ID)
	e.cfg.Observer.PhaseFinished("Loading", time.Since(loadStart))
	if err != nil {
		return Result{}, err
	}

	e.cfg.Observer.PhaseStarted("Filtering")
	pool := NewCandidatePool(flattenFiltered(loaded))
	e.cfg.Observer.PhaseFinished("Filtering", 0)

	e.cfg.Observer.PhaseStarted("CpSolving")
	cpStart := time.Now()
	solver := newCPSolver(desiredSubjectIDs, pool, e.cfg.CPTimeout)
	cp := solver.solve(ctx)
	e.cfg.Observer.PhaseFinished("CpSolving", time.Since(cpStart))

	if cp.status == StatusCancelled {
		return e.buildResult(cp.assignment, loaded, desiredSubjectIDs, StatusCancelled, nil, start), nil
	}

	cpSections := cp.assignment.SectionsInOrder(desiredSubjectIDs)
	var cpScore *float64
	if len(cpSections) > 0 {
		s := Score(cpSections)
		cpScore = &s
	}

	if len(cp.assignment) == 0 || level == LevelNone {
		return e.buildResult(cp.assignment, loaded, desiredSubjectIDs, cp.status, cpScore, start), nil
	}

	select {
	case <-ctx.Done():
		return e.buildResult(cp.assignment, loaded, desiredSubjectIDs, StatusCancelled, cpScore, start), nil
	default:
	}

	e.cfg.Observer.PhaseStarted("GaOptimizing")
	gaStart := time.Now()
	gaOut, err := runGA(ctx, desiredSubjectIDs, pool, string(level), e.cfg.Seed(), e.cfg.GAWorkers)
	e.cfg.Observer.PhaseFinished("GaOptimizing", time.Since(gaStart))
	if err != nil {
		return Result{}, err
	}

	e.cfg.Observer.PhaseStarted("Reporting")
	defer e.cfg.Observer.PhaseFinished("Reporting", 0)

	if !gaOut.feasible {
		return e.buildResult(cp.assignment, loaded, desiredSubjectIDs, StatusHybridCPFallback, cpScore, start), nil
	}
	if cpScore == nil || gaOut.fitness < *cpScore {
		score := gaOut.fitness
		return e.buildResult(gaOut.assignment, loaded, desiredSubjectIDs, StatusHybridOptimized, &score, start), nil
	}
	return e.buildResult(cp.assignment, loaded, desiredSubjectIDs, StatusHybridCPBest, cpScore, start), nil
}

func (e *Engine) resolvePeriod(ctx context.Context, academicPeriodID string) (*AcademicPeriod, error) {
	if academicPeriodID != "" {
		period, err := e.catalog.AcademicPeriodByID(ctx, academicPeriodID)
		if err != nil {
			return nil, err
		}
		if period == nil {
			return nil, ErrNoActivePeriod
		}
		return period, nil
	}
	period, err := e.catalog.ActiveAcademicPeriod(ctx)
	if err != nil {
		return nil, err
	}
	if period == nil {
		return nil, ErrNoActivePeriod
	}
	return period, nil
}

func (e *Engine) buildStudentContext(ctx context.Context, student *StudentRecord, desiredSubjectIDs []string) (StudentContext, error) {
	history, err := e.students.AcademicHistory(ctx, student.ID)
	if err != nil {
		return StudentContext{}, err
	}

	approved := make(map[string]struct{})
	for _, h := range history {
		if h.Status == HistoryApproved {
			approved[h.SubjectID] = struct{}{}
		}
	}

	return StudentContext{
		StudentID:          student.ID,
		ProgramID:          student.ProgramID,
		ApprovedSubjectIDs: approved,
		DesiredSubjectIDs:  desiredSubjectIDs,
	}, nil
}

func (e *Engine) buildResult(assignment Assignment, loaded []loadedSubject, desiredSubjectIDs []string, status Status, score *float64, start time.Time) Result {
	covered := make([]string, 0, len(assignment))
	selected := make([]string, 0, len(assignment))
	for _, subjectID := range desiredSubjectIDs {
		section, ok := assignment[subjectID]
		if !ok {
			continue
		}
		covered = append(covered, subjectID)
		selected = append(selected, section.ID)
	}

	unassigned := diagnose(loaded, assignment)

	return Result{
		Feasible:           len(selected) > 0,
		SelectedSectionIDs: selected,
		CoveredSubjectIDs:  covered,
		Unassigned:         unassigned,
		Status:             status,
		ProcessingTime:      time.Since(start).Seconds(),
		QualityScore:        score,
		Conflicts:           summarizeConflicts(unassigned),
	}
}
