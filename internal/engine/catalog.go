package engine

import "context"

// AcademicPeriod identifies a planning horizon (e.g. a semester) sections
// and enrollments belong to.
type AcademicPeriod struct {
	ID       string
	Name     string
	IsActive bool
}

// StudentRecord is the minimal student identity the engine needs.
type StudentRecord struct {
	ID        string
	ProgramID string
}

// AcademicHistoryStatus is the outcome of a student's past attempt at a
// subject.
type AcademicHistoryStatus string

const (
	HistoryApproved   AcademicHistoryStatus = "approved"
	HistoryFailed     AcademicHistoryStatus = "failed"
	HistoryInProgress AcademicHistoryStatus = "in_progress"
)

// AcademicHistoryRecord is one entry of a student's subject history.
type AcademicHistoryRecord struct {
	SubjectID string
	Status    AcademicHistoryStatus
}

// CatalogReader is the read-only view of the academic catalog the engine
// depends on. Implementations are expected to be backed by the
// institution's database; the engine treats every returned value as an
// immutable snapshot for the duration of a run.
type CatalogReader interface {
	SectionsForSubject(ctx context.Context, subjectID, periodID string) ([]Section, error)
	SubjectPrerequisites(ctx context.Context, subjectID string) ([]Prerequisite, error)
	SubjectExistsInProgram(ctx context.Context, subjectID, programID string) (bool, error)
	ActiveAcademicPeriod(ctx context.Context) (*AcademicPeriod, error)
	AcademicPeriodByID(ctx context.Context, id string) (*AcademicPeriod, error)
}

// StudentReader is the read-only view of student data the engine depends
// on.
type StudentReader interface {
	StudentByID(ctx context.Context, id string) (*StudentRecord, error)
	AcademicHistory(ctx context.Context, studentID string) ([]AcademicHistoryRecord, error)
}
