package models

import "time"

// Student represents a learner registered in the institution.
type Student struct {
	ID        string    `db:"id" json:"id"`
	NIS       string    `db:"nis" json:"nis"`
	FullName  string    `db:"full_name" json:"full_name"`
	Gender    string    `db:"gender" json:"gender"`
	BirthDate time.Time `db:"birth_date" json:"birth_date"`
	Address   string    `db:"address" json:"address"`
	Phone     string    `db:"phone" json:"phone"`
	ProgramID string    `db:"program_id" json:"program_id"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search    string
	ProgramID string
	Active    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// StudentDetail contains student information with program context.
type StudentDetail struct {
	Student
	ProgramName     *string `db:"program_name" json:"program_name,omitempty"`
	ApprovedSubject int     `db:"approved_subjects" json:"approved_subjects"`
}

// AcademicHistoryStatus mirrors engine.AcademicHistoryStatus for persistence.
type AcademicHistoryStatus string

const (
	AcademicHistoryApproved   AcademicHistoryStatus = "approved"
	AcademicHistoryFailed     AcademicHistoryStatus = "failed"
	AcademicHistoryInProgress AcademicHistoryStatus = "in_progress"
)

// AcademicHistory records a student's past attempt at a subject during a
// given academic period.
type AcademicHistory struct {
	ID               string                `db:"id" json:"id"`
	StudentID        string                `db:"student_id" json:"student_id"`
	SubjectID        string                `db:"subject_id" json:"subject_id"`
	AcademicPeriodID string                `db:"academic_period_id" json:"academic_period_id"`
	Status           AcademicHistoryStatus `db:"status" json:"status"`
	CreatedAt        time.Time             `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time             `db:"updated_at" json:"updated_at"`
}
