package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Section is the persisted row backing a course offering. The engine's own
// Section type (internal/engine) is reconstructed from this row plus its
// scheduled meeting times.
type Section struct {
	ID               string         `db:"id" json:"id"`
	SubjectID        string         `db:"subject_id" json:"subject_id"`
	ProfessorID      string         `db:"professor_id" json:"professor_id"`
	ClassroomID      string         `db:"classroom_id" json:"classroom_id"`
	AcademicPeriodID string         `db:"academic_period_id" json:"academic_period_id"`
	Capacity         int            `db:"capacity" json:"capacity"`
	EnrolledCount    int            `db:"enrolled_count" json:"enrolled_count"`
	DayOfWeek        int            `db:"day_of_week" json:"day_of_week"`
	StartMinute      int            `db:"start_minute" json:"start_minute"`
	EndMinute        int            `db:"end_minute" json:"end_minute"`
	Meta             types.JSONText `db:"meta" json:"meta,omitempty"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updated_at"`
}

// SectionFilter captures supported filters for listing catalog sections.
type SectionFilter struct {
	SubjectID        string
	AcademicPeriodID string
	ProfessorID      string
	Page             int
	PageSize         int
	SortBy           string
	SortOrder        string
}
