package models

import "time"

// AcademicPeriodType represents the type of academic period (e.g. semester, trimester).
type AcademicPeriodType string

const (
	PeriodTypeSemester  AcademicPeriodType = "SEMESTER"
	PeriodTypeTrimester AcademicPeriodType = "TRIMESTER"
	PeriodTypeQuarter   AcademicPeriodType = "QUARTER"
)

// AcademicPeriod models an academic period within the institution calendar.
type AcademicPeriod struct {
	ID           string             `db:"id" json:"id"`
	Name         string             `db:"name" json:"name"`
	Type         AcademicPeriodType `db:"type" json:"type"`
	AcademicYear string             `db:"academic_year" json:"academic_year"`
	StartDate    time.Time `db:"start_date" json:"start_date"`
	EndDate      time.Time `db:"end_date" json:"end_date"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// AcademicPeriodFilter defines filters supported by list endpoints.
type AcademicPeriodFilter struct {
	AcademicYear string
	Type         AcademicPeriodType
	IsActive     *bool
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}
