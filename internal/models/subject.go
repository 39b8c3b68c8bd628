package models

import "time"

// Subject represents an academic subject belonging to a program.
type Subject struct {
	ID           string    `db:"id" json:"id"`
	Code         string    `db:"code" json:"code"`
	Name         string    `db:"name" json:"name"`
	Track        string    `db:"track" json:"track"`
	SubjectGroup string    `db:"subject_group" json:"subject_group"`
	ProgramID    string    `db:"program_id" json:"program_id"`
	CreditHours  int       `db:"credit_hours" json:"credit_hours"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// SubjectFilter captures supported filters for listing subjects.
type SubjectFilter struct {
	Track     string
	Group     string
	ProgramID string
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// PrerequisiteKind distinguishes a hard prerequisite from a corequisite.
type PrerequisiteKind string

const (
	PrerequisiteKindHard PrerequisiteKind = "PREREQUISITE"
	PrerequisiteKindCo   PrerequisiteKind = "COREQUISITE"
)

// Prerequisite links a subject to one it depends on.
type Prerequisite struct {
	ID                string           `db:"id" json:"id"`
	SubjectID         string           `db:"subject_id" json:"subject_id"`
	RequiredSubjectID string           `db:"required_subject_id" json:"required_subject_id"`
	Kind              PrerequisiteKind `db:"kind" json:"kind"`
	CreatedAt         time.Time        `db:"created_at" json:"created_at"`
}
