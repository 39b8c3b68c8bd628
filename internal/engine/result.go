package engine

// Status is the closed set of solver/orchestrator status tags a Result
// may carry.
type Status string

const (
	StatusOptimal           Status = "OPTIMAL"
	StatusFeasible          Status = "FEASIBLE"
	StatusInfeasible        Status = "INFEASIBLE"
	StatusUnknown           Status = "UNKNOWN"
	StatusCancelled         Status = "CANCELLED"
	StatusHybridOptimized   Status = "HYBRID_OPTIMIZED"
	StatusHybridCPBest      Status = "HYBRID_CP_BEST"
	StatusHybridCPFallback  Status = "HYBRID_CP_FALLBACK"
)

// ConflictKind enumerates the reasons a candidate may be reported as
// conflicting with a chosen section.
type ConflictKind string

const TimeOverlapConflict ConflictKind = "time_overlap"

// SectionConflict describes one chosen section a candidate collides with.
type SectionConflict struct {
	SectionID   string
	SubjectID   string
	SubjectCode string
	SubjectName string
	Kind        ConflictKind
}

// UnassignedReason is the closed set of diagnostic reasons a subject can
// be left unassigned for.
type UnassignedReason string

const (
	ReasonNoCandidates       UnassignedReason = "no candidate sections"
	ReasonAllConflicting     UnassignedReason = "all sections conflict with already-assigned"
	ReasonPartialConflicting UnassignedReason = "partial conflicts"
)

// CandidateConflicts pairs one original candidate with the chosen
// sections it collides with.
type CandidateConflicts struct {
	SectionID string
	Conflicts []SectionConflict
}

// UnassignedReport explains why one desired subject has no selected
// section in the final Assignment.
type UnassignedReport struct {
	SubjectID  string
	SubjectCode string
	SubjectName string
	Reason     UnassignedReason
	Candidates []CandidateConflicts
}

// Assignment maps a desired subject id to the section chosen for it.
// Missing keys mean the subject is unassigned.
type Assignment map[string]Section

// SectionsInOrder returns the assignment's sections in the order of
// desiredSubjectIDs, skipping subjects with no assigned section.
func (a Assignment) SectionsInOrder(desiredSubjectIDs []string) []Section {
	sections := make([]Section, 0, len(a))
	for _, subjectID := range desiredSubjectIDs {
		if s, ok := a[subjectID]; ok {
			sections = append(sections, s)
		}
	}
	return sections
}

// Result is the immutable value the engine returns for a planning run.
type Result struct {
	Feasible           bool
	SelectedSectionIDs []string
	CoveredSubjectIDs  []string
	Unassigned         []UnassignedReport
	Status             Status
	ProcessingTime     float64
	QualityScore       *float64
	Conflicts          []string
}
