package engine

import "sort"

// PrerequisiteKind distinguishes hard prerequisites from corequisites.
type PrerequisiteKind string

const (
	PrerequisiteObligatory  PrerequisiteKind = "obligatory"
	PrerequisiteCorequisite PrerequisiteKind = "corequisite"
)

// Prerequisite is a single requirement a subject places on a student's
// academic history before a section of it may be attended.
type Prerequisite struct {
	PrerequisiteSubjectID string
	Kind                   PrerequisiteKind
}

// Section is one offering of a subject within an academic period: one
// professor, one classroom, a fixed capacity and a fixed weekly pattern of
// timeslots. Sections are immutable inputs for the duration of a planning
// run; the engine never mutates a Section it is handed.
type Section struct {
	ID            string
	SubjectID     string
	SubjectCode   string
	SubjectName   string
	ProfessorID   string
	ClassroomID   string
	Capacity      int
	Enrolled      int
	SectionNumber int
	TimeSlots     []TimeSlot
}

// AvailableSeats is capacity minus enrolled, floored at zero.
func (s Section) AvailableSeats() int {
	if s.Capacity <= s.Enrolled {
		return 0
	}
	return s.Capacity - s.Enrolled
}

// OverlapsWith reports whether this section's timeslots overlap another's.
func (s Section) OverlapsWith(other Section) bool {
	return timeSlotsOverlap(s.TimeSlots, other.TimeSlots)
}

// Candidate is a Section annotated with its derived seat count at load
// time, so the CP and GA phases never need to recompute it.
type Candidate struct {
	Section
	AvailableSeats int
}

// NewCandidate wraps a Section as a Candidate, computing AvailableSeats.
func NewCandidate(s Section) Candidate {
	return Candidate{Section: s, AvailableSeats: s.AvailableSeats()}
}

// CandidatePool holds a filtered candidate set grouped by subject, which is
// the only grouping either the CP builder or the GA operators index by: a
// plan only ever needs candidates for one of the student's desired
// subjects at a time. Professor and classroom exclusivity fall out of the
// general pairwise time-overlap check (see cp_solver.go), so no separate
// by-professor or by-classroom index is needed.
type CandidatePool struct {
	BySubject map[string][]Candidate
	byID      map[string]Candidate
}

// NewCandidatePool builds the subject grouping once from a flat candidate
// list. Each subject's list is sorted by candidate id so pairwise overlap
// iteration (index-paired, i<j) is deterministic across runs.
func NewCandidatePool(candidates []Candidate) *CandidatePool {
	pool := &CandidatePool{
		BySubject: make(map[string][]Candidate),
		byID:      make(map[string]Candidate, len(candidates)),
	}
	for _, c := range candidates {
		pool.BySubject[c.SubjectID] = append(pool.BySubject[c.SubjectID], c)
		pool.byID[c.ID] = c
	}
	for key, list := range pool.BySubject {
		sorted := append([]Candidate(nil), list...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
		pool.BySubject[key] = sorted
	}
	return pool
}

// ByID looks up a candidate by section id; ok is false if it is not part
// of this pool (e.g. it was pre-filtered out).
func (p *CandidatePool) ByID(id string) (Candidate, bool) {
	c, ok := p.byID[id]
	return c, ok
}
