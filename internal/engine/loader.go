package engine

import "context"

// loadedSubject keeps both the full (pre-filter-inclusive) candidate list
// and the filtered one for a single desired subject, so the diagnostic
// reporter can later explain exactly what pre-filtering removed.
type loadedSubject struct {
	subjectID string
	full      []Candidate
	filtered  []Candidate
}

// loadCandidates pulls every candidate section for the student's desired
// subjects and applies the pre-filter (no seats, unmet obligatory
// prerequisite) independently per candidate. It never fails on an empty
// result; an empty filtered pool for a subject is a diagnostic condition,
// not an engine error.
func loadCandidates(ctx context.Context, catalog CatalogReader, student StudentContext, periodID string) ([]loadedSubject, error) {
	loaded := make([]loadedSubject, 0, len(student.DesiredSubjectIDs))

	for _, subjectID := range student.DesiredSubjectIDs {
		sections, err := catalog.SectionsForSubject(ctx, subjectID, periodID)
		if err != nil {
			return nil, err
		}

		prereqs, err := catalog.SubjectPrerequisites(ctx, subjectID)
		if err != nil {
			return nil, err
		}

		full := make([]Candidate, 0, len(sections))
		filtered := make([]Candidate, 0, len(sections))
		for _, section := range sections {
			cand := NewCandidate(section)
			full = append(full, cand)
			if !passesPrefilter(cand, prereqs, student) {
				continue
			}
			filtered = append(filtered, cand)
		}

		loaded = append(loaded, loadedSubject{subjectID: subjectID, full: full, filtered: filtered})
	}

	return loaded, nil
}

func passesPrefilter(c Candidate, prereqs []Prerequisite, student StudentContext) bool {
	if c.AvailableSeats <= 0 {
		return false
	}
	for _, p := range prereqs {
		if p.Kind != PrerequisiteObligatory {
			continue
		}
		if !student.HasApproved(p.PrerequisiteSubjectID) {
			return false
		}
	}
	return true
}

func flattenFiltered(loaded []loadedSubject) []Candidate {
	var out []Candidate
	for _, l := range loaded {
		out = append(out, l.filtered...)
	}
	return out
}
