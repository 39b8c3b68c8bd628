package engine

import "fmt"

// diagnose builds the UnassignedReport for every desired subject not
// present in the final assignment. It is computed against the full
// (pre-filter-inclusive) candidate pool so a user can see why a
// reasonable-looking section was excluded.
func diagnose(loaded []loadedSubject, assignment Assignment) []UnassignedReport {
	chosen := make([]Section, 0, len(assignment))
	for _, s := range assignment {
		chosen = append(chosen, s)
	}

	var reports []UnassignedReport
	for _, subject := range loaded {
		if _, ok := assignment[subject.subjectID]; ok {
			continue
		}

		report := UnassignedReport{SubjectID: subject.subjectID}
		if code, name, ok := subjectLabel(subject); ok {
			report.SubjectCode, report.SubjectName = code, name
		}

		if len(subject.filtered) == 0 {
			report.Reason = ReasonNoCandidates
			reports = append(reports, report)
			continue
		}

		allConflicting := true
		for _, cand := range subject.full {
			conflicts := conflictsFor(cand, chosen)
			if len(conflicts) == 0 {
				allConflicting = false
			}
			report.Candidates = append(report.Candidates, CandidateConflicts{
				SectionID: cand.ID,
				Conflicts: conflicts,
			})
		}

		if allConflicting {
			report.Reason = ReasonAllConflicting
		} else {
			report.Reason = ReasonPartialConflicting
		}
		reports = append(reports, report)
	}
	return reports
}

func conflictsFor(cand Candidate, chosen []Section) []SectionConflict {
	var conflicts []SectionConflict
	for _, s := range chosen {
		if !cand.OverlapsWith(s) {
			continue
		}
		conflicts = append(conflicts, SectionConflict{
			SectionID:   s.ID,
			SubjectID:   s.SubjectID,
			SubjectCode: s.SubjectCode,
			SubjectName: s.SubjectName,
			Kind:        TimeOverlapConflict,
		})
	}
	return conflicts
}

func subjectLabel(subject loadedSubject) (code, name string, ok bool) {
	if len(subject.full) == 0 {
		return "", "", false
	}
	first := subject.full[0]
	return first.SubjectCode, first.SubjectName, true
}

// summarizeConflicts builds the human-readable conflicts list attached
// to an infeasible Result.
func summarizeConflicts(unassigned []UnassignedReport) []string {
	if len(unassigned) == 0 {
		return nil
	}

	var noCandidates, conflicting int
	for _, u := range unassigned {
		switch u.Reason {
		case ReasonNoCandidates:
			noCandidates++
		case ReasonAllConflicting, ReasonPartialConflicting:
			conflicting++
		}
	}

	var messages []string
	if noCandidates > 0 {
		messages = append(messages, pluralMessage(noCandidates, "no sections available for %d desired subject", "no sections available for %d desired subjects"))
	}
	if conflicting > 0 {
		messages = append(messages, pluralMessage(conflicting, "%d desired subject has unresolvable time overlap with the chosen schedule", "%d desired subjects have unresolvable time overlap with the chosen schedule"))
	}
	return messages
}

func pluralMessage(n int, singular, plural string) string {
	format := plural
	if n == 1 {
		format = singular
	}
	return fmt.Sprintf(format, n)
}
