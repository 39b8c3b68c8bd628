package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiagnose_NoCandidates(t *testing.T) {
	loaded := []loadedSubject{{subjectID: "S1"}}
	reports := diagnose(loaded, Assignment{})
	assert.Equal(t, ReasonNoCandidates, reports[0].Reason)
}

func TestDiagnose_AllConflicting(t *testing.T) {
	chosen := section("chosen", "S1", "P1", "R1", 30, 0, slot(0, 480, 600))
	cand := NewCandidate(section("cand", "S2", "P2", "R2", 30, 0, slot(0, 540, 660)))
	loaded := []loadedSubject{{subjectID: "S2", full: []Candidate{cand}, filtered: []Candidate{cand}}}

	reports := diagnose(loaded, Assignment{"S1": chosen})

	assert.Equal(t, ReasonAllConflicting, reports[0].Reason)
	assert.Len(t, reports[0].Candidates[0].Conflicts, 1)
	assert.Equal(t, "chosen", reports[0].Candidates[0].Conflicts[0].SectionID)
}

func TestDiagnose_PartialConflicting(t *testing.T) {
	chosen := section("chosen", "S1", "P1", "R1", 30, 0, slot(0, 480, 600))
	conflicting := NewCandidate(section("cand-conflict", "S2", "P2", "R2", 30, 0, slot(0, 540, 660)))
	free := NewCandidate(section("cand-free", "S2", "P3", "R3", 30, 0, slot(1, 540, 660)))
	loaded := []loadedSubject{{subjectID: "S2", full: []Candidate{conflicting, free}, filtered: []Candidate{conflicting, free}}}

	reports := diagnose(loaded, Assignment{"S1": chosen})

	assert.Equal(t, ReasonPartialConflicting, reports[0].Reason)
}

func TestDiagnose_SkipsAssignedSubjects(t *testing.T) {
	chosen := section("chosen", "S1", "P1", "R1", 30, 0, slot(0, 480, 600))
	loaded := []loadedSubject{{subjectID: "S1", full: []Candidate{NewCandidate(chosen)}}}

	reports := diagnose(loaded, Assignment{"S1": chosen})
	assert.Empty(t, reports)
}
