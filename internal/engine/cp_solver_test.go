package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCPSolver_MaximizesCoverage(t *testing.T) {
	candidates := []Candidate{
		NewCandidate(section("a1", "A", "P1", "R1", 30, 0, slot(0, 8*60, 10*60))),
		NewCandidate(section("b1", "B", "P2", "R2", 30, 0, slot(0, 8*60, 10*60))), // conflicts with a1
		NewCandidate(section("b2", "B", "P2", "R2", 30, 0, slot(1, 8*60, 10*60))), // doesn't conflict
	}
	pool := NewCandidatePool(candidates)
	solver := newCPSolver([]string{"A", "B"}, pool, time.Second)
	got := solver.solve(context.Background())

	require.Equal(t, StatusOptimal, got.status)
	assert.Len(t, got.assignment, 2)
	assert.Equal(t, "a1", got.assignment["A"].ID)
	assert.Equal(t, "b2", got.assignment["B"].ID)
}

func TestCPSolver_NoCandidatesIsInfeasible(t *testing.T) {
	pool := NewCandidatePool(nil)
	solver := newCPSolver([]string{"A"}, pool, time.Second)
	got := solver.solve(context.Background())

	assert.Equal(t, StatusInfeasible, got.status)
	assert.Empty(t, got.assignment)
}

func TestCPSolver_NoSelectedPairOverlaps(t *testing.T) {
	candidates := []Candidate{
		NewCandidate(section("a1", "A", "P1", "R1", 30, 0, slot(0, 8*60, 10*60))),
		NewCandidate(section("b1", "B", "P2", "R2", 30, 0, slot(0, 9*60, 11*60))),
		NewCandidate(section("c1", "C", "P3", "R3", 30, 0, slot(2, 8*60, 10*60))),
	}
	pool := NewCandidatePool(candidates)
	solver := newCPSolver([]string{"A", "B", "C"}, pool, time.Second)
	got := solver.solve(context.Background())

	sections := got.assignment.SectionsInOrder([]string{"A", "B", "C"})
	for i := 0; i < len(sections); i++ {
		for j := i + 1; j < len(sections); j++ {
			assert.False(t, sections[i].OverlapsWith(sections[j]), "sections %s and %s must not overlap", sections[i].ID, sections[j].ID)
		}
	}
}

func TestCPSolver_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pool := NewCandidatePool([]Candidate{NewCandidate(section("a1", "A", "P1", "R1", 30, 0, slot(0, 8*60, 10*60)))})
	solver := newCPSolver([]string{"A"}, pool, time.Second)
	got := solver.solve(ctx)

	assert.Equal(t, StatusCancelled, got.status)
}
