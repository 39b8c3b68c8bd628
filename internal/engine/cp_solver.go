package engine

import (
	"context"
	"sort"
	"time"
)

// cpResult is the feasibility solver's output before it is wrapped into a
// full engine Result: the best assignment found (its coverage is the
// assignment's length) and a status saying whether the search proved
// optimality or was cut short.
type cpResult struct {
	assignment Assignment
	status     Status
}

// cpSolver explores, per desired subject in order, either skipping the
// subject or attending one of its filtered candidates, backtracking when a
// choice would violate time-exclusivity. It maximizes coverage (number of
// desired subjects attended) via branch-and-bound: a branch is pruned once
// the subjects remaining cannot possibly beat the best coverage already
// found.
//
// Professor and classroom exclusivity are implied by student exclusivity
// in this single-student model: every pair of sections in an Assignment
// belongs to the same student, so any pair sharing a professor or
// classroom that overlaps in time is already excluded by the general
// no-overlap check. No separate constraint is needed for them.
type cpSolver struct {
	subjects  []string
	bySubject map[string][]Candidate
	deadline  time.Time

	best      Assignment
	bestCount int
}

func newCPSolver(subjects []string, pool *CandidatePool, timeout time.Duration) *cpSolver {
	bySubject := make(map[string][]Candidate, len(subjects))
	for _, s := range subjects {
		list := append([]Candidate(nil), pool.BySubject[s]...)
		sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
		bySubject[s] = list
	}
	return &cpSolver{
		subjects:  subjects,
		bySubject: bySubject,
		deadline:  time.Now().Add(timeout),
	}
}

// solve runs the backtracking search. ctx is checked for cooperative
// cancellation between branches; a cancelled run returns status
// CANCELLED with whatever assignment was best-so-far.
func (s *cpSolver) solve(ctx context.Context) cpResult {
	current := make(Assignment, len(s.subjects))
	aborted := s.search(ctx, 0, current)
	if s.best == nil {
		s.best = Assignment{}
	}

	switch {
	case aborted && ctx.Err() != nil:
		return cpResult{assignment: s.best, status: StatusCancelled}
	case s.bestCount == 0 && aborted:
		return cpResult{assignment: s.best, status: StatusUnknown}
	case s.bestCount == 0:
		return cpResult{assignment: s.best, status: StatusInfeasible}
	case aborted:
		return cpResult{assignment: s.best, status: StatusFeasible}
	default:
		return cpResult{assignment: s.best, status: StatusOptimal}
	}
}

// search explores position idx of the subject order. Returns true if the
// search was aborted (cancellation or timeout) before completing.
func (s *cpSolver) search(ctx context.Context, idx int, current Assignment) (aborted bool) {
	select {
	case <-ctx.Done():
		return true
	default:
	}
	if time.Now().After(s.deadline) {
		return true
	}

	if idx == len(s.subjects) {
		if len(current) > s.bestCount {
			s.bestCount = len(current)
			s.best = cloneAssignment(current)
		}
		return false
	}

	remaining := len(s.subjects) - idx
	if len(current)+remaining <= s.bestCount {
		// Even attending every remaining subject can't beat the
		// incumbent; prune without affecting optimality of the
		// overall search.
		return false
	}

	subjectID := s.subjects[idx]

	for _, cand := range s.bySubject[subjectID] {
		if cand.AvailableSeats <= 0 {
			continue
		}
		if assignmentConflicts(current, cand) {
			continue
		}
		current[subjectID] = cand.Section
		if s.search(ctx, idx+1, current) {
			delete(current, subjectID)
			return true
		}
		delete(current, subjectID)
	}

	return s.search(ctx, idx+1, current)
}

func assignmentConflicts(current Assignment, cand Candidate) bool {
	for _, chosen := range current {
		if cand.OverlapsWith(chosen) {
			return true
		}
	}
	return false
}

func cloneAssignment(a Assignment) Assignment {
	out := make(Assignment, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}
