package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPool() *CandidatePool {
	return NewCandidatePool([]Candidate{
		NewCandidate(section("s1a", "S1", "P1", "R1", 30, 0, slot(0, 14*60, 16*60))),
		NewCandidate(section("s1b", "S1", "P2", "R2", 30, 0, slot(0, 8*60, 10*60))),
		NewCandidate(section("s2a", "S2", "P3", "R3", 30, 0, slot(0, 10*60, 12*60))),
	})
}

func TestScheduleGenome_DecodeAllUnassignedIsInfeasible(t *testing.T) {
	g := &scheduleGenome{desiredSubjects: []string{"S1", "S2"}, pool: testPool(), genes: []string{unassigned, unassigned}}
	_, feasible := g.decode()
	assert.False(t, feasible)

	score, err := g.Evaluate()
	require.NoError(t, err)
	assert.Equal(t, invalidPenalty, score)
}

func TestScheduleGenome_CrossoverStaysWithinGeneAlphabet(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	pool := testPool()
	g1 := &scheduleGenome{desiredSubjects: []string{"S1", "S2"}, pool: pool, genes: []string{"s1a", "s2a"}}
	g2 := &scheduleGenome{desiredSubjects: []string{"S1", "S2"}, pool: pool, genes: []string{"s1b", unassigned}}

	g1.Crossover(g2, rng)

	for _, gene := range g1.genes {
		if gene == unassigned {
			continue
		}
		_, ok := pool.ByID(gene)
		assert.True(t, ok)
	}
}

func TestScheduleGenome_MutateProducesFeasibleOrUnassignedGene(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	pool := testPool()
	g := &scheduleGenome{desiredSubjects: []string{"S1", "S2"}, pool: pool, genes: []string{"s1a", "s2a"}}

	for i := 0; i < 20; i++ {
		g.Mutate(rng)
		assignment, _ := g.decode()
		sections := assignment.SectionsInOrder(g.desiredSubjects)
		for i := 0; i < len(sections); i++ {
			for j := i + 1; j < len(sections); j++ {
				assert.False(t, sections[i].OverlapsWith(sections[j]))
			}
		}
	}
}

func TestScheduleGenome_CrossoverCanProduceOverlapAndDecodeRejectsIt(t *testing.T) {
	// s1a (Mon 08-10) overlaps s2a (Mon 09-11); neither overlaps their own
	// parent's original pairing. Swapping gene 0 between two otherwise
	// feasible parents produces a child holding both.
	pool := NewCandidatePool([]Candidate{
		NewCandidate(section("s1a", "S1", "P1", "R1", 30, 0, slot(0, 8*60, 10*60))),
		NewCandidate(section("s1b", "S1", "P2", "R2", 30, 0, slot(1, 9*60, 11*60))),
		NewCandidate(section("s2a", "S2", "P3", "R3", 30, 0, slot(0, 9*60, 11*60))),
	})

	g1 := &scheduleGenome{desiredSubjects: []string{"S1", "S2"}, pool: pool, genes: []string{"s1a", unassigned}}
	g2 := &scheduleGenome{desiredSubjects: []string{"S1", "S2"}, pool: pool, genes: []string{"s1b", "s2a"}}

	g1.genes[0], g2.genes[0] = g2.genes[0], g1.genes[0]

	_, feasible := g2.decode()
	assert.False(t, feasible, "decode must flag a child holding s1a-plus-s2a as infeasible since they overlap")

	score, err := g2.Evaluate()
	require.NoError(t, err)
	assert.Equal(t, invalidPenalty, score, "an overlapping decode must score as invalid, never as a zero-gap win")
}

func TestScheduleGenome_CloneIsIndependent(t *testing.T) {
	pool := testPool()
	g := &scheduleGenome{desiredSubjects: []string{"S1"}, pool: pool, genes: []string{"s1a"}}
	clone := g.Clone().(*scheduleGenome)
	clone.genes[0] = "s1b"

	assert.Equal(t, "s1a", g.genes[0])
	assert.Equal(t, "s1b", clone.genes[0])
}
