package engine

import (
	"context"
	"math/rand"

	"github.com/MaxHalford/eaopt"
	"golang.org/x/sync/errgroup"
)

// invalidPenalty dominates any individual that decodes as infeasible (no
// attendable section at all, or two overlapping sections), so tournament
// selection reliably selects it against.
const invalidPenalty = 10000.0

// unassigned is the GA gene sentinel for "no section chosen at this
// position".
const unassigned = ""

// gaPreset is one of the three level presets; crossover rate, mutation
// rate and tournament size are shared across all levels.
type gaPreset struct {
	PopSize     uint
	Generations uint
}

var gaPresets = map[string]gaPreset{
	"low":    {PopSize: 50, Generations: 20},
	"medium": {PopSize: 100, Generations: 50},
	"high":   {PopSize: 200, Generations: 100},
}

const (
	crossoverRate    = 0.7
	mutationRate     = 0.2
	tournamentSize   = 3
)

// gaOutcome is the GA phase's result: the best assignment found and
// whether it is usable (at least one gene resolved and no two resolved
// sections overlapping in time).
type gaOutcome struct {
	assignment Assignment
	fitness    float64
	feasible   bool
}

// runGA executes the metaheuristic optimizer over desiredSubjects using
// pool as the candidate universe. When workers > 1 it runs that many
// independent GA instances concurrently — each seeded from a distinct
// partition of masterSeed so the overall run stays reproducible, and
// keeps the best-ever individual across all of them.
func runGA(ctx context.Context, desiredSubjects []string, pool *CandidatePool, level string, masterSeed int64, workers int) (gaOutcome, error) {
	preset, ok := gaPresets[level]
	if !ok {
		preset = gaPresets["medium"]
	}
	if workers < 1 {
		workers = 1
	}

	outcomes := make([]gaOutcome, workers)
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			seed := masterSeed + int64(w)*-0x61C8864680B583EB
			outcomes[w] = runSingleGA(gctx, desiredSubjects, pool, preset, seed)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return gaOutcome{}, err
	}

	best := outcomes[0]
	for _, o := range outcomes[1:] {
		if o.feasible && (!best.feasible || o.fitness < best.fitness) {
			best = o
		}
	}
	return best, nil
}

func runSingleGA(_ context.Context, desiredSubjects []string, pool *CandidatePool, preset gaPreset, seed int64) gaOutcome {
	genomeFactory := newScheduleGenomeFactory(desiredSubjects, pool)

	conf := eaopt.NewDefaultGAConfig()
	conf.PopSize = preset.PopSize
	conf.NGenerations = preset.Generations
	conf.Model = eaopt.ModGenerational{
		Selector: eaopt.SelTournament{NContestants: tournamentSize},
		MutRate:  mutationRate,
		CrossRate: crossoverRate,
	}

	ga, err := conf.NewGA()
	if err != nil {
		return gaOutcome{feasible: false}
	}
	ga.RNG = rand.New(rand.NewSource(seed))

	if err := ga.Minimize(genomeFactory); err != nil || len(ga.HallOfFame) == 0 {
		return gaOutcome{feasible: false}
	}

	best := ga.HallOfFame[0].Genome.(*scheduleGenome)
	assignment, feasible := best.decode()
	return gaOutcome{
		assignment: assignment,
		fitness:    ga.HallOfFame[0].Fitness,
		feasible:   feasible,
	}
}

// scheduleGenome implements eaopt.Genome over a flat encoding: one gene
// per desired subject, holding either a chosen candidate section id or
// unassigned.
type scheduleGenome struct {
	desiredSubjects []string
	pool            *CandidatePool
	genes           []string
}

func newScheduleGenomeFactory(desiredSubjects []string, pool *CandidatePool) func(rng *rand.Rand) eaopt.Genome {
	return func(rng *rand.Rand) eaopt.Genome {
		genes := make([]string, len(desiredSubjects))
		for i, subjectID := range desiredSubjects {
			genes[i] = pickRandomFeasible(rng, pool, subjectID, genes, i)
		}
		return &scheduleGenome{desiredSubjects: desiredSubjects, pool: pool, genes: genes}
	}
}

// pickRandomFeasible iterates a subject's candidates in random order and
// returns the first that has seats and does not overlap any gene already
// placed.
func pickRandomFeasible(rng *rand.Rand, pool *CandidatePool, subjectID string, genes []string, skipIdx int) string {
	candidates := pool.BySubject[subjectID]
	if len(candidates) == 0 {
		return unassigned
	}
	order := rng.Perm(len(candidates))
	for _, idx := range order {
		cand := candidates[idx]
		if cand.AvailableSeats <= 0 {
			continue
		}
		if conflictsWithGenes(pool, cand, genes, skipIdx) {
			continue
		}
		return cand.ID
	}
	return unassigned
}

func conflictsWithGenes(pool *CandidatePool, cand Candidate, genes []string, skipIdx int) bool {
	for i, geneID := range genes {
		if i == skipIdx || geneID == unassigned {
			continue
		}
		other, ok := pool.ByID(geneID)
		if !ok {
			continue
		}
		if cand.OverlapsWith(other.Section) {
			return true
		}
	}
	return false
}

func (g *scheduleGenome) Clone() eaopt.Genome {
	return &scheduleGenome{
		desiredSubjects: g.desiredSubjects,
		pool:            g.pool,
		genes:           append([]string(nil), g.genes...),
	}
}

// Crossover implements uniform crossover at rate 1.0 here — eaopt's
// ModGenerational already gates whether Crossover is invoked at all using
// CrossRate, so by the time this runs the pair has already been selected
// to mate; per-gene inheritance is then a coin flip.
func (g *scheduleGenome) Crossover(other eaopt.Genome, rng *rand.Rand) {
	o := other.(*scheduleGenome)
	for i := range g.genes {
		if rng.Float64() < 0.5 {
			g.genes[i], o.genes[i] = o.genes[i], g.genes[i]
		}
	}
}

// Mutate picks exactly one position and replaces it with another
// feasibility-preserving candidate, or unassigns it if none exists.
func (g *scheduleGenome) Mutate(rng *rand.Rand) {
	idx := rng.Intn(len(g.genes))
	subjectID := g.desiredSubjects[idx]
	g.genes[idx] = pickRandomFeasible(rng, g.pool, subjectID, g.genes, idx)
}

func (g *scheduleGenome) Evaluate() (float64, error) {
	assignment, feasible := g.decode()
	if !feasible {
		return invalidPenalty, nil
	}
	sections := assignment.SectionsInOrder(g.desiredSubjects)
	return Score(sections), nil
}

// decode resolves non-sentinel genes to sections. feasible is false when
// every gene is unassigned, or when any two resolved sections overlap in
// time. The latter case can only arise from Crossover: it recombines two
// feasible parents position-wise with no repair step, so a child can pair
// up sections that were never checked against each other.
func (g *scheduleGenome) decode() (Assignment, bool) {
	assignment := make(Assignment, len(g.genes))
	for i, geneID := range g.genes {
		if geneID == unassigned {
			continue
		}
		cand, ok := g.pool.ByID(geneID)
		if !ok {
			continue
		}
		assignment[g.desiredSubjects[i]] = cand.Section
	}
	if len(assignment) == 0 {
		return assignment, false
	}
	sections := assignment.SectionsInOrder(g.desiredSubjects)
	for i := 0; i < len(sections); i++ {
		for j := i + 1; j < len(sections); j++ {
			if sections[i].OverlapsWith(sections[j]) {
				return assignment, false
			}
		}
	}
	return assignment, true
}
