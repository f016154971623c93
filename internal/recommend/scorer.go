// Package recommend ranks three member teams from pairwise synergy, solo
// strength and a cluster prior.
package recommend

import (
	"sort"

	"er-dashboard/internal/domain"
)

const (
	WeightSynergy      = 0.5
	WeightSolo         = 0.3
	WeightClusterPrior = 0.2

	// NeutralScore stands in for any pair or solo value the tables lack.
	NeutralScore = 0.5
	// ClusterPrior is a constant until a real cluster signal exists.
	ClusterPrior = 0.5

	DefaultTopK = 5
	// CandidateCapFactor times topK bounds how many triples are generated.
	CandidateCapFactor = 40

	MaxAnchorLists = 3
)

// Estimate ranges the blended score is projected onto.
const (
	estWinMin, estWinMax   = 0.40, 0.60
	estPickMin, estPickMax = 0.001, 0.02
	estMMRMin, estMMRMax   = 3.0, 15.0
)

type triple [3]int

func (t triple) sorted() triple {
	s := t
	sort.Ints(s[:])
	return s
}

func (t triple) valid() bool {
	return t[0] != t[1] && t[1] != t[2] && t[0] != t[2]
}

type generator struct {
	limit int
	seen  map[triple]struct{}
	cands []triple
}

func newGenerator(limit int) *generator {
	return &generator{limit: limit, seen: make(map[triple]struct{})}
}

func (g *generator) full() bool {
	return len(g.cands) >= g.limit
}

// add records t, in slot order, unless it repeats an id or a set already
// seen. It reports whether generation may continue.
func (g *generator) add(t triple) bool {
	if g.full() {
		return false
	}
	if !t.valid() {
		return true
	}
	key := t.sorted()
	if _, dup := g.seen[key]; dup {
		return true
	}
	g.seen[key] = struct{}{}
	g.cands = append(g.cands, t)
	return !g.full()
}

// Suggest returns up to topK teams ranked by blended score.
//
// Non-empty anchor lists fix one member slot each (at most three lists are
// used); the remaining slots are filled from pool. Generation stops once
// topK*CandidateCapFactor distinct triples exist, so on large pools the result
// is the best of the first candidates in slot order rather than a global
// optimum.
func Suggest(anchors [][]int, pool []int, tables domain.SynergyTables, topK int) []domain.CompSuggestion {
	if topK <= 0 {
		topK = DefaultTopK
	}

	lists := make([][]int, 0, MaxAnchorLists)
	for _, a := range anchors {
		if len(a) == 0 {
			continue
		}
		lists = append(lists, a)
		if len(lists) == MaxAnchorLists {
			break
		}
	}

	g := newGenerator(topK * CandidateCapFactor)
	switch len(lists) {
	case 3:
		crossThree(g, lists[0], lists[1], lists[2])
	case 2:
		crossThree(g, lists[0], lists[1], pool)
	case 1:
		anchorWithPoolPairs(g, lists[0], pool)
	default:
		poolTriples(g, pool)
	}

	modeled := len(lists) < MaxAnchorLists
	out := make([]domain.CompSuggestion, 0, len(g.cands))
	for _, c := range g.cands {
		out = append(out, score(c, tables, modeled))
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return lessTriple(triple(out[i].Members).sorted(), triple(out[j].Members).sorted())
	})

	if len(out) > topK {
		out = out[:topK]
	}
	return out
}

func crossThree(g *generator, a, b, c []int) {
	for _, x := range a {
		for _, y := range b {
			for _, z := range c {
				if !g.add(triple{x, y, z}) {
					return
				}
			}
		}
	}
}

func anchorWithPoolPairs(g *generator, anchor, pool []int) {
	for _, x := range anchor {
		for i := 0; i < len(pool); i++ {
			for j := i + 1; j < len(pool); j++ {
				if !g.add(triple{x, pool[i], pool[j]}) {
					return
				}
			}
		}
	}
}

func poolTriples(g *generator, pool []int) {
	for i := 0; i < len(pool); i++ {
		for j := i + 1; j < len(pool); j++ {
			for k := j + 1; k < len(pool); k++ {
				if !g.add(triple{pool[i], pool[j], pool[k]}) {
					return
				}
			}
		}
	}
}

// Score evaluates a single team outside of the generation loop.
func Score(members [3]int, tables domain.SynergyTables, modeled bool) domain.CompSuggestion {
	return score(triple(members), tables, modeled)
}

func score(t triple, tables domain.SynergyTables, modeled bool) domain.CompSuggestion {
	syn := (pairValue(tables, t[0], t[1]) + pairValue(tables, t[0], t[2]) + pairValue(tables, t[1], t[2])) / 3
	solo := (soloValue(tables, t[0]) + soloValue(tables, t[1]) + soloValue(tables, t[2])) / 3

	breakdown := domain.ScoreBreakdown{
		Synergy:      WeightSynergy * syn,
		Solo:         WeightSolo * solo,
		ClusterPrior: WeightClusterPrior * ClusterPrior,
	}
	total := breakdown.Synergy + breakdown.Solo + breakdown.ClusterPrior

	return domain.CompSuggestion{
		Members:     [3]int(t),
		Score:       total,
		EstWinRate:  lerp(estWinMin, estWinMax, total),
		EstPickRate: lerp(estPickMin, estPickMax, solo),
		EstMMRGain:  lerp(estMMRMin, estMMRMax, total),
		Breakdown:   breakdown,
		Modeled:     modeled,
	}
}

func pairValue(tables domain.SynergyTables, a, b int) float64 {
	if v, ok := tables.Pair[domain.NewPairKey(a, b)]; ok {
		return v
	}
	return NeutralScore
}

func soloValue(tables domain.SynergyTables, id int) float64 {
	if v, ok := tables.Solo[id]; ok {
		return v
	}
	return NeutralScore
}

func lerp(lo, hi, t float64) float64 {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return lo + (hi-lo)*t
}

func lessTriple(a, b [3]int) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
