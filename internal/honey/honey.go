// Package honey flags the top performers of a roster.
//
// The strict pass keeps characters sitting in the top decile of win rate,
// pick rate and MMR gain at once. Small or skewed rosters often have nobody
// clearing all three, so when that pass comes back empty the selector ranks
// everyone by a blended z-score and keeps the best K instead.
package honey

import (
	"math"
	"sort"

	"er-dashboard/internal/domain"
	"er-dashboard/internal/stats"
)

type Mode string

const (
	ModeNone     Mode = "none"
	ModeTriple   Mode = "triple"
	ModeFallback Mode = "fallback"
)

// Blend weights for the fallback ranking.
const (
	WeightWinRate  = 0.4
	WeightPickRate = 0.3
	WeightMMRGain  = 0.3
)

const DefaultTopFraction = stats.TopDecile

type Options struct {
	// TopK caps the fallback selection. Zero derives it from TopFraction.
	TopK int
	// TopFraction of the roster kept by the fallback, rounded up, at least one.
	TopFraction float64
}

type Result struct {
	IDs  []int `json:"ids"`
	Mode Mode  `json:"mode"`
}

func (r Result) Contains(id int) bool {
	for _, v := range r.IDs {
		if v == id {
			return true
		}
	}
	return false
}

// Set returns the qualifying ids as a lookup set.
func (r Result) Set() map[int]struct{} {
	set := make(map[int]struct{}, len(r.IDs))
	for _, id := range r.IDs {
		set[id] = struct{}{}
	}
	return set
}

type Thresholds struct {
	WinRate  float64 `json:"winRate"`
	PickRate float64 `json:"pickRate"`
	MMRGain  float64 `json:"mmrGain"`
}

func ComputeThresholds(roster []domain.CharacterSummary) Thresholds {
	win, pick, mmr := columns(roster)
	return Thresholds{
		WinRate:  stats.PercentileThreshold(win),
		PickRate: stats.PercentileThreshold(pick),
		MMRGain:  stats.PercentileThreshold(mmr),
	}
}

func Select(roster []domain.CharacterSummary, opts Options) Result {
	if len(roster) == 0 {
		return Result{IDs: []int{}, Mode: ModeNone}
	}

	th := ComputeThresholds(roster)
	var triple []int
	for _, c := range roster {
		if c.WinRate >= th.WinRate && c.PickRate >= th.PickRate && c.MMRGain >= th.MMRGain {
			triple = append(triple, c.ID)
		}
	}
	if len(triple) > 0 {
		return Result{IDs: triple, Mode: ModeTriple}
	}

	return Result{IDs: fallback(roster, topK(len(roster), opts)), Mode: ModeFallback}
}

// BlendedScores returns the weighted z-score per character id.
func BlendedScores(roster []domain.CharacterSummary) map[int]float64 {
	win, pick, mmr := columns(roster)
	zw, zp, zm := stats.ZScores(win), stats.ZScores(pick), stats.ZScores(mmr)

	scores := make(map[int]float64, len(roster))
	for i, c := range roster {
		scores[c.ID] = WeightWinRate*zw[i] + WeightPickRate*zp[i] + WeightMMRGain*zm[i]
	}
	return scores
}

func fallback(roster []domain.CharacterSummary, k int) []int {
	scores := BlendedScores(roster)

	ids := make([]int, len(roster))
	for i, c := range roster {
		ids[i] = c.ID
	}
	sort.SliceStable(ids, func(i, j int) bool {
		si, sj := scores[ids[i]], scores[ids[j]]
		if si != sj {
			return si > sj
		}
		return ids[i] < ids[j]
	})

	if k > len(ids) {
		k = len(ids)
	}
	return ids[:k]
}

func topK(n int, opts Options) int {
	if opts.TopK > 0 {
		return opts.TopK
	}
	frac := opts.TopFraction
	if frac <= 0 {
		frac = DefaultTopFraction
	}
	k := int(math.Ceil(frac * float64(n)))
	if k < 1 {
		k = 1
	}
	return k
}

func columns(roster []domain.CharacterSummary) (win, pick, mmr []float64) {
	win = make([]float64, len(roster))
	pick = make([]float64, len(roster))
	mmr = make([]float64, len(roster))
	for i, c := range roster {
		win[i] = c.WinRate
		pick[i] = c.PickRate
		mmr[i] = c.MMRGain
	}
	return win, pick, mmr
}
