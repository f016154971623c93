package honey

import (
	"testing"

	"er-dashboard/internal/domain"
	"er-dashboard/internal/mock"
	"er-dashboard/internal/rng"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func character(id int, win, pick, mmr float64) domain.CharacterSummary {
	return domain.CharacterSummary{ID: id, WinRate: win, PickRate: pick, MMRGain: mmr}
}

func TestSelectEmpty(t *testing.T) {
	res := Select(nil, Options{})
	assert.Equal(t, ModeNone, res.Mode)
	assert.Empty(t, res.IDs)
}

func TestSelectTriple(t *testing.T) {
	roster := make([]domain.CharacterSummary, 0, 20)
	for i := 1; i <= 18; i++ {
		roster = append(roster, character(i, 0.45+float64(i)*0.001, 0.02+float64(i)*0.001, 5+float64(i)*0.1))
	}
	// both clear all three top-decile cuts
	roster = append(roster, character(19, 0.58, 0.10, 14))
	roster = append(roster, character(20, 0.59, 0.11, 13))

	res := Select(roster, Options{})
	assert.Equal(t, ModeTriple, res.Mode)
	assert.Equal(t, []int{19, 20}, res.IDs)
	assert.True(t, res.Contains(19))
	assert.False(t, res.Contains(1))
}

func TestSelectFallbackWhenNobodyClearsAllThree(t *testing.T) {
	// each metric has a different leader
	roster := []domain.CharacterSummary{
		character(1, 0.60, 0.02, 4),
		character(2, 0.45, 0.11, 4),
		character(3, 0.45, 0.02, 15),
		character(4, 0.50, 0.05, 8),
		character(5, 0.48, 0.04, 7),
	}

	res := Select(roster, Options{TopK: 2})
	assert.Equal(t, ModeFallback, res.Mode)
	assert.Len(t, res.IDs, 2)

	for _, id := range res.IDs {
		assert.Contains(t, []int{1, 2, 3, 4, 5}, id)
	}
}

func TestSelectFallbackDefaultK(t *testing.T) {
	roster := []domain.CharacterSummary{
		character(1, 0.60, 0.02, 4),
		character(2, 0.45, 0.11, 4),
		character(3, 0.45, 0.02, 15),
	}

	res := Select(roster, Options{})
	require.Equal(t, ModeFallback, res.Mode)
	assert.Len(t, res.IDs, 1)
	// win rate carries the biggest weight
	assert.Equal(t, []int{1}, res.IDs)
}

func TestSelectFallbackFraction(t *testing.T) {
	roster := []domain.CharacterSummary{
		character(1, 0.60, 0.02, 4),
		character(2, 0.45, 0.11, 4),
		character(3, 0.45, 0.02, 15),
		character(4, 0.50, 0.05, 8),
	}

	res := Select(roster, Options{TopFraction: 0.5})
	assert.Equal(t, ModeFallback, res.Mode)
	assert.Len(t, res.IDs, 2)
}

func TestSelectTripleTakesPrecedence(t *testing.T) {
	// one dominant row: triple mode must win even when a fallback K is given
	roster := []domain.CharacterSummary{
		character(1, 0.60, 0.11, 15),
		character(2, 0.45, 0.02, 4),
		character(3, 0.46, 0.03, 5),
	}

	res := Select(roster, Options{TopK: 3})
	assert.Equal(t, ModeTriple, res.Mode)
	assert.Equal(t, []int{1}, res.IDs)
}

func TestSelectSingleCharacter(t *testing.T) {
	res := Select([]domain.CharacterSummary{character(7, 0.5, 0.05, 8)}, Options{})
	assert.Equal(t, ModeTriple, res.Mode)
	assert.Equal(t, []int{7}, res.IDs)
}

func TestSelectFallbackTiesBrokenByID(t *testing.T) {
	// identical rows give identical scores; lower ids win
	roster := []domain.CharacterSummary{
		character(3, 0.60, 0.02, 4),
		character(1, 0.45, 0.11, 15),
		character(2, 0.45, 0.11, 15),
		character(4, 0.50, 0.05, 8),
	}

	res := Select(roster, Options{TopK: 1})
	require.Equal(t, ModeFallback, res.Mode)
	assert.Equal(t, []int{1}, res.IDs)
}

func TestSelectOnMockRoster(t *testing.T) {
	roster, _ := mock.GenerateRoster(50, rng.New(2024))

	res := Select(roster, Options{})
	require.NotEqual(t, ModeNone, res.Mode)
	require.NotEmpty(t, res.IDs)

	if res.Mode == ModeTriple {
		th := ComputeThresholds(roster)
		set := res.Set()
		for _, c := range roster {
			qualifies := c.WinRate >= th.WinRate && c.PickRate >= th.PickRate && c.MMRGain >= th.MMRGain
			_, in := set[c.ID]
			assert.Equal(t, qualifies, in, "character %d", c.ID)
		}
	} else {
		assert.LessOrEqual(t, len(res.IDs), 5)
	}
}

func TestBlendedScoresFlatRoster(t *testing.T) {
	roster := []domain.CharacterSummary{
		character(1, 0.5, 0.05, 8),
		character(2, 0.5, 0.05, 8),
	}
	scores := BlendedScores(roster)
	assert.Equal(t, 0.0, scores[1])
	assert.Equal(t, 0.0, scores[2])
}
