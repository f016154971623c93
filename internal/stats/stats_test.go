package stats

import (
	"math"
	"testing"

	"er-dashboard/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentileThreshold(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{name: "Empty", values: nil, want: math.Inf(1)},
		{name: "Single value", values: []float64{0.5}, want: 0.5},
		{name: "Fewer than ten values uses the max", values: []float64{1, 5, 3}, want: 5},
		{name: "Ten values", values: []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, want: 10},
		{name: "Twenty values", values: []float64{
			1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20,
		}, want: 19},
		{name: "Ties land on the index", values: []float64{
			4, 4, 4, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1,
		}, want: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PercentileThreshold(tt.values))
		})
	}
}

func TestPercentileThresholdSplitsTopDecile(t *testing.T) {
	values := make([]float64, 50)
	for i := range values {
		values[i] = float64((i * 37) % 50)
	}

	th := PercentileThreshold(values)
	above := 0
	for _, v := range values {
		if v >= th {
			above++
		}
	}
	assert.Equal(t, 5, above)
}

func TestPercentileThresholdDoesNotMutateInput(t *testing.T) {
	values := []float64{3, 1, 2}
	PercentileThreshold(values)
	assert.Equal(t, []float64{3, 1, 2}, values)
}

func TestMeanStd(t *testing.T) {
	mean, std := MeanStd(nil)
	assert.Zero(t, mean)
	assert.Zero(t, std)

	mean, std = MeanStd([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.InDelta(t, 5.0, mean, 1e-12)
	assert.InDelta(t, 2.0, std, 1e-12)
}

func TestZScores(t *testing.T) {
	assert.Equal(t, []float64{0, 0, 0}, ZScores([]float64{3, 3, 3}))

	z := ZScores([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.InDelta(t, -1.5, z[0], 1e-12)
	assert.InDelta(t, 2.0, z[7], 1e-12)
}

func TestParseDurationToSec(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"1:05:30", 3930, true},
		{"1:15", 75, true},
		{"0:09", 9, true},
		{"75", 75, true},
		{" 12:00 ", 720, true},
		{"", 0, false},
		{"abc", 0, false},
		{"1:xx", 0, false},
		{"1:2:3:4", 0, false},
		{"-1:00", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"1e30", 0, false},
		{"99999999999:00", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseDurationToSec(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatDuration(t *testing.T) {
	sec := func(v int) *int { return &v }

	assert.Equal(t, "-", FormatDuration(nil))
	assert.Equal(t, "1:15", FormatDuration(sec(75)))
	assert.Equal(t, "0:00", FormatDuration(sec(0)))
	assert.Equal(t, "1:05:30", FormatDuration(sec(3930)))
	assert.Equal(t, "10:00:00", FormatDuration(sec(36000)))
}

func TestDurationRoundTrip(t *testing.T) {
	cases := map[string]string{
		"1:05:30": "1:05:30",
		"1:15":    "1:15",
		"75":      "1:15",
		"0:1:05":  "1:05",
		"59:59":   "59:59",
	}

	for in, want := range cases {
		sec, ok := ParseDurationToSec(in)
		require.True(t, ok, in)
		assert.Equal(t, want, FormatDuration(&sec), in)
	}
}

func TestDurationSeconds(t *testing.T) {
	v, ok := DurationSeconds(42)
	assert.True(t, ok)
	assert.Equal(t, 42.0, v)

	v, ok = DurationSeconds(12.5)
	assert.True(t, ok)
	assert.Equal(t, 12.5, v)

	v, ok = DurationSeconds("2:00")
	assert.True(t, ok)
	assert.Equal(t, 120.0, v)

	_, ok = DurationSeconds(nil)
	assert.False(t, ok)

	var missing *int
	_, ok = DurationSeconds(missing)
	assert.False(t, ok)

	_, ok = DurationSeconds("n/a")
	assert.False(t, ok)

	for _, bad := range []any{math.NaN(), math.Inf(1), 1e30, "1e30"} {
		_, ok = DurationSeconds(bad)
		assert.False(t, ok, "%v", bad)
	}
}

func sampleRoster() []domain.CharacterSummary {
	sec := func(v int) *int { return &v }
	return []domain.CharacterSummary{
		{ID: 1, Name: "Hyunwoo", WinRate: 0.52, PickRate: 0.05, MMRGain: 8, Tier: domain.TierA, AvgSurvival: sec(400)},
		{ID: 2, Name: "Aya", WinRate: 0.48, PickRate: 0.07, MMRGain: 6, Tier: domain.TierB},
		{ID: 3, Name: "Jackie", WinRate: 0.52, PickRate: 0.02, MMRGain: 11, Tier: domain.TierS, AvgSurvival: sec(650)},
		{ID: 4, Name: "Magnus", WinRate: 0.55, PickRate: 0.05, MMRGain: 4, Tier: domain.TierC, AvgSurvival: sec(90)},
		{ID: 5, Name: "Fiora", WinRate: 0.45, PickRate: 0.09, MMRGain: 9, Tier: domain.TierA},
	}
}

func ids(rows []domain.CharacterSummary) []int {
	out := make([]int, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

func TestSortNumeric(t *testing.T) {
	roster := sampleRoster()

	assert.Equal(t, []int{5, 2, 1, 3, 4}, ids(Sort(roster, domain.KeyWinRate, Asc)))
	assert.Equal(t, []int{4, 1, 3, 2, 5}, ids(Sort(roster, domain.KeyWinRate, Desc)))
}

func TestSortDirectionReversesNonTiedRows(t *testing.T) {
	roster := sampleRoster()

	asc := Sort(roster, domain.KeyMMRGain, Asc)
	desc := Sort(roster, domain.KeyMMRGain, Desc)
	require.Len(t, desc, len(asc))
	for i := range asc {
		assert.Equal(t, asc[i].ID, desc[len(desc)-1-i].ID)
	}
}

func TestSortIsIdempotent(t *testing.T) {
	roster := sampleRoster()

	first := Sort(roster, domain.KeyPickRate, Desc)
	second := Sort(roster, domain.KeyPickRate, Desc)
	assert.Equal(t, ids(first), ids(second))
	assert.Equal(t, ids(first), ids(Sort(first, domain.KeyPickRate, Desc)))
}

func TestSortKeepsInputOrderOnTies(t *testing.T) {
	roster := sampleRoster()

	// ids 1 and 4 share pick rate 0.05
	assert.Equal(t, []int{3, 1, 4, 2, 5}, ids(Sort(roster, domain.KeyPickRate, Asc)))
	assert.Equal(t, []int{5, 2, 1, 4, 3}, ids(Sort(roster, domain.KeyPickRate, Desc)))
}

func TestSortStrings(t *testing.T) {
	roster := sampleRoster()
	assert.Equal(t, []int{2, 5, 1, 3, 4}, ids(Sort(roster, domain.KeyName, Asc)))
}

func TestSortDurationMissingIsLowest(t *testing.T) {
	roster := sampleRoster()

	assert.Equal(t, []int{2, 5, 4, 1, 3}, ids(Sort(roster, domain.KeyAvgSurvival, Asc)))
	assert.Equal(t, []int{3, 1, 4, 2, 5}, ids(Sort(roster, domain.KeyAvgSurvival, Desc)))
}

func TestSortDoesNotMutateInput(t *testing.T) {
	roster := sampleRoster()
	Sort(roster, domain.KeyWinRate, Asc)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, ids(roster))
}

func TestSortTier(t *testing.T) {
	roster := sampleRoster()
	assert.Equal(t, []int{3, 1, 5, 2, 4}, ids(Sort(roster, domain.KeyTier, Asc)))
}

func TestParseDirection(t *testing.T) {
	assert.Equal(t, Asc, ParseDirection("ASC"))
	assert.Equal(t, Desc, ParseDirection("desc"))
	assert.Equal(t, Desc, ParseDirection(""))
}
