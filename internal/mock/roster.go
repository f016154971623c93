// Package mock produces reproducible fixture data that stands in for the
// stats backend. Output depends only on the seed and the requested sizes.
package mock

import (
	"fmt"
	"math"

	"er-dashboard/internal/domain"
	"er-dashboard/internal/rng"
)

var characterNames = []string{
	"Jackie", "Aya", "Fiora", "Magnus", "Zahir", "Nadine", "Hyunwoo", "Hart",
	"Isol", "Li Dailin", "Yuki", "Hyejin", "Xiukai", "Chiara", "Sissela", "Silvia",
	"Adriana", "Shoichi", "Emma", "Lenox", "Rozzi", "Luke", "Cathy", "Adela",
	"Bernice", "Barbara", "Alex", "Sua", "Leon", "Eleven", "Rio", "William",
	"Nicky", "Nathapon", "Jan", "Eva", "Daniel", "Jenny", "Camilo", "Chloe",
}

var weapons = []string{
	"Glove", "Tonfa", "Bat", "Whip", "Throw", "Shuriken", "Bow", "Crossbow",
	"Pistol", "Assault Rifle", "Sniper Rifle", "Hammer", "Axe", "Dagger",
	"Two-handed Sword", "Dual Swords", "Spear", "Nunchaku", "Rapier", "Guitar",
	"Camera", "Arcana",
}

var rankBrackets = []string{"Platinum+", "Diamond+", "Meteorite+", "Mithril+"}

const (
	minWinRate  = 0.40
	maxWinRate  = 0.60
	minPickRate = 0.01
	maxPickRate = 0.11
	minMMRGain  = 3.0
	maxMMRGain  = 15.0

	minSurvival = 240
	maxSurvival = 960

	minVariantPickRate = 0.001
)

// variantOffsets perturb the primary weapon stats for the synthetic builds.
var variantOffsets = []struct {
	win, pick, mmr float64
}{
	{win: -0.020, pick: -0.015, mmr: -1.5},
	{win: 0.010, pick: -0.025, mmr: -0.8},
}

// GenerateRoster returns n characters with ids 1..n and the weapon variant
// table for them. The generator is advanced; pass a fresh one for
// reproducible output.
func GenerateRoster(n int, r *rng.Rand) ([]domain.CharacterSummary, domain.VariantTable) {
	if n <= 0 {
		return []domain.CharacterSummary{}, domain.VariantTable{}
	}

	roster := make([]domain.CharacterSummary, 0, n)
	variants := make(domain.VariantTable, n)

	for i := 0; i < n; i++ {
		id := i + 1
		weaponIdx := i % len(weapons)

		survival := minSurvival + r.Intn(maxSurvival-minSurvival)
		c := domain.CharacterSummary{
			ID:          id,
			Name:        characterName(i),
			Weapon:      weapons[weaponIdx],
			WinRate:     round4(r.Range(minWinRate, maxWinRate)),
			PickRate:    round4(r.Range(minPickRate, maxPickRate)),
			MMRGain:     round2(r.Range(minMMRGain, maxMMRGain)),
			Tier:        domain.Tiers[i%len(domain.Tiers)],
			RankBracket: rankBrackets[i%len(rankBrackets)],
			AvgSurvival: &survival,
			Image:       fmt.Sprintf("/characters/%d.png", id),
		}
		roster = append(roster, c)

		extra := 1 + r.Intn(len(variantOffsets))
		stats := make([]domain.WeaponStat, 0, 1+extra)
		stats = append(stats, domain.WeaponStat{
			CharacterID: id,
			Weapon:      c.Weapon,
			WinRate:     c.WinRate,
			PickRate:    c.PickRate,
			MMRGain:     c.MMRGain,
			Primary:     true,
		})
		for k := 0; k < extra; k++ {
			off := variantOffsets[k]
			stats = append(stats, domain.WeaponStat{
				CharacterID: id,
				Weapon:      weapons[(weaponIdx+k+1)%len(weapons)],
				WinRate:     round4(c.WinRate + off.win),
				PickRate:    round4(math.Max(minVariantPickRate, c.PickRate+off.pick)),
				MMRGain:     round2(c.MMRGain + off.mmr),
			})
		}
		variants[id] = stats
	}

	return roster, variants
}

func characterName(i int) string {
	base := characterNames[i%len(characterNames)]
	if lap := i / len(characterNames); lap > 0 {
		return fmt.Sprintf("%s %d", base, lap+1)
	}
	return base
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
