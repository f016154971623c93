package mock

import (
	"fmt"
	"math"
	"sort"
	"time"

	"er-dashboard/internal/constants"
	"er-dashboard/internal/domain"
	"er-dashboard/internal/rng"
)

var clusterRoles = []struct {
	label string
	role  string
}{
	{"A", "Assassin"},
	{"B", "Bruiser"},
	{"C", "Carry"},
	{"D", "Duelist"},
	{"E", "Engage"},
	{"F", "Frontline"},
	{"G", "Guardian"},
	{"H", "Harass"},
}

// ClusterLabel assigns a character to a cluster by id.
func ClusterLabel(id int) string {
	return clusterRoles[(id-1+len(clusterRoles))%len(clusterRoles)].label
}

// Clusters groups the roster into the cluster directory, labels in order.
func Clusters(roster []domain.CharacterSummary) []domain.ClusterMeta {
	byLabel := make(map[string][]domain.CharacterBrief)
	for _, c := range roster {
		label := ClusterLabel(c.ID)
		byLabel[label] = append(byLabel[label], domain.CharacterBrief{ID: c.ID, Name: c.Name, Image: c.Image})
	}

	out := make([]domain.ClusterMeta, 0, len(clusterRoles))
	for _, cr := range clusterRoles {
		members := byLabel[cr.label]
		if len(members) == 0 {
			continue
		}
		out = append(out, domain.ClusterMeta{Label: cr.label, Role: cr.role, Members: members})
	}
	return out
}

// GenerateComps draws n distinct three member compositions from the roster.
func GenerateComps(roster []domain.CharacterSummary, r *rng.Rand, n int) []domain.CompSummary {
	if len(roster) < 3 || n <= 0 {
		return []domain.CompSummary{}
	}

	seen := make(map[string]struct{}, n)
	out := make([]domain.CompSummary, 0, n)
	// bounded so tiny rosters cannot spin forever
	for attempts := 0; len(out) < n && attempts < n*20; attempts++ {
		a := roster[r.Intn(len(roster))].ID
		b := roster[r.Intn(len(roster))].ID
		c := roster[r.Intn(len(roster))].ID
		if a == b || b == c || a == c {
			continue
		}
		comp := domain.CompSummary{
			Members:  [3]int{a, b, c},
			WinRate:  round4(r.Range(0.08, 0.22)),
			PickRate: round4(r.Range(0.001, 0.02)),
			MMRGain:  round2(r.Range(minMMRGain, maxMMRGain)),
			Samples:  200 + r.Intn(4800),
		}
		if _, dup := seen[comp.Key()]; dup {
			continue
		}
		seen[comp.Key()] = struct{}{}
		out = append(out, comp)
	}
	return out
}

// GenerateClusterTriads returns up to n cluster label triples (labels sorted
// within a triple, repeats allowed) with aggregate stats.
func GenerateClusterTriads(r *rng.Rand, n int) []domain.ClusterTriadSummary {
	labels := make([]string, len(clusterRoles))
	for i, cr := range clusterRoles {
		labels[i] = cr.label
	}

	var all [][3]string
	for i := 0; i < len(labels); i++ {
		for j := i; j < len(labels); j++ {
			for k := j; k < len(labels); k++ {
				all = append(all, [3]string{labels[i], labels[j], labels[k]})
			}
		}
	}

	if n > len(all) {
		n = len(all)
	}
	out := make([]domain.ClusterTriadSummary, 0, n)
	for i := 0; i < n; i++ {
		idx := i + r.Intn(len(all)-i)
		all[i], all[idx] = all[idx], all[i]
		out = append(out, domain.ClusterTriadSummary{
			Clusters: all[i],
			WinRate:  round4(r.Range(0.08, 0.20)),
			PickRate: round4(r.Range(0.002, 0.04)),
			MMRGain:  round2(r.Range(minMMRGain, maxMMRGain)),
			Samples:  500 + r.Intn(9500),
		})
	}
	return out
}

// GenerateSynergy fills a toy synergy table for every roster pair and derives
// solo strength from win rate, scaled into [0, 1].
func GenerateSynergy(roster []domain.CharacterSummary, r *rng.Rand) domain.SynergyTables {
	tables := domain.SynergyTables{
		Pair: make(map[domain.PairKey]float64),
		Solo: make(map[int]float64, len(roster)),
	}

	for i := 0; i < len(roster); i++ {
		for j := i + 1; j < len(roster); j++ {
			tables.Pair[domain.NewPairKey(roster[i].ID, roster[j].ID)] = round4(r.Range(0.3, 0.7))
		}
	}

	for _, c := range roster {
		solo := (c.WinRate - minWinRate) / (maxWinRate - minWinRate)
		tables.Solo[c.ID] = round4(math.Min(1, math.Max(0, solo)))
	}
	return tables
}

var patchFields = []string{"Base Attack Power", "Skill Damage", "Cooldown", "Max HP", "Defense"}

// GeneratePatchNotes produces n patch notes, newest first, one week apart
// ending at the fixed reference date.
func GeneratePatchNotes(roster []domain.CharacterSummary, r *rng.Rand, n int) []domain.PatchNote {
	if n <= 0 || len(roster) == 0 {
		return []domain.PatchNote{}
	}

	ref := time.Date(2024, time.June, 27, 0, 0, 0, 0, time.UTC)
	out := make([]domain.PatchNote, 0, n)
	for i := 0; i < n; i++ {
		kind := domain.PatchKindRelease
		version := fmt.Sprintf("1.%d.0", 40-i)
		if i%3 == 1 {
			kind = domain.PatchKindHotfix
			version = fmt.Sprintf("1.%d.%d", 40-i, 1+r.Intn(3))
		}

		count := 2 + r.Intn(3)
		entries := make([]domain.PatchEntry, 0, count)
		for k := 0; k < count; k++ {
			entries = append(entries, mockEntry(roster, r))
		}

		out = append(out, domain.PatchNote{
			ID:      fmt.Sprintf("mock-%d", i+1),
			Kind:    kind,
			Version: version,
			Date:    ref.AddDate(0, 0, -7*i),
			Entries: entries,
		})
	}
	return out
}

func mockEntry(roster []domain.CharacterSummary, r *rng.Rand) domain.PatchEntry {
	c := roster[r.Intn(len(roster))]
	before := math.Round(r.Range(20, 120))
	delta := math.Round(r.Range(-10, 10))
	if delta == 0 {
		delta = 1
	}
	after := before + delta

	target, kind := c.Name, domain.TargetCharacter
	if r.Float64() < 0.3 {
		target, kind = c.Weapon, domain.TargetWeapon
	}

	change := domain.ChangeBuff
	if delta < 0 {
		change = domain.ChangeNerf
	}
	if r.Float64() < 0.1 {
		change = domain.ChangeAdjust
	}

	return domain.PatchEntry{
		TargetKind: kind,
		Target:     target,
		Field:      patchFields[r.Intn(len(patchFields))],
		Before:     fmt.Sprintf("%g", before),
		After:      fmt.Sprintf("%g", after),
		Delta:      &delta,
		ChangeType: change,
	}
}

// NewRosterContext builds every fixture table from one seed. Each table
// draws from its own generator so resizing one leaves the others unchanged.
func NewRosterContext(seed int32, size int) *domain.RosterContext {
	roster, variants := GenerateRoster(size, rng.New(seed))
	return BuildContext(seed, roster, variants)
}

// BuildContext derives the comp, synergy and cluster tables for a roster that
// came from anywhere, mock or upstream.
func BuildContext(seed int32, roster []domain.CharacterSummary, variants domain.VariantTable) *domain.RosterContext {
	if variants == nil {
		variants = domain.VariantTable{}
	}

	comps := GenerateComps(roster, rng.New(seed^0x5a5a), constants.MockCompCount)
	sort.SliceStable(comps, func(i, j int) bool { return comps[i].WinRate > comps[j].WinRate })

	return &domain.RosterContext{
		Seed:          seed,
		Roster:        roster,
		Variants:      variants,
		Synergy:       GenerateSynergy(roster, rng.New(seed^0x0f0f)),
		Comps:         comps,
		ClusterTriads: GenerateClusterTriads(rng.New(seed^0x3c3c), 30),
		Clusters:      Clusters(roster),
	}
}
