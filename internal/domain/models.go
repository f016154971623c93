package domain

import (
	"fmt"
	"sort"
	"time"
)

type Tier string

const (
	TierS Tier = "S"
	TierA Tier = "A"
	TierB Tier = "B"
	TierC Tier = "C"
	TierD Tier = "D"
)

var Tiers = []Tier{TierS, TierA, TierB, TierC, TierD}

// Rank orders tiers best-first; unknown tiers sort last.
func (t Tier) Rank() int {
	for i, tier := range Tiers {
		if tier == t {
			return i
		}
	}
	return len(Tiers)
}

func (t Tier) Valid() bool {
	return t.Rank() < len(Tiers)
}

type CharacterSummary struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Weapon      string  `json:"weapon"`
	WinRate     float64 `json:"winRate"`
	PickRate    float64 `json:"pickRate"`
	MMRGain     float64 `json:"mmrGain"`
	Tier        Tier    `json:"tier"`
	RankBracket string  `json:"rankBracket,omitempty"`
	AvgSurvival *int    `json:"avgSurvival,omitempty"` // seconds
	Image       string  `json:"image,omitempty"`
}

type WeaponStat struct {
	CharacterID int     `json:"characterId"`
	Weapon      string  `json:"weapon"`
	WinRate     float64 `json:"winRate"`
	PickRate    float64 `json:"pickRate"`
	MMRGain     float64 `json:"mmrGain"`
	Primary     bool    `json:"primary"`
}

// VariantTable maps a character id to its weapon variants, primary weapon first.
type VariantTable map[int][]WeaponStat

type CompSummary struct {
	Members  [3]int  `json:"members"`
	WinRate  float64 `json:"winRate"`
	PickRate float64 `json:"pickRate"`
	MMRGain  float64 `json:"mmrGain"`
	Samples  int     `json:"samples"`
}

// Key is the order-independent identity of the composition.
func (c CompSummary) Key() string {
	return TriadKey(c.Members)
}

type ClusterTriadSummary struct {
	Clusters [3]string `json:"clusters"`
	WinRate  float64   `json:"winRate"`
	PickRate float64   `json:"pickRate"`
	MMRGain  float64   `json:"mmrGain"`
	Samples  int       `json:"samples"`
}

type ScoreBreakdown struct {
	Synergy      float64 `json:"synergy"`
	Solo         float64 `json:"solo"`
	ClusterPrior float64 `json:"clusterPrior"`
}

type CompSuggestion struct {
	Members     [3]int         `json:"members"`
	Score       float64        `json:"score"`
	EstWinRate  float64        `json:"estWinRate"`
	EstPickRate float64        `json:"estPickRate"`
	EstMMRGain  float64        `json:"estMmrGain"`
	Breakdown   ScoreBreakdown `json:"breakdown"`
	Modeled     bool           `json:"modeled"`
}

type PatchKind string

const (
	PatchKindRelease PatchKind = "release"
	PatchKindHotfix  PatchKind = "hotfix"
)

type TargetKind string

const (
	TargetCharacter TargetKind = "character"
	TargetWeapon    TargetKind = "weapon"
	TargetSystem    TargetKind = "system"
)

type ChangeType string

const (
	ChangeBuff   ChangeType = "buff"
	ChangeNerf   ChangeType = "nerf"
	ChangeAdjust ChangeType = "adjust"
	ChangeRework ChangeType = "rework"
)

type PatchNote struct {
	ID      string       `json:"id"`
	Kind    PatchKind    `json:"kind"`
	Version string       `json:"version"`
	Date    time.Time    `json:"date"`
	Entries []PatchEntry `json:"entries"`
}

type PatchEntry struct {
	ID         string     `json:"id"`
	TargetKind TargetKind `json:"targetKind"`
	Target     string     `json:"target"`
	Field      string     `json:"field"`
	Before     string     `json:"before"`
	After      string     `json:"after"`
	Delta      *float64   `json:"delta,omitempty"`
	ChangeType ChangeType `json:"changeType"`
}

type CharacterBrief struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

type ClusterMeta struct {
	Label   string           `json:"label"`
	Role    string           `json:"role"`
	Members []CharacterBrief `json:"members"`
}

// PairKey is an unordered pair of character ids, smaller id first.
type PairKey struct {
	A, B int
}

func NewPairKey(a, b int) PairKey {
	if a > b {
		a, b = b, a
	}
	return PairKey{A: a, B: b}
}

type SynergyTables struct {
	Pair map[PairKey]float64
	Solo map[int]float64
}

// TriadKey returns the sorted-id identity of a three member group.
func TriadKey(ids [3]int) string {
	s := ids[:]
	sorted := append([]int(nil), s...)
	sort.Ints(sorted)
	return fmt.Sprintf("%d-%d-%d", sorted[0], sorted[1], sorted[2])
}

// RosterContext bundles the lookup tables derived from one roster snapshot.
// It is built once and passed by the caller; nothing mutates it afterwards.
type RosterContext struct {
	SnapshotID    string
	Seed          int32
	GeneratedAt   time.Time
	Roster        []CharacterSummary
	Variants      VariantTable
	Synergy       SynergyTables
	Comps         []CompSummary
	ClusterTriads []ClusterTriadSummary
	Clusters      []ClusterMeta
}

func (rc *RosterContext) Character(id int) (CharacterSummary, bool) {
	for _, c := range rc.Roster {
		if c.ID == id {
			return c, true
		}
	}
	return CharacterSummary{}, false
}
