package db

import (
	"database/sql"
	"time"
)

type RosterSnapshot struct {
	ID        string
	Source    string
	Seed      int64
	Size      int64
	FetchedAt time.Time
	CreatedAt time.Time
}

type Character struct {
	SnapshotID  string
	ID          int64
	Name        string
	Weapon      string
	WinRate     float64
	PickRate    float64
	MmrGain     float64
	Tier        string
	RankBracket string
	AvgSurvival sql.NullInt64
	Image       string
}

type WeaponStat struct {
	SnapshotID  string
	CharacterID int64
	Weapon      string
	WinRate     float64
	PickRate    float64
	MmrGain     float64
	IsPrimary   bool
	Position    int64
}

type PatchNote struct {
	ID         string
	Kind       string
	Version    string
	ReleasedAt time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type PatchEntry struct {
	ID          string
	PatchNoteID string
	Position    int64
	TargetKind  string
	Target      string
	Field       string
	BeforeValue string
	AfterValue  string
	Delta       sql.NullFloat64
	ChangeType  string
}
