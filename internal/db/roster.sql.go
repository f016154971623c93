package db

import (
	"context"
	"database/sql"
	"time"
)

const insertRosterSnapshot = `
INSERT INTO roster_snapshots (id, source, seed, size, fetched_at, created_at)
VALUES (?, ?, ?, ?, ?, ?)
`

type InsertRosterSnapshotParams struct {
	ID        string
	Source    string
	Seed      int64
	Size      int64
	FetchedAt time.Time
	CreatedAt time.Time
}

func (q *Queries) InsertRosterSnapshot(ctx context.Context, arg InsertRosterSnapshotParams) error {
	_, err := q.db.ExecContext(ctx, insertRosterSnapshot,
		arg.ID,
		arg.Source,
		arg.Seed,
		arg.Size,
		arg.FetchedAt,
		arg.CreatedAt,
	)
	return err
}

const getLatestRosterSnapshot = `
SELECT id, source, seed, size, fetched_at, created_at
FROM roster_snapshots
ORDER BY fetched_at DESC, created_at DESC
LIMIT 1
`

func (q *Queries) GetLatestRosterSnapshot(ctx context.Context) (RosterSnapshot, error) {
	row := q.db.QueryRowContext(ctx, getLatestRosterSnapshot)
	var i RosterSnapshot
	err := row.Scan(
		&i.ID,
		&i.Source,
		&i.Seed,
		&i.Size,
		&i.FetchedAt,
		&i.CreatedAt,
	)
	return i, err
}

const deleteRosterSnapshotsExcept = `
DELETE FROM roster_snapshots WHERE id != ?
`

func (q *Queries) DeleteRosterSnapshotsExcept(ctx context.Context, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteRosterSnapshotsExcept, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const insertCharacter = `
INSERT INTO characters (
    snapshot_id, id, name, weapon, win_rate, pick_rate, mmr_gain,
    tier, rank_bracket, avg_survival, image
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type InsertCharacterParams struct {
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

func (q *Queries) InsertCharacter(ctx context.Context, arg InsertCharacterParams) error {
	_, err := q.db.ExecContext(ctx, insertCharacter,
		arg.SnapshotID,
		arg.ID,
		arg.Name,
		arg.Weapon,
		arg.WinRate,
		arg.PickRate,
		arg.MmrGain,
		arg.Tier,
		arg.RankBracket,
		arg.AvgSurvival,
		arg.Image,
	)
	return err
}

const listCharactersBySnapshot = `
SELECT snapshot_id, id, name, weapon, win_rate, pick_rate, mmr_gain,
       tier, rank_bracket, avg_survival, image
FROM characters
WHERE snapshot_id = ?
ORDER BY id
`

func (q *Queries) ListCharactersBySnapshot(ctx context.Context, snapshotID string) ([]Character, error) {
	rows, err := q.db.QueryContext(ctx, listCharactersBySnapshot, snapshotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Character
	for rows.Next() {
		var i Character
		if err := rows.Scan(
			&i.SnapshotID,
			&i.ID,
			&i.Name,
			&i.Weapon,
			&i.WinRate,
			&i.PickRate,
			&i.MmrGain,
			&i.Tier,
			&i.RankBracket,
			&i.AvgSurvival,
			&i.Image,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertWeaponStat = `
INSERT INTO weapon_stats (
    snapshot_id, character_id, weapon, win_rate, pick_rate, mmr_gain, is_primary, position
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(snapshot_id, character_id, weapon) DO UPDATE SET
    win_rate = excluded.win_rate,
    pick_rate = excluded.pick_rate,
    mmr_gain = excluded.mmr_gain,
    is_primary = excluded.is_primary,
    position = excluded.position
`

type InsertWeaponStatParams struct {
	SnapshotID  string
	CharacterID int64
	Weapon      string
	WinRate     float64
	PickRate    float64
	MmrGain     float64
	IsPrimary   bool
	Position    int64
}

func (q *Queries) InsertWeaponStat(ctx context.Context, arg InsertWeaponStatParams) error {
	_, err := q.db.ExecContext(ctx, insertWeaponStat,
		arg.SnapshotID,
		arg.CharacterID,
		arg.Weapon,
		arg.WinRate,
		arg.PickRate,
		arg.MmrGain,
		arg.IsPrimary,
		arg.Position,
	)
	return err
}

const listWeaponStatsBySnapshot = `
SELECT snapshot_id, character_id, weapon, win_rate, pick_rate, mmr_gain, is_primary, position
FROM weapon_stats
WHERE snapshot_id = ?
ORDER BY character_id, position
`

func (q *Queries) ListWeaponStatsBySnapshot(ctx context.Context, snapshotID string) ([]WeaponStat, error) {
	rows, err := q.db.QueryContext(ctx, listWeaponStatsBySnapshot, snapshotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []WeaponStat
	for rows.Next() {
		var i WeaponStat
		if err := rows.Scan(
			&i.SnapshotID,
			&i.CharacterID,
			&i.Weapon,
			&i.WinRate,
			&i.PickRate,
			&i.MmrGain,
			&i.IsPrimary,
			&i.Position,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listWeaponStatsByCharacter = `
SELECT snapshot_id, character_id, weapon, win_rate, pick_rate, mmr_gain, is_primary, position
FROM weapon_stats
WHERE snapshot_id = ? AND character_id = ?
ORDER BY position
`

type ListWeaponStatsByCharacterParams struct {
	SnapshotID  string
	CharacterID int64
}

func (q *Queries) ListWeaponStatsByCharacter(ctx context.Context, arg ListWeaponStatsByCharacterParams) ([]WeaponStat, error) {
	rows, err := q.db.QueryContext(ctx, listWeaponStatsByCharacter, arg.SnapshotID, arg.CharacterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []WeaponStat
	for rows.Next() {
		var i WeaponStat
		if err := rows.Scan(
			&i.SnapshotID,
			&i.CharacterID,
			&i.Weapon,
			&i.WinRate,
			&i.PickRate,
			&i.MmrGain,
			&i.IsPrimary,
			&i.Position,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteCharactersExcept = `
DELETE FROM characters WHERE snapshot_id != ?
`

func (q *Queries) DeleteCharactersExcept(ctx context.Context, snapshotID string) error {
	_, err := q.db.ExecContext(ctx, deleteCharactersExcept, snapshotID)
	return err
}

const deleteWeaponStatsExcept = `
DELETE FROM weapon_stats WHERE snapshot_id != ?
`

func (q *Queries) DeleteWeaponStatsExcept(ctx context.Context, snapshotID string) error {
	_, err := q.db.ExecContext(ctx, deleteWeaponStatsExcept, snapshotID)
	return err
}
