package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"er-dashboard/internal/constants"
	"er-dashboard/internal/db"
	"er-dashboard/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

var ErrNoSnapshot = errors.New("no roster snapshot stored")

type Snapshot struct {
	ID        string
	Source    string
	Seed      int32
	FetchedAt time.Time
	Roster    []domain.CharacterSummary
	Variants  domain.VariantTable
}

type RosterRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewRosterRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *RosterRepository {
	return &RosterRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

// SaveSnapshot stores the roster and its weapon variants as the newest
// snapshot and prunes every older one in the same transaction.
func (r *RosterRepository) SaveSnapshot(ctx context.Context, snap *Snapshot) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("failed to generate snapshot id: %w", err)
	}
	now := time.Now().UTC()
	fetchedAt := snap.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = now
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := r.queries.WithTx(tx)

	if err := qtx.InsertRosterSnapshot(ctx, db.InsertRosterSnapshotParams{
		ID:        id,
		Source:    snap.Source,
		Seed:      int64(snap.Seed),
		Size:      int64(len(snap.Roster)),
		FetchedAt: fetchedAt.UTC(),
		CreatedAt: now,
	}); err != nil {
		return "", fmt.Errorf("failed to insert snapshot: %w", err)
	}

	for i := 0; i < len(snap.Roster); i += constants.DBBatchSize {
		end := i + constants.DBBatchSize
		if end > len(snap.Roster) {
			end = len(snap.Roster)
		}

		for _, c := range snap.Roster[i:end] {
			if err := qtx.InsertCharacter(ctx, characterParams(id, c)); err != nil {
				return "", fmt.Errorf("failed to insert character %d: %w", c.ID, err)
			}
			for pos, w := range snap.Variants[c.ID] {
				err := qtx.InsertWeaponStat(ctx, db.InsertWeaponStatParams{
					SnapshotID:  id,
					CharacterID: int64(c.ID),
					Weapon:      w.Weapon,
					WinRate:     w.WinRate,
					PickRate:    w.PickRate,
					MmrGain:     w.MMRGain,
					IsPrimary:   w.Primary,
					Position:    int64(pos),
				})
				if err != nil {
					return "", fmt.Errorf("failed to insert weapon %s for character %d: %w", w.Weapon, c.ID, err)
				}
			}
		}
	}

	if err := qtx.DeleteWeaponStatsExcept(ctx, id); err != nil {
		return "", fmt.Errorf("failed to prune weapon stats: %w", err)
	}
	if err := qtx.DeleteCharactersExcept(ctx, id); err != nil {
		return "", fmt.Errorf("failed to prune characters: %w", err)
	}
	pruned, err := qtx.DeleteRosterSnapshotsExcept(ctx, id)
	if err != nil {
		return "", fmt.Errorf("failed to prune snapshots: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit snapshot: %w", err)
	}

	r.logger.Debug().
		Str("snapshot_id", id).
		Str("source", snap.Source).
		Int("characters", len(snap.Roster)).
		Int64("pruned", pruned).
		Msg("roster snapshot saved")

	return id, nil
}

func (r *RosterRepository) LatestSnapshot(ctx context.Context) (*Snapshot, error) {
	row, err := r.queries.GetLatestRosterSnapshot(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, err
	}

	roster, err := r.ListCharacters(ctx, row.ID)
	if err != nil {
		return nil, err
	}
	variants, err := r.WeaponStats(ctx, row.ID)
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		ID:        row.ID,
		Source:    row.Source,
		Seed:      int32(row.Seed),
		FetchedAt: row.FetchedAt,
		Roster:    roster,
		Variants:  variants,
	}, nil
}

func (r *RosterRepository) ListCharacters(ctx context.Context, snapshotID string) ([]domain.CharacterSummary, error) {
	rows, err := r.queries.ListCharactersBySnapshot(ctx, snapshotID)
	if err != nil {
		return nil, err
	}

	result := make([]domain.CharacterSummary, len(rows))
	for i, row := range rows {
		c := domain.CharacterSummary{
			ID:          int(row.ID),
			Name:        row.Name,
			Weapon:      row.Weapon,
			WinRate:     row.WinRate,
			PickRate:    row.PickRate,
			MMRGain:     row.MmrGain,
			Tier:        domain.Tier(row.Tier),
			RankBracket: row.RankBracket,
			Image:       row.Image,
		}
		if row.AvgSurvival.Valid {
			sec := int(row.AvgSurvival.Int64)
			c.AvgSurvival = &sec
		}
		result[i] = c
	}
	return result, nil
}

func (r *RosterRepository) WeaponStats(ctx context.Context, snapshotID string) (domain.VariantTable, error) {
	rows, err := r.queries.ListWeaponStatsBySnapshot(ctx, snapshotID)
	if err != nil {
		return nil, err
	}

	table := make(domain.VariantTable)
	for _, row := range rows {
		id := int(row.CharacterID)
		table[id] = append(table[id], domain.WeaponStat{
			CharacterID: id,
			Weapon:      row.Weapon,
			WinRate:     row.WinRate,
			PickRate:    row.PickRate,
			MMRGain:     row.MmrGain,
			Primary:     row.IsPrimary,
		})
	}
	return table, nil
}

func (r *RosterRepository) CharacterWeapons(ctx context.Context, snapshotID string, characterID int) ([]domain.WeaponStat, error) {
	rows, err := r.queries.ListWeaponStatsByCharacter(ctx, db.ListWeaponStatsByCharacterParams{
		SnapshotID:  snapshotID,
		CharacterID: int64(characterID),
	})
	if err != nil {
		return nil, err
	}

	result := make([]domain.WeaponStat, len(rows))
	for i, row := range rows {
		result[i] = domain.WeaponStat{
			CharacterID: characterID,
			Weapon:      row.Weapon,
			WinRate:     row.WinRate,
			PickRate:    row.PickRate,
			MMRGain:     row.MmrGain,
			Primary:     row.IsPrimary,
		}
	}
	return result, nil
}

func (r *RosterRepository) ShouldRefresh(ctx context.Context, ttl time.Duration) (bool, error) {
	row, err := r.queries.GetLatestRosterSnapshot(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		r.logger.Debug().Msg("no snapshot stored, should refresh")
		return true, nil
	}
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to get latest snapshot")
		return false, err
	}

	timeSince := time.Since(row.FetchedAt)
	shouldRefresh := timeSince > ttl
	r.logger.Debug().
		Str("snapshot_id", row.ID).
		Time("fetched_at", row.FetchedAt).
		Dur("time_since", timeSince).
		Dur("ttl", ttl).
		Bool("should_refresh", shouldRefresh).
		Msg("checking if roster should refresh")

	return shouldRefresh, nil
}

func characterParams(snapshotID string, c domain.CharacterSummary) db.InsertCharacterParams {
	p := db.InsertCharacterParams{
		SnapshotID:  snapshotID,
		ID:          int64(c.ID),
		Name:        c.Name,
		Weapon:      c.Weapon,
		WinRate:     c.WinRate,
		PickRate:    c.PickRate,
		MmrGain:     c.MMRGain,
		Tier:        string(c.Tier),
		RankBracket: c.RankBracket,
		Image:       c.Image,
	}
	if c.AvgSurvival != nil {
		p.AvgSurvival = sql.NullInt64{Int64: int64(*c.AvgSurvival), Valid: true}
	}
	return p
}
