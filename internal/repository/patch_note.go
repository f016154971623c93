package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"er-dashboard/internal/db"
	"er-dashboard/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

type PatchNoteFilter struct {
	Kind  domain.PatchKind
	Since time.Time
	Limit int
}

type PatchNoteRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewPatchNoteRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *PatchNoteRepository {
	return &PatchNoteRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

// UpsertBatch stores notes keyed by version. A note that already exists keeps
// its id and has its entries replaced.
func (r *PatchNoteRepository) UpsertBatch(ctx context.Context, notes []domain.PatchNote) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := r.queries.WithTx(tx)
	now := time.Now().UTC()

	for _, note := range notes {
		candidate, err := gonanoid.New()
		if err != nil {
			return fmt.Errorf("failed to generate patch note id: %w", err)
		}

		noteID, err := qtx.UpsertPatchNote(ctx, db.UpsertPatchNoteParams{
			ID:         candidate,
			Kind:       string(note.Kind),
			Version:    note.Version,
			ReleasedAt: note.Date.UTC(),
			CreatedAt:  now,
			UpdatedAt:  now,
		})
		if err != nil {
			return fmt.Errorf("failed to upsert patch note %s: %w", note.Version, err)
		}

		if err := qtx.DeletePatchEntriesByNote(ctx, noteID); err != nil {
			return fmt.Errorf("failed to clear entries for %s: %w", note.Version, err)
		}

		for pos, e := range note.Entries {
			entryID, err := gonanoid.New()
			if err != nil {
				return fmt.Errorf("failed to generate patch entry id: %w", err)
			}
			params := db.InsertPatchEntryParams{
				ID:          entryID,
				PatchNoteID: noteID,
				Position:    int64(pos),
				TargetKind:  string(e.TargetKind),
				Target:      e.Target,
				Field:       e.Field,
				BeforeValue: e.Before,
				AfterValue:  e.After,
				ChangeType:  string(e.ChangeType),
			}
			if e.Delta != nil {
				params.Delta = sql.NullFloat64{Float64: *e.Delta, Valid: true}
			}
			if err := qtx.InsertPatchEntry(ctx, params); err != nil {
				return fmt.Errorf("failed to insert entry %d of %s: %w", pos, note.Version, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit patch notes: %w", err)
	}

	r.logger.Debug().Int("notes", len(notes)).Msg("patch notes upserted")
	return nil
}

// List returns notes newest first with their entries in document order.
func (r *PatchNoteRepository) List(ctx context.Context, filter PatchNoteFilter) ([]domain.PatchNote, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.queries.ListPatchNotes(ctx, db.ListPatchNotesParams{
		Kind:  string(filter.Kind),
		Since: filter.Since.UTC(),
		Limit: int64(limit),
	})
	if err != nil {
		return nil, err
	}

	result := make([]domain.PatchNote, 0, len(rows))
	for _, row := range rows {
		entries, err := r.queries.ListPatchEntriesByNote(ctx, row.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list entries for %s: %w", row.Version, err)
		}

		note := domain.PatchNote{
			ID:      row.ID,
			Kind:    domain.PatchKind(row.Kind),
			Version: row.Version,
			Date:    row.ReleasedAt.UTC(),
			Entries: make([]domain.PatchEntry, len(entries)),
		}
		for i, e := range entries {
			entry := domain.PatchEntry{
				ID:         e.ID,
				TargetKind: domain.TargetKind(e.TargetKind),
				Target:     e.Target,
				Field:      e.Field,
				Before:     e.BeforeValue,
				After:      e.AfterValue,
				ChangeType: domain.ChangeType(e.ChangeType),
			}
			if e.Delta.Valid {
				d := e.Delta.Float64
				entry.Delta = &d
			}
			note.Entries[i] = entry
		}
		result = append(result, note)
	}
	return result, nil
}

func (r *PatchNoteRepository) Count(ctx context.Context) (int, error) {
	n, err := r.queries.CountPatchNotes(ctx)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
