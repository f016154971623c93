package db

import (
	"context"
	"database/sql"
	"time"
)

const upsertPatchNote = `
INSERT INTO patch_notes (id, kind, version, released_at, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(version) DO UPDATE SET
    kind = excluded.kind,
    released_at = excluded.released_at,
    updated_at = excluded.updated_at
RETURNING id
`

type UpsertPatchNoteParams struct {
	ID         string
	Kind       string
	Version    string
	ReleasedAt time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// UpsertPatchNote returns the stored id, which is the existing one when the
// version was already present.
func (q *Queries) UpsertPatchNote(ctx context.Context, arg UpsertPatchNoteParams) (string, error) {
	row := q.db.QueryRowContext(ctx, upsertPatchNote,
		arg.ID,
		arg.Kind,
		arg.Version,
		arg.ReleasedAt,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	var id string
	err := row.Scan(&id)
	return id, err
}

const deletePatchEntriesByNote = `
DELETE FROM patch_entries WHERE patch_note_id = ?
`

func (q *Queries) DeletePatchEntriesByNote(ctx context.Context, patchNoteID string) error {
	_, err := q.db.ExecContext(ctx, deletePatchEntriesByNote, patchNoteID)
	return err
}

const insertPatchEntry = `
INSERT INTO patch_entries (
    id, patch_note_id, position, target_kind, target, field,
    before_value, after_value, delta, change_type
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type InsertPatchEntryParams struct {
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

func (q *Queries) InsertPatchEntry(ctx context.Context, arg InsertPatchEntryParams) error {
	_, err := q.db.ExecContext(ctx, insertPatchEntry,
		arg.ID,
		arg.PatchNoteID,
		arg.Position,
		arg.TargetKind,
		arg.Target,
		arg.Field,
		arg.BeforeValue,
		arg.AfterValue,
		arg.Delta,
		arg.ChangeType,
	)
	return err
}

const listPatchNotes = `
SELECT id, kind, version, released_at, created_at, updated_at
FROM patch_notes
WHERE (?1 = '' OR kind = ?1)
  AND released_at >= ?2
ORDER BY released_at DESC, version DESC
LIMIT ?3
`

type ListPatchNotesParams struct {
	Kind  string
	Since time.Time
	Limit int64
}

func (q *Queries) ListPatchNotes(ctx context.Context, arg ListPatchNotesParams) ([]PatchNote, error) {
	rows, err := q.db.QueryContext(ctx, listPatchNotes, arg.Kind, arg.Since, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []PatchNote
	for rows.Next() {
		var i PatchNote
		if err := rows.Scan(
			&i.ID,
			&i.Kind,
			&i.Version,
			&i.ReleasedAt,
			&i.CreatedAt,
			&i.UpdatedAt,
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

const listPatchEntriesByNote = `
SELECT id, patch_note_id, position, target_kind, target, field,
       before_value, after_value, delta, change_type
FROM patch_entries
WHERE patch_note_id = ?
ORDER BY position
`

func (q *Queries) ListPatchEntriesByNote(ctx context.Context, patchNoteID string) ([]PatchEntry, error) {
	rows, err := q.db.QueryContext(ctx, listPatchEntriesByNote, patchNoteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []PatchEntry
	for rows.Next() {
		var i PatchEntry
		if err := rows.Scan(
			&i.ID,
			&i.PatchNoteID,
			&i.Position,
			&i.TargetKind,
			&i.Target,
			&i.Field,
			&i.BeforeValue,
			&i.AfterValue,
			&i.Delta,
			&i.ChangeType,
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

const countPatchNotes = `
SELECT COUNT(*) FROM patch_notes
`

func (q *Queries) CountPatchNotes(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countPatchNotes)
	var count int64
	err := row.Scan(&count)
	return count, err
}
