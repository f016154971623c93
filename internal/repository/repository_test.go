package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"er-dashboard/internal/database"
	"er-dashboard/internal/db"
	"er-dashboard/internal/domain"
	"er-dashboard/internal/mock"
	"er-dashboard/internal/rng"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	sqlDB, err := database.Open(":memory:", zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return sqlDB
}

func TestRosterRepositoryRoundTrip(t *testing.T) {
	sqlDB := setupTestDB(t)
	repo := NewRosterRepository(sqlDB, db.New(sqlDB), zerolog.Nop())
	ctx := context.Background()

	roster, variants := mock.GenerateRoster(15, rng.New(11))
	roster[0].AvgSurvival = nil

	id, err := repo.SaveSnapshot(ctx, &Snapshot{Source: "mock", Seed: 11, Roster: roster, Variants: variants})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	snap, err := repo.LatestSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, id, snap.ID)
	assert.Equal(t, int32(11), snap.Seed)
	assert.Equal(t, roster, snap.Roster)
	assert.Equal(t, variants, snap.Variants)
	assert.Nil(t, snap.Roster[0].AvgSurvival)

	weapons, err := repo.CharacterWeapons(ctx, id, roster[2].ID)
	require.NoError(t, err)
	assert.Equal(t, variants[roster[2].ID], weapons)
	assert.True(t, weapons[0].Primary)
}

func TestRosterRepositoryPrunesOlderSnapshots(t *testing.T) {
	sqlDB := setupTestDB(t)
	repo := NewRosterRepository(sqlDB, db.New(sqlDB), zerolog.Nop())
	ctx := context.Background()

	first, _ := mock.GenerateRoster(5, rng.New(1))
	second, _ := mock.GenerateRoster(8, rng.New(2))

	oldID, err := repo.SaveSnapshot(ctx, &Snapshot{Source: "mock", Roster: first})
	require.NoError(t, err)
	newID, err := repo.SaveSnapshot(ctx, &Snapshot{Source: "mock", Roster: second})
	require.NoError(t, err)

	snap, err := repo.LatestSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, newID, snap.ID)
	assert.Len(t, snap.Roster, 8)

	stale, err := repo.ListCharacters(ctx, oldID)
	require.NoError(t, err)
	assert.Empty(t, stale)
}

func TestRosterRepositoryEmpty(t *testing.T) {
	sqlDB := setupTestDB(t)
	repo := NewRosterRepository(sqlDB, db.New(sqlDB), zerolog.Nop())
	ctx := context.Background()

	_, err := repo.LatestSnapshot(ctx)
	assert.ErrorIs(t, err, ErrNoSnapshot)

	refresh, err := repo.ShouldRefresh(ctx, time.Hour)
	require.NoError(t, err)
	assert.True(t, refresh)
}

func TestRosterRepositoryShouldRefresh(t *testing.T) {
	sqlDB := setupTestDB(t)
	repo := NewRosterRepository(sqlDB, db.New(sqlDB), zerolog.Nop())
	ctx := context.Background()

	roster, _ := mock.GenerateRoster(3, rng.New(3))
	_, err := repo.SaveSnapshot(ctx, &Snapshot{Source: "mock", Roster: roster})
	require.NoError(t, err)

	refresh, err := repo.ShouldRefresh(ctx, time.Hour)
	require.NoError(t, err)
	assert.False(t, refresh)

	_, err = repo.SaveSnapshot(ctx, &Snapshot{
		Source:    "mock",
		Roster:    roster,
		FetchedAt: time.Now().Add(-2 * time.Hour),
	})
	require.NoError(t, err)

	refresh, err = repo.ShouldRefresh(ctx, time.Hour)
	require.NoError(t, err)
	assert.True(t, refresh)
}

func TestPatchNoteRepositoryUpsertAndList(t *testing.T) {
	sqlDB := setupTestDB(t)
	repo := NewPatchNoteRepository(sqlDB, db.New(sqlDB), zerolog.Nop())
	ctx := context.Background()

	roster, _ := mock.GenerateRoster(10, rng.New(5))
	notes := mock.GeneratePatchNotes(roster, rng.New(5), 4)
	require.NoError(t, repo.UpsertBatch(ctx, notes))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	listed, err := repo.List(ctx, PatchNoteFilter{})
	require.NoError(t, err)
	require.Len(t, listed, 4)
	for i := 1; i < len(listed); i++ {
		assert.False(t, listed[i].Date.After(listed[i-1].Date), "notes must be newest first")
	}

	byVersion := make(map[string]domain.PatchNote)
	for _, n := range listed {
		byVersion[n.Version] = n
	}
	for _, n := range notes {
		got, ok := byVersion[n.Version]
		require.True(t, ok, n.Version)
		assert.Equal(t, n.Kind, got.Kind)
		require.Len(t, got.Entries, len(n.Entries))
		for i, e := range n.Entries {
			assert.Equal(t, e.Target, got.Entries[i].Target)
			assert.Equal(t, e.ChangeType, got.Entries[i].ChangeType)
			require.NotNil(t, got.Entries[i].Delta)
			assert.InDelta(t, *e.Delta, *got.Entries[i].Delta, 1e-9)
		}
	}
}

func TestPatchNoteRepositoryUpsertKeepsIDAndReplacesEntries(t *testing.T) {
	sqlDB := setupTestDB(t)
	repo := NewPatchNoteRepository(sqlDB, db.New(sqlDB), zerolog.Nop())
	ctx := context.Background()

	date := time.Date(2024, 6, 27, 0, 0, 0, 0, time.UTC)
	note := domain.PatchNote{
		Kind:    domain.PatchKindRelease,
		Version: "1.20.0",
		Date:    date,
		Entries: []domain.PatchEntry{
			{TargetKind: domain.TargetSystem, Target: "Lobby", Field: "queue", ChangeType: domain.ChangeAdjust},
			{TargetKind: domain.TargetWeapon, Target: "Pistol", Field: "damage", Before: "10", After: "12", ChangeType: domain.ChangeBuff},
		},
	}
	require.NoError(t, repo.UpsertBatch(ctx, []domain.PatchNote{note}))

	first, err := repo.List(ctx, PatchNoteFilter{})
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Nil(t, first[0].Entries[0].Delta)

	note.Entries = note.Entries[1:]
	require.NoError(t, repo.UpsertBatch(ctx, []domain.PatchNote{note}))

	second, err := repo.List(ctx, PatchNoteFilter{})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID)
	require.Len(t, second[0].Entries, 1)
	assert.Equal(t, "Pistol", second[0].Entries[0].Target)
}

func TestPatchNoteRepositoryFilter(t *testing.T) {
	sqlDB := setupTestDB(t)
	repo := NewPatchNoteRepository(sqlDB, db.New(sqlDB), zerolog.Nop())
	ctx := context.Background()

	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	notes := []domain.PatchNote{
		{Kind: domain.PatchKindRelease, Version: "1.0.0", Date: base},
		{Kind: domain.PatchKindHotfix, Version: "1.0.1", Date: base.AddDate(0, 0, 3)},
		{Kind: domain.PatchKindRelease, Version: "1.1.0", Date: base.AddDate(0, 0, 14)},
	}
	require.NoError(t, repo.UpsertBatch(ctx, notes))

	hotfixes, err := repo.List(ctx, PatchNoteFilter{Kind: domain.PatchKindHotfix})
	require.NoError(t, err)
	require.Len(t, hotfixes, 1)
	assert.Equal(t, "1.0.1", hotfixes[0].Version)

	recent, err := repo.List(ctx, PatchNoteFilter{Since: base.AddDate(0, 0, 2)})
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "1.1.0", recent[0].Version)

	limited, err := repo.List(ctx, PatchNoteFilter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "1.1.0", limited[0].Version)
}
