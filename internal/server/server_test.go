package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"er-dashboard/internal/cache"
	"er-dashboard/internal/config"
	"er-dashboard/internal/database"
	"er-dashboard/internal/db"
	"er-dashboard/internal/honey"
	"er-dashboard/internal/mock"
	"er-dashboard/internal/patchnotes"
	"er-dashboard/internal/repository"
	"er-dashboard/internal/service"

	"connectrpc.com/connect"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := &config.Config{
		DataSource: config.SourceMock,
		MockSeed:   7,
		RosterSize: 24,
		CacheTTL:   time.Minute,
		RefreshTTL: time.Hour,
	}
	logger := zerolog.Nop()

	sqlDB, err := database.Open(":memory:", logger)
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	queries := db.New(sqlDB)
	c := cache.New(cfg, logger)
	patchSvc := service.NewPatchNoteService(
		patchnotes.NewClient(logger),
		repository.NewPatchNoteRepository(sqlDB, queries, logger),
		cfg, logger,
	)
	rosterSvc := service.NewRosterService(
		mock.Source{Seed: cfg.MockSeed, Size: cfg.RosterSize},
		repository.NewRosterRepository(sqlDB, queries, logger),
		patchSvc, c, cfg, logger,
	)
	dashboard := NewDashboardServer(
		rosterSvc,
		service.NewRecommendService(rosterSvc, c, logger),
		patchSvc,
		service.NewDirectoryService(rosterSvc, logger),
		logger,
	)

	mux := http.NewServeMux()
	path, handler := NewDashboardHandler(dashboard)
	mux.Handle(path, handler)
	mux.Handle(ExportPath, ExportHandler(service.NewExportService(rosterSvc, logger), logger))
	mux.Handle(HealthPath, HealthHandler(sqlDB))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newClient[Req, Res any](srv *httptest.Server, procedure string) *connect.Client[Req, Res] {
	return connect.NewClient[Req, Res](srv.Client(), srv.URL+procedure, connect.WithCodec(jsonCodec{}))
}

func TestDashboardRoster(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	refresh := newClient[RefreshRequest, RefreshResponse](srv, RefreshProcedure)
	res, err := refresh.CallUnary(ctx, connect.NewRequest(&RefreshRequest{Force: true}))
	require.NoError(t, err)
	assert.Equal(t, 24, res.Msg.Characters)
	assert.NotEmpty(t, res.Msg.SnapshotID)

	roster := newClient[GetRosterRequest, GetRosterResponse](srv, GetRosterProcedure)
	page, err := roster.CallUnary(ctx, connect.NewRequest(&GetRosterRequest{SortKey: "mmrGain", Direction: "desc"}))
	require.NoError(t, err)
	assert.Equal(t, res.Msg.SnapshotID, page.Msg.SnapshotID)
	require.Len(t, page.Msg.Rows, 24)
	for i := 1; i < len(page.Msg.Rows); i++ {
		assert.GreaterOrEqual(t, page.Msg.Rows[i-1].MMRGain, page.Msg.Rows[i].MMRGain)
	}

	_, err = roster.CallUnary(ctx, connect.NewRequest(&GetRosterRequest{Tiers: []string{"X"}}))
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
}

func TestDashboardWeaponsAndHoney(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	weapons := newClient[GetWeaponsRequest, GetWeaponsResponse](srv, GetWeaponsProcedure)
	res, err := weapons.CallUnary(ctx, connect.NewRequest(&GetWeaponsRequest{CharacterID: 2}))
	require.NoError(t, err)
	require.NotEmpty(t, res.Msg.Weapons)
	assert.True(t, res.Msg.Weapons[0].Primary)

	_, err = weapons.CallUnary(ctx, connect.NewRequest(&GetWeaponsRequest{CharacterID: 500}))
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))

	honeyClient := newClient[GetHoneyRequest, GetHoneyResponse](srv, GetHoneyProcedure)
	h, err := honeyClient.CallUnary(ctx, connect.NewRequest(&GetHoneyRequest{TopK: 2}))
	require.NoError(t, err)
	assert.Contains(t, []honey.Mode{honey.ModeTriple, honey.ModeFallback}, h.Msg.Mode)
	assert.NotEmpty(t, h.Msg.IDs)
}

func TestDashboardSuggestTeams(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	client := newClient[SuggestTeamsRequest, SuggestTeamsResponse](srv, SuggestTeamsProcedure)
	res, err := client.CallUnary(ctx, connect.NewRequest(&SuggestTeamsRequest{
		Anchors: [][]int{{1}, {2}},
		Pool:    []int{3, 4, 5},
	}))
	require.NoError(t, err)
	require.Len(t, res.Msg.Suggestions, 3)
	assert.Equal(t, 1, res.Msg.Suggestions[0].Members[0])

	_, err = client.CallUnary(ctx, connect.NewRequest(&SuggestTeamsRequest{Pool: []int{1, 2, 999}}))
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))

	_, err = client.CallUnary(ctx, connect.NewRequest(&SuggestTeamsRequest{TopK: -1}))
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
}

func TestDashboardDirectoryAndPatchNotes(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	clusters := newClient[ListClustersRequest, ListClustersResponse](srv, ListClustersProcedure)
	cl, err := clusters.CallUnary(ctx, connect.NewRequest(&ListClustersRequest{}))
	require.NoError(t, err)
	assert.NotEmpty(t, cl.Msg.Clusters)

	comps := newClient[ListCompsRequest, ListCompsResponse](srv, ListCompsProcedure)
	cp, err := comps.CallUnary(ctx, connect.NewRequest(&ListCompsRequest{SortKey: "samples"}))
	require.NoError(t, err)
	assert.NotEmpty(t, cp.Msg.Comps)

	triads := newClient[ListClusterTriadsRequest, ListClusterTriadsResponse](srv, ListClusterTriadsProcedure)
	tr, err := triads.CallUnary(ctx, connect.NewRequest(&ListClusterTriadsRequest{}))
	require.NoError(t, err)
	assert.NotEmpty(t, tr.Msg.Triads)

	notes := newClient[ListPatchNotesRequest, ListPatchNotesResponse](srv, ListPatchNotesProcedure)
	pn, err := notes.CallUnary(ctx, connect.NewRequest(&ListPatchNotesRequest{Since: "2024-06-01"}))
	require.NoError(t, err)
	require.NotEmpty(t, pn.Msg.Notes)
	for _, n := range pn.Msg.Notes {
		assert.False(t, n.Date.Before(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)))
	}

	_, err = notes.CallUnary(ctx, connect.NewRequest(&ListPatchNotesRequest{Since: "last tuesday"}))
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
}

func TestExportAndHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	resp, err := srv.Client().Get(srv.URL + ExportPath + "?tier=S,A&sort=name&dir=asc")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, xlsxContentType, resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "leaderboard-")

	bad, err := srv.Client().Get(srv.URL + ExportPath + "?sort=bogus")
	require.NoError(t, err)
	bad.Body.Close()
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)

	health, err := srv.Client().Get(srv.URL + HealthPath)
	require.NoError(t, err)
	health.Body.Close()
	assert.Equal(t, http.StatusOK, health.StatusCode)
}

func TestToConnectError(t *testing.T) {
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(toConnectError(service.ErrInvalidArgument)))
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(toConnectError(service.ErrNotFound)))
	assert.Equal(t, connect.CodeDeadlineExceeded, connect.CodeOf(toConnectError(context.DeadlineExceeded)))
	assert.Equal(t, connect.CodeInternal, connect.CodeOf(toConnectError(assert.AnError)))
}
