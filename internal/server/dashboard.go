package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"er-dashboard/internal/honey"
	"er-dashboard/internal/service"

	"connectrpc.com/connect"
	"github.com/rs/zerolog"
)

const DashboardPath = "/dashboard.v1.Dashboard/"

const (
	GetRosterProcedure         = DashboardPath + "GetRoster"
	GetWeaponsProcedure        = DashboardPath + "GetWeapons"
	GetHoneyProcedure          = DashboardPath + "GetHoney"
	SuggestTeamsProcedure      = DashboardPath + "SuggestTeams"
	ListPatchNotesProcedure    = DashboardPath + "ListPatchNotes"
	ListClustersProcedure      = DashboardPath + "ListClusters"
	ListCompsProcedure         = DashboardPath + "ListComps"
	ListClusterTriadsProcedure = DashboardPath + "ListClusterTriads"
	RefreshProcedure           = DashboardPath + "Refresh"
)

type DashboardServer struct {
	rosterSvc    *service.RosterService
	recommendSvc *service.RecommendService
	patchSvc     *service.PatchNoteService
	directorySvc *service.DirectoryService
	logger       zerolog.Logger
}

func NewDashboardServer(
	rosterSvc *service.RosterService,
	recommendSvc *service.RecommendService,
	patchSvc *service.PatchNoteService,
	directorySvc *service.DirectoryService,
	logger zerolog.Logger,
) *DashboardServer {
	return &DashboardServer{
		rosterSvc:    rosterSvc,
		recommendSvc: recommendSvc,
		patchSvc:     patchSvc,
		directorySvc: directorySvc,
		logger:       logger,
	}
}

// NewDashboardHandler mounts every dashboard procedure and returns the path
// prefix to register it under.
func NewDashboardHandler(s *DashboardServer, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(GetRosterProcedure, connect.NewUnaryHandler(GetRosterProcedure, s.GetRoster, opts...))
	mux.Handle(GetWeaponsProcedure, connect.NewUnaryHandler(GetWeaponsProcedure, s.GetWeapons, opts...))
	mux.Handle(GetHoneyProcedure, connect.NewUnaryHandler(GetHoneyProcedure, s.GetHoney, opts...))
	mux.Handle(SuggestTeamsProcedure, connect.NewUnaryHandler(SuggestTeamsProcedure, s.SuggestTeams, opts...))
	mux.Handle(ListPatchNotesProcedure, connect.NewUnaryHandler(ListPatchNotesProcedure, s.ListPatchNotes, opts...))
	mux.Handle(ListClustersProcedure, connect.NewUnaryHandler(ListClustersProcedure, s.ListClusters, opts...))
	mux.Handle(ListCompsProcedure, connect.NewUnaryHandler(ListCompsProcedure, s.ListComps, opts...))
	mux.Handle(ListClusterTriadsProcedure, connect.NewUnaryHandler(ListClusterTriadsProcedure, s.ListClusterTriads, opts...))
	mux.Handle(RefreshProcedure, connect.NewUnaryHandler(RefreshProcedure, s.Refresh, opts...))
	return DashboardPath, mux
}

func (s *DashboardServer) GetRoster(ctx context.Context, req *connect.Request[GetRosterRequest]) (*connect.Response[GetRosterResponse], error) {
	defer s.timed(ctx, "GetRoster")()

	page, err := s.rosterSvc.Roster(ctx, req.Msg.query())
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(page), nil
}

func (s *DashboardServer) GetWeapons(ctx context.Context, req *connect.Request[GetWeaponsRequest]) (*connect.Response[GetWeaponsResponse], error) {
	defer s.timed(ctx, "GetWeapons")()

	weapons, err := s.rosterSvc.Weapons(ctx, req.Msg.CharacterID, req.Msg.SortKey, req.Msg.Direction)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&GetWeaponsResponse{CharacterID: req.Msg.CharacterID, Weapons: weapons}), nil
}

func (s *DashboardServer) GetHoney(ctx context.Context, req *connect.Request[GetHoneyRequest]) (*connect.Response[GetHoneyResponse], error) {
	defer s.timed(ctx, "GetHoney")()

	report, err := s.rosterSvc.Honey(ctx, honey.Options{TopK: req.Msg.TopK, TopFraction: req.Msg.TopFraction})
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&GetHoneyResponse{
		IDs:        report.Result.IDs,
		Mode:       report.Result.Mode,
		Thresholds: report.Thresholds,
	}), nil
}

func (s *DashboardServer) SuggestTeams(ctx context.Context, req *connect.Request[SuggestTeamsRequest]) (*connect.Response[SuggestTeamsResponse], error) {
	defer s.timed(ctx, "SuggestTeams")()

	out, err := s.recommendSvc.Suggest(ctx, service.SuggestRequest{
		Anchors: req.Msg.Anchors,
		Pool:    req.Msg.Pool,
		TopK:    req.Msg.TopK,
	})
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&SuggestTeamsResponse{Suggestions: out}), nil
}

func (s *DashboardServer) ListPatchNotes(ctx context.Context, req *connect.Request[ListPatchNotesRequest]) (*connect.Response[ListPatchNotesResponse], error) {
	defer s.timed(ctx, "ListPatchNotes")()

	var since time.Time
	if req.Msg.Since != "" {
		var err error
		since, err = parseSince(req.Msg.Since)
		if err != nil {
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
	}

	notes, err := s.patchSvc.List(ctx, service.PatchNoteQuery{
		Kind:   req.Msg.Kind,
		Since:  since,
		Limit:  req.Msg.Limit,
		Target: req.Msg.Target,
	})
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&ListPatchNotesResponse{Notes: notes}), nil
}

func (s *DashboardServer) ListClusters(ctx context.Context, req *connect.Request[ListClustersRequest]) (*connect.Response[ListClustersResponse], error) {
	defer s.timed(ctx, "ListClusters")()

	clusters, err := s.directorySvc.Clusters(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&ListClustersResponse{Clusters: clusters}), nil
}

func (s *DashboardServer) ListComps(ctx context.Context, req *connect.Request[ListCompsRequest]) (*connect.Response[ListCompsResponse], error) {
	defer s.timed(ctx, "ListComps")()

	comps, err := s.directorySvc.Comps(ctx, req.Msg.SortKey, req.Msg.Direction, req.Msg.Cluster)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&ListCompsResponse{Comps: comps}), nil
}

func (s *DashboardServer) ListClusterTriads(ctx context.Context, req *connect.Request[ListClusterTriadsRequest]) (*connect.Response[ListClusterTriadsResponse], error) {
	defer s.timed(ctx, "ListClusterTriads")()

	triads, err := s.directorySvc.ClusterTriads(ctx, req.Msg.SortKey, req.Msg.Direction)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&ListClusterTriadsResponse{Triads: triads}), nil
}

func (s *DashboardServer) Refresh(ctx context.Context, req *connect.Request[RefreshRequest]) (*connect.Response[RefreshResponse], error) {
	defer s.timed(ctx, "Refresh")()

	res, err := s.rosterSvc.Refresh(ctx, req.Msg.Force)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(res), nil
}

func (s *DashboardServer) timed(ctx context.Context, method string) func() {
	start := time.Now()
	logger := zerolog.Ctx(ctx)
	if logger.GetLevel() == zerolog.Disabled {
		logger = &s.logger
	}
	return func() {
		logger.Debug().
			Str("rpc", method).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Msg("rpc handled")
	}
}

func toConnectError(err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidArgument):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, service.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

func parseSince(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("since must be RFC 3339 or YYYY-MM-DD, got %q", s)
}
