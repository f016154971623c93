package fx

import (
	"database/sql"

	"er-dashboard/internal/api"
	"er-dashboard/internal/cache"
	"er-dashboard/internal/config"
	"er-dashboard/internal/database"
	"er-dashboard/internal/db"
	"er-dashboard/internal/logger"
	"er-dashboard/internal/mock"
	"er-dashboard/internal/patchnotes"
	"er-dashboard/internal/repository"
	"er-dashboard/internal/server"
	"er-dashboard/internal/service"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func ProvideQueries(sqlDB *sql.DB) *db.Queries {
	return db.New(sqlDB)
}

// ProvideRosterSource picks the roster feed named by DATA_SOURCE.
func ProvideRosterSource(cfg *config.Config, logger zerolog.Logger) service.RosterSource {
	if cfg.DataSource == config.SourceUpstream {
		return api.NewUpstreamClient(cfg, logger)
	}
	return mock.Source{Seed: cfg.MockSeed, Size: cfg.RosterSize}
}

func ProvidePatchNoteFetcher(logger zerolog.Logger) service.PatchNoteFetcher {
	return patchnotes.NewClient(logger)
}

var Module = fx.Options(
	logger.Module,
	config.Module,
	fx.Invoke(func(cfg *config.Config, l zerolog.Logger) {
		lvl := logger.ApplyLevel(cfg.LogLevel)
		l.Info().Str("level", lvl.String()).Msg("log level applied")
	}),
	fx.Provide(database.New),
	fx.Provide(ProvideQueries),
	fx.Provide(cache.New),
	// repos
	fx.Provide(repository.NewRosterRepository),
	fx.Provide(repository.NewPatchNoteRepository),
	// sources
	fx.Provide(ProvideRosterSource),
	fx.Provide(ProvidePatchNoteFetcher),
	// svc
	fx.Provide(service.NewPatchNoteService),
	fx.Provide(service.NewRosterService),
	fx.Provide(service.NewRecommendService),
	fx.Provide(service.NewDirectoryService),
	fx.Provide(service.NewExportService),
	// server
	fx.Provide(server.NewDashboardServer),
)
