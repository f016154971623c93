package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"er-dashboard/internal/cache"
	"er-dashboard/internal/config"
	"er-dashboard/internal/constants"
	fxmodules "er-dashboard/internal/fx"
	"er-dashboard/internal/middleware"
	"er-dashboard/internal/server"
	"er-dashboard/internal/service"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(runServer),
	).Run()
}

func runServer(
	lc fx.Lifecycle,
	dashboardServer *server.DashboardServer,
	rosterSvc *service.RosterService,
	exportSvc *service.ExportService,
	cfg *config.Config,
	db *sql.DB,
	c *cache.Cache,
	logger zerolog.Logger,
) {
	mux := http.NewServeMux()

	path, handler := server.NewDashboardHandler(dashboardServer)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{middleware.RequestIDHeader, "Content-Disposition"},
		AllowCredentials: true,
	})

	requestIDMiddleware := middleware.RequestID(logger)
	recoverMiddleware := middleware.Recover(logger)
	wrap := func(h http.Handler) http.Handler {
		return requestIDMiddleware(recoverMiddleware(corsHandler.Handler(h)))
	}

	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "*")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		wrap(handler).ServeHTTP(w, r)
	})
	mux.Handle(server.ExportPath, wrap(server.ExportHandler(exportSvc, logger)))
	mux.Handle(server.HealthPath, server.HealthHandler(db))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: mux,
	}

	warmCtx, cancelWarm := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				res, err := rosterSvc.Refresh(warmCtx, false)
				if err != nil {
					logger.Warn().Err(err).Msg("initial roster refresh failed")
					return
				}
				logger.Info().
					Str("snapshot_id", res.SnapshotID).
					Str("source", res.Source).
					Int("characters", res.Characters).
					Msg("roster ready")
			}()
			go func() {
				logger.Info().Str("addr", srv.Addr).Msg("server starting")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Fatal().Err(err).Msg("server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("shutting down server")
			cancelWarm()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("server shutdown failed")
				return err
			}

			if err := c.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing cache connection")
			}
			if err := db.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing database connection")
			}

			logger.Info().Msg("server stopped gracefully")
			return nil
		},
	})
}
