package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"er-dashboard/internal/constants"
	"er-dashboard/internal/service"

	"github.com/rs/zerolog"
)

const (
	ExportPath = "/export/leaderboard.xlsx"
	HealthPath = "/health"

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ExportHandler serves the leaderboard workbook. It accepts the same filters
// as GetRoster as query parameters: tier (repeatable or comma separated),
// q, sort, dir and honey.
func ExportHandler(exportSvc *service.ExportService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), constants.RequestTimeout)
		defer cancel()

		q := r.URL.Query()
		query := service.RosterQuery{
			Search:    q.Get("q"),
			SortKey:   q.Get("sort"),
			Direction: q.Get("dir"),
		}
		for _, t := range q["tier"] {
			for _, part := range strings.Split(t, ",") {
				if part = strings.TrimSpace(part); part != "" {
					query.Tiers = append(query.Tiers, part)
				}
			}
		}
		if h := q.Get("honey"); h != "" {
			only, err := strconv.ParseBool(h)
			if err != nil {
				http.Error(w, "honey must be a boolean", http.StatusBadRequest)
				return
			}
			query.HoneyOnly = only
		}

		data, err := exportSvc.Leaderboard(ctx, query)
		if err != nil {
			status := http.StatusInternalServerError
			switch {
			case errors.Is(err, service.ErrInvalidArgument):
				status = http.StatusBadRequest
			case errors.Is(err, service.ErrNotFound):
				status = http.StatusNotFound
			}
			zerolog.Ctx(ctx).Warn().Err(err).Int("status", status).Msg("export failed")
			http.Error(w, err.Error(), status)
			return
		}

		filename := fmt.Sprintf("leaderboard-%s.xlsx", time.Now().UTC().Format("20060102"))
		w.Header().Set("Content-Type", xlsxContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		if _, err := w.Write(data); err != nil {
			logger.Warn().Err(err).Msg("failed to write export")
		}
	}
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

func HealthHandler(sqlDB *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), constants.DatabaseTimeout)
		defer cancel()

		resp := healthResponse{Status: "ok", Database: "ok"}
		status := http.StatusOK
		if err := sqlDB.PingContext(ctx); err != nil {
			resp = healthResponse{Status: "degraded", Database: err.Error()}
			status = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(resp)
	}
}
