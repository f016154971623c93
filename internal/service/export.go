package service

import (
	"context"
	"fmt"

	"er-dashboard/internal/export"

	"github.com/rs/zerolog"
)

type ExportService struct {
	roster *RosterService
	logger zerolog.Logger
}

func NewExportService(roster *RosterService, logger zerolog.Logger) *ExportService {
	return &ExportService{roster: roster, logger: logger}
}

// Leaderboard renders the filtered and sorted roster as an xlsx workbook.
func (s *ExportService) Leaderboard(ctx context.Context, q RosterQuery) ([]byte, error) {
	page, err := s.roster.Roster(ctx, q)
	if err != nil {
		return nil, err
	}

	data, err := export.Leaderboard(page.Characters(), page.Honey.Set())
	if err != nil {
		return nil, fmt.Errorf("failed to render leaderboard: %w", err)
	}

	s.logger.Info().
		Str("snapshot_id", page.SnapshotID).
		Int("rows", len(page.Rows)).
		Int("bytes", len(data)).
		Msg("leaderboard exported")
	return data, nil
}
