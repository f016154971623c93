package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"er-dashboard/internal/config"
	"er-dashboard/internal/constants"
	"er-dashboard/internal/domain"
	"er-dashboard/internal/mock"
	"er-dashboard/internal/repository"
	"er-dashboard/internal/rng"

	"github.com/rs/zerolog"
)

// PatchNoteFetcher loads patch notes from a remote listing page.
type PatchNoteFetcher interface {
	Fetch(ctx context.Context, url string) ([]domain.PatchNote, error)
}

type PatchNoteQuery struct {
	Kind   string
	Since  time.Time
	Limit  int
	Target string
}

type PatchNoteService struct {
	fetcher PatchNoteFetcher
	repo    *repository.PatchNoteRepository
	cfg     *config.Config
	logger  zerolog.Logger
}

func NewPatchNoteService(fetcher PatchNoteFetcher, repo *repository.PatchNoteRepository, cfg *config.Config, logger zerolog.Logger) *PatchNoteService {
	return &PatchNoteService{fetcher: fetcher, repo: repo, cfg: cfg, logger: logger}
}

// Refresh scrapes PATCH_NOTES_URL when set. Otherwise the mock source gets
// generated notes and the upstream source is left untouched.
func (s *PatchNoteService) Refresh(ctx context.Context) error {
	var notes []domain.PatchNote
	switch {
	case s.cfg.PatchNotesURL != "":
		fetchCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
		defer cancel()

		fetched, err := s.fetcher.Fetch(fetchCtx, s.cfg.PatchNotesURL)
		if err != nil {
			return fmt.Errorf("failed to scrape patch notes: %w", err)
		}
		notes = fetched
	case s.cfg.DataSource == config.SourceMock:
		roster, _ := mock.GenerateRoster(s.cfg.RosterSize, rng.New(s.cfg.MockSeed))
		notes = mock.GeneratePatchNotes(roster, rng.New(s.cfg.MockSeed^0x7e7e), constants.MockPatchNoteCount)
	default:
		s.logger.Debug().Msg("no patch note source configured")
		return nil
	}

	if err := s.repo.UpsertBatch(ctx, notes); err != nil {
		return fmt.Errorf("failed to store patch notes: %w", err)
	}
	s.logger.Info().Int("notes", len(notes)).Msg("patch notes refreshed")
	return nil
}

// List returns stored notes newest first. A target filter keeps only the
// matching entries and drops notes left empty.
func (s *PatchNoteService) List(ctx context.Context, q PatchNoteQuery) ([]domain.PatchNote, error) {
	kind := domain.PatchKind(strings.ToLower(q.Kind))
	switch kind {
	case "", domain.PatchKindRelease, domain.PatchKindHotfix:
	default:
		return nil, fmt.Errorf("%w: unknown patch kind %q", ErrInvalidArgument, q.Kind)
	}
	if q.Limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative", ErrInvalidArgument)
	}

	limit := q.Limit
	if limit == 0 || limit > constants.PatchNoteListLimit {
		limit = constants.PatchNoteListLimit
	}

	target := strings.ToLower(strings.TrimSpace(q.Target))
	filter := repository.PatchNoteFilter{Kind: kind, Since: q.Since, Limit: limit}
	if target != "" {
		// the target filter runs after the query, so read everything first
		filter.Limit = 0
	}

	notes, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list patch notes: %w", err)
	}
	if target == "" {
		return notes, nil
	}

	out := make([]domain.PatchNote, 0, len(notes))
	for _, n := range notes {
		entries := make([]domain.PatchEntry, 0, len(n.Entries))
		for _, e := range n.Entries {
			if strings.ToLower(e.Target) == target {
				entries = append(entries, e)
			}
		}
		if len(entries) == 0 {
			continue
		}
		n.Entries = entries
		out = append(out, n)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *PatchNoteService) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
