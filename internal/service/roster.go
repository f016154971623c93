package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"er-dashboard/internal/cache"
	"er-dashboard/internal/config"
	"er-dashboard/internal/constants"
	"er-dashboard/internal/domain"
	"er-dashboard/internal/honey"
	"er-dashboard/internal/mock"
	"er-dashboard/internal/repository"
	"er-dashboard/internal/stats"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// RosterSource yields a full roster with weapon variants.
type RosterSource interface {
	FetchRoster(ctx context.Context) ([]domain.CharacterSummary, domain.VariantTable, error)
}

var characterSortKeys = map[string]bool{
	domain.KeyID:          true,
	domain.KeyName:        true,
	domain.KeyWeapon:      true,
	domain.KeyWinRate:     true,
	domain.KeyPickRate:    true,
	domain.KeyMMRGain:     true,
	domain.KeyTier:        true,
	domain.KeyRankBracket: true,
	domain.KeyAvgSurvival: true,
}

var weaponSortKeys = map[string]bool{
	domain.KeyWeapon:   true,
	domain.KeyWinRate:  true,
	domain.KeyPickRate: true,
	domain.KeyMMRGain:  true,
}

type RosterQuery struct {
	Tiers     []string
	Search    string
	SortKey   string
	Direction string
	HoneyOnly bool
	HoneyTopK int
}

type RosterRow struct {
	domain.CharacterSummary
	Honey    bool   `json:"honey"`
	Survival string `json:"survival"`
}

type RosterPage struct {
	SnapshotID  string           `json:"snapshotId"`
	GeneratedAt time.Time        `json:"generatedAt"`
	Rows        []RosterRow      `json:"rows"`
	Honey       honey.Result     `json:"honey"`
	Thresholds  honey.Thresholds `json:"thresholds"`
	Total       int              `json:"total"`
}

func (p *RosterPage) Characters() []domain.CharacterSummary {
	out := make([]domain.CharacterSummary, len(p.Rows))
	for i, r := range p.Rows {
		out[i] = r.CharacterSummary
	}
	return out
}

type HoneyReport struct {
	Result     honey.Result     `json:"result"`
	Thresholds honey.Thresholds `json:"thresholds"`
}

type RefreshResult struct {
	SnapshotID  string    `json:"snapshotId"`
	Source      string    `json:"source"`
	Characters  int       `json:"characters"`
	PatchNotes  int       `json:"patchNotes"`
	GeneratedAt time.Time `json:"generatedAt"`
}

type RosterService struct {
	source  RosterSource
	repo    *repository.RosterRepository
	patches *PatchNoteService
	cache   *cache.Cache
	cfg     *config.Config
	logger  zerolog.Logger

	mu      sync.RWMutex
	current *domain.RosterContext
}

func NewRosterService(
	source RosterSource,
	repo *repository.RosterRepository,
	patches *PatchNoteService,
	cache *cache.Cache,
	cfg *config.Config,
	logger zerolog.Logger,
) *RosterService {
	return &RosterService{
		source:  source,
		repo:    repo,
		patches: patches,
		cache:   cache,
		cfg:     cfg,
		logger:  logger,
	}
}

// Refresh pulls a fresh roster from the source and the patch notes in
// parallel, stores the snapshot and swaps the in-memory context. Without
// force a snapshot younger than the refresh TTL is reused.
func (s *RosterService) Refresh(ctx context.Context, force bool) (*RefreshResult, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RefreshTimeout)
	defer cancel()

	if !force {
		shouldRefresh, err := s.repo.ShouldRefresh(ctx, s.cfg.RefreshTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to check snapshot age: %w", err)
		}
		if !shouldRefresh {
			rc, err := s.load(ctx)
			if err == nil {
				s.logger.Info().Str("snapshot_id", rc.SnapshotID).Msg("snapshot still fresh, skipping refresh")
				notes, err := s.patches.Count(ctx)
				if err != nil {
					s.logger.Warn().Err(err).Msg("failed to count patch notes")
				}
				return &RefreshResult{
					SnapshotID:  rc.SnapshotID,
					Source:      s.cfg.DataSource,
					Characters:  len(rc.Roster),
					PatchNotes:  notes,
					GeneratedAt: rc.GeneratedAt,
				}, nil
			}
			s.logger.Warn().Err(err).Msg("failed to load fresh snapshot, refreshing")
		}
	}

	s.logger.Info().Str("source", s.cfg.DataSource).Bool("force", force).Msg("refreshing roster")

	var (
		roster   []domain.CharacterSummary
		variants domain.VariantTable
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		roster, variants, err = s.source.FetchRoster(gctx)
		if err != nil {
			return fmt.Errorf("failed to fetch roster: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		// patch notes are best effort; a broken page must not block the roster
		if err := s.patches.Refresh(gctx); err != nil {
			s.logger.Warn().Err(err).Msg("failed to refresh patch notes")
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	fetchedAt := time.Now().UTC()
	snapshotID, err := s.repo.SaveSnapshot(ctx, &repository.Snapshot{
		Source:    s.cfg.DataSource,
		Seed:      s.cfg.MockSeed,
		FetchedAt: fetchedAt,
		Roster:    roster,
		Variants:  variants,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save snapshot: %w", err)
	}

	rc := mock.BuildContext(s.cfg.MockSeed, roster, variants)
	rc.SnapshotID = snapshotID
	rc.GeneratedAt = fetchedAt
	s.swap(ctx, rc)

	notes, err := s.patches.Count(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to count patch notes")
	}

	s.logger.Info().
		Str("snapshot_id", snapshotID).
		Int("characters", len(roster)).
		Int("patch_notes", notes).
		Msg("roster refreshed")

	return &RefreshResult{
		SnapshotID:  snapshotID,
		Source:      s.cfg.DataSource,
		Characters:  len(roster),
		PatchNotes:  notes,
		GeneratedAt: fetchedAt,
	}, nil
}

// Context returns the current roster context, loading the stored snapshot or
// refreshing when nothing is in memory yet.
func (s *RosterService) Context(ctx context.Context) (*domain.RosterContext, error) {
	s.mu.RLock()
	rc := s.current
	s.mu.RUnlock()
	if rc != nil {
		return rc, nil
	}

	rc, err := s.load(ctx)
	if err == nil {
		return rc, nil
	}
	if !errors.Is(err, repository.ErrNoSnapshot) {
		return nil, err
	}

	if _, err := s.Refresh(ctx, true); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, nil
}

func (s *RosterService) load(ctx context.Context) (*domain.RosterContext, error) {
	snap, err := s.repo.LatestSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	rc := mock.BuildContext(snap.Seed, snap.Roster, snap.Variants)
	rc.SnapshotID = snap.ID
	rc.GeneratedAt = snap.FetchedAt
	s.swap(ctx, rc)
	return rc, nil
}

func (s *RosterService) swap(ctx context.Context, rc *domain.RosterContext) {
	s.mu.Lock()
	prev := s.current
	s.current = rc
	s.mu.Unlock()

	if prev != nil && prev.SnapshotID != rc.SnapshotID {
		if _, err := s.cache.Invalidate(ctx, prev.SnapshotID+":"); err != nil {
			s.logger.Warn().Err(err).Str("snapshot_id", prev.SnapshotID).Msg("failed to invalidate cache")
		}
	}
}

// Roster filters, sorts and badges the current roster.
func (s *RosterService) Roster(ctx context.Context, q RosterQuery) (*RosterPage, error) {
	tiers := make(map[domain.Tier]bool, len(q.Tiers))
	for _, t := range q.Tiers {
		tier := domain.Tier(strings.ToUpper(strings.TrimSpace(t)))
		if !tier.Valid() {
			return nil, fmt.Errorf("%w: unknown tier %q", ErrInvalidArgument, t)
		}
		tiers[tier] = true
	}

	sortKey := q.SortKey
	if sortKey == "" {
		sortKey = domain.KeyWinRate
	}
	if !characterSortKeys[sortKey] {
		return nil, fmt.Errorf("%w: unknown sort key %q", ErrInvalidArgument, q.SortKey)
	}

	rc, err := s.Context(ctx)
	if err != nil {
		return nil, err
	}

	report, err := s.Honey(ctx, honey.Options{TopK: q.HoneyTopK})
	if err != nil {
		return nil, err
	}
	badges := report.Result.Set()

	search := strings.ToLower(strings.TrimSpace(q.Search))
	filtered := make([]domain.CharacterSummary, 0, len(rc.Roster))
	for _, c := range rc.Roster {
		if len(tiers) > 0 && !tiers[c.Tier] {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(c.Name), search) &&
			!strings.Contains(strings.ToLower(c.Weapon), search) {
			continue
		}
		if _, ok := badges[c.ID]; q.HoneyOnly && !ok {
			continue
		}
		filtered = append(filtered, c)
	}

	sorted := stats.Sort(filtered, sortKey, stats.ParseDirection(q.Direction))
	rows := make([]RosterRow, len(sorted))
	for i, c := range sorted {
		_, badged := badges[c.ID]
		rows[i] = RosterRow{
			CharacterSummary: c,
			Honey:            badged,
			Survival:         stats.FormatDuration(c.AvgSurvival),
		}
	}

	return &RosterPage{
		SnapshotID:  rc.SnapshotID,
		GeneratedAt: rc.GeneratedAt,
		Rows:        rows,
		Honey:       report.Result,
		Thresholds:  report.Thresholds,
		Total:       len(rc.Roster),
	}, nil
}

// Weapons lists a character's weapon variants, primary first unless a sort
// key is given.
func (s *RosterService) Weapons(ctx context.Context, characterID int, sortKey, direction string) ([]domain.WeaponStat, error) {
	if sortKey != "" && !weaponSortKeys[sortKey] {
		return nil, fmt.Errorf("%w: unknown sort key %q", ErrInvalidArgument, sortKey)
	}

	rc, err := s.Context(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := rc.Character(characterID); !ok {
		return nil, fmt.Errorf("%w: character %d", ErrNotFound, characterID)
	}

	weapons := rc.Variants[characterID]
	if weapons == nil {
		weapons = []domain.WeaponStat{}
	}
	if sortKey == "" {
		return append([]domain.WeaponStat(nil), weapons...), nil
	}
	return stats.Sort(weapons, sortKey, stats.ParseDirection(direction)), nil
}

// Honey runs the top performer selection over the whole roster. Results are
// cached per snapshot.
func (s *RosterService) Honey(ctx context.Context, opts honey.Options) (*HoneyReport, error) {
	if opts.TopK < 0 {
		return nil, fmt.Errorf("%w: topK must not be negative", ErrInvalidArgument)
	}
	if opts.TopFraction < 0 || opts.TopFraction > 1 {
		return nil, fmt.Errorf("%w: topFraction must be within [0, 1]", ErrInvalidArgument)
	}

	rc, err := s.Context(ctx)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s:honey:%d:%g", rc.SnapshotID, opts.TopK, opts.TopFraction)
	var report HoneyReport
	if found, err := s.cache.GetJSON(ctx, key, &report); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
	} else if found {
		return &report, nil
	}

	report = HoneyReport{
		Result:     honey.Select(rc.Roster, opts),
		Thresholds: honey.ComputeThresholds(rc.Roster),
	}
	if err := s.cache.SetJSON(ctx, key, report); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
	return &report, nil
}
