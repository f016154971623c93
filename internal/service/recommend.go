package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"er-dashboard/internal/cache"
	"er-dashboard/internal/constants"
	"er-dashboard/internal/domain"
	"er-dashboard/internal/recommend"

	"github.com/rs/zerolog"
)

type SuggestRequest struct {
	Anchors [][]int `json:"anchors"`
	Pool    []int   `json:"pool"`
	TopK    int     `json:"topK"`
}

type RecommendService struct {
	roster *RosterService
	cache  *cache.Cache
	logger zerolog.Logger
}

func NewRecommendService(roster *RosterService, cache *cache.Cache, logger zerolog.Logger) *RecommendService {
	return &RecommendService{roster: roster, cache: cache, logger: logger}
}

// Suggest ranks three member teams for the request. Every id must exist in
// the current roster; an empty pool means the whole roster.
func (s *RecommendService) Suggest(ctx context.Context, req SuggestRequest) ([]domain.CompSuggestion, error) {
	if req.TopK < 0 || req.TopK > constants.MaxSuggestionTopK {
		return nil, fmt.Errorf("%w: topK must be within [0, %d]", ErrInvalidArgument, constants.MaxSuggestionTopK)
	}
	if len(req.Pool) > constants.MaxSuggestionPool {
		return nil, fmt.Errorf("%w: pool larger than %d", ErrInvalidArgument, constants.MaxSuggestionPool)
	}

	rc, err := s.roster.Context(ctx)
	if err != nil {
		return nil, err
	}

	for _, list := range req.Anchors {
		for _, id := range list {
			if _, ok := rc.Character(id); !ok {
				return nil, fmt.Errorf("%w: anchor character %d", ErrNotFound, id)
			}
		}
	}
	for _, id := range req.Pool {
		if _, ok := rc.Character(id); !ok {
			return nil, fmt.Errorf("%w: pool character %d", ErrNotFound, id)
		}
	}

	pool := req.Pool
	if len(pool) == 0 {
		pool = make([]int, 0, len(rc.Roster))
		for _, c := range rc.Roster {
			pool = append(pool, c.ID)
		}
		if len(pool) > constants.MaxSuggestionPool {
			pool = pool[:constants.MaxSuggestionPool]
		}
	}

	key, err := suggestCacheKey(rc.SnapshotID, req)
	if err != nil {
		return nil, err
	}
	var cached []domain.CompSuggestion
	if found, err := s.cache.GetJSON(ctx, key, &cached); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
	} else if found {
		s.logger.Debug().Str("key", key).Msg("suggestion cache hit")
		return cached, nil
	}

	out := recommend.Suggest(req.Anchors, pool, rc.Synergy, req.TopK)

	s.logger.Debug().
		Int("anchor_lists", len(req.Anchors)).
		Int("pool", len(pool)).
		Int("suggestions", len(out)).
		Msg("teams suggested")

	if err := s.cache.SetJSON(ctx, key, out); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
	return out, nil
}

func suggestCacheKey(snapshotID string, req SuggestRequest) (string, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to encode suggestion request: %w", err)
	}
	sum := sha256.Sum256(data)
	return snapshotID + ":suggest:" + hex.EncodeToString(sum[:16]), nil
}
