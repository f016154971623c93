package service

import (
	"context"
	"fmt"
	"strings"

	"er-dashboard/internal/domain"
	"er-dashboard/internal/mock"
	"er-dashboard/internal/stats"

	"github.com/rs/zerolog"
)

var summarySortKeys = map[string]bool{
	domain.KeyID:       true,
	domain.KeyName:     true,
	domain.KeyWinRate:  true,
	domain.KeyPickRate: true,
	domain.KeyMMRGain:  true,
	domain.KeySamples:  true,
}

type DirectoryService struct {
	roster *RosterService
	logger zerolog.Logger
}

func NewDirectoryService(roster *RosterService, logger zerolog.Logger) *DirectoryService {
	return &DirectoryService{roster: roster, logger: logger}
}

func (s *DirectoryService) Clusters(ctx context.Context) ([]domain.ClusterMeta, error) {
	rc, err := s.roster.Context(ctx)
	if err != nil {
		return nil, err
	}
	return rc.Clusters, nil
}

// Comps lists recorded compositions. A non-empty cluster label keeps comps
// with at least one member from that cluster.
func (s *DirectoryService) Comps(ctx context.Context, sortKey, direction, cluster string) ([]domain.CompSummary, error) {
	sortKey, err := summarySortKey(sortKey)
	if err != nil {
		return nil, err
	}

	rc, err := s.roster.Context(ctx)
	if err != nil {
		return nil, err
	}

	comps := rc.Comps
	if cluster = strings.ToUpper(strings.TrimSpace(cluster)); cluster != "" {
		if !knownCluster(rc.Clusters, cluster) {
			return nil, fmt.Errorf("%w: cluster %q", ErrNotFound, cluster)
		}
		filtered := make([]domain.CompSummary, 0, len(comps))
		for _, c := range comps {
			for _, id := range c.Members {
				if mock.ClusterLabel(id) == cluster {
					filtered = append(filtered, c)
					break
				}
			}
		}
		comps = filtered
	}

	return stats.Sort(comps, sortKey, stats.ParseDirection(direction)), nil
}

func (s *DirectoryService) ClusterTriads(ctx context.Context, sortKey, direction string) ([]domain.ClusterTriadSummary, error) {
	sortKey, err := summarySortKey(sortKey)
	if err != nil {
		return nil, err
	}

	rc, err := s.roster.Context(ctx)
	if err != nil {
		return nil, err
	}
	return stats.Sort(rc.ClusterTriads, sortKey, stats.ParseDirection(direction)), nil
}

func summarySortKey(key string) (string, error) {
	if key == "" {
		return domain.KeyWinRate, nil
	}
	if !summarySortKeys[key] {
		return "", fmt.Errorf("%w: unknown sort key %q", ErrInvalidArgument, key)
	}
	return key, nil
}

func knownCluster(clusters []domain.ClusterMeta, label string) bool {
	for _, c := range clusters {
		if c.Label == label {
			return true
		}
	}
	return false
}
