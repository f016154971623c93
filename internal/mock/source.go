package mock

import (
	"context"

	"er-dashboard/internal/domain"
	"er-dashboard/internal/rng"
)

// Source serves a generated roster in place of the upstream client.
type Source struct {
	Seed int32
	Size int
}

func (s Source) FetchRoster(ctx context.Context) ([]domain.CharacterSummary, domain.VariantTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	roster, variants := GenerateRoster(s.Size, rng.New(s.Seed))
	return roster, variants, nil
}
