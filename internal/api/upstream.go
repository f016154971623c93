package api

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"er-dashboard/internal/config"
	"er-dashboard/internal/constants"
	"er-dashboard/internal/domain"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
	"golang.org/x/sync/errgroup"
)

type UpstreamClient struct {
	baseURL     string
	apiKey      string
	client      *fasthttp.Client
	logger      zerolog.Logger
	rateLimitMu sync.RWMutex
	rateLimit   RateLimitInfo
}

type RateLimitInfo struct {
	Bucket    string `json:"bucket"`
	Limit     int    `json:"limit"`
	Remaining int    `json:"remaining"`

	// seconds until reset
	Reset int `json:"reset"`

	UpdatedAt time.Time `json:"updated_at"`
}

// StatusError is returned when the upstream answers with a non-200 status.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream error: %d from %s", e.Code, e.URL)
}

type CharactersResponse struct {
	Status int              `json:"status"`
	Data   []map[string]any `json:"data"`
}

type WeaponsResponse struct {
	Status int              `json:"status"`
	Data   []map[string]any `json:"data"`
}

func NewUpstreamClient(cfg *config.Config, logger zerolog.Logger) *UpstreamClient {
	return &UpstreamClient{
		baseURL: strings.TrimRight(cfg.UpstreamBaseURL, "/"),
		apiKey:  cfg.UpstreamAPIKey,
		logger:  logger,
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         constants.ExternalAPITimeout,
			WriteTimeout:        constants.ExternalAPITimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		rateLimit: RateLimitInfo{
			Limit:     constants.UpstreamRateLimit,
			Remaining: constants.UpstreamRateLimit,
			Reset:     constants.UpstreamRateResetIn,
			UpdatedAt: time.Now(),
		},
	}
}

func (c *UpstreamClient) GetRateLimitInfo() RateLimitInfo {
	c.rateLimitMu.RLock()
	defer c.rateLimitMu.RUnlock()
	return c.rateLimit
}

func (c *UpstreamClient) updateRateLimit(resp *fasthttp.Response) {
	c.rateLimitMu.Lock()
	defer c.rateLimitMu.Unlock()

	if bucket := string(resp.Header.Peek("X-Ratelimit-Bucket")); bucket != "" {
		c.rateLimit.Bucket = bucket
	}
	if limit := string(resp.Header.Peek("X-Ratelimit-Limit")); limit != "" {
		if val, err := strconv.Atoi(limit); err == nil {
			c.rateLimit.Limit = val
		}
	}
	if remaining := string(resp.Header.Peek("X-Ratelimit-Remaining")); remaining != "" {
		if val, err := strconv.Atoi(remaining); err == nil {
			c.rateLimit.Remaining = val
		}
	}
	if reset := string(resp.Header.Peek("X-Ratelimit-Reset")); reset != "" {
		if val, err := strconv.Atoi(reset); err == nil {
			c.rateLimit.Reset = val
		}
	}
	c.rateLimit.UpdatedAt = time.Now()
}

func (c *UpstreamClient) GetCharacters(ctx context.Context) (*CharactersResponse, error) {
	return doRequest[CharactersResponse](ctx, c, c.baseURL+"/characters")
}

func (c *UpstreamClient) GetCharacterWeapons(ctx context.Context, characterID int) (*WeaponsResponse, error) {
	url := fmt.Sprintf("%s/characters/%d/weapons", c.baseURL, characterID)
	return doRequest[WeaponsResponse](ctx, c, url)
}

// FetchRoster pulls the character list, normalizes it and then loads every
// character's weapon variants concurrently. A character whose weapon list
// fails keeps its primary weapon only.
func (c *UpstreamClient) FetchRoster(ctx context.Context) ([]domain.CharacterSummary, domain.VariantTable, error) {
	resp, err := c.GetCharacters(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch characters: %w", err)
	}

	roster := NormalizeRoster(resp.Data, c.logger)
	if len(roster) == 0 {
		return nil, nil, fmt.Errorf("upstream returned no usable characters")
	}

	variants := make(domain.VariantTable, len(roster))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(constants.UpstreamConcurrency)

	for _, ch := range roster {
		ch := ch
		g.Go(func() error {
			stats := []domain.WeaponStat{primaryWeapon(ch)}

			wr, err := c.GetCharacterWeapons(gctx, ch.ID)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				c.logger.Warn().Err(err).Int("character_id", ch.ID).Msg("failed to fetch weapons, keeping primary only")
			} else {
				for _, raw := range wr.Data {
					w, err := NormalizeWeapon(ch.ID, raw)
					if err != nil {
						c.logger.Debug().Err(err).Int("character_id", ch.ID).Msg("skipping weapon record")
						continue
					}
					if w.Weapon == ch.Weapon {
						continue
					}
					stats = append(stats, w)
				}
			}

			mu.Lock()
			variants[ch.ID] = stats
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	for id, stats := range variants {
		rest := stats[1:]
		sort.SliceStable(rest, func(i, j int) bool { return rest[i].PickRate > rest[j].PickRate })
		variants[id] = stats
	}

	c.logger.Info().
		Int("characters", len(roster)).
		Int("rate_limit_remaining", c.GetRateLimitInfo().Remaining).
		Msg("upstream roster fetched")

	return roster, variants, nil
}

func primaryWeapon(c domain.CharacterSummary) domain.WeaponStat {
	return domain.WeaponStat{
		CharacterID: c.ID,
		Weapon:      c.Weapon,
		WinRate:     c.WinRate,
		PickRate:    c.PickRate,
		MMRGain:     c.MMRGain,
		Primary:     true,
	}
}

func doRequest[T any](ctx context.Context, client *UpstreamClient, url string) (*T, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")
	if client.apiKey != "" {
		req.Header.Set("Authorization", client.apiKey)
	}

	deadline, ok := ctx.Deadline()
	if ok {
		if err := client.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, err
		}
	} else {
		if err := client.client.DoTimeout(req, resp, constants.ExternalAPITimeout); err != nil {
			return nil, err
		}
	}

	client.updateRateLimit(resp)

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode(), URL: url}
	}

	var result T
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}
