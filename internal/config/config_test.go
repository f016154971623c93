package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"SERVER_PORT", "DB_PATH", "DATA_SOURCE", "MOCK_SEED", "ROSTER_SIZE", "CACHE_TTL", "REFRESH_TTL"} {
		t.Setenv(k, "")
	}

	cfg, err := Load(zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, SourceMock, cfg.DataSource)
	assert.Equal(t, int32(20240627), cfg.MockSeed)
	assert.Equal(t, 60, cfg.RosterSize)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 15*time.Minute, cfg.RefreshTTL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MOCK_SEED", "-7")
	t.Setenv("ROSTER_SIZE", "12")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("DATA_SOURCE", "upstream")
	t.Setenv("UPSTREAM_BASE_URL", "http://stats.local")

	cfg, err := Load(zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, int32(-7), cfg.MockSeed)
	assert.Equal(t, 12, cfg.RosterSize)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, SourceUpstream, cfg.DataSource)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "Bad seed", env: map[string]string{"MOCK_SEED": "abc"}},
		{name: "Seed overflow", env: map[string]string{"MOCK_SEED": "99999999999"}},
		{name: "Bad roster size", env: map[string]string{"ROSTER_SIZE": "x"}},
		{name: "Zero roster size", env: map[string]string{"ROSTER_SIZE": "0"}},
		{name: "Bad ttl", env: map[string]string{"CACHE_TTL": "soon"}},
		{name: "Unknown source", env: map[string]string{"DATA_SOURCE": "csv"}},
		{name: "Upstream without url", env: map[string]string{"DATA_SOURCE": "upstream", "UPSTREAM_BASE_URL": ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(zerolog.Nop())
			assert.Error(t, err)
		})
	}
}
