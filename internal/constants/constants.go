package constants

import "time"

const (
	ExternalAPITimeout = 10 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 30 * time.Second
	RefreshTimeout     = 60 * time.Second
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
	DBBatchSize       = 100
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	MockCompCount       = 40
	MockPatchNoteCount  = 8
	PatchNoteListLimit  = 50
	MaxSuggestionTopK   = 20
	MaxSuggestionPool   = 200
	UpstreamRateLimit   = 90
	UpstreamRateResetIn = 60
	UpstreamConcurrency = 8
)
