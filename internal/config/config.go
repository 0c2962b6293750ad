// Package config provides centralized configuration management for the
// match-three engine.
//
// IMPORTANT: When changing defaults, only modify this file. All other parts
// of the codebase should reference these values.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// =============================================================================
// SESSION CONFIGURATION
// =============================================================================

// Mode selects the common-type palette size for a session.
type Mode string

const (
	ModeTest   Mode = "test"
	ModeEasy   Mode = "easy"
	ModeNormal Mode = "normal"
	ModeHard   Mode = "hard"
)

// commonsByMode is the SINGLE SOURCE OF TRUTH for how many distinct common
// piece types each mode uses.
var commonsByMode = map[Mode]int{
	ModeTest:   3,
	ModeEasy:   4,
	ModeNormal: 5,
	ModeHard:   6,
}

// Commons returns the number of distinct common piece types for the mode.
func (m Mode) Commons() (int, bool) {
	n, ok := commonsByMode[m]
	return n, ok
}

// Config holds the parameters that fully describe one game session.
type Config struct {
	Rows            int  // 4..16
	Columns         int  // 4..16
	TileSize        int  // display hint only, unused by core logic
	FreeMoves       bool // accept every move regardless of resulting match
	DurationSeconds int
	Mode            Mode
}

// Default returns the default session configuration.
func Default() Config {
	return Config{
		Rows:            9,
		Columns:         7,
		TileSize:        64,
		FreeMoves:       false,
		DurationSeconds: 60,
		Mode:            ModeNormal,
	}
}

// Validate checks the configuration against the bounds the core requires.
// Malformed config is rejected here rather than surfacing mid-session.
func Validate(cfg Config) error {
	if cfg.Rows < 4 || cfg.Rows > 16 {
		return errors.Errorf("config: rows %d out of range [4,16]", cfg.Rows)
	}
	if cfg.Columns < 4 || cfg.Columns > 16 {
		return errors.Errorf("config: columns %d out of range [4,16]", cfg.Columns)
	}
	if cfg.DurationSeconds <= 0 {
		return errors.Errorf("config: duration %d must be positive", cfg.DurationSeconds)
	}
	if _, ok := cfg.Mode.Commons(); !ok {
		return errors.Errorf("config: unknown mode %q", cfg.Mode)
	}
	return nil
}

// FromEnv overlays environment variable overrides onto the default config.
// Environment variables take precedence over defaults.
func FromEnv() Config {
	cfg := Default()

	if r := getEnvInt("CONNECTGAME_ROWS", 0); r > 0 {
		cfg.Rows = r
	}
	if c := getEnvInt("CONNECTGAME_COLUMNS", 0); c > 0 {
		cfg.Columns = c
	}
	if t := getEnvInt("CONNECTGAME_TILE_SIZE", 0); t > 0 {
		cfg.TileSize = t
	}
	if d := getEnvInt("CONNECTGAME_DURATION", 0); d > 0 {
		cfg.DurationSeconds = d
	}
	if m := strings.TrimSpace(os.Getenv("CONNECTGAME_MODE")); m != "" {
		cfg.Mode = Mode(m)
	}
	if v := os.Getenv("CONNECTGAME_FREE_MOVES"); v != "" {
		cfg.FreeMoves = v == "true" || v == "1"
	}

	return cfg
}

// =============================================================================
// SERVER CONFIGURATION
// =============================================================================

// ServerConfig holds the demo HTTP/WebSocket surface's settings.
type ServerConfig struct {
	Port            int
	RateLimitPerSec float64
	RateLimitBurst  int
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Port:            3000,
		RateLimitPerSec: 10,
		RateLimitBurst:  20,
	}
}

// ServerFromEnv returns server configuration with environment variable overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()

	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Port = p
	}
	if rl := getEnvInt("CONNECTGAME_RATE_LIMIT", 0); rl > 0 {
		cfg.RateLimitPerSec = float64(rl)
	}

	return cfg
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}
