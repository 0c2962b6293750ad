package api

import (
	"connectgame/internal/config"
	"connectgame/internal/grid"
	"connectgame/internal/match3"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// EngineInterface defines the engine methods the API layer calls. Keeping
// this minimal lets tests substitute a mock without spinning up a full
// session.
type EngineInterface interface {
	Setup(cfg config.Config) error
	StartPlaying()
	StopPlaying()
	ActionMove(from, to grid.Position)
	ActionTap(pos grid.Position)
	Snapshot() match3.EngineSnapshot
	OnMove(fn func(from, to grid.Position, valid bool))
	OnMatch(fn func(matches [][]grid.Position, combo int))
	OnPop(fn func(t grid.PieceType, piece *match3.Piece, combo int, isSpecial, causedBySpecial bool))
	OnProcessStart(fn func())
	OnProcessComplete(fn func())
	OnTimesUp(fn func())
}

// RouterConfig contains all dependencies needed to construct the HTTP
// router. Designed for dependency injection and testability.
//
// Example usage in tests:
//
//	cfg := api.RouterConfig{
//	    Engine: mockEngine,
//	    Config: config.Default(),
//	    RateLimitConfig: &api.RateLimitConfig{
//	        RequestsPerSecond: 1000,
//	        Burst:             1000,
//	    },
//	}
//	router := api.NewRouter(cfg)
//	ts := httptest.NewServer(router)
type RouterConfig struct {
	// Engine is the game session (required).
	Engine EngineInterface

	// Config is the active session config, returned by GET /config.
	Config config.Config

	// RateLimiter is an optional pre-configured rate limiter. If nil, a new
	// one is created from RateLimitConfig.
	RateLimiter *IPRateLimiter

	// RateLimitConfig is only used if RateLimiter is nil.
	RateLimitConfig *RateLimitConfig

	// CORSOrigins is an optional list of allowed CORS origins. If nil, uses
	// localhost-only defaults.
	CORSOrigins []string

	// DisableLogging disables the request logger middleware, useful for
	// benchmarks.
	DisableLogging bool
}

// routerHandlers holds the handler functions for the router.
type routerHandlers struct {
	engine EngineInterface
	cfg    config.Config
}

// NewRouter constructs the HTTP router with all middleware and routes.
//
// NewRouter opens no listeners, so it's safe to drive with
// httptest.NewServer. When cfg.RateLimiter is nil it builds a new
// IPRateLimiter, which starts that limiter's cleanup goroutine.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rateLimitCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rateLimitCfg = *cfg.RateLimitConfig
		}
		rateLimiter = NewIPRateLimiter(rateLimitCfg)
	}
	r.Use(rateLimiter.Middleware)

	corsOrigins := cfg.CORSOrigins
	if corsOrigins == nil {
		corsOrigins = []string{
			"http://localhost:*",
			"http://127.0.0.1:*",
		}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	h := &routerHandlers{engine: cfg.Engine, cfg: cfg.Config}

	r.Get("/healthz", h.handleHealthz)
	r.Get("/stats", h.handleGetStats)
	r.Get("/config", h.handleGetConfig)
	r.Post("/action/move", h.handleActionMove)
	r.Post("/action/tap", h.handleActionTap)

	return r
}

// GetRateLimiterFromRouter is a helper to extract a freshly configured rate
// limiter equivalent to the one NewRouter would build for cfg. Useful for
// tests that need to exercise rate limiting directly.
func GetRateLimiterFromRouter(cfg RouterConfig) *IPRateLimiter {
	if cfg.RateLimiter != nil {
		return cfg.RateLimiter
	}
	rateLimitCfg := DefaultRateLimitConfig
	if cfg.RateLimitConfig != nil {
		rateLimitCfg = *cfg.RateLimitConfig
	}
	return NewIPRateLimiter(rateLimitCfg)
}
