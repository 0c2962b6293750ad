package api

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Server is the HTTP API server with WebSocket support, combining the
// router with the WebSocket hub for real-time cascade event streaming.
type Server struct {
	engine      EngineInterface
	router      *chi.Mux
	wsHub       *WebSocketHub
	rateLimiter *IPRateLimiter
}

// NewServer creates a new API server. Its rate limiter uses
// cfg.RateLimitConfig when set, and DefaultRateLimitConfig otherwise.
//
// The WebSocket hub and the HTTP listener do NOT start until Start() is
// called, so tests can construct a Server and use Router(). The rate
// limiter's cleanup goroutine does start here, and Stop() ends it.
func NewServer(cfg RouterConfig) *Server {
	s := &Server{
		engine: cfg.Engine,
		wsHub:  NewWebSocketHub(),
	}

	rateLimitCfg := DefaultRateLimitConfig
	if cfg.RateLimitConfig != nil {
		rateLimitCfg = *cfg.RateLimitConfig
	}
	s.rateLimiter = NewIPRateLimiter(rateLimitCfg)
	cfg.RateLimiter = s.rateLimiter

	s.router = NewRouter(cfg)
	s.wsHub.WireEngine(cfg.Engine)
	s.router.Get("/ws", s.handleWS)

	return s
}

// Start begins the HTTP server AND starts the WebSocket hub. This is the
// only method that opens network listeners.
func (s *Server) Start(addr string) error {
	go s.wsHub.Run()

	log.Printf("🌐 API server starting on %s", addr)
	return http.ListenAndServe(addr, s.router)
}

// Router returns the HTTP handler for use with httptest.
func (s *Server) Router() http.Handler {
	return s.router
}

// Stop performs graceful shutdown of background workers.
func (s *Server) Stop() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	s.wsHub.HandleWebSocket(w, r)
}
