package api

import (
	"io"

	"survivors/internal/game"
	"survivors/internal/render"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// EngineInterface defines the engine methods used by the API.
// This interface enables mocking for tests without spinning up the game loop.
// Keep this minimal - only include methods the API layer actually calls.
type EngineInterface interface {
	// GetSnapshot returns a deep copy of the latest published snapshot
	GetSnapshot() game.WorldSnapshot
	// GetStats returns run and host statistics
	GetStats() game.EngineStats
	// SkillInfo returns the player's skills in slot order
	SkillInfo() []game.SkillStats
	// AddSkill equips a skill by kind and returns its slot
	AddSkill(kind string) (int, bool)
	// LevelUpSkill levels the skill in the given slot
	LevelUpSkill(index int) bool
	// HandleKey feeds a movement key edge to the player
	HandleKey(key string, down bool)
	// Restart records the current run and starts a new one
	Restart()
	// Leaderboard returns the best n finished runs
	Leaderboard(n int) []game.RunResult
	// RecentEvents returns up to n of the newest events
	RecentEvents(n int) []game.Event
}

// FrameRenderer draws a snapshot as PNG.
type FrameRenderer interface {
	WritePNG(w io.Writer, snap *game.WorldSnapshot) error
}

var (
	_ EngineInterface = (*game.Engine)(nil)
	_ FrameRenderer   = (*render.Renderer)(nil)
)

// RouterConfig contains all dependencies needed to construct the HTTP router.
// This struct is designed for dependency injection and testability.
//
// Example usage in tests:
//
//	cfg := api.RouterConfig{
//	    Engine: mockEngine,
//	    RateLimitConfig: &api.RateLimitConfig{
//	        ReadsPerSecond:    1000, // High limits for tests
//	        ReadBurst:         1000,
//	        CommandsPerSecond: 1000,
//	        CommandBurst:      1000,
//	    },
//	}
//	router := api.NewRouter(cfg)
//	ts := httptest.NewServer(router)
type RouterConfig struct {
	// Engine is the game engine (required)
	Engine EngineInterface

	// Renderer draws /api/frame.png. If nil, a 1280x720 renderer is used.
	Renderer FrameRenderer

	// RateLimiter is an optional pre-configured rate limiter.
	// If nil, a new one will be created using RateLimitConfig.
	RateLimiter *RequestLimiter

	// RateLimitConfig is optional configuration for the rate limiter.
	// Only used if RateLimiter is nil. If both are nil, uses DefaultRateLimitConfig.
	RateLimitConfig *RateLimitConfig

	// CORSOrigins is an optional list of allowed CORS origins.
	// If nil, only local origins are allowed.
	CORSOrigins []string

	// DisableLogging disables the request logger middleware (useful for benchmarks).
	DisableLogging bool
}

// routerHandlers holds the handler functions for the router.
type routerHandlers struct {
	engine      EngineInterface
	renderer    FrameRenderer
	rateLimiter *RequestLimiter
}

// NewRouter constructs the HTTP router with all middleware and routes.
//
// IMPORTANT: The router starts no network listeners. The only goroutine it
// may start is the cleanup loop of a rate limiter it creates itself; pass
// RateLimiter to own that lifecycle.
//
// Example:
//
//	router := api.NewRouter(cfg)
//	ts := httptest.NewServer(router)
//	defer ts.Close()
//	resp, _ := http.Get(ts.URL + "/api/state")
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Middleware - Order matters!
	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(metricsMiddleware)

	// Rate limiting (BEFORE CORS to reject early and save CPU)
	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rateLimitCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rateLimitCfg = *cfg.RateLimitConfig
		}
		rateLimiter = NewRequestLimiter(rateLimitCfg)
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

	renderer := cfg.Renderer
	if renderer == nil {
		renderer = render.NewRenderer(1280, 720)
	}

	h := &routerHandlers{
		engine:      cfg.Engine,
		renderer:    renderer,
		rateLimiter: rateLimiter,
	}

	r.Route("/api", func(r chi.Router) {
		// World state
		r.Get("/state", h.handleGetState)
		r.Get("/stats", h.handleGetStats)
		r.Get("/frame.png", h.handleGetFrame)

		// Skills
		r.Get("/skills", h.handleGetSkills)
		r.Post("/skills", h.handleAddSkill)
		r.Post("/skills/{index}/levelup", h.handleLevelUpSkill)

		// Run control
		r.Post("/input", h.handleInput)
		r.Post("/restart", h.handleRestart)

		// History
		r.Get("/leaderboard", h.handleGetLeaderboard)
		r.Get("/events", h.handleGetEvents)
	})

	r.Get("/", h.handleIndex)

	return r
}
