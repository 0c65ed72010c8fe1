package api

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
)

// metricsInterval is how often event log totals are pushed to prometheus.
const metricsInterval = time.Second

// Server is the HTTP API server with WebSocket support.
// It combines the HTTP router with WebSocket hub for real-time updates.
type Server struct {
	engine      EngineInterface
	router      *chi.Mux
	wsHub       *WebSocketHub
	rateLimiter *RequestLimiter

	mu         sync.Mutex
	httpServer *http.Server

	workersOnce sync.Once
	stopOnce    sync.Once
	stopChan    chan struct{}
}

// NewServer creates a new API server with default production configuration.
//
// IMPORTANT: Background workers do NOT start until Start() is called.
// This enables testing by allowing the server to be constructed without
// opening network listeners.
//
// For testing HTTP endpoints without WebSocket support, use NewRouter() directly.
func NewServer(engine EngineInterface, renderer FrameRenderer) *Server {
	s := &Server{
		engine:   engine,
		wsHub:    NewWebSocketHub(engine),
		stopChan: make(chan struct{}),
	}

	// Create rate limiter (we track it for cleanup)
	s.rateLimiter = NewRequestLimiter(DefaultRateLimitConfig)

	// Build router using the factory
	s.router = NewRouter(RouterConfig{
		Engine:      engine,
		Renderer:    renderer,
		RateLimiter: s.rateLimiter,
	})

	// Add WebSocket routes (these need the wsHub instance)
	s.setupWebSocketRoutes()

	return s
}

// setupWebSocketRoutes adds WebSocket-specific routes to the router.
// These routes need access to the wsHub instance, so they can't be
// part of the generic NewRouter factory.
func (s *Server) setupWebSocketRoutes() {
	s.router.Get("/ws", s.handleWS)
}

// startWorkers launches the hub, the broadcast loop and the metrics loop.
func (s *Server) startWorkers() {
	s.workersOnce.Do(func() {
		go s.wsHub.Run()
		s.wsHub.StartBroadcastLoop()
		go s.metricsLoop()
	})
}

// metricsLoop mirrors event log counters into prometheus.
func (s *Server) metricsLoop() {
	ticker := time.NewTicker(metricsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			stats := s.engine.GetStats().EventLog
			UpdateEventLogStats(stats.Total, stats.Dropped)
		}
	}
}

// Start begins the HTTP server AND starts background workers.
// It blocks until the server stops and returns nil after Shutdown.
func (s *Server) Start(addr string) error {
	// Start background workers NOW, not in constructor
	s.startWorkers()

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.mu.Lock()
	select {
	case <-s.stopChan:
		s.mu.Unlock()
		return nil
	default:
	}
	s.httpServer = srv
	s.mu.Unlock()

	log.Printf("🌐 API server starting on %s", addr)
	log.Printf("🎮 State: http://localhost%s/api/state", addr)
	log.Printf("🖼️ Frame: http://localhost%s/api/frame.png", addr)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Router returns the HTTP handler for use with httptest.
// Use this in integration tests instead of calling Start().
//
// Example:
//
//	server := api.NewServer(engine, nil)
//	ts := httptest.NewServer(server.Router())
//	defer ts.Close()
//	resp, _ := http.Get(ts.URL + "/api/state")
func (s *Server) Router() http.Handler {
	return s.router
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *WebSocketHub {
	return s.wsHub
}

// Shutdown stops background workers, closes WebSocket clients and
// gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.stopOnce.Do(func() {
		close(s.stopChan)
		s.wsHub.Stop()
		if s.rateLimiter != nil {
			s.rateLimiter.Stop()
		}
	})
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	s.wsHub.HandleWebSocket(w, r)
}
