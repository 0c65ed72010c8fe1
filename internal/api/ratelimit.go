package api

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig sizes the per-peer HTTP budgets. Reads are the polling
// endpoints (state, stats, frame.png, leaderboard); commands are the
// requests that change the run (input, skills, restart).
type RateLimitConfig struct {
	ReadsPerSecond    float64
	ReadBurst         int
	CommandsPerSecond float64
	CommandBurst      int
	IdleTTL           time.Duration // peers unseen this long are forgotten
}

// DefaultRateLimitConfig fits one browser tab polling /api/state at the
// tick rate plus a frame.png view, with held keys on top.
var DefaultRateLimitConfig = RateLimitConfig{
	ReadsPerSecond:    40,
	ReadBurst:         80,
	CommandsPerSecond: 20,
	CommandBurst:      40,
	IdleTTL:           10 * time.Minute,
}

type requestClass int

const (
	classRead requestClass = iota
	classCommand
)

func (c requestClass) String() string {
	if c == classRead {
		return "read"
	}
	return "command"
}

func classify(r *http.Request) requestClass {
	switch r.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return classRead
	}
	return classCommand
}

// peerBudget is one peer's pair of token buckets. Guarded by RequestLimiter.mu.
type peerBudget struct {
	reads    *rate.Limiter
	commands *rate.Limiter
	lastSeen time.Time
}

// RequestLimiter throttles HTTP requests per peer. The server only faces
// local browsers, so a peer is the connection's host address and
// forwarding headers are never trusted.
type RequestLimiter struct {
	cfg   RateLimitConfig
	mu    sync.Mutex
	peers map[string]*peerBudget

	stopChan chan struct{}
	stopOnce sync.Once

	readsAllowed     atomic.Uint64
	readsRejected    atomic.Uint64
	commandsAllowed  atomic.Uint64
	commandsRejected atomic.Uint64
}

// RateLimitStats is the limiter section of /api/stats.
type RateLimitStats struct {
	Peers            int    `json:"peers"`
	ReadsAllowed     uint64 `json:"readsAllowed"`
	ReadsRejected    uint64 `json:"readsRejected"`
	CommandsAllowed  uint64 `json:"commandsAllowed"`
	CommandsRejected uint64 `json:"commandsRejected"`
}

// NewRequestLimiter starts a limiter and its idle-peer sweeper.
func NewRequestLimiter(cfg RateLimitConfig) *RequestLimiter {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = DefaultRateLimitConfig.IdleTTL
	}
	rl := &RequestLimiter{
		cfg:      cfg,
		peers:    make(map[string]*peerBudget),
		stopChan: make(chan struct{}),
	}
	go rl.sweepLoop()
	return rl
}

// Stop ends the sweeper. Safe to call twice.
func (rl *RequestLimiter) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.stopChan)
	})
}

func (rl *RequestLimiter) budget(peer string, now time.Time) *peerBudget {
	b, ok := rl.peers[peer]
	if !ok {
		b = &peerBudget{
			reads:    rate.NewLimiter(rate.Limit(rl.cfg.ReadsPerSecond), rl.cfg.ReadBurst),
			commands: rate.NewLimiter(rate.Limit(rl.cfg.CommandsPerSecond), rl.cfg.CommandBurst),
		}
		rl.peers[peer] = b
	}
	b.lastSeen = now
	return b
}

// allow spends one token from the peer's bucket for class.
func (rl *RequestLimiter) allow(peer string, class requestClass) bool {
	now := time.Now()

	rl.mu.Lock()
	b := rl.budget(peer, now)
	var ok bool
	if class == classRead {
		ok = b.reads.AllowN(now, 1)
	} else {
		ok = b.commands.AllowN(now, 1)
	}
	rl.mu.Unlock()

	switch {
	case class == classRead && ok:
		rl.readsAllowed.Add(1)
	case class == classRead:
		rl.readsRejected.Add(1)
	case ok:
		rl.commandsAllowed.Add(1)
	default:
		rl.commandsRejected.Add(1)
	}
	return ok
}

func (rl *RequestLimiter) sweepLoop() {
	ticker := time.NewTicker(rl.cfg.IdleTTL / 2)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopChan:
			return
		case now := <-ticker.C:
			rl.sweep(now)
		}
	}
}

// sweep forgets peers idle for longer than IdleTTL and returns how many.
func (rl *RequestLimiter) sweep(now time.Time) int {
	cutoff := now.Add(-rl.cfg.IdleTTL)

	rl.mu.Lock()
	defer rl.mu.Unlock()
	removed := 0
	for peer, b := range rl.peers {
		if b.lastSeen.Before(cutoff) {
			delete(rl.peers, peer)
			removed++
		}
	}
	return removed
}

// Middleware rejects over-budget requests with 429 before routing.
func (rl *RequestLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		class := classify(r)
		if !rl.allow(PeerAddr(r), class) {
			RecordConnectionRejected(class.String() + "_rate_limit")
			w.Header().Set("Retry-After", "1")
			writeError(w, "Too many "+class.String()+" requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Stats returns the counters shown in /api/stats.
func (rl *RequestLimiter) Stats() RateLimitStats {
	rl.mu.Lock()
	peers := len(rl.peers)
	rl.mu.Unlock()

	return RateLimitStats{
		Peers:            peers,
		ReadsAllowed:     rl.readsAllowed.Load(),
		ReadsRejected:    rl.readsRejected.Load(),
		CommandsAllowed:  rl.commandsAllowed.Load(),
		CommandsRejected: rl.commandsRejected.Load(),
	}
}

// PeerAddr returns the host part of the request's remote address.
func PeerAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Input message budget per WebSocket session. Key repeat from a held key
// is well under this.
const (
	wsInputPerSecond = 30
	wsInputBurst     = 60
)

// SessionLimiter caps open WebSocket sessions per peer and gives every
// admitted session its own input budget.
type SessionLimiter struct {
	mu         sync.Mutex
	open       map[string]int
	maxPerPeer int

	rejected     atomic.Uint64
	droppedInput atomic.Uint64
}

// SessionStats summarizes WebSocket admission and input throttling.
type SessionStats struct {
	Open         int    `json:"open"`
	Peers        int    `json:"peers"`
	Rejected     uint64 `json:"rejected"`
	DroppedInput uint64 `json:"droppedInput"`
}

// NewSessionLimiter allows maxPerPeer concurrent sessions per peer.
func NewSessionLimiter(maxPerPeer int) *SessionLimiter {
	return &SessionLimiter{
		open:       make(map[string]int),
		maxPerPeer: maxPerPeer,
	}
}

// Open admits a session for peer, or returns nil when the peer is at its cap.
func (sl *SessionLimiter) Open(peer string) *Session {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	if sl.open[peer] >= sl.maxPerPeer {
		sl.rejected.Add(1)
		return nil
	}
	sl.open[peer]++
	return &Session{
		peer:  peer,
		owner: sl,
		input: rate.NewLimiter(rate.Limit(wsInputPerSecond), wsInputBurst),
	}
}

// OpenCount returns the peer's open sessions.
func (sl *SessionLimiter) OpenCount(peer string) int {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	return sl.open[peer]
}

// Stats returns session counters.
func (sl *SessionLimiter) Stats() SessionStats {
	sl.mu.Lock()
	total := 0
	for _, n := range sl.open {
		total += n
	}
	peers := len(sl.open)
	sl.mu.Unlock()

	return SessionStats{
		Open:         total,
		Peers:        peers,
		Rejected:     sl.rejected.Load(),
		DroppedInput: sl.droppedInput.Load(),
	}
}

// Session is one admitted WebSocket connection.
type Session struct {
	peer      string
	owner     *SessionLimiter
	input     *rate.Limiter
	closeOnce sync.Once
}

// Peer returns the address the session was admitted for.
func (s *Session) Peer() string { return s.peer }

// AllowInput spends one token of the session's input budget.
func (s *Session) AllowInput() bool {
	if s.input.Allow() {
		return true
	}
	s.owner.droppedInput.Add(1)
	return false
}

// Close frees the session's slot. Only the first call counts.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		sl := s.owner
		sl.mu.Lock()
		if sl.open[s.peer] <= 1 {
			delete(sl.open, s.peer)
		} else {
			sl.open[s.peer]--
		}
		sl.mu.Unlock()
	})
}

// AllowedOrigins defines extra exact origins accepted for WebSocket upgrades.
// Local origins on any port are always accepted.
var AllowedOrigins = []string{}

// IsAllowedOrigin checks if an origin may open a WebSocket.
func IsAllowedOrigin(origin string) bool {
	if origin == "" {
		return false
	}

	// Allow local origins with any port
	for _, prefix := range []string{"http://localhost", "http://127.0.0.1", "http://[::1]"} {
		if origin == prefix || strings.HasPrefix(origin, prefix+":") {
			return true
		}
	}

	for _, allowed := range AllowedOrigins {
		if origin == allowed {
			return true
		}
	}

	return false
}
