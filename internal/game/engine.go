package game

import (
	"log"
	"sync"
	"time"

	"survivors/internal/config"
)

// TickInfo summarizes one tick for metrics hooks.
type TickInfo struct {
	Duration    time.Duration
	Enemies     int
	Projectiles int
	Score       int
	DamageDealt int
	DamageTaken int
	GameOver    bool
}

// EngineStats is the host's view of the running world.
type EngineStats struct {
	WorldStats
	TickRate       int           `json:"tickRate"`
	Running        bool          `json:"running"`
	Enemies        int           `json:"enemies"`
	Touching       int           `json:"touching"`
	PlayerHP       int           `json:"playerHp"`
	ContactMode    string        `json:"contactMode"`
	Seed           int64         `json:"seed"`
	LastTickMicros int64         `json:"lastTickMicros"`
	EventLog       EventLogStats `json:"eventLog"`
}

// Engine hosts a World on a fixed-rate ticker and serializes every
// outside access to it through one mutex.
type Engine struct {
	mu    sync.RWMutex
	world *World
	cfg   config.AppConfig

	tickRate int
	running  bool
	ticker   *time.Ticker
	stopChan chan struct{}

	// Snapshot system for render/API separation
	snapshotPool *SnapshotPool

	// Event sourcing for replay and debugging
	eventLog *EventLog

	// Finished runs, best first
	leaderboard *Leaderboard
	runRecorded bool

	lastTickDuration time.Duration
	onTick           func(TickInfo)
}

// MaxLeaderboardRuns caps the number of runs the engine remembers.
const MaxLeaderboardRuns = 100

// NewEngine creates an engine around a fresh world. A nil clock uses
// wall time.
func NewEngine(cfg config.AppConfig, clock Clock) *Engine {
	tickRate := cfg.World.TickRate
	if tickRate <= 0 {
		tickRate = config.DefaultWorld().TickRate
	}

	e := &Engine{
		world:        NewWorld(cfg, clock),
		cfg:          cfg,
		tickRate:     tickRate,
		snapshotPool: NewSnapshotPool(cfg.Limits),
		eventLog:     NewEventLog(),
		leaderboard:  NewLeaderboard(MaxLeaderboardRuns),
	}
	e.world.SetEventLog(e.eventLog)
	e.ProduceSnapshot()
	return e
}

// Start begins the game loop
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	ticker := time.NewTicker(time.Second / time.Duration(e.tickRate))
	stop := make(chan struct{})
	e.ticker = ticker
	e.stopChan = stop
	e.mu.Unlock()

	go func() {
		for {
			select {
			case <-ticker.C:
				e.tick()
			case <-stop:
				return
			}
		}
	}()

	log.Printf("🎮 Game engine started at %d TPS", e.tickRate)
}

// Stop stops the game loop
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return
	}

	e.running = false
	if e.ticker != nil {
		e.ticker.Stop()
	}
	close(e.stopChan)
	log.Println("🛑 Game engine stopped")
}

// tick is called at tickRate times per second
func (e *Engine) tick() {
	e.Step(1.0 / float64(e.tickRate))
}

// Step advances the world by deltaTime seconds and publishes a snapshot.
// The ticker drives it in the server; headless runs call it directly.
func (e *Engine) Step(deltaTime float64) {
	e.mu.Lock()
	start := time.Now()

	e.world.Update(deltaTime)
	if e.world.Stats().GameOver && !e.runRecorded {
		rank := e.recordRunLocked()
		stats := e.world.Stats()
		log.Printf("💀 Player died after %.1fs with %d kills (rank %d)", stats.GameTime, stats.Score, rank)
	}
	e.produceSnapshotLocked()

	e.lastTickDuration = time.Since(start)
	info := e.tickInfoLocked()
	hook := e.onTick
	e.mu.Unlock()

	if hook != nil {
		hook(info)
	}
}

func (e *Engine) tickInfoLocked() TickInfo {
	stats := e.world.Stats()
	projectiles := 0
	for _, s := range e.world.Skills().Skills() {
		if h, ok := s.(*HomingProjectile); ok {
			projectiles += len(h.Projectiles())
		}
	}
	return TickInfo{
		Duration:    e.lastTickDuration,
		Enemies:     e.world.Enemies().Len(),
		Projectiles: projectiles,
		Score:       stats.Score,
		DamageDealt: stats.DamageDealt,
		DamageTaken: stats.DamageTaken,
		GameOver:    stats.GameOver,
	}
}

// SetOnTick installs a hook called after every tick, outside the lock.
func (e *Engine) SetOnTick(fn func(TickInfo)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onTick = fn
}

// HandleKey routes a key event to the player.
func (e *Engine) HandleKey(key string, down bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.world.HandleKey(key, down)
}

// AddSkill gives the player a skill of kind. Unknown kinds are ignored.
func (e *Engine) AddSkill(kind string) (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	idx, ok := e.world.AddSkill(SkillKind(kind))
	if ok {
		log.Printf("✨ Skill added: %s (slot %d)", kind, idx)
	}
	return idx, ok
}

// LevelUpSkill levels the skill at index. Out-of-range indexes are ignored.
func (e *Engine) LevelUpSkill(index int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.world.LevelUpSkill(index)
}

// Restart begins a fresh run.
func (e *Engine) Restart() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.runRecorded && e.world.Stats().TickCount > 0 {
		e.recordRunLocked()
	}
	e.world.Reset()
	e.runRecorded = false
	e.produceSnapshotLocked()
	log.Printf("🔄 Run restarted (seed %d)", e.world.Seed())
}

func (e *Engine) recordRunLocked() int {
	e.runRecorded = true
	stats := e.world.Stats()
	return e.leaderboard.Record(RunResult{
		Score:       stats.Score,
		GameTime:    stats.GameTime,
		DamageDealt: stats.DamageDealt,
		Seed:        e.world.Seed(),
		Died:        stats.GameOver,
	})
}

// Leaderboard returns the best n recorded runs.
func (e *Engine) Leaderboard(n int) []RunResult {
	return e.leaderboard.GetTop(n)
}

// SkillInfo returns the player's skills in slot order.
func (e *Engine) SkillInfo() []SkillStats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	skills := e.world.Skills().Skills()
	out := make([]SkillStats, len(skills))
	for i, s := range skills {
		out[i] = s.Stats()
	}
	return out
}

// GetStats returns run and host counters.
func (e *Engine) GetStats() EngineStats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return EngineStats{
		WorldStats:     e.world.Stats(),
		TickRate:       e.tickRate,
		Running:        e.running,
		Enemies:        e.world.Enemies().Len(),
		Touching:       e.world.Touching(),
		PlayerHP:       e.world.Player().HP,
		ContactMode:    e.world.ContactMode().String(),
		Seed:           e.world.Seed(),
		LastTickMicros: e.lastTickDuration.Microseconds(),
		EventLog:       e.eventLog.GetStats(),
	}
}

// ProduceSnapshot publishes the current world state.
func (e *Engine) ProduceSnapshot() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.produceSnapshotLocked()
}

func (e *Engine) produceSnapshotLocked() {
	snap := e.snapshotPool.AcquireWrite()
	e.world.Snapshot(snap, e.snapshotPool.GetLimits())
	e.snapshotPool.PublishWrite()
}

// GetSnapshot returns a copy of the latest published snapshot.
func (e *Engine) GetSnapshot() WorldSnapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshotPool.AcquireRead().Clone()
}

// StartEventLog starts the event log writer
func (e *Engine) StartEventLog(filePath string) error {
	return e.events().Start(filePath)
}

// StopEventLog stops the event log writer
func (e *Engine) StopEventLog() {
	e.events().Stop()
}

func (e *Engine) events() *EventLog {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.eventLog
}

// SetEventLog replaces the event log. Call before StartEventLog.
func (e *Engine) SetEventLog(el *EventLog) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.eventLog = el
	e.world.SetEventLog(el)
}

// GetEventLogStats returns event log statistics
func (e *Engine) GetEventLogStats() EventLogStats {
	return e.events().GetStats()
}

// RecentEvents returns up to n of the newest logged events.
func (e *Engine) RecentEvents(n int) []Event {
	return e.events().Recent(n)
}

// GetLimits returns the resource limits
func (e *Engine) GetLimits() config.ResourceLimits {
	return e.snapshotPool.GetLimits()
}

// World returns the hosted world. Callers must not touch it while the
// engine is running.
func (e *Engine) World() *World { return e.world }
