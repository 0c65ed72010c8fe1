package game

import (
	"sync/atomic"
	"time"

	"survivors/internal/config"
)

// ActorSnapshot is an immutable copy of an actor for rendering.
// Uses value types (not pointers) to ensure immutability
type ActorSnapshot struct {
	ID       string  `json:"id"`
	Kind     string  `json:"kind"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	HP       int     `json:"hp"`
	MaxHP    int     `json:"maxHp"`
	Radius   float64 `json:"radius"`
	IsDead   bool    `json:"isDead"`
	Touching bool    `json:"touching,omitempty"`
}

// KnifeSnapshot is an immutable orbiting blade
type KnifeSnapshot struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Facing float64 `json:"facing"`
}

// FlashSnapshot is an immutable impact flash
type FlashSnapshot struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
	Alpha  float64 `json:"alpha"`
	Victim string  `json:"victim"`
}

// WorldSnapshot is a complete immutable world state for rendering and the API.
// All slices are pre-allocated and capped by config.ResourceLimits.
type WorldSnapshot struct {
	Sequence   uint64    `json:"sequence"`   // Monotonic sequence for ordering
	Timestamp  time.Time `json:"timestamp"`  // When snapshot was created
	TickNumber uint64    `json:"tickNumber"` // Tick this represents
	GameMs     int64     `json:"gameMs"`     // Simulation clock
	Seed       int64     `json:"seed"`       // Spawner seed for replay

	GameTime float64 `json:"gameTime"`
	Score    int     `json:"score"`
	GameOver bool    `json:"gameOver"`

	Player ActorSnapshot `json:"player"`
	Axis   Vec2          `json:"axis"`

	// Pre-allocated capped slices (never grows beyond limits)
	Enemies     []ActorSnapshot      `json:"enemies"`
	Projectiles []ProjectileSnapshot `json:"projectiles"`
	Knives      []KnifeSnapshot      `json:"knives"`
	Skills      []SkillStats         `json:"skills"`
	Flashes     []FlashSnapshot      `json:"flashes"`

	// Live enemy count, including any beyond the render cap
	EnemyCount int `json:"enemyCount"`
}

// Clone returns a deep copy that stays valid after the pool reuses the slot.
func (s *WorldSnapshot) Clone() WorldSnapshot {
	c := *s
	c.Enemies = append([]ActorSnapshot(nil), s.Enemies...)
	c.Projectiles = make([]ProjectileSnapshot, len(s.Projectiles))
	for i, p := range s.Projectiles {
		p.Trail = append([]Vec2(nil), p.Trail...)
		c.Projectiles[i] = p
	}
	c.Knives = append([]KnifeSnapshot(nil), s.Knives...)
	c.Skills = append([]SkillStats(nil), s.Skills...)
	c.Flashes = append([]FlashSnapshot(nil), s.Flashes...)
	return c
}

// SnapshotPool pre-allocates snapshots to avoid GC pressure
// Uses triple buffering for lock-free producer/consumer
type SnapshotPool struct {
	snapshots [3]WorldSnapshot // Triple buffer
	limits    config.ResourceLimits
	writeIdx  uint32 // atomic - producer index
	readIdx   uint32 // atomic - consumer index
	sequence  uint64 // atomic - monotonic sequence
}

// NewSnapshotPool creates a pool with pre-allocated slices
func NewSnapshotPool(limits config.ResourceLimits) *SnapshotPool {
	pool := &SnapshotPool{limits: limits}

	for i := 0; i < 3; i++ {
		pool.snapshots[i] = WorldSnapshot{
			Enemies:     make([]ActorSnapshot, 0, limits.MaxRenderedEnemies),
			Projectiles: make([]ProjectileSnapshot, 0, limits.MaxProjectiles),
			Knives:      make([]KnifeSnapshot, 0, limits.MaxKnives),
			Skills:      make([]SkillStats, 0, 4),
			Flashes:     make([]FlashSnapshot, 0, limits.MaxEffects),
		}
	}

	return pool
}

// AcquireWrite gets the next write slot (producer only, called from game tick)
// Returns a snapshot with reset slices but preserved capacity
func (p *SnapshotPool) AcquireWrite() *WorldSnapshot {
	idx := atomic.AddUint32(&p.writeIdx, 1) % 3
	snap := &p.snapshots[idx]

	snap.Enemies = snap.Enemies[:0]
	snap.Projectiles = snap.Projectiles[:0]
	snap.Knives = snap.Knives[:0]
	snap.Skills = snap.Skills[:0]
	snap.Flashes = snap.Flashes[:0]

	snap.Sequence = atomic.AddUint64(&p.sequence, 1)
	snap.Timestamp = time.Now()

	return snap
}

// PublishWrite marks write complete and advances read pointer
// Called after snapshot is fully populated
func (p *SnapshotPool) PublishWrite() {
	atomic.StoreUint32(&p.readIdx, atomic.LoadUint32(&p.writeIdx))
}

// AcquireRead gets the latest complete snapshot (consumer only).
// Before the first publish it returns the empty initial slot.
func (p *SnapshotPool) AcquireRead() *WorldSnapshot {
	idx := atomic.LoadUint32(&p.readIdx) % 3
	return &p.snapshots[idx]
}

// GetLimits returns the resource limits
func (p *SnapshotPool) GetLimits() config.ResourceLimits {
	return p.limits
}
