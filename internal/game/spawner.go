package game

import (
	"math"
	"math/rand"

	"survivors/internal/config"
)

// EnemyFactory instantiates an enemy at pos. It plays the role of the
// enemy prefab; a nil factory means nothing can be spawned.
type EnemyFactory func(pos Vec2) *Enemy

// Spawner releases one enemy per interval on a circle around the origin.
type Spawner struct {
	IntervalSec float64
	Radius      float64
	MaxLive     int // 0 = unlimited

	timer   float64
	rng     *rand.Rand
	factory EnemyFactory
}

// NewSpawner creates a spawner. The seed fixes spawn angles for replays.
func NewSpawner(cfg config.SpawnerConfig, maxLive int, seed int64, factory EnemyFactory) *Spawner {
	return &Spawner{
		IntervalSec: cfg.IntervalSec,
		Radius:      cfg.Radius,
		MaxLive:     maxLive,
		rng:         rand.New(rand.NewSource(seed)),
		factory:     factory,
	}
}

// Update accumulates deltaTime and, once the interval is reached, resets
// the timer and spawns. Returns the new enemy, or nil when nothing spawned
// (not due, no factory, or live is at the cap).
func (s *Spawner) Update(deltaTime float64, live int) *Enemy {
	s.timer += deltaTime
	if s.timer < s.IntervalSec {
		return nil
	}
	s.timer = 0

	if s.factory == nil {
		return nil
	}
	if s.MaxLive > 0 && live >= s.MaxLive {
		return nil
	}
	return s.factory(s.randomSpawnPosition())
}

func (s *Spawner) randomSpawnPosition() Vec2 {
	angle := s.rng.Float64() * math.Pi * 2
	return Vec2{math.Cos(angle) * s.Radius, math.Sin(angle) * s.Radius}
}

// Reset restarts the interval timer and reseeds the angle source.
func (s *Spawner) Reset(seed int64) {
	s.timer = 0
	s.rng = rand.New(rand.NewSource(seed))
}
