package game

import (
	"fmt"
	"math/rand"
	"testing"

	"survivors/internal/config"
	"survivors/internal/game/spatial"
)

// =============================================================================
// BENCHMARK SUITE: CRITICAL PATH PERFORMANCE TESTS
// Run with: go test -bench=. -benchmem ./internal/game/...
// =============================================================================

// -----------------------------------------------------------------------------
// WORLD UPDATE BENCHMARKS
// -----------------------------------------------------------------------------

func BenchmarkWorldUpdate_50Enemies(b *testing.B)  { benchmarkWorldUpdate(b, 50) }
func BenchmarkWorldUpdate_200Enemies(b *testing.B) { benchmarkWorldUpdate(b, 200) }
func BenchmarkWorldUpdate_500Enemies(b *testing.B) { benchmarkWorldUpdate(b, 500) }

func populatedWorld(b *testing.B, enemies int) *World {
	b.Helper()
	cfg := config.Default()
	cfg.World.Seed = 1
	cfg.Spawner.IntervalSec = 1e9
	cfg.Enemy.HP = 1 << 30 // nobody dies mid-benchmark
	cfg.Limits.MaxEnemies = enemies
	w := NewWorld(cfg, NewManualClock(0))

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < enemies; i++ {
		w.SpawnEnemyAt(Vec2{rng.Float64()*1200 - 600, rng.Float64()*1200 - 600})
	}
	return w
}

func benchmarkWorldUpdate(b *testing.B, enemies int) {
	w := populatedWorld(b, enemies)
	w.Player().HP = 1 << 30

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		w.Update(1.0 / 30)
	}
}

// -----------------------------------------------------------------------------
// SNAPSHOT GENERATION BENCHMARKS
// -----------------------------------------------------------------------------

func BenchmarkSnapshot_50Enemies(b *testing.B)  { benchmarkSnapshot(b, 50) }
func BenchmarkSnapshot_300Enemies(b *testing.B) { benchmarkSnapshot(b, 300) }

func benchmarkSnapshot(b *testing.B, enemies int) {
	w := populatedWorld(b, enemies)
	pool := NewSnapshotPool(config.DefaultLimits())

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		snap := pool.AcquireWrite()
		w.Snapshot(snap, pool.GetLimits())
		pool.PublishWrite()
	}
}

// -----------------------------------------------------------------------------
// CONTACT DETECTION BENCHMARKS
// -----------------------------------------------------------------------------

func BenchmarkContactTracker(b *testing.B) {
	for _, n := range []int{100, 500} {
		b.Run(fmt.Sprintf("%dEnemies", n), func(b *testing.B) {
			w := populatedWorld(b, n)
			grid := spatial.NewCenteredGrid(1400, 1400, 90, n)
			tracker := NewContactTracker(ContactEnemyInterval, grid, nil)
			live := w.Enemies().LiveEnemies()

			b.ResetTimer()
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				tracker.Update(w.Player(), live)
			}
		})
	}
}
