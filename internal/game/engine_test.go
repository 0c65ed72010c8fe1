package game

import (
	"sync/atomic"
	"testing"
	"time"

	"survivors/internal/config"
)

func newTestEngine(t *testing.T) (*Engine, *ManualClock) {
	t.Helper()
	clock := NewManualClock(0)
	return NewEngine(quietConfig(), clock), clock
}

// TestNewEngine verifies engine creation with correct defaults
func TestNewEngine(t *testing.T) {
	tests := []struct {
		name     string
		tickRate int
		want     int
	}{
		{"standard 30 TPS", 30, 30},
		{"high 60 TPS", 60, 60},
		{"invalid falls back", 0, config.DefaultWorld().TickRate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := quietConfig()
			cfg.World.TickRate = tt.tickRate
			engine := NewEngine(cfg, NewManualClock(0))
			if engine == nil {
				t.Fatal("NewEngine returned nil")
			}
			if got := engine.GetStats().TickRate; got != tt.want {
				t.Errorf("Expected tick rate %d, got %d", tt.want, got)
			}
		})
	}
}

// TestEngineStartStop verifies engine can start and stop without panics
func TestEngineStartStop(t *testing.T) {
	cfg := quietConfig()
	engine := NewEngine(cfg, nil)

	var ticks atomic.Int64
	engine.SetOnTick(func(TickInfo) { ticks.Add(1) })

	engine.Start()
	engine.Start() // second start is a no-op
	time.Sleep(200 * time.Millisecond)
	engine.Stop()

	// Should not panic on double stop
	engine.Stop()

	if ticks.Load() == 0 {
		t.Error("Expected at least one tick while running")
	}
	if engine.GetStats().Running {
		t.Error("Expected engine stopped")
	}
}

// TestEngineRestartsAfterStop: a stopped engine can be started again and
// keeps ticking until the next Stop.
func TestEngineRestartsAfterStop(t *testing.T) {
	engine := NewEngine(quietConfig(), nil)

	var ticks atomic.Int64
	engine.SetOnTick(func(TickInfo) { ticks.Add(1) })

	engine.Start()
	time.Sleep(50 * time.Millisecond)
	engine.Stop()

	before := ticks.Load()
	engine.Start()
	time.Sleep(200 * time.Millisecond)
	if ticks.Load() <= before {
		t.Error("Expected ticks after the second Start")
	}
	engine.Stop()
	engine.Stop()

	if engine.GetStats().Running {
		t.Error("Expected engine stopped")
	}
}

// TestEngineSwapEventLogWhileReading runs with -race: swapping the log
// must not race with readers going through the engine.
func TestEngineSwapEventLogWhileReading(t *testing.T) {
	engine, _ := newTestEngine(t)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			engine.GetEventLogStats()
			engine.RecentEvents(5)
			engine.GetStats()
		}
	}()
	for i := 0; i < 20; i++ {
		engine.SetEventLog(NewReplayEventLog())
	}
	<-done

	if err := engine.StartEventLog(""); err != nil {
		t.Fatal(err)
	}
	engine.Step(0.1)
	engine.StopEventLog()
	if got := engine.GetEventLogStats().Total; got == 0 {
		t.Error("Expected the installed log to receive events")
	}
}

func TestEngineStepPublishesSnapshot(t *testing.T) {
	engine, _ := newTestEngine(t)
	engine.HandleKey("d", true)

	before := engine.GetSnapshot()
	engine.Step(0.5)
	after := engine.GetSnapshot()

	if after.Sequence <= before.Sequence {
		t.Errorf("Expected newer snapshot, got %d after %d", after.Sequence, before.Sequence)
	}
	if after.Player.X != 100 {
		t.Errorf("Expected player x 100, got %v", after.Player.X)
	}
	if after.TickNumber != 1 {
		t.Errorf("Expected tick 1, got %d", after.TickNumber)
	}
}

func TestEngineSkills(t *testing.T) {
	engine, _ := newTestEngine(t)

	if _, ok := engine.AddSkill("nope"); ok {
		t.Error("Expected unknown skill rejected")
	}
	idx, ok := engine.AddSkill("knives")
	if !ok || idx != 0 {
		t.Fatalf("Expected knives at slot 0, got (%d, %v)", idx, ok)
	}
	if !engine.LevelUpSkill(0) {
		t.Error("Expected level up to succeed")
	}
	if engine.LevelUpSkill(3) {
		t.Error("Expected out-of-range level up ignored")
	}

	info := engine.SkillInfo()
	if len(info) != 1 || info[0].Kind != SkillKnives || info[0].Level != 2 || info[0].KnifeCount != 9 {
		t.Errorf("Unexpected skill info %+v", info)
	}
}

func TestEngineRestartRecordsRun(t *testing.T) {
	engine, clock := newTestEngine(t)

	// Restart before any tick records nothing
	engine.Restart()
	if n := len(engine.Leaderboard(10)); n != 0 {
		t.Fatalf("Expected empty leaderboard, got %d", n)
	}

	engine.Step(1)
	clock.Advance(1000)
	engine.Restart()

	runs := engine.Leaderboard(10)
	if len(runs) != 1 {
		t.Fatalf("Expected 1 recorded run, got %d", len(runs))
	}
	if runs[0].Died || runs[0].GameTime != 1 {
		t.Errorf("Unexpected run %+v", runs[0])
	}
	if engine.GetStats().TickCount != 0 {
		t.Error("Expected fresh run after restart")
	}
}

func TestEngineRecordsDeathOnce(t *testing.T) {
	clock := NewManualClock(0)
	cfg := quietConfig()
	cfg.Enemy = stationaryEnemy()
	cfg.Enemy.Damage = 100
	engine := NewEngine(cfg, clock)
	engine.World().SpawnEnemyAt(Vec2{10, 0})

	engine.Step(0.1)
	engine.Step(0.1)
	engine.Restart()

	runs := engine.Leaderboard(0)
	if len(runs) != 1 || !runs[0].Died {
		t.Errorf("Expected a single recorded death, got %+v", runs)
	}
}

func TestEngineStats(t *testing.T) {
	engine, _ := newTestEngine(t)
	engine.World().SpawnEnemyAt(Vec2{1000, 0})
	engine.Step(0.1)

	stats := engine.GetStats()
	if stats.Enemies != 1 || stats.PlayerHP != 100 || stats.ContactMode != "enemy" {
		t.Errorf("Unexpected stats %+v", stats)
	}
	if stats.Seed != 42 {
		t.Errorf("Expected seed 42, got %d", stats.Seed)
	}
}
