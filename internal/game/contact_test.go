package game

import (
	"testing"
)

// TestContactDamageScenario: enemy (hp 50, damage 10) touching a player
// with hp 100 deals 10 at first contact, nothing for the rest of the
// interval, then 10 more at the 1000 ms mark.
func TestContactDamageScenario(t *testing.T) {
	clock := NewManualClock(0)
	cfg := quietConfig()
	cfg.Enemy = stationaryEnemy()
	w := NewWorld(cfg, clock)
	p := w.Player()

	e := w.SpawnEnemyAt(Vec2{30, 0})
	if e.HP != 50 || e.Damage != 10 {
		t.Fatalf("Unexpected enemy template hp=%d damage=%d", e.HP, e.Damage)
	}

	dt := 1.0 / 30
	w.Update(dt)
	if p.HP != 90 {
		t.Fatalf("Expected HP 90 at contact begin, got %d", p.HP)
	}
	if !e.Contact.Touching || e.Contact.Other != p {
		t.Fatal("Expected enemy to record contact with player")
	}

	for _, at := range []int64{100, 500, 999} {
		clock.Set(at)
		w.Update(dt)
		if p.HP != 90 {
			t.Errorf("Expected HP 90 at %dms, got %d", at, p.HP)
		}
	}

	clock.Set(1000)
	w.Update(dt)
	if p.HP != 80 {
		t.Errorf("Expected HP 80 at 1000ms, got %d", p.HP)
	}
}

func TestContactEndStopsDamage(t *testing.T) {
	clock := NewManualClock(0)
	cfg := quietConfig()
	cfg.Enemy = stationaryEnemy()
	w := NewWorld(cfg, clock)
	p := w.Player()
	e := w.SpawnEnemyAt(Vec2{30, 0})

	w.Update(0.01)
	if p.HP != 90 {
		t.Fatalf("Expected HP 90, got %d", p.HP)
	}

	// Walk out of range
	e.Pos = Vec2{500, 0}
	w.Update(0.01)
	if e.Contact.Touching {
		t.Error("Expected contact to end once out of range")
	}

	clock.Set(5000)
	w.Update(0.01)
	if p.HP != 90 {
		t.Errorf("Expected no damage without contact, got HP %d", p.HP)
	}
}

func TestContactReentryWithinInterval(t *testing.T) {
	clock := NewManualClock(0)
	cfg := quietConfig()
	cfg.Enemy = stationaryEnemy()
	w := NewWorld(cfg, clock)
	p := w.Player()
	e := w.SpawnEnemyAt(Vec2{30, 0})

	w.Update(0.01) // 90
	e.Pos = Vec2{500, 0}
	clock.Set(200)
	w.Update(0.01)
	e.Pos = Vec2{30, 0}
	clock.Set(400)
	w.Update(0.01)

	if p.HP != 90 {
		t.Errorf("Re-entry inside the interval must be gated, got HP %d", p.HP)
	}
}

func TestContactPlayerOnceMode(t *testing.T) {
	clock := NewManualClock(0)
	cfg := quietConfig()
	cfg.Enemy = stationaryEnemy()
	cfg.Server.ContactMode = "player"
	w := NewWorld(cfg, clock)
	p := w.Player()
	w.SpawnEnemyAt(Vec2{30, 0})

	w.Update(0.01)
	if p.HP != 90 {
		t.Fatalf("Expected HP 90 after contact begin, got %d", p.HP)
	}

	for _, at := range []int64{1000, 2000, 5000} {
		clock.Set(at)
		w.Update(0.01)
	}
	if p.HP != 90 {
		t.Errorf("Player-side contact must not repeat, got HP %d", p.HP)
	}
}

func TestContactTrackerDeadEnemyEnds(t *testing.T) {
	clock := NewManualClock(0)
	cfg := quietConfig()
	cfg.Enemy = stationaryEnemy()
	w := NewWorld(cfg, clock)
	e := w.SpawnEnemyAt(Vec2{30, 0})

	w.Update(0.01)
	if w.Touching() != 1 {
		t.Fatalf("Expected 1 touching enemy, got %d", w.Touching())
	}

	e.TakeDamage(e.HP)
	w.Update(0.01)
	if w.Touching() != 0 {
		t.Errorf("Expected dead enemy to leave contact, got %d touching", w.Touching())
	}
	if e.Contact.Touching {
		t.Error("Expected dead enemy's contact state to be cleared")
	}
}

func TestContactFarOutsideGrid(t *testing.T) {
	clock := NewManualClock(0)
	cfg := quietConfig()
	cfg.Enemy = stationaryEnemy()
	w := NewWorld(cfg, clock)
	p := w.Player()

	// Both far beyond the grid; clamping must still pair them up.
	p.Pos = Vec2{10000, -10000}
	w.SpawnEnemyAt(Vec2{10030, -10000})
	w.SpawnEnemyAt(Vec2{-10000, 10000})

	w.Update(0.01)
	if p.HP != 90 {
		t.Errorf("Expected exactly one contact hit, got HP %d", p.HP)
	}
}

func TestParseContactMode(t *testing.T) {
	tests := []struct {
		in   string
		want ContactMode
	}{
		{"enemy", ContactEnemyInterval},
		{"player", ContactPlayerOnce},
		{"", ContactEnemyInterval},
		{"bogus", ContactEnemyInterval},
	}
	for _, tt := range tests {
		if got := ParseContactMode(tt.in); got != tt.want {
			t.Errorf("ParseContactMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
