package game

import (
	"testing"

	"survivors/internal/config"
)

func TestTakeDamageClampsAtZero(t *testing.T) {
	tests := []struct {
		name        string
		hp          int
		damage      int
		wantHP      int
		wantApplied int
		wantDead    bool
	}{
		{"partial", 100, 10, 90, 10, false},
		{"exact kill", 50, 50, 0, 50, true},
		{"overkill", 50, 80, 0, 50, true},
		{"zero damage", 50, 0, 50, 0, false},
		{"negative damage", 50, -5, 50, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newActor(KindEnemy, tt.hp, 0, 0, 10, nil)
			applied := a.TakeDamage(tt.damage)
			if applied != tt.wantApplied {
				t.Errorf("Expected %d applied, got %d", tt.wantApplied, applied)
			}
			if a.HP != tt.wantHP {
				t.Errorf("Expected HP %d, got %d", tt.wantHP, a.HP)
			}
			if a.IsDead() != tt.wantDead {
				t.Errorf("Expected dead=%v, got %v", tt.wantDead, a.IsDead())
			}
		})
	}
}

func TestDeathIsIdempotent(t *testing.T) {
	obs := &recordingObserver{}
	a := newActor(KindEnemy, 20, 0, 0, 10, obs)

	a.TakeDamage(25)
	a.TakeDamage(25)
	a.TakeDamage(1)

	if obs.died != 1 {
		t.Errorf("Expected 1 death notification, got %d", obs.died)
	}
	if len(obs.damaged) != 1 || obs.damaged[0] != 20 {
		t.Errorf("Expected a single damage of 20, got %v", obs.damaged)
	}
	if a.HP != 0 {
		t.Errorf("Expected HP 0, got %d", a.HP)
	}
}

func TestDeadActorDealsNoDamage(t *testing.T) {
	clock := NewManualClock(0)
	p := NewPlayer(config.DefaultPlayer(), nil)
	e := NewEnemy(stationaryEnemy(), Vec2{}, p, clock, nil)

	e.TakeDamage(e.HP)
	e.OnContactBegin(p)
	e.Update(0.1)

	if p.HP != p.MaxHP {
		t.Errorf("Dead enemy damaged player: HP %d", p.HP)
	}
}

func TestActorIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		a := newActor(KindEnemy, 1, 0, 0, 1, nil)
		if seen[a.ID] {
			t.Fatalf("Duplicate actor ID %s", a.ID)
		}
		seen[a.ID] = true
	}
}

type keyEvent struct {
	key  string
	down bool
}

func TestKeyState(t *testing.T) {
	tests := []struct {
		name   string
		events []keyEvent
		want   Vec2
	}{
		{
			name:   "single key",
			events: []keyEvent{{"d", true}},
			want:   Vec2{1, 0},
		},
		{
			name:   "diagonal",
			events: []keyEvent{{"w", true}, {"a", true}},
			want:   Vec2{-1, 1},
		},
		{
			name:   "release opposite keeps direction",
			events: []keyEvent{{"a", true}, {"d", true}, {"a", false}},
			want:   Vec2{1, 0},
		},
		{
			name:   "release clears",
			events: []keyEvent{{"s", true}, {"s", false}},
			want:   Vec2{0, 0},
		},
		{
			name:   "uppercase and unknown keys",
			events: []keyEvent{{"W", true}, {"q", true}, {"ArrowUp", true}},
			want:   Vec2{0, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var k KeyState
			for _, ev := range tt.events {
				if ev.down {
					k.KeyDown(ev.key)
				} else {
					k.KeyUp(ev.key)
				}
			}
			if got := k.Axis(); got != tt.want {
				t.Errorf("Expected axis %v, got %v", tt.want, got)
			}
		})
	}
}

func TestPlayerMovesAlongAxis(t *testing.T) {
	p := NewPlayer(config.DefaultPlayer(), nil)
	p.KeyDown("d")
	p.KeyDown("w")

	p.Update(0.5)

	if !approxEqual(p.Pos.X, 100) || !approxEqual(p.Pos.Y, 100) {
		t.Errorf("Expected (100, 100), got %v", p.Pos)
	}

	p.TakeDamage(p.HP)
	p.Update(0.5)
	if !approxEqual(p.Pos.X, 100) {
		t.Errorf("Dead player moved to %v", p.Pos)
	}
}

func TestEnemySteersTowardTarget(t *testing.T) {
	clock := NewManualClock(0)
	p := NewPlayer(config.DefaultPlayer(), nil)
	e := NewEnemy(config.DefaultEnemy(), Vec2{300, 0}, p, clock, nil)

	e.Update(1)

	if !approxEqual(e.Pos.X, 200) || !approxEqual(e.Pos.Y, 0) {
		t.Errorf("Expected (200, 0), got %v", e.Pos)
	}
}

func TestEnemyVelocityMode(t *testing.T) {
	clock := NewManualClock(0)
	p := NewPlayer(config.DefaultPlayer(), nil)
	ec := config.DefaultEnemy()
	ec.VelocityDriven = true
	e := NewEnemy(ec, Vec2{0, 300}, p, clock, nil)

	e.Update(1)
	if !approxEqual(e.Pos.Y, 300) {
		t.Errorf("Velocity-driven enemy moved before integration: %v", e.Pos)
	}
	if !approxEqual(e.Velocity.Y, -100) {
		t.Errorf("Expected velocity (0, -100), got %v", e.Velocity)
	}

	e.Integrate(1)
	if !approxEqual(e.Pos.Y, 200) {
		t.Errorf("Expected y 200 after integration, got %v", e.Pos.Y)
	}
}

func TestManualClock(t *testing.T) {
	c := NewManualClock(100)
	c.Advance(50)
	c.Advance(-10)
	if c.NowMs() != 150 {
		t.Errorf("Expected 150, got %d", c.NowMs())
	}
	c.Set(120)
	if c.NowMs() != 150 {
		t.Errorf("Clock moved backwards to %d", c.NowMs())
	}
	c.Set(1000)
	if c.NowMs() != 1000 {
		t.Errorf("Expected 1000, got %d", c.NowMs())
	}
}

func TestVecNormalizeZero(t *testing.T) {
	if got := (Vec2{}).Normalize(); got != (Vec2{}) {
		t.Errorf("Expected zero vector, got %v", got)
	}
	if got := (Vec2{3, 4}).Normalize(); !approxEqual(got.Len(), 1) {
		t.Errorf("Expected unit length, got %v", got.Len())
	}
}
