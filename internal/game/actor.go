package game

import (
	"github.com/google/uuid"
)

// ActorKind distinguishes the player from enemies in events and snapshots.
type ActorKind uint8

const (
	KindPlayer ActorKind = iota
	KindEnemy
)

func (k ActorKind) String() string {
	if k == KindPlayer {
		return "player"
	}
	return "enemy"
}

// Observer receives combat notifications from actors and skills.
// The world implements it to keep score and feed the event log.
type Observer interface {
	ActorDamaged(a *Actor, amount int)
	ActorDied(a *Actor)
	SkillCast(s Skill)
}

type nopObserver struct{}

func (nopObserver) ActorDamaged(*Actor, int) {}
func (nopObserver) ActorDied(*Actor)         {}
func (nopObserver) SkillCast(Skill)          {}

// Actor is the state shared by the player and enemies.
type Actor struct {
	ID        string
	Kind      ActorKind
	Pos       Vec2
	HP        int
	MaxHP     int
	MoveSpeed float64
	Damage    int     // contact damage dealt to the other side
	Radius    float64 // contact collider radius

	dead bool

	// Contact damage cadence. hasDamaged is false until the first hit so
	// the opening tick is never suppressed, whatever the clock reads.
	lastDamageTime int64
	hasDamaged     bool

	observer Observer
}

func newActor(kind ActorKind, hp int, speed float64, damage int, radius float64, obs Observer) Actor {
	if obs == nil {
		obs = nopObserver{}
	}
	return Actor{
		ID:        uuid.NewString(),
		Kind:      kind,
		HP:        hp,
		MaxHP:     hp,
		MoveSpeed: speed,
		Damage:    damage,
		Radius:    radius,
		observer:  obs,
	}
}

// IsDead reports whether the actor has reached zero health.
func (a *Actor) IsDead() bool { return a.dead }

// TakeDamage subtracts amount from HP, clamping at zero. Reaching zero
// marks the actor dead; death is one-way. Dead actors and non-positive
// amounts are ignored. Returns the health actually removed.
func (a *Actor) TakeDamage(amount int) int {
	if a.dead || amount <= 0 {
		return 0
	}

	applied := amount
	if applied > a.HP {
		applied = a.HP
	}
	a.HP -= applied
	a.observer.ActorDamaged(a, applied)

	if a.HP <= 0 {
		a.HP = 0
		a.die()
	}
	return applied
}

func (a *Actor) die() {
	if a.dead {
		return
	}
	a.dead = true
	a.observer.ActorDied(a)
}

// damageReady reports whether the interval gate lets the actor deal
// contact damage at now.
func (a *Actor) damageReady(now, intervalMs int64) bool {
	if !a.hasDamaged {
		return true
	}
	return now-a.lastDamageTime >= intervalMs
}

// dealDamage applies the actor's contact damage to target and records
// the hit time. Neither side may be dead.
func (a *Actor) dealDamage(target *Actor, now int64) int {
	if a.dead || target.dead {
		return 0
	}
	applied := target.TakeDamage(a.Damage)
	a.lastDamageTime = now
	a.hasDamaged = true
	return applied
}

func (a *Actor) distanceTo(other *Actor) float64 {
	return a.Pos.Dist(other.Pos)
}
