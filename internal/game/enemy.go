package game

import (
	"survivors/internal/config"
)

// MovementMode selects how an enemy advances toward its target.
type MovementMode uint8

const (
	// MoveKinematic writes the new position directly.
	MoveKinematic MovementMode = iota
	// MoveVelocity sets Velocity and leaves integration to the world,
	// the way a rigid body would be driven.
	MoveVelocity
)

// Enemy chases its target and hurts it on contact.
type Enemy struct {
	Actor

	Target           *Player
	Contact          ContactState
	DamageIntervalMs int64
	Movement         MovementMode
	Velocity         Vec2

	// intervalDamage is false when the player owns contact damage; the
	// enemy then tracks contact without applying ticks.
	intervalDamage bool
	clock          Clock

	// contactFrame marks the last tracker frame the enemy overlapped the player.
	contactFrame uint64
}

// NewEnemy creates an enemy from the template at pos, chasing target.
func NewEnemy(cfg config.EnemyConfig, pos Vec2, target *Player, clock Clock, obs Observer) *Enemy {
	e := &Enemy{
		Actor:            newActor(KindEnemy, cfg.HP, cfg.MoveSpeed, cfg.Damage, cfg.Radius, obs),
		Target:           target,
		DamageIntervalMs: cfg.DamageIntervalMs,
		intervalDamage:   true,
		clock:            clock,
	}
	e.Pos = pos
	if cfg.VelocityDriven {
		e.Movement = MoveVelocity
	}
	return e
}

// Update applies interval-gated contact damage, then steers toward the target.
func (e *Enemy) Update(deltaTime float64) {
	if e.dead {
		return
	}

	if e.Contact.Touching {
		e.handlePlayerContact()
	}

	if e.Target == nil {
		e.Velocity = Vec2{}
		return
	}

	dir := e.Target.Pos.Sub(e.Pos).Normalize()
	switch e.Movement {
	case MoveVelocity:
		e.Velocity = dir.Scale(e.MoveSpeed)
	default:
		e.Pos = e.Pos.Add(dir.Scale(e.MoveSpeed * deltaTime))
	}
}

// Integrate advances a velocity-driven enemy. Kinematic enemies ignore it.
func (e *Enemy) Integrate(deltaTime float64) {
	if e.dead || e.Movement != MoveVelocity {
		return
	}
	e.Pos = e.Pos.Add(e.Velocity.Scale(deltaTime))
}

// OnContactBegin records the contact and deals the first tick immediately.
func (e *Enemy) OnContactBegin(p *Player) {
	if p == nil {
		return
	}
	e.Contact = ContactState{Touching: true, Other: p}
	e.handlePlayerContact()
}

// OnContactEnd clears the contact reference.
func (e *Enemy) OnContactEnd() {
	e.Contact = ContactState{}
}

func (e *Enemy) handlePlayerContact() {
	p := e.Contact.Other
	if p == nil || !e.intervalDamage {
		return
	}
	now := e.clock.NowMs()
	if !e.damageReady(now, e.DamageIntervalMs) {
		return
	}
	e.dealDamage(&p.Actor, now)
}
