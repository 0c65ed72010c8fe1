package game

import (
	"survivors/internal/config"
)

// Player is the keyboard-driven survivor. Skills orbit and fire from it.
type Player struct {
	Actor

	keys KeyState
}

// NewPlayer creates a player at the origin.
func NewPlayer(cfg config.PlayerConfig, obs Observer) *Player {
	return &Player{
		Actor: newActor(KindPlayer, cfg.HP, cfg.MoveSpeed, 0, cfg.Radius, obs),
	}
}

// KeyDown forwards a key press to the movement axis.
func (p *Player) KeyDown(key string) { p.keys.KeyDown(key) }

// KeyUp forwards a key release to the movement axis.
func (p *Player) KeyUp(key string) { p.keys.KeyUp(key) }

// Axis returns the current movement axis.
func (p *Player) Axis() Vec2 { return p.keys.Axis() }

// Update moves the player along the input axis.
func (p *Player) Update(deltaTime float64) {
	if p.dead {
		return
	}
	p.Pos = p.Pos.Add(p.keys.Axis().Scale(p.MoveSpeed * deltaTime))
}

// OnContactBegin applies the enemy's damage once for this contact.
// Used only when the player owns contact damage (ContactPlayerOnce).
func (p *Player) OnContactBegin(e *Enemy) {
	if p.dead || e == nil || e.dead {
		return
	}
	p.TakeDamage(e.Damage)
}
