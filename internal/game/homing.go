package game

import (
	"survivors/internal/config"
)

// HomingProjectile fires shots at the nearest enemy whenever the cooldown
// allows and fewer than MaxProjectiles are in flight.
type HomingProjectile struct {
	BaseSkill

	Speed          float64
	MaxProjectiles int
	SearchRadius   float64

	projectiles []*Projectile
	nextID      uint64
}

// NewHomingProjectile creates the skill from cfg. Damage, cooldown and the
// hit range replace the base defaults.
func NewHomingProjectile(cfg config.HomingConfig, env SkillEnv) *HomingProjectile {
	h := &HomingProjectile{
		BaseSkill:      newBaseSkill(env),
		Speed:          cfg.Speed,
		MaxProjectiles: cfg.MaxProjectiles,
		SearchRadius:   cfg.SearchRadius,
		projectiles:    make([]*Projectile, 0, cfg.MaxProjectiles+2),
	}
	h.Damage = cfg.Damage
	h.CooldownMs = cfg.CooldownMs
	h.Range = cfg.HitRange
	h.effect = h
	return h
}

// Kind implements Skill.
func (h *HomingProjectile) Kind() SkillKind { return SkillHoming }

// CanCast reports whether the cooldown has elapsed and a projectile slot
// is free.
func (h *HomingProjectile) CanCast() bool {
	return len(h.projectiles) < h.MaxProjectiles && h.BaseSkill.CanCast()
}

// Cast fires at the nearest enemy. A full set of projectiles in flight
// leaves the cooldown untouched.
func (h *HomingProjectile) Cast() {
	if len(h.projectiles) >= h.MaxProjectiles {
		return
	}
	h.BaseSkill.Cast()
}

// Update advances projectiles in flight, then auto-casts if allowed.
func (h *HomingProjectile) Update(deltaTime float64) {
	h.updateProjectiles(deltaTime)

	if h.ownerAlive() && h.CanCast() {
		h.Cast()
	}
}

// Zero-allocation in-place filtering
func (h *HomingProjectile) updateProjectiles(deltaTime float64) {
	n := 0
	for _, p := range h.projectiles {
		if p.Update(deltaTime) {
			h.projectiles[n] = p
			n++
		}
	}
	for i := n; i < len(h.projectiles); i++ {
		h.projectiles[i] = nil
	}
	h.projectiles = h.projectiles[:n]
}

// onCast spawns a projectile at the owner aimed at the nearest enemy.
// No enemy in range leaves nothing spawned; the cast timer still resets.
func (h *HomingProjectile) onCast() {
	if !h.ownerAlive() {
		return
	}
	target := h.findNearestEnemy()
	if target == nil {
		return
	}
	h.nextID++
	h.projectiles = append(h.projectiles,
		newProjectile(h.nextID, h.owner.Pos, target, h.Speed, h.Damage, h.Range))
	h.env.Observer.SkillCast(h)
}

// findNearestEnemy returns the closest live enemy strictly inside
// SearchRadius. Ties keep the first one found.
func (h *HomingProjectile) findNearestEnemy() *Enemy {
	var nearest *Enemy
	minDist := h.SearchRadius
	origin := h.owner.Pos
	for _, e := range h.liveEnemies() {
		if e.IsDead() {
			continue
		}
		if d := origin.Dist(e.Pos); d < minDist {
			minDist = d
			nearest = e
		}
	}
	return nearest
}

func (h *HomingProjectile) onLevelUp() {
	h.Damage += 10
	if h.Level%2 == 0 {
		h.MaxProjectiles++
	}
	if h.Level%3 == 0 {
		h.CooldownMs = max(500, h.CooldownMs-300)
	}
}

// Projectiles returns the shots in flight. The slice is owned by the skill.
func (h *HomingProjectile) Projectiles() []*Projectile { return h.projectiles }

// Stats implements Skill.
func (h *HomingProjectile) Stats() SkillStats {
	s := h.baseStats(SkillHoming)
	s.MaxProjectiles = h.MaxProjectiles
	s.Active = len(h.projectiles)
	s.SearchRadius = h.SearchRadius
	s.Ready = h.CanCast()
	return s
}
