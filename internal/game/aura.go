package game

import (
	"survivors/internal/config"
)

// DamageAura pulses damage to every live enemy within Range of the owner
// once per tick interval.
type DamageAura struct {
	BaseSkill

	TickIntervalMs int64

	lastTickTime int64
	hasTicked    bool
	pulses       int
}

// NewDamageAura creates an aura from cfg.
func NewDamageAura(cfg config.AuraConfig, env SkillEnv) *DamageAura {
	a := &DamageAura{
		BaseSkill:      newBaseSkill(env),
		TickIntervalMs: cfg.TickIntervalMs,
	}
	a.Damage = cfg.Damage
	a.Range = cfg.Radius
	a.effect = a
	return a
}

// Kind implements Skill.
func (a *DamageAura) Kind() SkillKind { return SkillAura }

// Update pulses when the tick interval has elapsed. The first update
// after creation pulses immediately.
func (a *DamageAura) Update(deltaTime float64) {
	if !a.ownerAlive() {
		return
	}
	now := a.env.Clock.NowMs()
	if a.hasTicked && now-a.lastTickTime < a.TickIntervalMs {
		return
	}
	a.pulse()
	a.lastTickTime = now
	a.hasTicked = true
}

func (a *DamageAura) pulse() {
	a.pulses++
	a.env.Observer.SkillCast(a)
	center := a.owner.Pos
	for _, e := range a.liveEnemies() {
		if e.IsDead() {
			continue
		}
		if center.Dist(e.Pos) <= a.Range {
			e.TakeDamage(a.Damage)
		}
	}
}

// Pulses returns how many damage pulses the aura has emitted.
func (a *DamageAura) Pulses() int { return a.pulses }

// onCast pulses outside the tick schedule when cast directly.
func (a *DamageAura) onCast() {
	if a.ownerAlive() {
		a.pulse()
	}
}

func (a *DamageAura) onLevelUp() {
	a.Damage += 2
	if a.Level%2 == 0 {
		a.Range += 20
	}
	if a.Level%3 == 0 {
		a.TickIntervalMs = max(100, a.TickIntervalMs-50)
	}
}

// Stats implements Skill.
func (a *DamageAura) Stats() SkillStats {
	s := a.baseStats(SkillAura)
	s.TickIntervalMs = a.TickIntervalMs
	return s
}
