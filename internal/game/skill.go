package game

// SkillKind names a skill type in the API, events and the factory.
type SkillKind string

const (
	SkillAura   SkillKind = "aura"
	SkillHoming SkillKind = "homing"
	SkillKnives SkillKind = "knives"
)

// Skill is the contract every auto-cast ability implements.
type Skill interface {
	// Initialize binds the owner and restarts the cast timer.
	Initialize(owner *Player)
	// CanCast reports whether the cooldown has elapsed since the last cast.
	CanCast() bool
	// Cast runs the effect when ready; otherwise it does nothing.
	Cast()
	// LevelUp raises the level by one and applies the kind's scaling.
	LevelUp()
	// Update advances the skill by one frame.
	Update(deltaTime float64)
	Kind() SkillKind
	Stats() SkillStats
}

// SkillStats is a read-only view of a skill for the API and snapshots.
type SkillStats struct {
	Kind       SkillKind `json:"kind"`
	Level      int       `json:"level"`
	Damage     int       `json:"damage"`
	CooldownMs int64     `json:"cooldownMs"`
	Range      float64   `json:"range"`
	Ready      bool      `json:"ready"`

	TickIntervalMs int64   `json:"tickIntervalMs,omitempty"`
	MaxProjectiles int     `json:"maxProjectiles,omitempty"`
	Active         int     `json:"active,omitempty"`
	SearchRadius   float64 `json:"searchRadius,omitempty"`
	KnifeCount     int     `json:"knifeCount,omitempty"`
	OrbitRadius    float64 `json:"orbitRadius,omitempty"`
	Angle          float64 `json:"angle,omitempty"`
}

// EnemySource enumerates the enemies skills may hit. It must return only
// live, registered enemies.
type EnemySource interface {
	LiveEnemies() []*Enemy
}

// SkillEnv is what a skill needs from the world besides its owner.
type SkillEnv struct {
	Clock    Clock
	Enemies  EnemySource
	Observer Observer
}

// skillEffect is the per-kind behaviour plugged into BaseSkill.
type skillEffect interface {
	onCast()
	onLevelUp()
}

// Defaults shared by every skill before kind-specific tuning.
const (
	DefaultSkillDamage     = 10
	DefaultSkillCooldownMs = 1000
	DefaultSkillRange      = 100
)

// BaseSkill holds the timer and stats common to all skills. Kinds embed it
// and register themselves as the effect.
type BaseSkill struct {
	Damage     int
	CooldownMs int64
	Level      int
	Range      float64

	lastCastTime int64
	owner        *Player
	env          SkillEnv
	effect       skillEffect
}

func newBaseSkill(env SkillEnv) BaseSkill {
	if env.Observer == nil {
		env.Observer = nopObserver{}
	}
	return BaseSkill{
		Damage:     DefaultSkillDamage,
		CooldownMs: DefaultSkillCooldownMs,
		Level:      1,
		Range:      DefaultSkillRange,
		env:        env,
	}
}

// Initialize implements Skill.
func (b *BaseSkill) Initialize(owner *Player) {
	b.owner = owner
	b.lastCastTime = b.env.Clock.NowMs()
}

// Owner returns the bound player, or nil before Initialize.
func (b *BaseSkill) Owner() *Player { return b.owner }

// CanCast implements Skill.
func (b *BaseSkill) CanCast() bool {
	return b.env.Clock.NowMs()-b.lastCastTime >= b.CooldownMs
}

// Cast implements Skill.
func (b *BaseSkill) Cast() {
	if !b.CanCast() {
		return
	}
	if b.effect != nil {
		b.effect.onCast()
	}
	b.lastCastTime = b.env.Clock.NowMs()
}

// LevelUp implements Skill.
func (b *BaseSkill) LevelUp() {
	b.Level++
	if b.effect != nil {
		b.effect.onLevelUp()
	}
}

func (b *BaseSkill) baseStats(kind SkillKind) SkillStats {
	return SkillStats{
		Kind:       kind,
		Level:      b.Level,
		Damage:     b.Damage,
		CooldownMs: b.CooldownMs,
		Range:      b.Range,
		Ready:      b.CanCast(),
	}
}

// ownerAlive reports whether the skill has a living owner to act from.
func (b *BaseSkill) ownerAlive() bool {
	return b.owner != nil && !b.owner.IsDead()
}

func (b *BaseSkill) liveEnemies() []*Enemy {
	if b.env.Enemies == nil {
		return nil
	}
	return b.env.Enemies.LiveEnemies()
}
