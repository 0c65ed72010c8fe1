package game

import (
	"math"

	"survivors/internal/config"
)

// Knife is one blade of the orbit, in world space.
type Knife struct {
	Pos    Vec2
	Angle  float64 // orbit angle in degrees
	Facing float64 // sprite rotation, perpendicular to the orbit
}

// OrbitingKnives spins KnifeCount blades around the owner and hurts every
// live enemy a blade is within Range of, every frame.
type OrbitingKnives struct {
	BaseSkill

	OrbitRadius   float64
	RotationSpeed float64 // degrees per second
	KnifeCount    int

	currentAngle float64
	knives       []Knife
}

// NewOrbitingKnives creates the skill from cfg.
func NewOrbitingKnives(cfg config.KnivesConfig, env SkillEnv) *OrbitingKnives {
	k := &OrbitingKnives{
		BaseSkill:     newBaseSkill(env),
		OrbitRadius:   cfg.OrbitRadius,
		RotationSpeed: cfg.RotationSpeed,
		KnifeCount:    cfg.Count,
	}
	k.Damage = cfg.Damage
	k.Range = cfg.Range
	if k.KnifeCount < 1 {
		k.KnifeCount = 1
	}
	k.effect = k
	return k
}

// Kind implements Skill.
func (k *OrbitingKnives) Kind() SkillKind { return SkillKnives }

// Initialize binds the owner and lays the blades out.
func (k *OrbitingKnives) Initialize(owner *Player) {
	k.BaseSkill.Initialize(owner)
	k.layout()
}

// layout rebuilds the blade slice for the current count.
func (k *OrbitingKnives) layout() {
	if cap(k.knives) >= k.KnifeCount {
		k.knives = k.knives[:k.KnifeCount]
	} else {
		k.knives = make([]Knife, k.KnifeCount)
	}
	k.place()
}

// AngleStep is the fixed spacing between blades, in degrees.
func (k *OrbitingKnives) AngleStep() float64 { return 360 / float64(k.KnifeCount) }

// CurrentAngle returns the shared rotation accumulator in [0, 360).
func (k *OrbitingKnives) CurrentAngle() float64 { return k.currentAngle }

func (k *OrbitingKnives) place() {
	var center Vec2
	if k.owner != nil {
		center = k.owner.Pos
	}
	step := k.AngleStep()
	for i := range k.knives {
		angle := k.currentAngle + float64(i)*step
		k.knives[i] = Knife{
			Pos:    center.Add(FromAngleDeg(angle).Scale(k.OrbitRadius)),
			Angle:  angle,
			Facing: angle + 90,
		}
	}
}

// Update rotates the blades and checks them against every live enemy.
func (k *OrbitingKnives) Update(deltaTime float64) {
	if k.owner == nil {
		return
	}
	angle := math.Mod(k.currentAngle+k.RotationSpeed*deltaTime, 360)
	if angle < 0 {
		angle += 360
	}
	if angle >= 360 { // -tiny + 360 rounds up
		angle = 0
	}
	k.currentAngle = angle
	k.place()

	if k.owner.IsDead() {
		return
	}
	k.checkCollision()
}

// checkCollision has no per-hit throttle: an enemy overlapping a blade
// takes damage on every frame it overlaps.
func (k *OrbitingKnives) checkCollision() {
	enemies := k.liveEnemies()
	for i := range k.knives {
		pos := k.knives[i].Pos
		for _, e := range enemies {
			if e.IsDead() {
				continue
			}
			if pos.Dist(e.Pos) <= k.Range {
				e.TakeDamage(k.Damage)
			}
		}
	}
}

// onCast is empty: knives act continuously from Update.
func (k *OrbitingKnives) onCast() {}

func (k *OrbitingKnives) onLevelUp() {
	k.Damage += 5
	if k.Level%2 == 0 {
		k.KnifeCount++
		k.layout()
	}
}

// Knives returns the blades in world space. The slice is owned by the skill.
func (k *OrbitingKnives) Knives() []Knife { return k.knives }

// Stats implements Skill.
func (k *OrbitingKnives) Stats() SkillStats {
	s := k.baseStats(SkillKnives)
	s.KnifeCount = k.KnifeCount
	s.OrbitRadius = k.OrbitRadius
	s.Angle = k.currentAngle
	return s
}
