package game

import (
	"math"
)

// TrailLength is the number of past positions a projectile remembers for rendering.
const TrailLength = 4

// Projectile is a homing shot bound to a single enemy.
// It re-aims every frame, so a moving target is always chased.
type Projectile struct {
	ID       uint64
	Pos      Vec2
	Target   *Enemy
	Speed    float64 // units per second
	Damage   int
	HitRange float64
	Rotation float64 // degrees; sprite faces +Y at 0

	// Trail positions (ring buffer)
	trail    [TrailLength]Vec2
	trailIdx int
	trailLen int
}

func newProjectile(id uint64, pos Vec2, target *Enemy, speed float64, damage int, hitRange float64) *Projectile {
	return &Projectile{
		ID:       id,
		Pos:      pos,
		Target:   target,
		Speed:    speed,
		Damage:   damage,
		HitRange: hitRange,
	}
}

// Update steers toward the target and moves speed*deltaTime.
// Returns false when the projectile should be removed: its target died,
// or it came within HitRange and dealt its damage.
func (p *Projectile) Update(deltaTime float64) bool {
	if p.Target == nil || p.Target.IsDead() {
		return false
	}

	p.trail[p.trailIdx] = p.Pos
	p.trailIdx = (p.trailIdx + 1) % TrailLength
	if p.trailLen < TrailLength {
		p.trailLen++
	}

	dir := p.Target.Pos.Sub(p.Pos).Normalize()
	p.Pos = p.Pos.Add(dir.Scale(p.Speed * deltaTime))
	p.Rotation = math.Atan2(dir.Y, dir.X)*180/math.Pi - 90

	if p.Pos.Dist(p.Target.Pos) <= p.HitRange {
		p.Target.TakeDamage(p.Damage)
		return false
	}
	return true
}

// Trail returns past positions from oldest to newest.
func (p *Projectile) Trail() []Vec2 {
	out := make([]Vec2, 0, p.trailLen)
	start := (p.trailIdx - p.trailLen + TrailLength) % TrailLength
	for i := 0; i < p.trailLen; i++ {
		out = append(out, p.trail[(start+i)%TrailLength])
	}
	return out
}

// ProjectileSnapshot is an immutable copy of projectile state for rendering
type ProjectileSnapshot struct {
	ID       uint64  `json:"id"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Rotation float64 `json:"rotation"`
	TargetID string  `json:"targetId"`
	Trail    []Vec2  `json:"trail,omitempty"`
}

// ToSnapshot creates an immutable snapshot for rendering
func (p *Projectile) ToSnapshot() ProjectileSnapshot {
	s := ProjectileSnapshot{
		ID:       p.ID,
		X:        p.Pos.X,
		Y:        p.Pos.Y,
		Rotation: p.Rotation,
		Trail:    p.Trail(),
	}
	if p.Target != nil {
		s.TargetID = p.Target.ID
	}
	return s
}
