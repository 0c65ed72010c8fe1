package game

// ImpactFlash is an expanding ring left where an actor took damage.
// It is purely visual and never feeds back into the simulation.
type ImpactFlash struct {
	Pos       Vec2
	Radius    float64
	MaxRadius float64
	Life      float64 // seconds left
	Victim    ActorKind
}

const (
	// FlashLifetime is how long an impact flash stays visible, in seconds.
	FlashLifetime = 0.25
	// flashGrowth sizes the final ring relative to the victim.
	flashGrowth = 1.6
)

// Alpha fades linearly from 1 to 0 over the flash lifetime.
func (f *ImpactFlash) Alpha() float64 {
	return f.Life / FlashLifetime
}

// update ages the flash and reports whether it is still visible.
func (f *ImpactFlash) update(deltaTime float64) bool {
	f.Life -= deltaTime
	if f.Life <= 0 {
		return false
	}
	f.Radius = f.MaxRadius * (1 - f.Life/FlashLifetime)
	return true
}

// EffectBuffer holds impact flashes up to a fixed cap. When full, the
// oldest flash is dropped to make room.
type EffectBuffer struct {
	flashes []ImpactFlash
	max     int
}

// NewEffectBuffer creates a buffer holding at most max flashes
// (0 disables effects).
func NewEffectBuffer(max int) *EffectBuffer {
	if max < 0 {
		max = 0
	}
	return &EffectBuffer{
		flashes: make([]ImpactFlash, 0, max),
		max:     max,
	}
}

// AddFlash starts a flash on a damaged actor.
func (b *EffectBuffer) AddFlash(a *Actor) {
	if b.max == 0 {
		return
	}
	if len(b.flashes) == b.max {
		copy(b.flashes, b.flashes[1:])
		b.flashes = b.flashes[:b.max-1]
	}
	b.flashes = append(b.flashes, ImpactFlash{
		Pos:       a.Pos,
		MaxRadius: a.Radius * flashGrowth,
		Life:      FlashLifetime,
		Victim:    a.Kind,
	})
}

// Update ages every flash and drops expired ones in place.
func (b *EffectBuffer) Update(deltaTime float64) {
	n := 0
	for i := range b.flashes {
		if b.flashes[i].update(deltaTime) {
			b.flashes[n] = b.flashes[i]
			n++
		}
	}
	b.flashes = b.flashes[:n]
}

// Flashes returns the live flashes, oldest first. The slice is reused.
func (b *EffectBuffer) Flashes() []ImpactFlash { return b.flashes }

// Len returns the number of live flashes.
func (b *EffectBuffer) Len() int { return len(b.flashes) }

// Clear removes all flashes.
func (b *EffectBuffer) Clear() { b.flashes = b.flashes[:0] }
