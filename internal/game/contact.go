package game

import (
	"sort"

	"survivors/internal/game/spatial"
)

// ContactState is an enemy's view of its current overlap with the player.
type ContactState struct {
	Touching bool
	Other    *Player
}

// ContactMode selects which side applies contact damage.
type ContactMode uint8

const (
	// ContactEnemyInterval: the enemy hits on contact-begin and again every
	// damage interval while the overlap persists.
	ContactEnemyInterval ContactMode = iota
	// ContactPlayerOnce: the player takes the enemy's damage once per
	// contact-begin and never again until the contact ends.
	ContactPlayerOnce
)

// ParseContactMode maps a config string to a mode. Anything other than
// "player" selects ContactEnemyInterval.
func ParseContactMode(s string) ContactMode {
	if s == "player" {
		return ContactPlayerOnce
	}
	return ContactEnemyInterval
}

func (m ContactMode) String() string {
	if m == ContactPlayerOnce {
		return "player"
	}
	return "enemy"
}

// ContactListener is told about contact transitions after they are applied.
type ContactListener interface {
	ContactBegan(e *Enemy)
	ContactEnded(e *Enemy)
}

// ContactTracker turns per-frame overlaps into begin/end transitions,
// standing in for physics sensor callbacks.
type ContactTracker struct {
	mode     ContactMode
	grid     *spatial.SpatialGrid
	touching []*Enemy
	overlap  []*Enemy
	cands    []int
	frame    uint64
	listener ContactListener
}

// NewContactTracker creates a tracker using grid as the broad phase.
func NewContactTracker(mode ContactMode, grid *spatial.SpatialGrid, listener ContactListener) *ContactTracker {
	return &ContactTracker{
		mode:     mode,
		grid:     grid,
		touching: make([]*Enemy, 0, 16),
		overlap:  make([]*Enemy, 0, 16),
		cands:    make([]int, 0, 64),
		listener: listener,
	}
}

// Mode returns the contact damage mode.
func (t *ContactTracker) Mode() ContactMode { return t.mode }

// Touching returns the number of enemies currently in contact.
func (t *ContactTracker) Touching() int { return len(t.touching) }

// Update detects overlaps between p and enemies (dist <= rP + rE).
// Enemies that stopped overlapping, died, or are no longer in enemies get
// a contact-end; new overlaps get a contact-begin. Enemies must be live.
func (t *ContactTracker) Update(p *Player, enemies []*Enemy) {
	t.frame++
	t.overlap = t.overlap[:0]

	if p != nil && !p.IsDead() && len(enemies) > 0 {
		t.grid.Clear()
		maxR := 0.0
		for i, e := range enemies {
			t.grid.Insert(uint32(i), e.Pos.X, e.Pos.Y)
			if e.Radius > maxR {
				maxR = e.Radius
			}
		}

		t.cands = t.cands[:0]
		for _, id := range t.grid.QueryRadius(p.Pos.X, p.Pos.Y, p.Radius+maxR) {
			t.cands = append(t.cands, int(id))
		}
		// Cells are visited in grid order; keep transitions in spawn order.
		sort.Ints(t.cands)

		for _, idx := range t.cands {
			e := enemies[idx]
			if e.IsDead() {
				continue
			}
			if p.distanceTo(&e.Actor) <= p.Radius+e.Radius {
				e.contactFrame = t.frame
				t.overlap = append(t.overlap, e)
			}
		}
	}

	// Ends first so a stale entry never blocks a fresh begin.
	kept := t.touching[:0]
	for _, e := range t.touching {
		if e.contactFrame == t.frame && !e.IsDead() {
			kept = append(kept, e)
			continue
		}
		e.OnContactEnd()
		if t.listener != nil {
			t.listener.ContactEnded(e)
		}
	}

	for _, e := range t.overlap {
		if e.Contact.Touching {
			continue
		}
		e.OnContactBegin(p)
		if t.mode == ContactPlayerOnce {
			p.OnContactBegin(e)
		}
		if t.listener != nil {
			t.listener.ContactBegan(e)
		}
		kept = append(kept, e)
	}
	t.touching = kept
}

// Reset forgets every contact without emitting transitions.
func (t *ContactTracker) Reset() {
	for i := range t.touching {
		t.touching[i] = nil
	}
	t.touching = t.touching[:0]
	t.overlap = t.overlap[:0]
}
