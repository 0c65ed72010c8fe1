package game

// EnemyRegistry is the scene's list of instantiated enemies.
type EnemyRegistry struct {
	enemies []*Enemy
	live    []*Enemy // scratch for LiveEnemies
}

// NewEnemyRegistry creates a registry with room for capacity enemies.
func NewEnemyRegistry(capacity int) *EnemyRegistry {
	return &EnemyRegistry{
		enemies: make([]*Enemy, 0, capacity),
		live:    make([]*Enemy, 0, capacity),
	}
}

// Add registers an enemy. nil is ignored.
func (r *EnemyRegistry) Add(e *Enemy) {
	if e != nil {
		r.enemies = append(r.enemies, e)
	}
}

// LiveEnemies returns registered enemies that are still alive.
// The returned slice is reused by the next call.
func (r *EnemyRegistry) LiveEnemies() []*Enemy {
	r.live = r.live[:0]
	for _, e := range r.enemies {
		if !e.IsDead() {
			r.live = append(r.live, e)
		}
	}
	return r.live
}

// All returns every registered enemy, dead ones included until Prune.
func (r *EnemyRegistry) All() []*Enemy { return r.enemies }

// Prune removes dead enemies and returns them in registration order.
// Zero-allocation in-place filtering; the returned slice is fresh.
func (r *EnemyRegistry) Prune() []*Enemy {
	var removed []*Enemy
	n := 0
	for _, e := range r.enemies {
		if e.IsDead() {
			removed = append(removed, e)
			continue
		}
		r.enemies[n] = e
		n++
	}
	for i := n; i < len(r.enemies); i++ {
		r.enemies[i] = nil
	}
	r.enemies = r.enemies[:n]
	return removed
}

// Len returns the number of registered enemies.
func (r *EnemyRegistry) Len() int { return len(r.enemies) }

// Clear removes every enemy.
func (r *EnemyRegistry) Clear() {
	for i := range r.enemies {
		r.enemies[i] = nil
	}
	r.enemies = r.enemies[:0]
	r.live = r.live[:0]
}
