package game

import (
	"math"
	"time"

	"survivors/internal/config"
	"survivors/internal/game/spatial"
)

// WorldStats holds the run counters.
type WorldStats struct {
	GameTime       float64 `json:"gameTime"` // seconds of simulated play
	Score          int     `json:"score"`    // enemies killed
	GameOver       bool    `json:"gameOver"`
	TickCount      uint64  `json:"tickCount"`
	EnemiesSpawned int     `json:"enemiesSpawned"`
	DamageDealt    int     `json:"damageDealt"`
	DamageTaken    int     `json:"damageTaken"`
	SkillCasts     int     `json:"skillCasts"`
}

// World is the single-threaded simulation: one player, its skills, and the
// enemy swarm. Callers that share it across goroutines must serialize
// access (see Engine).
type World struct {
	cfg         config.AppConfig
	clock       Clock
	contactMode ContactMode
	seed        int64

	player   *Player
	skills   *SkillManager
	enemies  *EnemyRegistry
	spawner  *Spawner
	contacts *ContactTracker
	grid     *spatial.SpatialGrid
	events   *EventLog
	effects  *EffectBuffer

	stats WorldStats
	obs   *worldObserver
}

// NewWorld creates a world and starts the first run.
func NewWorld(cfg config.AppConfig, clock Clock) *World {
	if clock == nil {
		clock = NewSystemClock()
	}
	w := &World{
		cfg:         cfg,
		clock:       clock,
		contactMode: ParseContactMode(cfg.Server.ContactMode),
		enemies:     NewEnemyRegistry(cfg.Limits.MaxEnemies),
		effects:     NewEffectBuffer(cfg.Limits.MaxEffects),
	}
	w.obs = &worldObserver{w: w}

	// Cover the spawn circle with a margin; anything further out is clamped
	// into the border cells and still found.
	extent := 2 * (cfg.Spawner.Radius + 4*cfg.Enemy.Radius)
	width := math.Max(extent, float64(cfg.World.Width))
	height := math.Max(extent, float64(cfg.World.Height))
	cellSize := math.Max(32, 2*(cfg.Player.Radius+cfg.Enemy.Radius))
	w.grid = spatial.NewCenteredGrid(width, height, cellSize, cfg.Limits.MaxEnemies)
	w.contacts = NewContactTracker(w.contactMode, w.grid, w.obs)

	w.spawner = NewSpawner(cfg.Spawner, cfg.Limits.MaxEnemies, 0, w.newEnemy)
	w.Reset()
	return w
}

func (w *World) newEnemy(pos Vec2) *Enemy {
	e := NewEnemy(w.cfg.Enemy, pos, w.player, w.clock, w.obs)
	e.intervalDamage = w.contactMode == ContactEnemyInterval
	return e
}

// Reset restores a fresh run with the same configuration.
// A configured seed is reused so replays match; seed 0 draws a new one.
func (w *World) Reset() {
	w.seed = w.cfg.World.Seed
	if w.seed == 0 {
		w.seed = time.Now().UnixNano()
	}

	w.player = NewPlayer(w.cfg.Player, w.obs)
	w.skills = NewSkillManager(w.player)
	w.enemies.Clear()
	w.contacts.Reset()
	w.spawner.Reset(w.seed)
	w.effects.Clear()
	w.stats = WorldStats{}

	w.emit(EventTypeReset, "", ResetPayload{Seed: w.seed})

	for _, kind := range w.cfg.Skills.Starting {
		w.AddSkill(SkillKind(kind))
	}
}

// SetEventLog attaches an event log. nil detaches it.
func (w *World) SetEventLog(el *EventLog) { w.events = el }

// Update advances the simulation by deltaTime seconds. Order within a
// frame: effects age, player, spawner, enemies, contacts, skills, then
// dead enemies are removed and scored. Does nothing once the run is over.
func (w *World) Update(deltaTime float64) {
	if w.stats.GameOver {
		return
	}

	w.stats.TickCount++
	w.stats.GameTime += deltaTime
	w.emit(EventTypeTick, "", TickPayload{
		Seed:        w.seed,
		EnemyCount:  w.enemies.Len(),
		DeltaTimeNs: int64(deltaTime * float64(time.Second)),
	})

	w.effects.Update(deltaTime)
	w.player.Update(deltaTime)

	if e := w.spawner.Update(deltaTime, w.enemies.Len()); e != nil {
		w.addEnemy(e)
	}

	for _, e := range w.enemies.All() {
		e.Update(deltaTime)
		e.Integrate(deltaTime)
	}

	w.contacts.Update(w.player, w.enemies.LiveEnemies())

	w.skills.Update(deltaTime)

	for _, e := range w.enemies.Prune() {
		w.stats.Score++
		w.emit(EventTypeKill, e.ID, KillPayload{VictimID: e.ID, Score: w.stats.Score})
	}

	if w.player.IsDead() {
		w.stats.GameOver = true
		w.emit(EventTypePlayerDeath, w.player.ID, PlayerDeathPayload{
			PlayerID: w.player.ID,
			GameTime: w.stats.GameTime,
			Score:    w.stats.Score,
		})
	}
}

func (w *World) addEnemy(e *Enemy) {
	w.enemies.Add(e)
	w.stats.EnemiesSpawned++
	w.emit(EventTypeEnemySpawn, e.ID, SpawnPayload{EnemyID: e.ID, X: e.Pos.X, Y: e.Pos.Y, HP: e.HP})
}

// SpawnEnemyAt places an enemy from the configured template at pos,
// bypassing the spawn timer.
func (w *World) SpawnEnemyAt(pos Vec2) *Enemy {
	e := w.newEnemy(pos)
	w.addEnemy(e)
	return e
}

// HandleKey routes a key event to the player's movement axis.
func (w *World) HandleKey(key string, down bool) {
	if down {
		w.player.KeyDown(key)
	} else {
		w.player.KeyUp(key)
	}
}

// AddSkill gives the player a new skill of kind. Unknown kinds are ignored.
// Returns the new skill's index and whether it was added.
func (w *World) AddSkill(kind SkillKind) (int, bool) {
	s := NewSkill(kind, w.cfg.Skills, w.skillEnv())
	if s == nil {
		return -1, false
	}
	w.skills.Add(s)
	idx := w.skills.Len() - 1
	w.emit(EventTypeSkillAdded, w.player.ID, w.skillPayload(idx, s))
	return idx, true
}

// LevelUpSkill levels the skill at index. Out-of-range indexes are ignored.
func (w *World) LevelUpSkill(index int) bool {
	if !w.skills.LevelUp(index) {
		return false
	}
	w.emit(EventTypeSkillLevelUp, w.player.ID, w.skillPayload(index, w.skills.Skills()[index]))
	return true
}

func (w *World) skillEnv() SkillEnv {
	return SkillEnv{Clock: w.clock, Enemies: w.enemies, Observer: w.obs}
}

func (w *World) skillPayload(index int, s Skill) SkillPayload {
	st := s.Stats()
	return SkillPayload{Kind: st.Kind, Index: index, Level: st.Level, Damage: st.Damage}
}

func (w *World) skillIndex(s Skill) int {
	for i, other := range w.skills.Skills() {
		if other == s {
			return i
		}
	}
	return -1
}

func (w *World) emit(t EventType, actorID string, payload interface{}) {
	if w.events == nil || !w.events.Running() {
		return
	}
	w.events.EmitSimple(t, w.stats.TickCount, w.clock.NowMs(), actorID, payload)
}

// Player returns the current run's player.
func (w *World) Player() *Player { return w.player }

// Skills returns the player's skill manager.
func (w *World) Skills() *SkillManager { return w.skills }

// Enemies returns the enemy registry.
func (w *World) Enemies() *EnemyRegistry { return w.enemies }

// Effects returns the visual hit effects.
func (w *World) Effects() *EffectBuffer { return w.effects }

// Stats returns the run counters.
func (w *World) Stats() WorldStats { return w.stats }

// Seed returns the spawner seed of the current run.
func (w *World) Seed() int64 { return w.seed }

// Clock returns the world clock.
func (w *World) Clock() Clock { return w.clock }

// ContactMode returns which side applies contact damage.
func (w *World) ContactMode() ContactMode { return w.contactMode }

// Touching returns how many enemies are in contact with the player.
func (w *World) Touching() int { return w.contacts.Touching() }

// GridStats exposes broad-phase occupancy for debugging.
func (w *World) GridStats() spatial.GridStats { return w.grid.Stats() }

// Snapshot copies the world into snap, respecting the slice capacities
// the snapshot pool preallocated.
func (w *World) Snapshot(snap *WorldSnapshot, limits config.ResourceLimits) {
	snap.TickNumber = w.stats.TickCount
	snap.GameMs = w.clock.NowMs()
	snap.Seed = w.seed
	snap.GameTime = w.stats.GameTime
	snap.Score = w.stats.Score
	snap.GameOver = w.stats.GameOver
	snap.Player = actorSnapshot(&w.player.Actor, false)
	snap.Axis = w.player.Axis()

	live := w.enemies.LiveEnemies()
	snap.EnemyCount = len(live)
	for _, e := range live {
		if len(snap.Enemies) >= limits.MaxRenderedEnemies {
			break
		}
		snap.Enemies = append(snap.Enemies, actorSnapshot(&e.Actor, e.Contact.Touching))
	}

	for _, s := range w.skills.Skills() {
		snap.Skills = append(snap.Skills, s.Stats())
		switch sk := s.(type) {
		case *HomingProjectile:
			for _, p := range sk.Projectiles() {
				if len(snap.Projectiles) >= limits.MaxProjectiles {
					break
				}
				snap.Projectiles = append(snap.Projectiles, p.ToSnapshot())
			}
		case *OrbitingKnives:
			for _, k := range sk.Knives() {
				if len(snap.Knives) >= limits.MaxKnives {
					break
				}
				snap.Knives = append(snap.Knives, KnifeSnapshot{X: k.Pos.X, Y: k.Pos.Y, Facing: k.Facing})
			}
		}
	}

	for _, f := range w.effects.Flashes() {
		if len(snap.Flashes) >= limits.MaxEffects {
			break
		}
		snap.Flashes = append(snap.Flashes, FlashSnapshot{
			X:      f.Pos.X,
			Y:      f.Pos.Y,
			Radius: f.Radius,
			Alpha:  f.Alpha(),
			Victim: f.Victim.String(),
		})
	}
}

func actorSnapshot(a *Actor, touching bool) ActorSnapshot {
	return ActorSnapshot{
		ID:       a.ID,
		Kind:     a.Kind.String(),
		X:        a.Pos.X,
		Y:        a.Pos.Y,
		HP:       a.HP,
		MaxHP:    a.MaxHP,
		Radius:   a.Radius,
		IsDead:   a.IsDead(),
		Touching: touching,
	}
}

// worldObserver keeps score and feeds the event log. It is separate from
// World so the callbacks stay out of World's public API.
type worldObserver struct {
	w *World
}

func (o *worldObserver) ActorDamaged(a *Actor, amount int) {
	if a.Kind == KindPlayer {
		o.w.stats.DamageTaken += amount
	} else {
		o.w.stats.DamageDealt += amount
	}
	o.w.effects.AddFlash(a)
	o.w.emit(EventTypeDamage, a.ID, DamagePayload{
		VictimID:   a.ID,
		VictimKind: a.Kind.String(),
		Damage:     amount,
		VictimHP:   a.HP,
	})
}

// ActorDied is a no-op: kills are scored when the registry prunes, and
// player death ends the run at the end of the frame.
func (o *worldObserver) ActorDied(*Actor) {}

func (o *worldObserver) SkillCast(s Skill) {
	o.w.stats.SkillCasts++
	st := s.Stats()
	o.w.emit(EventTypeSkillCast, o.w.player.ID, SkillPayload{
		Kind:   st.Kind,
		Index:  o.w.skillIndex(s),
		Level:  st.Level,
		Damage: st.Damage,
	})
}

func (o *worldObserver) ContactBegan(e *Enemy) {
	o.w.emit(EventTypeContactBegin, e.ID, ContactPayload{
		EnemyID:  e.ID,
		PlayerHP: o.w.player.HP,
		Mode:     o.w.contactMode.String(),
	})
}

func (o *worldObserver) ContactEnded(e *Enemy) {
	o.w.emit(EventTypeContactEnd, e.ID, ContactPayload{
		EnemyID:  e.ID,
		PlayerHP: o.w.player.HP,
		Mode:     o.w.contactMode.String(),
	})
}
