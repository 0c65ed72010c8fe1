package game

import (
	"math"

	"survivors/internal/config"
)

const floatTolerance = 1e-6

// quietConfig returns defaults with spawning effectively disabled and no
// starting skills, so a test controls every actor.
func quietConfig() config.AppConfig {
	cfg := config.Default()
	cfg.World.Seed = 42
	cfg.Spawner.IntervalSec = 1e9
	cfg.Skills.Starting = nil
	return cfg
}

// stationaryEnemy returns the enemy template with movement disabled.
func stationaryEnemy() config.EnemyConfig {
	ec := config.DefaultEnemy()
	ec.MoveSpeed = 0
	return ec
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) <= floatTolerance
}

// recordingObserver counts notifications for assertions.
type recordingObserver struct {
	damaged []int
	died    int
	casts   int
}

func (o *recordingObserver) ActorDamaged(_ *Actor, amount int) { o.damaged = append(o.damaged, amount) }
func (o *recordingObserver) ActorDied(*Actor)                  { o.died++ }
func (o *recordingObserver) SkillCast(Skill)                   { o.casts++ }
