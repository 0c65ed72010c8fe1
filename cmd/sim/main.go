// =============================================================================
// SURVIVORS - HEADLESS SIMULATOR
// =============================================================================
// Runs one arena run on a manual clock as fast as the CPU allows, with a
// scripted strafing pattern on WASD. Useful for balance checks and for
// producing reproducible event logs.
//
// USAGE:
//
//	SIM_SECONDS=120 WORLD_SEED=7 go run ./cmd/sim
//	SIM_FRAME_PATH=final.png EVENT_LOG_PATH=run.jsonl go run ./cmd/sim
//
// =============================================================================
package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"survivors/internal/config"
	"survivors/internal/game"
	"survivors/internal/render"

	"github.com/joho/godotenv"
)

// strafeStep is one leg of the scripted input loop.
type strafeStep struct {
	key     string
	seconds float64
}

// The player circles the origin in a square, staying ahead of the swarm.
var strafePattern = []strafeStep{
	{"d", 1.5},
	{"w", 1.5},
	{"a", 1.5},
	{"s", 1.5},
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("💡 No .env file found, using environment variables only")
	}

	appConfig := config.Load()
	if appConfig.World.Seed == 0 {
		appConfig.World.Seed = 1
	}
	if err := appConfig.Validate(); err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	seconds := getEnvFloat("SIM_SECONDS", 60)
	framePath := os.Getenv("SIM_FRAME_PATH")
	eventLogPath := os.Getenv("EVENT_LOG_PATH")
	tickRate := appConfig.World.TickRate

	log.Printf("🧪 Simulating %.0fs at %d TPS (seed %d)", seconds, tickRate, appConfig.World.Seed)

	clock := game.NewManualClock(0)
	engine := newSimEngine(appConfig, clock)
	if err := engine.StartEventLog(eventLogPath); err != nil {
		log.Fatalf("❌ Event log: %v", err)
	}

	start := time.Now()
	stats := run(engine, clock, seconds, tickRate)
	elapsed := time.Since(start)

	engine.StopEventLog()

	log.Println("📊 ================================")
	log.Printf("📊 Survived:     %.1fs%s", stats.GameTime, deathNote(stats.GameOver))
	log.Printf("📊 Kills:        %d", stats.Score)
	log.Printf("📊 Spawned:      %d", stats.EnemiesSpawned)
	log.Printf("📊 Damage dealt: %d", stats.DamageDealt)
	log.Printf("📊 Damage taken: %d", stats.DamageTaken)
	log.Printf("📊 Skill casts:  %d", stats.SkillCasts)
	log.Printf("📊 Ticks:        %d in %v (%.0fx real time)", stats.TickCount, elapsed.Round(time.Millisecond), stats.GameTime/elapsed.Seconds())
	for i, s := range engine.SkillInfo() {
		log.Printf("📊 Skill %d:      %s L%d dmg %d range %.0f", i, s.Kind, s.Level, s.Damage, s.Range)
	}
	if eventLogPath != "" {
		el := engine.GetEventLogStats()
		log.Printf("📝 Events: %d written to %s (%d dropped)", el.Written, eventLogPath, el.Dropped)
	}

	if framePath != "" {
		snap := engine.GetSnapshot()
		r := render.NewRenderer(appConfig.World.Width, appConfig.World.Height)
		if err := render.SavePNG(framePath, r.Render(&snap)); err != nil {
			log.Fatalf("❌ %v", err)
		}
		log.Printf("🖼️ Final frame: %s", framePath)
	}
}

// newSimEngine builds an engine whose event log never drops. The default
// limits are per wall-clock second and a headless run covers minutes of
// game time in milliseconds.
func newSimEngine(cfg config.AppConfig, clock game.Clock) *game.Engine {
	engine := game.NewEngine(cfg, clock)
	engine.SetEventLog(game.NewReplayEventLog())
	return engine
}

// run steps the engine until the time budget is spent or the player dies.
func run(engine *game.Engine, clock *game.ManualClock, seconds float64, tickRate int) game.WorldStats {
	dt := 1.0 / float64(tickRate)
	totalTicks := int(seconds * float64(tickRate))

	leg := 0
	legLeft := strafePattern[0].seconds
	engine.HandleKey(strafePattern[0].key, true)

	for i := 1; i <= totalTicks; i++ {
		clock.Set(int64(float64(i) * dt * 1000))
		engine.Step(dt)

		legLeft -= dt
		if legLeft <= 0 {
			engine.HandleKey(strafePattern[leg].key, false)
			leg = (leg + 1) % len(strafePattern)
			legLeft += strafePattern[leg].seconds
			engine.HandleKey(strafePattern[leg].key, true)
		}

		if engine.GetStats().GameOver {
			break
		}
	}
	return engine.GetStats().WorldStats
}

func deathNote(dead bool) string {
	if dead {
		return " (died)"
	}
	return ""
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
