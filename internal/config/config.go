// Package config provides centralized configuration management.
// This is the SINGLE SOURCE OF TRUTH for arena tuning and host settings.
//
// IMPORTANT: When changing balance values, only modify this file.
// The game package receives these values through its constructors.
package config

import (
	"os"
	"strconv"

	"github.com/pkg/errors"
)

// =============================================================================
// WORLD & TICK CONFIGURATION
// =============================================================================

// WorldConfig holds the arena viewport and simulation rate.
// The arena is centred on the origin; Width/Height bound the rendered view
// and the spatial grid, not the actors themselves.
type WorldConfig struct {
	Width    int // Viewport width in world units (pixels at scale 1)
	Height   int // Viewport height in world units
	TickRate int // Simulation updates per second
	Seed     int64
}

// DefaultWorld returns the default world configuration.
func DefaultWorld() WorldConfig {
	return WorldConfig{
		Width:    1280,
		Height:   720,
		TickRate: 30,
		Seed:     0, // 0 = seed from clock
	}
}

// WorldFromEnv returns world configuration with environment variable overrides.
func WorldFromEnv() WorldConfig {
	cfg := DefaultWorld()

	if w := getEnvInt("WORLD_WIDTH", 0); w > 0 {
		cfg.Width = w
	}
	if h := getEnvInt("WORLD_HEIGHT", 0); h > 0 {
		cfg.Height = h
	}
	if tr := getEnvInt("TICK_RATE", 0); tr > 0 {
		cfg.TickRate = tr
	}
	if s := getEnvInt("WORLD_SEED", 0); s != 0 {
		cfg.Seed = int64(s)
	}

	return cfg
}

// =============================================================================
// ACTOR CONFIGURATION
// =============================================================================

// PlayerConfig holds the player's base stats.
type PlayerConfig struct {
	MoveSpeed float64 // units per second
	HP        int
	Radius    float64 // contact sensor radius
}

// DefaultPlayer returns the default player stats.
func DefaultPlayer() PlayerConfig {
	return PlayerConfig{
		MoveSpeed: 200,
		HP:        100,
		Radius:    25,
	}
}

// EnemyConfig holds the template every spawned enemy is created from.
type EnemyConfig struct {
	MoveSpeed        float64
	Damage           int
	HP               int
	DamageIntervalMs int64 // contact damage cadence
	Radius           float64
	VelocityDriven   bool // true = physics-driven movement variant
}

// DefaultEnemy returns the default enemy template.
func DefaultEnemy() EnemyConfig {
	return EnemyConfig{
		MoveSpeed:        100,
		Damage:           10,
		HP:               50,
		DamageIntervalMs: 1000,
		Radius:           20,
	}
}

// EnemyFromEnv returns the enemy template with environment overrides.
func EnemyFromEnv() EnemyConfig {
	cfg := DefaultEnemy()

	if v := getEnvFloat("ENEMY_SPEED", -1); v >= 0 {
		cfg.MoveSpeed = v
	}
	if v := getEnvInt("ENEMY_DAMAGE", -1); v >= 0 {
		cfg.Damage = v
	}
	if v := getEnvInt("ENEMY_HP", 0); v > 0 {
		cfg.HP = v
	}
	if os.Getenv("ENEMY_VELOCITY_DRIVEN") == "true" {
		cfg.VelocityDriven = true
	}

	return cfg
}

// SpawnerConfig controls enemy waves.
type SpawnerConfig struct {
	IntervalSec float64 // seconds between spawns
	Radius      float64 // spawn circle radius around the origin
}

// DefaultSpawner returns the default spawner configuration.
func DefaultSpawner() SpawnerConfig {
	return SpawnerConfig{
		IntervalSec: 2,
		Radius:      600,
	}
}

// SpawnerFromEnv returns spawner configuration with environment overrides.
func SpawnerFromEnv() SpawnerConfig {
	cfg := DefaultSpawner()

	if v := getEnvFloat("SPAWN_INTERVAL", 0); v > 0 {
		cfg.IntervalSec = v
	}
	if v := getEnvFloat("SPAWN_RADIUS", 0); v > 0 {
		cfg.Radius = v
	}

	return cfg
}

// =============================================================================
// SKILL CONFIGURATION
// =============================================================================

// AuraConfig holds the damage aura's starting stats.
type AuraConfig struct {
	Damage         int
	Radius         float64
	TickIntervalMs int64
}

// HomingConfig holds the homing projectile's starting stats.
type HomingConfig struct {
	Damage         int
	CooldownMs     int64
	HitRange       float64
	Speed          float64
	MaxProjectiles int
	SearchRadius   float64
}

// KnivesConfig holds the orbiting knives' starting stats.
type KnivesConfig struct {
	Damage        int
	Range         float64
	OrbitRadius   float64
	RotationSpeed float64 // degrees per second
	Count         int
}

// SkillsConfig groups all skill tuning and the loadout granted on start.
type SkillsConfig struct {
	Aura     AuraConfig
	Homing   HomingConfig
	Knives   KnivesConfig
	Starting []string // skill kinds added to the player on every run
}

// DefaultSkills returns the default skill tuning.
func DefaultSkills() SkillsConfig {
	return SkillsConfig{
		Aura: AuraConfig{
			Damage:         5,
			Radius:         100,
			TickIntervalMs: 500,
		},
		Homing: HomingConfig{
			Damage:         20,
			CooldownMs:     800,
			HitRange:       20,
			Speed:          300,
			MaxProjectiles: 2,
			SearchRadius:   500,
		},
		Knives: KnivesConfig{
			Damage:        10,
			Range:         100,
			OrbitRadius:   100,
			RotationSpeed: 120,
			Count:         8,
		},
		Starting: []string{"aura", "homing", "knives"},
	}
}

// =============================================================================
// RESOURCE LIMITS
// =============================================================================

// ResourceLimits caps per-run allocations.
type ResourceLimits struct {
	MaxEnemies         int // Hard cap on live enemies (spawner stops above it)
	MaxRenderedEnemies int // Per-snapshot enemy cap
	MaxProjectiles     int // Per-snapshot projectile cap
	MaxKnives          int // Per-snapshot blade cap
	MaxEffects         int // Live impact flashes (oldest dropped first)
}

// DefaultLimits returns the default resource limits.
func DefaultLimits() ResourceLimits {
	return ResourceLimits{
		MaxEnemies:         500,
		MaxRenderedEnemies: 300,
		MaxProjectiles:     32,
		MaxKnives:          32,
		MaxEffects:         64,
	}
}

// =============================================================================
// SERVER CONFIGURATION
// =============================================================================

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int
	ContactMode  string // "enemy" (interval ticks) or "player" (once per contact)
	EventLogPath string
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Port:         3000,
		ContactMode:  "enemy",
		EventLogPath: "events.jsonl",
	}
}

// ServerFromEnv returns server configuration with environment variable overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()

	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Port = p
	}
	if m := os.Getenv("CONTACT_MODE"); m != "" {
		cfg.ContactMode = m
	}
	if path, ok := os.LookupEnv("EVENT_LOG_PATH"); ok {
		cfg.EventLogPath = path
	}

	return cfg
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration.
type AppConfig struct {
	World   WorldConfig
	Player  PlayerConfig
	Enemy   EnemyConfig
	Spawner SpawnerConfig
	Skills  SkillsConfig
	Limits  ResourceLimits
	Server  ServerConfig
}

// Default returns the complete configuration without environment overrides.
func Default() AppConfig {
	return AppConfig{
		World:   DefaultWorld(),
		Player:  DefaultPlayer(),
		Enemy:   DefaultEnemy(),
		Spawner: DefaultSpawner(),
		Skills:  DefaultSkills(),
		Limits:  DefaultLimits(),
		Server:  DefaultServer(),
	}
}

// Load returns the complete configuration with environment overrides.
func Load() AppConfig {
	cfg := Default()
	cfg.World = WorldFromEnv()
	cfg.Enemy = EnemyFromEnv()
	cfg.Spawner = SpawnerFromEnv()
	cfg.Server = ServerFromEnv()
	return cfg
}

// Validate rejects configurations the simulation cannot run with.
func (c AppConfig) Validate() error {
	if c.World.TickRate <= 0 {
		return errors.Errorf("tick rate must be positive, got %d", c.World.TickRate)
	}
	if c.World.Width <= 0 || c.World.Height <= 0 {
		return errors.Errorf("world size must be positive, got %dx%d", c.World.Width, c.World.Height)
	}
	if c.Player.HP <= 0 {
		return errors.New("player hp must be positive")
	}
	if c.Spawner.IntervalSec <= 0 {
		return errors.Errorf("spawn interval must be positive, got %v", c.Spawner.IntervalSec)
	}
	if c.Skills.Knives.Count < 1 {
		return errors.Errorf("knife count must be at least 1, got %d", c.Skills.Knives.Count)
	}
	switch c.Server.ContactMode {
	case "enemy", "player":
	default:
		return errors.Errorf("unknown contact mode %q", c.Server.ContactMode)
	}
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
