package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"survivors/internal/api"
	"survivors/internal/config"
	"survivors/internal/game"
	"survivors/internal/render"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func main() {
	// Load .env file from parent directory
	if err := godotenv.Load("../.env"); err != nil {
		// Try current directory as fallback
		if err := godotenv.Load(".env"); err != nil {
			log.Println("💡 No .env file found, using environment variables only")
		}
	} else {
		log.Println("✅ Loaded environment from ../.env")
	}

	log.Println("🎮 ================================")
	log.Println("🎮  SURVIVORS - ARENA ENGINE")
	log.Println("🎮 ================================")

	// Load centralized configuration (SSOT - Single Source of Truth)
	appConfig := config.Load()
	if err := appConfig.Validate(); err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}
	worldCfg := appConfig.World
	serverCfg := appConfig.Server

	log.Printf("🎮 Config: %d TPS, %dx%d view, contact mode %s, starting skills %v",
		worldCfg.TickRate, worldCfg.Width, worldCfg.Height, serverCfg.ContactMode, appConfig.Skills.Starting)

	engine := game.NewEngine(appConfig, game.NewSystemClock())
	limits := engine.GetLimits()
	log.Printf("🛡️ Resource limits: %d enemies, %d rendered, %d projectiles, %d knives",
		limits.MaxEnemies, limits.MaxRenderedEnemies, limits.MaxProjectiles, limits.MaxKnives)

	// Start event log
	if err := engine.StartEventLog(serverCfg.EventLogPath); err != nil {
		log.Printf("⚠️ Event log file disabled: %v", err)
	} else if serverCfg.EventLogPath != "" {
		log.Printf("📝 Event log: %s", serverCfg.EventLogPath)
	} else {
		log.Println("📝 Event log: memory only")
	}

	// Start debug server
	debugServer := api.StartDebugServer(api.ObservabilityFromEnv())
	engine.SetOnTick(api.RecordTick)

	renderer := render.NewRenderer(worldCfg.Width, worldCfg.Height)
	server := api.NewServer(engine, renderer)

	// Start game engine
	engine.Start()
	log.Println("✅ Game Engine started")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		addr := fmt.Sprintf(":%d", serverCfg.Port)
		return server.Start(addr)
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Println("🛑 Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if debugServer != nil {
			debugServer.Shutdown(shutdownCtx)
		}
		return server.Shutdown(shutdownCtx)
	})

	log.Println("✅ Server ready! Press Ctrl+C to stop.")

	err := g.Wait()
	if err != nil {
		log.Printf("❌ Server error: %v", err)
	}

	engine.Stop()
	engine.StopEventLog()
	log.Println("👋 Goodbye!")
	if err != nil {
		os.Exit(1)
	}
}
