package main

import (
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"connectgame/internal/api"
	"connectgame/internal/config"
	"connectgame/internal/match3"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("💡 no .env file found, using environment variables only")
	} else {
		log.Println("✅ loaded environment from .env")
	}

	log.Println("🎮 ================================")
	log.Println("🎮  CONNECTGAME ENGINE")
	log.Println("🎮 ================================")

	cfg := config.FromEnv()
	serverCfg := config.ServerFromEnv()

	log.Printf("🎮 config: %dx%d, mode=%s, duration=%ds, freeMoves=%v",
		cfg.Rows, cfg.Columns, cfg.Mode, cfg.DurationSeconds, cfg.FreeMoves)

	engine := match3.NewEngine()
	if err := engine.Setup(cfg); err != nil {
		log.Fatalf("❌ config rejected: %v", err)
	}

	eventLogPath := getEnvWithDefault("CONNECTGAME_EVENT_LOG_PATH", "events.jsonl")
	if err := engine.StartEventLog(eventLogPath); err != nil {
		log.Printf("⚠️ event log disabled: %v", err)
	} else {
		log.Printf("📝 event log: %s", eventLogPath)
	}

	debugCfg := api.DefaultObservabilityConfig()
	if os.Getenv("CONNECTGAME_DISABLE_DEBUG_SERVER") != "true" {
		if err := api.StartDebugServer(debugCfg); err != nil {
			log.Printf("⚠️ debug server disabled: %v", err)
		}
	}

	server := api.NewServer(api.RouterConfig{
		Engine: engine,
		Config: cfg,
		RateLimitConfig: &api.RateLimitConfig{
			RequestsPerSecond: serverCfg.RateLimitPerSec,
			Burst:             serverCfg.RateLimitBurst,
			CleanupInterval:   api.DefaultRateLimitConfig.CleanupInterval,
		},
	})

	engine.StartPlaying()
	log.Println("✅ session started")

	addr := ":" + strconv.Itoa(serverCfg.Port)
	go func() {
		log.Printf("🌐 API server on http://localhost%s", addr)
		if err := server.Start(addr); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	log.Println("✅ server ready, press Ctrl+C to stop")
	<-quit

	log.Println("🛑 shutting down...")
	server.Stop()
	engine.StopPlaying()
	engine.StopEventLog()
	log.Println("👋 goodbye")
}

func getEnvWithDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
