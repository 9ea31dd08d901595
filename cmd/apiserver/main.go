// Package main runs the ad-performance optimization REST API server.
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adoptimizer/adoptimizer/internal/api"
	"github.com/adoptimizer/adoptimizer/internal/auth"
	"github.com/adoptimizer/adoptimizer/internal/config"
	"github.com/adoptimizer/adoptimizer/internal/ml"
	"github.com/adoptimizer/adoptimizer/internal/storage"
	"github.com/adoptimizer/adoptimizer/internal/storage/repository"
)

var (
	port       = flag.Int("port", 0, "API server port (overrides config)")
	dbPath     = flag.String("db-path", "", "Database path (default: ~/.adoptimizer/data.db)")
	configPath = flag.String("config", "", "Config file path (default: ~/.adoptimizer/config.toml)")
)

// logRecorder logs engine history events; the durable per-user history is
// written by the API handlers.
type logRecorder struct{}

func (logRecorder) Record(kind string, payload any) {
	log.Printf("engine %s: %+v", kind, payload)
}

func main() {
	flag.Parse()

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFrom(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	fmt.Println("Ad Performance Optimizer - REST API Server")
	fmt.Println("===========================================")
	fmt.Println()

	// Database
	finalDBPath, err := config.DataPath(cfg.Database.Path, "data.db")
	if err != nil {
		log.Fatalf("Failed to resolve database path: %v", err)
	}
	fmt.Printf("Database: %s\n", finalDBPath)

	dbConfig := storage.DefaultConfig(finalDBPath)
	dbConfig.AutoMigrate = true
	if cfg.Database.MaxOpenConns > 0 {
		dbConfig.MaxOpenConns = cfg.Database.MaxOpenConns
	}
	db, err := storage.Open(dbConfig)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	// Model lifecycle
	artifactPath, err := config.DataPath(cfg.Model.ArtifactPath, "model.json")
	if err != nil {
		log.Fatalf("Failed to resolve artifact path: %v", err)
	}
	fmt.Printf("Model artifact: %s\n", artifactPath)

	lifecycle := ml.NewLifecycle(ml.NewFileStore(artifactPath), ml.TrainerConfig{
		SampleCount:  cfg.Model.SampleCount,
		Seed:         cfg.Model.Seed,
		TestFraction: cfg.Model.TestFraction,
		Forest: ml.ForestConfig{
			TreeCount: cfg.Model.TreeCount,
			MaxDepth:  cfg.Model.MaxDepth,
			Seed:      cfg.Model.Seed,
		},
	})

	if cfg.Model.TrainOnStart {
		if _, err := lifecycle.Load(); err != nil {
			log.Fatalf("Failed to load or train model: %v", err)
		}
		artifact := lifecycle.Artifact()
		fmt.Printf("Model ready (MAE %.4f, R2 %.3f)\n", artifact.MAE, artifact.R2)
	} else if err := lifecycle.Reload(); err != nil {
		log.Printf("No stored model loaded, training deferred to first request: %v", err)
	}

	engine := ml.NewEngine(lifecycle, logRecorder{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Model.WatchArtifact {
		watcher := ml.NewArtifactWatcher(lifecycle, artifactPath)
		go func() {
			if err := watcher.Watch(ctx); err != nil {
				log.Printf("Artifact watcher stopped: %v", err)
			}
		}()
		defer watcher.Stop()
	}

	// Auth
	secret := cfg.Auth.JWTSecret
	if secret == "" {
		secret = os.Getenv("ADOPTIMIZER_JWT_SECRET")
	}
	if secret == "" {
		// Tokens signed with a generated secret stop working on restart.
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			log.Fatalf("Failed to generate JWT secret: %v", err)
		}
		secret = hex.EncodeToString(buf)
		log.Println("Warning: no JWT secret configured, using a generated one")
	}
	ttl, err := cfg.GetTokenTTL()
	if err != nil {
		log.Fatalf("Invalid token TTL: %v", err)
	}
	tokens, err := auth.NewTokenManager(secret, ttl)
	if err != nil {
		log.Fatalf("Failed to create token manager: %v", err)
	}

	// API server
	server := api.NewServer(&api.Config{
		Port:           cfg.Server.Port,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RateLimit:      cfg.Server.RateLimit,
		RateBurst:      cfg.Server.RateBurst,
	}, api.Deps{
		Engine:  engine,
		Tokens:  tokens,
		Users:   repository.NewUserRepository(db.Conn()),
		Metrics: repository.NewMetricsRepository(db.Conn()),
		History: repository.NewHistoryRepository(db.Conn()),
	})

	if err := server.Start(); err != nil {
		log.Fatalf("Failed to start API server: %v", err)
	}

	fmt.Println()
	fmt.Printf("API server running at http://localhost:%d\n", server.Port())
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	fmt.Println()
	fmt.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	fmt.Println("API server stopped.")
}
