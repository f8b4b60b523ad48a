// Command main is the entry point for the pantry shift scheduling server.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pantryshift/internal/config"
	"pantryshift/internal/database"
	"pantryshift/internal/seed"
	"pantryshift/internal/server"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect and load the fixture dataset before serving traffic. The
	// database is in-memory; every boot starts from the fixture.
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	if cfg.SeedPath != "" {
		if _, statErr := os.Stat(cfg.SeedPath); statErr == nil {
			if err := seed.LoadFile(db, cfg.SeedPath); err != nil {
				log.Fatalf("Failed to load fixture %s: %v", cfg.SeedPath, err)
			}
		} else {
			log.Printf("No fixture at %s, starting with reference roles only", cfg.SeedPath)
			if err := seed.EnsureRoles(db); err != nil {
				log.Fatalf("Failed to seed roles: %v", err)
			}
		}
	}

	// Create server with dependency injection
	srv, err := server.NewServerWithDeps(cfg, db)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	if err := srv.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
