package main

import (
	"context"
	"log"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wavewatch/auth"
	"wavewatch/config"
	httpserver "wavewatch/http"
	"wavewatch/store"
	"wavewatch/tmdb"
	"wavewatch/world"
	"wavewatch/ws"
)

func main() {
	log.Println("Starting WaveWatch world server...")

	cfg := config.Load()
	log.Printf("Configuration loaded - Server port: %s, DB path: %s", cfg.ServerPort, cfg.DBPath)

	db, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()
	log.Println("Database initialized successfully")

	sessionManager := auth.NewSessionManager()
	authService := auth.NewService(db, sessionManager)
	engine := world.NewEngine(db)
	feed := ws.NewFeed(engine)

	// Metadata lookups are optional; the world runs without them.
	var metadata tmdb.Lookups
	if cfg.TMDBAPIKey != "" {
		client, err := tmdb.New(cfg.TMDBAPIKey, cfg.TMDBBaseURL, cfg.TMDBLanguage)
		if err != nil {
			log.Fatalf("Failed to initialize TMDB client: %v", err)
		}
		metadata = client
	} else {
		log.Println("TMDB_API_KEY not set, metadata lookups disabled")
	}

	server := httpserver.NewServer(authService, engine, feed, db, metadata, cfg.AdminUsers)
	srv := server.GetHTTPServer(cfg.ServerPort)

	go func() {
		log.Printf("Server listening on http://localhost%s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
