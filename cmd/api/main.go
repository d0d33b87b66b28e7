package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/daily-bread/daily-bread-api/internal/database"
	"github.com/daily-bread/daily-bread-api/internal/server"
	"github.com/daily-bread/daily-bread-api/pkg/config"
)

func gracefulShutdown(apiServer *http.Server, s *server.Server, done chan bool) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	log.Println("shutting down gracefully, press Ctrl+C again to force")

	s.StopBackgroundJobs()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown with error: %v", err)
	}

	log.Println("Server exiting")
	done <- true
}

func main() {
	cfg := config.LoadConfig()

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	s := server.NewServer(db, cfg)
	apiServer := s.HTTPServer()

	s.StartBackgroundJobs()

	done := make(chan bool, 1)
	go gracefulShutdown(apiServer, s, done)

	log.Printf("Daily Bread api listening on port %s", cfg.Port)
	if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("http server error: %v", err)
	}

	<-done
	log.Println("Graceful shutdown complete.")
}
