package server

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/daily-bread/daily-bread-api/internal/bibleapi"
	"github.com/daily-bread/daily-bread-api/internal/database"
	"github.com/daily-bread/daily-bread-api/internal/feed"
	"github.com/daily-bread/daily-bread-api/pkg/config"
)

type Server struct {
	port        string
	db          database.Service
	handler     http.Handler
	cfg         *config.Config
	feedService *feed.Service
	cancel      context.CancelFunc
}

// NewServer constructs the app server with all dependencies injected.
func NewServer(db database.Service, cfg *config.Config) *Server {
	stats := db.Health()
	if stats["status"] != "up" {
		log.Fatal("Database connection failed")
		return &Server{}
	}
	log.Println("Database connection successful")

	if err := db.Migrate(context.Background()); err != nil {
		log.Fatalf("Database migration failed: %v", err)
	}

	fetcher := bibleapi.NewClient(cfg.BibleAPIURL, cfg.BibleAPITranslation)

	// The cache's prefetch goroutines and the sampler's request path run
	// concurrently, and *rand.Rand is not safe to share; each component gets
	// its own seeded source.
	seed := time.Now().UnixNano()
	verseRepo := feed.NewVerseRepo(db)
	feedRepo := feed.NewFeedRepo(db)
	cache := feed.NewCache(verseRepo, fetcher, rand.New(rand.NewSource(seed)))
	sampler := feed.NewSampler(rand.New(rand.NewSource(seed+1)), nil)
	feedService := feed.NewService(verseRepo, feedRepo, cache, sampler,
		feed.WithBatchSize(cfg.FeedBatchSize),
		feed.WithPrefetchThreshold(cfg.PrefetchThreshold),
	)

	s := &Server{
		port:        cfg.Port,
		db:          db,
		cfg:         cfg,
		feedService: feedService,
	}

	s.handler = s.RegisterRoutes()
	return s
}

// HTTPServer returns the actual *http.Server instance
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%s", s.port),
		Handler:      s.handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// StartBackgroundJobs runs the cache warmer.
func (s *Server) StartBackgroundJobs() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	go s.feedService.StartScheduler(ctx)
	log.Println("Cache warmer scheduled")
}

func (s *Server) StopBackgroundJobs() {
	if s.cancel != nil {
		s.cancel()
		log.Println("Background jobs stopped gracefully")
	}
}
