package feed

import (
	"context"
	"log"
	"time"

	"github.com/daily-bread/daily-bread-api/pkg/config"
)

// StartScheduler keeps the chapter cache warm between requests.
// - In dev: checks every 1 hour.
// - In prod: checks every 24 hours.
func (s *Service) StartScheduler(ctx context.Context) {
	tickerDuration := time.Hour // default for testing (local/dev)

	appEnv := config.GetAppEnv()
	if appEnv == "production" {
		tickerDuration = 24 * time.Hour
	}

	ticker := time.NewTicker(tickerDuration)
	defer ticker.Stop()

	log.Printf("Cache warmer started (%s interval)\n", tickerDuration)

	for {
		select {
		case <-ctx.Done():
			log.Println("Cache warmer stopped gracefully")
			return
		case <-ticker.C:
			s.runCacheWarmup(ctx)
		}
	}
}

// runCacheWarmup tops the cache back up to the prefetch threshold.
func (s *Service) runCacheWarmup(ctx context.Context) {
	count, err := s.verses.CountCachedChapters(ctx)
	if err != nil {
		log.Printf("Cache warmer: count failed: %v", err)
		return
	}
	if count >= s.prefetchThreshold {
		return
	}

	fetched, err := s.cache.Prefetch(ctx, s.prefetchThreshold)
	if err != nil {
		log.Printf("Cache warmer: prefetch failed: %v", err)
		return
	}
	log.Printf("Cache warmer: fetched %d chapters (%d were cached)", fetched, count)
}
