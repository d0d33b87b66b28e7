package feed

import (
	"math/rand"
	"sync"
	"time"

	"github.com/daily-bread/daily-bread-api/internal/bible"
)

const (
	// A verse unseen for this long regains full weight no matter how often
	// it has been shown before.
	decayWindow = 168 * time.Hour
	// Floor on the decay factor so no verse is ever locked out.
	decayFloor = 0.01
)

// Sampler selects verses without replacement, de-boosting recently and
// frequently shown ones. The random source is injected so tests can pin it;
// the sampler owns it exclusively and serializes access, so concurrent
// requests may share one Sampler. Do not hand the same *rand.Rand to any
// other component.
type Sampler struct {
	mu  sync.Mutex // rand.Rand is not safe for concurrent use
	rng *rand.Rand
	now func() time.Time
}

func NewSampler(rng *rand.Rand, now func() time.Time) *Sampler {
	if now == nil {
		now = time.Now
	}
	return &Sampler{rng: rng, now: now}
}

// Sample returns min(n, len(pool)) verses with no duplicates. With an empty
// history every verse is equally likely; otherwise picks are weighted by
// verseWeight.
func (s *Sampler) Sample(pool []bible.Verse, n int, history map[string]VerseHistory) []bible.Verse {
	if n <= 0 || len(pool) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(history) == 0 {
		return s.uniformSample(pool, n)
	}
	return s.weightedSample(pool, n, history)
}

// Float64 draws a tie-break value from the sampler's source, so every bit
// of request-path randomness goes through one serialized generator.
func (s *Sampler) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

// uniformSample picks n random elements via swap-remove so each removal is
// O(1). The input slice is not mutated.
func (s *Sampler) uniformSample(pool []bible.Verse, n int) []bible.Verse {
	remaining := make([]bible.Verse, len(pool))
	copy(remaining, pool)

	if n > len(remaining) {
		n = len(remaining)
	}

	result := make([]bible.Verse, 0, n)
	for i := 0; i < n; i++ {
		idx := s.rng.Intn(len(remaining))
		result = append(result, remaining[idx])
		remaining[idx] = remaining[len(remaining)-1]
		remaining = remaining[:len(remaining)-1]
	}
	return result
}

// weightedSample repeats a roulette-wheel draw n times, removing each pick
// from further consideration.
func (s *Sampler) weightedSample(pool []bible.Verse, n int, history map[string]VerseHistory) []bible.Verse {
	remaining := make([]bible.Verse, len(pool))
	copy(remaining, pool)

	if n > len(remaining) {
		n = len(remaining)
	}

	now := s.now()
	result := make([]bible.Verse, 0, n)
	for i := 0; i < n; i++ {
		total := 0.0
		for _, v := range remaining {
			total += s.verseWeight(v.ID, history, now)
		}

		r := s.rng.Float64() * total
		picked := len(remaining) - 1 // fallback if float exhaustion never lands
		for j, v := range remaining {
			r -= s.verseWeight(v.ID, history, now)
			if r <= 0 {
				picked = j
				break
			}
		}

		result = append(result, remaining[picked])
		remaining[picked] = remaining[len(remaining)-1]
		remaining = remaining[:len(remaining)-1]
	}
	return result
}

// verseWeight is 1.0 for a verse that has never been shown. Otherwise the
// weight shrinks with seen count and recovers linearly over the decay
// window: 1/(1+seen) * clamp(hoursSince/168, 0.01, 1).
func (s *Sampler) verseWeight(verseID string, history map[string]VerseHistory, now time.Time) float64 {
	h, ok := history[verseID]
	if !ok {
		return 1.0
	}

	seenFactor := 1.0 / float64(1+h.SeenCount)

	decay := float64(now.Sub(h.LastSeenAt)) / float64(decayWindow)
	if decay > 1 {
		decay = 1
	}
	if decay < decayFloor {
		decay = decayFloor
	}

	return seenFactor * decay
}
