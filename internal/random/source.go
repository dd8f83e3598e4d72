package random

import (
	"math/rand"
	"sync"
)

// Source draws uniform integers in [0, n).
type Source interface {
	Intn(n int) int
}

type lockedSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSource returns a goroutine-safe source seeded with seed. A zero seed is
// replaced by one read from crypto/rand.
func NewSource(seed int64) (Source, error) {
	if seed == 0 {
		s, err := NewSeed()
		if err != nil {
			return nil, err
		}
		seed = s
	}
	return &lockedSource{rng: rand.New(rand.NewSource(seed))}, nil
}

func (s *lockedSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

// Pick returns one of items chosen uniformly. items must not be empty.
func Pick[T any](src Source, items []T) T {
	return items[src.Intn(len(items))]
}
