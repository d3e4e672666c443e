package service

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/parkfinder/backend/pkg/utils"
)

// Rand is the random source behind every synthetic value.
// *math/rand.Rand satisfies it; tests pass a seeded one.
type Rand interface {
	Float64() float64
	Intn(n int) int
	Read(p []byte) (int, error)
}

// lockedRand makes a math/rand source safe for concurrent requests
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRand returns a goroutine-safe Rand. A zero seed means time-seeded.
func NewRand(seed int64) Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &lockedRand{r: rand.New(rand.NewSource(seed))}
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}

func (l *lockedRand) Read(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Read(p)
}

// uniform draws from [min, max]
func uniform(rng Rand, min, max float64) float64 {
	return utils.Lerp(min, max, rng.Float64())
}

// pick returns a random element of options
func pick[T any](rng Rand, options []T) T {
	return options[rng.Intn(len(options))]
}

// chance is true with probability p
func chance(rng Rand, p float64) bool {
	return rng.Float64() < p
}

// newID derives a UUID from rng so seeded runs produce stable IDs
func newID(rng Rand) string {
	id, err := uuid.NewRandomFromReader(rng)
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
