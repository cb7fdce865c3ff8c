package forecast

import (
	"math/rand"
	"sync"
	"time"
)

// Rand is a source of uniform values in [0, 1).
type Rand interface {
	Float64() float64
}

type lockedRand struct {
	mu  sync.Mutex
	src *rand.Rand
}

// NewRand returns a goroutine-safe Rand seeded with seed.
func NewRand(seed int64) Rand {
	return &lockedRand{src: rand.New(rand.NewSource(seed))}
}

// NewTimeSeededRand seeds from the wall clock.
func NewTimeSeededRand() Rand {
	return NewRand(time.Now().UnixNano())
}

func (r *lockedRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.src.Float64()
}

// FixedRand always returns the same value. Handy for tests.
type FixedRand float64

func (f FixedRand) Float64() float64 { return float64(f) }
