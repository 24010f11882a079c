// Package token draws short display numbers for the pickup counter. A token
// only needs to be unique among orders currently awaiting pickup, so the
// store enforces uniqueness over the active set and intake retries a fresh
// draw on conflict.
package token

import (
	"math/rand"
	"sync"
)

const (
	// MinToken and MaxToken bound the display range shown on the counter.
	MinToken = 1000
	MaxToken = 9999

	// MaxAttempts bounds the draw-insert-retry loop in intake. Past this
	// the active set is assumed to be crowding the range.
	MaxAttempts = 10
)

// Allocator produces candidate token numbers. The candidate is not
// guaranteed free: the store's active-set uniqueness constraint is the
// authority, and callers retry on conflict.
type Allocator interface {
	Draw() int
}

// RandomAllocator draws uniformly from [MinToken, MaxToken] using an
// injected source, so tests can run deterministically.
type RandomAllocator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomAllocator creates an allocator over the given source.
func NewRandomAllocator(src rand.Source) *RandomAllocator {
	return &RandomAllocator{rng: rand.New(src)}
}

// Draw returns the next candidate token.
func (a *RandomAllocator) Draw() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return MinToken + a.rng.Intn(MaxToken-MinToken+1)
}
