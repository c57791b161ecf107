// Package spawn generates coins and bananas at random arena positions up to
// a fixed capacity.
package spawn

import (
	"math/rand"

	"github.com/google/uuid"
	"github.com/okian/coinrush/internal/domain/arena"
)

const defaultItemSize = 3

// Option applies a configuration option to a Spawner.
type Option func(*Spawner)

// WithRand sets the random source used for positions.
func WithRand(r *rand.Rand) Option {
	return func(s *Spawner) {
		if r != nil {
			s.rng = r
		}
	}
}

// WithIDGenerator replaces the uuid generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Spawner) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithItemSize sets the size of every spawned item.
func WithItemSize(size float64) Option {
	return func(s *Spawner) {
		if size > 0 {
			s.size = size
		}
	}
}

// Spawner produces items for one collection. It is not safe for concurrent
// use; the owning session serializes calls.
type Spawner struct {
	capacity int
	size     float64
	rng      *rand.Rand
	newID    func() string
}

// New creates a Spawner that never grows a collection beyond capacity.
func New(capacity int, opts ...Option) *Spawner {
	s := &Spawner{
		capacity: capacity,
		size:     defaultItemSize,
		rng:      rand.New(rand.NewSource(rand.Int63())), //nolint:gosec // gameplay randomness
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Capacity returns the collection limit.
func (s *Spawner) Capacity() int { return s.capacity }

// Spawn returns items with one new item appended at a uniformly random
// position in [0,100) x [0,100), or items unchanged when already at
// capacity. The second result reports whether an item was added.
func (s *Spawner) Spawn(items []arena.Item) ([]arena.Item, bool) {
	if len(items) >= s.capacity {
		return items, false
	}
	next := make([]arena.Item, len(items), len(items)+1)
	copy(next, items)
	next = append(next, arena.Item{
		ID: s.newID(),
		Position: arena.Position{
			Top:  s.rng.Float64() * arena.MaxCoord,
			Left: s.rng.Float64() * arena.MaxCoord,
		},
		Size: s.size,
	})
	return next, true
}
