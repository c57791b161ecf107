package game

import (
	"math"
	"time"

	"github.com/okian/coinrush/internal/domain/arena"
)

// Settings tunes one round. Non-positive intervals, sizes and timeouts fall
// back to DefaultSettings; round length, capacities and the start position
// are taken as given.
type Settings struct {
	RoundSeconds   int
	CoinInterval   time.Duration
	CoinCapacity   int
	BananaInterval time.Duration
	BananaCapacity int
	MoveInterval   time.Duration
	AvatarSize     float64
	ItemSize       float64
	StartTop       float64
	StartLeft      float64
	SubmitTimeout  time.Duration
}

// DefaultSettings returns the classic arcade tuning.
func DefaultSettings() Settings {
	return Settings{
		RoundSeconds:   120,
		CoinInterval:   2500 * time.Millisecond,
		CoinCapacity:   30,
		BananaInterval: 5000 * time.Millisecond,
		BananaCapacity: 20,
		MoveInterval:   25 * time.Millisecond,
		AvatarSize:     3,
		ItemSize:       3,
		StartTop:       80,
		StartLeft:      50,
		SubmitTimeout:  5 * time.Second,
	}
}

func (s Settings) withDefaults() Settings {
	d := DefaultSettings()
	if s.RoundSeconds < 0 {
		s.RoundSeconds = 0
	}
	if s.CoinInterval <= 0 {
		s.CoinInterval = d.CoinInterval
	}
	if s.CoinCapacity < 0 {
		s.CoinCapacity = 0
	}
	if s.BananaInterval <= 0 {
		s.BananaInterval = d.BananaInterval
	}
	if s.BananaCapacity < 0 {
		s.BananaCapacity = 0
	}
	if s.MoveInterval <= 0 {
		s.MoveInterval = d.MoveInterval
	}
	if s.AvatarSize <= 0 {
		s.AvatarSize = d.AvatarSize
	}
	if s.ItemSize <= 0 {
		s.ItemSize = d.ItemSize
	}
	if s.SubmitTimeout <= 0 {
		s.SubmitTimeout = d.SubmitTimeout
	}
	s.StartTop = math.Max(arena.MinCoord, math.Min(arena.MaxCoord, s.StartTop))
	s.StartLeft = math.Max(arena.MinCoord, math.Min(arena.MaxCoord, s.StartLeft))
	return s
}
