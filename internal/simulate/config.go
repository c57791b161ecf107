// Package simulate plays headless rounds with bots against a running
// leaderboard service.
package simulate

import (
	"time"

	"github.com/okian/coinrush/internal/game"
)

// Config holds configuration for a simulation run.
type Config struct {
	BaseURL  string        // leaderboard service base URL
	Rounds   int           // rounds to play in total
	Workers  int           // rounds played at the same time
	Timeout  time.Duration // per-request HTTP timeout
	Think    time.Duration // how often a bot reconsiders its direction
	Seed     int64         // 0 picks a time-based seed
	Verbose  bool
	Settings game.Settings // round tuning for every bot
}

// Stats summarises a run.
type Stats struct {
	RoundsPlayed int
	Ready        int // rounds whose board came back
	Unavailable  int // rounds whose submission failed
	Recorded     int // rounds with a positive score found on the board
	BestScore    int
	TotalScore   int
	BoardSize    int
	StartTime    time.Time
	EndTime      time.Time
	Duration     time.Duration
}

// Round is the outcome of one bot round.
type Round struct {
	ID          string
	Player      string
	Score       int
	BoardStatus game.BoardStatus
}
