// Package model contains domain models passed between layers.
package model

import (
	"strings"
	"time"
)

// Entry is one row of the leaderboard. The JSON shape is the wire and
// storage format.
type Entry struct {
	ID     string    `json:"id"`
	Player string    `json:"player"`
	Score  int       `json:"score"`
	Date   time.Time `json:"date"`
}

// Submission is a finished round reported by a game client. ID is the round
// id and may be empty, in which case the service assigns one.
type Submission struct {
	ID     string `json:"id,omitempty"`
	Player string `json:"player"`
	Score  int    `json:"score"`
}

// Valid reports whether the submission names a player.
func (s Submission) Valid() bool {
	return strings.TrimSpace(s.Player) != ""
}

// Board is the full leaderboard ordered by score descending.
type Board []Entry

// Clone returns a copy that shares no backing array with b.
func (b Board) Clone() Board {
	if b == nil {
		return Board{}
	}
	out := make(Board, len(b))
	copy(out, b)
	return out
}

// Sorted reports whether b is ordered by score descending.
func (b Board) Sorted() bool {
	for i := 1; i < len(b); i++ {
		if b[i-1].Score < b[i].Score {
			return false
		}
	}
	return true
}
