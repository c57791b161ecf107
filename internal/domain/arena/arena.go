// Package arena holds the playfield geometry: positions in percent-of-arena
// units, held-direction motion, and the collision rules for coins and bananas.
package arena

import "math"

// Arena bounds on both axes, inclusive.
const (
	MinCoord = 0.0
	MaxCoord = 100.0
)

// Position is a point in percent-of-arena units.
type Position struct {
	Top  float64 `json:"top"`
	Left float64 `json:"left"`
}

// Avatar is the player-controlled body.
type Avatar struct {
	Position
	Size float64 `json:"size"`
}

// Item is a coin or a banana.
type Item struct {
	ID string `json:"id"`
	Position
	Size float64 `json:"size"`
}

// Distance is the Euclidean distance between two centres.
func Distance(a, b Position) float64 {
	return math.Hypot(a.Left-b.Left, a.Top-b.Top)
}

// Touches reports whether the avatar overlaps the item. The threshold is
// strict: centres exactly one combined radius apart do not touch.
func Touches(a Avatar, it Item) bool {
	return Distance(a.Position, it.Position) < a.Size/2+it.Size/2
}

func clamp(v float64) float64 {
	return math.Max(MinCoord, math.Min(MaxCoord, v))
}
