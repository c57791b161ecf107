package simulate

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/okian/coinrush/internal/domain/arena"
	"github.com/okian/coinrush/internal/game"
)

// wanderChance is the probability that a bot ignores the nearest coin.
const wanderChance = 0.2

// bot steers a session towards the nearest coin, wandering now and then.
type bot struct {
	session *game.Session
	rng     *rand.Rand
	think   time.Duration
}

// play drives the session until it settles or ctx ends.
func (b *bot) play(ctx context.Context) {
	t := time.NewTicker(b.think)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-b.session.Done():
			return
		case <-t.C:
			b.steer(b.session.Snapshot())
		}
	}
}

func (b *bot) steer(snap game.Snapshot) {
	if b.rng.Float64() < wanderChance || len(snap.Coins) == 0 {
		keys := []string{arena.KeyUp, arena.KeyDown, arena.KeyLeft, arena.KeyRight}
		b.session.KeyDown(keys[b.rng.Intn(len(keys))])
		return
	}
	target := nearest(snap.Avatar.Position, snap.Coins)
	if key := towards(snap.Avatar.Position, target); key != "" {
		b.session.KeyDown(key)
		return
	}
	b.session.KeyUp()
}

func nearest(from arena.Position, items []arena.Item) arena.Position {
	best, bestDist := items[0].Position, math.Inf(1)
	for _, it := range items {
		if d := arena.Distance(from, it.Position); d < bestDist {
			best, bestDist = it.Position, d
		}
	}
	return best
}

// towards picks the key that closes the larger gap first.
func towards(from, to arena.Position) string {
	dTop, dLeft := to.Top-from.Top, to.Left-from.Left
	switch {
	case math.Abs(dTop) < 0.5 && math.Abs(dLeft) < 0.5:
		return ""
	case math.Abs(dTop) >= math.Abs(dLeft) && dTop < 0:
		return arena.KeyUp
	case math.Abs(dTop) >= math.Abs(dLeft):
		return arena.KeyDown
	case dLeft < 0:
		return arena.KeyLeft
	default:
		return arena.KeyRight
	}
}
