package simulate

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/okian/coinrush/internal/adapters/http/client"
	"github.com/okian/coinrush/internal/domain/model"
	"github.com/okian/coinrush/internal/game"
	"github.com/okian/coinrush/pkg/logger"
)

// Runner defaults.
const (
	defaultThink   = 100 * time.Millisecond
	defaultTimeout = 5 * time.Second
)

// ErrInconsistentBoard reports a board that breaks ordering or lost a round.
var ErrInconsistentBoard = errors.New("inconsistent leaderboard")

// Run plays cfg.Rounds rounds with cfg.Workers bots at a time, then checks
// the final board.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	if cfg.Rounds <= 0 {
		return nil, fmt.Errorf("rounds must be positive, got %d", cfg.Rounds)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Think <= 0 {
		cfg.Think = defaultThink
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	lb, err := client.New(cfg.BaseURL, client.WithTimeout(cfg.Timeout))
	if err != nil {
		return nil, err
	}

	log := logger.Get().Named("simulate")
	stats := &Stats{StartTime: time.Now()}
	log.Info(ctx, "starting simulation",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("rounds", cfg.Rounds),
		logger.Int("workers", cfg.Workers),
		logger.Int("roundSeconds", cfg.Settings.RoundSeconds),
	)

	rounds := playRounds(ctx, cfg, lb, seed, log)
	for _, r := range rounds {
		stats.RoundsPlayed++
		stats.TotalScore += r.Score
		if r.Score > stats.BestScore {
			stats.BestScore = r.Score
		}
		if r.BoardStatus == game.BoardReady {
			stats.Ready++
		} else {
			stats.Unavailable++
		}
	}

	board, err := lb.Board(ctx)
	if err != nil {
		return stats, fmt.Errorf("fetch board: %w", err)
	}
	stats.BoardSize = len(board)
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	if err := verify(board, rounds, stats); err != nil {
		return stats, err
	}
	log.Info(ctx, "simulation finished",
		logger.Int("played", stats.RoundsPlayed),
		logger.Int("ready", stats.Ready),
		logger.Int("unavailable", stats.Unavailable),
		logger.Int("best", stats.BestScore),
		logger.Int("boardSize", stats.BoardSize),
		logger.Duration("took", stats.Duration),
	)
	return stats, nil
}

func playRounds(ctx context.Context, cfg *Config, lb game.Submitter, seed int64, log logger.Logger) []Round {
	jobs := make(chan int, cfg.Workers*2)
	results := make(chan Round, cfg.Rounds)

	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := range jobs {
				r, err := playOne(ctx, cfg, lb, seed+int64(n))
				if err != nil {
					log.Warn(ctx, "round aborted", logger.Int("round", n), logger.Error(err))
					continue
				}
				if cfg.Verbose {
					log.Info(ctx, "round finished",
						logger.String("player", r.Player),
						logger.Int("score", r.Score),
						logger.String("board", string(r.BoardStatus)),
					)
				}
				results <- r
			}
		}()
	}

	go func() {
		defer close(jobs)
		for n := 0; n < cfg.Rounds; n++ {
			select {
			case <-ctx.Done():
				return
			case jobs <- n:
			}
		}
	}()

	wg.Wait()
	close(results)

	out := make([]Round, 0, cfg.Rounds)
	for r := range results {
		out = append(out, r)
	}
	return out
}

func playOne(ctx context.Context, cfg *Config, lb game.Submitter, seed int64) (Round, error) {
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // bot behaviour
	s := game.New(game.RandomPlayerName(rng), lb,
		game.WithSettings(cfg.Settings),
		game.WithRand(rand.New(rand.NewSource(rng.Int63()))), //nolint:gosec // item placement
	)
	if err := s.Start(ctx); err != nil {
		return Round{}, err
	}
	defer s.Stop()

	b := &bot{session: s, rng: rng, think: cfg.Think}
	b.play(ctx)

	select {
	case <-s.Done():
	case <-ctx.Done():
		return Round{}, ctx.Err()
	}
	snap := s.Snapshot()
	return Round{
		ID:          snap.RoundID,
		Player:      snap.Player,
		Score:       snap.Score,
		BoardStatus: snap.BoardStatus,
	}, nil
}

// verify checks ordering and that every positive, acknowledged round is on
// the board exactly once.
func verify(board model.Board, rounds []Round, stats *Stats) error {
	if !board.Sorted() {
		return fmt.Errorf("%w: not sorted by score", ErrInconsistentBoard)
	}
	seen := make(map[string]int, len(board))
	for _, e := range board {
		seen[e.ID]++
	}
	for _, r := range rounds {
		if r.BoardStatus != game.BoardReady || r.Score <= 0 {
			continue
		}
		switch seen[r.ID] {
		case 1:
			stats.Recorded++
		case 0:
			return fmt.Errorf("%w: round %s missing", ErrInconsistentBoard, r.ID)
		default:
			return fmt.Errorf("%w: round %s recorded %d times", ErrInconsistentBoard, r.ID, seen[r.ID])
		}
	}
	return nil
}
