// Package repository keeps the leaderboard and its durable backends.
package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/coinrush/internal/domain/model"
	"github.com/okian/coinrush/pkg/logger"
	"github.com/okian/coinrush/pkg/metrics"
)

// Backend persists the whole board. Save must replace the stored board
// atomically: a reader after a failed Save sees the previous board.
type Backend interface {
	Name() string
	Load(ctx context.Context) (model.Board, error)
	Save(ctx context.Context, board model.Board) error
	Close() error
}

// Rejection reasons reported in Result.
const (
	ReasonNonPositive = "non_positive"
	ReasonDuplicate   = "duplicate"
)

// Result is the outcome of a submission.
type Result struct {
	// Board is the full board after the submission.
	Board model.Board
	// Accepted is true when the entry was appended and persisted.
	Accepted bool
	// Entry is the stored entry when Accepted.
	Entry model.Entry
	// Reason explains why an entry was not appended.
	Reason string
}

// Option applies a configuration option to a Leaderboard.
type Option func(*Leaderboard)

// WithClock replaces time.Now for submission timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Leaderboard) {
		if now != nil {
			l.now = now
		}
	}
}

// WithIDGenerator replaces the generator used for submissions without an id.
func WithIDGenerator(fn func() string) Option {
	return func(l *Leaderboard) {
		if fn != nil {
			l.newID = fn
		}
	}
}

// WithLogger sets the logger.
func WithLogger(lg logger.Logger) Option {
	return func(l *Leaderboard) {
		if lg != nil {
			l.logger = lg
		}
	}
}

// Leaderboard is the in-memory view of the persisted board. Every mutation
// is a read-modify-sort-write under one lock, and the in-memory board only
// changes after the backend accepted the new board.
type Leaderboard struct {
	mu      sync.RWMutex
	backend Backend
	board   model.Board
	ids     map[string]struct{}

	now    func() time.Time
	newID  func() string
	logger logger.Logger
}

// Open loads the persisted board from backend.
func Open(ctx context.Context, backend Backend, opts ...Option) (*Leaderboard, error) {
	l := &Leaderboard{
		backend: backend,
		ids:     make(map[string]struct{}),
		now:     time.Now,
		newID:   uuid.NewString,
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}

	board, err := backend.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoad, backend.Name(), err)
	}
	board = board.Clone()
	sortBoard(board)
	l.board = board
	for _, e := range board {
		if e.ID != "" {
			l.ids[e.ID] = struct{}{}
		}
	}
	metrics.UpdateBoardSize(len(board))
	l.logger.Info(ctx, "leaderboard loaded",
		logger.String("backend", backend.Name()),
		logger.Int("entries", len(board)),
	)
	return l, nil
}

// Submit appends sub when its score is positive and its id is new, persists
// the re-sorted board in full, and returns the board. Non-positive scores
// and repeated ids return the current board unchanged.
func (l *Leaderboard) Submit(ctx context.Context, sub model.Submission) (Result, error) {
	if !sub.Valid() {
		return Result{}, ErrInvalidSubmission
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if sub.Score <= 0 {
		return Result{Board: l.board.Clone(), Reason: ReasonNonPositive}, nil
	}
	if _, dup := l.ids[sub.ID]; dup && sub.ID != "" {
		return Result{Board: l.board.Clone(), Reason: ReasonDuplicate}, nil
	}
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrPersist, err)
	}

	entry := model.Entry{
		ID:     sub.ID,
		Player: sub.Player,
		Score:  sub.Score,
		Date:   l.now().UTC(),
	}
	if entry.ID == "" {
		entry.ID = l.newID()
	}

	next := make(model.Board, len(l.board), len(l.board)+1)
	copy(next, l.board)
	next = append(next, entry)
	sortBoard(next)

	start := time.Now()
	err := l.backend.Save(ctx, next)
	metrics.RecordPersistLatency(float64(time.Since(start).Microseconds()) / 1000)
	if err != nil {
		metrics.RecordPersistError()
		l.logger.Error(ctx, "leaderboard write failed",
			logger.String("backend", l.backend.Name()),
			logger.Error(err),
		)
		return Result{}, fmt.Errorf("%w: %s: %w", ErrPersist, l.backend.Name(), err)
	}

	l.board = next
	l.ids[entry.ID] = struct{}{}
	metrics.UpdateBoardSize(len(next))
	return Result{Board: next.Clone(), Accepted: true, Entry: entry}, nil
}

// Board returns a copy of the current board.
func (l *Leaderboard) Board(_ context.Context) model.Board {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.board.Clone()
}

// Count returns the number of entries on the board.
func (l *Leaderboard) Count(_ context.Context) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.board)
}

// Backend returns the name of the persistence backend.
func (l *Leaderboard) Backend() string {
	return l.backend.Name()
}

// Close releases the backend.
func (l *Leaderboard) Close() error {
	return l.backend.Close()
}

// sortBoard orders by score descending; equal scores keep insertion order.
func sortBoard(b model.Board) {
	sort.SliceStable(b, func(i, j int) bool { return b[i].Score > b[j].Score })
}
