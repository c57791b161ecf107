// Package game runs one round of the arcade game: timed spawns, held-key
// motion, collisions and the countdown, ending in a single leaderboard
// submission.
package game

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/coinrush/internal/domain/arena"
	"github.com/okian/coinrush/internal/domain/model"
	"github.com/okian/coinrush/internal/domain/round"
	"github.com/okian/coinrush/internal/domain/spawn"
	"github.com/okian/coinrush/pkg/logger"
	"github.com/okian/coinrush/pkg/metrics"
)

// TickKind names the scheduler that drives a Tick.
type TickKind int

// Tick kinds.
const (
	TickMotion TickKind = iota
	TickCoin
	TickBanana
	TickClock
)

func (k TickKind) String() string {
	switch k {
	case TickMotion:
		return "motion"
	case TickCoin:
		return "coin"
	case TickBanana:
		return "banana"
	case TickClock:
		return "clock"
	default:
		return "unknown"
	}
}

// BoardStatus tracks the leaderboard shown after the round.
type BoardStatus string

// Board statuses.
const (
	BoardPending     BoardStatus = "pending"
	BoardReady       BoardStatus = "ready"
	BoardUnavailable BoardStatus = "unavailable"
)

// Submitter delivers the finished round to the leaderboard.
type Submitter interface {
	Submit(ctx context.Context, sub model.Submission) (model.Board, error)
}

// Snapshot is a copy of the round state. Seq grows with every mutation.
type Snapshot struct {
	Seq         uint64
	RoundID     string
	Player      string
	Phase       round.Phase
	Remaining   int
	Score       int
	Avatar      arena.Avatar
	Facing      int
	Held        arena.Direction
	Coins       []arena.Item
	Bananas     []arena.Item
	HasFocus    bool
	Board       model.Board
	BoardStatus BoardStatus
}

// Walking reports whether a direction is held.
func (s Snapshot) Walking() bool { return s.Held != arena.None }

// Option applies a configuration option to a Session.
type Option func(*Session)

// WithSettings replaces DefaultSettings.
func WithSettings(st Settings) Option {
	return func(s *Session) { s.cfg = st }
}

// WithLogger sets the logger.
func WithLogger(lg logger.Logger) Option {
	return func(s *Session) {
		if lg != nil {
			s.logger = lg
		}
	}
}

// WithObserver registers fn to receive a snapshot after every mutation.
// fn runs outside the session lock and may be called from several
// goroutines; use Seq to drop stale snapshots. fn must not call Wait.
func WithObserver(fn func(Snapshot)) Option {
	return func(s *Session) { s.observer = fn }
}

// WithRand seeds item placement.
func WithRand(r *rand.Rand) Option {
	return func(s *Session) {
		if r != nil {
			s.rng = r
		}
	}
}

// WithIDGenerator replaces uuid generation for the round and its items.
func WithIDGenerator(fn func() string) Option {
	return func(s *Session) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithManualTicks disables the internal schedulers; the caller drives the
// round through Tick.
func WithManualTicks() Option {
	return func(s *Session) { s.manual = true }
}

// Session owns all mutable state of one round. Every mutation happens under
// mu, so each tick is a single-writer critical section.
type Session struct {
	mu sync.Mutex

	cfg       Settings
	player    string
	roundID   string
	submitter Submitter
	observer  func(Snapshot)
	logger    logger.Logger
	rng       *rand.Rand
	newID     func() string
	manual    bool

	clock         *round.Clock
	coinSpawner   *spawn.Spawner
	bananaSpawner *spawn.Spawner
	avatar        arena.Avatar
	facing        int
	held          arena.Direction
	coins         []arena.Item
	bananas       []arena.Item
	score         int
	hasFocus      bool
	board         model.Board
	boardStatus   BoardStatus
	seq           uint64

	ctx      context.Context
	cancel   context.CancelFunc
	timers   map[TickKind]context.CancelFunc
	wg       sync.WaitGroup
	started  bool
	stopped  bool
	done     chan struct{}
	doneOnce sync.Once
}

// New prepares a round for player. submitter may be nil, in which case the
// board ends up unavailable.
func New(player string, submitter Submitter, opts ...Option) *Session {
	s := &Session{
		cfg:         DefaultSettings(),
		player:      player,
		submitter:   submitter,
		logger:      logger.Nop(),
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // gameplay randomness
		newID:       uuid.NewString,
		hasFocus:    true,
		board:       model.Board{},
		boardStatus: BoardPending,
		timers:      make(map[TickKind]context.CancelFunc),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cfg = s.cfg.withDefaults()
	s.roundID = s.newID()
	s.clock = round.NewClock(s.cfg.RoundSeconds)
	s.coinSpawner = spawn.New(s.cfg.CoinCapacity,
		spawn.WithRand(s.rng), spawn.WithIDGenerator(s.newID), spawn.WithItemSize(s.cfg.ItemSize))
	s.bananaSpawner = spawn.New(s.cfg.BananaCapacity,
		spawn.WithRand(s.rng), spawn.WithIDGenerator(s.newID), spawn.WithItemSize(s.cfg.ItemSize))
	s.avatar = arena.Avatar{
		Position: arena.Position{Top: s.cfg.StartTop, Left: s.cfg.StartLeft},
		Size:     s.cfg.AvatarSize,
	}
	s.logger = s.logger.Named("session")
	return s
}

// Start begins the countdown and the spawn schedulers. The session stops
// when ctx is cancelled.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return ErrStopped
	}
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.started = true
	s.ctx, s.cancel = context.WithCancel(ctx)

	s.logger.Info(s.ctx, "round started",
		logger.String("round", s.roundID),
		logger.String("player", s.player),
		logger.Int("seconds", s.cfg.RoundSeconds),
	)
	if s.clock.Start() {
		s.finishLocked()
	} else {
		s.startTimerLocked(TickClock, time.Second)
		s.startTimerLocked(TickCoin, s.cfg.CoinInterval)
		s.startTimerLocked(TickBanana, s.cfg.BananaInterval)
	}
	snap := s.mutatedLocked()
	s.mu.Unlock()

	s.notify(snap)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		select {
		case <-s.ctx.Done():
			s.Stop()
		case <-s.done:
		}
	}()
	return nil
}

// Tick applies one scheduler step. Ticks outside the active phase, motion
// ticks with no key held, and ticks after Stop do nothing.
func (s *Session) Tick(kind TickKind) {
	s.tick(context.Background(), kind)
}

// tick ignores steps from a timer whose context was cancelled while the
// step waited for the lock.
func (s *Session) tick(timer context.Context, kind TickKind) {
	s.mu.Lock()
	if s.stopped || !s.clock.Active() || timer.Err() != nil {
		s.mu.Unlock()
		return
	}

	changed := false
	switch kind {
	case TickMotion:
		if s.held != arena.None {
			s.avatar.Position = arena.Step(s.avatar.Position, s.held)
			s.facing = s.held.Facing()
			changed = true
		}
	case TickCoin:
		s.coins, changed = s.coinSpawner.Spawn(s.coins)
	case TickBanana:
		s.bananas, changed = s.bananaSpawner.Spawn(s.bananas)
	case TickClock:
		changed = true
		if s.clock.Tick() {
			s.finishLocked()
		}
	}
	if !changed {
		s.mu.Unlock()
		return
	}
	if s.clock.Active() {
		s.resolveLocked()
	}
	snap := s.mutatedLocked()
	s.mu.Unlock()

	s.notify(snap)
}

// KeyDown holds the direction for key. The latest key down wins.
// Unrecognised keys are ignored.
func (s *Session) KeyDown(key string) {
	dir, ok := arena.ParseKey(key)
	if !ok {
		return
	}
	s.mu.Lock()
	if s.stopped || !s.clock.Active() || s.held == dir {
		s.mu.Unlock()
		return
	}
	s.held = dir
	s.startTimerLocked(TickMotion, s.cfg.MoveInterval)
	snap := s.mutatedLocked()
	s.mu.Unlock()

	s.notify(snap)
}

// KeyUp releases whatever direction is held.
func (s *Session) KeyUp() {
	s.mu.Lock()
	if s.held == arena.None {
		s.mu.Unlock()
		return
	}
	s.held = arena.None
	s.stopTimerLocked(TickMotion)
	snap := s.mutatedLocked()
	s.mu.Unlock()

	s.notify(snap)
}

// SetFocus records whether the window has input focus.
func (s *Session) SetFocus(focused bool) {
	s.mu.Lock()
	if s.hasFocus == focused {
		s.mu.Unlock()
		return
	}
	s.hasFocus = focused
	snap := s.mutatedLocked()
	s.mu.Unlock()

	s.notify(snap)
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Done is closed once the round settled: the submission finished or the
// session was stopped.
func (s *Session) Done() <-chan struct{} { return s.done }

// Stop cancels every timer and any pending submission. Safe to call more
// than once.
func (s *Session) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.stopAllTimersLocked()
	if s.cancel != nil {
		s.cancel()
	}
	var (
		snap     Snapshot
		released bool
	)
	if s.held != arena.None {
		s.held = arena.None
		snap, released = s.mutatedLocked(), true
	}
	s.mu.Unlock()

	if released {
		s.notify(snap)
	}
	s.settle()
}

// Wait blocks until every goroutine the session started has returned.
func (s *Session) Wait() { s.wg.Wait() }

func (s *Session) resolveLocked() {
	out := arena.Resolve(s.avatar, s.coins, s.bananas, s.score)
	s.coins = out.Coins
	s.score = out.Score
	if out.Collected > 0 {
		metrics.RecordCoinsCollected(out.Collected)
	}
	if out.BananaHit {
		metrics.RecordBananaContact()
	}
}

// finishLocked freezes the round and hands the score to the submitter.
func (s *Session) finishLocked() {
	s.held = arena.None
	s.stopAllTimersLocked()
	metrics.RecordRoundCompleted(s.score)

	sub := model.Submission{ID: s.roundID, Player: s.player, Score: s.score}
	s.logger.Info(s.ctx, "round ended",
		logger.String("round", sub.ID),
		logger.Int("score", sub.Score),
	)
	if s.submitter == nil {
		s.boardStatus = BoardUnavailable
		s.settle()
		return
	}

	ctx, cancel := context.WithTimeout(s.ctx, s.cfg.SubmitTimeout)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		s.submit(ctx, sub)
	}()
}

func (s *Session) submit(ctx context.Context, sub model.Submission) {
	board, err := s.submitter.Submit(ctx, sub)

	s.mu.Lock()
	if err != nil {
		metrics.RecordSubmitFailure()
		s.logger.Warn(ctx, "leaderboard submission failed",
			logger.String("round", sub.ID),
			logger.Error(err),
		)
		s.board = model.Board{}
		s.boardStatus = BoardUnavailable
	} else {
		s.board = board.Clone()
		s.boardStatus = BoardReady
	}
	snap := s.mutatedLocked()
	s.mu.Unlock()

	s.notify(snap)
	s.settle()
}

func (s *Session) settle() {
	s.doneOnce.Do(func() { close(s.done) })
}

func (s *Session) startTimerLocked(kind TickKind, every time.Duration) {
	if s.manual || s.ctx == nil {
		return
	}
	if _, running := s.timers[kind]; running {
		return
	}
	ctx, cancel := context.WithCancel(s.ctx)
	s.timers[kind] = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		t := time.NewTicker(every)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.tick(ctx, kind)
			}
		}
	}()
}

func (s *Session) stopTimerLocked(kind TickKind) {
	if cancel, ok := s.timers[kind]; ok {
		cancel()
		delete(s.timers, kind)
	}
}

func (s *Session) stopAllTimersLocked() {
	for kind := range s.timers {
		s.stopTimerLocked(kind)
	}
}

func (s *Session) mutatedLocked() Snapshot {
	s.seq++
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		Seq:         s.seq,
		RoundID:     s.roundID,
		Player:      s.player,
		Phase:       s.clock.Phase(),
		Remaining:   s.clock.Remaining(),
		Score:       s.score,
		Avatar:      s.avatar,
		Facing:      s.facing,
		Held:        s.held,
		Coins:       append([]arena.Item(nil), s.coins...),
		Bananas:     append([]arena.Item(nil), s.bananas...),
		HasFocus:    s.hasFocus,
		Board:       s.board.Clone(),
		BoardStatus: s.boardStatus,
	}
}

func (s *Session) notify(snap Snapshot) {
	if s.observer != nil {
		s.observer(snap)
	}
}
