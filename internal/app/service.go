// Package service provides the leaderboard service behind the HTTP API.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/okian/coinrush/internal/adapters/repository"
	"github.com/okian/coinrush/internal/domain/model"
	"github.com/okian/coinrush/pkg/logger"
	"github.com/okian/coinrush/pkg/metrics"
)

// Errors returned by the service.
var (
	ErrNotStarted        = errors.New("service not started")
	ErrInvalidSubmission = repository.ErrInvalidSubmission
	ErrPersist           = repository.ErrPersist
)

// Service owns the leaderboard and serializes submissions through it.
type Service struct {
	mu sync.RWMutex

	backend     repository.Backend
	leaderboard *repository.Leaderboard
	now         func() time.Time

	started   bool
	startedAt time.Time
	accepted  int64
	rejected  int64

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(lg logger.Logger) Option {
	return func(s *Service) {
		if lg != nil {
			s.logger = lg
		}
	}
}

// WithBackend sets the persistence backend. Defaults to memory.
func WithBackend(b repository.Backend) Option {
	return func(s *Service) {
		if b != nil {
			s.backend = b
		}
	}
}

// WithClock replaces time.Now for entry timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a service. Call Start before use.
func New(opts ...Option) *Service {
	s := &Service{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if s.backend == nil {
		s.backend = repository.NewMemoryBackend(nil)
	}
	return s
}

// Start loads the persisted board.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting leaderboard service...", logger.String("backend", s.backend.Name()))
	lb, err := repository.Open(ctx, s.backend,
		repository.WithLogger(s.logger),
		repository.WithClock(s.now),
	)
	if err != nil {
		return err
	}
	s.leaderboard = lb
	s.started = true
	s.startedAt = s.now()
	s.logger.Info(ctx, "leaderboard service started", logger.Int("entries", lb.Count(ctx)))
	return nil
}

// Stop releases the backend. Safe to call more than once.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	if err := s.leaderboard.Close(); err != nil {
		s.logger.Warn(context.Background(), "closing backend failed", logger.Error(err))
	}
	s.started = false
	s.logger.Info(context.Background(), "leaderboard service stopped")
}

func (s *Service) board() (*repository.Leaderboard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.leaderboard, nil
}

// Submit records a finished round and returns the full board.
func (s *Service) Submit(ctx context.Context, sub model.Submission) (model.Board, error) {
	lb, err := s.board()
	if err != nil {
		return nil, err
	}

	res, err := lb.Submit(ctx, sub)
	if err != nil {
		if errors.Is(err, ErrInvalidSubmission) {
			metrics.RecordSubmissionRejected("invalid")
		}
		return nil, err
	}

	s.mu.Lock()
	if res.Accepted {
		s.accepted++
	} else {
		s.rejected++
	}
	s.mu.Unlock()

	if res.Accepted {
		metrics.RecordSubmissionAccepted(lb.Backend())
		s.logger.Info(ctx, "score recorded",
			logger.String("id", res.Entry.ID),
			logger.String("player", res.Entry.Player),
			logger.Int("score", res.Entry.Score),
		)
	} else {
		metrics.RecordSubmissionRejected(res.Reason)
		s.logger.Debug(ctx, "score not recorded",
			logger.String("player", sub.Player),
			logger.Int("score", sub.Score),
			logger.String("reason", res.Reason),
		)
	}
	return res.Board, nil
}

// Board returns the current board.
func (s *Service) Board(ctx context.Context) (model.Board, error) {
	lb, err := s.board()
	if err != nil {
		return nil, err
	}
	return lb.Board(ctx), nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started": s.started,
		"backend": s.backend.Name(),
	}
	if s.started {
		entries := s.leaderboard.Count(context.Background())
		stats["entries"] = entries
		stats["accepted"] = s.accepted
		stats["notRecorded"] = s.rejected
		stats["uptimeSeconds"] = int64(s.now().Sub(s.startedAt).Seconds())
		metrics.UpdateBoardSize(entries)
	}
	return stats
}
