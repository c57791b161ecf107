package repository

import (
	"context"
	"sync"

	"github.com/okian/coinrush/internal/domain/model"
)

// MemoryBackend keeps the board in process memory. Nothing survives a
// restart.
type MemoryBackend struct {
	mu    sync.Mutex
	board model.Board
}

// NewMemoryBackend returns a backend seeded with board.
func NewMemoryBackend(board model.Board) *MemoryBackend {
	return &MemoryBackend{board: board.Clone()}
}

func (m *MemoryBackend) Name() string { return "memory" }

func (m *MemoryBackend) Load(_ context.Context) (model.Board, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.board.Clone(), nil
}

func (m *MemoryBackend) Save(_ context.Context, board model.Board) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.board = board.Clone()
	return nil
}

func (m *MemoryBackend) Close() error { return nil }
