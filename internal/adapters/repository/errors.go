package repository

import "errors"

// Sentinel kinds for leaderboard storage errors.
var (
	ErrInvalidSubmission = errors.New("player and score required")
	ErrPersist           = errors.New("persist leaderboard")
	ErrLoad              = errors.New("load leaderboard")
	ErrUnknownBackend    = errors.New("unknown store backend")
)
