package client

import "errors"

// Sentinel kinds for leaderboard client errors.
var (
	ErrInvalidURL  = errors.New("invalid leaderboard url")
	ErrTransport   = errors.New("leaderboard unreachable")
	ErrRejected    = errors.New("leaderboard rejected submission")
	ErrUnavailable = errors.New("leaderboard unavailable")
)
