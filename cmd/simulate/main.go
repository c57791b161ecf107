// Command simulate plays bot rounds against a running leaderboard service
// and checks the board it ends up with.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/coinrush/internal/game"
	"github.com/okian/coinrush/internal/simulate"
	"github.com/okian/coinrush/pkg/logger"
)

// Default configuration constants.
const (
	defaultRounds       = 20
	defaultRoundSeconds = 10
	defaultThink        = 100 * time.Millisecond
	defaultTimeout      = 5 * time.Second
	defaultRunTimeout   = 30 * time.Minute
)

func main() {
	var (
		baseURL = flag.String("url", "http://localhost:3001", "Base URL of the leaderboard service")
		rounds  = flag.Int("rounds", defaultRounds, "Rounds to play in total")
		workers = flag.Int("workers", runtime.NumCPU(), "Rounds played at the same time")
		seconds = flag.Int("seconds", defaultRoundSeconds, "Length of each round in seconds")
		think   = flag.Duration("think", defaultThink, "How often a bot picks a new direction")
		timeout = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		seed    = flag.Int64("seed", 0, "Random seed, 0 for time-based")
		logFile = flag.String("log", "", "Log file (default: simulate_TIMESTAMP.log)")
		verbose = flag.Bool("verbose", false, "Log every round")
		help    = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		simulate.ShowHelp()
		return
	}

	closeLog, err := simulate.SetupLogging(*logFile, *verbose)
	if err != nil {
		_, _ = os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = closeLog() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultRunTimeout)
	defer cancel()

	settings := game.DefaultSettings()
	settings.RoundSeconds = *seconds
	settings.SubmitTimeout = *timeout

	stats, err := simulate.Run(ctx, &simulate.Config{
		BaseURL:  *baseURL,
		Rounds:   *rounds,
		Workers:  *workers,
		Timeout:  *timeout,
		Think:    *think,
		Seed:     *seed,
		Verbose:  *verbose,
		Settings: settings,
	})
	if err != nil {
		logger.Get().Error(ctx, "simulation failed", logger.Error(err))
		if stats != nil {
			logger.Get().Info(ctx, "partial results",
				logger.Int("played", stats.RoundsPlayed),
				logger.Int("boardSize", stats.BoardSize),
			)
		}
		stop()
		cancel()
		os.Exit(1)
	}
}
