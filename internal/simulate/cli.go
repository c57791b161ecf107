package simulate

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/coinrush/pkg/logger"
)

const logFilePermission = 0o600

// SetupLogging logs to stdout and to logFile. An empty logFile gets a
// timestamped name. The returned func closes the file.
func SetupLogging(logFile string, verbose bool) (func() error, error) {
	if logFile == "" {
		logFile = "simulate_" + time.Now().Format("20060102_150405") + ".log"
	}
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}
	if err := logger.Init(logger.WithWriter(io.MultiWriter(os.Stdout, file))); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	return file.Close, nil
}

// ShowHelp prints usage information for the simulator.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`Coin Rush Bot Simulator
=======================

Plays headless rounds with bots and submits every score to a running
leaderboard service, then checks the board it gets back.

Usage:
  go run ./cmd/simulate [options]

Options:
  -url string
        Base URL of the leaderboard service (default "http://localhost:3001")
  -rounds int
        Rounds to play in total (default 20)
  -workers int
        Rounds played at the same time (default CPU cores)
  -seconds int
        Length of each round in seconds (default 10)
  -think duration
        How often a bot picks a new direction (default 100ms)
  -timeout duration
        HTTP request timeout (default 5s)
  -seed int
        Random seed, 0 for time-based (default 0)
  -log string
        Log file (default: simulate_TIMESTAMP.log)
  -verbose
        Log every round
  -help
        Show this help message

Examples:
  go run ./cmd/simulate -rounds 100 -workers 16 -seconds 5
`)
}
