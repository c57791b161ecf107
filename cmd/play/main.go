// Command play runs one Coin Rush round in the terminal and posts the final
// score to the leaderboard service.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/okian/coinrush/internal/adapters/http/client"
	"github.com/okian/coinrush/internal/config"
	"github.com/okian/coinrush/internal/game"
	"github.com/okian/coinrush/pkg/logger"
)

const logFilePermission = 0o600

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "play:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadClient(ctx)
	if err != nil {
		return err
	}

	// The terminal belongs to the screen, so logs go to a file.
	logFile, err := os.OpenFile("coinrush-play.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = logFile.Close() }()
	if err := logger.Init(logger.WithWriter(logFile)); err != nil {
		return err
	}
	_ = logger.SetLevelString(cfg.LogLevel)
	log := logger.Named("play")

	lb, err := client.New(cfg.LeaderboardURL, client.WithTimeout(cfg.SubmitTimeout()))
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()
	screen.EnableFocus()
	screen.HideCursor()

	player := cfg.Player
	if player == "" {
		player = game.RandomPlayerName(nil)
	}

	sess := game.New(player, lb,
		game.WithSettings(cfg.GameSettings()),
		game.WithLogger(log),
		game.WithObserver(func(s game.Snapshot) {
			_ = screen.PostEvent(tcell.NewEventInterrupt(s))
		}),
	)
	if err := sess.Start(ctx); err != nil {
		return err
	}
	defer func() {
		sess.Stop()
		sess.Wait()
	}()

	go func() {
		<-ctx.Done()
		_ = screen.PostEvent(tcell.NewEventInterrupt(nil))
	}()

	view := &view{screen: screen}
	view.draw(sess.Snapshot())
	for {
		if ctx.Err() != nil {
			return nil
		}
		switch ev := screen.PollEvent().(type) {
		case nil:
			return nil
		case *tcell.EventResize:
			screen.Sync()
			view.draw(sess.Snapshot())
		case *tcell.EventFocus:
			sess.SetFocus(ev.Focused)
		case *tcell.EventKey:
			if quit := handleKey(sess, ev.Key(), ev.Rune()); quit {
				return nil
			}
		case *tcell.EventInterrupt:
			if snap, ok := ev.Data().(game.Snapshot); ok {
				view.draw(snap)
			}
		}
	}
}

// keySink is the part of a session driven by the keyboard.
type keySink interface {
	KeyDown(key string)
	KeyUp()
}

// handleKey maps terminal keys onto the session. Terminals report no key
// release, so space stands in for letting go of the held arrow.
func handleKey(s keySink, key tcell.Key, r rune) (quit bool) {
	switch key {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyUp:
		s.KeyDown("ArrowUp")
	case tcell.KeyDown:
		s.KeyDown("ArrowDown")
	case tcell.KeyLeft:
		s.KeyDown("ArrowLeft")
	case tcell.KeyRight:
		s.KeyDown("ArrowRight")
	case tcell.KeyRune:
		switch r {
		case 'q', 'Q':
			return true
		case ' ':
			s.KeyUp()
		}
	}
	return false
}
