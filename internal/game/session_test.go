package game

import (
	"context"
	"errors"
	"math/rand"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/okian/coinrush/internal/domain/arena"
	"github.com/okian/coinrush/internal/domain/model"
	"github.com/okian/coinrush/internal/domain/round"
	. "github.com/smartystreets/goconvey/convey"
)

type recordingSubmitter struct {
	mu    sync.Mutex
	subs  []model.Submission
	err   error
	block bool
}

func (r *recordingSubmitter) Submit(ctx context.Context, sub model.Submission) (model.Board, error) {
	r.mu.Lock()
	r.subs = append(r.subs, sub)
	block, err := r.block, r.err
	r.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}
	return model.Board{{ID: sub.ID, Player: sub.Player, Score: sub.Score}}, nil
}

func (r *recordingSubmitter) calls() []model.Submission {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Submission(nil), r.subs...)
}

func counter() func() string {
	n := 0
	return func() string {
		n++
		return "id-" + strconv.Itoa(n)
	}
}

func manualSession(sub Submitter, mutate func(*Settings), opts ...Option) *Session {
	st := DefaultSettings()
	st.StartTop, st.StartLeft = 50, 50
	if mutate != nil {
		mutate(&st)
	}
	opts = append([]Option{
		WithSettings(st),
		WithManualTicks(),
		WithRand(rand.New(rand.NewSource(1))),
		WithIDGenerator(counter()),
	}, opts...)
	return New("Alex", sub, opts...)
}

func place(s *Session, coins, bananas []arena.Item, score int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.coins = coins
	s.bananas = bananas
	s.score = score
}

func waitDone(s *Session) bool {
	select {
	case <-s.Done():
		return true
	case <-time.After(3 * time.Second):
		return false
	}
}

func TestSessionCollisions(t *testing.T) {
	Convey("Given an active round with the avatar at (50,50)", t, func() {
		s := manualSession(&recordingSubmitter{}, nil)
		So(s.Start(context.Background()), ShouldBeNil)
		defer s.Stop()

		Convey("When a touching coin is evaluated", func() {
			place(s, []arena.Item{{ID: "c1", Position: arena.Position{Top: 51, Left: 50}, Size: 3}}, nil, 0)
			s.Tick(TickClock)

			Convey("Then it is collected once", func() {
				snap := s.Snapshot()
				So(snap.Score, ShouldEqual, 1)
				So(snap.Coins, ShouldBeEmpty)

				s.Tick(TickClock)
				So(s.Snapshot().Score, ShouldEqual, 1)
			})
		})

		Convey("When two coins touch at once", func() {
			place(s, []arena.Item{
				{ID: "c1", Position: arena.Position{Top: 51, Left: 50}, Size: 3},
				{ID: "c2", Position: arena.Position{Top: 50, Left: 49}, Size: 3},
				{ID: "c3", Position: arena.Position{Top: 10, Left: 10}, Size: 3},
			}, nil, 2)
			s.Tick(TickClock)

			Convey("Then each counts", func() {
				snap := s.Snapshot()
				So(snap.Score, ShouldEqual, 4)
				So(snap.Coins, ShouldHaveLength, 1)
				So(snap.Coins[0].ID, ShouldEqual, "c3")
			})
		})

		Convey("When a banana sits at distance 1 and the score is 5", func() {
			banana := arena.Item{ID: "b1", Position: arena.Position{Top: 51, Left: 50}, Size: 3}
			place(s, nil, []arena.Item{banana}, 5)
			s.Tick(TickClock)

			Convey("Then the score drops to zero and the banana stays", func() {
				snap := s.Snapshot()
				So(snap.Score, ShouldEqual, 0)
				So(snap.Bananas, ShouldHaveLength, 1)
			})

			Convey("Then it keeps resetting while overlapping", func() {
				place(s, []arena.Item{{ID: "c1", Position: arena.Position{Top: 49, Left: 50}, Size: 3}}, []arena.Item{banana}, 3)
				s.Tick(TickClock)
				snap := s.Snapshot()
				So(snap.Score, ShouldEqual, 0)
				So(snap.Coins, ShouldBeEmpty)
			})
		})

		Convey("When an item sits exactly one combined radius away", func() {
			place(s, []arena.Item{{ID: "c1", Position: arena.Position{Top: 53, Left: 50}, Size: 3}}, nil, 0)
			s.Tick(TickClock)
			So(s.Snapshot().Score, ShouldEqual, 0)
			So(s.Snapshot().Coins, ShouldHaveLength, 1)
		})
	})
}

func TestSessionMotion(t *testing.T) {
	Convey("Given an active round", t, func() {
		s := manualSession(nil, nil)
		So(s.Start(context.Background()), ShouldBeNil)
		defer s.Stop()

		Convey("Motion ticks without a held key do nothing", func() {
			before := s.Snapshot()
			s.Tick(TickMotion)
			after := s.Snapshot()
			So(after.Avatar, ShouldResemble, before.Avatar)
			So(after.Seq, ShouldEqual, before.Seq)
		})

		Convey("Held keys move one unit per tick and set the facing", func() {
			s.KeyDown(arena.KeyUp)
			s.Tick(TickMotion)
			So(s.Snapshot().Avatar.Top, ShouldEqual, 49)
			So(s.Snapshot().Facing, ShouldEqual, 0)
			So(s.Snapshot().Walking(), ShouldBeTrue)

			s.KeyDown(arena.KeyLeft)
			s.Tick(TickMotion)
			So(s.Snapshot().Avatar.Left, ShouldEqual, 49)
			So(s.Snapshot().Facing, ShouldEqual, 270)

			s.KeyDown(arena.KeyRight)
			s.Tick(TickMotion)
			So(s.Snapshot().Facing, ShouldEqual, 90)

			s.KeyDown(arena.KeyDown)
			s.Tick(TickMotion)
			So(s.Snapshot().Avatar.Top, ShouldEqual, 50)
			So(s.Snapshot().Facing, ShouldEqual, 180)

			s.KeyUp()
			s.Tick(TickMotion)
			So(s.Snapshot().Avatar.Top, ShouldEqual, 50)
			So(s.Snapshot().Held, ShouldEqual, arena.None)
		})

		Convey("Unknown keys are ignored", func() {
			s.KeyDown(arena.KeyUp)
			s.KeyDown("a")
			So(s.Snapshot().Held, ShouldEqual, arena.Up)
		})

		Convey("Movement is clamped to the arena", func() {
			s.KeyDown(arena.KeyUp)
			for i := 0; i < 80; i++ {
				s.Tick(TickMotion)
			}
			So(s.Snapshot().Avatar.Top, ShouldEqual, 0)
		})

		Convey("Moving onto a coin collects it in the same tick", func() {
			place(s, []arena.Item{{ID: "c1", Position: arena.Position{Top: 47, Left: 50}, Size: 3}}, nil, 0)
			s.KeyDown(arena.KeyUp)
			s.Tick(TickMotion)
			So(s.Snapshot().Score, ShouldEqual, 1)
		})

		Convey("Focus changes are recorded", func() {
			s.SetFocus(false)
			So(s.Snapshot().HasFocus, ShouldBeFalse)
			s.SetFocus(true)
			So(s.Snapshot().HasFocus, ShouldBeTrue)
		})
	})
}

func TestSessionSpawning(t *testing.T) {
	Convey("Given capacities of two coins and one banana", t, func() {
		s := manualSession(nil, func(st *Settings) {
			st.CoinCapacity = 2
			st.BananaCapacity = 1
			st.StartTop, st.StartLeft = 100, 100
		})
		So(s.Start(context.Background()), ShouldBeNil)
		defer s.Stop()

		for i := 0; i < 5; i++ {
			s.Tick(TickCoin)
			s.Tick(TickBanana)
		}

		snap := s.Snapshot()
		So(snap.Coins, ShouldHaveLength, 2)
		So(snap.Bananas, ShouldHaveLength, 1)
	})

	Convey("Given a session that has not started", t, func() {
		s := manualSession(nil, nil)
		s.Tick(TickCoin)
		s.KeyDown(arena.KeyUp)
		snap := s.Snapshot()
		So(snap.Coins, ShouldBeEmpty)
		So(snap.Held, ShouldEqual, arena.None)
		So(snap.Phase, ShouldEqual, round.NotStarted)
	})
}

func TestSessionRoundEnd(t *testing.T) {
	Convey("Given a two second round", t, func() {
		sub := &recordingSubmitter{}
		s := manualSession(sub, func(st *Settings) { st.RoundSeconds = 2 })
		So(s.Start(context.Background()), ShouldBeNil)
		defer s.Stop()

		place(s, []arena.Item{{ID: "c1", Position: arena.Position{Top: 47, Left: 50}, Size: 3}}, nil, 4)
		s.Tick(TickClock)
		s.Tick(TickClock)
		So(waitDone(s), ShouldBeTrue)

		Convey("Then exactly one submission carries the final score", func() {
			calls := sub.calls()
			So(calls, ShouldHaveLength, 1)
			So(calls[0].Score, ShouldEqual, 4)
			So(calls[0].Player, ShouldEqual, "Alex")
			So(calls[0].ID, ShouldEqual, s.Snapshot().RoundID)
		})

		Convey("Then the board is ready", func() {
			snap := s.Snapshot()
			So(snap.Phase, ShouldEqual, round.Ended)
			So(snap.Remaining, ShouldEqual, 0)
			So(snap.BoardStatus, ShouldEqual, BoardReady)
			So(snap.Board, ShouldHaveLength, 1)
		})

		Convey("Then nothing changes after the end", func() {
			before := s.Snapshot()
			s.KeyDown(arena.KeyUp)
			for i := 0; i < 5; i++ {
				s.Tick(TickMotion)
				s.Tick(TickClock)
				s.Tick(TickCoin)
			}
			after := s.Snapshot()
			So(after.Score, ShouldEqual, 4)
			So(after.Coins, ShouldHaveLength, 1)
			So(after.Avatar, ShouldResemble, before.Avatar)
			So(after.Seq, ShouldEqual, before.Seq)
			So(sub.calls(), ShouldHaveLength, 1)
		})
	})

	Convey("Given a leaderboard that fails", t, func() {
		sub := &recordingSubmitter{err: errors.New("connection refused")}
		s := manualSession(sub, func(st *Settings) { st.RoundSeconds = 1 })
		So(s.Start(context.Background()), ShouldBeNil)
		defer s.Stop()

		s.Tick(TickClock)
		So(waitDone(s), ShouldBeTrue)

		snap := s.Snapshot()
		So(snap.BoardStatus, ShouldEqual, BoardUnavailable)
		So(snap.Board, ShouldBeEmpty)
	})

	Convey("Given a leaderboard that never answers", t, func() {
		sub := &recordingSubmitter{block: true}
		s := manualSession(sub, func(st *Settings) {
			st.RoundSeconds = 1
			st.SubmitTimeout = 30 * time.Millisecond
		})
		So(s.Start(context.Background()), ShouldBeNil)
		defer s.Stop()

		s.Tick(TickClock)
		So(waitDone(s), ShouldBeTrue)
		So(s.Snapshot().BoardStatus, ShouldEqual, BoardUnavailable)
	})

	Convey("Given a round with no time", t, func() {
		sub := &recordingSubmitter{}
		s := manualSession(sub, func(st *Settings) { st.RoundSeconds = 0 })
		So(s.Start(context.Background()), ShouldBeNil)
		defer s.Stop()

		So(waitDone(s), ShouldBeTrue)
		So(s.Snapshot().Phase, ShouldEqual, round.Ended)
		So(sub.calls(), ShouldHaveLength, 1)
		So(sub.calls()[0].Score, ShouldEqual, 0)
	})

	Convey("Given no submitter", t, func() {
		s := manualSession(nil, func(st *Settings) { st.RoundSeconds = 1 })
		So(s.Start(context.Background()), ShouldBeNil)
		s.Tick(TickClock)
		So(waitDone(s), ShouldBeTrue)
		So(s.Snapshot().BoardStatus, ShouldEqual, BoardUnavailable)
	})
}

func TestSessionLifecycle(t *testing.T) {
	Convey("Given a session", t, func() {
		var (
			mu   sync.Mutex
			seqs []uint64
		)
		s := manualSession(nil, nil, WithObserver(func(snap Snapshot) {
			mu.Lock()
			seqs = append(seqs, snap.Seq)
			mu.Unlock()
		}))

		Convey("Starting twice fails", func() {
			So(s.Start(context.Background()), ShouldBeNil)
			So(errors.Is(s.Start(context.Background()), ErrAlreadyStarted), ShouldBeTrue)
			s.Stop()
		})

		Convey("The observer sees increasing sequence numbers", func() {
			So(s.Start(context.Background()), ShouldBeNil)
			s.KeyDown(arena.KeyUp)
			s.Tick(TickMotion)
			s.Tick(TickClock)
			s.KeyUp()
			s.Stop()

			mu.Lock()
			defer mu.Unlock()
			So(len(seqs), ShouldEqual, 5)
			for i := 1; i < len(seqs); i++ {
				So(seqs[i], ShouldBeGreaterThan, seqs[i-1])
			}
		})

		Convey("Stopping while a key is held publishes the release", func() {
			var last Snapshot
			obs := manualSession(nil, nil, WithObserver(func(snap Snapshot) {
				mu.Lock()
				last = snap
				mu.Unlock()
			}))
			So(obs.Start(context.Background()), ShouldBeNil)
			obs.KeyDown(arena.KeyLeft)
			obs.Stop()
			obs.Stop()

			mu.Lock()
			defer mu.Unlock()
			So(last.Held, ShouldEqual, arena.None)
			So(last.Walking(), ShouldBeFalse)
			So(last.Seq, ShouldEqual, obs.Snapshot().Seq)
		})

		Convey("Stop is idempotent and settles the session", func() {
			So(s.Start(context.Background()), ShouldBeNil)
			s.Stop()
			s.Stop()
			So(waitDone(s), ShouldBeTrue)

			before := s.Snapshot()
			s.Tick(TickClock)
			So(s.Snapshot().Remaining, ShouldEqual, before.Remaining)
			So(errors.Is(s.Start(context.Background()), ErrStopped), ShouldBeTrue)
		})

		Convey("Cancelling the start context stops the session", func() {
			ctx, cancel := context.WithCancel(context.Background())
			So(s.Start(ctx), ShouldBeNil)
			cancel()
			So(waitDone(s), ShouldBeTrue)
			s.Wait()
		})
	})
}

func TestSessionTimers(t *testing.T) {
	Convey("Given a one second round on real timers", t, func() {
		sub := &recordingSubmitter{}
		st := DefaultSettings()
		st.RoundSeconds = 1
		st.CoinInterval = 10 * time.Millisecond
		st.CoinCapacity = 3
		st.BananaInterval = 10 * time.Millisecond
		st.BananaCapacity = 2
		st.MoveInterval = 5 * time.Millisecond
		st.StartTop, st.StartLeft = 0, 0
		s := New("Bot", sub, WithSettings(st), WithRand(rand.New(rand.NewSource(9))))

		So(s.Start(context.Background()), ShouldBeNil)
		s.KeyDown(arena.KeyRight)

		So(waitDone(s), ShouldBeTrue)
		s.Stop()

		finished := make(chan struct{})
		go func() {
			s.Wait()
			close(finished)
		}()

		Convey("Then the round ends once and every goroutine exits", func() {
			exited := false
			select {
			case <-finished:
				exited = true
			case <-time.After(3 * time.Second):
			}
			So(exited, ShouldBeTrue)
			snap := s.Snapshot()
			So(snap.Phase, ShouldEqual, round.Ended)
			So(len(snap.Coins), ShouldBeLessThanOrEqualTo, 3)
			So(snap.Bananas, ShouldHaveLength, 2)
			So(snap.Avatar.Left, ShouldBeGreaterThan, 0)
			So(sub.calls(), ShouldHaveLength, 1)
		})
	})
}

func TestSessionMotionTimer(t *testing.T) {
	Convey("Given a long round on real timers with a fast move interval", t, func() {
		st := DefaultSettings()
		st.RoundSeconds = 30
		st.MoveInterval = 2 * time.Millisecond
		st.StartTop, st.StartLeft = 50, 50
		s := New("Bot", nil, WithSettings(st), WithRand(rand.New(rand.NewSource(3))))
		So(s.Start(context.Background()), ShouldBeNil)
		defer func() {
			s.Stop()
			s.Wait()
		}()

		motionTimer := func() (running bool, total int) {
			s.mu.Lock()
			defer s.mu.Unlock()
			_, running = s.timers[TickMotion]
			return running, len(s.timers)
		}

		Convey("Then no motion timer runs before a key is pressed", func() {
			running, total := motionTimer()
			So(running, ShouldBeFalse)
			So(total, ShouldEqual, 3)
		})

		Convey("When a key is held and then released", func() {
			s.KeyDown(arena.KeyRight)
			running, _ := motionTimer()
			So(running, ShouldBeTrue)

			time.Sleep(30 * time.Millisecond)
			s.KeyUp()
			released := s.Snapshot()

			Convey("Then the avatar moved while held and stays put afterwards", func() {
				So(released.Avatar.Left, ShouldBeGreaterThan, 50)
				time.Sleep(50 * time.Millisecond)
				So(s.Snapshot().Avatar.Left, ShouldEqual, released.Avatar.Left)
				So(s.Snapshot().Held, ShouldEqual, arena.None)
			})

			Convey("Then the motion timer is gone and the others keep running", func() {
				running, total := motionTimer()
				So(running, ShouldBeFalse)
				So(total, ShouldEqual, 3)
			})
		})

		Convey("When the session is stopped", func() {
			s.Stop()
			before := s.Snapshot()
			time.Sleep(1100 * time.Millisecond)

			Convey("Then nothing changes afterwards", func() {
				after := s.Snapshot()
				So(after.Seq, ShouldEqual, before.Seq)
				So(after.Remaining, ShouldEqual, before.Remaining)
				running, total := motionTimer()
				So(running, ShouldBeFalse)
				So(total, ShouldEqual, 0)
			})
		})
	})
}
