package playback

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/mrdon/kioskd/internal/domain/model"
	"github.com/mrdon/kioskd/internal/domain/sched"
	"github.com/mrdon/kioskd/pkg/logger"
)

func init() {
	logger.Init()
}

type fakeTimer struct {
	armed   bool
	arms    int
	disarms int
}

func (t *fakeTimer) Arm() {
	t.armed = true
	t.arms++
}

func (t *fakeTimer) Disarm() {
	t.armed = false
	t.disarms++
}

type fakeSink struct {
	displayed  []int
	lastSlide  model.Slide
	paused     bool
	population []model.Slide
}

func (s *fakeSink) Display(_ context.Context, index int, slide model.Slide) {
	s.displayed = append(s.displayed, index)
	s.lastSlide = slide
}

func (s *fakeSink) Paused(_ context.Context, paused bool) {
	s.paused = paused
}

func (s *fakeSink) PopulationChanged(_ context.Context, population []model.Slide) {
	s.population = population
}

type fakeQueue struct{ ch chan Event }

func (q *fakeQueue) Dequeue(_ context.Context) <-chan Event { return q.ch }

func testPopulation(titles ...string) []model.Slide {
	out := make([]model.Slide, len(titles))
	for i, title := range titles {
		out[i] = model.Slide{
			Kind:   model.KindFact,
			Key:    "fact:" + title,
			Title:  title,
			Weight: 1,
		}
	}
	return out
}

func newTestMachine(population []model.Slide, opts ...Option) (*Machine, *fakeTimer, *fakeSink) {
	timer := &fakeTimer{}
	sink := &fakeSink{}
	base := []Option{WithSelector(sched.NewSelector(sched.WithSeed(42)))}
	m := New(population, timer, sink, &fakeQueue{ch: make(chan Event)}, append(base, opts...)...)
	return m, timer, sink
}

func TestInit(t *testing.T) {
	ctx := context.Background()

	Convey("Given a machine over a population", t, func() {
		pop := testPopulation("Founded 1778", "Bittersweet Cafe", "Riverfront")

		Convey("Init without a token starts auto rotation at slide 0", func() {
			m, timer, sink := newTestMachine(pop)

			So(m.Apply(ctx, Init{}), ShouldBeNil)

			So(m.State(), ShouldEqual, StateAutoRotate)
			So(m.Session().Index, ShouldEqual, 0)
			So(timer.armed, ShouldBeTrue)
			So(sink.displayed, ShouldResemble, []int{0})
			So(sink.paused, ShouldBeFalse)
			So(sink.population, ShouldHaveLength, 3)
		})

		Convey("Init with a matching token locks on that slide", func() {
			m, timer, sink := newTestMachine(pop)

			So(m.Apply(ctx, Init{Token: "bittersweet-cafe"}), ShouldBeNil)

			So(m.State(), ShouldEqual, StateHashLocked)
			So(m.Session().Index, ShouldEqual, 1)
			So(m.Session().Locked, ShouldBeTrue)
			So(timer.armed, ShouldBeFalse)
			So(sink.displayed, ShouldResemble, []int{1})
			So(sink.paused, ShouldBeTrue)
		})

		Convey("Init with a stale token locks on slide 0", func() {
			m, _, sink := newTestMachine(pop)

			So(m.Apply(ctx, Init{Token: "does-not-exist"}), ShouldBeNil)

			So(m.State(), ShouldEqual, StateHashLocked)
			So(sink.displayed, ShouldResemble, []int{0})
		})

		Convey("Init over an empty population fails", func() {
			m, _, _ := newTestMachine(nil)

			So(m.Apply(ctx, Init{}), ShouldEqual, sched.ErrEmptyPopulation)
		})
	})
}

func TestTimerTick(t *testing.T) {
	ctx := context.Background()

	Convey("Given a machine in auto rotation", t, func() {
		pop := testPopulation("a", "b", "c")
		m, _, sink := newTestMachine(pop)
		So(m.Apply(ctx, Init{}), ShouldBeNil)

		Convey("a tick advances to a scheduled slide and pushes history", func() {
			So(m.Apply(ctx, TimerTick{}), ShouldBeNil)

			So(sink.displayed, ShouldHaveLength, 2)
			So(m.Session().History, ShouldResemble, []int{0})
		})

		Convey("a tick after pausing is ignored", func() {
			m.Apply(ctx, TogglePause{})
			shown := len(sink.displayed)

			So(m.Apply(ctx, TimerTick{}), ShouldBeNil)

			So(sink.displayed, ShouldHaveLength, shown)
		})

		Convey("a tick while locked is ignored", func() {
			m.Apply(ctx, TokenSet{Token: "b"})
			shown := len(sink.displayed)

			So(m.Apply(ctx, TimerTick{}), ShouldBeNil)

			So(sink.displayed, ShouldHaveLength, shown)
		})

		Convey("sustained rotation eventually resets the recency ledger", func() {
			for i := 0; i < 3*len(pop)+1; i++ {
				So(m.Apply(ctx, TimerTick{}), ShouldBeNil)
			}

			So(m.ledger.Total(), ShouldBeLessThan, 3*len(pop))
		})
	})
}

func TestTogglePause(t *testing.T) {
	ctx := context.Background()

	Convey("Given a machine in auto rotation", t, func() {
		m, timer, sink := newTestMachine(testPopulation("a", "b"))
		So(m.Apply(ctx, Init{}), ShouldBeNil)
		shown := len(sink.displayed)

		Convey("toggling pauses rotation without redisplaying", func() {
			So(m.Apply(ctx, TogglePause{}), ShouldBeNil)

			So(m.State(), ShouldEqual, StateManualPause)
			So(timer.armed, ShouldBeFalse)
			So(sink.paused, ShouldBeTrue)
			So(sink.displayed, ShouldHaveLength, shown)

			Convey("toggling again resumes rotation", func() {
				So(m.Apply(ctx, TogglePause{}), ShouldBeNil)

				So(m.State(), ShouldEqual, StateAutoRotate)
				So(timer.armed, ShouldBeTrue)
				So(sink.paused, ShouldBeFalse)
			})
		})

		Convey("toggling while locked is a no-op", func() {
			m.Apply(ctx, TokenSet{Token: "a"})

			So(m.Apply(ctx, TogglePause{}), ShouldBeNil)

			So(m.State(), ShouldEqual, StateHashLocked)
		})
	})
}

func TestManualNavigation(t *testing.T) {
	ctx := context.Background()

	Convey("Given a machine in auto rotation", t, func() {
		m, timer, sink := newTestMachine(testPopulation("a", "b", "c"))
		So(m.Apply(ctx, Init{}), ShouldBeNil)

		Convey("ManualNext pauses and advances", func() {
			So(m.Apply(ctx, ManualNext{}), ShouldBeNil)

			So(m.State(), ShouldEqual, StateManualPause)
			So(timer.armed, ShouldBeFalse)
			So(m.Session().History, ShouldResemble, []int{0})
			So(sink.displayed, ShouldHaveLength, 2)
		})

		Convey("ManualPrevious revisits the prior slide without touching the ledger", func() {
			So(m.Apply(ctx, ManualNext{}), ShouldBeNil)
			total := m.ledger.Total()

			m.Apply(ctx, ManualPrevious{})

			So(m.Session().Index, ShouldEqual, 0)
			So(m.Session().History, ShouldBeEmpty)
			So(m.ledger.Total(), ShouldEqual, total)
		})

		Convey("ManualPrevious with empty history pauses but shows nothing new", func() {
			shown := len(sink.displayed)

			m.Apply(ctx, ManualPrevious{})

			So(m.State(), ShouldEqual, StateManualPause)
			So(timer.armed, ShouldBeFalse)
			So(sink.paused, ShouldBeTrue)
			So(m.Session().Paused, ShouldBeTrue)
			So(sink.displayed, ShouldHaveLength, shown)
		})

		Convey("history is bounded to the configured limit", func() {
			var visited []int
			for i := 0; i < 12; i++ {
				visited = append(visited, m.Session().Index)
				So(m.Apply(ctx, ManualNext{}), ShouldBeNil)
			}

			// The ten most recently visited indices survive; the two
			// oldest were evicted from the front.
			So(m.Session().History, ShouldHaveLength, 10)
			So(m.Session().History, ShouldResemble, visited[2:])
		})

		Convey("manual navigation while locked is a no-op", func() {
			m.Apply(ctx, TokenSet{Token: "b"})
			shown := len(sink.displayed)

			So(m.Apply(ctx, ManualNext{}), ShouldBeNil)
			m.Apply(ctx, ManualPrevious{})

			So(m.Session().Index, ShouldEqual, 1)
			So(sink.displayed, ShouldHaveLength, shown)
		})
	})

	Convey("Given a small history limit", t, func() {
		m, _, _ := newTestMachine(testPopulation("a", "b", "c"), WithHistoryLimit(2))
		So(m.Apply(ctx, Init{}), ShouldBeNil)

		Convey("the oldest entries are evicted first", func() {
			for i := 0; i < 5; i++ {
				So(m.Apply(ctx, ManualNext{}), ShouldBeNil)
			}

			So(m.Session().History, ShouldHaveLength, 2)
		})
	})
}

func TestNavigationToken(t *testing.T) {
	ctx := context.Background()

	Convey("Given a machine in auto rotation", t, func() {
		m, timer, sink := newTestMachine(testPopulation("a", "b", "c"))
		So(m.Apply(ctx, Init{}), ShouldBeNil)

		Convey("TokenSet locks the display on the matching slide", func() {
			m.Apply(ctx, TokenSet{Token: "c"})

			So(m.State(), ShouldEqual, StateHashLocked)
			So(m.Session().Index, ShouldEqual, 2)
			So(timer.armed, ShouldBeFalse)
			So(sink.paused, ShouldBeTrue)

			Convey("TokenCleared resumes auto rotation on the same slide", func() {
				shown := len(sink.displayed)

				m.Apply(ctx, TokenCleared{})

				So(m.State(), ShouldEqual, StateAutoRotate)
				So(m.Session().Index, ShouldEqual, 2)
				So(timer.armed, ShouldBeTrue)
				So(sink.paused, ShouldBeFalse)
				So(sink.displayed, ShouldHaveLength, shown)
			})
		})

		Convey("TokenSet from manual pause also locks", func() {
			m.Apply(ctx, TogglePause{})

			m.Apply(ctx, TokenSet{Token: "b"})

			So(m.State(), ShouldEqual, StateHashLocked)
			So(m.Session().Index, ShouldEqual, 1)
		})

		Convey("TokenCleared outside the locked state is a no-op", func() {
			m.Apply(ctx, TogglePause{})

			m.Apply(ctx, TokenCleared{})

			So(m.State(), ShouldEqual, StateManualPause)
		})
	})
}

func TestRefreshCompleted(t *testing.T) {
	ctx := context.Background()

	Convey("Given a machine mid-rotation", t, func() {
		m, _, sink := newTestMachine(testPopulation("a", "b", "c"))
		So(m.Apply(ctx, Init{}), ShouldBeNil)
		So(m.Apply(ctx, TimerTick{}), ShouldBeNil)
		So(m.Apply(ctx, TimerTick{}), ShouldBeNil)

		Convey("a refresh swaps the population and resets playback", func() {
			next := testPopulation("x", "y")

			m.Apply(ctx, RefreshCompleted{Population: next})

			So(m.Session().Index, ShouldEqual, 0)
			So(m.Session().History, ShouldBeEmpty)
			So(m.ledger.Total(), ShouldEqual, 0)
			So(sink.population, ShouldHaveLength, 2)
			So(sink.lastSlide.Title, ShouldEqual, "x")
		})

		Convey("a refresh while locked re-resolves the token", func() {
			m.Apply(ctx, TokenSet{Token: "b"})

			Convey("the locked slide survives the refresh", func() {
				m.Apply(ctx, RefreshCompleted{Population: testPopulation("z", "b")})

				So(m.State(), ShouldEqual, StateHashLocked)
				So(m.Session().Index, ShouldEqual, 1)
			})

			Convey("a vanished slide falls back to index 0", func() {
				m.Apply(ctx, RefreshCompleted{Population: testPopulation("x", "y")})

				So(m.State(), ShouldEqual, StateHashLocked)
				So(m.Session().Index, ShouldEqual, 0)
			})
		})
	})
}

func TestRunAndShutdown(t *testing.T) {
	Convey("Given a running machine", t, func() {
		pop := testPopulation("a", "b")
		timer := &fakeTimer{}
		sink := &fakeSink{}
		queue := &fakeQueue{ch: make(chan Event, 8)}
		m := New(pop, timer, sink, queue, WithSelector(sched.NewSelector(sched.WithSeed(1))))

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go m.Run(ctx)

		queue.ch <- Init{}
		queue.ch <- TogglePause{}

		Convey("Shutdown stops the consumer loop", func() {
			So(m.Shutdown(context.Background()), ShouldBeNil)
		})
	})
}
