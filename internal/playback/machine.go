package playback

import (
	"context"
	"errors"
	"fmt"

	"github.com/mrdon/kioskd/internal/domain/deeplink"
	"github.com/mrdon/kioskd/internal/domain/model"
	"github.com/mrdon/kioskd/internal/domain/sched"
	"github.com/mrdon/kioskd/pkg/logger"
	"github.com/mrdon/kioskd/pkg/metrics"
)

// Default machine configuration constants.
const (
	defaultHistoryLimit = 10
)

// State is the playback state machine's current mode.
type State string

// Playback states.
const (
	StateAutoRotate  State = "auto_rotate"  // rotation timer armed
	StateManualPause State = "manual_pause" // timer disarmed by operator
	StateHashLocked  State = "hash_locked"  // timer disarmed by a navigation token
)

// Session is the mutable playback state. It is owned exclusively by the
// Machine and mutated only inside Apply.
type Session struct {
	Index   int
	History []int
	Paused  bool
	Locked  bool
}

// Timer arms and disarms the rotation timer. The real implementation
// enqueues TimerTick events while armed; tests substitute a fake.
type Timer interface {
	Arm()
	Disarm()
}

// Sink receives display output: the currently selected slide, the paused
// indicator, and population replacements.
type Sink interface {
	Display(ctx context.Context, index int, slide model.Slide)
	Paused(ctx context.Context, paused bool)
	PopulationChanged(ctx context.Context, population []model.Slide)
}

// Queue defines how the machine receives events.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Event
}

// Machine applies playback transitions. All methods except Run and Shutdown
// must be called from the consumer goroutine only.
type Machine struct {
	population []model.Slide
	ledger     *sched.Ledger
	selector   *sched.Selector
	session    Session
	state      State
	token      string

	timer Timer
	sink  Sink
	queue Queue

	historyLimit int

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	// Logging
	logger logger.Logger
}

// New constructs a machine over the initial population.
func New(population []model.Slide, timer Timer, sink Sink, queue Queue, opts ...Option) *Machine {
	m := &Machine{
		population:   population,
		ledger:       sched.NewLedger(),
		selector:     sched.NewSelector(),
		state:        StateAutoRotate,
		timer:        timer,
		sink:         sink,
		queue:        queue,
		historyLimit: defaultHistoryLimit,
		shutdown:     make(chan struct{}),
		done:         make(chan struct{}),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.logger == nil {
		m.logger = logger.Get().Named("playback")
	}

	return m
}

// State returns the machine's current mode. Consumer goroutine only.
func (m *Machine) State() State { return m.state }

// Session returns a copy of the playback session. Consumer goroutine only.
func (m *Machine) Session() Session {
	s := m.session
	s.History = append([]int(nil), m.session.History...)
	return s
}

// Run consumes events until ctx is canceled or the queue closes.
func (m *Machine) Run(ctx context.Context) {
	defer close(m.done)

	events := m.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.shutdown:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := m.Apply(ctx, ev); err != nil {
				if errors.Is(err, sched.ErrEmptyPopulation) {
					// Unreachable given normalizer filtering; abort loudly
					// rather than displaying nothing.
					m.logger.Fatal(ctx, "playback invariant violated", logger.Error(err))
				}
				m.logger.Error(ctx, "transition failed",
					logger.String("event", ev.name()),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown gracefully stops the consumer loop.
func (m *Machine) Shutdown(ctx context.Context) error {
	close(m.shutdown)

	select {
	case <-m.done:
		return nil
	case <-ctx.Done():
		m.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Apply performs one atomic state transition.
func (m *Machine) Apply(ctx context.Context, ev Event) error {
	m.logger.Debug(ctx, "applying event",
		logger.String("event", ev.name()),
		logger.String("state", string(m.state)),
	)

	switch e := ev.(type) {
	case Init:
		return m.applyInit(ctx, e)
	case TimerTick:
		return m.applyTick(ctx)
	case TogglePause:
		m.applyTogglePause(ctx)
	case ManualNext:
		return m.applyManualNext(ctx)
	case ManualPrevious:
		m.applyManualPrevious(ctx)
	case TokenSet:
		m.applyTokenSet(ctx, e.Token)
	case TokenCleared:
		m.applyTokenCleared(ctx)
	case RefreshCompleted:
		m.applyRefresh(ctx, e.Population)
	default:
		return fmt.Errorf("unknown playback event %T", ev)
	}
	return nil
}

func (m *Machine) applyInit(ctx context.Context, e Init) error {
	if len(m.population) == 0 {
		return sched.ErrEmptyPopulation
	}

	m.sink.PopulationChanged(ctx, m.population)

	if e.Token != "" {
		m.token = e.Token
		m.state = StateHashLocked
		m.session.Locked = true
		m.session.Index = m.resolveToken(ctx)
		m.timer.Disarm()
	} else {
		m.state = StateAutoRotate
		m.session.Index = 0
		m.timer.Arm()
	}
	m.display(ctx)
	return nil
}

func (m *Machine) applyTick(ctx context.Context) error {
	if m.state != StateAutoRotate {
		// Stale tick raced a disarm; the single consumer makes this benign.
		return nil
	}

	m.pushHistory(m.session.Index)
	next, err := m.selector.Pick(m.population, m.ledger)
	if err != nil {
		return err
	}
	m.session.Index = next
	m.ledger.MaybeReset(len(m.population))
	m.display(ctx)
	return nil
}

func (m *Machine) applyTogglePause(ctx context.Context) {
	switch m.state {
	case StateAutoRotate:
		m.timer.Disarm()
		m.state = StateManualPause
		metrics.RecordManualCommand("toggle_pause")
		m.publishPaused(ctx)
	case StateManualPause:
		m.timer.Arm()
		m.state = StateAutoRotate
		metrics.RecordManualCommand("toggle_pause")
		m.publishPaused(ctx)
	case StateHashLocked:
		// No-op while a navigation token is active.
	}
}

func (m *Machine) applyManualNext(ctx context.Context) error {
	if m.state == StateHashLocked {
		return nil
	}
	if m.state == StateAutoRotate {
		m.timer.Disarm()
		m.state = StateManualPause
	}

	metrics.RecordManualCommand("next")
	m.pushHistory(m.session.Index)
	next, err := m.selector.Pick(m.population, m.ledger)
	if err != nil {
		return err
	}
	m.session.Index = next
	m.display(ctx)
	return nil
}

func (m *Machine) applyManualPrevious(ctx context.Context) {
	if m.state == StateHashLocked {
		return
	}
	if m.state == StateAutoRotate {
		m.timer.Disarm()
		m.state = StateManualPause
	}

	metrics.RecordManualCommand("previous")
	if len(m.session.History) == 0 {
		// Nothing to revisit, but the state change above still stops
		// rotation, so the pause indicator must be published.
		m.publishPaused(ctx)
		return
	}
	last := len(m.session.History) - 1
	m.session.Index = m.session.History[last]
	m.session.History = m.session.History[:last]
	// No scheduler call and no ledger mutation on the way back.
	m.display(ctx)
}

func (m *Machine) applyTokenSet(ctx context.Context, token string) {
	m.timer.Disarm()
	m.token = token
	m.state = StateHashLocked
	m.session.Locked = true
	m.session.Index = m.resolveToken(ctx)
	m.display(ctx)
}

func (m *Machine) applyTokenCleared(ctx context.Context) {
	if m.state != StateHashLocked {
		return
	}
	m.token = ""
	m.session.Locked = false
	m.state = StateAutoRotate
	m.timer.Arm()
	m.publishPaused(ctx)
}

func (m *Machine) applyRefresh(ctx context.Context, population []model.Slide) {
	m.population = population
	m.ledger.Reset()
	m.session.History = nil
	m.session.Index = 0
	if m.state == StateHashLocked {
		// Keep the lock; the token re-resolves against the new population
		// and falls back to slide 0 when its slide is gone.
		m.session.Index = m.resolveToken(ctx)
	}
	m.sink.PopulationChanged(ctx, population)
	m.display(ctx)
}

// resolveToken maps the active token to an index, with fallback to 0.
func (m *Machine) resolveToken(ctx context.Context) int {
	if deeplink.Matches(m.token, m.population) {
		metrics.RecordDeeplinkResolve()
	} else {
		metrics.RecordDeeplinkMiss()
		m.logger.Info(ctx, "navigation token did not match a slide",
			logger.String("token", m.token),
		)
	}
	return deeplink.Resolve(m.token, m.population)
}

// pushHistory appends an index, evicting the oldest entry past the limit.
func (m *Machine) pushHistory(index int) {
	m.session.History = append(m.session.History, index)
	if len(m.session.History) > m.historyLimit {
		m.session.History = m.session.History[1:]
	}
}

// publishPaused mirrors the paused flag to the sink without re-displaying.
func (m *Machine) publishPaused(ctx context.Context) {
	m.session.Paused = m.state != StateAutoRotate
	m.sink.Paused(ctx, m.session.Paused)
	metrics.UpdatePaused(m.session.Paused)
}

// display publishes the current slide and the paused indicator.
func (m *Machine) display(ctx context.Context) {
	m.session.Paused = m.state != StateAutoRotate

	if m.session.Index < 0 || m.session.Index >= len(m.population) {
		m.logger.Error(ctx, "display index out of range",
			logger.Int("index", m.session.Index),
			logger.Int("population", len(m.population)),
		)
		return
	}

	slide := m.population[m.session.Index]
	m.sink.Display(ctx, m.session.Index, slide)
	m.sink.Paused(ctx, m.session.Paused)
	metrics.RecordSlideShown(string(slide.Kind))
	metrics.UpdatePaused(m.session.Paused)
}
