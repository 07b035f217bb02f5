package playback

import (
	"context"
	"sync"
	"time"
)

// Default rotation timing constants.
const (
	defaultRotationInterval = 10 * time.Second
)

// Enqueuer is where the rotation timer delivers its ticks.
type Enqueuer interface {
	Enqueue(ctx context.Context, e Event) bool
}

// RotationTimer enqueues TimerTick events at a fixed period while armed.
// Arm and Disarm are called from the machine's consumer goroutine; the tick
// goroutine only enqueues, so a tick that races a disarm is dropped by the
// machine as a stale tick.
type RotationTimer struct {
	interval time.Duration
	queue    Enqueuer

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewRotationTimer creates a disarmed rotation timer.
func NewRotationTimer(interval time.Duration, queue Enqueuer) *RotationTimer {
	if interval <= 0 {
		interval = defaultRotationInterval
	}
	return &RotationTimer{interval: interval, queue: queue}
}

// Arm starts the tick loop. Arming an armed timer is a no-op.
func (t *RotationTimer) Arm() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel

	go func() {
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				t.queue.Enqueue(ctx, TimerTick{})
			}
		}
	}()
}

// Disarm stops the tick loop. Disarming a disarmed timer is a no-op.
func (t *RotationTimer) Disarm() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancel == nil {
		return
	}
	t.cancel()
	t.cancel = nil
}

// Armed reports whether the timer is currently armed.
func (t *RotationTimer) Armed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancel != nil
}
