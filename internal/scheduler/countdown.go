package scheduler

import (
	"sync"
	"time"

	"github.com/MrSnakeDoc/contesthub/internal/domain"
)

// DefaultCountdownInterval is the tick period of a countdown.
const DefaultCountdownInterval = time.Second

// CountdownOptions tune a Countdown. Zero values are valid.
type CountdownOptions struct {
	Interval time.Duration
	Now      func() time.Time
}

// Countdown ticks toward a target time on its own goroutine.
//
// onTick receives the remaining time on start and on every interval while the
// target lies ahead. Once it is reached onComplete fires exactly once and the
// task ends. A stopped countdown never fires again; to retarget, stop it and
// start a new one.
type Countdown struct {
	target     time.Time
	interval   time.Duration
	now        func() time.Time
	onTick     func(domain.Remaining)
	onComplete func()

	stopCh   chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// StartCountdown starts a countdown to target. Either callback may be nil.
func StartCountdown(target time.Time, onTick func(domain.Remaining), onComplete func(), opts CountdownOptions) *Countdown {
	if opts.Interval <= 0 {
		opts.Interval = DefaultCountdownInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if onTick == nil {
		onTick = func(domain.Remaining) {}
	}
	if onComplete == nil {
		onComplete = func() {}
	}

	c := &Countdown{
		target:     target,
		interval:   opts.Interval,
		now:        opts.Now,
		onTick:     onTick,
		onComplete: onComplete,
		stopCh:     make(chan struct{}),
		done:       make(chan struct{}),
	}
	go c.run()
	return c
}

func (c *Countdown) run() {
	defer close(c.done)

	if c.step() {
		return
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			if c.step() {
				return
			}
		}
	}
}

// step samples the clock and fires one callback. It reports whether the
// countdown is over.
func (c *Countdown) step() bool {
	// Stop wins over a tick that became ready at the same time.
	select {
	case <-c.stopCh:
		return true
	default:
	}

	r := domain.TimeRemaining(c.target, c.now())
	if r.Done() {
		c.onComplete()
		return true
	}
	c.onTick(r)
	return false
}

// Stop cancels the countdown and waits until no callback can run anymore.
// It is idempotent. Callbacks must not call Stop.
func (c *Countdown) Stop() {
	c.stopOnce.Do(func() { close(c.stopCh) })
	<-c.done
}

// Done is closed once the countdown has completed or been stopped.
func (c *Countdown) Done() <-chan struct{} {
	return c.done
}
