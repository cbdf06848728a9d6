package services

import (
	"sync"
	"time"
)

// Countdown tracks a fixed duration against the wall clock. Remaining time
// is recomputed from the start timestamp on every read and tick, never by
// decrementing a counter, so a suspended host process cannot make the
// countdown drift: after 91 elapsed seconds of a 90-second countdown the
// next tick reads 0, not -1.
type Countdown struct {
	mu        sync.Mutex
	now       func() time.Time
	scheduler Scheduler
	tick      time.Duration

	duration  time.Duration
	startedAt time.Time
	timer     ScheduledTimer
	running   bool

	onTick func(remaining time.Duration)
	onZero func()
}

// NewCountdown builds an idle countdown. tick is the scheduling granularity;
// the reported remaining time does not depend on it.
func NewCountdown(scheduler Scheduler, now func() time.Time, tick time.Duration) *Countdown {
	if now == nil {
		now = time.Now
	}
	if tick <= 0 {
		tick = time.Second
	}
	return &Countdown{now: now, scheduler: scheduler, tick: tick}
}

// Start begins counting down d. onTick fires on every scheduling
// opportunity with the current remaining time; onZero fires exactly once
// when the countdown reaches 0, unless cancelled first. Starting a running
// countdown restarts it.
func (c *Countdown) Start(d time.Duration, onTick func(time.Duration), onZero func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	c.duration = d
	c.startedAt = c.now()
	c.onTick = onTick
	c.onZero = onZero
	c.running = true
	c.timer = c.scheduler.AfterFunc(c.tick, c.step)
}

// Remaining reports the time left, floored at zero. Non-increasing over
// successive reads while running.
func (c *Countdown) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return 0
	}
	return c.remainingLocked()
}

func (c *Countdown) remainingLocked() time.Duration {
	elapsed := c.now().Sub(c.startedAt)
	if elapsed >= c.duration {
		return 0
	}
	return c.duration - elapsed
}

// Cancel stops all further ticks. The zero callback will not fire.
func (c *Countdown) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

func (c *Countdown) stopLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.running = false
	c.onTick = nil
	c.onZero = nil
}

func (c *Countdown) step() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	remaining := c.remainingLocked()
	onTick := c.onTick
	var onZero func()
	if remaining == 0 {
		onZero = c.onZero
		c.stopLocked()
	} else {
		c.timer = c.scheduler.AfterFunc(c.tick, c.step)
	}
	c.mu.Unlock()

	if onTick != nil {
		onTick(remaining)
	}
	if onZero != nil {
		onZero()
	}
}
