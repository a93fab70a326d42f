package background

import (
	"sync"
	"time"
)

// DeadlineKind identifies which logical timer a wake-up belongs to.
// Dispatch is by this typed key, not by parsing alarm name strings.
type DeadlineKind int

const (
	DeadlineUsageSample DeadlineKind = iota
	DeadlineDailyReset
	DeadlinePomodoroWork
	DeadlinePomodoroBreak
	DeadlineDeepWorkEnd
	DeadlineSnoozeEnd
)

func (k DeadlineKind) String() string {
	switch k {
	case DeadlineUsageSample:
		return "usage-sample"
	case DeadlineDailyReset:
		return "daily-reset"
	case DeadlinePomodoroWork:
		return "pomodoro-work"
	case DeadlinePomodoroBreak:
		return "pomodoro-break"
	case DeadlineDeepWorkEnd:
		return "deep-work-end"
	case DeadlineSnoozeEnd:
		return "snooze-end"
	}
	return "unknown"
}

// Deadline names one schedulable wake-up. Domain is set only for
// per-domain snooze expiries.
type Deadline struct {
	Kind   DeadlineKind
	Domain string
}

// Alarms is the wake primitive: a named, coalescing one-shot trigger.
// Arming an already-armed deadline replaces it; disarming an unknown
// one is a no-op.
type Alarms interface {
	Arm(d Deadline, at time.Time)
	Disarm(d Deadline)
}

// ClockAlarms drives deadlines off the process clock. It stands in
// for a host alarm service: triggers fire at or after their absolute
// time but do not survive the process, which is why the engine
// reconciles persisted deadlines against it on every start.
type ClockAlarms struct {
	mu     sync.Mutex
	fire   func(Deadline)
	timers map[Deadline]*time.Timer
	closed bool
}

func NewClockAlarms() *ClockAlarms {
	return &ClockAlarms{timers: make(map[Deadline]*time.Timer)}
}

// Bind sets the callback invoked when a deadline fires. Must be
// called before the first Arm.
func (c *ClockAlarms) Bind(fire func(Deadline)) {
	c.mu.Lock()
	c.fire = fire
	c.mu.Unlock()
}

func (c *ClockAlarms) Arm(d Deadline, at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if t, ok := c.timers[d]; ok {
		t.Stop()
	}
	delay := time.Until(at)
	if delay < 0 {
		delay = 0
	}
	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		c.mu.Lock()
		// A disarm or re-arm may have raced the fire; only dispatch
		// if this timer is still the registered one.
		current, ok := c.timers[d]
		if !ok || current != timer || c.closed {
			c.mu.Unlock()
			return
		}
		delete(c.timers, d)
		fire := c.fire
		c.mu.Unlock()
		if fire != nil {
			fire(d)
		}
	})
	c.timers[d] = timer
}

func (c *ClockAlarms) Disarm(d Deadline) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.timers[d]; ok {
		t.Stop()
		delete(c.timers, d)
	}
}

// Stop disarms everything; used at shutdown.
func (c *ClockAlarms) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	for d, t := range c.timers {
		t.Stop()
		delete(c.timers, d)
	}
}
