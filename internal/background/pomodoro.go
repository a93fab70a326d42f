package background

import (
	"time"

	"github.com/sadopc/focusninja/internal/store"
)

// EffectiveRemaining reconstructs the time left in the current phase
// from the persisted absolute start time, clamped at zero. While
// paused the frozen remainder is returned as-is.
func EffectiveRemaining(p store.PomodoroState, now time.Time) time.Duration {
	remaining := p.RemainingTime
	if p.IsRunning && p.StartTime != nil {
		remaining -= now.Sub(fromMS(*p.StartTime)).Seconds()
	}
	if remaining < 0 {
		remaining = 0
	}
	return time.Duration(remaining * float64(time.Second))
}

func phaseDeadline(p store.PomodoroState) Deadline {
	if p.IsWork {
		return Deadline{Kind: DeadlinePomodoroWork}
	}
	return Deadline{Kind: DeadlinePomodoroBreak}
}

// startPomodoro starts or resumes the timer. No-op while running.
// A remainder at or below zero (fresh reset or completed phase)
// reinitializes to the full duration of the current phase.
func (e *Engine) startPomodoro(now time.Time) error {
	p, err := e.store.Pomodoro()
	if err != nil {
		return err
	}
	if p.IsRunning {
		return nil
	}

	e.alarms.Disarm(Deadline{Kind: DeadlinePomodoroWork})
	e.alarms.Disarm(Deadline{Kind: DeadlinePomodoroBreak})

	if p.RemainingTime <= 0 {
		if p.IsWork {
			p.RemainingTime = float64(p.Settings.WorkDuration)
		} else {
			p.RemainingTime = float64(p.Settings.BreakDuration)
		}
	}
	p.IsRunning = true
	p.StartTime = msPtr(now)

	e.alarms.Arm(phaseDeadline(p), now.Add(EffectiveRemaining(p, now)))
	return e.store.SetPomodoro(p)
}

// pausePomodoro freezes the effective remainder. No-op while paused.
func (e *Engine) pausePomodoro(now time.Time) error {
	p, err := e.store.Pomodoro()
	if err != nil {
		return err
	}
	if !p.IsRunning {
		return nil
	}

	e.alarms.Disarm(phaseDeadline(p))

	p.RemainingTime = EffectiveRemaining(p, now).Seconds()
	p.IsRunning = false
	p.StartTime = nil
	return e.store.SetPomodoro(p)
}

// resetPomodoro unconditionally returns to a paused work phase with
// the full work duration.
func (e *Engine) resetPomodoro() error {
	p, err := e.store.Pomodoro()
	if err != nil {
		return err
	}

	e.alarms.Disarm(Deadline{Kind: DeadlinePomodoroWork})
	e.alarms.Disarm(Deadline{Kind: DeadlinePomodoroBreak})

	p.IsRunning = false
	p.IsWork = true
	p.StartTime = nil
	p.RemainingTime = float64(p.Settings.WorkDuration)
	return e.store.SetPomodoro(p)
}

// completeWork handles the work deadline firing: credit the session,
// roll the counter over on the first completion of a new day, and
// move straight into a running break.
func (e *Engine) completeWork(now time.Time) error {
	p, err := e.store.Pomodoro()
	if err != nil {
		return err
	}

	today := dateOf(now)
	if p.LastSession != today {
		p.SessionsToday = 1
		p.LastSession = today
	} else {
		p.SessionsToday++
	}

	p.IsWork = false
	p.IsRunning = true
	p.StartTime = msPtr(now)
	p.RemainingTime = float64(p.Settings.BreakDuration)

	e.alarms.Arm(Deadline{Kind: DeadlinePomodoroBreak}, now.Add(EffectiveRemaining(p, now)))
	return e.store.SetPomodoro(p)
}

// completeBreak is the symmetric transition back into a running work
// phase; no session is credited for a break.
func (e *Engine) completeBreak(now time.Time) error {
	p, err := e.store.Pomodoro()
	if err != nil {
		return err
	}

	p.IsWork = true
	p.IsRunning = true
	p.StartTime = msPtr(now)
	p.RemainingTime = float64(p.Settings.WorkDuration)

	e.alarms.Arm(Deadline{Kind: DeadlinePomodoroWork}, now.Add(EffectiveRemaining(p, now)))
	return e.store.SetPomodoro(p)
}
