package background

import (
	"time"
)

// dailyReset runs at local midnight, and again at startup when a
// midnight was missed. Running it twice on the same day is a no-op
// beyond the first pass: usage already holds only today, the session
// counter only rolls when the date marker moved, and clearing an
// already-false quota flag changes nothing.
func (e *Engine) dailyReset(now time.Time) error {
	today := dateOf(now)

	// Keep only today's usage bucket. No long-term history is kept.
	usage, err := e.store.Usage()
	if err != nil {
		return err
	}
	for date := range usage {
		if date != today {
			delete(usage, date)
		}
	}
	if err := e.store.SetUsage(usage); err != nil {
		return err
	}

	p, err := e.store.Pomodoro()
	if err != nil {
		return err
	}
	if p.LastSession != today {
		p.SessionsToday = 0
		p.LastSession = today
		if err := e.store.SetPomodoro(p); err != nil {
			return err
		}
	}

	// Every domain gets its snooze quota back; windows that already
	// ran out are collected entirely.
	snooze, err := e.store.Snooze()
	if err != nil {
		return err
	}
	for domain, entry := range snooze {
		if entry.SnoozedUntil != nil && !now.Before(fromMS(*entry.SnoozedUntil)) {
			delete(snooze, domain)
			continue
		}
		entry.SnoozeUsedToday = false
		snooze[domain] = entry
	}
	if err := e.store.SetSnooze(snooze); err != nil {
		return err
	}

	return e.store.SetSetting(settingLastResetDate, today)
}
