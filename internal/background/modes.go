package background

import (
	"time"

	"go.uber.org/zap"

	"github.com/sadopc/focusninja/internal/store"
)

// activateDeepWork starts a fixed-length all-Unproductive-blocked
// session. Re-activating while active is a no-op.
func (e *Engine) activateDeepWork(now time.Time) error {
	m, err := e.store.Modes()
	if err != nil {
		return err
	}
	if m.DeepWorkActive {
		return nil
	}

	duration := time.Duration(e.store.GetSettingInt(settingDeepWorkDuration, store.DefaultDeepWorkDuration)) * time.Second
	end := now.Add(duration)
	m.DeepWorkActive = true
	m.DeepWorkEnd = msPtr(end)

	e.alarms.Arm(Deadline{Kind: DeadlineDeepWorkEnd}, end)
	return e.store.SetModes(m)
}

// endDeepWork clears the session. Manual deactivation disarms the
// expiry deadline; when the deadline itself fired it is already
// consumed and disarmClock is false.
func (e *Engine) endDeepWork(disarmClock bool) error {
	m, err := e.store.Modes()
	if err != nil {
		return err
	}
	if !m.DeepWorkActive {
		return nil
	}

	m.DeepWorkActive = false
	m.DeepWorkEnd = nil
	if disarmClock {
		e.alarms.Disarm(Deadline{Kind: DeadlineDeepWorkEnd})
	}
	return e.store.SetModes(m)
}

// activateSnooze opens a temporary allow window for a domain. Each
// domain gets one per calendar day; a second attempt reports false
// until the daily reset, no matter how long ago the window expired.
func (e *Engine) activateSnooze(domain string, now time.Time) (bool, error) {
	snooze, err := e.store.Snooze()
	if err != nil {
		return false, err
	}
	if snooze[domain].SnoozeUsedToday {
		return false, nil
	}

	duration := time.Duration(e.store.GetSettingInt(settingSnoozeDuration, store.DefaultSnoozeDuration)) * time.Second
	until := now.Add(duration)
	snooze[domain] = store.SnoozeEntry{
		SnoozedUntil:    msPtr(until),
		SnoozeUsedToday: true,
	}

	e.alarms.Arm(Deadline{Kind: DeadlineSnoozeEnd, Domain: domain}, until)
	if err := e.store.SetSnooze(snooze); err != nil {
		return false, err
	}
	e.log.Info("snooze activated", zap.String("domain", domain))
	return true, nil
}

// endSnooze closes the window but keeps the quota flag; that flag is
// what enforces once-per-day until the daily reset clears it.
func (e *Engine) endSnooze(domain string) error {
	snooze, err := e.store.Snooze()
	if err != nil {
		return err
	}
	entry, ok := snooze[domain]
	if !ok || entry.SnoozedUntil == nil {
		return nil
	}
	entry.SnoozedUntil = nil
	snooze[domain] = entry
	return e.store.SetSnooze(snooze)
}
