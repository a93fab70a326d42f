package background

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sadopc/focusninja/internal/store"
)

// Settings keys the engine reads for its own scheduling.
const (
	settingDeepWorkDuration = "deep_work_duration"
	settingSnoozeDuration   = "snooze_duration"
	settingSampleInterval   = "sample_interval"
	settingLastResetDate    = "last_reset_date"
)

const defaultSampleInterval = 15 // seconds

// activeTab is the owned sampling context: which tab/domain the
// elapsed-time slice since anchor belongs to. Rebuilt fresh on every
// process start; never persisted.
type activeTab struct {
	tabID  int
	domain string
	anchor time.Time
}

// Engine is the background coordinator. All handlers run one at a
// time under mu; the dominant correctness concern is process death
// between events, which Startup's reconciliation covers, not
// interleaving within the process.
type Engine struct {
	mu     sync.Mutex
	store  *store.Store
	alarms Alarms
	log    *zap.Logger
	now    func() time.Time

	tab activeTab
}

func NewEngine(s *store.Store, alarms Alarms, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		store:  s,
		alarms: alarms,
		log:    log,
		now:    time.Now,
	}
}

// Startup reconciles persisted deadlines against the wake primitives,
// which do not survive the process. Deadlines already in the past are
// applied synchronously instead of re-armed. Snooze deadlines are
// deliberately not reconstructed: an active window still allows
// navigation until its timestamp passes, and the daily reset collects
// the leftover entry.
func (e *Engine) Startup() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	e.tab = activeTab{anchor: now}

	if last, err := e.store.GetSetting(settingLastResetDate); err == nil && last != dateOf(now) {
		if err := e.dailyReset(now); err != nil {
			return err
		}
	}
	e.alarms.Arm(Deadline{Kind: DeadlineDailyReset}, nextMidnight(now))
	e.alarms.Arm(Deadline{Kind: DeadlineUsageSample}, now.Add(e.sampleInterval()))

	p, err := e.store.Pomodoro()
	if err != nil {
		return err
	}
	if p.Phase() != store.PhasePaused {
		if remaining := EffectiveRemaining(p, now); remaining > 0 {
			e.alarms.Arm(phaseDeadline(p), now.Add(remaining))
			e.log.Info("re-armed pomodoro deadline",
				zap.Bool("work", p.IsWork), zap.Duration("remaining", remaining))
		} else {
			// The phase ran out while the process was down; freeze
			// the timer instead of guessing how many phases elapsed.
			if err := e.pausePomodoro(now); err != nil {
				return err
			}
			e.log.Info("pomodoro expired while down, paused")
		}
	}

	m, err := e.store.Modes()
	if err != nil {
		return err
	}
	if m.DeepWorkActive && m.DeepWorkEnd != nil {
		if end := fromMS(*m.DeepWorkEnd); end.After(now) {
			e.alarms.Arm(Deadline{Kind: DeadlineDeepWorkEnd}, end)
		} else {
			if err := e.endDeepWork(false); err != nil {
				return err
			}
			e.log.Info("deep work expired while down, deactivated")
		}
	}
	return nil
}

// HandleAlarm routes a fired deadline to its transition. Errors are
// logged, not propagated: a wake-up has no caller to report to, and
// whole-record writes mean a failed handler left no partial state.
func (e *Engine) HandleAlarm(d Deadline) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	var err error
	switch d.Kind {
	case DeadlineUsageSample:
		err = e.sampleActiveTab(now)
		e.alarms.Arm(d, now.Add(e.sampleInterval()))
	case DeadlineDailyReset:
		err = e.dailyReset(now)
		e.alarms.Arm(d, nextMidnight(now))
	case DeadlinePomodoroWork:
		err = e.completeWork(now)
	case DeadlinePomodoroBreak:
		err = e.completeBreak(now)
	case DeadlineDeepWorkEnd:
		err = e.endDeepWork(false)
	case DeadlineSnoozeEnd:
		err = e.endSnooze(d.Domain)
	}
	if err != nil {
		e.log.Error("alarm handler failed", zap.String("deadline", d.Kind.String()), zap.Error(err))
	}
}

// HandleBeforeNavigate evaluates the blocking policy for a top-level
// navigation before it loads. It never mutates usage; visit counting
// waits for the committed event.
func (e *Engine) HandleBeforeNavigate(tabID int, rawURL string) (Decision, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	domain := NavigationDomain(rawURL)
	if domain == "" {
		return Decision{Allowed: true}, nil
	}
	dec, err := e.evaluate(domain, e.now())
	if err != nil {
		return Decision{}, err
	}
	if !dec.Allowed {
		dec.BlockURL = BlockPageURL(rawURL, dec.Reason, domain)
		e.log.Info("navigation blocked",
			zap.Int("tab", tabID), zap.String("domain", domain), zap.String("reason", dec.Reason))
	}
	return dec, nil
}

// HandleCommitted records a visit once a navigation has actually
// committed with a countable transition type.
func (e *Engine) HandleCommitted(tabID int, rawURL string, transition Transition, ts time.Time) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !transition.countsAsVisit() {
		return nil
	}
	if IsBlockPageURL(rawURL) {
		return nil
	}
	domain := NavigationDomain(rawURL)
	if domain == "" {
		return nil
	}
	return e.recordVisit(domain, ts)
}

// HandleTabActivated flushes the elapsed slice to the previously
// active domain, then switches the sampling context to the newly
// focused tab.
func (e *Engine) HandleTabActivated(tabID int, rawURL string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	if err := e.sampleActiveTab(now); err != nil {
		return err
	}
	e.tab = activeTab{tabID: tabID, domain: NavigationDomain(rawURL), anchor: now}
	return nil
}

// HandleTabURLChanged updates the sampling context when the active
// tab navigates in place. Updates for other tabs are ignored.
func (e *Engine) HandleTabURLChanged(tabID int, rawURL string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if tabID != e.tab.tabID {
		return nil
	}
	now := e.now()
	if err := e.sampleActiveTab(now); err != nil {
		return err
	}
	e.tab.domain = NavigationDomain(rawURL)
	e.tab.anchor = now
	return nil
}

// --- UI commands ---

func (e *Engine) StartTimer() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.startPomodoro(e.now())
}

func (e *Engine) PauseTimer() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pausePomodoro(e.now())
}

func (e *Engine) ResetTimer() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.resetPomodoro()
}

func (e *Engine) ToggleDeepWork(enable bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if enable {
		return e.activateDeepWork(e.now())
	}
	return e.endDeepWork(true)
}

// ActivateSnooze opens the once-per-day snooze window for a domain.
// A false result is the quota denial, not an error.
func (e *Engine) ActivateSnooze(domain string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.activateSnooze(domain, e.now())
}

// UpdateDurations sets the configured phase lengths. Non-positive
// values leave the current length alone. A running phase keeps its
// armed deadline; new lengths apply from the next started phase.
// The pomodoro record is only ever written under mu, so a completion
// alarm cannot interleave with this read-modify-write.
func (e *Engine) UpdateDurations(workSecs, breakSecs int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.store.Pomodoro()
	if err != nil {
		return err
	}
	if workSecs > 0 {
		p.Settings.WorkDuration = workSecs
	}
	if breakSecs > 0 {
		p.Settings.BreakDuration = breakSecs
	}
	return e.store.SetPomodoro(p)
}

// --- read-side helpers for the UI ---

// PomodoroStatus returns the persisted state plus the effective
// remaining time at this instant.
func (e *Engine) PomodoroStatus() (store.PomodoroState, time.Duration, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, err := e.store.Pomodoro()
	if err != nil {
		return store.PomodoroState{}, 0, err
	}
	return p, EffectiveRemaining(p, e.now()), nil
}

// DeepWorkStatus reports whether deep work is active and how long is
// left in the session.
func (e *Engine) DeepWorkStatus() (bool, time.Duration, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	m, err := e.store.Modes()
	if err != nil {
		return false, 0, err
	}
	if !m.DeepWorkActive || m.DeepWorkEnd == nil {
		return false, 0, nil
	}
	remaining := fromMS(*m.DeepWorkEnd).Sub(e.now())
	if remaining < 0 {
		remaining = 0
	}
	return true, remaining, nil
}

// ActiveDomain reports which domain time is currently accruing to.
func (e *Engine) ActiveDomain() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tab.domain
}

func (e *Engine) sampleInterval() time.Duration {
	return time.Duration(e.store.GetSettingInt(settingSampleInterval, defaultSampleInterval)) * time.Second
}

// --- time helpers ---

func dateOf(t time.Time) string {
	return t.Format("2006-01-02")
}

func nextMidnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, t.Location())
}

func msOf(t time.Time) int64 {
	return t.UnixMilli()
}

func msPtr(t time.Time) *int64 {
	ms := t.UnixMilli()
	return &ms
}

func fromMS(ms int64) time.Time {
	return time.UnixMilli(ms)
}
