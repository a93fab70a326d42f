package background

import (
	"math"
	"testing"
	"time"

	"github.com/sadopc/focusninja/internal/store"
)

// ============================================================
// Startup reconciliation
// ============================================================

func TestStartupArmsHousekeepingDeadlines(t *testing.T) {
	e, _, alarms := newTestEngine(t)
	now := time.Date(2026, 8, 31, 14, 30, 0, 0, time.Local)
	setClock(e, now)

	if err := e.Startup(); err != nil {
		t.Fatal(err)
	}

	at, ok := alarms.armedAt(Deadline{Kind: DeadlineDailyReset})
	if !ok {
		t.Fatal("daily reset not armed")
	}
	if want := nextMidnight(now); !at.Equal(want) {
		t.Fatalf("daily reset armed at %v, want %v", at, want)
	}
	if _, ok := alarms.armedAt(Deadline{Kind: DeadlineUsageSample}); !ok {
		t.Fatal("sampler not armed")
	}
}

func TestStartupAppliesMissedDailyReset(t *testing.T) {
	e, s, _ := newTestEngine(t)
	now := time.Date(2026, 9, 1, 9, 0, 0, 0, time.Local)
	setClock(e, now)

	if err := s.SetUsage(store.Usage{
		"2026-08-31": {"example.com": {Visits: 9, TimeSpent: 500}},
	}); err != nil {
		t.Fatal(err)
	}
	if err := s.SetSetting(settingLastResetDate, "2026-08-31"); err != nil {
		t.Fatal(err)
	}

	if err := e.Startup(); err != nil {
		t.Fatal(err)
	}

	usage, _ := s.Usage()
	if _, ok := usage["2026-08-31"]; ok {
		t.Fatal("missed midnight reset not applied at startup")
	}
	last, _ := s.GetSetting(settingLastResetDate)
	if last != "2026-09-01" {
		t.Fatalf("last_reset_date = %q, want 2026-09-01", last)
	}
}

func TestStartupSkipsResetAlreadyDoneToday(t *testing.T) {
	e, s, _ := newTestEngine(t)
	now := time.Date(2026, 9, 1, 9, 0, 0, 0, time.Local)
	setClock(e, now)

	if err := s.SetUsage(store.Usage{
		"2026-08-31": {"example.com": {Visits: 9}},
	}); err != nil {
		t.Fatal(err)
	}
	if err := s.SetSetting(settingLastResetDate, "2026-09-01"); err != nil {
		t.Fatal(err)
	}

	if err := e.Startup(); err != nil {
		t.Fatal(err)
	}

	// Reset already ran today, so stale data is left for midnight.
	usage, _ := s.Usage()
	if _, ok := usage["2026-08-31"]; !ok {
		t.Fatal("reset ran twice on the same day")
	}
}

func TestStartupRearmsRunningPomodoro(t *testing.T) {
	e, s, alarms := newTestEngine(t)
	now := time.Now()
	setClock(e, now)

	start := now.Add(-600 * time.Second)
	p, _ := s.Pomodoro()
	p.IsRunning = true
	p.IsWork = true
	p.StartTime = msPtr(start)
	p.RemainingTime = 1500
	if err := s.SetPomodoro(p); err != nil {
		t.Fatal(err)
	}

	if err := e.Startup(); err != nil {
		t.Fatal(err)
	}

	at, ok := alarms.armedAt(Deadline{Kind: DeadlinePomodoroWork})
	if !ok {
		t.Fatal("running work phase not re-armed")
	}
	want := now.Add(900 * time.Second)
	if d := at.Sub(want); d < -time.Second || d > time.Second {
		t.Fatalf("work deadline at %v, want ~%v", at, want)
	}
}

func TestStartupPausesExpiredPomodoro(t *testing.T) {
	e, s, alarms := newTestEngine(t)
	now := time.Now()
	setClock(e, now)

	start := now.Add(-2 * time.Hour)
	p, _ := s.Pomodoro()
	p.IsRunning = true
	p.IsWork = true
	p.StartTime = msPtr(start)
	p.RemainingTime = 1500
	if err := s.SetPomodoro(p); err != nil {
		t.Fatal(err)
	}

	if err := e.Startup(); err != nil {
		t.Fatal(err)
	}

	p, _ = s.Pomodoro()
	if p.Phase() != store.PhasePaused {
		t.Fatalf("expired phase should pause, got %v", p.Phase())
	}
	if p.RemainingTime != 0 {
		t.Fatalf("expired phase remaining = %f, want 0", p.RemainingTime)
	}
	if _, ok := alarms.armedAt(Deadline{Kind: DeadlinePomodoroWork}); ok {
		t.Fatal("expired phase deadline armed anyway")
	}
}

func TestStartupRearmsRunningDeepWork(t *testing.T) {
	e, s, alarms := newTestEngine(t)
	now := time.Now()
	setClock(e, now)

	end := now.Add(20 * time.Minute)
	if err := s.SetModes(store.ModeSettings{
		DeepWorkActive: true,
		DeepWorkEnd:    msPtr(end),
	}); err != nil {
		t.Fatal(err)
	}

	if err := e.Startup(); err != nil {
		t.Fatal(err)
	}

	at, ok := alarms.armedAt(Deadline{Kind: DeadlineDeepWorkEnd})
	if !ok {
		t.Fatal("running deep work not re-armed")
	}
	if !at.Equal(fromMS(msOf(end))) {
		t.Fatalf("deep work end at %v, want %v", at, end)
	}
}

func TestStartupDeactivatesExpiredDeepWork(t *testing.T) {
	e, s, alarms := newTestEngine(t)
	now := time.Now()
	setClock(e, now)

	end := now.Add(-time.Hour)
	if err := s.SetModes(store.ModeSettings{
		DeepWorkActive: true,
		DeepWorkEnd:    msPtr(end),
	}); err != nil {
		t.Fatal(err)
	}

	if err := e.Startup(); err != nil {
		t.Fatal(err)
	}

	m, _ := s.Modes()
	if m.DeepWorkActive || m.DeepWorkEnd != nil {
		t.Fatalf("expired deep work survived startup: %+v", m)
	}
	if _, ok := alarms.armedAt(Deadline{Kind: DeadlineDeepWorkEnd}); ok {
		t.Fatal("expired deep work deadline armed anyway")
	}
}

func TestStartupLeavesSnoozeDeadlinesAlone(t *testing.T) {
	e, s, alarms := newTestEngine(t)
	now := time.Now()
	setClock(e, now)

	until := now.Add(5 * time.Minute)
	if err := s.SetSnooze(store.SnoozeStatus{
		"reddit.com": {SnoozedUntil: msPtr(until), SnoozeUsedToday: true},
	}); err != nil {
		t.Fatal(err)
	}

	if err := e.Startup(); err != nil {
		t.Fatal(err)
	}

	if _, ok := alarms.armedAt(Deadline{Kind: DeadlineSnoozeEnd, Domain: "reddit.com"}); ok {
		t.Fatal("snooze deadline reconstructed at startup")
	}
	// The persisted window still governs the policy gate on its own.
	addSite(t, s, "reddit.com", store.TrackedSite{Category: store.CategoryUnproductive})
	e.ToggleDeepWork(true)
	dec, err := e.HandleBeforeNavigate(1, "https://reddit.com")
	if err != nil {
		t.Fatal(err)
	}
	if !dec.Allowed {
		t.Fatalf("running snooze window ignored after restart: %q", dec.Reason)
	}
}

// ============================================================
// Usage ledger
// ============================================================

func TestCommittedTransitionFiltering(t *testing.T) {
	e, s, _ := newTestEngine(t)
	addSite(t, s, "example.com", store.TrackedSite{Category: store.CategoryNeutral})
	now := time.Now()

	counted := []Transition{TransitionTyped, TransitionLink, TransitionAutoBookmark, TransitionFormSubmit}
	ignored := []Transition{TransitionReload, TransitionBackForward, TransitionKeyword}

	for _, tr := range counted {
		if err := e.HandleCommitted(1, "https://example.com", tr, now); err != nil {
			t.Fatal(err)
		}
	}
	for _, tr := range ignored {
		if err := e.HandleCommitted(1, "https://example.com", tr, now); err != nil {
			t.Fatal(err)
		}
	}

	usage, _ := s.Usage()
	got := usage.Day(dateOf(now))["example.com"]
	if got.Visits != len(counted) {
		t.Fatalf("visits = %d, want %d", got.Visits, len(counted))
	}
	if got.LastVisit != msOf(now) {
		t.Fatalf("lastVisitTimestamp = %d, want %d", got.LastVisit, msOf(now))
	}
}

func TestCommittedIgnoresBlockPageAndUntracked(t *testing.T) {
	e, s, _ := newTestEngine(t)
	addSite(t, s, "example.com", store.TrackedSite{Category: store.CategoryNeutral})
	now := time.Now()

	blockURL := BlockPageURL("https://example.com", "Visit limit (1) reached.", "example.com")
	if err := e.HandleCommitted(1, blockURL, TransitionLink, now); err != nil {
		t.Fatal(err)
	}
	if err := e.HandleCommitted(1, "https://untracked.org", TransitionLink, now); err != nil {
		t.Fatal(err)
	}

	usage, _ := s.Usage()
	if len(usage.Day(dateOf(now))) != 0 {
		t.Fatalf("block page or untracked navigation recorded: %+v", usage)
	}
}

func TestSamplerAttributesToPriorDomain(t *testing.T) {
	e, s, _ := newTestEngine(t)
	addSite(t, s, "a.com", store.TrackedSite{Category: store.CategoryNeutral})
	addSite(t, s, "b.com", store.TrackedSite{Category: store.CategoryNeutral})

	now := time.Now()
	cur := setClock(e, now)

	if err := e.HandleTabActivated(1, "https://a.com"); err != nil {
		t.Fatal(err)
	}
	// 40 seconds on a.com, then the tab switches to b.com.
	*cur = now.Add(40 * time.Second)
	if err := e.HandleTabActivated(2, "https://b.com"); err != nil {
		t.Fatal(err)
	}
	// 20 more seconds on b.com before a sampler tick.
	*cur = cur.Add(20 * time.Second)
	e.HandleAlarm(Deadline{Kind: DeadlineUsageSample})

	usage, _ := s.Usage()
	day := usage.Day(dateOf(*cur))
	if got := day["a.com"].TimeSpent; math.Abs(got-40) > 0.01 {
		t.Fatalf("a.com time = %f, want 40", got)
	}
	if got := day["b.com"].TimeSpent; math.Abs(got-20) > 0.01 {
		t.Fatalf("b.com time = %f, want 20", got)
	}
}

func TestURLChangeOnInactiveTabIgnored(t *testing.T) {
	e, s, _ := newTestEngine(t)
	addSite(t, s, "a.com", store.TrackedSite{Category: store.CategoryNeutral})

	now := time.Now()
	cur := setClock(e, now)

	if err := e.HandleTabActivated(1, "https://a.com"); err != nil {
		t.Fatal(err)
	}
	*cur = now.Add(30 * time.Second)
	if err := e.HandleTabURLChanged(7, "https://b.com"); err != nil {
		t.Fatal(err)
	}

	if got := e.ActiveDomain(); got != "a.com" {
		t.Fatalf("background tab change moved the context to %q", got)
	}
	// Nothing was flushed either; the slice still belongs to a.com.
	usage, _ := s.Usage()
	if got := usage.Day(dateOf(*cur))["a.com"].TimeSpent; got != 0 {
		t.Fatalf("premature flush: %f", got)
	}
}

func TestURLChangeOnActiveTabSwitchesContext(t *testing.T) {
	e, s, _ := newTestEngine(t)
	addSite(t, s, "a.com", store.TrackedSite{Category: store.CategoryNeutral})

	now := time.Now()
	cur := setClock(e, now)

	if err := e.HandleTabActivated(1, "https://a.com"); err != nil {
		t.Fatal(err)
	}
	*cur = now.Add(25 * time.Second)
	if err := e.HandleTabURLChanged(1, "https://b.com"); err != nil {
		t.Fatal(err)
	}

	if got := e.ActiveDomain(); got != "b.com" {
		t.Fatalf("active domain = %q, want b.com", got)
	}
	usage, _ := s.Usage()
	if got := usage.Day(dateOf(*cur))["a.com"].TimeSpent; math.Abs(got-25) > 0.01 {
		t.Fatalf("a.com time = %f, want 25", got)
	}
}

func TestSamplerSkipsUntrackedButAdvancesAnchor(t *testing.T) {
	e, s, _ := newTestEngine(t)
	addSite(t, s, "a.com", store.TrackedSite{Category: store.CategoryNeutral})

	now := time.Now()
	cur := setClock(e, now)

	if err := e.HandleTabActivated(1, "https://untracked.org"); err != nil {
		t.Fatal(err)
	}
	*cur = now.Add(50 * time.Second)
	if err := e.HandleTabURLChanged(1, "https://a.com"); err != nil {
		t.Fatal(err)
	}
	*cur = cur.Add(10 * time.Second)
	e.HandleAlarm(Deadline{Kind: DeadlineUsageSample})

	usage, _ := s.Usage()
	day := usage.Day(dateOf(*cur))
	if _, ok := day["untracked.org"]; ok {
		t.Fatal("untracked domain accrued time")
	}
	// Only the slice after the switch lands on a.com.
	if got := day["a.com"].TimeSpent; math.Abs(got-10) > 0.01 {
		t.Fatalf("a.com time = %f, want 10", got)
	}
}

func TestSamplerAlarmRearmsItself(t *testing.T) {
	e, _, alarms := newTestEngine(t)
	now := time.Now()
	setClock(e, now)

	e.HandleAlarm(Deadline{Kind: DeadlineUsageSample})

	at, ok := alarms.armedAt(Deadline{Kind: DeadlineUsageSample})
	if !ok {
		t.Fatal("sampler did not re-arm")
	}
	want := now.Add(time.Duration(defaultSampleInterval) * time.Second)
	if !at.Equal(want) {
		t.Fatalf("sampler re-armed at %v, want %v", at, want)
	}
}
