package store

// SiteCategory classifies a tracked site for the blocking policies.
type SiteCategory string

const (
	CategoryProductive   SiteCategory = "Productive"
	CategoryUnproductive SiteCategory = "Unproductive"
	CategoryNeutral      SiteCategory = "Neutral"
)

// TrackedSite holds the per-domain rule configuration. Limits are
// per calendar day; nil means no limit of that kind.
type TrackedSite struct {
	Category   SiteCategory `json:"category"`
	VisitLimit *int         `json:"visitLimit"` // visits/day
	TimeLimit  *int         `json:"timeLimit"`  // seconds/day
}

// Sites maps canonical domain to its rule configuration.
type Sites map[string]TrackedSite

// DomainUsage is one domain's accumulated usage for a single day.
type DomainUsage struct {
	Visits    int     `json:"visits"`
	TimeSpent float64 `json:"timeSpent"`          // seconds, fractional
	LastVisit int64   `json:"lastVisitTimestamp"` // epoch ms
}

// Usage maps date (YYYY-MM-DD, local) to domain to that day's usage.
type Usage map[string]map[string]DomainUsage

// PomodoroSettings holds the configured phase lengths in seconds.
type PomodoroSettings struct {
	WorkDuration  int `json:"workDuration"`
	BreakDuration int `json:"breakDuration"`
}

// PomodoroPhase is the explicit state of the timer state machine,
// derived from the persisted flags.
type PomodoroPhase int

const (
	PhasePaused PomodoroPhase = iota
	PhaseRunningWork
	PhaseRunningBreak
)

// PomodoroState is persisted as one whole record so multi-field
// transitions are atomic. IsRunning implies StartTime is set;
// RemainingTime is the seconds left as of StartTime while running,
// or the frozen remainder while paused.
type PomodoroState struct {
	IsRunning     bool             `json:"isRunning"`
	IsWork        bool             `json:"isWork"`
	StartTime     *int64           `json:"startTime"` // epoch ms
	RemainingTime float64          `json:"remainingTime"`
	SessionsToday int              `json:"sessionsToday"`
	LastSession   string           `json:"lastSessionDate"` // YYYY-MM-DD
	Settings      PomodoroSettings `json:"settings"`
}

// Phase reports the explicit machine state, making the flag pair
// (IsRunning, IsWork) unambiguous at call sites.
func (p PomodoroState) Phase() PomodoroPhase {
	switch {
	case !p.IsRunning:
		return PhasePaused
	case p.IsWork:
		return PhaseRunningWork
	default:
		return PhaseRunningBreak
	}
}

// ModeSettings holds the Deep Work flag. DeepWorkActive implies
// DeepWorkEnd is set and in the future at activation time.
type ModeSettings struct {
	DeepWorkActive bool   `json:"deepWorkActive"`
	DeepWorkEnd    *int64 `json:"deepWorkEndTime"` // epoch ms
}

// SnoozeEntry tracks one domain's snooze window and daily quota.
// SnoozeUsedToday stays true after the window expires; only the
// daily reset clears it.
type SnoozeEntry struct {
	SnoozedUntil    *int64 `json:"snoozedUntil"` // epoch ms
	SnoozeUsedToday bool   `json:"snoozeUsedToday"`
}

// SnoozeStatus maps domain to its snooze entry.
type SnoozeStatus map[string]SnoozeEntry

// TaskPriority orders tasks in the task list.
type TaskPriority string

const (
	PriorityHigh   TaskPriority = "High"
	PriorityMedium TaskPriority = "Medium"
	PriorityLow    TaskPriority = "Low"
)

// Task is a plain to-do item; no policy logic attaches to it.
type Task struct {
	ID        string       `json:"id"`
	Text      string       `json:"text"`
	Priority  TaskPriority `json:"priority"`
	Completed bool         `json:"completed"`
	CreatedAt int64        `json:"createdAt"` // epoch ms
}

// Default durations in seconds, matching the seeded settings rows.
const (
	DefaultWorkDuration     = 25 * 60
	DefaultBreakDuration    = 5 * 60
	DefaultDeepWorkDuration = 60 * 60
	DefaultSnoozeDuration   = 10 * 60
)

func defaultPomodoro() PomodoroState {
	return PomodoroState{
		IsWork:        true,
		RemainingTime: DefaultWorkDuration,
		Settings: PomodoroSettings{
			WorkDuration:  DefaultWorkDuration,
			BreakDuration: DefaultBreakDuration,
		},
	}
}
