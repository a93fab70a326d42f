package background

import (
	"sync"
	"testing"
	"time"

	"github.com/sadopc/focusninja/internal/store"
)

// fakeAlarms records arm/disarm calls without any clock behind them.
type fakeAlarms struct {
	mu       sync.Mutex
	armed    map[Deadline]time.Time
	disarmed []Deadline
}

func newFakeAlarms() *fakeAlarms {
	return &fakeAlarms{armed: make(map[Deadline]time.Time)}
}

func (f *fakeAlarms) Arm(d Deadline, at time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.armed[d] = at
}

func (f *fakeAlarms) Disarm(d Deadline) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.armed, d)
	f.disarmed = append(f.disarmed, d)
}

func (f *fakeAlarms) armedAt(d Deadline) (time.Time, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	at, ok := f.armed[d]
	return at, ok
}

func newTestEngine(t *testing.T) (*Engine, *store.Store, *fakeAlarms) {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	alarms := newFakeAlarms()
	e := NewEngine(s, alarms, nil)
	return e, s, alarms
}

// setClock pins the engine's clock to a settable instant.
func setClock(e *Engine, at time.Time) *time.Time {
	cur := at
	e.now = func() time.Time { return cur }
	return &cur
}

func intPtr(n int) *int { return &n }

func addSite(t *testing.T, s *store.Store, domain string, site store.TrackedSite) {
	t.Helper()
	if err := s.AddSite(domain, site); err != nil {
		t.Fatalf("add site %s: %v", domain, err)
	}
}
