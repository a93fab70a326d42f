package background

import (
	"time"

	"github.com/sadopc/focusninja/internal/store"
)

// Transition is a committed navigation's transition type, as the
// host reports it.
type Transition string

const (
	TransitionTyped        Transition = "typed"
	TransitionLink         Transition = "link"
	TransitionAutoBookmark Transition = "auto_bookmark"
	TransitionFormSubmit   Transition = "form_submit"
	TransitionReload       Transition = "reload"
	TransitionBackForward  Transition = "back_forward"
	TransitionKeyword      Transition = "keyword"
)

// Reloads, back/forward and omnibox keyword searches would inflate
// visit counts; only deliberate navigations count.
func (t Transition) countsAsVisit() bool {
	switch t {
	case TransitionTyped, TransitionLink, TransitionAutoBookmark, TransitionFormSubmit:
		return true
	}
	return false
}

// recordVisit increments the day's visit count for a tracked domain.
// The navigation's own timestamp becomes lastVisitTimestamp.
func (e *Engine) recordVisit(domain string, ts time.Time) error {
	sites, err := e.store.Sites()
	if err != nil {
		return err
	}
	if _, tracked := sites[domain]; !tracked {
		return nil
	}

	usage, err := e.store.Usage()
	if err != nil {
		return err
	}
	usage.Bump(dateOf(ts), domain, func(u *store.DomainUsage) {
		u.Visits++
		u.LastVisit = msOf(ts)
	})
	return e.store.SetUsage(usage)
}

// sampleActiveTab attributes the wall-clock slice since the last
// anchor entirely to the domain that was active during it, then
// advances the anchor. The anchor always advances, even when there
// is nothing to attribute, so no backlog leaks into the next slice.
func (e *Engine) sampleActiveTab(now time.Time) error {
	elapsed := now.Sub(e.tab.anchor).Seconds()
	domain := e.tab.domain
	e.tab.anchor = now

	if domain == "" || elapsed <= 0 {
		return nil
	}

	sites, err := e.store.Sites()
	if err != nil {
		return err
	}
	if _, tracked := sites[domain]; !tracked {
		return nil
	}

	usage, err := e.store.Usage()
	if err != nil {
		return err
	}
	usage.Bump(dateOf(now), domain, func(u *store.DomainUsage) {
		u.TimeSpent += elapsed
	})
	return e.store.SetUsage(usage)
}
