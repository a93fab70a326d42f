package background

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sadopc/focusninja/internal/store"
)

// BlockPageScheme prefixes the redirect target for blocked
// navigations; committed navigations to it are never counted.
const BlockPageScheme = "focusninja://blocked"

// Decision is the policy gate's verdict for one navigation attempt.
type Decision struct {
	Allowed  bool
	Reason   string
	Domain   string
	BlockURL string
}

// evaluate composes the four blocking policies for a canonical
// domain, first match wins:
//
//  1. active snooze allows unconditionally
//  2. deep work blocks Unproductive sites
//  3. a running pomodoro work phase blocks Unproductive sites
//  4. daily time limit, then visit limit
//
// Untracked domains are only subject to rule 1, which cannot block.
func (e *Engine) evaluate(domain string, now time.Time) (Decision, error) {
	snooze, err := e.store.Snooze()
	if err != nil {
		return Decision{}, err
	}
	if entry, ok := snooze[domain]; ok {
		if entry.SnoozedUntil != nil && now.Before(fromMS(*entry.SnoozedUntil)) {
			return Decision{Allowed: true, Domain: domain}, nil
		}
	}

	sites, err := e.store.Sites()
	if err != nil {
		return Decision{}, err
	}
	site, tracked := sites[domain]
	if !tracked {
		return Decision{Allowed: true, Domain: domain}, nil
	}

	if site.Category == store.CategoryUnproductive {
		modes, err := e.store.Modes()
		if err != nil {
			return Decision{}, err
		}
		if modes.DeepWorkActive {
			return Decision{Domain: domain, Reason: "Deep Work mode is active."}, nil
		}

		p, err := e.store.Pomodoro()
		if err != nil {
			return Decision{}, err
		}
		if p.Phase() == store.PhaseRunningWork {
			return Decision{Domain: domain, Reason: "Pomodoro work session is active."}, nil
		}
	}

	usage, err := e.store.Usage()
	if err != nil {
		return Decision{}, err
	}
	today := usage.Day(dateOf(now))[domain]

	if site.TimeLimit != nil && today.TimeSpent >= float64(*site.TimeLimit) {
		return Decision{
			Domain: domain,
			Reason: fmt.Sprintf("Time limit (%d min) reached.", *site.TimeLimit/60),
		}, nil
	}
	if site.VisitLimit != nil && today.Visits >= *site.VisitLimit {
		return Decision{
			Domain: domain,
			Reason: fmt.Sprintf("Visit limit (%d) reached.", *site.VisitLimit),
		}, nil
	}

	return Decision{Allowed: true, Domain: domain}, nil
}

// BlockPageURL builds the redirect target for a blocked navigation.
// The original URL is carried opaquely so the block page can offer a
// "go back" action; the domain feeds the snooze affordance.
func BlockPageURL(original, reason, domain string) string {
	q := url.Values{}
	q.Set("url", original)
	q.Set("reason", reason)
	q.Set("domain", domain)
	return BlockPageScheme + "?" + q.Encode()
}

// IsBlockPageURL guards visit counting against the redirect to the
// block page itself.
func IsBlockPageURL(raw string) bool {
	return strings.HasPrefix(raw, BlockPageScheme)
}
