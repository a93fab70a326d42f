package store

import (
	"errors"
	"fmt"
)

// ErrSiteExists is returned when adding a domain already tracked.
var ErrSiteExists = errors.New("site already tracked")

func (s *Store) Sites() (Sites, error) {
	var sites Sites
	if err := s.getRecord(KeySites, &sites); err != nil {
		return nil, err
	}
	if sites == nil {
		sites = Sites{}
	}
	return sites, nil
}

func (s *Store) SetSites(sites Sites) error {
	return s.setRecord(KeySites, sites)
}

// AddSite validates and stores a new tracked site. The domain must
// already be canonical; limits, when present, must be positive.
func (s *Store) AddSite(domain string, site TrackedSite) error {
	if domain == "" {
		return errors.New("empty domain")
	}
	if site.VisitLimit != nil && *site.VisitLimit <= 0 {
		return errors.New("visit limit must be positive")
	}
	if site.TimeLimit != nil && *site.TimeLimit <= 0 {
		return errors.New("time limit must be positive")
	}
	switch site.Category {
	case CategoryProductive, CategoryUnproductive, CategoryNeutral:
	default:
		return fmt.Errorf("unknown category %q", site.Category)
	}

	sites, err := s.Sites()
	if err != nil {
		return err
	}
	if _, ok := sites[domain]; ok {
		return fmt.Errorf("add site %s: %w", domain, ErrSiteExists)
	}
	sites[domain] = site
	return s.SetSites(sites)
}

// RemoveSite stops tracking a domain. Removing an untracked domain
// is a no-op. Stale usage entries for the domain may linger; they
// are harmless and dropped by the daily reset's pruning.
func (s *Store) RemoveSite(domain string) error {
	sites, err := s.Sites()
	if err != nil {
		return err
	}
	if _, ok := sites[domain]; !ok {
		return nil
	}
	delete(sites, domain)
	return s.SetSites(sites)
}
