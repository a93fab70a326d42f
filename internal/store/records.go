package store

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrBadShape marks a record whose stored value no longer decodes
// into its expected shape (external tampering). Callers reset such
// records to an empty valid shape instead of propagating.
var ErrBadShape = errors.New("malformed record")

// getRecord unmarshals the record under key into v. upgradeRecords
// seeds every known key at open, so absence after that is tampering.
func (s *Store) getRecord(key string, v any) error {
	var raw string
	err := s.db.QueryRow(`SELECT value FROM records WHERE key = ?`, key).Scan(&raw)
	if err != nil {
		return fmt.Errorf("get record %q: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("decode record %q: %w: %w", key, ErrBadShape, err)
	}
	return nil
}

// setRecord writes v as the whole record under key and notifies
// subscribers. A single upsert keeps the write atomic.
func (s *Store) setRecord(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode record %q: %w", key, err)
	}
	_, err = s.db.Exec(
		`INSERT INTO records (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, string(raw),
	)
	if err != nil {
		return fmt.Errorf("set record %q: %w", key, err)
	}
	s.notify(key)
	return nil
}

func (s *Store) hasRecord(key string) (bool, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM records WHERE key = ?`, key).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check record %q: %w", key, err)
	}
	return n > 0, nil
}

// upgradeRecords is the single versioned upgrade step run at open:
// it seeds absent records with defaults and patches records missing
// newly-introduced sub-fields, without touching existing user data.
func (s *Store) upgradeRecords() error {
	defaults := map[string]any{
		KeySites:    Sites{},
		KeyUsage:    Usage{},
		KeyPomodoro: defaultPomodoro(),
		KeyModes:    ModeSettings{},
		KeySnooze:   SnoozeStatus{},
		KeyTasks:    []Task{},
	}
	for key, def := range defaults {
		ok, err := s.hasRecord(key)
		if err != nil {
			return err
		}
		if !ok {
			if err := s.setRecord(key, def); err != nil {
				return err
			}
		}
	}

	// Older records may predate the settings sub-object or the
	// remainingTime field; fill them in once here instead of on
	// every read.
	var p PomodoroState
	if err := s.getRecord(KeyPomodoro, &p); err != nil {
		if !errors.Is(err, ErrBadShape) {
			return err
		}
		p = defaultPomodoro()
	}
	upgraded := false
	if p.Settings.WorkDuration <= 0 {
		p.Settings.WorkDuration = DefaultWorkDuration
		upgraded = true
	}
	if p.Settings.BreakDuration <= 0 {
		p.Settings.BreakDuration = DefaultBreakDuration
		upgraded = true
	}
	if p.RemainingTime <= 0 && !p.IsRunning && p.StartTime == nil {
		if p.IsWork {
			p.RemainingTime = float64(p.Settings.WorkDuration)
		} else {
			p.RemainingTime = float64(p.Settings.BreakDuration)
		}
		upgraded = true
	}
	if upgraded {
		if err := s.setRecord(KeyPomodoro, p); err != nil {
			return err
		}
	}

	// Tasks are plain UI data; if the record has drifted to a
	// non-array shape, reset it to an empty valid one.
	var tasks []Task
	if err := s.getRecord(KeyTasks, &tasks); err != nil {
		if !errors.Is(err, ErrBadShape) {
			return err
		}
		if err := s.setRecord(KeyTasks, []Task{}); err != nil {
			return err
		}
	}
	return nil
}
