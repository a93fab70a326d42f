package store

func (s *Store) Usage() (Usage, error) {
	var usage Usage
	if err := s.getRecord(KeyUsage, &usage); err != nil {
		return nil, err
	}
	if usage == nil {
		usage = Usage{}
	}
	return usage, nil
}

func (s *Store) SetUsage(usage Usage) error {
	return s.setRecord(KeyUsage, usage)
}

// Day returns the usage bucket for one date, never nil.
func (u Usage) Day(date string) map[string]DomainUsage {
	if day, ok := u[date]; ok {
		return day
	}
	return map[string]DomainUsage{}
}

// Bump applies fn to the entry for (date, domain), creating the day
// bucket and a zero entry as needed.
func (u Usage) Bump(date, domain string, fn func(*DomainUsage)) {
	day := u[date]
	if day == nil {
		day = map[string]DomainUsage{}
		u[date] = day
	}
	entry := day[domain]
	fn(&entry)
	day[domain] = entry
}

func (s *Store) Pomodoro() (PomodoroState, error) {
	var p PomodoroState
	err := s.getRecord(KeyPomodoro, &p)
	return p, err
}

func (s *Store) SetPomodoro(p PomodoroState) error {
	return s.setRecord(KeyPomodoro, p)
}

func (s *Store) Modes() (ModeSettings, error) {
	var m ModeSettings
	err := s.getRecord(KeyModes, &m)
	return m, err
}

func (s *Store) SetModes(m ModeSettings) error {
	return s.setRecord(KeyModes, m)
}

func (s *Store) Snooze() (SnoozeStatus, error) {
	var snooze SnoozeStatus
	if err := s.getRecord(KeySnooze, &snooze); err != nil {
		return nil, err
	}
	if snooze == nil {
		snooze = SnoozeStatus{}
	}
	return snooze, nil
}

func (s *Store) SetSnooze(snooze SnoozeStatus) error {
	return s.setRecord(KeySnooze, snooze)
}
