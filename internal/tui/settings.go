package tui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/focusninja/internal/background"
	"github.com/sadopc/focusninja/internal/store"
)

type settingsModel struct {
	store  *store.Store
	engine *background.Engine
	width  int
	height int

	settings []store.Setting
	pomodoro store.PomodoroSettings

	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	workDuration     *string
	breakDuration    *string
	deepWorkDuration *string
	snoozeDuration   *string
	sampleInterval   *string
}

func newSettingsModel(s *store.Store, e *background.Engine) settingsModel {
	wd, bd, dw, sn, si := "", "", "", "", ""
	return settingsModel{
		store:            s,
		engine:           e,
		workDuration:     &wd,
		breakDuration:    &bd,
		deepWorkDuration: &dw,
		snoozeDuration:   &sn,
		sampleInterval:   &si,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings []store.Setting
	pomodoro store.PomodoroSettings
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		settings, _ := s.store.GetAllSettings()
		p, _ := s.store.Pomodoro()
		return settingsDataMsg{settings: settings, pomodoro: p.Settings}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		s.pomodoro = msg.pomodoro
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.New):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.workDuration = strconv.Itoa(s.pomodoro.WorkDuration / 60)
	*s.breakDuration = strconv.Itoa(s.pomodoro.BreakDuration / 60)
	*s.deepWorkDuration = secsToMin(s.getVal("deep_work_duration", "3600"))
	*s.snoozeDuration = secsToMin(s.getVal("snooze_duration", "600"))
	*s.sampleInterval = s.getVal("sample_interval", "15")

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Work session (min)").Value(s.workDuration),
			huh.NewInput().Title("Break (min)").Value(s.breakDuration),
		).Title("Pomodoro"),
		huh.NewGroup(
			huh.NewInput().Title("Deep work session (min)").Value(s.deepWorkDuration),
			huh.NewInput().Title("Snooze window (min)").Value(s.snoozeDuration),
			huh.NewInput().Title("Sampling interval (sec)").Value(s.sampleInterval),
		).Title("Modes"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		if cmd := s.saveSettings(); cmd != nil {
			return s, tea.Batch(cmd, s.refresh())
		}
		return s, s.refresh()
	}

	return s, cmd
}

// saveSettings writes the mode settings rows, then hands the phase
// lengths to the engine: the pomodoro record is only ever written
// under the engine's lock, so a completion alarm cannot clobber (or
// be clobbered by) this save. New lengths apply from the next started
// phase; a running phase keeps its deadline.
func (s settingsModel) saveSettings() tea.Cmd {
	if err := s.store.SetSetting("deep_work_duration", minToSecs(*s.deepWorkDuration)); err != nil {
		return errStatus(err)
	}
	if err := s.store.SetSetting("snooze_duration", minToSecs(*s.snoozeDuration)); err != nil {
		return errStatus(err)
	}
	if err := s.store.SetSetting("sample_interval", *s.sampleInterval); err != nil {
		return errStatus(err)
	}

	work, brk := 0, 0
	if mins, err := strconv.Atoi(*s.workDuration); err == nil && mins > 0 {
		work = mins * 60
	}
	if mins, err := strconv.Atoi(*s.breakDuration); err == nil && mins > 0 {
		brk = mins * 60
	}
	if err := s.engine.UpdateDurations(work, brk); err != nil {
		return errStatus(err)
	}
	return nil
}

func (s settingsModel) getVal(k, fallback string) string {
	v, err := s.store.GetSetting(k)
	if err != nil {
		return fallback
	}
	return v
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Settings")
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	title := titleStyle.Render("Settings")
	hint := mutedStyle.Render("Press enter to edit settings")

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	workLabel := lipgloss.NewStyle().Width(24).Render("work_duration")
	rows = append(rows, fmt.Sprintf("  %s %s", workLabel,
		highlightStyle.Render(fmt.Sprintf("%d min", s.pomodoro.WorkDuration/60))))
	breakLabel := lipgloss.NewStyle().Width(24).Render("break_duration")
	rows = append(rows, fmt.Sprintf("  %s %s", breakLabel,
		highlightStyle.Render(fmt.Sprintf("%d min", s.pomodoro.BreakDuration/60))))

	for _, setting := range s.settings {
		label := lipgloss.NewStyle().Width(24).Render(setting.Key)
		value := highlightStyle.Render(formatSettingValue(setting.Key, setting.Value))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}

	rows = append(rows, "")
	rows = append(rows, hint)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formatSettingValue(k, v string) string {
	switch k {
	case "deep_work_duration", "snooze_duration":
		if secs, err := strconv.Atoi(v); err == nil {
			return fmt.Sprintf("%d min", secs/60)
		}
	case "sample_interval":
		return v + " sec"
	case "last_reset_date":
		if v == "" {
			return "—"
		}
	}
	return v
}

func secsToMin(s string) string {
	if secs, err := strconv.Atoi(s); err == nil {
		return strconv.Itoa(secs / 60)
	}
	return s
}

func minToSecs(s string) string {
	if mins, err := strconv.Atoi(s); err == nil {
		return strconv.Itoa(mins * 60)
	}
	return s
}
