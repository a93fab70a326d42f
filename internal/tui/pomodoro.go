package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/focusninja/internal/background"
	"github.com/sadopc/focusninja/internal/store"
)

// pomodoroModel renders the engine's timer; all transitions happen in
// the engine so the display survives restarts with the same state a
// real background process would reload.
type pomodoroModel struct {
	store  *store.Store
	engine *background.Engine
	width  int
	height int

	state     store.PomodoroState
	remaining time.Duration

	deepWork          bool
	deepWorkRemaining time.Duration
}

func newPomodoroModel(s *store.Store, e *background.Engine) pomodoroModel {
	return pomodoroModel{store: s, engine: e}
}

func (p *pomodoroModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

type pomodoroDataMsg struct {
	state             store.PomodoroState
	remaining         time.Duration
	deepWork          bool
	deepWorkRemaining time.Duration
}

func (p pomodoroModel) refresh() tea.Cmd {
	return func() tea.Msg {
		state, remaining, err := p.engine.PomodoroStatus()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		active, dwRemaining, err := p.engine.DeepWorkStatus()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		return pomodoroDataMsg{
			state:             state,
			remaining:         remaining,
			deepWork:          active,
			deepWorkRemaining: dwRemaining,
		}
	}
}

func (p pomodoroModel) update(msg tea.Msg) (pomodoroModel, tea.Cmd) {
	switch msg := msg.(type) {
	case pomodoroDataMsg:
		p.state = msg.state
		p.remaining = msg.remaining
		p.deepWork = msg.deepWork
		p.deepWorkRemaining = msg.deepWorkRemaining
		return p, nil

	case tickMsg:
		return p, p.refresh()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Start):
			if err := p.engine.StartTimer(); err != nil {
				return p, errStatus(err)
			}
			return p, p.refresh()
		case key.Matches(msg, keys.Pause):
			if err := p.engine.PauseTimer(); err != nil {
				return p, errStatus(err)
			}
			return p, p.refresh()
		case key.Matches(msg, keys.Reset):
			if err := p.engine.ResetTimer(); err != nil {
				return p, errStatus(err)
			}
			return p, p.refresh()
		case key.Matches(msg, keys.DeepWork):
			if err := p.engine.ToggleDeepWork(!p.deepWork); err != nil {
				return p, errStatus(err)
			}
			return p, p.refresh()
		}
	}
	return p, nil
}

func errStatus(err error) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
	}
}

func (p pomodoroModel) view() string {
	w := p.width - 4

	title := titleStyle.Render("Pomodoro")

	var timeDisplay, phaseLabel string
	switch p.state.Phase() {
	case store.PhaseRunningWork:
		timeDisplay = timerRunningStyle.Width(w - 6).Render(formatClock(p.remaining))
		phaseLabel = successStyle.Bold(true).Render("WORK")
	case store.PhaseRunningBreak:
		timeDisplay = highlightStyle.Bold(true).Width(w - 6).Align(lipgloss.Center).Render(formatClock(p.remaining))
		phaseLabel = highlightStyle.Bold(true).Render("BREAK")
	default:
		frozen := time.Duration(p.state.RemainingTime) * time.Second
		timeDisplay = timerPausedStyle.Width(w - 6).Render(formatClock(frozen))
		label := "PAUSED (work)"
		if !p.state.IsWork {
			label = "PAUSED (break)"
		}
		phaseLabel = warningStyle.Render(label)
	}

	sessions := mutedStyle.Render(fmt.Sprintf("Sessions today: %d", p.state.SessionsToday))

	timerPanel := panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Center,
			title, "", timeDisplay, phaseLabel, "", sessions,
		),
	)

	deepWorkPanel := p.renderDeepWorkPanel(w)

	controls := mutedStyle.Render("  s: start  space: pause  r: reset  w: toggle deep work")

	return lipgloss.JoinVertical(lipgloss.Left, timerPanel, deepWorkPanel, controls)
}

func (p pomodoroModel) renderDeepWorkPanel(w int) string {
	title := titleStyle.Render("Deep Work")

	if !p.deepWork {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("Off. Press w to block all unproductive sites for a while."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, successStyle.Bold(true).Render("● ACTIVE")+
		mutedStyle.Render("  "+formatDuration(p.deepWorkRemaining)+" remaining"))
	rows = append(rows, mutedStyle.Render("All Unproductive sites are blocked."))

	return activePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
