package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/focusninja/internal/store"
)

var priorityOrder = map[store.TaskPriority]int{
	store.PriorityHigh:   0,
	store.PriorityMedium: 1,
	store.PriorityLow:    2,
}

type tasksModel struct {
	store  *store.Store
	width  int
	height int

	tasks  []store.Task
	cursor int

	formActive bool
	form       *huh.Form

	// Form field pointers (survive value copies)
	formText     *string
	formPriority *string
}

func newTasksModel(s *store.Store) tasksModel {
	text, priority := "", string(store.PriorityMedium)
	return tasksModel{
		store:        s,
		formText:     &text,
		formPriority: &priority,
	}
}

func (m *tasksModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

type tasksDataMsg struct {
	tasks []store.Task
}

func (m tasksModel) refresh() tea.Cmd {
	return func() tea.Msg {
		tasks, _ := m.store.Tasks()
		// High first, then newest within a priority.
		sort.SliceStable(tasks, func(i, j int) bool {
			pi, pj := priorityOrder[tasks[i].Priority], priorityOrder[tasks[j].Priority]
			if pi != pj {
				return pi < pj
			}
			return tasks[i].CreatedAt > tasks[j].CreatedAt
		})
		return tasksDataMsg{tasks: tasks}
	}
}

func (m tasksModel) update(msg tea.Msg) (tasksModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tasksDataMsg:
		m.tasks = msg.tasks
		if m.cursor >= len(m.tasks) {
			m.cursor = max(0, len(m.tasks)-1)
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.tasks)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.New):
			return m.showNewTaskForm()
		case key.Matches(msg, keys.Toggle):
			if len(m.tasks) > 0 {
				if err := m.store.ToggleTask(m.tasks[m.cursor].ID); err != nil {
					return m, errStatus(err)
				}
				return m, m.refresh()
			}
		case key.Matches(msg, keys.Delete):
			if len(m.tasks) > 0 {
				if err := m.store.DeleteTask(m.tasks[m.cursor].ID); err != nil {
					return m, errStatus(err)
				}
				return m, m.refresh()
			}
		}
	}
	return m, nil
}

func (m tasksModel) showNewTaskForm() (tasksModel, tea.Cmd) {
	*m.formText = ""
	*m.formPriority = string(store.PriorityMedium)

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Task").Value(m.formText),
			huh.NewSelect[string]().Title("Priority").
				Options(
					huh.NewOption("High", string(store.PriorityHigh)),
					huh.NewOption("Medium", string(store.PriorityMedium)),
					huh.NewOption("Low", string(store.PriorityLow)),
				).Value(m.formPriority),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m tasksModel) updateForm(msg tea.Msg) (tasksModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		if strings.TrimSpace(*m.formText) != "" {
			if _, err := m.store.AddTask(*m.formText, store.TaskPriority(*m.formPriority)); err != nil {
				return m, func() tea.Msg {
					return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
				}
			}
		}
		return m, m.refresh()
	}

	return m, cmd
}

func (m tasksModel) view() string {
	w := m.width - 4

	if m.formActive && m.form != nil {
		title := titleStyle.Render("New Task")
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View())
		return panelStyle.Width(w).Render(content)
	}

	title := titleStyle.Render("Tasks")

	if len(m.tasks) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No tasks. Press n to add one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for i, task := range m.tasks {
		cursor := "  "
		style := normalItemStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		check := "☐"
		text := task.Text
		if task.Completed {
			check = successStyle.Render("☑")
			text = mutedStyle.Render(text)
		}
		prio := priorityBadge(task.Priority)
		rows = append(rows, fmt.Sprintf("%s %s %s", style.Render(cursor+check), prio, text))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  space: toggle  d: delete"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func priorityBadge(p store.TaskPriority) string {
	switch p {
	case store.PriorityHigh:
		return errorStyle.Render("[H]")
	case store.PriorityLow:
		return mutedStyle.Render("[L]")
	}
	return warningStyle.Render("[M]")
}
