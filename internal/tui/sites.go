package tui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/focusninja/internal/background"
	"github.com/sadopc/focusninja/internal/store"
)

type siteRow struct {
	domain string
	site   store.TrackedSite
}

type sitesModel struct {
	store  *store.Store
	width  int
	height int

	rows   []siteRow
	cursor int

	formActive bool
	form       *huh.Form

	// Form field pointers (survive value copies)
	formDomain     *string
	formCategory   *string
	formTimeLimit  *string
	formVisitLimit *string
}

func newSitesModel(s *store.Store) sitesModel {
	domain, category, timeLimit, visitLimit := "", string(store.CategoryNeutral), "", ""
	return sitesModel{
		store:          s,
		formDomain:     &domain,
		formCategory:   &category,
		formTimeLimit:  &timeLimit,
		formVisitLimit: &visitLimit,
	}
}

func (m *sitesModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

type sitesDataMsg struct {
	rows []siteRow
}

func (m sitesModel) refresh() tea.Cmd {
	return func() tea.Msg {
		sites, _ := m.store.Sites()
		rows := make([]siteRow, 0, len(sites))
		for domain, site := range sites {
			rows = append(rows, siteRow{domain: domain, site: site})
		}
		sort.Slice(rows, func(i, j int) bool { return rows[i].domain < rows[j].domain })
		return sitesDataMsg{rows: rows}
	}
}

func (m sitesModel) update(msg tea.Msg) (sitesModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case sitesDataMsg:
		m.rows = msg.rows
		if m.cursor >= len(m.rows) {
			m.cursor = max(0, len(m.rows)-1)
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.rows)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.New):
			return m.showNewSiteForm()
		case key.Matches(msg, keys.Delete):
			if len(m.rows) > 0 {
				domain := m.rows[m.cursor].domain
				if err := m.store.RemoveSite(domain); err != nil {
					return m, errStatus(err)
				}
				return m, tea.Batch(m.refresh(), func() tea.Msg {
					return statusMsg{text: "Stopped tracking " + domain}
				})
			}
		}
	}
	return m, nil
}

func (m sitesModel) showNewSiteForm() (sitesModel, tea.Cmd) {
	*m.formDomain = ""
	*m.formCategory = string(store.CategoryNeutral)
	*m.formTimeLimit = ""
	*m.formVisitLimit = ""

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Domain").Placeholder("reddit.com").Value(m.formDomain),
			huh.NewSelect[string]().Title("Category").
				Options(
					huh.NewOption("Productive", string(store.CategoryProductive)),
					huh.NewOption("Unproductive", string(store.CategoryUnproductive)),
					huh.NewOption("Neutral", string(store.CategoryNeutral)),
				).Value(m.formCategory),
			huh.NewInput().Title("Time limit (min/day, empty for none)").Value(m.formTimeLimit),
			huh.NewInput().Title("Visit limit (per day, empty for none)").Value(m.formVisitLimit),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m sitesModel) updateForm(msg tea.Msg) (sitesModel, tea.Cmd) {
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
		return m, m.saveSite()
	}

	return m, cmd
}

func (m sitesModel) saveSite() tea.Cmd {
	domain := background.CanonicalDomain(*m.formDomain)
	site := store.TrackedSite{Category: store.SiteCategory(*m.formCategory)}

	if v := strings.TrimSpace(*m.formTimeLimit); v != "" {
		mins, err := strconv.Atoi(v)
		if err != nil || mins <= 0 {
			return func() tea.Msg {
				return statusMsg{text: "Time limit must be a positive number of minutes", isError: true}
			}
		}
		secs := mins * 60
		site.TimeLimit = &secs
	}
	if v := strings.TrimSpace(*m.formVisitLimit); v != "" {
		visits, err := strconv.Atoi(v)
		if err != nil || visits <= 0 {
			return func() tea.Msg {
				return statusMsg{text: "Visit limit must be a positive number", isError: true}
			}
		}
		site.VisitLimit = &visits
	}

	if err := m.store.AddSite(domain, site); err != nil {
		return func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
	}
	return tea.Batch(m.refresh(), func() tea.Msg {
		return statusMsg{text: "Now tracking " + domain}
	})
}

func (m sitesModel) view() string {
	w := m.width - 4

	if m.formActive && m.form != nil {
		title := titleStyle.Render("Track Site")
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View())
		return panelStyle.Width(w).Render(content)
	}

	title := titleStyle.Render("Tracked Sites")

	if len(m.rows) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No tracked sites. Press n to add one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-3s %-28s %-14s %-12s %-12s", "", "Domain", "Category", "Time limit", "Visit limit")))

	for i, r := range m.rows {
		cursor := "  "
		style := normalItemStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		dot := categoryStyle(string(r.site.Category)).Render("●")
		timeLimit := "—"
		if r.site.TimeLimit != nil {
			timeLimit = fmt.Sprintf("%d min", *r.site.TimeLimit/60)
		}
		visitLimit := "—"
		if r.site.VisitLimit != nil {
			visitLimit = strconv.Itoa(*r.site.VisitLimit)
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%s %-28s %-14s %-12s %-12s",
			cursor, dot, r.domain, r.site.Category, timeLimit, visitLimit)))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: track site  d: stop tracking"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
