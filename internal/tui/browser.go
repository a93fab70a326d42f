package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/focusninja/internal/background"
	"github.com/sadopc/focusninja/internal/store"
)

// The TUI stands in for the browser: one simulated tab whose
// navigations run through the same engine handlers a real web
// navigation would.
const browserTabID = 1

type browserModel struct {
	store  *store.Store
	engine *background.Engine
	width  int
	height int

	currentURL string
	blocked    *background.Decision
	blockedURL string

	today map[string]store.DomainUsage
	sites store.Sites

	formActive bool
	form       *huh.Form

	// Form field pointer (survives value copies)
	formURL *string
}

func newBrowserModel(s *store.Store, e *background.Engine) browserModel {
	url := ""
	return browserModel{
		store:   s,
		engine:  e,
		formURL: &url,
	}
}

func (b browserModel) Init() tea.Cmd {
	return b.loadData()
}

func (b *browserModel) setSize(w, h int) {
	b.width = w
	b.height = h
}

type browserDataMsg struct {
	today map[string]store.DomainUsage
	sites store.Sites
}

func (b browserModel) loadData() tea.Cmd {
	return func() tea.Msg {
		usage, _ := b.store.Usage()
		sites, _ := b.store.Sites()
		return browserDataMsg{
			today: usage.Day(time.Now().Format("2006-01-02")),
			sites: sites,
		}
	}
}

func (b browserModel) update(msg tea.Msg) (browserModel, tea.Cmd) {
	if b.formActive && b.form != nil {
		return b.updateForm(msg)
	}

	switch msg := msg.(type) {
	case browserDataMsg:
		b.today = msg.today
		b.sites = msg.sites
		return b, nil

	case tea.KeyMsg:
		if b.blocked != nil {
			return b.updateBlocked(msg)
		}
		switch {
		case key.Matches(msg, keys.Open):
			return b.showURLForm()
		}
	}
	return b, nil
}

func (b browserModel) updateBlocked(msg tea.KeyMsg) (browserModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Snooze):
		domain := b.blocked.Domain
		ok, err := b.engine.ActivateSnooze(domain)
		if err != nil {
			return b, errStatus(err)
		}
		if !ok {
			return b, func() tea.Msg {
				return statusMsg{text: "Snooze already used today for " + domain, isError: true}
			}
		}
		// A successful snooze re-attempts the blocked navigation so
		// the user lands on the page they asked for.
		original := b.blockedURL
		b.blocked = nil
		b.blockedURL = ""
		next, cmd := b.navigate(original)
		return next, tea.Batch(cmd, func() tea.Msg {
			return statusMsg{text: "Snoozed " + domain}
		})
	case key.Matches(msg, keys.Back):
		b.blocked = nil
		b.blockedURL = ""
	case key.Matches(msg, keys.Open):
		b.blocked = nil
		b.blockedURL = ""
		return b.showURLForm()
	}
	return b, nil
}

func (b browserModel) showURLForm() (browserModel, tea.Cmd) {
	*b.formURL = ""
	b.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Address").Placeholder("https://example.com").Value(b.formURL),
		),
	).WithShowHelp(true).WithShowErrors(true)
	b.formActive = true
	return b, b.form.Init()
}

func (b browserModel) updateForm(msg tea.Msg) (browserModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			b.formActive = false
			b.form = nil
			return b, nil
		}
	}

	form, cmd := b.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		b.form = f
	}

	if b.form.State == huh.StateCompleted {
		b.formActive = false
		raw := strings.TrimSpace(*b.formURL)
		if raw == "" {
			return b, nil
		}
		if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
			raw = "https://" + raw
		}
		return b.navigate(raw)
	}

	return b, cmd
}

func (b browserModel) navigate(raw string) (browserModel, tea.Cmd) {
	dec, err := b.engine.HandleBeforeNavigate(browserTabID, raw)
	if err != nil {
		return b, func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
	}

	if !dec.Allowed {
		b.blocked = &dec
		b.blockedURL = raw
		return b, nil
	}

	if err := b.engine.HandleCommitted(browserTabID, raw, background.TransitionTyped, time.Now()); err != nil {
		return b, func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
	}
	if err := b.engine.HandleTabURLChanged(browserTabID, raw); err != nil {
		return b, func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
	}

	b.currentURL = raw
	b.blocked = nil
	b.blockedURL = ""
	return b, b.loadData()
}

func (b browserModel) view() string {
	if b.formActive && b.form != nil {
		title := titleStyle.Render("Open URL")
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", b.form.View())
		return panelStyle.Width(b.width - 4).Render(content)
	}

	w := b.width - 4

	var panels []string
	if b.blocked != nil {
		panels = append(panels, b.renderBlockedPanel(w))
	} else {
		panels = append(panels, b.renderTabPanel(w))
	}
	panels = append(panels, b.renderTodayPanel(w))

	return lipgloss.JoinVertical(lipgloss.Left, panels...)
}

func (b browserModel) renderTabPanel(w int) string {
	title := titleStyle.Render("Active Tab")

	if b.currentURL == "" {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No page open. Press o to open a URL."),
		)
		return panelStyle.Width(w).Render(content)
	}

	domain := b.engine.ActiveDomain()
	urlLine := highlightStyle.Render(b.currentURL)

	domainLine := mutedStyle.Render("tracking: off")
	if site, ok := b.sites[domain]; ok {
		cat := categoryStyle(string(site.Category)).Render(string(site.Category))
		limits := siteLimits(site)
		domainLine = fmt.Sprintf("%s  %s%s", titleStyle.Render(domain), cat, limits)
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		urlLine,
		domainLine,
	)
	return activePanelStyle.Width(w).Render(content)
}

func (b browserModel) renderBlockedPanel(w int) string {
	title := errorStyle.Bold(true).Render("⛔ Navigation Blocked")
	reason := titleStyle.Render(b.blocked.Reason)
	original := mutedStyle.Render(truncateURL(b.blockedURL, 64))

	content := lipgloss.JoinVertical(lipgloss.Center,
		title,
		"",
		reason,
		original,
		"",
		mutedStyle.Render("z: snooze (once per day)  o: open another url  esc: go back"),
	)
	return blockedPanelStyle.Width(w).Render(content)
}

func truncateURL(raw string, max int) string {
	r := []rune(raw)
	if len(r) <= max {
		return raw
	}
	return string(r[:max]) + "…"
}

func (b browserModel) renderTodayPanel(w int) string {
	title := titleStyle.Render("Today")

	if len(b.today) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("No usage recorded yet today"),
		)
		return panelStyle.Width(w).Render(content)
	}

	domains := make([]string, 0, len(b.today))
	for d := range b.today {
		domains = append(domains, d)
	}
	sort.Slice(domains, func(i, j int) bool {
		return b.today[domains[i]].TimeSpent > b.today[domains[j]].TimeSpent
	})

	var rows []string
	rows = append(rows, title)
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-28s %10s %8s", "Domain", "Time", "Visits")))
	for _, d := range domains {
		u := b.today[d]
		cat := "•"
		if site, ok := b.sites[d]; ok {
			cat = categoryStyle(string(site.Category)).Render("●")
		}
		rows = append(rows, fmt.Sprintf("  %s %-26s %10s %8d", cat, d, formatSeconds(u.TimeSpent), u.Visits))
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func siteLimits(site store.TrackedSite) string {
	var parts []string
	if site.TimeLimit != nil {
		parts = append(parts, fmt.Sprintf("%d min/day", *site.TimeLimit/60))
	}
	if site.VisitLimit != nil {
		parts = append(parts, fmt.Sprintf("%d visits/day", *site.VisitLimit))
	}
	if len(parts) == 0 {
		return ""
	}
	return mutedStyle.Render("  [" + strings.Join(parts, ", ") + "]")
}
