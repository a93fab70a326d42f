package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/focusninja/internal/store"
)

type domainSummary struct {
	domain   string
	category store.SiteCategory
	visits   int
	seconds  float64
}

type reportsModel struct {
	store  *store.Store
	width  int
	height int

	date      string
	summaries []domainSummary

	chart barchart.Model
}

func newReportsModel(s *store.Store) reportsModel {
	return reportsModel{
		store: s,
		chart: barchart.New(60, 12),
	}
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

type reportsDataMsg struct {
	date      string
	summaries []domainSummary
}

func (r reportsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		date := time.Now().Format("2006-01-02")
		usage, _ := r.store.Usage()
		sites, _ := r.store.Sites()

		day := usage.Day(date)
		summaries := make([]domainSummary, 0, len(day))
		for domain, u := range day {
			category := store.SiteCategory("")
			if site, ok := sites[domain]; ok {
				category = site.Category
			}
			summaries = append(summaries, domainSummary{
				domain:   domain,
				category: category,
				visits:   u.Visits,
				seconds:  u.TimeSpent,
			})
		}
		sort.Slice(summaries, func(i, j int) bool {
			return summaries[i].seconds > summaries[j].seconds
		})
		return reportsDataMsg{date: date, summaries: summaries}
	}
}

func (r reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case reportsDataMsg:
		r.date = msg.date
		r.summaries = msg.summaries
		r.buildChart()
		return r, nil
	}
	return r, nil
}

func (r *reportsModel) buildChart() {
	chartWidth := r.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if r.height > 30 {
		chartHeight = 16
	}

	r.chart = barchart.New(chartWidth, chartHeight)

	var bars []barchart.BarData
	for _, s := range r.summaries {
		minutes := s.seconds / 60
		style := categoryStyle(string(s.category))
		label := s.domain
		if len(label) > 10 {
			label = label[:10]
		}
		bars = append(bars, barchart.BarData{
			Label: label,
			Values: []barchart.BarValue{
				{Name: s.domain, Value: minutes, Style: style},
			},
		})
	}
	if len(bars) == 0 {
		bars = []barchart.BarData{{
			Label:  "—",
			Values: []barchart.BarValue{{Name: "", Value: 0, Style: lipgloss.NewStyle().Foreground(colorSubtle)}},
		}}
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r reportsModel) view() string {
	w := r.width - 4

	dateLabel := mutedStyle.Render(r.date)
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Today's Usage"), "  ", dateLabel,
	)

	chartView := r.chart.View()
	axisLabel := mutedStyle.Render("  minutes per domain")
	tableView := r.renderSummaryTable(w)
	hint := mutedStyle.Render("  e: export")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", chartView, axisLabel, "", tableView, "", hint,
		),
	)
}

func (r reportsModel) renderSummaryTable(w int) string {
	if len(r.summaries) == 0 {
		return mutedStyle.Render("  No usage recorded yet today")
	}

	var rows []string
	headerRow := mutedStyle.Render(fmt.Sprintf("  %-28s %-14s %10s %8s", "Domain", "Category", "Time", "Visits"))
	rows = append(rows, headerRow)
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 62))))

	for _, s := range r.summaries {
		dot := categoryStyle(string(s.category)).Render("●")
		category := string(s.category)
		if category == "" {
			category = "—"
		}
		rows = append(rows, fmt.Sprintf("  %s %-26s %-14s %10s %8d",
			dot, s.domain, category, formatSeconds(s.seconds), s.visits,
		))
	}

	return strings.Join(rows, "\n")
}
