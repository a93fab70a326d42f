package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/sadopc/focusninja/internal/store"
)

// row is one (date, domain) usage line, flattened for export.
type row struct {
	Date   string
	Domain string
	Usage  store.DomainUsage
}

// flatten orders the nested usage map by date then domain so exports
// are deterministic.
func flatten(usage store.Usage) []row {
	var rows []row
	for date, day := range usage {
		for domain, u := range day {
			rows = append(rows, row{Date: date, Domain: domain, Usage: u})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Date != rows[j].Date {
			return rows[i].Date < rows[j].Date
		}
		return rows[i].Domain < rows[j].Domain
	})
	return rows
}

func categoryOf(sites store.Sites, domain string) string {
	if site, ok := sites[domain]; ok {
		return string(site.Category)
	}
	return "Untracked"
}

func ToCSV(usage store.Usage, sites store.Sites, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"Date", "Domain", "Category", "Visits", "Time (s)", "Time", "Last Visit"}); err != nil {
		return err
	}

	for _, r := range flatten(usage) {
		lastVisit := ""
		if r.Usage.LastVisit > 0 {
			lastVisit = time.UnixMilli(r.Usage.LastVisit).Local().Format(time.RFC3339)
		}

		record := []string{
			r.Date,
			r.Domain,
			categoryOf(sites, r.Domain),
			fmt.Sprintf("%d", r.Usage.Visits),
			fmt.Sprintf("%.0f", r.Usage.TimeSpent),
			formatDuration(int64(r.Usage.TimeSpent)),
			lastVisit,
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	return w.Error()
}

func formatDuration(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
