package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/focusninja/internal/store"
)

type jsonExport struct {
	ExportedAt string      `json:"exported_at"`
	Count      int         `json:"count"`
	Entries    []jsonEntry `json:"entries"`
}

type jsonEntry struct {
	Date      string  `json:"date"`
	Domain    string  `json:"domain"`
	Category  string  `json:"category"`
	Visits    int     `json:"visits"`
	TimeSec   float64 `json:"time_seconds"`
	Time      string  `json:"time"`
	LastVisit string  `json:"last_visit,omitempty"`
}

func ToJSON(usage store.Usage, sites store.Sites, path string) error {
	rows := flatten(usage)
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(rows),
	}

	for _, r := range rows {
		lastVisit := ""
		if r.Usage.LastVisit > 0 {
			lastVisit = time.UnixMilli(r.Usage.LastVisit).Local().Format(time.RFC3339)
		}

		export.Entries = append(export.Entries, jsonEntry{
			Date:      r.Date,
			Domain:    r.Domain,
			Category:  categoryOf(sites, r.Domain),
			Visits:    r.Usage.Visits,
			TimeSec:   r.Usage.TimeSpent,
			Time:      formatDuration(int64(r.Usage.TimeSpent)),
			LastVisit: lastVisit,
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
