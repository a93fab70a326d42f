package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sadopc/focusninja/internal/store"
)

func sampleData() (store.Usage, store.Sites) {
	now := time.Now().UnixMilli()

	usage := store.Usage{
		"2026-08-30": {
			"example.com": {Visits: 2, TimeSpent: 3600, LastVisit: now},
		},
		"2026-08-31": {
			"example.com":  {Visits: 5, TimeSpent: 1800, LastVisit: now},
			"reddit.com":   {Visits: 12, TimeSpent: 5400, LastVisit: now},
			"unlisted.org": {Visits: 1, TimeSpent: 30},
		},
	}
	sites := store.Sites{
		"example.com": {Category: store.CategoryProductive},
		"reddit.com":  {Category: store.CategoryUnproductive},
	}
	return usage, sites
}

// ============================================================
// CSV
// ============================================================

func TestToCSV(t *testing.T) {
	usage, sites := sampleData()
	path := filepath.Join(t.TempDir(), "test.csv")

	if err := ToCSV(usage, sites, path); err != nil {
		t.Fatalf("ToCSV: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		t.Fatal(err)
	}

	// header + 4 data rows
	if len(records) != 5 {
		t.Fatalf("expected 5 rows (1 header + 4 data), got %d", len(records))
	}

	header := records[0]
	expectedHeader := []string{"Date", "Domain", "Category", "Visits", "Time (s)", "Time", "Last Visit"}
	for i, h := range expectedHeader {
		if header[i] != h {
			t.Fatalf("header[%d] = %q, want %q", i, header[i], h)
		}
	}

	// Rows come out ordered by date then domain.
	row := records[1]
	if row[0] != "2026-08-30" || row[1] != "example.com" {
		t.Fatalf("first row = %v", row)
	}
	if row[2] != "Productive" {
		t.Fatalf("Category = %q, want Productive", row[2])
	}
	if row[4] != "3600" {
		t.Fatalf("Time (s) = %q, want 3600", row[4])
	}
	if row[5] != "01:00:00" {
		t.Fatalf("Time = %q, want 01:00:00", row[5])
	}

	// A domain no longer tracked still exports, as Untracked.
	last := records[4]
	if last[1] != "unlisted.org" || last[2] != "Untracked" {
		t.Fatalf("untracked row = %v", last)
	}
	if last[6] != "" {
		t.Fatalf("never-visited last visit should be empty, got %q", last[6])
	}
}

func TestToCSVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")

	if err := ToCSV(nil, nil, path); err != nil {
		t.Fatal(err)
	}

	f, _ := os.Open(path)
	defer f.Close()
	r := csv.NewReader(f)
	records, _ := r.ReadAll()
	if len(records) != 1 {
		t.Fatalf("expected 1 row (header only), got %d", len(records))
	}
}

func TestToCSVBadPath(t *testing.T) {
	if err := ToCSV(nil, nil, "/nonexistent/dir/file.csv"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

// ============================================================
// JSON
// ============================================================

func TestToJSON(t *testing.T) {
	usage, sites := sampleData()
	path := filepath.Join(t.TempDir(), "test.json")

	if err := ToJSON(usage, sites, path); err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var result jsonExport
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if result.Count != 4 {
		t.Fatalf("count = %d, want 4", result.Count)
	}
	if result.ExportedAt == "" {
		t.Fatal("exported_at should not be empty")
	}

	e := result.Entries[0]
	if e.Date != "2026-08-30" || e.Domain != "example.com" {
		t.Fatalf("first entry = %+v", e)
	}
	if e.TimeSec != 3600 || e.Time != "01:00:00" {
		t.Fatalf("time fields = %f / %q", e.TimeSec, e.Time)
	}

	var reddit *jsonEntry
	for i := range result.Entries {
		if result.Entries[i].Domain == "reddit.com" {
			reddit = &result.Entries[i]
		}
	}
	if reddit == nil {
		t.Fatal("reddit.com missing from export")
	}
	if reddit.Category != "Unproductive" || reddit.Visits != 12 {
		t.Fatalf("reddit entry = %+v", reddit)
	}
}

func TestToJSONEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")

	if err := ToJSON(nil, nil, path); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	var result jsonExport
	json.Unmarshal(data, &result)

	if result.Count != 0 {
		t.Fatalf("count = %d, want 0", result.Count)
	}
	if result.Entries != nil {
		t.Fatal("entries should be nil/null for empty export")
	}
}

func TestToJSONPrettyPrinted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pretty.json")
	ToJSON(nil, nil, path)

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "\n") {
		t.Fatal("JSON should be pretty-printed with newlines")
	}
}
