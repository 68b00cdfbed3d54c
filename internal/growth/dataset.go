// Package growth maintains the aggregated pull-count dataset for tracked
// repositories and derives monthly growth summaries from it.
package growth

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/fedora-infra/quaystats/internal/model"
)

// Record is one row of the growth dataset: a per-day event count for one
// repository.
type Record struct {
	Date        string // YYYY-MM-DD
	Repo        string
	Kind        string
	Count       int
	DatetimeStr string // original API datetime, kept for traceability
}

// Key identifies a record for dedup purposes.
func (r Record) Key() string {
	return fmt.Sprintf("%s|%s|%s", r.Date, r.Repo, r.Kind)
}

var csvHeader = []string{"date", "repo", "kind", "count", "datetime_str"}

// LoadDataset reads the growth CSV. A missing file is not an error: it
// returns an empty dataset so first runs start clean.
func LoadDataset(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "growth: open %s", path)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, eris.Wrapf(err, "growth: read %s", path)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	records := make([]Record, 0, len(rows)-1)
	for i, row := range rows[1:] { // skip header
		if len(row) < 5 {
			return nil, eris.Errorf("growth: %s row %d: expected 5 columns, got %d", path, i+2, len(row))
		}
		count, err := strconv.Atoi(row[3])
		if err != nil {
			return nil, eris.Wrapf(err, "growth: %s row %d: parse count %q", path, i+2, row[3])
		}
		records = append(records, Record{
			Date:        row[0],
			Repo:        row[1],
			Kind:        row[2],
			Count:       count,
			DatetimeStr: row[4],
		})
	}
	return records, nil
}

// SaveDataset writes the dataset with a header row.
func SaveDataset(path string, records []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "growth: create %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return eris.Wrap(err, "growth: write header")
	}
	for _, r := range records {
		row := []string{r.Date, r.Repo, r.Kind, strconv.Itoa(r.Count), r.DatetimeStr}
		if err := w.Write(row); err != nil {
			return eris.Wrap(err, "growth: write row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrapf(err, "growth: flush %s", path)
	}
	return nil
}

// Merge appends incoming aggregated entries to the existing dataset, skipping
// entries whose date|repo|kind key is already present. Existing rows keep
// their position. Returns the merged dataset and the counts of added and
// skipped entries.
func Merge(existing []Record, incoming []model.AggregatedEntry) (merged []Record, added, skipped int) {
	seen := make(map[string]struct{}, len(existing))
	for _, r := range existing {
		seen[r.Key()] = struct{}{}
	}

	merged = existing
	for _, e := range incoming {
		r := Record{
			Date:        e.Date,
			Repo:        e.Repo,
			Kind:        e.Kind,
			Count:       e.Count,
			DatetimeStr: e.Datetime,
		}
		if _, dup := seen[r.Key()]; dup {
			skipped++
			continue
		}
		seen[r.Key()] = struct{}{}
		merged = append(merged, r)
		added++
	}
	return merged, added, skipped
}
