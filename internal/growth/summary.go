package growth

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// RepoSummary tracks monthly pull totals for one repository.
type RepoSummary struct {
	MonthlyPulls     map[string]int `json:"monthly_pulls"`
	TotalPulls       int            `json:"total_pulls"`
	MonthsTracked    int            `json:"months_tracked"`
	OverallGrowthPct *float64       `json:"overall_growth_pct,omitempty"`
}

// Summary is the persisted monthly growth summary across repositories.
type Summary struct {
	LastUpdated  time.Time              `json:"last_updated"`
	Repositories map[string]RepoSummary `json:"repositories"`
}

// MonthlyPulls aggregates pull_repo counts per repository and month (YYYY-MM).
// Records without a date are skipped.
func MonthlyPulls(records []Record) map[string]map[string]int {
	out := map[string]map[string]int{}
	for _, r := range records {
		if r.Kind != "pull_repo" || len(r.Date) < 7 {
			continue
		}
		month := r.Date[:7]
		if out[r.Repo] == nil {
			out[r.Repo] = map[string]int{}
		}
		out[r.Repo][month] += r.Count
	}
	return out
}

// BuildSummary merges the monthly pull totals derived from records into an
// existing summary. Months already tracked keep their values unless the new
// dataset provides an updated total for the same month. now becomes the
// summary's last_updated stamp.
func BuildSummary(records []Record, existing *Summary, now time.Time) *Summary {
	monthly := MonthlyPulls(records)

	repos := map[string]RepoSummary{}
	if existing != nil {
		for repo, rs := range existing.Repositories {
			repos[repo] = rs
		}
	}

	for repo, months := range monthly {
		pulls := map[string]int{}
		for m, c := range repos[repo].MonthlyPulls {
			pulls[m] = c
		}
		for m, c := range months {
			pulls[m] = c
		}

		rs := RepoSummary{
			MonthlyPulls:  pulls,
			MonthsTracked: len(pulls),
		}
		for _, c := range pulls {
			rs.TotalPulls += c
		}
		if pct, ok := overallGrowthPct(pulls); ok {
			rs.OverallGrowthPct = &pct
		}
		repos[repo] = rs
	}

	return &Summary{LastUpdated: now.UTC(), Repositories: repos}
}

// overallGrowthPct compares the first and last tracked month. It is undefined
// when fewer than two months are tracked or the first month had no pulls.
func overallGrowthPct(pulls map[string]int) (float64, bool) {
	if len(pulls) < 2 {
		return 0, false
	}
	months := sortedMonths(pulls)
	first, last := pulls[months[0]], pulls[months[len(months)-1]]
	if first <= 0 {
		return 0, false
	}
	pct := (float64(last-first) / float64(first)) * 100
	return math.Round(pct*100) / 100, true
}

func sortedMonths(pulls map[string]int) []string {
	months := make([]string, 0, len(pulls))
	for m := range pulls {
		months = append(months, m)
	}
	sort.Strings(months)
	return months
}

// LoadSummary reads a previously saved summary. A missing file returns an
// empty summary.
func LoadSummary(path string) (*Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Summary{Repositories: map[string]RepoSummary{}}, nil
		}
		return nil, eris.Wrapf(err, "growth: read summary %s", path)
	}

	var s Summary
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, eris.Wrapf(err, "growth: decode summary %s", path)
	}
	if s.Repositories == nil {
		s.Repositories = map[string]RepoSummary{}
	}
	return &s, nil
}

// SaveSummary writes the summary as indented JSON. Map keys serialize in
// sorted order, so months and repositories stay chronologically stable
// across runs.
func SaveSummary(path string, s *Summary) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return eris.Wrap(err, "growth: encode summary")
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return eris.Wrapf(err, "growth: write summary %s", path)
	}
	return nil
}

// PrintSummary writes a human-readable monthly growth summary. Counts use
// thousands separators.
func PrintSummary(w io.Writer, records []Record) {
	monthly := MonthlyPulls(records)
	p := message.NewPrinter(language.English)

	repos := make([]string, 0, len(monthly))
	for repo := range monthly {
		repos = append(repos, repo)
	}
	sort.Strings(repos)

	fmt.Fprintln(w, "MONTHLY GROWTH SUMMARY")

	for _, repo := range repos {
		pulls := monthly[repo]
		months := sortedMonths(pulls)

		total := 0
		for _, c := range pulls {
			total += c
		}

		fmt.Fprintf(w, "\n%s:\n", repo)
		p.Fprintf(w, "  Total pulls: %d\n", total)

		if len(months) > 1 {
			first, last := pulls[months[0]], pulls[months[len(months)-1]]
			if first > 0 {
				pct := (float64(last-first) / float64(first)) * 100
				p.Fprintf(w, "  Growth: %d -> %d (%+.1f%%)\n", first, last, pct)
			}
		}

		fmt.Fprintln(w, "  Monthly breakdown:")
		for _, m := range months {
			p.Fprintf(w, "    %s: %d\n", m, pulls[m])
		}
	}
}
