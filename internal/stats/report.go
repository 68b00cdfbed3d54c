package stats

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Format selects a report rendering.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Render writes the report to w in the requested format. filename labels the
// text rendering with the source log file.
func (r *Report) Render(w io.Writer, format Format, filename string) error {
	switch format {
	case FormatText, "":
		r.renderText(w, filename)
		return nil
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(r), "stats: encode json report")
	case FormatYAML:
		return eris.Wrap(yaml.NewEncoder(w).Encode(r), "stats: encode yaml report")
	default:
		return eris.Errorf("stats: unknown report format %q", format)
	}
}

func (r *Report) renderText(w io.Writer, filename string) {
	fmt.Fprintf(w, "--- Statistics for Log File: %s ---\n", filename)

	fmt.Fprintf(w, "\n1. Log Entries Overview:\n")
	fmt.Fprintf(w, "   - Total Log Entries: %d\n", r.TotalEntries)
	fmt.Fprintf(w, "   - Earliest Event Time: %s\n", r.EarliestEventTime)
	fmt.Fprintf(w, "   - Latest Event Time:   %s\n", r.LatestEventTime)

	fmt.Fprintf(w, "\n2. Event Kind Breakdown:\n")
	renderSection(w, r.EventKinds, "No event kind data available.")

	fmt.Fprintf(w, "\n3. Top %d User Agents:\n", len(r.TopUserAgents))
	renderQuotedSection(w, r.TopUserAgents, "No user agent data available.")

	fmt.Fprintf(w, "\n4. Top %d IP Addresses:\n", len(r.TopIPAddresses))
	renderSection(w, r.TopIPAddresses, "No IP address data available.")

	fmt.Fprintf(w, "\n5. Top %d Pulled Tags (for 'pull_repo' events):\n", len(r.TopPulledTags))
	renderSection(w, r.TopPulledTags, "No pulled tag data available or no 'pull_repo' events with tags.")

	fmt.Fprintf(w, "\n6. Top %d Countries (by IP location):\n", len(r.TopCountries))
	renderSection(w, r.TopCountries, "No country data available.")

	fmt.Fprintf(w, "\n7. Top %d Performers (Users/Robots):\n", len(r.TopPerformers))
	renderSection(w, r.TopPerformers, "No performer data available.")

	fmt.Fprintf(w, "\n--- End of Statistics ---\n")
}

func renderSection(w io.Writer, pairs []Pair, empty string) {
	if len(pairs) == 0 {
		fmt.Fprintf(w, "  %s\n", empty)
		return
	}
	for _, p := range pairs {
		fmt.Fprintf(w, "  - %s: %d\n", p.Key, p.Count)
	}
}

func renderQuotedSection(w io.Writer, pairs []Pair, empty string) {
	if len(pairs) == 0 {
		fmt.Fprintf(w, "  %s\n", empty)
		return
	}
	for _, p := range pairs {
		fmt.Fprintf(w, "  - %q: %d\n", p.Key, p.Count)
	}
}
