// Package stats compiles summary statistics from a downloaded Quay usage-log
// file: event-kind breakdown, time range, and top-N rankings for user agents,
// client IPs, pulled tags, countries, and performers.
package stats

import (
	"encoding/json"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/fedora-infra/quaystats/internal/model"
)

// Report holds the compiled statistics for one log file.
type Report struct {
	TotalEntries      int    `json:"total_log_entries" yaml:"total_log_entries"`
	EarliestEventTime string `json:"earliest_event_time" yaml:"earliest_event_time"`
	LatestEventTime   string `json:"latest_event_time" yaml:"latest_event_time"`

	EventKinds     []Pair `json:"event_kind_breakdown" yaml:"event_kind_breakdown"`
	TopUserAgents  []Pair `json:"top_user_agents" yaml:"top_user_agents"`
	TopIPAddresses []Pair `json:"top_ip_addresses" yaml:"top_ip_addresses"`
	TopPulledTags  []Pair `json:"top_pulled_tags" yaml:"top_pulled_tags"`
	TopCountries   []Pair `json:"activity_by_country" yaml:"activity_by_country"`
	TopPerformers  []Pair `json:"top_performers" yaml:"top_performers"`
}

// Load reads a JSON log file produced by a fetch run. The document must be a
// JSON array of log entries.
func Load(path string) ([]model.LogEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "stats: read %s", path)
	}

	var entries []model.LogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		// Distinguish "valid JSON, wrong shape" from "not JSON at all".
		var probe any
		if jsonErr := json.Unmarshal(data, &probe); jsonErr != nil {
			return nil, eris.Wrapf(jsonErr, "stats: decode %s", path)
		}
		return nil, eris.Errorf("stats: %s: expected a JSON array of log entries", path)
	}
	return entries, nil
}

// Compile computes a Report over the given entries. topN bounds the ranked
// lists; entries with unparseable datetimes are skipped for the time range
// and logged at warn level.
func Compile(entries []model.LogEntry, topN int) *Report {
	kinds := Counter{}
	userAgents := Counter{}
	ips := Counter{}
	pulledTags := Counter{}
	countries := Counter{}
	performers := Counter{}

	var earliest, latest time.Time

	for _, e := range entries {
		kinds.Add(e.Kind)
		ips.Add(e.IP)
		userAgents.Add(e.Metadata.UserAgent)
		performers.Add(e.PerformerName())

		if e.Metadata.ResolvedIP != nil {
			countries.Add(e.Metadata.ResolvedIP.CountryISOCode)
		}
		if e.Kind == "pull_repo" {
			pulledTags.Add(e.Metadata.Tag)
		}

		if e.Datetime == "" {
			continue
		}
		t, err := e.Time()
		if err != nil {
			zap.L().Warn("skipping unparseable event datetime", zap.String("datetime", e.Datetime))
			continue
		}
		if earliest.IsZero() || t.Before(earliest) {
			earliest = t
		}
		if latest.IsZero() || t.After(latest) {
			latest = t
		}
	}

	return &Report{
		TotalEntries:      len(entries),
		EarliestEventTime: formatEventTime(earliest),
		LatestEventTime:   formatEventTime(latest),
		EventKinds:        kinds.MostCommon(0),
		TopUserAgents:     userAgents.MostCommon(topN),
		TopIPAddresses:    ips.MostCommon(topN),
		TopPulledTags:     pulledTags.MostCommon(topN),
		TopCountries:      countries.MostCommon(topN),
		TopPerformers:     performers.MostCommon(topN),
	}
}

func formatEventTime(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format(time.RFC3339)
}
