// Package model defines the Quay usage-log record types shared across the CLI.
package model

import (
	"time"

	"github.com/rotisserie/eris"
)

// QuayTimeLayout is the datetime format used by the Quay logs API,
// e.g. "Fri, 16 May 2025 06:15:07 -0000".
const QuayTimeLayout = "Mon, 02 Jan 2006 15:04:05 -0700"

// LogEntry is a single usage-log record returned by the repository logs endpoint.
type LogEntry struct {
	Kind      string     `json:"kind"`
	IP        string     `json:"ip,omitempty"`
	Datetime  string     `json:"datetime,omitempty"`
	Metadata  Metadata   `json:"metadata,omitempty"`
	Performer *Performer `json:"performer,omitempty"`
}

// Metadata carries the event-specific fields we report on. Quay attaches
// more keys than these depending on the event kind; unknown keys are dropped.
type Metadata struct {
	UserAgent  string      `json:"user-agent,omitempty"`
	Tag        string      `json:"tag,omitempty"`
	Username   string      `json:"username,omitempty"`
	ResolvedIP *ResolvedIP `json:"resolved_ip,omitempty"`
}

// ResolvedIP holds Quay's GeoIP resolution of the client address.
type ResolvedIP struct {
	CountryISOCode string `json:"country_iso_code,omitempty"`
	AwsRegion      string `json:"aws_region,omitempty"`
	SyntheticIP    bool   `json:"synthetic,omitempty"`
}

// Performer identifies the user or robot account behind an event.
type Performer struct {
	Name    string `json:"name"`
	Kind    string `json:"kind,omitempty"`
	IsRobot bool   `json:"is_robot,omitempty"`
}

// Time parses the entry's datetime field. The zero time and an error are
// returned when the field is absent or malformed; callers decide whether
// that is fatal.
func (e LogEntry) Time() (time.Time, error) {
	return ParseTime(e.Datetime)
}

// PerformerName returns the account name behind the event, preferring the
// performer record and falling back to metadata.username. Empty when neither
// is present.
func (e LogEntry) PerformerName() string {
	if e.Performer != nil && e.Performer.Name != "" {
		return e.Performer.Name
	}
	return e.Metadata.Username
}

// AggregatedEntry is one row from the aggregatelogs endpoint: a per-day count
// of events of one kind. Repo and Date are stamped on at fetch time; the API
// itself returns only kind, count and datetime.
type AggregatedEntry struct {
	Kind     string `json:"kind"`
	Count    int    `json:"count"`
	Datetime string `json:"datetime,omitempty"`
	Repo     string `json:"repo,omitempty"`
	Date     string `json:"date,omitempty"`
}

// StampDerived fills Repo and Date from the fetch context. Date is the
// calendar day (YYYY-MM-DD) parsed from the API datetime; it stays empty
// when the datetime is missing or malformed.
func (a *AggregatedEntry) StampDerived(repo string) {
	a.Repo = repo
	if t, err := ParseTime(a.Datetime); err == nil {
		a.Date = t.Format("2006-01-02")
	}
}

// ParseTime parses a Quay API datetime string.
func ParseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, eris.New("model: empty datetime")
	}
	t, err := time.Parse(QuayTimeLayout, s)
	if err != nil {
		return time.Time{}, eris.Wrapf(err, "model: parse datetime %q", s)
	}
	return t, nil
}
