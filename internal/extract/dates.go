package extract

import (
	"strings"
	"time"
)

// Timestamp is a parsed date that remembers whether it carried a zone.
type Timestamp struct {
	Time  time.Time
	Zoned bool
}

var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05-0700",
	"2006-01-02 15:04:05Z07:00",
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseISO parses the ISO-8601 variants found in article meta tags.
func ParseISO(s string) (Timestamp, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Timestamp{}, false
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t, Zoned: true}, true
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t}, true
		}
	}
	return Timestamp{}, false
}

// ISO formats the timestamp the way it was given: with its offset when
// zoned, as wall-clock time otherwise.
func (ts Timestamp) ISO() string {
	layout := "2006-01-02T15:04:05"
	if ts.Time.Nanosecond() != 0 {
		layout += ".000000"
	}
	if ts.Zoned {
		layout += "-07:00"
	}
	return ts.Time.Format(layout)
}

// Naive drops the zone, keeping the wall-clock reading.
func (ts Timestamp) Naive() Timestamp {
	t := ts.Time
	return Timestamp{Time: time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)}
}

// ParseGermanDate parses a DD.MM.YYYY date.
func ParseGermanDate(s string) (time.Time, bool) {
	t, err := time.Parse("02.01.2006", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// DateISO formats a calendar date as YYYY-MM-DDT00:00:00.
func DateISO(t time.Time) string {
	return t.Format("2006-01-02T15:04:05")
}

// UnixISO formats unix seconds as a UTC wall-clock timestamp.
func UnixISO(sec int64) string {
	return time.Unix(sec, 0).UTC().Format("2006-01-02T15:04:05")
}

// copyrightTerm is 70 years of 365.25 days.
const copyrightTerm = time.Duration(70*365.25*24) * time.Hour

// IsCopyrighted reports whether a work published at pub is still protected
// at now. It returns nil without a date.
func IsCopyrighted(pub *time.Time, now time.Time) *bool {
	if pub == nil {
		return nil
	}
	protected := pub.After(now.Add(-copyrightTerm))
	return &protected
}
