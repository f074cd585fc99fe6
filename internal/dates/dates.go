package dates

import (
	"math"
	"time"
)

// Layouts tried in order when parsing API date strings. The history
// endpoints emit RFC3339 with fractional seconds and an offset, but some
// older payloads drop the fraction or the zone.
var layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Parsed is a date that may have failed to parse. Rendering an invalid
// Parsed yields an empty string, so a single bad date field never aborts
// a history scan.
type Parsed struct {
	Time  time.Time
	Valid bool
}

// Parse creates a Parsed from an API date string.
func Parse(s string) Parsed {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Parsed{Time: t, Valid: true}
		}
	}
	return Parsed{}
}

// FromUnix creates a UTC Parsed from a unix-seconds timestamp.
func FromUnix(ts float64) Parsed {
	if math.IsNaN(ts) || math.IsInf(ts, 0) {
		return Parsed{}
	}
	sec, frac := math.Modf(ts)
	return Parsed{Time: time.Unix(int64(sec), int64(frac*1e9)).UTC(), Valid: true}
}

// Human renders the date for transcript display.
func (p Parsed) Human() string {
	if !p.Valid {
		return ""
	}
	return p.Time.Format("Jan 02, 2006 15:04:05")
}

// ISO renders the date for log output.
func (p Parsed) ISO() string {
	if !p.Valid {
		return ""
	}
	return p.Time.Format("2006/01/02 15:04:05")
}
