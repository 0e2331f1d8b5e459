package charging

import (
	"math"
	"time"
)

const (
	statsWindowBefore = 15 * time.Minute
	statsWindowAfter  = 5 * time.Minute
)

// UsageRecord is one normalized usage-statistics entry from the external
// platform. EnergyKWh is nil when the source field was missing or not
// numeric.
type UsageRecord struct {
	From      time.Time
	To        time.Time
	EnergyKWh *float64
	Raw       map[string]any
}

// StatsWindow widens the query range around a session so clock skew between
// our records and the platform's does not lose the matching entry.
func StatsWindow(sessionStart, now time.Time) (from, to time.Time) {
	return sessionStart.Add(-statsWindowBefore), now.Add(statsWindowAfter)
}

// MatchUsageRecord selects the single record whose [From, To] window contains
// the session start and whose From is closest to it. Returns nil when no
// record overlaps. Records with zero (unparseable) timestamps are skipped.
func MatchUsageRecord(records []UsageRecord, sessionStart time.Time) *UsageRecord {
	var best *UsageRecord
	smallestDelta := time.Duration(math.MaxInt64)

	for i := range records {
		record := &records[i]
		if record.From.IsZero() || record.To.IsZero() {
			continue
		}
		if record.From.After(sessionStart) || record.To.Before(sessionStart) {
			continue
		}

		delta := sessionStart.Sub(record.From)
		if delta < 0 {
			delta = -delta
		}
		if delta < smallestDelta {
			smallestDelta = delta
			best = record
		}
	}

	return best
}
