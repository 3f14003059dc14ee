package snapshot

import (
	"regexp"
	"time"
)

// Epoch values above this are treated as milliseconds and divided down to
// seconds. A legitimate second-precision timestamp past the year ~33658
// would be misclassified; accepted as a known edge case.
const millisecondEpochThreshold = 1_000_000_000_000

var logTimestampRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2})`)

// ParseStateTimestamp parses the engine's embedded state timestamp, which is
// ISO-8601 with or without a zone suffix. Zoned values are converted to
// local wall-clock time so they sort consistently with file mtimes.
func ParseStateTimestamp(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.Local(), true
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", value, time.Local); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation("2006-01-02 15:04:05", value, time.Local); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// FromEpoch converts an engine-reported epoch value to a time, normalizing
// millisecond epochs to seconds first.
func FromEpoch(epoch float64) time.Time {
	if epoch > millisecondEpochThreshold {
		epoch = epoch / 1000.0
	}
	sec := int64(epoch)
	nsec := int64((epoch - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec)
}

// parseLogTimestamp extracts the leading timestamp of an engine log line.
func parseLogTimestamp(line string) (time.Time, bool) {
	m := logTimestampRe.FindStringSubmatch(line)
	if m == nil {
		return time.Time{}, false
	}
	return ParseStateTimestamp(m[1])
}
