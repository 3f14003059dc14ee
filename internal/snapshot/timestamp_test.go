package snapshot

import (
	"testing"
	"time"
)

func TestParseStateTimestampVariants(t *testing.T) {
	cases := []struct {
		name  string
		value string
		ok    bool
	}{
		{"rfc3339 with zone", "2024-03-01T10:00:00Z", true},
		{"rfc3339 with offset", "2024-03-01T10:00:00-05:00", true},
		{"naive iso", "2024-03-01T10:00:00", true},
		{"space separated", "2024-03-01 10:00:00", true},
		{"empty", "", false},
		{"garbage", "not-a-time", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			parsed, ok := ParseStateTimestamp(tc.value)
			if ok != tc.ok {
				t.Fatalf("ok=%v, want %v", ok, tc.ok)
			}
			if ok && parsed.Location() != time.Local {
				t.Errorf("parsed timestamps must be local, got %v", parsed.Location())
			}
		})
	}
}

func TestParseStateTimestampZoneConversion(t *testing.T) {
	parsed, ok := ParseStateTimestamp("2024-03-01T15:00:00Z")
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	want := time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC)
	if !parsed.Equal(want) {
		t.Errorf("zone conversion must preserve the instant: got %v, want %v", parsed, want)
	}
}

func TestFromEpochSecondPrecision(t *testing.T) {
	// 2021-01-01T00:00:00Z as seconds.
	at := FromEpoch(1609459200)
	if !at.Equal(time.Unix(1609459200, 0)) {
		t.Errorf("got %v", at)
	}
}

func TestFromEpochMillisecondHeuristic(t *testing.T) {
	// Same instant expressed in milliseconds must normalize to the same time.
	sec := FromEpoch(1609459200)
	ms := FromEpoch(1609459200000)
	if !sec.Equal(ms) {
		t.Errorf("millisecond epoch must normalize: %v != %v", ms, sec)
	}
}

func TestParseLogTimestamp(t *testing.T) {
	at, ok := parseLogTimestamp("2024-03-01T10:15:30 TRACE:: something happened")
	if !ok {
		t.Fatal("expected a leading timestamp")
	}
	want := time.Date(2024, 3, 1, 10, 15, 30, 0, time.Local)
	if !at.Equal(want) {
		t.Errorf("got %v, want %v", at, want)
	}

	if _, ok := parseLogTimestamp("no timestamp here"); ok {
		t.Error("expected no timestamp")
	}
}
