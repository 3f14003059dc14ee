package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestFormatFloat(t *testing.T) {
	if got := formatFloat(1234.5); got != "1234.50" {
		t.Errorf("got %q", got)
	}
	if got := formatFloat(-0.125); got != "-0.13" {
		t.Errorf("got %q", got)
	}
}

func TestFormatEventTime(t *testing.T) {
	if got := formatEventTime(0); got != "-" {
		t.Errorf("zero epoch: %q", got)
	}
	sec := formatEventTime(1709287200)
	ms := formatEventTime(1709287200000)
	if sec != ms {
		t.Errorf("millisecond epochs must render the same instant: %q vs %q", sec, ms)
	}
}

func TestFormatUTCString(t *testing.T) {
	if got := formatUTCString(""); got != "-" {
		t.Errorf("empty: %q", got)
	}
	if got := formatUTCString("2024-03-01T10:00:00Z"); got != "2024-03-01 10:00:00" {
		t.Errorf("rfc3339: %q", got)
	}
	if got := formatUTCString("2024-03-01T10:00:00.1234567Z"); len(got) != 19 {
		t.Errorf("long value must be trimmed: %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("got %q", got)
	}
	if got := truncate("a-much-longer-string", 10); got != "a-much-..." {
		t.Errorf("got %q", got)
	}
	if got := truncate("abcdef", 2); got != "ab" {
		t.Errorf("tiny max: %q", got)
	}
}

func TestStripANSI(t *testing.T) {
	colored := ColorGreen + "up" + ColorReset + " " + ColorBold + "x" + ColorReset
	if got := stripANSI(colored); got != "up x" {
		t.Errorf("got %q", got)
	}
}

func TestTableRenderAlignsColumns(t *testing.T) {
	var buf bytes.Buffer
	output := &Output{writer: &buf}

	table := NewTable(output, "SYMBOL", "VALUE")
	table.AddRow("AAPL", "100")
	table.AddRow("LONGSYMBOL", "2")
	table.Render()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header, separator, 2 rows; got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[2], "AAPL      ") {
		t.Errorf("short cell must pad to the widest: %q", lines[2])
	}
}
