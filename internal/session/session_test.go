package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func TestSessionIDRoundTrip(t *testing.T) {
	cases := []struct {
		root    string
		session string
		id      string
	}{
		{"root", "2024-03-01-A", "2024-03-01-A"},
		{"", "2024-03-01-A", "2024-03-01-A"},
		{"S_momentum", "2024-03-01-A", "S_momentum::2024-03-01-A"},
	}
	for _, tc := range cases {
		id := MakeSessionID(tc.root, tc.session)
		if id != tc.id {
			t.Errorf("MakeSessionID(%q, %q) = %q, want %q", tc.root, tc.session, id, tc.id)
		}
		root, name := ParseSessionID(id)
		if name != tc.session {
			t.Errorf("ParseSessionID(%q) name = %q, want %q", id, name, tc.session)
		}
		wantRoot := tc.root
		if wantRoot == "" {
			wantRoot = DefaultRootName
		}
		if root != wantRoot {
			t.Errorf("ParseSessionID(%q) root = %q, want %q", id, root, wantRoot)
		}
	}
}

func TestListSessionsDescendingAndSkipsInternal(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"2024-01-01", "2024-03-01", "2024-02-01", "_internal"} {
		if err := os.Mkdir(filepath.Join(dir, name), 0755); err != nil {
			t.Fatal(err)
		}
	}
	// Plain files are not sessions.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	l := NewLocator(dir, zerolog.Nop())
	sessions := l.ListSessions()
	want := []string{"2024-03-01", "2024-02-01", "2024-01-01"}
	if len(sessions) != len(want) {
		t.Fatalf("sessions: %v", sessions)
	}
	for i := range want {
		if sessions[i] != want[i] {
			t.Errorf("sessions[%d] = %q, want %q", i, sessions[i], want[i])
		}
	}
}

func TestListSessionsMissingRoot(t *testing.T) {
	l := NewLocator(filepath.Join(t.TempDir(), "nope"), zerolog.Nop())
	if sessions := l.ListSessions(); sessions != nil {
		t.Errorf("missing root must list empty, got %v", sessions)
	}
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	l := NewLocator(dir, zerolog.Nop())

	if got := l.Resolve("2024-03-01"); got != filepath.Join(dir, "2024-03-01") {
		t.Errorf("default root resolve: %q", got)
	}
	if got := l.Resolve("S_momentum::2024-03-01"); got != filepath.Join(dir, "S_momentum", "2024-03-01") {
		t.Errorf("strategy root resolve: %q", got)
	}

	missing := NewLocator(filepath.Join(dir, "nope"), zerolog.Nop())
	if got := missing.Resolve("2024-03-01"); got != "" {
		t.Errorf("missing live root must resolve empty, got %q", got)
	}
}

func TestStrategyRootsAndRootMap(t *testing.T) {
	dir := t.TempDir()
	for _, p := range []string{"2024-03-01", "S_momentum/2024-02-01", "S_momentum/2024-03-02", "S_meanrev/2024-01-15"} {
		if err := os.MkdirAll(filepath.Join(dir, p), 0755); err != nil {
			t.Fatal(err)
		}
	}

	l := NewLocator(dir, zerolog.Nop())
	roots := l.StrategyRoots()
	if len(roots) != 2 || roots[0] != "S_meanrev" || roots[1] != "S_momentum" {
		t.Errorf("roots: %v", roots)
	}

	rootMap := l.RootMap()
	momentum := rootMap["S_momentum"]
	if len(momentum) != 2 || momentum[0] != "2024-03-02" {
		t.Errorf("S_momentum sessions must be descending: %v", momentum)
	}
}

func TestStrategyFromConfig(t *testing.T) {
	dir := t.TempDir()
	sessionDir := filepath.Join(dir, "2024-03-01")
	if err := os.Mkdir(sessionDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sessionDir, "config"),
		[]byte(`{"algorithm-type-name": "MomentumAlgo"}`), 0644); err != nil {
		t.Fatal(err)
	}

	l := NewLocator(dir, zerolog.Nop())
	if got := l.Strategy("2024-03-01"); got != "MomentumAlgo" {
		t.Errorf("strategy: %q", got)
	}
}

func TestStrategyFromLogFallback(t *testing.T) {
	dir := t.TempDir()
	sessionDir := filepath.Join(dir, "2024-03-01")
	if err := os.Mkdir(sessionDir, 0755); err != nil {
		t.Fatal(err)
	}
	log := "2024-03-01T10:00:00 TRACE:: Algorithm Name: MeanReversion.V2\n"
	if err := os.WriteFile(filepath.Join(sessionDir, "log.txt"), []byte(log), 0644); err != nil {
		t.Fatal(err)
	}

	l := NewLocator(dir, zerolog.Nop())
	if got := l.Strategy("2024-03-01"); got != "MeanReversion.V2" {
		t.Errorf("strategy from log: %q", got)
	}
}
