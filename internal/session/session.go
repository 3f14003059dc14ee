// Package session enumerates on-disk trading sessions and owns the
// operator-facing session actions: status checks, container control, and
// the out-of-band sell-order command channel.
package session

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"lean-dashboard/internal/models"
	"lean-dashboard/internal/snapshot"
)

const (
	// SessionIDSeparator joins a strategy root and a session name into one
	// compound id.
	SessionIDSeparator = "::"
	// DefaultRootName addresses sessions living directly under the live
	// root.
	DefaultRootName = "root"
	// StrategyRootPrefix marks a directory as a named strategy grouping.
	StrategyRootPrefix = "S_"
	// RootSessionName is the reserved alias for the live root itself.
	RootSessionName = "__root__"
)

var algorithmNameRe = regexp.MustCompile(`Algorithm.*?Name:\s*([\w\.]+)`)

// Locator resolves session ids to storage paths under one live root. A
// missing live root is a normal pre-engine state: every method degrades to
// an empty result.
type Locator struct {
	liveRoot string
	parser   snapshot.Parser
	logger   zerolog.Logger
}

// NewLocator creates a locator over the given live root.
func NewLocator(liveRoot string, logger zerolog.Logger) *Locator {
	return &Locator{
		liveRoot: liveRoot,
		parser:   snapshot.NewParser(logger),
		logger:   logger,
	}
}

// LiveRoot returns the root directory this locator scans.
func (l *Locator) LiveRoot() string {
	return l.liveRoot
}

// MakeSessionID builds a compound session id from a root and session name.
func MakeSessionID(rootName, sessionName string) string {
	if rootName == "" || rootName == DefaultRootName {
		return sessionName
	}
	return rootName + SessionIDSeparator + sessionName
}

// ParseSessionID splits a session id into its root and session name.
func ParseSessionID(sessionID string) (string, string) {
	if idx := strings.Index(sessionID, SessionIDSeparator); idx >= 0 {
		return sessionID[:idx], sessionID[idx+len(SessionIDSeparator):]
	}
	return DefaultRootName, sessionID
}

// ListSessions returns session directory names under the live root,
// lexicographically descending so the most-recent-looking session comes
// first. Underscore-prefixed directories are internal and skipped.
func (l *Locator) ListSessions() []string {
	entries, err := os.ReadDir(l.liveRoot)
	if err != nil {
		return nil
	}

	var sessions []string
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), "_") {
			continue
		}
		sessions = append(sessions, entry.Name())
	}
	sort.Sort(sort.Reverse(sort.StringSlice(sessions)))
	return sessions
}

// StrategyRoots returns the named strategy grouping directories, ascending.
func (l *Locator) StrategyRoots() []string {
	entries, err := os.ReadDir(l.liveRoot)
	if err != nil {
		return nil
	}

	var roots []string
	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), StrategyRootPrefix) {
			roots = append(roots, entry.Name())
		}
	}
	sort.Strings(roots)
	return roots
}

// RootMap groups session names by strategy root. The default root carries
// every directory directly under the live root; each named root carries its
// own sessions, descending.
func (l *Locator) RootMap() map[string][]string {
	rootMap := make(map[string][]string)
	entries, err := os.ReadDir(l.liveRoot)
	if err != nil {
		return rootMap
	}

	for _, entry := range entries {
		if entry.IsDir() {
			rootMap[DefaultRootName] = append(rootMap[DefaultRootName], entry.Name())
		}
	}

	for _, root := range l.StrategyRoots() {
		children, err := os.ReadDir(filepath.Join(l.liveRoot, root))
		if err != nil {
			continue
		}
		var sessions []string
		for _, child := range children {
			if child.IsDir() {
				sessions = append(sessions, child.Name())
			}
		}
		sort.Sort(sort.Reverse(sort.StringSlice(sessions)))
		rootMap[root] = sessions
	}
	return rootMap
}

// Resolve maps a session id to its storage path. The empty string means the
// live root does not exist yet.
func (l *Locator) Resolve(sessionID string) string {
	if _, err := os.Stat(l.liveRoot); err != nil {
		return ""
	}
	root, name := ParseSessionID(sessionID)
	if root == DefaultRootName || root == RootSessionName {
		return filepath.Join(l.liveRoot, name)
	}
	return filepath.Join(l.liveRoot, root, name)
}

// Strategy returns the algorithm name a session runs, from its config file
// or, failing that, from an algorithm banner in the log tail.
func (l *Locator) Strategy(sessionID string) string {
	path := l.Resolve(sessionID)
	if path == "" {
		return ""
	}
	if cfg, out := l.parser.LoadConfig(path); out.IsOK() {
		if name := cfg.AlgorithmName(); name != "" {
			return name
		}
	}
	tail, out := l.parser.LogTail(path, 200)
	if !out.IsOK() {
		return ""
	}
	if m := algorithmNameRe.FindStringSubmatch(tail); m != nil {
		return m[1]
	}
	return ""
}

// Catalog pairs every session with the strategy it runs.
func (l *Locator) Catalog() []models.CatalogEntry {
	sessions := l.ListSessions()
	catalog := make([]models.CatalogEntry, 0, len(sessions))
	for _, session := range sessions {
		catalog = append(catalog, models.CatalogEntry{
			Session:  session,
			Strategy: l.Strategy(session),
		})
	}
	return catalog
}
