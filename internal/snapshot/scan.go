package snapshot

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"lean-dashboard/internal/models"
)

// FileEntry is one chart-dump file annotated with the two timestamps the
// reconstructor sorts on: the engine-reported instant and the file's
// modification time. The mtime is the tie-breaker for dumps claiming the
// same reported instant, reflecting true write order when the engine's own
// clock is coarse.
type FileEntry struct {
	Reported time.Time
	ModTime  time.Time
	Data     *models.SnapshotData
	Name     string
}

// ScanSnapshots reads every minute- and second-interval chart dump in the
// session directory. Files that fail to parse are skipped silently: the
// engine writes them while we read, and a half-written dump is picked up
// whole on the next poll. Entries come back sorted by (Reported, ModTime).
func (p Parser) ScanSnapshots(sessionPath string) []FileEntry {
	var files []string
	if m, err := filepath.Glob(filepath.Join(sessionPath, "L-*minute.json")); err == nil {
		files = append(files, m...)
	}
	if m, err := filepath.Glob(filepath.Join(sessionPath, "L-*_second_Strategy%20Equity.json")); err == nil {
		files = append(files, m...)
	}

	entries := make([]FileEntry, 0, len(files))
	for _, f := range files {
		entry, ok := p.readSnapshotFile(f)
		if !ok {
			continue
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].Reported.Equal(entries[j].Reported) {
			return entries[i].Reported.Before(entries[j].Reported)
		}
		return entries[i].ModTime.Before(entries[j].ModTime)
	})
	return entries
}

func (p Parser) readSnapshotFile(path string) (FileEntry, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return FileEntry{}, false
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return FileEntry{}, false
	}

	data := &models.SnapshotData{}
	if err := json.Unmarshal(raw, data); err != nil {
		p.logger.Debug().Str("file", path).Err(err).Msg("Snapshot dump unreadable, skipping")
		return FileEntry{}, false
	}

	entry := FileEntry{
		ModTime: info.ModTime(),
		Data:    data,
		Name:    filepath.Base(path),
	}

	// Reported timestamp from the embedded state block, file mtime as the
	// fallback when the block is absent or unparseable.
	entry.Reported = entry.ModTime
	if data.State != nil {
		if t, ok := ParseStateTimestamp(data.State.EndTime); ok {
			entry.Reported = t
		}
	}
	return entry, true
}
