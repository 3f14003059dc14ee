// Package store persists the dashboard's only derived state: the per-session
// equity cache, the processed runtime samples, and a sqlite archive.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"lean-dashboard/internal/config"
	"lean-dashboard/internal/logging"
	"lean-dashboard/internal/models"
)

// diskCachePoint is the on-disk row shape; datetimes are stored as strings
// so files written by earlier tooling stay readable.
type diskCachePoint struct {
	Datetime string  `json:"datetime"`
	Close    float64 `json:"close"`
}

var cacheTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

func parseCacheTime(value string) (time.Time, bool) {
	for _, layout := range cacheTimeLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// EquityCache is the append-only per-session cache of computed equity
// points, bounded by MaxPoints with oldest-first trimming.
type EquityCache struct {
	MaxPoints int
	logger    zerolog.Logger
}

// NewEquityCache creates a cache with the given retention bound.
func NewEquityCache(maxPoints int, logger zerolog.Logger) *EquityCache {
	return &EquityCache{MaxPoints: maxPoints, logger: logger}
}

func cachePath(sessionPath string) string {
	return filepath.Join(sessionPath, config.EquityCacheFile)
}

// Load reads the session's cached equity points. A missing or corrupt file
// reads as an empty cache.
func (c *EquityCache) Load(sessionPath string) []models.CachePoint {
	raw, err := os.ReadFile(cachePath(sessionPath))
	if err != nil {
		return nil
	}
	var rows []diskCachePoint
	if err := json.Unmarshal(raw, &rows); err != nil {
		c.logger.Debug().Str("session_path", sessionPath).Err(err).Msg("Equity cache unreadable")
		return nil
	}

	points := make([]models.CachePoint, 0, len(rows))
	for _, row := range rows {
		at, ok := parseCacheTime(row.Datetime)
		if !ok {
			continue
		}
		points = append(points, models.CachePoint{Datetime: at, Close: row.Close})
	}
	return points
}

// Append records one computed equity value. Non-positive equity is a
// not-yet-valid snapshot and is dropped. Duplicated timestamps keep the
// latest value; the full table persists after each append, trimmed FIFO to
// the retention bound.
func (c *EquityCache) Append(sessionPath, sessionID string, at time.Time, equity float64) error {
	if equity <= 0 {
		return nil
	}
	if _, err := os.Stat(sessionPath); err != nil {
		return nil
	}

	points := c.Load(sessionPath)
	points = append(points, models.CachePoint{Datetime: at, Close: equity})
	points = normalizeCache(points)

	if c.MaxPoints > 0 && len(points) > c.MaxPoints {
		points = points[len(points)-c.MaxPoints:]
	}

	if err := c.save(sessionPath, points); err != nil {
		return err
	}
	logging.LogCacheAppend(c.logger, sessionID, equity, len(points))
	return nil
}

func (c *EquityCache) save(sessionPath string, points []models.CachePoint) error {
	rows := make([]diskCachePoint, 0, len(points))
	for _, pt := range points {
		rows = append(rows, diskCachePoint{
			Datetime: pt.Datetime.Format(time.RFC3339Nano),
			Close:    pt.Close,
		})
	}
	raw, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	return os.WriteFile(cachePath(sessionPath), raw, 0644)
}

// normalizeCache sorts ascending and keeps the latest value per exact
// timestamp. Later slice positions win, matching append order.
func normalizeCache(points []models.CachePoint) []models.CachePoint {
	latest := make(map[int64]models.CachePoint, len(points))
	for _, pt := range points {
		latest[pt.Datetime.UnixNano()] = pt
	}

	out := make([]models.CachePoint, 0, len(latest))
	for _, pt := range latest {
		out = append(out, pt)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Datetime.Before(out[j].Datetime)
	})
	return out
}
