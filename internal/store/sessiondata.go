package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"lean-dashboard/internal/config"
	"lean-dashboard/internal/models"
	"lean-dashboard/pkg/utils"
)

// diskSample mirrors RuntimeSample with a string datetime for file
// compatibility.
type diskSample struct {
	Datetime   string  `json:"datetime"`
	Equity     float64 `json:"equity"`
	Holdings   float64 `json:"holdings"`
	Unrealized float64 `json:"unrealized"`
	Fees       float64 `json:"fees"`
}

// SessionData is the per-session processed-data store: a monotonic table of
// numeric samples parsed out of the engine's pre-formatted runtime
// statistics.
type SessionData struct {
	sessionPath string
	logger      zerolog.Logger
}

// NewSessionData creates the processed-data store for one session.
func NewSessionData(sessionPath string, logger zerolog.Logger) *SessionData {
	return &SessionData{sessionPath: sessionPath, logger: logger}
}

func (s *SessionData) storagePath() string {
	return filepath.Join(s.sessionPath, config.ProcessedDataFile)
}

// LoadStored reads the persisted sample table. Missing or corrupt files
// read as empty.
func (s *SessionData) LoadStored() []models.RuntimeSample {
	raw, err := os.ReadFile(s.storagePath())
	if err != nil {
		return nil
	}
	var rows []diskSample
	if err := json.Unmarshal(raw, &rows); err != nil {
		s.logger.Debug().Str("file", s.storagePath()).Err(err).Msg("Processed data unreadable")
		return nil
	}

	samples := make([]models.RuntimeSample, 0, len(rows))
	for _, row := range rows {
		at, ok := parseCacheTime(row.Datetime)
		if !ok {
			continue
		}
		samples = append(samples, models.RuntimeSample{
			Datetime:   at,
			Equity:     row.Equity,
			Holdings:   row.Holdings,
			Unrealized: row.Unrealized,
			Fees:       row.Fees,
		})
	}
	return samples
}

// Save persists the sample table. An empty table is not written.
func (s *SessionData) Save(samples []models.RuntimeSample) error {
	if len(samples) == 0 {
		return nil
	}
	rows := make([]diskSample, 0, len(samples))
	for _, sample := range samples {
		rows = append(rows, diskSample{
			Datetime:   sample.Datetime.Format(time.RFC3339Nano),
			Equity:     sample.Equity,
			Holdings:   sample.Holdings,
			Unrealized: sample.Unrealized,
			Fees:       sample.Fees,
		})
	}
	raw, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	return os.WriteFile(s.storagePath(), raw, 0644)
}

// Update parses the runtime statistics of a fresh results read into a
// numeric sample and appends it, deduplicating by exact timestamp with the
// latest value winning. A non-positive equity sample is dropped and the
// stored table returned unchanged.
func (s *SessionData) Update(results *models.SnapshotData, at time.Time) []models.RuntimeSample {
	stored := s.LoadStored()
	if results == nil {
		return stored
	}

	runtime := results.RuntimeStatistics
	sample := models.RuntimeSample{
		Datetime:   at,
		Equity:     utils.ParseDollar(runtime["Equity"]),
		Holdings:   utils.ParseDollar(runtime["Holdings"]),
		Unrealized: utils.ParseDollar(runtime["Unrealized"]),
		Fees:       utils.ParseDollar(runtime["Fees"]),
	}
	if sample.Equity <= 0 {
		return stored
	}

	samples := append(stored, sample)
	samples = dedupSamples(samples)
	if err := s.Save(samples); err != nil {
		s.logger.Debug().Err(err).Msg("Processed data save failed")
	}
	return samples
}

func dedupSamples(samples []models.RuntimeSample) []models.RuntimeSample {
	latest := make(map[int64]models.RuntimeSample, len(samples))
	for _, sample := range samples {
		latest[sample.Datetime.UnixNano()] = sample
	}

	out := make([]models.RuntimeSample, 0, len(latest))
	for _, sample := range latest {
		out = append(out, sample)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Datetime.Before(out[j].Datetime)
	})
	return out
}
