// Package models provides the typed records parsed out of a live session's
// result files.
package models

import (
	"encoding/json"
	"time"
)

// SessionConfig is the per-session `config` file written by the engine when
// it launches a live deployment.
type SessionConfig struct {
	AlgorithmTypeName string      `json:"algorithm-type-name"`
	Algorithm         string      `json:"algorithm"`
	ID                json.Number `json:"id"`
	Container         string      `json:"container"`
}

// AlgorithmName returns the configured algorithm class name, preferring the
// explicit type-name field.
func (c *SessionConfig) AlgorithmName() string {
	if c == nil {
		return ""
	}
	if c.AlgorithmTypeName != "" {
		return c.AlgorithmTypeName
	}
	return c.Algorithm
}

// CashEntry is one currency entry of the engine's cashbook. Amount and
// ValueInAccountCurrency are pointers because their presence matters: an
// entry carrying neither contributes nothing to the cash total.
type CashEntry struct {
	Symbol                 string   `json:"symbol"`
	Amount                 *float64 `json:"amount"`
	ConversionRate         *float64 `json:"conversionRate"`
	ValueInAccountCurrency *float64 `json:"valueInAccountCurrency"`
}

// HoldingEntry is one symbol entry of the engine's holdings table. The short
// field names mirror the engine's wire format. All fields are optional in
// partial dumps.
type HoldingEntry struct {
	Quantity      *float64 `json:"q"`
	AveragePrice  *float64 `json:"a"`
	Price         *float64 `json:"p"`
	Value         *float64 `json:"v"`
	Unrealized    *float64 `json:"u"`
	UnrealizedPct *float64 `json:"up"`
	FxRate        *float64 `json:"fx"`
}

// SnapshotState is the embedded state block of a result dump. EndTime is the
// engine-reported instant the dump describes.
type SnapshotState struct {
	EndTime   string `json:"EndTime"`
	StartTime string `json:"StartTime"`
	Status    string `json:"Status"`
}

// ChartSeries holds the raw value rows of one chart series. Rows are decoded
// lazily because the engine emits both [ts, close] pairs and
// [ts, o, h, l, c] candles in the same array.
type ChartSeries struct {
	Name   string            `json:"name"`
	Values []json.RawMessage `json:"values"`
}

// Chart is one named chart of the results file.
type Chart struct {
	Name   string                 `json:"name"`
	Series map[string]ChartSeries `json:"series"`
}

// SnapshotData is the decoded body of one result or chart-dump file.
type SnapshotData struct {
	State             *SnapshotState             `json:"state"`
	Cash              map[string]CashEntry       `json:"cash"`
	Holdings          map[string]HoldingEntry    `json:"holdings"`
	Charts            map[string]Chart           `json:"charts"`
	Orders            map[string]json.RawMessage `json:"orders"`
	RuntimeStatistics map[string]string          `json:"runtimeStatistics"`
}

// OrderEvent is one engine-emitted order event. Events are display-only:
// they are sorted by time but never reconciled.
type OrderEvent struct {
	ID           json.Number `json:"id"`
	OrderID      json.Number `json:"orderId"`
	Symbol       string      `json:"symbol"`
	Status       string      `json:"status"`
	Direction    string      `json:"direction"`
	FillPrice    float64     `json:"fillPrice"`
	FillQuantity float64     `json:"fillQuantity"`
	Quantity     float64     `json:"quantity"`
	Time         float64     `json:"time"`
	Message      string      `json:"message"`
}

// Insight is one alpha signal emitted by the strategy, display-only.
type Insight struct {
	ID               string  `json:"id"`
	Symbol           string  `json:"symbol"`
	Direction        string  `json:"direction"`
	Magnitude        float64 `json:"magnitude"`
	Confidence       float64 `json:"confidence"`
	Period           float64 `json:"period"`
	GeneratedTimeUTC string  `json:"generatedTimeUtc"`
	CloseTimeUTC     string  `json:"closeTimeUtc"`
}

// EquityPoint is one instant of the reconstructed equity series. The source
// has no true intraday OHLC for equity, so reconstructed points carry the
// same scalar in all four fields.
type EquityPoint struct {
	Datetime time.Time `json:"datetime"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
}

// FlatPoint builds an EquityPoint whose OHLC fields all equal value.
func FlatPoint(at time.Time, value float64) EquityPoint {
	return EquityPoint{Datetime: at, Open: value, High: value, Low: value, Close: value}
}

// CachePoint is one row of the on-disk equity cache.
type CachePoint struct {
	Datetime time.Time `json:"datetime"`
	Close    float64   `json:"close"`
}

// DrawdownPoint is one row of the drawdown series derived from equity.
type DrawdownPoint struct {
	Datetime time.Time `json:"datetime"`
	Drawdown float64   `json:"drawdown"`
	Close    float64   `json:"close"`
	Peak     float64   `json:"peak"`
}

// ReturnPoint is one daily row of the rolling period-return series.
type ReturnPoint struct {
	Datetime     time.Time `json:"datetime"`
	Close        float64   `json:"close"`
	PeriodReturn float64   `json:"period_return"`
	CumReturn    float64   `json:"cum_return"`
}

// MarginPoint is one margin observation scraped from the engine log.
type MarginPoint struct {
	Datetime  time.Time `json:"datetime"`
	Used      float64   `json:"margin_used"`
	Remaining float64   `json:"margin_remaining"`
}

// BenchmarkPoint is one reference-index price observation.
type BenchmarkPoint struct {
	Datetime time.Time `json:"datetime"`
	Close    float64   `json:"close"`
}

// ServerStats is the latest resource report scraped from the engine log.
type ServerStats struct {
	CPUPercent int    `json:"cpu"`
	RAMUsed    int    `json:"ram_used"`
	RAMTotal   int    `json:"ram_total"`
	Uptime     string `json:"uptime"`
}

// HoldingPosition is one display row of the account view.
type HoldingPosition struct {
	Symbol        string  `json:"symbol"`
	Quantity      float64 `json:"quantity"`
	AveragePrice  float64 `json:"average_price"`
	Price         float64 `json:"price"`
	Value         float64 `json:"value"`
	Unrealized    float64 `json:"unrealized"`
	UnrealizedPct float64 `json:"unrealized_pct"`
	FxRate        float64 `json:"fx_rate"`
}

// AccountSnapshot is the aggregated account state built from the primary
// results file.
type AccountSnapshot struct {
	AccountCurrency string            `json:"account_currency"`
	CashTotal       float64           `json:"cash_total"`
	Invested        float64           `json:"invested"`
	Equity          float64           `json:"equity"`
	Unrealized      float64           `json:"unrealized"`
	Positions       []HoldingPosition `json:"positions"`
}

// RuntimeSample is one processed-data row built from the engine's
// pre-formatted runtime statistics.
type RuntimeSample struct {
	Datetime   time.Time `json:"datetime"`
	Equity     float64   `json:"equity"`
	Holdings   float64   `json:"holdings"`
	Unrealized float64   `json:"unrealized"`
	Fees       float64   `json:"fees"`
}

// SellOrder is one out-of-band sell instruction appended to the session's
// commands folder for the engine to pick up.
type SellOrder struct {
	ID         string   `json:"id"`
	Symbol     string   `json:"symbol"`
	Quantity   *int     `json:"quantity"`
	LimitPrice *float64 `json:"limit_price"`
}

// SessionStatus describes whether a session's engine container is running.
type SessionStatus struct {
	Session   string `json:"session"`
	Container string `json:"container"`
	Running   bool   `json:"running"`
}

// CatalogEntry pairs a session with the strategy it runs.
type CatalogEntry struct {
	Session  string `json:"session"`
	Strategy string `json:"strategy"`
}
