// Package metrics derives analytics series from a reconstructed equity
// series.
package metrics

import (
	"sort"
	"time"

	"lean-dashboard/internal/models"
)

// Drawdown computes the percentage decline from the running equity peak.
// Rows are emitted only where the peak is positive; drawdown is zero at
// every new peak and never positive.
func Drawdown(series []models.EquityPoint) []models.DrawdownPoint {
	if len(series) == 0 {
		return nil
	}

	out := make([]models.DrawdownPoint, 0, len(series))
	peak := 0.0
	for _, pt := range series {
		if pt.Close > peak {
			peak = pt.Close
		}
		if peak <= 0 {
			continue
		}
		out = append(out, models.DrawdownPoint{
			Datetime: pt.Datetime,
			Drawdown: (pt.Close - peak) / peak * 100,
			Close:    pt.Close,
			Peak:     peak,
		})
	}
	return out
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// asof returns the last close at or before the cutoff, or ok=false when the
// cutoff predates the whole series.
func asof(series []models.EquityPoint, cutoff time.Time) (float64, bool) {
	value := 0.0
	found := false
	for _, pt := range series {
		if pt.Datetime.After(cutoff) {
			break
		}
		value = pt.Close
		found = true
	}
	return value, found
}

// PeriodReturns resamples the equity series to one row per calendar day
// (last observation of the day) and computes the rolling return against the
// close exactly periodDays earlier. When the lookback lands before the
// series start the first value stands in as the reference, so a young
// session reports its return since inception rather than nothing. The
// cumulative return from series start rides along on each row.
func PeriodReturns(series []models.EquityPoint, periodDays int) []models.ReturnPoint {
	if len(series) == 0 {
		return nil
	}

	daily := make(map[time.Time]float64)
	for _, pt := range series {
		daily[dayOf(pt.Datetime)] = pt.Close
	}

	days := make([]time.Time, 0, len(daily))
	for day := range daily {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	startPrice := series[0].Close
	startTime := series[0].Datetime
	lookback := time.Duration(periodDays) * 24 * time.Hour

	out := make([]models.ReturnPoint, 0, len(days))
	for _, day := range days {
		close := daily[day]

		refPrice := startPrice
		cutoff := day.Add(-lookback)
		if !cutoff.Before(startTime) {
			if v, ok := asof(series, cutoff); ok {
				refPrice = v
			}
		}

		periodReturn := 0.0
		if refPrice != 0 {
			periodReturn = (close - refPrice) / refPrice * 100
		}
		cumReturn := 0.0
		if startPrice != 0 {
			cumReturn = (close/startPrice - 1) * 100
		}

		out = append(out, models.ReturnPoint{
			Datetime:     day,
			Close:        close,
			PeriodReturn: periodReturn,
			CumReturn:    cumReturn,
		})
	}
	return out
}
