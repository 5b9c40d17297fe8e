package domain

import (
	"fmt"
	"sort"
	"time"
)

// Quality flags recorded on data points materialized from derived daily
// periods, distinguishing provenance from a provider's native daily product.
const (
	QualityDerivedFromPeriods = "derived_daily_from_periods"
	QualityDerivedFromHourly  = "derived_daily_from_hourly"
)

// AggregateDailyFromPeriods collapses forecast periods into one synthetic
// period per local calendar day. Each metric is reduced per its registry
// reducer over the non-absent values only; a metric absent from every period
// stays absent. The synthesized period spans local midnight to midnight
// expressed in UTC and carries the first grouped entry's provider, location,
// and issue time. Summary text is never synthesized.
func AggregateDailyFromPeriods(periods []ForecastPeriod, tzName string) ([]ForecastPeriod, error) {
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", tzName, err)
	}

	grouped := make(map[string][]ForecastPeriod)
	for _, period := range periods {
		day := localDay(period.StartTime, loc)
		grouped[day] = append(grouped[day], period)
	}

	days := make([]string, 0, len(grouped))
	for day := range grouped {
		days = append(days, day)
	}
	sort.Strings(days)

	daily := make([]ForecastPeriod, 0, len(days))
	for _, day := range days {
		entries := grouped[day]
		first := entries[0]

		y, m, d := first.StartTime.In(loc).Date()
		start := time.Date(y, m, d, 0, 0, 0, 0, loc).UTC()

		agg := ForecastPeriod{
			Provider:  first.Provider,
			Location:  first.Location,
			IssuedAt:  first.IssuedAt,
			StartTime: start,
			EndTime:   start.Add(24 * time.Hour),
		}

		var temps []float64
		for _, entry := range entries {
			if entry.TemperatureC != nil {
				temps = append(temps, *entry.TemperatureC)
			}
		}

		for _, metric := range forecastMetrics {
			if metric.text || metric.reduce == reduceNone {
				continue
			}
			var values []float64
			for i := range entries {
				if v := metric.num(&entries[i]); v != nil {
					values = append(values, *v)
				}
			}
			if reduced, ok := reduceValues(metric.reduce, values, temps); ok {
				metric.set(&agg, reduced)
			}
		}

		daily = append(daily, agg)
	}

	return daily, nil
}

func reduceValues(kind reduceKind, values, temps []float64) (float64, bool) {
	switch kind {
	case reduceHigh:
		if len(values) > 0 {
			return maxOf(values), true
		}
		if len(temps) > 0 {
			return maxOf(temps), true
		}
		return 0, false
	case reduceLow:
		if len(values) > 0 {
			return minOf(values), true
		}
		if len(temps) > 0 {
			return minOf(temps), true
		}
		return 0, false
	}

	if len(values) == 0 {
		return 0, false
	}
	switch kind {
	case reduceMean:
		return sumOf(values) / float64(len(values)), true
	case reduceMax:
		return maxOf(values), true
	case reduceMin:
		return minOf(values), true
	case reduceSum:
		return sumOf(values), true
	case reduceFirst:
		return values[0], true
	}
	return 0, false
}

func sumOf(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}

func maxOf(values []float64) float64 {
	best := values[0]
	for _, v := range values[1:] {
		if v > best {
			best = v
		}
	}
	return best
}

func minOf(values []float64) float64 {
	best := values[0]
	for _, v := range values[1:] {
		if v < best {
			best = v
		}
	}
	return best
}
