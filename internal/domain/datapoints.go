package domain

import (
	"fmt"
	"time"
)

// Product kinds carried on DataPoint.ProductKind.
const (
	ProductObservation    = "observation"
	ProductForecastHourly = "forecast_hourly"
	ProductForecastDaily  = "forecast_daily"
)

// ForecastPointOptions carries the optional materialization inputs that vary
// per call site rather than per period.
type ForecastPointOptions struct {
	// SourceFields maps registry field names to the provider field the value
	// came from, recorded on DataPoint.SourceField when present.
	SourceFields map[string]string
	// QualityFlag marks provenance, e.g. derived daily rows.
	QualityFlag string
	// LeadDayIndex is the ordinal of the period within a daily product.
	LeadDayIndex *int
}

// ObservationDataPoints explodes an observation into one data point per
// populated registry metric, in registry order.
func ObservationDataPoints(obs Observation, runAt time.Time, tzName string, sourceFields map[string]string) ([]DataPoint, error) {
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", tzName, err)
	}

	day := localDay(obs.ObservedAt, loc)
	observedAt := obs.ObservedAt

	points := make([]DataPoint, 0, len(observationMetrics))
	for _, m := range observationMetrics {
		point := DataPoint{
			Provider:    obs.Provider,
			ProductKind: ProductObservation,
			MetricType:  m.metric,
			ObservedAt:  &observedAt,
			RunAt:       runAt,
			LocalDay:    String(day),
			Latitude:    obs.Location.Latitude,
			Longitude:   obs.Location.Longitude,
			Station:     obs.Station,
		}
		if m.unit != "" {
			point.Unit = String(m.unit)
		}
		if sf, ok := sourceFields[m.field]; ok {
			point.SourceField = String(sf)
		}

		if m.text {
			v := m.str(&obs)
			if v == nil {
				continue
			}
			point.ValueText = v
		} else {
			v := m.num(&obs)
			if v == nil {
				continue
			}
			point.ValueNum = v
		}

		points = append(points, point)
	}

	return points, nil
}

// ForecastDataPoints explodes a forecast period into one data point per
// populated registry metric, in registry order, stamping lead-time metadata
// relative to runAt. An unknown productKind is a contract violation by the
// caller and returns an error rather than guessing.
func ForecastDataPoints(period ForecastPeriod, runAt time.Time, tzName string, productKind string, opts ForecastPointOptions) ([]DataPoint, error) {
	if productKind != ProductForecastHourly && productKind != ProductForecastDaily {
		return nil, fmt.Errorf("unsupported product kind %q", productKind)
	}

	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", tzName, err)
	}

	leadUnit := "day"
	var leadOffset int
	if productKind == ProductForecastHourly {
		leadUnit = "hour"
		// Truncate both instants to the top of the hour and floor the whole
		// hour difference toward negative infinity, so a period just behind
		// the run comes out as -1h, never 0h.
		runHour := runAt.UTC().Truncate(time.Hour)
		startHour := period.StartTime.UTC().Truncate(time.Hour)
		leadOffset = int(floorDiv(int64(startHour.Sub(runHour)/time.Second), 3600))
	} else {
		leadOffset = daysBetween(localMidnight(runAt, loc), localMidnight(period.StartTime, loc))
	}
	label := leadLabel(leadOffset, leadUnit)

	var day *string
	if productKind == ProductForecastDaily {
		day = String(localDay(period.StartTime, loc))
	}

	start := period.StartTime
	end := period.EndTime
	issued := period.IssuedAt

	var quality *string
	if opts.QualityFlag != "" {
		quality = String(opts.QualityFlag)
	}

	points := make([]DataPoint, 0, len(forecastMetrics))
	for _, m := range forecastMetrics {
		point := DataPoint{
			Provider:     period.Provider,
			ProductKind:  productKind,
			MetricType:   m.metric,
			ValidStart:   &start,
			ValidEnd:     &end,
			IssuedAt:     &issued,
			RunAt:        runAt,
			LocalDay:     day,
			LeadUnit:     String(leadUnit),
			LeadOffset:   Int(leadOffset),
			LeadLabel:    String(label),
			LeadDayIndex: opts.LeadDayIndex,
			Latitude:     period.Location.Latitude,
			Longitude:    period.Location.Longitude,
			QualityFlag:  quality,
		}
		if m.unit != "" {
			point.Unit = String(m.unit)
		}
		if sf, ok := opts.SourceFields[m.field]; ok {
			point.SourceField = String(sf)
		}

		if m.text {
			v := m.str(&period)
			if v == nil {
				continue
			}
			point.ValueText = v
		} else {
			v := m.num(&period)
			if v == nil {
				continue
			}
			point.ValueNum = v
		}

		points = append(points, point)
	}

	return points, nil
}

// leadLabel formats a signed lead offset, e.g. "+5h", "-1d". Zero is signed
// positive: "+0h".
func leadLabel(offset int, unit string) string {
	suffix := "d"
	if unit == "hour" {
		suffix = "h"
	}
	if offset >= 0 {
		return fmt.Sprintf("+%d%s", offset, suffix)
	}
	return fmt.Sprintf("%d%s", offset, suffix)
}

// localDay renders the local calendar date of t in loc as ISO-8601.
func localDay(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

// localMidnight returns midnight of t's local calendar day as a UTC civil
// anchor suitable for whole-day arithmetic.
func localMidnight(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from) / (24 * time.Hour))
}

// floorDiv divides rounding toward negative infinity, unlike Go's
// truncating integer division.
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
