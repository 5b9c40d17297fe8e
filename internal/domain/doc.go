// Package domain models normalized weather data collected from multiple
// commercial and government providers.
//
// # Canonical Units
//
// Every numeric field on [Observation] and [ForecastPeriod] is stored in a
// single canonical unit, converted at mapping time regardless of what the
// provider reported:
//
//	temperature           °C
//	wind speed/gust       km/h
//	wind direction        degrees true
//	pressure              kPa
//	precipitation         mm (rates in mm/hr, snow depth in cm)
//	visibility/cloud      km
//	humidity/cloud cover  percent
//	solar                 W/m²
//
// Timestamps are UTC throughout. Local calendar days are derived on demand
// from a configured IANA time zone, never stored on the normalized entities.
//
// # Product Kinds
//
// Data points carry one of three product kinds:
//
//	observation      a point-in-time station reading
//	forecast_hourly  a model or provider period of roughly an hour
//	forecast_daily   a calendar-day summary, native or derived
//
// Daily periods derived by [AggregateDailyFromPeriods] span local midnight to
// midnight expressed in UTC and are quality-flagged by the caller so derived
// rows are distinguishable from a provider's native daily product.
//
// # Lead Time
//
// Forecast data points record how far ahead of the collection run the period
// lies. Hourly products measure whole hours between the run hour and the
// period's start hour, flooring toward negative infinity so periods slightly
// in the past come out as -1h rather than 0h. Daily products measure the
// difference in local calendar days. The label is a signed offset with a unit
// suffix: "+5h", "-1d", "+0h".
//
// # Metric Registry
//
// The set of metrics that can be materialized into data points is a static,
// ordered registry (one table for observations, one for forecasts). Registry
// order is the emission order, so two materializations of the same record
// produce identical sequences. The metric_type strings in the registry are a
// public contract with downstream consumers: new metrics extend the table,
// existing names are never renamed.
package domain
