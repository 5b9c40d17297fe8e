package domain

import "math"

// reduceKind selects how a forecast metric collapses across the periods of
// one local day when deriving a daily summary.
type reduceKind int

const (
	reduceNone reduceKind = iota
	reduceMean
	reduceMax
	reduceMin
	reduceSum
	reduceFirst
	// reduceHigh and reduceLow take max/min of explicit highs/lows, falling
	// back to the extreme of the instantaneous temperatures when no period
	// reported an explicit value.
	reduceHigh
	reduceLow
)

// obsMetric is one row of the observation registry: a stable metric name,
// its canonical unit, and accessors into the wide Observation record.
type obsMetric struct {
	field  string
	metric string
	unit   string
	text   bool
	num    func(*Observation) *float64
	str    func(*Observation) *string
}

// fcMetric is one row of the forecast registry. The setter lets the daily
// aggregator write reduced values back through the same table that drives
// materialization, so the two stay in lockstep when metrics are added.
type fcMetric struct {
	field  string
	metric string
	unit   string
	text   bool
	reduce reduceKind
	num    func(*ForecastPeriod) *float64
	set    func(*ForecastPeriod, float64)
	str    func(*ForecastPeriod) *string
}

func intNum(v *int) *float64 {
	if v == nil {
		return nil
	}
	return Float(float64(*v))
}

// observationMetrics is ordered: materialization emits data points in this
// sequence. Append only; never reorder or rename.
var observationMetrics = []obsMetric{
	{field: "temperature_c", metric: "temperature_air", unit: "C", num: func(o *Observation) *float64 { return o.TemperatureC }},
	{field: "temperature_apparent_c", metric: "temperature_apparent", unit: "C", num: func(o *Observation) *float64 { return o.TemperatureApparentC }},
	{field: "temperature_apparent_shade_c", metric: "temperature_apparent_shade", unit: "C", num: func(o *Observation) *float64 { return o.TemperatureApparentShadeC }},
	{field: "temperature_apparent_alt_c", metric: "temperature_apparent_alt", unit: "C", num: func(o *Observation) *float64 { return o.TemperatureApparentAltC }},
	{field: "temperature_wind_chill_c", metric: "temperature_wind_chill", unit: "C", num: func(o *Observation) *float64 { return o.TemperatureWindChillC }},
	{field: "temperature_wet_bulb_c", metric: "temperature_wet_bulb", unit: "C", num: func(o *Observation) *float64 { return o.TemperatureWetBulbC }},
	{field: "temperature_wet_bulb_globe_c", metric: "temperature_wet_bulb_globe", unit: "C", num: func(o *Observation) *float64 { return o.TemperatureWetBulbGlobeC }},
	{field: "temperature_departure_24h_c", metric: "temperature_departure_24h", unit: "C", num: func(o *Observation) *float64 { return o.TemperatureDeparture24hC }},
	{field: "dewpoint_c", metric: "dewpoint", unit: "C", num: func(o *Observation) *float64 { return o.DewpointC }},
	{field: "temperature_in_c", metric: "temperature_indoor", unit: "C", num: func(o *Observation) *float64 { return o.TemperatureInC }},
	{field: "temperature_apparent_in_c", metric: "temperature_apparent_indoor", unit: "C", num: func(o *Observation) *float64 { return o.TemperatureApparentInC }},
	{field: "dewpoint_in_c", metric: "dewpoint_indoor", unit: "C", num: func(o *Observation) *float64 { return o.DewpointInC }},
	{field: "wind_speed_kph", metric: "wind_speed", unit: "kph", num: func(o *Observation) *float64 { return o.WindSpeedKph }},
	{field: "wind_direction_deg", metric: "wind_direction", unit: "deg", num: func(o *Observation) *float64 { return intNum(o.WindDirectionDeg) }},
	{field: "wind_gust_kph", metric: "wind_gust", unit: "kph", num: func(o *Observation) *float64 { return o.WindGustKph }},
	{field: "wind_gust_daily_max_kph", metric: "wind_gust_daily_max", unit: "kph", num: func(o *Observation) *float64 { return o.WindGustDailyMaxKph }},
	{field: "wind_direction_avg_10m_deg", metric: "wind_direction_avg_10m", unit: "deg", num: func(o *Observation) *float64 { return intNum(o.WindDirectionAvg10mDeg) }},
	{field: "pressure_kpa", metric: "pressure", unit: "kPa", num: func(o *Observation) *float64 { return o.PressureKPa }},
	{field: "pressure_absolute_kpa", metric: "pressure_absolute", unit: "kPa", num: func(o *Observation) *float64 { return o.PressureAbsoluteKPa }},
	{field: "pressure_sea_level_kpa", metric: "pressure_sea_level", unit: "kPa", num: func(o *Observation) *float64 { return o.PressureSeaLevelKPa }},
	{field: "pressure_surface_kpa", metric: "pressure_surface", unit: "kPa", num: func(o *Observation) *float64 { return o.PressureSurfaceKPa }},
	{field: "altimeter_kpa", metric: "altimeter", unit: "kPa", num: func(o *Observation) *float64 { return o.AltimeterKPa }},
	{field: "relative_humidity", metric: "humidity", unit: "%", num: func(o *Observation) *float64 { return o.RelativeHumidity }},
	{field: "relative_humidity_in", metric: "humidity_indoor", unit: "%", num: func(o *Observation) *float64 { return o.RelativeHumidityIn }},
	{field: "visibility_km", metric: "visibility", unit: "km", num: func(o *Observation) *float64 { return o.VisibilityKm }},
	{field: "cloud_cover_pct", metric: "cloud_cover", unit: "%", num: func(o *Observation) *float64 { return o.CloudCoverPct }},
	{field: "cloud_base_km", metric: "cloud_base", unit: "km", num: func(o *Observation) *float64 { return o.CloudBaseKm }},
	{field: "cloud_ceiling_km", metric: "cloud_ceiling", unit: "km", num: func(o *Observation) *float64 { return o.CloudCeilingKm }},
	{field: "precipitation_last_hour_mm", metric: "precip_amount", unit: "mm", num: func(o *Observation) *float64 { return o.PrecipitationLastHourMm }},
	{field: "precipitation_daily_mm", metric: "precip_total_day", unit: "mm", num: func(o *Observation) *float64 { return o.PrecipitationDailyMm }},
	{field: "precipitation_weekly_mm", metric: "precip_total_week", unit: "mm", num: func(o *Observation) *float64 { return o.PrecipitationWeeklyMm }},
	{field: "precipitation_monthly_mm", metric: "precip_total_month", unit: "mm", num: func(o *Observation) *float64 { return o.PrecipitationMonthlyMm }},
	{field: "precipitation_yearly_mm", metric: "precip_total_year", unit: "mm", num: func(o *Observation) *float64 { return o.PrecipitationYearlyMm }},
	{field: "precipitation_event_mm", metric: "precip_total_event", unit: "mm", num: func(o *Observation) *float64 { return o.PrecipitationEventMm }},
	{field: "precipitation_rate_rain_mm_hr", metric: "precip_rate_rain", unit: "mm/hr", num: func(o *Observation) *float64 { return o.PrecipRateRainMmHr }},
	{field: "precipitation_rate_snow_mm_hr", metric: "precip_rate_snow", unit: "mm/hr", num: func(o *Observation) *float64 { return o.PrecipRateSnowMmHr }},
	{field: "precipitation_rate_sleet_mm_hr", metric: "precip_rate_sleet", unit: "mm/hr", num: func(o *Observation) *float64 { return o.PrecipRateSleetMmHr }},
	{field: "precipitation_rate_freezing_rain_mm_hr", metric: "precip_rate_freezing_rain", unit: "mm/hr", num: func(o *Observation) *float64 { return o.PrecipRateFreezingRainMmHr }},
	{field: "precipitation_rate_ice_mm_hr", metric: "precip_rate_ice", unit: "mm/hr", num: func(o *Observation) *float64 { return o.PrecipRateIceMmHr }},
	{field: "uv_index", metric: "uv_index", num: func(o *Observation) *float64 { return o.UVIndex }},
	{field: "uv_health_concern", metric: "uv_health_concern", num: func(o *Observation) *float64 { return o.UVHealthConcern }},
	{field: "solar_radiation_wm2", metric: "solar_radiation", unit: "W/m2", num: func(o *Observation) *float64 { return o.SolarRadiationWm2 }},
	{field: "battery_in", metric: "battery_in", num: func(o *Observation) *float64 { return o.BatteryIn }},
	{field: "battery_out", metric: "battery_out", num: func(o *Observation) *float64 { return o.BatteryOut }},
	{field: "condition", metric: "condition", text: true, str: func(o *Observation) *string { return o.Condition }},
	{field: "precipitation_type", metric: "precip_type", text: true, str: func(o *Observation) *string { return o.PrecipitationType }},
	{field: "pressure_tendency", metric: "pressure_tendency", text: true, str: func(o *Observation) *string { return o.PressureTendency }},
	{field: "condition_code", metric: "condition_code", num: func(o *Observation) *float64 { return intNum(o.ConditionCode) }},
}

// forecastMetrics is ordered and drives both materialization and daily
// aggregation. Append only; never reorder or rename.
var forecastMetrics = []fcMetric{
	{field: "temperature_c", metric: "temperature_air", unit: "C", reduce: reduceMean,
		num: func(p *ForecastPeriod) *float64 { return p.TemperatureC },
		set: func(p *ForecastPeriod, v float64) { p.TemperatureC = Float(v) }},
	{field: "dewpoint_c", metric: "dewpoint", unit: "C", reduce: reduceMean,
		num: func(p *ForecastPeriod) *float64 { return p.DewpointC },
		set: func(p *ForecastPeriod, v float64) { p.DewpointC = Float(v) }},
	{field: "temperature_apparent_c", metric: "temperature_apparent", unit: "C", reduce: reduceMean,
		num: func(p *ForecastPeriod) *float64 { return p.TemperatureApparentC },
		set: func(p *ForecastPeriod, v float64) { p.TemperatureApparentC = Float(v) }},
	{field: "temperature_apparent_shade_c", metric: "temperature_apparent_shade", unit: "C", reduce: reduceMean,
		num: func(p *ForecastPeriod) *float64 { return p.TemperatureApparentShadeC },
		set: func(p *ForecastPeriod, v float64) { p.TemperatureApparentShadeC = Float(v) }},
	{field: "temperature_apparent_alt_c", metric: "temperature_apparent_alt", unit: "C", reduce: reduceMean,
		num: func(p *ForecastPeriod) *float64 { return p.TemperatureApparentAltC },
		set: func(p *ForecastPeriod, v float64) { p.TemperatureApparentAltC = Float(v) }},
	{field: "temperature_wind_chill_c", metric: "temperature_wind_chill", unit: "C", reduce: reduceMean,
		num: func(p *ForecastPeriod) *float64 { return p.TemperatureWindChillC },
		set: func(p *ForecastPeriod, v float64) { p.TemperatureWindChillC = Float(v) }},
	{field: "temperature_wet_bulb_c", metric: "temperature_wet_bulb", unit: "C", reduce: reduceMean,
		num: func(p *ForecastPeriod) *float64 { return p.TemperatureWetBulbC },
		set: func(p *ForecastPeriod, v float64) { p.TemperatureWetBulbC = Float(v) }},
	{field: "temperature_wet_bulb_globe_c", metric: "temperature_wet_bulb_globe", unit: "C", reduce: reduceMean,
		num: func(p *ForecastPeriod) *float64 { return p.TemperatureWetBulbGlobeC },
		set: func(p *ForecastPeriod, v float64) { p.TemperatureWetBulbGlobeC = Float(v) }},
	{field: "temperature_high_c", metric: "temperature_high", unit: "C", reduce: reduceHigh,
		num: func(p *ForecastPeriod) *float64 { return p.TemperatureHighC },
		set: func(p *ForecastPeriod, v float64) { p.TemperatureHighC = Float(v) }},
	{field: "temperature_low_c", metric: "temperature_low", unit: "C", reduce: reduceLow,
		num: func(p *ForecastPeriod) *float64 { return p.TemperatureLowC },
		set: func(p *ForecastPeriod, v float64) { p.TemperatureLowC = Float(v) }},
	{field: "precipitation_probability", metric: "precip_probability", unit: "%", reduce: reduceMax,
		num: func(p *ForecastPeriod) *float64 { return p.PrecipitationProbability },
		set: func(p *ForecastPeriod, v float64) { p.PrecipitationProbability = Float(v) }},
	{field: "precipitation_probability_rain", metric: "precip_probability_rain", unit: "%", reduce: reduceMax,
		num: func(p *ForecastPeriod) *float64 { return p.PrecipProbabilityRain },
		set: func(p *ForecastPeriod, v float64) { p.PrecipProbabilityRain = Float(v) }},
	{field: "precipitation_probability_snow", metric: "precip_probability_snow", unit: "%", reduce: reduceMax,
		num: func(p *ForecastPeriod) *float64 { return p.PrecipProbabilitySnow },
		set: func(p *ForecastPeriod, v float64) { p.PrecipProbabilitySnow = Float(v) }},
	{field: "precipitation_probability_ice", metric: "precip_probability_ice", unit: "%", reduce: reduceMax,
		num: func(p *ForecastPeriod) *float64 { return p.PrecipProbabilityIce },
		set: func(p *ForecastPeriod, v float64) { p.PrecipProbabilityIce = Float(v) }},
	{field: "precipitation_probability_thunderstorm", metric: "precip_probability_thunderstorm", unit: "%", reduce: reduceMax,
		num: func(p *ForecastPeriod) *float64 { return p.PrecipProbabilityThunderstorm },
		set: func(p *ForecastPeriod, v float64) { p.PrecipProbabilityThunderstorm = Float(v) }},
	{field: "precipitation_mm", metric: "precip_amount", unit: "mm", reduce: reduceSum,
		num: func(p *ForecastPeriod) *float64 { return p.PrecipitationMm },
		set: func(p *ForecastPeriod, v float64) { p.PrecipitationMm = Float(v) }},
	{field: "precipitation_amount_rain_mm", metric: "precip_amount_rain", unit: "mm", reduce: reduceSum,
		num: func(p *ForecastPeriod) *float64 { return p.PrecipAmountRainMm },
		set: func(p *ForecastPeriod, v float64) { p.PrecipAmountRainMm = Float(v) }},
	{field: "precipitation_amount_snow_mm", metric: "precip_amount_snow", unit: "mm", reduce: reduceSum,
		num: func(p *ForecastPeriod) *float64 { return p.PrecipAmountSnowMm },
		set: func(p *ForecastPeriod, v float64) { p.PrecipAmountSnowMm = Float(v) }},
	{field: "precipitation_amount_sleet_mm", metric: "precip_amount_sleet", unit: "mm", reduce: reduceSum,
		num: func(p *ForecastPeriod) *float64 { return p.PrecipAmountSleetMm },
		set: func(p *ForecastPeriod, v float64) { p.PrecipAmountSleetMm = Float(v) }},
	{field: "precipitation_amount_ice_mm", metric: "precip_amount_ice", unit: "mm", reduce: reduceSum,
		num: func(p *ForecastPeriod) *float64 { return p.PrecipAmountIceMm },
		set: func(p *ForecastPeriod, v float64) { p.PrecipAmountIceMm = Float(v) }},
	{field: "precipitation_amount_snow_lwe_mm", metric: "precip_amount_snow_lwe", unit: "mm", reduce: reduceSum,
		num: func(p *ForecastPeriod) *float64 { return p.PrecipAmountSnowLweMm },
		set: func(p *ForecastPeriod, v float64) { p.PrecipAmountSnowLweMm = Float(v) }},
	{field: "precipitation_amount_sleet_lwe_mm", metric: "precip_amount_sleet_lwe", unit: "mm", reduce: reduceSum,
		num: func(p *ForecastPeriod) *float64 { return p.PrecipAmountSleetLweMm },
		set: func(p *ForecastPeriod, v float64) { p.PrecipAmountSleetLweMm = Float(v) }},
	{field: "precipitation_amount_ice_lwe_mm", metric: "precip_amount_ice_lwe", unit: "mm", reduce: reduceSum,
		num: func(p *ForecastPeriod) *float64 { return p.PrecipAmountIceLweMm },
		set: func(p *ForecastPeriod, v float64) { p.PrecipAmountIceLweMm = Float(v) }},
	{field: "precipitation_rate_rain_mm_hr", metric: "precip_rate_rain", unit: "mm/hr", reduce: reduceMean,
		num: func(p *ForecastPeriod) *float64 { return p.PrecipRateRainMmHr },
		set: func(p *ForecastPeriod, v float64) { p.PrecipRateRainMmHr = Float(v) }},
	{field: "precipitation_rate_snow_mm_hr", metric: "precip_rate_snow", unit: "mm/hr", reduce: reduceMean,
		num: func(p *ForecastPeriod) *float64 { return p.PrecipRateSnowMmHr },
		set: func(p *ForecastPeriod, v float64) { p.PrecipRateSnowMmHr = Float(v) }},
	{field: "precipitation_rate_sleet_mm_hr", metric: "precip_rate_sleet", unit: "mm/hr", reduce: reduceMean,
		num: func(p *ForecastPeriod) *float64 { return p.PrecipRateSleetMmHr },
		set: func(p *ForecastPeriod, v float64) { p.PrecipRateSleetMmHr = Float(v) }},
	{field: "precipitation_rate_freezing_rain_mm_hr", metric: "precip_rate_freezing_rain", unit: "mm/hr", reduce: reduceMean,
		num: func(p *ForecastPeriod) *float64 { return p.PrecipRateFreezingRainMmHr },
		set: func(p *ForecastPeriod, v float64) { p.PrecipRateFreezingRainMmHr = Float(v) }},
	{field: "precipitation_rate_ice_mm_hr", metric: "precip_rate_ice", unit: "mm/hr", reduce: reduceMean,
		num: func(p *ForecastPeriod) *float64 { return p.PrecipRateIceMmHr },
		set: func(p *ForecastPeriod, v float64) { p.PrecipRateIceMmHr = Float(v) }},
	{field: "snow_depth_cm", metric: "snow_depth", unit: "cm", reduce: reduceMax,
		num: func(p *ForecastPeriod) *float64 { return p.SnowDepthCm },
		set: func(p *ForecastPeriod, v float64) { p.SnowDepthCm = Float(v) }},
	{field: "evapotranspiration_mm", metric: "evapotranspiration", unit: "mm", reduce: reduceSum,
		num: func(p *ForecastPeriod) *float64 { return p.EvapotranspirationMm },
		set: func(p *ForecastPeriod, v float64) { p.EvapotranspirationMm = Float(v) }},
	{field: "solar_irradiance_wm2", metric: "solar_irradiance", unit: "W/m2", reduce: reduceMean,
		num: func(p *ForecastPeriod) *float64 { return p.SolarIrradianceWm2 },
		set: func(p *ForecastPeriod, v float64) { p.SolarIrradianceWm2 = Float(v) }},
	{field: "sun_hours", metric: "sun_hours", unit: "hour", reduce: reduceSum,
		num: func(p *ForecastPeriod) *float64 { return p.SunHours },
		set: func(p *ForecastPeriod, v float64) { p.SunHours = Float(v) }},
	{field: "wind_speed_kph", metric: "wind_speed", unit: "kph", reduce: reduceMax,
		num: func(p *ForecastPeriod) *float64 { return p.WindSpeedKph },
		set: func(p *ForecastPeriod, v float64) { p.WindSpeedKph = Float(v) }},
	{field: "wind_direction_deg", metric: "wind_direction", unit: "deg", reduce: reduceFirst,
		num: func(p *ForecastPeriod) *float64 { return intNum(p.WindDirectionDeg) },
		set: func(p *ForecastPeriod, v float64) { p.WindDirectionDeg = Int(int(math.Round(v))) }},
	{field: "wind_gust_kph", metric: "wind_gust", unit: "kph", reduce: reduceMax,
		num: func(p *ForecastPeriod) *float64 { return p.WindGustKph },
		set: func(p *ForecastPeriod, v float64) { p.WindGustKph = Float(v) }},
	{field: "uv_index", metric: "uv_index", reduce: reduceMax,
		num: func(p *ForecastPeriod) *float64 { return p.UVIndex },
		set: func(p *ForecastPeriod, v float64) { p.UVIndex = Float(v) }},
	{field: "uv_health_concern", metric: "uv_health_concern", reduce: reduceMax,
		num: func(p *ForecastPeriod) *float64 { return p.UVHealthConcern },
		set: func(p *ForecastPeriod, v float64) { p.UVHealthConcern = Float(v) }},
	{field: "relative_humidity", metric: "humidity", unit: "%", reduce: reduceMean,
		num: func(p *ForecastPeriod) *float64 { return p.RelativeHumidity },
		set: func(p *ForecastPeriod, v float64) { p.RelativeHumidity = Float(v) }},
	{field: "visibility_km", metric: "visibility", unit: "km", reduce: reduceMean,
		num: func(p *ForecastPeriod) *float64 { return p.VisibilityKm },
		set: func(p *ForecastPeriod, v float64) { p.VisibilityKm = Float(v) }},
	{field: "pressure_sea_level_kpa", metric: "pressure_sea_level", unit: "kPa", reduce: reduceMean,
		num: func(p *ForecastPeriod) *float64 { return p.PressureSeaLevelKPa },
		set: func(p *ForecastPeriod, v float64) { p.PressureSeaLevelKPa = Float(v) }},
	{field: "pressure_surface_kpa", metric: "pressure_surface", unit: "kPa", reduce: reduceMean,
		num: func(p *ForecastPeriod) *float64 { return p.PressureSurfaceKPa },
		set: func(p *ForecastPeriod, v float64) { p.PressureSurfaceKPa = Float(v) }},
	{field: "altimeter_kpa", metric: "altimeter", unit: "kPa", reduce: reduceMean,
		num: func(p *ForecastPeriod) *float64 { return p.AltimeterKPa },
		set: func(p *ForecastPeriod, v float64) { p.AltimeterKPa = Float(v) }},
	{field: "cloud_cover_pct", metric: "cloud_cover", unit: "%", reduce: reduceMean,
		num: func(p *ForecastPeriod) *float64 { return p.CloudCoverPct },
		set: func(p *ForecastPeriod, v float64) { p.CloudCoverPct = Float(v) }},
	{field: "cloud_base_km", metric: "cloud_base", unit: "km", reduce: reduceMean,
		num: func(p *ForecastPeriod) *float64 { return p.CloudBaseKm },
		set: func(p *ForecastPeriod, v float64) { p.CloudBaseKm = Float(v) }},
	{field: "cloud_ceiling_km", metric: "cloud_ceiling", unit: "km", reduce: reduceMean,
		num: func(p *ForecastPeriod) *float64 { return p.CloudCeilingKm },
		set: func(p *ForecastPeriod, v float64) { p.CloudCeilingKm = Float(v) }},
	{field: "summary", metric: "condition", text: true, reduce: reduceNone,
		str: func(p *ForecastPeriod) *string { return p.Summary }},
	{field: "condition_code", metric: "condition_code", reduce: reduceNone,
		num: func(p *ForecastPeriod) *float64 { return intNum(p.ConditionCode) }},
}
