package domain

import "time"

// Location is a WGS-84 latitude/longitude pair for a station or grid cell.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Observation is a normalized point-in-time reading from one provider.
// All fields beyond the identity block are optional; nil means the provider
// did not report that metric. Values are always in canonical units
// (see the package documentation).
type Observation struct {
	Provider   string    `json:"provider"`
	Station    *string   `json:"station,omitempty"`
	Location   Location  `json:"location"`
	ObservedAt time.Time `json:"observed_at"`

	TemperatureC             *float64 `json:"temperature_c,omitempty"`
	DewpointC                *float64 `json:"dewpoint_c,omitempty"`
	WindSpeedKph             *float64 `json:"wind_speed_kph,omitempty"`
	WindDirectionDeg         *int     `json:"wind_direction_deg,omitempty"`
	PressureKPa              *float64 `json:"pressure_kpa,omitempty"`
	RelativeHumidity         *float64 `json:"relative_humidity,omitempty"`
	VisibilityKm             *float64 `json:"visibility_km,omitempty"`
	Condition                *string  `json:"condition,omitempty"`
	PrecipitationLastHourMm  *float64 `json:"precipitation_last_hour_mm,omitempty"`
	PrecipitationDailyMm     *float64 `json:"precipitation_daily_mm,omitempty"`
	PrecipitationWeeklyMm    *float64 `json:"precipitation_weekly_mm,omitempty"`
	PrecipitationMonthlyMm   *float64 `json:"precipitation_monthly_mm,omitempty"`
	PrecipitationYearlyMm    *float64 `json:"precipitation_yearly_mm,omitempty"`
	PrecipitationEventMm     *float64 `json:"precipitation_event_mm,omitempty"`
	PressureAbsoluteKPa      *float64 `json:"pressure_absolute_kpa,omitempty"`
	WindGustKph              *float64 `json:"wind_gust_kph,omitempty"`
	WindGustDailyMaxKph      *float64 `json:"wind_gust_daily_max_kph,omitempty"`
	WindDirectionAvg10mDeg   *int     `json:"wind_direction_avg_10m_deg,omitempty"`
	UVIndex                  *float64 `json:"uv_index,omitempty"`
	SolarRadiationWm2        *float64 `json:"solar_radiation_wm2,omitempty"`
	TemperatureApparentC     *float64 `json:"temperature_apparent_c,omitempty"`
	TemperatureInC           *float64 `json:"temperature_in_c,omitempty"`
	TemperatureApparentInC   *float64 `json:"temperature_apparent_in_c,omitempty"`
	DewpointInC              *float64 `json:"dewpoint_in_c,omitempty"`
	RelativeHumidityIn       *float64 `json:"relative_humidity_in,omitempty"`
	PressureSeaLevelKPa      *float64 `json:"pressure_sea_level_kpa,omitempty"`
	PressureSurfaceKPa       *float64 `json:"pressure_surface_kpa,omitempty"`
	AltimeterKPa             *float64 `json:"altimeter_kpa,omitempty"`
	CloudCoverPct            *float64 `json:"cloud_cover_pct,omitempty"`
	CloudBaseKm              *float64 `json:"cloud_base_km,omitempty"`
	CloudCeilingKm           *float64 `json:"cloud_ceiling_km,omitempty"`
	UVHealthConcern          *float64 `json:"uv_health_concern,omitempty"`
	TemperatureApparentShadeC *float64 `json:"temperature_apparent_shade_c,omitempty"`
	TemperatureApparentAltC  *float64 `json:"temperature_apparent_alt_c,omitempty"`
	TemperatureWindChillC    *float64 `json:"temperature_wind_chill_c,omitempty"`
	TemperatureWetBulbC      *float64 `json:"temperature_wet_bulb_c,omitempty"`
	TemperatureWetBulbGlobeC *float64 `json:"temperature_wet_bulb_globe_c,omitempty"`
	TemperatureDeparture24hC *float64 `json:"temperature_departure_24h_c,omitempty"`
	PrecipitationType        *string  `json:"precipitation_type,omitempty"`
	PressureTendency         *string  `json:"pressure_tendency,omitempty"`
	ConditionCode            *int     `json:"condition_code,omitempty"`
	PrecipRateRainMmHr       *float64 `json:"precipitation_rate_rain_mm_hr,omitempty"`
	PrecipRateSnowMmHr       *float64 `json:"precipitation_rate_snow_mm_hr,omitempty"`
	PrecipRateSleetMmHr      *float64 `json:"precipitation_rate_sleet_mm_hr,omitempty"`
	PrecipRateFreezingRainMmHr *float64 `json:"precipitation_rate_freezing_rain_mm_hr,omitempty"`
	PrecipRateIceMmHr        *float64 `json:"precipitation_rate_ice_mm_hr,omitempty"`
	BatteryIn                *float64 `json:"battery_in,omitempty"`
	BatteryOut               *float64 `json:"battery_out,omitempty"`
}

// ForecastPeriod is a normalized forecast valid for [StartTime, EndTime).
type ForecastPeriod struct {
	Provider  string    `json:"provider"`
	Location  Location  `json:"location"`
	IssuedAt  time.Time `json:"issued_at"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`

	TemperatureC              *float64 `json:"temperature_c,omitempty"`
	DewpointC                 *float64 `json:"dewpoint_c,omitempty"`
	TemperatureHighC          *float64 `json:"temperature_high_c,omitempty"`
	TemperatureLowC           *float64 `json:"temperature_low_c,omitempty"`
	PrecipitationProbability  *float64 `json:"precipitation_probability,omitempty"`
	PrecipitationMm           *float64 `json:"precipitation_mm,omitempty"`
	Summary                   *string  `json:"summary,omitempty"`
	WindSpeedKph              *float64 `json:"wind_speed_kph,omitempty"`
	WindDirectionDeg          *int     `json:"wind_direction_deg,omitempty"`
	WindGustKph               *float64 `json:"wind_gust_kph,omitempty"`
	TemperatureApparentC      *float64 `json:"temperature_apparent_c,omitempty"`
	UVIndex                   *float64 `json:"uv_index,omitempty"`
	RelativeHumidity          *float64 `json:"relative_humidity,omitempty"`
	VisibilityKm              *float64 `json:"visibility_km,omitempty"`
	PressureSeaLevelKPa       *float64 `json:"pressure_sea_level_kpa,omitempty"`
	PressureSurfaceKPa        *float64 `json:"pressure_surface_kpa,omitempty"`
	AltimeterKPa              *float64 `json:"altimeter_kpa,omitempty"`
	CloudCoverPct             *float64 `json:"cloud_cover_pct,omitempty"`
	CloudBaseKm               *float64 `json:"cloud_base_km,omitempty"`
	CloudCeilingKm            *float64 `json:"cloud_ceiling_km,omitempty"`
	UVHealthConcern           *float64 `json:"uv_health_concern,omitempty"`
	TemperatureApparentShadeC *float64 `json:"temperature_apparent_shade_c,omitempty"`
	TemperatureApparentAltC   *float64 `json:"temperature_apparent_alt_c,omitempty"`
	TemperatureWindChillC     *float64 `json:"temperature_wind_chill_c,omitempty"`
	TemperatureWetBulbC       *float64 `json:"temperature_wet_bulb_c,omitempty"`
	TemperatureWetBulbGlobeC  *float64 `json:"temperature_wet_bulb_globe_c,omitempty"`
	PrecipProbabilityRain     *float64 `json:"precipitation_probability_rain,omitempty"`
	PrecipProbabilitySnow     *float64 `json:"precipitation_probability_snow,omitempty"`
	PrecipProbabilityIce      *float64 `json:"precipitation_probability_ice,omitempty"`
	PrecipProbabilityThunderstorm *float64 `json:"precipitation_probability_thunderstorm,omitempty"`
	PrecipAmountRainMm        *float64 `json:"precipitation_amount_rain_mm,omitempty"`
	PrecipAmountSnowMm        *float64 `json:"precipitation_amount_snow_mm,omitempty"`
	PrecipAmountSleetMm       *float64 `json:"precipitation_amount_sleet_mm,omitempty"`
	PrecipAmountIceMm         *float64 `json:"precipitation_amount_ice_mm,omitempty"`
	PrecipAmountSnowLweMm     *float64 `json:"precipitation_amount_snow_lwe_mm,omitempty"`
	PrecipAmountSleetLweMm    *float64 `json:"precipitation_amount_sleet_lwe_mm,omitempty"`
	PrecipAmountIceLweMm      *float64 `json:"precipitation_amount_ice_lwe_mm,omitempty"`
	PrecipRateRainMmHr        *float64 `json:"precipitation_rate_rain_mm_hr,omitempty"`
	PrecipRateSnowMmHr        *float64 `json:"precipitation_rate_snow_mm_hr,omitempty"`
	PrecipRateSleetMmHr       *float64 `json:"precipitation_rate_sleet_mm_hr,omitempty"`
	PrecipRateFreezingRainMmHr *float64 `json:"precipitation_rate_freezing_rain_mm_hr,omitempty"`
	PrecipRateIceMmHr         *float64 `json:"precipitation_rate_ice_mm_hr,omitempty"`
	SnowDepthCm               *float64 `json:"snow_depth_cm,omitempty"`
	EvapotranspirationMm      *float64 `json:"evapotranspiration_mm,omitempty"`
	SolarIrradianceWm2        *float64 `json:"solar_irradiance_wm2,omitempty"`
	SunHours                  *float64 `json:"sun_hours,omitempty"`
	ConditionCode             *int     `json:"condition_code,omitempty"`
}

// DataPoint is the long-format, one-metric-per-row materialization handed to
// storage. Exactly one of ValueNum/ValueText is set, matching the metric's
// declared kind in the registry.
type DataPoint struct {
	Provider     string     `json:"provider"`
	ProductKind  string     `json:"product_kind"`
	MetricType   string     `json:"metric_type"`
	ValueNum     *float64   `json:"value_num,omitempty"`
	ValueText    *string    `json:"value_text,omitempty"`
	Unit         *string    `json:"unit,omitempty"`
	ValueRaw     *string    `json:"value_raw,omitempty"`
	UnitRaw      *string    `json:"unit_raw,omitempty"`
	ObservedAt   *time.Time `json:"observed_at,omitempty"`
	ValidStart   *time.Time `json:"valid_start,omitempty"`
	ValidEnd     *time.Time `json:"valid_end,omitempty"`
	IssuedAt     *time.Time `json:"issued_at,omitempty"`
	RunAt        time.Time  `json:"run_at"`
	LocalDay     *string    `json:"local_day,omitempty"`
	LeadUnit     *string    `json:"lead_unit,omitempty"`
	LeadOffset   *int       `json:"lead_offset,omitempty"`
	LeadLabel    *string    `json:"lead_label,omitempty"`
	LeadDayIndex *int       `json:"lead_day_index,omitempty"`
	Latitude     float64    `json:"latitude"`
	Longitude    float64    `json:"longitude"`
	Station      *string    `json:"station,omitempty"`
	SourceField  *string    `json:"source_field,omitempty"`
	QualityFlag  *string    `json:"quality_flag,omitempty"`
}

// Float returns a pointer to v. Convenience for building records with
// optional fields.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// String returns a pointer to v.
func String(v string) *string { return &v }
