package mapper

import (
	"fmt"
	"strings"
	"time"

	"github.com/ericfeunekes/wxbench/internal/domain"
)

const accuWeatherProvider = "accuweather"

// AccuWeatherLocation is the resolved location-key record the other
// AccuWeather endpoints are addressed by.
type AccuWeatherLocation struct {
	Key      string
	Location domain.Location
	Name     *string
}

// blockOrMetric unwraps AccuWeather's {"Metric": {...}, "Imperial": {...}}
// envelope, falling back to the block itself for endpoints that return the
// flat single-unit form.
func blockOrMetric(v any) map[string]any {
	block := object(v)
	if m := object(get(block, "Metric")); len(m) > 0 {
		return m
	}
	return block
}

func extractMetric(block map[string]any) (*float64, string) {
	if block == nil {
		return nil, ""
	}
	value := floatVal(get(block, "Value"))
	unit, _ := get(block, "Unit").(string)
	return value, unit
}

func temperatureFromBlock(block map[string]any) *float64 {
	value, unit := extractMetric(block)
	if unit != "" && strings.HasPrefix(strings.ToLower(unit), "f") {
		return domain.FahrenheitToCelsius(value)
	}
	return value
}

func speedFromBlock(block map[string]any) *float64 {
	value, unit := extractMetric(block)
	switch strings.ToLower(unit) {
	case "mi/h", "mph":
		return domain.MphToKph(value)
	}
	return value
}

func distanceFromBlock(block map[string]any) *float64 {
	value, unit := extractMetric(block)
	switch strings.ToLower(unit) {
	case "mi":
		return domain.MilesToKm(value)
	case "m":
		return domain.MetersToKm(value)
	case "ft", "feet":
		return domain.FeetToKm(value)
	}
	return value
}

func precipFromBlock(block map[string]any) *float64 {
	value, unit := extractMetric(block)
	if strings.ToLower(unit) == "in" {
		return domain.InchesToMm(value)
	}
	return value
}

func pressureFromBlock(block map[string]any) *float64 {
	value, unit := extractMetric(block)
	return domain.PressureToKPa(value, unit)
}

// averageFromRange reads a {Minimum, Maximum, Average} range, preferring the
// declared average and meaning the extremes otherwise.
func averageFromRange(block map[string]any, convert func(map[string]any) *float64) *float64 {
	if block == nil {
		return nil
	}
	if avg := object(get(block, "Average")); len(avg) > 0 {
		return convert(avg)
	}
	if v := floatVal(get(block, "Average")); v != nil {
		return v
	}

	var minVal, maxVal *float64
	if m := object(get(block, "Minimum")); len(m) > 0 {
		minVal = convert(m)
	} else {
		minVal = floatVal(get(block, "Minimum"))
	}
	if m := object(get(block, "Maximum")); len(m) > 0 {
		maxVal = convert(m)
	} else {
		maxVal = floatVal(get(block, "Maximum"))
	}
	if minVal != nil && maxVal != nil {
		return domain.Float((*minVal + *maxVal) / 2.0)
	}
	if minVal != nil {
		return minVal
	}
	return maxVal
}

func rawValue(block map[string]any) *float64 {
	if v := floatVal(get(block, "Value")); v != nil {
		return v
	}
	return nil
}

func accuWeatherTime(entry map[string]any, epochKey, isoKey string) *time.Time {
	if t := epochTime(get(entry, epochKey)); t != nil {
		return t
	}
	return isoTime(get(entry, isoKey))
}

// AccuWeatherLocationFromPayload maps a location search result to the key
// record used to address the forecast endpoints.
func AccuWeatherLocationFromPayload(payload map[string]any) (AccuWeatherLocation, error) {
	key := textVal(get(payload, "Key"))
	geo := getObject(payload, "GeoPosition")
	lat := floatVal(get(geo, "Latitude"))
	lon := floatVal(get(geo, "Longitude"))
	if key == nil || lat == nil || lon == nil {
		return AccuWeatherLocation{}, fmt.Errorf("accuweather location: %w", ErrMissingCoordinates)
	}

	return AccuWeatherLocation{
		Key:      *key,
		Location: domain.Location{Latitude: *lat, Longitude: *lon},
		Name:     firstText(get(payload, "LocalizedName"), get(payload, "EnglishName")),
	}, nil
}

// AccuWeatherObservation maps a current-conditions payload. Coordinates come
// out-of-band since the endpoint is addressed by location key; they are
// plain values here, validated once at config load rather than per payload.
func AccuWeatherObservation(payload []any, latitude, longitude float64) (domain.Observation, error) {
	if len(payload) == 0 {
		return domain.Observation{}, fmt.Errorf("accuweather observation: %w", ErrEmptyPayload)
	}

	current := object(payload[0])
	observedAt := accuWeatherTime(current, "EpochTime", "LocalObservationDateTime")
	if observedAt == nil {
		return domain.Observation{}, fmt.Errorf("accuweather observation: %w", ErrMissingTimestamp)
	}

	wind := getObject(current, "Wind")
	gust := getObject(current, "WindGust")
	pressureBlock := blockOrMetric(get(current, "Pressure"))
	precipSummary := getObject(getObject(current, "PrecipitationSummary"), "Precipitation")
	precipBlock := precipSummary
	if m := getObject(precipSummary, "Metric"); len(m) > 0 {
		precipBlock = m
	}
	tendency := getObject(current, "PressureTendency")

	return domain.Observation{
		Provider:                 accuWeatherProvider,
		Station:                  firstText(get(current, "StationName"), get(current, "WeatherText")),
		Location:                 domain.Location{Latitude: latitude, Longitude: longitude},
		ObservedAt:               *observedAt,
		TemperatureC:             temperatureFromBlock(blockOrMetric(get(current, "Temperature"))),
		TemperatureApparentC:     temperatureFromBlock(blockOrMetric(get(current, "RealFeelTemperature"))),
		TemperatureApparentShadeC: temperatureFromBlock(blockOrMetric(get(current, "RealFeelTemperatureShade"))),
		TemperatureApparentAltC:  temperatureFromBlock(blockOrMetric(get(current, "ApparentTemperature"))),
		TemperatureWindChillC:    temperatureFromBlock(blockOrMetric(get(current, "WindChillTemperature"))),
		TemperatureWetBulbC:      temperatureFromBlock(blockOrMetric(get(current, "WetBulbTemperature"))),
		TemperatureWetBulbGlobeC: temperatureFromBlock(blockOrMetric(get(current, "WetBulbGlobeTemperature"))),
		TemperatureDeparture24hC: temperatureFromBlock(blockOrMetric(get(current, "Past24HourTemperatureDeparture"))),
		DewpointC:                temperatureFromBlock(blockOrMetric(get(current, "DewPoint"))),
		WindSpeedKph:             speedFromBlock(blockOrMetric(get(wind, "Speed"))),
		WindDirectionDeg:         intVal(get(getObject(wind, "Direction"), "Degrees")),
		WindGustKph:              speedFromBlock(blockOrMetric(get(gust, "Speed"))),
		PressureKPa:              pressureFromBlock(pressureBlock),
		PressureSeaLevelKPa:      pressureFromBlock(pressureBlock),
		RelativeHumidity:         floatVal(get(current, "RelativeHumidity")),
		RelativeHumidityIn:       floatVal(get(current, "IndoorRelativeHumidity")),
		VisibilityKm:             distanceFromBlock(blockOrMetric(get(current, "Visibility"))),
		CloudCeilingKm:           distanceFromBlock(blockOrMetric(get(current, "Ceiling"))),
		CloudCoverPct:            floatVal(get(current, "CloudCover")),
		Condition:                firstText(get(current, "WeatherText")),
		ConditionCode:            intVal(get(current, "WeatherIcon")),
		PrecipitationLastHourMm:  orFloat(precipFromBlock(blockOrMetric(get(current, "Precip1hr"))), precipFromBlock(precipBlock)),
		UVIndex:                  orFloat(floatVal(get(current, "UVIndexFloat")), floatVal(get(current, "UVIndex"))),
		PrecipitationType:        firstText(get(current, "PrecipitationType")),
		PressureTendency:         firstText(get(tendency, "LocalizedText"), get(tendency, "Code")),
	}, nil
}

// AccuWeatherHourlyForecast maps a 12-hour hourly forecast payload.
func AccuWeatherHourlyForecast(payload []any, latitude, longitude float64) ([]domain.ForecastPeriod, error) {
	if len(payload) == 0 {
		return nil, fmt.Errorf("accuweather hourly forecast: %w", ErrEmptyPayload)
	}

	issuedAt := accuWeatherTime(object(payload[0]), "EpochDateTime", "DateTime")
	if issuedAt == nil {
		return nil, fmt.Errorf("accuweather hourly forecast: %w", ErrMissingTimestamp)
	}

	periods := make([]domain.ForecastPeriod, 0, len(payload))
	for _, raw := range payload {
		entry := object(raw)
		start := accuWeatherTime(entry, "EpochDateTime", "DateTime")
		if start == nil {
			return nil, fmt.Errorf("accuweather hourly period: %w", ErrMissingTimestamp)
		}

		wind := getObject(entry, "Wind")
		gust := getObject(entry, "WindGust")
		rain := precipFromBlock(blockOrMetric(get(entry, "Rain")))
		snow := precipFromBlock(blockOrMetric(get(entry, "Snow")))
		ice := precipFromBlock(blockOrMetric(get(entry, "Ice")))
		totalLiquid := precipFromBlock(blockOrMetric(get(entry, "TotalLiquid")))

		periods = append(periods, domain.ForecastPeriod{
			Provider:                 accuWeatherProvider,
			Location:                 domain.Location{Latitude: latitude, Longitude: longitude},
			IssuedAt:                 *issuedAt,
			StartTime:                *start,
			EndTime:                  start.Add(time.Hour),
			TemperatureC:             temperatureFromBlock(blockOrMetric(get(entry, "Temperature"))),
			TemperatureApparentC:     temperatureFromBlock(blockOrMetric(get(entry, "RealFeelTemperature"))),
			TemperatureApparentShadeC: temperatureFromBlock(blockOrMetric(get(entry, "RealFeelTemperatureShade"))),
			TemperatureWetBulbC:      temperatureFromBlock(blockOrMetric(get(entry, "WetBulbTemperature"))),
			TemperatureWetBulbGlobeC: temperatureFromBlock(blockOrMetric(get(entry, "WetBulbGlobeTemperature"))),
			DewpointC:                temperatureFromBlock(blockOrMetric(get(entry, "DewPoint"))),
			PrecipitationProbability: floatVal(get(entry, "PrecipitationProbability")),
			PrecipProbabilityThunderstorm: floatVal(get(entry, "ThunderstormProbability")),
			PrecipProbabilityRain:    floatVal(get(entry, "RainProbability")),
			PrecipProbabilitySnow:    floatVal(get(entry, "SnowProbability")),
			PrecipProbabilityIce:     floatVal(get(entry, "IceProbability")),
			PrecipitationMm:          orFloat(totalLiquid, orFloat(rain, snow)),
			PrecipAmountRainMm:       rain,
			PrecipAmountSnowMm:       snow,
			PrecipAmountIceMm:        ice,
			Summary:                  firstText(get(entry, "IconPhrase"), get(entry, "ShortPhrase"), get(entry, "LongPhrase")),
			ConditionCode:            intVal(get(entry, "WeatherIcon")),
			WindSpeedKph:             speedFromBlock(blockOrMetric(get(wind, "Speed"))),
			WindDirectionDeg:         intVal(get(getObject(wind, "Direction"), "Degrees")),
			WindGustKph:              speedFromBlock(blockOrMetric(get(gust, "Speed"))),
			UVIndex:                  orFloat(floatVal(get(entry, "UVIndexFloat")), floatVal(get(entry, "UVIndex"))),
			RelativeHumidity:         floatVal(get(entry, "RelativeHumidity")),
			VisibilityKm:             distanceFromBlock(blockOrMetric(get(entry, "Visibility"))),
			CloudCeilingKm:           distanceFromBlock(blockOrMetric(get(entry, "Ceiling"))),
		})
	}

	return periods, nil
}

// AccuWeatherDailyForecast maps a daily forecast payload, using the Day
// half-day block for amounts and probabilities.
func AccuWeatherDailyForecast(payload map[string]any, latitude, longitude float64) ([]domain.ForecastPeriod, error) {
	daily := getArray(payload, "DailyForecasts")
	if len(daily) == 0 {
		return nil, fmt.Errorf("accuweather daily forecast: %w", ErrEmptyPayload)
	}

	issuedAt := accuWeatherTime(object(daily[0]), "EpochDate", "Date")
	if issuedAt == nil {
		return nil, fmt.Errorf("accuweather daily forecast: %w", ErrMissingTimestamp)
	}

	periods := make([]domain.ForecastPeriod, 0, len(daily))
	for _, raw := range daily {
		entry := object(raw)
		start := accuWeatherTime(entry, "EpochDate", "Date")
		if start == nil {
			return nil, fmt.Errorf("accuweather daily period: %w", ErrMissingTimestamp)
		}

		temp := getObject(entry, "Temperature")
		tempMin := temperatureFromBlock(blockOrMetric(get(temp, "Minimum")))
		tempMax := temperatureFromBlock(blockOrMetric(get(temp, "Maximum")))
		var tempAvg *float64
		if tempMin != nil && tempMax != nil {
			tempAvg = domain.Float((*tempMin + *tempMax) / 2.0)
		}

		realFeel := getObject(entry, "RealFeelTemperature")
		rfMin := temperatureFromBlock(blockOrMetric(get(realFeel, "Minimum")))
		rfMax := temperatureFromBlock(blockOrMetric(get(realFeel, "Maximum")))
		var apparent *float64
		if rfMin != nil && rfMax != nil {
			apparent = domain.Float((*rfMin + *rfMax) / 2.0)
		}

		day := getObject(entry, "Day")
		wind := getObject(day, "Wind")
		gust := getObject(day, "WindGust")

		var uvIndex *float64
		switch uv := firstKey(day, "UVIndex", "UVIndexFloat").(type) {
		case map[string]any:
			uvMin := floatVal(get(uv, "Minimum"))
			uvMax := floatVal(get(uv, "Maximum"))
			if uvMin != nil && uvMax != nil {
				uvIndex = domain.Float((*uvMin + *uvMax) / 2.0)
			} else {
				uvIndex = orFloat(uvMax, uvMin)
			}
		default:
			uvIndex = floatVal(uv)
		}

		rain := precipFromBlock(blockOrMetric(get(day, "Rain")))
		snow := precipFromBlock(blockOrMetric(get(day, "Snow")))
		ice := precipFromBlock(blockOrMetric(get(day, "Ice")))
		totalLiquid := precipFromBlock(blockOrMetric(get(day, "TotalLiquid")))

		periods = append(periods, domain.ForecastPeriod{
			Provider:                 accuWeatherProvider,
			Location:                 domain.Location{Latitude: latitude, Longitude: longitude},
			IssuedAt:                 *issuedAt,
			StartTime:                *start,
			EndTime:                  start.Add(24 * time.Hour),
			TemperatureC:             tempAvg,
			TemperatureApparentC:     apparent,
			TemperatureApparentShadeC: averageFromRange(getObject(entry, "RealFeelTemperatureShade"), temperatureFromBlock),
			TemperatureHighC:         tempMax,
			TemperatureLowC:          tempMin,
			PrecipitationProbability: floatVal(get(day, "PrecipitationProbability")),
			PrecipProbabilityThunderstorm: floatVal(get(day, "ThunderstormProbability")),
			PrecipProbabilityRain:    floatVal(get(day, "RainProbability")),
			PrecipProbabilitySnow:    floatVal(get(day, "SnowProbability")),
			PrecipProbabilityIce:     floatVal(get(day, "IceProbability")),
			PrecipitationMm:          orFloat(totalLiquid, orFloat(rain, snow)),
			PrecipAmountRainMm:       rain,
			PrecipAmountSnowMm:       snow,
			PrecipAmountIceMm:        ice,
			Summary:                  firstText(get(day, "IconPhrase"), get(day, "ShortPhrase"), get(day, "LongPhrase")),
			ConditionCode:            intVal(get(day, "Icon")),
			WindSpeedKph:             speedFromBlock(blockOrMetric(get(wind, "Speed"))),
			WindDirectionDeg:         intVal(get(getObject(wind, "Direction"), "Degrees")),
			WindGustKph:              speedFromBlock(blockOrMetric(get(gust, "Speed"))),
			UVIndex:                  uvIndex,
			RelativeHumidity:         averageFromRange(getObject(day, "RelativeHumidity"), rawValue),
			CloudCoverPct:            floatVal(get(day, "CloudCover")),
			EvapotranspirationMm:     precipFromBlock(blockOrMetric(get(day, "Evapotranspiration"))),
			SolarIrradianceWm2:       floatVal(get(blockOrMetric(get(day, "SolarIrradiance")), "Value")),
			SunHours:                 floatVal(get(entry, "HoursOfSun")),
			TemperatureWetBulbC:      averageFromRange(getObject(day, "WetBulbTemperature"), temperatureFromBlock),
			TemperatureWetBulbGlobeC: averageFromRange(getObject(day, "WetBulbGlobeTemperature"), temperatureFromBlock),
		})
	}

	return periods, nil
}

// accuWeatherIntervalBounds resolves a minute-cast interval to absolute
// times. CountMinute wins over EndMinute; a bare StartMinute spans one
// minute.
func accuWeatherIntervalBounds(interval map[string]any, issuedAt time.Time) (time.Time, time.Time, error) {
	startMinute := intVal(get(interval, "StartMinute"))
	if startMinute == nil {
		return time.Time{}, time.Time{}, fmt.Errorf("accuweather minute interval: %w", ErrMissingTimestamp)
	}

	start := issuedAt.Add(time.Duration(*startMinute) * time.Minute)
	if count := intVal(get(interval, "CountMinute")); count != nil && *count > 0 {
		return start, start.Add(time.Duration(*count) * time.Minute), nil
	}
	if end := intVal(get(interval, "EndMinute")); end != nil {
		return start, issuedAt.Add(time.Duration(*end+1) * time.Minute), nil
	}
	return start, start.Add(time.Minute), nil
}

// AccuWeatherMinuteForecast maps a minute-cast payload. Only summary text is
// carried; the endpoint reports no per-interval numeric metrics worth keeping.
func AccuWeatherMinuteForecast(payload map[string]any, latitude, longitude float64, issuedAt time.Time) ([]domain.ForecastPeriod, error) {
	summaries := getArray(payload, "Summaries")
	if len(summaries) == 0 {
		return nil, fmt.Errorf("accuweather minute forecast: %w", ErrEmptyPayload)
	}

	fallback := getObject(payload, "Summary")
	location := domain.Location{Latitude: latitude, Longitude: longitude}

	periods := make([]domain.ForecastPeriod, 0, len(summaries))
	for _, raw := range summaries {
		interval := object(raw)
		start, end, err := accuWeatherIntervalBounds(interval, issuedAt)
		if err != nil {
			return nil, err
		}

		summary := firstText(
			get(interval, "ShortPhrase"),
			get(interval, "BriefPhrase"),
			get(interval, "LongPhrase"),
			get(interval, "MinuteText"),
			get(interval, "MinutesText"),
			get(interval, "WidgetPhrase"),
			get(fallback, "ShortPhrase"),
			get(fallback, "BriefPhrase"),
			get(fallback, "LongPhrase"),
			get(fallback, "MinuteText"),
			get(fallback, "MinutesText"),
			get(fallback, "Phrase"),
		)

		periods = append(periods, domain.ForecastPeriod{
			Provider:  accuWeatherProvider,
			Location:  location,
			IssuedAt:  issuedAt,
			StartTime: start,
			EndTime:   end,
			Summary:   summary,
		})
	}

	return periods, nil
}
