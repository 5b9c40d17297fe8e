package mapper

import (
	"fmt"
	"time"

	"github.com/ericfeunekes/wxbench/internal/domain"
)

const openWeatherProvider = "openweather"

// The /weather and /forecast endpoints report Kelvin, m/s, hPa, and metres;
// the One Call endpoints are requested with units=metric and report Celsius
// directly, with wind still in m/s.

func openWeatherSummary(entry map[string]any) *string {
	weather := getArray(entry, "weather")
	if len(weather) == 0 {
		return nil
	}
	first := object(weather[0])
	return firstText(get(first, "description"), get(first, "main"))
}

func openWeatherConditionCode(entry map[string]any) *int {
	weather := getArray(entry, "weather")
	if len(weather) == 0 {
		return nil
	}
	return intVal(get(object(weather[0]), "id"))
}

// openWeatherPrecip pulls the rain or snow accumulation block, preferring
// the one-hour window over the three-hour one.
func openWeatherPrecip(entry map[string]any) *float64 {
	if rain := getObject(entry, "rain"); rain != nil {
		if v := floatVal(firstKey(rain, "1h", "3h")); v != nil {
			return v
		}
	}
	if snow := getObject(entry, "snow"); snow != nil {
		if v := floatVal(firstKey(snow, "1h", "3h")); v != nil {
			return v
		}
	}
	return nil
}

func openWeatherPop(entry map[string]any) *float64 {
	pop := floatVal(get(entry, "pop"))
	if pop == nil {
		return nil
	}
	return domain.Float(*pop * 100.0)
}

// OpenWeatherObservation maps a /weather payload.
func OpenWeatherObservation(payload map[string]any) (domain.Observation, error) {
	coords := getObject(payload, "coord")
	lat := floatVal(get(coords, "lat"))
	lon := floatVal(get(coords, "lon"))
	if lat == nil || lon == nil {
		return domain.Observation{}, fmt.Errorf("openweather observation: %w", ErrMissingCoordinates)
	}

	observedAt := epochTime(get(payload, "dt"))
	if observedAt == nil {
		return domain.Observation{}, fmt.Errorf("openweather observation: %w", ErrMissingTimestamp)
	}

	main := getObject(payload, "main")
	wind := getObject(payload, "wind")

	return domain.Observation{
		Provider:                openWeatherProvider,
		Station:                 textVal(get(payload, "name")),
		Location:                domain.Location{Latitude: *lat, Longitude: *lon},
		ObservedAt:              *observedAt,
		TemperatureC:            domain.KelvinToCelsius(floatVal(get(main, "temp"))),
		TemperatureApparentC:    domain.KelvinToCelsius(floatVal(get(main, "feels_like"))),
		WindSpeedKph:            domain.MsToKph(floatVal(get(wind, "speed"))),
		WindDirectionDeg:        intVal(get(wind, "deg")),
		WindGustKph:             domain.MsToKph(floatVal(get(wind, "gust"))),
		PressureKPa:             domain.HPaToKPa(floatVal(get(main, "pressure"))),
		RelativeHumidity:        floatVal(get(main, "humidity")),
		VisibilityKm:            domain.MetersToKm(floatVal(get(payload, "visibility"))),
		CloudCoverPct:           floatVal(get(getObject(payload, "clouds"), "all")),
		Condition:               openWeatherSummary(payload),
		ConditionCode:           openWeatherConditionCode(payload),
		PrecipitationLastHourMm: openWeatherPrecip(payload),
	}, nil
}

// OpenWeatherForecast maps a /forecast payload of three-hour periods.
func OpenWeatherForecast(payload map[string]any) ([]domain.ForecastPeriod, error) {
	city := getObject(payload, "city")
	coords := getObject(city, "coord")
	lat := floatVal(get(coords, "lat"))
	lon := floatVal(get(coords, "lon"))
	if lat == nil || lon == nil {
		return nil, fmt.Errorf("openweather forecast: %w", ErrMissingCoordinates)
	}

	entries := getArray(payload, "list")
	if len(entries) == 0 {
		return nil, nil
	}

	issuedAt := epochTime(get(object(entries[0]), "dt"))
	if issuedAt == nil {
		return nil, fmt.Errorf("openweather forecast: %w", ErrMissingTimestamp)
	}

	periods := make([]domain.ForecastPeriod, 0, len(entries))
	for _, raw := range entries {
		entry := object(raw)
		start := epochTime(get(entry, "dt"))
		if start == nil {
			return nil, fmt.Errorf("openweather forecast period: %w", ErrMissingTimestamp)
		}

		main := getObject(entry, "main")
		wind := getObject(entry, "wind")

		periods = append(periods, domain.ForecastPeriod{
			Provider:                 openWeatherProvider,
			Location:                 domain.Location{Latitude: *lat, Longitude: *lon},
			IssuedAt:                 *issuedAt,
			StartTime:                *start,
			EndTime:                  start.Add(3 * time.Hour),
			TemperatureC:             domain.KelvinToCelsius(floatVal(get(main, "temp"))),
			TemperatureHighC:         domain.KelvinToCelsius(floatVal(get(main, "temp_max"))),
			TemperatureLowC:          domain.KelvinToCelsius(floatVal(get(main, "temp_min"))),
			PrecipitationProbability: openWeatherPop(entry),
			PrecipitationMm:          openWeatherPrecip(entry),
			RelativeHumidity:         floatVal(get(main, "humidity")),
			PressureSeaLevelKPa:      domain.HPaToKPa(floatVal(firstKey(main, "sea_level", "pressure"))),
			Summary:                  openWeatherSummary(entry),
			WindSpeedKph:             domain.MsToKph(floatVal(get(wind, "speed"))),
			WindDirectionDeg:         intVal(get(wind, "deg")),
		})
	}

	return periods, nil
}

// OpenWeatherOneCallHourly maps the hourly timeline of a One Call payload
// requested with units=metric.
func OpenWeatherOneCallHourly(payload map[string]any) ([]domain.ForecastPeriod, error) {
	lat := floatVal(get(payload, "lat"))
	lon := floatVal(get(payload, "lon"))
	if lat == nil || lon == nil {
		return nil, fmt.Errorf("openweather onecall hourly: %w", ErrMissingCoordinates)
	}

	entries := getArray(payload, "hourly")
	if len(entries) == 0 {
		return nil, nil
	}

	issuedAt := epochTime(get(object(entries[0]), "dt"))
	if issuedAt == nil {
		return nil, fmt.Errorf("openweather onecall hourly: %w", ErrMissingTimestamp)
	}

	periods := make([]domain.ForecastPeriod, 0, len(entries))
	for _, raw := range entries {
		entry := object(raw)
		start := epochTime(get(entry, "dt"))
		if start == nil {
			return nil, fmt.Errorf("openweather onecall hourly period: %w", ErrMissingTimestamp)
		}

		periods = append(periods, domain.ForecastPeriod{
			Provider:                 openWeatherProvider,
			Location:                 domain.Location{Latitude: *lat, Longitude: *lon},
			IssuedAt:                 *issuedAt,
			StartTime:                *start,
			EndTime:                  start.Add(time.Hour),
			TemperatureC:             floatVal(get(entry, "temp")),
			TemperatureApparentC:     floatVal(get(entry, "feels_like")),
			DewpointC:                floatVal(get(entry, "dew_point")),
			PressureSeaLevelKPa:      domain.HPaToKPa(floatVal(get(entry, "pressure"))),
			RelativeHumidity:         floatVal(get(entry, "humidity")),
			UVIndex:                  floatVal(get(entry, "uvi")),
			CloudCoverPct:            floatVal(get(entry, "clouds")),
			VisibilityKm:             domain.MetersToKm(floatVal(get(entry, "visibility"))),
			WindSpeedKph:             domain.MsToKph(floatVal(get(entry, "wind_speed"))),
			WindDirectionDeg:         intVal(get(entry, "wind_deg")),
			WindGustKph:              domain.MsToKph(floatVal(get(entry, "wind_gust"))),
			PrecipitationProbability: openWeatherPop(entry),
			PrecipitationMm:          openWeatherPrecip(entry),
			Summary:                  openWeatherSummary(entry),
			ConditionCode:            openWeatherConditionCode(entry),
		})
	}

	return periods, nil
}

// OpenWeatherOneCallDaily maps the daily timeline of a One Call payload
// requested with units=metric.
func OpenWeatherOneCallDaily(payload map[string]any) ([]domain.ForecastPeriod, error) {
	lat := floatVal(get(payload, "lat"))
	lon := floatVal(get(payload, "lon"))
	if lat == nil || lon == nil {
		return nil, fmt.Errorf("openweather onecall daily: %w", ErrMissingCoordinates)
	}

	entries := getArray(payload, "daily")
	if len(entries) == 0 {
		return nil, nil
	}

	issuedAt := epochTime(get(object(entries[0]), "dt"))
	if issuedAt == nil {
		return nil, fmt.Errorf("openweather onecall daily: %w", ErrMissingTimestamp)
	}

	periods := make([]domain.ForecastPeriod, 0, len(entries))
	for _, raw := range entries {
		entry := object(raw)
		start := epochTime(get(entry, "dt"))
		if start == nil {
			return nil, fmt.Errorf("openweather onecall daily period: %w", ErrMissingTimestamp)
		}

		temp := getObject(entry, "temp")
		feels := getObject(entry, "feels_like")

		rain := floatVal(get(entry, "rain"))
		snow := floatVal(get(entry, "snow"))
		var total *float64
		if rain != nil || snow != nil {
			sum := 0.0
			if rain != nil {
				sum += *rain
			}
			if snow != nil {
				sum += *snow
			}
			total = domain.Float(sum)
		}

		periods = append(periods, domain.ForecastPeriod{
			Provider:                 openWeatherProvider,
			Location:                 domain.Location{Latitude: *lat, Longitude: *lon},
			IssuedAt:                 *issuedAt,
			StartTime:                *start,
			EndTime:                  start.Add(24 * time.Hour),
			TemperatureC:             floatVal(get(temp, "day")),
			TemperatureHighC:         floatVal(get(temp, "max")),
			TemperatureLowC:          floatVal(get(temp, "min")),
			TemperatureApparentC:     floatVal(get(feels, "day")),
			DewpointC:                floatVal(get(entry, "dew_point")),
			PressureSeaLevelKPa:      domain.HPaToKPa(floatVal(get(entry, "pressure"))),
			RelativeHumidity:         floatVal(get(entry, "humidity")),
			UVIndex:                  floatVal(get(entry, "uvi")),
			CloudCoverPct:            floatVal(get(entry, "clouds")),
			WindSpeedKph:             domain.MsToKph(floatVal(get(entry, "wind_speed"))),
			WindDirectionDeg:         intVal(get(entry, "wind_deg")),
			WindGustKph:              domain.MsToKph(floatVal(get(entry, "wind_gust"))),
			PrecipitationProbability: openWeatherPop(entry),
			PrecipitationMm:          total,
			PrecipAmountRainMm:       rain,
			PrecipAmountSnowMm:       snow,
			Summary:                  openWeatherSummary(entry),
			ConditionCode:            openWeatherConditionCode(entry),
		})
	}

	return periods, nil
}
