package mapper

import (
	"fmt"
	"strconv"
	"time"

	"github.com/ericfeunekes/wxbench/internal/domain"
)

const tomorrowIOProvider = "tomorrow_io"

// weatherCodeDescriptions maps Tomorrow.io weather codes to display text.
// Unknown codes fall back to the numeric code rendered as text so no
// condition reading is silently dropped.
var weatherCodeDescriptions = map[int]string{
	0:    "Unknown",
	1000: "Clear",
	1100: "Mostly Clear",
	1101: "Partly Cloudy",
	1102: "Mostly Cloudy",
	1001: "Cloudy",
	2000: "Fog",
	2100: "Light Fog",
	4000: "Drizzle",
	4001: "Rain",
	4200: "Light Rain",
	4201: "Heavy Rain",
	5000: "Snow",
	5001: "Flurries",
	5100: "Light Snow",
	5101: "Heavy Snow",
	6000: "Freezing Drizzle",
	6001: "Freezing Rain",
	6200: "Light Freezing Rain",
	6201: "Heavy Freezing Rain",
	7000: "Ice Pellets",
	7101: "Heavy Ice Pellets",
	7102: "Light Ice Pellets",
}

func describeWeatherCode(v any) *string {
	code := intVal(v)
	if code == nil {
		return nil
	}
	if text, ok := weatherCodeDescriptions[*code]; ok {
		return domain.String(text)
	}
	return domain.String(strconv.Itoa(*code))
}

// sumIntensities totals the per-type precipitation intensities, absent when
// no intensity key is present at all.
func sumIntensities(values map[string]any) *float64 {
	total := 0.0
	found := false
	for _, key := range []string{"rainIntensity", "snowIntensity", "sleetIntensity", "freezingRainIntensity"} {
		v := floatVal(get(values, key))
		if v == nil {
			continue
		}
		total += *v
		found = true
	}
	if !found {
		return nil
	}
	return domain.Float(total)
}

// Daily timelines suffix aggregates onto the base field name; prefer the
// aggregate and fall back to the bare field.
func dailyValue(values map[string]any, base, suffix string) *float64 {
	for _, key := range []string{base + suffix, base} {
		if v, ok := values[key]; ok && v != nil {
			return floatVal(v)
		}
	}
	return nil
}

// TomorrowIOObservation maps a realtime payload.
func TomorrowIOObservation(payload map[string]any) (domain.Observation, error) {
	data := getObject(payload, "data")
	values := getObject(data, "values")
	location := getObject(payload, "location")

	lat := floatVal(get(location, "lat"))
	lon := floatVal(get(location, "lon"))
	if lat == nil || lon == nil {
		return domain.Observation{}, fmt.Errorf("tomorrow_io observation: %w", ErrMissingCoordinates)
	}

	observedAt := isoTime(get(data, "time"))
	if observedAt == nil {
		return domain.Observation{}, fmt.Errorf("tomorrow_io observation: %w", ErrMissingTimestamp)
	}

	pressureSurface := domain.HPaToKPa(floatVal(get(values, "pressureSurfaceLevel")))

	return domain.Observation{
		Provider:                   tomorrowIOProvider,
		Station:                    textVal(get(location, "name")),
		Location:                   domain.Location{Latitude: *lat, Longitude: *lon},
		ObservedAt:                 *observedAt,
		TemperatureC:               floatVal(get(values, "temperature")),
		TemperatureApparentC:       floatVal(get(values, "temperatureApparent")),
		DewpointC:                  floatVal(get(values, "dewPoint")),
		WindSpeedKph:               domain.MsToKph(floatVal(get(values, "windSpeed"))),
		WindDirectionDeg:           intVal(get(values, "windDirection")),
		WindGustKph:                domain.MsToKph(floatVal(get(values, "windGust"))),
		PressureKPa:                pressureSurface,
		PressureSurfaceKPa:         pressureSurface,
		PressureSeaLevelKPa:        domain.HPaToKPa(floatVal(get(values, "pressureSeaLevel"))),
		AltimeterKPa:               domain.HPaToKPa(floatVal(get(values, "altimeterSetting"))),
		RelativeHumidity:           floatVal(get(values, "humidity")),
		VisibilityKm:               floatVal(get(values, "visibility")),
		CloudCoverPct:              floatVal(get(values, "cloudCover")),
		CloudBaseKm:                floatVal(get(values, "cloudBase")),
		CloudCeilingKm:             floatVal(get(values, "cloudCeiling")),
		Condition:                  describeWeatherCode(get(values, "weatherCode")),
		ConditionCode:              intVal(get(values, "weatherCode")),
		PrecipitationLastHourMm:    sumIntensities(values),
		PrecipRateRainMmHr:         floatVal(get(values, "rainIntensity")),
		PrecipRateSnowMmHr:         floatVal(get(values, "snowIntensity")),
		PrecipRateSleetMmHr:        floatVal(get(values, "sleetIntensity")),
		PrecipRateFreezingRainMmHr: floatVal(get(values, "freezingRainIntensity")),
		UVIndex:                    floatVal(get(values, "uvIndex")),
		UVHealthConcern:            floatVal(get(values, "uvHealthConcern")),
	}, nil
}

// inferEndTime picks the next interval's start, else extends the start by the
// declared timestep, else degenerates to the start itself.
func inferEndTime(index int, intervals []any, start time.Time, timestep string) time.Time {
	if index+1 < len(intervals) {
		if next := isoTime(get(object(intervals[index+1]), "time")); next != nil {
			return *next
		}
	}
	if len(timestep) > 1 {
		if n, err := strconv.ParseFloat(timestep[:len(timestep)-1], 64); err == nil && n > 0 {
			switch timestep[len(timestep)-1] {
			case 'h':
				return start.Add(time.Duration(n * float64(time.Hour)))
			case 'm':
				return start.Add(time.Duration(n * float64(time.Minute)))
			case 'd':
				return start.Add(time.Duration(n * 24 * float64(time.Hour)))
			}
		}
	}
	return start
}

// TomorrowIOForecast maps the hourly timeline of a forecast payload.
func TomorrowIOForecast(payload map[string]any) ([]domain.ForecastPeriod, error) {
	return tomorrowIOTimeline(payload, "hourly", "1h")
}

// TomorrowIODailyForecast maps the daily timeline of a forecast payload.
func TomorrowIODailyForecast(payload map[string]any) ([]domain.ForecastPeriod, error) {
	location := getObject(payload, "location")
	lat := floatVal(get(location, "lat"))
	lon := floatVal(get(location, "lon"))
	if lat == nil || lon == nil {
		return nil, fmt.Errorf("tomorrow_io daily forecast: %w", ErrMissingCoordinates)
	}

	intervals := getArray(getObject(payload, "timelines"), "daily")
	if len(intervals) == 0 {
		return nil, nil
	}

	issuedAt := isoTime(get(object(intervals[0]), "time"))
	if issuedAt == nil {
		return nil, fmt.Errorf("tomorrow_io daily forecast: %w", ErrMissingTimestamp)
	}

	periods := make([]domain.ForecastPeriod, 0, len(intervals))
	for index, raw := range intervals {
		interval := object(raw)
		start := isoTime(get(interval, "time"))
		if start == nil {
			return nil, fmt.Errorf("tomorrow_io daily interval: %w", ErrMissingTimestamp)
		}
		end := inferEndTime(index, intervals, *start, "1d")

		values := getObject(interval, "values")

		rainSum := dailyValue(values, "rainAccumulation", "Sum")
		snowSum := dailyValue(values, "snowAccumulation", "Sum")
		sleetSum := dailyValue(values, "sleetAccumulation", "Sum")
		iceSum := dailyValue(values, "iceAccumulation", "Sum")

		var total *float64
		sum := 0.0
		for _, v := range []*float64{rainSum, snowSum, sleetSum, iceSum} {
			if v != nil {
				sum += *v
			}
		}
		if sum != 0 {
			total = domain.Float(sum)
		}

		periods = append(periods, domain.ForecastPeriod{
			Provider:                   tomorrowIOProvider,
			Location:                   domain.Location{Latitude: *lat, Longitude: *lon},
			IssuedAt:                   *issuedAt,
			StartTime:                  *start,
			EndTime:                    end,
			TemperatureC:               firstFloat(values, "temperatureAvg", "temperature", "temperatureApparentAvg"),
			TemperatureHighC:           firstFloat(values, "temperatureMax", "temperatureApparentMax"),
			TemperatureLowC:            firstFloat(values, "temperatureMin", "temperatureApparentMin"),
			TemperatureApparentC:       firstFloat(values, "temperatureApparentAvg", "temperatureApparent"),
			DewpointC:                  dailyValue(values, "dewPoint", "Avg"),
			RelativeHumidity:           dailyValue(values, "humidity", "Avg"),
			VisibilityKm:               dailyValue(values, "visibility", "Avg"),
			CloudCoverPct:              dailyValue(values, "cloudCover", "Avg"),
			CloudBaseKm:                dailyValue(values, "cloudBase", "Avg"),
			CloudCeilingKm:             dailyValue(values, "cloudCeiling", "Avg"),
			PressureSeaLevelKPa:        domain.HPaToKPa(dailyValue(values, "pressureSeaLevel", "Avg")),
			PressureSurfaceKPa:         domain.HPaToKPa(dailyValue(values, "pressureSurfaceLevel", "Avg")),
			AltimeterKPa:               domain.HPaToKPa(dailyValue(values, "altimeterSetting", "Avg")),
			PrecipitationProbability:   orFloat(dailyValue(values, "precipitationProbability", "Max"), dailyValue(values, "precipitationProbability", "Avg")),
			PrecipitationMm:            total,
			PrecipAmountRainMm:         rainSum,
			PrecipAmountSnowMm:         snowSum,
			PrecipAmountSleetMm:        sleetSum,
			PrecipAmountIceMm:          iceSum,
			PrecipAmountSnowLweMm:      dailyValue(values, "snowAccumulationLwe", "Sum"),
			PrecipAmountSleetLweMm:     dailyValue(values, "sleetAccumulationLwe", "Sum"),
			PrecipAmountIceLweMm:       dailyValue(values, "iceAccumulationLwe", "Sum"),
			PrecipRateRainMmHr:         dailyValue(values, "rainIntensity", "Avg"),
			PrecipRateSnowMmHr:         dailyValue(values, "snowIntensity", "Avg"),
			PrecipRateSleetMmHr:        dailyValue(values, "sleetIntensity", "Avg"),
			PrecipRateFreezingRainMmHr: dailyValue(values, "freezingRainIntensity", "Avg"),
			SnowDepthCm:                dailyValue(values, "snowDepth", "Avg"),
			EvapotranspirationMm:       orFloat(dailyValue(values, "evapotranspiration", "Sum"), dailyValue(values, "evapotranspiration", "Avg")),
			Summary:                    describeWeatherCode(get(values, "weatherCode")),
			ConditionCode:              intVal(firstKey(values, "weatherCodeMax", "weatherCode")),
			WindSpeedKph:               domain.MsToKph(firstFloat(values, "windSpeedAvg", "windSpeed")),
			WindDirectionDeg:           intVal(firstKey(values, "windDirectionAvg", "windDirection")),
			WindGustKph:                domain.MsToKph(firstFloat(values, "windGustAvg", "windGust")),
			UVIndex:                    firstFloat(values, "uvIndexMax", "uvIndex"),
			UVHealthConcern:            firstFloat(values, "uvHealthConcernMax", "uvHealthConcernAvg", "uvHealthConcern"),
		})
	}

	return periods, nil
}

func tomorrowIOTimeline(payload map[string]any, timeline, timestep string) ([]domain.ForecastPeriod, error) {
	location := getObject(payload, "location")
	lat := floatVal(get(location, "lat"))
	lon := floatVal(get(location, "lon"))
	if lat == nil || lon == nil {
		return nil, fmt.Errorf("tomorrow_io forecast: %w", ErrMissingCoordinates)
	}

	intervals := getArray(getObject(payload, "timelines"), timeline)
	if len(intervals) == 0 {
		return nil, nil
	}

	issuedAt := isoTime(get(object(intervals[0]), "time"))
	if issuedAt == nil {
		return nil, fmt.Errorf("tomorrow_io forecast: %w", ErrMissingTimestamp)
	}

	periods := make([]domain.ForecastPeriod, 0, len(intervals))
	for index, raw := range intervals {
		interval := object(raw)
		start := isoTime(get(interval, "time"))
		if start == nil {
			return nil, fmt.Errorf("tomorrow_io interval: %w", ErrMissingTimestamp)
		}
		end := inferEndTime(index, intervals, *start, timestep)

		values := getObject(interval, "values")
		intensity := sumIntensities(values)

		// Intensity is a rate; scale by the resolved period duration to get
		// an accumulation.
		precipitation := intensity
		if intensity != nil && !end.Equal(*start) {
			hours := end.Sub(*start).Seconds() / 3600.0
			precipitation = domain.Float(*intensity * hours)
		}

		periods = append(periods, domain.ForecastPeriod{
			Provider:                   tomorrowIOProvider,
			Location:                   domain.Location{Latitude: *lat, Longitude: *lon},
			IssuedAt:                   *issuedAt,
			StartTime:                  *start,
			EndTime:                    end,
			TemperatureC:               floatVal(get(values, "temperature")),
			TemperatureApparentC:       floatVal(get(values, "temperatureApparent")),
			DewpointC:                  floatVal(get(values, "dewPoint")),
			PrecipitationProbability:   floatVal(get(values, "precipitationProbability")),
			PrecipitationMm:            precipitation,
			PrecipAmountRainMm:         floatVal(get(values, "rainAccumulation")),
			PrecipAmountSnowMm:         floatVal(get(values, "snowAccumulation")),
			PrecipAmountSleetMm:        floatVal(get(values, "sleetAccumulation")),
			PrecipAmountIceMm:          floatVal(get(values, "iceAccumulation")),
			PrecipAmountSnowLweMm:      floatVal(get(values, "snowAccumulationLwe")),
			PrecipAmountSleetLweMm:     floatVal(get(values, "sleetAccumulationLwe")),
			PrecipAmountIceLweMm:       floatVal(get(values, "iceAccumulationLwe")),
			PrecipRateRainMmHr:         floatVal(get(values, "rainIntensity")),
			PrecipRateSnowMmHr:         floatVal(get(values, "snowIntensity")),
			PrecipRateSleetMmHr:        floatVal(get(values, "sleetIntensity")),
			PrecipRateFreezingRainMmHr: floatVal(get(values, "freezingRainIntensity")),
			Summary:                    describeWeatherCode(get(values, "weatherCode")),
			ConditionCode:              intVal(get(values, "weatherCode")),
			WindSpeedKph:               domain.MsToKph(floatVal(get(values, "windSpeed"))),
			WindDirectionDeg:           intVal(get(values, "windDirection")),
			WindGustKph:                domain.MsToKph(floatVal(get(values, "windGust"))),
			UVIndex:                    floatVal(get(values, "uvIndex")),
			UVHealthConcern:            floatVal(get(values, "uvHealthConcern")),
			SnowDepthCm:                floatVal(get(values, "snowDepth")),
			EvapotranspirationMm:       floatVal(get(values, "evapotranspiration")),
		})
	}

	return periods, nil
}
