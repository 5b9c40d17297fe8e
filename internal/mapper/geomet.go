package mapper

import (
	"fmt"

	"github.com/ericfeunekes/wxbench/internal/domain"
)

const mscGeoMetProvider = "msc_geomet"

// geoJSONLocation reads a GeoJSON point, which orders coordinates
// longitude first.
func geoJSONLocation(feature map[string]any) (domain.Location, error) {
	coords := getArray(getObject(feature, "geometry"), "coordinates")
	if len(coords) < 2 {
		return domain.Location{}, fmt.Errorf("msc geomet feature: %w", ErrMissingCoordinates)
	}

	lon := floatVal(coords[0])
	lat := floatVal(coords[1])
	if lat == nil || lon == nil {
		return domain.Location{}, fmt.Errorf("msc geomet feature: %w", ErrMissingCoordinates)
	}
	return domain.Location{Latitude: *lat, Longitude: *lon}, nil
}

// geoMetCondition reads presentWeather, which may be a bare string, a coded
// object, or a list of either.
func geoMetCondition(v any) *string {
	if v == nil {
		return nil
	}
	first := v
	if list := array(v); list != nil {
		if len(list) == 0 {
			return nil
		}
		first = list[0]
	}
	if m := object(first); m != nil {
		return firstText(get(m, "value"), get(m, "text"), get(m, "description"))
	}
	return textVal(first)
}

// MSCGeoMetObservation maps a climate-observation GeoJSON feature. GeoMet
// already reports metric units, so values pass through unconverted.
func MSCGeoMetObservation(feature map[string]any) (domain.Observation, error) {
	location, err := geoJSONLocation(feature)
	if err != nil {
		return domain.Observation{}, err
	}

	properties := getObject(feature, "properties")
	observedAt := isoTime(firstKey(properties, "observationTime", "time", "timestamp", "datetime"))
	if observedAt == nil {
		return domain.Observation{}, fmt.Errorf("msc geomet observation: %w", ErrMissingTimestamp)
	}

	wind := getObject(properties, "wind")

	return domain.Observation{
		Provider:                mscGeoMetProvider,
		Station:                 firstText(get(properties, "stationIdentifier"), get(properties, "station")),
		Location:                location,
		ObservedAt:              *observedAt,
		TemperatureC:            floatVal(firstKey(properties, "airTemperature", "temperature")),
		DewpointC:               floatVal(firstKey(properties, "dewpointTemperature", "dewpoint")),
		WindSpeedKph:            floatVal(get(wind, "speed")),
		WindDirectionDeg:        intVal(get(wind, "direction")),
		PressureKPa:             floatVal(firstKey(properties, "seaLevelPressure", "pressure")),
		RelativeHumidity:        floatVal(get(properties, "relativeHumidity")),
		VisibilityKm:            floatVal(get(properties, "visibility")),
		Condition:               geoMetCondition(get(properties, "presentWeather")),
		PrecipitationLastHourMm: floatVal(get(properties, "precipitationLastHour")),
	}, nil
}

// MSCGeoMetForecast maps a citypage-forecast GeoJSON feature into its periods.
func MSCGeoMetForecast(feature map[string]any) ([]domain.ForecastPeriod, error) {
	location, err := geoJSONLocation(feature)
	if err != nil {
		return nil, err
	}

	properties := getObject(feature, "properties")
	issuedAt := isoTime(firstKey(properties, "forecastIssueTime", "issueTime", "issuedAt"))
	if issuedAt == nil {
		return nil, fmt.Errorf("msc geomet forecast: %w", ErrMissingTimestamp)
	}

	rawPeriods := getArray(properties, "periods")
	periods := make([]domain.ForecastPeriod, 0, len(rawPeriods))
	for _, raw := range rawPeriods {
		period := object(raw)
		start := isoTime(firstKey(period, "start", "startTime", "validTime"))
		if start == nil {
			return nil, fmt.Errorf("msc geomet period: %w", ErrMissingTimestamp)
		}
		end := isoTime(firstKey(period, "end", "endTime", "validEndTime"))
		if end == nil {
			end = start
		}
		wind := getObject(period, "wind")

		periods = append(periods, domain.ForecastPeriod{
			Provider:                 mscGeoMetProvider,
			Location:                 location,
			IssuedAt:                 *issuedAt,
			StartTime:                *start,
			EndTime:                  *end,
			TemperatureC:             floatVal(get(period, "temperature")),
			TemperatureHighC:         floatVal(get(period, "temperatureHigh")),
			TemperatureLowC:          floatVal(get(period, "temperatureLow")),
			PrecipitationProbability: floatVal(firstKey(period, "probabilityOfPrecipitation", "pop")),
			PrecipitationMm:          floatVal(firstKey(period, "totalPrecipitation", "precipitationAmount")),
			Summary:                  firstText(get(period, "summary"), get(period, "textSummary")),
			WindSpeedKph:             floatVal(get(wind, "speed")),
			WindDirectionDeg:         intVal(get(wind, "direction")),
		})
	}

	return periods, nil
}
