package mapper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const geoMetObservation = `{
	"type": "Feature",
	"geometry": {"type": "Point", "coordinates": [-75.7, 45.4]},
	"properties": {
		"stationIdentifier": "CARO",
		"observationTime": "2024-05-01T12:00:00Z",
		"airTemperature": 12.3,
		"dewpointTemperature": 3.4,
		"wind": {"speed": 15.2, "direction": 260},
		"seaLevelPressure": 101.2,
		"relativeHumidity": 72,
		"visibility": 24.0,
		"presentWeather": [{"value": "Rain"}],
		"precipitationLastHour": 0.2
	}
}`

const geoMetForecast = `{
	"type": "Feature",
	"geometry": {"type": "Point", "coordinates": [-75.7, 45.4]},
	"properties": {
		"forecastIssueTime": "2024-05-01T00:00:00Z",
		"periods": [
			{
				"start": "2024-05-01T01:00:00Z",
				"end": "2024-05-01T02:00:00Z",
				"temperature": 11.0,
				"probabilityOfPrecipitation": 20,
				"totalPrecipitation": 0.0,
				"summary": "Cloudy",
				"wind": {"speed": 10.5, "direction": 250}
			},
			{
				"start": "2024-05-01T02:00:00Z",
				"end": "2024-05-01T03:00:00Z",
				"temperature": 10.0,
				"pop": 60,
				"precipitationAmount": 0.8,
				"textSummary": "Rain"
			}
		]
	}
}`

func TestMSCGeoMetObservation(t *testing.T) {
	obs, err := MSCGeoMetObservation(decodeObject(t, geoMetObservation))
	require.NoError(t, err)

	assert.Equal(t, "msc_geomet", obs.Provider)
	assertText(t, "CARO", obs.Station)
	assert.Equal(t, 45.4, obs.Location.Latitude)
	assert.Equal(t, -75.7, obs.Location.Longitude)
	assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), obs.ObservedAt)
	assertFloat(t, 12.3, obs.TemperatureC)
	assertFloat(t, 3.4, obs.DewpointC)
	assertFloat(t, 15.2, obs.WindSpeedKph)
	assertInt(t, 260, obs.WindDirectionDeg)
	assertFloat(t, 101.2, obs.PressureKPa)
	assertFloat(t, 72.0, obs.RelativeHumidity)
	assertFloat(t, 24.0, obs.VisibilityKm)
	assertText(t, "Rain", obs.Condition)
	assertFloat(t, 0.2, obs.PrecipitationLastHourMm)
}

func TestMSCGeoMetObservationRequiresCoordinates(t *testing.T) {
	broken := decodeObject(t, geoMetObservation)
	broken["geometry"] = map[string]any{"coordinates": []any{}}

	_, err := MSCGeoMetObservation(broken)
	assert.ErrorIs(t, err, ErrMissingCoordinates)
}

func TestGeoMetCondition(t *testing.T) {
	assertText(t, "Rain", geoMetCondition("Rain"))
	assertText(t, "Rain", geoMetCondition([]any{"Rain", "Fog"}))
	assertText(t, "Drizzle", geoMetCondition(map[string]any{"text": "Drizzle"}))
	assert.Nil(t, geoMetCondition([]any{}))
	assert.Nil(t, geoMetCondition(nil))
}

func TestMSCGeoMetForecast(t *testing.T) {
	periods, err := MSCGeoMetForecast(decodeObject(t, geoMetForecast))
	require.NoError(t, err)
	require.Len(t, periods, 2)

	first := periods[0]
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), first.IssuedAt)
	assert.Equal(t, time.Date(2024, 5, 1, 1, 0, 0, 0, time.UTC), first.StartTime)
	assert.Equal(t, time.Date(2024, 5, 1, 2, 0, 0, 0, time.UTC), first.EndTime)
	assertFloat(t, 11.0, first.TemperatureC)
	assertFloat(t, 20.0, first.PrecipitationProbability)
	assertFloat(t, 0.0, first.PrecipitationMm)
	assertText(t, "Cloudy", first.Summary)
	assertFloat(t, 10.5, first.WindSpeedKph)
	assertInt(t, 250, first.WindDirectionDeg)

	second := periods[1]
	assertFloat(t, 60.0, second.PrecipitationProbability)
	assertFloat(t, 0.8, second.PrecipitationMm)
	assertText(t, "Rain", second.Summary)
}

func TestMSCGeoMetForecastPeriodRequiresStart(t *testing.T) {
	broken := decodeObject(t, geoMetForecast)
	periods := broken["properties"].(map[string]any)["periods"].([]any)
	delete(periods[0].(map[string]any), "start")

	_, err := MSCGeoMetForecast(broken)
	assert.ErrorIs(t, err, ErrMissingTimestamp)
}

func TestMSCGeoMetForecastEndDefaultsToStart(t *testing.T) {
	payload := decodeObject(t, `{
		"geometry": {"coordinates": [-75.7, 45.4]},
		"properties": {
			"issueTime": "2024-05-01T00:00:00Z",
			"periods": [{"validTime": "2024-05-01T06:00:00Z", "temperature": 9.0}]
		}
	}`)

	periods, err := MSCGeoMetForecast(payload)
	require.NoError(t, err)
	require.Len(t, periods, 1)
	assert.Equal(t, periods[0].StartTime, periods[0].EndTime)
}
