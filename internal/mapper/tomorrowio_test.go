package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribeWeatherCode(t *testing.T) {
	assertText(t, "Light Rain", describeWeatherCode(float64(4200)))
	assertText(t, "Clear", describeWeatherCode(float64(1000)))
	assertText(t, "9999", describeWeatherCode(float64(9999)))
	assert.Nil(t, describeWeatherCode(nil))
}

func TestTomorrowIOObservation(t *testing.T) {
	payload := decodeObject(t, `{
		"data": {
			"time": "2024-05-01T12:00:00Z",
			"values": {
				"temperature": 18.5,
				"temperatureApparent": 17.0,
				"dewPoint": 9.5,
				"windSpeed": 3.0,
				"windDirection": 240,
				"windGust": 6.0,
				"pressureSurfaceLevel": 1010.0,
				"pressureSeaLevel": 1013.0,
				"humidity": 62,
				"visibility": 16.0,
				"cloudCover": 35,
				"weatherCode": 4200,
				"rainIntensity": 1.2,
				"snowIntensity": 0.3,
				"uvIndex": 3
			}
		},
		"location": {"lat": 44.65, "lon": -63.57, "name": "Halifax"}
	}`)

	obs, err := TomorrowIOObservation(payload)
	require.NoError(t, err)

	assert.Equal(t, "tomorrow_io", obs.Provider)
	assertText(t, "Halifax", obs.Station)
	assert.Equal(t, 44.65, obs.Location.Latitude)
	assertFloat(t, 18.5, obs.TemperatureC)
	assertFloat(t, 10.8, obs.WindSpeedKph)
	assertInt(t, 240, obs.WindDirectionDeg)
	assertFloat(t, 101.0, obs.PressureKPa)
	assertFloat(t, 101.0, obs.PressureSurfaceKPa)
	assertFloat(t, 101.3, obs.PressureSeaLevelKPa)
	assertText(t, "Light Rain", obs.Condition)
	assertInt(t, 4200, obs.ConditionCode)
	assertFloat(t, 1.5, obs.PrecipitationLastHourMm)
	assertFloat(t, 1.2, obs.PrecipRateRainMmHr)
	assertFloat(t, 0.3, obs.PrecipRateSnowMmHr)
}

func TestTomorrowIOObservationErrors(t *testing.T) {
	t.Run("missing location", func(t *testing.T) {
		_, err := TomorrowIOObservation(decodeObject(t, `{"data": {"time": "2024-05-01T12:00:00Z"}}`))
		assert.ErrorIs(t, err, ErrMissingCoordinates)
	})

	t.Run("missing time", func(t *testing.T) {
		_, err := TomorrowIOObservation(decodeObject(t, `{"location": {"lat": 1.0, "lon": 2.0}, "data": {}}`))
		assert.ErrorIs(t, err, ErrMissingTimestamp)
	})
}

func TestTomorrowIOForecast(t *testing.T) {
	payload := decodeObject(t, `{
		"location": {"lat": 44.65, "lon": -63.57},
		"timelines": {
			"hourly": [
				{
					"time": "2024-05-01T12:00:00Z",
					"values": {
						"temperature": 15.0,
						"precipitationProbability": 40,
						"rainIntensity": 2.0,
						"windSpeed": 5.0,
						"weatherCode": 4001
					}
				},
				{
					"time": "2024-05-01T14:00:00Z",
					"values": {"temperature": 16.0, "rainIntensity": 0.5}
				}
			]
		}
	}`)

	periods, err := TomorrowIOForecast(payload)
	require.NoError(t, err)
	require.Len(t, periods, 2)

	first := periods[0]
	// The gap to the next interval is two hours, so the 2.0 mm/h intensity
	// accumulates to 4.0 mm.
	assert.Equal(t, 2*60*60.0, first.EndTime.Sub(first.StartTime).Seconds())
	assertFloat(t, 4.0, first.PrecipitationMm)
	assertFloat(t, 2.0, first.PrecipRateRainMmHr)
	assertFloat(t, 40.0, first.PrecipitationProbability)
	assertText(t, "Rain", first.Summary)
	assertFloat(t, 18.0, first.WindSpeedKph)

	// The last interval falls back to the declared one-hour timestep.
	second := periods[1]
	assert.Equal(t, 60*60.0, second.EndTime.Sub(second.StartTime).Seconds())
	assertFloat(t, 0.5, second.PrecipitationMm)
}

func TestTomorrowIODailyForecast(t *testing.T) {
	payload := decodeObject(t, `{
		"location": {"lat": 44.65, "lon": -63.57},
		"timelines": {
			"daily": [
				{
					"time": "2024-05-01T11:00:00Z",
					"values": {
						"temperatureAvg": 14.0,
						"temperatureMax": 19.0,
						"temperatureMin": 8.0,
						"precipitationProbabilityMax": 70,
						"precipitationProbabilityAvg": 45,
						"rainAccumulationSum": 5.0,
						"snowAccumulationSum": 2.0,
						"humidityAvg": 58,
						"uvIndexMax": 5,
						"windSpeedAvg": 4.0,
						"weatherCodeMax": 4201,
						"weatherCode": 4001
					}
				}
			]
		}
	}`)

	periods, err := TomorrowIODailyForecast(payload)
	require.NoError(t, err)
	require.Len(t, periods, 1)

	period := periods[0]
	assert.Equal(t, 24*60*60.0, period.EndTime.Sub(period.StartTime).Seconds())
	assertFloat(t, 14.0, period.TemperatureC)
	assertFloat(t, 19.0, period.TemperatureHighC)
	assertFloat(t, 8.0, period.TemperatureLowC)
	assertFloat(t, 70.0, period.PrecipitationProbability)
	assertFloat(t, 7.0, period.PrecipitationMm)
	assertFloat(t, 5.0, period.PrecipAmountRainMm)
	assertFloat(t, 2.0, period.PrecipAmountSnowMm)
	assertFloat(t, 58.0, period.RelativeHumidity)
	assertFloat(t, 5.0, period.UVIndex)
	assertFloat(t, 14.4, period.WindSpeedKph)
	assertText(t, "Rain", period.Summary)
	assertInt(t, 4201, period.ConditionCode)
}

func TestTomorrowIODailyForecastEmptyTimeline(t *testing.T) {
	payload := decodeObject(t, `{"location": {"lat": 1.0, "lon": 2.0}, "timelines": {"daily": []}}`)
	periods, err := TomorrowIODailyForecast(payload)
	require.NoError(t, err)
	assert.Empty(t, periods)
}
