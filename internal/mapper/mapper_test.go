package mapper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Lookup(t *testing.T) {
	registry := NewRegistry()

	for _, provider := range []string{
		ProviderOpenWeather,
		ProviderTomorrowIO,
		ProviderAccuWeather,
		ProviderAmbientWeather,
		ProviderMSCGeoMet,
		ProviderMSCRDPSPrognos,
	} {
		m, err := registry.Lookup(provider)
		require.NoError(t, err, provider)
		assert.Equal(t, provider, m.Provider())
	}

	_, err := registry.Lookup("noaa")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "noaa")
}

func TestOpenWeatherMapper_Dispatch(t *testing.T) {
	payload := decodeObject(t, `{
		"coord": {"lat": 45.4, "lon": -75.7},
		"dt": 1685620800,
		"main": {"temp": 285.15}
	}`)

	result, err := OpenWeatherMapper{}.Map("observation", payload, Context{})
	require.NoError(t, err)
	require.Len(t, result.Observations, 1)
	assert.Equal(t, ProviderOpenWeather, result.Observations[0].Provider)
	assert.InDelta(t, 12.0, *result.Observations[0].TemperatureC, 0.01)

	_, err = OpenWeatherMapper{}.Map("minutely", payload, Context{})
	require.Error(t, err)

	_, err = OpenWeatherMapper{}.Map("observation", []any{}, Context{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected object payload")
}

func TestAccuWeatherMapper_Dispatch(t *testing.T) {
	mctx := Context{
		Latitude:  45.4,
		Longitude: -75.7,
		IssuedAt:  time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	t.Run("observation uses coordinates from context", func(t *testing.T) {
		payload := decodeArray(t, `[{
			"EpochTime": 1685620800,
			"Temperature": {"Metric": {"Value": 5.0, "Unit": "C"}}
		}]`)

		result, err := AccuWeatherMapper{}.Map("observation", payload, mctx)
		require.NoError(t, err)
		require.Len(t, result.Observations, 1)
		assert.Equal(t, 45.4, result.Observations[0].Location.Latitude)
	})

	t.Run("minute forecast anchors on context issue time", func(t *testing.T) {
		payload := decodeObject(t, `{
			"Summaries": [{"StartMinute": 0, "EndMinute": 59, "MinuteText": "Rain"}]
		}`)

		result, err := AccuWeatherMapper{}.Map("minute_forecast", payload, mctx)
		require.NoError(t, err)
		require.Len(t, result.Hourly, 1)
		assert.Equal(t, mctx.IssuedAt, result.Hourly[0].IssuedAt)
	})

	t.Run("location search validates without records", func(t *testing.T) {
		payload := decodeObject(t, `{
			"Key": "55488",
			"LocalizedName": "Ottawa",
			"GeoPosition": {"Latitude": 45.4, "Longitude": -75.7}
		}`)

		result, err := AccuWeatherMapper{}.Map("location_search", payload, mctx)
		require.NoError(t, err)
		assert.Empty(t, result.Observations)
		assert.Empty(t, result.Hourly)
		assert.Empty(t, result.Daily)
	})
}

func TestAmbientWeatherMapper_UsesDeviceFromContext(t *testing.T) {
	payload := decodeArray(t, `[
		{
			"macAddress": "AA:BB",
			"info": {"coords": {"coords": {"lat": 45.4, "lon": -75.7}}},
			"lastData": {"dateutc": 1685577600000, "tempf": 68.0}
		},
		{
			"macAddress": "CC:DD",
			"info": {"coords": {"coords": {"lat": 46.0, "lon": -74.0}}},
			"lastData": {"dateutc": 1685577600000, "tempf": 50.0}
		}
	]`)

	result, err := AmbientWeatherMapper{}.Map("observation", payload, Context{DeviceMAC: "CC:DD"})
	require.NoError(t, err)
	require.Len(t, result.Observations, 1)
	assert.InDelta(t, 10.0, *result.Observations[0].TemperatureC, 0.01)
}

func TestMSCGeoMetMapper_ExtractsFirstFeature(t *testing.T) {
	payload := decodeObject(t, `{
		"features": [{
			"geometry": {"coordinates": [-75.7, 45.4]},
			"properties": {
				"observationTime": "2023-06-01T12:00:00Z",
				"airTemperature": 12.3
			}
		}]
	}`)

	result, err := MSCGeoMetMapper{}.Map("observation", payload, Context{})
	require.NoError(t, err)
	require.Len(t, result.Observations, 1)
	assert.InDelta(t, 12.3, *result.Observations[0].TemperatureC, 0.01)

	_, err = MSCGeoMetMapper{}.Map("observation", decodeObject(t, `{"features": []}`), Context{})
	require.ErrorIs(t, err, ErrEmptyPayload)
}

func TestMSCRDPSPrognosMapper_ValidatesPayload(t *testing.T) {
	payload := decodeObject(t, `{
		"features": [{
			"geometry": {"coordinates": [-75.1, 45.1]},
			"properties": {
				"prognos_station_id": "A",
				"reference_datetime": "2023-06-01T00:00:00Z",
				"forecast_datetime": "2023-06-01T05:00:00Z",
				"forecast_leadtime": "PT005H",
				"forecast_value": 280.15,
				"unit": "K"
			}
		}]
	}`)

	result, err := MSCRDPSPrognosMapper{}.Map("rdps_prognos_20230601T00Z_lead005_airtemp", payload, Context{Latitude: 45.0, Longitude: -75.0})
	require.NoError(t, err)
	assert.Empty(t, result.Observations)

	_, err = MSCRDPSPrognosMapper{}.Map("forecast", payload, Context{})
	require.Error(t, err)
}
