package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const prognosPayload = `{
	"type": "FeatureCollection",
	"features": [
		{
			"type": "Feature",
			"geometry": {"type": "Point", "coordinates": [-75.0, 45.0, 0.0]},
			"properties": {
				"prognos_station_id": "A",
				"reference_datetime": "2025-12-28T00:00:00Z",
				"forecast_datetime": "2025-12-28T05:00:00Z",
				"forecast_leadtime": "PT005H",
				"forecast_value": 280.15,
				"unit": "K"
			}
		},
		{
			"type": "Feature",
			"geometry": {"type": "Point", "coordinates": [-120.0, 50.0, 0.0]},
			"properties": {
				"prognos_station_id": "B",
				"reference_datetime": "2025-12-28T00:00:00Z",
				"forecast_datetime": "2025-12-28T05:00:00Z",
				"forecast_leadtime": "PT005H",
				"forecast_value": 285.15,
				"unit": "K"
			}
		}
	]
}`

func TestParsePrognosPayload(t *testing.T) {
	values, err := ParsePrognosPayload(decodeObject(t, prognosPayload))
	require.NoError(t, err)
	require.Len(t, values, 2)

	assert.Equal(t, "A", values[0].StationID)
	assert.Equal(t, 45.0, values[0].Latitude)
	assert.Equal(t, -75.0, values[0].Longitude)
	assert.Equal(t, 5, values[0].LeadHours)
	assert.Equal(t, "K", values[0].Unit)
	assert.InDelta(t, 280.15, values[0].Value, 0.001)
}

func TestParsePrognosPayloadNumericStationIDs(t *testing.T) {
	payload := decodeObject(t, `{
		"features": [{
			"geometry": {"coordinates": [-75.0, 45.0]},
			"properties": {
				"prognos_station_id": 7,
				"reference_datetime": "2025-12-28T00:00:00Z",
				"forecast_datetime": "2025-12-28T05:00:00Z",
				"forecast_leadtime": "PT005H",
				"forecast_value": 280.15,
				"unit": "K"
			}
		}]
	}`)

	values, err := ParsePrognosPayload(payload)
	require.NoError(t, err)
	assert.Equal(t, "7", values[0].StationID)
}

func TestParsePrognosPayloadSkipsUnusableFeatures(t *testing.T) {
	payload := decodeObject(t, `{
		"features": [
			{"geometry": {"coordinates": [-75.0]}, "properties": {}},
			{"geometry": {"coordinates": [-75.0, 45.0]}, "properties": {"prognos_station_id": "X"}},
			{
				"geometry": {"coordinates": [-75.0, 45.0]},
				"properties": {
					"prognos_station_id": "A",
					"reference_datetime": "2025-12-28T00:00:00Z",
					"forecast_datetime": "2025-12-28T05:00:00Z",
					"forecast_leadtime": "PT012H",
					"forecast_value": 1.5,
					"unit": "m/s"
				}
			}
		]
	}`)

	values, err := ParsePrognosPayload(payload)
	require.NoError(t, err)
	require.Len(t, values, 1)
	assert.Equal(t, 12, values[0].LeadHours)
}

func TestParsePrognosPayloadRejectsEmpty(t *testing.T) {
	_, err := ParsePrognosPayload(decodeObject(t, `{"features": []}`))
	assert.ErrorIs(t, err, ErrEmptyPayload)
}

func TestParsePrognosLeadHours(t *testing.T) {
	hours, err := parsePrognosLeadHours("PT005H")
	require.NoError(t, err)
	assert.Equal(t, 5, hours)

	hours, err = parsePrognosLeadHours("PT084H")
	require.NoError(t, err)
	assert.Equal(t, 84, hours)

	_, err = parsePrognosLeadHours("P1D")
	assert.Error(t, err)
}

func TestSelectNearestPrognosStation(t *testing.T) {
	values, err := ParsePrognosPayload(decodeObject(t, prognosPayload))
	require.NoError(t, err)

	stationID, lat, lon, err := SelectNearestPrognosStation(values, 45.1, -75.1)
	require.NoError(t, err)
	assert.Equal(t, "A", stationID)
	assert.InDelta(t, 45.0, lat, 0.001)
	assert.InDelta(t, -75.0, lon, 0.001)

	_, _, _, err = SelectNearestPrognosStation(nil, 45.0, -75.0)
	assert.Error(t, err)
}

func TestPrognosValueForStation(t *testing.T) {
	values, err := ParsePrognosPayload(decodeObject(t, prognosPayload))
	require.NoError(t, err)

	entry := PrognosValueForStation(values, "B")
	require.NotNil(t, entry)
	assert.Equal(t, "B", entry.StationID)

	assert.Nil(t, PrognosValueForStation(values, "Z"))
}

func TestHaversineKm(t *testing.T) {
	assert.InDelta(t, 0.0, haversineKm(45.0, -75.0, 45.0, -75.0), 0.0001)
	// Ottawa to Toronto is roughly 350 km.
	assert.InDelta(t, 352.0, haversineKm(45.42, -75.70, 43.65, -79.38), 10.0)
}
