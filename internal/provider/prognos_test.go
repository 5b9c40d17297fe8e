package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfeunekes/wxbench/internal/mapper"
)

func TestSelectRunTime(t *testing.T) {
	tests := []struct {
		hour int
		want int
	}{
		{0, 0},
		{5, 0},
		{6, 6},
		{13, 12},
		{18, 18},
		{23, 18},
	}
	for _, tc := range tests {
		now := time.Date(2023, 6, 1, tc.hour, 30, 0, 0, time.UTC)
		got := selectRunTime(now)
		assert.Equal(t, tc.want, got.Hour(), "hour %d", tc.hour)
		assert.Equal(t, now.Day(), got.Day())
		assert.Zero(t, got.Minute())
	}
}

func TestPrognosEndpoint(t *testing.T) {
	runTime := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "rdps_prognos_20230601T12Z_lead005_airtemp", PrognosEndpoint(runTime, 5, "AirTemp"))
	assert.Equal(t, "rdps_prognos_20230601T12Z_lead084_winddir", PrognosEndpoint(runTime, 84, "WindDir"))
}

func TestPrognosFilename(t *testing.T) {
	runTime := time.Date(2023, 6, 1, 6, 0, 0, 0, time.UTC)
	name := prognosFilename(runTime, 5, prognosVariables[0])
	assert.Equal(t, "20230601T06Z_MSC_RDPS-PROGNOS-MLR-AirTemp_AGL-1.5m_PT005H.json", name)
}

func prognosFixture(lead int, value float64, unit string) string {
	leadLabel := fmt.Sprintf("PT%03dH", lead)
	forecast := time.Date(2023, 6, 1, 6+lead, 0, 0, 0, time.UTC).Format(time.RFC3339)
	return fmt.Sprintf(`{
		"features": [
			{
				"geometry": {"coordinates": [-75.1, 45.1]},
				"properties": {
					"prognos_station_id": "NEAR",
					"reference_datetime": "2023-06-01T06:00:00Z",
					"forecast_datetime": %q,
					"forecast_leadtime": %q,
					"forecast_value": %v,
					"unit": %q
				}
			},
			{
				"geometry": {"coordinates": [-80.0, 50.0]},
				"properties": {
					"prognos_station_id": "FAR",
					"reference_datetime": "2023-06-01T06:00:00Z",
					"forecast_datetime": %q,
					"forecast_leadtime": %q,
					"forecast_value": 999,
					"unit": %q
				}
			}
		]
	}`, forecast, leadLabel, value, unit, forecast, leadLabel, unit)
}

func TestMSCRDPSPrognos_Forecast(t *testing.T) {
	// The 12Z run is not published yet; the adapter must fall back to 06Z.
	var requests []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.URL.Path)
		if strings.Contains(r.URL.Path, "20230601T12Z") {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		var body string
		switch {
		case strings.Contains(r.URL.Path, "AirTemp"):
			body = prognosFixture(0, 280.15, "K")
		case strings.Contains(r.URL.Path, "DewPoint"):
			body = prognosFixture(0, 275.15, "K")
		case strings.Contains(r.URL.Path, "WindSpeed"):
			body = prognosFixture(0, 12.5, "km/h")
		case strings.Contains(r.URL.Path, "WindDir"):
			body = prognosFixture(0, 245.6, "deg")
		default:
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	defer server.Close()

	p := NewMSCRDPSPrognos(testClient(0))
	p.baseURL = server.URL
	p.maxLeadHours = 0

	now := time.Date(2023, 6, 1, 12, 30, 0, 0, time.UTC)
	periods, err := p.Forecast(context.Background(), 45.0, -75.0, now, nil)
	require.NoError(t, err)
	require.Len(t, periods, 1)

	period := periods[0]
	assert.Equal(t, "msc_rdps_prognos", period.Provider)
	assert.Equal(t, 45.1, period.Location.Latitude)
	assert.Equal(t, -75.1, period.Location.Longitude)
	assert.Equal(t, time.Date(2023, 6, 1, 6, 0, 0, 0, time.UTC), period.IssuedAt)
	assert.Equal(t, time.Date(2023, 6, 1, 6, 0, 0, 0, time.UTC), period.StartTime)
	assert.Equal(t, time.Date(2023, 6, 1, 7, 0, 0, 0, time.UTC), period.EndTime)
	assert.InDelta(t, 7.0, *period.TemperatureC, 0.01)
	assert.InDelta(t, 2.0, *period.DewpointC, 0.01)
	assert.InDelta(t, 12.5, *period.WindSpeedKph, 0.01)
	assert.Equal(t, 246, *period.WindDirectionDeg)

	// One failed probe for 12Z, one successful probe for 06Z that is
	// reused for AirTemp lead zero, then the three other variables.
	require.Len(t, requests, 5)
	assert.Contains(t, requests[0], "20230601T12Z")
	assert.Contains(t, requests[1], "20230601T06Z_MSC_RDPS-PROGNOS-MLR-AirTemp")
	assert.Contains(t, requests[2], "DewPoint")
	assert.Contains(t, requests[3], "WindSpeed")
	assert.Contains(t, requests[4], "WindDir")
}

func prognosStationValue(v float64, unit string) mapper.PrognosStationValue {
	return mapper.PrognosStationValue{Value: v, Unit: unit}
}

func TestConvertPrognosValue(t *testing.T) {
	kelvin := prognosStationValue(280.15, "K")
	assert.InDelta(t, 7.0, *convertPrognosValue(kelvin, "AirTemp"), 0.001)

	celsius := prognosStationValue(7.0, "C")
	assert.InDelta(t, 7.0, *convertPrognosValue(celsius, "DewPoint"), 0.001)

	wind := prognosStationValue(12.5, "km/h")
	assert.InDelta(t, 12.5, *convertPrognosValue(wind, "WindSpeed"), 0.001)

	dir := prognosStationValue(245.6, "deg")
	assert.Equal(t, 246.0, *convertPrognosValue(dir, "WindDir"))

	// Rounding is to nearest for either sign, not a positive-only shift.
	negDir := prognosStationValue(-0.5, "deg")
	assert.Equal(t, -1.0, *convertPrognosValue(negDir, "WindDir"))
	negDir = prognosStationValue(-1.6, "deg")
	assert.Equal(t, -2.0, *convertPrognosValue(negDir, "WindDir"))

	assert.Nil(t, convertPrognosValue(kelvin, "Pressure"))
}
