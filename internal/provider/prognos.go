package provider

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ericfeunekes/wxbench/internal/domain"
	"github.com/ericfeunekes/wxbench/internal/mapper"
)

const (
	mscRDPSPrognosBaseURL = "https://dd.weather.gc.ca/today/model_rdps/stat-post-processing"
	// PrognosMaxLeadHours is the furthest published lead hour.
	PrognosMaxLeadHours = 84
)

// runCycles are the RDPS model run hours, ascending.
var runCycles = [...]int{0, 6, 12, 18}

type prognosVariable struct {
	name     string
	method   string
	vertical string
}

var prognosVariables = [...]prognosVariable{
	{name: "AirTemp", method: "MLR", vertical: "AGL-1.5m"},
	{name: "DewPoint", method: "MLR", vertical: "AGL-1.5m"},
	{name: "WindSpeed", method: "LASSO", vertical: "AGL-10m"},
	{name: "WindDir", method: "WDLASSO2", vertical: "AGL-10m"},
}

// MSCRDPSPrognos fetches post-processed RDPS station forecasts from the MSC
// Datamart. One file carries one variable at one lead hour; the adapter
// combines four variables per lead into hourly periods for the station
// nearest the target coordinates.
type MSCRDPSPrognos struct {
	client       *Client
	baseURL      string
	maxLeadHours int
}

func NewMSCRDPSPrognos(client *Client) *MSCRDPSPrognos {
	return &MSCRDPSPrognos{
		client:       client,
		baseURL:      mscRDPSPrognosBaseURL,
		maxLeadHours: PrognosMaxLeadHours,
	}
}

// PrognosEndpoint names the capture endpoint for one variable file, so
// stored payloads can be tied back to a run, lead hour, and variable.
func PrognosEndpoint(runTime time.Time, leadHour int, variable string) string {
	return fmt.Sprintf("rdps_prognos_%s_lead%03d_%s",
		runTime.UTC().Format("20060102T15Z"), leadHour, strings.ToLower(variable))
}

func prognosFilename(runTime time.Time, leadHour int, v prognosVariable) string {
	return fmt.Sprintf("%s_MSC_RDPS-PROGNOS-%s-%s_%s_PT%03dH.json",
		runTime.UTC().Format("20060102T15Z"), v.method, v.name, v.vertical, leadHour)
}

func (p *MSCRDPSPrognos) fileURL(runTime time.Time, leadHour int, v prognosVariable) string {
	return fmt.Sprintf("%s/%02d/%03d/%s",
		p.baseURL, runTime.UTC().Hour(), leadHour, prognosFilename(runTime, leadHour, v))
}

// selectRunTime picks the latest run cycle at or before now.
func selectRunTime(now time.Time) time.Time {
	now = now.UTC()
	for i := len(runCycles) - 1; i >= 0; i-- {
		if now.Hour() >= runCycles[i] {
			return time.Date(now.Year(), now.Month(), now.Day(), runCycles[i], 0, 0, 0, time.UTC)
		}
	}
	previous := now.AddDate(0, 0, -1)
	return time.Date(previous.Year(), previous.Month(), previous.Day(), 18, 0, 0, 0, time.UTC)
}

func (p *MSCRDPSPrognos) fetchVariable(ctx context.Context, runTime time.Time, leadHour int, v prognosVariable, operation string, capture Capture) ([]mapper.PrognosStationValue, error) {
	payload, err := p.client.getJSON(ctx, call{
		provider:  mapper.ProviderMSCRDPSPrognos,
		operation: operation,
		endpoint:  PrognosEndpoint(runTime, leadHour, v.name),
		url:       p.fileURL(runTime, leadHour, v),
		headers:   map[string]string{"Accept": "application/geo+json"},
		capture:   capture,
	})
	if err != nil {
		return nil, err
	}

	obj, ok := payload.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s %s: %w: expected object payload", mapper.ProviderMSCRDPSPrognos, operation, ErrPayload)
	}
	values, err := mapper.ParsePrognosPayload(obj)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w: %v", mapper.ProviderMSCRDPSPrognos, operation, ErrPayload, err)
	}
	return values, nil
}

// resolveRunTime probes lead-zero AirTemp files, stepping back one cycle at
// a time until a published run is found. The successful probe's parsed
// values are returned so the first real fetch can reuse them.
func (p *MSCRDPSPrognos) resolveRunTime(ctx context.Context, now time.Time, capture Capture) (time.Time, []mapper.PrognosStationValue, error) {
	runTime := selectRunTime(now)
	for attempt := 0; attempt < len(runCycles); attempt++ {
		values, err := p.fetchVariable(ctx, runTime, 0, prognosVariables[0], "forecast_check", capture)
		if err != nil {
			// A request rejection usually means the run is not
			// published yet; fall back one cycle.
			if errors.Is(err, ErrRequest) {
				runTime = runTime.Add(-6 * time.Hour)
				continue
			}
			return time.Time{}, nil, err
		}
		return runTime, values, nil
	}
	return time.Time{}, nil, fmt.Errorf("%s forecast: %w: no available run found", mapper.ProviderMSCRDPSPrognos, ErrTransient)
}

func convertPrognosValue(value mapper.PrognosStationValue, variable string) *float64 {
	switch variable {
	case "AirTemp", "DewPoint":
		v := value.Value
		if strings.ToUpper(value.Unit) == "K" {
			v -= 273.15
		}
		return &v
	case "WindSpeed":
		v := value.Value
		return &v
	case "WindDir":
		v := math.Round(value.Value)
		return &v
	}
	return nil
}

// Forecast fetches all variable files up to maxLeadHours and assembles
// hourly periods for the nearest station. Pass a zero now to use the
// client clock.
func (p *MSCRDPSPrognos) Forecast(ctx context.Context, latitude, longitude float64, now time.Time, capture Capture) ([]domain.ForecastPeriod, error) {
	if now.IsZero() {
		now = p.client.clock.Now()
	}

	runTime, cachedValues, err := p.resolveRunTime(ctx, now, capture)
	if err != nil {
		return nil, err
	}

	var stationID string
	var stationLat, stationLon float64
	stationChosen := false
	cachedUsed := false

	periods := make([]domain.ForecastPeriod, 0, p.maxLeadHours+1)
	for leadHour := 0; leadHour <= p.maxLeadHours; leadHour++ {
		byVariable := make(map[string]*float64, len(prognosVariables))
		var forecastTime, issuedAt time.Time

		for i, variable := range prognosVariables {
			var values []mapper.PrognosStationValue
			if leadHour == 0 && i == 0 && cachedValues != nil && !cachedUsed {
				values = cachedValues
				cachedUsed = true
			} else {
				values, err = p.fetchVariable(ctx, runTime, leadHour, variable, "forecast", capture)
				if err != nil {
					return nil, err
				}
			}

			if !stationChosen {
				stationID, stationLat, stationLon, err = mapper.SelectNearestPrognosStation(values, latitude, longitude)
				if err != nil {
					return nil, fmt.Errorf("%s forecast: %w: %v", mapper.ProviderMSCRDPSPrognos, ErrPayload, err)
				}
				stationChosen = true
			}

			stationValue := mapper.PrognosValueForStation(values, stationID)
			if stationValue == nil {
				stationValue = &values[0]
			}

			byVariable[variable.name] = convertPrognosValue(*stationValue, variable.name)
			forecastTime = stationValue.ForecastTime
			issuedAt = stationValue.ReferenceTime
		}

		if forecastTime.IsZero() || issuedAt.IsZero() {
			continue
		}

		period := domain.ForecastPeriod{
			Provider:     mapper.ProviderMSCRDPSPrognos,
			Location:     domain.Location{Latitude: stationLat, Longitude: stationLon},
			IssuedAt:     issuedAt,
			StartTime:    forecastTime,
			EndTime:      forecastTime.Add(time.Hour),
			TemperatureC: byVariable["AirTemp"],
			DewpointC:    byVariable["DewPoint"],
			WindSpeedKph: byVariable["WindSpeed"],
		}
		if dir := byVariable["WindDir"]; dir != nil {
			period.WindDirectionDeg = domain.Int(int(*dir))
		}
		periods = append(periods, period)
	}

	return periods, nil
}
