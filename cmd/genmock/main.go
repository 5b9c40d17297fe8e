// Command genmock seeds a SQLite archive with synthetic provider payloads.
// The fixtures cover every mapper endpoint with representative shapes, so
// `go run ./cmd/validate` can exercise the full replay path without network
// access or API keys.
//
// Usage:
//
//	go run ./cmd/genmock -db data/mock/wxbench.sqlite
//	go run ./cmd/genmock -db data/mock/wxbench.sqlite -dir data/mock/payloads
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ericfeunekes/wxbench/internal/mapper"
	"github.com/ericfeunekes/wxbench/internal/storage/sqlite"
)

// Fixed timestamps keep the fixtures reproducible across runs.
var runAt = time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	provider string
	endpoint string
	payload  string
}

func main() {
	dbPath := flag.String("db", "", "output path for the mock SQLite archive")
	dir := flag.String("dir", "", "optional directory to also dump payload files into")
	flag.Parse()

	if *dbPath == "" {
		flag.Usage()
		log.Fatal("missing required flag: -db")
	}

	if err := run(*dbPath, *dir); err != nil {
		log.Fatal(err)
	}
}

func run(dbPath, dir string) error {
	store, err := sqlite.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	ctx := context.Background()
	for _, f := range fixtures() {
		_, err := store.InsertRawPayload(ctx, sqlite.RawPayload{
			Provider:       f.provider,
			Endpoint:       f.endpoint,
			RunAt:          runAt,
			RequestURL:     fmt.Sprintf("https://mock.invalid/%s/%s", f.provider, f.endpoint),
			ResponseStatus: 200,
			PayloadJSON:    f.payload,
		})
		if err != nil {
			return fmt.Errorf("%s %s: %w", f.provider, f.endpoint, err)
		}
		log.Printf("%s: %s", f.provider, f.endpoint)

		if dir != "" {
			if err := dumpPayload(dir, f); err != nil {
				return err
			}
		}
	}

	log.Printf("seeded %s", dbPath)
	return nil
}

func dumpPayload(dir string, f fixture) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	name := fmt.Sprintf("%s_%s.json", f.provider, strings.ReplaceAll(f.endpoint, "/", "_"))
	return os.WriteFile(filepath.Join(dir, name), []byte(f.payload), 0o644)
}

// fixtures returns one payload per provider endpoint, shaped the way the
// live APIs respond.
func fixtures() []fixture {
	prognosEndpoint := "rdps_prognos_" + runAt.Format("20060102T15Z") + "_lead000_airtemp"

	return []fixture{
		{mapper.ProviderOpenWeather, "observation", `{
			"coord": {"lat": 45.4, "lon": -75.7},
			"dt": 1714564800,
			"name": "Ottawa",
			"main": {"temp": 285.15, "pressure": 1013.0, "humidity": 70},
			"wind": {"speed": 5.0, "deg": 230},
			"visibility": 10000,
			"weather": [{"id": 500, "main": "Rain", "description": "light rain"}],
			"rain": {"1h": 0.5}
		}`},
		{mapper.ProviderOpenWeather, "forecast", `{
			"city": {"coord": {"lat": 45.4, "lon": -75.7}},
			"list": [
				{"dt": 1714564800, "main": {"temp": 285.15, "temp_max": 287.15, "temp_min": 283.15}, "weather": [{"id": 803, "description": "broken clouds"}], "wind": {"speed": 4.0, "deg": 180}, "pop": 0.2, "rain": {"3h": 1.5}},
				{"dt": 1714575600, "main": {"temp": 286.15}, "pop": 0}
			]
		}`},
		{mapper.ProviderOpenWeather, "onecall_hourly", `{
			"lat": 45.4,
			"lon": -75.7,
			"hourly": [
				{"dt": 1714564800, "temp": 12.5, "feels_like": 11.0, "dew_point": 4.0, "pressure": 1013, "humidity": 65, "uvi": 3.0, "clouds": 40, "visibility": 10000, "wind_speed": 4.0, "wind_deg": 210, "pop": 0.35, "weather": [{"id": 500, "description": "light rain"}], "rain": {"1h": 0.4}},
				{"dt": 1714568400, "temp": 13.0, "pop": 0.1}
			]
		}`},
		{mapper.ProviderOpenWeather, "onecall_daily", `{
			"lat": 45.4,
			"lon": -75.7,
			"daily": [
				{"dt": 1714564800, "temp": {"day": 14.0, "max": 17.0, "min": 8.0}, "feels_like": {"day": 13.0}, "dew_point": 5.0, "pressure": 1015, "humidity": 55, "uvi": 5.0, "clouds": 20, "wind_speed": 5.0, "wind_deg": 270, "pop": 0.6, "rain": 3.0, "weather": [{"id": 501, "description": "moderate rain"}]}
			]
		}`},
		{mapper.ProviderTomorrowIO, "observation", `{
			"location": {"lat": 45.4, "lon": -75.7, "name": "Ottawa"},
			"data": {
				"time": "2024-05-01T12:00:00Z",
				"values": {"temperature": 12.5, "dewPoint": 4.0, "windSpeed": 3.0, "windDirection": 240, "pressureSeaLevel": 1013.0, "humidity": 62, "visibility": 16.0, "cloudCover": 35, "weatherCode": 4200, "rainIntensity": 1.2, "uvIndex": 3}
			}
		}`},
		{mapper.ProviderTomorrowIO, "forecast", `{
			"location": {"lat": 45.4, "lon": -75.7},
			"timelines": {
				"hourly": [
					{"time": "2024-05-01T13:00:00Z", "values": {"temperature": 13.0, "precipitationProbability": 40, "rainIntensity": 2.0, "windSpeed": 5.0, "weatherCode": 4001}},
					{"time": "2024-05-01T14:00:00Z", "values": {"temperature": 14.0, "rainIntensity": 0.5}}
				]
			}
		}`},
		{mapper.ProviderTomorrowIO, "forecast_daily", `{
			"location": {"lat": 45.4, "lon": -75.7},
			"timelines": {
				"daily": [
					{"time": "2024-05-01T11:00:00Z", "values": {"temperatureAvg": 14.0, "temperatureMax": 19.0, "temperatureMin": 8.0, "precipitationProbabilityMax": 70, "rainAccumulationSum": 5.0, "humidityAvg": 58, "uvIndexMax": 5, "windSpeedAvg": 4.0, "weatherCode": 4001}}
				]
			}
		}`},
		{mapper.ProviderAccuWeather, "location_search", `{
			"Key": "56186",
			"LocalizedName": "Ottawa",
			"GeoPosition": {"Latitude": 45.4, "Longitude": -75.7}
		}`},
		{mapper.ProviderAccuWeather, "observation", `[
			{
				"EpochTime": 1714564800,
				"WeatherText": "Cloudy",
				"Temperature": {"Metric": {"Value": 12.0, "Unit": "C"}},
				"Wind": {"Speed": {"Metric": {"Value": 10.0, "Unit": "km/h"}}, "Direction": {"Degrees": 200}},
				"Pressure": {"Metric": {"Value": 1012.0, "Unit": "mb"}},
				"UVIndex": 3,
				"CloudCover": 50,
				"WeatherIcon": 7
			}
		]`},
		{mapper.ProviderAccuWeather, "forecast_hourly", `[
			{
				"EpochDateTime": 1714568400,
				"Temperature": {"Metric": {"Value": 13.0, "Unit": "C"}},
				"DewPoint": {"Value": 4.0, "Unit": "C"},
				"Wind": {"Speed": {"Metric": {"Value": 8.0, "Unit": "km/h"}}, "Direction": {"Degrees": 180}},
				"RelativeHumidity": 55,
				"PrecipitationProbability": 20,
				"TotalLiquid": {"Value": 1.2, "Unit": "mm"},
				"WeatherIcon": 12,
				"IconPhrase": "Showers"
			}
		]`},
		{mapper.ProviderAccuWeather, "forecast_daily", `{
			"DailyForecasts": [
				{
					"EpochDate": 1714564800,
					"Temperature": {
						"Minimum": {"Metric": {"Value": 8.0, "Unit": "C"}},
						"Maximum": {"Metric": {"Value": 17.0, "Unit": "C"}}
					},
					"Day": {"PrecipitationProbability": 40, "Rain": {"Value": 2.0, "Unit": "mm"}, "IconPhrase": "Rain", "Icon": 18},
					"HoursOfSun": 5.5
				}
			]
		}`},
		{mapper.ProviderAccuWeather, "minute_forecast", `{
			"Summary": {"Phrase": "Rain ending soon"},
			"Summaries": [
				{"StartMinute": 0, "CountMinute": 10, "MinuteText": "Light rain"},
				{"StartMinute": 10, "EndMinute": 59}
			]
		}`},
		{mapper.ProviderAmbientWeather, "observation", `[
			{
				"macAddress": "00:11:22:33:44:55",
				"info": {"name": "Backyard", "coords": {"coords": {"lat": 45.4, "lon": -75.7}}},
				"lastData": {"dateutc": 1714564800000, "tempf": 54.5, "dewPoint": 39.2, "windspeedmph": 5.0, "winddir": 135, "baromrelin": 29.92, "humidity": 70, "hourlyrainin": 0.02}
			}
		]`},
		{mapper.ProviderMSCGeoMet, "observation", `{
			"type": "FeatureCollection",
			"features": [
				{
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
						"presentWeather": [{"value": "Rain"}]
					}
				}
			]
		}`},
		{mapper.ProviderMSCGeoMet, "forecast", `{
			"type": "FeatureCollection",
			"features": [
				{
					"type": "Feature",
					"geometry": {"type": "Point", "coordinates": [-75.7, 45.4]},
					"properties": {
						"forecastIssueTime": "2024-05-01T00:00:00Z",
						"periods": [
							{"start": "2024-05-01T13:00:00Z", "end": "2024-05-01T14:00:00Z", "temperature": 11.0, "probabilityOfPrecipitation": 20, "summary": "Cloudy", "wind": {"speed": 10.5, "direction": 250}},
							{"start": "2024-05-01T14:00:00Z", "end": "2024-05-01T15:00:00Z", "temperature": 12.0, "pop": 60, "precipitationAmount": 0.8, "textSummary": "Rain"}
						]
					}
				}
			]
		}`},
		{mapper.ProviderMSCRDPSPrognos, prognosEndpoint, `{
			"type": "FeatureCollection",
			"features": [
				{
					"type": "Feature",
					"geometry": {"type": "Point", "coordinates": [-75.7, 45.4, 0.0]},
					"properties": {
						"prognos_station_id": "A",
						"reference_datetime": "2024-05-01T12:00:00Z",
						"forecast_datetime": "2024-05-01T12:00:00Z",
						"forecast_leadtime": "PT000H",
						"forecast_value": 285.15,
						"unit": "K"
					}
				}
			]
		}`},
	}
}
