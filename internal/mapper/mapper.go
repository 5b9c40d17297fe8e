package mapper

import (
	"fmt"
	"strings"
	"time"

	"github.com/ericfeunekes/wxbench/internal/domain"
)

// Exported provider identifiers, matching DataPoint.Provider values.
const (
	ProviderOpenWeather    = openWeatherProvider
	ProviderTomorrowIO     = tomorrowIOProvider
	ProviderAccuWeather    = accuWeatherProvider
	ProviderAmbientWeather = ambientWeatherProvider
	ProviderMSCGeoMet      = mscGeoMetProvider
	ProviderMSCRDPSPrognos = "msc_rdps_prognos"
)

// Context carries the per-run inputs a mapper may need beyond the payload
// itself.
type Context struct {
	Latitude  float64
	Longitude float64
	// DeviceMAC selects the Ambient Weather device; empty picks the first
	// device by MAC order.
	DeviceMAC string
	// IssuedAt anchors products whose payload carries no issue time, such
	// as the AccuWeather minute forecast.
	IssuedAt time.Time
}

// Result groups the normalized records produced from one payload.
type Result struct {
	Observations []domain.Observation
	Hourly       []domain.ForecastPeriod
	Daily        []domain.ForecastPeriod
}

// PayloadMapper normalizes one provider endpoint's decoded JSON payload.
// Implementations are pure: same payload in, same records out.
type PayloadMapper interface {
	Provider() string
	Map(endpoint string, payload any, mctx Context) (Result, error)
}

// Registry resolves mappers by provider name for replay and validation
// paths that see stored payloads from every provider.
type Registry map[string]PayloadMapper

// NewRegistry returns a registry covering every supported provider.
func NewRegistry() Registry {
	mappers := []PayloadMapper{
		OpenWeatherMapper{},
		TomorrowIOMapper{},
		AccuWeatherMapper{},
		AmbientWeatherMapper{},
		MSCGeoMetMapper{},
		MSCRDPSPrognosMapper{},
	}
	registry := make(Registry, len(mappers))
	for _, m := range mappers {
		registry[m.Provider()] = m
	}
	return registry
}

// Lookup returns the mapper for provider, or an error naming the unknown
// provider.
func (r Registry) Lookup(provider string) (PayloadMapper, error) {
	m, ok := r[provider]
	if !ok {
		return nil, fmt.Errorf("no mapper registered for provider %q", provider)
	}
	return m, nil
}

func objectPayload(provider, endpoint string, payload any) (map[string]any, error) {
	obj, ok := payload.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s %s: expected object payload, got %T", provider, endpoint, payload)
	}
	return obj, nil
}

func arrayPayload(provider, endpoint string, payload any) ([]any, error) {
	arr, ok := payload.([]any)
	if !ok {
		return nil, fmt.Errorf("%s %s: expected array payload, got %T", provider, endpoint, payload)
	}
	return arr, nil
}

func unknownEndpoint(provider, endpoint string) error {
	return fmt.Errorf("%s: unknown endpoint %q", provider, endpoint)
}

// OpenWeatherMapper dispatches OpenWeather payloads by endpoint.
type OpenWeatherMapper struct{}

func (OpenWeatherMapper) Provider() string { return ProviderOpenWeather }

func (OpenWeatherMapper) Map(endpoint string, payload any, _ Context) (Result, error) {
	obj, err := objectPayload(ProviderOpenWeather, endpoint, payload)
	if err != nil {
		return Result{}, err
	}
	switch endpoint {
	case "observation":
		obs, err := OpenWeatherObservation(obj)
		if err != nil {
			return Result{}, err
		}
		return Result{Observations: []domain.Observation{obs}}, nil
	case "forecast":
		periods, err := OpenWeatherForecast(obj)
		if err != nil {
			return Result{}, err
		}
		return Result{Hourly: periods}, nil
	case "onecall_hourly":
		periods, err := OpenWeatherOneCallHourly(obj)
		if err != nil {
			return Result{}, err
		}
		return Result{Hourly: periods}, nil
	case "onecall_daily":
		periods, err := OpenWeatherOneCallDaily(obj)
		if err != nil {
			return Result{}, err
		}
		return Result{Daily: periods}, nil
	default:
		return Result{}, unknownEndpoint(ProviderOpenWeather, endpoint)
	}
}

// TomorrowIOMapper dispatches Tomorrow.io payloads by endpoint.
type TomorrowIOMapper struct{}

func (TomorrowIOMapper) Provider() string { return ProviderTomorrowIO }

func (TomorrowIOMapper) Map(endpoint string, payload any, _ Context) (Result, error) {
	obj, err := objectPayload(ProviderTomorrowIO, endpoint, payload)
	if err != nil {
		return Result{}, err
	}
	switch endpoint {
	case "observation":
		obs, err := TomorrowIOObservation(obj)
		if err != nil {
			return Result{}, err
		}
		return Result{Observations: []domain.Observation{obs}}, nil
	case "forecast":
		periods, err := TomorrowIOForecast(obj)
		if err != nil {
			return Result{}, err
		}
		return Result{Hourly: periods}, nil
	case "forecast_daily":
		periods, err := TomorrowIODailyForecast(obj)
		if err != nil {
			return Result{}, err
		}
		return Result{Daily: periods}, nil
	default:
		return Result{}, unknownEndpoint(ProviderTomorrowIO, endpoint)
	}
}

// AccuWeatherMapper dispatches AccuWeather payloads by endpoint. The
// location_search endpoint validates the payload without producing records.
type AccuWeatherMapper struct{}

func (AccuWeatherMapper) Provider() string { return ProviderAccuWeather }

func (AccuWeatherMapper) Map(endpoint string, payload any, mctx Context) (Result, error) {
	switch endpoint {
	case "location_search":
		obj, err := objectPayload(ProviderAccuWeather, endpoint, payload)
		if err != nil {
			return Result{}, err
		}
		if _, err := AccuWeatherLocationFromPayload(obj); err != nil {
			return Result{}, err
		}
		return Result{}, nil
	case "observation":
		arr, err := arrayPayload(ProviderAccuWeather, endpoint, payload)
		if err != nil {
			return Result{}, err
		}
		obs, err := AccuWeatherObservation(arr, mctx.Latitude, mctx.Longitude)
		if err != nil {
			return Result{}, err
		}
		return Result{Observations: []domain.Observation{obs}}, nil
	case "forecast_hourly":
		arr, err := arrayPayload(ProviderAccuWeather, endpoint, payload)
		if err != nil {
			return Result{}, err
		}
		periods, err := AccuWeatherHourlyForecast(arr, mctx.Latitude, mctx.Longitude)
		if err != nil {
			return Result{}, err
		}
		return Result{Hourly: periods}, nil
	case "forecast_daily":
		obj, err := objectPayload(ProviderAccuWeather, endpoint, payload)
		if err != nil {
			return Result{}, err
		}
		periods, err := AccuWeatherDailyForecast(obj, mctx.Latitude, mctx.Longitude)
		if err != nil {
			return Result{}, err
		}
		return Result{Daily: periods}, nil
	case "minute_forecast":
		obj, err := objectPayload(ProviderAccuWeather, endpoint, payload)
		if err != nil {
			return Result{}, err
		}
		periods, err := AccuWeatherMinuteForecast(obj, mctx.Latitude, mctx.Longitude, mctx.IssuedAt)
		if err != nil {
			return Result{}, err
		}
		return Result{Hourly: periods}, nil
	default:
		return Result{}, unknownEndpoint(ProviderAccuWeather, endpoint)
	}
}

// AmbientWeatherMapper maps the device-list observation endpoint.
type AmbientWeatherMapper struct{}

func (AmbientWeatherMapper) Provider() string { return ProviderAmbientWeather }

func (AmbientWeatherMapper) Map(endpoint string, payload any, mctx Context) (Result, error) {
	if endpoint != "observation" {
		return Result{}, unknownEndpoint(ProviderAmbientWeather, endpoint)
	}
	arr, err := arrayPayload(ProviderAmbientWeather, endpoint, payload)
	if err != nil {
		return Result{}, err
	}
	obs, err := AmbientWeatherObservation(arr, mctx.DeviceMAC)
	if err != nil {
		return Result{}, err
	}
	return Result{Observations: []domain.Observation{obs}}, nil
}

// MSCGeoMetMapper dispatches GeoMet feature payloads by endpoint.
type MSCGeoMetMapper struct{}

func (MSCGeoMetMapper) Provider() string { return ProviderMSCGeoMet }

func (MSCGeoMetMapper) Map(endpoint string, payload any, _ Context) (Result, error) {
	obj, err := objectPayload(ProviderMSCGeoMet, endpoint, payload)
	if err != nil {
		return Result{}, err
	}
	feature, err := firstGeoMetFeature(obj)
	if err != nil {
		return Result{}, err
	}
	switch endpoint {
	case "observation":
		obs, err := MSCGeoMetObservation(feature)
		if err != nil {
			return Result{}, err
		}
		return Result{Observations: []domain.Observation{obs}}, nil
	case "forecast":
		periods, err := MSCGeoMetForecast(feature)
		if err != nil {
			return Result{}, err
		}
		return Result{Hourly: periods}, nil
	default:
		return Result{}, unknownEndpoint(ProviderMSCGeoMet, endpoint)
	}
}

func firstGeoMetFeature(payload map[string]any) (map[string]any, error) {
	features := getArray(payload, "features")
	if len(features) == 0 {
		return nil, fmt.Errorf("%w: no features returned", ErrEmptyPayload)
	}
	feature, ok := features[0].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected feature format", ErrEmptyPayload)
	}
	return feature, nil
}

// MSCRDPSPrognosMapper validates a single variable payload. One payload
// carries one variable at one lead hour for many stations, so a full
// forecast period cannot be produced here; the provider adapter combines
// payloads across variables. Map parses the payload and selects the station
// nearest the context coordinates to surface shape problems.
type MSCRDPSPrognosMapper struct{}

func (MSCRDPSPrognosMapper) Provider() string { return ProviderMSCRDPSPrognos }

func (MSCRDPSPrognosMapper) Map(endpoint string, payload any, mctx Context) (Result, error) {
	if !strings.HasPrefix(endpoint, "rdps_prognos_") {
		return Result{}, unknownEndpoint(ProviderMSCRDPSPrognos, endpoint)
	}
	obj, err := objectPayload(ProviderMSCRDPSPrognos, endpoint, payload)
	if err != nil {
		return Result{}, err
	}
	values, err := ParsePrognosPayload(obj)
	if err != nil {
		return Result{}, err
	}
	if _, _, _, err := SelectNearestPrognosStation(values, mctx.Latitude, mctx.Longitude); err != nil {
		return Result{}, err
	}
	return Result{}, nil
}
