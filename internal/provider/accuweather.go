package provider

import (
	"context"
	"fmt"
	"net/url"

	"github.com/ericfeunekes/wxbench/internal/domain"
	"github.com/ericfeunekes/wxbench/internal/mapper"
)

const accuWeatherBaseURL = "https://dataservice.accuweather.com"

// AccuWeather fetches current conditions and forecasts from the AccuWeather
// data service. Location keys are resolved once per coordinate pair and held
// in a small LRU cache, since the location endpoint is metered separately.
type AccuWeather struct {
	client    *Client
	apiKey    string
	baseURL   string
	locations *locationCache
}

func NewAccuWeather(client *Client, apiKey string) *AccuWeather {
	return &AccuWeather{
		client:    client,
		apiKey:    apiKey,
		baseURL:   accuWeatherBaseURL,
		locations: newLocationCache(32),
	}
}

func formatCoordinates(latitude, longitude float64) string {
	return fmt.Sprintf("%v,%v", latitude, longitude)
}

func (p *AccuWeather) keyedParams() url.Values {
	params := url.Values{"details": {"true"}}
	if p.apiKey != "" {
		params.Set("apikey", p.apiKey)
	}
	return params
}

func (p *AccuWeather) mapResult(endpoint string, payload any, mctx mapper.Context) (mapper.Result, error) {
	result, err := mapper.AccuWeatherMapper{}.Map(endpoint, payload, mctx)
	if err != nil {
		return mapper.Result{}, fmt.Errorf("%s %s: %w: %v", mapper.ProviderAccuWeather, endpoint, ErrPayload, err)
	}
	return result, nil
}

// Location resolves the AccuWeather location key for a coordinate pair,
// hitting the geoposition endpoint only on cache misses.
func (p *AccuWeather) Location(ctx context.Context, latitude, longitude float64, capture Capture) (mapper.AccuWeatherLocation, error) {
	cacheKey := formatCoordinates(latitude, longitude)
	if location, ok := p.locations.get(cacheKey); ok {
		return location, nil
	}

	params := url.Values{"q": {cacheKey}}
	if p.apiKey != "" {
		params.Set("apikey", p.apiKey)
	}

	payload, err := p.client.getJSON(ctx, call{
		provider:  mapper.ProviderAccuWeather,
		operation: "location_search",
		endpoint:  "location_search",
		url:       p.baseURL + "/locations/v1/cities/geoposition/search",
		params:    params,
		capture:   capture,
	})
	if err != nil {
		return mapper.AccuWeatherLocation{}, err
	}

	obj, ok := payload.(map[string]any)
	if !ok {
		return mapper.AccuWeatherLocation{}, fmt.Errorf("%s location_search: %w: expected object payload", mapper.ProviderAccuWeather, ErrPayload)
	}
	location, err := mapper.AccuWeatherLocationFromPayload(obj)
	if err != nil {
		return mapper.AccuWeatherLocation{}, fmt.Errorf("%s location_search: %w: %v", mapper.ProviderAccuWeather, ErrPayload, err)
	}

	p.locations.put(cacheKey, location)
	return location, nil
}

// Observation fetches current conditions for a resolved location key.
func (p *AccuWeather) Observation(ctx context.Context, locationKey string, latitude, longitude float64, capture Capture) (domain.Observation, error) {
	payload, err := p.client.getJSON(ctx, call{
		provider:  mapper.ProviderAccuWeather,
		operation: "observation",
		endpoint:  "observation",
		url:       p.baseURL + "/currentconditions/v1/" + url.PathEscape(locationKey),
		params:    p.keyedParams(),
		capture:   capture,
	})
	if err != nil {
		return domain.Observation{}, err
	}

	result, err := p.mapResult("observation", payload, mapper.Context{Latitude: latitude, Longitude: longitude})
	if err != nil {
		return domain.Observation{}, err
	}
	return result.Observations[0], nil
}

// HourlyForecast fetches the 12-hour forecast in metric units.
func (p *AccuWeather) HourlyForecast(ctx context.Context, locationKey string, latitude, longitude float64, capture Capture) ([]domain.ForecastPeriod, error) {
	params := p.keyedParams()
	params.Set("metric", "true")

	payload, err := p.client.getJSON(ctx, call{
		provider:  mapper.ProviderAccuWeather,
		operation: "forecast_hourly",
		endpoint:  "forecast_hourly",
		url:       p.baseURL + "/forecasts/v1/hourly/12hour/" + url.PathEscape(locationKey),
		params:    params,
		capture:   capture,
	})
	if err != nil {
		return nil, err
	}

	result, err := p.mapResult("forecast_hourly", payload, mapper.Context{Latitude: latitude, Longitude: longitude})
	if err != nil {
		return nil, err
	}
	return result.Hourly, nil
}

// DailyForecast fetches the 5-day forecast in metric units.
func (p *AccuWeather) DailyForecast(ctx context.Context, locationKey string, latitude, longitude float64, capture Capture) ([]domain.ForecastPeriod, error) {
	params := p.keyedParams()
	params.Set("metric", "true")

	payload, err := p.client.getJSON(ctx, call{
		provider:  mapper.ProviderAccuWeather,
		operation: "forecast_daily",
		endpoint:  "forecast_daily",
		url:       p.baseURL + "/forecasts/v1/daily/5day/" + url.PathEscape(locationKey),
		params:    params,
		capture:   capture,
	})
	if err != nil {
		return nil, err
	}

	result, err := p.mapResult("forecast_daily", payload, mapper.Context{Latitude: latitude, Longitude: longitude})
	if err != nil {
		return nil, err
	}
	return result.Daily, nil
}

// MinuteForecast fetches minute-by-minute intervals. The payload carries no
// issue time, so intervals anchor on the client clock at call time.
func (p *AccuWeather) MinuteForecast(ctx context.Context, latitude, longitude float64, capture Capture) ([]domain.ForecastPeriod, error) {
	headers := map[string]string{}
	if p.apiKey != "" {
		headers["Authorization"] = "Bearer " + p.apiKey
	}

	issuedAt := p.client.clock.Now().UTC()
	payload, err := p.client.getJSON(ctx, call{
		provider:  mapper.ProviderAccuWeather,
		operation: "minute_forecast",
		endpoint:  "minute_forecast",
		url:       p.baseURL + "/forecasts/v1/minute",
		params:    url.Values{"q": {formatCoordinates(latitude, longitude)}},
		headers:   headers,
		capture:   capture,
	})
	if err != nil {
		return nil, err
	}

	result, err := p.mapResult("minute_forecast", payload, mapper.Context{
		Latitude:  latitude,
		Longitude: longitude,
		IssuedAt:  issuedAt,
	})
	if err != nil {
		return nil, err
	}
	return result.Hourly, nil
}
