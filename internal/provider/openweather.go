package provider

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/ericfeunekes/wxbench/internal/domain"
	"github.com/ericfeunekes/wxbench/internal/mapper"
)

const (
	openWeatherBaseURL        = "https://api.openweathermap.org/data/2.5"
	openWeatherOneCallBaseURL = "https://api.openweathermap.org/data/3.0"
)

// OpenWeather fetches current conditions and forecasts from the
// OpenWeather APIs.
type OpenWeather struct {
	client         *Client
	apiKey         string
	baseURL        string
	oneCallBaseURL string
}

// NewOpenWeather builds the adapter. Base URLs are overridable for tests.
func NewOpenWeather(client *Client, apiKey string) *OpenWeather {
	return &OpenWeather{
		client:         client,
		apiKey:         apiKey,
		baseURL:        openWeatherBaseURL,
		oneCallBaseURL: openWeatherOneCallBaseURL,
	}
}

func (p *OpenWeather) commonParams(latitude, longitude float64) url.Values {
	params := url.Values{
		"lat": {strconv.FormatFloat(latitude, 'f', -1, 64)},
		"lon": {strconv.FormatFloat(longitude, 'f', -1, 64)},
	}
	if p.apiKey != "" {
		params.Set("appid", p.apiKey)
	}
	return params
}

func (p *OpenWeather) oneCallParams(latitude, longitude float64, exclude string) url.Values {
	params := p.commonParams(latitude, longitude)
	params.Set("units", "metric")
	params.Set("exclude", exclude)
	return params
}

func (p *OpenWeather) mapResult(endpoint string, payload any) (mapper.Result, error) {
	result, err := mapper.OpenWeatherMapper{}.Map(endpoint, payload, mapper.Context{})
	if err != nil {
		return mapper.Result{}, fmt.Errorf("%s %s: %w: %v", mapper.ProviderOpenWeather, endpoint, ErrPayload, err)
	}
	return result, nil
}

// Observation fetches the latest current-conditions reading.
func (p *OpenWeather) Observation(ctx context.Context, latitude, longitude float64, capture Capture) (domain.Observation, error) {
	payload, err := p.client.getJSON(ctx, call{
		provider:  mapper.ProviderOpenWeather,
		operation: "observation",
		endpoint:  "observation",
		url:       p.baseURL + "/weather",
		params:    p.commonParams(latitude, longitude),
		capture:   capture,
	})
	if err != nil {
		return domain.Observation{}, err
	}

	result, err := p.mapResult("observation", payload)
	if err != nil {
		return domain.Observation{}, err
	}
	return result.Observations[0], nil
}

// Forecast fetches the 5-day/3-hour forecast.
func (p *OpenWeather) Forecast(ctx context.Context, latitude, longitude float64, capture Capture) ([]domain.ForecastPeriod, error) {
	payload, err := p.client.getJSON(ctx, call{
		provider:  mapper.ProviderOpenWeather,
		operation: "forecast",
		endpoint:  "forecast",
		url:       p.baseURL + "/forecast",
		params:    p.commonParams(latitude, longitude),
		capture:   capture,
	})
	if err != nil {
		return nil, err
	}

	result, err := p.mapResult("forecast", payload)
	if err != nil {
		return nil, err
	}
	return result.Hourly, nil
}

// OneCallHourly fetches the One Call hourly forecast in metric units.
func (p *OpenWeather) OneCallHourly(ctx context.Context, latitude, longitude float64, capture Capture) ([]domain.ForecastPeriod, error) {
	payload, err := p.client.getJSON(ctx, call{
		provider:  mapper.ProviderOpenWeather,
		operation: "onecall_hourly",
		endpoint:  "onecall_hourly",
		url:       p.oneCallBaseURL + "/onecall",
		params:    p.oneCallParams(latitude, longitude, "minutely,daily,alerts,current"),
		capture:   capture,
	})
	if err != nil {
		return nil, err
	}

	result, err := p.mapResult("onecall_hourly", payload)
	if err != nil {
		return nil, err
	}
	return result.Hourly, nil
}

// OneCallDaily fetches the One Call daily forecast in metric units.
func (p *OpenWeather) OneCallDaily(ctx context.Context, latitude, longitude float64, capture Capture) ([]domain.ForecastPeriod, error) {
	payload, err := p.client.getJSON(ctx, call{
		provider:  mapper.ProviderOpenWeather,
		operation: "onecall_daily",
		endpoint:  "onecall_daily",
		url:       p.oneCallBaseURL + "/onecall",
		params:    p.oneCallParams(latitude, longitude, "minutely,hourly,alerts,current"),
		capture:   capture,
	})
	if err != nil {
		return nil, err
	}

	result, err := p.mapResult("onecall_daily", payload)
	if err != nil {
		return nil, err
	}
	return result.Daily, nil
}
