package provider

import (
	"context"
	"fmt"
	"net/url"

	"github.com/ericfeunekes/wxbench/internal/domain"
	"github.com/ericfeunekes/wxbench/internal/mapper"
)

const tomorrowIOBaseURL = "https://api.tomorrow.io/v4/weather"

// TomorrowIO fetches realtime and timeline forecasts from Tomorrow.io.
type TomorrowIO struct {
	client  *Client
	apiKey  string
	baseURL string
}

func NewTomorrowIO(client *Client, apiKey string) *TomorrowIO {
	return &TomorrowIO{client: client, apiKey: apiKey, baseURL: tomorrowIOBaseURL}
}

func (p *TomorrowIO) baseParams(latitude, longitude float64) url.Values {
	params := url.Values{
		"location": {fmt.Sprintf("%v,%v", latitude, longitude)},
		"units":    {"metric"},
	}
	if p.apiKey != "" {
		params.Set("apikey", p.apiKey)
	}
	return params
}

func (p *TomorrowIO) fetch(ctx context.Context, operation, endpoint, path, timesteps string, latitude, longitude float64, capture Capture) (mapper.Result, error) {
	params := p.baseParams(latitude, longitude)
	if timesteps != "" {
		params.Set("timesteps", timesteps)
	}

	payload, err := p.client.getJSON(ctx, call{
		provider:  mapper.ProviderTomorrowIO,
		operation: operation,
		endpoint:  endpoint,
		url:       p.baseURL + path,
		params:    params,
		capture:   capture,
	})
	if err != nil {
		return mapper.Result{}, err
	}

	result, err := mapper.TomorrowIOMapper{}.Map(endpoint, payload, mapper.Context{})
	if err != nil {
		return mapper.Result{}, fmt.Errorf("%s %s: %w: %v", mapper.ProviderTomorrowIO, operation, ErrPayload, err)
	}
	return result, nil
}

// Observation fetches a realtime reading.
func (p *TomorrowIO) Observation(ctx context.Context, latitude, longitude float64, capture Capture) (domain.Observation, error) {
	result, err := p.fetch(ctx, "observation", "observation", "/realtime", "", latitude, longitude, capture)
	if err != nil {
		return domain.Observation{}, err
	}
	return result.Observations[0], nil
}

// Forecast fetches the hourly timeline forecast.
func (p *TomorrowIO) Forecast(ctx context.Context, latitude, longitude float64, capture Capture) ([]domain.ForecastPeriod, error) {
	result, err := p.fetch(ctx, "forecast", "forecast", "/forecast", "1h", latitude, longitude, capture)
	if err != nil {
		return nil, err
	}
	return result.Hourly, nil
}

// DailyForecast fetches the daily timeline forecast.
func (p *TomorrowIO) DailyForecast(ctx context.Context, latitude, longitude float64, capture Capture) ([]domain.ForecastPeriod, error) {
	result, err := p.fetch(ctx, "forecast_daily", "forecast_daily", "/forecast", "1d", latitude, longitude, capture)
	if err != nil {
		return nil, err
	}
	return result.Daily, nil
}
