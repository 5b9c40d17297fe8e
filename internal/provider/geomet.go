package provider

import (
	"context"
	"fmt"
	"net/url"

	"github.com/ericfeunekes/wxbench/internal/domain"
	"github.com/ericfeunekes/wxbench/internal/mapper"
)

const (
	mscGeoMetBaseURL    = "https://api.weather.gc.ca/collections/citypageweather-realtime/items"
	mscGeoMetBBoxRadius = 0.5
)

// MSCGeoMet fetches city-page weather features from the Environment Canada
// GeoMet OGC API. No API key is required.
type MSCGeoMet struct {
	client  *Client
	baseURL string
}

func NewMSCGeoMet(client *Client) *MSCGeoMet {
	return &MSCGeoMet{client: client, baseURL: mscGeoMetBaseURL}
}

func geoMetParams(latitude, longitude float64) url.Values {
	return url.Values{
		"bbox": {fmt.Sprintf("%v,%v,%v,%v",
			longitude-mscGeoMetBBoxRadius,
			latitude-mscGeoMetBBoxRadius,
			longitude+mscGeoMetBBoxRadius,
			latitude+mscGeoMetBBoxRadius,
		)},
		"limit": {"1"},
		"f":     {"json"},
	}
}

func (p *MSCGeoMet) fetch(ctx context.Context, endpoint string, latitude, longitude float64, capture Capture) (mapper.Result, error) {
	payload, err := p.client.getJSON(ctx, call{
		provider:  mapper.ProviderMSCGeoMet,
		operation: endpoint,
		endpoint:  endpoint,
		url:       p.baseURL,
		params:    geoMetParams(latitude, longitude),
		capture:   capture,
	})
	if err != nil {
		return mapper.Result{}, err
	}

	result, err := mapper.MSCGeoMetMapper{}.Map(endpoint, payload, mapper.Context{})
	if err != nil {
		return mapper.Result{}, fmt.Errorf("%s %s: %w: %v", mapper.ProviderMSCGeoMet, endpoint, ErrPayload, err)
	}
	return result, nil
}

// Observation fetches the nearest feature's current conditions.
func (p *MSCGeoMet) Observation(ctx context.Context, latitude, longitude float64, capture Capture) (domain.Observation, error) {
	result, err := p.fetch(ctx, "observation", latitude, longitude, capture)
	if err != nil {
		return domain.Observation{}, err
	}
	return result.Observations[0], nil
}

// Forecast fetches the nearest feature's forecast periods.
func (p *MSCGeoMet) Forecast(ctx context.Context, latitude, longitude float64, capture Capture) ([]domain.ForecastPeriod, error) {
	result, err := p.fetch(ctx, "forecast", latitude, longitude, capture)
	if err != nil {
		return nil, err
	}
	return result.Hourly, nil
}
