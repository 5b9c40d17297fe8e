package provider

import (
	"context"
	"fmt"
	"net/url"

	"github.com/ericfeunekes/wxbench/internal/domain"
	"github.com/ericfeunekes/wxbench/internal/mapper"
)

const ambientWeatherBaseURL = "https://api.ambientweather.net/v1"

// AmbientWeather fetches the device-list observation from the Ambient
// Weather network.
type AmbientWeather struct {
	client         *Client
	apiKey         string
	applicationKey string
	deviceMAC      string
	baseURL        string
}

// NewAmbientWeather builds the adapter. deviceMAC selects a station when
// the account has several; empty picks the first device by MAC order.
func NewAmbientWeather(client *Client, apiKey, applicationKey, deviceMAC string) *AmbientWeather {
	return &AmbientWeather{
		client:         client,
		apiKey:         apiKey,
		applicationKey: applicationKey,
		deviceMAC:      deviceMAC,
		baseURL:        ambientWeatherBaseURL,
	}
}

// Observation fetches the latest reading from the selected device.
func (p *AmbientWeather) Observation(ctx context.Context, capture Capture) (domain.Observation, error) {
	payload, err := p.client.getJSON(ctx, call{
		provider:  mapper.ProviderAmbientWeather,
		operation: "observation",
		endpoint:  "observation",
		url:       p.baseURL + "/devices",
		params: url.Values{
			"applicationKey": {p.applicationKey},
			"apiKey":         {p.apiKey},
		},
		capture: capture,
	})
	if err != nil {
		return domain.Observation{}, err
	}

	result, err := mapper.AmbientWeatherMapper{}.Map("observation", payload, mapper.Context{DeviceMAC: p.deviceMAC})
	if err != nil {
		return domain.Observation{}, fmt.Errorf("%s observation: %w: %v", mapper.ProviderAmbientWeather, ErrPayload, err)
	}
	return result.Observations[0], nil
}
