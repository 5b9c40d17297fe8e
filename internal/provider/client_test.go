package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(retries int) *Client {
	return NewClient(&http.Client{}, retries, nil, nil)
}

func TestGetJSON_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/weather", r.URL.Path)
		assert.Equal(t, "45.4", r.URL.Query().Get("lat"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	var captured CapturedPayload
	payload, err := testClient(0).getJSON(context.Background(), call{
		provider:  "openweather",
		operation: "observation",
		endpoint:  "observation",
		url:       server.URL + "/weather",
		params:    url.Values{"lat": {"45.4"}, "appid": {"secret"}},
		capture:   func(c CapturedPayload) { captured = c },
	})
	require.NoError(t, err)

	obj, ok := payload.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, obj["ok"])

	assert.Equal(t, "openweather", captured.Provider)
	assert.Equal(t, "observation", captured.Endpoint)
	assert.Equal(t, server.URL+"/weather", captured.RequestURL)
	assert.Equal(t, "45.4", captured.RequestParams["lat"])
	assert.Equal(t, "REDACTED", captured.RequestParams["appid"])
	assert.Equal(t, http.StatusOK, captured.ResponseStatus)
	assert.Equal(t, `{"ok": true}`, captured.PayloadText)
}

func TestGetJSON_RedactsAuthorizationHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	var captured CapturedPayload
	_, err := testClient(0).getJSON(context.Background(), call{
		provider:  "accuweather",
		operation: "minute_forecast",
		endpoint:  "minute_forecast",
		url:       server.URL,
		headers:   map[string]string{"Authorization": "Bearer secret"},
		capture:   func(c CapturedPayload) { captured = c },
	})
	require.NoError(t, err)
	assert.Equal(t, "REDACTED", captured.RequestHeaders["Authorization"])
}

func TestGetJSON_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	_, err := testClient(2).getJSON(context.Background(), call{
		provider:  "openweather",
		operation: "observation",
		endpoint:  "observation",
		url:       server.URL,
	})
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGetJSON_TransientAfterRetriesExhausted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := testClient(1).getJSON(context.Background(), call{
		provider:  "openweather",
		operation: "observation",
		endpoint:  "observation",
		url:       server.URL,
	})
	require.ErrorIs(t, err, ErrTransient)
}

func TestGetJSON_AuthErrorsDoNotRetry(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := testClient(2).getJSON(context.Background(), call{
		provider:  "tomorrow_io",
		operation: "observation",
		endpoint:  "observation",
		url:       server.URL,
	})
	require.ErrorIs(t, err, ErrAuth)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGetJSON_ClientErrorsDoNotRetry(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := testClient(2).getJSON(context.Background(), call{
		provider:  "msc_rdps_prognos",
		operation: "forecast_check",
		endpoint:  "rdps_prognos_20230601T12Z_lead000_airtemp",
		url:       server.URL,
	})
	require.ErrorIs(t, err, ErrRequest)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGetJSON_RateLimitedAfterRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := testClient(1).getJSON(context.Background(), call{
		provider:  "openweather",
		operation: "observation",
		endpoint:  "observation",
		url:       server.URL,
	})
	require.ErrorIs(t, err, ErrRateLimited)
}

func TestGetJSON_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	_, err := testClient(0).getJSON(context.Background(), call{
		provider:  "openweather",
		operation: "observation",
		endpoint:  "observation",
		url:       server.URL,
	})
	require.ErrorIs(t, err, ErrPayload)
}
