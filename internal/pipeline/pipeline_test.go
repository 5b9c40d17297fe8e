package pipeline_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfeunekes/wxbench/internal/domain"
	"github.com/ericfeunekes/wxbench/internal/mapper"
	"github.com/ericfeunekes/wxbench/internal/observability"
	"github.com/ericfeunekes/wxbench/internal/pipeline"
	"github.com/ericfeunekes/wxbench/internal/provider"
	"github.com/ericfeunekes/wxbench/internal/storage/sqlite"
)

var runTime = time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)

// --- fakes ---

type fakeStore struct {
	raws    []sqlite.RawPayload
	batches map[int64][]domain.DataPoint
	nextID  int64
	rawErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{batches: make(map[int64][]domain.DataPoint)}
}

func (f *fakeStore) InsertRawPayload(_ context.Context, payload sqlite.RawPayload) (int64, error) {
	if f.rawErr != nil {
		return 0, f.rawErr
	}
	f.nextID++
	f.raws = append(f.raws, payload)
	return f.nextID, nil
}

func (f *fakeStore) InsertDataPoints(_ context.Context, rawID int64, points []domain.DataPoint) error {
	f.batches[rawID] = append(f.batches[rawID], points...)
	return nil
}

func (f *fakeStore) points() []domain.DataPoint {
	var all []domain.DataPoint
	for _, batch := range f.batches {
		all = append(all, batch...)
	}
	return all
}

type fakeArchive struct {
	appends map[string][]any
}

func (f *fakeArchive) Append(providerName string, records []any) (string, error) {
	if f.appends == nil {
		f.appends = make(map[string][]any)
	}
	f.appends[providerName] = append(f.appends[providerName], records...)
	return "archive.jsonl", nil
}

type fakePublisher struct {
	published []domain.DataPoint
}

func (f *fakePublisher) PublishBatch(_ context.Context, points []domain.DataPoint) error {
	f.published = append(f.published, points...)
	return nil
}

type fakeAmbient struct {
	obs     domain.Observation
	err     error
	capture bool
}

func (f *fakeAmbient) Observation(_ context.Context, capture provider.Capture) (domain.Observation, error) {
	if f.err != nil {
		return domain.Observation{}, f.err
	}
	if f.capture {
		capture(provider.CapturedPayload{
			Provider:    mapper.ProviderAmbientWeather,
			Endpoint:    "observation",
			RunAt:       runTime,
			PayloadText: `{}`,
		})
	}
	return f.obs, nil
}

type fakeGeoMet struct {
	obs     domain.Observation
	periods []domain.ForecastPeriod
}

func (f *fakeGeoMet) Observation(_ context.Context, _, _ float64, capture provider.Capture) (domain.Observation, error) {
	capture(provider.CapturedPayload{Provider: mapper.ProviderMSCGeoMet, Endpoint: "observation", RunAt: runTime})
	return f.obs, nil
}

func (f *fakeGeoMet) Forecast(_ context.Context, _, _ float64, capture provider.Capture) ([]domain.ForecastPeriod, error) {
	capture(provider.CapturedPayload{Provider: mapper.ProviderMSCGeoMet, Endpoint: "forecast", RunAt: runTime})
	return f.periods, nil
}

type fakePrognos struct {
	issued  time.Time
	leads   []int
	periods []domain.ForecastPeriod
}

func (f *fakePrognos) Forecast(_ context.Context, _, _ float64, _ time.Time, capture provider.Capture) ([]domain.ForecastPeriod, error) {
	for _, lead := range f.leads {
		capture(provider.CapturedPayload{
			Provider: mapper.ProviderMSCRDPSPrognos,
			Endpoint: provider.PrognosEndpoint(f.issued, lead, "AirTemp"),
			RunAt:    runTime,
		})
	}
	return f.periods, nil
}

type fakeAccuWeather struct {
	key     string
	gotKeys []string
	obs     domain.Observation
	hourly  []domain.ForecastPeriod
	daily   []domain.ForecastPeriod
}

func (f *fakeAccuWeather) sendPayload(endpoint string, capture provider.Capture) {
	capture(provider.CapturedPayload{Provider: mapper.ProviderAccuWeather, Endpoint: endpoint, RunAt: runTime})
}

func (f *fakeAccuWeather) Location(_ context.Context, _, _ float64, capture provider.Capture) (mapper.AccuWeatherLocation, error) {
	f.sendPayload("location_search", capture)
	return mapper.AccuWeatherLocation{Key: f.key}, nil
}

func (f *fakeAccuWeather) Observation(_ context.Context, locationKey string, _, _ float64, capture provider.Capture) (domain.Observation, error) {
	f.gotKeys = append(f.gotKeys, locationKey)
	f.sendPayload("observation", capture)
	return f.obs, nil
}

func (f *fakeAccuWeather) HourlyForecast(_ context.Context, locationKey string, _, _ float64, capture provider.Capture) ([]domain.ForecastPeriod, error) {
	f.gotKeys = append(f.gotKeys, locationKey)
	f.sendPayload("forecast_hourly", capture)
	return f.hourly, nil
}

func (f *fakeAccuWeather) DailyForecast(_ context.Context, locationKey string, _, _ float64, capture provider.Capture) ([]domain.ForecastPeriod, error) {
	f.gotKeys = append(f.gotKeys, locationKey)
	f.sendPayload("forecast_daily", capture)
	return f.daily, nil
}

// --- helpers ---

func newCollector(sources pipeline.Sources, store pipeline.PointStore, archive pipeline.Archiver, publisher pipeline.Publisher) *pipeline.Collector {
	return pipeline.New(sources, store, archive, slog.Default(), observability.NewMetricsForTesting(), pipeline.Options{
		Latitude:  45.4,
		Longitude: -75.7,
		Timezone:  "UTC",
		Publisher: publisher,
		Clock:     clockwork.NewFakeClockAt(runTime),
	})
}

func testObservation(providerName string) domain.Observation {
	return domain.Observation{
		Provider:         providerName,
		Location:         domain.Location{Latitude: 45.4, Longitude: -75.7},
		ObservedAt:       runTime.Add(-5 * time.Minute),
		TemperatureC:     domain.Float(12.5),
		RelativeHumidity: domain.Float(61),
	}
}

func testPeriod(providerName string, start time.Time, temp float64) domain.ForecastPeriod {
	return domain.ForecastPeriod{
		Provider:     providerName,
		Location:     domain.Location{Latitude: 45.4, Longitude: -75.7},
		IssuedAt:     runTime,
		StartTime:    start,
		EndTime:      start.Add(time.Hour),
		TemperatureC: domain.Float(temp),
	}
}

func pointsOfProduct(points []domain.DataPoint, product string) []domain.DataPoint {
	var matched []domain.DataPoint
	for _, p := range points {
		if p.ProductKind == product {
			matched = append(matched, p)
		}
	}
	return matched
}

// --- tests ---

func TestCollector_Collect_AmbientObservation(t *testing.T) {
	store := newFakeStore()
	archive := &fakeArchive{}
	publisher := &fakePublisher{}
	ambient := &fakeAmbient{obs: testObservation(mapper.ProviderAmbientWeather), capture: true}

	c := newCollector(pipeline.Sources{Ambient: ambient}, store, archive, publisher)

	require.Error(t, c.CheckReadiness(context.Background()))

	result := c.Collect(context.Background())

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, runTime, result.RunAt)
	assert.Equal(t, 1, result.RawPayloads)
	assert.Empty(t, result.Errors)

	require.Len(t, store.raws, 1)
	assert.Equal(t, mapper.ProviderAmbientWeather, store.raws[0].Provider)
	assert.Equal(t, "observation", store.raws[0].Endpoint)

	points := store.batches[1]
	require.NotEmpty(t, points)
	assert.Equal(t, len(points), result.DataPoints)
	for _, p := range points {
		assert.Equal(t, mapper.ProviderAmbientWeather, p.Provider)
		assert.Equal(t, domain.ProductObservation, p.ProductKind)
		assert.Equal(t, runTime, p.RunAt)
	}

	assert.Len(t, archive.appends[mapper.ProviderAmbientWeather], 1)
	assert.Len(t, publisher.published, len(points))

	require.NoError(t, c.CheckReadiness(context.Background()))
}

func TestCollector_Collect_SkipsUnconfiguredProviders(t *testing.T) {
	store := newFakeStore()
	c := newCollector(pipeline.Sources{}, store, nil, nil)

	result := c.Collect(context.Background())

	assert.Zero(t, result.RawPayloads)
	assert.Zero(t, result.DataPoints)
	assert.Empty(t, result.Errors)
	assert.Empty(t, store.raws)
}

func TestCollector_Collect_IsolatesProviderFailures(t *testing.T) {
	store := newFakeStore()
	ambient := &fakeAmbient{err: errors.New("station offline")}
	geoMet := &fakeGeoMet{obs: testObservation(mapper.ProviderMSCGeoMet)}

	c := newCollector(pipeline.Sources{Ambient: ambient, GeoMet: geoMet}, store, nil, nil)

	result := c.Collect(context.Background())

	require.Len(t, result.Errors, 1)
	assert.Equal(t, "ambient_weather: station offline", result.Errors[0])

	obsPoints := pointsOfProduct(store.points(), domain.ProductObservation)
	require.NotEmpty(t, obsPoints)
	for _, p := range obsPoints {
		assert.Equal(t, mapper.ProviderMSCGeoMet, p.Provider)
	}
}

func TestCollector_Collect_NoCaptureSkipsLoad(t *testing.T) {
	store := newFakeStore()
	ambient := &fakeAmbient{obs: testObservation(mapper.ProviderAmbientWeather), capture: false}

	c := newCollector(pipeline.Sources{Ambient: ambient}, store, nil, nil)

	result := c.Collect(context.Background())

	assert.Empty(t, result.Errors)
	assert.Zero(t, result.RawPayloads)
	assert.Zero(t, result.DataPoints)
}

func TestCollector_Collect_GeoMetDerivesDaily(t *testing.T) {
	store := newFakeStore()
	geoMet := &fakeGeoMet{
		obs: testObservation(mapper.ProviderMSCGeoMet),
		periods: []domain.ForecastPeriod{
			testPeriod(mapper.ProviderMSCGeoMet, runTime.Add(1*time.Hour), 10),
			testPeriod(mapper.ProviderMSCGeoMet, runTime.Add(2*time.Hour), 20),
		},
	}

	c := newCollector(pipeline.Sources{GeoMet: geoMet}, store, nil, nil)

	result := c.Collect(context.Background())
	require.Empty(t, result.Errors)
	assert.Equal(t, 2, result.RawPayloads)

	// Observation anchors to raw 1, the forecast and its derived daily
	// product both anchor to raw 2.
	require.NotEmpty(t, store.batches[1])
	forecastBatch := store.batches[2]
	require.NotEmpty(t, forecastBatch)

	hourly := pointsOfProduct(forecastBatch, domain.ProductForecastHourly)
	assert.NotEmpty(t, hourly)
	for _, p := range hourly {
		assert.Nil(t, p.QualityFlag)
	}

	daily := pointsOfProduct(forecastBatch, domain.ProductForecastDaily)
	require.NotEmpty(t, daily)
	for _, p := range daily {
		require.NotNil(t, p.QualityFlag)
		assert.Equal(t, domain.QualityDerivedFromPeriods, *p.QualityFlag)
		require.NotNil(t, p.LeadDayIndex)
		assert.Equal(t, 0, *p.LeadDayIndex)
	}

	// Both source periods fall on one local day, so the derived high and
	// low bracket their temperatures.
	var high, low *float64
	for _, p := range daily {
		switch p.MetricType {
		case "temperature_high":
			high = p.ValueNum
		case "temperature_low":
			low = p.ValueNum
		}
	}
	require.NotNil(t, high)
	require.NotNil(t, low)
	assert.Equal(t, 20.0, *high)
	assert.Equal(t, 10.0, *low)
}

func TestCollector_Collect_PrognosAnchorsPerLead(t *testing.T) {
	issued := time.Date(2023, 6, 1, 6, 0, 0, 0, time.UTC)
	periods := []domain.ForecastPeriod{
		testPeriod(mapper.ProviderMSCRDPSPrognos, issued, 5),
		testPeriod(mapper.ProviderMSCRDPSPrognos, issued.Add(time.Hour), 7),
		// No AirTemp payload was captured for lead 2, so this period's
		// hourly points are dropped.
		testPeriod(mapper.ProviderMSCRDPSPrognos, issued.Add(2*time.Hour), 9),
	}
	for i := range periods {
		periods[i].IssuedAt = issued
	}
	prognos := &fakePrognos{issued: issued, leads: []int{0, 1}, periods: periods}

	store := newFakeStore()
	c := newCollector(pipeline.Sources{Prognos: prognos}, store, nil, nil)

	result := c.Collect(context.Background())
	require.Empty(t, result.Errors)
	assert.Equal(t, 2, result.RawPayloads)

	lead0 := pointsOfProduct(store.batches[1], domain.ProductForecastHourly)
	require.NotEmpty(t, lead0)
	for _, p := range lead0 {
		assert.Equal(t, issued, *p.ValidStart)
	}

	lead1 := pointsOfProduct(store.batches[2], domain.ProductForecastHourly)
	require.NotEmpty(t, lead1)
	for _, p := range lead1 {
		assert.Equal(t, issued.Add(time.Hour), *p.ValidStart)
	}

	// The dropped lead contributes no hourly points anywhere.
	for _, p := range pointsOfProduct(store.points(), domain.ProductForecastHourly) {
		assert.NotEqual(t, issued.Add(2*time.Hour), *p.ValidStart)
	}

	// The derived daily product anchors to the lead-0 AirTemp payload.
	daily := pointsOfProduct(store.batches[1], domain.ProductForecastDaily)
	require.NotEmpty(t, daily)
	for _, p := range daily {
		require.NotNil(t, p.QualityFlag)
		assert.Equal(t, domain.QualityDerivedFromHourly, *p.QualityFlag)
	}
	assert.Empty(t, pointsOfProduct(store.batches[2], domain.ProductForecastDaily))
}

func TestCollector_Collect_AccuWeatherThreadsLocationKey(t *testing.T) {
	store := newFakeStore()
	accu := &fakeAccuWeather{
		key: "12345",
		obs: testObservation(mapper.ProviderAccuWeather),
		hourly: []domain.ForecastPeriod{
			testPeriod(mapper.ProviderAccuWeather, runTime.Add(time.Hour), 15),
		},
		daily: []domain.ForecastPeriod{
			testPeriod(mapper.ProviderAccuWeather, runTime.Add(24*time.Hour), 18),
		},
	}

	c := newCollector(pipeline.Sources{AccuWeather: accu}, store, nil, nil)

	result := c.Collect(context.Background())
	require.Empty(t, result.Errors)

	assert.Equal(t, []string{"12345", "12345", "12345"}, accu.gotKeys)
	// Location search, observation, hourly, daily.
	assert.Equal(t, 4, result.RawPayloads)

	daily := pointsOfProduct(store.points(), domain.ProductForecastDaily)
	require.NotEmpty(t, daily)
	for _, p := range daily {
		require.NotNil(t, p.LeadDayIndex)
		assert.Equal(t, 0, *p.LeadDayIndex)
		assert.Nil(t, p.QualityFlag)
	}
}

func TestCollector_Collect_RawStorageFailureIsProviderError(t *testing.T) {
	store := newFakeStore()
	store.rawErr = errors.New("disk full")
	ambient := &fakeAmbient{obs: testObservation(mapper.ProviderAmbientWeather), capture: true}

	c := newCollector(pipeline.Sources{Ambient: ambient}, store, nil, nil)

	result := c.Collect(context.Background())
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "ambient_weather: insert raw payload")
	assert.Zero(t, result.DataPoints)
}

func TestCollector_Run_OnceWithoutInterval(t *testing.T) {
	store := newFakeStore()
	ambient := &fakeAmbient{obs: testObservation(mapper.ProviderAmbientWeather), capture: true}

	c := newCollector(pipeline.Sources{Ambient: ambient}, store, nil, nil)

	require.NoError(t, c.Run(context.Background()))
	assert.Len(t, store.raws, 1)
	require.NoError(t, c.CheckReadiness(context.Background()))
}

func TestCollector_LastRun_TracksLatestResult(t *testing.T) {
	store := newFakeStore()
	ambient := &fakeAmbient{obs: testObservation(mapper.ProviderAmbientWeather), capture: true}

	c := newCollector(pipeline.Sources{Ambient: ambient}, store, nil, nil)

	_, ok := c.LastRun()
	assert.False(t, ok)

	result := c.Collect(context.Background())

	last, ok := c.LastRun()
	require.True(t, ok)
	assert.Equal(t, result.RunID, last.RunID)
	assert.Equal(t, result.RunAt, last.RunAt)
	assert.Equal(t, result.RawPayloads, last.RawPayloads)
	assert.Equal(t, result.DataPoints, last.DataPoints)

	ambient.err = errors.New("station offline")
	c.Collect(context.Background())

	last, ok = c.LastRun()
	require.True(t, ok)
	assert.Equal(t, []string{"ambient_weather: station offline"}, last.Errors)
}
