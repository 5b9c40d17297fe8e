// Package pipeline orchestrates one collection run: fetch every configured
// provider, archive the normalized records, and load exploded data points
// into the configured sinks.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/ericfeunekes/wxbench/internal/domain"
	"github.com/ericfeunekes/wxbench/internal/mapper"
	"github.com/ericfeunekes/wxbench/internal/observability"
	"github.com/ericfeunekes/wxbench/internal/provider"
	"github.com/ericfeunekes/wxbench/internal/storage/sqlite"
)

// PointStore persists raw payloads and their exploded data points.
type PointStore interface {
	InsertRawPayload(ctx context.Context, payload sqlite.RawPayload) (int64, error)
	InsertDataPoints(ctx context.Context, rawID int64, points []domain.DataPoint) error
}

// Archiver appends normalized records to the day-partitioned archive.
// A nil Archiver disables archiving.
type Archiver interface {
	Append(provider string, records []any) (string, error)
}

// Publisher forwards loaded data points to a downstream sink. A nil
// Publisher disables publishing.
type Publisher interface {
	PublishBatch(ctx context.Context, points []domain.DataPoint) error
}

// OpenWeatherSource is the subset of the OpenWeather adapter the collector
// calls.
type OpenWeatherSource interface {
	Observation(ctx context.Context, latitude, longitude float64, capture provider.Capture) (domain.Observation, error)
	OneCallHourly(ctx context.Context, latitude, longitude float64, capture provider.Capture) ([]domain.ForecastPeriod, error)
	OneCallDaily(ctx context.Context, latitude, longitude float64, capture provider.Capture) ([]domain.ForecastPeriod, error)
}

// TomorrowIOSource is the subset of the Tomorrow.io adapter the collector
// calls.
type TomorrowIOSource interface {
	Observation(ctx context.Context, latitude, longitude float64, capture provider.Capture) (domain.Observation, error)
	Forecast(ctx context.Context, latitude, longitude float64, capture provider.Capture) ([]domain.ForecastPeriod, error)
	DailyForecast(ctx context.Context, latitude, longitude float64, capture provider.Capture) ([]domain.ForecastPeriod, error)
}

// AccuWeatherSource is the subset of the AccuWeather adapter the collector
// calls. The location lookup runs first and its key feeds the other calls.
type AccuWeatherSource interface {
	Location(ctx context.Context, latitude, longitude float64, capture provider.Capture) (mapper.AccuWeatherLocation, error)
	Observation(ctx context.Context, locationKey string, latitude, longitude float64, capture provider.Capture) (domain.Observation, error)
	HourlyForecast(ctx context.Context, locationKey string, latitude, longitude float64, capture provider.Capture) ([]domain.ForecastPeriod, error)
	DailyForecast(ctx context.Context, locationKey string, latitude, longitude float64, capture provider.Capture) ([]domain.ForecastPeriod, error)
}

// AmbientSource is the Ambient Weather station adapter.
type AmbientSource interface {
	Observation(ctx context.Context, capture provider.Capture) (domain.Observation, error)
}

// GeoMetSource is the MSC GeoMet adapter.
type GeoMetSource interface {
	Observation(ctx context.Context, latitude, longitude float64, capture provider.Capture) (domain.Observation, error)
	Forecast(ctx context.Context, latitude, longitude float64, capture provider.Capture) ([]domain.ForecastPeriod, error)
}

// PrognosSource is the MSC RDPS PROGNOS adapter.
type PrognosSource interface {
	Forecast(ctx context.Context, latitude, longitude float64, now time.Time, capture provider.Capture) ([]domain.ForecastPeriod, error)
}

// Sources holds the provider adapters for one collector. A nil field skips
// that provider, which is how missing API keys disable collection.
type Sources struct {
	Ambient     AmbientSource
	GeoMet      GeoMetSource
	Prognos     PrognosSource
	OpenWeather OpenWeatherSource
	TomorrowIO  TomorrowIOSource
	AccuWeather AccuWeatherSource
}

// Options carries the location and scheduling settings for a Collector.
type Options struct {
	Latitude  float64
	Longitude float64
	Timezone  string

	// RunInterval repeats collection on this period. Zero runs once.
	RunInterval time.Duration

	// Publisher is optional; nil disables downstream publishing.
	Publisher Publisher

	// Clock defaults to the real clock when nil.
	Clock clockwork.Clock
}

// RunResult summarizes one collection run.
type RunResult struct {
	RunID       string
	RunAt       time.Time
	RawPayloads int
	DataPoints  int
	Errors      []string
}

// Collector fetches every configured provider and loads the results.
type Collector struct {
	sources   Sources
	store     PointStore
	archive   Archiver
	publisher Publisher
	logger    *slog.Logger
	metrics   *observability.Metrics
	clock     clockwork.Clock

	latitude  float64
	longitude float64
	timezone  string
	interval  time.Duration

	ready   atomic.Bool
	lastRun atomic.Pointer[RunResult]
}

// New creates a Collector over the given sources and sinks.
func New(sources Sources, store PointStore, archive Archiver, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Collector {
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Collector{
		sources:   sources,
		store:     store,
		archive:   archive,
		publisher: opts.Publisher,
		logger:    logger,
		metrics:   metrics,
		clock:     clock,
		latitude:  opts.Latitude,
		longitude: opts.Longitude,
		timezone:  opts.Timezone,
		interval:  opts.RunInterval,
	}
}

// CheckReadiness returns nil once the collector has completed at least one
// run, or an error describing why the service is not yet ready.
func (c *Collector) CheckReadiness(_ context.Context) error {
	if !c.ready.Load() {
		return errors.New("collector has not completed a run yet")
	}
	return nil
}

// Run executes a collection immediately, then repeats on the configured
// interval until the context is cancelled. A zero interval runs once.
func (c *Collector) Run(ctx context.Context) error {
	for {
		result := c.Collect(ctx)
		c.logger.Info("collection run finished",
			"run_id", result.RunID,
			"raw_payloads", result.RawPayloads,
			"data_points", result.DataPoints,
			"errors", len(result.Errors),
		)

		if c.interval <= 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			c.logger.Info("collector stopping", "reason", ctx.Err())
			return nil
		case <-c.clock.After(c.interval):
		}
	}
}

// Collect runs one fetch-map-load pass over every configured provider.
// Provider failures are isolated: each failing provider contributes one
// entry to RunResult.Errors and the rest of the run continues.
func (c *Collector) Collect(ctx context.Context) RunResult {
	runAt := c.clock.Now().UTC()
	run := &runState{result: RunResult{RunID: uuid.NewString(), RunAt: runAt}}

	c.metrics.CollectorRunning.Set(1)
	defer c.metrics.CollectorRunning.Set(0)
	start := c.clock.Now()

	c.collectProvider(ctx, run, mapper.ProviderAmbientWeather, c.runAmbient)
	c.collectProvider(ctx, run, mapper.ProviderMSCGeoMet, c.runGeoMet)
	c.collectProvider(ctx, run, mapper.ProviderMSCRDPSPrognos, c.runPrognos)
	c.collectProvider(ctx, run, mapper.ProviderOpenWeather, c.runOpenWeather)
	c.collectProvider(ctx, run, mapper.ProviderTomorrowIO, c.runTomorrowIO)
	c.collectProvider(ctx, run, mapper.ProviderAccuWeather, c.runAccuWeather)

	c.metrics.RunDuration.Observe(c.clock.Since(start).Seconds())
	c.metrics.LastRunPoints.Set(float64(run.result.DataPoints))

	snapshot := run.result
	c.lastRun.Store(&snapshot)
	c.ready.Store(true)

	return run.result
}

// LastRun returns the summary of the most recent completed run. The second
// return is false until the first run finishes.
func (c *Collector) LastRun() (RunResult, bool) {
	last := c.lastRun.Load()
	if last == nil {
		return RunResult{}, false
	}
	return *last, true
}

type runState struct {
	result RunResult
}

type providerRun func(ctx context.Context, run *runState) error

// collectProvider times one provider block and records its failure, if any.
// errSkipped means the provider is not configured and is not a failure.
func (c *Collector) collectProvider(ctx context.Context, run *runState, name string, fn providerRun) {
	start := c.clock.Now()
	err := fn(ctx, run)
	if errors.Is(err, errSkipped) {
		return
	}
	c.metrics.ProviderDuration.WithLabelValues(name).Observe(c.clock.Since(start).Seconds())
	if err == nil {
		return
	}

	run.result.Errors = append(run.result.Errors, fmt.Sprintf("%s: %v", name, err))
	c.logger.Warn("provider collection failed", "provider", name, "error", err)
	if errors.Is(err, provider.ErrPayload) {
		c.metrics.MappingErrors.WithLabelValues(name).Inc()
	} else {
		c.metrics.FetchErrors.WithLabelValues(name).Inc()
	}
}

var errSkipped = errors.New("provider not configured")

func (c *Collector) runAmbient(ctx context.Context, run *runState) error {
	if c.sources.Ambient == nil {
		return errSkipped
	}
	rec := c.recorder(ctx, run)
	obs, err := rec.observed(c.sources.Ambient.Observation(ctx, rec.capture))
	if err != nil {
		return err
	}
	return c.loadObservation(ctx, run, mapper.ProviderAmbientWeather, obs, rec.last)
}

func (c *Collector) runGeoMet(ctx context.Context, run *runState) error {
	if c.sources.GeoMet == nil {
		return errSkipped
	}
	name := mapper.ProviderMSCGeoMet

	rec := c.recorder(ctx, run)
	obs, err := rec.observed(c.sources.GeoMet.Observation(ctx, c.latitude, c.longitude, rec.capture))
	if err != nil {
		return err
	}
	if err := c.loadObservation(ctx, run, name, obs, rec.last); err != nil {
		return err
	}

	rec = c.recorder(ctx, run)
	periods, err := rec.forecasted(c.sources.GeoMet.Forecast(ctx, c.latitude, c.longitude, rec.capture))
	if err != nil {
		return err
	}
	if err := c.loadForecast(ctx, run, name, periods, rec.last, domain.ProductForecastHourly, ""); err != nil {
		return err
	}

	// The public GeoMet feed has no daily product, so one is derived from
	// the period forecast and flagged as such.
	daily, err := domain.AggregateDailyFromPeriods(periods, c.timezone)
	if err != nil {
		return err
	}
	return c.loadForecast(ctx, run, name, daily, rec.last, domain.ProductForecastDaily, domain.QualityDerivedFromPeriods)
}

func (c *Collector) runPrognos(ctx context.Context, run *runState) error {
	if c.sources.Prognos == nil {
		return errSkipped
	}
	name := mapper.ProviderMSCRDPSPrognos

	rec := c.recorder(ctx, run)
	rec.byEndpoint = make(map[string]int64)
	periods, err := rec.forecasted(c.sources.Prognos.Forecast(ctx, c.latitude, c.longitude, run.result.RunAt, rec.capture))
	if err != nil {
		return err
	}
	c.archiveRecords(name, periodRecords(periods))

	// Each hourly period anchors to the raw payload of its lead's AirTemp
	// file; periods whose AirTemp fetch failed are dropped.
	var hourly int
	for _, period := range periods {
		leadHours := int(period.StartTime.Sub(period.IssuedAt) / time.Hour)
		rawID, ok := rec.byEndpoint[provider.PrognosEndpoint(period.IssuedAt, leadHours, "AirTemp")]
		if !ok {
			continue
		}
		points, err := forecastPoints([]domain.ForecastPeriod{period}, run.result.RunAt, c.timezone, domain.ProductForecastHourly, "")
		if err != nil {
			return err
		}
		if err := c.store.InsertDataPoints(ctx, rawID, points); err != nil {
			return err
		}
		c.publish(ctx, points)
		hourly += len(points)
	}
	run.result.DataPoints += hourly
	c.metrics.DataPointsLoaded.WithLabelValues(name, domain.ProductForecastHourly).Add(float64(hourly))

	daily, err := domain.AggregateDailyFromPeriods(periods, c.timezone)
	if err != nil {
		return err
	}
	dailyPoints, err := forecastPoints(daily, run.result.RunAt, c.timezone, domain.ProductForecastDaily, domain.QualityDerivedFromHourly)
	if err != nil {
		return err
	}
	if len(rec.byEndpoint) == 0 || len(dailyPoints) == 0 {
		return nil
	}

	anchor := rec.first
	if len(periods) > 0 {
		if id, ok := rec.byEndpoint[provider.PrognosEndpoint(periods[0].IssuedAt, 0, "AirTemp")]; ok {
			anchor = id
		}
	}
	if err := c.store.InsertDataPoints(ctx, anchor, dailyPoints); err != nil {
		return err
	}
	c.publish(ctx, dailyPoints)
	run.result.DataPoints += len(dailyPoints)
	c.metrics.DataPointsLoaded.WithLabelValues(name, domain.ProductForecastDaily).Add(float64(len(dailyPoints)))
	return nil
}

func (c *Collector) runOpenWeather(ctx context.Context, run *runState) error {
	if c.sources.OpenWeather == nil {
		return errSkipped
	}
	name := mapper.ProviderOpenWeather

	rec := c.recorder(ctx, run)
	obs, err := rec.observed(c.sources.OpenWeather.Observation(ctx, c.latitude, c.longitude, rec.capture))
	if err != nil {
		return err
	}
	if err := c.loadObservation(ctx, run, name, obs, rec.last); err != nil {
		return err
	}

	rec = c.recorder(ctx, run)
	hourly, err := rec.forecasted(c.sources.OpenWeather.OneCallHourly(ctx, c.latitude, c.longitude, rec.capture))
	if err != nil {
		return err
	}
	if err := c.loadForecast(ctx, run, name, hourly, rec.last, domain.ProductForecastHourly, ""); err != nil {
		return err
	}

	rec = c.recorder(ctx, run)
	daily, err := rec.forecasted(c.sources.OpenWeather.OneCallDaily(ctx, c.latitude, c.longitude, rec.capture))
	if err != nil {
		return err
	}
	return c.loadForecast(ctx, run, name, daily, rec.last, domain.ProductForecastDaily, "")
}

func (c *Collector) runTomorrowIO(ctx context.Context, run *runState) error {
	if c.sources.TomorrowIO == nil {
		return errSkipped
	}
	name := mapper.ProviderTomorrowIO

	rec := c.recorder(ctx, run)
	obs, err := rec.observed(c.sources.TomorrowIO.Observation(ctx, c.latitude, c.longitude, rec.capture))
	if err != nil {
		return err
	}
	if err := c.loadObservation(ctx, run, name, obs, rec.last); err != nil {
		return err
	}

	rec = c.recorder(ctx, run)
	hourly, err := rec.forecasted(c.sources.TomorrowIO.Forecast(ctx, c.latitude, c.longitude, rec.capture))
	if err != nil {
		return err
	}
	if err := c.loadForecast(ctx, run, name, hourly, rec.last, domain.ProductForecastHourly, ""); err != nil {
		return err
	}

	rec = c.recorder(ctx, run)
	daily, err := rec.forecasted(c.sources.TomorrowIO.DailyForecast(ctx, c.latitude, c.longitude, rec.capture))
	if err != nil {
		return err
	}
	return c.loadForecast(ctx, run, name, daily, rec.last, domain.ProductForecastDaily, "")
}

func (c *Collector) runAccuWeather(ctx context.Context, run *runState) error {
	if c.sources.AccuWeather == nil {
		return errSkipped
	}
	name := mapper.ProviderAccuWeather

	rec := c.recorder(ctx, run)
	location, err := c.sources.AccuWeather.Location(ctx, c.latitude, c.longitude, rec.capture)
	if err = firstError(rec.err, err); err != nil {
		return err
	}

	rec = c.recorder(ctx, run)
	obs, err := rec.observed(c.sources.AccuWeather.Observation(ctx, location.Key, c.latitude, c.longitude, rec.capture))
	if err != nil {
		return err
	}
	if err := c.loadObservation(ctx, run, name, obs, rec.last); err != nil {
		return err
	}

	rec = c.recorder(ctx, run)
	hourly, err := rec.forecasted(c.sources.AccuWeather.HourlyForecast(ctx, location.Key, c.latitude, c.longitude, rec.capture))
	if err != nil {
		return err
	}
	if err := c.loadForecast(ctx, run, name, hourly, rec.last, domain.ProductForecastHourly, ""); err != nil {
		return err
	}

	rec = c.recorder(ctx, run)
	daily, err := rec.forecasted(c.sources.AccuWeather.DailyForecast(ctx, location.Key, c.latitude, c.longitude, rec.capture))
	if err != nil {
		return err
	}
	return c.loadForecast(ctx, run, name, daily, rec.last, domain.ProductForecastDaily, "")
}

// loadObservation archives one observation and inserts its exploded points
// anchored to rawID. A zero rawID means no payload was captured, so there
// is nothing to anchor to and the observation is skipped.
func (c *Collector) loadObservation(ctx context.Context, run *runState, name string, obs domain.Observation, rawID int64) error {
	if rawID == 0 {
		return nil
	}
	c.archiveRecords(name, []any{obs})

	points, err := domain.ObservationDataPoints(obs, run.result.RunAt, c.timezone, nil)
	if err != nil {
		return err
	}
	if err := c.store.InsertDataPoints(ctx, rawID, points); err != nil {
		return err
	}
	c.publish(ctx, points)
	run.result.DataPoints += len(points)
	c.metrics.DataPointsLoaded.WithLabelValues(name, domain.ProductObservation).Add(float64(len(points)))
	return nil
}

// loadForecast archives forecast periods and inserts their exploded points
// anchored to rawID. Derived daily products pass the quality flag through.
func (c *Collector) loadForecast(ctx context.Context, run *runState, name string, periods []domain.ForecastPeriod, rawID int64, productKind, qualityFlag string) error {
	if rawID == 0 {
		return nil
	}
	if qualityFlag == "" {
		// Derived products re-shape already archived periods.
		c.archiveRecords(name, periodRecords(periods))
	}

	points, err := forecastPoints(periods, run.result.RunAt, c.timezone, productKind, qualityFlag)
	if err != nil {
		return err
	}
	if err := c.store.InsertDataPoints(ctx, rawID, points); err != nil {
		return err
	}
	c.publish(ctx, points)
	run.result.DataPoints += len(points)
	c.metrics.DataPointsLoaded.WithLabelValues(name, productKind).Add(float64(len(points)))
	return nil
}

// forecastPoints explodes periods into data points, numbering daily periods
// with their ordinal lead day index.
func forecastPoints(periods []domain.ForecastPeriod, runAt time.Time, tzName, productKind, qualityFlag string) ([]domain.DataPoint, error) {
	var points []domain.DataPoint
	for i, period := range periods {
		opts := domain.ForecastPointOptions{QualityFlag: qualityFlag}
		if productKind == domain.ProductForecastDaily {
			index := i
			opts.LeadDayIndex = &index
		}
		exploded, err := domain.ForecastDataPoints(period, runAt, tzName, productKind, opts)
		if err != nil {
			return nil, err
		}
		points = append(points, exploded...)
	}
	return points, nil
}

func (c *Collector) archiveRecords(name string, records []any) {
	if c.archive == nil || len(records) == 0 {
		return
	}
	if _, err := c.archive.Append(name, records); err != nil {
		c.logger.Warn("archive append failed", "provider", name, "error", err)
	}
}

func (c *Collector) publish(ctx context.Context, points []domain.DataPoint) {
	if c.publisher == nil || len(points) == 0 {
		return
	}
	if err := c.publisher.PublishBatch(ctx, points); err != nil {
		c.logger.Warn("publish data points failed", "error", err, "count", len(points))
	}
}

func periodRecords(periods []domain.ForecastPeriod) []any {
	records := make([]any, len(periods))
	for i, period := range periods {
		records[i] = period
	}
	return records
}

// rawRecorder is the Capture hook for one fetch: it inserts each captured
// payload and remembers the row ids so data points can anchor to them.
type rawRecorder struct {
	ctx        context.Context
	collector  *Collector
	run        *runState
	first      int64
	last       int64
	byEndpoint map[string]int64
	err        error
}

func (c *Collector) recorder(ctx context.Context, run *runState) *rawRecorder {
	return &rawRecorder{ctx: ctx, collector: c, run: run}
}

func (r *rawRecorder) capture(captured provider.CapturedPayload) {
	rawID, err := r.collector.store.InsertRawPayload(r.ctx, toRawPayload(captured))
	if err != nil {
		if r.err == nil {
			r.err = fmt.Errorf("insert raw payload: %w", err)
		}
		return
	}
	if r.first == 0 {
		r.first = rawID
	}
	r.last = rawID
	if r.byEndpoint != nil {
		r.byEndpoint[captured.Endpoint] = rawID
	}
	r.run.result.RawPayloads++
	r.collector.metrics.PayloadsFetched.WithLabelValues(captured.Provider, captured.Endpoint).Inc()
}

// observed folds a storage failure inside the capture hook into the fetch
// result, since Capture itself cannot return an error.
func (r *rawRecorder) observed(obs domain.Observation, err error) (domain.Observation, error) {
	return obs, firstError(r.err, err)
}

func (r *rawRecorder) forecasted(periods []domain.ForecastPeriod, err error) ([]domain.ForecastPeriod, error) {
	return periods, firstError(r.err, err)
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func toRawPayload(captured provider.CapturedPayload) sqlite.RawPayload {
	return sqlite.RawPayload{
		Provider:        captured.Provider,
		Endpoint:        captured.Endpoint,
		RunAt:           captured.RunAt,
		RequestURL:      captured.RequestURL,
		RequestParams:   captured.RequestParams,
		RequestHeaders:  captured.RequestHeaders,
		ResponseStatus:  captured.ResponseStatus,
		ResponseHeaders: captured.ResponseHeaders,
		PayloadJSON:     captured.PayloadText,
	}
}
