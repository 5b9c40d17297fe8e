package kafka

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfeunekes/wxbench/internal/domain"
)

func TestSerializeToMessage(t *testing.T) {
	runAt := time.Date(2024, 4, 26, 15, 10, 0, 0, time.UTC)
	observedAt := runAt.Add(-3 * time.Minute)
	point := domain.DataPoint{
		Provider:    "openweather",
		ProductKind: domain.ProductObservation,
		MetricType:  "temperature",
		ValueNum:    domain.Float(12.5),
		Unit:        domain.String("C"),
		ObservedAt:  &observedAt,
		RunAt:       runAt,
		Latitude:    45.4,
		Longitude:   -75.7,
	}

	msg, err := serializeToMessage(point)
	require.NoError(t, err)

	assert.Equal(t, []byte("openweather/observation/temperature"), msg.Key)
	assert.Contains(t, string(msg.Value), `"metric_type":"temperature"`)
	assert.Contains(t, string(msg.Value), `"value_num":12.5`)
	assert.Len(t, msg.Headers, 3)
	assert.Equal(t, "provider", msg.Headers[0].Key)
	assert.Equal(t, []byte("openweather"), msg.Headers[0].Value)
	assert.Equal(t, "product_kind", msg.Headers[1].Key)
	assert.Equal(t, []byte("observation"), msg.Headers[1].Value)
	assert.Equal(t, "run_at", msg.Headers[2].Key)
	assert.Equal(t, []byte(runAt.Format(time.RFC3339)), msg.Headers[2].Value)
}

func TestMessageKey_GroupsMetricSeries(t *testing.T) {
	a := domain.DataPoint{Provider: "msc_geomet", ProductKind: domain.ProductForecastHourly, MetricType: "wind_speed"}
	b := domain.DataPoint{Provider: "msc_geomet", ProductKind: domain.ProductForecastHourly, MetricType: "wind_speed"}
	c := domain.DataPoint{Provider: "msc_geomet", ProductKind: domain.ProductForecastDaily, MetricType: "wind_speed"}

	assert.Equal(t, messageKey(a), messageKey(b))
	assert.NotEqual(t, messageKey(a), messageKey(c))
}
