// Package kafka publishes normalized data points to the sink topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/ericfeunekes/wxbench/internal/config"
	"github.com/ericfeunekes/wxbench/internal/domain"
)

// Writer produces data-point messages to a Kafka topic.
// It implements pipeline.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishBatch serializes and publishes multiple data points in a single
// WriteMessages call for efficiency.
func (w *Writer) PublishBatch(ctx context.Context, points []domain.DataPoint) error {
	if len(points) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(points))
	for i := range points {
		msg, err := serializeToMessage(points[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a DataPoint into a Kafka message. The key
// groups each metric series onto one partition so consumers see it in order.
func serializeToMessage(point domain.DataPoint) (kafkago.Message, error) {
	data, err := json.Marshal(point)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize data point: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(messageKey(point)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "provider", Value: []byte(point.Provider)},
			{Key: "product_kind", Value: []byte(point.ProductKind)},
			{Key: "run_at", Value: []byte(point.RunAt.Format(time.RFC3339))},
		},
	}, nil
}

func messageKey(point domain.DataPoint) string {
	return point.Provider + "/" + point.ProductKind + "/" + point.MetricType
}
