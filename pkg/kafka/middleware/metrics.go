package kafka_middleware

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"spacebook/pkg/kafka"
)

// Metrics counts messages flowing through the producer and consumer chains.
type Metrics struct {
	published       atomic.Int64
	publishFailed   atomic.Int64
	publishDuration atomic.Int64
	consumed        atomic.Int64
	consumeFailed   atomic.Int64
	consumeDuration atomic.Int64
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) Published() int64     { return m.published.Load() }
func (m *Metrics) PublishFailed() int64 { return m.publishFailed.Load() }
func (m *Metrics) Consumed() int64      { return m.consumed.Load() }
func (m *Metrics) ConsumeFailed() int64 { return m.consumeFailed.Load() }

func (m *Metrics) AvgPublishDuration() time.Duration {
	return average(m.publishDuration.Load(), m.published.Load()+m.publishFailed.Load())
}

func (m *Metrics) AvgConsumeDuration() time.Duration {
	return average(m.consumeDuration.Load(), m.consumed.Load()+m.consumeFailed.Load())
}

func average(total, n int64) time.Duration {
	if n == 0 {
		return 0
	}
	return time.Duration(total / n)
}

// LogValue lets a *Metrics be passed straight to a slog call.
func (m *Metrics) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("published", m.Published()),
		slog.Int64("publish_failed", m.PublishFailed()),
		slog.Duration("avg_publish_duration", m.AvgPublishDuration()),
		slog.Int64("consumed", m.Consumed()),
		slog.Int64("consume_failed", m.ConsumeFailed()),
		slog.Duration("avg_consume_duration", m.AvgConsumeDuration()),
	)
}

func (m *Metrics) ProducerMiddleware() kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()
		err := next(ctx, msg)
		m.publishDuration.Add(int64(time.Since(start)))
		if err != nil {
			m.publishFailed.Add(1)
		} else {
			m.published.Add(1)
		}
		return err
	}
}

func (m *Metrics) ConsumerMiddleware() kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)
		m.consumeDuration.Add(int64(time.Since(start)))
		if err != nil {
			m.consumeFailed.Add(1)
		} else {
			m.consumed.Add(1)
		}
		return err
	}
}
