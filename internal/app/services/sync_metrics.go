package services

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type syncMetrics struct {
	runs         metric.Int64Counter
	posts        metric.Int64Counter
	interactions metric.Int64Counter
	resolutions  metric.Int64Counter
	failures     metric.Int64Counter
	runDuration  metric.Float64Histogram
}

func newSyncMetrics() syncMetrics {
	meter := otel.Meter("github.com/creatorlens/creatorlens/internal/app/services")
	runs, _ := meter.Int64Counter("creatorlens.sync.runs")
	posts, _ := meter.Int64Counter("creatorlens.sync.posts")
	interactions, _ := meter.Int64Counter("creatorlens.sync.interactions")
	resolutions, _ := meter.Int64Counter("creatorlens.sync.reply_resolutions")
	failures, _ := meter.Int64Counter("creatorlens.sync.failures")
	runDuration, _ := meter.Float64Histogram("creatorlens.sync.run_duration_seconds")
	return syncMetrics{
		runs:         runs,
		posts:        posts,
		interactions: interactions,
		resolutions:  resolutions,
		failures:     failures,
		runDuration:  runDuration,
	}
}

func (m syncMetrics) recordRun(ctx context.Context, status string, duration time.Duration) {
	m.runs.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	m.runDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String("status", status)))
}

func (m syncMetrics) recordPost(ctx context.Context) {
	m.posts.Add(ctx, 1)
}

func (m syncMetrics) recordInteractions(ctx context.Context, count int) {
	m.interactions.Add(ctx, int64(count))
}

func (m syncMetrics) recordResolution(ctx context.Context, layer string) {
	m.resolutions.Add(ctx, 1, metric.WithAttributes(attribute.String("layer", layer)))
}

func (m syncMetrics) recordFailure(ctx context.Context, kind string) {
	m.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}
