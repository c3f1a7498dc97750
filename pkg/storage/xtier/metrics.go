package xtier

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

const (
	metricMemoryHit    = "tiercache.memory.hit"
	metricMemoryMiss   = "tiercache.memory.miss"
	metricBackendRead  = "tiercache.backend.read"
	metricBackendWrite = "tiercache.backend.write"
	metricEvictMemory  = "tiercache.evict.memory"
	metricEvictFile    = "tiercache.evict.file"
	metricIOError      = "tiercache.io.error"
)

// tierMetrics 持有缓存的 OTel 计数器。
// 默认 MeterProvider 是全局 no-op，未接入 OTel 时计数开销可忽略。
type tierMetrics struct {
	hits          metric.Int64Counter
	misses        metric.Int64Counter
	backendReads  metric.Int64Counter
	backendWrites metric.Int64Counter
	memEvictions  metric.Int64Counter
	fileEvictions metric.Int64Counter
	ioErrors      metric.Int64Counter
}

func newTierMetrics(provider metric.MeterProvider, instrumentationName string) (*tierMetrics, error) {
	meter := provider.Meter(instrumentationName)

	m := &tierMetrics{}
	for _, c := range []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&m.hits, metricMemoryHit, "memory tier hits"},
		{&m.misses, metricMemoryMiss, "memory tier misses"},
		{&m.backendReads, metricBackendRead, "backend reads"},
		{&m.backendWrites, metricBackendWrite, "backend writes"},
		{&m.memEvictions, metricEvictMemory, "memory tier evictions"},
		{&m.fileEvictions, metricEvictFile, "file tier evictions"},
		{&m.ioErrors, metricIOError, "background io errors"},
	} {
		counter, err := meter.Int64Counter(c.name,
			metric.WithDescription(c.desc), metric.WithUnit("1"))
		if err != nil {
			return nil, fmt.Errorf("xtier: create counter %s: %w", c.name, err)
		}
		*c.dst = counter
	}
	return m, nil
}

func (m *tierMetrics) hit(ctx context.Context)            { m.hits.Add(ctx, 1) }
func (m *tierMetrics) miss(ctx context.Context)           { m.misses.Add(ctx, 1) }
func (m *tierMetrics) backendRead(ctx context.Context)    { m.backendReads.Add(ctx, 1) }
func (m *tierMetrics) backendWrite(ctx context.Context)   { m.backendWrites.Add(ctx, 1) }
func (m *tierMetrics) memoryEviction(ctx context.Context) { m.memEvictions.Add(ctx, 1) }
func (m *tierMetrics) fileEviction(ctx context.Context)   { m.fileEvictions.Add(ctx, 1) }
func (m *tierMetrics) ioError(ctx context.Context)        { m.ioErrors.Add(ctx, 1) }
