package xtier

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// collectCounters 读取 reader 的全部 Int64 计数器，按指标名汇总。
func collectCounters(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]int64)
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				out[m.Name] += dp.Value
			}
		}
	}
	return out
}

func TestMetrics_Counters(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = provider.Shutdown(context.Background()) }()

	b := newMemBackend()
	b.data["warm"] = []byte("from-disk")
	c := newTestCache(t, b, WithMeterProvider(provider))

	// 未命中 → 写入 → 命中 → 读穿已有条目。
	_, found, err := c.Get(context.Background(), "k")
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, c.Set("k", []byte("v")))
	waitBackendHas(t, b, "k", []byte("v"))

	_, found, err = c.Get(context.Background(), "k")
	require.NoError(t, err)
	require.True(t, found)

	_, found, err = c.Get(context.Background(), "warm")
	require.NoError(t, err)
	require.True(t, found)

	counters := collectCounters(t, reader)
	assert.EqualValues(t, 1, counters[metricMemoryHit])
	assert.EqualValues(t, 2, counters[metricMemoryMiss])
	assert.EqualValues(t, 1, counters[metricBackendWrite])
	// 只有成功的后端读取计数：两次 NotFound 读穿不计，warm 计一次。
	assert.EqualValues(t, 1, counters[metricBackendRead])
}

func TestMetrics_EvictionCounters(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = provider.Shutdown(context.Background()) }()

	b := newMemBackend()
	c := newTestCache(t, b,
		WithMeterProvider(provider),
		WithMemoryTTL(40*time.Millisecond),
		WithFileTTL(120*time.Millisecond),
	)

	require.NoError(t, c.Set("k", []byte("v")))
	waitBackendHas(t, b, "k", []byte("v"))

	require.Eventually(t, func() bool {
		_, ok := b.get("k")
		return !ok
	}, 3*time.Second, 5*time.Millisecond)

	counters := collectCounters(t, reader)
	assert.EqualValues(t, 1, counters[metricEvictMemory])
	assert.EqualValues(t, 1, counters[metricEvictFile])
	assert.Zero(t, counters[metricIOError])
}
