package observability

import (
	"context"
	"testing"

	"drawbot/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	byName := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			byName[m.Name] = m
		}
	}
	return byName
}

func sumOf(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()

	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestMetricsProvider_Disabled(t *testing.T) {
	t.Parallel()

	mp := NewMetricsProvider(config.NewTestConfig())
	require.NoError(t, mp.Initialize(context.Background()))

	assert.False(t, mp.isEnabled())
	assert.NotPanics(t, func() {
		mp.RecordDraw(context.Background(), "lottery_1", 5, 2)
		mp.RecordReroll(context.Background(), "lottery_1", 1)
		mp.RecordTimerFire(context.Background(), "draw")
		mp.RecordMembershipDegraded(context.Background(), "timeout")
		mp.SetActiveLotteries(3)
	})
	assert.NoError(t, mp.Shutdown(context.Background()))
}

func TestMetricsProvider_UnknownExporter(t *testing.T) {
	t.Parallel()

	cfg := config.NewTestConfig()
	cfg.OTelEnabled = true
	cfg.OTelExporterType = "carrier-pigeon"

	err := NewMetricsProvider(cfg).Initialize(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown exporter type")
}

func TestMetricsProvider_RecordsInstruments(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	mp := NewMetricsProviderWithReader(config.NewTestConfig(), reader)
	require.NoError(t, mp.Initialize(ctx))
	defer mp.Shutdown(ctx)

	mp.RecordDraw(ctx, "lottery_1", 5, 2)
	mp.RecordDraw(ctx, "lottery_1", 0, 0)
	mp.RecordReroll(ctx, "lottery_1", 3)
	mp.RecordTimerFire(ctx, "draw")
	mp.RecordTimerFire(ctx, "final_warning")
	mp.RecordMembershipDegraded(ctx, "timeout")
	mp.SetActiveLotteries(4)

	metrics := collect(t, reader)

	assert.Equal(t, int64(2), sumOf(t, metrics[DrawsTotal]))
	assert.Equal(t, int64(5), sumOf(t, metrics[WinnersTotal]))
	assert.Equal(t, int64(1), sumOf(t, metrics[RerollsTotal]))
	assert.Equal(t, int64(2), sumOf(t, metrics[TimerFiresTotal]))
	assert.Equal(t, int64(1), sumOf(t, metrics[MembershipDegradedTotal]))

	gauge, ok := metrics[LotteriesActive].Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, gauge.DataPoints, 1)
	assert.Equal(t, int64(4), gauge.DataPoints[0].Value)

	hist, ok := metrics[DrawParticipants].Data.(metricdata.Histogram[int64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(2), hist.DataPoints[0].Count)
	assert.Equal(t, int64(5), hist.DataPoints[0].Sum)
}
