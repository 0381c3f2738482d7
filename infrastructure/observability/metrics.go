package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"drawbot/config"
	"drawbot/domain/interfaces"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
)

var _ interfaces.DrawMetrics = (*MetricsProvider)(nil)

// MetricsProvider manages OpenTelemetry metrics for lottery draws.
// Every Record method is a no-op until Initialize succeeds with metrics enabled.
type MetricsProvider struct {
	config        *config.Config
	reader        sdkmetric.Reader
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	initialized   bool
	enabled       bool
	mu            sync.RWMutex

	// Metric instruments
	drawsCounter              metric.Int64Counter
	drawParticipantsHist      metric.Int64Histogram
	winnersCounter            metric.Int64Counter
	rerollsCounter            metric.Int64Counter
	timerFiresCounter         metric.Int64Counter
	membershipDegradedCounter metric.Int64Counter
	lotteriesActiveGauge      metric.Int64Gauge
}

// NewMetricsProvider creates a new metrics provider
func NewMetricsProvider(cfg *config.Config) *MetricsProvider {
	return &MetricsProvider{
		config: cfg,
	}
}

// NewMetricsProviderWithReader creates a provider that exports through reader
// regardless of the configured exporter type
func NewMetricsProviderWithReader(cfg *config.Config, reader sdkmetric.Reader) *MetricsProvider {
	return &MetricsProvider{
		config: cfg,
		reader: reader,
	}
}

// Initialize sets up the OpenTelemetry metrics provider
func (mp *MetricsProvider) Initialize(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.initialized {
		log.Info("Metrics provider already initialized")
		return nil
	}

	if !mp.config.OTelEnabled && mp.reader == nil {
		log.Info("OpenTelemetry metrics disabled")
		mp.initialized = true
		return nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(mp.config.OTelServiceName),
			attribute.String("environment", mp.config.Environment),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	reader := mp.reader
	if reader == nil {
		var exporter sdkmetric.Exporter
		switch mp.config.OTelExporterType {
		case ExporterConsole:
			exporter, err = stdoutmetric.New()
			if err != nil {
				return fmt.Errorf("failed to create console exporter: %w", err)
			}
			log.Info("Using console metric exporter")

		case ExporterOTLP:
			ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()

			exporter, err = otlpmetricgrpc.New(ctx,
				otlpmetricgrpc.WithEndpoint(mp.config.OTelOTLPEndpoint),
				otlpmetricgrpc.WithInsecure(),
			)
			if err != nil {
				return fmt.Errorf("failed to create OTLP exporter: %w", err)
			}
			log.Infof("Using OTLP metric exporter: %s", mp.config.OTelOTLPEndpoint)

		case ExporterNone, "":
			log.Info("Metrics export disabled (exporter_type='none')")
			mp.initialized = true
			return nil

		default:
			return fmt.Errorf("unknown exporter type: %s", mp.config.OTelExporterType)
		}

		interval := time.Duration(mp.config.OTelExportIntervalMillis) * time.Millisecond
		if interval <= 0 {
			interval = 30 * time.Second
		}
		reader = sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))
	}

	mp.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	if mp.reader == nil {
		otel.SetMeterProvider(mp.meterProvider)
	}

	mp.meter = mp.meterProvider.Meter("drawbot")

	if err := mp.createInstruments(); err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}

	mp.initialized = true
	mp.enabled = true
	log.Info("Metrics provider initialized successfully")
	return nil
}

// createInstruments creates all metric instruments
func (mp *MetricsProvider) createInstruments() error {
	var err error

	mp.drawsCounter, err = mp.meter.Int64Counter(
		DrawsTotal,
		metric.WithDescription("Total number of executed draws"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create draws counter: %w", err)
	}

	mp.drawParticipantsHist, err = mp.meter.Int64Histogram(
		DrawParticipants,
		metric.WithDescription("Eligible pool size per draw"),
		metric.WithUnit("1"),
		metric.WithExplicitBucketBoundaries(0, 1, 5, 10, 25, 50, 100, 250, 500, 1000),
	)
	if err != nil {
		return fmt.Errorf("failed to create draw participants histogram: %w", err)
	}

	mp.winnersCounter, err = mp.meter.Int64Counter(
		WinnersTotal,
		metric.WithDescription("Total number of winners selected"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create winners counter: %w", err)
	}

	mp.rerollsCounter, err = mp.meter.Int64Counter(
		RerollsTotal,
		metric.WithDescription("Total number of rerolls"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create rerolls counter: %w", err)
	}

	mp.timerFiresCounter, err = mp.meter.Int64Counter(
		TimerFiresTotal,
		metric.WithDescription("Total number of scheduler timer fires"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create timer fires counter: %w", err)
	}

	mp.membershipDegradedCounter, err = mp.meter.Int64Counter(
		MembershipDegradedTotal,
		metric.WithDescription("Member fetches that fell back to a partial or empty pool"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create membership degraded counter: %w", err)
	}

	mp.lotteriesActiveGauge, err = mp.meter.Int64Gauge(
		LotteriesActive,
		metric.WithDescription("Current number of active lotteries"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create active lotteries gauge: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the metrics provider
func (mp *MetricsProvider) Shutdown(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.enabled = false
	if mp.meterProvider != nil {
		return mp.meterProvider.Shutdown(ctx)
	}
	return nil
}

// RecordDraw records an executed draw with its pool size and winner count
func (mp *MetricsProvider) RecordDraw(ctx context.Context, lotteryID string, participants, winners int) {
	if !mp.isEnabled() {
		return
	}

	attrs := metric.WithAttributes(attribute.String(LabelLotteryID, lotteryID))
	mp.drawsCounter.Add(ctx, 1, attrs)
	mp.drawParticipantsHist.Record(ctx, int64(participants), attrs)
	mp.winnersCounter.Add(ctx, int64(winners),
		metric.WithAttributes(
			attribute.String(LabelLotteryID, lotteryID),
			attribute.String(LabelSource, SourceDraw),
		),
	)
}

// RecordReroll records a reroll and the number of new winners it produced
func (mp *MetricsProvider) RecordReroll(ctx context.Context, lotteryID string, winners int) {
	if !mp.isEnabled() {
		return
	}

	mp.rerollsCounter.Add(ctx, 1, metric.WithAttributes(attribute.String(LabelLotteryID, lotteryID)))
	mp.winnersCounter.Add(ctx, int64(winners),
		metric.WithAttributes(
			attribute.String(LabelLotteryID, lotteryID),
			attribute.String(LabelSource, SourceReroll),
		),
	)
}

// RecordTimerFire records a scheduler timer firing
func (mp *MetricsProvider) RecordTimerFire(ctx context.Context, kind string) {
	if !mp.isEnabled() {
		return
	}

	mp.timerFiresCounter.Add(ctx, 1, metric.WithAttributes(attribute.String(LabelKind, kind)))
}

// RecordMembershipDegraded records a member fetch that did not produce a full pool
func (mp *MetricsProvider) RecordMembershipDegraded(ctx context.Context, reason string) {
	if !mp.isEnabled() {
		return
	}

	mp.membershipDegradedCounter.Add(ctx, 1, metric.WithAttributes(attribute.String(LabelReason, reason)))
}

// SetActiveLotteries records the current size of the active set
func (mp *MetricsProvider) SetActiveLotteries(count int) {
	if !mp.isEnabled() {
		return
	}

	mp.lotteriesActiveGauge.Record(context.Background(), int64(count))
}

// isEnabled checks if metrics are enabled and initialized
func (mp *MetricsProvider) isEnabled() bool {
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return mp.initialized && mp.enabled
}
