// Package telemetry sets up OpenTelemetry tracing and metrics for chat
// requests. Exporters write to rotated files next to the log.
package telemetry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// ServiceName identifies chatpanel in exported telemetry.
const ServiceName = "chatpanel"

// File names used for the exporters.
const (
	TracesFile  = "chatpanel_traces.log"
	MetricsFile = "chatpanel_metrics.log"
)

// Providers bundles the tracer and meter handed to the API client.
type Providers struct {
	Tracer trace.Tracer
	Meter  metric.Meter

	shutdown func(context.Context) error
}

// Shutdown flushes exporters and closes their files.
func (p *Providers) Shutdown(ctx context.Context) error {
	if p == nil || p.shutdown == nil {
		return nil
	}
	return p.shutdown(ctx)
}

// Noop returns providers that record nothing.
func Noop() *Providers {
	return &Providers{
		Tracer: tracenoop.NewTracerProvider().Tracer(ServiceName),
		Meter:  metricnoop.NewMeterProvider().Meter(ServiceName),
	}
}

// Init creates tracer and meter providers exporting to files in dir.
func Init(ctx context.Context, dir, version string, logger *zap.Logger) (*Providers, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(ServiceName),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create telemetry directory: %w", err)
	}

	traceFile := &lumberjack.Logger{
		Filename:   filepath.Join(dir, TracesFile),
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}

	traceExporter, err := stdouttrace.New(stdouttrace.WithWriter(traceFile))
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	metricsFile := &lumberjack.Logger{
		Filename:   filepath.Join(dir, MetricsFile),
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}

	metricExporter, err := stdoutmetric.New(stdoutmetric.WithWriter(metricsFile))
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, fmt.Errorf("failed to create metric exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(
				metricExporter,
				sdkmetric.WithInterval(30*time.Second),
			),
		),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	shutdown := func(ctx context.Context) error {
		var firstErr error
		if err := tp.Shutdown(ctx); err != nil {
			logger.Warn("failed to shutdown tracer provider", zap.Error(err))
			firstErr = err
		}
		if err := mp.Shutdown(ctx); err != nil {
			logger.Warn("failed to shutdown meter provider", zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
		_ = traceFile.Close()
		_ = metricsFile.Close()
		return firstErr
	}

	logger.Debug("telemetry initialized", zap.String("dir", dir))

	return &Providers{
		Tracer:   tp.Tracer(ServiceName),
		Meter:    mp.Meter(ServiceName),
		shutdown: shutdown,
	}, nil
}
