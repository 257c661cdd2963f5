// Package telemetry initializes OpenTelemetry tracing (and exposes the
// metric API) from standard OTEL_* environment variables, gated by the
// `--otel` CLI flag. Grounded on the teacher's pkg/telemetry.
//
// Environment Variables:
//
//	OTEL_ENABLED                    - Enable/disable export (default: false)
//	OTEL_SERVICE_NAME               - Service name (default: cpm)
//	OTEL_SERVICE_VERSION            - Service version (default: unknown)
//	OTEL_EXPORTER_OTLP_ENDPOINT     - OTLP collector endpoint
//	OTEL_EXPORTER_OTLP_PROTOCOL     - Protocol: grpc or http/protobuf (default: grpc)
//	OTEL_EXPORTER_OTLP_HEADERS      - Headers for authentication
//	OTEL_EXPORTER_OTLP_INSECURE     - Use insecure connection (default: false)
//	OTEL_TRACES_SAMPLER             - Sampler type (default: always_on)
//	OTEL_TRACES_SAMPLER_ARG         - Sampler argument
//	OTEL_RESOURCE_ATTRIBUTES        - Additional resource attributes
package telemetry

import (
	"context"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/trace"
	oteltrace "go.opentelemetry.io/otel/trace"
)

var (
	globalConfig *Config
	configOnce   sync.Once

	// runID identifies one process's worth of percolation telemetry: a
	// run of cmd/cpm spans many percolation levels (one k per level),
	// and this ties them back together in a backend that otherwise only
	// sees spans one at a time. Regenerated on every Init call that finds
	// telemetry enabled; a disabled Init leaves it unchanged.
	runID string
)

// RunID returns the identifier stamped on this process's resource and
// exporter headers. Empty until Init has run with telemetry enabled.
func RunID() string { return runID }

// ShutdownFunc flushes and shuts down the TracerProvider created by Init.
type ShutdownFunc func(ctx context.Context) error

func noopShutdown(_ context.Context) error { return nil }

// Init sets up the global TracerProvider when cfg.Enabled, and always
// returns a Tracer/Meter pair suitable for percolation.Options (no-op
// when telemetry is disabled, since the global providers default to
// no-op implementations). Only tracing has an OTLP exporter wired; the
// Meter is returned from whatever MeterProvider is globally registered
// (no-op unless the caller registers one) — metric export has no
// grounded OTLP dependency in this module's stack, so instrument calls
// are live API calls that simply go nowhere today.
func Init(ctx context.Context) (oteltrace.Tracer, metric.Meter, ShutdownFunc, error) {
	cfg := loadConfig()

	if !cfg.Enabled {
		return otel.Tracer(cfg.ServiceName), otel.Meter(cfg.ServiceName), noopShutdown, nil
	}

	runID = uuid.NewString()

	res, err := buildResource(cfg, runID)
	if err != nil {
		return otel.Tracer(cfg.ServiceName), otel.Meter(cfg.ServiceName), noopShutdown, err
	}

	exporter, err := createExporter(ctx, cfg, runID)
	if err != nil {
		return otel.Tracer(cfg.ServiceName), otel.Meter(cfg.ServiceName), noopShutdown, err
	}

	sampler := createSampler(cfg)

	tp := trace.NewTracerProvider(
		trace.WithResource(res),
		trace.WithBatcher(exporter),
		trace.WithSampler(sampler),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	shutdown := func(ctx context.Context) error { return tp.Shutdown(ctx) }
	return tp.Tracer(cfg.ServiceName), otel.Meter(cfg.ServiceName), shutdown, nil
}

// Enabled reports whether OTEL_ENABLED is set.
func Enabled() bool { return loadConfig().Enabled }

// GetConfig returns the cached environment-derived configuration.
func GetConfig() *Config { return loadConfig() }

func loadConfig() *Config {
	configOnce.Do(func() {
		globalConfig = LoadFromEnv()
	})
	return globalConfig
}

// createSampler builds a trace sampler from cfg, defaulting to full
// sampling when unspecified.
func createSampler(cfg *Config) trace.Sampler {
	switch cfg.Sampler {
	case "always_off":
		return trace.NeverSample()
	case "traceidratio":
		return trace.TraceIDRatioBased(parseRatio(cfg.SamplerArg))
	case "parentbased_always_on":
		return trace.ParentBased(trace.AlwaysSample())
	case "parentbased_always_off":
		return trace.ParentBased(trace.NeverSample())
	case "parentbased_traceidratio":
		return trace.ParentBased(trace.TraceIDRatioBased(parseRatio(cfg.SamplerArg)))
	default:
		return trace.AlwaysSample()
	}
}

// parseRatio clamps s to [0, 1], falling back to 1 (full sampling) on
// an empty or unparseable input rather than silently under-sampling.
func parseRatio(s string) float64 {
	if s == "" {
		return 1.0
	}
	ratio, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 1.0
	}
	switch {
	case ratio < 0:
		return 0
	case ratio > 1:
		return 1.0
	default:
		return ratio
	}
}
