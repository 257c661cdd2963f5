package telemetry

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"google.golang.org/grpc/credentials/insecure"
)

// runIDHeader is the OTLP header every span batch this process exports
// carries, so a collector can correlate spans from one percolation run
// without parsing span attributes.
const runIDHeader = "cpm-run-id"

// createExporter builds an OTLP trace exporter for cfg.Protocol,
// stamping runID onto every exported request via runIDHeader.
func createExporter(ctx context.Context, cfg *Config, runID string) (*otlptrace.Exporter, error) {
	headers := withRunIDHeader(cfg.Headers, runID)
	switch strings.ToLower(cfg.Protocol) {
	case "http/protobuf", "http":
		return createHTTPExporter(ctx, cfg, headers)
	default:
		return createGRPCExporter(ctx, cfg, headers)
	}
}

func withRunIDHeader(headers map[string]string, runID string) map[string]string {
	merged := make(map[string]string, len(headers)+1)
	for k, v := range headers {
		merged[k] = v
	}
	merged[runIDHeader] = runID
	return merged
}

// stripScheme removes an "http://" or "https://" prefix from endpoint,
// reporting whether the stripped scheme was the insecure one.
func stripScheme(endpoint string) (stripped string, wasInsecure bool) {
	switch {
	case strings.HasPrefix(endpoint, "https://"):
		return strings.TrimPrefix(endpoint, "https://"), false
	case strings.HasPrefix(endpoint, "http://"):
		return strings.TrimPrefix(endpoint, "http://"), true
	default:
		return endpoint, false
	}
}

func createGRPCExporter(ctx context.Context, cfg *Config, headers map[string]string) (*otlptrace.Exporter, error) {
	opts := []otlptracegrpc.Option{otlptracegrpc.WithHeaders(headers)}
	insecureEndpoint := false
	if cfg.Endpoint != "" {
		endpoint, wasInsecure := stripScheme(cfg.Endpoint)
		opts = append(opts, otlptracegrpc.WithEndpoint(endpoint))
		insecureEndpoint = wasInsecure
	}
	if cfg.Insecure || insecureEndpoint {
		opts = append(opts, otlptracegrpc.WithTLSCredentials(insecure.NewCredentials()))
	}
	return otlptracegrpc.New(ctx, opts...)
}

func createHTTPExporter(ctx context.Context, cfg *Config, headers map[string]string) (*otlptrace.Exporter, error) {
	opts := []otlptracehttp.Option{otlptracehttp.WithHeaders(headers)}
	insecureEndpoint := false
	if cfg.Endpoint != "" {
		endpoint, wasInsecure := stripScheme(cfg.Endpoint)
		opts = append(opts, otlptracehttp.WithEndpoint(endpoint))
		insecureEndpoint = wasInsecure
	}
	if cfg.Insecure || insecureEndpoint {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	return otlptracehttp.New(ctx, opts...)
}
