package telemetry

import (
	"os"
	"testing"
)

func TestLoadFromEnv(t *testing.T) {
	keys := []string{
		"OTEL_ENABLED", "OTEL_SERVICE_NAME", "OTEL_SERVICE_VERSION",
		"OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_PROTOCOL",
		"OTEL_EXPORTER_OTLP_HEADERS", "OTEL_EXPORTER_OTLP_INSECURE",
		"OTEL_TRACES_SAMPLER", "OTEL_TRACES_SAMPLER_ARG", "OTEL_RESOURCE_ATTRIBUTES",
	}
	original := map[string]string{}
	for _, k := range keys {
		original[k] = os.Getenv(k)
		os.Unsetenv(k)
	}
	defer func() {
		for k, v := range original {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	t.Run("defaults", func(t *testing.T) {
		cfg := LoadFromEnv()
		if cfg.Enabled {
			t.Error("expected Enabled=false by default")
		}
		if cfg.ServiceName != "cpm" {
			t.Errorf("ServiceName = %q, want cpm", cfg.ServiceName)
		}
		if cfg.Protocol != "grpc" {
			t.Errorf("Protocol = %q, want grpc", cfg.Protocol)
		}
	})

	t.Run("enabled case-insensitive", func(t *testing.T) {
		os.Setenv("OTEL_ENABLED", "TRUE")
		defer os.Unsetenv("OTEL_ENABLED")
		if !LoadFromEnv().Enabled {
			t.Error("expected Enabled=true for 'TRUE'")
		}
	})

	t.Run("custom values", func(t *testing.T) {
		os.Setenv("OTEL_SERVICE_NAME", "cpm-percolate")
		os.Setenv("OTEL_EXPORTER_OTLP_PROTOCOL", "http/protobuf")
		os.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "true")
		defer func() {
			os.Unsetenv("OTEL_SERVICE_NAME")
			os.Unsetenv("OTEL_EXPORTER_OTLP_PROTOCOL")
			os.Unsetenv("OTEL_EXPORTER_OTLP_INSECURE")
		}()

		cfg := LoadFromEnv()
		if cfg.ServiceName != "cpm-percolate" {
			t.Errorf("ServiceName = %q", cfg.ServiceName)
		}
		if cfg.Protocol != "http/protobuf" {
			t.Errorf("Protocol = %q", cfg.Protocol)
		}
		if !cfg.Insecure {
			t.Error("expected Insecure=true")
		}
	})

	t.Run("headers parsing", func(t *testing.T) {
		os.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "Authorization=Bearer token123,X-Custom=value")
		defer os.Unsetenv("OTEL_EXPORTER_OTLP_HEADERS")

		cfg := LoadFromEnv()
		if cfg.Headers["Authorization"] != "Bearer token123" || cfg.Headers["X-Custom"] != "value" {
			t.Errorf("unexpected headers: %v", cfg.Headers)
		}
	})
}

func TestParseKeyValuePairs(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected map[string]string
	}{
		{"empty", "", map[string]string{}},
		{"single", "key=value", map[string]string{"key": "value"}},
		{"multiple", "key1=value1,key2=value2", map[string]string{"key1": "value1", "key2": "value2"}},
		{"with spaces", " key1 = value1 , key2 = value2 ", map[string]string{"key1": "value1", "key2": "value2"}},
		{"value with equals", "Authorization=Bearer token=abc", map[string]string{"Authorization": "Bearer token=abc"}},
		{"empty value", "key=", map[string]string{"key": ""}},
		{"invalid no equals", "invalid", map[string]string{}},
		{"mixed", "valid=value,invalid,another=test", map[string]string{"valid": "value", "another": "test"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseKeyValuePairs(tt.input)
			if len(got) != len(tt.expected) {
				t.Fatalf("got %d pairs, want %d", len(got), len(tt.expected))
			}
			for k, v := range tt.expected {
				if got[k] != v {
					t.Errorf("got[%q] = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}
