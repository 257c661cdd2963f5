package telemetry

import "testing"

func TestBuildResourceIncludesServiceNameAndRunID(t *testing.T) {
	cfg := &Config{ServiceName: "cpm", ServiceVersion: "test", ResourceAttrs: map[string]string{"env": "ci"}}
	res, err := buildResource(cfg, "run-123")
	if err != nil {
		t.Fatalf("buildResource: %v", err)
	}
	var gotService, gotRunID string
	for _, kv := range res.Attributes() {
		switch string(kv.Key) {
		case "service.name":
			gotService = kv.Value.AsString()
		case "cpm.run_id":
			gotRunID = kv.Value.AsString()
		}
	}
	if gotService != "cpm" {
		t.Errorf("service.name = %q, want %q", gotService, "cpm")
	}
	if gotRunID != "run-123" {
		t.Errorf("cpm.run_id = %q, want %q", gotRunID, "run-123")
	}
}

func TestResolveHostIPDoesNotPanic(t *testing.T) {
	_ = resolveHostIP()
}
