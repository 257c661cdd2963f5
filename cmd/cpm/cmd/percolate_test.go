package cmd

import (
	"testing"

	"github.com/aaronmcdaid/cpm/pkg/cpmconfig"
	"github.com/aaronmcdaid/cpm/pkg/cpmerrors"
)

func TestApplyFlagOverrides(t *testing.T) {
	orig := storageType
	origBkt := storageBkt
	origDSN := dbDSN
	origOtel := otelEnabled
	defer func() {
		storageType, storageBkt, dbDSN, otelEnabled = orig, origBkt, origDSN, origOtel
	}()

	storageType = "cos"
	storageBkt = "my-bucket"
	dbDSN = "file::memory:"
	otelEnabled = true

	cfg := &cpmconfig.Config{}
	applyFlagOverrides(cfg)

	if cfg.Storage.Type != "cos" {
		t.Errorf("Storage.Type = %q, want cos", cfg.Storage.Type)
	}
	if cfg.Storage.Bucket != "my-bucket" {
		t.Errorf("Storage.Bucket = %q, want my-bucket", cfg.Storage.Bucket)
	}
	if cfg.Database.DSN != "file::memory:" {
		t.Errorf("Database.DSN = %q", cfg.Database.DSN)
	}
	if !cfg.Telemetry.Enabled {
		t.Error("expected Telemetry.Enabled = true")
	}
}

func TestApplyFlagOverridesLeavesDefaultsWhenUnset(t *testing.T) {
	orig := storageType
	origBkt := storageBkt
	origRgn := storageRgn
	origDSN := dbDSN
	origOtel := otelEnabled
	defer func() {
		storageType, storageBkt, storageRgn, dbDSN, otelEnabled = orig, origBkt, origRgn, origDSN, origOtel
	}()
	storageType, storageBkt, storageRgn, dbDSN, otelEnabled = "", "", "", "", false

	cfg := &cpmconfig.Config{}
	cfg.Storage.Type = "local"
	applyFlagOverrides(cfg)

	if cfg.Storage.Type != "local" {
		t.Errorf("Storage.Type = %q, want unchanged local", cfg.Storage.Type)
	}
	if cfg.Database.DSN != "" {
		t.Errorf("Database.DSN = %q, want empty", cfg.Database.DSN)
	}
}

func TestVmSizeDoesNotPanic(t *testing.T) {
	_ = vmSize()
}

func TestFailWrapsInvalidArgument(t *testing.T) {
	err := fail("bad value %d", 3)
	if err == nil {
		t.Fatal("expected non-nil error")
	}
	if got := err.Error(); got == "" {
		t.Fatal("expected non-empty error message")
	}
	if !cpmerrors.IsInvalidArgument(err) {
		t.Fatalf("err = %v, want InvalidArgument", err)
	}
}
