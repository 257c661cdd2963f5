package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/aaronmcdaid/cpm/internal/clique"
	"github.com/aaronmcdaid/cpm/internal/graphio"
	"github.com/aaronmcdaid/cpm/internal/ledger"
	"github.com/aaronmcdaid/cpm/internal/output"
	"github.com/aaronmcdaid/cpm/internal/percolation"
	"github.com/aaronmcdaid/cpm/internal/storage"
	"github.com/aaronmcdaid/cpm/pkg/cpmconfig"
	"github.com/aaronmcdaid/cpm/pkg/cpmerrors"
	"github.com/aaronmcdaid/cpm/pkg/cpmlog"
	"github.com/aaronmcdaid/cpm/pkg/telemetry"
)

func runPercolate(cmd *cobra.Command, args []string) error {
	edgeListPath, outputDir := args[0], args[1]

	if kMin < 3 {
		return fail("--kmin must be >= 3 (got %d)", kMin)
	}
	if _, err := os.Stat(edgeListPath); os.IsNotExist(err) {
		return fail("edge list file not found: %s", edgeListPath)
	}

	cfg, err := cpmconfig.Load(configPath)
	if err != nil {
		return err
	}
	applyFlagOverrides(cfg)

	log := buildLogger(cfg)

	if mem := vmSize(); mem != "" {
		log.Debug("startup memory: %s", mem)
	}

	ctx := context.Background()

	var tracer trace.Tracer
	var meter metric.Meter
	if cfg.Telemetry.Enabled {
		os.Setenv("OTEL_ENABLED", "true")
		t, m, shutdown, err := telemetry.Init(ctx)
		if err != nil {
			return err
		}
		defer shutdown(ctx)
		tracer, meter = t, m
	}

	return runPipeline(ctx, cfg, log, edgeListPath, outputDir, tracer, meter)
}

func runPipeline(ctx context.Context, cfg *cpmconfig.Config, log cpmlog.Logger, edgeListPath, outputDir string, tracer trace.Tracer, meter metric.Meter) error {
	g, names, err := graphio.Load(edgeListPath, graphio.Options{StringIDs: stringIDs})
	if err != nil {
		return err
	}
	log.Info("loaded graph: %d nodes, %d edges", g.NumNodes(), g.NumEdges())

	cliques, err := clique.ToSet(g, kMin)
	if err != nil {
		return err
	}
	log.Info("enumerated %d maximal cliques of size >= %d", len(cliques), kMin)

	sink, err := storage.New(storage.Config{
		Type:      storage.Type(cfg.Storage.Type),
		LocalPath: outputDir,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		SecretID:  cfg.Storage.SecretID,
		SecretKey: cfg.Storage.SecretKey,
		Domain:    cfg.Storage.Domain,
		Scheme:    cfg.Storage.Scheme,
	})
	if err != nil {
		return err
	}
	writer := output.New(sink, names)

	var led *ledger.Ledger
	var runID int64
	if cfg.Database.DSN != "" {
		db, err := ledger.Open(cfg.Database.DSN)
		if err != nil {
			log.Warn("ledger unavailable: %v", err)
		} else {
			led = ledger.New(db, log)
			runID = led.StartRun(ctx, edgeListPath, kMin, kMax, g.NumNodes(), g.NumEdges(), len(cliques))
		}
	}

	opts := percolation.Options{
		KMin:         kMin,
		KMax:         kMax,
		RebuildBloom: rebuildBloom || cfg.Percolation.RebuildBloom,
		BloomBits:    cfg.Percolation.BloomBits,
		Logger:       log,
		Tracer:       tracer,
		Meter:        meter,
	}

	engine := percolation.NewEngine(cliques, opts)
	runErr := engine.Run(ctx, func(result percolation.LevelResult) error {
		if comments {
			fmt.Printf("# %d\t%d\n", result.K, len(result.Communities))
		}
		if led != nil {
			led.RecordLevel(ctx, runID, result.K, len(cliques), len(result.Communities))
		}
		return writer.WriteLevel(ctx, "", result, cliques)
	})

	if led != nil {
		led.FinishRun(ctx, runID, runErr)
	}

	if runErr != nil {
		if cpmerrors.IsNoCliquesAboveThreshold(runErr) {
			log.Warn("%v", runErr)
		}
		return runErr
	}

	log.Info("done; output written to %s", outputDir)
	return nil
}

func applyFlagOverrides(cfg *cpmconfig.Config) {
	if storageType != "" {
		cfg.Storage.Type = storageType
	}
	if storageBkt != "" {
		cfg.Storage.Bucket = storageBkt
	}
	if storageRgn != "" {
		cfg.Storage.Region = storageRgn
	}
	if dbDSN != "" {
		cfg.Database.DSN = dbDSN
	}
	if otelEnabled {
		cfg.Telemetry.Enabled = true
	}
}

func buildLogger(cfg *cpmconfig.Config) cpmlog.Logger {
	level := cpmlog.ParseLevel(cfg.Log.Level)
	if cfg.Log.OutputPath != "" {
		if l, err := cpmlog.NewFileLogger(level, cfg.Log.OutputPath); err == nil {
			return l
		}
	}
	return cpmlog.NewDefaultLogger(level, os.Stderr)
}
