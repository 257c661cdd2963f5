// Package ledger provides an optional, best-effort run ledger backed by
// GORM. It persists one Run row per pipeline invocation and one
// LevelSummary row per percolation level, for later inspection; it is
// never required for correctness and a ledger failure is never fatal.
// Grounded on the teacher's internal/repository (NewGormDB dialector
// selection and GORM repository style).
package ledger

import (
	"context"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/aaronmcdaid/cpm/pkg/cpmerrors"
	"github.com/aaronmcdaid/cpm/pkg/cpmlog"
	"github.com/aaronmcdaid/cpm/pkg/telemetry"
)

// Open opens a GORM connection against dsn and migrates the ledger
// schema. The driver is chosen from the DSN's prefix:
// "postgres://"/"postgresql://" selects Postgres, "mysql://" selects
// MySQL (the scheme is stripped before the DSN reaches the driver),
// and anything else is treated as a sqlite file path (including
// ":memory:").
func Open(dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		dialector = postgres.Open(dsn)
	case strings.HasPrefix(dsn, "mysql://"):
		dialector = mysql.Open(strings.TrimPrefix(dsn, "mysql://"))
	default:
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, cpmerrors.Wrap(cpmerrors.CodeLedgerError, "open ledger database", err)
	}

	if telemetry.Enabled() {
		if err := db.Use(tracing.NewPlugin()); err != nil {
			return nil, cpmerrors.Wrap(cpmerrors.CodeLedgerError, "enable ledger telemetry", err)
		}
	}

	if err := db.AutoMigrate(&Run{}, &LevelSummary{}); err != nil {
		return nil, cpmerrors.Wrap(cpmerrors.CodeLedgerError, "migrate ledger schema", err)
	}

	return db, nil
}

// Ledger records pipeline runs and per-level summaries. Every method
// swallows its own errors after logging a warning: the ledger is
// observability, and a database hiccup must never abort a run whose
// algorithmic result is otherwise complete and correct.
type Ledger struct {
	db  *gorm.DB
	log cpmlog.Logger
}

// New wraps db (as returned by Open) in a Ledger that logs its warnings
// through log. A nil log falls back to cpmlog.NopLogger.
func New(db *gorm.DB, log cpmlog.Logger) *Ledger {
	if log == nil {
		log = cpmlog.NopLogger{}
	}
	return &Ledger{db: db, log: log}
}

// StartRun inserts a Run row with status "running" and returns its ID.
// It returns 0 if the insert failed; callers pass that 0 straight
// through to FinishRun/RecordLevel, which treat it as "no-op, ledger
// unavailable."
func (l *Ledger) StartRun(ctx context.Context, graphPath string, kMin, kMax, numNodes, numEdges, numCliques int) int64 {
	run := &Run{
		StartedAt:  time.Now(),
		GraphPath:  graphPath,
		KMin:       kMin,
		KMax:       kMax,
		NumNodes:   numNodes,
		NumEdges:   numEdges,
		NumCliques: numCliques,
		Status:     "running",
	}
	if err := l.db.WithContext(ctx).Create(run).Error; err != nil {
		l.log.Warn("ledger: failed to record run start: %v", err)
		return 0
	}
	return run.ID
}

// RecordLevel inserts a LevelSummary row for one percolation level. A
// zero runID (ledger unavailable, or StartRun failed) is a silent no-op.
func (l *Ledger) RecordLevel(ctx context.Context, runID int64, k, numCliques, numCommunities int) {
	if runID == 0 {
		return
	}
	row := &LevelSummary{
		RunID:          runID,
		K:              k,
		NumCliques:     numCliques,
		NumCommunities: numCommunities,
	}
	if err := l.db.WithContext(ctx).Create(row).Error; err != nil {
		l.log.Warn("ledger: failed to record level %d summary: %v", k, err)
	}
}

// FinishRun marks a Run row completed (or failed, if runErr != nil). A
// zero runID is a silent no-op.
func (l *Ledger) FinishRun(ctx context.Context, runID int64, runErr error) {
	if runID == 0 {
		return
	}
	now := time.Now()
	updates := map[string]interface{}{
		"finished_at": &now,
		"status":      "completed",
	}
	if runErr != nil {
		updates["status"] = "failed"
		updates["error"] = runErr.Error()
	}
	if err := l.db.WithContext(ctx).Model(&Run{}).Where("id = ?", runID).Updates(updates).Error; err != nil {
		l.log.Warn("ledger: failed to finalize run %d: %v", runID, err)
	}
}
