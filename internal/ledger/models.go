package ledger

import "time"

// Run records one invocation of the percolation pipeline.
type Run struct {
	ID         int64      `gorm:"column:id;primaryKey;autoIncrement"`
	StartedAt  time.Time  `gorm:"column:started_at"`
	FinishedAt *time.Time `gorm:"column:finished_at"`
	GraphPath  string     `gorm:"column:graph_path;type:varchar(1024)"`
	NumNodes   int        `gorm:"column:num_nodes"`
	NumEdges   int        `gorm:"column:num_edges"`
	NumCliques int        `gorm:"column:num_cliques"`
	KMin       int        `gorm:"column:k_min"`
	KMax       int        `gorm:"column:k_max"`
	Status     string     `gorm:"column:status;type:varchar(32)"`
	Error      string     `gorm:"column:error;type:text"`
}

// TableName returns the table name for Run.
func (Run) TableName() string { return "cpm_runs" }

// LevelSummary records one percolation level (one value of k) of a run.
type LevelSummary struct {
	ID             int64 `gorm:"column:id;primaryKey;autoIncrement"`
	RunID          int64 `gorm:"column:run_id;index"`
	K              int   `gorm:"column:k"`
	NumCliques     int   `gorm:"column:num_cliques"`
	NumCommunities int   `gorm:"column:num_communities"`
}

// TableName returns the table name for LevelSummary.
func (LevelSummary) TableName() string { return "cpm_level_summaries" }
