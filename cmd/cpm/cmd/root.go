// Package cmd wires the cpm binary's cobra commands, grounded on the
// teacher's cmd/cli/cmd package (root.go's PersistentPreRunE logger setup,
// analyze.go's flag layout and run-then-report shape).
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aaronmcdaid/cpm/pkg/cpmerrors"
)

var (
	kMin         int
	kMax         int
	stringIDs    bool
	rebuildBloom bool
	comments     bool
	configPath   string
	storageType  string
	storageBkt   string
	storageRgn   string
	dbDSN        string
	otelEnabled  bool
)

var rootCmd = &cobra.Command{
	Use:   "cpm <edge_list_path> <output_directory>",
	Short: "Clique percolation community detection",
	Long: `cpm finds k-clique-percolation communities in an undirected graph:
for each k from --kmin to --kmax it groups the graph's maximal cliques of
size >= k into communities, two cliques being adjacent whenever they share
at least k-1 nodes, and writes one file per level to the output directory.`,
	Args: cobra.ExactArgs(2),
	RunE: runPercolate,
}

// percolateCmd is the explicit form of the bare root command, kept for
// scripts that want to name the subcommand rather than rely on the
// backward-compatible bare-root shortcut.
var percolateCmd = &cobra.Command{
	Use:   "percolate <edge_list_path> <output_directory>",
	Short: "Run clique percolation (same as the bare root command)",
	Args:  cobra.ExactArgs(2),
	RunE:  runPercolate,
}

// Execute runs the root command, exiting with status 1 on any error
// (argument errors and cpmerrors.ErrNoCliquesAboveThreshold alike).
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.SilenceUsage = true
	rootCmd.AddCommand(percolateCmd)
	percolateCmd.SilenceUsage = true

	for _, c := range []*cobra.Command{rootCmd, percolateCmd} {
		c.Flags().IntVarP(&kMin, "kmin", "k", 0, "minimum clique/community size (required, >= 3)")
		c.Flags().IntVarP(&kMax, "kmax", "K", 0, "maximum clique/community size (default: largest clique size)")
		c.Flags().BoolVar(&stringIDs, "string-ids", false, "treat node tokens as arbitrary strings instead of integers")
		c.Flags().BoolVar(&rebuildBloom, "rebuild-bloom", false, "enable adaptive mid-source BloomTree rebuild")
		c.Flags().BoolVar(&comments, "comments", false, "emit a '# k\\tcount' comment header per level on stdout")
		c.Flags().StringVar(&configPath, "config", "", "optional viper config file (yaml/json/toml)")
		c.Flags().StringVar(&storageType, "storage", "", "output storage backend: local or cos (default: local)")
		c.Flags().StringVar(&storageBkt, "storage-bucket", "", "COS bucket name (storage=cos only)")
		c.Flags().StringVar(&storageRgn, "storage-region", "", "COS region (storage=cos only)")
		c.Flags().StringVar(&dbDSN, "db-dsn", "", "optional GORM DSN for the run ledger (sqlite file, postgres://, or mysql://)")
		c.Flags().BoolVar(&otelEnabled, "otel", false, "enable OpenTelemetry OTLP export (reads OTEL_* env vars)")
	}
}

func fail(format string, args ...interface{}) error {
	return cpmerrors.New(cpmerrors.CodeInvalidArgument, fmt.Sprintf(format, args...))
}
