// Command cpm-cliques enumerates the maximal cliques of an edge-list
// graph without running percolation, writing one clique per line
// (space-separated node names) to stdout and the total count to
// stderr. Grounded on the teacher's small single-purpose binaries
// (cmd/analyzer/main.go) and on original_source/cliques.cpp.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/aaronmcdaid/cpm/internal/clique"
	"github.com/aaronmcdaid/cpm/internal/graphio"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	fs := flag.NewFlagSet("cpm-cliques", flag.ExitOnError)
	kMin := fs.Int("k", 0, "minimum clique size (required, >= 3)")
	stringIDs := fs.Bool("string-ids", false, "treat node tokens as arbitrary strings")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: cpm-cliques <edge_list_path> -k N [--string-ids]\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(os.Args[1:]); err != nil {
		return err
	}
	// flag stops at the first positional argument; resume after it so the
	// flags may follow the edge-list path, as in the usage line.
	var positional []string
	for fs.NArg() > 0 {
		positional = append(positional, fs.Arg(0))
		if err := fs.Parse(fs.Args()[1:]); err != nil {
			return err
		}
	}
	if len(positional) != 1 {
		fs.Usage()
		return fmt.Errorf("expected exactly one positional argument, got %d", len(positional))
	}
	if *kMin < 3 {
		return fmt.Errorf("-k must be >= 3 (got %d)", *kMin)
	}

	g, names, err := graphio.Load(positional[0], graphio.Options{StringIDs: *stringIDs})
	if err != nil {
		return err
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	count := 0
	err = clique.Enumerate(g, *kMin, func(c clique.Clique) {
		count++
		tokens := make([]string, len(c))
		for i, id := range c {
			tokens[i] = names.Name(id)
		}
		fmt.Fprintln(out, strings.Join(tokens, " "))
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "%d maximal cliques of size >= %d\n", count, *kMin)
	return nil
}
