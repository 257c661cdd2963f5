// Package graphio parses the edge-list text format into a graph.Graph
// plus a reverse node-name lookup table, grounded on the original
// graph/loading.cpp three-pass loader (condensed here to a single pass
// since Go slices/maps make the intermediate sets cheap to build
// incrementally rather than via a dedicated first and second pass).
package graphio

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/aaronmcdaid/cpm/internal/graph"
	"github.com/aaronmcdaid/cpm/pkg/cpmerrors"
)

// NameTable maps a graph.Graph's dense node ids back to the original
// edge-list token (an integer rendered as a string, or a literal string
// token in string-id mode).
type NameTable struct {
	names []string
}

// Name returns the original token for node id.
func (n *NameTable) Name(id int32) string { return n.names[id] }

// Len returns the number of distinct node names.
func (n *NameTable) Len() int { return len(n.names) }

// Options configures how edge-list tokens are interpreted as node ids.
type Options struct {
	// StringIDs treats tokens as arbitrary strings, interned and sorted
	// lexicographically. When false, tokens must parse as non-negative
	// int64s and are sorted numerically.
	StringIDs bool
}

type rawEdge struct{ a, b string }

// Load reads the edge-list file at path and returns the resulting graph
// together with the table needed to translate node ids back to their
// original names.
func Load(path string, opts Options) (*graph.Graph, *NameTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, cpmerrors.Wrap(cpmerrors.CodeInvalidArgument, "opening edge list file", err)
	}
	defer f.Close()

	var rawEdges []rawEdge
	seen := map[string]struct{}{}
	var names []string

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		tokens := splitTokens(line)
		if len(tokens) < 2 {
			return nil, nil, cpmerrors.Wrap(cpmerrors.CodeBadlyFormattedLine,
				fmt.Sprintf("line %d: expected at least two fields, got %d", lineNo, len(tokens)), nil)
		}
		a, b := tokens[0], tokens[1]
		if a == b {
			return nil, nil, cpmerrors.New(cpmerrors.CodeSelfLoopRejected,
				fmt.Sprintf("line %d: self-loop at node %q", lineNo, a))
		}
		for _, tok := range [2]string{a, b} {
			if _, ok := seen[tok]; !ok {
				seen[tok] = struct{}{}
				names = append(names, tok)
			}
		}
		rawEdges = append(rawEdges, rawEdge{a, b})
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, cpmerrors.Wrap(cpmerrors.CodeInvalidArgument, "reading edge list", err)
	}

	if !opts.StringIDs {
		for _, name := range names {
			id, err := strconv.ParseInt(name, 10, 64)
			if err != nil {
				return nil, nil, cpmerrors.Wrap(cpmerrors.CodeInvalidArgument,
					fmt.Sprintf("non-numeric node token %q (pass --string-ids to allow this)", name), err)
			}
			if id < 0 {
				return nil, nil, cpmerrors.New(cpmerrors.CodeInvalidArgument,
					fmt.Sprintf("negative node token %q (pass --string-ids to allow this)", name))
			}
		}
		sort.Slice(names, func(i, j int) bool {
			vi, _ := strconv.ParseInt(names[i], 10, 64)
			vj, _ := strconv.ParseInt(names[j], 10, 64)
			return vi < vj
		})
	} else {
		sort.Strings(names)
	}

	index := make(map[string]int32, len(names))
	for i, name := range names {
		index[name] = int32(i)
	}

	edges := make([]graph.Edge, 0, len(rawEdges))
	for _, re := range rawEdges {
		edges = append(edges, graph.Edge{Lo: index[re.a], Hi: index[re.b]})
	}

	g, err := graph.New(len(names), edges)
	if err != nil {
		return nil, nil, err
	}
	return g, &NameTable{names: names}, nil
}

func splitTokens(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ',' || r == '|'
	})
}
