// Package output writes each percolation level's communities to storage,
// one file per level named comm<k>, translating clique-id membership
// back to node names via the graphio.NameTable.
package output

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/aaronmcdaid/cpm/internal/clique"
	"github.com/aaronmcdaid/cpm/internal/graphio"
	"github.com/aaronmcdaid/cpm/internal/percolation"
	"github.com/aaronmcdaid/cpm/internal/storage"
)

// Writer renders LevelResults to storage.
type Writer struct {
	sink  storage.Storage
	names *graphio.NameTable
}

// New builds a Writer that resolves node names via names and persists
// through sink.
func New(sink storage.Storage, names *graphio.NameTable) *Writer {
	return &Writer{sink: sink, names: names}
}

// WriteLevel collects the node-id union of every community in result,
// resolves names, and writes dir/comm<k>, one space-separated line per
// community. The write fully overwrites any file left by a prior run.
func (w *Writer) WriteLevel(ctx context.Context, dir string, result percolation.LevelResult, cliques clique.Set) error {
	var buf bytes.Buffer
	for _, community := range result.Communities {
		nodes := nodeUnion(cliques, community)
		for i, n := range nodes {
			if i > 0 {
				buf.WriteByte(' ')
			}
			buf.WriteString(w.names.Name(n))
		}
		buf.WriteByte('\n')
	}

	key := fmt.Sprintf("comm%d", result.K)
	if dir != "" {
		key = fmt.Sprintf("%s/%s", dir, key)
	}
	return w.sink.Upload(ctx, key, &buf)
}

func nodeUnion(cliques clique.Set, community []int32) []int32 {
	seen := map[int32]struct{}{}
	var nodes []int32
	for _, cid := range community {
		for _, n := range cliques[cid] {
			if _, ok := seen[n]; !ok {
				seen[n] = struct{}{}
				nodes = append(nodes, n)
			}
		}
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i] < nodes[j] })
	return nodes
}
