package io

import (
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/fsdcheck/pkg/graph"
)

// Write encodes g in the native format. Validity annotations are included,
// so an evaluated graph can be exported and re-imported without losing them.
func Write(g *graph.Graph, w io.Writer) error {
	return graph.Write(g, w)
}

// ExportFile writes g in the native format to path.
func ExportFile(g *graph.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(g, f)
}
