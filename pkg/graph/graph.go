package graph

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// Wire Types
// =============================================================================

// Document is the canonical serialization format for module graphs.
// Used for graph files, API requests, caching and report storage.
//
// Modules are sorted by path and edges by (from, to, kind) on export so the
// encoded form of a graph is deterministic.
type Document struct {
	Modules []ModuleJSON `json:"modules" bson:"modules"`
	Edges   []EdgeJSON   `json:"edges" bson:"edges"`
}

// ModuleJSON is the serialized form of a Module.
type ModuleJSON struct {
	Path string `json:"path" bson:"path"`
}

// EdgeJSON is the serialized form of an Edge.
type EdgeJSON struct {
	From  string         `json:"from" bson:"from"`
	To    string         `json:"to" bson:"to"`
	Kind  DependencyKind `json:"kind,omitempty" bson:"kind,omitempty"`
	Valid *bool          `json:"valid,omitempty" bson:"valid,omitempty"`
}

// =============================================================================
// Conversion
// =============================================================================

// ToDocument converts a Graph to its serialization format.
func ToDocument(g *Graph) Document {
	doc := Document{
		Modules: make([]ModuleJSON, 0, g.ModuleCount()),
		Edges:   make([]EdgeJSON, 0, g.EdgeCount()),
	}
	for _, path := range g.Modules() {
		doc.Modules = append(doc.Modules, ModuleJSON{Path: path})
	}
	for _, e := range g.SortedEdges() {
		doc.Edges = append(doc.Edges, EdgeJSON{From: e.From, To: e.To, Kind: e.Kind, Valid: e.Valid})
	}
	return doc
}

// FromDocument builds a Graph from its serialization format.
// Errors are wrapped with the offending module or edge; use errors.Is with
// the package sentinels to classify them.
func FromDocument(doc Document) (*Graph, error) {
	g := New()
	for _, m := range doc.Modules {
		if err := g.AddModule(Module{Path: m.Path}); err != nil {
			return nil, fmt.Errorf("module %q: %w", m.Path, err)
		}
	}
	for _, e := range doc.Edges {
		edge := Edge{From: e.From, To: e.To, Kind: e.Kind, Valid: e.Valid}
		if err := g.AddEdge(edge); err != nil {
			return nil, fmt.Errorf("edge %s -> %s: %w", e.From, e.To, err)
		}
	}
	return g, nil
}

// =============================================================================
// Serialization API
// =============================================================================

// Marshal converts a Graph to indented JSON bytes.
func Marshal(g *Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write encodes a Graph as JSON to w.
func Write(g *Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ToDocument(g)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteFile writes a Graph to a JSON file.
func WriteFile(g *Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(g, f)
}

// Read decodes a JSON graph document from r.
func Read(r io.Reader) (*Graph, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return FromDocument(doc)
}

// Hash returns a SHA-256 content hash of the graph structure. Annotations are
// ignored and the result does not depend on insertion order.
func Hash(g *Graph) string {
	h := sha256.New()
	for _, path := range g.Modules() {
		fmt.Fprintf(h, "m\x00%s\n", path)
	}
	for _, e := range g.SortedEdges() {
		fmt.Fprintf(h, "e\x00%s\x00%s\x00%s\n", e.From, e.To, e.Kind)
	}
	return hex.EncodeToString(h.Sum(nil))
}
