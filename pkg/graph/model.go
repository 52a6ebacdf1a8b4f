package graph

import (
	"cmp"
	"errors"
	"fmt"
	"maps"
	"slices"
)

var (
	// ErrInvalidModulePath is returned by [Graph.AddModule] when the path is empty.
	ErrInvalidModulePath = errors.New("module path must not be empty")

	// ErrDuplicateModule is returned by [Graph.AddModule] when a module with the
	// same path already exists. Module paths are unique within a graph.
	ErrDuplicateModule = errors.New("duplicate module")

	// ErrUnknownSourceModule is returned by [Graph.AddEdge] and [Graph.Validate]
	// when the edge's From module is not part of the module set.
	ErrUnknownSourceModule = errors.New("unknown source module")

	// ErrUnknownTargetModule is returned by [Graph.AddEdge] and [Graph.Validate]
	// when the edge's To module is not part of the module set.
	ErrUnknownTargetModule = errors.New("unknown target module")

	// ErrDuplicateEdge is returned by [Graph.AddEdge] when an edge with the same
	// endpoints and the same dependency kind already exists.
	ErrDuplicateEdge = errors.New("duplicate edge")
)

// DependencyKind distinguishes how one module depends on another.
type DependencyKind int

const (
	// KindStatic is a regular import resolved at load time.
	KindStatic DependencyKind = iota
	// KindDynamic is a lazily evaluated import (e.g. import()).
	KindDynamic
	// KindTypeOnly is an import that only carries type information.
	KindTypeOnly
)

var kindNames = map[DependencyKind]string{
	KindStatic:   "static",
	KindDynamic:  "dynamic",
	KindTypeOnly: "type-only",
}

// String returns the textual form used in graph documents.
func (k DependencyKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("DependencyKind(%d)", int(k))
}

// ParseDependencyKind converts the textual form back to a DependencyKind.
// The empty string is accepted as static.
func ParseDependencyKind(s string) (DependencyKind, error) {
	if s == "" {
		return KindStatic, nil
	}
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return KindStatic, fmt.Errorf("unknown dependency kind %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k DependencyKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *DependencyKind) UnmarshalText(b []byte) error {
	parsed, err := ParseDependencyKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Module is a node in the dependency graph, identified by its path relative to
// the analysed source tree (e.g. "src/features/auth/index.ts").
type Module struct {
	Path string
}

// Edge is a directed dependency from one module to another.
//
// Valid is nil until the rule engine annotates the edge. After evaluation it
// points to false iff the edge is caught by at least one error-severity rule.
type Edge struct {
	From  string
	To    string
	Kind  DependencyKind
	Valid *bool
}

// IsValid reports the validity flag, treating an unset flag as valid.
func (e Edge) IsValid() bool { return e.Valid == nil || *e.Valid }

// SetValid annotates the edge with a validity flag.
func (e *Edge) SetValid(v bool) { e.Valid = &v }

// key identifies an edge independent of its annotation.
func (e Edge) key() edgeKey { return edgeKey{e.From, e.To, e.Kind} }

type edgeKey struct {
	from, to string
	kind     DependencyKind
}

// CompareEdges orders edges by from path, to path and kind.
func CompareEdges(a, b Edge) int {
	return cmp.Or(
		cmp.Compare(a.From, b.From),
		cmp.Compare(a.To, b.To),
		cmp.Compare(a.Kind, b.Kind),
	)
}

// Graph is the module dependency graph supplied by an external graph builder.
// Unlike a DAG it may contain cycles; detecting them is the rule engine's job.
//
// The zero value is not usable - use New to create a Graph.
// Graph is not safe for concurrent mutation; concurrent reads are safe.
type Graph struct {
	modules  map[string]*Module
	edges    []Edge
	index    map[edgeKey]int
	outgoing map[string][]string
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		modules:  make(map[string]*Module),
		index:    make(map[edgeKey]int),
		outgoing: make(map[string][]string),
	}
}

// AddModule adds a module to the module set.
// Returns ErrInvalidModulePath for an empty path and ErrDuplicateModule if the
// path is already present.
func (g *Graph) AddModule(m Module) error {
	if m.Path == "" {
		return ErrInvalidModulePath
	}
	if _, exists := g.modules[m.Path]; exists {
		return ErrDuplicateModule
	}
	g.modules[m.Path] = &m
	return nil
}

// AddEdge adds a directed edge between two existing modules.
// Returns ErrUnknownSourceModule or ErrUnknownTargetModule if an endpoint is
// missing, and ErrDuplicateEdge if the same (from, to, kind) edge exists.
// Edges between the same pair with different kinds are distinct.
func (g *Graph) AddEdge(e Edge) error {
	if _, ok := g.modules[e.From]; !ok {
		return ErrUnknownSourceModule
	}
	if _, ok := g.modules[e.To]; !ok {
		return ErrUnknownTargetModule
	}
	k := e.key()
	if _, exists := g.index[k]; exists {
		return ErrDuplicateEdge
	}
	g.index[k] = len(g.edges)
	g.edges = append(g.edges, e)
	if !slices.Contains(g.outgoing[e.From], e.To) {
		g.outgoing[e.From] = append(g.outgoing[e.From], e.To)
	}
	return nil
}

// HasModule reports whether path is part of the module set.
func (g *Graph) HasModule(path string) bool {
	_, ok := g.modules[path]
	return ok
}

// Modules returns all module paths sorted ascending.
func (g *Graph) Modules() []string {
	return slices.Sorted(maps.Keys(g.modules))
}

// Edges returns a copy of all edges in insertion order.
// Modifications to the returned slice do not affect the graph.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// SortedEdges returns a copy of all edges ordered by [CompareEdges].
func (g *Graph) SortedEdges() []Edge {
	edges := g.Edges()
	slices.SortFunc(edges, CompareEdges)
	return edges
}

// ModuleCount returns the number of modules.
func (g *Graph) ModuleCount() int { return len(g.modules) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Successors returns the distinct targets of edges leaving path, sorted.
// Returns nil if the module has no outgoing edges or does not exist.
func (g *Graph) Successors(path string) []string {
	out := g.outgoing[path]
	if len(out) == 0 {
		return nil
	}
	return slices.Sorted(slices.Values(out))
}

// Annotate sets the validity flag of every edge between from and to,
// regardless of dependency kind. It returns the number of edges updated.
func (g *Graph) Annotate(from, to string, valid bool) int {
	n := 0
	for i := range g.edges {
		if g.edges[i].From == from && g.edges[i].To == to {
			g.edges[i].SetValid(valid)
			n++
		}
	}
	return n
}

// SetEdgeValidity sets the validity flag of the exact edge e (matched by
// endpoints and kind). It reports whether the edge was found.
func (g *Graph) SetEdgeValidity(e Edge, valid bool) bool {
	i, ok := g.index[e.key()]
	if !ok {
		return false
	}
	g.edges[i].SetValid(valid)
	return true
}

// Clone returns a deep copy of the graph, including edge annotations.
func (g *Graph) Clone() *Graph {
	c := New()
	for path := range g.modules {
		c.modules[path] = &Module{Path: path}
	}
	c.edges = make([]Edge, len(g.edges))
	for i, e := range g.edges {
		if e.Valid != nil {
			v := *e.Valid
			e.Valid = &v
		}
		c.edges[i] = e
	}
	maps.Copy(c.index, g.index)
	for k, v := range g.outgoing {
		c.outgoing[k] = slices.Clone(v)
	}
	return c
}

// Validate checks that every edge endpoint exists in the module set.
// Graphs built through AddEdge always satisfy this; it guards graphs whose
// module set was filtered after construction.
func (g *Graph) Validate() error {
	for _, e := range g.edges {
		if _, ok := g.modules[e.From]; !ok {
			return fmt.Errorf("edge %s -> %s: %w", e.From, e.To, ErrUnknownSourceModule)
		}
		if _, ok := g.modules[e.To]; !ok {
			return fmt.Errorf("edge %s -> %s: %w", e.From, e.To, ErrUnknownTargetModule)
		}
	}
	return nil
}

// Filter returns a new graph containing only modules for which keep returns
// true, together with the edges between them.
func (g *Graph) Filter(keep func(path string) bool) *Graph {
	out := New()
	for _, path := range g.Modules() {
		if keep(path) {
			_ = out.AddModule(Module{Path: path})
		}
	}
	for _, e := range g.edges {
		if out.HasModule(e.From) && out.HasModule(e.To) {
			_ = out.AddEdge(e)
		}
	}
	return out
}

// FilterEdges returns a new graph with the same module set and only the edges
// for which keep returns true.
func (g *Graph) FilterEdges(keep func(e Edge) bool) *Graph {
	out := New()
	for path := range g.modules {
		out.modules[path] = &Module{Path: path}
	}
	for _, e := range g.edges {
		if keep(e) {
			_ = out.AddEdge(e)
		}
	}
	return out
}
