package io

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/matzehuels/fsdcheck/pkg/errors"
	"github.com/matzehuels/fsdcheck/pkg/graph"
)

// Format identifies the layout of a graph document.
type Format string

// Supported input formats.
const (
	FormatAuto      Format = ""
	FormatNative    Format = "native"
	FormatDepcruise Format = "depcruise"
)

// ParseFormat validates a format name from the command line.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatAuto, "auto":
		return FormatAuto, nil
	case FormatNative, FormatDepcruise:
		return f, nil
	default:
		return FormatAuto, errors.New(errors.ErrCodeInvalidFormat, "unknown graph format %q (must be auto, native or depcruise)", s)
	}
}

// Options controls how graph documents are imported.
type Options struct {
	// Format forces a document layout. FormatAuto sniffs the first module.
	Format Format

	// IncludeOnly, when set, keeps only modules whose path matches the
	// expression. Edges touching dropped modules are dropped too.
	IncludeOnly string

	// SkipTypeOnly drops type-only imports, which vanish after compilation
	// and cannot create runtime coupling.
	SkipTypeOnly bool
}

// rawDocument captures the fields of both supported layouts so the format can be
// detected from a single decode.
type rawDocument struct {
	Modules []rawModule      `json:"modules"`
	Edges   []graph.EdgeJSON `json:"edges"`
}

type rawModule struct {
	Path         string             `json:"path"`
	Source       string             `json:"source"`
	Dependencies []cruiseDependency `json:"dependencies"`
}

// cruiseDependency is the subset of a dependency-cruiser dependency entry
// needed to rebuild the module graph.
type cruiseDependency struct {
	Resolved        string   `json:"resolved"`
	Dynamic         bool     `json:"dynamic"`
	DependencyTypes []string `json:"dependencyTypes"`
	CoreModule      bool     `json:"coreModule"`
	CouldNotResolve bool     `json:"couldNotResolve"`
}

// kind maps dependency-cruiser attributes onto a DependencyKind.
func (d cruiseDependency) kind() graph.DependencyKind {
	if slices.Contains(d.DependencyTypes, "type-only") || slices.Contains(d.DependencyTypes, "type-import") {
		return graph.KindTypeOnly
	}
	if d.Dynamic || slices.Contains(d.DependencyTypes, "dynamic-import") {
		return graph.KindDynamic
	}
	return graph.KindStatic
}

// Read decodes a graph document from r.
//
// Two layouts are accepted:
//
//   - native: {"modules":[{"path":..}], "edges":[{"from":..,"to":..,"kind":..}]}
//   - depcruise: dependency-cruiser's JSON reporter output, where each entry of
//     "modules" has a "source" and a list of resolved "dependencies".
//
// Read returns an INVALID_INPUT error for malformed documents, INVALID_PATH
// for unusable module identifiers, and UNKNOWN_MODULE when an edge refers to a
// module outside the module set. Dependencies that dependency-cruiser marks as
// core modules or could not resolve are not part of the source tree and are
// skipped.
func Read(r io.Reader, opts Options) (*graph.Graph, error) {
	var p rawDocument
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode graph document")
	}

	format := opts.Format
	if format == FormatAuto {
		format = detect(p)
	}

	var (
		g   *graph.Graph
		err error
	)
	switch format {
	case FormatNative:
		g, err = fromNative(p)
	case FormatDepcruise:
		g, err = fromDepcruise(p)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown graph format %q", format)
	}
	if err != nil {
		return nil, err
	}

	if opts.IncludeOnly != "" {
		re, err := errors.ValidatePattern("include_only", opts.IncludeOnly)
		if err != nil {
			return nil, err
		}
		g = g.Filter(re.MatchString)
	}
	if opts.SkipTypeOnly {
		g = g.FilterEdges(func(e graph.Edge) bool { return e.Kind != graph.KindTypeOnly })
	}
	return g, nil
}

// ReadBytes is a convenience wrapper around [Read] for in-memory documents.
func ReadBytes(data []byte, opts Options) (*graph.Graph, error) {
	return Read(bytes.NewReader(data), opts)
}

// ImportFile reads a graph document from path.
func ImportFile(path string, opts Options) (*graph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer f.Close()
	return Read(f, opts)
}

func detect(p rawDocument) Format {
	for _, m := range p.Modules {
		if m.Source != "" {
			return FormatDepcruise
		}
		if m.Path != "" {
			return FormatNative
		}
	}
	return FormatNative
}

func fromNative(p rawDocument) (*graph.Graph, error) {
	g := graph.New()
	for _, m := range p.Modules {
		if err := addModule(g, m.Path); err != nil {
			return nil, err
		}
	}
	for _, e := range p.Edges {
		if err := addEdge(g, graph.Edge{From: e.From, To: e.To, Kind: e.Kind, Valid: e.Valid}); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func fromDepcruise(p rawDocument) (*graph.Graph, error) {
	g := graph.New()
	for _, m := range p.Modules {
		if err := addModule(g, m.Source); err != nil {
			return nil, err
		}
	}
	for _, m := range p.Modules {
		for _, d := range m.Dependencies {
			if d.CoreModule || d.CouldNotResolve || d.Resolved == "" {
				continue
			}
			err := addEdge(g, graph.Edge{From: m.Source, To: d.Resolved, Kind: d.kind()})
			if err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}

func addModule(g *graph.Graph, path string) error {
	if err := errors.ValidateModulePath(path); err != nil {
		return err
	}
	if err := g.AddModule(graph.Module{Path: path}); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "module %q", path)
	}
	return nil
}

func addEdge(g *graph.Graph, e graph.Edge) error {
	err := g.AddEdge(e)
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, graph.ErrDuplicateEdge):
		// dependency-cruiser lists one entry per import statement
		return nil
	case stderrors.Is(err, graph.ErrUnknownSourceModule), stderrors.Is(err, graph.ErrUnknownTargetModule):
		return errors.Wrap(errors.ErrCodeUnknownModule, err, "edge %s -> %s", e.From, e.To)
	default:
		return fmt.Errorf("edge %s -> %s: %w", e.From, e.To, err)
	}
}
