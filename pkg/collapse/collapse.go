package collapse

import (
	"cmp"
	"regexp"
	"slices"
	"strings"

	"github.com/matzehuels/fsdcheck/pkg/errors"
	"github.com/matzehuels/fsdcheck/pkg/graph"
)

// Mode selects how modules are grouped.
type Mode string

// Supported collapse modes.
const (
	ModeNone    Mode = "none"
	ModePattern Mode = "pattern"
	ModeDepth   Mode = "depth"
)

// ParseMode validates a mode name. The empty string selects ModeNone.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(s)); m {
	case "":
		return ModeNone, nil
	case ModeNone, ModePattern, ModeDepth:
		return m, nil
	default:
		return "", errors.New(errors.ErrCodeConfig, "unknown collapse mode %q (must be none, pattern or depth)", s)
	}
}

// Spec describes a collapse.
type Spec struct {
	Mode Mode

	// Pattern is the grouping expression for ModePattern. A module whose path
	// has a match starting at the beginning is grouped under the matched
	// prefix.
	Pattern string

	// Depth is the number of leading path segments kept for ModeDepth.
	Depth int
}

// Validate checks s and returns a CONFIG_INVALID or CONFIG_PATTERN
// error for unusable settings.
func (s Spec) Validate() error {
	_, err := s.keyFunc()
	return err
}

// keyFunc returns the function mapping a node id to its group id.
func (s Spec) keyFunc() (func(string) string, error) {
	mode, err := ParseMode(string(s.Mode))
	if err != nil {
		return nil, err
	}
	switch mode {
	case ModePattern:
		if s.Pattern == "" {
			return nil, errors.New(errors.ErrCodeConfig, "collapse: pattern mode requires a pattern")
		}
		re, err := errors.ValidatePattern("collapse", s.Pattern)
		if err != nil {
			return nil, err
		}
		return patternKey(re), nil
	case ModeDepth:
		if s.Depth < 1 {
			return nil, errors.New(errors.ErrCodeConfig, "collapse: depth must be at least 1, got %d", s.Depth)
		}
		return depthKey(s.Depth), nil
	default:
		return nil, nil
	}
}

func patternKey(re *regexp.Regexp) func(string) string {
	return func(id string) string {
		loc := re.FindStringIndex(id)
		if loc == nil || loc[0] != 0 || loc[1] == 0 {
			return id
		}
		return id[:loc[1]]
	}
}

func depthKey(depth int) func(string) string {
	return func(id string) string {
		parts := strings.Split(id, "/")
		if len(parts) <= depth {
			return id
		}
		return strings.Join(parts[:depth], "/")
	}
}

// Node is a node of a (possibly) collapsed view.
type Node struct {
	ID string

	// Members lists the module paths the node stands for, sorted.
	Members []string

	// Collapsed is true when the node stands for a folder rather than a
	// single module.
	Collapsed bool
}

// Edge aggregates the dependencies between two nodes.
type Edge struct {
	From string
	To   string

	// Valid is the conjunction of the member edges' validity; an unannotated
	// member counts as valid.
	Valid bool

	// Count is the number of underlying module edges.
	Count int
}

// View is the node-link structure handed to the theming engine. Nodes are
// sorted by id and edges by (from, to).
type View struct {
	Nodes []Node
	Edges []Edge
}

// Identity returns the uncollapsed view of g: one node per module and one
// edge per module pair. Edges between the same pair with different kinds are
// merged.
func Identity(g *graph.Graph) *View {
	v := &View{}
	for _, m := range g.Modules() {
		v.Nodes = append(v.Nodes, Node{ID: m, Members: []string{m}})
	}

	index := make(map[[2]string]int)
	for _, e := range g.SortedEdges() {
		k := [2]string{e.From, e.To}
		if i, ok := index[k]; ok {
			v.Edges[i].Valid = v.Edges[i].Valid && e.IsValid()
			v.Edges[i].Count++
			continue
		}
		index[k] = len(v.Edges)
		v.Edges = append(v.Edges, Edge{From: e.From, To: e.To, Valid: e.IsValid(), Count: 1})
	}
	return v
}

// Collapse groups the modules of g according to spec. It is equivalent to
// Identity(g).Collapse(spec).
func Collapse(g *graph.Graph, spec Spec) (*View, error) {
	return Identity(g).Collapse(spec)
}

// Collapse groups the nodes of v according to spec and returns a new view.
//
// Each group becomes one node whose members are the union of the grouped
// nodes' members. Edges inside a group are dropped; edges between groups are
// merged into one edge per ordered group pair that is valid only if every
// merged edge is valid. Collapsing a view twice with the same spec yields the
// same view.
func (v *View) Collapse(spec Spec) (*View, error) {
	key, err := spec.keyFunc()
	if err != nil {
		return nil, err
	}
	if key == nil {
		return v.clone(), nil
	}

	groups := make(map[string]*Node)
	owner := make(map[string]string, len(v.Nodes))
	for _, n := range v.Nodes {
		id := key(n.ID)
		owner[n.ID] = id
		grp, ok := groups[id]
		if !ok {
			grp = &Node{ID: id}
			groups[id] = grp
		}
		grp.Members = append(grp.Members, n.Members...)
		grp.Collapsed = grp.Collapsed || n.Collapsed || id != n.ID
	}

	out := &View{}
	for _, grp := range groups {
		slices.Sort(grp.Members)
		grp.Members = slices.Compact(grp.Members)
		if len(grp.Members) > 1 {
			grp.Collapsed = true
		}
		out.Nodes = append(out.Nodes, *grp)
	}
	slices.SortFunc(out.Nodes, func(a, b Node) int { return cmp.Compare(a.ID, b.ID) })

	merged := make(map[[2]string]*Edge)
	for _, e := range v.Edges {
		from, to := owner[e.From], owner[e.To]
		if from == to {
			continue
		}
		k := [2]string{from, to}
		if m, ok := merged[k]; ok {
			m.Valid = m.Valid && e.Valid
			m.Count += e.Count
			continue
		}
		merged[k] = &Edge{From: from, To: to, Valid: e.Valid, Count: e.Count}
	}
	for _, e := range merged {
		out.Edges = append(out.Edges, *e)
	}
	slices.SortFunc(out.Edges, compareEdges)
	return out, nil
}

// Node returns the node with the given id.
func (v *View) Node(id string) (Node, bool) {
	i, ok := slices.BinarySearchFunc(v.Nodes, id, func(n Node, id string) int { return cmp.Compare(n.ID, id) })
	if !ok {
		return Node{}, false
	}
	return v.Nodes[i], true
}

// InvalidEdges returns the number of invalid edges in the view.
func (v *View) InvalidEdges() int {
	n := 0
	for _, e := range v.Edges {
		if !e.Valid {
			n++
		}
	}
	return n
}

func (v *View) clone() *View {
	out := &View{
		Nodes: make([]Node, len(v.Nodes)),
		Edges: slices.Clone(v.Edges),
	}
	for i, n := range v.Nodes {
		n.Members = slices.Clone(n.Members)
		out.Nodes[i] = n
	}
	return out
}

func compareEdges(a, b Edge) int {
	return cmp.Or(cmp.Compare(a.From, b.From), cmp.Compare(a.To, b.To))
}

// fsdCollapseLayers lists the layers grouped by the Feature-Sliced Design
// collapse pattern, in the order of its alternatives.
var fsdCollapseLayers = []string{"app", "processes", "layouts", "pages", "widgets", "features", "entities", "shared"}

// FSDPattern returns the collapse pattern that groups a Feature-Sliced
// Design tree rooted at root into its slices (and, for app and shared, its
// segments), e.g. "^src/app/[^/]+|^src/processes/[^/]+|...".
func FSDPattern(root string) string {
	prefix := "^"
	if root = graph.CleanRoot(root); root != "" {
		prefix += regexp.QuoteMeta(root) + "/"
	}
	alts := make([]string, len(fsdCollapseLayers))
	for i, layer := range fsdCollapseLayers {
		alts[i] = prefix + layer + "/[^/]+"
	}
	return strings.Join(alts, "|")
}
