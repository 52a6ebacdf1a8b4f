package theme

import (
	"fmt"
	"maps"
	"regexp"
	"strings"

	"github.com/matzehuels/fsdcheck/pkg/collapse"
	"github.com/matzehuels/fsdcheck/pkg/graph"
	"github.com/matzehuels/fsdcheck/pkg/render/nodelink"
)

// StyleRule assigns Attributes to every element matched by Criteria.
type StyleRule struct {
	Criteria   Criteria
	Attributes nodelink.Attrs
}

// Theme is an ordered list of style rules for nodes (Modules) and edges
// (Dependencies), plus graph-wide and default attributes.
type Theme struct {
	Modules      []StyleRule
	Dependencies []StyleRule
	Graph        nodelink.Attrs
	Node         nodelink.Attrs
	Edge         nodelink.Attrs
}

type compiledRule struct {
	match predicate
	attrs nodelink.Attrs
}

// Validate compiles every criterion and reports the first invalid pattern as
// a CONFIG_PATTERN error.
func (t *Theme) Validate() error {
	_, _, err := t.compile()
	return err
}

func (t *Theme) compile() (modules, deps []compiledRule, err error) {
	for i, r := range t.Modules {
		p, err := compile(fmt.Sprintf("theme.modules[%d]", i), r.Criteria)
		if err != nil {
			return nil, nil, err
		}
		modules = append(modules, compiledRule{p, r.Attributes})
	}
	for i, r := range t.Dependencies {
		p, err := compile(fmt.Sprintf("theme.dependencies[%d]", i), r.Criteria)
		if err != nil {
			return nil, nil, err
		}
		deps = append(deps, compiledRule{p, r.Attributes})
	}
	return modules, deps, nil
}

// merge applies every matching rule in order. Later rules overwrite the keys
// they set; rules that do not match leave earlier attributes untouched.
func merge(rules []compiledRule, s subject) nodelink.Attrs {
	attrs := nodelink.Attrs{}
	for _, r := range rules {
		if r.match(s) {
			maps.Copy(attrs, r.attrs)
		}
	}
	return attrs
}

// Apply styles a view. It only decorates: the nodes and edges of the
// description are exactly those of the view, in the same order.
//
// Each node is labelled with its path relative to the layout root and grouped
// by its layer, which the DOT writer can draw as clusters.
func Apply(t *Theme, v *collapse.View, layout graph.Layout) (*nodelink.Description, error) {
	modules, deps, err := t.compile()
	if err != nil {
		return nil, err
	}

	collapsed := make(map[string]bool, len(v.Nodes))
	for _, n := range v.Nodes {
		collapsed[n.ID] = n.Collapsed
	}
	invalidFrom := make(map[string]bool)
	for _, e := range v.Edges {
		if !e.Valid {
			invalidFrom[e.From] = true
		}
	}

	d := &nodelink.Description{
		Graph: maps.Clone(t.Graph),
		Node:  maps.Clone(t.Node),
		Edge:  maps.Clone(t.Edge),
	}
	for _, n := range v.Nodes {
		s := subject{id: n.ID, collapsed: n.Collapsed, valid: !invalidFrom[n.ID]}
		d.Nodes = append(d.Nodes, nodelink.Node{
			ID:    n.ID,
			Label: label(n.ID, layout.Root),
			Group: layout.Layer(n.ID),
			Attrs: merge(modules, s),
		})
	}
	for _, e := range v.Edges {
		s := subject{
			id:        e.From,
			target:    e.To,
			edge:      true,
			collapsed: collapsed[e.From] || collapsed[e.To],
			valid:     e.Valid,
		}
		attrs := merge(deps, s)
		if e.Count > 1 {
			if _, ok := attrs["tooltip"]; !ok {
				attrs["tooltip"] = fmt.Sprintf("%d imports", e.Count)
			}
		}
		d.Edges = append(d.Edges, nodelink.Edge{From: e.From, To: e.To, Attrs: attrs})
	}
	return d, nil
}

func label(id, root string) string {
	if root == "" {
		return id
	}
	if rest, ok := strings.CutPrefix(id, root+"/"); ok && rest != "" {
		return rest
	}
	return id
}

// =============================================================================
// Feature-Sliced Design preset
// =============================================================================

// fsdLayerColors assigns a fill colour per layer. App and layouts share a
// colour.
var fsdLayerColors = []struct{ layer, color string }{
	{"app", "#ffbdbd"},
	{"layouts", "#ffbdbd"},
	{"processes", "#da96ff"},
	{"pages", "#ffd9a3"},
	{"widgets", "#94fffa"},
	{"features", "#aedaff"},
	{"entities", "#d3ffc6"},
	{"shared", "#efefef"},
}

// FSD returns the Feature-Sliced Design theme for layers under root: folder
// shapes for collapsed nodes, one fill colour per layer, red invalid edges and
// dimmed valid edges, laid out top to bottom.
func FSD(root string) *Theme {
	prefix := "^"
	if root = graph.CleanRoot(root); root != "" {
		prefix += regexp.QuoteMeta(root) + "/"
	}

	t := &Theme{
		Modules: []StyleRule{
			{Criteria: Collapsed{Want: true}, Attributes: nodelink.Attrs{"shape": "folder"}},
		},
		Dependencies: []StyleRule{
			{Criteria: Valid{Want: false}, Attributes: nodelink.Attrs{"color": "#ff0000", "penwidth": "2.0"}},
			{Criteria: Valid{Want: true}, Attributes: nodelink.Attrs{"color": "#00000044", "penwidth": "1.0"}},
		},
		Graph: nodelink.Attrs{
			"splines":  "ortho",
			"rankdir":  "TB",
			"ranksep":  "1.2",
			"nodesep":  "0.5",
			"fontname": "Helvetica",
		},
		Node: nodelink.Attrs{
			"fontname": "Helvetica",
			"fontsize": "10",
			"style":    "rounded, filled",
		},
		Edge: nodelink.Attrs{
			"fontname": "Helvetica",
			"fontsize": "9",
		},
	}
	for _, lc := range fsdLayerColors {
		t.Modules = append(t.Modules, StyleRule{
			Criteria:   Source{Pattern: prefix + lc.layer + "/[^/]+"},
			Attributes: nodelink.Attrs{"fillcolor": lc.color},
		})
	}
	return t
}

// Extend returns a copy of t with the rules and attributes of other appended.
// Rules of other come later and therefore win on conflicting keys.
func (t *Theme) Extend(other *Theme) *Theme {
	out := &Theme{
		Modules:      append(append([]StyleRule(nil), t.Modules...), other.Modules...),
		Dependencies: append(append([]StyleRule(nil), t.Dependencies...), other.Dependencies...),
		Graph:        mergeAttrs(t.Graph, other.Graph),
		Node:         mergeAttrs(t.Node, other.Node),
		Edge:         mergeAttrs(t.Edge, other.Edge),
	}
	return out
}

func mergeAttrs(base, over nodelink.Attrs) nodelink.Attrs {
	if base == nil && over == nil {
		return nil
	}
	out := maps.Clone(base)
	if out == nil {
		out = nodelink.Attrs{}
	}
	maps.Copy(out, over)
	return out
}
