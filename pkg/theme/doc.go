// Package theme assigns Graphviz attributes to the nodes and edges of a
// (possibly collapsed) dependency view.
//
// A [Theme] holds ordered [StyleRule] lists. For every node, each rule in
// Modules whose [Criteria] matches contributes its attributes; a later rule
// overwrites the keys it shares with an earlier one and leaves the others
// alone. Dependencies work the same way for edges.
//
//	t := &theme.Theme{
//	    Modules: []theme.StyleRule{
//	        {Criteria: theme.Collapsed{Want: true}, Attributes: nodelink.Attrs{"shape": "folder"}},
//	        {Criteria: theme.Source{Pattern: "^src/shared/"}, Attributes: nodelink.Attrs{"fillcolor": "#efefef"}},
//	    },
//	    Dependencies: []theme.StyleRule{
//	        {Criteria: theme.Valid{Want: false}, Attributes: nodelink.Attrs{"color": "#ff0000"}},
//	    },
//	}
//	desc, err := theme.Apply(t, view, graph.NewLayout("src", nil))
//
// [FSD] returns the Feature-Sliced Design preset.
package theme
