package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/fsdcheck/pkg/collapse"
	"github.com/matzehuels/fsdcheck/pkg/errors"
	"github.com/matzehuels/fsdcheck/pkg/graph"
	"github.com/matzehuels/fsdcheck/pkg/render/nodelink"
)

func sampleView() *collapse.View {
	return &collapse.View{
		Nodes: []collapse.Node{
			{ID: "src/features/auth", Members: []string{"src/features/auth/index.ts", "src/features/auth/ui.tsx"}, Collapsed: true},
			{ID: "src/features/cart", Members: []string{"src/features/cart/index.ts"}, Collapsed: true},
			{ID: "src/main.ts", Members: []string{"src/main.ts"}},
		},
		Edges: []collapse.Edge{
			{From: "src/features/auth", To: "src/features/cart", Valid: false, Count: 3},
			{From: "src/main.ts", To: "src/features/auth", Valid: true, Count: 1},
		},
	}
}

func TestApplyLastMatchWins(t *testing.T) {
	th := &Theme{
		Modules: []StyleRule{
			{Criteria: nil, Attributes: nodelink.Attrs{"fillcolor": "white", "shape": "box"}},
			{Criteria: Source{Pattern: "^src/features/"}, Attributes: nodelink.Attrs{"fillcolor": "#aedaff"}},
			{Criteria: Source{Pattern: "^nothing"}, Attributes: nodelink.Attrs{"fillcolor": "black"}},
		},
	}
	d, err := Apply(th, sampleView(), graph.NewLayout("src", nil))
	require.NoError(t, err)

	assert.Equal(t, nodelink.Attrs{"fillcolor": "#aedaff", "shape": "box"}, d.Nodes[0].Attrs)
	assert.Equal(t, nodelink.Attrs{"fillcolor": "white", "shape": "box"}, d.Nodes[2].Attrs)
}

func TestApplyLabelsAndGroups(t *testing.T) {
	d, err := Apply(&Theme{}, sampleView(), graph.NewLayout("src", nil))
	require.NoError(t, err)

	require.Len(t, d.Nodes, 3)
	assert.Equal(t, "features/auth", d.Nodes[0].Label)
	assert.Equal(t, "features", d.Nodes[0].Group)
	assert.Equal(t, "main.ts", d.Nodes[2].Label)
	assert.Equal(t, "", d.Nodes[2].Group)
	assert.Equal(t, "3 imports", d.Edges[0].Attrs["tooltip"])
	assert.NotContains(t, d.Edges[1].Attrs, "tooltip")
}

func TestApplyPreservesStructure(t *testing.T) {
	v := sampleView()
	d, err := Apply(FSD("src"), v, graph.NewLayout("src", nil))
	require.NoError(t, err)

	require.Len(t, d.Nodes, len(v.Nodes))
	require.Len(t, d.Edges, len(v.Edges))
	for i, n := range v.Nodes {
		assert.Equal(t, n.ID, d.Nodes[i].ID)
	}
	for i, e := range v.Edges {
		assert.Equal(t, e.From, d.Edges[i].From)
		assert.Equal(t, e.To, d.Edges[i].To)
	}
}

func TestFSDTheme(t *testing.T) {
	d, err := Apply(FSD("src"), sampleView(), graph.NewLayout("src", nil))
	require.NoError(t, err)

	assert.Equal(t, nodelink.Attrs{"shape": "folder", "fillcolor": "#aedaff"}, d.Nodes[0].Attrs)
	assert.Empty(t, d.Nodes[2].Attrs)
	assert.Equal(t, "#ff0000", d.Edges[0].Attrs["color"])
	assert.Equal(t, "2.0", d.Edges[0].Attrs["penwidth"])
	assert.Equal(t, "#00000044", d.Edges[1].Attrs["color"])
	assert.Equal(t, "ortho", d.Graph["splines"])
	assert.Equal(t, "rounded, filled", d.Node["style"])
	assert.Equal(t, "9", d.Edge["fontsize"])
}

func TestCriteria(t *testing.T) {
	edge := subject{id: "src/a", target: "src/b", edge: true, collapsed: true, valid: false}
	node := subject{id: "src/a", valid: true}

	tests := []struct {
		name     string
		criteria Criteria
		edge     bool
		node     bool
	}{
		{"nil", nil, true, true},
		{"collapsed", Collapsed{Want: true}, true, false},
		{"valid", Valid{Want: true}, false, true},
		{"source", Source{Pattern: "^src/a$"}, true, true},
		{"target", Target{Pattern: "^src/b$"}, true, false},
		{"all", All{Source{Pattern: "a"}, Valid{Want: false}}, true, false},
		{"empty all", All{}, true, true},
		{"any", Any{Collapsed{Want: true}, Valid{Want: true}}, true, true},
		{"empty any", Any{}, false, false},
		{"not", Not{Criteria: Valid{Want: false}}, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := compile("test", tt.criteria)
			require.NoError(t, err)
			assert.Equal(t, tt.edge, p(edge), "edge")
			assert.Equal(t, tt.node, p(node), "node")
		})
	}
}

func TestInvalidCriteriaPattern(t *testing.T) {
	th := &Theme{Dependencies: []StyleRule{{Criteria: Not{Criteria: Target{Pattern: "("}}}}}
	err := th.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeConfigPattern))

	_, err = Apply(th, sampleView(), graph.NewLayout("src", nil))
	assert.Error(t, err)
}

func TestExtend(t *testing.T) {
	base := FSD("src")
	ext := base.Extend(&Theme{
		Modules: []StyleRule{{Criteria: Source{Pattern: "^src/main"}, Attributes: nodelink.Attrs{"fillcolor": "gold"}}},
		Graph:   nodelink.Attrs{"rankdir": "LR"},
	})

	assert.Len(t, ext.Modules, len(base.Modules)+1)
	assert.Equal(t, "LR", ext.Graph["rankdir"])
	assert.Equal(t, "TB", base.Graph["rankdir"], "base theme must not change")

	d, err := Apply(ext, sampleView(), graph.NewLayout("src", nil))
	require.NoError(t, err)
	assert.Equal(t, "gold", d.Nodes[2].Attrs["fillcolor"])
}
