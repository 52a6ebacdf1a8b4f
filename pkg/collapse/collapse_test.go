package collapse

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/fsdcheck/pkg/errors"
	"github.com/matzehuels/fsdcheck/pkg/graph"
)

type testEdge struct {
	from, to string
	kind     graph.DependencyKind
	valid    *bool
}

func ptr(b bool) *bool { return &b }

func buildGraph(t *testing.T, edges ...testEdge) *graph.Graph {
	t.Helper()
	g := graph.New()
	for _, e := range edges {
		for _, m := range []string{e.from, e.to} {
			if !g.HasModule(m) {
				require.NoError(t, g.AddModule(graph.Module{Path: m}))
			}
		}
		require.NoError(t, g.AddEdge(graph.Edge{From: e.from, To: e.to, Kind: e.kind, Valid: e.valid}))
	}
	return g
}

// sliceGraph spans three slices: auth -> cart has one valid and one invalid
// import, cart -> user has only valid imports.
func sliceGraph(t *testing.T) *graph.Graph {
	return buildGraph(t,
		testEdge{from: "src/features/auth/model.ts", to: "src/features/cart/index.ts", valid: ptr(true)},
		testEdge{from: "src/features/auth/ui.tsx", to: "src/features/cart/lib/deep.ts", valid: ptr(false)},
		testEdge{from: "src/features/auth/ui.tsx", to: "src/features/auth/model.ts", valid: ptr(true)},
		testEdge{from: "src/features/cart/index.ts", to: "src/entities/user/index.ts", valid: ptr(true)},
		testEdge{from: "src/features/cart/lib/deep.ts", to: "src/entities/user/index.ts"},
	)
}

func TestParseMode(t *testing.T) {
	for _, s := range []string{"", "none", "pattern", "depth", "DEPTH"} {
		_, err := ParseMode(s)
		assert.NoError(t, err, s)
	}
	_, err := ParseMode("folders")
	assert.True(t, errors.Is(err, errors.ErrCodeConfig))
}

func TestSpecValidate(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
		code errors.Code
	}{
		{"unknown mode", Spec{Mode: "tree"}, errors.ErrCodeConfig},
		{"missing pattern", Spec{Mode: ModePattern}, errors.ErrCodeConfig},
		{"bad pattern", Spec{Mode: ModePattern, Pattern: "^src/("}, errors.ErrCodeConfigPattern},
		{"zero depth", Spec{Mode: ModeDepth}, errors.ErrCodeConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.code), "got %v", err)
		})
	}
	assert.NoError(t, Spec{}.Validate())
	assert.NoError(t, Spec{Mode: ModeDepth, Depth: 2}.Validate())
}

func TestIdentity(t *testing.T) {
	g := buildGraph(t,
		testEdge{from: "a", to: "b", valid: ptr(true)},
		testEdge{from: "a", to: "b", kind: graph.KindTypeOnly, valid: ptr(false)},
		testEdge{from: "b", to: "b"},
	)
	v := Identity(g)

	require.Len(t, v.Nodes, 2)
	assert.False(t, v.Nodes[0].Collapsed)
	require.Len(t, v.Edges, 2)
	assert.Equal(t, Edge{From: "a", To: "b", Valid: false, Count: 2}, v.Edges[0])
	assert.Equal(t, Edge{From: "b", To: "b", Valid: true, Count: 1}, v.Edges[1])
}

func TestCollapsePatternThreeSlices(t *testing.T) {
	v, err := Collapse(sliceGraph(t), Spec{Mode: ModePattern, Pattern: FSDPattern("src")})
	require.NoError(t, err)

	ids := make([]string, len(v.Nodes))
	for i, n := range v.Nodes {
		ids[i] = n.ID
		assert.True(t, n.Collapsed, n.ID)
	}
	assert.Equal(t, []string{"src/entities/user", "src/features/auth", "src/features/cart"}, ids)

	auth, ok := v.Node("src/features/auth")
	require.True(t, ok)
	assert.Equal(t, []string{"src/features/auth/model.ts", "src/features/auth/ui.tsx"}, auth.Members)

	assert.Equal(t, []Edge{
		{From: "src/features/auth", To: "src/features/cart", Valid: false, Count: 2},
		{From: "src/features/cart", To: "src/entities/user", Valid: true, Count: 2},
	}, v.Edges)
	assert.Equal(t, 1, v.InvalidEdges())
}

func TestCollapsePatternKeepsUnmatched(t *testing.T) {
	g := buildGraph(t,
		testEdge{from: "src/app/index.ts", to: "src/main.ts"},
		testEdge{from: "lib/src/app/util.ts", to: "src/app/index.ts"},
	)
	v, err := Collapse(g, Spec{Mode: ModePattern, Pattern: "src/app"})
	require.NoError(t, err)

	// "src/app" also occurs inside paths, but only a match at the start
	// groups a module.
	n, ok := v.Node("src/main.ts")
	require.True(t, ok)
	assert.False(t, n.Collapsed)
	_, ok = v.Node("lib/src/app/util.ts")
	assert.True(t, ok)
	_, ok = v.Node("src/app")
	assert.True(t, ok)
}

func TestCollapseDepth(t *testing.T) {
	v, err := Collapse(sliceGraph(t), Spec{Mode: ModeDepth, Depth: 2})
	require.NoError(t, err)

	require.Len(t, v.Nodes, 2)
	assert.Equal(t, "src/entities", v.Nodes[0].ID)
	assert.Equal(t, "src/features", v.Nodes[1].ID)
	assert.Equal(t, []Edge{{From: "src/features", To: "src/entities", Valid: true, Count: 2}}, v.Edges)
}

func TestCollapseDepthShortPaths(t *testing.T) {
	g := buildGraph(t, testEdge{from: "main.ts", to: "src/a/b.ts"})
	v, err := Collapse(g, Spec{Mode: ModeDepth, Depth: 2})
	require.NoError(t, err)

	n, ok := v.Node("main.ts")
	require.True(t, ok)
	assert.False(t, n.Collapsed)
	_, ok = v.Node("src/a")
	assert.True(t, ok)
}

func TestCollapseNone(t *testing.T) {
	g := sliceGraph(t)
	v, err := Collapse(g, Spec{Mode: ModeNone})
	require.NoError(t, err)
	assert.Equal(t, Identity(g), v)
}

func TestCollapseIdempotent(t *testing.T) {
	specs := []Spec{
		{Mode: ModePattern, Pattern: FSDPattern("src")},
		{Mode: ModeDepth, Depth: 2},
		{Mode: ModeDepth, Depth: 3},
	}
	for _, spec := range specs {
		once, err := Collapse(sliceGraph(t), spec)
		require.NoError(t, err)
		twice, err := once.Collapse(spec)
		require.NoError(t, err)
		assert.Equal(t, once, twice, "spec %+v", spec)
	}
}

func TestCollapseIndependentOfEdgeOrder(t *testing.T) {
	edges := []testEdge{
		{from: "src/features/auth/model.ts", to: "src/features/cart/index.ts", valid: ptr(true)},
		{from: "src/features/auth/ui.tsx", to: "src/features/cart/lib/deep.ts", valid: ptr(false)},
		{from: "src/features/auth/ui.tsx", to: "src/features/auth/model.ts", valid: ptr(true)},
		{from: "src/features/cart/index.ts", to: "src/entities/user/index.ts", valid: ptr(true)},
		{from: "src/features/cart/lib/deep.ts", to: "src/entities/user/index.ts"},
		{from: "src/entities/user/index.ts", to: "src/shared/api/client.ts", valid: ptr(true)},
	}
	reversed := slices.Clone(edges)
	slices.Reverse(reversed)
	rotated := append(slices.Clone(edges[3:]), edges[:3]...)

	specs := []Spec{
		{Mode: ModePattern, Pattern: FSDPattern("src")},
		{Mode: ModeDepth, Depth: 2},
	}
	for _, spec := range specs {
		first, err := Collapse(buildGraph(t, edges...), spec)
		require.NoError(t, err)
		for _, order := range [][]testEdge{reversed, rotated} {
			again, err := Collapse(buildGraph(t, order...), spec)
			require.NoError(t, err)
			assert.Equal(t, first, again, "spec %+v", spec)
		}
	}
}

func TestFSDPattern(t *testing.T) {
	assert.Equal(t,
		"^src/app/[^/]+|^src/processes/[^/]+|^src/layouts/[^/]+|^src/pages/[^/]+|^src/widgets/[^/]+|^src/features/[^/]+|^src/entities/[^/]+|^src/shared/[^/]+",
		FSDPattern("src"))
	assert.Contains(t, FSDPattern(""), "^shared/[^/]+")
}
