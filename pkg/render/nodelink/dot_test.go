package nodelink

import (
	"context"
	"strings"
	"testing"
)

func sampleDescription() *Description {
	return &Description{
		Graph: Attrs{"rankdir": "TB", "splines": "ortho"},
		Node:  Attrs{"style": "rounded, filled"},
		Nodes: []Node{
			{ID: "src/app/index.ts", Group: "app", Attrs: Attrs{"fillcolor": "#ffbdbd"}},
			{ID: "src/shared/ui", Label: "ui", Group: "shared", Attrs: Attrs{"shape": "folder", "fillcolor": "#efefef"}},
			{ID: "README.md"},
		},
		Edges: []Edge{
			{From: "src/app/index.ts", To: "src/shared/ui", Attrs: Attrs{"penwidth": "1.0", "color": "#00000044"}},
			{From: "README.md", To: "src/app/index.ts"},
		},
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(sampleDescription(), Options{})

	for _, want := range []string{
		`graph [rankdir="TB", splines="ortho"];`,
		`node [style="rounded, filled"];`,
		`"src/app/index.ts" [fillcolor="#ffbdbd", label="src/app/index.ts"];`,
		`"src/shared/ui" [fillcolor="#efefef", label="ui", shape="folder"];`,
		`"src/app/index.ts" -> "src/shared/ui" [color="#00000044", penwidth="1.0"];`,
		`"README.md" -> "src/app/index.ts";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %s\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "edge [") {
		t.Error("empty default attribute lists should be omitted")
	}
	if strings.Contains(dot, "subgraph") {
		t.Error("clusters should be off by default")
	}
}

func TestQuoteDOT(t *testing.T) {
	tests := []struct{ in, want string }{
		{"src/app", `"src/app"`},
		{`say "hi"`, `"say \"hi\""`},
		{`C:\path`, `"C:\\path"`},
		{"tab\there", "\"tab\there\""},
		{"bell\x07", "\"bell\x07\""},
		{"héllo", `"héllo"`},
	}
	for _, tt := range tests {
		if got := quoteDOT(tt.in); got != tt.want {
			t.Errorf("quoteDOT(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestToDOTControlBytes(t *testing.T) {
	d := &Description{
		Nodes: []Node{{ID: "a\x01b", Attrs: Attrs{"tooltip": "x\ty"}}},
	}
	dot := ToDOT(d, Options{})
	if strings.Contains(dot, `\x01`) || strings.Contains(dot, `\t`) {
		t.Errorf("DOT contains Go escapes:\n%s", dot)
	}
	if want := "\"a\x01b\" [label=\"a\x01b\", tooltip=\"x\ty\"];"; !strings.Contains(dot, want) {
		t.Errorf("DOT missing %q\n%s", want, dot)
	}
}

func TestToDOTDeterministic(t *testing.T) {
	first := ToDOT(sampleDescription(), Options{Clusters: true})
	for range 10 {
		if got := ToDOT(sampleDescription(), Options{Clusters: true}); got != first {
			t.Fatalf("ToDOT output changed between runs:\n%s\n%s", first, got)
		}
	}
}

func TestToDOTClusters(t *testing.T) {
	dot := ToDOT(sampleDescription(), Options{Clusters: true})

	app := strings.Index(dot, `subgraph "cluster_app"`)
	shared := strings.Index(dot, `subgraph "cluster_shared"`)
	if app < 0 || shared < 0 || app > shared {
		t.Fatalf("clusters missing or out of order:\n%s", dot)
	}
	if strings.Contains(dot, `"cluster_"`) {
		t.Error("ungrouped nodes should not get a cluster")
	}
	if !strings.Contains(dot, `  "README.md" [label="README.md"];`) {
		t.Errorf("ungrouped node should be top level:\n%s", dot)
	}
}

func TestRendererFunc(t *testing.T) {
	var got string
	r := RendererFunc(func(_ context.Context, dot string) ([]byte, error) {
		got = dot
		return []byte("<svg/>"), nil
	})
	svg, err := r.Render(context.Background(), "digraph G {}")
	if err != nil || string(svg) != "<svg/>" || got != "digraph G {}" {
		t.Errorf("Render() = %q, %v", svg, err)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 100.00 50.00" width="100" height="50"`) {
		t.Errorf("normalizeViewBox() = %s", out)
	}
	if !strings.HasSuffix(out, "<g/></svg>") {
		t.Errorf("content should be preserved: %s", out)
	}

	plain := []byte(`<svg><g/></svg>`)
	if string(normalizeViewBox(plain)) != string(plain) {
		t.Error("SVG without viewBox should be unchanged")
	}
}

func TestWrapHTML(t *testing.T) {
	page, err := WrapHTML([]byte(`<svg id="g"></svg>`), "deps <app>", "2 violations")
	if err != nil {
		t.Fatalf("WrapHTML() error = %v", err)
	}
	html := string(page)
	if !strings.Contains(html, `<svg id="g"></svg>`) {
		t.Error("SVG should be embedded verbatim")
	}
	if !strings.Contains(html, "deps &lt;app&gt;") {
		t.Error("title should be escaped")
	}
	if !strings.Contains(html, "2 violations") {
		t.Error("subtitle missing")
	}
}
