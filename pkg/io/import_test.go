package io

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matzehuels/fsdcheck/pkg/errors"
	"github.com/matzehuels/fsdcheck/pkg/graph"
)

const nativeDoc = `{
  "modules": [
    {"path": "src/app/index.ts"},
    {"path": "src/shared/ui/button.tsx"},
    {"path": "node_modules/react/index.js"}
  ],
  "edges": [
    {"from": "src/app/index.ts", "to": "src/shared/ui/button.tsx"},
    {"from": "src/app/index.ts", "to": "src/shared/ui/button.tsx", "kind": "type-only"},
    {"from": "src/shared/ui/button.tsx", "to": "node_modules/react/index.js"}
  ]
}`

const cruiseDoc = `{
  "modules": [
    {
      "source": "src/pages/home/index.ts",
      "dependencies": [
        {"resolved": "src/features/auth/index.ts", "dynamic": false, "dependencyTypes": ["local", "import"]},
        {"resolved": "src/features/auth/index.ts", "dynamic": false, "dependencyTypes": ["local", "import"]},
        {"resolved": "src/entities/user/model.ts", "dynamic": false, "dependencyTypes": ["local", "type-only"]},
        {"resolved": "src/widgets/lazy/index.ts", "dynamic": true, "dependencyTypes": ["local", "dynamic-import"]},
        {"resolved": "fs", "coreModule": true, "dependencyTypes": ["core"]},
        {"resolved": "missing-pkg", "couldNotResolve": true, "dependencyTypes": ["unknown"]}
      ]
    },
    {"source": "src/features/auth/index.ts", "dependencies": []},
    {"source": "src/entities/user/model.ts", "dependencies": []},
    {"source": "src/widgets/lazy/index.ts", "dependencies": []}
  ],
  "summary": {"violations": []}
}`

func TestReadNative(t *testing.T) {
	g, err := ReadBytes([]byte(nativeDoc), Options{})
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if g.ModuleCount() != 3 {
		t.Errorf("ModuleCount() = %d, want 3", g.ModuleCount())
	}
	if g.EdgeCount() != 3 {
		t.Errorf("EdgeCount() = %d, want 3", g.EdgeCount())
	}
}

func TestReadIncludeOnly(t *testing.T) {
	g, err := ReadBytes([]byte(nativeDoc), Options{IncludeOnly: "^src"})
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if g.ModuleCount() != 2 {
		t.Errorf("ModuleCount() = %d, want 2", g.ModuleCount())
	}
	if g.EdgeCount() != 2 {
		t.Errorf("EdgeCount() = %d, want 2", g.EdgeCount())
	}
}

func TestReadIncludeOnlyInvalidPattern(t *testing.T) {
	_, err := ReadBytes([]byte(nativeDoc), Options{IncludeOnly: "^src("})
	if !errors.Is(err, errors.ErrCodeConfigPattern) {
		t.Errorf("Read() error = %v, want %s", err, errors.ErrCodeConfigPattern)
	}
}

func TestReadDepcruise(t *testing.T) {
	g, err := ReadBytes([]byte(cruiseDoc), Options{})
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if g.ModuleCount() != 4 {
		t.Errorf("ModuleCount() = %d, want 4", g.ModuleCount())
	}

	kinds := map[string]graph.DependencyKind{}
	for _, e := range g.Edges() {
		kinds[e.To] = e.Kind
	}
	if len(kinds) != 3 || g.EdgeCount() != 3 {
		t.Fatalf("edges = %v, want 3 distinct edges", g.Edges())
	}
	if kinds["src/features/auth/index.ts"] != graph.KindStatic {
		t.Error("import should be static")
	}
	if kinds["src/entities/user/model.ts"] != graph.KindTypeOnly {
		t.Error("type-only import should keep its kind")
	}
	if kinds["src/widgets/lazy/index.ts"] != graph.KindDynamic {
		t.Error("dynamic import should keep its kind")
	}
}

func TestReadSkipTypeOnly(t *testing.T) {
	g, err := ReadBytes([]byte(cruiseDoc), Options{SkipTypeOnly: true})
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if g.ModuleCount() != 4 {
		t.Errorf("ModuleCount() = %d, want 4", g.ModuleCount())
	}
	for _, e := range g.Edges() {
		if e.Kind == graph.KindTypeOnly {
			t.Errorf("type-only edge %s -> %s should be dropped", e.From, e.To)
		}
	}
	if g.EdgeCount() != 2 {
		t.Errorf("EdgeCount() = %d, want 2", g.EdgeCount())
	}
}

func TestReadForcedFormat(t *testing.T) {
	// Forcing the native layout onto a dependency-cruiser document yields
	// modules with empty paths, which are rejected.
	_, err := ReadBytes([]byte(cruiseDoc), Options{Format: FormatNative})
	if !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("Read() error = %v, want %s", err, errors.ErrCodeInvalidPath)
	}
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		code errors.Code
	}{
		{"malformed", `{"modules": [`, errors.ErrCodeInvalidInput},
		{"unknown target", `{"modules":[{"path":"a"}],"edges":[{"from":"a","to":"b"}]}`, errors.ErrCodeUnknownModule},
		{"unknown source", `{"modules":[{"path":"a"}],"edges":[{"from":"b","to":"a"}]}`, errors.ErrCodeUnknownModule},
		{"duplicate module", `{"modules":[{"path":"a"},{"path":"a"}]}`, errors.ErrCodeInvalidInput},
		{"absolute path", `{"modules":[{"path":"/a"}]}`, errors.ErrCodeInvalidPath},
		{"cruise unknown", `{"modules":[{"source":"a","dependencies":[{"resolved":"b"}]}]}`, errors.ErrCodeUnknownModule},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.doc), Options{})
			if err == nil {
				t.Fatal("Read() expected error")
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("Read() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"", "auto", "native", "depcruise"} {
		if _, err := ParseFormat(s); err != nil {
			t.Errorf("ParseFormat(%q) error = %v", s, err)
		}
	}
	if _, err := ParseFormat("dot"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("ParseFormat(dot) error = %v", err)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	g, err := ReadBytes([]byte(cruiseDoc), Options{})
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	var buf bytes.Buffer
	if err := Write(g, &buf); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	back, err := Read(&buf, Options{})
	if err != nil {
		t.Fatalf("Read(exported) error = %v", err)
	}
	if graph.Hash(back) != graph.Hash(g) {
		t.Error("exported graph should re-import identically")
	}
}
