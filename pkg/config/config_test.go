package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/fsdcheck/pkg/collapse"
	"github.com/matzehuels/fsdcheck/pkg/errors"
	"github.com/matzehuels/fsdcheck/pkg/graph"
	graphio "github.com/matzehuels/fsdcheck/pkg/io"
	"github.com/matzehuels/fsdcheck/pkg/rules"
	"github.com/matzehuels/fsdcheck/pkg/theme"
)

const tomlDoc = `
[options]
root = "src"
include_only = "^src"
preset = ""
workers = 2

[collapse]
mode = "depth"
depth = 3

[[rules]]
name = "no-circular"
to = { circular = true }

[[rules]]
name = "same-layer"
severity = "warning"
comment = "Slices stay apart."
[rules.from]
path = "^src/(features)/([^/]+)"
[rules.to]
path = "^src/$1/"
path_not = ["^src/$1/$2/"]

[[theme.modules]]
attributes = { fillcolor = "#aedaff" }
[theme.modules.criteria]
source = "^src/features/"
collapsed = true

[[theme.dependencies]]
criteria = { valid = false }
attributes = { color = "#ff0000" }

[theme.graph]
rankdir = "LR"
`

const yamlDoc = `
options:
  root: src
  preset: fsd
collapse:
  mode: pattern
rules:
  - name: no-shared-to-app
    from: {path: "^src/shared"}
    to: {path: "^src/app"}
`

const jsonDoc = `{
  "options": {"root": "src", "preset": "fsd"},
  "collapse": {"mode": "none"},
  "theme": {"dependencies": [{"criteria": {"resolved": "^src/shared/"}, "attributes": {"style": "dashed"}}]}
}`

func TestParseTOML(t *testing.T) {
	c, err := Parse([]byte(tomlDoc), "toml")
	require.NoError(t, err)

	assert.Equal(t, 2, c.Options.Workers)
	assert.Equal(t, collapse.Spec{Mode: collapse.ModeDepth, Depth: 3}, c.CollapseSpec())

	rs := c.RuleList()
	require.Len(t, rs, 2)
	assert.Equal(t, rules.KindCircular, rs[0].Kind)
	assert.Equal(t, rules.Rule{
		Name:     "same-layer",
		Severity: rules.SeverityWarning,
		Comment:  "Slices stay apart.",
		From:     rules.Matcher{Path: "^src/(features)/([^/]+)"},
		To:       rules.Matcher{Path: "^src/$1/", PathNot: []string{"^src/$1/$2/"}},
	}, rs[1])

	th := c.BuildTheme()
	require.Len(t, th.Modules, 1)
	assert.Equal(t, theme.All{theme.Source{Pattern: "^src/features/"}, theme.Collapsed{Want: true}}, th.Modules[0].Criteria)
	assert.Equal(t, theme.Valid{Want: false}, th.Dependencies[0].Criteria)
	assert.Equal(t, "LR", th.Graph["rankdir"])
}

func TestParseYAML(t *testing.T) {
	c, err := Parse([]byte(yamlDoc), "yaml")
	require.NoError(t, err)

	rs := c.RuleList()
	assert.Len(t, rs, len(rules.FSDPreset("src"))+1)
	assert.Equal(t, "no-shared-to-app", rs[len(rs)-1].Name)
	assert.Equal(t, collapse.FSDPattern("src"), c.Collapse.Pattern, "preset fills the collapse pattern")
}

func TestParseJSON(t *testing.T) {
	c, err := Parse([]byte(jsonDoc), "json")
	require.NoError(t, err)

	th := c.BuildTheme()
	last := th.Dependencies[len(th.Dependencies)-1]
	assert.Equal(t, theme.Target{Pattern: "^src/shared/"}, last.Criteria)
	assert.Equal(t, "ortho", th.Graph["splines"], "preset graph attributes are kept")
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	tests := map[string]string{
		"toml": "[options]\nroot = \"src\"\nprest = \"fsd\"\n",
		"yaml": "options:\n  root: src\n  prest: fsd\n",
		"json": `{"options": {"root": "src", "prest": "fsd"}}`,
	}
	for format, doc := range tests {
		t.Run(format, func(t *testing.T) {
			_, err := Parse([]byte(doc), format)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeConfig), "got %v", err)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		code   errors.Code
	}{
		{"unknown preset", func(c *Config) { c.Options.Preset = "mvc" }, errors.ErrCodeConfig},
		{"negative workers", func(c *Config) { c.Options.Workers = -1 }, errors.ErrCodeConfig},
		{"bad include", func(c *Config) { c.Options.IncludeOnly = "(" }, errors.ErrCodeConfigPattern},
		{"bad format", func(c *Config) { c.Options.Format = "xml" }, errors.ErrCodeConfig},
		{"bad collapse mode", func(c *Config) { c.Collapse.Mode = "tree" }, errors.ErrCodeConfig},
		{"bad collapse pattern", func(c *Config) { c.Collapse.Pattern = "[" }, errors.ErrCodeConfigPattern},
		{"bad theme pattern", func(c *Config) {
			c.Theme.Modules = []StyleConfig{{Criteria: CriteriaConfig{Source: "("}}}
		}, errors.ErrCodeConfigPattern},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.modify(c)
			err := c.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.code), "got %v", err)
		})
	}
}

func TestMalformedRuleIsNotAConfigError(t *testing.T) {
	c := Default()
	c.Rules = []RuleConfig{{Name: "broken", To: ToConfig{Path: "("}}}
	assert.NoError(t, c.Validate(), "malformed rules are skipped by the engine")
}

func TestDefault(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, "src", c.Options.Root)
	assert.Equal(t, PresetFSD, c.Options.Preset)
	assert.Equal(t, collapse.ModePattern, c.CollapseSpec().Mode)
	assert.Len(t, c.RuleList(), len(rules.FSDPreset("src")))
	assert.Equal(t, graphio.FormatAuto, c.ImportOptions().Format)
}

func TestRootDefaultsToSrc(t *testing.T) {
	c, err := Parse([]byte("[options]\npreset = \"fsd\"\n"), "toml")
	require.NoError(t, err)
	assert.Equal(t, graph.DefaultRoot, c.Options.Root)

	g := graph.New()
	require.NoError(t, g.AddModule(graph.Module{Path: "src/shared/x.ts"}))
	require.NoError(t, g.AddModule(graph.Module{Path: "src/app/y.ts"}))
	require.NoError(t, g.AddEdge(graph.Edge{From: "src/shared/x.ts", To: "src/app/y.ts"}))

	eng, err := rules.NewEngine(c.RuleList(), rules.Options{})
	require.NoError(t, err)
	res, err := eng.Evaluate(g)
	require.NoError(t, err)
	require.Len(t, res.Violations, 1)
	assert.Equal(t, "fsd-layer-shared-upward", res.Violations[0].Rule)
	assert.False(t, res.Passed())
}

func TestTopLevelRoot(t *testing.T) {
	c, err := Parse([]byte("[options]\nroot = \".\"\npreset = \"fsd\"\n"), "toml")
	require.NoError(t, err)
	assert.Equal(t, graph.TopLevelRoot, c.Options.Root)
	assert.Equal(t, "shared", c.Layout().Layer("shared/ui/button.tsx"))

	g := graph.New()
	require.NoError(t, g.AddModule(graph.Module{Path: "shared/x.ts"}))
	require.NoError(t, g.AddModule(graph.Module{Path: "app/y.ts"}))
	require.NoError(t, g.AddEdge(graph.Edge{From: "shared/x.ts", To: "app/y.ts"}))

	eng, err := rules.NewEngine(c.RuleList(), rules.Options{})
	require.NoError(t, err)
	res, err := eng.Evaluate(g)
	require.NoError(t, err)
	require.Len(t, res.Violations, 1)
	assert.Equal(t, "fsd-layer-shared-upward", res.Violations[0].Rule)
}

func TestWriteTOMLRoundTrip(t *testing.T) {
	orig, err := Parse([]byte(tomlDoc), "toml")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteTOML(&buf, orig))

	back, err := Parse(buf.Bytes(), "toml")
	require.NoError(t, err, buf.String())
	assert.Equal(t, orig.Hash(), back.Hash())
}

func TestFindAndLoad(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, "", Find(dir))

	c, path, err := LoadOrDefault("", dir)
	require.NoError(t, err)
	assert.Equal(t, "", path)
	assert.Equal(t, Default().Hash(), c.Hash())

	file := filepath.Join(dir, ".fsdcheck.yaml")
	require.NoError(t, os.WriteFile(file, []byte(yamlDoc), 0o644))
	assert.Equal(t, file, Find(dir))

	c, path, err = LoadOrDefault("", dir)
	require.NoError(t, err)
	assert.Equal(t, file, path)
	assert.Len(t, c.Rules, 1)

	_, err = Load(filepath.Join(dir, "missing.toml"))
	assert.True(t, errors.Is(err, errors.ErrCodeConfig))
}

func TestHashChangesWithContent(t *testing.T) {
	a := Default()
	b := Default()
	assert.Equal(t, a.Hash(), b.Hash())
	b.Options.Root = "app"
	assert.NotEqual(t, a.Hash(), b.Hash())
}
