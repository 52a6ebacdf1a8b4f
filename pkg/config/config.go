package config

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/matzehuels/fsdcheck/pkg/collapse"
	"github.com/matzehuels/fsdcheck/pkg/errors"
	"github.com/matzehuels/fsdcheck/pkg/graph"
	graphio "github.com/matzehuels/fsdcheck/pkg/io"
	"github.com/matzehuels/fsdcheck/pkg/render/nodelink"
	"github.com/matzehuels/fsdcheck/pkg/rules"
	"github.com/matzehuels/fsdcheck/pkg/theme"
)

// PresetFSD selects the Feature-Sliced Design rules, theme and collapse
// pattern.
const PresetFSD = "fsd"

// Config is the policy document: rules, collapse settings, theme and
// options. The same structure is read from TOML, YAML and JSON.
type Config struct {
	Options  Options      `toml:"options" yaml:"options" json:"options"`
	Collapse Collapse     `toml:"collapse" yaml:"collapse" json:"collapse"`
	Rules    []RuleConfig `toml:"rules,omitempty" yaml:"rules,omitempty" json:"rules,omitempty"`
	Theme    ThemeConfig  `toml:"theme,omitempty" yaml:"theme,omitempty" json:"theme,omitempty"`
}

// Options holds analysis settings.
type Options struct {
	// Root is the directory holding the layers (default "src"; "." for
	// layers at the top of the module paths).
	Root string `toml:"root" yaml:"root" json:"root"`

	// IncludeOnly keeps only modules matching the expression.
	IncludeOnly string `toml:"include_only,omitempty" yaml:"include_only,omitempty" json:"include_only,omitempty"`

	// Preset prepends a built-in rule set and theme. "fsd" or empty.
	Preset string `toml:"preset" yaml:"preset" json:"preset"`

	// Workers bounds concurrent rule evaluation; 0 uses all CPUs.
	Workers int `toml:"workers,omitempty" yaml:"workers,omitempty" json:"workers,omitempty"`

	// SkipTypeOnly ignores type-only imports.
	SkipTypeOnly bool `toml:"skip_type_only,omitempty" yaml:"skip_type_only,omitempty" json:"skip_type_only,omitempty"`

	// Format of the graph document: auto, native or depcruise.
	Format string `toml:"format,omitempty" yaml:"format,omitempty" json:"format,omitempty"`
}

// Collapse configures folder grouping of the rendered graph.
type Collapse struct {
	Mode    string `toml:"mode" yaml:"mode" json:"mode"`
	Pattern string `toml:"pattern,omitempty" yaml:"pattern,omitempty" json:"pattern,omitempty"`
	Depth   int    `toml:"depth,omitempty" yaml:"depth,omitempty" json:"depth,omitempty"`
}

// RuleConfig is one forbidden-dependency rule.
type RuleConfig struct {
	Name     string        `toml:"name" yaml:"name" json:"name"`
	Severity string        `toml:"severity,omitempty" yaml:"severity,omitempty" json:"severity,omitempty"`
	Comment  string        `toml:"comment,omitempty" yaml:"comment,omitempty" json:"comment,omitempty"`
	From     MatcherConfig `toml:"from" yaml:"from" json:"from"`
	To       ToConfig      `toml:"to" yaml:"to" json:"to"`
}

// MatcherConfig selects modules by path.
type MatcherConfig struct {
	Path    string   `toml:"path,omitempty" yaml:"path,omitempty" json:"path,omitempty"`
	PathNot []string `toml:"path_not,omitempty" yaml:"path_not,omitempty" json:"path_not,omitempty"`
}

// ToConfig selects imported modules. Circular turns the rule into a cycle
// rule and ignores the path settings.
type ToConfig struct {
	Path     string   `toml:"path,omitempty" yaml:"path,omitempty" json:"path,omitempty"`
	PathNot  []string `toml:"path_not,omitempty" yaml:"path_not,omitempty" json:"path_not,omitempty"`
	Circular bool     `toml:"circular,omitempty" yaml:"circular,omitempty" json:"circular,omitempty"`
}

// ThemeConfig mirrors [theme.Theme].
type ThemeConfig struct {
	Modules      []StyleConfig     `toml:"modules,omitempty" yaml:"modules,omitempty" json:"modules,omitempty"`
	Dependencies []StyleConfig     `toml:"dependencies,omitempty" yaml:"dependencies,omitempty" json:"dependencies,omitempty"`
	Graph        map[string]string `toml:"graph,omitempty" yaml:"graph,omitempty" json:"graph,omitempty"`
	Node         map[string]string `toml:"node,omitempty" yaml:"node,omitempty" json:"node,omitempty"`
	Edge         map[string]string `toml:"edge,omitempty" yaml:"edge,omitempty" json:"edge,omitempty"`
}

// StyleConfig is one theme rule.
type StyleConfig struct {
	Criteria   CriteriaConfig    `toml:"criteria" yaml:"criteria" json:"criteria"`
	Attributes map[string]string `toml:"attributes" yaml:"attributes" json:"attributes"`
}

// CriteriaConfig lists conditions that must all hold. Unset keys are not
// checked; an empty criteria block matches everything.
type CriteriaConfig struct {
	Source    string `toml:"source,omitempty" yaml:"source,omitempty" json:"source,omitempty"`
	Resolved  string `toml:"resolved,omitempty" yaml:"resolved,omitempty" json:"resolved,omitempty"`
	Collapsed *bool  `toml:"collapsed,omitempty" yaml:"collapsed,omitempty" json:"collapsed,omitempty"`
	Valid     *bool  `toml:"valid,omitempty" yaml:"valid,omitempty" json:"valid,omitempty"`
}

// =============================================================================
// Defaults and validation
// =============================================================================

// Default returns the configuration used when no policy document exists:
// the Feature-Sliced Design preset collapsed to slices.
func Default() *Config {
	c := &Config{
		Options:  Options{Root: graph.DefaultRoot, Preset: PresetFSD},
		Collapse: Collapse{Mode: string(collapse.ModePattern)},
	}
	c.SetDefaults()
	return c
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.Options.Root == "" {
		c.Options.Root = graph.DefaultRoot
	}
	if c.Collapse.Mode == "" {
		c.Collapse.Mode = string(collapse.ModeNone)
	}
	if c.Collapse.Mode == string(collapse.ModePattern) && c.Collapse.Pattern == "" && c.Options.Preset == PresetFSD {
		c.Collapse.Pattern = collapse.FSDPattern(c.Options.Root)
	}
	if c.Options.Format == "" {
		c.Options.Format = string(graphio.FormatAuto)
	}
}

// Validate checks settings that make a run impossible. Individual rules are
// not validated here: the rule engine skips malformed rules and keeps going.
func (c *Config) Validate() error {
	switch c.Options.Preset {
	case "", PresetFSD:
	default:
		return errors.New(errors.ErrCodeConfig, "unknown preset %q (must be %q or empty)", c.Options.Preset, PresetFSD)
	}
	if c.Options.Workers < 0 {
		return errors.New(errors.ErrCodeConfig, "workers must not be negative, got %d", c.Options.Workers)
	}
	if c.Options.IncludeOnly != "" {
		if _, err := errors.ValidatePattern("options.include_only", c.Options.IncludeOnly); err != nil {
			return err
		}
	}
	if _, err := graphio.ParseFormat(c.Options.Format); err != nil {
		return errors.Wrap(errors.ErrCodeConfig, err, "options.format")
	}
	if err := c.CollapseSpec().Validate(); err != nil {
		return err
	}
	return c.BuildTheme().Validate()
}

// =============================================================================
// Conversion
// =============================================================================

// Layout returns the module layout for the configured root.
func (c *Config) Layout() graph.Layout {
	return graph.NewLayout(c.Options.Root, nil)
}

// ImportOptions returns the graph import settings.
func (c *Config) ImportOptions() graphio.Options {
	format, _ := graphio.ParseFormat(c.Options.Format)
	return graphio.Options{
		Format:       format,
		IncludeOnly:  c.Options.IncludeOnly,
		SkipTypeOnly: c.Options.SkipTypeOnly,
	}
}

// RuleList returns the preset rules followed by the configured rules, in
// declaration order.
func (c *Config) RuleList() []rules.Rule {
	var out []rules.Rule
	if c.Options.Preset == PresetFSD {
		out = append(out, rules.FSDPreset(c.Options.Root)...)
	}
	for _, r := range c.Rules {
		rule := rules.Rule{
			Name:     r.Name,
			Severity: rules.Severity(r.Severity),
			Comment:  r.Comment,
			From:     rules.Matcher{Path: r.From.Path, PathNot: r.From.PathNot},
		}
		if r.To.Circular {
			rule.Kind = rules.KindCircular
		} else {
			rule.To = rules.Matcher{Path: r.To.Path, PathNot: r.To.PathNot}
		}
		out = append(out, rule)
	}
	return out
}

// CollapseSpec returns the collapse settings.
func (c *Config) CollapseSpec() collapse.Spec {
	return collapse.Spec{
		Mode:    collapse.Mode(c.Collapse.Mode),
		Pattern: c.Collapse.Pattern,
		Depth:   c.Collapse.Depth,
	}
}

// BuildTheme returns the preset theme extended by the configured theme.
func (c *Config) BuildTheme() *theme.Theme {
	base := &theme.Theme{}
	if c.Options.Preset == PresetFSD {
		base = theme.FSD(c.Options.Root)
	}
	return base.Extend(c.Theme.toTheme())
}

func (t ThemeConfig) toTheme() *theme.Theme {
	out := &theme.Theme{
		Graph: nodelink.Attrs(t.Graph),
		Node:  nodelink.Attrs(t.Node),
		Edge:  nodelink.Attrs(t.Edge),
	}
	for _, s := range t.Modules {
		out.Modules = append(out.Modules, s.toRule())
	}
	for _, s := range t.Dependencies {
		out.Dependencies = append(out.Dependencies, s.toRule())
	}
	return out
}

func (s StyleConfig) toRule() theme.StyleRule {
	return theme.StyleRule{Criteria: s.Criteria.toCriteria(), Attributes: nodelink.Attrs(s.Attributes)}
}

func (c CriteriaConfig) toCriteria() theme.Criteria {
	var all theme.All
	if c.Source != "" {
		all = append(all, theme.Source{Pattern: c.Source})
	}
	if c.Resolved != "" {
		all = append(all, theme.Target{Pattern: c.Resolved})
	}
	if c.Collapsed != nil {
		all = append(all, theme.Collapsed{Want: *c.Collapsed})
	}
	if c.Valid != nil {
		all = append(all, theme.Valid{Want: *c.Valid})
	}
	if len(all) == 1 {
		return all[0]
	}
	return all
}

// Hash returns a content hash of the configuration, used in cache keys and
// reports.
func (c *Config) Hash() string {
	data, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// String summarizes the configuration for logs.
func (c *Config) String() string {
	preset := c.Options.Preset
	if preset == "" {
		preset = "none"
	}
	return fmt.Sprintf("preset=%s rules=%d collapse=%s", preset, len(c.Rules), c.Collapse.Mode)
}
