// Package pipeline runs a complete fsdcheck check.
//
// The same pipeline backs the CLI and the HTTP server so both agree on
// defaults, caching and output bytes.
//
// # Architecture
//
// A check consists of four stages:
//
//  1. Import: read a native or dependency-cruiser graph document
//  2. Evaluate: run the policy rules and annotate edge validity
//  3. Layout: collapse the annotated graph and apply the theme
//  4. Render: produce DOT, SVG, HTML, PDF or PNG
//
// Each stage can be run on its own.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	g, err := runner.Import(ctx, "deps.json", cfg)
//	result, err := runner.Check(ctx, g, cfg, pipeline.Options{Formats: []string{"svg"}})
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts["svg"]
//	return result.Report.Err()
package pipeline

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/fsdcheck/pkg/collapse"
	"github.com/matzehuels/fsdcheck/pkg/errors"
	"github.com/matzehuels/fsdcheck/pkg/render/nodelink"
	"github.com/matzehuels/fsdcheck/pkg/report"
	"github.com/matzehuels/fsdcheck/pkg/rules"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultScale is the PNG resolution multiplier.
	DefaultScale = 2.0

	// DefaultTitle is the HTML page title.
	DefaultTitle = "FSD high-level dependencies"

	// DefaultOutput is the default artifact file name without extension.
	DefaultOutput = "fsd-high-level-dependencies"
)

// Format constants for render outputs.
const (
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatHTML = "html"
	FormatPDF  = "pdf"
	FormatPNG  = "png"
)

// ValidFormats is the set of supported render formats.
var ValidFormats = map[string]bool{
	FormatDOT:  true,
	FormatSVG:  true,
	FormatHTML: true,
	FormatPDF:  true,
	FormatPNG:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options controls one pipeline run. Policy settings come from the
// configuration; Options only covers what varies per run.
type Options struct {
	// Source names the graph document in reports and logs.
	Source string `json:"source,omitempty"`

	// Formats lists the artifacts to render. Empty means check only.
	Formats []string `json:"formats,omitempty"`

	// Collapse overrides the configured collapse settings when set.
	Collapse *collapse.Spec `json:"collapse,omitempty"`

	// Clusters draws one box per layer.
	Clusters bool `json:"clusters,omitempty"`

	Scale float64 `json:"scale,omitempty"`
	Title string  `json:"title,omitempty"`

	// Refresh bypasses cached reports and artifacts.
	Refresh bool `json:"refresh,omitempty"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Evaluation holds the annotated graph, violations and cycles.
	Evaluation *rules.Result

	// Report is the persistent summary of the evaluation.
	Report *report.Report

	// View is the collapsed graph that was rendered.
	View *collapse.View

	// Description is the styled view handed to the DOT writer.
	Description *nodelink.Description

	// DOT is the Graphviz source of the rendering.
	DOT string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ModuleCount  int
	EdgeCount    int
	NodeCount    int
	EvaluateTime time.Duration
	LayoutTime   time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ReportHit bool // the report was reused from an identical earlier run
	RenderHit bool // all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)", format, strings.Join(FormatNames(), ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// FormatNames returns the supported formats in sorted order.
func FormatNames() []string {
	names := make([]string, 0, len(ValidFormats))
	for f := range ValidFormats {
		names = append(names, f)
	}
	slices.Sort(names)
	return names
}

// ParseFormats splits a comma-separated format list, dropping blanks and
// duplicates.
func ParseFormats(s string) ([]string, error) {
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || slices.Contains(out, f) {
			continue
		}
		if err := ValidateFormat(f); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// =============================================================================
// Options Methods
// =============================================================================

// SetDefaults fills unset render options.
func (o *Options) SetDefaults() {
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Title == "" {
		o.Title = DefaultTitle
	}
}

// Validate checks the options.
func (o *Options) Validate() error {
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "scale must be positive, got %g", o.Scale)
	}
	if o.Collapse != nil {
		if err := o.Collapse.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (o *Options) String() string {
	return fmt.Sprintf("formats=%v clusters=%t scale=%g", o.Formats, o.Clusters, o.Scale)
}
