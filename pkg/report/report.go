// Package report assembles the outcome of a check into a persistent,
// serializable document.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/fsdcheck/pkg/buildinfo"
	"github.com/matzehuels/fsdcheck/pkg/errors"
	"github.com/matzehuels/fsdcheck/pkg/rules"
)

// Summary counts violations by severity.
type Summary struct {
	Modules      int `json:"modules" bson:"modules"`
	Edges        int `json:"edges" bson:"edges"`
	InvalidEdges int `json:"invalid_edges" bson:"invalid_edges"`
	Cycles       int `json:"cycles" bson:"cycles"`
	Errors       int `json:"errors" bson:"errors"`
	Warnings     int `json:"warnings" bson:"warnings"`
	Infos        int `json:"infos" bson:"infos"`
}

// Report is the persisted result of one check.
type Report struct {
	ID         string            `json:"id" bson:"_id"`
	CreatedAt  time.Time         `json:"created_at" bson:"created_at"`
	Tool       string            `json:"tool" bson:"tool"`
	Source     string            `json:"source,omitempty" bson:"source,omitempty"`
	GraphHash  string            `json:"graph_hash" bson:"graph_hash"`
	ConfigHash string            `json:"config_hash" bson:"config_hash"`
	Passed     bool              `json:"passed" bson:"passed"`
	Summary    Summary           `json:"summary" bson:"summary"`
	Violations []rules.Violation `json:"violations" bson:"violations"`
	Warnings   []rules.Warning   `json:"warnings,omitempty" bson:"warnings,omitempty"`
	Skipped    []string          `json:"skipped_rules,omitempty" bson:"skipped_rules,omitempty"`
}

// New builds a report from an evaluation result.
func New(res *rules.Result, source, graphHash, configHash string) *Report {
	r := &Report{
		ID:         uuid.NewString(),
		CreatedAt:  time.Now().UTC(),
		Tool:       buildinfo.Short(),
		Source:     source,
		GraphHash:  graphHash,
		ConfigHash: configHash,
		Passed:     res.Passed(),
		Violations: res.Violations,
		Warnings:   res.Warnings,
		Summary: Summary{
			Modules:  res.Graph.ModuleCount(),
			Edges:    res.Graph.EdgeCount(),
			Cycles:   len(res.Cycles),
			Errors:   res.Count(rules.SeverityError),
			Warnings: res.Count(rules.SeverityWarning),
			Infos:    res.Count(rules.SeverityInfo),
		},
	}
	if r.Violations == nil {
		r.Violations = []rules.Violation{}
	}
	for _, e := range res.Graph.Edges() {
		if !e.IsValid() {
			r.Summary.InvalidEdges++
		}
	}
	for _, s := range res.Skipped {
		r.Skipped = append(r.Skipped, s.Rule)
	}
	return r
}

// Err returns a POLICY_FAILURE error when the report did not pass.
func (r *Report) Err() error {
	if r.Passed {
		return nil
	}
	return errors.New(errors.ErrCodePolicyFailure, "%d error-severity violation(s)", r.Summary.Errors)
}

// WriteJSON encodes the report as indented JSON.
func WriteJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// ReadJSON decodes a report written by WriteJSON.
func ReadJSON(rd io.Reader) (*Report, error) {
	var r Report
	if err := json.NewDecoder(rd).Decode(&r); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode report")
	}
	return &r, nil
}

// WriteText writes a plain-text rendering of the report, one violation per
// line, suitable for CI logs.
func WriteText(w io.Writer, r *Report) error {
	var b strings.Builder
	for _, v := range r.Violations {
		fmt.Fprintf(&b, "%-7s %s\n", v.Severity, v.Rule)
		if len(v.CyclePath) > 0 {
			fmt.Fprintf(&b, "        %s\n", strings.Join(v.CyclePath, " -> "))
		} else {
			fmt.Fprintf(&b, "        %s -> %s\n", v.From, v.To)
		}
		if v.Comment != "" {
			fmt.Fprintf(&b, "        %s\n", v.Comment)
		}
	}
	for _, warn := range r.Warnings {
		fmt.Fprintf(&b, "warning: rule %s: %s\n", warn.Rule, warn.Message)
	}
	for _, name := range r.Skipped {
		fmt.Fprintf(&b, "warning: rule %s skipped (malformed)\n", name)
	}
	fmt.Fprintf(&b, "\n%s\n", r.SummaryLine())
	_, err := io.WriteString(w, b.String())
	return err
}

// SummaryLine returns a one-line summary such as
// "FAIL 3 errors, 1 warning, 0 infos (120 modules, 340 edges)".
func (r *Report) SummaryLine() string {
	status := "PASS"
	if !r.Passed {
		status = "FAIL"
	}
	return fmt.Sprintf("%s %s, %s, %s (%d modules, %d edges)",
		status,
		plural(r.Summary.Errors, "error"),
		plural(r.Summary.Warnings, "warning"),
		plural(r.Summary.Infos, "info"),
		r.Summary.Modules, r.Summary.Edges)
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
