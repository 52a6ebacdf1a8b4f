package rules

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Severity classifies how serious a rule breach is. Only error-severity
// violations mark edges invalid and fail a check.
type Severity string

// Rule severities, from most to least serious.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// ParseSeverity validates a severity name. The empty string selects error,
// matching the default of the policy document.
func ParseSeverity(s string) (Severity, error) {
	switch sev := Severity(strings.ToLower(s)); sev {
	case "":
		return SeverityError, nil
	case SeverityError, SeverityWarning, SeverityInfo:
		return sev, nil
	default:
		return "", fmt.Errorf("unknown severity %q (must be error, warning or info)", s)
	}
}

// RuleKind is the closed set of rule categories the engine can evaluate.
type RuleKind int

const (
	// KindPairwise rules are decided edge by edge from path patterns.
	KindPairwise RuleKind = iota
	// KindCircular rules are decided on the whole graph by cycle detection.
	KindCircular
)

// String returns the kind name used in logs and reports.
func (k RuleKind) String() string {
	switch k {
	case KindPairwise:
		return "pairwise"
	case KindCircular:
		return "circular"
	default:
		return fmt.Sprintf("RuleKind(%d)", int(k))
	}
}

// Matcher selects modules by path.
//
// Path is a regular expression; an empty Path matches every module. A module
// is excluded again if any PathNot expression matches it. Patterns on the "to"
// side of a pairwise rule may reference groups captured by the "from" pattern
// with $1, $2, ... (see [Expand]).
type Matcher struct {
	Path    string
	PathNot []string
}

// IsZero reports whether the matcher places no restriction.
func (m Matcher) IsZero() bool { return m.Path == "" && len(m.PathNot) == 0 }

// Rule is a single architecture constraint.
//
// For pairwise rules an edge is forbidden when From matches the importing
// module and To matches the imported module. For circular rules every
// dependency cycle that passes through a module selected by From is forbidden;
// To is ignored.
type Rule struct {
	Name     string
	Severity Severity
	Comment  string
	Kind     RuleKind
	From     Matcher
	To       Matcher
}

// Violation is a detected architecture breach. Violations are data, never
// errors.
//
// For circular rules From and To are the first edge of the normalized cycle
// and CyclePath holds the closed cycle, starting and ending with the
// lexicographically smallest module.
type Violation struct {
	Rule      string   `json:"rule" bson:"rule"`
	Severity  Severity `json:"severity" bson:"severity"`
	Comment   string   `json:"comment,omitempty" bson:"comment,omitempty"`
	From      string   `json:"from" bson:"from"`
	To        string   `json:"to" bson:"to"`
	CyclePath []string `json:"cycle_path,omitempty" bson:"cycle_path,omitempty"`

	// order is the declaration index of the rule, used for sorting.
	order int
}

// String formats the violation for logs.
func (v Violation) String() string {
	if len(v.CyclePath) > 0 {
		return fmt.Sprintf("%s [%s]: %s", v.Rule, v.Severity, strings.Join(v.CyclePath, " -> "))
	}
	return fmt.Sprintf("%s [%s]: %s -> %s", v.Rule, v.Severity, v.From, v.To)
}

// compareViolations orders violations by rule declaration order, then from
// path, then to path, then cycle path.
func compareViolations(a, b Violation) int {
	return cmp.Or(
		cmp.Compare(a.order, b.order),
		cmp.Compare(a.From, b.From),
		cmp.Compare(a.To, b.To),
		slices.Compare(a.CyclePath, b.CyclePath),
	)
}

// Warning is a recovered, non-fatal problem with a rule, such as a
// back-reference to a capture group the "from" pattern does not have.
type Warning struct {
	Rule    string `json:"rule" bson:"rule"`
	Message string `json:"message" bson:"message"`
}

// SkippedRule records a malformed rule that was excluded from the run.
type SkippedRule struct {
	Rule string `json:"rule" bson:"rule"`
	Err  error  `json:"-" bson:"-"`
}
