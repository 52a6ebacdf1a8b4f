package rules

import (
	"fmt"
	"io"
	"runtime"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/fsdcheck/pkg/errors"
	"github.com/matzehuels/fsdcheck/pkg/graph"
)

// =============================================================================
// Compilation
// =============================================================================

// compiledRule is a validated rule with its patterns compiled.
type compiledRule struct {
	Rule
	order int
	from  *matcher
	to    *matcher
}

// RuleSet is an ordered list of compiled rules. Malformed rules are excluded
// and listed in Skipped.
type RuleSet struct {
	rules   []*compiledRule
	Skipped []SkippedRule
}

// Rules returns the accepted rules in declaration order.
func (s *RuleSet) Rules() []Rule {
	out := make([]Rule, len(s.rules))
	for i, r := range s.rules {
		out[i] = r.Rule
	}
	return out
}

// Len returns the number of accepted rules.
func (s *RuleSet) Len() int { return len(s.rules) }

// Compile validates and compiles rules.
//
// A rule with an invalid name, severity, kind or pattern is skipped and
// recorded in [RuleSet].Skipped; the remaining rules still run. If rules is
// non-empty and every rule is malformed, Compile returns a CONFIG_INVALID
// error together with the (empty) rule set. An empty rule list is valid and
// yields no violations.
func Compile(rules []Rule) (*RuleSet, error) {
	set := &RuleSet{}
	for i, r := range rules {
		cr, err := compileRule(i, r)
		if err != nil {
			set.Skipped = append(set.Skipped, SkippedRule{Rule: r.Name, Err: err})
			continue
		}
		set.rules = append(set.rules, cr)
	}
	if len(rules) > 0 && len(set.rules) == 0 {
		return set, errors.Wrap(errors.ErrCodeConfig, set.Skipped[0].Err, "all %d rules are malformed", len(rules))
	}
	return set, nil
}

func compileRule(order int, r Rule) (*compiledRule, error) {
	if err := errors.ValidateRuleName(r.Name); err != nil {
		return nil, err
	}
	sev, err := ParseSeverity(string(r.Severity))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfig, err, "rule %s", r.Name)
	}
	r.Severity = sev

	cr := &compiledRule{Rule: r, order: order}
	if cr.from, err = compileMatcher("rule "+r.Name+" from", r.From, false); err != nil {
		return nil, err
	}

	switch r.Kind {
	case KindPairwise:
		if cr.to, err = compileMatcher("rule "+r.Name+" to", r.To, true); err != nil {
			return nil, err
		}
	case KindCircular:
	default:
		return nil, errors.New(errors.ErrCodeConfig, "rule %s: unknown kind %s", r.Name, r.Kind)
	}
	return cr, nil
}

// =============================================================================
// Evaluation
// =============================================================================

// Options configures an [Engine].
type Options struct {
	// Workers bounds the number of rules evaluated concurrently.
	// Zero selects runtime.GOMAXPROCS(0).
	Workers int

	// Logger receives warnings about skipped rules and failed
	// back-references. Nil discards them.
	Logger *log.Logger
}

// Engine evaluates a compiled rule set against module graphs. Calls to
// Evaluate on the same Engine are serialized because templated patterns
// memoize their expansions.
type Engine struct {
	mu      sync.Mutex
	set     *RuleSet
	workers int
	logger  *log.Logger
}

// NewEngine compiles rules and returns an engine for them. Skipped rules are
// logged as warnings. The error is non-nil only when every rule is malformed.
func NewEngine(rules []Rule, opts Options) (*Engine, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	set, err := Compile(rules)
	for _, s := range set.Skipped {
		logger.Warn("skipping malformed rule", "rule", s.Rule, "err", s.Err)
	}
	if err != nil {
		return nil, err
	}
	return &Engine{set: set, workers: workers, logger: logger}, nil
}

// RuleSet returns the compiled rule set.
func (e *Engine) RuleSet() *RuleSet { return e.set }

// Result is the outcome of evaluating a rule set against a graph.
type Result struct {
	// Graph is a copy of the input graph in which every edge carries a
	// validity flag. The input graph is not modified.
	Graph *graph.Graph

	// Violations is sorted by rule declaration order, then from, to and
	// cycle path.
	Violations []Violation

	// Warnings lists recovered rule problems, at most one per rule.
	Warnings []Warning

	// Skipped lists malformed rules that did not run.
	Skipped []SkippedRule

	// Cycles holds every distinct cycle of the graph. It is only computed
	// when the rule set contains a circular rule.
	Cycles [][]string
}

// Count returns the number of violations with the given severity.
func (r *Result) Count(sev Severity) int {
	n := 0
	for _, v := range r.Violations {
		if v.Severity == sev {
			n++
		}
	}
	return n
}

// Passed reports whether no error-severity violation was found.
func (r *Result) Passed() bool { return r.Count(SeverityError) == 0 }

// pair is a distinct (from, to) module pair. Rules only look at paths, so all
// edges between the same pair share one verdict.
type pair struct{ from, to string }

// ruleOutcome is what a single rule contributes to a Result.
type ruleOutcome struct {
	violations []Violation
	invalid    []pair
	warning    *Warning
}

// Evaluate runs every rule against g.
//
// All rules fire independently; one edge may be caught by several rules and
// then yields one violation per rule. An edge is marked invalid iff at least
// one error-severity rule catches it; for circular rules every edge along a
// reported cycle counts as caught. Warning and info rules never invalidate
// edges.
//
// Evaluate returns an UNKNOWN_MODULE error if an edge endpoint is missing from
// the module set. Violations are never returned as errors.
func (e *Engine) Evaluate(g *graph.Graph) (*Result, error) {
	if err := g.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnknownModule, err, "graph does not satisfy the input contract")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	pairs := distinctPairs(g)
	var cycles [][]string
	if slices.ContainsFunc(e.set.rules, func(r *compiledRule) bool { return r.Kind == KindCircular }) {
		cycles = FindCycles(g, e.workers)
	}

	outcomes := make([]ruleOutcome, len(e.set.rules))
	var eg errgroup.Group
	eg.SetLimit(e.workers)
	for i, r := range e.set.rules {
		eg.Go(func() error {
			switch r.Kind {
			case KindCircular:
				outcomes[i] = r.evalCycles(cycles)
			default:
				outcomes[i] = r.evalPairs(pairs)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	res := &Result{
		Graph:   g.Clone(),
		Skipped: slices.Clone(e.set.Skipped),
		Cycles:  cycles,
	}
	for _, edge := range res.Graph.Edges() {
		res.Graph.SetEdgeValidity(edge, true)
	}
	for _, out := range outcomes {
		res.Violations = append(res.Violations, out.violations...)
		for _, p := range out.invalid {
			res.Graph.Annotate(p.from, p.to, false)
		}
		if out.warning != nil {
			res.Warnings = append(res.Warnings, *out.warning)
			e.logger.Warn("rule back-reference failed", "rule", out.warning.Rule, "err", out.warning.Message)
		}
	}
	slices.SortFunc(res.Violations, compareViolations)

	e.logger.Debug("evaluated rules",
		"rules", len(e.set.rules),
		"edges", g.EdgeCount(),
		"violations", len(res.Violations),
		"cycles", len(cycles))
	return res, nil
}

func distinctPairs(g *graph.Graph) []pair {
	var pairs []pair
	for _, e := range g.SortedEdges() {
		p := pair{e.From, e.To}
		if n := len(pairs); n > 0 && pairs[n-1] == p {
			continue
		}
		pairs = append(pairs, p)
	}
	return pairs
}

func (r *compiledRule) violation(from, to string, cycle []string) Violation {
	return Violation{
		Rule:      r.Name,
		Severity:  r.Severity,
		Comment:   r.Comment,
		From:      from,
		To:        to,
		CyclePath: cycle,
		order:     r.order,
	}
}

// evalPairs applies a pairwise rule to every distinct module pair. pairs is
// sorted by from, so the "from" match is computed once per module.
func (r *compiledRule) evalPairs(pairs []pair) ruleOutcome {
	var (
		out      ruleOutcome
		lastFrom string
		groups   []string
		fromOK   bool
	)
	for i, p := range pairs {
		if i == 0 || p.from != lastFrom {
			lastFrom = p.from
			groups, fromOK = r.from.submatch(p.from)
		}
		if !fromOK {
			continue
		}
		hit, err := r.to.match(p.to, groups)
		if err != nil {
			// Fail closed: the edge is not caught, and the rule is reported once.
			if out.warning == nil {
				out.warning = &Warning{Rule: r.Name, Message: fmt.Sprintf("%s -> %s: %v", p.from, p.to, err)}
			}
			continue
		}
		if !hit {
			continue
		}
		out.violations = append(out.violations, r.violation(p.from, p.to, nil))
		if r.Severity == SeverityError {
			out.invalid = append(out.invalid, p)
		}
	}
	return out
}

// evalCycles reports each cycle that passes through a module selected by the
// rule's "from" matcher.
func (r *compiledRule) evalCycles(cycles [][]string) ruleOutcome {
	var out ruleOutcome
	for _, c := range cycles {
		if !slices.ContainsFunc(c[:len(c)-1], func(m string) bool {
			_, ok := r.from.submatch(m)
			return ok
		}) {
			continue
		}
		out.violations = append(out.violations, r.violation(c[0], c[1], slices.Clone(c)))
		if r.Severity == SeverityError {
			for _, p := range cycleEdges(c) {
				out.invalid = append(out.invalid, pair{p[0], p[1]})
			}
		}
	}
	return out
}
