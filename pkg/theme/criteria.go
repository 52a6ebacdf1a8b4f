package theme

import (
	"fmt"
	"regexp"

	"github.com/matzehuels/fsdcheck/pkg/errors"
)

// Criteria selects the nodes or edges a [StyleRule] applies to.
//
// The set of criteria is closed: [Collapsed], [Source], [Target], [Valid],
// [All], [Any] and [Not]. A nil Criteria matches everything.
type Criteria interface {
	isCriteria()
}

// Collapsed matches nodes that stand for a folder (Want true) or a single
// module (Want false). An edge is collapsed when either endpoint is.
type Collapsed struct{ Want bool }

// Source matches nodes whose id, or edges whose source node id, matches
// Pattern.
type Source struct{ Pattern string }

// Target matches edges whose target node id matches Pattern. It never
// matches nodes.
type Target struct{ Pattern string }

// Valid matches edges by their validity flag. A node is valid when all of
// its outgoing edges are.
type Valid struct{ Want bool }

// All matches when every inner criterion matches. An empty All matches
// everything.
type All []Criteria

// Any matches when at least one inner criterion matches. An empty Any
// matches nothing.
type Any []Criteria

// Not inverts a criterion.
type Not struct{ Criteria Criteria }

func (Collapsed) isCriteria() {}
func (Source) isCriteria()    {}
func (Target) isCriteria()    {}
func (Valid) isCriteria()     {}
func (All) isCriteria()       {}
func (Any) isCriteria()       {}
func (Not) isCriteria()       {}

// subject is the styled element as criteria see it.
type subject struct {
	id        string
	target    string
	edge      bool
	collapsed bool
	valid     bool
}

type predicate func(subject) bool

// compile turns criteria into a predicate, compiling every pattern once.
func compile(owner string, c Criteria) (predicate, error) {
	switch c := c.(type) {
	case nil:
		return func(subject) bool { return true }, nil
	case Collapsed:
		return func(s subject) bool { return s.collapsed == c.Want }, nil
	case Valid:
		return func(s subject) bool { return s.valid == c.Want }, nil
	case Source:
		re, err := errors.ValidatePattern(owner, c.Pattern)
		if err != nil {
			return nil, err
		}
		return func(s subject) bool { return re.MatchString(s.id) }, nil
	case Target:
		re, err := errors.ValidatePattern(owner, c.Pattern)
		if err != nil {
			return nil, err
		}
		return targetMatch(re), nil
	case All:
		preds, err := compileAll(owner, c)
		if err != nil {
			return nil, err
		}
		return func(s subject) bool {
			for _, p := range preds {
				if !p(s) {
					return false
				}
			}
			return true
		}, nil
	case Any:
		preds, err := compileAll(owner, c)
		if err != nil {
			return nil, err
		}
		return func(s subject) bool {
			for _, p := range preds {
				if p(s) {
					return true
				}
			}
			return false
		}, nil
	case Not:
		inner, err := compile(owner, c.Criteria)
		if err != nil {
			return nil, err
		}
		return func(s subject) bool { return !inner(s) }, nil
	default:
		return nil, errors.New(errors.ErrCodeConfig, "%s: unsupported criteria %T", owner, c)
	}
}

func compileAll(owner string, cs []Criteria) ([]predicate, error) {
	preds := make([]predicate, len(cs))
	for i, c := range cs {
		p, err := compile(fmt.Sprintf("%s[%d]", owner, i), c)
		if err != nil {
			return nil, err
		}
		preds[i] = p
	}
	return preds, nil
}

func targetMatch(re *regexp.Regexp) predicate {
	return func(s subject) bool { return s.edge && re.MatchString(s.target) }
}
