package rules

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	fsderrors "github.com/matzehuels/fsdcheck/pkg/errors"
)

// ErrGroupOutOfRange is returned by [Expand] when a template references a
// capture group that the "from" match does not have.
var ErrGroupOutOfRange = errors.New("back-reference out of range")

// Expand substitutes the numbered placeholders $0, $1, ... in template with
// the corresponding entries of groups, where groups[0] is the whole match and
// groups[i] the i-th capture group, as returned by
// [regexp.Regexp.FindStringSubmatch].
//
// Substituted values are quoted with [regexp.QuoteMeta] so that a captured
// path segment always matches literally. "$$" produces a literal "$"; a "$"
// not followed by a digit is left in place so end-of-input anchors keep
// working. A group that did not participate in the match expands to the empty
// string.
//
// Expand is a pure function of its inputs.
func Expand(groups []string, template string) (string, error) {
	if !strings.Contains(template, "$") {
		return template, nil
	}

	var b strings.Builder
	b.Grow(len(template))
	for i := 0; i < len(template); i++ {
		c := template[i]
		if c != '$' || i+1 >= len(template) {
			b.WriteByte(c)
			continue
		}
		next := template[i+1]
		if next == '$' {
			b.WriteByte('$')
			i++
			continue
		}
		if !isDigit(next) {
			b.WriteByte(c)
			continue
		}
		j := i + 1
		for j < len(template) && isDigit(template[j]) {
			j++
		}
		n, err := strconv.Atoi(template[i+1 : j])
		if err != nil || n >= len(groups) {
			return "", fmt.Errorf("%w: $%s with %d groups", ErrGroupOutOfRange, template[i+1:j], len(groups)-1)
		}
		b.WriteString(regexp.QuoteMeta(groups[n]))
		i = j - 1
	}
	return b.String(), nil
}

// placeholders returns the highest group index referenced by template, or -1
// if the template has no placeholders.
func placeholders(template string) int {
	highest := -1
	for i := 0; i < len(template)-1; i++ {
		if template[i] != '$' {
			continue
		}
		if template[i+1] == '$' {
			i++
			continue
		}
		j := i + 1
		for j < len(template) && isDigit(template[j]) {
			j++
		}
		if j == i+1 {
			continue
		}
		if n, err := strconv.Atoi(template[i+1 : j]); err == nil && n > highest {
			highest = n
		}
		i = j - 1
	}
	return highest
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// pattern is a compiled rule pattern. Static patterns are compiled once;
// templated patterns are compiled per distinct expansion and memoized.
//
// A pattern is owned by a single rule and evaluated by one worker at a time,
// so the memo is not synchronized.
type pattern struct {
	raw     string
	re      *regexp.Regexp
	highest int
	memo    map[string]*regexp.Regexp
}

// compilePattern validates raw. When templated is false, placeholders are
// treated as plain regular expression text. Templated patterns are checked by
// expanding every placeholder to a sample segment.
func compilePattern(owner, raw string, templated bool) (*pattern, error) {
	p := &pattern{raw: raw, highest: -1}
	if templated {
		p.highest = placeholders(raw)
	}
	if p.highest < 0 {
		re, err := fsderrors.ValidatePattern(owner, raw)
		if err != nil {
			return nil, err
		}
		p.re = re
		return p, nil
	}

	sample := make([]string, p.highest+1)
	for i := range sample {
		sample[i] = "x"
	}
	expanded, err := Expand(sample, raw)
	if err != nil {
		return nil, fsderrors.Wrap(fsderrors.ErrCodeConfigPattern, err, "%s: invalid pattern %q", owner, raw)
	}
	if _, err := fsderrors.ValidatePattern(owner, expanded); err != nil {
		return nil, fsderrors.Wrap(fsderrors.ErrCodeConfigPattern, err, "%s: invalid pattern %q", owner, raw)
	}
	p.memo = make(map[string]*regexp.Regexp)
	return p, nil
}

// templated reports whether the pattern depends on captured groups.
func (p *pattern) templated() bool { return p.re == nil }

// resolve returns the regular expression for the given "from" groups.
func (p *pattern) resolve(groups []string) (*regexp.Regexp, error) {
	if p.re != nil {
		return p.re, nil
	}
	expanded, err := Expand(groups, p.raw)
	if err != nil {
		return nil, err
	}
	if re, ok := p.memo[expanded]; ok {
		return re, nil
	}
	re, err := regexp.Compile(expanded)
	if err != nil {
		return nil, fmt.Errorf("compile expanded pattern %q: %w", expanded, err)
	}
	p.memo[expanded] = re
	return re, nil
}

// matcher is a compiled [Matcher].
type matcher struct {
	path    *pattern
	pathNot []*pattern
}

// compileMatcher compiles m. The Path of a "from" matcher (templated false) is
// anchored at the start of the module path, so "shared" selects
// "shared/x.ts" but not "src/features/shared-menu/x.ts".
func compileMatcher(owner string, m Matcher, templated bool) (*matcher, error) {
	out := &matcher{}
	if m.Path != "" {
		raw := m.Path
		if !templated {
			raw = anchored(raw)
		}
		p, err := compilePattern(owner, raw, templated)
		if err != nil {
			return nil, err
		}
		out.path = p
	}
	for _, raw := range m.PathNot {
		p, err := compilePattern(owner, raw, templated)
		if err != nil {
			return nil, err
		}
		out.pathNot = append(out.pathNot, p)
	}
	return out, nil
}

// anchored wraps raw so it only matches at the start of its input.
func anchored(raw string) string {
	return "^(?:" + raw + ")"
}

// match reports whether path is selected. For templated matchers groups holds
// the captures of the "from" match.
func (m *matcher) match(path string, groups []string) (bool, error) {
	if m.path != nil {
		re, err := m.path.resolve(groups)
		if err != nil {
			return false, err
		}
		if !re.MatchString(path) {
			return false, nil
		}
	}
	for _, not := range m.pathNot {
		re, err := not.resolve(groups)
		if err != nil {
			return false, err
		}
		if re.MatchString(path) {
			return false, nil
		}
	}
	return true, nil
}

// submatch matches path against a static matcher and returns the capture
// groups of the Path expression. For an empty Path the groups hold only the
// whole path.
func (m *matcher) submatch(path string) ([]string, bool) {
	groups := []string{path}
	if m.path != nil {
		groups = m.path.re.FindStringSubmatch(path)
		if groups == nil {
			return nil, false
		}
	}
	for _, not := range m.pathNot {
		if not.re.MatchString(path) {
			return nil, false
		}
	}
	return groups, true
}
