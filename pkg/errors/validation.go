package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxModulePathLength bounds module identifiers read from graph documents.
const maxModulePathLength = 1024

// ValidateModulePath validates a module identifier read from a dependency graph.
// Module paths are slash-separated and relative to the analysed source tree.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 1024 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No backslashes (Windows-style paths must be normalised by the graph builder)
func ValidateModulePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "module path cannot be empty")
	}

	if len(path) > maxModulePathLength {
		return New(ErrCodeInvalidPath, "module path too long (max %d characters)", maxModulePathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "module path %q contains invalid characters", path)
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "module path %q must be relative (cannot start with /)", path)
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "module path %q cannot contain backslashes", path)
	}

	return nil
}

// ValidatePattern compiles a regular expression from a policy document and
// returns a configuration error naming the owner (rule or collapse setting)
// when the expression is malformed.
func ValidatePattern(owner, pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, Wrap(ErrCodeConfigPattern, err, "%s: invalid pattern %q", owner, pattern)
	}
	return re, nil
}

// ruleNameRegex matches rule names: lowercase words separated by dashes,
// dots or underscores (e.g. "fsd-layer-pages-upward").
var ruleNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// ValidateRuleName validates the name of a policy rule.
func ValidateRuleName(name string) error {
	if name == "" {
		return New(ErrCodeConfig, "rule name cannot be empty")
	}
	if !ruleNameRegex.MatchString(name) {
		return New(ErrCodeConfig, "invalid rule name: %q", name)
	}
	return nil
}
