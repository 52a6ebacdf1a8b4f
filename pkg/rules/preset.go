package rules

import (
	"regexp"
	"strings"

	"github.com/matzehuels/fsdcheck/pkg/graph"
)

// fsdLayerOrder lists the layers from highest to lowest as the preset rules
// see them. Layouts sit below pages: a page may compose layouts.
var fsdLayerOrder = []string{"app", "processes", "pages", "layouts", "widgets", "features", "entities", "shared"}

// fsdSliceable lists the layers that are split into slices.
var fsdSliceable = []string{"processes", "pages", "layouts", "widgets", "features", "entities"}

// RootPrefix returns the anchored pattern prefix for modules below root,
// e.g. "^src/" for "src" and "^" for an empty root or graph.TopLevelRoot.
func RootPrefix(root string) string {
	root = graph.CleanRoot(root)
	if root == "" {
		return "^"
	}
	return "^" + regexp.QuoteMeta(root) + "/"
}

// FSDPreset returns the Feature-Sliced Design rule set for a source tree
// whose layers live directly under root:
//
//   - fsd-no-circular: no dependency cycles
//   - fsd-layer-<layer>-upward: a layer imports only from lower layers
//   - fsd-cross-slice: slices of one layer do not import each other
//   - fsd-public-api: other slices are imported through their index module only
//
// All preset rules have error severity.
func FSDPreset(root string) []Rule {
	p := RootPrefix(root)
	sliceable := strings.Join(fsdSliceable, "|")

	rules := []Rule{{
		Name:     "fsd-no-circular",
		Severity: SeverityError,
		Comment:  "Circular dependencies are not allowed in FSD.",
		Kind:     KindCircular,
	}}

	for i, layer := range fsdLayerOrder[1:] {
		higher := strings.Join(fsdLayerOrder[:i+1], "|")
		comment := capitalize(layer) + " can only import from lower layers."
		if layer == "shared" {
			comment = "Shared layer cannot import from any higher layers."
		}
		rules = append(rules, Rule{
			Name:     "fsd-layer-" + layer + "-upward",
			Severity: SeverityError,
			Comment:  comment,
			From:     Matcher{Path: p + layer},
			To:       Matcher{Path: p + "(" + higher + ")"},
		})
	}

	rules = append(rules,
		Rule{
			Name:     "fsd-cross-slice",
			Severity: SeverityError,
			Comment:  "Slices within the same layer cannot import each other.",
			From:     Matcher{Path: p + "(" + sliceable + ")/([^/]+)"},
			To: Matcher{
				Path:    p + "$1/([^/]+)",
				// the trailing (/|$) keeps "auth" from excusing "auth-extra"
				PathNot: []string{p + "$1/$2(/|$)"},
			},
		},
		Rule{
			Name:     "fsd-public-api",
			Severity: SeverityError,
			Comment:  "Slices should only be imported via their public API (index).",
			From:     Matcher{Path: p + "([^/]+)/([^/]+)"},
			To: Matcher{
				Path: p + "(" + sliceable + ")/([^/]+)/.+",
				PathNot: []string{
					p + "$1/$2/.+",
					p + `[^/]+/[^/]+/index\.(ts|tsx|js|jsx)$`,
				},
			},
		},
	)
	return rules
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
