package graph

import (
	"regexp"
	"strings"
)

// Default layout settings for Feature-Sliced Design source trees.
const (
	// DefaultRoot is the directory that holds the layers.
	DefaultRoot = "src"

	// TopLevelRoot selects layers at the top of the module paths
	// (e.g. "shared/ui/button.tsx").
	TopLevelRoot = "."

	// DefaultPublicAPIPattern matches the entry module name of a slice.
	DefaultPublicAPIPattern = `^index\.(ts|tsx|js|jsx|mjs|cjs)$`
)

// DefaultLayers lists the standard layers from highest to lowest.
// A layer may only depend on layers that appear after it.
var DefaultLayers = []string{"app", "processes", "pages", "layouts", "widgets", "features", "entities", "shared"}

// DefaultSliceableLayers lists the layers subdivided into slices. The app and
// shared layers are split into segments only.
var DefaultSliceableLayers = []string{"processes", "pages", "layouts", "widgets", "features", "entities"}

// Layout derives architectural attributes (layer, slice, public API) from
// module paths. The zero value treats the first path segment as the layer and
// no layer as sliceable; use NewLayout for the Feature-Sliced Design defaults.
type Layout struct {
	Root      string
	Sliceable map[string]bool
	PublicAPI *regexp.Regexp
}

// CleanRoot normalizes a layout root: surrounding slashes are dropped and
// TopLevelRoot becomes the empty string.
func CleanRoot(root string) string {
	root = strings.Trim(root, "/")
	if root == TopLevelRoot {
		return ""
	}
	return root
}

// NewLayout creates a Layout rooted at root with the given sliceable layers.
// An empty root or TopLevelRoot means layers start at the first path segment. A nil
// sliceable slice selects DefaultSliceableLayers.
func NewLayout(root string, sliceable []string) Layout {
	if sliceable == nil {
		sliceable = DefaultSliceableLayers
	}
	l := Layout{
		Root:      CleanRoot(root),
		Sliceable: make(map[string]bool, len(sliceable)),
		PublicAPI: regexp.MustCompile(DefaultPublicAPIPattern),
	}
	for _, s := range sliceable {
		l.Sliceable[s] = true
	}
	return l
}

// segments returns the path segments following the root, or nil when the
// module lives outside the root.
func (l Layout) segments(path string) []string {
	rest := path
	if l.Root != "" {
		prefix := l.Root + "/"
		if !strings.HasPrefix(path, prefix) {
			return nil
		}
		rest = strings.TrimPrefix(path, prefix)
	}
	if rest == "" {
		return nil
	}
	return strings.Split(rest, "/")
}

// Layer returns the first segment after the root. A module that is itself a
// file directly under the root has no layer.
func (l Layout) Layer(path string) string {
	segs := l.segments(path)
	if len(segs) < 2 {
		return ""
	}
	return segs[0]
}

// Slice returns the second segment after the root when the module's layer is
// sliceable, and "" otherwise.
func (l Layout) Slice(path string) string {
	segs := l.segments(path)
	if len(segs) < 3 || !l.Sliceable[segs[0]] {
		return ""
	}
	return segs[1]
}

// IsPublicAPI reports whether the module is the designated entry point of its
// slice: a file matching the public API pattern placed directly in the slice
// directory.
func (l Layout) IsPublicAPI(path string) bool {
	segs := l.segments(path)
	if len(segs) != 3 || !l.Sliceable[segs[0]] || l.PublicAPI == nil {
		return false
	}
	return l.PublicAPI.MatchString(segs[2])
}

// SlicePath returns "root/layer/slice" for sliced modules, "root/layer" for
// other layered modules, and the module path itself otherwise.
func (l Layout) SlicePath(path string) string {
	layer := l.Layer(path)
	if layer == "" {
		return path
	}
	parts := []string{layer}
	if s := l.Slice(path); s != "" {
		parts = append(parts, s)
	}
	if l.Root != "" {
		parts = append([]string{l.Root}, parts...)
	}
	return strings.Join(parts, "/")
}
