// Package collapse groups modules into folder nodes so large graphs can be
// read at the level of layers and slices.
//
// A [Spec] maps every module path to a group id, either by the prefix matched
// by a regular expression ([ModePattern]) or by the first N path segments
// ([ModeDepth]). Modules that do not fall into a group keep their own node.
//
//	view, err := collapse.Collapse(g, collapse.Spec{
//	    Mode:    collapse.ModePattern,
//	    Pattern: collapse.FSDPattern("src"),
//	})
//
// A collapsed edge is valid only if every module edge it stands for is valid,
// so a single violating import marks the whole slice-to-slice edge invalid.
package collapse
