// Package config loads fsdcheck policy documents.
//
// A policy document declares the rules to enforce, how to collapse the graph
// for rendering and how to style it. TOML, YAML and JSON are accepted; the
// format follows the file extension.
//
//	[options]
//	root = "src"
//	include_only = "^src"
//	preset = "fsd"
//
//	[collapse]
//	mode = "pattern"
//
//	[[rules]]
//	name = "no-shared-to-app"
//	severity = "error"
//	from = { path = "^src/shared" }
//	to = { path = "^src/app" }
//
//	[[theme.dependencies]]
//	criteria = { valid = false }
//	attributes = { color = "#ff0000" }
//
// With preset "fsd" the Feature-Sliced Design rules and theme come first and
// the document's own rules and styles are appended, so they can refine or
// override the preset. When no document is found, [Default] is used.
package config
