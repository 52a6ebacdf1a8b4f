// Package graph provides the module dependency graph analysed by fsdcheck.
//
// # Overview
//
// A [Graph] is a set of modules (source files identified by their path relative
// to the analysed tree) and an ordered list of directed [Edge] values. The graph
// is produced by an external graph builder (a parser and module resolver) and is
// treated as an immutable fact about the source tree, except for the per-edge
// validity flag that the rule engine fills in.
//
// Unlike a layered DAG, the module graph may contain cycles and may contain
// several edges between the same pair of modules when the dependency kinds
// differ (static, dynamic, type-only).
//
// # Architectural Attributes
//
// A [Layout] derives Feature-Sliced Design attributes from a module path:
//
//	l := graph.NewLayout("src", nil)
//	l.Layer("src/features/auth/ui/form.tsx")       // "features"
//	l.Slice("src/features/auth/ui/form.tsx")       // "auth"
//	l.IsPublicAPI("src/features/auth/index.ts")    // true
//
// # Serialization
//
// Graphs use a simple JSON format:
//
//	{
//	  "modules": [{"path": "src/app/index.ts"}, {"path": "src/shared/ui/button.tsx"}],
//	  "edges": [{"from": "src/app/index.ts", "to": "src/shared/ui/button.tsx", "kind": "static"}]
//	}
//
// Common operations:
//
//	g, _ := graph.Read(r)              // JSON → Graph
//	graph.WriteFile(g, "graph.json")   // Graph → file
//	data, _ := graph.Marshal(g)        // Graph → []byte
//	key := graph.Hash(g)               // content hash for caching
//
// Edges may carry a "valid" field once they have been annotated.
//
// # Concurrency
//
// All read methods are safe for concurrent use; mutation is not.
package graph
