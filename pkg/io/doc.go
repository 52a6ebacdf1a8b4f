// Package io imports module dependency graphs produced by external graph
// builders and exports annotated graphs.
//
// # Overview
//
// fsdcheck does not parse source code. A graph builder (for example
// dependency-cruiser) resolves imports and hands over a finished module graph;
// this package turns that document into a [graph.Graph].
//
// # Native Format
//
//	{
//	  "modules": [
//	    {"path": "src/app/index.ts"},
//	    {"path": "src/shared/ui/button.tsx"}
//	  ],
//	  "edges": [
//	    {"from": "src/app/index.ts", "to": "src/shared/ui/button.tsx", "kind": "static"}
//	  ]
//	}
//
// The kind field is optional (static, dynamic or type-only; defaults to static).
//
// # dependency-cruiser Format
//
// The JSON reporter output of dependency-cruiser is read directly:
//
//	depcruise --output-type json src > graph.json
//
// Each module's "source" becomes a module and each resolved dependency
// becomes an edge. Type-only imports and dynamic imports keep their kind.
// Core modules and unresolvable imports are skipped.
//
// # Filtering
//
// [Options].IncludeOnly keeps only modules matching a regular expression,
// mirroring dependency-cruiser's includeOnly option:
//
//	g, err := io.ImportFile("graph.json", io.Options{IncludeOnly: "^src"})
//
// # Errors
//
// Import errors carry codes from pkg/errors: INVALID_INPUT for malformed
// documents, INVALID_PATH for unusable module identifiers and UNKNOWN_MODULE
// for edges whose endpoint is not part of the module set. The last one is an
// input-contract violation and aborts analysis.
package io
