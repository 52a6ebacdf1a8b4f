// Package pkg provides the libraries behind fsdcheck, a checker for
// layered front-end architectures such as Feature-Sliced Design.
//
// # Overview
//
// fsdcheck reads a module dependency graph, evaluates forbidden-dependency
// rules against it and renders the graph with broken dependencies
// highlighted. The pkg directory is organized into four areas:
//
//  1. Model - the dependency graph and its serialization
//  2. Policy - rules, presets, collapse settings and themes
//  3. Output - reports, DOT generation and rendering
//  4. Infrastructure - pipeline, caching, storage, HTTP API
//
// # Architecture
//
// The data flow of a check:
//
//	graph document (native JSON or dependency-cruiser output)
//	         ↓
//	    [io] package (import, filter, validate)
//	         ↓
//	    [rules] package (evaluate, annotate edge validity)
//	         ↓
//	    [report] package (summary, violations)
//	         ↓
//	    [collapse] + [theme] packages (group folders, style)
//	         ↓
//	    [render/nodelink] package (DOT → SVG/HTML/PDF/PNG)
//
// # Quick Start
//
// Check a graph with the Feature-Sliced Design preset:
//
//	cfg := config.Default()
//	runner := pipeline.NewRunner(nil, nil, logger)
//	g, _ := runner.Import(ctx, "deps.json", cfg)
//	result, _ := runner.Check(ctx, g, cfg, pipeline.Options{Formats: []string{"svg"}})
//	fmt.Println(result.Report.SummaryLine())
//
// # Main Packages
//
// ## Model
//
// [graph] - Modules, import edges and the layer/slice layout of module paths.
//
// [io] - Reading native and dependency-cruiser documents, writing native ones.
//
// ## Policy
//
// [rules] - Forbidden-dependency rules, the Feature-Sliced Design preset and
// the concurrent evaluation engine, including cycle detection.
//
// [config] - The policy document (TOML, YAML or JSON).
//
// [collapse] - Folder grouping of the graph by pattern or path depth.
//
// [theme] - Criteria-based styling of nodes and edges.
//
// ## Output
//
// [report] - The persisted result of a check.
//
// [render/nodelink] - DOT generation and in-process Graphviz rendering.
//
// [render] - SVG to PDF/PNG conversion.
//
// ## Infrastructure
//
// [pipeline] - The import → evaluate → layout → render pipeline shared by
// the CLI and the HTTP server.
//
// [cache] - Report and artifact caching (file, Redis, null).
//
// [store] - Report storage (memory, MongoDB).
//
// [server] - The HTTP API.
//
// [httputil] - Fetching graph documents by URL.
//
// [observability] - Hooks for logging and metrics.
//
// [errors] - Error codes and exit statuses.
//
// [graph]: https://pkg.go.dev/github.com/matzehuels/fsdcheck/pkg/graph
// [io]: https://pkg.go.dev/github.com/matzehuels/fsdcheck/pkg/io
// [rules]: https://pkg.go.dev/github.com/matzehuels/fsdcheck/pkg/rules
// [config]: https://pkg.go.dev/github.com/matzehuels/fsdcheck/pkg/config
// [collapse]: https://pkg.go.dev/github.com/matzehuels/fsdcheck/pkg/collapse
// [theme]: https://pkg.go.dev/github.com/matzehuels/fsdcheck/pkg/theme
// [report]: https://pkg.go.dev/github.com/matzehuels/fsdcheck/pkg/report
// [render]: https://pkg.go.dev/github.com/matzehuels/fsdcheck/pkg/render
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/fsdcheck/pkg/render/nodelink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/fsdcheck/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/fsdcheck/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/fsdcheck/pkg/store
// [server]: https://pkg.go.dev/github.com/matzehuels/fsdcheck/pkg/server
// [httputil]: https://pkg.go.dev/github.com/matzehuels/fsdcheck/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/matzehuels/fsdcheck/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/fsdcheck/pkg/errors
package pkg
