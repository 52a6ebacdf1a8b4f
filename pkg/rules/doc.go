// Package rules evaluates architecture rules against a module dependency graph.
//
// # Rules
//
// A [Rule] forbids a class of dependencies. Pairwise rules select edges by
// matching the importing module against From and the imported module against
// To:
//
//	rules.Rule{
//	    Name:     "no-shared-to-app",
//	    Severity: rules.SeverityError,
//	    From:     rules.Matcher{Path: "^src/shared"},
//	    To:       rules.Matcher{Path: "^src/app"},
//	}
//
// Patterns are Go regular expressions. The From path is anchored at the start
// of the module path; To and PathNot patterns are searched and carry their
// own anchors. Patterns on the To side may refer to groups captured by the
// From pattern. With From "^src/(features)/([^/]+)", the To pattern
// "^src/$1/" only matches modules of the same layer and the PathNot pattern
// "^src/$1/$2/" excludes the importing slice itself. See [Expand].
//
// Circular rules ([KindCircular]) forbid dependency cycles. Every distinct
// cycle is reported once, normalized to start at its smallest module.
//
// # Evaluation
//
// [Engine.Evaluate] applies all rules independently: an edge caught by two
// rules yields two violations. The result carries an annotated copy of the
// graph in which an edge is invalid iff an error-severity rule caught it.
// Violations are returned as data in a deterministic order, never as errors.
//
// Malformed rules are skipped with a warning and the remaining rules still
// run. A configuration whose rules are all malformed is rejected.
//
// # Feature-Sliced Design
//
// [FSDPreset] returns the rule set for Feature-Sliced Design projects: no
// cycles, no imports from higher layers, no imports between slices of one
// layer and no deep imports past a slice's index module.
package rules
