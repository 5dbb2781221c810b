// Package depgraph provides the directed dependency graph that tracks which
// spreadsheet cells reference which.
//
// # Overview
//
// A [Graph] stores ordered pairs (dependent, dependency), read as
// "dependent's content references dependency". A formula cell C1 holding
// =A1+B1 contributes the pairs (C1, A1) and (C1, B1).
//
// The graph keeps both directions as separate indices:
//
//   - [Graph.DependenciesOf] answers "what does this cell need?"
//   - [Graph.DependentsOf] answers "who needs this cell?"
//
// Both are O(1) on average. The cell store queries dependents of a changed
// cell on every mutation and replaces dependencies on every formula
// assignment, so neither direction may be a scan.
//
// # Basic Usage
//
//	g := depgraph.New()
//	g.AddEdge("C1", "A1")
//	g.AddEdge("C1", "B1")
//	g.DependentsOf("A1")              // [C1]
//	g.ReplaceDependencies("C1", nil)  // C1 no longer references anything
//
// # Set Semantics
//
// There is exactly one edge per ordered pair. Adding an existing pair or
// removing an absent one never changes [Graph.Size]. Neighbor sequences have
// no defined order; callers that need determinism must sort.
//
// # Concurrency
//
// Graph instances are not safe for concurrent use. The cell store in
// package sheet guards its graph and cell table with a single lock.
package depgraph
