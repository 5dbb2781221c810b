package depgraph

import (
	"cmp"
	"maps"
	"slices"
)

// set is an unordered collection of identifiers.
type set map[string]struct{}

// Edge is one ordered pair stored in the graph: Dependent references
// Dependency.
type Edge struct {
	Dependent  string // Identifier whose content references Dependency
	Dependency string // Identifier referenced by Dependent
}

// Graph records "dependent references dependency" edges between opaque
// string identifiers. Both directions are indexed so that DependenciesOf
// and DependentsOf are O(1) on average.
//
// An identifier is registered in both indices while it takes part in at
// least one edge and is dropped when its last edge goes, so the indices do
// not grow with identifiers that were cleared long ago.
//
// The zero value is not usable - use New to create a valid Graph instance.
// Graph is not safe for concurrent use without external synchronization.
type Graph struct {
	dependencies map[string]set // dependent -> what it references
	dependents   map[string]set // dependency -> who references it
	size         int
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		dependencies: make(map[string]set),
		dependents:   make(map[string]set),
	}
}

// Size returns the number of distinct ordered pairs currently stored.
func (g *Graph) Size() int { return g.size }

// DependencyCount returns the number of identifiers id references,
// i.e. len(DependenciesOf(id)). Returns 0 if id is unknown.
func (g *Graph) DependencyCount(id string) int { return len(g.dependencies[id]) }

// HasDependents reports whether any identifier references id.
func (g *Graph) HasDependents(id string) bool { return len(g.dependents[id]) > 0 }

// HasDependencies reports whether id references any identifier.
func (g *Graph) HasDependencies(id string) bool { return len(g.dependencies[id]) > 0 }

// DependenciesOf returns the identifiers id references.
// The order is not defined. Returns an empty slice if id is unknown.
// The returned slice is a copy and may be modified freely.
func (g *Graph) DependenciesOf(id string) []string { return keys(g.dependencies[id]) }

// DependentsOf returns the identifiers that reference id.
// The order is not defined. Returns an empty slice if id is unknown.
// The returned slice is a copy and may be modified freely.
func (g *Graph) DependentsOf(id string) []string { return keys(g.dependents[id]) }

// AddEdge records that dependent references dependency.
// Adding an existing pair is a no-op and does not change Size.
func (g *Graph) AddEdge(dependent, dependency string) {
	g.register(dependent)
	g.register(dependency)

	if _, ok := g.dependencies[dependent][dependency]; ok {
		return
	}
	g.dependencies[dependent][dependency] = struct{}{}
	g.dependents[dependency][dependent] = struct{}{}
	g.size++
}

// RemoveEdge removes the pair (dependent, dependency) if it exists.
// Removing an absent pair is a no-op and does not change Size.
func (g *Graph) RemoveEdge(dependent, dependency string) {
	if _, ok := g.dependencies[dependent][dependency]; !ok {
		return
	}
	delete(g.dependencies[dependent], dependency)
	delete(g.dependents[dependency], dependent)
	g.size--
	g.release(dependent)
	g.release(dependency)
}

// ReplaceDependencies removes every edge with dependent as its first
// element and adds (dependent, d) for each d in newDependencies.
// Duplicates in newDependencies collapse to a single edge.
func (g *Graph) ReplaceDependencies(dependent string, newDependencies []string) {
	for _, d := range g.DependenciesOf(dependent) {
		g.RemoveEdge(dependent, d)
	}
	for _, d := range newDependencies {
		g.AddEdge(dependent, d)
	}
}

// ReplaceDependents removes every edge with dependency as its second
// element and adds (d, dependency) for each d in newDependents.
// Duplicates in newDependents collapse to a single edge.
func (g *Graph) ReplaceDependents(dependency string, newDependents []string) {
	for _, d := range g.DependentsOf(dependency) {
		g.RemoveEdge(d, dependency)
	}
	for _, d := range newDependents {
		g.AddEdge(d, dependency)
	}
}

// Edges returns every stored pair, sorted by Dependent then Dependency.
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, 0, g.size)
	for dependent, deps := range g.dependencies {
		for dependency := range deps {
			edges = append(edges, Edge{Dependent: dependent, Dependency: dependency})
		}
	}
	slices.SortFunc(edges, func(a, b Edge) int {
		if c := cmp.Compare(a.Dependent, b.Dependent); c != 0 {
			return c
		}
		return cmp.Compare(a.Dependency, b.Dependency)
	})
	return edges
}

// Nodes returns every identifier that takes part in an edge, sorted.
func (g *Graph) Nodes() []string {
	return slices.Sorted(maps.Keys(g.dependencies))
}

// register makes sure id has an entry in both indices.
func (g *Graph) register(id string) {
	if _, ok := g.dependencies[id]; !ok {
		g.dependencies[id] = make(set)
	}
	if _, ok := g.dependents[id]; !ok {
		g.dependents[id] = make(set)
	}
}

// release drops id from both indices once it has no edges left.
func (g *Graph) release(id string) {
	if len(g.dependencies[id]) == 0 && len(g.dependents[id]) == 0 {
		delete(g.dependencies, id)
		delete(g.dependents, id)
	}
}

func keys(s set) []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	return out
}
