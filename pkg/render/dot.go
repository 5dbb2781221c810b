package render

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/sheetcalc/pkg/calc"
	"github.com/matzehuels/sheetcalc/pkg/sheet"
)

// Options configures dependency graph rendering.
type Options struct {
	// Contents includes each cell's raw contents in its label.
	// When false, only the cell name is shown.
	Contents bool

	// Values, when non-nil, adds computed values to labels and highlights
	// cells whose formula evaluated to an error.
	Values map[string]calc.Value
}

// ToDOT converts the dependency graph of s to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG].
//
// Arrows point from a cell to the cells whose formulas reference it, the
// direction values flow. Cells that are referenced but empty are drawn
// with dashed outlines. Cells without any dependency edge are included so
// the diagram shows the whole sheet.
func ToDOT(s *sheet.Store, opts Options) string {
	edges := s.Edges()

	names := append(s.NonEmptyCellNames(), s.Referenced()...)
	slices.Sort(names)
	names = slices.Compact(names)

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"Helvetica\", fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, name := range names {
		c, _ := s.Content(name)
		label := fmtLabel(name, c, opts)
		attrs := fmtAttrs(c, opts.Values[name], label)
		fmt.Fprintf(&buf, "  %q [%s];\n", name, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range edges {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.Dependency, e.Dependent)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(name string, c sheet.Content, opts Options) string {
	parts := []string{name}
	if opts.Contents && !c.IsEmpty() {
		parts = append(parts, c.Raw())
	}
	if opts.Values != nil && c.Kind() == sheet.KindFormula {
		if v, ok := opts.Values[name]; ok {
			parts = append(parts, "→ "+v.String())
		}
	}
	return strings.Join(parts, "\n")
}

func fmtAttrs(c sheet.Content, v calc.Value, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch {
	case c.IsEmpty():
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey", "fontcolor=black")
	case v.Kind == calc.ValueError:
		attrs = append(attrs, "fillcolor=\"#f8d7da\"", "color=\"#c0392b\"")
	case c.Kind() == sheet.KindFormula:
		attrs = append(attrs, "fillcolor=\"#e8f0fe\"")
	}
	return attrs
}
