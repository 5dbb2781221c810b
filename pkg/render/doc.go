// Package render draws the dependency graph of a sheet.
//
// [ToDOT] produces Graphviz DOT text with one node per cell and an arrow
// from every referenced cell to the formula that references it:
//
//	dot := render.ToDOT(store, render.Options{Contents: true, Values: engine.Values()})
//	svg, err := render.RenderSVG(ctx, dot)
//
// [RenderSVG] runs Graphviz in-process (compiled to WebAssembly by
// go-graphviz), so no external binary is needed.
package render
