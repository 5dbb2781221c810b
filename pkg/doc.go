// Package pkg provides the libraries behind sheetcalc, a spreadsheet
// calculation engine.
//
// # Overview
//
// A workbook is a set of named cells holding numbers, text, or arithmetic
// formulas over other cells. The pkg directory is organized bottom-up:
//
//  1. [formula] - parse, normalize, and evaluate arithmetic formulas
//  2. [depgraph] - dependency graph between cell names
//  3. [sheet] - the cell store: contents, dependencies, recalculation order
//  4. [calc] - computed values kept in step with a store
//  5. [workbook] - TOML persistence of a store
//  6. [storage], [cache], [render], [observability] - infrastructure
//
// # Data flow
//
//	raw input ("=A1*2")
//	         ↓
//	    [sheet] (parse, store, reject cycles, order dependents)
//	         ↓
//	    [calc] (evaluate the affected cells in order)
//	         ↓
//	    values, [workbook] files, [render] graphs
//
// # Quick Start
//
//	engine := calc.New(sheet.New(sheet.WithNormalizer(strings.ToUpper)))
//	engine.Set("A1", "2")
//	engine.Set("B1", "=A1*10")
//	v, _ := engine.Value("B1") // 20
//
// [formula]: https://pkg.go.dev/github.com/matzehuels/sheetcalc/pkg/formula
// [depgraph]: https://pkg.go.dev/github.com/matzehuels/sheetcalc/pkg/depgraph
// [sheet]: https://pkg.go.dev/github.com/matzehuels/sheetcalc/pkg/sheet
// [calc]: https://pkg.go.dev/github.com/matzehuels/sheetcalc/pkg/calc
// [workbook]: https://pkg.go.dev/github.com/matzehuels/sheetcalc/pkg/workbook
// [storage]: https://pkg.go.dev/github.com/matzehuels/sheetcalc/pkg/storage
// [cache]: https://pkg.go.dev/github.com/matzehuels/sheetcalc/pkg/cache
// [render]: https://pkg.go.dev/github.com/matzehuels/sheetcalc/pkg/render
// [observability]: https://pkg.go.dev/github.com/matzehuels/sheetcalc/pkg/observability
package pkg
