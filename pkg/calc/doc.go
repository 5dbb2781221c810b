// Package calc evaluates the cells of a sheet.Store.
//
// An [Engine] owns a store and a table of computed values. [Engine.Set]
// applies raw cell input ("=A1*2", "3.5", "label") and re-evaluates exactly
// the cells the store reports as affected, in the order it reports them, so
// no formula ever reads a stale value.
//
// Formula variables resolve against the value table:
//
//   - number cells and formulas that computed a number give that number
//   - cells whose formula failed pass their error on (a #DIV/0! stays
//     #DIV/0! in every dependent)
//   - text cells give #VALUE!
//   - empty cells give #NAME?
//
// [Engine.Recalculate] rebuilds the whole table, dependencies first. It is
// called by [New] so that an engine created over a restored store starts
// with current values.
package calc
