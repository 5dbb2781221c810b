// Package sheet stores spreadsheet cells and keeps their dependency graph
// consistent with their formulas.
//
// # Cells
//
// A cell is a name (an identifier such as A1 or total_2) with [Content]: a
// number, non-empty text or a [formula.Formula]. A cell exists only while
// it has content; setting its text to "" removes it together with its
// dependency edges.
//
// # Recalculation order
//
// Every mutation returns the cells a host must re-evaluate, in order:
//
//	s := sheet.New(sheet.WithNormalizer(strings.ToUpper))
//	s.SetNumber("A1", 1)
//	s.SetFromString("B1", "=A1+1")
//	s.SetFromString("C1", "=B1*2")
//	order, _ := s.SetNumber("A1", 5) // [A1 B1 C1]
//
// The order is the mutated cell followed by its transitive dependents, each
// listed after everything it depends on within that set. Sibling cells are
// visited in name order, so the result is deterministic.
//
// # Cycles
//
// A mutation whose formula would make a cell depend on itself, directly or
// through other cells, fails with a CIRCULAR_DEPENDENCY error. The cell's
// previous content and dependency edges are restored first, so the store
// looks exactly as it did before the call.
//
// # Evaluation
//
// The store does not compute values. Package calc pairs a Store with a
// value table and evaluates the returned order.
package sheet
