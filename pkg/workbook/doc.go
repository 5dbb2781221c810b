// Package workbook saves and loads sheet stores as TOML files.
//
// A workbook lists every non-empty cell with the text a user would type to
// recreate it, so files stay readable and diffable:
//
//	version = "1"
//
//	[[cells]]
//	name = "A1"
//	contents = "2"
//
//	[[cells]]
//	name = "B1"
//	contents = "=A1*3"
//
// [Capture] builds a workbook from a store; [Workbook.Restore] replays it
// into a store. Restoring does not depend on cell order, because the store
// accepts formulas that reference cells which do not exist yet.
//
// Text that looks like a number or starts with "=" is restored as a number
// or formula, the same way it would be if typed into a cell.
package workbook
