// Package sheet models a Datavyu spreadsheet in memory and implements the
// operations that work on it: point-in-time lookups, the interval merge that
// aligns several coding passes into one column, and the tabular view of a
// merged column.
//
// Ownership is strict. A Spreadsheet owns its Columns and a Column owns its
// Cells; a Cell keeps a back-reference to its Column only to resolve code
// names. Nothing here is safe for concurrent mutation.
//
// Cells are inclusive intervals: a cell spanning [onset, offset] is active at
// both endpoints, and a point cell has onset == offset. Merge partitions the
// timeline at every onset and at every offset+1, so each merged cell is itself
// an inclusive interval and a point cell at p always gets the dedicated
// interval [p, p].
package sheet
