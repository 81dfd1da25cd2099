// Package table holds the in-memory representation of an extracted HTML table.
//
// A Table has a fixed, ordered set of columns taken from the markup's header
// row and a list of rows with one Cell per column. Cells are Missing, Text or
// Number. Clean normalizes a table before it is written: text is trimmed and
// rows without any value are dropped.
package table
