// Package lookup maps table coordinates onto grid coordinates.
//
// Rows maps row keys to grid row numbers and Columns maps column names to grid column numbers.
// Both are contiguous projections rebuilt from what was last read from the grid; the grid stays
// authoritative. Structural operations (Rename, Compact, Append) return new lookups instead of
// mutating the receiver so a failed write never leaves a half-updated projection behind.
package lookup
