// Package grid defines the boundary between the synchronization engine and the remote cell store.
//
// The remote store has no notion of rows or tables. It exposes a sheet of addressable cells that can
// be read and written in rectangular batches. The Accessor interface captures exactly the operations
// the engine consumes; everything else (auth, pagination, quotas) lives behind it.
//
// Positions are 1-based. A1 helpers convert between (row, column) pairs and spreadsheet notation.
//
// # Implementations
//
//   - Memory: an in-process sparse grid with the same semantics as the remote store.
//   - sheets.Accessor (core/sheets): Google Sheets v4.
package grid
