// Package tables exposes worksheet tables over HTTP.
//
// The Service binds a Synchronizer to each worksheet of the configured spreadsheet and adds
// the operational pieces around it: per-worksheet serialization of mutations, coalesced reads,
// concurrent multi-worksheet reads, snapshots before overwriting updates and a run journal.
//
// # Routes
//
//   - GET  /tables/worksheets: list worksheets
//   - POST /tables/worksheets: create a worksheet
//   - GET  /tables/{worksheet}: read a table (columns, index query parameters)
//   - GET  /tables?worksheets=a,b: read several tables concurrently
//   - POST /tables/{worksheet}/write: write a table into an empty region
//   - POST /tables/{worksheet}/update: reconcile (augment, dry_run, columns query parameters)
//   - POST /tables/{worksheet}/push: reconcile with a table loaded from the database
//   - GET  /tables/{worksheet}/snapshots: list archived snapshots
//   - POST /tables/{worksheet}/restore: reconcile with an archived snapshot
//   - GET  /tables/{worksheet}/runs: list journal entries
//
// Error kinds map to status codes: schema and index errors to 422, write conflicts to 409 and
// remote failures to 502.
package tables
