// Package dbsource connects gridsync to SQL databases.
//
// Source loads a SQL table (MySQL or SQLite through gorm) as a keyed table, using the primary
// key as the index unless another column is named. The loaded table is the desired state that
// the push command and the HTTP API reconcile into a worksheet.
//
// Journal records every synchronization run in the sync_runs table, with the plan summary and
// the outcome.
package dbsource
