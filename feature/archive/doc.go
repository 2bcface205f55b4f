// Package archive keeps snapshots of worksheet tables in object storage.
//
// Before an overwriting update the tables feature saves the table found in the worksheet, so a
// bad push can be rolled back with a restore. Snapshots are the JSON form of a table compressed
// with zstd and stored under snapshots/<worksheet>/<timestamp>-<id>.json.zst. Keys sort by
// creation time.
package archive
