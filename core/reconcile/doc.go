// Package reconcile synchronizes a keyed table with a region of a remote cell grid.
//
// The remote grid has no notion of rows or columns beyond cell addresses, so the package rebuilds
// table semantics on top of it and keeps the number of remote writes to a minimum.
//
// # Architecture
//
// A synchronization cycle runs three components in sequence:
//
// 1. Reader: pulls the header row, the extent of the index column and the body rectangle through
// the grid.Accessor (three round trips regardless of table size) and decodes them into a Table.
//
// 2. Plan: a pure diff between the desired table and the observed table. It produces a
// MutationPlan of SetCell, SwapRow, DeleteRows and AddRows actions. Rows that disappear are
// paired with rows that appear so vacated slots are reused in place.
//
// 3. Writer: applies a plan one action class at a time, each class as a single batched write.
// Deletions compact the body so no blank rows are left behind. Additions verify the target
// rows are still empty before writing.
//
// The Synchronizer ties the three together and exposes Read, Write, Update and Augment.
//
// # Concurrency
//
// The engine assumes a single writer per table region and holds no locks. Callers that may run
// concurrent cycles against one worksheet must serialize them. The pre-write read-back in the
// Writer detects, but does not prevent, an interleaving writer.
//
// # Usage Example
//
//	sync := reconcile.NewSynchronizer(accessor, reconcile.Options{Header: 1}, log)
//
//	// Initial write into an empty worksheet
//	err := sync.Write(ctx, desired, "")
//
//	// Later: reconcile the worksheet with a new desired state
//	observed, err := sync.Update(ctx, desired, reconcile.UpdateOptions{Overwrite: true})
//
//	// Dry run
//	plan, observed, err := sync.PlanUpdate(ctx, desired, reconcile.UpdateOptions{Overwrite: true})
package reconcile
