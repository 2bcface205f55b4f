// Package syncerr defines the error taxonomy shared by the grid synchronization engine.
//
// Every error raised by the engine carries a Kind. Kinds are string based so they read well in logs
// and serialize naturally to JSON:
//
//   - SCHEMA: duplicate or missing index column, unknown column, duplicate header name
//   - SCHEMA_MISMATCH: column sets disagree in overwrite mode
//   - INDEX: non-unique row keys in either table
//   - WRITE_CONFLICT: a cell expected to be empty was found non-empty
//   - REMOTE: transport, auth or quota failure from the grid accessor
//
// All kinds are fatal to the synchronization call that raised them. Only REMOTE is classified as
// retryable, and retrying is the caller's (or the accessor's) decision.
//
// # Usage
//
//	if errors.Is(err, syncerr.ErrWriteConflict) {
//	    // re-read, re-plan
//	}
//	if syncerr.IsRetryable(err) {
//	    // back off and try again
//	}
package syncerr
