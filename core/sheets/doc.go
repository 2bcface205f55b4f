// Package sheets implements grid.Accessor on top of the Google Sheets v4 API.
//
// Every accessor call maps to exactly one API request: GetRange and GetColumnExtent use
// spreadsheets.values.get, SetRange sends all cells in one spreadsheets.values.batchUpdate, and
// worksheet structure goes through spreadsheets.get and spreadsheets.batchUpdate.
//
// Requests pass through a shared rate limiter sized to the Sheets per-user quota. Quota and
// server errors (429, 403 rate limits, 5xx) are retried with capped exponential backoff; any
// failure that survives the retries is returned as a syncerr RemoteError.
package sheets
