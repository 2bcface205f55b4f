// Package middleware groups the Fiber middleware mounted by the start command.
//
//   - auth: rejects requests without the configured X-API-Key header or bearer token.
//     Skipped entirely when no key is configured.
//   - rayid: tags every request with an X-Ray-ID (kept from the caller when it is a
//     UUID) and stores it in Fiber locals for logger.WithRayID.
//
// Order matters: rayid runs first so rejected requests are still traceable.
package middleware
