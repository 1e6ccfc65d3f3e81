// Package session holds the client-side Session model, its text encoding, and the
// credential stores that persist exactly one Session per browser context.
//
// # Encoding
//
// A Session is persisted verbatim as JSON text under a single fixed key. The field
// names (id, username, email, roles, token, employeeId) are the ones the HR front-end
// has always written, so a blob saved by an older shell decodes unchanged.
//
// # Stores
//
//   - [RedisStore] - one key per browser context in Redis.
//   - [FileStore] - one 0600 JSON file, used by the CLI.
//   - [MemoryStore] - process-local, used by tests and short-lived tools.
//   - [NopStore] - execution contexts with no durable storage; Load is always absent.
//
// # Architecture boundaries
//
// This package owns persistence only. It does NOT talk to the HR backend, decide
// whether a token is still valid, or publish session changes. Those belong to the
// Portal.
//
// # What this package must NOT do
//
//   - Import hrportal, menu, or middleware (no upward imports).
//   - Surface decode failures of a stored blob as anything other than [ErrCorrupt].
//   - Log or otherwise leak the bearer token.
package session
