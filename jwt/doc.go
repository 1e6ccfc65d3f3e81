// Package jwt reads and mints the bearer tokens that the HR backend hands to the
// portal client.
//
// The client never verifies signatures; it only needs the expiry and identity
// claims to decide when a token is stale. [Inspect] covers that path. [Manager]
// signs and verifies tokens and backs the demo backend and the test servers
// that stand in for the real HR API.
package jwt
