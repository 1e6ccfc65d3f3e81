// Package flows contains pure-function orchestrators for the Portal's
// authentication operations.
//
// Each flow function (RunSignIn, RunRefresh) accepts a typed dependency struct
// and returns a result carrying either the new session or a failure kind. The
// root Portal maps failure kinds to its public errors, commits session state,
// and emits audit events and metrics.
//
// # Architecture boundaries
//
// Flow functions perform the backend call through the injected Caller and apply
// the response-normalization rules. They do NOT own session state, the
// credential store, or the refresh-coordination primitive.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import hrportal (to avoid import cycles).
//   - Log or return bearer tokens inside error messages.
package flows
