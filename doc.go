// Package hrportal is the client-side session and authorization pipeline of an
// HR management shell: credential persistence, sign-in and token refresh, an
// authenticated request gateway, the role-filtered menu directory and route
// guards.
//
// A [Portal] is built once through [Builder.Build] and is safe to use from
// multiple goroutines. Session changes are observable through
// [Portal.Subscribe]; feature code talks to the backend through
// [Portal.Request] and its helpers and only ever sees [*RequestError] values.
//
// # Architecture boundaries
//
// hrportal is the public surface. It exposes [Portal], [Builder], [Config],
// [Decision] and the value types of the gateway. Response normalization lives in
// internal/envelope, the sign-in and refresh flows in internal/flows, audit
// dispatch and counters in internal/audit and internal/metrics. Credential
// stores are in session and the menu model in menu.
//
// # What this package must NOT do
//
//   - Log or audit bearer tokens or passwords.
//   - Let a credential store failure fail a sign-in or sign-out.
//   - Trigger menu fetches from guards. Guards are pure checks over loaded state.
//   - Import any sub-package that re-imports hrportal (no import cycles).
//
// # Refresh contract
//
// A 401 starts at most one refresh per burst and a request is replayed at most
// once. A failed refresh signs out before the error is returned, and the
// redirect to the sign-in route runs after the failing call has returned.
package hrportal
