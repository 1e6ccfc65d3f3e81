// Package middleware adapts the Portal's route guards to net/http for a
// server-rendered shell.
//
// # Guards
//
//   - [RequireSession] applies the authentication guard.
//   - [RequireRoles] applies the role guard.
//   - [RequireMenu] applies the menu guard.
//   - [TrackCurrentURL] records the page being served so that a forced
//     sign-in redirect returns the user to it.
//
// A redirect decision is answered with 302 Found to Decision.Location. An
// admitted request carries the session copy in its context, see
// [SessionFromContext].
//
// # What this package must NOT do
//
//   - Make authorization decisions of its own. All decisions come from the
//     Portal guards.
//   - Fetch the menu. Guards read loaded state only.
package middleware
