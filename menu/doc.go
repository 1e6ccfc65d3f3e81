// Package menu holds the server-sourced navigation tree that doubles as the HR
// portal's route authorization source.
//
// The backend filters the tree by the caller's roles; the client never maps
// roles to routes itself. [Directory] keeps the last fetched list and answers
// [Directory.IsPathAllowed] for the menu guard. Until a menu has loaded every
// path is allowed; the layout shell is expected to trigger [Directory.Fetch]
// once a session exists.
//
// # What this package must NOT do
//
//   - Import hrportal or session.
//   - Hardcode role-to-route mappings.
//   - Fail a fetch; errors are recorded on the Directory and the tree is
//     emptied instead.
package menu
