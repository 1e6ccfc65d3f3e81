// Package permission answers role questions for the HR portal's route guards.
//
// Roles arrive from the backend as free-form strings (for example "ADMIN" or
// "EMPLOYEE") and are compared exactly, case included.
//
// # Architecture boundaries
//
// This package is a pure in-memory data structure with no I/O.
//
// # What this package must NOT do
//
//   - Access Redis, the filesystem, or the network.
//   - Import hrportal, session, or menu.
//   - Normalise role case; "admin" and "ADMIN" are different roles.
package permission
