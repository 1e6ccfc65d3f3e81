// Package envelope reads the HR backend's response wrapper
// {returnCode, returnMessage, data}.
//
// All envelope sniffing lives here so the gateway and the sign-in/refresh flows
// agree on one priority order for codes, messages and payloads.
//
// # What this package must NOT do
//
//   - Perform I/O.
//   - Import hrportal (to avoid import cycles).
//   - Decide retry or sign-out policy; it only classifies bodies.
package envelope
