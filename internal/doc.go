// Package internal holds the pieces of hrportal that are private to the
// module.
//
// # Sub-packages
//
//   - audit: async event dispatch (Dispatcher + Sink implementations)
//   - envelope: parsing of the backend's returnCode/returnMessage/data wrapper
//   - flows: sign-in and refresh orchestration without Portal state
//   - hrstub: in-process HR backend for tests and the example shell
//   - logging: zap logger construction for the command-line tools
//   - metrics: lock-free counters and latency histograms
//   - rate: Redis fixed-window sign-in throttle used by hrstub
//
// # What this package must NOT do
//
//   - Export types that appear in the public hrportal API.
//   - Be imported by any package outside the hrportal module.
package internal
