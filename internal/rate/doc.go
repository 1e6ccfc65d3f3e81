// Package rate is a Redis fixed-window counter of failed sign-in attempts.
//
// # Window semantics
//
// INCR + EXPIRE on the first hit. Keys are "<prefix>:signin:<username>", the
// username lower-cased.
//
// # What this package must NOT do
//
//   - Decide the HTTP response for a throttled caller.
//   - Be imported outside the hrportal module.
package rate
