// Package audit implements async event dispatching for the portal's
// authentication milestones.
//
// # Components
//
//   - [Sink] interface for event consumers (channel, JSON writer, zap, no-op).
//   - [Dispatcher] buffered async relay with drop-if-full / block-if-full semantics.
//   - [Event] structured audit record with id, timestamp, type, user and metadata.
//
// # Architecture boundaries
//
// This package owns event buffering and sink delivery. It does NOT decide which
// events to emit; that belongs to the Portal.
//
// # What this package must NOT do
//
//   - Filter or suppress events based on business logic.
//   - Import hrportal or any sibling internal package.
//   - Record bearer tokens or passwords.
package audit
