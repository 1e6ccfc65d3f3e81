// Package metrics holds the Portal's in-process counters (sign-in, refresh,
// gateway outcomes, menu loads, guard decisions) and the gateway latency
// histogram.
//
// Counters sit in cache-line-padded slots and are bumped with atomic adds, so
// the refresh burst paths can count coalesced 401s without contention. The
// latency histogram has 8 fixed buckets from 5ms to +Inf. Recording never
// allocates. A nil or disabled *Metrics records nothing.
//
// Export lives in metrics/export and reads [Snapshot] values. This package does
// no I/O and imports nothing from the module.
package metrics
