// Package channel implements Packline's in-memory channel engine: an
// append-only log per (topic, partition), a fan-out waker that lets many
// consume calls wait on new data without busy-polling, per-consumer-group
// offsets, and the timeout-batched consume operation built on top of them.
//
// Storage and the group-handler registry are peers constructed once inside a
// Channel and shared by every Producer and Consumer bound to it; each group
// handler, created on a group's first use, owns its own waker. Nothing swaps
// them out after construction, which is what lets them reference each other
// safely without extra synchronization machinery.
package channel
