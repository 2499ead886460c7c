// Package broker implements the server side of Packline's connection
// handling: per-socket packet dispatch against an internal/channel.App,
// push-loop spawning for subscriptions, and the logging/tracing wrapper
// around dispatch.
package broker
