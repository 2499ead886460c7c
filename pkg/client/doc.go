// Package client implements Packline's client-side connection
// demultiplexer: a single framed TCP socket shared by concurrent request/
// response calls and any number of open subscriptions, each correlated by
// the packet's context id.
package client
