// Package wire implements Packline's binary wire protocol: a cursor-based
// codec for primitive and composite types, and a length-prefixed packet
// framer built on top of it.
//
// All multi-byte integers are big-endian. Strings and vectors are prefixed
// with a signed 64-bit length; a negative length is a decode error. A packet
// on the wire is:
//
//	[ i32 payload_size ][ u8 packet_type ][ u16 route ][ u16 version ][ u32 context_id ][ message ]
//
// payload_size counts everything after itself; payload_size+4 is the total
// frame length. Unknown (route, version) pairs decode successfully as far as
// framing is concerned (the frame is still consumed) but carry no message —
// callers must not dispatch them.
package wire
