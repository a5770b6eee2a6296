// Package ops implements the options-generation and packet-reassembly
// pipeline for the in-line packet annotator: per-protocol decoder tables
// that turn a byte recipe into a wire-format options blob, a two-pass
// priority-ordered builder for options whose value depends on bytes
// written later, per-protocol packet reassembly, and checksum fix-up.
//
// Everything in this package operates on raw IPv4 datagram bytes; there
// is no IPv6 support and no semantic parsing of options already present
// on the inbound packet.
package ops
