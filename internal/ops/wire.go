package ops

import "encoding/binary"

// Byte-offset accessors for the IPv4/TCP/UDP headers this package reads
// and rewrites. These operate directly on raw datagram bytes, mirroring
// the struct-pointer arithmetic of the C original rather than parsing
// into an intermediate struct: the builder and reassembler only ever
// need a handful of fields, and they need them fast and in place.

func ipVersion(b []byte) int        { return int(b[0] >> 4) }
func ipIHLDwords(b []byte) int      { return int(b[0] & 0x0f) }
func ipHeaderLen(b []byte) int      { return ipIHLDwords(b) * 4 }
func ipTotalLen(b []byte) int       { return int(binary.BigEndian.Uint16(b[2:4])) }
func ipSetTotalLen(b []byte, n int) { binary.BigEndian.PutUint16(b[2:4], uint16(n)) }
func ipProtocol(b []byte) uint8     { return b[9] }
func ipChecksumField(b []byte) uint16 {
	return binary.BigEndian.Uint16(b[10:12])
}
func ipSetChecksum(b []byte, c uint16) { binary.BigEndian.PutUint16(b[10:12], c) }
func ipSrcAddr(b []byte) uint32        { return binary.BigEndian.Uint32(b[12:16]) }
func ipDstAddr(b []byte) uint32        { return binary.BigEndian.Uint32(b[16:20]) }

func ipSetIHLDwords(b []byte, dwords int) {
	b[0] = (b[0] & 0xf0) | byte(dwords&0x0f)
}

func tcpHeader(raw []byte) []byte { return raw[ipHeaderLen(raw):] }

func tcpDataOffsetDwords(tcph []byte) int { return int(tcph[12] >> 4) }

func tcpSetDataOffsetDwords(tcph []byte, dwords int) {
	tcph[12] = (tcph[12] & 0x0f) | byte(dwords<<4)
}

// tcpACKFlag reports the ACK control bit, not the acknowledgment number.
func tcpACKFlag(tcph []byte) bool { return tcph[13]&0x10 != 0 }

func tcpSetChecksum(tcph []byte, c uint16) { binary.BigEndian.PutUint16(tcph[16:18], c) }

func udpHeader(raw []byte) []byte { return raw[ipHeaderLen(raw):] }

func udpLength(udph []byte) int { return int(binary.BigEndian.Uint16(udph[4:6])) }

func udpSetChecksum(udph []byte, c uint16) { binary.BigEndian.PutUint16(udph[6:8], c) }
