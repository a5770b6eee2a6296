package ops

import "encoding/binary"

// newIPv4Packet builds a minimal IPv4 datagram of totalLen bytes with
// ihlDwords words of header (no options beyond the fixed 20 unless the
// caller fills them in afterward) and the given protocol field. Every
// other byte is zeroed; tests set what they need beyond that.
func newIPv4Packet(ihlDwords int, protocol uint8, totalLen int) []byte {
	b := make([]byte, totalLen)
	b[0] = byte(4<<4 | ihlDwords)
	binary.BigEndian.PutUint16(b[2:4], uint16(totalLen))
	b[9] = protocol
	return b
}

// newTCPPacket builds an IPv4/TCP datagram with a doffDwords-word TCP
// header (base 5 plus any existing options, zeroed) and payloadLen
// bytes of payload after it.
func newTCPPacket(doffDwords int, payloadLen int, ackSet bool) []byte {
	totalLen := 20 + doffDwords*4 + payloadLen
	b := newIPv4Packet(5, 6, totalLen)
	tcph := b[20:]
	tcph[12] = byte(doffDwords << 4)
	if ackSet {
		tcph[13] |= 0x10
	}
	return b
}

// newUDPPacket builds an IPv4/UDP datagram with payloadLen bytes after
// the fixed 8-byte UDP header and trailingLen bytes of pre-existing
// trailing UDP options after that.
func newUDPPacket(payloadLen int, trailingLen int) []byte {
	udpLen := 8 + payloadLen
	totalLen := 20 + udpLen + trailingLen
	b := newIPv4Packet(5, 17, totalLen)
	udph := b[20:]
	binary.BigEndian.PutUint16(udph[4:6], uint16(udpLen))
	return b
}
