package ops

import (
	"encoding/binary"
	"time"
)

// decodeTCPEchoReply implements the obsoleted Echo (0x06) and
// Echo-Reply (0x07) options, both RFC 6247. They share a layout: kind,
// length 6, and a 4-byte placeholder echoed value.
func decodeTCPEchoReply(dst []byte, spaceRemaining int, recipe []byte, cursor *int, raw []byte, opsBase []byte, offset int, totalLen int) int {
	const size = 6
	if spaceRemaining < size {
		return 0
	}
	kind := recipe[*cursor]
	*cursor++
	if dst == nil {
		return size
	}
	dst[0] = kind
	dst[1] = size
	binary.BigEndian.PutUint32(dst[2:6], 0x01020304)
	return size
}

// decodeTCPTimestamp implements the TCP Timestamp option (kind 0x08).
// TSval and TSecr are derived from the current time and the inbound
// segment's ACK control bit (not its acknowledgment number): when ACK is
// set, TSval runs 100 seconds ahead of TSecr; when it is clear, TSecr is
// zero, matching an initial SYN with no prior timestamp to echo.
func decodeTCPTimestamp(dst []byte, spaceRemaining int, recipe []byte, cursor *int, raw []byte, opsBase []byte, offset int, totalLen int) int {
	const size = 10
	if spaceRemaining < size {
		return 0
	}
	kind := recipe[*cursor]
	*cursor++
	if dst == nil {
		return size
	}
	var ack uint32
	if tcpACKFlag(tcpHeader(raw)) {
		ack = 1
	}
	now := uint32(time.Now().Unix())
	dst[0] = kind
	dst[1] = size
	binary.BigEndian.PutUint32(dst[2:6], now+ack*100)
	binary.BigEndian.PutUint32(dst[6:10], now*ack)
	return size
}

// decodeTCPReserved implements the Reserved option (kind 0x47): padding
// filler aligned to a 4-byte boundary, same scheme as the IPv4
// Unassigned/Experimental options.
func decodeTCPReserved(dst []byte, spaceRemaining int, recipe []byte, cursor *int, raw []byte, opsBase []byte, offset int, totalLen int) int {
	if spaceRemaining < 2 {
		return 0
	}
	optionLen := 4 - offset%4
	if optionLen <= 2 && spaceRemaining >= 6 {
		optionLen += 4
	}
	kind := recipe[*cursor]
	*cursor++
	if dst == nil {
		return optionLen
	}
	dst[0] = kind
	dst[1] = byte(optionLen)
	for i := 2; i < optionLen; i++ {
		dst[i] = byte(i - 2)
	}
	return optionLen
}

// decodeTCPExperimental implements kind 0xfe: a 4-byte-aligned option
// carrying a 2-byte Experiment Identifier (0xdead) and an incrementing
// byte body, clamped to whatever budget remains.
func decodeTCPExperimental(dst []byte, spaceRemaining int, recipe []byte, cursor *int, raw []byte, opsBase []byte, offset int, totalLen int) int {
	if spaceRemaining < 4 {
		return 0
	}
	optionLen := 8 - offset%4
	if spaceRemaining < optionLen {
		optionLen = spaceRemaining
	}
	kind := recipe[*cursor]
	*cursor++
	if dst == nil {
		return optionLen
	}
	dst[0] = kind
	dst[1] = byte(optionLen)
	dst[2], dst[3] = 0xde, 0xad
	for i := 4; i < optionLen; i++ {
		dst[i] = byte(i - 4)
	}
	return optionLen
}

var tcpTable = protocolTable{
	mask:     0xff,
	padAlign: true,
}

func init() {
	for i := range tcpTable.decoders {
		tcpTable.decoders[i] = decodeDummy
	}

	tcpTable.decoders[0x00] = decodeLiteralByte // End of Options List
	tcpTable.known[0x00] = true

	tcpTable.decoders[0x01] = decodeLiteralByte // No Operation
	tcpTable.known[0x01] = true

	tcpTable.decoders[0x06] = decodeTCPEchoReply // Echo
	tcpTable.known[0x06] = true

	tcpTable.decoders[0x07] = decodeTCPEchoReply // Echo Reply
	tcpTable.known[0x07] = true

	tcpTable.decoders[0x08] = decodeTCPTimestamp // Timestamp
	tcpTable.known[0x08] = true

	tcpTable.decoders[0x47] = decodeTCPReserved // Reserved
	tcpTable.known[0x47] = true

	tcpTable.decoders[0xfe] = decodeTCPExperimental // Experimental
	tcpTable.known[0xfe] = true

	// Every TCP option implemented here is immediate: tcpTable.priority
	// is left at its zero value for all 256 entries.
}
