package ops

import (
	"encoding/binary"
	"time"
)

// udpChecksumCorrectionKind is the UDP Checksum-Correction option's kind
// byte. It was taken from the draft-ietf-tsvwg-udp-options paper
// presentation (0xcc masked to 0x7f); the IETF draft itself left the
// value unassigned at the time of writing, so 0x4c is used here until
// it is standardized.
const udpChecksumCorrectionKind = 0x4c

// decodeUDPTimestamp implements the UDP Timestamp option (kind 0x07).
// Unlike its TCP counterpart, UDP has no acknowledgment concept to echo,
// so TSecr is always zero.
func decodeUDPTimestamp(dst []byte, spaceRemaining int, recipe []byte, cursor *int, raw []byte, opsBase []byte, offset int, totalLen int) int {
	const size = 10
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
	binary.BigEndian.PutUint32(dst[2:6], uint32(time.Now().Unix()))
	binary.BigEndian.PutUint32(dst[6:10], 0)
	return size
}

// decodeUDPUnknown implements the Unassigned option (kind 0x7d): no
// alignment padding, just a body clamped to 8 bytes total (or whatever
// budget remains) filled with an incrementing byte pattern.
func decodeUDPUnknown(dst []byte, spaceRemaining int, recipe []byte, cursor *int, raw []byte, opsBase []byte, offset int, totalLen int) int {
	if spaceRemaining < 2 {
		return 0
	}
	optionLen := spaceRemaining
	if optionLen > 8 {
		optionLen = 8
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

// decodeUDPExperimental implements kind 0xfe: like decodeUDPUnknown but
// with a 2-byte Experiment Identifier (0xdead) in place of the first two
// body bytes. No alignment padding, unlike the TCP/IPv4 variants.
func decodeUDPExperimental(dst []byte, spaceRemaining int, recipe []byte, cursor *int, raw []byte, opsBase []byte, offset int, totalLen int) int {
	if spaceRemaining < 4 {
		return 0
	}
	optionLen := spaceRemaining
	if optionLen > 8 {
		optionLen = 8
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

// decodeUDPChecksumCorrection implements the UDP Checksum-Correction
// option (kind 0x4c) described by draft-ietf-tsvwg-udp-options: the
// sole delayed option in this package (priority 999), since it must sum
// every byte of the finished options area, including bytes written by
// options that appear after it in the recipe.
//
// Two independent alignment concerns are at play here, and it is easy to
// conflate them:
//
//   - The 2-byte checksum field itself must land on a 16-bit boundary of
//     the underlying datagram. Since the IPv4/UDP headers preceding the
//     options area are always an even number of bytes, that boundary
//     depends on the parity of (original UDP length + this option's
//     offset within the options area). When that sum is odd a single
//     NOP byte is prepended to shift the field onto an even offset,
//     which costs one extra byte (5 total instead of 4).
//   - Separately, the checksum sum itself must start on a 16-bit
//     boundary of the options area. If the original UDP length is odd,
//     the options area's first byte straddles a word boundary from the
//     perspective of the checksum, so that leading byte is folded in by
//     hand (added unshifted, as the low octet of the datagram word it
//     shares with the last payload byte) and excluded from the bulk
//     accumulate call.
//
// The original C source computes the first check as
// `4 + (udp_len + (uint64_t)dst_buffer - (uint64_t)ops_sec & 1)`, which
// only evaluates as intended because C's `&` binds looser than `+`/`-`;
// this implementation writes the equivalent parenthesization explicitly.
func decodeUDPChecksumCorrection(dst []byte, spaceRemaining int, recipe []byte, cursor *int, raw []byte, opsBase []byte, offset int, totalLen int) int {
	if spaceRemaining < 4 {
		return 0
	}

	udpLen := udpLength(udpHeader(raw))
	retVal := 4 + ((udpLen + offset) & 1)
	if spaceRemaining < retVal {
		return 0
	}

	kind := recipe[*cursor]
	*cursor++

	if dst == nil {
		return retVal
	}

	pos := 0
	if retVal == 5 {
		dst[pos] = 0x01 // NOP: shift the checksum field onto an even offset
		pos++
	}
	dst[pos] = kind
	dst[pos+1] = 0x04
	dst[pos+2] = 0
	dst[pos+3] = 0

	// totalLen is the finished options area's length (this option is the
	// only delayed one, so by the time we are materializing, everything
	// has already been written). It doubles as the checksum's RFC 1071
	// initial value, per draft-ietf-tsvwg-udp-options.
	udpOpsLen := totalLen
	initSum := uint32(udpOpsLen)
	sumStart := 0
	if udpLen&1 != 0 {
		initSum += uint32(opsBase[0])
		sumStart = 1
		udpOpsLen--
	}
	checksum := csum16b1c(initSum, opsBase[sumStart:sumStart+udpOpsLen])
	binary.BigEndian.PutUint16(dst[pos+2:pos+4], checksum)

	return retVal
}

var udpTable = protocolTable{
	mask:     0xff,
	padAlign: false,
}

func init() {
	for i := range udpTable.decoders {
		udpTable.decoders[i] = decodeDummy
	}

	udpTable.decoders[0x00] = decodeLiteralByte // End of Options List
	udpTable.known[0x00] = true

	udpTable.decoders[0x01] = decodeLiteralByte // No Operation
	udpTable.known[0x01] = true

	udpTable.decoders[0x07] = decodeUDPTimestamp // Timestamp
	udpTable.known[0x07] = true

	udpTable.decoders[udpChecksumCorrectionKind] = decodeUDPChecksumCorrection
	udpTable.known[udpChecksumCorrectionKind] = true
	udpTable.priority[udpChecksumCorrectionKind] = 999

	udpTable.decoders[0x7d] = decodeUDPUnknown // Unassigned
	udpTable.known[0x7d] = true

	udpTable.decoders[0xfe] = decodeUDPExperimental // Experimental
	udpTable.known[0xfe] = true
}
