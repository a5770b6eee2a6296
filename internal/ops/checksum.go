package ops

import (
	"encoding/binary"
	"fmt"
)

// foldChecksum folds a 32-bit accumulated sum down to 16 bits and returns
// its one's complement, i.e. the final IP/TCP/UDP checksum value.
func foldChecksum(sum uint32) uint16 {
	for sum>>16 != 0 {
		sum = (sum & 0xffff) + (sum >> 16)
	}
	return ^uint16(sum)
}

// accumulate adds data to an existing (unfolded) one's-complement sum,
// treating data as a sequence of big-endian 16-bit words. An odd trailing
// byte is summed as if padded with a zero low byte, matching the
// RFC 1071 reference algorithm.
func accumulate(initial uint32, data []byte) uint32 {
	sum := initial
	for len(data) >= 2 {
		sum += uint32(binary.BigEndian.Uint16(data[:2]))
		data = data[2:]
	}
	if len(data) == 1 {
		sum += uint32(data[0]) << 8
	}
	return sum
}

// csum16b1c is the one's-complement checksum primitive shared by every
// layer: accumulate starting from initial, then fold and complement.
func csum16b1c(initial uint32, data []byte) uint16 {
	return foldChecksum(accumulate(initial, data))
}

// fixIPv4Checksum recomputes and stores the IPv4 header checksum over
// the header plus options (the checksum field itself is zeroed first).
func fixIPv4Checksum(b []byte) {
	ipSetChecksum(b, 0)
	ipSetChecksum(b, csum16b1c(0, b[:ipHeaderLen(b)]))
}

// pseudoHeaderSum accumulates the IPv4 pseudo-header used by TCP and UDP
// checksums: source address, destination address, zero, protocol, and
// the layer-4 segment length.
func pseudoHeaderSum(b []byte, protocol uint8, length int) uint32 {
	var buf [12]byte
	binary.BigEndian.PutUint32(buf[0:4], ipSrcAddr(b))
	binary.BigEndian.PutUint32(buf[4:8], ipDstAddr(b))
	buf[8] = 0
	buf[9] = protocol
	binary.BigEndian.PutUint16(buf[10:12], uint16(length))
	return accumulate(0, buf[:])
}

func fixTCPChecksum(b []byte) error {
	ihl := ipHeaderLen(b)
	if len(b) < ihl+20 {
		return fmt.Errorf("fix tcp checksum: %w", ErrShortPacket)
	}
	tcph := b[ihl:]
	tcpSetChecksum(tcph, 0)
	sum := pseudoHeaderSum(b, 6, len(tcph))
	tcpSetChecksum(tcph, csum16b1c(sum, tcph))
	return nil
}

func fixUDPChecksum(b []byte) error {
	ihl := ipHeaderLen(b)
	if len(b) < ihl+8 {
		return fmt.Errorf("fix udp checksum: %w", ErrShortPacket)
	}
	udph := b[ihl:]
	udpSetChecksum(udph, 0)
	sum := pseudoHeaderSum(b, 17, len(udph))
	udpSetChecksum(udph, csum16b1c(sum, udph))
	return nil
}

// layer4ChecksumFixers dispatches by IPv4 protocol number, mirroring the
// original's layer4_csum[protocol] table. Protocols this annotator never
// rewrites (anything other than TCP/UDP) are a deliberate no-op: the
// options blob is never spliced into them in the first place.
var layer4ChecksumFixers = map[uint8]func([]byte) error{
	6:  fixTCPChecksum,
	17: fixUDPChecksum,
}

// fixLayer4Checksum recomputes the layer-4 checksum appropriate for b's
// IPv4 protocol field, if any applies.
func fixLayer4Checksum(b []byte) error {
	if fn, ok := layer4ChecksumFixers[ipProtocol(b)]; ok {
		if err := fn(b); err != nil {
			return fmt.Errorf("%w: %w", ErrChecksumFailed, err)
		}
	}
	return nil
}
