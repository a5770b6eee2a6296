package ops

import "fmt"

// maxDatagramSize is the largest IPv4 total length the reassembler will
// ever produce.
const maxDatagramSize = 0xffff

// ReassembleIPv4 splices opsBlob[:opsLen] into raw's IPv4 options area
// and returns a new, correctly length-addressed datagram. Checksums are
// not touched here; the driver recomputes them afterward.
func ReassembleIPv4(raw []byte, opsBlob []byte, opsLen int, overwrite bool) ([]byte, error) {
	if len(raw) < 20 {
		return nil, fmt.Errorf("reassemble ipv4: %w", ErrShortPacket)
	}

	out := make([]byte, 0, maxDatagramSize)
	out = append(out, raw[:20]...)

	if !overwrite {
		existingLen := ipHeaderLen(raw) - 20
		out = append(out, raw[20:20+existingLen]...)
	}
	out = append(out, opsBlob[:opsLen]...)

	tail := raw[ipHeaderLen(raw):]
	out = append(out, tail...)

	if len(out) > maxDatagramSize {
		return nil, fmt.Errorf("reassemble ipv4: %w", ErrReassemblyOverflow)
	}

	baseDwords := ipIHLDwords(raw)
	if overwrite {
		baseDwords = 5
	}
	ipSetTotalLen(out, len(out))
	ipSetIHLDwords(out, baseDwords+opsLen/4)
	return out, nil
}

// ReassembleTCP splices opsBlob[:opsLen] into raw's TCP options area.
func ReassembleTCP(raw []byte, opsBlob []byte, opsLen int, overwrite bool) ([]byte, error) {
	ihl := ipHeaderLen(raw)
	if len(raw) < ihl+20 {
		return nil, fmt.Errorf("reassemble tcp: %w", ErrShortPacket)
	}
	tcph := raw[ihl:]
	doff := tcpDataOffsetDwords(tcph) * 4
	if len(raw) < ihl+doff {
		return nil, fmt.Errorf("reassemble tcp: %w", ErrShortPacket)
	}

	out := make([]byte, 0, maxDatagramSize)
	out = append(out, raw[:ihl]...) // IP header plus any IP options, untouched
	out = append(out, raw[ihl:ihl+20]...)

	if !overwrite {
		existingLen := doff - 20
		out = append(out, raw[ihl+20:ihl+20+existingLen]...)
	}
	out = append(out, opsBlob[:opsLen]...)

	out = append(out, raw[ihl+doff:]...)

	if len(out) > maxDatagramSize {
		return nil, fmt.Errorf("reassemble tcp: %w", ErrReassemblyOverflow)
	}

	baseDwords := tcpDataOffsetDwords(tcph)
	if overwrite {
		baseDwords = 5
	}
	ipSetTotalLen(out, len(out))
	tcpSetDataOffsetDwords(out[ihl:], baseDwords+opsLen/4)
	return out, nil
}

// ReassembleUDP splices opsBlob[:opsLen] after raw's UDP payload, per
// draft-ietf-tsvwg-udp-options: UDP options trail the payload rather
// than sitting in a fixed-position header area. The UDP length field is
// left untouched; only the IPv4 total length changes. When overwrite is
// false, any existing trailing options are preserved ahead of the new
// blob (Open Question resolution — see DESIGN.md).
func ReassembleUDP(raw []byte, opsBlob []byte, opsLen int, overwrite bool) ([]byte, error) {
	ihl := ipHeaderLen(raw)
	if len(raw) < ihl+8 {
		return nil, fmt.Errorf("reassemble udp: %w", ErrShortPacket)
	}
	udph := raw[ihl:]
	udpLen := udpLength(udph)
	if udpLen < 8 || len(raw) < ihl+udpLen {
		return nil, fmt.Errorf("reassemble udp: %w", ErrShortPacket)
	}

	out := make([]byte, 0, maxDatagramSize)
	out = append(out, raw[:ihl]...) // IP header plus any IP options, untouched
	out = append(out, raw[ihl:ihl+udpLen]...) // UDP header and payload, untouched

	if !overwrite {
		existingLen := ipTotalLen(raw) - ihl - udpLen
		out = append(out, raw[ihl+udpLen:ihl+udpLen+existingLen]...)
	}
	out = append(out, opsBlob[:opsLen]...)

	if len(out) > maxDatagramSize {
		return nil, fmt.Errorf("reassemble udp: %w", ErrReassemblyOverflow)
	}

	ipSetTotalLen(out, len(out))
	return out, nil
}
