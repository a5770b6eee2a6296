package ops

// decodeLiteralByte writes the single recipe byte verbatim. It backs
// End-of-Options-List and No-Operation across all three protocols: both
// are single-byte options whose wire value is just the kind byte.
func decodeLiteralByte(dst []byte, spaceRemaining int, recipe []byte, cursor *int, raw []byte, opsBase []byte, offset int, totalLen int) int {
	if spaceRemaining < 1 {
		return 0
	}
	b := recipe[*cursor]
	*cursor++
	if dst == nil {
		return 1
	}
	dst[0] = b
	return 1
}

// decodeIPTimestamp implements the IPv4 Timestamp option (kind 0x44) in
// traceroute mode: a fixed 36-byte option, pointer at the first slot,
// overflow/flags byte 0x03, and the remaining 32 bytes zeroed (reserved
// for per-hop timestamps the kernel fills in, which this injector never
// does). It returns 36 on both the estimation and materialization
// passes.
func decodeIPTimestamp(dst []byte, spaceRemaining int, recipe []byte, cursor *int, raw []byte, opsBase []byte, offset int, totalLen int) int {
	const size = 36
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
	dst[2] = 5    // pointer: first octet after the fixed header
	dst[3] = 0x03 // overflow (0) | flags (timestamps only, no addresses)
	for i := 4; i < size; i++ {
		dst[i] = 0
	}
	return size
}

// decodeIPReserved implements both the "Unassigned"/0x5d and
// "Experimental"/0x5e IPv4 options: padding filler aligned to a 4-byte
// boundary, with an incrementing byte pattern in the body so the option
// is visually distinguishable on the wire.
func decodeIPReserved(dst []byte, spaceRemaining int, recipe []byte, cursor *int, raw []byte, opsBase []byte, offset int, totalLen int) int {
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

// decodeDummy is the default entry for any IPv4 option kind this
// annotator does not implement. It always fails: the builder treats an
// unknown kind as a fatal recipe error before ever reaching here (see
// protocolTable.known), so this only exists to make ipv4Table's array
// total and defensible against a future kind being marked known without
// a real decoder behind it.
func decodeDummy(dst []byte, spaceRemaining int, recipe []byte, cursor *int, raw []byte, opsBase []byte, offset int, totalLen int) int {
	return 0
}

var ipv4Table = protocolTable{
	mask:     0x7f,
	padAlign: true,
}

func init() {
	for i := range ipv4Table.decoders {
		ipv4Table.decoders[i] = decodeDummy
	}

	ipv4Table.decoders[0x00] = decodeLiteralByte // End of Options List
	ipv4Table.known[0x00] = true

	ipv4Table.decoders[0x01] = decodeLiteralByte // No Operation
	ipv4Table.known[0x01] = true

	ipv4Table.decoders[0x44] = decodeIPTimestamp // Timestamp
	ipv4Table.known[0x44] = true

	ipv4Table.decoders[0x5d] = decodeIPReserved // Unassigned
	ipv4Table.known[0x5d] = true

	ipv4Table.decoders[0x5e] = decodeIPReserved // Experimental
	ipv4Table.known[0x5e] = true

	// Every IPv4 option implemented here is immediate: ipv4Table.priority
	// is left at its zero value for every entry.
}
