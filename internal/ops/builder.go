package ops

import (
	"container/heap"
	"fmt"
)

const (
	ipv4OptionsBudget = 40
	tcpOptionsBudget  = 40
	// udpOptionsScratch bounds the working buffer for UDP options, which
	// the wire format allows up to the full 16-bit length space.
	udpOptionsScratch = 0xffff
)

// protocolTable bundles a decoder table with the priority and masking
// rules needed to drive the two-pass builder for one protocol.
type protocolTable struct {
	decoders [256]decodeFunc
	known    [256]bool
	priority [256]int
	mask     byte
	// padAlign rounds the finished options area up to a multiple of 4
	// bytes with zero fill, as IHL/Data-Offset fields require. UDP
	// options are not aligned.
	padAlign bool
}

// build runs the two-pass priority-ordered algorithm over recipe,
// writing into ops (which must have at least spaceAvailable bytes of
// capacity) and returns the final options-area length.
//
// Pass 1 walks the recipe in order. Priority-0 (immediate) options are
// materialized directly. Any other priority is a delayed option: it is
// estimated (dst == nil) to learn its size, a slot of that size is
// reserved in ops, and the option is pushed onto a min-heap keyed by
// priority (ties broken by recipe order). Pass 2 pops the heap smallest
// first and materializes each delayed option into its reserved slot,
// by which point every earlier byte in the options area is final.
func (t *protocolTable) build(recipe Recipe, ops []byte, spaceAvailable int, raw []byte) (int, error) {
	var (
		length int
		seq    int
		pq     pendingQueue
	)

	cursor := 0
	for cursor < len(recipe) {
		start := cursor
		kind := recipe[cursor] & t.mask

		if !t.known[kind] {
			return 0, fmt.Errorf("recipe byte %d (kind 0x%02x): %w", start, recipe[start], ErrUnknownOption)
		}

		remaining := spaceAvailable - length

		if t.priority[kind] == 0 {
			sliceLen := remaining
			if sliceLen < 0 {
				sliceLen = 0
			}
			n := t.decoders[kind](ops[length:length+sliceLen], remaining, recipe, &cursor, raw, ops, length, length)
			if n == 0 {
				return 0, fmt.Errorf("recipe byte %d (kind 0x%02x): %w", start, recipe[start], ErrBudgetExceeded)
			}
			length += n
			continue
		}

		n := t.decoders[kind](nil, remaining, recipe, &cursor, raw, ops, length, length)
		if n == 0 {
			return 0, fmt.Errorf("recipe byte %d (kind 0x%02x): %w", start, recipe[start], ErrBudgetExceeded)
		}
		heap.Push(&pq, &pendingOption{
			offset:      length,
			reservedLen: n,
			priority:    t.priority[kind],
			cursor:      start,
			seq:         seq,
		})
		seq++
		length += n
	}

	for pq.Len() > 0 {
		item := heap.Pop(&pq).(*pendingOption)
		slot := ops[item.offset : item.offset+item.reservedLen]
		c := item.cursor
		kind := recipe[c] & t.mask
		n := t.decoders[kind](slot, spaceAvailable-length, recipe, &c, raw, ops, item.offset, length)
		if n == 0 {
			return 0, fmt.Errorf("recipe byte %d (kind 0x%02x): %w", item.cursor, recipe[item.cursor], ErrBudgetExceeded)
		}
	}

	if t.padAlign {
		padded := (length + 3) &^ 3
		for i := length; i < padded; i++ {
			ops[i] = 0
		}
		length = padded
	}

	return length, nil
}

// BuildIPv4Options generates the IPv4 options area for raw per recipe,
// honoring overwrite per spec.md's Invariant on option-budget sizing.
func BuildIPv4Options(recipe Recipe, raw []byte, overwrite bool) ([]byte, int, error) {
	if len(raw) < 20 {
		return nil, 0, fmt.Errorf("ipv4 options: %w", ErrShortPacket)
	}
	if ipVersion(raw) != 4 {
		return nil, 0, fmt.Errorf("ipv4 options: %w", ErrProtocolMismatch)
	}

	baseDwords := 5
	if !overwrite {
		baseDwords = ipIHLDwords(raw)
	}
	spaceAvailable := (0x0f - baseDwords) * 4

	ops := make([]byte, ipv4OptionsBudget)
	length, err := ipv4Table.build(recipe, ops, spaceAvailable, raw)
	if err != nil {
		return nil, 0, fmt.Errorf("ipv4 options: %w", err)
	}
	return ops, length, nil
}

// BuildTCPOptions generates the TCP options area for raw per recipe.
func BuildTCPOptions(recipe Recipe, raw []byte, overwrite bool) ([]byte, int, error) {
	if len(raw) < 20 {
		return nil, 0, fmt.Errorf("tcp options: %w", ErrShortPacket)
	}
	if ipVersion(raw) != 4 {
		return nil, 0, fmt.Errorf("tcp options: %w", ErrProtocolMismatch)
	}
	if ipProtocol(raw) != 6 {
		return nil, 0, fmt.Errorf("tcp options: %w", ErrProtocolMismatch)
	}
	if len(raw) < ipHeaderLen(raw)+20 {
		return nil, 0, fmt.Errorf("tcp options: %w", ErrShortPacket)
	}

	tcph := tcpHeader(raw)
	baseDwords := 5
	if !overwrite {
		baseDwords = tcpDataOffsetDwords(tcph)
	}
	spaceAvailable := (0x0f - baseDwords) * 4

	ops := make([]byte, tcpOptionsBudget)
	length, err := tcpTable.build(recipe, ops, spaceAvailable, raw)
	if err != nil {
		return nil, 0, fmt.Errorf("tcp options: %w", err)
	}
	return ops, length, nil
}

// BuildUDPOptions generates the trailing UDP options area for raw per
// recipe. Unlike IPv4/TCP, UDP options are unbounded (up to the 16-bit
// length space) and unpadded: they sit after the UDP payload, per
// draft-ietf-tsvwg-udp-options.
func BuildUDPOptions(recipe Recipe, raw []byte, overwrite bool) ([]byte, int, error) {
	if len(raw) < 20 {
		return nil, 0, fmt.Errorf("udp options: %w", ErrShortPacket)
	}
	if ipVersion(raw) != 4 {
		return nil, 0, fmt.Errorf("udp options: %w", ErrProtocolMismatch)
	}
	if ipProtocol(raw) != 17 {
		return nil, 0, fmt.Errorf("udp options: %w", ErrProtocolMismatch)
	}
	if len(raw) < ipHeaderLen(raw)+8 {
		return nil, 0, fmt.Errorf("udp options: %w", ErrShortPacket)
	}

	udph := udpHeader(raw)
	var consumed int
	if overwrite {
		consumed = ipHeaderLen(raw) + udpLength(udph)
	} else {
		consumed = ipTotalLen(raw)
	}
	spaceAvailable := udpOptionsScratch - consumed

	ops := make([]byte, udpOptionsScratch)
	length, err := udpTable.build(recipe, ops, spaceAvailable, raw)
	if err != nil {
		return nil, 0, fmt.Errorf("udp options: %w", err)
	}
	return ops, length, nil
}
