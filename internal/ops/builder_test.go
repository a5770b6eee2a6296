package ops

import (
	"errors"
	"testing"
)

func TestBuilderEmptyRecipeYieldsEmptyBlob(t *testing.T) {
	raw := newIPv4Packet(5, 1, 20)
	ops, n, err := BuildIPv4Options(Recipe{}, raw, true)
	if err != nil {
		t.Fatalf("BuildIPv4Options: %v", err)
	}
	if n != 0 {
		t.Fatalf("options length = %d, want 0", n)
	}
	_ = ops
}

func TestBuilderDelayedOptionMaterializesAfterImmediateBytes(t *testing.T) {
	// A synthetic protocol table with one immediate writer and one
	// delayed writer whose value depends on the immediate byte already
	// written ahead of it, proving the two-pass ordering holds even when
	// the delayed option is not the last recipe byte.
	var tbl protocolTable
	tbl.mask = 0xff
	for i := range tbl.decoders {
		tbl.decoders[i] = decodeDummy
	}

	immediate := func(dst []byte, spaceRemaining int, recipe []byte, cursor *int, raw []byte, opsBase []byte, offset int, totalLen int) int {
		if spaceRemaining < 1 {
			return 0
		}
		*cursor++
		if dst == nil {
			return 1
		}
		dst[0] = 0xaa
		return 1
	}
	delayed := func(dst []byte, spaceRemaining int, recipe []byte, cursor *int, raw []byte, opsBase []byte, offset int, totalLen int) int {
		if spaceRemaining < 1 {
			return 0
		}
		*cursor++
		if dst == nil {
			return 1
		}
		// Reads the byte the immediate decoder wrote into the next slot,
		// which is only possible if materialization happens after pass one.
		dst[0] = opsBase[1] + 1
		return 1
	}

	tbl.decoders[0x01] = immediate
	tbl.known[0x01] = true
	tbl.decoders[0x02] = delayed
	tbl.known[0x02] = true
	tbl.priority[0x02] = 1

	ops := make([]byte, 8)
	n, err := tbl.build(Recipe{0x02, 0x01}, ops, 8, nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if n != 2 {
		t.Fatalf("n = %d, want 2", n)
	}
	if ops[0] != 0xab {
		t.Fatalf("ops[0] = 0x%02x, want 0xab (0xaa + 1, proving delayed ran last)", ops[0])
	}
	if ops[1] != 0xaa {
		t.Fatalf("ops[1] = 0x%02x, want 0xaa", ops[1])
	}
}

func TestBuilderUnknownKindAbortsWholeBlob(t *testing.T) {
	var tbl protocolTable
	tbl.mask = 0xff
	for i := range tbl.decoders {
		tbl.decoders[i] = decodeDummy
	}
	tbl.decoders[0x01] = decodeLiteralByte
	tbl.known[0x01] = true

	ops := make([]byte, 8)
	n, err := tbl.build(Recipe{0x01, 0x99}, ops, 8, nil)
	if n != 0 {
		t.Fatalf("n = %d, want 0", n)
	}
	if !errors.Is(err, ErrUnknownOption) {
		t.Fatalf("err = %v, want ErrUnknownOption", err)
	}
}
