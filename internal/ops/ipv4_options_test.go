package ops

import (
	"bytes"
	"errors"
	"testing"
)

func TestBuildIPv4OptionsTimestamp(t *testing.T) {
	raw := newIPv4Packet(5, 1, 20)
	recipe := Recipe{0x44}

	ops, n, err := BuildIPv4Options(recipe, raw, true)
	if err != nil {
		t.Fatalf("BuildIPv4Options: %v", err)
	}
	if n != 36 {
		t.Fatalf("options length = %d, want 36", n)
	}
	want := append([]byte{0x44, 36, 5, 0x03}, make([]byte, 32)...)
	if !bytes.Equal(ops[:n], want) {
		t.Fatalf("options = % x, want % x", ops[:n], want)
	}

	modified, err := ReassembleIPv4(raw, ops, n, true)
	if err != nil {
		t.Fatalf("ReassembleIPv4: %v", err)
	}
	if ipIHLDwords(modified) != 14 {
		t.Fatalf("ihl = %d, want 14", ipIHLDwords(modified))
	}
	if ipTotalLen(modified) != len(modified) {
		t.Fatalf("tot_len = %d, actual len = %d", ipTotalLen(modified), len(modified))
	}
}

func TestBuildIPv4OptionsNOPAndEOOL(t *testing.T) {
	raw := newIPv4Packet(5, 1, 20)
	ops, n, err := BuildIPv4Options(Recipe{0x01, 0x00}, raw, true)
	if err != nil {
		t.Fatalf("BuildIPv4Options: %v", err)
	}
	want := []byte{0x01, 0x00, 0x00, 0x00}
	if n != 4 || !bytes.Equal(ops[:n], want) {
		t.Fatalf("options = % x (len %d), want % x", ops[:n], n, want)
	}
}

func TestBuildIPv4OptionsUnknownKind(t *testing.T) {
	raw := newIPv4Packet(5, 1, 20)
	_, _, err := BuildIPv4Options(Recipe{0x23}, raw, true)
	if !errors.Is(err, ErrUnknownOption) {
		t.Fatalf("err = %v, want ErrUnknownOption", err)
	}
}

func TestBuildIPv4OptionsBudgetExceeded(t *testing.T) {
	// overwrite=false, existing IHL of 8 dwords leaves only
	// (15-8)*4 = 28 bytes of budget, less than Timestamp's 36.
	raw := newIPv4Packet(8, 1, 32)
	_, _, err := BuildIPv4Options(Recipe{0x44}, raw, false)
	if !errors.Is(err, ErrBudgetExceeded) {
		t.Fatalf("err = %v, want ErrBudgetExceeded", err)
	}
}

func TestBuildIPv4OptionsReservedPadsToFourBytes(t *testing.T) {
	raw := newIPv4Packet(5, 1, 20)
	ops, n, err := BuildIPv4Options(Recipe{0x5d}, raw, true)
	if err != nil {
		t.Fatalf("BuildIPv4Options: %v", err)
	}
	if n%4 != 0 {
		t.Fatalf("options length %d is not 4-byte aligned", n)
	}
	if ops[0] != 0x5d {
		t.Fatalf("options[0] = 0x%02x, want 0x5d", ops[0])
	}
}

func TestBuildIPv4OptionsMasksCopyBit(t *testing.T) {
	// 0xc4 = 0x44 with the copy bit set; table lookup masks with 0x7f
	// but the byte actually written preserves the copy bit.
	raw := newIPv4Packet(5, 1, 20)
	ops, n, err := BuildIPv4Options(Recipe{0xc4}, raw, true)
	if err != nil {
		t.Fatalf("BuildIPv4Options: %v", err)
	}
	if n != 36 {
		t.Fatalf("options length = %d, want 36", n)
	}
	if ops[0] != 0xc4 {
		t.Fatalf("options[0] = 0x%02x, want 0xc4 (copy bit preserved)", ops[0])
	}
}
