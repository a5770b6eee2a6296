package ops

import (
	"testing"
)

func verifyUDPCCOChecksum(t *testing.T, raw []byte, ops []byte, n int) {
	t.Helper()
	udpLen := udpLength(udpHeader(raw))
	initSum := uint32(n)
	sumStart := 0
	opsLen := n
	if udpLen&1 != 0 {
		initSum += uint32(ops[0])
		sumStart = 1
		opsLen--
	}
	if folded := foldChecksum(accumulate(initSum, ops[sumStart:sumStart+opsLen])); folded != 0 {
		t.Fatalf("checksum-correction does not self-verify: fold = 0x%04x", folded)
	}
}

func TestBuildUDPOptionsChecksumCorrectionAligned(t *testing.T) {
	// udpLen = 8 (even); offset 0 -> (8+0)&1 == 0, no NOP needed.
	raw := newUDPPacket(0, 0)
	ops, n, err := BuildUDPOptions(Recipe{udpChecksumCorrectionKind}, raw, true)
	if err != nil {
		t.Fatalf("BuildUDPOptions: %v", err)
	}
	if n != 4 {
		t.Fatalf("options length = %d, want 4 (no alignment NOP)", n)
	}
	if ops[0] != udpChecksumCorrectionKind || ops[1] != 0x04 {
		t.Fatalf("options header = % x, want kind 0x4c length 4", ops[:2])
	}
	verifyUDPCCOChecksum(t, raw, ops, n)
}

func TestBuildUDPOptionsChecksumCorrectionUnaligned(t *testing.T) {
	// udpLen = 9 (odd); offset 0 -> (9+0)&1 == 1, one NOP prepended.
	raw := newUDPPacket(1, 0)
	ops, n, err := BuildUDPOptions(Recipe{udpChecksumCorrectionKind}, raw, true)
	if err != nil {
		t.Fatalf("BuildUDPOptions: %v", err)
	}
	if n != 5 {
		t.Fatalf("options length = %d, want 5 (one alignment NOP)", n)
	}
	if ops[0] != 0x01 {
		t.Fatalf("options[0] = 0x%02x, want NOP (0x01)", ops[0])
	}
	if ops[1] != udpChecksumCorrectionKind || ops[2] != 0x04 {
		t.Fatalf("options header = % x, want kind 0x4c length 4 after the NOP", ops[1:3])
	}
	verifyUDPCCOChecksum(t, raw, ops, n)
}

func TestBuildUDPOptionsTimestampThenChecksumCorrection(t *testing.T) {
	for _, tc := range []struct {
		name     string
		udpLen   int
		wantLen  int
		wantNOP  bool
	}{
		{"even udp length, no NOP", 8, 14, false},
		{"odd udp length, one NOP", 9, 15, true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			raw := newUDPPacket(tc.udpLen-8, 0)
			ops, n, err := BuildUDPOptions(Recipe{0x07, udpChecksumCorrectionKind}, raw, true)
			if err != nil {
				t.Fatalf("BuildUDPOptions: %v", err)
			}
			if n != tc.wantLen {
				t.Fatalf("options length = %d, want %d", n, tc.wantLen)
			}
			// Timestamp occupies [0:10) unconditionally.
			if ops[0] != 0x07 || ops[1] != 10 {
				t.Fatalf("timestamp header = % x, want kind 0x07 length 10", ops[:2])
			}
			ccoStart := 10
			if tc.wantNOP {
				if ops[10] != 0x01 {
					t.Fatalf("options[10] = 0x%02x, want NOP (0x01)", ops[10])
				}
				ccoStart = 11
			}
			if ops[ccoStart] != udpChecksumCorrectionKind {
				t.Fatalf("options[%d] = 0x%02x, want 0x4c", ccoStart, ops[ccoStart])
			}
			verifyUDPCCOChecksum(t, raw, ops, n)
		})
	}
}

func TestBuildUDPOptionsUnknownNoPadding(t *testing.T) {
	raw := newUDPPacket(0, 0)
	ops, n, err := BuildUDPOptions(Recipe{0x7d}, raw, true)
	if err != nil {
		t.Fatalf("BuildUDPOptions: %v", err)
	}
	if n != 8 {
		t.Fatalf("options length = %d, want 8 (clamped, unpadded)", n)
	}
	if ops[0] != 0x7d || ops[1] != 8 {
		t.Fatalf("options header = % x, want kind 0x7d length 8", ops[:2])
	}
}

func TestBuildUDPOptionsTimestampTSecrAlwaysZero(t *testing.T) {
	raw := newUDPPacket(0, 0)
	ops, n, err := BuildUDPOptions(Recipe{0x07}, raw, true)
	if err != nil {
		t.Fatalf("BuildUDPOptions: %v", err)
	}
	if n != 10 {
		t.Fatalf("options length = %d, want 10", n)
	}
	for i, b := range ops[6:10] {
		if b != 0 {
			t.Fatalf("TSecr[%d] = 0x%02x, want 0", i, b)
		}
	}
}
