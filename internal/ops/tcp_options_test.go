package ops

import (
	"bytes"
	"testing"
)

func TestBuildTCPOptionsNOPPadding(t *testing.T) {
	raw := newTCPPacket(5, 0, false)
	ops, n, err := BuildTCPOptions(Recipe{0x01}, raw, true)
	if err != nil {
		t.Fatalf("BuildTCPOptions: %v", err)
	}
	want := []byte{0x01, 0x00, 0x00, 0x00}
	if n != 4 || !bytes.Equal(ops[:n], want) {
		t.Fatalf("options = % x (len %d), want % x", ops[:n], n, want)
	}

	modified, err := ReassembleTCP(raw, ops, n, true)
	if err != nil {
		t.Fatalf("ReassembleTCP: %v", err)
	}
	if got := tcpDataOffsetDwords(modified[20:]); got != 6 {
		t.Fatalf("doff = %d, want 6", got)
	}
}

func TestBuildTCPOptionsTimestampOnACK(t *testing.T) {
	raw := newTCPPacket(5, 0, true)
	ops, n, err := BuildTCPOptions(Recipe{0x08}, raw, true)
	if err != nil {
		t.Fatalf("BuildTCPOptions: %v", err)
	}
	if n != 12 {
		t.Fatalf("options length = %d, want 12 (10 padded to 12)", n)
	}
	if ops[0] != 0x08 || ops[1] != 10 {
		t.Fatalf("options header = % x, want kind 0x08 length 10", ops[:2])
	}
	if ops[10] != 0x00 || ops[11] != 0x00 {
		t.Fatalf("padding bytes = % x, want two zero pad bytes", ops[10:12])
	}

	modified, err := ReassembleTCP(raw, ops, n, true)
	if err != nil {
		t.Fatalf("ReassembleTCP: %v", err)
	}
	if got := tcpDataOffsetDwords(modified[20:]); got != 8 {
		t.Fatalf("doff = %d, want 8", got)
	}
}

func TestBuildTCPOptionsTimestampWithoutACK(t *testing.T) {
	raw := newTCPPacket(5, 0, false)
	ops, _, err := BuildTCPOptions(Recipe{0x08}, raw, true)
	if err != nil {
		t.Fatalf("BuildTCPOptions: %v", err)
	}
	// TSecr = now * ack(0) = 0 when the ACK flag is clear.
	if ops[6] != 0 || ops[7] != 0 || ops[8] != 0 || ops[9] != 0 {
		t.Fatalf("TSecr = % x, want all-zero", ops[6:10])
	}
}

func TestBuildTCPOptionsEchoReply(t *testing.T) {
	raw := newTCPPacket(5, 0, false)
	ops, n, err := BuildTCPOptions(Recipe{0x07}, raw, true)
	if err != nil {
		t.Fatalf("BuildTCPOptions: %v", err)
	}
	want := []byte{0x07, 6, 0x01, 0x02, 0x03, 0x04, 0x00, 0x00}
	if n != 8 || !bytes.Equal(ops[:n], want) {
		t.Fatalf("options = % x (len %d), want % x", ops[:n], n, want)
	}
}
