// Package queue is the boundary between the annotator's per-packet
// pipeline (internal/ops) and whatever actually delivers packets to it:
// a Linux NFQUEUE on the production path, or an in-memory fake under
// test.
package queue

import (
	"context"

	"github.com/packetops/opsinject/internal/ops"
)

// Handler processes one raw IPv4 datagram and returns the verdict to
// post back to the kernel.
type Handler func(ctx context.Context, payload []byte) ops.Verdict

// Bridge delivers packets to a Handler and posts its verdicts back to
// whatever is holding them — the kernel's NFQUEUE, or a test double.
type Bridge interface {
	// Run blocks, feeding every received packet to handler, until ctx is
	// canceled or an unrecoverable error occurs. A canceled context is
	// not itself an error: Run returns nil.
	Run(ctx context.Context, handler Handler) error
	// Close releases the underlying queue/socket resources. Safe to call
	// more than once.
	Close() error
}
