package queue

import (
	"context"
	"sync"

	"github.com/packetops/opsinject/internal/ops"
)

// Delivery is one packet fed through a FakeBridge, paired with the
// verdict the handler produced for it.
type Delivery struct {
	Payload []byte
	Verdict ops.Verdict
}

// FakeBridge is an in-memory Bridge double: packets are pushed in via
// Feed, and every resulting Delivery (payload plus the handler's
// verdict) can be drained via Deliveries. It is used by unit and
// integration tests; the daemon itself only runs on the NFQUEUE bridge.
type FakeBridge struct {
	mu         sync.Mutex
	deliveries []Delivery
	in         chan []byte
	closed     chan struct{}
	closeOnce  sync.Once
}

// NewFakeBridge returns a ready-to-run FakeBridge.
func NewFakeBridge() *FakeBridge {
	return &FakeBridge{
		in:     make(chan []byte, 64),
		closed: make(chan struct{}),
	}
}

// Feed enqueues a packet to be handed to the handler on the next Run
// iteration. It blocks if the internal buffer is full.
func (b *FakeBridge) Feed(payload []byte) {
	select {
	case b.in <- payload:
	case <-b.closed:
	}
}

// Deliveries returns every payload/verdict pair produced so far.
func (b *FakeBridge) Deliveries() []Delivery {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Delivery, len(b.deliveries))
	copy(out, b.deliveries)
	return out
}

// Run implements Bridge: it feeds every queued packet to handler until
// ctx is canceled or Close is called.
func (b *FakeBridge) Run(ctx context.Context, handler Handler) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-b.closed:
			return nil
		case payload, ok := <-b.in:
			if !ok {
				return nil
			}
			v := handler(ctx, payload)
			b.mu.Lock()
			b.deliveries = append(b.deliveries, Delivery{Payload: payload, Verdict: v})
			b.mu.Unlock()
		}
	}
}

// Close implements Bridge. Safe to call more than once.
func (b *FakeBridge) Close() error {
	b.closeOnce.Do(func() { close(b.closed) })
	return nil
}

var _ Bridge = (*FakeBridge)(nil)
