package ops

import "container/heap"

// decodeFunc is the contract every per-option decoder implements.
//
// dst == nil is the estimation pass: the decoder must advance *cursor
// past every recipe byte it consumes, write nothing, and return the
// number of bytes it will produce during materialization. dst != nil is
// the materialization pass: the decoder writes exactly that many bytes
// into dst and returns the same count again.
//
// offset is the byte offset within the options area where this option's
// slot begins (stable across both passes for a given option). totalLen
// is the options area's length as known at call time: for an immediate
// option this equals offset; for a delayed option materialized in the
// second pass it is the final length of the whole blob, since every
// immediate write and every delayed reservation has already happened.
//
// A return of 0 means the option could not be decoded (insufficient
// budget, or the slot's own sanity check failed) and aborts the entire
// options blob.
type decodeFunc func(dst []byte, spaceRemaining int, recipe []byte, cursor *int, raw []byte, opsBase []byte, offset int, totalLen int) int

// pendingOption is a delayed option waiting for its reserved slot to be
// materialized once every earlier byte in the options area is final.
type pendingOption struct {
	offset      int
	reservedLen int
	priority    int
	cursor      int // recipe index the option starts at
	seq         int // break priority ties in recipe order
}

type pendingQueue []*pendingOption

func (q pendingQueue) Len() int { return len(q) }

func (q pendingQueue) Less(i, j int) bool {
	if q[i].priority != q[j].priority {
		return q[i].priority < q[j].priority
	}
	return q[i].seq < q[j].seq
}

func (q pendingQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *pendingQueue) Push(x any) { *q = append(*q, x.(*pendingOption)) }

func (q *pendingQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}

var _ heap.Interface = (*pendingQueue)(nil)
