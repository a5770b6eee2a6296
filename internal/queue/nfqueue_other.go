//go:build !linux

package queue

import (
	"errors"
	"log/slog"
)

// errNFQueueUnsupported is returned by OpenNFQueue on non-Linux builds,
// where NFQUEUE does not exist as a kernel facility.
var errNFQueueUnsupported = errors.New("queue: NFQUEUE is only available on linux")

// NFQueueConfig mirrors the Linux build's config shape so callers in
// cmd/opsinject compile unconditionally across platforms.
type NFQueueConfig struct {
	QueueNum    uint16
	MaxQueueLen uint32
	Logger      *slog.Logger
}

// OpenNFQueue always fails on non-Linux platforms, so cmd/opsinject
// exits with an error there; FakeBridge is the Bridge tests use instead.
func OpenNFQueue(cfg NFQueueConfig) (Bridge, error) {
	return nil, errNFQueueUnsupported
}
