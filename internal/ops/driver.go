package ops

import (
	"fmt"
	"log/slog"
	"net/netip"
)

// reassembleFunc is the per-protocol packet reassembler signature shared
// by ReassembleIPv4/ReassembleTCP/ReassembleUDP.
type reassembleFunc func(raw []byte, opsBlob []byte, opsLen int, overwrite bool) ([]byte, error)

// Driver orchestrates the options-generation and reassembly pipeline for
// one packet at a time, producing a Verdict for the queue bridge to post
// back to the kernel. It holds no per-packet state between calls.
type Driver struct {
	recipe Recipe
	config Config
	logger *slog.Logger
}

// NewDriver builds a Driver bound to a fixed recipe and configuration.
// A nil logger falls back to slog.Default().
func NewDriver(recipe Recipe, config Config, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{recipe: recipe, config: config, logger: logger}
}

// Process handles one raw IPv4 datagram end to end: sanity checks,
// options generation, reassembly, and checksum fix-up. Any recoverable
// failure in that pipeline yields an accept-unchanged verdict rather
// than propagating an error, per spec.md §7. Options-generation failures
// (protocol mismatch, unknown kind, budget exceeded) are logged at Debug;
// a packet too short for an IPv4 header, a payload/total-length mismatch,
// and reassembly or checksum failures are logged at Warn.
func (d *Driver) Process(raw []byte) Verdict {
	if len(raw) < 20 {
		d.logger.Warn("dropped packet shorter than an IPv4 header", "len", len(raw))
		return unchangedVerdict()
	}
	if len(raw) != ipTotalLen(raw) {
		d.logger.Warn("payload size does not match declared IPv4 total length",
			"payload_len", len(raw), "tot_len", ipTotalLen(raw))
		return unchangedVerdict()
	}

	d.logger.Debug("received packet",
		slog.String("src", formatIPv4(ipSrcAddr(raw))),
		slog.String("dst", formatIPv4(ipDstAddr(raw))),
		slog.String("protocol", ProtocolName(ipProtocol(raw))),
		slog.Int("len", len(raw)))

	opsBlob, opsLen, reassemble, err := d.buildOptions(raw)
	if err != nil {
		d.logger.Debug("options generation failed, passing packet unchanged", "error", err)
		return unchangedVerdict()
	}
	if opsLen == 0 {
		return unchangedVerdict()
	}

	modified, err := reassemble(raw, opsBlob, opsLen, d.config.Overwrite)
	if err != nil {
		d.logger.Warn("reassembly failed, passing packet unchanged", "error", err)
		return unchangedVerdict()
	}

	if err := fixLayer4Checksum(modified); err != nil {
		d.logger.Warn("checksum fix-up failed, passing packet unchanged", "error", err)
		return unchangedVerdict()
	}
	fixIPv4Checksum(modified)

	if d.config.RedirectQueue != nil {
		d.logger.Debug("posting redirect verdict", slog.Int("new_len", len(modified)))
		return Verdict{Action: ActionRedirect, Payload: modified, RedirectQueue: *d.config.RedirectQueue}
	}
	d.logger.Debug("posting accept-modified verdict", slog.Int("new_len", len(modified)))
	return Verdict{Action: ActionAcceptModified, Payload: modified}
}

func (d *Driver) buildOptions(raw []byte) ([]byte, int, reassembleFunc, error) {
	switch d.config.Protocol {
	case ProtocolIPv4:
		blob, n, err := BuildIPv4Options(d.recipe, raw, d.config.Overwrite)
		return blob, n, ReassembleIPv4, err
	case ProtocolTCP:
		blob, n, err := BuildTCPOptions(d.recipe, raw, d.config.Overwrite)
		return blob, n, ReassembleTCP, err
	case ProtocolUDP:
		blob, n, err := BuildUDPOptions(d.recipe, raw, d.config.Overwrite)
		return blob, n, ReassembleUDP, err
	default:
		return nil, 0, nil, fmt.Errorf("driver: %w", ErrProtocolMismatch)
	}
}

func unchangedVerdict() Verdict { return Verdict{Action: ActionAcceptUnchanged} }

func formatIPv4(addr uint32) string {
	return netip.AddrFrom4([4]byte{
		byte(addr >> 24), byte(addr >> 16), byte(addr >> 8), byte(addr),
	}).String()
}
