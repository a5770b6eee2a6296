package ops

import "errors"

// Sentinel errors returned (usually wrapped with fmt.Errorf's %w) by this
// package. Per-packet errors are recoverable: the driver converts every
// one of them into an accept-unchanged verdict and a logged diagnostic.
// Only ErrEmptyRecipe is a startup-time error.
var (
	// ErrEmptyRecipe is returned by NewRecipe when given zero bytes.
	ErrEmptyRecipe = errors.New("ops: recipe is empty")

	// ErrShortPacket is returned when a buffer is too small to hold the
	// header it claims to be.
	ErrShortPacket = errors.New("ops: packet shorter than its declared header length")

	// ErrProtocolMismatch is returned when the packet's IP version or
	// protocol field does not match what the driver was configured for.
	ErrProtocolMismatch = errors.New("ops: packet protocol does not match configured target")

	// ErrPayloadSizeMismatch names the case where the queue payload length
	// disagrees with the IPv4 total-length field. Driver.Process checks
	// that case itself and passes such packets unchanged; no function in
	// this package returns this error.
	ErrPayloadSizeMismatch = errors.New("ops: payload size does not match declared IPv4 total length")

	// ErrUnknownOption is returned when a recipe byte's masked kind has
	// no decoder in the protocol's table.
	ErrUnknownOption = errors.New("ops: unknown option kind in recipe")

	// ErrBudgetExceeded is returned when a known decoder refuses because
	// the remaining per-protocol options budget is too small.
	ErrBudgetExceeded = errors.New("ops: recipe exceeds protocol option budget")

	// ErrReassemblyOverflow is returned when splicing the options blob
	// back into the packet would exceed the maximum IPv4 datagram size.
	ErrReassemblyOverflow = errors.New("ops: reassembled datagram exceeds maximum size")

	// ErrChecksumFailed is returned when a layer-4 checksum could not be
	// recomputed (e.g. a malformed header slipped past earlier checks).
	ErrChecksumFailed = errors.New("ops: checksum recomputation failed")
)
