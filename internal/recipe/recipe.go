// Package recipe loads the byte sequence that drives the options-section
// builder from a file on disk.
package recipe

import (
	"fmt"
	"io"
	"os"

	"github.com/packetops/opsinject/internal/ops"
)

// maxSize bounds the recipe read so a misdirected /dev/zero or similar
// cannot exhaust memory. The original C tool instead hard-capped reads
// at a fixed 1024 bytes as a workaround for non-seekable
// process-substitution inputs; we stream to EOF instead (see
// DESIGN.md's Open Question resolution) and use this only as a sanity
// ceiling, not a silent truncation point.
const maxSize = 1 << 20 // 1 MiB

// Load reads the recipe file at path in full and returns it as an
// ops.Recipe. It never truncates silently: a file larger than maxSize is
// rejected outright rather than read partially.
func Load(path string) (ops.Recipe, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("recipe: open %s: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("recipe: read %s: %w", path, err)
	}
	if len(data) > maxSize {
		return nil, fmt.Errorf("recipe: %s exceeds the %d byte sanity limit", path, maxSize)
	}

	r, err := ops.NewRecipe(data)
	if err != nil {
		return nil, fmt.Errorf("recipe: %s: %w", path, err)
	}
	return r, nil
}
