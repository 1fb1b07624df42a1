package hdkeychain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// DefaultAccountPath is the conventional derivation path of the first
// account: purpose 44', the coin type registered for this chain, then
// account, change and index.
const DefaultAccountPath = "m/44'/888'/0'/0/0"

// ErrInvalidPath is returned when derivation path text cannot be parsed.
var ErrInvalidPath = errors.New("invalid derivation path")

// ParseDerivationPath parses textual derivation paths of the form
// "m/44'/888'/0'/0/0" into the index sequence DerivePath consumes. The
// leading "m" element is optional; an apostrophe, "h" or "H" suffix marks a
// hardened index. The bare path "m" parses to the empty sequence.
func ParseDerivationPath(path string) ([]uint32, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}

	parts := strings.Split(trimmed, "/")
	if parts[0] == "m" || parts[0] == "M" {
		parts = parts[1:]
	}

	indices := make([]uint32, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			return nil, fmt.Errorf("%w: empty path element in %q",
				ErrInvalidPath, path)
		}

		hardened := false
		switch part[len(part)-1] {
		case '\'', 'h', 'H':
			hardened = true
			part = part[:len(part)-1]
		}

		index, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: bad index %q",
				ErrInvalidPath, part)
		}
		if index >= uint64(HardenedKeyStart) {
			return nil, fmt.Errorf("%w: index %d out of range",
				ErrInvalidPath, index)
		}

		if hardened {
			index += uint64(HardenedKeyStart)
		}
		indices = append(indices, uint32(index))
	}

	return indices, nil
}
