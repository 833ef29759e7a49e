// Package rom loads program images from disk and inspects the optional
// cartridge header at 0x0100-0x014F.
package rom

import (
	"errors"
	"fmt"

	"github.com/cespare/xxhash"
)

// HeaderEnd is the first address past the cartridge header.
const HeaderEnd = 0x0150

var (
	// ErrTooSmall indicates the image ends before the header does.
	ErrTooSmall = errors.New("image too small for cartridge header")

	// ErrHeaderChecksum indicates the byte at 0x014D does not match the header.
	ErrHeaderChecksum = errors.New("invalid header checksum")
)

// Header holds the cartridge header fields a flat image runner cares about.
type Header struct {
	Title    string
	Type     uint8 // Cartridge type (0x0147)
	ROMSize  uint8 // ROM size code (0x0148)
	RAMSize  uint8 // RAM size code (0x0149)
	Checksum uint8 // Header checksum (0x014D)
}

// ParseHeader reads the header of image. Images without a header are valid
// programs; callers treat an error here as informational.
func ParseHeader(image []byte) (*Header, error) {
	if len(image) < HeaderEnd {
		return nil, fmt.Errorf("%w: got %d bytes", ErrTooSmall, len(image))
	}

	h := &Header{
		Title:    title(image[0x0134:0x0144]),
		Type:     image[0x0147],
		ROMSize:  image[0x0148],
		RAMSize:  image[0x0149],
		Checksum: image[0x014D],
	}

	if want := HeaderChecksum(image); want != h.Checksum {
		return h, fmt.Errorf("%w: got 0x%02X, want 0x%02X", ErrHeaderChecksum, h.Checksum, want)
	}

	return h, nil
}

// HeaderChecksum computes the checksum over 0x0134-0x014C.
// Formula: checksum = 0; for each byte: checksum = checksum - byte - 1.
func HeaderChecksum(image []byte) uint8 {
	checksum := uint8(0)
	for addr := 0x0134; addr <= 0x014C; addr++ {
		checksum = checksum - image[addr] - 1
	}
	return checksum
}

// title trims the title field at the first null byte.
func title(field []byte) string {
	for i, b := range field {
		if b == 0 {
			return string(field[:i])
		}
	}
	return string(field)
}

// TypeName returns a human-readable name for the cartridge type byte.
func TypeName(t uint8) string {
	switch t {
	case 0x00:
		return "ROM ONLY"
	case 0x01:
		return "MBC1"
	case 0x02:
		return "MBC1+RAM"
	case 0x03:
		return "MBC1+RAM+BATTERY"
	case 0x05:
		return "MBC2"
	case 0x06:
		return "MBC2+BATTERY"
	case 0x08:
		return "ROM+RAM"
	case 0x09:
		return "ROM+RAM+BATTERY"
	case 0x0F, 0x10, 0x11, 0x12, 0x13:
		return "MBC3"
	case 0x19, 0x1A, 0x1B, 0x1C, 0x1D, 0x1E:
		return "MBC5"
	default:
		return fmt.Sprintf("UNKNOWN (0x%02X)", t)
	}
}

// Banked reports whether the cartridge type needs a memory bank controller,
// which a flat address space does not model.
func (h *Header) Banked() bool {
	switch h.Type {
	case 0x00, 0x08, 0x09:
		return false
	default:
		return true
	}
}

// Fingerprint identifies an image by its xxhash64 digest.
func Fingerprint(image []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(image))
}
