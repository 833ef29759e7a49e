// Package memory implements the flat 64 KiB SM83 address space with
// memory-mapped peripheral hooks.
package memory

import (
	"errors"
	"fmt"
)

// Size is the number of addressable bytes: 0x0000-0xFFFF inclusive.
const Size = 0x10000

// Peripheral is a collaborator that owns a range of the address space,
// such as a cartridge controller or an I/O register block. Addresses are
// passed through unchanged.
type Peripheral interface {
	Read(addr uint16) uint8
	Write(addr uint16, value uint8)
}

var (
	// ErrImageTooLarge indicates a load would run past 0xFFFF.
	ErrImageTooLarge = errors.New("image does not fit in address space")

	// ErrOverlap indicates a mapping collides with an existing one.
	ErrOverlap = errors.New("address range already mapped")

	// ErrInvalidRange indicates a mapping whose start is past its end.
	ErrInvalidRange = errors.New("invalid address range")
)

// mapping delegates [start, end] to a peripheral.
type mapping struct {
	start, end uint16
	device     Peripheral
}

// Bus represents the memory bus.
type Bus struct {
	data [Size]uint8

	// Peripheral mappings, checked before the backing array
	mappings []mapping
}

// NewBus creates a new zero-filled memory bus.
func NewBus() *Bus {
	return &Bus{}
}

// Read reads a byte from the memory bus.
func (b *Bus) Read(addr uint16) uint8 {
	if m := b.lookup(addr); m != nil {
		return m.device.Read(addr)
	}
	return b.data[addr]
}

// Write writes a byte to the memory bus.
func (b *Bus) Write(addr uint16, value uint8) {
	if m := b.lookup(addr); m != nil {
		m.device.Write(addr, value)
		return
	}
	b.data[addr] = value
}

func (b *Bus) lookup(addr uint16) *mapping {
	for i := range b.mappings {
		if addr >= b.mappings[i].start && addr <= b.mappings[i].end {
			return &b.mappings[i]
		}
	}
	return nil
}

// Map delegates reads and writes in [start, end] to device.
func (b *Bus) Map(start, end uint16, device Peripheral) error {
	if start > end {
		return fmt.Errorf("%w: 0x%04X-0x%04X", ErrInvalidRange, start, end)
	}
	for _, m := range b.mappings {
		if start <= m.end && m.start <= end {
			return fmt.Errorf("%w: 0x%04X-0x%04X overlaps 0x%04X-0x%04X",
				ErrOverlap, start, end, m.start, m.end)
		}
	}

	b.mappings = append(b.mappings, mapping{start: start, end: end, device: device})
	return nil
}

// Load copies image into the backing array starting at offset. Peripheral
// mappings are bypassed.
func (b *Bus) Load(offset uint16, image []byte) error {
	if int(offset)+len(image) > Size {
		return fmt.Errorf("%w: %d bytes at 0x%04X", ErrImageTooLarge, len(image), offset)
	}

	copy(b.data[offset:], image)
	return nil
}

// Reset clears the backing array. Mappings stay attached.
func (b *Bus) Reset() {
	clear(b.data[:])
}
