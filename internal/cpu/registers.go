package cpu

import "fmt"

// Pair selects a 16-bit register pair.
type Pair uint8

// Register pairs. The first four follow the rr encoding of opcode bits 4-5.
const (
	PairBC Pair = iota
	PairDE
	PairHL
	PairSP
	PairAF
)

func (p Pair) String() string {
	switch p {
	case PairBC:
		return "BC"
	case PairDE:
		return "DE"
	case PairHL:
		return "HL"
	case PairSP:
		return "SP"
	case PairAF:
		return "AF"
	default:
		return fmt.Sprintf("Pair(%d)", uint8(p))
	}
}

// Registers represents the SM83 8-bit register file.
type Registers struct {
	A uint8 // Accumulator
	F Flags // Flags
	B uint8 // General purpose
	C uint8 // General purpose
	D uint8 // General purpose
	E uint8 // General purpose
	H uint8 // General purpose (high byte of HL pointer)
	L uint8 // General purpose (low byte of HL pointer)
}

// NewRegisters creates a new Registers instance with the DMG post-boot values.
func NewRegisters() *Registers {
	return &Registers{
		A: 0x01,
		F: FlagsFromByte(0xB0),
		B: 0x00,
		C: 0x13,
		D: 0x00,
		E: 0xD8,
		H: 0x01,
		L: 0x4D,
	}
}

// AF returns the 16-bit AF register pair.
func (r *Registers) AF() uint16 {
	return uint16(r.A)<<8 | uint16(r.F.Byte())
}

// BC returns the 16-bit BC register pair.
func (r *Registers) BC() uint16 {
	return uint16(r.B)<<8 | uint16(r.C)
}

// DE returns the 16-bit DE register pair.
func (r *Registers) DE() uint16 {
	return uint16(r.D)<<8 | uint16(r.E)
}

// HL returns the 16-bit HL register pair.
func (r *Registers) HL() uint16 {
	return uint16(r.H)<<8 | uint16(r.L)
}

// SetAF sets the 16-bit AF register pair. The low nibble of F is discarded.
func (r *Registers) SetAF(value uint16) {
	r.A = uint8(value >> 8) //nolint:gosec // G115: Intentional byte extraction from 16-bit register
	r.F = FlagsFromByte(uint8(value))
}

// SetBC sets the 16-bit BC register pair.
func (r *Registers) SetBC(value uint16) {
	r.B = uint8(value >> 8) //nolint:gosec // G115: Intentional byte extraction from 16-bit register
	r.C = uint8(value)      //nolint:gosec // G115: Intentional byte extraction from 16-bit register
}

// SetDE sets the 16-bit DE register pair.
func (r *Registers) SetDE(value uint16) {
	r.D = uint8(value >> 8) //nolint:gosec // G115: Intentional byte extraction from 16-bit register
	r.E = uint8(value)      //nolint:gosec // G115: Intentional byte extraction from 16-bit register
}

// SetHL sets the 16-bit HL register pair.
func (r *Registers) SetHL(value uint16) {
	r.H = uint8(value >> 8) //nolint:gosec // G115: Intentional byte extraction from 16-bit register
	r.L = uint8(value)      //nolint:gosec // G115: Intentional byte extraction from 16-bit register
}

// Pair returns the value of a register pair held in the register file.
// PairSP is not part of the register file and reads as 0; the CPU resolves it.
func (r *Registers) Pair(p Pair) uint16 {
	switch p {
	case PairBC:
		return r.BC()
	case PairDE:
		return r.DE()
	case PairHL:
		return r.HL()
	case PairAF:
		return r.AF()
	default:
		return 0
	}
}

// SetPair sets a register pair held in the register file. PairSP is ignored.
func (r *Registers) SetPair(p Pair, value uint16) {
	switch p {
	case PairBC:
		r.SetBC(value)
	case PairDE:
		r.SetDE(value)
	case PairHL:
		r.SetHL(value)
	case PairAF:
		r.SetAF(value)
	}
}

// String returns a one-line dump of the register file.
func (r *Registers) String() string {
	return fmt.Sprintf("A=%02X F=%s B=%02X C=%02X D=%02X E=%02X H=%02X L=%02X",
		r.A, r.F, r.B, r.C, r.D, r.E, r.H, r.L)
}
