package cpu

// Flag bit positions within the F register.
const (
	ZeroFlagBit      = 7
	SubtractFlagBit  = 6
	HalfCarryFlagBit = 5
	CarryFlagBit     = 4
)

// Flag masks within the F register.
const (
	FlagZ uint8 = 1 << ZeroFlagBit      // Zero flag (bit 7)
	FlagN uint8 = 1 << SubtractFlagBit  // Subtraction flag (bit 6)
	FlagH uint8 = 1 << HalfCarryFlagBit // Half-carry flag (bit 5)
	FlagC uint8 = 1 << CarryFlagBit     // Carry flag (bit 4)
)

// Flags holds the four SM83 condition flags.
type Flags struct {
	Zero      bool
	Subtract  bool
	HalfCarry bool
	Carry     bool
}

// FlagsFromByte unpacks the upper nibble of value. Bits 0-3 are ignored.
func FlagsFromByte(value uint8) Flags {
	return Flags{
		Zero:      (value>>ZeroFlagBit)&1 != 0,
		Subtract:  (value>>SubtractFlagBit)&1 != 0,
		HalfCarry: (value>>HalfCarryFlagBit)&1 != 0,
		Carry:     (value>>CarryFlagBit)&1 != 0,
	}
}

// Byte packs the flags into the F register layout. Bits 0-3 are always 0.
func (f Flags) Byte() uint8 {
	return bit(f.Zero)<<ZeroFlagBit |
		bit(f.Subtract)<<SubtractFlagBit |
		bit(f.HalfCarry)<<HalfCarryFlagBit |
		bit(f.Carry)<<CarryFlagBit
}

// String renders the flags as "ZNHC", with '-' for clear flags.
func (f Flags) String() string {
	out := []byte("----")
	if f.Zero {
		out[0] = 'Z'
	}
	if f.Subtract {
		out[1] = 'N'
	}
	if f.HalfCarry {
		out[2] = 'H'
	}
	if f.Carry {
		out[3] = 'C'
	}
	return string(out)
}

func bit(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
