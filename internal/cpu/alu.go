package cpu

// add8 performs 8-bit addition and sets flags. The half-carry test uses the
// operands as they were before the result is stored.
func (c *CPU) add8(a, b uint8, carry bool) uint8 {
	carryVal := uint8(0)
	if carry && c.Registers.F.Carry {
		carryVal = 1
	}

	result := a + b + carryVal

	c.Registers.F = Flags{
		Zero:      result == 0,
		Subtract:  false,
		HalfCarry: (a&0x0F)+(b&0x0F)+carryVal > 0x0F,
		Carry:     uint16(a)+uint16(b)+uint16(carryVal) > 0xFF,
	}

	return result
}

// sub8 performs 8-bit subtraction and sets flags.
func (c *CPU) sub8(a, b uint8, carry bool) uint8 {
	carryVal := uint8(0)
	if carry && c.Registers.F.Carry {
		carryVal = 1
	}

	result := a - b - carryVal

	c.Registers.F = Flags{
		Zero:      result == 0,
		Subtract:  true,
		HalfCarry: (a & 0x0F) < (b&0x0F)+carryVal,
		Carry:     uint16(a) < uint16(b)+uint16(carryVal),
	}

	return result
}

// add16 performs 16-bit addition for ADD HL, rr. Z is not affected.
func (c *CPU) add16(a, b uint16) uint16 {
	f := &c.Registers.F
	f.Subtract = false
	f.HalfCarry = (a&0x0FFF)+(b&0x0FFF) > 0x0FFF
	f.Carry = uint32(a)+uint32(b) > 0xFFFF

	return a + b
}

// addSPOffset returns SP plus the signed immediate and sets flags as
// ADD SP, r8 and LD HL, SP+r8 do: carries come from the low byte.
func (c *CPU) addSPOffset() uint16 {
	raw := c.imm8()
	offset := int8(raw) //nolint:gosec // G115: Intentional signed conversion for SP offset

	c.Registers.F = Flags{
		HalfCarry: (c.SP&0x0F)+uint16(raw&0x0F) > 0x0F,
		Carry:     (c.SP&0xFF)+uint16(raw) > 0xFF,
	}

	return c.SP + uint16(offset) //nolint:gosec // G115: Two's complement wraparound
}

func (c *CPU) and(value uint8) uint8 {
	result := c.Registers.A & value
	c.Registers.F = Flags{Zero: result == 0, HalfCarry: true}
	return result
}

func (c *CPU) or(value uint8) uint8 {
	result := c.Registers.A | value
	c.Registers.F = Flags{Zero: result == 0}
	return result
}

func (c *CPU) xor(value uint8) uint8 {
	result := c.Registers.A ^ value
	c.Registers.F = Flags{Zero: result == 0}
	return result
}

// cp performs compare (subtraction without storing result) and sets flags.
func (c *CPU) cp(value uint8) {
	c.sub8(c.Registers.A, value, false)
}

// inc8 increments an 8-bit value and sets flags. Carry is not affected.
func (c *CPU) inc8(value uint8) uint8 {
	result := value + 1

	f := &c.Registers.F
	f.Zero = result == 0
	f.Subtract = false
	f.HalfCarry = value&0x0F == 0x0F

	return result
}

// dec8 decrements an 8-bit value and sets flags. Carry is not affected.
func (c *CPU) dec8(value uint8) uint8 {
	result := value - 1

	f := &c.Registers.F
	f.Zero = result == 0
	f.Subtract = true
	f.HalfCarry = value&0x0F == 0

	return result
}

// daa performs Decimal Adjust Accumulator (DAA) operation.
func (c *CPU) daa() {
	a := c.Registers.A
	f := &c.Registers.F

	if !f.Subtract {
		// After addition
		if f.Carry || a > 0x99 {
			a += 0x60
			f.Carry = true
		}
		if f.HalfCarry || a&0x0F > 0x09 {
			a += 0x06
		}
	} else {
		// After subtraction
		if f.Carry {
			a -= 0x60
		}
		if f.HalfCarry {
			a -= 0x06
		}
	}

	c.Registers.A = a
	f.Zero = a == 0
	f.HalfCarry = false
}

// shiftFlags sets the flags shared by every rotate and shift.
func (c *CPU) shiftFlags(result uint8, carry bool) {
	c.Registers.F = Flags{Zero: result == 0, Carry: carry}
}

// rlc rotates left, copying bit 7 into carry and bit 0.
func (c *CPU) rlc(value uint8) uint8 {
	result := value<<1 | value>>7
	c.shiftFlags(result, value&0x80 != 0)
	return result
}

// rrc rotates right, copying bit 0 into carry and bit 7.
func (c *CPU) rrc(value uint8) uint8 {
	result := value>>1 | value<<7
	c.shiftFlags(result, value&0x01 != 0)
	return result
}

// rl rotates left through carry.
func (c *CPU) rl(value uint8) uint8 {
	result := value<<1 | bit(c.Registers.F.Carry)
	c.shiftFlags(result, value&0x80 != 0)
	return result
}

// rr rotates right through carry.
func (c *CPU) rr(value uint8) uint8 {
	result := value>>1 | bit(c.Registers.F.Carry)<<7
	c.shiftFlags(result, value&0x01 != 0)
	return result
}

// sla shifts left arithmetic.
func (c *CPU) sla(value uint8) uint8 {
	result := value << 1
	c.shiftFlags(result, value&0x80 != 0)
	return result
}

// sra shifts right arithmetic (preserves sign bit).
func (c *CPU) sra(value uint8) uint8 {
	result := value>>1 | value&0x80
	c.shiftFlags(result, value&0x01 != 0)
	return result
}

// srl shifts right logical.
func (c *CPU) srl(value uint8) uint8 {
	result := value >> 1
	c.shiftFlags(result, value&0x01 != 0)
	return result
}

// swap swaps upper and lower nibbles.
func (c *CPU) swap(value uint8) uint8 {
	result := value<<4 | value>>4
	c.shiftFlags(result, false)
	return result
}

// testBit sets Z from bit n of value. Carry is not affected.
func (c *CPU) testBit(value, n uint8) {
	f := &c.Registers.F
	f.Zero = value&(1<<n) == 0
	f.Subtract = false
	f.HalfCarry = true
}
