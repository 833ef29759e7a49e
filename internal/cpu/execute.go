package cpu

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// execute applies ins to the CPU state and returns the next PC. PC itself is
// only read here; Step commits the returned value.
//
//nolint:gocognit,gocyclo // One case per instruction kind
func (c *CPU) execute(ins Instruction) uint16 {
	next := c.PC + Size(ins)

	switch i := ins.(type) {
	// Control
	case Nop:
		return next
	case Stop:
		c.stopped = true
		return next
	case Halt:
		c.halted = true
		return next
	case Di:
		c.IME = false
		c.pendingIME = false // Cancel any pending EI
		return next
	case Ei:
		c.pendingIME = true
		return next

	// Loads
	case Ld:
		c.write8(i.Dst, c.read8(i.Src))
		return next
	case Ld16:
		c.setPair(i.Dst, c.imm16())
		return next
	case LdAIndirect:
		c.Registers.A = c.Memory.Read(c.indirect(i.Src))
		return next
	case LdIndirectA:
		c.Memory.Write(c.indirect(i.Dst), c.Registers.A)
		return next
	case LdAddrSP:
		addr := c.imm16()
		c.Memory.Write(addr, uint8(c.SP))      //nolint:gosec // G115: Intentional byte extraction
		c.Memory.Write(addr+1, uint8(c.SP>>8)) //nolint:gosec // G115: Intentional byte extraction
		return next
	case LdSPHL:
		c.SP = c.Registers.HL()
		return next
	case LdHLSPOffset:
		c.Registers.SetHL(c.addSPOffset())
		return next
	case Push:
		c.push(c.pair(i.Src))
		return next
	case Pop:
		c.setPair(i.Dst, c.pop())
		return next

	// 8-bit ALU
	case Add:
		c.Registers.A = c.add8(c.Registers.A, c.read8(i.Target), false)
		return next
	case Adc:
		c.Registers.A = c.add8(c.Registers.A, c.read8(i.Target), true)
		return next
	case Sub:
		c.Registers.A = c.sub8(c.Registers.A, c.read8(i.Target), false)
		return next
	case Sbc:
		c.Registers.A = c.sub8(c.Registers.A, c.read8(i.Target), true)
		return next
	case And:
		c.Registers.A = c.and(c.read8(i.Target))
		return next
	case Xor:
		c.Registers.A = c.xor(c.read8(i.Target))
		return next
	case Or:
		c.Registers.A = c.or(c.read8(i.Target))
		return next
	case Cp:
		c.cp(c.read8(i.Target))
		return next
	case Inc8:
		c.write8(i.Target, c.inc8(c.read8(i.Target)))
		return next
	case Dec8:
		c.write8(i.Target, c.dec8(c.read8(i.Target)))
		return next
	case Daa:
		c.daa()
		return next
	case Cpl:
		c.Registers.A = ^c.Registers.A
		c.Registers.F.Subtract = true
		c.Registers.F.HalfCarry = true
		return next
	case Scf:
		c.Registers.F = Flags{Zero: c.Registers.F.Zero, Carry: true}
		return next
	case Ccf:
		c.Registers.F = Flags{Zero: c.Registers.F.Zero, Carry: !c.Registers.F.Carry}
		return next

	// 16-bit arithmetic
	case Inc:
		c.setPair(i.Target, c.pair(i.Target)+1)
		return next
	case Dec:
		c.setPair(i.Target, c.pair(i.Target)-1)
		return next
	case AddHL:
		c.Registers.SetHL(c.add16(c.Registers.HL(), c.pair(i.Src)))
		return next
	case AddSP:
		c.SP = c.addSPOffset()
		return next

	// Accumulator rotates always clear Z
	case Rlca:
		c.Registers.A = c.rlc(c.Registers.A)
		c.Registers.F.Zero = false
		return next
	case Rrca:
		c.Registers.A = c.rrc(c.Registers.A)
		c.Registers.F.Zero = false
		return next
	case Rla:
		c.Registers.A = c.rl(c.Registers.A)
		c.Registers.F.Zero = false
		return next
	case Rra:
		c.Registers.A = c.rr(c.Registers.A)
		c.Registers.F.Zero = false
		return next

	// Control flow
	case Jp:
		if c.condition(i.Test) {
			return c.imm16()
		}
		return next
	case JpHL:
		return c.Registers.HL()
	case Jr:
		if c.condition(i.Test) {
			offset := int8(c.imm8()) //nolint:gosec // G115: Intentional signed conversion for relative jump
			return next + uint16(offset) //nolint:gosec // G115: Two's complement wraparound
		}
		return next
	case Call:
		if c.condition(i.Test) {
			target := c.imm16()
			c.push(next)
			return target
		}
		return next
	case Ret:
		if c.condition(i.Test) {
			return c.pop()
		}
		return next
	case Reti:
		c.IME = true
		return c.pop()
	case Rst:
		c.push(next)
		return uint16(i.Vector)

	// CB prefix
	case Rlc:
		c.write8(i.Target, c.rlc(c.read8(i.Target)))
		return next
	case Rrc:
		c.write8(i.Target, c.rrc(c.read8(i.Target)))
		return next
	case Rl:
		c.write8(i.Target, c.rl(c.read8(i.Target)))
		return next
	case Rr:
		c.write8(i.Target, c.rr(c.read8(i.Target)))
		return next
	case Sla:
		c.write8(i.Target, c.sla(c.read8(i.Target)))
		return next
	case Sra:
		c.write8(i.Target, c.sra(c.read8(i.Target)))
		return next
	case Swap:
		c.write8(i.Target, c.swap(c.read8(i.Target)))
		return next
	case Srl:
		c.write8(i.Target, c.srl(c.read8(i.Target)))
		return next
	case Bit:
		c.testBit(c.read8(i.Target), i.Bit)
		return next
	case Res:
		c.write8(i.Target, c.read8(i.Target)&^(1<<i.Bit))
		return next
	case Set:
		c.write8(i.Target, c.read8(i.Target)|1<<i.Bit)
		return next

	default:
		// Decoded but without execute semantics: leave PC in place.
		c.log.WithFields(logrus.Fields{
			"pc":          fmt.Sprintf("0x%04X", c.PC),
			"instruction": ins.String(),
		}).Warn("unimplemented instruction")
		return c.PC
	}
}
