// Package cpu implements the fetch/decode/execute core of the Sharp SM83,
// the Game Boy's processor.
package cpu

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// Memory interface for CPU to access memory bus.
type Memory interface {
	Read(addr uint16) uint8
	Write(addr uint16, value uint8)
}

// CPU represents the Sharp SM83 CPU.
type CPU struct {
	Registers *Registers
	Memory    Memory

	PC uint16 // Program counter
	SP uint16 // Stack pointer

	// Interrupt master enable flag. Servicing is left to an interrupt
	// controller; the CPU only tracks DI/EI/RETI.
	IME        bool
	pendingIME bool

	// Halt and stop states
	halted  bool
	stopped bool

	log   logrus.FieldLogger
	trace bool
}

// Option configures a CPU.
type Option func(*CPU)

// WithLogger sets the logger used for fault and trace diagnostics.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *CPU) {
		c.log = l
	}
}

// WithTrace logs every executed instruction at trace level.
func WithTrace() Option {
	return func(c *CPU) {
		c.trace = true
	}
}

// New creates a new CPU instance with DMG post-boot register values.
func New(mem Memory, opts ...Option) *CPU {
	c := &CPU{
		Registers: NewRegisters(),
		Memory:    mem,
		PC:        0x0100,
		SP:        0xFFFE,
		log:       discardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func discardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// Reset restores the post-boot register state. Memory is untouched.
func (c *CPU) Reset() {
	c.Registers = NewRegisters()
	c.PC = 0x0100
	c.SP = 0xFFFE
	c.IME = false
	c.pendingIME = false
	c.halted = false
	c.stopped = false
}

// Halted reports whether the CPU executed HALT and has not been woken.
func (c *CPU) Halted() bool {
	return c.halted
}

// Stopped reports whether the CPU executed STOP and has not been woken.
func (c *CPU) Stopped() bool {
	return c.stopped
}

// Wake leaves the HALT or STOP state. Execution resumes after the
// HALT/STOP instruction.
func (c *CPU) Wake() {
	c.halted = false
	c.stopped = false
}

// Step fetches, decodes and executes one instruction and commits the next PC.
//
// An unassigned opcode leaves all state untouched and returns an
// *IllegalOpcodeError. A halted or stopped CPU returns ErrHalted or
// ErrStopped until Wake is called.
func (c *CPU) Step() error {
	if c.stopped {
		return ErrStopped
	}
	if c.halted {
		return ErrHalted
	}

	opcode := c.Memory.Read(c.PC)
	prefixed := opcode == PrefixByte
	if prefixed {
		opcode = c.Memory.Read(c.PC + 1)
	}

	ins, ok := Decode(opcode, prefixed)
	if !ok {
		err := &IllegalOpcodeError{Address: c.PC, Opcode: opcode, Prefixed: prefixed}
		c.log.WithFields(logrus.Fields{
			"pc":       fmt.Sprintf("0x%04X", c.PC),
			"opcode":   err.Description(),
			"prefixed": prefixed,
		}).Error("illegal opcode")
		return err
	}

	if c.trace {
		c.log.WithFields(logrus.Fields{
			"pc":          fmt.Sprintf("0x%04X", c.PC),
			"sp":          fmt.Sprintf("0x%04X", c.SP),
			"instruction": ins.String(),
			"registers":   c.Registers.String(),
		}).Trace("step")
	}

	// EI takes effect after the instruction that follows it.
	enableIME := c.pendingIME
	c.PC = c.execute(ins)
	if enableIME && c.pendingIME {
		c.IME = true
		c.pendingIME = false
	}

	return nil
}

// imm8 reads the byte following the opcode.
func (c *CPU) imm8() uint8 {
	return c.Memory.Read(c.PC + 1)
}

// imm16 reads the little-endian word following the opcode.
func (c *CPU) imm16() uint16 {
	low := uint16(c.Memory.Read(c.PC + 1))
	high := uint16(c.Memory.Read(c.PC + 2))
	return high<<8 | low
}

// push pushes a 16-bit value onto the stack.
func (c *CPU) push(value uint16) {
	c.SP -= 2
	c.Memory.Write(c.SP, uint8(value))      //nolint:gosec // G115: Intentional byte extraction from 16-bit value
	c.Memory.Write(c.SP+1, uint8(value>>8)) //nolint:gosec // G115: Intentional byte extraction from 16-bit value
}

// pop pops a 16-bit value from the stack.
func (c *CPU) pop() uint16 {
	low := uint16(c.Memory.Read(c.SP))
	high := uint16(c.Memory.Read(c.SP + 1))
	c.SP += 2
	return high<<8 | low
}

// read8 returns the value of an 8-bit operand.
func (c *CPU) read8(t Target) uint8 {
	switch t {
	case TargetA:
		return c.Registers.A
	case TargetB:
		return c.Registers.B
	case TargetC:
		return c.Registers.C
	case TargetD:
		return c.Registers.D
	case TargetE:
		return c.Registers.E
	case TargetH:
		return c.Registers.H
	case TargetL:
		return c.Registers.L
	case TargetHLIndirect:
		return c.Memory.Read(c.Registers.HL())
	case TargetImmediate:
		return c.imm8()
	default:
		return 0
	}
}

// write8 stores value in an 8-bit operand. Immediates are not writable.
func (c *CPU) write8(t Target, value uint8) {
	switch t {
	case TargetA:
		c.Registers.A = value
	case TargetB:
		c.Registers.B = value
	case TargetC:
		c.Registers.C = value
	case TargetD:
		c.Registers.D = value
	case TargetE:
		c.Registers.E = value
	case TargetH:
		c.Registers.H = value
	case TargetL:
		c.Registers.L = value
	case TargetHLIndirect:
		c.Memory.Write(c.Registers.HL(), value)
	}
}

// pair returns a register pair, including SP.
func (c *CPU) pair(p Pair) uint16 {
	if p == PairSP {
		return c.SP
	}
	return c.Registers.Pair(p)
}

// setPair sets a register pair, including SP.
func (c *CPU) setPair(p Pair, value uint16) {
	if p == PairSP {
		c.SP = value
		return
	}
	c.Registers.SetPair(p, value)
}

// condition evaluates a jump test against the current flags.
func (c *CPU) condition(test JumpTest) bool {
	switch test {
	case NotZero:
		return !c.Registers.F.Zero
	case Zero:
		return c.Registers.F.Zero
	case NotCarry:
		return !c.Registers.F.Carry
	case Carry:
		return c.Registers.F.Carry
	case Always:
		return true
	default:
		return false
	}
}

// indirect resolves the address of an accumulator memory operand and applies
// the HL post-increment or post-decrement.
func (c *CPU) indirect(i Indirect) uint16 {
	switch i {
	case IndirectBC:
		return c.Registers.BC()
	case IndirectDE:
		return c.Registers.DE()
	case IndirectHLInc:
		addr := c.Registers.HL()
		c.Registers.SetHL(addr + 1)
		return addr
	case IndirectHLDec:
		addr := c.Registers.HL()
		c.Registers.SetHL(addr - 1)
		return addr
	case IndirectImmediate:
		return c.imm16()
	case IndirectHigh:
		return 0xFF00 + uint16(c.imm8())
	case IndirectHighC:
		return 0xFF00 + uint16(c.Registers.C)
	default:
		return 0
	}
}
