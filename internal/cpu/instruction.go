package cpu

import "fmt"

// Instruction is a decoded SM83 instruction. The set of implementations is
// closed: every variant is declared in this file and carries only the operand
// selectors it needs.
type Instruction interface {
	fmt.Stringer
	instruction()
}

// Target selects an 8-bit operand. The first eight values follow the register
// encoding of the low three opcode bits.
type Target uint8

// 8-bit operand selectors.
const (
	TargetB Target = iota
	TargetC
	TargetD
	TargetE
	TargetH
	TargetL
	TargetHLIndirect // (HL)
	TargetA
	TargetImmediate // d8 following the opcode
)

func (t Target) String() string {
	switch t {
	case TargetB:
		return "B"
	case TargetC:
		return "C"
	case TargetD:
		return "D"
	case TargetE:
		return "E"
	case TargetH:
		return "H"
	case TargetL:
		return "L"
	case TargetHLIndirect:
		return "(HL)"
	case TargetA:
		return "A"
	case TargetImmediate:
		return "d8"
	default:
		return fmt.Sprintf("Target(%d)", uint8(t))
	}
}

// JumpTest is the condition of a conditional jump, call or return.
// The first four values follow the cc encoding of opcode bits 3-4.
type JumpTest uint8

// Jump conditions.
const (
	NotZero JumpTest = iota
	Zero
	NotCarry
	Carry
	Always
)

func (j JumpTest) String() string {
	switch j {
	case NotZero:
		return "NZ"
	case Zero:
		return "Z"
	case NotCarry:
		return "NC"
	case Carry:
		return "C"
	case Always:
		return ""
	default:
		return fmt.Sprintf("JumpTest(%d)", uint8(j))
	}
}

// Indirect selects the memory operand of an accumulator load or store.
type Indirect uint8

// Accumulator memory operands.
const (
	IndirectBC        Indirect = iota // (BC)
	IndirectDE                        // (DE)
	IndirectHLInc                     // (HL+)
	IndirectHLDec                     // (HL-)
	IndirectImmediate                 // (a16)
	IndirectHigh                      // (FF00+a8)
	IndirectHighC                     // (FF00+C)
)

func (i Indirect) String() string {
	switch i {
	case IndirectBC:
		return "(BC)"
	case IndirectDE:
		return "(DE)"
	case IndirectHLInc:
		return "(HL+)"
	case IndirectHLDec:
		return "(HL-)"
	case IndirectImmediate:
		return "(a16)"
	case IndirectHigh:
		return "(FF00+a8)"
	case IndirectHighC:
		return "(FF00+C)"
	default:
		return fmt.Sprintf("Indirect(%d)", uint8(i))
	}
}

// Control instructions.
type (
	Nop  struct{}
	Stop struct{}
	Halt struct{}
	Di   struct{}
	Ei   struct{}
)

// Load instructions.
type (
	// Ld copies Src into Dst. Src may be TargetImmediate.
	Ld struct{ Dst, Src Target }
	// Ld16 loads d16 into a register pair (BC, DE, HL or SP).
	Ld16 struct{ Dst Pair }
	// LdAIndirect loads A from memory.
	LdAIndirect struct{ Src Indirect }
	// LdIndirectA stores A to memory.
	LdIndirectA struct{ Dst Indirect }
	// LdAddrSP stores SP at a16.
	LdAddrSP struct{}
	// LdSPHL copies HL into SP.
	LdSPHL struct{}
	// LdHLSPOffset loads SP plus a signed 8-bit offset into HL.
	LdHLSPOffset struct{}
	// Push pushes a register pair (BC, DE, HL or AF).
	Push struct{ Src Pair }
	// Pop pops a register pair (BC, DE, HL or AF).
	Pop struct{ Dst Pair }
)

// 8-bit arithmetic and logic on the accumulator.
type (
	Add struct{ Target Target }
	Adc struct{ Target Target }
	Sub struct{ Target Target }
	Sbc struct{ Target Target }
	And struct{ Target Target }
	Xor struct{ Target Target }
	Or  struct{ Target Target }
	Cp  struct{ Target Target }
)

// Increments, decrements and 16-bit arithmetic.
type (
	// Inc increments a register pair. Flags are not affected.
	Inc struct{ Target Pair }
	// Dec decrements a register pair. Flags are not affected.
	Dec struct{ Target Pair }
	// Inc8 increments an 8-bit operand.
	Inc8 struct{ Target Target }
	// Dec8 decrements an 8-bit operand.
	Dec8 struct{ Target Target }
	// AddHL adds a register pair to HL.
	AddHL struct{ Src Pair }
	// AddSP adds a signed 8-bit offset to SP.
	AddSP struct{}
)

// Accumulator rotates and flag operations.
type (
	Rlca struct{}
	Rrca struct{}
	Rla  struct{}
	Rra  struct{}
	Daa  struct{}
	Cpl  struct{}
	Scf  struct{}
	Ccf  struct{}
)

// Control flow.
type (
	Jp   struct{ Test JumpTest }
	JpHL struct{}
	Jr   struct{ Test JumpTest }
	Call struct{ Test JumpTest }
	Ret  struct{ Test JumpTest }
	Reti struct{}
	Rst  struct{ Vector uint8 }
)

// CB-prefixed instructions.
type (
	Rlc  struct{ Target Target }
	Rrc  struct{ Target Target }
	Rl   struct{ Target Target }
	Rr   struct{ Target Target }
	Sla  struct{ Target Target }
	Sra  struct{ Target Target }
	Swap struct{ Target Target }
	Srl  struct{ Target Target }
	Bit  struct {
		Bit    uint8
		Target Target
	}
	Res struct {
		Bit    uint8
		Target Target
	}
	Set struct {
		Bit    uint8
		Target Target
	}
)

func (Nop) instruction()          {}
func (Stop) instruction()         {}
func (Halt) instruction()         {}
func (Di) instruction()           {}
func (Ei) instruction()           {}
func (Ld) instruction()           {}
func (Ld16) instruction()         {}
func (LdAIndirect) instruction()  {}
func (LdIndirectA) instruction()  {}
func (LdAddrSP) instruction()     {}
func (LdSPHL) instruction()       {}
func (LdHLSPOffset) instruction() {}
func (Push) instruction()         {}
func (Pop) instruction()          {}
func (Add) instruction()          {}
func (Adc) instruction()          {}
func (Sub) instruction()          {}
func (Sbc) instruction()          {}
func (And) instruction()          {}
func (Xor) instruction()          {}
func (Or) instruction()           {}
func (Cp) instruction()           {}
func (Inc) instruction()          {}
func (Dec) instruction()          {}
func (Inc8) instruction()         {}
func (Dec8) instruction()         {}
func (AddHL) instruction()        {}
func (AddSP) instruction()        {}
func (Rlca) instruction()         {}
func (Rrca) instruction()         {}
func (Rla) instruction()          {}
func (Rra) instruction()          {}
func (Daa) instruction()          {}
func (Cpl) instruction()          {}
func (Scf) instruction()          {}
func (Ccf) instruction()          {}
func (Jp) instruction()           {}
func (JpHL) instruction()         {}
func (Jr) instruction()           {}
func (Call) instruction()         {}
func (Ret) instruction()          {}
func (Reti) instruction()         {}
func (Rst) instruction()          {}
func (Rlc) instruction()          {}
func (Rrc) instruction()          {}
func (Rl) instruction()           {}
func (Rr) instruction()           {}
func (Sla) instruction()          {}
func (Sra) instruction()          {}
func (Swap) instruction()         {}
func (Srl) instruction()          {}
func (Bit) instruction()          {}
func (Res) instruction()          {}
func (Set) instruction()          {}

func (Nop) String() string            { return "NOP" }
func (Stop) String() string           { return "STOP" }
func (Halt) String() string           { return "HALT" }
func (Di) String() string             { return "DI" }
func (Ei) String() string             { return "EI" }
func (i Ld) String() string           { return "LD " + i.Dst.String() + ", " + i.Src.String() }
func (i Ld16) String() string         { return "LD " + i.Dst.String() + ", d16" }
func (i LdAIndirect) String() string  { return "LD A, " + i.Src.String() }
func (i LdIndirectA) String() string  { return "LD " + i.Dst.String() + ", A" }
func (LdAddrSP) String() string       { return "LD (a16), SP" }
func (LdSPHL) String() string         { return "LD SP, HL" }
func (LdHLSPOffset) String() string   { return "LD HL, SP+r8" }
func (i Push) String() string         { return "PUSH " + i.Src.String() }
func (i Pop) String() string          { return "POP " + i.Dst.String() }
func (i Add) String() string          { return "ADD A, " + i.Target.String() }
func (i Adc) String() string          { return "ADC A, " + i.Target.String() }
func (i Sub) String() string          { return "SUB " + i.Target.String() }
func (i Sbc) String() string          { return "SBC A, " + i.Target.String() }
func (i And) String() string          { return "AND " + i.Target.String() }
func (i Xor) String() string          { return "XOR " + i.Target.String() }
func (i Or) String() string           { return "OR " + i.Target.String() }
func (i Cp) String() string           { return "CP " + i.Target.String() }
func (i Inc) String() string          { return "INC " + i.Target.String() }
func (i Dec) String() string          { return "DEC " + i.Target.String() }
func (i Inc8) String() string         { return "INC " + i.Target.String() }
func (i Dec8) String() string         { return "DEC " + i.Target.String() }
func (i AddHL) String() string        { return "ADD HL, " + i.Src.String() }
func (AddSP) String() string          { return "ADD SP, r8" }
func (Rlca) String() string           { return "RLCA" }
func (Rrca) String() string           { return "RRCA" }
func (Rla) String() string            { return "RLA" }
func (Rra) String() string            { return "RRA" }
func (Daa) String() string            { return "DAA" }
func (Cpl) String() string            { return "CPL" }
func (Scf) String() string            { return "SCF" }
func (Ccf) String() string            { return "CCF" }
func (i Jp) String() string           { return conditional("JP", i.Test, "a16") }
func (JpHL) String() string           { return "JP HL" }
func (i Jr) String() string           { return conditional("JR", i.Test, "r8") }
func (i Call) String() string         { return conditional("CALL", i.Test, "a16") }
func (i Ret) String() string          { return conditional("RET", i.Test, "") }
func (Reti) String() string           { return "RETI" }
func (i Rst) String() string          { return fmt.Sprintf("RST %02XH", i.Vector) }
func (i Rlc) String() string          { return "RLC " + i.Target.String() }
func (i Rrc) String() string          { return "RRC " + i.Target.String() }
func (i Rl) String() string           { return "RL " + i.Target.String() }
func (i Rr) String() string           { return "RR " + i.Target.String() }
func (i Sla) String() string          { return "SLA " + i.Target.String() }
func (i Sra) String() string          { return "SRA " + i.Target.String() }
func (i Swap) String() string         { return "SWAP " + i.Target.String() }
func (i Srl) String() string          { return "SRL " + i.Target.String() }
func (i Bit) String() string          { return fmt.Sprintf("BIT %d, %s", i.Bit, i.Target) }
func (i Res) String() string          { return fmt.Sprintf("RES %d, %s", i.Bit, i.Target) }
func (i Set) String() string          { return fmt.Sprintf("SET %d, %s", i.Bit, i.Target) }

func conditional(mnemonic string, test JumpTest, operand string) string {
	out := mnemonic
	if test != Always {
		out += " " + test.String()
		if operand != "" {
			out += ","
		}
	}
	if operand != "" {
		out += " " + operand
	}
	return out
}

// Size returns the encoded length of ins in bytes, including the 0xCB prefix
// and any immediate operand.
func Size(ins Instruction) uint16 {
	switch i := ins.(type) {
	case Rlc, Rrc, Rl, Rr, Sla, Sra, Swap, Srl, Bit, Res, Set:
		return 2
	case Ld:
		if i.Src == TargetImmediate {
			return 2
		}
		return 1
	case Add:
		return aluSize(i.Target)
	case Adc:
		return aluSize(i.Target)
	case Sub:
		return aluSize(i.Target)
	case Sbc:
		return aluSize(i.Target)
	case And:
		return aluSize(i.Target)
	case Xor:
		return aluSize(i.Target)
	case Or:
		return aluSize(i.Target)
	case Cp:
		return aluSize(i.Target)
	case LdAIndirect:
		return indirectSize(i.Src)
	case LdIndirectA:
		return indirectSize(i.Dst)
	case Ld16, LdAddrSP, Jp, Call:
		return 3
	case Stop, LdHLSPOffset, AddSP, Jr:
		return 2
	default:
		return 1
	}
}

func aluSize(t Target) uint16 {
	if t == TargetImmediate {
		return 2
	}
	return 1
}

func indirectSize(i Indirect) uint16 {
	switch i {
	case IndirectImmediate:
		return 3
	case IndirectHigh:
		return 2
	default:
		return 1
	}
}
