package cpu

import "fmt"

// PrefixByte switches decoding to the CB instruction table.
const PrefixByte uint8 = 0xCB

var (
	instructionSet   [256]Instruction
	instructionSetCB [256]Instruction
)

// Decode maps an opcode byte to its instruction. prefixed selects the
// CB table. ok is false for bytes with no assigned instruction.
func Decode(opcode uint8, prefixed bool) (ins Instruction, ok bool) {
	if prefixed {
		ins = instructionSetCB[opcode]
	} else {
		ins = instructionSet[opcode]
	}
	return ins, ins != nil
}

// define assigns opcode in table. Each opcode may be assigned once.
func define(table *[256]Instruction, opcode uint8, ins Instruction) {
	if table[opcode] != nil {
		panic(fmt.Sprintf("opcode 0x%02X defined twice: %s and %s", opcode, table[opcode], ins))
	}
	table[opcode] = ins
}

// rr encoding of opcode bits 4-5 for loads and 16-bit arithmetic.
var pairs = [4]Pair{PairBC, PairDE, PairHL, PairSP}

// rr encoding of opcode bits 4-5 for PUSH and POP.
var stackPairs = [4]Pair{PairBC, PairDE, PairHL, PairAF}

func init() {
	t := &instructionSet

	// 0x00-0x3F
	define(t, 0x00, Nop{})
	define(t, 0x02, Inc{Target: PairBC}) // aliases 0x03
	define(t, 0x07, Rlca{})
	define(t, 0x08, LdAddrSP{})
	define(t, 0x0A, LdAIndirect{Src: IndirectBC})
	define(t, 0x0F, Rrca{})
	define(t, 0x10, Stop{})
	define(t, 0x12, LdIndirectA{Dst: IndirectDE})
	define(t, 0x17, Rla{})
	define(t, 0x18, Jr{Test: Always})
	define(t, 0x1A, LdAIndirect{Src: IndirectDE})
	define(t, 0x1F, Rra{})
	define(t, 0x22, LdIndirectA{Dst: IndirectHLInc})
	define(t, 0x27, Daa{})
	define(t, 0x2A, LdAIndirect{Src: IndirectHLInc})
	define(t, 0x2F, Cpl{})
	define(t, 0x32, LdIndirectA{Dst: IndirectHLDec})
	define(t, 0x37, Scf{})
	define(t, 0x3A, LdAIndirect{Src: IndirectHLDec})
	define(t, 0x3F, Ccf{})

	for i, p := range pairs {
		base := uint8(i) << 4 //nolint:gosec // G115: i < 4
		define(t, base|0x01, Ld16{Dst: p})
		define(t, base|0x03, Inc{Target: p})
		define(t, base|0x09, AddHL{Src: p})
		define(t, base|0x0B, Dec{Target: p})
	}

	for r := TargetB; r <= TargetA; r++ {
		y := uint8(r) << 3
		define(t, y|0x04, Inc8{Target: r})
		define(t, y|0x05, Dec8{Target: r})
		define(t, y|0x06, Ld{Dst: r, Src: TargetImmediate})
	}

	for cc := NotZero; cc <= Carry; cc++ {
		define(t, 0x20|uint8(cc)<<3, Jr{Test: cc})
	}

	// 0x40-0x7F: LD r, r' with HALT in place of LD (HL), (HL)
	for dst := TargetB; dst <= TargetA; dst++ {
		for src := TargetB; src <= TargetA; src++ {
			opcode := 0x40 | uint8(dst)<<3 | uint8(src)
			if opcode == 0x76 {
				define(t, opcode, Halt{})
				continue
			}
			define(t, opcode, Ld{Dst: dst, Src: src})
		}
	}

	// 0x80-0xBF: ALU A, r; 0xC6-0xFE: ALU A, d8
	for r := TargetB; r <= TargetA; r++ {
		defineALU(t, 0x80, r)
	}
	defineALU(t, 0xC6, TargetImmediate)

	// 0xC0-0xFF
	for cc := NotZero; cc <= Carry; cc++ {
		y := uint8(cc) << 3
		define(t, 0xC0|y, Ret{Test: cc})
		define(t, 0xC2|y, Jp{Test: cc})
		define(t, 0xC4|y, Call{Test: cc})
	}
	for i, p := range stackPairs {
		base := 0xC0 | uint8(i)<<4 //nolint:gosec // G115: i < 4
		define(t, base|0x01, Pop{Dst: p})
		define(t, base|0x05, Push{Src: p})
	}
	// RST 38H (0xFF) is left unassigned.
	for v := uint8(0x00); v < 0x38; v += 0x08 {
		define(t, 0xC7|v, Rst{Vector: v})
	}
	define(t, 0xC3, Jp{Test: Always})
	define(t, 0xC9, Ret{Test: Always})
	define(t, 0xCD, Call{Test: Always})
	define(t, 0xD9, Reti{})
	define(t, 0xE0, LdIndirectA{Dst: IndirectHigh})
	define(t, 0xE2, LdIndirectA{Dst: IndirectHighC})
	define(t, 0xE8, AddSP{})
	define(t, 0xE9, JpHL{})
	define(t, 0xEA, LdIndirectA{Dst: IndirectImmediate})
	define(t, 0xF0, LdAIndirect{Src: IndirectHigh})
	define(t, 0xF2, LdAIndirect{Src: IndirectHighC})
	define(t, 0xF3, Di{})
	define(t, 0xF8, LdHLSPOffset{})
	define(t, 0xF9, LdSPHL{})
	define(t, 0xFA, LdAIndirect{Src: IndirectImmediate})
	define(t, 0xFB, Ei{})

	// CB table: operation in bits 3-7, operand in bits 0-2.
	cb := &instructionSetCB
	for r := TargetB; r <= TargetA; r++ {
		o := uint8(r)
		define(cb, 0x00|o, Rlc{Target: r})
		define(cb, 0x08|o, Rrc{Target: r})
		define(cb, 0x10|o, Rl{Target: r})
		define(cb, 0x18|o, Rr{Target: r})
		define(cb, 0x20|o, Sla{Target: r})
		define(cb, 0x28|o, Sra{Target: r})
		define(cb, 0x30|o, Swap{Target: r})
		define(cb, 0x38|o, Srl{Target: r})
		for n := uint8(0); n < 8; n++ {
			define(cb, 0x40|n<<3|o, Bit{Bit: n, Target: r})
			define(cb, 0x80|n<<3|o, Res{Bit: n, Target: r})
			define(cb, 0xC0|n<<3|o, Set{Bit: n, Target: r})
		}
	}
}

// defineALU fills the eight ALU operations for operand r, starting at base.
func defineALU(t *[256]Instruction, base uint8, r Target) {
	o := uint8(r)
	if r == TargetImmediate {
		o = 0
	}
	define(t, base|0x00|o, Add{Target: r})
	define(t, base|0x08|o, Adc{Target: r})
	define(t, base|0x10|o, Sub{Target: r})
	define(t, base|0x18|o, Sbc{Target: r})
	define(t, base|0x20|o, And{Target: r})
	define(t, base|0x28|o, Xor{Target: r})
	define(t, base|0x30|o, Or{Target: r})
	define(t, base|0x38|o, Cp{Target: r})
}
