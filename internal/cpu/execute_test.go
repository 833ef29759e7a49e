package cpu

import "testing"

// mustStep executes one instruction and fails the test on any error.
func mustStep(t *testing.T, cpu *CPU) {
	t.Helper()
	if err := cpu.Step(); err != nil {
		t.Fatalf("Step() at 0x%04X error = %v", cpu.PC, err)
	}
}

func TestLD(t *testing.T) {
	cpu, mem := setupCPU()

	// LD B, 0x42
	mem.data[0x0100] = 0x06
	mem.data[0x0101] = 0x42
	mustStep(t, cpu)
	if cpu.Registers.B != 0x42 {
		t.Errorf("B = %02X, want 0x42", cpu.Registers.B)
	}
	if cpu.PC != 0x0102 {
		t.Errorf("PC = 0x%04X, want 0x0102", cpu.PC)
	}

	// LD A, B
	mem.data[0x0102] = 0x78
	mustStep(t, cpu)
	if cpu.Registers.A != 0x42 {
		t.Errorf("A = %02X, want 0x42", cpu.Registers.A)
	}

	// LD (HL), A
	cpu.Registers.SetHL(0xC000)
	mem.data[0x0103] = 0x77
	mustStep(t, cpu)
	if mem.data[0xC000] != 0x42 {
		t.Errorf("(0xC000) = %02X, want 0x42", mem.data[0xC000])
	}

	// LD SP, d16
	mem.data[0x0104] = 0x31
	mem.data[0x0105] = 0x00
	mem.data[0x0106] = 0xD0
	mustStep(t, cpu)
	if cpu.SP != 0xD000 {
		t.Errorf("SP = 0x%04X, want 0xD000", cpu.SP)
	}

	// LD (a16), SP
	mem.data[0x0107] = 0x08
	mem.data[0x0108] = 0x00
	mem.data[0x0109] = 0xC1
	mustStep(t, cpu)
	if mem.data[0xC100] != 0x00 || mem.data[0xC101] != 0xD0 {
		t.Errorf("(0xC100) = %02X%02X, want 0xD000 little-endian", mem.data[0xC101], mem.data[0xC100])
	}
}

func TestLDIndirect(t *testing.T) {
	cpu, mem := setupCPU()
	cpu.Registers.A = 0x5A
	cpu.Registers.SetHL(0xC000)

	// LD (HL+), A then LD (HL-), A
	mem.data[0x0100] = 0x22
	mem.data[0x0101] = 0x32
	mustStep(t, cpu)
	if mem.data[0xC000] != 0x5A || cpu.Registers.HL() != 0xC001 {
		t.Errorf("after LD (HL+), A: (C000)=%02X HL=%04X", mem.data[0xC000], cpu.Registers.HL())
	}
	mustStep(t, cpu)
	if mem.data[0xC001] != 0x5A || cpu.Registers.HL() != 0xC000 {
		t.Errorf("after LD (HL-), A: (C001)=%02X HL=%04X", mem.data[0xC001], cpu.Registers.HL())
	}

	// LD A, (DE)
	cpu.Registers.SetDE(0xC200)
	mem.data[0xC200] = 0x99
	mem.data[0x0102] = 0x1A
	mustStep(t, cpu)
	if cpu.Registers.A != 0x99 {
		t.Errorf("A = %02X, want 0x99", cpu.Registers.A)
	}

	// LD (a16), A then LD A, (a16)
	mem.data[0x0103] = 0xEA
	mem.data[0x0104] = 0x10
	mem.data[0x0105] = 0xC3
	mustStep(t, cpu)
	if mem.data[0xC310] != 0x99 {
		t.Errorf("(0xC310) = %02X, want 0x99", mem.data[0xC310])
	}
	mem.data[0xC311] = 0x77
	mem.data[0x0106] = 0xFA
	mem.data[0x0107] = 0x11
	mem.data[0x0108] = 0xC3
	mustStep(t, cpu)
	if cpu.Registers.A != 0x77 {
		t.Errorf("A = %02X, want 0x77", cpu.Registers.A)
	}
}

func TestLDH(t *testing.T) {
	cpu, mem := setupCPU()
	cpu.Registers.A = 0x81

	// LDH (0x01), A
	mem.data[0x0100] = 0xE0
	mem.data[0x0101] = 0x01
	mustStep(t, cpu)
	if mem.data[0xFF01] != 0x81 {
		t.Errorf("(0xFF01) = %02X, want 0x81", mem.data[0xFF01])
	}

	// LD A, (FF00+C)
	cpu.Registers.C = 0x44
	mem.data[0xFF44] = 0x90
	mem.data[0x0102] = 0xF2
	mustStep(t, cpu)
	if cpu.Registers.A != 0x90 {
		t.Errorf("A = %02X, want 0x90", cpu.Registers.A)
	}
	if cpu.PC != 0x0103 {
		t.Errorf("PC = 0x%04X, want 0x0103", cpu.PC)
	}
}

func TestSUB8(t *testing.T) {
	cpu, mem := setupCPU()

	// SUB B
	cpu.Registers.A = 0x3E
	cpu.Registers.B = 0x3E
	mem.data[0x0100] = 0x90

	mustStep(t, cpu)

	if cpu.Registers.A != 0x00 {
		t.Errorf("SUB: A = %02X, want 0x00", cpu.Registers.A)
	}
	if !cpu.Registers.F.Zero {
		t.Error("SUB: Zero flag should be set")
	}
	if !cpu.Registers.F.Subtract {
		t.Error("SUB: Subtract flag should be set")
	}

	// SUB d8 with borrow
	cpu.Registers.A = 0x10
	mem.data[0x0101] = 0xD6
	mem.data[0x0102] = 0x20
	mustStep(t, cpu)
	if cpu.Registers.A != 0xF0 {
		t.Errorf("SUB: A = %02X, want 0xF0", cpu.Registers.A)
	}
	if !cpu.Registers.F.Carry {
		t.Error("SUB: Carry flag should be set")
	}
}

func TestADCSBC(t *testing.T) {
	cpu, mem := setupCPU()

	// ADC A, B with carry in
	cpu.Registers.A = 0x0E
	cpu.Registers.B = 0x01
	cpu.Registers.F = Flags{Carry: true}
	mem.data[0x0100] = 0x88
	mustStep(t, cpu)
	if cpu.Registers.A != 0x10 {
		t.Errorf("ADC: A = %02X, want 0x10", cpu.Registers.A)
	}
	if !cpu.Registers.F.HalfCarry || cpu.Registers.F.Carry {
		t.Errorf("ADC: F = %s, want --H-", cpu.Registers.F)
	}

	// SBC A, B with carry in
	cpu.Registers.A = 0x10
	cpu.Registers.F = Flags{Carry: true}
	mem.data[0x0101] = 0x98
	mustStep(t, cpu)
	if cpu.Registers.A != 0x0E {
		t.Errorf("SBC: A = %02X, want 0x0E", cpu.Registers.A)
	}
	if !cpu.Registers.F.HalfCarry || !cpu.Registers.F.Subtract {
		t.Errorf("SBC: F = %s, want -NH-", cpu.Registers.F)
	}
}

func TestAND(t *testing.T) {
	cpu, mem := setupCPU()

	// AND B
	cpu.Registers.A = 0xF0
	cpu.Registers.B = 0x0F
	mem.data[0x0100] = 0xA0

	mustStep(t, cpu)

	if cpu.Registers.A != 0x00 {
		t.Errorf("AND: A = %02X, want 0x00", cpu.Registers.A)
	}
	if !cpu.Registers.F.Zero {
		t.Error("AND: Zero flag should be set")
	}
	if !cpu.Registers.F.HalfCarry {
		t.Error("AND: Half-carry flag should be set")
	}
}

func TestXOR(t *testing.T) {
	cpu, mem := setupCPU()

	// XOR A (common way to zero A)
	cpu.Registers.A = 0x42
	mem.data[0x0100] = 0xAF

	mustStep(t, cpu)

	if cpu.Registers.A != 0x00 {
		t.Errorf("XOR A: A = %02X, want 0x00", cpu.Registers.A)
	}
	if cpu.Registers.F != (Flags{Zero: true}) {
		t.Errorf("XOR A: F = %s, want Z---", cpu.Registers.F)
	}
}

func TestCP(t *testing.T) {
	cpu, mem := setupCPU()

	// CP d8 leaves A untouched
	cpu.Registers.A = 0x42
	mem.data[0x0100] = 0xFE
	mem.data[0x0101] = 0x42
	mustStep(t, cpu)

	if cpu.Registers.A != 0x42 {
		t.Errorf("CP: A = %02X, want 0x42", cpu.Registers.A)
	}
	if !cpu.Registers.F.Zero || !cpu.Registers.F.Subtract {
		t.Errorf("CP: F = %s, want ZN--", cpu.Registers.F)
	}
}

func TestINCDEC(t *testing.T) {
	cpu, mem := setupCPU()

	// INC A with carry set: carry is kept
	cpu.Registers.A = 0x0F
	cpu.Registers.F = Flags{Carry: true}
	mem.data[0x0100] = 0x3C

	mustStep(t, cpu)

	if cpu.Registers.A != 0x10 {
		t.Errorf("INC A: A = %02X, want 0x10", cpu.Registers.A)
	}
	if !cpu.Registers.F.HalfCarry {
		t.Error("INC A: Half-carry flag should be set")
	}
	if !cpu.Registers.F.Carry {
		t.Error("INC A: Carry flag should be preserved")
	}

	// DEC A
	cpu.Registers.A = 0x01
	mem.data[0x0101] = 0x3D
	mustStep(t, cpu)

	if cpu.Registers.A != 0x00 {
		t.Errorf("DEC A: A = %02X, want 0x00", cpu.Registers.A)
	}
	if !cpu.Registers.F.Zero {
		t.Error("DEC A: Zero flag should be set")
	}
	if !cpu.Registers.F.Subtract {
		t.Error("DEC A: Subtract flag should be set")
	}

	// INC (HL)
	cpu.Registers.SetHL(0xC000)
	mem.data[0xC000] = 0xFF
	mem.data[0x0102] = 0x34
	mustStep(t, cpu)
	if mem.data[0xC000] != 0x00 || !cpu.Registers.F.Zero {
		t.Errorf("INC (HL): (C000) = %02X F = %s", mem.data[0xC000], cpu.Registers.F)
	}

	// DEC BC wraps
	cpu.Registers.SetBC(0x0000)
	mem.data[0x0103] = 0x0B
	mustStep(t, cpu)
	if cpu.Registers.BC() != 0xFFFF {
		t.Errorf("DEC BC: BC = %04X, want 0xFFFF", cpu.Registers.BC())
	}
}

func TestADDHL(t *testing.T) {
	cpu, mem := setupCPU()

	cpu.Registers.SetHL(0x0FFF)
	cpu.Registers.SetBC(0x0001)
	cpu.Registers.F = Flags{Zero: true}
	mem.data[0x0100] = 0x09 // ADD HL, BC

	mustStep(t, cpu)

	if cpu.Registers.HL() != 0x1000 {
		t.Errorf("HL = %04X, want 0x1000", cpu.Registers.HL())
	}
	if cpu.Registers.F != (Flags{Zero: true, HalfCarry: true}) {
		t.Errorf("F = %s, want Z-H- (Z preserved)", cpu.Registers.F)
	}

	// ADD HL, SP overflows
	cpu.SP = 0xF000
	mem.data[0x0101] = 0x39
	mustStep(t, cpu)
	if cpu.Registers.HL() != 0x0000 || !cpu.Registers.F.Carry {
		t.Errorf("HL = %04X F = %s, want 0x0000 with carry", cpu.Registers.HL(), cpu.Registers.F)
	}
}

func TestSPOffset(t *testing.T) {
	tests := []struct {
		name      string
		opcode    uint8
		sp        uint16
		offset    uint8
		want      uint16
		wantHalf  bool
		wantCarry bool
	}{
		{"ADD SP, +1", 0xE8, 0x00FF, 0x01, 0x0100, true, true},
		{"ADD SP, -1", 0xE8, 0x0000, 0xFF, 0xFFFF, false, false},
		{"ADD SP, -2", 0xE8, 0xFFF8, 0xFE, 0xFFF6, true, true},
		{"LD HL, SP+2", 0xF8, 0xC000, 0x02, 0xC002, false, false},
		{"LD HL, SP-1", 0xF8, 0xC001, 0xFF, 0xC000, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cpu, mem := setupCPU()
			cpu.SP = tt.sp
			cpu.Registers.F = Flags{Zero: true, Subtract: true}
			mem.data[0x0100] = tt.opcode
			mem.data[0x0101] = tt.offset

			mustStep(t, cpu)

			got := cpu.SP
			if tt.opcode == 0xF8 {
				got = cpu.Registers.HL()
				if cpu.SP != tt.sp {
					t.Errorf("SP = %04X, want %04X (unchanged)", cpu.SP, tt.sp)
				}
			}
			if got != tt.want {
				t.Errorf("result = %04X, want %04X", got, tt.want)
			}
			want := Flags{HalfCarry: tt.wantHalf, Carry: tt.wantCarry}
			if cpu.Registers.F != want {
				t.Errorf("F = %s, want %s", cpu.Registers.F, want)
			}
			if cpu.PC != 0x0102 {
				t.Errorf("PC = 0x%04X, want 0x0102", cpu.PC)
			}
		})
	}
}

func TestJR(t *testing.T) {
	cpu, mem := setupCPU()

	// JR +5
	mem.data[0x0100] = 0x18
	mem.data[0x0101] = 0x05

	mustStep(t, cpu)

	// PC should be 0x0100 + 2 (instruction length) + 5
	if cpu.PC != 0x0107 {
		t.Errorf("JR +5: PC = 0x%04X, want 0x0107", cpu.PC)
	}

	// JR -2 (infinite loop)
	cpu.PC = 0x0200
	mem.data[0x0200] = 0x18
	mem.data[0x0201] = 0xFE // -2

	mustStep(t, cpu)

	if cpu.PC != 0x0200 {
		t.Errorf("JR -2: PC = 0x%04X, want 0x0200", cpu.PC)
	}

	// JR NZ not taken
	cpu.PC = 0x0300
	cpu.Registers.F = Flags{Zero: true}
	mem.data[0x0300] = 0x20
	mem.data[0x0301] = 0x10
	mustStep(t, cpu)
	if cpu.PC != 0x0302 {
		t.Errorf("JR NZ: PC = 0x%04X, want 0x0302", cpu.PC)
	}
}

func TestJPHL(t *testing.T) {
	cpu, mem := setupCPU()
	cpu.Registers.SetHL(0x4321)
	mem.data[0x0100] = 0xE9

	mustStep(t, cpu)

	if cpu.PC != 0x4321 {
		t.Errorf("PC = 0x%04X, want 0x4321", cpu.PC)
	}
}

func TestCALLRET(t *testing.T) {
	cpu, mem := setupCPU()

	// CALL 0x1234
	mem.data[0x0100] = 0xCD
	mem.data[0x0101] = 0x34
	mem.data[0x0102] = 0x12

	mustStep(t, cpu)

	if cpu.PC != 0x1234 {
		t.Errorf("CALL: PC = 0x%04X, want 0x1234", cpu.PC)
	}
	if cpu.SP != 0xFFFC {
		t.Errorf("CALL: SP = 0x%04X, want 0xFFFC", cpu.SP)
	}
	// Return address should be on stack (0x0103)
	if mem.data[0xFFFC] != 0x03 || mem.data[0xFFFD] != 0x01 {
		t.Errorf("CALL: stack = %02X%02X, want 0x0103", mem.data[0xFFFD], mem.data[0xFFFC])
	}

	// RET
	mem.data[0x1234] = 0xC9

	mustStep(t, cpu)

	if cpu.PC != 0x0103 {
		t.Errorf("RET: PC = 0x%04X, want 0x0103", cpu.PC)
	}
	if cpu.SP != 0xFFFE {
		t.Errorf("RET: SP = 0x%04X, want 0xFFFE", cpu.SP)
	}
}

func TestRST(t *testing.T) {
	for _, vector := range []uint8{0x00, 0x08, 0x10, 0x18, 0x20, 0x28, 0x30} {
		cpu, mem := setupCPU()
		mem.data[0x0100] = 0xC7 | vector

		mustStep(t, cpu)

		if cpu.PC != uint16(vector) {
			t.Errorf("RST %02XH: PC = 0x%04X, want 0x%04X", vector, cpu.PC, vector)
		}
		if mem.data[0xFFFC] != 0x01 || mem.data[0xFFFD] != 0x01 {
			t.Errorf("RST %02XH: stack = %02X%02X, want 0x0101", vector, mem.data[0xFFFD], mem.data[0xFFFC])
		}
	}
}

func TestPUSHPOP(t *testing.T) {
	cpu, mem := setupCPU()

	// PUSH BC
	cpu.Registers.SetBC(0x1234)
	mem.data[0x0100] = 0xC5

	mustStep(t, cpu)

	if cpu.SP != 0xFFFC {
		t.Errorf("PUSH: SP = 0x%04X, want 0xFFFC", cpu.SP)
	}

	// POP DE
	mem.data[0x0101] = 0xD1

	mustStep(t, cpu)

	if cpu.Registers.DE() != 0x1234 {
		t.Errorf("POP: DE = 0x%04X, want 0x1234", cpu.Registers.DE())
	}
	if cpu.SP != 0xFFFE {
		t.Errorf("POP: SP = 0x%04X, want 0xFFFE", cpu.SP)
	}

	// POP AF masks the low nibble of F
	cpu.SP = 0xC000
	mem.data[0xC000] = 0xFF
	mem.data[0xC001] = 0x12
	mem.data[0x0102] = 0xF1
	mustStep(t, cpu)
	if cpu.Registers.AF() != 0x12F0 {
		t.Errorf("POP AF: AF = 0x%04X, want 0x12F0", cpu.Registers.AF())
	}
}

func TestAccumulatorRotates(t *testing.T) {
	tests := []struct {
		name      string
		opcode    uint8
		a         uint8
		carry     bool
		want      uint8
		wantCarry bool
	}{
		{"RLCA", 0x07, 0x80, false, 0x01, true},
		{"RRCA", 0x0F, 0x01, false, 0x80, true},
		{"RLA", 0x17, 0x80, false, 0x00, true},
		{"RRA", 0x1F, 0x00, true, 0x80, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cpu, mem := setupCPU()
			cpu.Registers.A = tt.a
			cpu.Registers.F = Flags{Carry: tt.carry}
			mem.data[0x0100] = tt.opcode

			mustStep(t, cpu)

			if cpu.Registers.A != tt.want {
				t.Errorf("A = %02X, want %02X", cpu.Registers.A, tt.want)
			}
			// Z is always cleared, even for a zero result
			if cpu.Registers.F != (Flags{Carry: tt.wantCarry}) {
				t.Errorf("F = %s, want carry=%v only", cpu.Registers.F, tt.wantCarry)
			}
		})
	}
}

func TestCPLSCFCCF(t *testing.T) {
	cpu, mem := setupCPU()
	cpu.Registers.A = 0x35
	cpu.Registers.F = Flags{}

	mem.data[0x0100] = 0x2F // CPL
	mem.data[0x0101] = 0x37 // SCF
	mem.data[0x0102] = 0x3F // CCF

	mustStep(t, cpu)
	if cpu.Registers.A != 0xCA {
		t.Errorf("CPL: A = %02X, want 0xCA", cpu.Registers.A)
	}
	if !cpu.Registers.F.Subtract || !cpu.Registers.F.HalfCarry {
		t.Errorf("CPL: F = %s, want -NH-", cpu.Registers.F)
	}

	mustStep(t, cpu)
	if cpu.Registers.F != (Flags{Carry: true}) {
		t.Errorf("SCF: F = %s, want ---C", cpu.Registers.F)
	}

	mustStep(t, cpu)
	if cpu.Registers.F != (Flags{}) {
		t.Errorf("CCF: F = %s, want ----", cpu.Registers.F)
	}
}

func TestCBRotate(t *testing.T) {
	tests := []struct {
		name      string
		opcode    uint8
		value     uint8
		carry     bool
		want      uint8
		wantCarry bool
	}{
		{"RRC B", 0x08, 0x01, false, 0x80, true},
		{"RL B", 0x10, 0x80, false, 0x00, true},
		{"RR B", 0x18, 0x01, true, 0x80, true},
		{"SLA B", 0x20, 0xC0, false, 0x80, true},
		{"SRA B", 0x28, 0x81, false, 0xC0, true},
		{"SRL B", 0x38, 0x81, false, 0x40, true},
		{"SWAP B", 0x30, 0xF1, true, 0x1F, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cpu, mem := setupCPU()
			cpu.Registers.B = tt.value
			cpu.Registers.F = Flags{Carry: tt.carry}
			mem.data[0x0100] = 0xCB
			mem.data[0x0101] = tt.opcode

			mustStep(t, cpu)

			if cpu.Registers.B != tt.want {
				t.Errorf("B = %02X, want %02X", cpu.Registers.B, tt.want)
			}
			if cpu.Registers.F.Zero != (tt.want == 0) {
				t.Errorf("Zero flag = %v, want %v", cpu.Registers.F.Zero, tt.want == 0)
			}
			if cpu.Registers.F.Carry != tt.wantCarry {
				t.Errorf("Carry flag = %v, want %v", cpu.Registers.F.Carry, tt.wantCarry)
			}
		})
	}
}

func TestCBBit(t *testing.T) {
	cpu, mem := setupCPU()

	// BIT 7, H (bit is 1)
	cpu.Registers.H = 0x80
	cpu.Registers.F = Flags{Carry: true}
	mem.data[0x0100] = 0xCB
	mem.data[0x0101] = 0x7C

	mustStep(t, cpu)

	if cpu.Registers.F.Zero {
		t.Error("BIT 7, H: Zero flag should be clear (bit is set)")
	}
	if !cpu.Registers.F.HalfCarry {
		t.Error("BIT 7, H: Half-carry flag should be set")
	}
	if !cpu.Registers.F.Carry {
		t.Error("BIT 7, H: Carry flag should be preserved")
	}

	// BIT 0, (HL) (bit is 0)
	cpu.Registers.SetHL(0xC000)
	mem.data[0xC000] = 0xFE
	mem.data[0x0102] = 0xCB
	mem.data[0x0103] = 0x46

	mustStep(t, cpu)

	if !cpu.Registers.F.Zero {
		t.Error("BIT 0, (HL): Zero flag should be set (bit is clear)")
	}
	if cpu.PC != 0x0104 {
		t.Errorf("PC = 0x%04X, want 0x0104", cpu.PC)
	}
}

func TestCBSetRes(t *testing.T) {
	cpu, mem := setupCPU()

	// SET 3, A
	cpu.Registers.A = 0x00
	mem.data[0x0100] = 0xCB
	mem.data[0x0101] = 0xDF

	mustStep(t, cpu)

	if cpu.Registers.A != 0x08 {
		t.Errorf("SET 3, A: A = %02X, want 0x08", cpu.Registers.A)
	}

	// RES 3, A
	mem.data[0x0102] = 0xCB
	mem.data[0x0103] = 0x9F

	mustStep(t, cpu)

	if cpu.Registers.A != 0x00 {
		t.Errorf("RES 3, A: A = %02X, want 0x00", cpu.Registers.A)
	}

	// SET 7, (HL)
	cpu.Registers.SetHL(0xC000)
	mem.data[0x0104] = 0xCB
	mem.data[0x0105] = 0xFE

	mustStep(t, cpu)

	if mem.data[0xC000] != 0x80 {
		t.Errorf("SET 7, (HL): (C000) = %02X, want 0x80", mem.data[0xC000])
	}
}

func TestDAA(t *testing.T) {
	tests := []struct {
		name      string
		a         uint8
		flags     uint8 // Input flags (N, H, C)
		expectedA uint8
		expectedZ bool
		expectedC bool
	}{
		{"ADD: No adjustment needed", 0x45, 0x00, 0x45, false, false},
		{"ADD: Lower nibble > 9", 0x1A, 0x00, 0x20, false, false},
		{"ADD: Upper nibble > 9", 0xA3, 0x00, 0x03, false, true},
		{"ADD: Both nibbles need adjustment", 0x9A, 0x00, 0x00, true, true},
		{"ADD: H flag set", 0x12, FlagH, 0x18, false, false},
		{"ADD: C flag set", 0x32, FlagC, 0x92, false, true},
		{"ADD: C and H flags set", 0x32, FlagC | FlagH, 0x98, false, true},
		{"ADD: Result is zero", 0x9A, FlagC, 0x00, true, true},
		{"SUB: No adjustment needed", 0x3E, FlagN, 0x3E, false, false},
		{"SUB: H flag set", 0x37, FlagN | FlagH, 0x31, false, false},
		{"SUB: C flag set", 0x37, FlagN | FlagC, 0xD7, false, true},
		{"SUB: C and H flags set", 0x37, FlagN | FlagC | FlagH, 0xD1, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cpu, mem := setupCPU()
			cpu.Registers.A = tt.a
			cpu.Registers.F = FlagsFromByte(tt.flags)
			mem.data[0x0100] = 0x27 // DAA

			mustStep(t, cpu)

			if cpu.Registers.A != tt.expectedA {
				t.Errorf("A = 0x%02X, want 0x%02X", cpu.Registers.A, tt.expectedA)
			}
			if cpu.Registers.F.Zero != tt.expectedZ {
				t.Errorf("Z flag = %v, want %v", cpu.Registers.F.Zero, tt.expectedZ)
			}
			if cpu.Registers.F.Carry != tt.expectedC {
				t.Errorf("C flag = %v, want %v", cpu.Registers.F.Carry, tt.expectedC)
			}
			if cpu.Registers.F.HalfCarry {
				t.Error("H flag should always be cleared after DAA")
			}
			if cpu.Registers.F.Subtract != (tt.flags&FlagN != 0) {
				t.Error("N flag should be preserved")
			}
		})
	}
}

func TestConditionalCalls(t *testing.T) {
	cpu, mem := setupCPU()

	tests := []struct {
		name       string
		opcode     uint8
		flags      uint8
		shouldCall bool
	}{
		{"CALL NZ with Z=0 (should call)", 0xC4, 0x00, true},
		{"CALL NZ with Z=1 (should not call)", 0xC4, FlagZ, false},
		{"CALL Z with Z=1 (should call)", 0xCC, FlagZ, true},
		{"CALL Z with Z=0 (should not call)", 0xCC, 0x00, false},
		{"CALL NC with C=0 (should call)", 0xD4, 0x00, true},
		{"CALL NC with C=1 (should not call)", 0xD4, FlagC, false},
		{"CALL C with C=1 (should call)", 0xDC, FlagC, true},
		{"CALL C with C=0 (should not call)", 0xDC, 0x00, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cpu.PC = 0x0100
			cpu.SP = 0xFFFE
			cpu.Registers.F = FlagsFromByte(tt.flags)

			mem.data[0x0100] = tt.opcode
			mem.data[0x0101] = 0x34 // Low byte of address
			mem.data[0x0102] = 0x12 // High byte of address

			mustStep(t, cpu)

			wantPC, wantSP := uint16(0x0103), uint16(0xFFFE)
			if tt.shouldCall {
				wantPC, wantSP = 0x1234, 0xFFFC
			}
			if cpu.PC != wantPC {
				t.Errorf("PC = 0x%04X, want 0x%04X", cpu.PC, wantPC)
			}
			if cpu.SP != wantSP {
				t.Errorf("SP = 0x%04X, want 0x%04X", cpu.SP, wantSP)
			}
		})
	}
}

func TestConditionalReturns(t *testing.T) {
	cpu, mem := setupCPU()

	tests := []struct {
		name         string
		opcode       uint8
		flags        uint8
		shouldReturn bool
	}{
		{"RET NZ with Z=0 (should return)", 0xC0, 0x00, true},
		{"RET NZ with Z=1 (should not return)", 0xC0, FlagZ, false},
		{"RET Z with Z=1 (should return)", 0xC8, FlagZ, true},
		{"RET Z with Z=0 (should not return)", 0xC8, 0x00, false},
		{"RET NC with C=0 (should return)", 0xD0, 0x00, true},
		{"RET NC with C=1 (should not return)", 0xD0, FlagC, false},
		{"RET C with C=1 (should return)", 0xD8, FlagC, true},
		{"RET C with C=0 (should not return)", 0xD8, 0x00, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cpu.PC = 0x0100
			cpu.SP = 0xFFFC
			cpu.Registers.F = FlagsFromByte(tt.flags)

			// Set up return address on stack (0x1234)
			mem.data[0xFFFC] = 0x34
			mem.data[0xFFFD] = 0x12

			mem.data[0x0100] = tt.opcode

			mustStep(t, cpu)

			wantPC, wantSP := uint16(0x0101), uint16(0xFFFC)
			if tt.shouldReturn {
				wantPC, wantSP = 0x1234, 0xFFFE
			}
			if cpu.PC != wantPC {
				t.Errorf("PC = 0x%04X, want 0x%04X", cpu.PC, wantPC)
			}
			if cpu.SP != wantSP {
				t.Errorf("SP = 0x%04X, want 0x%04X", cpu.SP, wantSP)
			}
		})
	}
}
