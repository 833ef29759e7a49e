package main

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/richardwooding/sm83/internal/cpu"
)

// parseHex turns arguments like "81", "0xC3" or "CB7C" into bytes.
func parseHex(args []string) ([]byte, error) {
	var code []byte
	for _, arg := range args {
		s := strings.TrimPrefix(strings.TrimPrefix(arg, "0x"), "0X")
		b, err := hex.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("invalid hex %q: %w", arg, err)
		}
		code = append(code, b...)
	}
	return code, nil
}

// disassemble decodes code into one line per instruction: the bytes it
// occupies and its mnemonic. Unassigned opcodes print as "unknown" and take
// one byte. An instruction cut short by the end of code shows the bytes that
// are there.
func disassemble(code []byte) []string {
	var lines []string
	for pc := 0; pc < len(code); {
		opcode := code[pc]
		prefixed := opcode == cpu.PrefixByte && pc+1 < len(code)
		if prefixed {
			opcode = code[pc+1]
		}

		ins, ok := cpu.Decode(opcode, prefixed)
		if !ok {
			lines = append(lines, format(code[pc:pc+1], "unknown"))
			pc++
			continue
		}

		end := min(pc+int(cpu.Size(ins)), len(code))
		lines = append(lines, format(code[pc:end], ins.String()))
		pc = end
	}
	return lines
}

func format(raw []byte, text string) string {
	return fmt.Sprintf("%-9s %s", strings.ToUpper(hex.EncodeToString(raw)), text)
}
