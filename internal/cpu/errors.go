package cpu

import (
	"errors"
	"fmt"
)

var (
	// ErrIllegalOpcode matches every *IllegalOpcodeError.
	ErrIllegalOpcode = errors.New("illegal opcode")

	// ErrHalted is returned from Step while the CPU is in the HALT state.
	ErrHalted = errors.New("cpu halted")

	// ErrStopped is returned from Step while the CPU is in the STOP state.
	ErrStopped = errors.New("cpu stopped")
)

// IllegalOpcodeError reports a byte with no assigned instruction.
type IllegalOpcodeError struct {
	Address  uint16 // Address of the opcode (of the 0xCB prefix when Prefixed)
	Opcode   uint8
	Prefixed bool
}

// Description renders the opcode as 0xNN or 0xCBNN.
func (e *IllegalOpcodeError) Description() string {
	if e.Prefixed {
		return fmt.Sprintf("0xCB%02X", e.Opcode)
	}
	return fmt.Sprintf("0x%02X", e.Opcode)
}

func (e *IllegalOpcodeError) Error() string {
	return fmt.Sprintf("%s %s at 0x%04X", ErrIllegalOpcode, e.Description(), e.Address)
}

// Unwrap lets errors.Is match ErrIllegalOpcode.
func (e *IllegalOpcodeError) Unwrap() error {
	return ErrIllegalOpcode
}
