// Package testrom provides utilities for running and validating test ROMs.
package testrom

import (
	"fmt"

	"github.com/richardwooding/sm83/internal/emulator"
	"github.com/richardwooding/sm83/internal/rom"
	"github.com/sirupsen/logrus"
)

// DefaultMaxSteps bounds a test ROM run when no budget is given.
const DefaultMaxSteps = 50_000_000

// Result represents the result of running a test ROM.
type Result struct {
	Output string
	Passed bool
	Failed bool
	Run    emulator.Result
	Error  error // Load or setup failure; the ROM never ran
}

// Run executes a test ROM and returns the result. Extra options are passed to
// the emulator; serial stop detection is always enabled.
func Run(romPath string, maxSteps uint64, opts ...emulator.Option) *Result {
	result := &Result{}

	data, err := rom.Load(romPath)
	if err != nil {
		result.Error = err
		return result
	}

	opts = append(opts, emulator.WithStopOnSerial())
	emu, err := emulator.New(data, opts...)
	if err != nil {
		result.Error = fmt.Errorf("failed to create emulator: %w", err)
		return result
	}

	if maxSteps == 0 {
		maxSteps = DefaultMaxSteps
	}
	result.Run = emu.Run(maxSteps)
	result.Output = result.Run.Output
	result.Failed = result.Run.Reason == emulator.StopFailed
	result.Passed = result.Run.Reason == emulator.StopPassed

	return result
}

// String returns a human-readable representation of the result.
func (r *Result) String() string {
	if r.Error != nil {
		return fmt.Sprintf("ERROR: %v", r.Error)
	}

	switch r.Run.Reason {
	case emulator.StopPassed:
		return "PASSED"
	case emulator.StopFailed:
		return "FAILED"
	case emulator.StopFault:
		return fmt.Sprintf("FAULT: %v", r.Run.Fault)
	case emulator.StopHalted:
		return "HALTED"
	case emulator.StopStopped:
		return "STOPPED"
	default:
		return "STEP LIMIT"
	}
}

// IsSuccess returns true if the test passed.
func (r *Result) IsSuccess() bool {
	return r.Passed && !r.Failed && r.Error == nil
}

// Fields returns the result as log fields.
func (r *Result) Fields() logrus.Fields {
	return logrus.Fields{
		"result": r.String(),
		"steps":  r.Run.Steps,
		"pc":     fmt.Sprintf("0x%04X", r.Run.PC),
	}
}
