// Package emulator provides the session runner that ties together the CPU,
// the memory bus, and the serial capture used by test images.
package emulator

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/richardwooding/sm83/internal/cpu"
	"github.com/richardwooding/sm83/internal/memory"
	"github.com/richardwooding/sm83/internal/rom"
	"github.com/sirupsen/logrus"
)

// StopReason says why Run returned.
type StopReason int

// Stop reasons.
const (
	StopStepLimit StopReason = iota // Step budget exhausted
	StopFault                       // Step returned an error other than HALT/STOP
	StopHalted                      // HALT executed
	StopStopped                     // STOP executed
	StopPassed                      // "Passed" seen on the serial port
	StopFailed                      // "Failed" seen on the serial port
)

func (r StopReason) String() string {
	switch r {
	case StopStepLimit:
		return "step limit"
	case StopFault:
		return "fault"
	case StopHalted:
		return "halted"
	case StopStopped:
		return "stopped"
	case StopPassed:
		return "passed"
	case StopFailed:
		return "failed"
	default:
		return fmt.Sprintf("StopReason(%d)", int(r))
	}
}

// Result describes how a Run ended.
type Result struct {
	Reason StopReason
	Steps  uint64 // Instructions executed by this Run
	PC     uint16 // PC after the last step
	Fault  error  // Set when Reason is StopFault
	Output string // Serial output so far
}

func (r Result) String() string {
	if r.Reason == StopFault {
		return fmt.Sprintf("%s after %d steps: %v", r.Reason, r.Steps, r.Fault)
	}
	return fmt.Sprintf("%s after %d steps at 0x%04X", r.Reason, r.Steps, r.PC)
}

// Emulator is one execution session: a CPU, its bus and the loaded image.
// Sessions share no state.
type Emulator struct {
	CPU    *cpu.CPU
	Memory *memory.Bus

	// Header is the parsed cartridge header, nil if the image has none.
	Header *rom.Header

	image        []byte
	loadAddr     uint16
	entry        uint16
	serial       *serial
	log          logrus.FieldLogger
	trace        bool
	stopOnSerial bool
	scanned      int // Serial bytes already checked for a verdict
}

// Option configures an Emulator.
type Option func(*Emulator)

// WithLoadAddress sets where the image is copied into the address space.
// The default is 0x0000.
func WithLoadAddress(addr uint16) Option {
	return func(e *Emulator) {
		e.loadAddr = addr
	}
}

// WithEntryPoint sets the initial PC. The default is 0x0100.
func WithEntryPoint(addr uint16) Option {
	return func(e *Emulator) {
		e.entry = addr
	}
}

// WithLogger sets the logger shared by the emulator and its CPU.
func WithLogger(l logrus.FieldLogger) Option {
	return func(e *Emulator) {
		e.log = l
	}
}

// WithTrace logs every executed instruction at trace level.
func WithTrace() Option {
	return func(e *Emulator) {
		e.trace = true
	}
}

// WithStopOnSerial ends Run once "Passed" or "Failed" appears on the serial
// port, the way Blargg's test ROMs report.
func WithStopOnSerial() Option {
	return func(e *Emulator) {
		e.stopOnSerial = true
	}
}

// New creates a session with the given image loaded.
func New(image []byte, opts ...Option) (*Emulator, error) {
	e := &Emulator{
		Memory: memory.NewBus(),
		image:  image,
		entry:  0x0100,
		serial: newSerial(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		e.log = l
	}

	if err := e.Memory.Map(SerialData, SerialControl, e.serial); err != nil {
		return nil, fmt.Errorf("failed to map serial port: %w", err)
	}
	if err := e.Memory.Load(e.loadAddr, image); err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}

	cpuOpts := []cpu.Option{cpu.WithLogger(e.log)}
	if e.trace {
		cpuOpts = append(cpuOpts, cpu.WithTrace())
	}
	e.CPU = cpu.New(e.Memory, cpuOpts...)
	e.CPU.PC = e.entry

	fields := logrus.Fields{
		"size":        len(image),
		"load":        fmt.Sprintf("0x%04X", e.loadAddr),
		"entry":       fmt.Sprintf("0x%04X", e.entry),
		"fingerprint": rom.Fingerprint(image),
	}
	if header, err := rom.ParseHeader(image); err == nil {
		e.Header = header
		fields["title"] = header.Title
		fields["type"] = rom.TypeName(header.Type)
		if header.Banked() {
			e.log.WithField("type", rom.TypeName(header.Type)).
				Warn("banked cartridge: only the image as loaded is addressable")
		}
	}
	e.log.WithFields(fields).Debug("image loaded")

	return e, nil
}

// Step executes one CPU instruction.
func (e *Emulator) Step() error {
	return e.CPU.Step()
}

// Run steps the CPU until it faults, halts, stops, reports a result on the
// serial port (with WithStopOnSerial), or maxSteps instructions have run.
// maxSteps of 0 means no limit.
func (e *Emulator) Run(maxSteps uint64) Result {
	var res Result

	for maxSteps == 0 || res.Steps < maxSteps {
		if err := e.CPU.Step(); err != nil {
			switch {
			case errors.Is(err, cpu.ErrHalted):
				res.Reason = StopHalted
			case errors.Is(err, cpu.ErrStopped):
				res.Reason = StopStopped
			default:
				res.Reason = StopFault
				res.Fault = err
			}
			return e.finish(res)
		}
		res.Steps++

		switch {
		case e.CPU.Halted():
			res.Reason = StopHalted
			return e.finish(res)
		case e.CPU.Stopped():
			res.Reason = StopStopped
			return e.finish(res)
		}

		if e.stopOnSerial {
			if reason, ok := e.serialVerdict(); ok {
				res.Reason = reason
				return e.finish(res)
			}
		}
	}

	res.Reason = StopStepLimit
	return e.finish(res)
}

func (e *Emulator) finish(res Result) Result {
	res.PC = e.CPU.PC
	res.Output = e.SerialOutput()

	e.log.WithFields(logrus.Fields{
		"reason": res.Reason.String(),
		"steps":  res.Steps,
		"pc":     fmt.Sprintf("0x%04X", res.PC),
	}).Debug("run finished")

	return res
}

// serialVerdict checks the serial output for a test result.
// "Failed" wins if both strings are present.
func (e *Emulator) serialVerdict() (StopReason, bool) {
	if len(e.serial.output) == e.scanned {
		return 0, false
	}
	e.scanned = len(e.serial.output)
	output := string(e.serial.output)
	switch {
	case strings.Contains(output, "Failed"):
		return StopFailed, true
	case strings.Contains(output, "Passed"):
		return StopPassed, true
	default:
		return 0, false
	}
}

// SerialOutput returns the accumulated serial output.
func (e *Emulator) SerialOutput() string {
	return string(e.serial.output)
}

// Reset restores the session to its state right after New: memory cleared
// and reloaded, CPU reset, serial output discarded.
func (e *Emulator) Reset() error {
	e.Memory.Reset()
	if err := e.Memory.Load(e.loadAddr, e.image); err != nil {
		return fmt.Errorf("failed to reload image: %w", err)
	}
	e.serial.reset()
	e.scanned = 0
	e.CPU.Reset()
	e.CPU.PC = e.entry
	return nil
}
