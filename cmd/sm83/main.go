// Package main provides the sm83 CLI application.
package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/richardwooding/sm83/internal/cpu"
	"github.com/richardwooding/sm83/internal/emulator"
	"github.com/richardwooding/sm83/internal/rom"
	"github.com/richardwooding/sm83/internal/testrom"
	"github.com/sirupsen/logrus"
)

var (
	// ErrTestFailed indicates a test ROM failed.
	ErrTestFailed = errors.New("test failed")

	// ErrFault indicates the program stopped on an execution fault.
	ErrFault = errors.New("execution fault")
)

// CLI represents the command-line interface structure.
type CLI struct {
	LogLevel string `help:"Log level (trace, debug, info, warn, error)." default:"warn" enum:"trace,debug,info,warn,error"`

	Info   InfoCmd   `cmd:"" help:"Display cartridge header information."`
	Run    RunCmd    `cmd:"" help:"Run a program image."`
	Test   TestCmd   `cmd:"" help:"Run a test ROM and report results."`
	Decode DecodeCmd `cmd:"" help:"Decode hex opcode bytes."`
}

// InfoCmd displays cartridge header information.
type InfoCmd struct {
	ROM string `arg:"" type:"existingfile" help:"Path to ROM file."`
}

// Run executes the info command.
func (c *InfoCmd) Run() error {
	data, err := rom.Load(c.ROM)
	if err != nil {
		return err
	}

	header, err := rom.ParseHeader(data)
	if header == nil {
		return fmt.Errorf("failed to parse header: %w", err)
	}

	fmt.Printf("ROM Information:\n")
	fmt.Printf("  Title:          %s\n", header.Title)
	fmt.Printf("  Cartridge Type: %s (0x%02X)\n", rom.TypeName(header.Type), header.Type)
	fmt.Printf("  ROM Size Code:  0x%02X\n", header.ROMSize)
	fmt.Printf("  RAM Size Code:  0x%02X\n", header.RAMSize)
	fmt.Printf("  Size:           %d bytes\n", len(data))
	fmt.Printf("  Fingerprint:    %s\n", rom.Fingerprint(data))
	if err != nil {
		fmt.Printf("  Checksum:       %v\n", err)
	} else {
		fmt.Printf("  Checksum:       OK (0x%02X)\n", header.Checksum)
	}

	return nil
}

// Address is a 16-bit address flag accepting decimal, 0x hex or 0o octal.
type Address uint16

// UnmarshalText implements encoding.TextUnmarshaler for kong.
func (a *Address) UnmarshalText(text []byte) error {
	v, err := strconv.ParseUint(string(text), 0, 16)
	if err != nil {
		return fmt.Errorf("invalid address %q: %w", text, err)
	}
	*a = Address(v) //nolint:gosec // G115: ParseUint limits v to 16 bits
	return nil
}

// RunCmd runs a program image until it halts, faults or runs out of steps.
type RunCmd struct {
	Image    string  `arg:"" type:"existingfile" help:"Path to program image."`
	LoadAddr Address `help:"Address the image is loaded at." default:"0x0000"`
	Entry    Address `help:"Initial program counter." default:"0x0100"`
	MaxSteps uint64  `help:"Maximum instructions to execute (0 for no limit)." default:"10000000"`
	Trace    bool    `help:"Log every executed instruction (implies --log-level=trace)."`
}

// Run executes the run command.
func (c *RunCmd) Run(log *logrus.Logger) error {
	data, err := rom.Load(c.Image)
	if err != nil {
		return err
	}

	opts := []emulator.Option{
		emulator.WithLoadAddress(uint16(c.LoadAddr)),
		emulator.WithEntryPoint(uint16(c.Entry)),
		emulator.WithLogger(log),
	}
	if c.Trace {
		log.SetLevel(logrus.TraceLevel)
		opts = append(opts, emulator.WithTrace())
	}

	emu, err := emulator.New(data, opts...)
	if err != nil {
		return fmt.Errorf("failed to create emulator: %w", err)
	}

	res := emu.Run(c.MaxSteps)
	printResult(res, emu.CPU)

	if res.Reason == emulator.StopFault {
		return fmt.Errorf("%w: %w", ErrFault, res.Fault)
	}
	return nil
}

func printResult(res emulator.Result, c *cpu.CPU) {
	fmt.Printf("Stopped: %s\n", res)
	fmt.Printf("  PC=%04X SP=%04X IME=%v\n", c.PC, c.SP, c.IME)
	fmt.Printf("  %s\n", c.Registers)
	if res.Output != "" {
		fmt.Printf("\nSerial output:\n%s\n", res.Output)
	}
}

// TestCmd runs a test ROM and reports results.
type TestCmd struct {
	ROM      string `arg:"" type:"existingfile" help:"Path to test ROM file."`
	MaxSteps uint64 `help:"Maximum instructions to execute." default:"50000000"`
	Verbose  bool   `short:"v" help:"Show detailed output."`
}

// Run executes the test command.
func (c *TestCmd) Run(log *logrus.Logger) error {
	fmt.Printf("Running test ROM: %s\n", c.ROM)

	result := testrom.Run(c.ROM, c.MaxSteps, emulator.WithLogger(log))
	log.WithFields(result.Fields()).Info("test finished")

	fmt.Printf("Result: %s\n", result.String())

	if c.Verbose || !result.IsSuccess() {
		fmt.Printf("\nOutput:\n%s\n", result.Output)
	}

	if !result.IsSuccess() {
		return ErrTestFailed
	}

	return nil
}

// DecodeCmd decodes opcode bytes given as hex.
type DecodeCmd struct {
	Bytes []string `arg:"" help:"Hex bytes, e.g. 81 C3 34 12 or CB7C."`
}

// Run executes the decode command.
func (c *DecodeCmd) Run() error {
	code, err := parseHex(c.Bytes)
	if err != nil {
		return err
	}

	fmt.Print(strings.Join(disassemble(code), "\n"), "\n")
	return nil
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("sm83"),
		kong.Description("A Sharp SM83 (Game Boy CPU) instruction core and runner."),
		kong.UsageOnError(),
	)

	log, err := newLogger(cli.LogLevel, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	err = ctx.Run(log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
