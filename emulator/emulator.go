// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"fmt"
	"io"
	"iter"
	"maps"

	"github.com/ezrec/rvsim/asm"
	"github.com/ezrec/rvsim/cpu"
	"github.com/ezrec/rvsim/internal"
	rvio "github.com/ezrec/rvsim/io"
	"github.com/ezrec/rvsim/isa"
)

const (
	MEMORY_SIZE = 1 << 20 // Default memory size, 1 MiB.
)

var _emulator_defines = map[string]string{
	"MEMORY_DEFAULT": fmt.Sprintf("%v", MEMORY_SIZE),
}

// Emulator state. CPU + program image + source listing.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *asm.Program // Reference to the currently running program listing.
	Rom      rvio.Rom     // Program image, loaded on Reset.
	Trace    io.Writer    // If set, each instruction is listed before it executes.
}

// NewEmulator creates a new emulator with the default extensions.
// Environment call output goes to sink.
func NewEmulator(memorySize int, sink io.Writer) (emu *Emulator, err error) {
	machine, err := cpu.NewCpu(cpu.Config{
		MemorySize: memorySize,
		Extensions: isa.Default(sink),
	})
	if err != nil {
		return
	}

	emu = &Emulator{
		Cpu:     machine,
		Program: &asm.Program{},
	}

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		emu.Cpu.Defines(),
	)
}

// Load sets the program image. There is no source listing.
func (emu *Emulator) Load(rom *rvio.Rom) {
	emu.Rom = *rom
	emu.Program = &asm.Program{Base: rom.Base}
}

// Assemble sets the program image from source text, assembled at the
// image base.
func (emu *Emulator) Assemble(input io.Reader) (err error) {
	assembler := &asm.Assembler{
		Verbose: emu.Verbose,
		Base:    emu.Rom.Base,
	}
	assembler.Teach(emu.Cpu.Behaviors())
	for name, value := range emu.Defines() {
		assembler.Predefine(name, value)
	}

	prog, err := assembler.Parse(input)
	if err != nil {
		return
	}

	emu.Program = prog
	emu.Rom.Data = prog.Binary()

	return
}

// Reset the machine, load the program image, and point pc at its base.
func (emu *Emulator) Reset() (err error) {
	emu.Cpu.Verbose = emu.Verbose

	emu.Cpu.Reset()

	err = emu.Cpu.LoadImage(emu.Rom.Base, emu.Rom.Data)
	if err != nil {
		return
	}

	emu.Cpu.Pc = emu.Rom.Base

	return
}

// LineNo returns the current line number for the executing opcode, or 0
// if there is no listing for it.
func (emu *Emulator) LineNo() int {
	dbg := emu.Program.Debug(emu.Cpu.Pc)
	if dbg.Opcode == nil {
		return 0
	}

	return dbg.LineNo
}

// Tick performs a single step of the emulator. done is set once the
// machine has halted.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	if emu.Cpu.Halt {
		done = true
		return
	}

	lineno := emu.LineNo()
	pc := emu.Cpu.Pc
	defer func() {
		if err != nil {
			err = &ErrRuntime{LineNo: lineno, Pc: pc, Err: err}
		}
	}()

	if emu.Trace != nil {
		_, err = fmt.Fprintf(emu.Trace, "%08x: %v\n", pc, emu.Cpu.PeekInstruction())
		if err != nil {
			return
		}
	}

	err = emu.Cpu.Step()
	if err != nil {
		return
	}

	done = emu.Cpu.Halt

	return
}

// Run ticks until halted, an error occurs, or maxSteps instructions have
// executed. A negative maxSteps (cpu.RUN_FOREVER) imposes no budget.
func (emu *Emulator) Run(maxSteps int) (steps int, err error) {
	for !emu.Cpu.Halt && (maxSteps < 0 || steps < maxSteps) {
		_, err = emu.Tick()
		if err != nil {
			return
		}
		steps++
	}

	return
}
