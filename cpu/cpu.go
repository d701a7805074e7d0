package cpu

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"
	"slices"

	"github.com/ezrec/rvsim/internal"
)

const (
	XLEN        = 32 // Register width in bits.
	RUN_FOREVER = -1 // Run() step budget that never expires.
)

// Config is the construction-time configuration of a Cpu.
type Config struct {
	MemorySize int         // Memory capacity in bytes; must be positive.
	Extensions []Extension // Instruction extensions, in catalog order.

	// LazyConflicts defers detection of overlapping behaviors from
	// construction to the first fetch of an ambiguous word.
	LazyConflicts bool
}

// Cpu is the execution engine of a single RV32 hart.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	// Architectural state.
	State

	// Instructions retired since the last reset.
	Steps int

	catalog  []Behavior // All behaviors, in extension order.
	origin   []string   // Extension name of each catalog entry.
	dispatch [128][]int // Catalog indexes, bucketed by opcode.
	lazy     bool       // Overlaps are detected at dispatch.
	defines  iter.Seq2[string, string]
}

// tagged yields each behavior of an extension with the extension's name.
func tagged(ext Extension) iter.Seq2[string, Behavior] {
	return func(yield func(string, Behavior) bool) {
		name := ext.Name()
		for behavior := range ext.Behaviors() {
			if !yield(name, behavior) {
				return
			}
		}
	}
}

// NewCpu creates a Cpu with zeroed memory and registers, pc at 0.
func NewCpu(config Config) (cpu *Cpu, err error) {
	if config.MemorySize <= 0 {
		err = errors.Join(ErrConfig, ErrMemorySize)
		return
	}

	engine := &Cpu{
		State: State{
			Memory: NewMemory(config.MemorySize),
		},
		lazy: config.LazyConflicts,
	}

	seqs := make([]iter.Seq2[string, Behavior], 0, len(config.Extensions))
	defines := []iter.Seq2[string, string]{
		maps.All(map[string]string{
			"XLEN":        fmt.Sprintf("%d", XLEN),
			"MEMORY_SIZE": fmt.Sprintf("%d", config.MemorySize),
		}),
	}
	for _, ext := range config.Extensions {
		if ext == nil || len(ext.Name()) == 0 {
			err = errors.Join(ErrConfig, ErrExtensionInvalid)
			return
		}
		seqs = append(seqs, tagged(ext))
		if definer, ok := ext.(Definer); ok {
			defines = append(defines, definer.Defines())
		}
	}
	engine.defines = internal.IterSeq2Concat(defines...)

	index := map[string]int{}
	for name, behavior := range internal.IterSeq2Concat(seqs...) {
		err = behavior.Validate()
		if err != nil {
			err = &ErrBehavior{Extension: name, Index: index[name], Mnemonic: behavior.Mnemonic, Err: err}
			return
		}
		index[name]++

		op := behavior.Match.Opcode
		engine.dispatch[op] = append(engine.dispatch[op], len(engine.catalog))
		engine.catalog = append(engine.catalog, behavior)
		engine.origin = append(engine.origin, name)
	}

	if !engine.lazy {
		err = engine.checkConflicts()
		if err != nil {
			return
		}
	}

	cpu = engine
	return
}

// checkConflicts verifies that no two behaviors can match the same word.
func (cpu *Cpu) checkConflicts() (err error) {
	for _, bucket := range cpu.dispatch {
		for i, a := range bucket {
			for _, b := range bucket[i+1:] {
				if cpu.catalog[a].Match.Overlaps(cpu.catalog[b].Match) {
					err = &ErrConflict{Mnemonics: []string{cpu.label(a), cpu.label(b)}}
					return
				}
			}
		}
	}

	return
}

// label names a catalog entry for diagnostics.
func (cpu *Cpu) label(index int) string {
	return cpu.origin[index] + "." + cpu.catalog[index].Mnemonic
}

// Behaviors returns the catalog, in dispatch order.
func (cpu *Cpu) Behaviors() iter.Seq[Behavior] {
	return slices.Values(cpu.catalog)
}

// Defines returns the assembler equates of the cpu and its extensions.
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return cpu.defines
}

// Reset restores the construction-time state: zeroed memory and registers,
// pc at 0, not halted. The catalog is kept.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	cpu.Memory.Reset()
	clear(cpu.Register[:])
	cpu.Pc = 0
	cpu.Halt = false
	cpu.Steps = 0
}

// LoadImage copies data into memory at base. Nothing is written if the
// image does not fit.
func (cpu *Cpu) LoadImage(base uint32, data []byte) (err error) {
	err = cpu.Memory.Write(base, data)
	if err != nil {
		return
	}

	if cpu.Verbose {
		log.Printf("cpu: loaded %v bytes at 0x%08x", len(data), base)
	}

	return
}

// Fetch reads the little-endian instruction word at pc.
func (cpu *Cpu) Fetch() (w Word, err error) {
	value, err := cpu.Memory.Load(cpu.Pc, 4)
	if err != nil {
		return
	}

	w = Word(value)
	return
}

// Lookup finds the unique behavior matching the word.
func (cpu *Cpu) Lookup(w Word) (behavior *Behavior, err error) {
	var found []int
	for _, n := range cpu.dispatch[w.Opcode()] {
		if !cpu.catalog[n].Match.Matches(w) {
			continue
		}
		if !cpu.lazy {
			// Overlaps were rejected at construction.
			behavior = &cpu.catalog[n]
			return
		}
		found = append(found, n)
	}

	switch len(found) {
	case 0:
		err = &ErrInstruction{Pc: cpu.Pc, Word: w}
	case 1:
		behavior = &cpu.catalog[found[0]]
	default:
		conflict := &ErrConflict{Word: w, Pc: cpu.Pc, Lazy: true}
		for _, n := range found {
			conflict.Mnemonics = append(conflict.Mnemonics, cpu.label(n))
		}
		err = conflict
	}

	return
}

// Step executes a single instruction. It does nothing once halted.
//
// On error the architectural state is left as it was before the step.
func (cpu *Cpu) Step() (err error) {
	if cpu.Halt {
		return
	}

	pc := cpu.Pc

	w, err := cpu.Fetch()
	if err != nil {
		return
	}

	behavior, err := cpu.Lookup(w)
	if err != nil {
		return
	}

	if cpu.Verbose {
		log.Printf("cpu: %08x: %08x %v", pc, uint32(w), behavior.Disassemble(w))
	}

	err = behavior.Execute(&cpu.State, w)

	// x0 is hardwired to zero, whatever the behavior wrote.
	cpu.Register[REG_ZERO] = 0

	if err != nil {
		err = &ErrExecute{Pc: pc, Word: w, Mnemonic: behavior.Mnemonic, Err: err}
		return
	}

	cpu.Steps++

	if cpu.Verbose && cpu.Halt {
		log.Printf("cpu: halted at %08x", cpu.Pc)
	}

	return
}

// Run steps until halted, an error occurs, or maxSteps instructions have
// executed. A negative maxSteps (RUN_FOREVER) imposes no budget; a guest
// that never halts then never returns.
func (cpu *Cpu) Run(maxSteps int) (steps int, err error) {
	for !cpu.Halt && (maxSteps < 0 || steps < maxSteps) {
		err = cpu.Step()
		if err != nil {
			return
		}
		steps++
	}

	return
}

// Disassemble renders a word with the behavior that would execute it.
func (cpu *Cpu) Disassemble(w Word) (text string) {
	behavior, err := cpu.Lookup(w)
	switch {
	case errors.Is(err, ErrDispatchConflict):
		text = fmt.Sprintf("<ambiguous 0x%08x>", uint32(w))
	case err != nil:
		text = fmt.Sprintf("<unknown 0x%08x>", uint32(w))
	default:
		text = behavior.Disassemble(w)
	}

	return
}

// PeekInstruction disassembles the instruction at pc without executing
// it. It never fails; unfetchable or unmatched words produce a diagnostic
// placeholder.
func (cpu *Cpu) PeekInstruction() string {
	w, err := cpu.Fetch()
	if err != nil {
		return fmt.Sprintf("<fetch fault at pc 0x%08x>", cpu.Pc)
	}

	return cpu.Disassemble(w)
}

// String returns the current register state as a string.
func (cpu *Cpu) String() (text string) {
	text += fmt.Sprintf("% 5s: %04x_%04x\n", "pc", cpu.Pc>>16, cpu.Pc&0xffff)
	text += fmt.Sprintf("% 5s: %v\n", "halt", cpu.Halt)
	for n, reg := range cpu.Register {
		val := uint32(reg)
		text += fmt.Sprintf("% 5s: %04x_%04x (%d)\n", fmt.Sprintf("x%d", n), val>>16, val&0xffff, reg)
	}

	return
}
