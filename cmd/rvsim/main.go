// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"io"
	"log"
	"math"
	"os"

	"golang.org/x/term"

	"github.com/ezrec/rvsim/cpu"
	"github.com/ezrec/rvsim/emulator"
	rvio "github.com/ezrec/rvsim/io"
	"github.com/ezrec/rvsim/translate"
)

func main() {
	var hex bool
	var compile bool
	var memory int
	var base uint64
	var steps int
	var disassemble bool
	var interactive bool
	var save string
	var verbose bool
	var lang string

	flag.BoolVar(&hex, "x", false, "Program is a hex listing, one word per line")
	flag.BoolVar(&compile, "c", false, "Program is assembly source")
	flag.IntVar(&memory, "m", emulator.MEMORY_SIZE, "Memory size in bytes")
	flag.Uint64Var(&base, "b", 0, "Load address")
	flag.IntVar(&steps, "n", cpu.RUN_FOREVER, "Step budget, negative for none")
	flag.BoolVar(&disassemble, "d", false, "Print each instruction before it executes")
	flag.BoolVar(&interactive, "i", false, "Single step interactively")
	flag.StringVar(&save, "s", "", "Save the program image as raw binary, do not execute")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.StringVar(&lang, "l", "", "Message language, as a BCP 47 tag (default from the environment)")

	flag.Parse()

	if len(lang) != 0 {
		err := translate.Use(lang)
		if err != nil {
			log.Fatalf("%v: -l %v: %v", os.Args[0], lang, err)
		}
	}

	if flag.NArg() != 1 {
		log.Fatalf("%v: expected one program file, got: %v", os.Args[0], flag.Args())
	}
	program := flag.Arg(0)

	if base > math.MaxUint32 {
		log.Fatalf("%v: load address 0x%x out of range", os.Args[0], base)
	}

	fd := int(os.Stdin.Fd())
	var sink io.Writer = os.Stdout
	if interactive {
		if !term.IsTerminal(fd) {
			log.Fatalf("%v: interactive mode needs a terminal", os.Args[0])
		}
		sink = &crlfWriter{Writer: os.Stdout}
	}

	emu, err := emulator.NewEmulator(memory, sink)
	if err != nil {
		log.Fatalf("%v: %v", os.Args[0], err)
	}
	emu.Verbose = verbose
	emu.Rom.Base = uint32(base)

	if compile {
		inf, err := os.Open(program)
		if err != nil {
			log.Fatalf("%v: %v", program, err)
		}
		defer inf.Close()

		err = emu.Assemble(inf)
		if err != nil {
			log.Fatalf("%v: %v", program, err)
		}
	} else {
		rom, err := rvio.Open(program, hex)
		if err != nil {
			log.Fatal(err)
		}
		rom.Base = uint32(base)
		emu.Load(rom)
	}

	if len(save) != 0 {
		ouf, err := os.Create(save)
		if err != nil {
			log.Fatalf("%v: %v", save, err)
		}
		defer ouf.Close()

		err = emu.Rom.Marshal(ouf)
		if err != nil {
			log.Fatalf("%v: %v", save, err)
		}
		return
	}

	if disassemble && !interactive {
		emu.Trace = os.Stdout
	}

	err = emu.Reset()
	if err != nil {
		log.Fatalf("%v: %v", program, err)
	}

	if interactive {
		var state *term.State
		state, err = term.MakeRaw(fd)
		if err != nil {
			log.Fatalf("%v: %v", os.Args[0], err)
		}
		err = interact(emu, os.Stdin, sink, steps)
		_ = term.Restore(fd, state)
		if err != nil {
			log.Fatalf("%v: %v", program, err)
		}
		return
	}

	_, err = emu.Run(steps)
	if err != nil {
		log.Fatalf("%v: %v", program, err)
	}

	if !emu.Cpu.Halt {
		log.Fatalf("%v: not halted after %v steps, pc 0x%08x", program, emu.Cpu.Steps, emu.Cpu.Pc)
	}
}
