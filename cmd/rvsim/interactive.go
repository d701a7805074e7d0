package main

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ezrec/rvsim/emulator"
)

// crlfWriter translates line endings for a terminal in raw mode.
type crlfWriter struct {
	io.Writer
}

func (cw *crlfWriter) Write(data []byte) (n int, err error) {
	_, err = cw.Writer.Write(bytes.ReplaceAll(data, []byte("\n"), []byte("\r\n")))
	if err != nil {
		return
	}

	n = len(data)
	return
}

// interact single steps the emulator, one key per step:
//
//	q  quit
//	c  continue without prompting
//	r  show the registers
//
// Any other key executes the listed instruction.
func interact(emu *emulator.Emulator, keys io.Reader, out io.Writer, maxSteps int) (err error) {
	key := make([]byte, 1)
	running := false

	for steps := 0; !emu.Cpu.Halt && (maxSteps < 0 || steps < maxSteps); steps++ {
		for !running {
			_, err = fmt.Fprintf(out, "%08x: %v\r\n", emu.Cpu.Pc, emu.Cpu.PeekInstruction())
			if err != nil {
				return
			}

			_, err = io.ReadFull(keys, key)
			if err != nil {
				return
			}

			switch key[0] {
			case 'q', 0x03, 0x04:
				return
			case 'c':
				running = true
			case 'r':
				_, err = io.WriteString(out, strings.ReplaceAll(emu.Cpu.String(), "\n", "\r\n"))
				if err != nil {
					return
				}
				continue
			}
			break
		}

		_, err = emu.Tick()
		if err != nil {
			return
		}
	}

	return
}
