package asm

import (
	"encoding/binary"
	"iter"

	"github.com/ezrec/rvsim/cpu"
)

// Opcode is one assembled source line.
type Opcode struct {
	LineNo    int        // Source line number.
	Address   uint32     // Address of the first word.
	Words     []string   // Source words, after equate substitution.
	Codes     []cpu.Word // Machine code.
	LinkLabel string     // Label the last code refers to, if any.
}

// Program is an assembled listing.
type Program struct {
	Base    uint32 // Load address of the first opcode.
	Opcodes []Opcode
}

// Debug locates a word of a program listing.
type Debug struct {
	*Opcode
	Index int // Index of the word in the opcode codes.
}

// Debug returns the listing entry covering addr, or a nil Opcode.
func (prog *Program) Debug(addr uint32) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if addr >= op.Address && addr < op.Address+4*uint32(len(op.Codes)) {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  int(addr-op.Address) / 4,
			}
			break
		}
	}

	return
}

// Codes returns the address and value of every word of the program.
func (prog *Program) Codes() iter.Seq2[uint32, cpu.Word] {
	return func(yield func(addr uint32, code cpu.Word) bool) {
		for _, op := range prog.Opcodes {
			for n, code := range op.Codes {
				if !yield(op.Address+4*uint32(n), code) {
					return
				}
			}
		}
	}
}

// Binary returns the little-endian image of the program, starting at Base.
func (prog *Program) Binary() (bins []byte) {
	for addr, code := range prog.Codes() {
		index := int(addr - prog.Base)
		if need := index + 4; need > len(bins) {
			bins = append(bins, make([]byte, need-len(bins))...)
		}
		binary.LittleEndian.PutUint32(bins[index:], uint32(code))
	}

	return
}
