package asm

import (
	"fmt"
)

// abiNames are the calling convention names of x0..x31.
var abiNames = [32]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

// regMap maps register names to register numbers.
var regMap = func() map[string]uint8 {
	regs := map[string]uint8{"fp": 8}
	for n, name := range abiNames {
		regs[name] = uint8(n)
		regs[fmt.Sprintf("x%d", n)] = uint8(n)
	}
	return regs
}()

// register returns the register number of a word.
func (asm *Assembler) register(word string) (reg uint8, err error) {
	equate, ok := asm.Equate[word]
	if ok {
		word = equate
	}

	reg, ok = regMap[word]
	if !ok {
		err = ErrParseRegister(word)
		return
	}

	return
}
