package isa

import (
	"fmt"

	"github.com/ezrec/rvsim/cpu"
)

// Disassembly renderers, one per operand layout.

func disR(mnemonic string) func(w cpu.Word) string {
	return func(w cpu.Word) string {
		return fmt.Sprintf("%v x%d, x%d, x%d", mnemonic, w.Rd(), w.Rs1(), w.Rs2())
	}
}

func disI(mnemonic string) func(w cpu.Word) string {
	return func(w cpu.Word) string {
		return fmt.Sprintf("%v x%d, x%d, %d", mnemonic, w.Rd(), w.Rs1(), w.ImmI())
	}
}

func disShift(mnemonic string) func(w cpu.Word) string {
	return func(w cpu.Word) string {
		return fmt.Sprintf("%v x%d, x%d, %d", mnemonic, w.Rd(), w.Rs1(), w.Rs2())
	}
}

func disLoad(mnemonic string) func(w cpu.Word) string {
	return func(w cpu.Word) string {
		return fmt.Sprintf("%v x%d, %d(x%d)", mnemonic, w.Rd(), w.ImmI(), w.Rs1())
	}
}

func disStore(mnemonic string) func(w cpu.Word) string {
	return func(w cpu.Word) string {
		return fmt.Sprintf("%v x%d, %d(x%d)", mnemonic, w.Rs2(), w.ImmS(), w.Rs1())
	}
}

func disB(mnemonic string) func(w cpu.Word) string {
	return func(w cpu.Word) string {
		return fmt.Sprintf("%v x%d, x%d, %d", mnemonic, w.Rs1(), w.Rs2(), w.ImmB())
	}
}

func disU(mnemonic string) func(w cpu.Word) string {
	return func(w cpu.Word) string {
		return fmt.Sprintf("%v x%d, 0x%x", mnemonic, w.Rd(), w.ImmU()>>12)
	}
}

func disBare(mnemonic string) func(w cpu.Word) string {
	return func(w cpu.Word) string {
		return mnemonic
	}
}
