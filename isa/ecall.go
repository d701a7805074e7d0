package isa

import (
	"fmt"
	"io"
	"os"

	"github.com/ezrec/rvsim/cpu"
)

// Environment call numbers, passed in a7.
const (
	SYS_PRINT_INT = 1  // Print a0 as a signed decimal line.
	SYS_EXIT      = 10 // Halt the hart.
)

// Ecall returns the environment call set. Printed values go to sink, or to
// standard output if sink is nil.
func Ecall(sink io.Writer) *Extension {
	if sink == nil {
		sink = os.Stdout
	}

	ecall := cpu.Behavior{
		Mnemonic: "ecall",
		Match:    cpu.MatchFunct12(cpu.OP_SYSTEM, 0b000, 0x000),
		Execute: func(st *cpu.State, w cpu.Word) (err error) {
			number := st.X(cpu.REG_A7)
			switch number {
			case SYS_EXIT:
				st.Halt = true
			case SYS_PRINT_INT:
				_, err = fmt.Fprintf(sink, "%d\n", st.X(cpu.REG_A0))
				if err != nil {
					return
				}
				st.Next()
			default:
				err = &cpu.ErrSyscall{Number: number, Pc: st.Pc}
			}
			return
		},
		Disassemble: disBare("ecall"),
	}

	return New("ecall", ecall).
		Define("SYS_PRINT_INT", fmt.Sprintf("%d", SYS_PRINT_INT)).
		Define("SYS_EXIT", fmt.Sprintf("%d", SYS_EXIT))
}
