package isa

import (
	"fmt"

	"github.com/ezrec/rvsim/cpu"
)

// opReg is a register-register operation: rd = op(rs1, rs2).
func opReg(mnemonic string, funct3, funct7 uint8, op func(a, b int32) int32) cpu.Behavior {
	return cpu.Behavior{
		Mnemonic: mnemonic,
		Match:    cpu.MatchFunct7(cpu.OP_OP, funct3, funct7),
		Execute: func(st *cpu.State, w cpu.Word) error {
			st.SetX(w.Rd(), op(st.X(w.Rs1()), st.X(w.Rs2())))
			st.Next()
			return nil
		},
		Disassemble: disR(mnemonic),
	}
}

// opImm is a register-immediate operation: rd = op(rs1, imm_i).
func opImm(mnemonic string, funct3 uint8, op func(a, imm int32) int32) cpu.Behavior {
	return cpu.Behavior{
		Mnemonic: mnemonic,
		Match:    cpu.MatchFunct3(cpu.OP_OP_IMM, funct3),
		Execute: func(st *cpu.State, w cpu.Word) error {
			st.SetX(w.Rd(), op(st.X(w.Rs1()), w.ImmI()))
			st.Next()
			return nil
		},
		Disassemble: disI(mnemonic),
	}
}

// opShift is a shift by immediate. The shift amount is the rs2 field
// (imm[4:0]); funct7 (imm[11:5]) selects logical or arithmetic.
func opShift(mnemonic string, funct3, funct7 uint8, op func(a int32, shamt uint32) int32) cpu.Behavior {
	return cpu.Behavior{
		Mnemonic: mnemonic,
		Match:    cpu.MatchFunct7(cpu.OP_OP_IMM, funct3, funct7),
		Execute: func(st *cpu.State, w cpu.Word) error {
			st.SetX(w.Rd(), op(st.X(w.Rs1()), uint32(w.Rs2())))
			st.Next()
			return nil
		},
		Disassemble: disShift(mnemonic),
	}
}

// branch jumps by imm_b when cond holds, otherwise falls through.
func branch(mnemonic string, funct3 uint8, cond func(a, b int32) bool) cpu.Behavior {
	return cpu.Behavior{
		Mnemonic: mnemonic,
		Match:    cpu.MatchFunct3(cpu.OP_BRANCH, funct3),
		Execute: func(st *cpu.State, w cpu.Word) error {
			if cond(st.X(w.Rs1()), st.X(w.Rs2())) {
				st.Pc += uint32(w.ImmB())
			} else {
				st.Next()
			}
			return nil
		},
		Disassemble: disB(mnemonic),
	}
}

// load reads size bytes at rs1+imm_i, sign or zero extended into rd.
func load(mnemonic string, funct3 uint8, size int, signed bool) cpu.Behavior {
	return cpu.Behavior{
		Mnemonic: mnemonic,
		Match:    cpu.MatchFunct3(cpu.OP_LOAD, funct3),
		Execute: func(st *cpu.State, w cpu.Word) (err error) {
			addr := st.U(w.Rs1()) + uint32(w.ImmI())
			value, err := st.Memory.Load(addr, size)
			if err != nil {
				return
			}
			if signed {
				st.SetX(w.Rd(), cpu.SignExtend(value, uint(8*size)))
			} else {
				st.SetU(w.Rd(), value)
			}
			st.Next()
			return
		},
		Disassemble: disLoad(mnemonic),
	}
}

// store writes the low size bytes of rs2 at rs1+imm_s.
func store(mnemonic string, funct3 uint8, size int) cpu.Behavior {
	return cpu.Behavior{
		Mnemonic: mnemonic,
		Match:    cpu.MatchFunct3(cpu.OP_STORE, funct3),
		Execute: func(st *cpu.State, w cpu.Word) (err error) {
			addr := st.U(w.Rs1()) + uint32(w.ImmS())
			err = st.Memory.Store(addr, size, st.U(w.Rs2()))
			if err != nil {
				return
			}
			st.Next()
			return
		},
		Disassemble: disStore(mnemonic),
	}
}

func arithmetic() []cpu.Behavior {
	return []cpu.Behavior{
		opReg("add", 0b000, 0b0000000, func(a, b int32) int32 { return a + b }),
		opImm("addi", 0b000, func(a, imm int32) int32 { return a + imm }),
		opReg("sub", 0b000, 0b0100000, func(a, b int32) int32 { return a - b }),
		opReg("xor", 0b100, 0b0000000, func(a, b int32) int32 { return a ^ b }),
		opImm("xori", 0b100, func(a, imm int32) int32 { return a ^ imm }),
		opReg("or", 0b110, 0b0000000, func(a, b int32) int32 { return a | b }),
		opImm("ori", 0b110, func(a, imm int32) int32 { return a | imm }),
		opReg("and", 0b111, 0b0000000, func(a, b int32) int32 { return a & b }),
		opImm("andi", 0b111, func(a, imm int32) int32 { return a & imm }),
	}
}

func shifts() []cpu.Behavior {
	sll := func(a int32, shamt uint32) int32 { return a << (shamt & 0x1f) }
	srl := func(a int32, shamt uint32) int32 { return int32(uint32(a) >> (shamt & 0x1f)) }
	sra := func(a int32, shamt uint32) int32 { return a >> (shamt & 0x1f) }

	return []cpu.Behavior{
		opReg("sll", 0b001, 0b0000000, func(a, b int32) int32 { return sll(a, uint32(b)) }),
		opReg("sra", 0b101, 0b0100000, func(a, b int32) int32 { return sra(a, uint32(b)) }),
		opReg("srl", 0b101, 0b0000000, func(a, b int32) int32 { return srl(a, uint32(b)) }),
		opShift("slli", 0b001, 0b0000000, sll),
		opShift("srai", 0b101, 0b0100000, sra),
		opShift("srli", 0b101, 0b0000000, srl),
	}
}

func compares() []cpu.Behavior {
	return []cpu.Behavior{
		opReg("slt", 0b010, 0b0000000, func(a, b int32) int32 { return cpu.Bool(a < b) }),
		opImm("slti", 0b010, func(a, imm int32) int32 { return cpu.Bool(a < imm) }),
		opReg("sltu", 0b011, 0b0000000, func(a, b int32) int32 { return cpu.Bool(uint32(a) < uint32(b)) }),
		opImm("sltiu", 0b011, func(a, imm int32) int32 { return cpu.Bool(uint32(a) < uint32(imm)) }),
	}
}

func branches() []cpu.Behavior {
	return []cpu.Behavior{
		branch("beq", 0b000, func(a, b int32) bool { return a == b }),
		branch("bne", 0b001, func(a, b int32) bool { return a != b }),
		branch("blt", 0b100, func(a, b int32) bool { return a < b }),
		branch("bge", 0b101, func(a, b int32) bool { return a >= b }),
		branch("bltu", 0b110, func(a, b int32) bool { return uint32(a) < uint32(b) }),
		branch("bgeu", 0b111, func(a, b int32) bool { return uint32(a) >= uint32(b) }),
	}
}

func jumps() []cpu.Behavior {
	return []cpu.Behavior{
		{
			Mnemonic: "jal",
			Match:    cpu.MatchOpcode(cpu.OP_JAL),
			Execute: func(st *cpu.State, w cpu.Word) error {
				link := st.Pc + 4
				st.Pc += uint32(w.ImmJ())
				st.SetU(w.Rd(), link)
				return nil
			},
			Disassemble: func(w cpu.Word) string {
				return fmt.Sprintf("jal x%d, %d", w.Rd(), w.ImmJ())
			},
		},
		{
			Mnemonic: "jalr",
			Match:    cpu.MatchFunct3(cpu.OP_JALR, 0b000),
			Execute: func(st *cpu.State, w cpu.Word) error {
				// rs1 is read before rd is written; they may be the same.
				target := (st.U(w.Rs1()) + uint32(w.ImmI())) &^ 1
				st.SetU(w.Rd(), st.Pc+4)
				st.Pc = target
				return nil
			},
			Disassemble: disI("jalr"),
		},
	}
}

func upper() []cpu.Behavior {
	return []cpu.Behavior{
		{
			Mnemonic: "lui",
			Match:    cpu.MatchOpcode(cpu.OP_LUI),
			Execute: func(st *cpu.State, w cpu.Word) error {
				st.SetU(w.Rd(), w.ImmU())
				st.Next()
				return nil
			},
			Disassemble: disU("lui"),
		},
		{
			Mnemonic: "auipc",
			Match:    cpu.MatchOpcode(cpu.OP_AUIPC),
			Execute: func(st *cpu.State, w cpu.Word) error {
				st.SetU(w.Rd(), st.Pc+w.ImmU())
				st.Next()
				return nil
			},
			Disassemble: disU("auipc"),
		},
	}
}

func loads() []cpu.Behavior {
	return []cpu.Behavior{
		load("lb", 0b000, 1, true),
		load("lbu", 0b100, 1, false),
		load("lh", 0b001, 2, true),
		load("lhu", 0b101, 2, false),
		load("lw", 0b010, 4, true),
	}
}

func stores() []cpu.Behavior {
	return []cpu.Behavior{
		store("sb", 0b000, 1),
		store("sh", 0b001, 2),
		store("sw", 0b010, 4),
	}
}

func misc() []cpu.Behavior {
	return []cpu.Behavior{
		{
			Mnemonic: "fence",
			Match:    cpu.MatchFunct3(cpu.OP_MISC_MEM, 0b000),
			Execute: func(st *cpu.State, w cpu.Word) error {
				// Execution is in order; there is nothing to fence.
				st.Next()
				return nil
			},
			Disassemble: disBare("fence"),
		},
		{
			Mnemonic: "ebreak",
			Match:    cpu.MatchFunct12(cpu.OP_SYSTEM, 0b000, 0x001),
			Execute: func(st *cpu.State, w cpu.Word) error {
				st.Halt = true
				return nil
			},
			Disassemble: disBare("ebreak"),
		},
	}
}

// RV32I returns the base integer instruction set.
func RV32I() *Extension {
	return New("rv32i").
		Add(arithmetic()...).
		Add(shifts()...).
		Add(compares()...).
		Add(branches()...).
		Add(jumps()...).
		Add(upper()...).
		Add(loads()...).
		Add(stores()...).
		Add(misc()...)
}
