package asm

import (
	"regexp"

	"github.com/ezrec/rvsim/cpu"
)

// Immediate field ranges.
const (
	IMM_I_MIN = -(1 << 11)
	IMM_I_MAX = (1 << 11) - 1
	IMM_B_MIN = -(1 << 12)
	IMM_B_MAX = (1 << 12) - 2
	IMM_J_MIN = -(1 << 20)
	IMM_J_MAX = (1 << 20) - 2
	IMM_U_MIN = -(1 << 19)
	IMM_U_MAX = (1 << 20) - 1
	SHAMT_MAX = cpu.XLEN - 1
)

// immediate checks that value lies in [min, max].
func immediate(value int64, min, max int64) (imm int32, err error) {
	if value < min || value > max {
		err = &ErrImmediate{Value: value, Min: min, Max: max}
		return
	}

	imm = int32(value)
	return
}

// offset checks a pc relative offset, which must be even.
func offset(value int64, min, max int64) (imm int32, err error) {
	imm, err = immediate(value, min, max)
	if err != nil {
		return
	}
	if imm&1 != 0 {
		err = ErrAlignment
		return
	}

	return
}

// splitHiLo splits a 32-bit value for a lui/auipc + addi pair.
func splitHiLo(value int32) (hi uint32, lo int32) {
	upper := (int64(value) + 0x800) >> 12
	hi = uint32(upper) << 12
	lo = int32(int64(value) - upper<<12)
	return
}

var reMemory = regexp.MustCompile(`^(.*)\(([^()]+)\)$`)

// memory parses an 'offset(register)' operand.
func (asm *Assembler) memory(word string) (base uint8, imm int32, err error) {
	parts := reMemory.FindStringSubmatch(word)
	if parts == nil {
		err = ErrOperandInvalid
		return
	}

	base, err = asm.register(parts[2])
	if err != nil {
		return
	}

	if len(parts[1]) == 0 {
		return
	}

	value, err := asm.valueOf(parts[1])
	if err != nil {
		return
	}

	imm, err = immediate(value, IMM_I_MIN, IMM_I_MAX)
	return
}

// registers parses a list of register operands.
func (asm *Assembler) registers(words ...string) (regs []uint8, err error) {
	for _, word := range words {
		var reg uint8
		reg, err = asm.register(word)
		if err != nil {
			return
		}
		regs = append(regs, reg)
	}

	return
}

// target parses a pc relative target: a literal offset, or a label to be
// linked later.
func (asm *Assembler) target(word string, min, max int64) (imm int32, label string, err error) {
	_, ok := asm.Label[word]
	if ok {
		label = word
		return
	}

	value, err := asm.valueOf(word)
	if err == nil {
		imm, err = offset(value, min, max)
		return
	}

	if !reLabel.MatchString(word) {
		return
	}

	err = nil
	label = word
	return
}

// argCount checks the number of operands.
func argCount(args []string, count int) (err error) {
	switch {
	case len(args) < count:
		err = ErrOpcodeValueMissing
	case len(args) > count:
		err = ErrOpcodeExtraArgs
	}
	return
}

// pseudo rewrites pseudo-instructions that expand to a single instruction.
func pseudo(words []string) []string {
	args := words[1:]
	switch {
	case words[0] == "nop" && len(args) == 0:
		return []string{"addi", "x0", "x0", "0"}
	case words[0] == "mv" && len(args) == 2:
		return []string{"addi", args[0], args[1], "0"}
	case words[0] == "not" && len(args) == 2:
		return []string{"xori", args[0], args[1], "-1"}
	case words[0] == "neg" && len(args) == 2:
		return []string{"sub", args[0], "x0", args[1]}
	case words[0] == "seqz" && len(args) == 2:
		return []string{"sltiu", args[0], args[1], "1"}
	case words[0] == "snez" && len(args) == 2:
		return []string{"sltu", args[0], "x0", args[1]}
	case words[0] == "beqz" && len(args) == 2:
		return []string{"beq", args[0], "x0", args[1]}
	case words[0] == "bnez" && len(args) == 2:
		return []string{"bne", args[0], "x0", args[1]}
	case words[0] == "bgt" && len(args) == 3:
		return []string{"blt", args[1], args[0], args[2]}
	case words[0] == "ble" && len(args) == 3:
		return []string{"bge", args[1], args[0], args[2]}
	case words[0] == "bgtu" && len(args) == 3:
		return []string{"bltu", args[1], args[0], args[2]}
	case words[0] == "bleu" && len(args) == 3:
		return []string{"bgeu", args[1], args[0], args[2]}
	case words[0] == "j" && len(args) == 1:
		return []string{"jal", "x0", args[0]}
	case words[0] == "call" && len(args) == 1:
		return []string{"jal", "ra", args[0]}
	case words[0] == "jal" && len(args) == 1:
		return []string{"jal", "ra", args[0]}
	case words[0] == "jr" && len(args) == 1:
		return []string{"jalr", "x0", args[0], "0"}
	case words[0] == "jalr" && len(args) == 1:
		return []string{"jalr", "ra", args[0], "0"}
	case words[0] == "ret" && len(args) == 0:
		return []string{"jalr", "x0", "ra", "0"}
	}

	return words
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var codes []cpu.Word
	var label string

	// no-op
	if len(words) == 0 {
		return
	}

	initial_words := words

	defer func() {
		if len(codes) == 0 {
			return
		}
		opcode := Opcode{LineNo: lineno, Address: asm.currentAddress(), Words: initial_words, Codes: codes, LinkLabel: label}
		asm.Opcode = append(asm.Opcode, opcode)
	}()

	words = pseudo(words)
	args := words[1:]

	switch words[0] {
	case ".word":
		if len(args) == 0 {
			err = ErrOpcodeValueMissing
			return
		}
		for _, arg := range args {
			var value int64
			value, err = asm.valueOf(arg)
			if err != nil {
				return
			}
			_, err = immediate(value, -(1 << 31), (1<<32)-1)
			if err != nil {
				return
			}
			codes = append(codes, cpu.Word(uint32(value)))
		}
		return
	case "li":
		err = argCount(args, 2)
		if err != nil {
			return
		}
		var rd uint8
		rd, err = asm.register(args[0])
		if err != nil {
			return
		}
		var value int64
		value, err = asm.valueOf(args[1])
		if err != nil {
			return
		}
		_, err = immediate(value, -(1 << 31), (1<<32)-1)
		if err != nil {
			return
		}
		imm := int32(uint32(value))
		if imm >= IMM_I_MIN && imm <= IMM_I_MAX {
			codes = append(codes, cpu.MakeI(cpu.OP_OP_IMM, 0, rd, 0, imm))
			return
		}
		hi, lo := splitHiLo(imm)
		codes = append(codes, cpu.MakeU(cpu.OP_LUI, rd, hi))
		if lo != 0 {
			codes = append(codes, cpu.MakeI(cpu.OP_OP_IMM, 0, rd, rd, lo))
		}
		return
	case "la":
		err = argCount(args, 2)
		if err != nil {
			return
		}
		var rd uint8
		rd, err = asm.register(args[0])
		if err != nil {
			return
		}
		if !reLabel.MatchString(args[1]) {
			err = ErrLabelInvalid
			return
		}
		codes = append(codes,
			cpu.MakeU(cpu.OP_AUIPC, rd, 0),
			cpu.MakeI(cpu.OP_OP_IMM, 0, rd, rd, 0),
		)
		label = args[1]
		return
	}

	match, ok := asm.instruction[words[0]]
	if !ok {
		err = ErrInstructionInvalid
		return
	}

	var code cpu.Word
	code, label, err = asm.encode(match, args)
	if err != nil {
		return
	}

	codes = append(codes, code)

	return
}

// encode assembles the operands of an instruction, in the operand syntax
// of its format.
func (asm *Assembler) encode(match cpu.Match, args []string) (code cpu.Word, label string, err error) {
	var regs []uint8
	var value int64
	var imm int32

	switch match.Opcode {
	case cpu.OP_OP:
		// rd, rs1, rs2
		err = argCount(args, 3)
		if err != nil {
			return
		}
		regs, err = asm.registers(args...)
		if err != nil {
			return
		}
		code = cpu.MakeR(match.Opcode, match.Funct3, match.Funct7, regs[0], regs[1], regs[2])
	case cpu.OP_OP_IMM:
		// rd, rs1, imm
		err = argCount(args, 3)
		if err != nil {
			return
		}
		regs, err = asm.registers(args[:2]...)
		if err != nil {
			return
		}
		value, err = asm.valueOf(args[2])
		if err != nil {
			return
		}
		if match.Fields&cpu.FIELD_FUNCT7 != 0 {
			imm, err = immediate(value, 0, SHAMT_MAX)
			if err != nil {
				return
			}
			code = cpu.MakeR(match.Opcode, match.Funct3, match.Funct7, regs[0], regs[1], uint8(imm))
			return
		}
		imm, err = immediate(value, IMM_I_MIN, IMM_I_MAX)
		if err != nil {
			return
		}
		code = cpu.MakeI(match.Opcode, match.Funct3, regs[0], regs[1], imm)
	case cpu.OP_LOAD:
		// rd, imm(rs1)
		err = argCount(args, 2)
		if err != nil {
			return
		}
		regs, err = asm.registers(args[0])
		if err != nil {
			return
		}
		var base uint8
		base, imm, err = asm.memory(args[1])
		if err != nil {
			return
		}
		code = cpu.MakeI(match.Opcode, match.Funct3, regs[0], base, imm)
	case cpu.OP_STORE:
		// rs2, imm(rs1)
		err = argCount(args, 2)
		if err != nil {
			return
		}
		regs, err = asm.registers(args[0])
		if err != nil {
			return
		}
		var base uint8
		base, imm, err = asm.memory(args[1])
		if err != nil {
			return
		}
		code = cpu.MakeS(match.Opcode, match.Funct3, base, regs[0], imm)
	case cpu.OP_BRANCH:
		// rs1, rs2, target
		err = argCount(args, 3)
		if err != nil {
			return
		}
		regs, err = asm.registers(args[:2]...)
		if err != nil {
			return
		}
		imm, label, err = asm.target(args[2], IMM_B_MIN, IMM_B_MAX)
		if err != nil {
			return
		}
		code = cpu.MakeB(match.Opcode, match.Funct3, regs[0], regs[1], imm)
	case cpu.OP_JAL:
		// rd, target
		err = argCount(args, 2)
		if err != nil {
			return
		}
		regs, err = asm.registers(args[0])
		if err != nil {
			return
		}
		imm, label, err = asm.target(args[1], IMM_J_MIN, IMM_J_MAX)
		if err != nil {
			return
		}
		code = cpu.MakeJ(match.Opcode, regs[0], imm)
	case cpu.OP_JALR:
		// rd, rs1, imm or rd, imm(rs1)
		var base uint8
		switch len(args) {
		case 2:
			regs, err = asm.registers(args[0])
			if err != nil {
				return
			}
			base, imm, err = asm.memory(args[1])
			if err != nil {
				return
			}
		default:
			err = argCount(args, 3)
			if err != nil {
				return
			}
			regs, err = asm.registers(args[:2]...)
			if err != nil {
				return
			}
			base = regs[1]
			value, err = asm.valueOf(args[2])
			if err != nil {
				return
			}
			imm, err = immediate(value, IMM_I_MIN, IMM_I_MAX)
			if err != nil {
				return
			}
		}
		code = cpu.MakeI(match.Opcode, match.Funct3, regs[0], base, imm)
	case cpu.OP_LUI, cpu.OP_AUIPC:
		// rd, imm20
		err = argCount(args, 2)
		if err != nil {
			return
		}
		regs, err = asm.registers(args[0])
		if err != nil {
			return
		}
		value, err = asm.valueOf(args[1])
		if err != nil {
			return
		}
		imm, err = immediate(value, IMM_U_MIN, IMM_U_MAX)
		if err != nil {
			return
		}
		code = cpu.MakeU(match.Opcode, regs[0], uint32(imm)<<12)
	default:
		// No operands; the match key is the whole instruction.
		err = argCount(args, 0)
		if err != nil {
			return
		}
		_, key := match.Key()
		code = cpu.Word(key)
	}

	return
}

// link resolves the label reference of an opcode to target.
func (op *Opcode) link(target uint32) (err error) {
	last := len(op.Codes) - 1
	code := op.Codes[last]
	pc := op.Address + 4*uint32(last)
	distance := int64(int32(target - pc))

	var imm int32
	switch code.Opcode() {
	case cpu.OP_BRANCH:
		imm, err = offset(distance, IMM_B_MIN, IMM_B_MAX)
		if err != nil {
			return
		}
		op.Codes[last] = cpu.MakeB(cpu.OP_BRANCH, code.Funct3(), code.Rs1(), code.Rs2(), imm)
	case cpu.OP_JAL:
		imm, err = offset(distance, IMM_J_MIN, IMM_J_MAX)
		if err != nil {
			return
		}
		op.Codes[last] = cpu.MakeJ(cpu.OP_JAL, code.Rd(), imm)
	case cpu.OP_OP_IMM:
		// auipc + addi pair, relative to the auipc.
		auipc := op.Codes[0]
		hi, lo := splitHiLo(int32(target - op.Address))
		op.Codes[0] = cpu.MakeU(cpu.OP_AUIPC, auipc.Rd(), hi)
		op.Codes[last] = cpu.MakeI(cpu.OP_OP_IMM, 0, code.Rd(), code.Rs1(), lo)
	default:
		err = ErrOperandInvalid
	}

	return
}
