package isa

import (
	"bytes"
	"encoding/binary"
	"maps"
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/rvsim/cpu"
)

func newCpu(t *testing.T, sink *bytes.Buffer) *cpu.Cpu {
	engine, err := cpu.NewCpu(cpu.Config{
		MemorySize: 4096,
		Extensions: Default(sink),
	})
	if err != nil {
		t.Fatal(err)
	}
	return engine
}

func loadWords(t *testing.T, engine *cpu.Cpu, base uint32, words ...cpu.Word) {
	data := make([]byte, 0, 4*len(words))
	for _, w := range words {
		data = binary.LittleEndian.AppendUint32(data, uint32(w))
	}
	err := engine.LoadImage(base, data)
	if err != nil {
		t.Fatal(err)
	}
}

func mnemonics(ext *Extension) (names []string) {
	for behavior := range ext.Behaviors() {
		names = append(names, behavior.Mnemonic)
	}
	return
}

func TestCatalog(t *testing.T) {
	assert := assert.New(t)

	assert.Equal([]string{
		"add", "addi", "sub", "xor", "xori", "or", "ori", "and", "andi",
		"sll", "sra", "srl", "slli", "srai", "srli",
		"slt", "slti", "sltu", "sltiu",
		"beq", "bne", "blt", "bge", "bltu", "bgeu",
		"jal", "jalr",
		"lui", "auipc",
		"lb", "lbu", "lh", "lhu", "lw",
		"sb", "sh", "sw",
		"fence", "ebreak",
	}, mnemonics(RV32I()))

	assert.Equal([]string{
		"mul", "mulh", "mulhsu", "mulhu", "div", "divu", "rem", "remu",
	}, mnemonics(RV32M()))

	assert.Equal([]string{"ecall"}, mnemonics(Ecall(nil)))

	assert.Equal(map[string]string{
		"SYS_PRINT_INT": "1",
		"SYS_EXIT":      "10",
	}, maps.Collect(Ecall(nil).Defines()))

	// The default set must be free of overlaps under eager checking.
	engine := newCpu(t, nil)
	assert.Equal(39+8+1, len(slices.Collect(engine.Behaviors())))
}

func TestExecute(t *testing.T) {
	table := [...]struct {
		name   string
		pc     uint32
		regs   map[uint8]int32
		word   cpu.Word
		rd     uint8
		expect int32
	}{
		{"add", 0, map[uint8]int32{1: 7, 2: -3}, cpu.MakeR(cpu.OP_OP, 0, 0x00, 3, 1, 2), 3, 4},
		{"add-wrap", 0, map[uint8]int32{1: math.MaxInt32, 2: 1}, cpu.MakeR(cpu.OP_OP, 0, 0x00, 3, 1, 2), 3, math.MinInt32},
		{"sub", 0, map[uint8]int32{1: 7, 2: -3}, cpu.MakeR(cpu.OP_OP, 0, 0x20, 3, 1, 2), 3, 10},
		{"xor", 0, map[uint8]int32{1: 12, 2: 10}, cpu.MakeR(cpu.OP_OP, 4, 0x00, 3, 1, 2), 3, 6},
		{"or", 0, map[uint8]int32{1: 12, 2: 10}, cpu.MakeR(cpu.OP_OP, 6, 0x00, 3, 1, 2), 3, 14},
		{"and", 0, map[uint8]int32{1: 12, 2: 10}, cpu.MakeR(cpu.OP_OP, 7, 0x00, 3, 1, 2), 3, 8},
		{"addi", 0, map[uint8]int32{1: 7}, cpu.MakeI(cpu.OP_OP_IMM, 0, 3, 1, -10), 3, -3},
		{"xori", 0, map[uint8]int32{1: 12}, cpu.MakeI(cpu.OP_OP_IMM, 4, 3, 1, -1), 3, -13},
		{"ori", 0, map[uint8]int32{1: 12}, cpu.MakeI(cpu.OP_OP_IMM, 6, 3, 1, 3), 3, 15},
		{"andi", 0, map[uint8]int32{1: 12}, cpu.MakeI(cpu.OP_OP_IMM, 7, 3, 1, 5), 3, 4},
		{"sll", 0, map[uint8]int32{1: 1, 2: 33}, cpu.MakeR(cpu.OP_OP, 1, 0x00, 3, 1, 2), 3, 2},
		{"srl", 0, map[uint8]int32{1: -8, 2: 1}, cpu.MakeR(cpu.OP_OP, 5, 0x00, 3, 1, 2), 3, 0x7ffffffc},
		{"sra", 0, map[uint8]int32{1: -8, 2: 1}, cpu.MakeR(cpu.OP_OP, 5, 0x20, 3, 1, 2), 3, -4},
		{"slli", 0, map[uint8]int32{1: 3}, cpu.MakeR(cpu.OP_OP_IMM, 1, 0x00, 3, 1, 4), 3, 48},
		{"srli", 0, map[uint8]int32{1: -1}, cpu.MakeR(cpu.OP_OP_IMM, 5, 0x00, 3, 1, 28), 3, 15},
		{"srai", 0, map[uint8]int32{1: -256}, cpu.MakeR(cpu.OP_OP_IMM, 5, 0x20, 3, 1, 4), 3, -16},
		{"slt", 0, map[uint8]int32{1: -1, 2: 1}, cpu.MakeR(cpu.OP_OP, 2, 0x00, 3, 1, 2), 3, 1},
		{"sltu", 0, map[uint8]int32{1: -1, 2: 1}, cpu.MakeR(cpu.OP_OP, 3, 0x00, 3, 1, 2), 3, 0},
		{"slti", 0, map[uint8]int32{1: -1}, cpu.MakeI(cpu.OP_OP_IMM, 2, 3, 1, 0), 3, 1},
		{"sltiu", 0, map[uint8]int32{1: 1}, cpu.MakeI(cpu.OP_OP_IMM, 3, 3, 1, -1), 3, 1},
		{"lui", 0, nil, cpu.MakeU(cpu.OP_LUI, 3, 0x12345000), 3, 0x12345000},
		{"auipc", 0x100, nil, cpu.MakeU(cpu.OP_AUIPC, 3, 0x1000), 3, 0x1100},
		{"mul", 0, map[uint8]int32{1: 7, 2: -3}, cpu.MakeR(cpu.OP_OP, 0, 0x01, 3, 1, 2), 3, -21},
		{"mulh", 0, map[uint8]int32{1: 1 << 30, 2: 4}, cpu.MakeR(cpu.OP_OP, 1, 0x01, 3, 1, 2), 3, 1},
		{"mulh-negative", 0, map[uint8]int32{1: -2, 2: 3}, cpu.MakeR(cpu.OP_OP, 1, 0x01, 3, 1, 2), 3, -1},
		{"mulhsu", 0, map[uint8]int32{1: -1, 2: -1}, cpu.MakeR(cpu.OP_OP, 2, 0x01, 3, 1, 2), 3, -1},
		{"mulhu", 0, map[uint8]int32{1: -1, 2: -1}, cpu.MakeR(cpu.OP_OP, 3, 0x01, 3, 1, 2), 3, -2},
		{"div", 0, map[uint8]int32{1: -7, 2: 2}, cpu.MakeR(cpu.OP_OP, 4, 0x01, 3, 1, 2), 3, -3},
		{"div-zero", 0, map[uint8]int32{1: 17, 2: 0}, cpu.MakeR(cpu.OP_OP, 4, 0x01, 3, 1, 2), 3, -1},
		{"div-overflow", 0, map[uint8]int32{1: math.MinInt32, 2: -1}, cpu.MakeR(cpu.OP_OP, 4, 0x01, 3, 1, 2), 3, math.MinInt32},
		{"divu", 0, map[uint8]int32{1: -1, 2: 2}, cpu.MakeR(cpu.OP_OP, 5, 0x01, 3, 1, 2), 3, math.MaxInt32},
		{"divu-zero", 0, map[uint8]int32{1: 17, 2: 0}, cpu.MakeR(cpu.OP_OP, 5, 0x01, 3, 1, 2), 3, -1},
		{"rem", 0, map[uint8]int32{1: -7, 2: 2}, cpu.MakeR(cpu.OP_OP, 6, 0x01, 3, 1, 2), 3, -1},
		{"rem-zero", 0, map[uint8]int32{1: 17, 2: 0}, cpu.MakeR(cpu.OP_OP, 6, 0x01, 3, 1, 2), 3, 17},
		{"rem-overflow", 0, map[uint8]int32{1: math.MinInt32, 2: -1}, cpu.MakeR(cpu.OP_OP, 6, 0x01, 3, 1, 2), 3, 0},
		{"remu", 0, map[uint8]int32{1: 7, 2: 3}, cpu.MakeR(cpu.OP_OP, 7, 0x01, 3, 1, 2), 3, 1},
		{"remu-zero", 0, map[uint8]int32{1: 17, 2: 0}, cpu.MakeR(cpu.OP_OP, 7, 0x01, 3, 1, 2), 3, 17},
		{"x0-discard", 0, nil, cpu.MakeI(cpu.OP_OP_IMM, 0, 0, 0, 5), 0, 0},
	}

	for _, entry := range table {
		t.Run(entry.name, func(t *testing.T) {
			assert := assert.New(t)

			engine := newCpu(t, nil)
			loadWords(t, engine, entry.pc, entry.word)
			engine.Pc = entry.pc
			for r, value := range entry.regs {
				engine.Register[r] = value
			}

			assert.NoError(engine.Step())
			assert.Equal(entry.expect, engine.Register[entry.rd])
			assert.Equal(entry.pc+4, engine.Pc)
			assert.Equal(int32(0), engine.Register[0])
			assert.False(engine.Halt)
		})
	}
}

func TestAddiSequence(t *testing.T) {
	assert := assert.New(t)

	engine := newCpu(t, nil)
	loadWords(t, engine, 0,
		cpu.MakeI(cpu.OP_OP_IMM, 0, 5, 0, 5),  // addi x5, x0, 5
		cpu.MakeI(cpu.OP_OP_IMM, 0, 6, 5, 10), // addi x6, x5, 10
	)

	assert.NoError(engine.Step())
	assert.NoError(engine.Step())
	assert.Equal(int32(5), engine.Register[5])
	assert.Equal(int32(15), engine.Register[6])
	assert.Equal(uint32(8), engine.Pc)
}

func TestBranch(t *testing.T) {
	table := [...]struct {
		name   string
		funct3 uint8
		taken  bool
	}{
		{"beq", 0, false},
		{"bne", 1, true},
		{"blt", 4, true},
		{"bge", 5, false},
		{"bltu", 6, false},
		{"bgeu", 7, true},
	}

	for _, entry := range table {
		t.Run(entry.name, func(t *testing.T) {
			assert := assert.New(t)

			engine := newCpu(t, nil)
			engine.Pc = 0x10
			engine.Register[1] = -1
			engine.Register[2] = 1
			loadWords(t, engine, 0x10, cpu.MakeB(cpu.OP_BRANCH, entry.funct3, 1, 2, -8))

			assert.NoError(engine.Step())
			if entry.taken {
				assert.Equal(uint32(0x08), engine.Pc)
			} else {
				assert.Equal(uint32(0x14), engine.Pc)
			}
		})
	}

	assert := assert.New(t)

	// beq x1, x1, 8
	engine := newCpu(t, nil)
	loadWords(t, engine, 0, cpu.MakeB(cpu.OP_BRANCH, 0, 1, 1, 8))
	assert.NoError(engine.Step())
	assert.Equal(uint32(8), engine.Pc)
}

func TestJump(t *testing.T) {
	assert := assert.New(t)

	// jal x1, 0 at pc=100
	engine := newCpu(t, nil)
	engine.Pc = 100
	loadWords(t, engine, 100, cpu.MakeJ(cpu.OP_JAL, 1, 0))
	assert.NoError(engine.Step())
	assert.Equal(int32(104), engine.Register[1])
	assert.Equal(uint32(100), engine.Pc)

	// jal backwards
	engine = newCpu(t, nil)
	engine.Pc = 0x40
	loadWords(t, engine, 0x40, cpu.MakeJ(cpu.OP_JAL, 1, -0x40))
	assert.NoError(engine.Step())
	assert.Equal(int32(0x44), engine.Register[1])
	assert.Equal(uint32(0), engine.Pc)

	// jalr clears bit 0 of the target.
	engine = newCpu(t, nil)
	engine.Register[5] = 0x101
	loadWords(t, engine, 0, cpu.MakeI(cpu.OP_JALR, 0, 1, 5, 2))
	assert.NoError(engine.Step())
	assert.Equal(int32(4), engine.Register[1])
	assert.Equal(uint32(0x102), engine.Pc)

	// jalr with rd == rs1 uses the old rs1.
	engine = newCpu(t, nil)
	engine.Register[5] = 0x40
	loadWords(t, engine, 0, cpu.MakeI(cpu.OP_JALR, 0, 5, 5, 0))
	assert.NoError(engine.Step())
	assert.Equal(int32(4), engine.Register[5])
	assert.Equal(uint32(0x40), engine.Pc)
}

func TestLoadStore(t *testing.T) {
	assert := assert.New(t)

	engine := newCpu(t, nil)
	engine.Register[1] = 0x200
	engine.Register[2] = int32(-0x21524111) // 0xdeadbeef
	loadWords(t, engine, 0,
		cpu.MakeS(cpu.OP_STORE, 2, 1, 2, 0),     // sw x2, 0(x1)
		cpu.MakeI(cpu.OP_LOAD, 2, 3, 1, 0),      // lw x3, 0(x1)
		cpu.MakeI(cpu.OP_LOAD, 0, 4, 1, 3),      // lb x4, 3(x1)
		cpu.MakeI(cpu.OP_LOAD, 4, 5, 1, 3),      // lbu x5, 3(x1)
		cpu.MakeI(cpu.OP_LOAD, 1, 6, 1, 2),      // lh x6, 2(x1)
		cpu.MakeI(cpu.OP_LOAD, 5, 7, 1, 2),      // lhu x7, 2(x1)
		cpu.MakeS(cpu.OP_STORE, 0, 1, 2, 8),     // sb x2, 8(x1)
		cpu.MakeS(cpu.OP_STORE, 1, 1, 2, 12),    // sh x2, 12(x1)
		cpu.MakeI(cpu.OP_LOAD, 2, 8, 1, -0x1fc), // lw x8, -508(x1)
	)

	steps, err := engine.Run(9)
	assert.NoError(err)
	assert.Equal(9, steps)

	data, err := engine.Memory.Read(0x200, 16)
	assert.NoError(err)
	assert.Equal([]byte{
		0xef, 0xbe, 0xad, 0xde,
		0, 0, 0, 0,
		0xef, 0, 0, 0,
		0xef, 0xbe, 0, 0,
	}, data)

	assert.Equal(uint32(0xdeadbeef), uint32(engine.Register[3]))
	assert.Equal(int32(-34), engine.Register[4])
	assert.Equal(int32(0xde), engine.Register[5])
	assert.Equal(int32(-8531), engine.Register[6])
	assert.Equal(int32(0xdead), engine.Register[7])
	// Word 1 of the program, at 0x004.
	assert.Equal(uint32(cpu.MakeI(cpu.OP_LOAD, 2, 3, 1, 0)), uint32(engine.Register[8]))
	assert.Equal(uint32(36), engine.Pc)
}

func TestLoadStoreBounds(t *testing.T) {
	assert := assert.New(t)

	engine := newCpu(t, nil)
	engine.Register[1] = 4094
	engine.Register[2] = 0x12345678
	engine.Register[3] = 99
	loadWords(t, engine, 0,
		cpu.MakeI(cpu.OP_LOAD, 2, 3, 1, 0), // lw x3, 0(x1)
	)

	err := engine.Step()
	assert.ErrorIs(err, cpu.ErrMemoryBounds)
	var bounds *cpu.ErrBounds
	if assert.ErrorAs(err, &bounds) {
		assert.Equal(uint32(4094), bounds.Address)
		assert.Equal(4, bounds.Size)
		assert.Equal(4096, bounds.Limit)
	}
	assert.Equal(int32(99), engine.Register[3])
	assert.Equal(uint32(0), engine.Pc)

	loadWords(t, engine, 0,
		cpu.MakeS(cpu.OP_STORE, 2, 1, 2, 0), // sw x2, 0(x1)
	)
	assert.ErrorIs(engine.Step(), cpu.ErrMemoryBounds)
	data, err := engine.Memory.Read(4092, 4)
	assert.NoError(err)
	assert.Equal([]byte{0, 0, 0, 0}, data)
	assert.Equal(uint32(0), engine.Pc)

	// A halfword fits exactly at the end of memory.
	loadWords(t, engine, 0,
		cpu.MakeS(cpu.OP_STORE, 1, 1, 2, 0), // sh x2, 0(x1)
	)
	assert.NoError(engine.Step())
	data, err = engine.Memory.Read(4094, 2)
	assert.NoError(err)
	assert.Equal([]byte{0x78, 0x56}, data)
}

func TestSystem(t *testing.T) {
	assert := assert.New(t)

	var sink bytes.Buffer
	engine := newCpu(t, &sink)
	loadWords(t, engine, 0,
		cpu.MakeI(cpu.OP_MISC_MEM, 0, 0, 0, 0),  // fence
		cpu.MakeI(cpu.OP_OP_IMM, 0, 10, 0, -42), // addi a0, x0, -42
		cpu.MakeI(cpu.OP_OP_IMM, 0, 17, 0, 1),   // addi a7, x0, 1
		cpu.MakeI(cpu.OP_SYSTEM, 0, 0, 0, 0),    // ecall
		cpu.MakeI(cpu.OP_OP_IMM, 0, 17, 0, 10),  // addi a7, x0, 10
		cpu.MakeI(cpu.OP_SYSTEM, 0, 0, 0, 0),    // ecall
		cpu.MakeI(cpu.OP_OP_IMM, 0, 5, 0, 1),    // never reached
	)

	steps, err := engine.Run(cpu.RUN_FOREVER)
	assert.NoError(err)
	assert.Equal(6, steps)
	assert.True(engine.Halt)
	assert.Equal(uint32(20), engine.Pc)
	assert.Equal("-42\n", sink.String())

	// Halted is absorbing.
	assert.NoError(engine.Step())
	assert.Equal(uint32(20), engine.Pc)
	assert.Equal(int32(0), engine.Register[5])

	// Unknown environment calls leave the state alone.
	engine.Reset()
	engine.Register[17] = 99
	loadWords(t, engine, 0, cpu.MakeI(cpu.OP_SYSTEM, 0, 0, 0, 0))
	err = engine.Step()
	assert.ErrorIs(err, cpu.ErrSyscallUnknown)
	var syscall *cpu.ErrSyscall
	if assert.ErrorAs(err, &syscall) {
		assert.Equal(int32(99), syscall.Number)
		assert.Equal(uint32(0), syscall.Pc)
	}
	assert.False(engine.Halt)
	assert.Equal(uint32(0), engine.Pc)

	// ebreak halts in place.
	engine.Reset()
	loadWords(t, engine, 0, cpu.MakeI(cpu.OP_SYSTEM, 0, 0, 0, 1))
	assert.NoError(engine.Step())
	assert.True(engine.Halt)
	assert.Equal(uint32(0), engine.Pc)
}

func TestProgram(t *testing.T) {
	assert := assert.New(t)

	// Sum 10 + 9 + ... + 1, print it, and exit.
	var sink bytes.Buffer
	engine := newCpu(t, &sink)
	loadWords(t, engine, 0,
		cpu.MakeI(cpu.OP_OP_IMM, 0, 5, 0, 0),   // addi x5, x0, 0
		cpu.MakeI(cpu.OP_OP_IMM, 0, 6, 0, 10),  // addi x6, x0, 10
		cpu.MakeR(cpu.OP_OP, 0, 0, 5, 5, 6),    // loop: add x5, x5, x6
		cpu.MakeI(cpu.OP_OP_IMM, 0, 6, 6, -1),  // addi x6, x6, -1
		cpu.MakeB(cpu.OP_BRANCH, 1, 6, 0, -8),  // bne x6, x0, loop
		cpu.MakeI(cpu.OP_OP_IMM, 0, 10, 5, 0),  // addi a0, x5, 0
		cpu.MakeI(cpu.OP_OP_IMM, 0, 17, 0, 1),  // addi a7, x0, 1
		cpu.MakeI(cpu.OP_SYSTEM, 0, 0, 0, 0),   // ecall
		cpu.MakeI(cpu.OP_OP_IMM, 0, 17, 0, 10), // addi a7, x0, 10
		cpu.MakeI(cpu.OP_SYSTEM, 0, 0, 0, 0),   // ecall
	)

	steps, err := engine.Run(cpu.RUN_FOREVER)
	assert.NoError(err)
	assert.Equal(37, steps)
	assert.Equal("55\n", sink.String())
	assert.Equal(uint32(36), engine.Pc)
}

func TestDisassemble(t *testing.T) {
	table := [...]struct {
		word   cpu.Word
		expect string
	}{
		{cpu.MakeR(cpu.OP_OP, 0, 0x00, 3, 1, 2), "add x3, x1, x2"},
		{cpu.MakeR(cpu.OP_OP, 0, 0x20, 3, 1, 2), "sub x3, x1, x2"},
		{cpu.MakeR(cpu.OP_OP, 0, 0x01, 3, 1, 2), "mul x3, x1, x2"},
		{cpu.MakeI(cpu.OP_OP_IMM, 0, 5, 0, -1), "addi x5, x0, -1"},
		{cpu.MakeR(cpu.OP_OP_IMM, 1, 0x00, 3, 1, 4), "slli x3, x1, 4"},
		{cpu.MakeR(cpu.OP_OP_IMM, 5, 0x00, 3, 1, 4), "srli x3, x1, 4"},
		{cpu.MakeR(cpu.OP_OP_IMM, 5, 0x20, 3, 1, 4), "srai x3, x1, 4"},
		{cpu.MakeI(cpu.OP_LOAD, 2, 3, 1, -4), "lw x3, -4(x1)"},
		{cpu.MakeS(cpu.OP_STORE, 2, 1, 2, 8), "sw x2, 8(x1)"},
		{cpu.MakeB(cpu.OP_BRANCH, 0, 1, 1, 8), "beq x1, x1, 8"},
		{cpu.MakeJ(cpu.OP_JAL, 1, -16), "jal x1, -16"},
		{cpu.MakeI(cpu.OP_JALR, 0, 0, 1, 0), "jalr x0, x1, 0"},
		{cpu.MakeU(cpu.OP_LUI, 3, 0x12345000), "lui x3, 0x12345"},
		{cpu.MakeU(cpu.OP_AUIPC, 3, 0x1000), "auipc x3, 0x1"},
		{cpu.MakeI(cpu.OP_MISC_MEM, 0, 0, 0, 0), "fence"},
		{cpu.MakeI(cpu.OP_SYSTEM, 0, 0, 0, 0), "ecall"},
		{cpu.MakeI(cpu.OP_SYSTEM, 0, 0, 0, 1), "ebreak"},
		{0, "<unknown 0x00000000>"},
		// Shift immediates require a valid funct7.
		{cpu.MakeR(cpu.OP_OP_IMM, 1, 0x01, 3, 1, 4), "<unknown 0x02409193>"},
	}

	engine := newCpu(t, nil)
	for _, entry := range table {
		t.Run(entry.expect, func(t *testing.T) {
			assert.Equal(t, entry.expect, engine.Disassemble(entry.word))
		})
	}
}

func FuzzStep(f *testing.F) {
	f.Add(uint32(0x00500293), int32(0), int32(0))  // addi x5, x0, 5
	f.Add(uint32(0x0220c1b3), int32(17), int32(0)) // div x3, x1, x2
	f.Add(uint32(0x0000a183), int32(-4), int32(0)) // lw x3, 0(x1)
	f.Add(uint32(0x00000073), int32(0), int32(99)) // ecall

	f.Fuzz(func(t *testing.T, word uint32, x1 int32, x2 int32) {
		var sink bytes.Buffer
		engine := newCpu(t, &sink)
		loadWords(t, engine, 0, cpu.Word(word))
		engine.Register[1] = x1
		engine.Register[2] = x2
		engine.Register[17] = x2
		before := engine.State.Register

		err := engine.Step()
		assert.Equal(t, int32(0), engine.Register[0])
		if err != nil {
			assert.Equal(t, before, engine.Register)
			assert.Equal(t, uint32(0), engine.Pc)
			assert.False(t, engine.Halt)
		}

		// Disassembly never fails.
		assert.NotEmpty(t, engine.Disassemble(cpu.Word(word)))
	})
}
