package cpu

// Opcode is a 7-bit RV32 major opcode.
type Opcode uint8

//go:generate go tool stringer -linecomment -type=Opcode
const (
	OP_LOAD     = Opcode(0b0000011) // load
	OP_MISC_MEM = Opcode(0b0001111) // misc-mem
	OP_OP_IMM   = Opcode(0b0010011) // op-imm
	OP_AUIPC    = Opcode(0b0010111) // auipc
	OP_STORE    = Opcode(0b0100011) // store
	OP_OP       = Opcode(0b0110011) // op
	OP_LUI      = Opcode(0b0110111) // lui
	OP_BRANCH   = Opcode(0b1100011) // branch
	OP_JALR     = Opcode(0b1100111) // jalr
	OP_JAL      = Opcode(0b1101111) // jal
	OP_SYSTEM   = Opcode(0b1110011) // system
)

// Valid returns true if the opcode fits 7 bits and has the 32-bit
// instruction length marker (low two bits set).
func (op Opcode) Valid() bool {
	return op < 0x80 && (op&0b11) == 0b11
}

// ABI register numbers used by the environment call convention.
const (
	REG_ZERO = 0  // x0, hardwired zero
	REG_RA   = 1  // x1, return address
	REG_SP   = 2  // x2, stack pointer
	REG_A0   = 10 // x10, first argument
	REG_A7   = 17 // x17, syscall number
)
