package cpu

import (
	"fmt"
)

// Word is a raw 32-bit instruction word.
type Word uint32

// Fields holds every bit-field of a Word, decoded for all formats at once.
type Fields struct {
	Opcode  Opcode
	Funct3  uint8
	Funct7  uint8
	Funct12 uint16

	Rd  uint8
	Rs1 uint8
	Rs2 uint8

	ImmI int32
	ImmS int32
	ImmB int32
	ImmU uint32
	ImmJ int32
}

// Opcode returns bits 6:0.
func (w Word) Opcode() Opcode {
	return Opcode(w & 0x7f)
}

// Rd returns bits 11:7.
func (w Word) Rd() uint8 {
	return uint8((w >> 7) & 0x1f)
}

// Funct3 returns bits 14:12.
func (w Word) Funct3() uint8 {
	return uint8((w >> 12) & 0x7)
}

// Rs1 returns bits 19:15.
func (w Word) Rs1() uint8 {
	return uint8((w >> 15) & 0x1f)
}

// Rs2 returns bits 24:20. The shift-immediate instructions read their
// shift amount from this field.
func (w Word) Rs2() uint8 {
	return uint8((w >> 20) & 0x1f)
}

// Funct7 returns bits 31:25.
func (w Word) Funct7() uint8 {
	return uint8((w >> 25) & 0x7f)
}

// Funct12 returns bits 31:20.
func (w Word) Funct12() uint16 {
	return uint16((w >> 20) & 0xfff)
}

// ImmI returns the sign-extended 12-bit I-type immediate.
func (w Word) ImmI() int32 {
	return SignExtend(uint32(w)>>20, 12)
}

// ImmS returns the sign-extended 12-bit S-type immediate.
func (w Word) ImmS() int32 {
	imm := ((uint32(w) >> 7) & 0x1f) |
		((uint32(w) >> 25) << 5)
	return SignExtend(imm, 12)
}

// ImmB returns the sign-extended 13-bit B-type branch offset.
func (w Word) ImmB() int32 {
	imm := (((uint32(w) >> 8) & 0xf) << 1) |
		(((uint32(w) >> 25) & 0x3f) << 5) |
		(((uint32(w) >> 7) & 0x1) << 11) |
		(((uint32(w) >> 31) & 0x1) << 12)
	return SignExtend(imm, 13)
}

// ImmU returns the U-type immediate, already in bits 31:12.
func (w Word) ImmU() uint32 {
	return uint32(w) & 0xfffff000
}

// ImmJ returns the sign-extended 21-bit J-type jump offset.
func (w Word) ImmJ() int32 {
	imm := (((uint32(w) >> 21) & 0x3ff) << 1) |
		(((uint32(w) >> 20) & 0x1) << 11) |
		(((uint32(w) >> 12) & 0xff) << 12) |
		(((uint32(w) >> 31) & 0x1) << 20)
	return SignExtend(imm, 21)
}

// Decode returns all fields of the word.
func (w Word) Decode() Fields {
	return Fields{
		Opcode:  w.Opcode(),
		Funct3:  w.Funct3(),
		Funct7:  w.Funct7(),
		Funct12: w.Funct12(),
		Rd:      w.Rd(),
		Rs1:     w.Rs1(),
		Rs2:     w.Rs2(),
		ImmI:    w.ImmI(),
		ImmS:    w.ImmS(),
		ImmB:    w.ImmB(),
		ImmU:    w.ImmU(),
		ImmJ:    w.ImmJ(),
	}
}

// String returns the word as hex.
func (w Word) String() string {
	return fmt.Sprintf("0x%08x", uint32(w))
}

// MakeR encodes an R-type instruction.
func MakeR(op Opcode, funct3, funct7 uint8, rd, rs1, rs2 uint8) Word {
	return Word(uint32(op)&0x7f |
		uint32(rd&0x1f)<<7 |
		uint32(funct3&0x7)<<12 |
		uint32(rs1&0x1f)<<15 |
		uint32(rs2&0x1f)<<20 |
		uint32(funct7&0x7f)<<25)
}

// MakeI encodes an I-type instruction. Only the low 12 bits of imm are kept.
func MakeI(op Opcode, funct3 uint8, rd, rs1 uint8, imm int32) Word {
	return Word(uint32(op)&0x7f |
		uint32(rd&0x1f)<<7 |
		uint32(funct3&0x7)<<12 |
		uint32(rs1&0x1f)<<15 |
		(uint32(imm)&0xfff)<<20)
}

// MakeS encodes an S-type instruction.
func MakeS(op Opcode, funct3 uint8, rs1, rs2 uint8, imm int32) Word {
	u := uint32(imm)
	return Word(uint32(op)&0x7f |
		(u&0x1f)<<7 |
		uint32(funct3&0x7)<<12 |
		uint32(rs1&0x1f)<<15 |
		uint32(rs2&0x1f)<<20 |
		((u>>5)&0x7f)<<25)
}

// MakeB encodes a B-type instruction. Bit 0 of imm is dropped.
func MakeB(op Opcode, funct3 uint8, rs1, rs2 uint8, imm int32) Word {
	u := uint32(imm)
	return Word(uint32(op)&0x7f |
		((u>>11)&0x1)<<7 |
		((u>>1)&0xf)<<8 |
		uint32(funct3&0x7)<<12 |
		uint32(rs1&0x1f)<<15 |
		uint32(rs2&0x1f)<<20 |
		((u>>5)&0x3f)<<25 |
		((u>>12)&0x1)<<31)
}

// MakeU encodes a U-type instruction. imm is given already in bits 31:12.
func MakeU(op Opcode, rd uint8, imm uint32) Word {
	return Word(uint32(op)&0x7f |
		uint32(rd&0x1f)<<7 |
		imm&0xfffff000)
}

// MakeJ encodes a J-type instruction. Bit 0 of imm is dropped.
func MakeJ(op Opcode, rd uint8, imm int32) Word {
	u := uint32(imm)
	return Word(uint32(op)&0x7f |
		uint32(rd&0x1f)<<7 |
		((u>>12)&0xff)<<12 |
		((u>>11)&0x1)<<20 |
		((u>>1)&0x3ff)<<21 |
		((u>>20)&0x1)<<31)
}
