package isa

import (
	"math"
)

const funct7MulDiv = 0b0000001

func mulh(a, b int32) int32 {
	return int32((int64(a) * int64(b)) >> 32)
}

func mulhsu(a, b int32) int32 {
	return int32((int64(a) * int64(uint32(b))) >> 32)
}

func mulhu(a, b int32) int32 {
	return int32((uint64(uint32(a)) * uint64(uint32(b))) >> 32)
}

func div(a, b int32) int32 {
	switch {
	case b == 0:
		return -1
	case a == math.MinInt32 && b == -1:
		return math.MinInt32
	}
	return a / b
}

func divu(a, b int32) int32 {
	if b == 0 {
		return -1
	}
	return int32(uint32(a) / uint32(b))
}

func rem(a, b int32) int32 {
	switch {
	case b == 0:
		return a
	case a == math.MinInt32 && b == -1:
		return 0
	}
	return a % b
}

func remu(a, b int32) int32 {
	if b == 0 {
		return a
	}
	return int32(uint32(a) % uint32(b))
}

// RV32M returns the integer multiply and divide instruction set.
//
// Division truncates toward zero. Division by zero yields all ones for
// div/divu and the dividend for rem/remu; it never traps.
func RV32M() *Extension {
	return New("rv32m",
		opReg("mul", 0b000, funct7MulDiv, func(a, b int32) int32 { return a * b }),
		opReg("mulh", 0b001, funct7MulDiv, mulh),
		opReg("mulhsu", 0b010, funct7MulDiv, mulhsu),
		opReg("mulhu", 0b011, funct7MulDiv, mulhu),
		opReg("div", 0b100, funct7MulDiv, div),
		opReg("divu", 0b101, funct7MulDiv, divu),
		opReg("rem", 0b110, funct7MulDiv, rem),
		opReg("remu", 0b111, funct7MulDiv, remu),
	)
}
