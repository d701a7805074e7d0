// Package cpu implements the decode, dispatch and execute engine of a
// single-hart RV32 interpreter.
//
// The architectural state is a register file of 32 signed 32-bit registers
// (x0 hardwired to zero), a flat little-endian byte-addressable memory, a
// program counter and a sticky halt flag.
//
// Instructions are not built into the engine. Each one is a Behavior, a
// match key over the opcode and funct fields plus execute and disassemble
// functions, and behaviors are grouped into Extensions supplied at
// construction. The engine buckets behaviors by opcode and guarantees that
// at most one of them matches any fetched word.
package cpu
