// Package asm is a single pass macro assembler for RV32 source text.
//
// Source is one instruction per line. Operands are separated by commas or
// spaces; ';' and '#' start a comment. A line may carry any number of
// leading 'label:' definitions.
//
// Directives:
//
//	.equ NAME VALUE       define an equate
//	.word VALUE...        emit literal words
//	.macro NAME ARG...    begin a macro; '@' in its body expands to a
//	.endm                 unique prefix per expansion
//
// Numbers use Go literal syntax (0x, 0b, 0o, '_' separators), may be
// inverted with a leading '~', and 'c' is a character value. $(EXPR) is
// evaluated at assembly time as a starlark expression over the integer
// equates and the labels defined so far.
//
// Instruction mnemonics are learned from the behaviors of the cpu
// extensions; the operand syntax follows the instruction format. The
// pseudo-instructions nop, mv, li, la, not, neg, seqz, snez, beqz, bnez,
// bgt, ble, bgtu, bleu, j, jr, ret and call are also accepted.
package asm
