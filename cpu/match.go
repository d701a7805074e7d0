package cpu

import (
	"fmt"
	"strings"
)

// Field selects which funct fields of a Match are significant.
type Field uint8

const (
	FIELD_FUNCT3  = Field(1 << 0) // funct3, bits 14:12
	FIELD_FUNCT7  = Field(1 << 1) // funct7, bits 31:25
	FIELD_FUNCT12 = Field(1 << 2) // funct12, bits 31:20
)

// Match is the dispatch key of a behavior: an opcode plus the required
// values of the selected funct fields. It never looks at register indices
// or immediates.
type Match struct {
	Opcode  Opcode
	Fields  Field
	Funct3  uint8
	Funct7  uint8
	Funct12 uint16
}

// MatchOpcode matches on the opcode alone (lui, auipc, jal).
func MatchOpcode(op Opcode) Match {
	return Match{Opcode: op}
}

// MatchFunct3 matches on opcode and funct3.
func MatchFunct3(op Opcode, funct3 uint8) Match {
	return Match{Opcode: op, Fields: FIELD_FUNCT3, Funct3: funct3}
}

// MatchFunct7 matches on opcode, funct3 and funct7.
func MatchFunct7(op Opcode, funct3, funct7 uint8) Match {
	return Match{Opcode: op, Fields: FIELD_FUNCT3 | FIELD_FUNCT7, Funct3: funct3, Funct7: funct7}
}

// MatchFunct12 matches on opcode, funct3 and funct12.
func MatchFunct12(op Opcode, funct3 uint8, funct12 uint16) Match {
	return Match{Opcode: op, Fields: FIELD_FUNCT3 | FIELD_FUNCT12, Funct3: funct3, Funct12: funct12}
}

// Validate checks that the match key describes encodable fields.
func (m Match) Validate() (err error) {
	switch {
	case !m.Opcode.Valid():
		err = ErrMatchOpcode
	case m.Funct3 > 0x7 || m.Funct7 > 0x7f || m.Funct12 > 0xfff:
		err = ErrMatchField
	case m.Fields&(FIELD_FUNCT7|FIELD_FUNCT12) == (FIELD_FUNCT7|FIELD_FUNCT12) &&
		uint8(m.Funct12>>5) != m.Funct7:
		err = ErrMatchOverlap
	}

	return
}

// Key returns the instruction word mask and value the match selects.
func (m Match) Key() (mask, value uint32) {
	mask = 0x7f
	value = uint32(m.Opcode) & 0x7f

	if m.Fields&FIELD_FUNCT3 != 0 {
		mask |= 0x7 << 12
		value |= uint32(m.Funct3&0x7) << 12
	}
	if m.Fields&FIELD_FUNCT7 != 0 {
		mask |= 0x7f << 25
		value |= uint32(m.Funct7&0x7f) << 25
	}
	if m.Fields&FIELD_FUNCT12 != 0 {
		mask |= 0xfff << 20
		value |= uint32(m.Funct12&0xfff) << 20
	}

	return
}

// Matches returns true if the word selects this key.
func (m Match) Matches(w Word) bool {
	mask, value := m.Key()
	return uint32(w)&mask == value
}

// Overlaps returns true if some instruction word matches both keys.
func (m Match) Overlaps(other Match) bool {
	am, av := m.Key()
	bm, bv := other.Key()
	return (av^bv)&am&bm == 0
}

// String returns the key as opcode[.funct3][.funct7][.funct12].
func (m Match) String() string {
	parts := []string{m.Opcode.String()}
	if m.Fields&FIELD_FUNCT3 != 0 {
		parts = append(parts, fmt.Sprintf("f3=%03b", m.Funct3))
	}
	if m.Fields&FIELD_FUNCT7 != 0 {
		parts = append(parts, fmt.Sprintf("f7=%07b", m.Funct7))
	}
	if m.Fields&FIELD_FUNCT12 != 0 {
		parts = append(parts, fmt.Sprintf("f12=0x%03x", m.Funct12))
	}
	return strings.Join(parts, ".")
}
