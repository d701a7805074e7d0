package cpu

import (
	"iter"
)

// Behavior is the implementation of one instruction.
//
// Execute mutates the state in place and is responsible for the program
// counter: non-branching instructions advance it by 4 themselves. It must
// return an error before changing any state if the instruction cannot
// complete.
type Behavior struct {
	Mnemonic    string
	Match       Match
	Execute     func(st *State, w Word) error
	Disassemble func(w Word) string
}

// Validate checks that the behavior is usable by the engine.
func (b *Behavior) Validate() (err error) {
	switch {
	case len(b.Mnemonic) == 0:
		err = ErrBehaviorInvalid
	case b.Execute == nil:
		err = ErrBehaviorInvalid
	case b.Disassemble == nil:
		err = ErrBehaviorInvalid
	default:
		err = b.Match.Validate()
	}

	return
}

// Extension is a named group of behaviors, the configuration unit of the
// engine.
type Extension interface {
	// Name identifies the extension in diagnostics.
	Name() string
	// Behaviors returns the behaviors of the extension, in catalog order.
	Behaviors() iter.Seq[Behavior]
}

// Definer is implemented by extensions that publish assembler equates,
// such as syscall numbers.
type Definer interface {
	Defines() iter.Seq2[string, string]
}
