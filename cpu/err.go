package cpu

import (
	"errors"

	"github.com/ezrec/rvsim/translate"
)

var f = translate.From

var (
	// Configuration errors
	ErrConfig           = errors.New(f("configuration"))
	ErrMemorySize       = errors.New(f("memory size must be positive"))
	ErrExtensionInvalid = errors.New(f("extension invalid"))
	ErrBehaviorInvalid  = errors.New(f("behavior invalid"))
	ErrDispatchConflict = errors.New(f("dispatch conflict"))

	// Match key errors
	ErrMatchOpcode  = errors.New(f("opcode not a 32-bit major opcode"))
	ErrMatchField   = errors.New(f("funct value exceeds field width"))
	ErrMatchOverlap = errors.New(f("funct7 and funct12 disagree"))

	// Execution errors
	ErrMemoryBounds   = errors.New(f("memory access out of bounds"))
	ErrMemoryAccess   = errors.New(f("memory access size invalid"))
	ErrUnimplemented  = errors.New(f("unimplemented instruction"))
	ErrSyscallUnknown = errors.New(f("unimplemented syscall"))
)

// ErrBounds reports an access of Size bytes at Address that does not fit in
// a memory of Limit bytes.
type ErrBounds struct {
	Address uint32
	Size    int
	Limit   int
}

func (err *ErrBounds) Error() string {
	return f("memory access out of bounds: 0x%08x + %v > %v", err.Address, err.Size, err.Limit)
}

func (err *ErrBounds) Is(target error) bool {
	return target == ErrMemoryBounds
}

// ErrInstruction reports a fetched word that no behavior matches.
type ErrInstruction struct {
	Pc   uint32
	Word Word
}

func (err *ErrInstruction) Error() string {
	return f("unimplemented instruction 0x%08x at pc 0x%08x", uint32(err.Word), err.Pc)
}

func (err *ErrInstruction) Is(target error) bool {
	return target == ErrUnimplemented
}

// ErrSyscall reports an environment call with an unknown call number.
type ErrSyscall struct {
	Number int32
	Pc     uint32
}

func (err *ErrSyscall) Error() string {
	return f("unimplemented syscall %v at pc 0x%08x", err.Number, err.Pc)
}

func (err *ErrSyscall) Is(target error) bool {
	return target == ErrSyscallUnknown
}

// ErrBehavior reports a malformed behavior of an extension.
type ErrBehavior struct {
	Extension string
	Index     int
	Mnemonic  string
	Err       error
}

func (err *ErrBehavior) Error() string {
	return f("extension %v behavior %v (%v): %v", err.Extension, err.Index, err.Mnemonic, err.Err)
}

func (err *ErrBehavior) Unwrap() []error {
	return []error{ErrConfig, ErrBehaviorInvalid, err.Err}
}

// ErrConflict reports behaviors whose match keys overlap.
//
// At construction Word and Pc are zero; when conflicts are detected lazily
// they identify the fetched word.
type ErrConflict struct {
	Mnemonics []string
	Word      Word
	Pc        uint32
	Lazy      bool
}

func (err *ErrConflict) Error() string {
	if err.Lazy {
		return f("dispatch conflict %v on 0x%08x at pc 0x%08x", err.Mnemonics, uint32(err.Word), err.Pc)
	}
	return f("dispatch conflict %v", err.Mnemonics)
}

func (err *ErrConflict) Is(target error) bool {
	return target == ErrConfig || target == ErrDispatchConflict
}

// ErrExecute wraps a failure raised by a behavior's execute function.
type ErrExecute struct {
	Pc       uint32
	Word     Word
	Mnemonic string
	Err      error
}

func (err *ErrExecute) Error() string {
	return f("pc 0x%08x 0x%08x %v: %v", err.Pc, uint32(err.Word), err.Mnemonic, err.Err)
}

func (err *ErrExecute) Unwrap() error {
	return err.Err
}
