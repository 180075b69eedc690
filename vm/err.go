package vm

import (
	"errors"

	"github.com/edu-vm/uvm/translate"
)

var f = translate.From

var (
	// Machine configuration errors
	ErrConfigRegisters = errors.New(f("register count must be positive"))
	ErrConfigMemory    = errors.New(f("memory size must be positive"))

	// Runtime faults
	ErrRegisterRange    = errors.New(f("register out of range"))
	ErrAddressRange     = errors.New(f("address out of range"))
	ErrNegativeExponent = errors.New(f("negative exponent"))
	ErrOverflow         = errors.New(f("overflow"))
	ErrDecode           = errors.New(f("decode"))
	ErrTruncated        = errors.New(f("truncated instruction record"))
)

// ErrOpcode is an unknown opcode tag.
type ErrOpcode byte

func (eo ErrOpcode) Error() string {
	return f("unknown opcode %d", byte(eo))
}

func (eo ErrOpcode) Is(err error) (ok bool) {
	_, ok = err.(ErrOpcode)
	return
}

// ErrArity is an operand count mismatch against the instruction table.
type ErrArity struct {
	Op       Op
	Expected int
	Got      int
}

func (err *ErrArity) Error() string {
	return f("%v expects %d operands, got %d", err.Op, err.Expected, err.Got)
}

// Fault reports a runtime fault together with the program counter at fault
// time. Machine state is as of the last completed instruction.
type Fault struct {
	Pc  int
	Err error
}

func (err *Fault) Error() string {
	return f("pc %d %v", err.Pc, err.Err)
}

func (err *Fault) Unwrap() error {
	return err.Err
}
