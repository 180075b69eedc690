package asm

import (
	"errors"

	"github.com/edu-vm/uvm/translate"
)

var f = translate.From

var (
	ErrEquateSyntax    = errors.New(f(".equ syntax"))
	ErrEquateDuplicate = errors.New(f(".equ duplicated"))
)

// ErrUnknownOpcode is a mnemonic that names no instruction.
type ErrUnknownOpcode string

func (err ErrUnknownOpcode) Error() string {
	return f("unknown opcode '%v'", string(err))
}

// ErrParseNumber is an operand token that is not an unsigned integer
// fitting an operand field.
type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not an unsigned integer", string(err))
}

// ErrParseExpression is a $() expression that failed to evaluate.
type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

// ErrSyntax attributes a diagnostic to its source line.
type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err *ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err *ErrSyntax) Unwrap() error {
	return err.Err
}
