package vm

import (
	"iter"
	"slices"
)

// Program is an ordered sequence of instructions. Addresses are assigned by
// position; a program is immutable once assembled.
type Program struct {
	Instructions []Instruction
}

// Binary encodes the program as a bytecode stream, one record per
// instruction, in program order.
func (prog *Program) Binary() (bin []byte) {
	for _, in := range prog.Instructions {
		bin = in.Encode(bin)
	}

	return
}

// Steps iterates over (address, instruction) pairs in program order.
func (prog *Program) Steps() iter.Seq2[int, Instruction] {
	return func(yield func(int, Instruction) bool) {
		for n, in := range prog.Instructions {
			if !yield(n, in) {
				return
			}
		}
	}
}

// Decode reconstructs the instruction sequence of a bytecode stream. The
// stream must consist solely of well-formed records.
func Decode(bin []byte) (prog *Program, err error) {
	var ins []Instruction

	for len(bin) > 0 {
		var in Instruction
		var n int
		in, n, err = DecodeInstruction(bin)
		if err != nil {
			return
		}
		ins = append(ins, in)
		bin = bin[n:]
	}

	prog = &Program{Instructions: slices.Clip(ins)}

	return
}
