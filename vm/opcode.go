package vm

import (
	"encoding/binary"
	"fmt"
)

// Op is the one-byte opcode tag of an instruction record.
type Op byte

// Opcode tags, as assigned by the variant 21 instruction table.
const (
	LOAD_CONST = Op(13) // REG[B] <- C
	WRITE_MEM  = Op(15) // MEM[C] <- REG[B]
	POW        = Op(22) // REG[C] <- pow(MEM[REG[E]+D], REG[B])
	READ_MEM   = Op(26) // REG[C] <- MEM[REG[B]+D]
)

// OPERAND_SIZE is the wire width of one operand field, in bytes.
const OPERAND_SIZE = 4

// opInfo is the instruction table: mnemonic and operand count per opcode.
var opInfo = map[Op]struct {
	name  string
	arity int
}{
	LOAD_CONST: {"LOAD_CONST", 2},
	READ_MEM:   {"READ_MEM", 3},
	WRITE_MEM:  {"WRITE_MEM", 2},
	POW:        {"POW", 4},
}

// opByName maps case-sensitive mnemonics back to opcode tags.
var opByName = map[string]Op{}

func init() {
	for op, info := range opInfo {
		opByName[info.name] = op
	}
}

// Valid returns true if the tag is a member of the instruction set.
func (op Op) Valid() bool {
	_, ok := opInfo[op]
	return ok
}

// Arity returns the number of operands the opcode requires.
func (op Op) Arity() int {
	return opInfo[op].arity
}

// String returns the opcode mnemonic.
func (op Op) String() string {
	info, ok := opInfo[op]
	if !ok {
		return fmt.Sprintf("Op(%d)", byte(op))
	}

	return info.name
}

// OpByName resolves a mnemonic to its opcode tag.
func OpByName(name string) (op Op, ok bool) {
	op, ok = opByName[name]
	return
}

// Instruction is one decoded operation: an opcode tag and its operands.
type Instruction struct {
	Op   Op
	Args []uint32
}

// Validate checks the instruction against the instruction table. The
// operand count must equal the opcode's declared arity.
func (in Instruction) Validate() (err error) {
	if !in.Op.Valid() {
		err = ErrOpcode(byte(in.Op))
		return
	}

	if len(in.Args) != in.Op.Arity() {
		err = &ErrArity{Op: in.Op, Expected: in.Op.Arity(), Got: len(in.Args)}
	}

	return
}

// Size returns the encoded record length in bytes.
func (in Instruction) Size() int {
	return 1 + len(in.Args)*OPERAND_SIZE
}

// Encode appends the record encoding of the instruction: the tag byte,
// then each operand as a 4-byte little-endian field.
func (in Instruction) Encode(b []byte) []byte {
	b = append(b, byte(in.Op))
	for _, arg := range in.Args {
		b = binary.LittleEndian.AppendUint32(b, arg)
	}

	return b
}

// DecodeInstruction decodes one record from the head of b, returning the
// instruction and the number of bytes consumed. An unknown tag or a
// truncated operand field is a decode error.
func DecodeInstruction(b []byte) (in Instruction, n int, err error) {
	if len(b) == 0 {
		err = ErrTruncated
		return
	}

	op := Op(b[0])
	if !op.Valid() {
		err = ErrOpcode(b[0])
		return
	}

	size := 1 + op.Arity()*OPERAND_SIZE
	if len(b) < size {
		err = ErrTruncated
		return
	}

	in = Instruction{Op: op, Args: make([]uint32, op.Arity())}
	for i := range in.Args {
		in.Args[i] = binary.LittleEndian.Uint32(b[1+i*OPERAND_SIZE:])
	}
	n = size

	return
}

// String renders the instruction in source form.
func (in Instruction) String() (out string) {
	out = in.Op.String()
	for _, arg := range in.Args {
		out += fmt.Sprintf(",%d", arg)
	}

	return
}
