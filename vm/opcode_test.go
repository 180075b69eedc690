package vm

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpTable(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		op    Op
		name  string
		arity int
	}){
		{LOAD_CONST, "LOAD_CONST", 2},
		{READ_MEM, "READ_MEM", 3},
		{WRITE_MEM, "WRITE_MEM", 2},
		{POW, "POW", 4},
	}

	for _, entry := range table {
		assert.True(entry.op.Valid(), entry.name)
		assert.Equal(entry.name, entry.op.String())
		assert.Equal(entry.arity, entry.op.Arity(), entry.name)

		op, ok := OpByName(entry.name)
		assert.True(ok, entry.name)
		assert.Equal(entry.op, op)
	}

	assert.False(Op(0).Valid())

	// Mnemonics are case-sensitive.
	_, ok := OpByName("load_const")
	assert.False(ok)
}

func TestInstructionValidate(t *testing.T) {
	assert := assert.New(t)

	for _, op := range []Op{LOAD_CONST, READ_MEM, WRITE_MEM, POW} {
		args := make([]uint32, op.Arity())
		assert.NoError(Instruction{Op: op, Args: args}.Validate(), op.String())

		short := Instruction{Op: op, Args: args[:op.Arity()-1]}
		var arity *ErrArity
		if assert.ErrorAs(short.Validate(), &arity, op.String()) {
			assert.Equal(op.Arity(), arity.Expected)
			assert.Equal(op.Arity()-1, arity.Got)
		}

		long := Instruction{Op: op, Args: append(slices.Clone(args), 0)}
		if assert.ErrorAs(long.Validate(), &arity, op.String()) {
			assert.Equal(op.Arity()+1, arity.Got)
		}
	}

	assert.ErrorIs(Instruction{Op: Op(3)}.Validate(), ErrOpcode(3))
}

func TestRecordLayout(t *testing.T) {
	assert := assert.New(t)

	// Tag byte, then 4-byte little-endian operand fields.
	in := Instruction{Op: LOAD_CONST, Args: []uint32{1, 0x01020304}}
	assert.Equal([]byte{13, 1, 0, 0, 0, 0x04, 0x03, 0x02, 0x01}, in.Encode(nil))
	assert.Equal(9, in.Size())

	assert.Equal("LOAD_CONST,0,300", Instruction{Op: LOAD_CONST, Args: []uint32{0, 300}}.String())
}

func TestProgramRoundTrip(t *testing.T) {
	assert := assert.New(t)

	prog := &Program{
		Instructions: []Instruction{
			{LOAD_CONST, []uint32{0, 300}},
			{WRITE_MEM, []uint32{0, 400}},
			{READ_MEM, []uint32{0, 1, 0}},
			{POW, []uint32{0, 2, 10, 1}},
		},
	}

	bin := prog.Binary()
	assert.Equal(9+9+13+17, len(bin))

	decoded, err := Decode(bin)
	assert.NoError(err)
	assert.Equal(prog.Instructions, decoded.Instructions)

	var addrs []int
	for n, in := range decoded.Steps() {
		addrs = append(addrs, n)
		assert.NotZero(in.Op)
	}
	assert.Equal([]int{0, 1, 2, 3}, addrs)
}

func TestDecodeErrors(t *testing.T) {
	assert := assert.New(t)

	_, _, err := DecodeInstruction([]byte{0xff})
	assert.ErrorIs(err, ErrOpcode(0xff))

	_, _, err = DecodeInstruction([]byte{byte(LOAD_CONST), 1, 2})
	assert.ErrorIs(err, ErrTruncated)

	_, _, err = DecodeInstruction(nil)
	assert.ErrorIs(err, ErrTruncated)

	_, err = Decode([]byte{byte(WRITE_MEM), 0, 0, 0, 0})
	assert.ErrorIs(err, ErrTruncated)
}
