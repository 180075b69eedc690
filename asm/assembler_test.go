package asm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/edu-vm/uvm/vm"
)

func parse(t *testing.T, lines ...string) (*Listing, error) {
	t.Helper()
	asm := &Assembler{}
	return asm.Parse(strings.NewReader(strings.Join(lines, "\n")))
}

func TestAssemblerEmpty(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	listing, err := asm.Parse(strings.NewReader(""))
	assert.NoError(err)
	assert.Equal(0, len(listing.Lines))
	assert.Equal("0", asm.Equate["LINENO"])
}

func TestAssemblerProgram(t *testing.T) {
	assert := assert.New(t)

	listing, err := parse(t,
		"# store 300 at MEM[400], then read it back",
		"",
		"LOAD_CONST,0,300",
		"WRITE_MEM , 0 , 400",
		"  # indented comment",
		"READ_MEM,0,1,0",
		"POW,0,2,10,1",
	)
	assert.NoError(err)

	expected := []vm.Instruction{
		{Op: vm.LOAD_CONST, Args: []uint32{0, 300}},
		{Op: vm.WRITE_MEM, Args: []uint32{0, 400}},
		{Op: vm.READ_MEM, Args: []uint32{0, 1, 0}},
		{Op: vm.POW, Args: []uint32{0, 2, 10, 1}},
	}
	assert.Equal(expected, listing.Program().Instructions)

	// Comments and blank lines consume no address.
	assert.Equal(3, listing.Lines[0].LineNo)
	assert.Equal(4, listing.Lines[1].LineNo)
	assert.Equal(6, listing.Lines[2].LineNo)
	assert.Equal(7, listing.Lines[3].LineNo)
	assert.Equal(6, listing.LineAt(2))
	assert.Equal(0, listing.LineAt(99))
}

func TestAssemblerArity(t *testing.T) {
	assert := assert.New(t)

	listing, err := parse(t, "READ_MEM,0,1")
	assert.Nil(listing)

	var syntax *ErrSyntax
	if assert.ErrorAs(err, &syntax) {
		assert.Equal(1, syntax.LineNo)
	}

	var arity *vm.ErrArity
	if assert.ErrorAs(err, &arity) {
		assert.Equal(3, arity.Expected)
		assert.Equal(2, arity.Got)
	}

	_, err = parse(t, "LOAD_CONST,0,1,2")
	if assert.ErrorAs(err, &arity) {
		assert.Equal(2, arity.Expected)
		assert.Equal(3, arity.Got)
	}
}

func TestAssemblerSyntax(t *testing.T) {
	assert := assert.New(t)

	listing, err := parse(t, "LOAD_CONST,0,-")
	assert.Nil(listing)
	assert.ErrorIs(err, ErrParseNumber("-"))

	_, err = parse(t, "LOAD_CONST,0,4294967296")
	assert.ErrorIs(err, ErrParseNumber("4294967296"))

	_, err = parse(t, "MOV,1,2")
	assert.ErrorIs(err, ErrUnknownOpcode("MOV"))

	// Mnemonics are case-sensitive.
	_, err = parse(t, "load_const,0,1")
	assert.ErrorIs(err, ErrUnknownOpcode("load_const"))
}

func TestAssemblerAtomic(t *testing.T) {
	assert := assert.New(t)

	listing, err := parse(t,
		"LOAD_CONST,0,1",
		"LOAD_CONST,1,2",
		"READ_MEM,0",
	)
	assert.Nil(listing)

	var syntax *ErrSyntax
	if assert.ErrorAs(err, &syntax) {
		assert.Equal(3, syntax.LineNo)
	}
}

func TestAssemblerEquate(t *testing.T) {
	assert := assert.New(t)

	listing, err := parse(t,
		".equ BASE 400",
		"LOAD_CONST,0,300",
		"WRITE_MEM,0,BASE",
	)
	assert.NoError(err)

	expected := []vm.Instruction{
		{Op: vm.LOAD_CONST, Args: []uint32{0, 300}},
		{Op: vm.WRITE_MEM, Args: []uint32{0, 400}},
	}
	assert.Equal(expected, listing.Program().Instructions)

	_, err = parse(t, ".equ BASE 400", ".equ BASE 500")
	assert.ErrorIs(err, ErrEquateDuplicate)

	_, err = parse(t, ".equ BASE")
	assert.ErrorIs(err, ErrEquateSyntax)
}

func TestAssemblerExpression(t *testing.T) {
	assert := assert.New(t)

	listing, err := parse(t,
		".equ BASE 400",
		"LOAD_CONST,0,$(BASE + 1)",
		"WRITE_MEM,0,$(2 ** 8)",
	)
	assert.NoError(err)

	expected := []vm.Instruction{
		{Op: vm.LOAD_CONST, Args: []uint32{0, 401}},
		{Op: vm.WRITE_MEM, Args: []uint32{0, 256}},
	}
	assert.Equal(expected, listing.Program().Instructions)

	listing, err = parse(t, "LOAD_CONST,0,$(nope)")
	assert.Nil(listing)
	assert.Error(err)
}

func TestAssemblerPredefine(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	asm.Predefine("SIZE", "16")

	listing, err := asm.Parse(strings.NewReader("WRITE_MEM,0,SIZE"))
	assert.NoError(err)
	assert.Equal([]uint32{0, 16}, listing.Lines[0].Instr.Args)
}

func TestAssembleRoundTrip(t *testing.T) {
	assert := assert.New(t)

	source := strings.Join([]string{
		"LOAD_CONST,0,300",
		"WRITE_MEM,0,400",
		"READ_MEM,0,1,0",
		"POW,0,2,10,1",
	}, "\n")

	bin, err := Assemble(strings.NewReader(source))
	assert.NoError(err)

	decoded, err := vm.Decode(bin)
	assert.NoError(err)

	listing, err := parse(t, source)
	assert.NoError(err)
	assert.Equal(listing.Program().Instructions, decoded.Instructions)
}
