package asm

import (
	"bufio"
	"fmt"
	"io"
	"maps"
	"regexp"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/edu-vm/uvm/vm"
)

// Line is one assembled source line: its location, the parsed fields, and
// the instruction it produced.
type Line struct {
	LineNo int
	Fields []string
	Instr  vm.Instruction
}

// Listing is the assembler output: the accepted lines in program order,
// one instruction per line.
type Listing struct {
	Lines []Line
}

// Program builds the instruction sequence of the listing.
func (l *Listing) Program() (prog *vm.Program) {
	prog = &vm.Program{}
	for _, line := range l.Lines {
		prog.Instructions = append(prog.Instructions, line.Instr)
	}

	return
}

// LineAt maps an instruction address back to its source line number, or 0.
func (l *Listing) LineAt(pc int) int {
	if pc < 0 || pc >= len(l.Lines) {
		return 0
	}

	return l.Lines[pc].LineNo
}

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO": "0",
}

// Assembler translates the textual program form into instructions. The
// zero value is ready to use; a single diagnostic aborts the whole parse.
type Assembler struct {
	Equate map[string]string // Map of equates.

	predefine map[string]string // Predefines
}

// Predefine defines an equate before parsing begins.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// valueOf parses an operand token as an unsigned decimal integer that fits
// an operand field.
func (asm *Assembler) valueOf(token string) (value uint32, err error) {
	v64, err := strconv.ParseUint(token, 10, 32)
	if err != nil {
		err = ErrParseNumber(token)
		return
	}
	value = uint32(v64)

	return
}

// parenEval does compile-time $(...) evaluations.
func (asm *Assembler) parenEval(expr string) (value uint32, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		value32, verr := asm.valueOf(str)
		if verr != nil {
			// Ignore non-integer equates.
			continue
		}
		pred[key] = starlark.MakeInt(int(value32))
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value = uint32(st_int64)

	return
}

// expandLine substitutes $() evaluations into a source line.
func (asm *Assembler) expandLine(line string, lineno int) (expanded string, err error) {
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	re := regexp.MustCompile(`\$\([^\$]*\)`)
	expanded = re.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%v", value)
	})

	return
}

// parseLine parses a single expanded line into an instruction. Equate
// definitions and empty lines yield no instruction.
func (asm *Assembler) parseLine(line string, lineno int) (instr vm.Instruction, fields []string, ok bool, err error) {
	// .equ CONST VALUE
	if strings.HasPrefix(line, ".equ") {
		words := strings.Fields(line)
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, dup := asm.Equate[words[1]]
		if dup {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		return
	}

	for _, field := range strings.Split(line, ",") {
		fields = append(fields, strings.TrimSpace(field))
	}

	op, known := vm.OpByName(fields[0])
	if !known {
		err = ErrUnknownOpcode(fields[0])
		return
	}

	var args []uint32
	for _, field := range fields[1:] {
		// Equates substitute into operand fields.
		equate, isEquate := asm.Equate[field]
		if isEquate {
			field = equate
		}

		var value uint32
		value, err = asm.valueOf(field)
		if err != nil {
			return
		}
		args = append(args, value)
	}

	instr = vm.Instruction{Op: op, Args: args}
	err = instr.Validate()
	if err != nil {
		return
	}

	ok = true

	return
}

// Parse assembles an input stream into a listing. Assembly is atomic: the
// first diagnostic aborts with no partial output.
func (asm *Assembler) Parse(input io.Reader) (listing *Listing, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
			listing = nil
		}
	}()

	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	listing = &Listing{}

	for scanner.Scan() {
		lineno += 1
		line = strings.TrimSpace(scanner.Text())

		// Blank and comment lines consume no address.
		if len(line) == 0 || line[0] == '#' {
			continue
		}

		log.Debugf("%v: %v", lineno, line)

		line, err = asm.expandLine(line, lineno)
		if err != nil {
			return
		}

		var instr vm.Instruction
		var fields []string
		var ok bool
		instr, fields, ok, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}
		if !ok {
			continue
		}

		listing.Lines = append(listing.Lines, Line{
			LineNo: lineno,
			Fields: fields,
			Instr:  instr,
		})
	}

	err = scanner.Err()

	return
}

// Assemble parses an input stream and encodes it as a bytecode stream.
func Assemble(input io.Reader) (bin []byte, err error) {
	asm := &Assembler{}

	listing, err := asm.Parse(input)
	if err != nil {
		return
	}
	bin = listing.Program().Binary()

	return
}
