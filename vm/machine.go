package vm

import (
	"errors"
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"
)

// Config sizes the machine state for one execution. Both fields are
// required; the machine applies no defaults.
type Config struct {
	Registers int // Size of the register file.
	Memory    int // Size of the flat memory, in cells.
}

// Machine owns the mutable state of a single execution: register file,
// memory, and program counter. Create a fresh Machine per run; machines
// share no state.
type Machine struct {
	Register []int64 // Register file, zero-initialized.
	Memory   []int64 // Flat memory, zero-initialized.
	Pc       int     // Index of the next instruction.

	code []byte // Remaining undecoded bytecode.
}

// NewMachine creates a zeroed machine per the configuration.
func NewMachine(config Config) (m *Machine, err error) {
	if config.Registers <= 0 {
		err = ErrConfigRegisters
		return
	}
	if config.Memory <= 0 {
		err = ErrConfigMemory
		return
	}

	m = &Machine{
		Register: make([]int64, config.Registers),
		Memory:   make([]int64, config.Memory),
	}

	return
}

// Execute runs a bytecode stream on a fresh machine. On a fault the
// returned machine holds the state as of the last completed instruction.
func Execute(bin []byte, config Config) (m *Machine, err error) {
	m, err = NewMachine(config)
	if err != nil {
		return
	}

	m.Load(bin)
	err = m.Run()

	return
}

// Load stages a bytecode stream for execution and resets the program
// counter.
func (m *Machine) Load(bin []byte) {
	m.code = bin
	m.Pc = 0
}

// Done returns true once the program counter has advanced past the last
// instruction.
func (m *Machine) Done() bool {
	return len(m.code) == 0
}

// Step decodes and executes the instruction at the current program counter.
// A fault leaves registers and memory untouched by the faulting
// instruction.
func (m *Machine) Step() (err error) {
	defer func() {
		if err != nil {
			err = &Fault{Pc: m.Pc, Err: err}
		}
	}()

	in, n, err := DecodeInstruction(m.code)
	if err != nil {
		err = errors.Join(ErrDecode, err)
		return
	}

	log.Debugf("%04d: %v", m.Pc, in)

	err = m.execute(in)
	if err != nil {
		return
	}

	m.code = m.code[n:]
	m.Pc++

	return
}

// Run executes the loaded program to completion or first fault. A nil
// return is a normal halt at end-of-stream.
func (m *Machine) Run() (err error) {
	for !m.Done() {
		err = m.Step()
		if err != nil {
			return
		}
	}

	return
}

// String renders the program counter and register file.
func (m *Machine) String() (text string) {
	text = fmt.Sprintf("pc: %d\n", m.Pc)
	for n, val := range m.Register {
		text += fmt.Sprintf("r%d: %d\n", n, val)
	}

	return
}

// reg returns the register index named by an operand, bounds-checked.
func (m *Machine) reg(arg uint32) (index int, err error) {
	index = int(arg)
	if index >= len(m.Register) {
		err = ErrRegisterRange
	}

	return
}

// addr bounds-checks a computed memory address.
func (m *Machine) addr(address int64) (index int, err error) {
	if address < 0 || address >= int64(len(m.Memory)) {
		err = ErrAddressRange
		return
	}
	index = int(address)

	return
}

// execute dispatches one decoded instruction. Every opcode validates all
// of its operands before performing its single write, so a faulting
// instruction applies nothing.
func (m *Machine) execute(in Instruction) (err error) {
	switch in.Op {
	case LOAD_CONST:
		// REG[B] <- C
		var b int
		b, err = m.reg(in.Args[0])
		if err != nil {
			return
		}
		m.Register[b] = int64(in.Args[1])
	case READ_MEM:
		// REG[C] <- MEM[REG[B]+D]
		var b, c, src int
		b, err = m.reg(in.Args[0])
		if err != nil {
			return
		}
		c, err = m.reg(in.Args[1])
		if err != nil {
			return
		}
		src, err = m.addr(m.Register[b] + int64(in.Args[2]))
		if err != nil {
			return
		}
		m.Register[c] = m.Memory[src]
	case WRITE_MEM:
		// MEM[C] <- REG[B]; C is a literal address, not base+offset.
		var b, dst int
		b, err = m.reg(in.Args[0])
		if err != nil {
			return
		}
		dst, err = m.addr(int64(in.Args[1]))
		if err != nil {
			return
		}
		m.Memory[dst] = m.Register[b]
	case POW:
		// REG[C] <- pow(MEM[REG[E]+D], REG[B]); the exponent is REG[B]'s
		// value, not a memory read.
		var b, c, e, base int
		b, err = m.reg(in.Args[0])
		if err != nil {
			return
		}
		c, err = m.reg(in.Args[1])
		if err != nil {
			return
		}
		e, err = m.reg(in.Args[3])
		if err != nil {
			return
		}
		base, err = m.addr(m.Register[e] + int64(in.Args[2]))
		if err != nil {
			return
		}
		var value int64
		value, err = powInt64(m.Memory[base], m.Register[b])
		if err != nil {
			return
		}
		m.Register[c] = value
	default:
		err = ErrOpcode(byte(in.Op))
	}

	return
}

// powInt64 raises base to a non-negative exponent by squaring, with int64
// overflow detection at every multiplication.
func powInt64(base, exp int64) (result int64, err error) {
	if exp < 0 {
		err = ErrNegativeExponent
		return
	}

	result = 1
	for exp > 0 {
		if exp&1 != 0 {
			result, err = mulInt64(result, base)
			if err != nil {
				return
			}
		}
		exp >>= 1
		if exp == 0 {
			break
		}
		base, err = mulInt64(base, base)
		if err != nil {
			return
		}
	}

	return
}

// mulInt64 multiplies with overflow detection.
func mulInt64(a, b int64) (product int64, err error) {
	if a == -1 && b == math.MinInt64 {
		err = ErrOverflow
		return
	}

	product = a * b
	if a != 0 && product/a != b {
		err = ErrOverflow
	}

	return
}
