// Package vm implements the variant 21 instruction set and its execution
// engine.
//
// A program is a straight-line sequence built from four instructions
// (LOAD_CONST, READ_MEM, WRITE_MEM, POW), encoded as fixed-layout binary
// records: a one-byte opcode tag followed by each operand as a 4-byte
// little-endian field. The machine executes the stream exactly once, front
// to back; the instruction set has no control flow, so every run terminates
// after one pass or at the first fault.
package vm
