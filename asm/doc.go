// Package asm implements the assembler for the variant 21 virtual machine.
//
// Programs are line oriented with comma-separated fields: the first field is
// a case-sensitive mnemonic, the remaining fields are unsigned decimal
// operands. Blank lines and lines starting with '#' are skipped. The
// assembler also supports named constants via '.equ NAME VALUE' and
// compile-time $( ) expression evaluation.
package asm
