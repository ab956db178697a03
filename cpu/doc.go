// Package cpu implements the LS-8 processor and its assembler.
//
// The processor has 256 bytes of memory, eight 8-bit registers (R5 is the
// interrupt mask, R6 the interrupt status and R7 the stack pointer), an ALU,
// compare flags, a stack that grows downward from 0xF4, and an interrupt
// controller that vectors through the table at 0xF8.
//
// Programs are loaded either from a binary image (one binary-coded byte per
// line) or assembled from LS-8 mnemonics, with labels, macros, equates and
// compile-time expression evaluation.
package cpu
