// Package io provides the peripherals attached to the LS-8 core: the
// console that PRN and PRA print to, and the interrupt sources polled by
// the interrupt controller.
package io

// Output receives the values printed by the PRN and PRA instructions.
type Output interface {
	// Number prints the decimal value followed by a newline.
	Number(value uint8) error
	// Char prints the character whose code point is value.
	Char(value uint8) error
}

// Source is an interrupt source, polled once per instruction cycle.
type Source interface {
	// Rewind resets the source to its initial state.
	Rewind()
	// Poll returns true when the source requests an interrupt.
	Poll() bool
}
