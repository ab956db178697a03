package cpu

import (
	"log"
	"math/bits"
)

const (
	INTERRUPT_COUNT = 8 // Number of interrupt status bits.
	INTERRUPT_TIMER = 0 // IS bit set by the timer.
)

// InterruptPolicy selects which IS bits are dispatched.
type InterruptPolicy int

const (
	INTERRUPT_MASKED = InterruptPolicy(0) // Dispatch IS & IM.
	INTERRUPT_RAW    = InterruptPolicy(1) // Dispatch IS, ignoring IM.
)

func (ip InterruptPolicy) String() string {
	switch ip {
	case INTERRUPT_MASKED:
		return "masked"
	case INTERRUPT_RAW:
		return "raw"
	}
	return "unknown"
}

// InterruptState is the state of the interrupt controller.
type InterruptState int

const (
	STATE_IDLE      = InterruptState(0) // Pending interrupts may be dispatched.
	STATE_SERVICING = InterruptState(1) // An interrupt handler is running.
)

func (is InterruptState) String() string {
	switch is {
	case STATE_IDLE:
		return "idle"
	case STATE_SERVICING:
		return "servicing"
	}
	return "unknown"
}

// SetSource attaches an interrupt source to an IS bit.
func (cpu *Cpu) SetSource(bit int, src Source) (err error) {
	if bit < 0 || bit >= INTERRUPT_COUNT {
		err = ErrInterruptRange
		return
	}

	cpu.source[bit] = src

	return
}

// pollSources sets the IS bit of every source that is due.
func (cpu *Cpu) pollSources() {
	for bit, src := range cpu.source {
		if src != nil && src.Poll() {
			cpu.Register[REG_IS] |= 1 << bit
		}
	}
}

// Pending returns the lowest IS bit eligible for dispatch under the
// current policy.
func (cpu *Cpu) Pending() (bit int, ok bool) {
	pending := cpu.Register[REG_IS]
	if cpu.Policy != INTERRUPT_RAW {
		pending &= cpu.Register[REG_IM]
	}

	if pending == 0 {
		return
	}

	bit = bits.TrailingZeros8(pending)
	ok = true

	return
}

// Interrupt dispatches interrupt bit:
// - Clears the bit in IS, so the handler cannot re-trigger it.
// - Pushes the PC, then R0 through R6.
// - Loads the PC from the vector table entry for the bit.
func (cpu *Cpu) Interrupt(bit int) (err error) {
	if bit < 0 || bit >= INTERRUPT_COUNT {
		err = ErrInterruptRange
		return
	}

	cpu.Register[REG_IS] &^= 1 << bit

	err = cpu.Push(uint8(cpu.Pc))
	if err != nil {
		return
	}

	for n := 0; n <= REG_IS; n++ {
		err = cpu.Push(cpu.Register[n])
		if err != nil {
			return
		}
	}

	vector := cpu.Memory[VECTOR_TABLE+bit]

	if cpu.Verbose {
		log.Printf("%02x: interrupt %d -> %02x", cpu.Pc, bit, vector)
	}

	cpu.Pc = int(vector)
	cpu.State = STATE_SERVICING
	cpu.Interrupts++

	return
}

// InterruptReturn pops R6 down to R0, then the PC, and returns the
// controller to idle.
func (cpu *Cpu) InterruptReturn() (err error) {
	for n := REG_IS; n >= 0; n-- {
		cpu.Register[n], err = cpu.Pop()
		if err != nil {
			return
		}
	}

	pc, err := cpu.Pop()
	if err != nil {
		return
	}

	cpu.Pc = int(pc)
	cpu.next = cpu.Pc
	cpu.State = STATE_IDLE

	return
}
