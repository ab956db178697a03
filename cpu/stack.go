package cpu

// Push writes value at SP-1 and decrements SP. It never touches the PC.
//
// Bounds are only checked when StackCheck is set: the stack may not grow
// below StackFloor. Otherwise SP wraps and overwrites whatever lies below
// the stack.
func (cpu *Cpu) Push(value uint8) (err error) {
	sp := int(cpu.Register[REG_SP]) - 1

	if cpu.StackCheck && sp < cpu.StackFloor {
		err = ErrStackFull
		return
	}

	sp &= 0xff
	cpu.Memory[sp] = value
	cpu.Register[REG_SP] = uint8(sp)

	return
}

// Pop reads the value at SP and increments SP. It never touches the PC.
//
// When StackCheck is set, popping at or above STACK_TOP is an error.
func (cpu *Cpu) Pop() (value uint8, err error) {
	sp := cpu.Register[REG_SP]

	if cpu.StackCheck && int(sp) >= STACK_TOP {
		err = ErrStackEmpty
		return
	}

	value = cpu.Memory[sp]
	cpu.Register[REG_SP] = sp + 1

	return
}

// Depth returns the number of bytes on the stack.
func (cpu *Cpu) Depth() int {
	return STACK_TOP - int(cpu.Register[REG_SP])
}
