package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStackPushPop(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()

	assert.NoError(cpu.Push(0x11))
	assert.Equal(uint8(STACK_TOP-1), cpu.Register[REG_SP])
	assert.Equal(uint8(0x11), cpu.Memory[STACK_TOP-1])

	assert.NoError(cpu.Push(0x22))
	assert.NoError(cpu.Push(0x33))
	assert.Equal(3, cpu.Depth())

	for _, expected := range []uint8{0x33, 0x22, 0x11} {
		value, err := cpu.Pop()
		assert.NoError(err)
		assert.Equal(expected, value)
	}

	assert.Equal(uint8(STACK_TOP), cpu.Register[REG_SP])
	assert.Equal(0, cpu.Pc)

	// Freed slots keep their values.
	assert.Equal(uint8(0x11), cpu.Memory[STACK_TOP-1])
	assert.Equal(uint8(0x33), cpu.Memory[STACK_TOP-3])
}

func TestStackInstructions(t *testing.T) {
	assert := assert.New(t)

	cpu, out := newTestCpu(t,
		uint8(OP_LDI), 0, 1,
		uint8(OP_LDI), 1, 2,
		uint8(OP_PUSH), 0,
		uint8(OP_PUSH), 1,
		uint8(OP_POP), 0,
		uint8(OP_POP), 1,
		uint8(OP_PRN), 0,
		uint8(OP_PRN), 1,
		uint8(OP_HLT),
	)
	runTestCpu(t, cpu, 20)

	assert.Equal("2\n1\n", out.String())
	assert.Equal(uint8(STACK_TOP), cpu.Register[REG_SP])
	assert.Equal(18, cpu.Pc)
}

func TestStackPopSp(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu(t,
		uint8(OP_LDI), 0, 0x40,
		uint8(OP_PUSH), 0,
		uint8(OP_POP), REG_SP,
		uint8(OP_HLT),
	)
	runTestCpu(t, cpu, 10)

	assert.Equal(uint8(0x40), cpu.Register[REG_SP])
}

func TestStackUnchecked(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()

	// Popping an empty stack reads above it.
	cpu.Memory[STACK_TOP] = 0x5a
	value, err := cpu.Pop()
	assert.NoError(err)
	assert.Equal(uint8(0x5a), value)
	assert.Equal(uint8(STACK_TOP+1), cpu.Register[REG_SP])

	// SP wraps around the address space.
	cpu.Register[REG_SP] = 0
	assert.NoError(cpu.Push(0x77))
	assert.Equal(uint8(0xff), cpu.Register[REG_SP])
	assert.Equal(uint8(0x77), cpu.Memory[0xff])

	value, err = cpu.Pop()
	assert.NoError(err)
	assert.Equal(uint8(0x77), value)
	assert.Equal(uint8(0), cpu.Register[REG_SP])
}

func TestStackChecked(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	cpu.StackCheck = true
	cpu.StackFloor = STACK_TOP - 2

	_, err := cpu.Pop()
	assert.ErrorIs(err, ErrStackEmpty)
	assert.Equal(uint8(STACK_TOP), cpu.Register[REG_SP])

	assert.NoError(cpu.Push(1))
	assert.NoError(cpu.Push(2))
	assert.ErrorIs(cpu.Push(3), ErrStackFull)
	assert.Equal(2, cpu.Depth())

	// Fatal when executed.
	cpu.Reset()
	cpu.Memory[0] = uint8(OP_POP)
	assert.ErrorIs(cpu.Tick(), ErrStackEmpty)
	assert.True(cpu.Halted)
}
