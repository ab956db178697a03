package emulator

import (
	"bytes"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/ls8/cpu"
)

func TestEmulator(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	assert.False(emu.Verbose)
	assert.NotNil(emu.Cpu)
	assert.Equal(0, emu.Program.Size())
}

func TestEmulatorDefines(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	var names []string
	defines := map[string]string{}
	for name, value := range emu.Defines() {
		names = append(names, name)
		defines[name] = value
	}

	assert.True(slices.IsSorted(names))
	assert.Equal("256", defines["MEMORY_SIZE"])
	assert.Equal("7", defines["REG_SP"])
	assert.Equal("0xF4", defines["STACK_TOP"])
	assert.Equal("0xF8", defines["VECTOR_TABLE"])
}

// doRunSingle assembles and runs a program one instruction at a time,
// checking the listing against the PC as it goes.
func doRunSingle(emu *Emulator, program []string, t *testing.T) (output []byte) {
	assert := assert.New(t)

	asm := &cpu.Assembler{}
	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	emu.Program = prog

	console := &bytes.Buffer{}
	emu.Console.Output = console

	err = emu.Reset()
	assert.NoError(err)

	// The last opcode halts.
	for _, op := range prog.Opcodes[:len(prog.Opcodes)-1] {
		assert.Equal(op.LineNo, emu.LineNo())
		assert.Equal(op.Addr, emu.Pc())
		here := program[emu.LineNo()-1]

		code := emu.Code()
		assert.Equal(op.Bytes, code.Bytes(), here)

		done, err := emu.Tick()
		if err != nil {
			t.Log(emu.Cpu.String())
			t.Fatalf("%v: %v", here, err)
		}
		assert.False(done, here)
	}
	done, err := emu.Tick()
	assert.NoError(err)
	assert.True(done)

	output = console.Bytes()
	return
}

func TestEmulatorSingle(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	output := doRunSingle(emu, []string{
		"LDI R0,8",
		"LDI R1,9",
		"MUL R0,R1",
		"PRN R0",
		"LDI R2,'!'",
		"PRA R2",
		"HLT",
	}, t)

	assert.Equal("72\n!", string(output))
	assert.Equal(6, emu.Ticks())
	assert.True(emu.Console.Pending())
}

func TestEmulatorRun(t *testing.T) {
	assert := assert.New(t)

	asm := &cpu.Assembler{}
	for name, value := range NewEmulator().Defines() {
		asm.Predefine(name, value)
	}

	prog, err := asm.Parse(strings.NewReader(`
; Print a string, using a subroutine.
    LDI SP,$(STACK_TOP - 4)
    LDI R0,Message
    LDI R1,Puts
    CALL R1
    HLT

; R0 = address of a NUL terminated string
Puts:
    LDI R3,0
    LDI R4,Done
    LDI R2,Loop
Loop:
    LD R1,R0
    CMP R1,R3
    JEQ R4
    PRA R1
    INC R0
    JMP R2
Done:
    RET

Message:
    DB 'H', 'e', 'l', 'l', 'o', '\n', 0
`))
	assert.NoError(err)

	emu := NewEmulator()
	emu.Program = prog
	console := &bytes.Buffer{}
	emu.Console.Output = console

	assert.NoError(emu.Reset())
	assert.NoError(emu.Run())
	assert.Equal("Hello\n", console.String())
	assert.False(emu.Console.Pending())
	assert.Equal(uint8(cpu.STACK_TOP-4), emu.Cpu.Register[cpu.REG_SP])

	// Reset reloads the program.
	console.Reset()
	assert.NoError(emu.Reset())
	assert.NoError(emu.Run())
	assert.Equal("Hello\n", console.String())
}

func TestEmulatorTimer(t *testing.T) {
	assert := assert.New(t)

	asm := &cpu.Assembler{}
	prog, err := asm.Parse(strings.NewReader(`
    LDI R0,Handler
    LDI R1,VECTOR_TABLE
    ST R1,R0
    LDI IM,1
    LDI R2,Loop
Loop:
    JMP R2

Handler:
    LDI R3,'T'
    PRA R3
    HLT
`))
	assert.NoError(err)

	emu := NewEmulator()
	emu.Program = prog
	console := &bytes.Buffer{}
	emu.Console.Output = console

	// Each read of the clock advances it by a millisecond.
	clock := time.Unix(0, 0)
	emu.Timer.Now = func() time.Time {
		clock = clock.Add(time.Millisecond)
		return clock
	}
	emu.Timer.Period = 10 * time.Millisecond

	assert.NoError(emu.Reset())
	assert.NoError(emu.Run())

	assert.Equal("T", console.String())
	assert.Equal(1, emu.Cpu.Interrupts)
	assert.Equal(1, emu.Timer.Ticks)
	assert.Equal(cpu.STATE_SERVICING, emu.Cpu.State)
}

func TestEmulatorFault(t *testing.T) {
	assert := assert.New(t)

	asm := &cpu.Assembler{}
	prog, err := asm.Parse(strings.NewReader("NOP\nDB 0xFF\nHLT\n"))
	assert.NoError(err)

	emu := NewEmulator()
	emu.Program = prog
	emu.Console.Output = &bytes.Buffer{}
	assert.NoError(emu.Reset())

	done, err := emu.Tick()
	assert.NoError(err)
	assert.False(done)

	done, err = emu.Tick()
	assert.False(done)

	var runtime *ErrRuntime
	assert.True(errors.As(err, &runtime))
	assert.Equal(1, runtime.Addr)
	assert.Equal(2, runtime.LineNo)
	assert.Contains(runtime.Error(), "line 2 pc 0x01")
	assert.Contains(runtime.Error(), "unknown opcode 0xff")

	var bad cpu.ErrOpcode
	assert.True(errors.As(err, &bad))
	assert.Equal(1, bad.Pc)

	// Fatal errors persist.
	_, err = emu.Tick()
	assert.ErrorIs(err, cpu.ErrOpcode{})
	assert.Equal(1, emu.Pc())
	assert.Error(emu.Run())
}

func TestEmulatorStackCheck(t *testing.T) {
	assert := assert.New(t)

	asm := &cpu.Assembler{}
	prog, err := asm.Parse(strings.NewReader(`
    LDI SP,Top
    PUSH R0
    HLT
Top:
`))
	assert.NoError(err)

	emu := NewEmulator()
	emu.Program = prog
	emu.Cpu.StackCheck = true

	assert.NoError(emu.Reset())
	assert.Equal(6, emu.Cpu.StackFloor)

	err = emu.Run()
	assert.ErrorIs(err, cpu.ErrStackFull)
}

func TestEmulatorStackFloor(t *testing.T) {
	assert := assert.New(t)

	asm := &cpu.Assembler{}
	prog, err := asm.Parse(strings.NewReader(`
    LDI R0,Sub
    CALL R0
    HLT
Sub:
    RET
    DS $(VECTOR_TABLE - 7)
    DB 0x10
`))
	assert.NoError(err)
	assert.Equal(cpu.VECTOR_TABLE+1, prog.Size())

	emu := NewEmulator()
	emu.Program = prog
	emu.Cpu.StackCheck = true

	// The vector table is not part of the program area.
	assert.NoError(emu.Reset())
	assert.Equal(7, emu.Cpu.StackFloor)

	assert.NoError(emu.Run())
	assert.Equal(5, emu.Pc())
	assert.Equal(uint8(cpu.STACK_TOP), emu.Cpu.Register[cpu.REG_SP])
	assert.Equal(uint8(0x10), emu.Cpu.Memory[cpu.VECTOR_TABLE])
}

func TestEmulatorHandlerFault(t *testing.T) {
	assert := assert.New(t)

	asm := &cpu.Assembler{}
	prog, err := asm.Parse(strings.NewReader(`
    LDI R0,Handler
    LDI R1,VECTOR_TABLE
    ST R1,R0
    LDI IM,1
    LDI R0,INTERRUPT_TIMER
    INT R0
    NOP
    HLT
Handler:
    DB 0xFF
`))
	assert.NoError(err)

	emu := NewEmulator()
	emu.Program = prog
	emu.Timer.Period = time.Hour
	assert.NoError(emu.Reset())

	err = emu.Run()

	// Reported in the handler, not at the interrupted instruction.
	var runtime *ErrRuntime
	assert.True(errors.As(err, &runtime))
	assert.Equal(19, runtime.Addr)
	assert.Equal(11, runtime.LineNo)
	assert.Equal(1, emu.Cpu.Interrupts)
}
