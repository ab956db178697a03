// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"
	"strings"

	"github.com/ezrec/ls8/io"
)

// Output is the console the PRN and PRA instructions print to.
type Output io.Output

// Source is an interrupt source.
type Source io.Source

const (
	MEMORY_SIZE    = 256 // Bytes of memory.
	REGISTER_COUNT = 8   // Number of registers.

	REG_IM = 5 // Interrupt mask register.
	REG_IS = 6 // Interrupt status register.
	REG_SP = 7 // Stack pointer register.

	STACK_TOP    = MEMORY_SIZE - 12 // Initial stack pointer (0xF4).
	VECTOR_TABLE = 0xF8             // Interrupt vector table.
)

// Compare flags, OR-ed into Flags by CMP.
const (
	FLAG_GT = uint8(1 << 0)
	FLAG_EQ = uint8(1 << 1)
	FLAG_LT = uint8(1 << 2)
)

var _cpu_defines = map[string]string{
	"STACK_TOP":       fmt.Sprintf("0x%02X", STACK_TOP),
	"VECTOR_TABLE":    fmt.Sprintf("0x%02X", VECTOR_TABLE),
	"INTERRUPT_TIMER": fmt.Sprintf("%d", INTERRUPT_TIMER),
}

// Cpu is the simulation context of the LS-8 processor.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Memory   [MEMORY_SIZE]uint8    // Main memory.
	Register [REGISTER_COUNT]uint8 // Register file. R5=IM, R6=IS, R7=SP.
	Flags    uint8                 // Compare flags.
	Pc       int                   // Address of the next instruction.

	Policy     InterruptPolicy // Which IS bits may be dispatched.
	State      InterruptState  // Interrupt controller state.
	StackCheck bool            // Set to enable stack bounds checks.
	StackFloor int             // Lowest address the stack may grow to.

	Halted bool  // Set once HLT has executed.
	Fault  error // Fatal error that stopped the CPU.

	Ticks      int // Instructions executed since reset.
	Interrupts int // Interrupts dispatched since reset.

	output Output
	source [INTERRUPT_COUNT]Source
	next   int // PC after the executing instruction.
}

// NewCpu creates a new CPU in its reset state.
func NewCpu() (cpu *Cpu) {
	cpu = &Cpu{}
	cpu.Reset()

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// SetOutput attaches the console.
func (cpu *Cpu) SetOutput(output Output) {
	cpu.output = output
}

// Reset the CPU state.
// - Clears memory, registers and flags.
// - Sets the stack pointer to STACK_TOP and the PC to 0.
// - Zeros statistics counters.
// - Rewinds all interrupt sources.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	clear(cpu.Memory[:])
	clear(cpu.Register[:])
	cpu.Register[REG_SP] = STACK_TOP
	cpu.Flags = 0
	cpu.Pc = 0
	cpu.next = 0

	cpu.State = STATE_IDLE
	cpu.Halted = false
	cpu.Fault = nil
	cpu.Ticks = 0
	cpu.Interrupts = 0

	for _, src := range cpu.source {
		if src != nil {
			src.Rewind()
		}
	}
}

// Load copies a program image into memory, starting at address 0.
func (cpu *Cpu) Load(image []uint8) (err error) {
	if len(image) > MEMORY_SIZE {
		err = ErrProgramSize
		return
	}

	copy(cpu.Memory[:], image)

	if cpu.Verbose {
		log.Printf("cpu: loaded %d bytes", len(image))
	}

	return
}

// peek reads memory, returning zero outside of the address space.
func (cpu *Cpu) peek(addr int) uint8 {
	if addr < 0 || addr >= MEMORY_SIZE {
		return 0
	}
	return cpu.Memory[addr]
}

// Trace returns a single line of CPU state: the PC, the three bytes at
// the PC, and all of the registers.
func (cpu *Cpu) Trace() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "TRACE: %02X | %02X %02X %02X |",
		cpu.Pc, cpu.peek(cpu.Pc), cpu.peek(cpu.Pc+1), cpu.peek(cpu.Pc+2))

	for _, reg := range cpu.Register {
		fmt.Fprintf(&sb, " %02X", reg)
	}

	return sb.String()
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	regs := []string{
		"pc",
		"fl",
		"r0", "r1", "r2", "r3", "r4",
		"im", "is", "sp",
		"stack",
		"state",
	}
	for _, reg := range regs {
		var strval string
		switch reg {
		case "pc":
			strval = fmt.Sprintf("%02X", cpu.Pc)
		case "fl":
			strval = fmt.Sprintf("%03b", cpu.Flags)
		case "r0", "r1", "r2", "r3", "r4":
			strval = fmt.Sprintf("%02X", cpu.Register[reg[1]-'0'])
		case "im":
			strval = fmt.Sprintf("%08b", cpu.Register[REG_IM])
		case "is":
			strval = fmt.Sprintf("%08b", cpu.Register[REG_IS])
		case "sp":
			strval = fmt.Sprintf("%02X", cpu.Register[REG_SP])
		case "stack":
			sp := int(cpu.Register[REG_SP])
			if sp < STACK_TOP {
				strval = fmt.Sprintf("%02X", cpu.Memory[sp])
			} else {
				strval = "--"
			}
		case "state":
			strval = cpu.State.String()
		}
		text += fmt.Sprintf("% 5s: %v\n", reg, strval)
	}

	return
}

// FetchCode fetches and decodes the instruction at the PC.
func (cpu *Cpu) FetchCode() (code Code, err error) {
	if cpu.Pc < 0 || cpu.Pc >= MEMORY_SIZE {
		err = ErrPcRange
		return
	}

	op := Op(cpu.Memory[cpu.Pc])
	if !op.Valid() {
		// Left for Execute to report.
		code = Code{Op: op}
		return
	}

	code, ok := Decode(cpu.Memory[cpu.Pc:])
	if !ok {
		err = ErrPcRange
		return
	}

	return
}

// fail stops the CPU with a fatal error.
func (cpu *Cpu) fail(err error) error {
	cpu.Fault = err
	cpu.Halted = true

	if cpu.Verbose {
		log.Printf("cpu: fault: %v", err)
	}

	return err
}

// Tick executes a single instruction cycle.
//
// The interrupt sources are polled, a pending interrupt is dispatched,
// and then the instruction at the PC is fetched and executed. Returns
// ErrHalted once HLT has executed. Any other error is fatal, and is
// returned again by every later Tick.
func (cpu *Cpu) Tick() (err error) {
	if cpu.Fault != nil {
		return cpu.Fault
	}

	if cpu.Halted {
		return ErrHalted
	}

	cpu.pollSources()

	if cpu.State == STATE_IDLE {
		bit, ok := cpu.Pending()
		if ok {
			err = cpu.Interrupt(bit)
			if err != nil {
				return cpu.fail(err)
			}
		}
	}

	code, err := cpu.FetchCode()
	if err != nil {
		return cpu.fail(err)
	}

	if code.Op == OP_HLT {
		if cpu.Verbose {
			log.Printf("%02x: HLT", cpu.Pc)
		}
		cpu.Halted = true
		return ErrHalted
	}

	err = cpu.Execute(code)
	if err != nil {
		return cpu.fail(err)
	}

	return
}

// Execute executes a single decoded instruction at the PC.
func (cpu *Cpu) Execute(code Code) (err error) {
	pc := cpu.Pc

	inst := &instructions[code.Op]
	if inst.exec == nil {
		err = ErrOpcode{Pc: pc, Op: code.Op}
		return
	}

	defer func() {
		if err != nil {
			err = &ErrExecute{Pc: pc, Code: code, Err: err}
		}
	}()

	if cpu.Verbose {
		log.Printf("%02x: %v", pc, code)
	}

	if len(code.Operands) != len(inst.args) {
		err = ErrOpcodeValueMissing
		return
	}

	for n, kind := range inst.args {
		if kind == ARG_REG && code.Operands[n] >= REGISTER_COUNT {
			err = ErrRegisterRange
			return
		}
	}

	cpu.next = pc + code.Size()

	err = inst.exec(cpu, code.Operands)
	if err != nil {
		return
	}

	cpu.Pc = cpu.next
	cpu.Ticks++

	return
}

// Run ticks the CPU until it halts.
func (cpu *Cpu) Run() (err error) {
	for {
		err = cpu.Tick()
		if errors.Is(err, ErrHalted) {
			return nil
		}
		if err != nil {
			return
		}
	}
}
