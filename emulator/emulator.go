// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package emulator ties the LS-8 CPU to its console, its timer and the
// program being run.
package emulator

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/ls8/cpu"
	"github.com/ezrec/ls8/internal"
	"github.com/ezrec/ls8/io"
)

var _emulator_defines = map[string]string{
	"MEMORY_SIZE": fmt.Sprintf("%v", cpu.MEMORY_SIZE),
	"REG_IM":      fmt.Sprintf("%v", cpu.REG_IM),
	"REG_IS":      fmt.Sprintf("%v", cpu.REG_IS),
	"REG_SP":      fmt.Sprintf("%v", cpu.REG_SP),
}

// Emulator state. CPU + program + peripherals.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the currently running program listing.

	Console io.Console // Console for PRN and PRA.
	Timer   io.Timer   // Timer interrupt source.
}

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Cpu:     cpu.NewCpu(),
		Program: &cpu.Program{},
	}

	emu.Cpu.SetOutput(&emu.Console)
	err := emu.Cpu.SetSource(cpu.INTERRUPT_TIMER, &emu.Timer)
	if err != nil {
		panic(err)
	}

	return
}

// Defines returns an iterator over all of the defines, in name order.
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.Sorted2(internal.Concat2(maps.All(_emulator_defines),
		emu.Cpu.Defines(),
	))
}

// Reset the CPU, and load the program into memory.
func (emu *Emulator) Reset() (err error) {
	emu.Cpu.Verbose = emu.Verbose

	emu.Cpu.Reset()
	emu.Console.Rewind()

	image := emu.Program.Image()
	err = emu.Cpu.Load(image)
	if err != nil {
		return
	}

	// Bytes from STACK_TOP up belong to the stack and vector table.
	emu.Cpu.StackFloor = emu.Program.SizeBelow(cpu.STACK_TOP)

	if emu.Verbose {
		log.Printf("emulator: reset, %d bytes, stack floor 0x%02x", len(image), emu.Cpu.StackFloor)
	}

	return
}

// Ticks returns the total instructions executed since a reset.
func (emu *Emulator) Ticks() int {
	return emu.Cpu.Ticks
}

// Pc returns the current program counter.
func (emu *Emulator) Pc() int {
	return emu.Cpu.Pc
}

// Code returns the instruction at the program counter.
func (emu *Emulator) Code() cpu.Code {
	code, _ := emu.Cpu.FetchCode()
	return code
}

// LineNo returns the source line number for the byte at the PC.
func (emu *Emulator) LineNo() int {
	dbg := emu.Program.Debug(emu.Cpu.Pc)
	if dbg.Opcode == nil {
		return 0
	}

	return dbg.LineNo
}

// Tick performs a single instruction cycle of the emulator. done is set
// once the program has halted.
func (emu *Emulator) Tick() (done bool, err error) {
	emu.Cpu.Verbose = emu.Verbose

	err = emu.Cpu.Tick()
	if errors.Is(err, cpu.ErrHalted) {
		err = nil
		done = true
		return
	}
	if err != nil {
		// A fault leaves the PC on the failing instruction, which
		// may be in an interrupt handler dispatched by this tick.
		err = &ErrRuntime{Addr: emu.Cpu.Pc, LineNo: emu.LineNo(), Err: err}
		return
	}

	return
}

// Run ticks the emulator until the program halts or fails.
func (emu *Emulator) Run() (err error) {
	for done := false; !done; {
		done, err = emu.Tick()
		if err != nil {
			return
		}
	}

	return
}
