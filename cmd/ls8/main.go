// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/ezrec/ls8/cpu"
	"github.com/ezrec/ls8/emulator"
	"github.com/ezrec/ls8/statsview"
)

func main() {
	var compile bool
	var save bool
	var output string
	var verbose bool
	var safe bool
	var raw bool
	var timer time.Duration
	var stats bool

	flag.BoolVar(&compile, "c", false, "PROGRAM is assembly source, not a binary image")
	flag.BoolVar(&save, "s", false, "Save the binary image to the output, do not execute")
	flag.StringVar(&output, "o", "-", "Output")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.BoolVar(&safe, "safe", false, "Check stack bounds")
	flag.BoolVar(&raw, "raw", false, "Dispatch interrupts ignoring the interrupt mask")
	flag.DurationVar(&timer, "timer", time.Second, "Timer interrupt period")
	flag.BoolVar(&stats, "statsview", false, "Launch the runtime statistics viewer")

	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatalf("%v: usage: %v [flags] PROGRAM", os.Args[0], os.Args[0])
	}

	filename := flag.Arg(0)

	inf, err := os.Open(filename)
	if err != nil {
		log.Fatalf("%v: %v", filename, err)
	}
	defer inf.Close()

	var prog *cpu.Program
	if compile {
		asm := &cpu.Assembler{Verbose: verbose}
		prog, err = asm.Parse(inf)
	} else {
		prog, err = cpu.ParseImage(inf)
	}
	if err != nil {
		log.Fatalf("%v: %v", filename, err)
	}

	var out io.Writer = os.Stdout
	if output != "-" {
		ouf, err := os.Create(output)
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
		defer ouf.Close()
		out = ouf
	}

	if save {
		err = prog.WriteImage(out)
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
		return
	}

	if stats {
		if !statsview.Available() {
			log.Fatalf("%v: statsview not available in this build", os.Args[0])
		}
		stop := statsview.Launch(os.Stderr)
		defer stop()
	}

	emu := emulator.NewEmulator()
	emu.Program = prog
	emu.Verbose = verbose
	emu.Console.Output = out
	emu.Timer.Period = timer
	emu.Cpu.StackCheck = safe
	if raw {
		emu.Cpu.Policy = cpu.INTERRUPT_RAW
	}

	err = emu.Reset()
	if err != nil {
		log.Fatalf("%v: %v", filename, err)
	}

	err = emu.Run()

	var bad cpu.ErrOpcode
	if errors.As(err, &bad) {
		fmt.Printf("Unknown command at pc index %d\n", bad.Pc)
		fmt.Println(emu.Cpu.Trace())
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("%v: %v\n%v", filename, err, emu.Cpu.Trace())
	}

	// Leave the shell prompt on its own line.
	if out == os.Stdout && emu.Console.Pending() && term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Println()
	}
}
