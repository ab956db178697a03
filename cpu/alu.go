package cpu

import (
	"fmt"
)

// AluOp is an ALU operation kind.
type AluOp int

const (
	ALU_ADD = AluOp(iota)
	ALU_SUB
	ALU_MUL
	ALU_DIV
	ALU_MOD
	ALU_AND
	ALU_OR
	ALU_XOR
	ALU_SHL
	ALU_SHR
	ALU_NOT
	ALU_INC
	ALU_DEC
	ALU_CMP
)

var aluNames = [...]string{
	ALU_ADD: "add",
	ALU_SUB: "sub",
	ALU_MUL: "mul",
	ALU_DIV: "div",
	ALU_MOD: "mod",
	ALU_AND: "and",
	ALU_OR:  "or",
	ALU_XOR: "xor",
	ALU_SHL: "shl",
	ALU_SHR: "shr",
	ALU_NOT: "not",
	ALU_INC: "inc",
	ALU_DEC: "dec",
	ALU_CMP: "cmp",
}

func (op AluOp) String() string {
	if op < 0 || int(op) >= len(aluNames) {
		return fmt.Sprintf("AluOp(%d)", int(op))
	}
	return aluNames[op]
}

// Alu performs op on registers a and b. Arithmetic results are written to
// register a, modulo 256. ALU_CMP instead ORs one of FLAG_LT, FLAG_EQ or
// FLAG_GT into the flags; the flags are never cleared.
//
// An unknown op is a decoder bug, and panics.
func (cpu *Cpu) Alu(op AluOp, a, b int) (err error) {
	x := cpu.Register[a]
	y := cpu.Register[b]

	var result uint8
	switch op {
	case ALU_ADD:
		result = x + y
	case ALU_SUB:
		result = x - y
	case ALU_MUL:
		result = x * y
	case ALU_DIV:
		if y == 0 {
			err = ErrDivideByZero
			return
		}
		result = x / y
	case ALU_MOD:
		if y == 0 {
			err = ErrDivideByZero
			return
		}
		result = x % y
	case ALU_AND:
		result = x & y
	case ALU_OR:
		result = x | y
	case ALU_XOR:
		result = x ^ y
	case ALU_SHL:
		result = x << y
	case ALU_SHR:
		result = x >> y
	case ALU_NOT:
		result = ^x
	case ALU_INC:
		result = x + 1
	case ALU_DEC:
		result = x - 1
	case ALU_CMP:
		switch {
		case x < y:
			cpu.Flags |= FLAG_LT
		case x == y:
			cpu.Flags |= FLAG_EQ
		default:
			cpu.Flags |= FLAG_GT
		}
		return
	default:
		panic(f("alu: unsupported operation %v", op))
	}

	cpu.Register[a] = result

	return
}
