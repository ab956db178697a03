package cpu

import (
	"fmt"
	"strings"
)

// Op is an instruction opcode byte.
//
// The opcode layout is AABCDDDD, where AA is the number of operand bytes,
// B is set for ALU operations, C is set for instructions that may set
// the PC, and DDDD identifies the instruction.
type Op uint8

const (
	OP_NOP  = Op(0b0000_0000)
	OP_HLT  = Op(0b0000_0001)
	OP_RET  = Op(0b0001_0001)
	OP_IRET = Op(0b0001_0011)
	OP_PUSH = Op(0b0100_0101)
	OP_POP  = Op(0b0100_0110)
	OP_PRN  = Op(0b0100_0111)
	OP_PRA  = Op(0b0100_1000)
	OP_CALL = Op(0b0101_0000)
	OP_INT  = Op(0b0101_0010)
	OP_JMP  = Op(0b0101_0100)
	OP_JEQ  = Op(0b0101_0101)
	OP_JNE  = Op(0b0101_0110)
	OP_JGT  = Op(0b0101_0111)
	OP_JLT  = Op(0b0101_1000)
	OP_JLE  = Op(0b0101_1001)
	OP_JGE  = Op(0b0101_1010)
	OP_INC  = Op(0b0110_0101)
	OP_DEC  = Op(0b0110_0110)
	OP_NOT  = Op(0b0110_1001)
	OP_LDI  = Op(0b1000_0010)
	OP_LD   = Op(0b1000_0011)
	OP_ST   = Op(0b1000_0100)
	OP_ADD  = Op(0b1010_0000)
	OP_SUB  = Op(0b1010_0001)
	OP_MUL  = Op(0b1010_0010)
	OP_DIV  = Op(0b1010_0011)
	OP_MOD  = Op(0b1010_0100)
	OP_CMP  = Op(0b1010_0111)
	OP_AND  = Op(0b1010_1000)
	OP_OR   = Op(0b1010_1010)
	OP_XOR  = Op(0b1010_1011)
	OP_SHL  = Op(0b1010_1100)
	OP_SHR  = Op(0b1010_1101)
)

// ArgKind is the kind of an operand byte.
type ArgKind int

const (
	ARG_REG = ArgKind(0) // Register index.
	ARG_IMM = ArgKind(1) // Immediate value.
)

// Operands returns the number of operand bytes that follow the opcode.
func (op Op) Operands() int {
	return int(op >> 6)
}

// IsAlu returns true if the opcode is an ALU operation.
func (op Op) IsAlu() bool {
	return op&0b0010_0000 != 0
}

// SetsPc returns true if the opcode may set the PC.
func (op Op) SetsPc() bool {
	return op&0b0001_0000 != 0
}

// Valid returns true if the opcode is in the instruction table.
func (op Op) Valid() bool {
	return instructions[op].exec != nil
}

// Args returns the operand kinds of the instruction.
func (op Op) Args() []ArgKind {
	return instructions[op].args
}

func (op Op) String() string {
	name := instructions[op].name
	if len(name) == 0 {
		return fmt.Sprintf("0x%02X", uint8(op))
	}
	return name
}

// Code is a single decoded instruction.
type Code struct {
	Op       Op
	Operands []uint8
}

// Size returns the number of bytes the instruction occupies.
func (code Code) Size() int {
	return 1 + code.Op.Operands()
}

// Bytes returns the encoding of the instruction.
func (code Code) Bytes() []uint8 {
	return append([]uint8{uint8(code.Op)}, code.Operands...)
}

// String returns the assembly language representation of this instruction.
func (code Code) String() string {
	if !code.Op.Valid() {
		return fmt.Sprintf("DB 0x%02X", uint8(code.Op))
	}

	args := code.Op.Args()
	words := make([]string, 0, len(code.Operands))
	for n, operand := range code.Operands {
		kind := ARG_IMM
		if n < len(args) {
			kind = args[n]
		}
		switch kind {
		case ARG_REG:
			words = append(words, fmt.Sprintf("R%d", operand))
		default:
			words = append(words, fmt.Sprintf("0x%02X", operand))
		}
	}

	if len(words) == 0 {
		return code.Op.String()
	}

	return code.Op.String() + " " + strings.Join(words, ",")
}

// Decode decodes the instruction at the head of data.
func Decode(data []uint8) (code Code, ok bool) {
	if len(data) == 0 {
		return
	}

	code.Op = Op(data[0])
	count := code.Op.Operands()
	if len(data) < 1+count {
		return
	}
	code.Operands = append([]uint8(nil), data[1:1+count]...)
	ok = true

	return
}

// mnemonics maps upper-case instruction names to opcodes.
var mnemonics = func() map[string]Op {
	names := make(map[string]Op, 64)
	for n := range instructions {
		if len(instructions[n].name) != 0 {
			names[instructions[n].name] = Op(n)
		}
	}
	return names
}()
