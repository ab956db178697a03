package cpu

// handler executes an instruction. The operands have been validated
// against the instruction's argument kinds. cpu.next holds the address of
// the following instruction; control transfers overwrite it.
type handler func(cpu *Cpu, args []uint8) error

type instruction struct {
	name string
	args []ArgKind
	exec handler
}

var (
	argsNone   = []ArgKind{}
	argsReg    = []ArgKind{ARG_REG}
	argsRegReg = []ArgKind{ARG_REG, ARG_REG}
	argsRegImm = []ArgKind{ARG_REG, ARG_IMM}
)

// instructions is the dispatch table, indexed by opcode byte. Entries
// without a handler are not instructions.
var instructions = [256]instruction{
	OP_NOP:  {"NOP", argsNone, func(cpu *Cpu, args []uint8) error { return nil }},
	OP_HLT:  {"HLT", argsNone, (*Cpu).opHlt},
	OP_RET:  {"RET", argsNone, (*Cpu).opRet},
	OP_IRET: {"IRET", argsNone, (*Cpu).opIret},
	OP_PUSH: {"PUSH", argsReg, (*Cpu).opPush},
	OP_POP:  {"POP", argsReg, (*Cpu).opPop},
	OP_PRN:  {"PRN", argsReg, (*Cpu).opPrn},
	OP_PRA:  {"PRA", argsReg, (*Cpu).opPra},
	OP_CALL: {"CALL", argsReg, (*Cpu).opCall},
	OP_INT:  {"INT", argsReg, (*Cpu).opInt},
	OP_JMP:  {"JMP", argsReg, jumpIf(func(fl uint8) bool { return true })},
	OP_JEQ:  {"JEQ", argsReg, jumpIf(func(fl uint8) bool { return fl&FLAG_EQ != 0 })},
	OP_JNE:  {"JNE", argsReg, jumpIf(func(fl uint8) bool { return fl&FLAG_EQ == 0 })},
	OP_JGT:  {"JGT", argsReg, jumpIf(func(fl uint8) bool { return fl&FLAG_GT != 0 })},
	OP_JLT:  {"JLT", argsReg, jumpIf(func(fl uint8) bool { return fl&FLAG_LT != 0 })},
	OP_JLE:  {"JLE", argsReg, jumpIf(func(fl uint8) bool { return fl&(FLAG_LT|FLAG_EQ) != 0 })},
	OP_JGE:  {"JGE", argsReg, jumpIf(func(fl uint8) bool { return fl&(FLAG_GT|FLAG_EQ) != 0 })},
	OP_INC:  {"INC", argsReg, alu(ALU_INC)},
	OP_DEC:  {"DEC", argsReg, alu(ALU_DEC)},
	OP_NOT:  {"NOT", argsReg, alu(ALU_NOT)},
	OP_LDI:  {"LDI", argsRegImm, (*Cpu).opLdi},
	OP_LD:   {"LD", argsRegReg, (*Cpu).opLd},
	OP_ST:   {"ST", argsRegReg, (*Cpu).opSt},
	OP_ADD:  {"ADD", argsRegReg, alu(ALU_ADD)},
	OP_SUB:  {"SUB", argsRegReg, alu(ALU_SUB)},
	OP_MUL:  {"MUL", argsRegReg, alu(ALU_MUL)},
	OP_DIV:  {"DIV", argsRegReg, alu(ALU_DIV)},
	OP_MOD:  {"MOD", argsRegReg, alu(ALU_MOD)},
	OP_CMP:  {"CMP", argsRegReg, alu(ALU_CMP)},
	OP_AND:  {"AND", argsRegReg, alu(ALU_AND)},
	OP_OR:   {"OR", argsRegReg, alu(ALU_OR)},
	OP_XOR:  {"XOR", argsRegReg, alu(ALU_XOR)},
	OP_SHL:  {"SHL", argsRegReg, alu(ALU_SHL)},
	OP_SHR:  {"SHR", argsRegReg, alu(ALU_SHR)},
}

// alu returns the handler of an ALU instruction. Single register
// instructions use their register for both ALU inputs.
func alu(op AluOp) handler {
	return func(cpu *Cpu, args []uint8) error {
		a := int(args[0])
		b := a
		if len(args) > 1 {
			b = int(args[1])
		}
		return cpu.Alu(op, a, b)
	}
}

// jumpIf returns the handler of a jump taken when cond holds for the
// flags.
func jumpIf(cond func(fl uint8) bool) handler {
	return func(cpu *Cpu, args []uint8) error {
		if cond(cpu.Flags) {
			cpu.next = int(cpu.Register[args[0]])
		}
		return nil
	}
}

func (cpu *Cpu) opHlt(args []uint8) error {
	cpu.Halted = true
	cpu.next = cpu.Pc
	return nil
}

func (cpu *Cpu) opLdi(args []uint8) error {
	cpu.Register[args[0]] = args[1]
	return nil
}

func (cpu *Cpu) opLd(args []uint8) error {
	cpu.Register[args[0]] = cpu.Memory[cpu.Register[args[1]]]
	return nil
}

func (cpu *Cpu) opSt(args []uint8) error {
	cpu.Memory[cpu.Register[args[0]]] = cpu.Register[args[1]]
	return nil
}

func (cpu *Cpu) opPrn(args []uint8) error {
	if cpu.output == nil {
		return ErrOutputInvalid
	}
	return cpu.output.Number(cpu.Register[args[0]])
}

func (cpu *Cpu) opPra(args []uint8) error {
	if cpu.output == nil {
		return ErrOutputInvalid
	}
	return cpu.output.Char(cpu.Register[args[0]])
}

func (cpu *Cpu) opPush(args []uint8) error {
	return cpu.Push(cpu.Register[args[0]])
}

func (cpu *Cpu) opPop(args []uint8) (err error) {
	value, err := cpu.Pop()
	if err != nil {
		return
	}
	cpu.Register[args[0]] = value
	return
}

// opCall pushes the address of the next instruction, and jumps to the
// address in the register.
func (cpu *Cpu) opCall(args []uint8) (err error) {
	target := cpu.Register[args[0]]

	err = cpu.Push(uint8(cpu.Pc + 2))
	if err != nil {
		return
	}

	cpu.next = int(target)
	return
}

func (cpu *Cpu) opRet(args []uint8) (err error) {
	pc, err := cpu.Pop()
	if err != nil {
		return
	}
	cpu.next = int(pc)
	return
}

// opInt raises the interrupt numbered by the low three bits of the
// register.
func (cpu *Cpu) opInt(args []uint8) error {
	cpu.Register[REG_IS] |= 1 << (cpu.Register[args[0]] & 7)
	return nil
}

func (cpu *Cpu) opIret(args []uint8) error {
	return cpu.InterruptReturn()
}
