package interp

import (
	"fmt"

	"github.com/dylandreimerink/asmviz/pkg/machine"
)

// Execute applies an instruction returned by Parse. The program counter is expected to already point at the next
// instruction, branches overwrite it.
func (m *Machine) Execute(mi machine.Instruction) error {
	inst, ok := mi.(*Inst)
	if !ok {
		return fmt.Errorf("can't execute instruction of type %T", mi)
	}

	ops := inst.Operands
	switch inst.Op {
	case "nop", "svc", "swi":

	case "mov":
		m.write(ops[0].Reg, m.value(ops[1]))
	case "mvn":
		m.write(ops[0].Reg, ^m.value(ops[1]))

	case "add", "sub", "mul", "udiv", "sdiv", "and", "orr", "eor", "lsl", "lsr", "asr":
		m.write(ops[0].Reg, alu(inst.Op, m.value(ops[1]), m.value(ops[2])))

	case "cmp":
		m.compare(m.value(ops[0]), m.value(ops[1]))

	case "ldr", "ldrb":
		size := machine.WordSize
		if inst.Op == "ldrb" {
			size = 1
		}

		addr := m.address(ops[1])
		v, err := m.stack.Load(addr, size)
		if err != nil {
			return fmt.Errorf("%s: %w", inst, err)
		}
		m.writeBack(ops[1])
		m.write(ops[0].Reg, v)

	case "str", "strb":
		size := machine.WordSize
		if inst.Op == "strb" {
			size = 1
		}

		addr := m.address(ops[1])
		if err := m.stack.Store(addr, size, m.read(ops[0].Reg)); err != nil {
			return fmt.Errorf("%s: %w", inst, err)
		}
		m.writeBack(ops[1])

	case "b":
		if inst.Cond == "" || m.condition(inst.Cond) {
			m.regs.SetPC(uint64(ops[0].Imm))
		}
	case "bl":
		m.write(30, m.regs.PC())
		m.regs.SetPC(uint64(ops[0].Imm))
	case "br":
		m.regs.SetPC(m.read(ops[0].Reg))
	case "ret":
		m.regs.SetPC(m.read(30))

	case "cbz":
		if m.read(ops[0].Reg) == 0 {
			m.regs.SetPC(uint64(ops[1].Imm))
		}
	case "cbnz":
		if m.read(ops[0].Reg) != 0 {
			m.regs.SetPC(uint64(ops[1].Imm))
		}

	default:
		return fmt.Errorf("'%s': %w", inst.Op, ErrUnknownInstruction)
	}

	return nil
}

func (m *Machine) read(reg int) uint64 {
	if reg == zr {
		return 0
	}

	return m.regs.Get(reg)
}

func (m *Machine) write(reg int, v uint64) {
	if reg == zr {
		return
	}

	// Parse only produces valid register indices
	_ = m.regs.Set(reg, v)
}

func (m *Machine) value(op Operand) uint64 {
	if op.kind == kindReg {
		return m.read(op.Reg)
	}

	return uint64(op.Imm)
}

// address calculates the effective address of a memory operand
func (m *Machine) address(op Operand) uint64 {
	base := m.read(op.Reg)
	if op.Mode == modePostIndex {
		return base
	}

	return base + uint64(op.Imm)
}

// writeBack updates the base register of pre and post indexed operands
func (m *Machine) writeBack(op Operand) {
	if op.Mode == modeOffset {
		return
	}

	m.write(op.Reg, m.read(op.Reg)+uint64(op.Imm))
}

func alu(op string, a, b uint64) uint64 {
	switch op {
	case "add":
		return a + b
	case "sub":
		return a - b
	case "mul":
		return a * b
	case "udiv":
		if b == 0 {
			return 0
		}
		return a / b
	case "sdiv":
		if b == 0 {
			return 0
		}
		return uint64(int64(a) / int64(b))
	case "and":
		return a & b
	case "orr":
		return a | b
	case "eor":
		return a ^ b
	case "lsl":
		return a << (b & 63)
	case "lsr":
		return a >> (b & 63)
	case "asr":
		return uint64(int64(a) >> (b & 63))
	}

	return 0
}

func (m *Machine) compare(a, b uint64) {
	res := a - b
	m.Flags = Flags{
		N: res>>63 == 1,
		Z: res == 0,
		C: a >= b,
		V: ((a^b)&(a^res))>>63 == 1,
	}
}

func (m *Machine) condition(cond string) bool {
	f := m.Flags
	switch cond {
	case "eq":
		return f.Z
	case "ne":
		return !f.Z
	case "hs", "cs":
		return f.C
	case "lo", "cc":
		return !f.C
	case "mi":
		return f.N
	case "pl":
		return !f.N
	case "hi":
		return f.C && !f.Z
	case "ls":
		return !f.C || f.Z
	case "ge":
		return f.N == f.V
	case "lt":
		return f.N != f.V
	case "gt":
		return !f.Z && f.N == f.V
	case "le":
		return f.Z || f.N != f.V
	}

	return true
}
