package interp

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dylandreimerink/asmviz/pkg/machine"
)

// ErrUnknownInstruction is returned when parsing a mnemonic the interpreter doesn't implement
var ErrUnknownInstruction = errors.New("unknown instruction")

// zr is the register index used for xzr, reads return zero and writes are discarded
const zr = -1

type operandKind int

const (
	kindReg operandKind = iota
	kindImm
	kindMem
)

type addrMode int

const (
	// [base, #off]
	modeOffset addrMode = iota
	// [base, #off]!
	modePreIndex
	// [base], #off
	modePostIndex
)

// Operand is a register, immediate or memory reference.
type Operand struct {
	kind operandKind
	Reg  int
	Imm  int64
	Mode addrMode
}

// Inst is a decoded instruction.
type Inst struct {
	Op string
	// Cond is the condition of a b.cond instruction
	Cond     string
	Operands []Operand
	text     string
}

func (i *Inst) String() string {
	return i.text
}

// Branch returns the static target of a branch. Conditional is true if execution may also continue with the next
// instruction.
func (i *Inst) Branch() (target uint64, conditional bool, ok bool) {
	switch i.Op {
	case "b":
		return uint64(i.Operands[0].Imm), i.Cond != "", true
	case "bl":
		return uint64(i.Operands[0].Imm), true, true
	case "cbz", "cbnz":
		return uint64(i.Operands[1].Imm), true, true
	}

	return 0, false, false
}

// Call returns true if the instruction is a function call which returns to the next instruction.
func (i *Inst) Call() bool {
	return i.Op == "bl"
}

// Terminates returns true if execution never continues with the next instruction and the target is not static.
func (i *Inst) Terminates() bool {
	return i.Op == "ret" || i.Op == "br"
}

type opSpec struct {
	// pattern of operand kinds, 'r' register, 'i' immediate, 'o' register or immediate, 'm' memory, 't' branch target
	args string
}

var opSpecs = map[string]opSpec{
	"nop":  {""},
	"svc":  {"i"},
	"swi":  {"i"},
	"mov":  {"ro"},
	"mvn":  {"ro"},
	"add":  {"rro"},
	"sub":  {"rro"},
	"mul":  {"rrr"},
	"udiv": {"rrr"},
	"sdiv": {"rrr"},
	"and":  {"rro"},
	"orr":  {"rro"},
	"eor":  {"rro"},
	"lsl":  {"rro"},
	"lsr":  {"rro"},
	"asr":  {"rro"},
	"cmp":  {"ro"},
	"ldr":  {"rm"},
	"str":  {"rm"},
	"ldrb": {"rm"},
	"strb": {"rm"},
	"b":    {"t"},
	"bl":   {"t"},
	"br":   {"r"},
	"ret":  {""},
	"cbz":  {"rt"},
	"cbnz": {"rt"},
}

var conditions = map[string]bool{
	"eq": true, "ne": true, "hs": true, "cs": true, "lo": true, "cc": true, "mi": true, "pl": true,
	"hi": true, "ls": true, "ge": true, "lt": true, "gt": true, "le": true, "al": true,
}

// Parse decodes a single line of the listing.
func (m *Machine) Parse(line string) (machine.Instruction, error) {
	inst, err := parse(line, m.labels)
	if err != nil {
		return nil, err
	}

	return inst, nil
}

func parse(line string, labels map[string]uint64) (*Inst, error) {
	text := strings.TrimSpace(line)
	if text == "" {
		return nil, fmt.Errorf("empty instruction")
	}

	mnemonic, rest := text, ""
	if i := strings.IndexAny(text, " \t"); i != -1 {
		mnemonic, rest = text[:i], strings.TrimSpace(text[i+1:])
	}
	mnemonic = strings.ToLower(mnemonic)

	inst := &Inst{Op: mnemonic, text: text}
	if strings.HasPrefix(mnemonic, "b.") {
		inst.Op, inst.Cond = "b", mnemonic[2:]
		if !conditions[inst.Cond] {
			return nil, fmt.Errorf("'%s': unknown condition '%s'", text, inst.Cond)
		}
	}

	spec, found := opSpecs[inst.Op]
	if !found {
		return nil, fmt.Errorf("'%s': %w", mnemonic, ErrUnknownInstruction)
	}

	args := splitOperands(rest)

	// ret has an optional register, which we ignore since it is always x30 in practice
	if inst.Op == "ret" {
		args = nil
	}
	// svc and swi immediates are optional
	if (inst.Op == "svc" || inst.Op == "swi") && len(args) == 0 {
		args = []string{"#0"}
	}

	// Post-index addressing adds a trailing immediate to a memory operand: [base], #off
	if strings.HasSuffix(spec.args, "m") && len(args) == len(spec.args)+1 {
		last := args[len(args)-2]
		if strings.HasSuffix(last, "]") {
			args = append(args[:len(args)-2], last+"+"+args[len(args)-1])
		}
	}

	if len(args) != len(spec.args) {
		return nil, fmt.Errorf("'%s': expected %d operands, got %d", text, len(spec.args), len(args))
	}

	for i, kind := range spec.args {
		op, err := parseOperand(args[i], byte(kind), labels)
		if err != nil {
			return nil, fmt.Errorf("'%s': operand %d: %w", text, i+1, err)
		}
		inst.Operands = append(inst.Operands, op)
	}

	return inst, nil
}

// splitOperands splits on commas which are not within brackets.
func splitOperands(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	var (
		args  []string
		depth int
		start int
	)
	for i, r := range s {
		switch r {
		case '[':
			depth++
		case ']':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	args = append(args, strings.TrimSpace(s[start:]))

	return args
}

func parseOperand(s string, kind byte, labels map[string]uint64) (Operand, error) {
	switch kind {
	case 'r':
		reg, err := parseReg(s)
		return Operand{kind: kindReg, Reg: reg}, err

	case 'i':
		imm, err := parseImm(s)
		return Operand{kind: kindImm, Imm: imm}, err

	case 'o':
		if reg, err := parseReg(s); err == nil {
			return Operand{kind: kindReg, Reg: reg}, nil
		}
		imm, err := parseImm(s)
		if err != nil {
			return Operand{}, fmt.Errorf("'%s' is neither a register nor an immediate", s)
		}
		return Operand{kind: kindImm, Imm: imm}, nil

	case 't':
		if addr, found := labels[s]; found {
			return Operand{kind: kindImm, Imm: int64(addr)}, nil
		}
		imm, err := parseImm(s)
		if err != nil {
			return Operand{}, fmt.Errorf("unknown label or address '%s'", s)
		}
		return Operand{kind: kindImm, Imm: imm}, nil

	case 'm':
		return parseMem(s)
	}

	return Operand{}, fmt.Errorf("invalid operand kind '%c'", kind)
}

func parseMem(s string) (Operand, error) {
	op := Operand{kind: kindMem, Mode: modeOffset}

	var post string
	if i := strings.Index(s, "]+"); i != -1 {
		s, post = s[:i+1], s[i+2:]
		op.Mode = modePostIndex
	} else if strings.HasSuffix(s, "!") {
		s = strings.TrimSuffix(s, "!")
		op.Mode = modePreIndex
	}

	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return Operand{}, fmt.Errorf("'%s' is not a memory operand", s)
	}

	parts := splitOperands(s[1 : len(s)-1])
	if len(parts) == 0 || len(parts) > 2 {
		return Operand{}, fmt.Errorf("'%s' is not a memory operand", s)
	}

	reg, err := parseReg(parts[0])
	if err != nil {
		return Operand{}, err
	}
	op.Reg = reg

	if len(parts) == 2 {
		if op.Mode == modePostIndex {
			return Operand{}, fmt.Errorf("'%s': post-index operand can't have an offset within brackets", s)
		}
		op.Imm, err = parseImm(parts[1])
		if err != nil {
			return Operand{}, err
		}
	}

	if op.Mode == modePostIndex {
		op.Imm, err = parseImm(post)
		if err != nil {
			return Operand{}, err
		}
	}

	return op, nil
}

func parseReg(s string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "sp":
		return machine.SP, nil
	case "xzr", "wzr":
		return zr, nil
	case "lr":
		return 30, nil
	case "fp":
		return 29, nil
	}

	if len(s) < 2 || (s[0] != 'x' && s[0] != 'r' && s[0] != 'w') {
		return 0, fmt.Errorf("invalid register '%s'", s)
	}

	n, err := strconv.Atoi(s[1:])
	if err != nil || n < 0 || n > 30 {
		return 0, fmt.Errorf("invalid register '%s'", s)
	}

	return n, nil
}

func parseImm(s string) (int64, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid immediate '%s'", s)
	}

	if neg {
		return -int64(v), nil
	}
	return int64(v), nil
}
