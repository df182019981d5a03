// Package interp is an interpreter for a small AArch64 flavoured instruction set. It reads plain text listings and
// implements machine.Machine so it can be driven by a session.
package interp

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/dylandreimerink/asmviz/pkg/machine"
)

// DefaultStackSize is the size of the stack region below the initial stack pointer
const DefaultStackSize = 0x1000

// Flags are the condition flags set by compare instructions.
type Flags struct {
	N, Z, C, V bool
}

// String returns the flags as "nzcv", set flags in upper case.
func (f Flags) String() string {
	b := []byte("nzcv")
	for i, set := range []bool{f.N, f.Z, f.C, f.V} {
		if set {
			b[i] -= 'a' - 'A'
		}
	}

	return string(b)
}

// Machine is the interpreter state.
type Machine struct {
	// StackSize is the amount of bytes reserved below the initial stack pointer, DefaultStackSize if zero.
	StackSize uint64

	Flags Flags

	regs      machine.RegisterFile
	stack     *machine.Stack
	codeStart uint64
	code      []string
	labels    map[string]uint64
}

var _ machine.Machine = (*Machine)(nil)

// New returns an empty machine, call Init to load a listing.
func New() *Machine {
	return &Machine{
		stack:  machine.NewStack(0, 0),
		labels: make(map[string]uint64),
	}
}

// Init loads the listing at path. The stack occupies [spStart-StackSize, spStart).
func (m *Machine) Init(spStart, pcStart uint64, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open listing: %w", err)
	}
	defer f.Close()

	code, labels, err := ReadListing(f, pcStart)
	if err != nil {
		return fmt.Errorf("read listing '%s': %w", path, err)
	}

	m.Reset(spStart, pcStart, code, labels)
	return nil
}

// Reset replaces the listing and resets registers, flags and the stack.
func (m *Machine) Reset(spStart, pcStart uint64, code []string, labels map[string]uint64) {
	size := m.StackSize
	if size == 0 {
		size = DefaultStackSize
	}

	bot := uint64(0)
	if spStart > size {
		bot = spStart - size
	}

	if labels == nil {
		labels = make(map[string]uint64)
	}

	m.regs.Reset()
	m.regs.Values[machine.SP] = spStart
	m.regs.SetPC(pcStart)
	m.Flags = Flags{}
	m.stack = machine.NewStack(bot, spStart)
	m.codeStart = pcStart
	m.code = code
	m.labels = labels
}

func (m *Machine) Registers() *machine.RegisterFile {
	return &m.regs
}

func (m *Machine) Stack() *machine.Stack {
	return m.stack
}

func (m *Machine) CodeStart() uint64 {
	return m.codeStart
}

func (m *Machine) Code() []string {
	return m.code
}

// Labels returns the address of every label in the listing.
func (m *Machine) Labels() map[string]uint64 {
	return m.labels
}

var (
	// objdump style line prefix, as produced by the assembler bridge: "004000: 00000000   add x1,xzr,#5"
	addrPrefix = regexp.MustCompile(`^[0-9a-fA-F]+:\s+[0-9a-fA-F]{8}\s+`)
	labelName  = regexp.MustCompile(`^[A-Za-z_.$][A-Za-z0-9_.$]*$`)
)

// ReadListing reads one instruction per line. Comments, directives and empty lines are skipped, labels are recorded
// with the address of the next instruction.
func ReadListing(r io.Reader, codeStart uint64) ([]string, map[string]uint64, error) {
	var (
		code   []string
		labels = make(map[string]uint64)
	)

	s := bufio.NewScanner(r)
	lineNum := 0
	for s.Scan() {
		lineNum++
		line := stripComment(s.Text())
		line = addrPrefix.ReplaceAllString(line, "")

		// A line may hold a label, an instruction or both
		if i := strings.Index(line, ":"); i != -1 {
			name := strings.TrimSpace(line[:i])
			if labelName.MatchString(name) {
				if _, dup := labels[name]; dup {
					return nil, nil, fmt.Errorf("line %d: duplicate label '%s'", lineNum, name)
				}
				labels[name] = codeStart + uint64(len(code))*machine.InstructionSize
				line = strings.TrimSpace(line[i+1:])
			}
		}

		if line == "" || strings.HasPrefix(line, ".") {
			continue
		}

		if len(code) >= machine.MaxCodeLines {
			return nil, nil, fmt.Errorf("line %d: listing exceeds %d instructions", lineNum, machine.MaxCodeLines)
		}

		code = append(code, line)
	}
	if err := s.Err(); err != nil {
		return nil, nil, err
	}

	return code, labels, nil
}

func stripComment(line string) string {
	for _, marker := range []string{"//", ";", "@"} {
		if i := strings.Index(line, marker); i != -1 {
			line = line[:i]
		}
	}

	return strings.TrimSpace(line)
}
