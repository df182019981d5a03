// Package machine defines the contract between a session and the interpreter executing instructions, together with
// the state every interpreter exposes: a register file, a stack region and an instruction listing.
package machine

import "fmt"

const (
	// NumRegisters is the amount of register slots, 31 general purpose registers, the stack pointer and the program
	// counter.
	NumRegisters = 33
	// SP is the index of the stack pointer
	SP = 31
	// PC is the index of the program counter
	PC = 32

	// InstructionSize is the amount of address space occupied by a single instruction
	InstructionSize = 4
	// WordSize is the size of a stack word in bytes
	WordSize = 8
	// MaxCodeLines is the maximum length of an instruction listing
	MaxCodeLines = 500
)

// Instruction is a decoded instruction, ready to be executed.
type Instruction interface {
	fmt.Stringer
}

// Machine is implemented by interpreters. A session only ever talks to an interpreter via this interface.
type Machine interface {
	// Init (re)initializes all state from the listing at path. The stack pointer and program counter are set to
	// spStart and pcStart. On error, the state from before the call is kept.
	Init(spStart, pcStart uint64, path string) error
	// Parse decodes a line of the listing.
	Parse(line string) (Instruction, error)
	// Execute applies the effects of inst to the registers and memory.
	Execute(inst Instruction) error

	Registers() *RegisterFile
	Stack() *Stack
	// CodeStart is the address of the first line of the listing
	CodeStart() uint64
	// Code returns the instruction listing, one line per InstructionSize bytes starting at CodeStart.
	Code() []string
}

// RegisterName returns the display name of the register at index i.
func RegisterName(i int) string {
	switch i {
	case SP:
		return "sp"
	case PC:
		return "pc"
	}

	return fmt.Sprintf("x%d", i)
}

// RegisterFile holds register values and tracks which registers have been written.
type RegisterFile struct {
	Values [NumRegisters]uint64
	Used   [NumRegisters]bool
}

// Get returns the value of register i, out of range indices read as zero.
func (rf *RegisterFile) Get(i int) uint64 {
	if i < 0 || i >= NumRegisters {
		return 0
	}

	return rf.Values[i]
}

// Set writes register i and marks it as used.
func (rf *RegisterFile) Set(i int, v uint64) error {
	if i < 0 || i >= NumRegisters {
		return fmt.Errorf("register %d: %w", i, ErrOutOfRange)
	}

	rf.Values[i] = v
	rf.Used[i] = true
	return nil
}

// IsUsed returns true if register i has been written since the last reset.
func (rf *RegisterFile) IsUsed(i int) bool {
	if i < 0 || i >= NumRegisters {
		return false
	}

	return rf.Used[i]
}

func (rf *RegisterFile) PC() uint64 {
	return rf.Values[PC]
}

// SetPC moves the program counter without marking it as used.
func (rf *RegisterFile) SetPC(v uint64) {
	rf.Values[PC] = v
}

// Reset zeros all registers and clears the used flags.
func (rf *RegisterFile) Reset() {
	*rf = RegisterFile{}
}
