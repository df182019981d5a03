package session

import (
	"github.com/dylandreimerink/asmviz/pkg/machine"
	"github.com/dylandreimerink/asmviz/pkg/textfield"
	"github.com/dylandreimerink/asmviz/pkg/view"
)

// CodeLine is a line of the instruction listing.
type CodeLine struct {
	Index int
	Addr  uint64
	Text  string
	// Current is true for the instruction the program counter points at
	Current bool
}

// RegisterRow is a register with its display name.
type RegisterRow struct {
	Index int
	Name  string
	Value uint64
	Used  bool
}

// StackRow is a single stack word.
type StackRow struct {
	Index int
	Addr  uint64
	Value uint64
}

// Snapshot is a read only copy of everything a front-end displays.
type Snapshot struct {
	Initialized bool
	Halted      bool
	Config      Config

	// PCIndex is the listing index of the program counter, -1 if the program counter is outside of the listing
	PCIndex int
	Listing []CodeLine
	// CodeWindow is the part of Listing which is visible in the code view
	CodeWindow view.Window

	Registers []RegisterRow

	StackBot uint64
	StackTop uint64
	// Stack holds the rows of StackWindow
	Stack       []StackRow
	StackWindow view.Window

	Fields []textfield.FieldState
}

// CodeLines returns the visible part of the listing.
func (s *Snapshot) CodeLines() []CodeLine {
	return s.Listing[s.CodeWindow.Start:s.CodeWindow.End()]
}

// Snapshot copies the current session state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		Initialized: c.initialized,
		Config:      c.cfg,
		PCIndex:     -1,
		Fields:      c.fields.States(),
	}

	if !c.initialized {
		return snap
	}

	snap.Halted = c.m.Registers().PC() == c.cfg.PCEnd
	snap.Listing, snap.PCIndex, snap.CodeWindow = c.codeView()
	snap.Registers = c.registerTable()
	snap.Stack, snap.StackWindow = c.stackView()
	if stack := c.m.Stack(); stack != nil {
		snap.StackBot, snap.StackTop = stack.Bot, stack.Top
	}

	return snap
}

// CodeViewWindow returns the visible part of the listing and the index of the program counter within the listing
// (-1 if outside).
func (c *Controller) CodeViewWindow() ([]CodeLine, int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return nil, -1
	}

	lines, pcIdx, w := c.codeView()
	return lines[w.Start:w.End()], pcIdx
}

// RegisterTable returns all registers in index order.
func (c *Controller) RegisterTable() []RegisterRow {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return nil
	}

	return c.registerTable()
}

// StackViewWindow returns the visible words of the stack.
func (c *Controller) StackViewWindow() []StackRow {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return nil
	}

	rows, _ := c.stackView()
	return rows
}

func (c *Controller) codeView() ([]CodeLine, int, view.Window) {
	code := c.m.Code()
	start := c.m.CodeStart()
	pc := c.m.Registers().PC()

	pcIdx := -1
	focus := 0
	if pc >= start {
		raw := (pc - start) / machine.InstructionSize
		if raw < uint64(len(code)) {
			pcIdx = int(raw)
			focus = pcIdx
		} else {
			// Past the end, show the tail of the listing
			focus = len(code)
		}
	}

	lines := make([]CodeLine, len(code))
	for i, text := range code {
		lines[i] = CodeLine{
			Index:   i,
			Addr:    start + uint64(i)*machine.InstructionSize,
			Text:    text,
			Current: i == pcIdx,
		}
	}

	return lines, pcIdx, view.Code(focus, len(code))
}

func (c *Controller) registerTable() []RegisterRow {
	regs := c.m.Registers()

	rows := make([]RegisterRow, machine.NumRegisters)
	for i := range rows {
		rows[i] = RegisterRow{
			Index: i,
			Name:  machine.RegisterName(i),
			Value: regs.Get(i),
			Used:  regs.IsUsed(i),
		}
	}

	return rows
}

func (c *Controller) stackView() ([]StackRow, view.Window) {
	stack := c.m.Stack()
	w := view.Stack(stack.Len())

	rows := make([]StackRow, 0, w.Count)
	for i := w.Start; i < w.End(); i++ {
		rows = append(rows, StackRow{
			Index: i,
			Addr:  stack.WordAddr(i),
			Value: stack.Word(i),
		})
	}

	return rows, w
}
