package session

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/sirupsen/logrus"

	"github.com/dylandreimerink/asmviz/pkg/machine"
	"github.com/dylandreimerink/asmviz/pkg/textfield"
)

// stubInst is "inc N", which increments register N, or "nop"
type stubInst string

func (s stubInst) String() string { return string(s) }

// stubMachine implements machine.Machine without a real decoder
type stubMachine struct {
	listing []string
	initErr error

	regs      machine.RegisterFile
	stack     *machine.Stack
	codeStart uint64
	code      []string

	inits    int
	execPCs  []uint64
	executed []string
}

func (s *stubMachine) Init(spStart, pcStart uint64, path string) error {
	if s.initErr != nil {
		return s.initErr
	}

	s.inits++
	s.regs.Reset()
	s.regs.Values[machine.SP] = spStart
	s.regs.SetPC(pcStart)
	s.stack = machine.NewStack(spStart-0x100, spStart)
	s.codeStart = pcStart
	s.code = append([]string(nil), s.listing...)
	s.execPCs = nil
	s.executed = nil
	return nil
}

func (s *stubMachine) Parse(line string) (machine.Instruction, error) {
	if line == "nop" || strings.HasPrefix(line, "inc ") {
		return stubInst(line), nil
	}

	return nil, fmt.Errorf("can't decode '%s'", line)
}

func (s *stubMachine) Execute(inst machine.Instruction) error {
	s.execPCs = append(s.execPCs, s.regs.PC())
	s.executed = append(s.executed, inst.String())

	if reg := strings.TrimPrefix(inst.String(), "inc "); reg != inst.String() {
		n, err := strconv.Atoi(reg)
		if err != nil {
			return err
		}
		return s.regs.Set(n, s.regs.Get(n)+1)
	}

	return nil
}

func (s *stubMachine) Registers() *machine.RegisterFile { return &s.regs }
func (s *stubMachine) Stack() *machine.Stack            { return s.stack }
func (s *stubMachine) CodeStart() uint64                { return s.codeStart }
func (s *stubMachine) Code() []string                   { return s.code }

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newLoaded(t *testing.T, listing ...string) (*Controller, *stubMachine) {
	t.Helper()

	m := &stubMachine{listing: listing}
	c := New(m, OptLogger(quietLogger()))
	if err := c.Load("prog.s", 0x4000, 0x4000+uint64(len(listing))*4, 0xFF00); err != nil {
		t.Fatal(err)
	}

	return c, m
}

func TestUnloaded(t *testing.T) {
	m := &stubMachine{listing: []string{"inc 1"}}
	c := New(m, OptLogger(quietLogger()))

	stepped, err := c.Step()
	if stepped || err != nil {
		t.Fatalf("step without load: stepped=%v err=%v", stepped, err)
	}

	if err := c.Reset(); err != nil {
		t.Fatal(err)
	}
	if m.inits != 0 {
		t.Fatal("reset without load should not initialize the machine")
	}

	if c.Initialized() {
		t.Fatal("session should not be initialized")
	}
	if _, ok := c.Config(); ok {
		t.Fatal("no config expected before load")
	}
}

func TestStepAdvancesPCBeforeExecute(t *testing.T) {
	c, m := newLoaded(t, "inc 1", "inc 2", "nop")

	for i := 0; i < 2; i++ {
		stepped, err := c.Step()
		if err != nil {
			t.Fatal(err)
		}
		if !stepped {
			t.Fatal("expected an instruction to execute")
		}
	}

	if len(m.execPCs) != 2 || m.execPCs[0] != 0x4004 || m.execPCs[1] != 0x4008 {
		t.Fatalf("execute observed pcs %#x, expected post increment values", m.execPCs)
	}
	if m.regs.Get(1) != 1 || m.regs.Get(2) != 1 {
		t.Fatalf("unexpected registers\n%s", spew.Sdump(m.regs))
	}
}

func TestStepHaltsAtPCEnd(t *testing.T) {
	c, m := newLoaded(t, "inc 1", "inc 1")

	if _, err := c.Continue(0, nil); err != nil {
		t.Fatal(err)
	}
	if !c.Halted() {
		t.Fatal("expected session to be halted")
	}

	before := m.regs
	stepped, err := c.Step()
	if stepped || err != nil {
		t.Fatalf("step at end: stepped=%v err=%v", stepped, err)
	}
	if m.regs != before {
		t.Fatalf("registers changed after end was reached\nbefore: %s\nafter: %s", spew.Sdump(before), spew.Sdump(m.regs))
	}
}

func TestStepOutOfRange(t *testing.T) {
	m := &stubMachine{listing: []string{"nop"}}
	c := New(m, OptLogger(quietLogger()))
	// pc end is never reached, so the pc runs off the listing
	if err := c.Load("prog.s", 0x4000, 0x8000, 0xFF00); err != nil {
		t.Fatal(err)
	}

	if _, err := c.Step(); err != nil {
		t.Fatal(err)
	}

	stepped, err := c.Step()
	if stepped || !errors.Is(err, ErrCodeIndexOutOfRange) {
		t.Fatalf("expected ErrCodeIndexOutOfRange, got stepped=%v err=%v", stepped, err)
	}

	m.regs.SetPC(0x3000)
	if _, err := c.Step(); !errors.Is(err, ErrCodeIndexOutOfRange) {
		t.Fatalf("pc below code start: expected ErrCodeIndexOutOfRange, got %v", err)
	}
}

func TestStepDecodeError(t *testing.T) {
	c, m := newLoaded(t, "garbage")

	stepped, err := c.Step()
	if stepped || err == nil {
		t.Fatalf("expected decode error, got stepped=%v err=%v", stepped, err)
	}
	if m.regs.PC() != 0x4000 {
		t.Fatalf("decode error should leave pc at 0x4000, got 0x%x", m.regs.PC())
	}
}

func TestResetRestoresLoadState(t *testing.T) {
	c, m := newLoaded(t, "inc 1", "inc 2", "inc 3", "nop")
	loaded := m.regs

	for i := 0; i < 3; i++ {
		if _, err := c.Step(); err != nil {
			t.Fatal(err)
		}
	}
	if m.regs == loaded {
		t.Fatal("steps should have changed the registers")
	}

	if err := c.Reset(); err != nil {
		t.Fatal(err)
	}
	if m.regs != loaded {
		t.Fatalf("reset didn't restore registers\nwant: %s\ngot: %s", spew.Sdump(loaded), spew.Sdump(m.regs))
	}
	if m.inits != 2 {
		t.Fatalf("expected 2 inits, got %d", m.inits)
	}
}

func TestLoadFailureKeepsState(t *testing.T) {
	c, m := newLoaded(t, "nop")

	m.initErr = errors.New("no such file")
	if err := c.Load("other.s", 0x1000, 0x2000, 0x3000); err == nil {
		t.Fatal("expected load error")
	}

	cfg, ok := c.Config()
	if !ok || cfg.FilePath != "prog.s" || cfg.PCStart != 0x4000 {
		t.Fatalf("config changed after failed load: %+v", cfg)
	}
	if !c.Initialized() {
		t.Fatal("session should still be initialized")
	}
}

func TestLoadStoresConfigVerbatim(t *testing.T) {
	m := &stubMachine{listing: []string{"nop"}}
	c := New(m, OptLogger(quietLogger()))

	if err := c.Load("a.s", 0x4000, 0x7FFF, 0xFF00); err != nil {
		t.Fatal(err)
	}

	want := Config{FilePath: "a.s", PCStart: 0x4000, PCEnd: 0x7FFF, SPStart: 0xFF00}
	if cfg, _ := c.Config(); cfg != want {
		t.Fatalf("expected %+v, got %+v", want, cfg)
	}
}

func TestContinue(t *testing.T) {
	c, _ := newLoaded(t, "inc 1", "inc 1", "inc 1", "inc 1", "nop")

	n, err := c.Continue(2, nil)
	if err != nil || n != 2 {
		t.Fatalf("limit: n=%d err=%v", n, err)
	}

	n, err = c.Continue(0, func(pc uint64) bool { return pc == 0x4010 })
	if err != nil || n != 2 {
		t.Fatalf("stop: n=%d err=%v", n, err)
	}
	if c.PC() != 0x4010 {
		t.Fatalf("expected pc 0x4010, got 0x%x", c.PC())
	}

	n, err = c.Continue(0, nil)
	if err != nil || n != 1 || !c.Halted() {
		t.Fatalf("run to end: n=%d err=%v halted=%v", n, err, c.Halted())
	}
}

func typeInto(c *Controller, id textfield.FieldID, text string) {
	c.ActivateField(id)
	for _, r := range text {
		c.EditActiveField(Char(r))
	}
}

func assertFieldsCleared(t *testing.T, c *Controller) {
	t.Helper()

	if _, ok := c.ActiveField(); ok {
		t.Fatal("no field should be active after commit")
	}
	for _, f := range c.FieldStates() {
		if f.Text != "" || f.Active {
			t.Fatalf("field %v not cleared: %+v", f.ID, f)
		}
	}
}

func TestCommitRegister(t *testing.T) {
	c, m := newLoaded(t, "nop")
	stackBefore := c.StackViewWindow()

	typeInto(c, textfield.FieldRegister, "5")
	typeInto(c, textfield.FieldValue, "0x10")

	res := c.CommitValue()
	if !res.RegisterSet || res.MemorySet {
		t.Fatalf("unexpected result %+v", res)
	}
	if m.regs.Get(5) != 0x10 || !m.regs.IsUsed(5) {
		t.Fatalf("register 5 = 0x%x used=%v", m.regs.Get(5), m.regs.IsUsed(5))
	}

	stackAfter := c.StackViewWindow()
	for i := range stackBefore {
		if stackBefore[i] != stackAfter[i] {
			t.Fatalf("stack word %d changed", stackBefore[i].Index)
		}
	}

	assertFieldsCleared(t, c)
}

func TestCommitMemory(t *testing.T) {
	c, m := newLoaded(t, "nop")
	regsBefore := m.regs

	bot := m.stack.Bot
	typeInto(c, textfield.FieldMemory, fmt.Sprintf("0x%x", bot+16))
	typeInto(c, textfield.FieldValue, "7")

	res := c.CommitValue()
	if res.RegisterSet || !res.MemorySet {
		t.Fatalf("unexpected result %+v", res)
	}
	if m.stack.Word(2) != 7 {
		t.Fatalf("expected stack word 2 = 7, got %d", m.stack.Word(2))
	}
	if m.regs != regsBefore {
		t.Fatal("registers changed by a memory commit")
	}

	assertFieldsCleared(t, c)
}

func TestCommitBothPaths(t *testing.T) {
	c, m := newLoaded(t, "nop")

	c.SetField(textfield.FieldRegister, "31")
	c.SetField(textfield.FieldMemory, fmt.Sprintf("%d", m.stack.Bot))
	c.SetField(textfield.FieldValue, "010")

	res := c.CommitValue()
	if !res.RegisterSet || !res.MemorySet {
		t.Fatalf("expected both paths to apply: %+v", res)
	}
	// a leading zero selects octal
	if m.regs.Get(machine.SP) != 8 || m.stack.Word(0) != 8 {
		t.Fatalf("sp = %d, word 0 = %d", m.regs.Get(machine.SP), m.stack.Word(0))
	}
}

func TestCommitSkipsInvalidInput(t *testing.T) {
	tests := []struct {
		name          string
		reg, mem, val string
	}{
		{name: "register too high", reg: "33", val: "1"},
		{name: "negative register", reg: "-1", val: "1"},
		{name: "no value", reg: "1", mem: "0xFF00"},
		{name: "address above stack", mem: "0xFF00", val: "1"},
		{name: "address below stack", mem: "0x10", val: "1"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c, m := newLoaded(t, "nop")
			regsBefore := m.regs

			c.SetField(textfield.FieldRegister, test.reg)
			c.SetField(textfield.FieldMemory, test.mem)
			c.SetField(textfield.FieldValue, test.val)
			c.ActivateField(textfield.FieldValue)

			res := c.CommitValue()
			if res.RegisterSet || res.MemorySet {
				t.Fatalf("expected nothing to apply, got %+v", res)
			}
			if m.regs != regsBefore {
				t.Fatal("registers changed")
			}
			for i := 0; i < m.stack.Len(); i++ {
				if m.stack.Word(i) != 0 {
					t.Fatalf("stack word %d changed", i)
				}
			}

			assertFieldsCleared(t, c)
		})
	}
}

func TestCommitMalformedValueIsZero(t *testing.T) {
	c, m := newLoaded(t, "nop")
	_ = m.regs.Set(3, 99)

	c.SetField(textfield.FieldRegister, "3")
	c.SetField(textfield.FieldValue, "zz")

	res := c.CommitValue()
	if !res.RegisterSet || m.regs.Get(3) != 0 {
		t.Fatalf("malformed value should be written as zero, got %+v, x3=%d", res, m.regs.Get(3))
	}
}

func TestCommitUnloadedClearsFields(t *testing.T) {
	c := New(&stubMachine{}, OptLogger(quietLogger()))

	typeInto(c, textfield.FieldRegister, "1")
	typeInto(c, textfield.FieldValue, "1")

	if res := c.CommitValue(); res.RegisterSet || res.MemorySet {
		t.Fatalf("nothing should apply without a session, got %+v", res)
	}
	assertFieldsCleared(t, c)
}

func TestEditActiveField(t *testing.T) {
	c := New(&stubMachine{}, OptLogger(quietLogger()))

	c.EditActiveField(Char('1'))
	for _, f := range c.FieldStates() {
		if f.Text != "" {
			t.Fatal("edit without active field should be dropped")
		}
	}

	c.ActivateField(textfield.FieldMemory)
	c.EditActiveField(Char('1'), Char('2'), Key(textfield.KeyLeft), Char('x'), Key(textfield.KeyTab))

	states := c.FieldStates()
	if states[textfield.FieldMemory].Text != "1x2" {
		t.Fatalf("expected '1x2', got '%s'", states[textfield.FieldMemory].Text)
	}
	if id, _ := c.ActiveField(); id != textfield.FieldValue {
		t.Fatalf("tab should move focus to value, got %v", id)
	}
}
