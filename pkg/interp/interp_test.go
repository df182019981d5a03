package interp

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dylandreimerink/asmviz/pkg/machine"
)

const sumListing = `
// sum the numbers 1..5 and push the result
.text
start:
	mov x1, #5
	mov x0, xzr
loop:
	add x0, x0, x1
	sub x1, x1, #1
	cbnz x1, loop
	str x0, [sp, #-16]!
	ldr x2, [sp], #16
done:
	nop
`

func loadString(t *testing.T, listing string) *Machine {
	t.Helper()

	code, labels, err := ReadListing(strings.NewReader(listing), 0x4000)
	if err != nil {
		t.Fatal(err)
	}

	m := New()
	m.Reset(0xFF00, 0x4000, code, labels)
	return m
}

// run steps the machine the same way a session does, until the pc reaches end.
func run(t *testing.T, m *Machine, end uint64, limit int) {
	t.Helper()

	for i := 0; i < limit; i++ {
		pc := m.Registers().PC()
		if pc == end {
			return
		}

		line := m.Code()[(pc-m.CodeStart())/machine.InstructionSize]
		inst, err := m.Parse(line)
		if err != nil {
			t.Fatal(err)
		}

		m.Registers().SetPC(pc + machine.InstructionSize)
		if err := m.Execute(inst); err != nil {
			t.Fatal(err)
		}
	}

	t.Fatalf("program didn't reach 0x%x within %d steps", end, limit)
}

func TestReadListing(t *testing.T) {
	code, labels, err := ReadListing(strings.NewReader(sumListing), 0x4000)
	if err != nil {
		t.Fatal(err)
	}

	if len(code) != 8 {
		t.Fatalf("expected 8 instructions, got %d: %q", len(code), code)
	}

	want := map[string]uint64{"start": 0x4000, "loop": 0x4008, "done": 0x401C}
	for name, addr := range want {
		if labels[name] != addr {
			t.Fatalf("label %s: expected 0x%x, got 0x%x", name, addr, labels[name])
		}
	}
}

func TestReadListingBridgeFormat(t *testing.T) {
	listing := "004000: 00000000   add x1,xzr,#5\n004004: 00000000   nop\n"
	code, _, err := ReadListing(strings.NewReader(listing), 0x4000)
	if err != nil {
		t.Fatal(err)
	}

	if len(code) != 2 || code[0] != "add x1,xzr,#5" || code[1] != "nop" {
		t.Fatalf("unexpected code %q", code)
	}
}

func TestReadListingDuplicateLabel(t *testing.T) {
	_, _, err := ReadListing(strings.NewReader("a:\nnop\na:\nnop\n"), 0)
	if err == nil {
		t.Fatal("expected duplicate label error")
	}
}

func TestRunSum(t *testing.T) {
	m := loadString(t, sumListing)
	run(t, m, 0x401C, 100)

	regs := m.Registers()
	if regs.Get(0) != 15 {
		t.Fatalf("expected x0 = 15, got %d", regs.Get(0))
	}
	if regs.Get(2) != 15 {
		t.Fatalf("expected x2 = 15 after the pop, got %d", regs.Get(2))
	}
	if regs.Get(machine.SP) != 0xFF00 {
		t.Fatalf("expected sp back at 0xFF00, got 0x%x", regs.Get(machine.SP))
	}
	if !regs.IsUsed(0) || !regs.IsUsed(1) || regs.IsUsed(3) {
		t.Fatal("unexpected used flags")
	}

	v, err := m.Stack().WordAt(0xFF00 - 16)
	if err != nil {
		t.Fatal(err)
	}
	if v != 15 {
		t.Fatalf("expected pushed word 15, got %d", v)
	}
}

func TestConditionalBranch(t *testing.T) {
	m := loadString(t, `
	mov x0, #3
	cmp x0, #4
	b.lt less
	mov x1, #1
	b end
less:
	mov x1, #2
end:
	nop
`)
	run(t, m, 0x4018, 20)

	if m.Registers().Get(1) != 2 {
		t.Fatalf("expected x1 = 2, got %d", m.Registers().Get(1))
	}
}

func TestCallReturn(t *testing.T) {
	m := loadString(t, `
	bl fn
	b end
fn:
	mov x0, #42
	ret
end:
	nop
`)
	run(t, m, 0x4010, 20)

	if m.Registers().Get(0) != 42 {
		t.Fatalf("expected x0 = 42, got %d", m.Registers().Get(0))
	}
	if m.Registers().Get(30) != 0x4004 {
		t.Fatalf("expected lr = 0x4004, got 0x%x", m.Registers().Get(30))
	}
}

func TestALU(t *testing.T) {
	tests := []struct {
		op   string
		a, b uint64
		want uint64
	}{
		{"add", 2, 3, 5},
		{"sub", 2, 3, ^uint64(0)},
		{"mul", 6, 7, 42},
		{"udiv", 7, 0, 0},
		{"sdiv", ^uint64(5), 2, ^uint64(2)},
		{"lsl", 1, 65, 2},
		{"asr", 1 << 63, 63, ^uint64(0)},
		{"eor", 0xF0, 0xFF, 0x0F},
	}

	for _, test := range tests {
		if got := alu(test.op, test.a, test.b); got != test.want {
			t.Errorf("%s(0x%x, 0x%x): expected 0x%x, got 0x%x", test.op, test.a, test.b, test.want, got)
		}
	}
}

func TestParseErrors(t *testing.T) {
	m := New()

	if _, err := m.Parse("frobnicate x0"); !errors.Is(err, ErrUnknownInstruction) {
		t.Fatalf("expected ErrUnknownInstruction, got %v", err)
	}

	for _, line := range []string{"add x0, x1", "mov x99, #1", "b nowhere", "b.xx somewhere", "ldr x0, sp"} {
		if _, err := m.Parse(line); err == nil {
			t.Fatalf("expected error parsing '%s'", line)
		}
	}
}

func TestParseBranch(t *testing.T) {
	inst, err := parse("cbz x3, 0x4010", nil)
	if err != nil {
		t.Fatal(err)
	}

	target, conditional, ok := inst.Branch()
	if !ok || !conditional || target != 0x4010 {
		t.Fatalf("unexpected branch info: 0x%x %v %v", target, conditional, ok)
	}

	ret, err := parse("ret", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !ret.Terminates() {
		t.Fatal("ret should terminate")
	}
}

func TestStoreOutsideStack(t *testing.T) {
	m := loadString(t, "str x0, [sp]\n")

	inst, err := m.Parse(m.Code()[0])
	if err != nil {
		t.Fatal(err)
	}

	// sp points at the top of the stack, one past the last valid address
	if err := m.Execute(inst); !errors.Is(err, machine.ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
}

func TestInitKeepsStateOnError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.s")
	if err := os.WriteFile(path, []byte("mov x0, #1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	m := New()
	if err := m.Init(0xFF00, 0x4000, path); err != nil {
		t.Fatal(err)
	}

	if err := m.Init(0xFF00, 0x4000, filepath.Join(dir, "missing.s")); err == nil {
		t.Fatal("expected error for missing file")
	}

	if len(m.Code()) != 1 || m.CodeStart() != 0x4000 {
		t.Fatal("failed init should keep the previous listing")
	}
	if m.Stack().Bot != 0xFF00-DefaultStackSize || m.Stack().Top != 0xFF00 {
		t.Fatalf("unexpected stack bounds [0x%x, 0x%x)", m.Stack().Bot, m.Stack().Top)
	}
}

func TestFlagsString(t *testing.T) {
	tests := []struct {
		flags Flags
		want  string
	}{
		{Flags{}, "nzcv"},
		{Flags{Z: true, C: true}, "nZCv"},
		{Flags{N: true, Z: true, C: true, V: true}, "NZCV"},
	}

	for _, test := range tests {
		if got := test.flags.String(); got != test.want {
			t.Errorf("%+v: expected %q, got %q", test.flags, test.want, got)
		}
	}
}
