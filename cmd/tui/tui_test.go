package tui

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/dylandreimerink/asmviz/cmd/flags"
	"github.com/dylandreimerink/asmviz/pkg/interp"
	"github.com/dylandreimerink/asmviz/pkg/machine"
	"github.com/dylandreimerink/asmviz/pkg/session"
	"github.com/dylandreimerink/asmviz/pkg/snapshot"
	"github.com/dylandreimerink/asmviz/pkg/textfield"
)

func newModel(t *testing.T) (Model, *session.Controller) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "prog.s")
	if err := os.WriteFile(path, []byte("mov x1, #7\nnop\nnop\n"), 0644); err != nil {
		t.Fatal(err)
	}

	log := logrus.New()
	log.SetOutput(io.Discard)

	addrs := flags.Defaults()
	addrs.PCEnd = 0x400C

	sess := session.New(interp.New(), session.OptLogger(log))
	m := New(sess, path, addrs)
	m.exportPath = filepath.Join(dir, snapshot.DefaultFileName)
	if err := m.load(); err != nil {
		t.Fatal(err)
	}

	return m, sess
}

func press(t *testing.T, m Model, keys ...tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()

	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(k)
		m = next.(Model)
	}

	return m, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	space = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	tab   = tea.KeyMsg{Type: tea.KeyTab}
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
)

func TestStepAndHalt(t *testing.T) {
	m, sess := newModel(t)

	m, _ = press(t, m, space)
	if sess.PC() != 0x4004 {
		t.Fatalf("expected pc 0x4004, got 0x%x", sess.PC())
	}

	m, _ = press(t, m, space, space, space)
	if !sess.Halted() {
		t.Fatal("expected session to be halted")
	}
	if !strings.Contains(m.status, "end address") {
		t.Fatalf("unexpected status %q", m.status)
	}
}

func TestResetKey(t *testing.T) {
	m, sess := newModel(t)

	m, _ = press(t, m, space, runes("r"))
	if sess.PC() != 0x4000 || m.status != "Session reset" {
		t.Fatalf("expected reset session, pc=0x%x status=%q", sess.PC(), m.status)
	}

	var x1 uint64
	sess.Inspect(func(mm machine.Machine) { x1 = mm.Registers().Get(1) })
	if x1 != 0 {
		t.Fatalf("expected x1 to be cleared, got %d", x1)
	}
}

func TestFieldsCommitRegister(t *testing.T) {
	m, sess := newModel(t)

	// tab activates the register field, typing goes to the field instead of triggering shortcuts
	m, _ = press(t, m, tab, runes("5"), tab, tab, runes("0x1"), runes("r"))
	if id, active := sess.ActiveField(); !active || id != textfield.FieldValue {
		t.Fatalf("expected value field to be active, got %v %v", id, active)
	}
	if sess.PC() != 0x4000 {
		t.Fatal("shortcut keys must not fire while a field is active")
	}

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyBackspace}, runes("f"), enter)

	var x5 uint64
	sess.Inspect(func(mm machine.Machine) { x5 = mm.Registers().Get(5) })
	if x5 != 0x1f {
		t.Fatalf("expected x5 = 0x1f, got 0x%x", x5)
	}
	if m.status != "Set register x5 to 0x1f" {
		t.Fatalf("unexpected status %q", m.status)
	}

	if _, active := sess.ActiveField(); active {
		t.Fatal("commit should release focus")
	}
	for _, f := range sess.FieldStates() {
		if f.Text != "" {
			t.Fatalf("field %s not cleared: %q", f.Label, f.Text)
		}
	}
}

func TestEscReleasesThenQuits(t *testing.T) {
	m, sess := newModel(t)

	m, cmd := press(t, m, tab, esc)
	if _, active := sess.ActiveField(); active || cmd != nil {
		t.Fatal("esc with an active field should only release it")
	}

	_, cmd = press(t, m, esc)
	if cmd == nil {
		t.Fatal("esc without an active field should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected quit message")
	}
}

func TestExportKey(t *testing.T) {
	m, _ := newModel(t)

	m, _ = press(t, m, runes("e"))
	if m.err != "" {
		t.Fatal(m.err)
	}

	if _, err := os.Stat(m.exportPath); err != nil {
		t.Fatalf("expected export file: %s", err)
	}
}

func TestView(t *testing.T) {
	m, _ := newModel(t)

	m, _ = press(t, m, space, tab)
	out := m.View()

	for _, want := range []string{"Code", "4000: mov x1, #7", "x1: 0x7", "0xfef8: 0x0", "Register:", "0xAddress", helpText} {
		if !strings.Contains(out, want) {
			t.Errorf("view is missing %q", want)
		}
	}
}
