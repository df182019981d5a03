// Package tui is a full screen front-end for a session, showing code, registers, stack and input fields side by side.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dylandreimerink/asmviz/cmd/flags"
	"github.com/dylandreimerink/asmviz/pkg/interp"
	"github.com/dylandreimerink/asmviz/pkg/machine"
	"github.com/dylandreimerink/asmviz/pkg/session"
	"github.com/dylandreimerink/asmviz/pkg/snapshot"
	"github.com/dylandreimerink/asmviz/pkg/textfield"
)

var (
	panelBorder = lipgloss.Color("#555555")
	accent      = lipgloss.Color("#FFD75F")
	usedColor   = lipgloss.Color("#66FF66")
	mutedText   = lipgloss.Color("#8A8A8A")
	errorColor  = lipgloss.Color("#FF6B6B")
)

var (
	panelStyle = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(panelBorder).
		Padding(0, 1)

	titleStyle     = lipgloss.NewStyle().Bold(true)
	highlightStyle = lipgloss.NewStyle().Foreground(accent).Bold(true)
	usedStyle      = lipgloss.NewStyle().Foreground(usedColor)
	hintStyle      = lipgloss.NewStyle().Foreground(mutedText)
	activeStyle    = lipgloss.NewStyle().Foreground(accent)
	cursorStyle    = lipgloss.NewStyle().Reverse(true)
	statusStyle    = lipgloss.NewStyle().Foreground(accent)
	errorStyle     = lipgloss.NewStyle().Foreground(errorColor).Bold(true)
)

const helpText = "space step | r reset | l load | e export | tab next field | enter set value | esc release field / quit"

func Command(log logrus.FieldLogger) *cobra.Command {
	addrs := flags.Defaults()

	cmd := &cobra.Command{
		Use:   "tui {listing}",
		Short: "Step through a listing in a full screen view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := New(session.New(interp.New(), session.OptLogger(log)), args[0], addrs)
			if err := m.load(); err != nil {
				return err
			}

			_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
			return err
		},
	}

	addrs.Register(cmd.Flags())

	return cmd
}

// Model is the bubbletea model of the full screen front-end.
type Model struct {
	sess  *session.Controller
	path  string
	addrs flags.Session

	// exportPath is where 'e' writes the snapshot
	exportPath string

	status string
	err    string
}

func New(sess *session.Controller, path string, addrs flags.Session) Model {
	return Model{
		sess:       sess,
		path:       path,
		addrs:      addrs,
		exportPath: snapshot.DefaultFileName,
	}
}

func (m Model) load() error {
	return m.addrs.Load(m.sess, m.path)
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if key.String() == "ctrl+c" {
		return m, tea.Quit
	}

	// Keys shared by both modes
	switch key.String() {
	case "tab":
		m.sess.EditActiveField(session.Key(textfield.KeyTab))
		return m, nil
	case "enter":
		m.commit()
		return m, nil
	}

	if _, active := m.sess.ActiveField(); active {
		return m.updateField(key)
	}

	switch key.String() {
	case " ":
		m.step()
	case "r":
		m.clearStatus()
		if err := m.sess.Reset(); err != nil {
			m.err = err.Error()
		} else {
			m.status = "Session reset"
		}
	case "l":
		m.clearStatus()
		if err := m.load(); err != nil {
			m.err = err.Error()
		} else {
			m.status = fmt.Sprintf("Loaded %s", m.path)
		}
	case "e":
		m.clearStatus()
		path, err := snapshot.Export(m.sess, m.exportPath)
		if err != nil {
			m.err = err.Error()
		} else {
			m.status = fmt.Sprintf("Exported to %s", path)
		}
	case "esc", "q":
		return m, tea.Quit
	}

	return m, nil
}

func (m *Model) clearStatus() {
	m.status = ""
	m.err = ""
}

func (m *Model) step() {
	m.clearStatus()

	stepped, err := m.sess.Step()
	switch {
	case err != nil:
		m.err = err.Error()
	case !stepped && m.sess.Halted():
		m.status = "Program counter reached end address"
	}
}

func (m *Model) commit() {
	m.clearStatus()

	res := m.sess.CommitValue()
	var parts []string
	if res.RegisterSet {
		parts = append(parts, fmt.Sprintf("Set register %s to 0x%x", machine.RegisterName(res.Register), res.RegisterValue))
	}
	if res.MemorySet {
		parts = append(parts, fmt.Sprintf("Set memory at 0x%x to 0x%x", res.Address, res.MemoryValue))
	}
	m.status = strings.Join(parts, ", ")
}

var editKeys = map[string]textfield.Key{
	"backspace": textfield.KeyBackspace,
	"delete":    textfield.KeyDelete,
	"left":      textfield.KeyLeft,
	"right":     textfield.KeyRight,
	"home":      textfield.KeyHome,
	"end":       textfield.KeyEnd,
	"ctrl+u":    textfield.KeyClear,
}

func (m Model) updateField(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.String() == "esc" {
		m.sess.ReleaseFields()
		return m, nil
	}

	if k, ok := editKeys[key.String()]; ok {
		m.sess.EditActiveField(session.Key(k))
		return m, nil
	}

	if key.Type == tea.KeyRunes || key.Type == tea.KeySpace {
		var edits []session.Edit
		for _, r := range key.Runes {
			edits = append(edits, session.Char(r))
		}
		m.sess.EditActiveField(edits...)
	}

	return m, nil
}

func (m Model) View() string {
	m.sess.ShowFields()
	snap := m.sess.Snapshot()

	top := lipgloss.JoinHorizontal(lipgloss.Top,
		renderPanel("Code", renderCode(snap)),
		renderPanel("Registers", renderRegisters(snap)),
		renderPanel("Memory (Stack)", renderStack(snap)),
		renderPanel("User Input", renderFields(snap)),
	)

	status := statusStyle.Render(m.status)
	if m.err != "" {
		status = errorStyle.Render(m.err)
	}

	return lipgloss.JoinVertical(lipgloss.Left, top, status, hintStyle.Render(helpText))
}

func renderPanel(title, body string) string {
	return panelStyle.Render(titleStyle.Render(title) + "\n" + body)
}

func renderCode(snap session.Snapshot) string {
	if !snap.Initialized {
		return "No code loaded"
	}

	var sb strings.Builder
	for _, line := range snap.CodeLines() {
		text := fmt.Sprintf("%04X: %s", line.Addr, line.Text)
		if line.Current {
			text = highlightStyle.Render(text)
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	return strings.TrimSuffix(sb.String(), "\n")
}

func renderRegisters(snap session.Snapshot) string {
	if !snap.Initialized {
		return "Not initialized"
	}

	lines := make([]string, 0, len(snap.Registers))
	for _, row := range snap.Registers {
		text := fmt.Sprintf("%s: 0x%x", row.Name, row.Value)
		if row.Used {
			text = usedStyle.Render(text)
		}
		lines = append(lines, text)
	}

	return strings.Join(lines, "\n")
}

func renderStack(snap session.Snapshot) string {
	if len(snap.Stack) == 0 {
		return "No memory to display"
	}

	lines := make([]string, 0, len(snap.Stack))
	for _, row := range snap.Stack {
		lines = append(lines, fmt.Sprintf("0x%x: 0x%x", row.Addr, row.Value))
	}

	return strings.Join(lines, "\n")
}

func renderFields(snap session.Snapshot) string {
	var sb strings.Builder
	for _, f := range snap.Fields {
		if !f.Visible {
			continue
		}

		label := f.Label + ":"
		if f.Active {
			label = activeStyle.Render("> " + label)
		}
		sb.WriteString(label)
		sb.WriteString("\n")

		switch {
		case f.Active:
			sb.WriteString(renderCursor(f.Text, f.Cursor))
		case f.Text == "":
			sb.WriteString(hintStyle.Render(f.Hint))
		default:
			sb.WriteString(f.Text)
		}
		sb.WriteString("\n\n")
	}

	return strings.TrimSuffix(sb.String(), "\n\n")
}

// renderCursor draws text with the rune at cursor in reverse video, a trailing block if the cursor is at the end
func renderCursor(text string, cursor int) string {
	runes := []rune(text)
	if cursor >= len(runes) {
		return text + cursorStyle.Render(" ")
	}

	return string(runes[:cursor]) + cursorStyle.Render(string(runes[cursor])) + string(runes[cursor+1:])
}
