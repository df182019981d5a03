package debug

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
)

const magicMacroStr = "# asmviz macro file, don't remove this comment"

// macroFile is a parsed macro file. Comments outside of macros are kept so a file survives being rewritten.
//
//	# comment
//	step-and-show:
//	  step
//	  memory list
//
// A macro starts with its name followed by a colon and ends at the first empty line.
type macroFile struct {
	// HasMagic is true if the file started with magicMacroStr, files without it are never overwritten
	HasMagic bool
	Parts    []macroFilePart
}

type macroFilePart interface {
	MacroString() string
}

type macroDefinition struct {
	Name     string
	Commands []string
}

func (md *macroDefinition) MacroString() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s:\n", md.Name)
	for _, c := range md.Commands {
		fmt.Fprintf(&sb, " %s\n", c)
	}
	sb.WriteString("\n")

	return sb.String()
}

type macroComment string

func (mc macroComment) MacroString() string {
	return fmt.Sprintf("# %s\n", mc)
}

func isComment(line string) bool {
	return strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//")
}

func parseMacroFile(r io.Reader) (*macroFile, error) {
	var (
		mf  macroFile
		cur *macroDefinition
	)

	flush := func() {
		if cur != nil {
			mf.Parts = append(mf.Parts, cur)
			cur = nil
		}
	}

	s := bufio.NewScanner(r)
	for first := true; s.Scan(); first = false {
		raw := s.Text()
		if first && raw == magicMacroStr {
			mf.HasMagic = true
			continue
		}

		line := strings.TrimSpace(raw)
		switch {
		case line == "":
			flush()

		case isComment(line):
			text := strings.TrimSpace(strings.TrimLeft(line, "#/"))
			if cur == nil {
				mf.Parts = append(mf.Parts, macroComment(text))
			} else {
				// The executor skips comments, so they can live inside a macro
				cur.Commands = append(cur.Commands, "# "+text)
			}

		case strings.HasSuffix(line, ":"):
			flush()
			cur = &macroDefinition{Name: strings.TrimSpace(strings.TrimSuffix(line, ":"))}

		case cur != nil:
			cur.Commands = append(cur.Commands, line)
		}
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("read line: %w", err)
	}
	flush()

	return &mf, nil
}

// Macros returns all macro definitions in file order.
func (mf *macroFile) Macros() []*macroDefinition {
	var m []*macroDefinition
	for _, p := range mf.Parts {
		if md, ok := p.(*macroDefinition); ok {
			m = append(m, md)
		}
	}

	return m
}

// Set replaces the commands of the macro with the given name or appends a new macro.
func (mf *macroFile) Set(name string, commands []string) {
	for _, md := range mf.Macros() {
		if md.Name == name {
			md.Commands = commands
			return
		}
	}

	mf.Parts = append(mf.Parts, &macroDefinition{Name: name, Commands: commands})
}

func (mf *macroFile) save(w io.Writer) error {
	if _, err := fmt.Fprintln(w, magicMacroStr); err != nil {
		return fmt.Errorf("write magic: %w", err)
	}

	for _, p := range mf.Parts {
		if _, err := fmt.Fprint(w, p.MacroString()); err != nil {
			return fmt.Errorf("write part: %w", err)
		}
	}

	return nil
}

func (mf *macroFile) WriteFile(path string) error {
	var buf bytes.Buffer
	if err := mf.save(&buf); err != nil {
		return err
	}

	return os.WriteFile(path, buf.Bytes(), 0644)
}
