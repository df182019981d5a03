package debug

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

const testMacroFile = `# asmviz macro file, don't remove this comment
# setup for the sum example
init:
 load sum.s
 # stop in the loop
 breakpoint set loop

step-show:
 step
 memory list
`

func TestParseMacroFile(t *testing.T) {
	mf, err := parseMacroFile(strings.NewReader(testMacroFile))
	if err != nil {
		t.Fatal(err)
	}

	if !mf.HasMagic {
		t.Fatal("expected magic header to be detected")
	}

	macros := mf.Macros()
	if len(macros) != 2 {
		t.Fatalf("expected 2 macros, got %d", len(macros))
	}

	if macros[0].Name != "init" || len(macros[0].Commands) != 3 || macros[0].Commands[1] != "# stop in the loop" {
		t.Fatalf("unexpected first macro %+v", macros[0])
	}

	if macros[1].Name != "step-show" || strings.Join(macros[1].Commands, ";") != "step;memory list" {
		t.Fatalf("unexpected second macro %+v", macros[1])
	}

	if len(mf.Parts) != 3 {
		t.Fatalf("expected the leading comment to be kept, got %d parts", len(mf.Parts))
	}
}

func TestMacroFileRoundTrip(t *testing.T) {
	mf, err := parseMacroFile(strings.NewReader(testMacroFile))
	if err != nil {
		t.Fatal(err)
	}

	mf.Set("step-show", []string{"step 2"})
	mf.Set("new", []string{"registers"})

	path := filepath.Join(t.TempDir(), "macros.txt")
	if err := mf.WriteFile(path); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := mf.save(&buf); err != nil {
		t.Fatal(err)
	}

	reparsed, err := parseMacroFile(&buf)
	if err != nil {
		t.Fatal(err)
	}

	macros := reparsed.Macros()
	if len(macros) != 3 {
		t.Fatalf("expected 3 macros, got %d", len(macros))
	}
	if macros[1].Commands[0] != "step 2" || macros[2].Name != "new" {
		t.Fatalf("unexpected macros after rewrite: %+v %+v", macros[1], macros[2])
	}
}

func TestParseMacroFileWithoutMagic(t *testing.T) {
	mf, err := parseMacroFile(strings.NewReader("a:\n step\n"))
	if err != nil {
		t.Fatal(err)
	}

	if mf.HasMagic {
		t.Fatal("file without header must not be marked as macro file")
	}
	if len(mf.Macros()) != 1 {
		t.Fatal("expected macro to be parsed anyway")
	}
}
