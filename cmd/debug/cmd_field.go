package debug

import (
	"fmt"
	"strings"

	prompt "github.com/c-bata/go-prompt"
	"github.com/mattn/go-runewidth"

	"github.com/dylandreimerink/asmviz/pkg/machine"
	"github.com/dylandreimerink/asmviz/pkg/session"
	"github.com/dylandreimerink/asmviz/pkg/textfield"
)

var fieldNames = []string{"register", "memory", "value"}

var cmdField = Command{
	Name:    "field",
	Aliases: []string{"f"},
	Summary: "Edit the register, memory address and value input fields",
	Description: "The fields work like the input boxes of the visual front-end. Activate a field, type into it " +
		"and use 'field commit' to write the value to the register and/or the stack word at the memory address. " +
		"Malformed numbers are read up to the first invalid character.",
	Subcommands: []Command{
		{
			Name:    "show",
			Aliases: []string{"ls"},
			Summary: "Show the fields and the cursor of the active field",
			Exec:    showFieldsExec,
		},
		{
			Name:             "activate",
			Aliases:          []string{"a"},
			Summary:          "Give input focus to a field",
			Exec:             activateFieldExec,
			Args:             []CmdArg{{Name: "register|memory|value", Required: true}},
			CustomCompletion: staticCompletion(fieldNames),
		},
		{
			Name:    "release",
			Summary: "Remove input focus from all fields",
			Exec: func(args []string) {
				sess.ReleaseFields()
				showFieldsExec(nil)
			},
		},
		{
			Name:    "type",
			Aliases: []string{"t"},
			Summary: "Type text into the active field at the cursor",
			Exec:    typeFieldExec,
			Args:    []CmdArg{{Name: "text", Required: true}},
		},
		{
			Name:             "key",
			Aliases:          []string{"k"},
			Summary:          "Press editing keys in the active field",
			Description:      "Keys: " + strings.Join(textfield.KeyNames, ", "),
			Exec:             keyFieldExec,
			Args:             []CmdArg{{Name: "key", Required: true}},
			CustomCompletion: staticCompletion(textfield.KeyNames),
		},
		{
			Name:    "commit",
			Aliases: []string{"enter"},
			Summary: "Write the value field to the register and memory targets and clear all fields",
			Exec:    commitFieldsExec,
		},
	},
}

var cmdSet = Command{
	Name:    "set",
	Summary: "Set a register or stack word, shortcut for filling in and committing the fields",
	Description: "Examples: 'set register 5 0x10' sets x5, 'set memory 0xFEF8 42' sets the stack word at " +
		"0xFEF8. The register is a decimal index from 0 to 32.",
	Exec: setExec,
	Args: []CmdArg{
		{Name: "register|memory", Required: true},
		{Name: "register index|memory address", Required: true},
		{Name: "value", Required: true},
	},
	CustomCompletion: func(args []string) []prompt.Suggest {
		if len(args) <= 1 {
			return staticCompletion(fieldNames[:2])(args)
		}
		return nil
	},
}

func showFieldsExec(args []string) {
	sess.ShowFields()

	for _, f := range sess.FieldStates() {
		label := fmt.Sprintf("%-15s", f.Label+":")
		text := f.Text
		if text == "" && !f.Active {
			text = whiteStrike(f.Hint)
		}

		if f.Active {
			fmt.Printf("%s %s %s\n", yellow(" =>"), green(label), inverse(" "+f.Text+" "))

			// Place a caret below the cursor, accounting for wide runes
			col := runewidth.StringWidth(string([]rune(f.Text)[:f.Cursor]))
			fmt.Printf("%s %s %s^\n", "   ", strings.Repeat(" ", runewidth.StringWidth(label)), strings.Repeat(" ", col+1))
			continue
		}

		fmt.Printf("    %s %s\n", blue(label), text)
	}
}

func activateFieldExec(args []string) {
	if len(args) < 1 {
		printRed("Missing required argument 'register|memory|value'\n")
		return
	}

	id, err := textfield.ParseFieldID(args[0])
	if err != nil {
		printRed("%s\n", err)
		return
	}

	sess.ActivateField(id)
	showFieldsExec(nil)
}

func typeFieldExec(args []string) {
	if len(args) < 1 {
		printRed("Missing required argument 'text'\n")
		return
	}

	if _, active := sess.ActiveField(); !active {
		printRed("No active field, use 'field activate' first\n")
		return
	}

	var edits []session.Edit
	for _, r := range strings.Join(args, " ") {
		edits = append(edits, session.Char(r))
	}
	sess.EditActiveField(edits...)

	showFieldsExec(nil)
}

func keyFieldExec(args []string) {
	if len(args) < 1 {
		printRed("Missing required argument 'key'\n")
		return
	}

	var edits []session.Edit
	for _, arg := range args {
		key, err := textfield.ParseKey(arg)
		if err != nil {
			printRed("%s\n", err)
			return
		}
		edits = append(edits, session.Key(key))
	}
	sess.EditActiveField(edits...)

	showFieldsExec(nil)
}

func commitFieldsExec(args []string) {
	printCommitResult(sess.CommitValue())
}

func printCommitResult(res session.CommitResult) {
	if res.RegisterSet {
		fmt.Printf("Set register %s to %s\n",
			blue(machine.RegisterName(res.Register)),
			yellow(fmt.Sprintf("0x%x", res.RegisterValue)),
		)
	}

	if res.MemorySet {
		fmt.Printf("Set memory at %s to %s\n",
			blue(fmt.Sprintf("0x%x", res.Address)),
			yellow(fmt.Sprintf("0x%x", res.MemoryValue)),
		)
	}

	if !res.RegisterSet && !res.MemorySet {
		printRed("Nothing was set, check that a listing is loaded and the register or address is in range\n")
	}
}

func setExec(args []string) {
	if len(args) < 3 {
		printRed("Expected 3 arguments\n\n")
		fmt.Println("Usage:")
		helpExec([]string{"set"})
		return
	}

	target, err := textfield.ParseFieldID(args[0])
	if err != nil || target == textfield.FieldValue {
		printRed("First argument must be 'register' or 'memory'\n")
		return
	}

	// Start from empty fields so leftovers of 'field' commands don't end up in the commit
	for _, id := range textfield.FieldIDs {
		sess.SetField(id, "")
	}
	sess.SetField(target, args[1])
	sess.SetField(textfield.FieldValue, args[2])

	printCommitResult(sess.CommitValue())
}
