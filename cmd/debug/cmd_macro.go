package debug

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	prompt "github.com/c-bata/go-prompt"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/exp/maps"
)

var cmdMacro = Command{
	Name:    "macro",
	Aliases: []string{"mc"},
	Summary: "Macros allow you to execute a series of commands",
	Description: "Macros combine multiple commands so they can be repeated by pressing <enter>, for example " +
		"stepping and then showing the stack. Macro files are also useful to set up a session, loading a listing, " +
		"setting breakpoints and filling registers with test values.",
	Subcommands: []Command{
		{
			Name:    "list",
			Aliases: []string{"ls"},
			Summary: "List all loaded macros",
			Exec:    listMacroExec,
		},
		{
			Name:             "show",
			Summary:          "Shows the commands in a macro",
			Exec:             showMacroExec,
			Args:             []CmdArg{{Name: "name", Required: true}},
			CustomCompletion: macroCompletion,
		},
		{
			Name:    "start",
			Summary: "Start recording a macro",
			Exec:    startRecordingMacroExec,
			Args:    []CmdArg{{Name: "name", Required: true}},
		},
		{
			Name:    "stop",
			Summary: "Stop recording a macro",
			Exec:    stopRecordingMacroExec,
		},
		{
			Name:    "save",
			Summary: "Save a macro to a file",
			Exec:    saveMacroExec,
			Args: []CmdArg{
				{Name: "macro name", Required: true},
				{Name: "file path", Required: false},
			},
			CustomCompletion: func(args []string) []prompt.Suggest {
				if len(args) <= 1 {
					return macroCompletion(args)
				}
				return fileCompletion(args[1:])
			},
		},
		{
			Name:             "load",
			Summary:          "Load macro(s) from a file",
			Exec:             loadMacroExec,
			Args:             []CmdArg{{Name: "file path", Required: true}},
			CustomCompletion: fileCompletion,
		},
		{
			Name:             "un-load",
			Summary:          "Unloads a macro, permanently deleting it if not saved",
			Exec:             unloadMacroExec,
			Args:             []CmdArg{{Name: "name", Required: true}},
			CustomCompletion: macroCompletion,
		},
		{
			Name:             "exec",
			Summary:          "Execute a macro",
			Exec:             execMacroExec,
			Args:             []CmdArg{{Name: "name", Required: true}},
			CustomCompletion: macroCompletion,
		},
		{
			Name:    "run",
			Summary: "Parses a macro file and runs all macros within",
			Description: "This command runs the macros in a file but doesn't load them, which makes it suitable for " +
				"init files which set up the session",
			Exec:             runMacroExec,
			Args:             []CmdArg{{Name: "file path", Required: true}},
			CustomCompletion: fileCompletion,
		},
	},
}

var macroState = struct {
	loadedMacros map[string]*Macro

	rec         bool
	recName     string
	recCommands []string
}{
	loadedMacros: make(map[string]*Macro),
}

type Macro struct {
	File     string
	Saved    bool
	Commands []string
}

// lookupMacro returns the macro named by the first argument, printing an error if there is none
func lookupMacro(args []string) (string, *Macro, bool) {
	if len(args) < 1 || args[0] == "" {
		printRed("Missing required argument 'name'\n")
		return "", nil, false
	}

	m, found := macroState.loadedMacros[args[0]]
	if !found {
		printRed("No macro with name '%s' exists, use 'macro list' to see valid options\n", args[0])
		return "", nil, false
	}

	return args[0], m, true
}

func listMacroExec(args []string) {
	names := maps.Keys(macroState.loadedMacros)
	sort.Strings(names)

	for _, name := range names {
		m := macroState.loadedMacros[name]
		fmt.Printf("%s(%d)", blue(name), len(m.Commands))
		if m.File != "" {
			fmt.Printf(" - %s", m.File)
		}

		if m.Saved {
			fmt.Printf(" [%s]\n", green("saved"))
		} else {
			fmt.Printf(" [%s]\n", red("not-saved"))
		}
	}
}

func showMacroExec(args []string) {
	_, m, ok := lookupMacro(args)
	if !ok {
		return
	}

	indexPadSize := len(strconv.Itoa(len(m.Commands)))
	for i, c := range m.Commands {
		if strings.HasPrefix(c, "#") {
			c = green(c)
		}

		fmt.Printf("%s %s\n", blue(fmt.Sprintf("%*d", indexPadSize, i)), c)
	}
}

func readMacroFile(path string) (*macroFile, bool) {
	f, err := os.Open(path)
	if err != nil {
		printRed("Error while opening file: %s\n", err)
		return nil, false
	}
	defer f.Close()

	mf, err := parseMacroFile(f)
	if err != nil {
		printRed("Error while parsing file: %s\n", err)
		return nil, false
	}

	return mf, true
}

func runMacroExec(args []string) {
	if len(args) < 1 || args[0] == "" {
		printRed("Missing required argument 'file path'\n")
		return
	}

	mf, ok := readMacroFile(args[0])
	if !ok {
		return
	}

	for _, m := range mf.Macros() {
		runMacro(m.Commands)
	}

	// Executing the macro overwrote lastArgs, restore it so <enter> runs the file again
	lastArgs = []string{"macro", "run", args[0]}
}

func runMacro(commands []string) {
	for _, command := range commands {
		printCmd := command
		if strings.HasPrefix(printCmd, "#") {
			printCmd = green(printCmd)
		}

		// Mimic the prompt so the output reads like an interactive session
		fmt.Printf("%s %s\n", blue("(asmviz)"), printCmd)
		executor(command)
	}
}

func execMacroExec(args []string) {
	name, m, ok := lookupMacro(args)
	if !ok {
		return
	}

	runMacro(m.Commands)

	lastArgs = []string{"macro", "exec", name}
}

func unloadMacroExec(args []string) {
	name, _, ok := lookupMacro(args)
	if !ok {
		return
	}

	delete(macroState.loadedMacros, name)
	fmt.Println("Macro un-loaded")
}

func startRecordingMacroExec(args []string) {
	if len(args) < 1 || args[0] == "" {
		printRed("Missing required argument 'name'\n")
		return
	}

	name := args[0]
	if _, exists := macroState.loadedMacros[name]; exists {
		printRed("Macro with name '%s' already exists\n", name)
		return
	}

	if macroState.rec {
		printRed("Already recording a macro!\n")
		return
	}

	macroState.rec = true
	macroState.recName = name
	macroState.recCommands = nil

	fmt.Println("Macro now recording")
}

func stopRecordingMacroExec(args []string) {
	if !macroState.rec {
		printRed("Macro recording already disabled\n")
		return
	}

	macroState.rec = false
	macroState.loadedMacros[macroState.recName] = &Macro{
		Commands: macroState.recCommands,
	}

	fmt.Println("Macro recording stopped")
}

func saveMacroExec(args []string) {
	name, m, ok := lookupMacro(args)
	if !ok {
		return
	}

	if len(args) >= 2 && args[1] != "" {
		m.File = args[1]
	}

	if m.File == "" {
		printRed("Macro '%s' has no associated filepath, to save it you have to provide one\n", name)
		return
	}

	mf := &macroFile{}
	if _, err := os.Stat(m.File); err == nil {
		var ok bool
		mf, ok = readMacroFile(m.File)
		if !ok {
			return
		}

		// Only overwrite files which we know to be macro files, the path might point at something important
		if !mf.HasMagic {
			printRed("File already exists but doesn't start with '%s', this might be non-macro file.\n"+
				"If this is a macro file, please add the comment to the start of the file.\n", magicMacroStr)
			return
		}
	}

	mf.Set(name, m.Commands)

	if err := mf.WriteFile(m.File); err != nil {
		printRed("Error writing to file: %s\n", err)
		return
	}

	m.Saved = true
	fmt.Println("Macro saved to file")
}

func loadMacroExec(args []string) {
	if len(args) < 1 || args[0] == "" {
		printRed("Missing required argument 'file path'\n")
		return
	}

	mf, ok := readMacroFile(args[0])
	if !ok {
		return
	}

	for _, m := range mf.Macros() {
		existing, exists := macroState.loadedMacros[m.Name]
		if exists && !existing.Saved {
			printRed("Macro '%s' not loaded since it would overwrite an unsaved macro of the same name\n", m.Name)
			continue
		}

		macroState.loadedMacros[m.Name] = &Macro{
			File:     args[0],
			Saved:    true,
			Commands: m.Commands,
		}

		fmt.Printf("Macro '%s' loaded\n", m.Name)
	}
}

func macroCompletion(args []string) []prompt.Suggest {
	names := maps.Keys(macroState.loadedMacros)
	sort.Strings(names)

	search := ""
	if len(args) > 0 {
		search = args[0]
	}

	var suggestion []prompt.Suggest
	if search == "" {
		for _, name := range names {
			suggestion = append(suggestion, prompt.Suggest{Text: name})
		}
		return suggestion
	}

	ranks := fuzzy.RankFind(search, names)
	sort.Sort(ranks)
	for _, rank := range ranks {
		suggestion = append(suggestion, prompt.Suggest{Text: rank.Target})
	}

	return suggestion
}
