package debug

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	prompt "github.com/c-bata/go-prompt"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mgutz/ansi"
)

type CmdFn func(args []string)
type CompletionFn func(args []string) []prompt.Suggest

type CmdArg struct {
	Name     string
	Required bool
}

type Command struct {
	Name             string
	Summary          string
	Description      string
	Aliases          []string
	Exec             CmdFn
	Args             []CmdArg
	Subcommands      []Command
	CustomCompletion CompletionFn
}

var (
	rootCommands []Command

	red    = ansi.ColorFunc("red")
	blue   = ansi.ColorFunc("blue")
	green  = ansi.ColorFunc("green")
	yellow = ansi.ColorFunc("yellow")

	blueStrike  = ansi.ColorFunc("blue+s")
	whiteStrike = ansi.ColorFunc("white+s")
	inverse     = ansi.ColorFunc("+i")
)

func init() {
	rootCommands = []Command{
		helpCmd,
		{
			Name:    "exit",
			Aliases: []string{"q", "quit"},
			Summary: "Exits the debugger",
			Exec: func(args []string) {
				os.Exit(0)
			},
		},
		{
			Name:    "clear",
			Summary: "Clear the screen",
			Exec: func(args []string) {
				fmt.Print("\033[2J")
			},
		},
		cmdLoad,
		cmdReset,
		cmdRegisters,
		cmdStepInstruction,
		cmdListInstructions,
		cmdList,
		cmdMemory,
		cmdField,
		cmdSet,
		cmdBreakpoint,
		cmdContinue,
		cmdExport,
		cmdDump,
		cmdMacro,
	}
}

// fmt.Printf but in red
func printRed(format string, args ...interface{}) {
	if len(args) == 0 {
		fmt.Print(red(format))
		return
	}

	fmt.Print(red(fmt.Sprintf(format, args...)))
}

// requireLoaded prints an error and returns false if no listing is loaded
func requireLoaded() bool {
	if !sess.Initialized() {
		printRed("No listing loaded, use 'load' first\n")
		return false
	}

	return true
}

var lastArgs []string

func splitArgs(in string) []string {
	// Split by space, but keep spaces within quotes("")
	quoted := false
	args := strings.FieldsFunc(in, func(r rune) bool {
		if r == '"' {
			quoted = !quoted
		}
		return !quoted && r == ' '
	})
	for i, arg := range args {
		args[i] = strings.Trim(arg, "\"")
	}

	return args
}

func executor(in string) {
	in = strings.TrimSpace(in)
	args := splitArgs(in)

	// If the input string starts with a comment, don't actually execute
	if strings.HasPrefix(in, "#") || strings.HasPrefix(in, "//") {
		// But if we are recording a macro, add it to the list of commands
		if macroState.rec {
			macroState.recCommands = append(macroState.recCommands, in)
		}
		return
	}

	// Show help if no args were given and non have been executed before
	if len(args) == 0 {
		if len(lastArgs) == 0 {
			helpCmd.Exec(nil)
			return
		}

		// Repeat the last command, this is really helpful for stepping
		args = lastArgs
	}

	lastArgs = args

	var cmd Command
	cmdList := rootCommands
	// Copy slice header, which we intend to modify
	modArgs := args
	for {
		var found bool
		cmd, found = commandMap(&cmdList)[modArgs[0]]
		if !found {
			printRed("'%s' is not a valid command\n\n", strings.Join(args, " "))
			fmt.Println("Usage:")
			helpExec(args)
			return
		}

		modArgs = modArgs[1:]

		// If this command has sub commands and we also have more arguments, continue resolving. Commands which
		// are executable themselves get the arguments if they don't name a sub command.
		if len(cmd.Subcommands) > 0 && len(modArgs) > 0 {
			if _, sub := commandMap(&cmd.Subcommands)[modArgs[0]]; sub || cmd.Exec == nil {
				cmdList = cmd.Subcommands
				continue
			}
		}

		// If a command has no Exec, we are not meant to execute it, rather a subcommand, so show help
		if cmd.Exec == nil {
			printRed("'%s' is missing a {sub-command}\n\n", strings.Join(args, " "))
			fmt.Println("Usage:")
			helpExec(args)
			return
		}

		cmd.Exec(modArgs)

		// If macro recording is enabled, record the full command, except for the command which started it.
		if macroState.rec && !(len(args) >= 2 && args[0] == "macro" && args[1] == "start") {
			macroState.recCommands = append(macroState.recCommands, in)
		}

		return
	}
}

func completer(in prompt.Document) []prompt.Suggest {
	inText := strings.TrimSpace(in.Text)

	if inText == "" {
		return nil
	}

	args := splitArgs(inText)

	var cmd Command
	cmdList := rootCommands
	// Copy slice header, which we intend to modify
	modArgs := args
	for {
		if len(modArgs) == 0 {
			break
		}

		var found bool
		cmd, found = commandMap(&cmdList)[modArgs[0]]
		if !found {
			break
		}

		// If this command has sub commands and we also have more arguments, continue resolving
		if len(cmd.Subcommands) > 0 {
			modArgs = modArgs[1:]
			cmdList = cmd.Subcommands
			continue
		}

		if cmd.CustomCompletion != nil {
			return cmd.CustomCompletion(modArgs[1:])
		}

		break
	}

	cmds := make([]string, 0, len(cmdList))
	for _, cmd := range cmdList {
		cmds = append(cmds, cmd.Name)
		cmds = append(cmds, cmd.Aliases...)
	}

	search := ""
	if len(modArgs) > 0 {
		search = modArgs[0]
	}

	var suggestions []prompt.Suggest
	cmdMap := commandMap(&cmdList)

	ranks := fuzzy.RankFind(search, cmds)
	sort.Sort(ranks)

	for _, rank := range ranks {
		cmd, found := cmdMap[rank.Target]
		if !found {
			continue
		}

		suggestions = append(suggestions, prompt.Suggest{
			Text:        rank.Target,
			Description: cmd.Summary,
		})
	}

	return suggestions
}

func fileCompletion(args []string) []prompt.Suggest {
	path := "."
	if len(args) > 0 {
		path = args[0]
	}

	pathDir := path
	// If it is a directory, show the contents of the directory
	if stat, err := os.Stat(path); err != nil || !stat.IsDir() {
		pathDir = filepath.Dir(path)
	}

	dir, err := os.ReadDir(pathDir)
	if err != nil {
		return nil
	}

	fileNames := make([]string, len(dir))
	for i, file := range dir {
		if file.IsDir() {
			fileNames[i] = file.Name() + "/"
		} else {
			fileNames[i] = file.Name()
		}
	}

	pathDir, file := filepath.Split(path)

	ranks := fuzzy.RankFind(file, fileNames)
	sort.Sort(ranks)

	var suggestion []prompt.Suggest
	for _, rank := range ranks {
		suggestion = append(suggestion, prompt.Suggest{
			Text: pathDir + rank.Target,
		})
	}

	return suggestion
}

// staticCompletion fuzzy matches the first argument against options
func staticCompletion(options []string) CompletionFn {
	return func(args []string) []prompt.Suggest {
		search := ""
		if len(args) > 0 {
			search = args[0]
		}

		ranks := fuzzy.RankFindFold(search, options)
		sort.Sort(ranks)

		var suggestion []prompt.Suggest
		for _, rank := range ranks {
			suggestion = append(suggestion, prompt.Suggest{
				Text: rank.Target,
			})
		}

		return suggestion
	}
}
