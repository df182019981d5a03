package debug

import (
	"fmt"
	"strings"
)

func commandMap(cmds *[]Command) map[string]Command {
	m := make(map[string]Command, len(*cmds))
	for _, cmd := range *cmds {
		m[cmd.Name] = cmd
		for _, alias := range cmd.Aliases {
			m[alias] = cmd
		}
	}

	return m
}

var helpCmd = Command{
	Name:        "help",
	Aliases:     []string{"h"},
	Summary:     "Show help text / available commands",
	Description: "Show a summary of all commands or detailed help for the specified command",
	Exec:        helpExec,
	Args: []CmdArg{{
		Name:     "command",
		Required: false,
	}},
}

func helpExec(args []string) {
	printCmds := func(cmds []Command) {
		for _, cmd := range cmds {
			name := cmd.Name
			if len(cmd.Aliases) > 1 {
				name = fmt.Sprintf("%s (Aliases: %s)", cmd.Name, strings.Join(cmd.Aliases, ", "))
			} else if len(cmd.Aliases) == 1 {
				name = fmt.Sprintf("%s (Alias: %s)", cmd.Name, cmd.Aliases[0])
			}

			padLen := 40 - len(name)
			if padLen < 0 {
				padLen = 0
			}

			fmt.Printf("  %s %s %s\n", name, strings.Repeat("-", padLen), cmd.Summary)
		}
	}

	var helpCmd func(cmds *[]Command, args []string) bool
	helpCmd = func(cmds *[]Command, args []string) bool {
		cmd, ok := commandMap(cmds)[args[0]]
		if !ok {
			return false
		}

		args = args[1:]

		// Show help for the sub-command if we have arguments left
		if len(cmd.Subcommands) > 0 && len(args) > 0 {
			if helpCmd(&cmd.Subcommands, args) {
				return true
			}
		}

		fmt.Printf("%s ", cmd.Name)

		// A command can't have subcommands and arguments since the first arg will be the name of the sub command
		if len(cmd.Subcommands) > 0 {
			fmt.Printf("{sub-command} ")
		} else {
			for _, arg := range cmd.Args {
				if arg.Required {
					fmt.Printf("{%s} ", arg.Name)
				} else {
					fmt.Printf("[%s] ", arg.Name)
				}
			}
		}

		fmt.Printf("- %s\n", cmd.Summary)
		if cmd.Description != "" {
			fmt.Println(cmd.Description)
		}

		if len(cmd.Subcommands) > 0 {
			fmt.Println("Sub commands:")
			printCmds(cmd.Subcommands)
		}

		return true
	}

	if len(args) > 0 {
		if helpCmd(&rootCommands, args) {
			return
		}
	}

	fmt.Println("Commands:")
	printCmds(rootCommands)
}
