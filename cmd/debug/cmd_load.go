package debug

import (
	"fmt"

	"github.com/dylandreimerink/asmviz/cmd/flags"
)

var cmdLoad = Command{
	Name:    "load",
	Aliases: []string{"l"},
	Summary: "Load an assembly listing",
	Description: "This command reads the listing and resets the machine. The addresses default to the values " +
		"given on the command line. Loading a listing which can't be read keeps the current session. " +
		"Breakpoints are cleared when a different file is loaded.",
	Exec: loadExec,
	Args: []CmdArg{
		{
			Name:     "listing path",
			Required: true,
		},
		{
			Name:     "pc start",
			Required: false,
		},
		{
			Name:     "pc end",
			Required: false,
		},
		{
			Name:     "sp start",
			Required: false,
		},
	},
	CustomCompletion: fileCompletion,
}

func loadExec(args []string) {
	if len(args) == 0 {
		printRed("At least one argument required\n")
		helpExec([]string{"load"})
		return
	}

	a := addrs
	names := []string{"pc start", "pc end", "sp start"}
	for i, dst := range []*flags.Addr{&a.PCStart, &a.PCEnd, &a.SPStart} {
		if len(args) <= i+1 {
			break
		}

		if err := dst.Set(args[i+1]); err != nil {
			printRed("%s: %s\n", names[i], err)
			return
		}
	}

	prev, _ := sess.Config()

	if err := a.Load(sess, args[0]); err != nil {
		printRed("load: %s\n", err)
		return
	}
	addrs = a

	if prev.FilePath != args[0] {
		breakpoints = nil
	}

	fmt.Printf(
		"Loaded %d instructions at %s, halting at %s, stack at %s\n",
		len(sess.Code()),
		yellow(a.PCStart.String()),
		yellow(a.PCEnd.String()),
		yellow(a.SPStart.String()),
	)
}
