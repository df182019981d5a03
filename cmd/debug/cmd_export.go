package debug

import (
	"fmt"

	"github.com/pkg/browser"

	"github.com/dylandreimerink/asmviz/pkg/snapshot"
)

var cmdExport = Command{
	Name:    "export",
	Aliases: []string{"e"},
	Summary: "Write a static HTML snapshot of the session",
	Description: "The snapshot holds the listing, registers and stack of the current session. It is written to " +
		"'" + snapshot.DefaultFileName + "' in the working directory unless a path is given, existing files are " +
		"overwritten.",
	Subcommands: []Command{
		{
			Name:             "open",
			Summary:          "Export and open the snapshot in the browser",
			Exec:             func(args []string) { exportSnapshot(args, true) },
			Args:             []CmdArg{{Name: "file path", Required: false}},
			CustomCompletion: fileCompletion,
		},
	},
	Exec:             func(args []string) { exportSnapshot(args, false) },
	Args:             []CmdArg{{Name: "file path", Required: false}},
	CustomCompletion: fileCompletion,
}

func exportSnapshot(args []string, open bool) {
	path := ""
	if len(args) > 0 {
		path = args[0]
	}

	path, err := snapshot.Export(sess, path)
	if err != nil {
		printRed("export: %s\n", err)
		return
	}

	fmt.Printf("Exported to %s\n", path)

	if open {
		if err := browser.OpenFile(path); err != nil {
			printRed("open: %s\n", err)
		}
	}
}
