package debug

import "fmt"

var cmdReset = Command{
	Name:    "reset",
	Aliases: []string{"rs"},
	Summary: "Reload the listing and reset registers and stack",
	Exec:    resetExec,
}

func resetExec(args []string) {
	if _, loaded := sess.Config(); !loaded {
		printRed("Nothing to reset, use 'load' first\n")
		return
	}

	if err := sess.Reset(); err != nil {
		printRed("%s\n", err)
		return
	}

	fmt.Println("Session reset")
	listInstructionExec(nil)
}
