package debug

import (
	"fmt"
	"strconv"
)

var cmdContinue = Command{
	Name:    "continue",
	Aliases: []string{"c"},
	Summary: "Continue execution of the program until it halts or a breakpoint is hit",
	Description: "Execution stops once the end address is reached, an instruction fails or an enabled breakpoint " +
		"is hit. The optional limit caps the amount of executed instructions, a listing which loops forever will " +
		"otherwise block the prompt.",
	Exec: continueExec,
	Args: []CmdArg{{
		Name:     "limit",
		Required: false,
	}},
}

// defaultContinueLimit guards against programs which never reach the end address
const defaultContinueLimit = 1_000_000

func continueExec(args []string) {
	if !requireLoaded() {
		return
	}

	limit := defaultContinueLimit
	if len(args) > 0 {
		var err error
		limit, err = strconv.Atoi(args[0])
		if err != nil || limit < 1 {
			printRed("invalid limit '%s'\n", args[0])
			return
		}
	}

	hit := -1
	n, err := sess.Continue(limit, func(pc uint64) bool {
		hit = breakpointAt(pc)
		return hit != -1
	})
	if err != nil {
		printRed("%s\n", err)
		listInstructionExec(nil)
		return
	}

	switch {
	case hit != -1:
		fmt.Printf("Hit breakpoint '%d' after %d instructions\n", hit, n)
		listInstructionExec(nil)
	case sess.Halted():
		fmt.Printf("Program reached end address after %d instructions\n", n)
	default:
		printRed("Stopped after %d instructions without reaching the end address\n", n)
		listInstructionExec(nil)
	}
}
