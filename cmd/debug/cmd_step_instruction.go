package debug

import (
	"fmt"
	"strconv"
)

var cmdStepInstruction = Command{
	Name:    "step-instruction",
	Aliases: []string{"si", "s", "step"},
	Summary: "Step through the program one instruction a time",
	Exec:    stepInstructionExec,
	Args: []CmdArg{{
		Name:     "count",
		Required: false,
	}},
}

func stepInstructionExec(args []string) {
	if !requireLoaded() {
		return
	}

	count := 1
	if len(args) > 0 {
		var err error
		count, err = strconv.Atoi(args[0])
		if err != nil || count < 1 {
			printRed("invalid count '%s'\n", args[0])
			return
		}
	}

	n, err := sess.Continue(count, nil)
	if err != nil {
		printRed("%s\n", err)
	}

	if n < count && sess.Halted() {
		fmt.Println("Program reached end address")
		return
	}

	listInstructionExec(nil)
}
