package debug

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/dylandreimerink/asmviz/pkg/session"
)

var cmdListInstructions = Command{
	Name:    "list-instructions",
	Aliases: []string{"li"},
	Summary: "Lists the instructions around the program counter",
	Description: "Without arguments the same window as the code view is shown, a few instructions before the " +
		"program counter and the rest after it. A start and end listing index can be given to show another range.",
	Exec: listInstructionExec,
	Args: []CmdArg{
		{
			Name:     "start",
			Required: false,
		},
		{
			Name:     "end",
			Required: false,
		},
	},
}

func listInstructionExec(args []string) {
	if !requireLoaded() {
		return
	}

	snap := sess.Snapshot()
	start, end := snap.CodeWindow.Start, snap.CodeWindow.End()

	var err error
	if len(args) >= 1 {
		start, err = strconv.Atoi(args[0])
		if err != nil {
			printRed("invalid start: %s\n", err)
			return
		}
	}

	if len(args) >= 2 {
		end, err = strconv.Atoi(args[1])
		if err != nil {
			printRed("invalid end: %s\n", err)
			return
		}
	}

	if start < 0 {
		start = 0
	}
	if end > len(snap.Listing) {
		end = len(snap.Listing)
	}

	if end <= start {
		printRed("'end' must be bigger than 'start'\n")
		return
	}

	printListing(snap.Listing[start:end], end)

	if snap.Halted {
		fmt.Println(yellow("Program counter reached end address"))
	}
}

func printListing(lines []session.CodeLine, end int) {
	labels := make(map[uint64][]string)
	for name, addr := range vm.Labels() {
		labels[addr] = append(labels[addr], name)
	}
	for _, names := range labels {
		sort.Strings(names)
	}

	indexPadSize := len(strconv.Itoa(end))
	for _, line := range lines {
		for _, label := range labels[line.Addr] {
			fmt.Print("<", yellow(label), ">:\n")
		}

		if line.Current {
			fmt.Print(yellow(" => "))
		} else {
			fmt.Print("    ")
		}

		fmt.Print(blue(fmt.Sprintf("%*d ", indexPadSize, line.Index)))
		fmt.Printf("%04X: %s\n", line.Addr, line.Text)
	}
}
