package debug

import (
	"fmt"

	"github.com/dylandreimerink/asmviz/pkg/machine"
	"github.com/dylandreimerink/asmviz/pkg/session"
)

var cmdMemory = Command{
	Name:    "memory",
	Aliases: []string{"mem"},
	Summary: "Show the contents of the stack",
	Subcommands: []Command{
		{
			Name:    "list",
			Aliases: []string{"ls"},
			Summary: "Show the words at the top of the stack region, as shown in the stack view",
			Exec:    listMemoryExec,
		},
		{
			Name:    "read",
			Summary: "Read the word at a specific address",
			Args: []CmdArg{{
				Name:     "memory address",
				Required: true,
			}},
			Exec: readMemoryExec,
		},
		{
			Name:    "read-all",
			Summary: "Read and show the whole contents of the stack, skipping zero words",
			Exec:    readAllMemoryExec,
		},
	},
}

func printStackRow(row session.StackRow, sp uint64) {
	fmt.Print(blue(fmt.Sprintf("0x%x", row.Addr)), ": ", yellow(fmt.Sprintf("0x%x", row.Value)))
	if row.Addr == sp {
		fmt.Print(" <- sp")
	}
	fmt.Print("\n")
}

func stackPointer() uint64 {
	var sp uint64
	sess.Inspect(func(m machine.Machine) {
		sp = m.Registers().Get(machine.SP)
	})
	return sp
}

func listMemoryExec(args []string) {
	if !requireLoaded() {
		return
	}

	snap := sess.Snapshot()
	fmt.Print(blue(fmt.Sprintf("[0x%x - 0x%x]", snap.StackBot, snap.StackTop)))
	fmt.Printf(" showing words %d to %d of %d\n",
		snap.StackWindow.Start, snap.StackWindow.End(), (snap.StackTop-snap.StackBot)/machine.WordSize)

	sp := stackPointer()
	for _, row := range snap.Stack {
		printStackRow(row, sp)
	}
}

func readMemoryExec(args []string) {
	if len(args) < 1 {
		printRed("missing required argument 'memory address'\n")
		return
	}

	if !requireLoaded() {
		return
	}

	addr := session.ParseValue(args[0])

	var (
		value uint64
		err   error
	)
	sess.Inspect(func(m machine.Machine) {
		value, err = m.Stack().WordAt(addr)
	})
	if err != nil {
		printRed("read 0x%x: %s\n", addr, err)
		return
	}

	printStackRow(session.StackRow{Addr: addr, Value: value}, stackPointer())
}

func readAllMemoryExec(args []string) {
	if !requireLoaded() {
		return
	}

	sp := stackPointer()
	sess.Inspect(func(m machine.Machine) {
		stack := m.Stack()
		for i := 0; i < stack.Len(); i++ {
			addr := stack.WordAddr(i)
			value := stack.Word(i)
			if value == 0 && addr != sp {
				continue
			}

			printStackRow(session.StackRow{Index: i, Addr: addr, Value: value}, sp)
		}
	})
}
