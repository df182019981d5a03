package debug

import (
	"fmt"

	"github.com/dylandreimerink/asmviz/pkg/machine"
)

var cmdRegisters = Command{
	Name:    "registers",
	Aliases: []string{"r", "regs"},
	Summary: "Show registers",
	Description: "Registers written since the last load or reset are shown in green. The program counter is " +
		"followed by the instruction it points at.",
	Exec: registersExec,
}

func registersExec(args []string) {
	if !requireLoaded() {
		return
	}

	fmt.Print("Registers:\n")

	for _, row := range sess.RegisterTable() {
		name := blue(fmt.Sprintf("%3s", row.Name))
		if row.Used {
			name = green(fmt.Sprintf("%3s", row.Name))
		}

		fmt.Printf("%s = %s", name, yellow(fmt.Sprintf("0x%x", row.Value)))

		if row.Index == machine.PC {
			lines, idx := sess.CodeViewWindow()
			for _, l := range lines {
				if l.Index == idx {
					fmt.Printf(" -> %s", yellow(l.Text))
				}
			}
		}
		fmt.Print("\n")
	}

	fmt.Printf("%s = %s\n", blue("nzcv"), yellow(vm.Flags.String()))
}
