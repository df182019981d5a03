package debug

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"

	"github.com/dylandreimerink/asmviz/pkg/machine"
)

var cmdDump = Command{
	Name:    "dump",
	Summary: "Dump internal state for troubleshooting",
	Subcommands: []Command{
		{
			Name:    "session",
			Summary: "Dump the session config and fields",
			Exec: func(args []string) {
				cfg, loaded := sess.Config()
				spew.Dump(struct {
					Loaded      bool
					Initialized bool
					Config      interface{}
					Fields      interface{}
				}{loaded, sess.Initialized(), cfg, sess.FieldStates()})
			},
		},
		{
			Name:    "machine",
			Summary: "Dump registers, flags and labels",
			Exec: func(args []string) {
				sess.Inspect(func(m machine.Machine) {
					spew.Dump(m.Registers())
				})
				spew.Dump(vm.Flags, vm.Labels())
			},
		},
		{
			Name:    "instruction",
			Aliases: []string{"inst"},
			Summary: "Dump the decoded form of the instruction at the program counter",
			Exec:    dumpInstructionExec,
		},
	},
}

func dumpInstructionExec(args []string) {
	if !requireLoaded() {
		return
	}

	lines, idx := sess.CodeViewWindow()
	for _, l := range lines {
		if l.Index != idx {
			continue
		}

		inst, err := vm.Parse(l.Text)
		if err != nil {
			printRed("%s\n", err)
			return
		}

		fmt.Printf("%04X: %s\n", l.Addr, l.Text)
		spew.Dump(inst)
		return
	}

	printRed("Program counter is not inside the listing\n")
}
