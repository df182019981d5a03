package debug

import (
	"fmt"
	"strconv"

	prompt "github.com/c-bata/go-prompt"
	"github.com/go-delve/delve/pkg/locspec"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/dylandreimerink/asmviz/pkg/machine"
)

var cmdBreakpoint = Command{
	Name:    "breakpoint",
	Aliases: []string{"b", "br", "bp", "break"},
	Summary: "Commands related to breakpoints",
	Subcommands: []Command{
		{
			Name:    "list",
			Aliases: []string{"ls"},
			Summary: "List all breakpoints",
			Exec:    listBreakpointsExec,
		},
		{
			Name:    "set",
			Aliases: []string{"add"},
			Summary: "Set a new breakpoint",
			Description: "Location specs: '*0x4010' an address, '12' a listing index as shown by " +
				"'list-instructions', '+2' or '-1' relative to the current instruction, 'loop' a label",
			Exec: setBreakpointExec,
			Args: []CmdArg{
				{
					Name:     "loc spec",
					Required: true,
				},
			},
			CustomCompletion: labelCompletion,
		},
		{
			Name:    "enable",
			Summary: "Enable a breakpoint",
			Exec:    enableBreakpointExec,
			Args: []CmdArg{{
				Name:     "breakpoint id",
				Required: true,
			}},
		},
		{
			Name:    "disable",
			Summary: "Disable a breakpoint",
			Exec:    disableBreakpointExec,
			Args: []CmdArg{{
				Name:     "breakpoint id",
				Required: true,
			}},
		},
		{
			Name:    "delete",
			Aliases: []string{"del", "rm"},
			Summary: "Delete a breakpoint, ids of later breakpoints shift down",
			Exec:    deleteBreakpointExec,
			Args: []CmdArg{{
				Name:     "breakpoint id",
				Required: true,
			}},
		},
	},
}

// Breakpoint stops execution when the program counter reaches Addr
type Breakpoint struct {
	Addr uint64
	// Label is set if the breakpoint was created from a label
	Label   string
	enabled bool
}

func (bp *Breakpoint) Enabled() bool {
	return bp.enabled
}

func (bp *Breakpoint) Enable() {
	bp.enabled = true
}

func (bp *Breakpoint) Disable() {
	bp.enabled = false
}

func (bp *Breakpoint) ShouldBreak(pc uint64) bool {
	return bp.enabled && bp.Addr == pc
}

func (bp *Breakpoint) String() string {
	if bp.Label != "" {
		return fmt.Sprintf("%04X <%s>", bp.Addr, bp.Label)
	}

	return fmt.Sprintf("%04X", bp.Addr)
}

// breakpointAt returns the id of the first enabled breakpoint at pc, or -1
func breakpointAt(pc uint64) int {
	return slices.IndexFunc(breakpoints, func(bp *Breakpoint) bool {
		return bp.ShouldBreak(pc)
	})
}

func listBreakpointsExec(args []string) {
	if len(breakpoints) == 0 {
		fmt.Println("No breakpoints set")
		return
	}

	indexPadSize := len(strconv.Itoa(len(breakpoints)))
	for i, bp := range breakpoints {
		if bp.Enabled() {
			fmt.Print(blue(fmt.Sprintf("%*d ", indexPadSize, i)))
			fmt.Println(bp)
		} else {
			fmt.Print(blueStrike(fmt.Sprintf("%*d ", indexPadSize, i)))
			fmt.Println(whiteStrike(bp.String()))
		}
	}
}

// resolveLocSpec translates a location spec into an instruction address
func resolveLocSpec(spec string) (*Breakpoint, error) {
	loc, err := locspec.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid loc spec: %w", err)
	}

	codeStart := sess.CodeStart()
	indexAddr := func(idx int) (uint64, error) {
		if idx < 0 || idx >= len(sess.Code()) {
			return 0, fmt.Errorf("listing index %d out of range [0, %d)", idx, len(sess.Code()))
		}
		return codeStart + uint64(idx)*machine.InstructionSize, nil
	}

	switch loc := loc.(type) {
	case *locspec.AddrLocationSpec:
		addr, err := strconv.ParseUint(loc.AddrExpr, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid address '%s': %w", loc.AddrExpr, err)
		}
		if addr%machine.InstructionSize != codeStart%machine.InstructionSize {
			return nil, fmt.Errorf("address 0x%x is not aligned to an instruction", addr)
		}
		return &Breakpoint{Addr: addr}, nil

	case *locspec.LineLocationSpec:
		addr, err := indexAddr(loc.Line)
		if err != nil {
			return nil, err
		}
		return &Breakpoint{Addr: addr}, nil

	case *locspec.OffsetLocationSpec:
		cur := int((sess.PC() - codeStart) / machine.InstructionSize)
		addr, err := indexAddr(cur + loc.Offset)
		if err != nil {
			return nil, err
		}
		return &Breakpoint{Addr: addr}, nil

	case *locspec.NormalLocationSpec:
		addr, found := vm.Labels()[loc.Base]
		if !found {
			return nil, fmt.Errorf("unknown label '%s'", loc.Base)
		}
		return &Breakpoint{Addr: addr, Label: loc.Base}, nil
	}

	return nil, fmt.Errorf("unsupported locspec type '%T'", loc)
}

func setBreakpointExec(args []string) {
	if len(args) < 1 {
		printRed("Missing {loc spec} argument\n\n")
		fmt.Println("Usage:")
		helpExec([]string{"breakpoint", "set"})
		return
	}

	if !requireLoaded() {
		return
	}

	bp, err := resolveLocSpec(args[0])
	if err != nil {
		printRed("%s\n", err)
		return
	}

	bp.Enable()
	breakpoints = append(breakpoints, bp)
	fmt.Printf("Added breakpoint with id '%d' at %s\n", len(breakpoints)-1, bp)
}

func breakpointArg(args []string) (int, bool) {
	if len(args) < 1 {
		printRed("Missing required argument 'breakpoint id'\n")
		return 0, false
	}

	id, err := strconv.Atoi(args[0])
	if err != nil {
		printRed("%s\n", err)
		return 0, false
	}

	if id < 0 || len(breakpoints) <= id {
		printRed("No breakpoint with id '%d' exists, use 'breakpoint list' to see valid options\n", id)
		return 0, false
	}

	return id, true
}

func enableBreakpointExec(args []string) {
	id, ok := breakpointArg(args)
	if !ok {
		return
	}

	breakpoints[id].Enable()
	fmt.Printf("Breakpoint '%d' is enabled\n", id)
}

func disableBreakpointExec(args []string) {
	id, ok := breakpointArg(args)
	if !ok {
		return
	}

	breakpoints[id].Disable()
	fmt.Printf("Breakpoint '%d' is disabled\n", id)
}

func deleteBreakpointExec(args []string) {
	id, ok := breakpointArg(args)
	if !ok {
		return
	}

	breakpoints = slices.Delete(breakpoints, id, id+1)
	fmt.Printf("Breakpoint '%d' is deleted\n", id)
}

func labelCompletion(args []string) []prompt.Suggest {
	if vm == nil {
		return nil
	}

	labels := maps.Keys(vm.Labels())
	slices.Sort(labels)
	return staticCompletion(labels)(args)
}
