package debug

import (
	"fmt"

	prompt "github.com/c-bata/go-prompt"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dylandreimerink/asmviz/cmd/flags"
	"github.com/dylandreimerink/asmviz/pkg/interp"
	"github.com/dylandreimerink/asmviz/pkg/session"
)

var (
	vm   *interp.Machine
	sess *session.Controller

	// addrs are used by the load command if no addresses are given
	addrs = flags.Defaults()

	breakpoints []*Breakpoint
)

// newSession replaces the current session with an unloaded one.
func newSession(log logrus.FieldLogger) {
	vm = interp.New()
	sess = session.New(vm, session.OptLogger(log))
	breakpoints = nil
}

func DebugCmd(log logrus.FieldLogger) *cobra.Command {
	var (
		macroPath string
	)

	debugCmd := &cobra.Command{
		Use:   "debug [listing]",
		Short: "debug starts an interactive debug session",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			newSession(log)

			if len(args) > 0 {
				loadExec(args)
			}

			if macroPath != "" {
				runMacroExec([]string{macroPath})
			}

			fmt.Println("Type 'help' for list of commands.")

			p := prompt.New(
				executor,
				completer,
				prompt.OptionTitle("assembly debugger"),
				prompt.OptionPrefix("(asmviz) "),
				prompt.OptionAddKeyBind(prompt.KeyBind{Key: prompt.ControlC, Fn: func(b *prompt.Buffer) {
					fmt.Println("Ctrl+C disabled, please use the 'quit' or 'exit' command")
				}}),
			)
			p.Run()
		},
	}

	f := debugCmd.Flags()
	f.StringVar(&macroPath, "macro", "", "Path to a macro file which will be executed to setup the session")
	addrs.Register(f)

	return debugCmd
}
