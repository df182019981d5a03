package cmd

import (
	"fmt"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/dylandreimerink/asmviz/cmd/flags"
	"github.com/dylandreimerink/asmviz/pkg/interp"
	"github.com/dylandreimerink/asmviz/pkg/session"
	"github.com/dylandreimerink/asmviz/pkg/snapshot"
)

func exportCommand() *cobra.Command {
	var (
		addrs  = flags.Defaults()
		output string
		steps  int
		open   bool
	)

	cmd := &cobra.Command{
		Use:   "export {listing}",
		Short: "Export a static HTML snapshot of a listing",
		Long: "This command loads the listing, optionally executes a number of instructions and writes the code, " +
			"registers and stack to a self-contained HTML page. A negative step count runs until the end address " +
			"is reached.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess := session.New(interp.New(), session.OptLogger(log))
			if err := addrs.Load(sess, args[0]); err != nil {
				return err
			}

			if steps != 0 {
				limit := steps
				if limit < 0 {
					limit = 0
				}

				n, err := sess.Continue(limit, nil)
				if err != nil {
					return fmt.Errorf("after %d instructions: %w", n, err)
				}
			}

			path, err := snapshot.Export(sess, output)
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}
			fmt.Printf("Exported to %s\n", path)

			if open {
				return browser.OpenFile(path)
			}

			return nil
		},
	}

	f := cmd.Flags()
	addrs.Register(f)
	f.StringVarP(&output, "output", "o", snapshot.DefaultFileName, "Path of the exported page")
	f.IntVar(&steps, "steps", 0, "Number of instructions to execute before exporting")
	f.BoolVar(&open, "open", false, "Open the exported page in the browser")

	return cmd
}
