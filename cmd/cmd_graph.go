package cmd

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/dylandreimerink/asmviz/cmd/flags"
	"github.com/dylandreimerink/asmviz/pkg/graph"
	"github.com/dylandreimerink/asmviz/pkg/interp"
)

func graphCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph {listing}",
		Short: "Generate a control-flow graph for an assembly listing",
		Long: "This command reads the provided listing and creates a control-flow graph for it. " +
			"The listing is broken up into 'blocks' of code by branching instructions and branch targets. " +
			"Red arrows indicate the non-branching path, green arrows indicate the branching path, orange arrows " +
			"indicate function calls(which will return and then follow the non-branching path).\n\n" +
			"If no flags are specified the command will attempt to render the graph as SVG and open it in the browser.",
		RunE: runGraph,
		Args: cobra.ExactArgs(1),
	}

	f := cmd.Flags()

	f.StringVarP(&graphOutput, "output", "o", "", "output to given file path or - for stdout, instead of opening "+
		"in browser")
	f.StringVarP(&graphOutputFormat, "format", "f", "svg", "The output format: dot, svg, pdf or png")
	f.Var(&graphPCStart, "pc-start", "Address of the first instruction of the listing")

	return cmd
}

// graphFormats maps the supported output formats to whether rendering them requires graphviz
var graphFormats = map[string]bool{
	"dot": false,
	"svg": true,
	"png": true,
	"pdf": true,
}

var (
	graphOutput       string
	graphOutputFormat string
	graphPCStart      = flags.Defaults().PCStart
)

func runGraph(cmd *cobra.Command, args []string) error {
	renderer, found := graphFormats[graphOutputFormat]
	if !found {
		formats := maps.Keys(graphFormats)
		slices.Sort(formats)
		return fmt.Errorf("unknown format '%s', pick from: %s", graphOutputFormat, strings.Join(formats, ", "))
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open listing: %w", err)
	}
	defer f.Close()

	code, labels, err := interp.ReadListing(f, uint64(graphPCStart))
	if err != nil {
		return fmt.Errorf("read listing: %w", err)
	}

	m := interp.New()
	m.Reset(uint64(flags.Defaults().SPStart), uint64(graphPCStart), code, labels)

	dotGraph := graph.ListingToGraph(m)

	if !renderer {
		if graphOutput == "-" {
			fmt.Println(dotGraph.String())
			return nil
		}

		var out *os.File
		if graphOutput == "" {
			out, err = os.CreateTemp(os.TempDir(), "asmviz-graph-*.dot.txt")
			if err != nil {
				return fmt.Errorf("create tmp: %w", err)
			}
		} else {
			out, err = os.Create(graphOutput)
			if err != nil {
				return fmt.Errorf("create file: %w", err)
			}
		}
		defer out.Close()

		_, err = io.Copy(out, strings.NewReader(dotGraph.String()))
		if err != nil {
			return fmt.Errorf("copy: %w", err)
		}

		if graphOutput == "" {
			return browser.OpenFile(out.Name())
		}

		return nil
	}

	dotF, err := os.CreateTemp(os.TempDir(), "asmviz-graph-*.dot")
	if err != nil {
		return fmt.Errorf("create tmp: %w", err)
	}
	defer os.Remove(dotF.Name())

	_, err = io.Copy(dotF, strings.NewReader(dotGraph.String()))
	dotF.Close()
	if err != nil {
		return fmt.Errorf("copy: %w", err)
	}

	var (
		dot     *exec.Cmd
		imgPath string
	)
	switch graphOutput {
	case "-":
		dot = exec.Command("dot", fmt.Sprintf("-T%s", graphOutputFormat), dotF.Name())
		dot.Stdout = os.Stdout
	case "":
		imgF, err := os.CreateTemp(os.TempDir(), fmt.Sprintf("asmviz-graph-*.%s", graphOutputFormat))
		if err != nil {
			return fmt.Errorf("create tmp: %w", err)
		}
		imgF.Close()
		imgPath = imgF.Name()

		dot = exec.Command(
			"dot",
			fmt.Sprintf("-T%s", graphOutputFormat),
			fmt.Sprintf("-o%s", imgPath),
			dotF.Name(),
		)
	default:
		dot = exec.Command(
			"dot",
			fmt.Sprintf("-T%s", graphOutputFormat),
			fmt.Sprintf("-o%s", graphOutput),
			dotF.Name(),
		)
	}

	if err = dot.Run(); err != nil {
		return fmt.Errorf("dot: %w", err)
	}

	if imgPath != "" {
		return browser.OpenFile(imgPath)
	}

	return nil
}
