package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/ruleflow-dev/ruleflow"
	"github.com/ruleflow-dev/ruleflow/graph"
)

func newGraphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph <file.flow>",
		Short: "Evolve a flow file and export its causal graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, _ := cmd.Flags().GetInt("steps")
			format, _ := cmd.Flags().GetString("format")

			source, err := readFlowFile(args[0])
			if err != nil {
				return err
			}
			flow, prog, err := ruleflow.NewFlowFromSource(source, compileOptions(cmd))
			if err != nil {
				return err
			}
			if steps == 0 {
				if steps, err = prog.Steps(); err != nil {
					return err
				}
			}
			if err := flow.EvolveN(steps); err != nil {
				return err
			}

			g := graph.New(flow.EventLog())
			switch format {
			case "dot":
				fmt.Print(g.DOT())
			case "json":
				bz, err := g.JSON()
				if err != nil {
					return err
				}
				fmt.Println(string(bz))
			default:
				return eris.Errorf("unknown format %q, want dot or json", format)
			}
			return nil
		},
	}
	cmd.Flags().Int("steps", 0, "Steps to evolve (0 follows the file's @evolve directives)")
	cmd.Flags().String("format", "dot", "Output format: dot or json")
	return cmd
}
