package main

import (
	"github.com/spf13/cobra"

	"github.com/ruleflow-dev/ruleflow"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <file.flow>",
		Short: "Interpret a flow file and print its evolution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, _ := cmd.Flags().GetInt("steps")
			causal, _ := cmd.Flags().GetBool("causal-distance")
			connected, _ := cmd.Flags().GetBool("connected-events")

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

			var opts []ruleflow.PrintOption
			if causal {
				opts = append(opts, ruleflow.WithCausalDistance())
			}
			if connected {
				opts = append(opts, ruleflow.WithCollapsedConnectedEvents())
			}
			flow.Print(opts...)
			return nil
		},
	}
	cmd.Flags().Int("steps", 0, "Steps to evolve (0 follows the file's @evolve directives)")
	cmd.Flags().Bool("causal-distance", false, "Show each event's causal distance")
	cmd.Flags().Bool("connected-events", false, "Show each event's causally connected events")
	return cmd
}
