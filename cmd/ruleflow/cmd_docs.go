package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ruleflow-dev/ruleflow/docs"
)

func newDocsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Work with documentation navigation manifests",
	}
	cmd.AddCommand(newDocsVerifyCmd(), newDocsRenderCmd())
	return cmd
}

func newDocsVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <manifest>",
		Short: "Check that every page in a manifest resolves to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			m, err := docs.ParseFile(args[0])
			if err != nil {
				return err
			}
			if err := m.Validate(root); err != nil {
				return err
			}
			fmt.Printf("ok: %d pages resolve\n", len(m.Pages()))
			return nil
		},
	}
	cmd.Flags().String("root", ".", "Directory page paths resolve against")
	return cmd
}

func newDocsRenderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "render [manifest]",
		Short: "Print a manifest's navigation tree (the builtin one by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := docs.Default()
			if len(args) == 1 {
				var err error
				if m, err = docs.ParseFile(args[0]); err != nil {
					return err
				}
			}
			fmt.Print(m.Render())
			return nil
		},
	}
}
