package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/ruleflow-dev/ruleflow/lang"
	"github.com/ruleflow-dev/ruleflow/selector"
)

var version = "0.1.0-dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "ruleflow",
		Short: "Substitution-system engine with causal event tracking",
		Long: `ruleflow evolves substitution systems written in the flow language.

It interprets .flow files, tracks the causal graph of every evolution,
and serves sessions over HTTP for browser visualization.`,
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newServeCmd(),
		newGraphCmd(),
		newDocsCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, eris.ToString(err, false))
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("ruleflow version %s\n", version)
		},
	}
}

// compileOptions wires the LLM regex selector into prompt selectors when an
// API key is in the environment.
func compileOptions(cmd *cobra.Command) []lang.CompileOption {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		return nil
	}
	client := selector.New(key)
	return []lang.CompileOption{lang.WithResolver(client.Resolver(cmd.Context()))}
}

func readFlowFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", eris.Wrapf(err, "reading %s", path)
	}
	return string(data), nil
}
