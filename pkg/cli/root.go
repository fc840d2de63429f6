// Package cli is the minicpp command tree.
package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
)

// NewRootCmd builds a fresh command tree. Flags live on the commands, so
// every tree is independent.
func NewRootCmd() *cobra.Command {
	var trace bool

	rootCmd := &cobra.Command{
		Use:   "minicpp",
		Short: "Interpreter for a small C++-like teaching language",
		Long: `minicpp lexes, parses and runs programs written in a small C++-like
teaching language.

Commands:
  run     Interpret a source file
  tokens  Print the token stream of a source file
  ast     Print the syntax tree of a source file
  check   Report static issues without running
  emit    Print the stack machine listing, optionally running it
  calc    Evaluate an arithmetic expression step by step
`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVar(&trace, "trace", false, "print the time spent in each pipeline stage to stderr")

	tr := &tracer{enabled: &trace}
	rootCmd.AddCommand(
		newRunCmd(tr),
		newTokensCmd(),
		newASTCmd(),
		newCheckCmd(),
		newEmitCmd(tr),
		newCalcCmd(),
	)
	return rootCmd
}

// Execute runs the command tree against os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

type tracer struct {
	enabled *bool
}

// stage reports the time since start under name when --trace is set.
func (t *tracer) stage(w io.Writer, name string, start time.Time) {
	if *t.enabled {
		fmt.Fprintf(w, "%s: %s\n", name, time.Since(start))
	}
}
