package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"minicpp/pkg/rpn"
)

func newCalcCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "calc <expr>",
		Short: "Evaluate an arithmetic expression step by step",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rpn.Analyze(strings.Join(args, " "))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Tokens: %s\n", strings.Join(a.Tokens, " "))
			fmt.Fprintf(out, "RPN: %s\n", strings.Join(a.RPN, " "))
			if len(a.Identifiers) > 0 {
				fmt.Fprintf(out, "Identificadores: %s\n", strings.Join(a.Identifiers, ", "))
			}
			fmt.Fprintln(out, "Derivaciones:")
			for _, d := range a.Derivations {
				fmt.Fprintf(out, "  %s\n", d)
			}
			if v, ok := a.Value(); ok {
				fmt.Fprintf(out, "Resultado: %s\n", strconv.FormatFloat(v, 'g', -1, 64))
			} else {
				fmt.Fprintln(out, "Resultado: (sin valor)")
			}
			return nil
		},
		// The expression may start with a unary minus.
		DisableFlagParsing: true,
	}
}
