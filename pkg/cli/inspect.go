package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"minicpp/pkg/check"
	"minicpp/pkg/compiler"
	"minicpp/pkg/utils"
)

func newTokensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens <file>",
		Short: "Print the token stream of a source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, _, err := utils.ReadSource(args[0])
			if err != nil {
				return err
			}
			tokens := compiler.Lex(src)
			fmt.Fprintf(cmd.OutOrStdout(), "Tokens (%d)\n", len(tokens))
			for _, tok := range tokens {
				fmt.Fprintln(cmd.OutOrStdout(), " ", tok)
			}
			return nil
		},
	}
}

func newASTCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ast <file>",
		Short: "Print the syntax tree of a source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, _, err := utils.ReadSource(args[0])
			if err != nil {
				return err
			}
			root, err := compiler.Parse(src)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), compiler.Dump(root))
			return nil
		},
	}
}

func newCheckCmd() *cobra.Command {
	var showSymbols bool

	cmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Report static issues without running",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, _, err := utils.ReadSource(args[0])
			if err != nil {
				return err
			}
			root, err := compiler.Parse(src)
			if err != nil {
				return err
			}

			issues, syms := check.CheckWithSymbols(root)
			out := cmd.OutOrStdout()
			if showSymbols {
				fmt.Fprint(out, syms)
			}
			if len(issues) == 0 {
				fmt.Fprintln(out, "sin problemas")
				return nil
			}
			errCount := 0
			for _, issue := range issues {
				fmt.Fprintln(out, issue)
				if issue.Level == check.IssueError {
					errCount++
				}
			}
			if errCount > 0 {
				return fmt.Errorf("check failed: %d error(s)", errCount)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showSymbols, "symbols", false, "also print the symbol table")
	return cmd
}
