package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"minicpp/pkg/check"
	"minicpp/pkg/compiler"
	"minicpp/pkg/interp"
	"minicpp/pkg/utils"
)

// lineWriter remembers whether the last byte written was a newline.
type lineWriter struct {
	w       io.Writer
	written bool
	endsNL  bool
}

func (l *lineWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	l.written = true
	l.endsNL = p[len(p)-1] == '\n'
	return l.w.Write(p)
}

// print is the interpreter's output sink.
func (l *lineWriter) print(s string) { io.WriteString(l, s) }

// finish terminates a partial last line so the shell prompt starts clean.
func (l *lineWriter) finish() {
	if l.written && !l.endsNL {
		io.WriteString(l.w, "\n")
	}
}

func newRunCmd(tr *tracer) *cobra.Command {
	var (
		maxSteps int
		preCheck bool
	)

	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Interpret a source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, _, err := utils.ReadSource(args[0])
			if err != nil {
				return err
			}
			stderr := cmd.ErrOrStderr()

			start := time.Now()
			root, err := compiler.Parse(src)
			tr.stage(stderr, "parse", start)
			if err != nil {
				return err
			}

			if preCheck {
				for _, issue := range check.Check(root) {
					fmt.Fprintf(stderr, "warning: %s\n", issue)
				}
			}

			out := &lineWriter{w: cmd.OutOrStdout()}
			in := interp.New(&interp.Options{Output: out.print, MaxSteps: maxSteps})

			start = time.Now()
			err = in.Interpret(root)
			tr.stage(stderr, "interpret", start)
			out.finish()
			return err
		},
	}
	cmd.Flags().IntVar(&maxSteps, "max-steps", 0, "stop after this many statements (0 = unlimited)")
	cmd.Flags().BoolVar(&preCheck, "check", false, "print pre-pass issues as warnings before running")
	return cmd
}
