package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"minicpp/pkg/asm"
	"minicpp/pkg/utils"
	"minicpp/pkg/vm"
)

func newEmitCmd(tr *tracer) *cobra.Command {
	var (
		outPath  string
		obj      bool
		run      bool
		maxSteps int
	)

	cmd := &cobra.Command{
		Use:   "emit <file>",
		Short: "Print the stack machine listing, optionally running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, _, err := utils.ReadSource(args[0])
			if err != nil {
				return err
			}
			stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

			start := time.Now()
			listing, prog, err := asm.Compile(src)
			tr.stage(stderr, "compile", start)
			if err != nil {
				return err
			}

			if obj && outPath == "" {
				outPath = utils.DefaultOutputPath(args[0], ".obj")
			}
			switch {
			case outPath != "":
				if err := os.WriteFile(outPath, []byte(listing), 0o644); err != nil {
					return fmt.Errorf("failed to write listing %q: %w", outPath, err)
				}
				fmt.Fprintf(stderr, "emitted %d instructions -> %s\n", len(prog.Code), outPath)
			case !run:
				fmt.Fprint(stdout, listing)
			}

			if !run {
				return nil
			}
			out := &lineWriter{w: stdout}
			m := vm.New(prog)
			m.Output = out
			m.MaxSteps = maxSteps

			start = time.Now()
			err = m.Run()
			tr.stage(stderr, "vm", start)
			out.finish()
			return err
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the listing to this file instead of stdout")
	cmd.Flags().BoolVar(&obj, "obj", false, "write the listing next to the source with a .obj extension")
	cmd.Flags().BoolVar(&run, "run", false, "assemble the listing and run it on the stack VM")
	cmd.Flags().IntVar(&maxSteps, "max-steps", 0, "stop after this many instructions (0 = unlimited)")
	return cmd
}
