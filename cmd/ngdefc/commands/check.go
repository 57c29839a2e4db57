package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"ngdefc/internal/pipeline"
)

func newCheckCommand(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "check <file|dir|->...",
		Short: "Compile twice and diff the output",
		Long: `Compile every document twice with fresh constant pools and report any
difference between the two runs. Identical metadata must always produce
byte-identical output.
`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, root, args)
		},
	}
}

func runCheck(cmd *cobra.Command, root *rootFlags, args []string) (err error) {
	s, err := openSession(cmd, root)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	defer func() { err = closeSession(ctx, s, err) }()

	sources, err := readSources(args)
	if err != nil {
		return err
	}

	opts := pipeline.FromConfig(s.cfg)
	opts.Tracer = s.providers.Tracer
	opts.Logger = s.logger

	first, err := pipeline.Run(ctx, sources, opts)
	if err != nil {
		return err
	}
	second, err := pipeline.Run(ctx, sources, opts)
	if err != nil {
		return err
	}

	out, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	problems := 0
	for i := range first {
		a, b := first[i], second[i]
		switch {
		case a.Failed():
			problems++
			printDiagnostic(stderr, a.Path, a.Err)
		case b.Failed():
			problems++
			printDiagnostic(stderr, b.Path, b.Err)
		case a.Output != b.Output:
			problems++
			printDiagnostic(stderr, a.Path, fmt.Errorf("output differs between runs"))
			writeLineDiff(stderr, a.Output, b.Output)
		default:
			printOK(out, a.Path, "deterministic")
		}
	}
	if problems > 0 {
		return ErrReported
	}
	return nil
}

// writeLineDiff prints a line-oriented diff of a and b.
func writeLineDiff(w io.Writer, a, b string) {
	dmp := diffmatchpatch.New()
	charsA, charsB, lines := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(charsA, charsB, false), lines)

	for _, d := range diffs {
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			line = strings.TrimSuffix(line, "\n")
			switch d.Type {
			case diffmatchpatch.DiffDelete:
				problemLabel.Fprintf(w, "- %s\n", line)
			case diffmatchpatch.DiffInsert:
				okLabel.Fprintf(w, "+ %s\n", line)
			case diffmatchpatch.DiffEqual:
				fmt.Fprintf(w, "  %s\n", line)
			}
		}
	}
}
