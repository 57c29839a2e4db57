package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"ngdefc/internal/metadata"
)

func newValidateCommand(root *rootFlags) *cobra.Command {
	var printSchema bool

	cmd := &cobra.Command{
		Use:   "validate <file|dir|->...",
		Short: "Check documents against the metadata schema",
		Long: `Validate metadata documents against the embedded JSON schema without
compiling them.

Examples:
  ngdefc validate widgets.yaml
  ngdefc validate --schema
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			applyColor(root)
			if printSchema {
				return writeString(cmd.OutOrStdout(), string(metadata.Schema()))
			}
			if len(args) == 0 {
				return cmd.Help()
			}
			return runValidate(cmd, args)
		},
	}

	cmd.Flags().BoolVar(&printSchema, "schema", false, "print the metadata schema and exit")
	return cmd
}

func runValidate(cmd *cobra.Command, args []string) error {
	sources, err := readSources(args)
	if err != nil {
		return err
	}

	out, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	invalid := 0
	for _, src := range sources {
		if err := metadata.Validate(src.Path, src.Data); err != nil {
			invalid++
			printDiagnostic(stderr, src.Path, err)
			if strings.Contains(err.Error(), "Additional property") {
				printHint(stderr, "run `ngdefc validate --schema` to list the accepted fields")
			}
			continue
		}
		printOK(out, src.Path, "valid")
	}
	if invalid > 0 {
		return ErrReported
	}
	return nil
}
