package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"ngdefc/internal/config"
	"ngdefc/internal/pipeline"
)

type compileFlags struct {
	output   string
	format   string
	workers  int
	closure  bool
	summary  bool
	varDecls bool
}

func newCompileCommand(root *rootFlags) *cobra.Command {
	flags := &compileFlags{}

	cmd := &cobra.Command{
		Use:   "compile <file|dir|->...",
		Short: "Emit definitions for metadata documents",
		Long: `Compile directive and component metadata documents into Ivy definitions.

Directories are searched for .yaml, .yml and .json documents. Each document
gets its own constant pool; output follows the argument order.

Examples:
  ngdefc compile widgets.yaml
  ngdefc compile --format dts -o widgets.d.ts widgets.yaml
  ngdefc compile --summary metadata/
`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd, root, flags, args)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "out", "o", "", "write output to a file instead of stdout")
	cmd.Flags().StringVar(&flags.format, "format", config.OutputFormatJS, "output format: js or dts")
	cmd.Flags().IntVarP(&flags.workers, "workers", "j", config.DefaultWorkers, "documents compiled in parallel")
	cmd.Flags().BoolVar(&flags.closure, "closure", false, "name pooled constants for Closure Compiler")
	cmd.Flags().BoolVar(&flags.summary, "summary", false, "print a table of compiled units to stderr")
	cmd.Flags().BoolVar(&flags.varDecls, "var-decls", false, "declare definitions as variables instead of class fields")

	return cmd
}

// applyCompileFlags lets explicitly set flags win over the configuration.
func applyCompileFlags(cmd *cobra.Command, cfg *config.Config, flags *compileFlags) error {
	if cmd.Flags().Changed("format") {
		cfg.Output.Format = flags.format
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = flags.workers
	}
	if cmd.Flags().Changed("closure") {
		cfg.Compiler.ClosureCompiler = flags.closure
	}
	if cmd.Flags().Changed("summary") {
		cfg.Output.Summary = flags.summary
	}
	if cmd.Flags().Changed("var-decls") {
		cfg.Compiler.EmitClassStatements = !flags.varDecls
	}
	return cfg.Validate()
}

func runCompile(cmd *cobra.Command, root *rootFlags, flags *compileFlags, args []string) (err error) {
	s, err := openSession(cmd, root)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	defer func() { err = closeSession(ctx, s, err) }()

	if err := applyCompileFlags(cmd, s.cfg, flags); err != nil {
		return err
	}

	sources, err := readSources(args)
	if err != nil {
		return err
	}
	s.logger.DebugContext(ctx, "compiling documents", "count", len(sources), "workers", s.cfg.Workers)

	opts := pipeline.FromConfig(s.cfg)
	opts.Tracer = s.providers.Tracer
	opts.Logger = s.logger
	opts.Metrics = s.metrics

	results, err := pipeline.Run(ctx, sources, opts)
	if err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	failed := 0
	for i := range results {
		if results[i].Failed() {
			failed++
			printDiagnostic(stderr, results[i].Path, results[i].Err)
		}
	}
	if s.cfg.Output.Summary {
		renderSummary(stderr, results)
	}

	if failed == 0 {
		if err := writeOutput(cmd, flags.output, joinOutputs(results)); err != nil {
			return err
		}
	}

	s.logger.InfoContext(ctx, "compilation finished", "documents", len(results), "failed", failed)
	if failed > 0 {
		return ErrReported
	}
	return nil
}

// joinOutputs concatenates document outputs. With several documents each
// one is introduced by a comment naming its source.
func joinOutputs(results []pipeline.DocumentResult) string {
	if len(results) == 1 {
		return results[0].Output
	}
	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "// %s\n", r.Path)
		b.WriteString(r.Output)
	}
	return b.String()
}

func writeOutput(cmd *cobra.Command, path, content string) error {
	if path == "" {
		return writeString(cmd.OutOrStdout(), content)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
