// Package commands implements the ngdefc subcommands.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/xyproto/env/v2"

	"ngdefc/internal/config"
	"ngdefc/internal/observability"
	"ngdefc/packages/compiler/core"
)

// ErrReported is returned after the failure was already printed as a
// diagnostic. Callers only need to set the exit code.
var ErrReported = errors.New("failure reported")

// Build information, set with -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

type rootFlags struct {
	configPath string
	verbose    bool
	noColor    bool
}

// NewRootCommand builds the ngdefc command tree.
func NewRootCommand() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "ngdefc",
		Short: "Ivy definition compiler",
		Long: `ngdefc compiles directive, component and pipe metadata documents
into Ivy definitions (ngDirectiveDef / ngComponentDef / ngPipeDef).

Commands:
  compile   Emit definitions for metadata documents
  validate  Check documents against the metadata schema
  check     Compile twice and diff the output
  version   Show version information`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "config file (default .ngdefc.yaml)")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "log every compiled unit")
	root.PersistentFlags().BoolVar(&flags.noColor, "no-color", false, "disable colored output")

	root.AddCommand(newCompileCommand(flags))
	root.AddCommand(newValidateCommand(flags))
	root.AddCommand(newCheckCommand(flags))
	root.AddCommand(newVersionCommand())
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ngdefc %s (commit: %s, built: %s)\n", Version, Commit, Date)
			fmt.Fprintf(cmd.OutOrStdout(), "runtime: Ivy %s\n", core.RuntimeVersion.Full)
		},
	}
}

// session is the configuration and telemetry shared by one command run.
type session struct {
	cfg       *config.Config
	providers observability.Providers
	metrics   *observability.CompileMetrics
	logger    *slog.Logger
}

func openSession(cmd *cobra.Command, flags *rootFlags) (*session, error) {
	applyColor(flags)

	path := flags.configPath
	if path == "" {
		path = env.Str("NGDEFC_CONFIG")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	level, err := cfg.Log.SlogLevel()
	if err != nil {
		return nil, err
	}
	if flags.verbose || env.Bool("NGDEFC_DEBUG") {
		level = slog.LevelDebug
	}

	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = Version
	obsCfg.LogLevel = level
	obsCfg.LogJSON = cfg.Log.Format == config.LogFormatJSON
	obsCfg.LogOutput = cmd.ErrOrStderr()
	obsCfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	obsCfg.OTLPInsecure = cfg.Telemetry.OTLPInsecure
	obsCfg.MetricsFile = cfg.Telemetry.MetricsFile

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return nil, fmt.Errorf("init observability: %w", err)
	}
	metrics, err := observability.NewCompileMetrics(providers.Meter)
	if err != nil {
		return nil, errors.Join(err, providers.Shutdown(context.Background()))
	}

	return &session{cfg: cfg, providers: providers, metrics: metrics, logger: providers.Logger}, nil
}

func (s *session) close(ctx context.Context) error {
	if err := s.providers.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown observability: %w", err)
	}
	return nil
}

// applyColor honors --no-color and the NO_COLOR convention.
func applyColor(flags *rootFlags) {
	if flags.noColor || env.Has("NO_COLOR") {
		color.NoColor = true
	}
}

// closeSession folds the shutdown error into err.
func closeSession(ctx context.Context, s *session, err error) error {
	return errors.Join(err, s.close(ctx))
}

func writeString(w io.Writer, s string) error {
	if _, err := io.WriteString(w, s); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
