package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vpatch/internal/config"
	"github.com/vango-dev/vpatch/internal/errors"
	"github.com/vango-dev/vpatch/internal/logging"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// options are the settings shared by all commands.
type options struct {
	dir      string
	logLevel string
	color    string
	quiet    bool
	cfg      *config.Config
	logger   *slog.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.PrintError(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	o := &options{}

	rootCmd := &cobra.Command{
		Use:   "vpatch",
		Short: "Reconcile virtual trees against host trees",
		Long: `vpatch reconciles virtual node trees against host trees.

Trees are described in YAML or JSON files. vpatch can mount them,
diff two revisions and show the host mutations that get from one
to the other, validate them, and stream live updates to websocket
clients.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := o.setColor(); err != nil {
				return err
			}
			return o.load(cmd.ErrOrStderr())
		},
	}

	rootCmd.PersistentFlags().StringVarP(&o.dir, "config", "C", ".", "Directory containing vpatch.json")
	rootCmd.PersistentFlags().StringVar(&o.logLevel, "log-level", "", "Log level (default from vpatch.json)")
	rootCmd.PersistentFlags().StringVar(&o.color, "color", "auto", "Colored output: auto, always or never")
	rootCmd.PersistentFlags().BoolVarP(&o.quiet, "quiet", "q", false, "Discard log output")

	rootCmd.AddCommand(
		initCmd(o),
		diffCmd(o),
		renderCmd(o),
		validateCmd(),
		serveCmd(o),
		versionCmd(),
	)

	return rootCmd
}

// load reads vpatch.json, applies flag overrides and builds the logger.
func (o *options) load(logOut io.Writer) error {
	cfg, err := config.Load(o.dir)
	if err != nil {
		return err
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	level, _ := logging.ParseLevel(cfg.LogLevel)

	o.cfg = cfg
	if o.quiet {
		o.logger = logging.NewNop()
	} else {
		o.logger = logging.NewWriter(logOut, level)
	}
	if cfg.Path() != "" {
		o.logger.Debug("config loaded", "path", cfg.Path())
	}
	return nil
}

// setColor applies --color. auto leaves the NO_COLOR default in place.
func (o *options) setColor() error {
	switch o.color {
	case "", "auto":
	case "always":
		errors.EnableColors()
	case "never":
		errors.DisableColors()
	default:
		return errors.Newf(errors.CategoryCLI, "unknown --color value %q (want auto, always or never)", o.color)
	}
	return nil
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	mark(w, "\033[32m✓\033[0m", "✓", fmt.Sprintf(format, args...))
}

// failure prints a failure message.
func failure(w io.Writer, format string, args ...any) {
	mark(w, "\033[31m✗\033[0m", "✗", fmt.Sprintf(format, args...))
}

func mark(w io.Writer, colored, plain, msg string) {
	if errors.ColorsEnabled() {
		fmt.Fprintf(w, "%s %s\n", colored, msg)
		return
	}
	fmt.Fprintf(w, "%s %s\n", plain, msg)
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}
