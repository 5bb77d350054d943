// Command unbundle splits a JavaScript module bundle into one file per module.
//
// Usage:
//
//	unbundle --inputfile dist/app.js --save_folder out/
//	unbundle -i dist/app.js -o out/ --manifest
//	unbundle watch -i dist/app.js -o out/
//
// Every key/value entry of an object that sits directly inside an array
// literal is treated as a module: the key names the file and the value is
// regenerated as its content.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"unbundle/internal/bundle"
	"unbundle/internal/config"
	"unbundle/internal/logging"
	"unbundle/internal/pipeline"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// Exit codes.
const (
	exitOK            = 0
	exitFatal         = 1
	exitWriteFailures = 2
)

// ErrWriteFailures is returned in strict mode when some module files could
// not be written.
var ErrWriteFailures = errors.New("some module files could not be written")

var (
	// Global flags
	verbose    bool
	configPath string
	inputFile  string
	saveFolder string

	// Output flags
	strict          bool
	manifest        bool
	noComments      bool
	compact         bool
	requireFunction bool

	cfg *config.Config

	// Logger
	logger *zap.Logger
)

// rootCmd extracts the modules of one bundle.
var rootCmd = &cobra.Command{
	Use:   "unbundle",
	Short: "Split a JavaScript module bundle into one file per module",
	Long: `unbundle parses a bundled JavaScript file, finds the module table (an array
of objects mapping module ids to factory functions) and writes every module
to its own <name>.js file in the destination folder.

Module names are made filesystem-safe by replacing / \ : * ? " < > | with _.
When two names map to the same file, the module found later in the bundle wins.`,
	Example: `  unbundle --inputfile dist/app.js --save_folder modules
  unbundle -i dist/app.js -o modules --manifest --strict`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logging.Sync()
	},
	Args: cobra.NoArgs,
	RunE: runExtract,
}

// versionCmd prints the build version.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the unbundle version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "unbundle %s\n", version)
	},
}

func init() {
	rootCmd.Version = version

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "unbundle.yaml", "Config file (missing file means defaults)")
	rootCmd.PersistentFlags().StringVarP(&inputFile, "inputfile", "i", "", "The path to the input JavaScript file")
	rootCmd.PersistentFlags().StringVarP(&saveFolder, "save_folder", "o", "", "The folder to save output files (or set output.dir)")

	rootCmd.PersistentFlags().BoolVar(&strict, "strict", false, "Exit with status 2 when any module file fails to write")
	rootCmd.PersistentFlags().BoolVar(&manifest, "manifest", false, "Write a YAML manifest next to the modules")
	rootCmd.PersistentFlags().BoolVar(&noComments, "no-comments", false, "Drop comments from regenerated modules")
	rootCmd.PersistentFlags().BoolVar(&compact, "compact", false, "Emit modules in compact form")
	rootCmd.PersistentFlags().BoolVar(&requireFunction, "require-function", false, "Skip table entries whose value is not a function")

	rootCmd.AddCommand(watchCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		os.Exit(exitCode(err))
	}
	os.Exit(exitOK)
}

func exitCode(err error) int {
	if errors.Is(err, ErrWriteFailures) {
		return exitWriteFailures
	}
	return exitFatal
}

// setup loads .env and the config file, applies flag overrides and
// initializes logging.
func setup(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	applyFlagOverrides(cmd, loaded)
	if verbose {
		loaded.Logging.Level = "debug"
	}
	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	cfg = loaded

	if err := logging.Initialize(logging.Options{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		File:       cfg.Logging.File,
		Categories: cfg.Logging.Categories,
	}); err != nil {
		return err
	}
	logger = logging.L()
	logging.BootDebug("config %s loaded (version %s)", configPath, version)
	return nil
}

// applyFlagOverrides copies explicitly set flags over the config.
func applyFlagOverrides(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("save_folder") {
		c.Output.Dir = saveFolder
	}
	if flags.Changed("strict") {
		c.Output.Strict = strict
	}
	if flags.Changed("manifest") {
		c.Output.Manifest = manifest
	}
	if flags.Changed("no-comments") {
		c.Generate.Comments = !noComments
	}
	if flags.Changed("compact") {
		c.Generate.Compact = compact
	}
	if flags.Changed("require-function") {
		c.Extract.RequireFunction = requireFunction
	}
}

// runOptions resolves the run options from flags and config.
func runOptions(cmd *cobra.Command) (pipeline.Options, error) {
	if inputFile == "" {
		return pipeline.Options{}, errors.New(`required flag "inputfile" not set`)
	}
	if cfg.Output.Dir == "" {
		return pipeline.Options{}, errors.New(`required flag "save_folder" not set (or set output.dir)`)
	}

	opts := pipeline.OptionsFromConfig(cfg)
	input, err := filepath.Abs(inputFile)
	if err != nil {
		return pipeline.Options{}, fmt.Errorf("resolve input path: %w", err)
	}
	dest, err := filepath.Abs(opts.OutputDir)
	if err != nil {
		return pipeline.Options{}, fmt.Errorf("resolve save folder: %w", err)
	}
	opts.InputPath = input
	opts.OutputDir = dest
	opts.OnFile = fileReporter(cmd.OutOrStdout(), cmd.ErrOrStderr())
	return opts, nil
}

func runExtract(cmd *cobra.Command, args []string) error {
	opts, err := runOptions(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger.Debug("extracting", zap.String("input", opts.InputPath), zap.String("output", opts.OutputDir))
	report, err := pipeline.Run(ctx, opts)
	if err != nil {
		return err
	}
	printReport(cmd.ErrOrStderr(), report, verbose)

	if cfg.Output.Strict {
		if failures := report.WriteFailures(); len(failures) > 0 {
			return fmt.Errorf("%w: %d failed", ErrWriteFailures, len(failures))
		}
	}
	return nil
}

// isFatal reports whether err ends a run before any file is written.
func isFatal(err error) bool {
	var ie *bundle.InputError
	var gf *bundle.GenerationFailure
	var de *bundle.DirectoryError
	return errors.As(err, &ie) || errors.As(err, &gf) || errors.As(err, &de)
}
