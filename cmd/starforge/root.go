package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/starforge/starforge/starlarkenv"
)

// defaultConfigFile is what commands evaluate when no config is named.
const defaultConfigFile = "starforge.star"

var (
	verbose      bool
	hostTriple   string
	targetTriple string
	release      bool
	optLevel     string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "starforge [config]",
	Short: "Evaluate Starlark build configuration files",
	Long: `starforge evaluates a Starlark build configuration file and resolves
the build targets it registers.

A config registers named targets with register_target() and may adjust the
build layout with set_build_path(). Running starforge without a subcommand
evaluates the config and resolves its default target, like "starforge build".`,
	Version:       "0.1.0",
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runBuild, // default to build command behavior
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&hostTriple, "host-triple", "", "Platform triple of the build host (default: detected)")
	rootCmd.PersistentFlags().StringVar(&targetTriple, "target-triple", "", "Platform triple being built for (default: host triple)")
	rootCmd.PersistentFlags().BoolVar(&release, "release", false, "Build in release mode")
	rootCmd.PersistentFlags().StringVar(&optLevel, "opt-level", "0", "Optimization level configs see")

	addBuildFlags(rootCmd)
}

// configArg picks the config file: the positional argument if given, else
// the default name in the current directory.
func configArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return defaultConfigFile
}

// newContext builds the environment context every command evaluates
// against, from the shared platform flags.
func newContext(configPath string) (*starlarkenv.EnvironmentContext, error) {
	opts := []starlarkenv.ContextOption{
		starlarkenv.WithVerbose(verbose),
		starlarkenv.WithRelease(release),
		starlarkenv.WithOptLevel(optLevel),
	}
	if hostTriple != "" {
		opts = append(opts, starlarkenv.WithHostTriple(hostTriple))
	}
	if targetTriple != "" {
		opts = append(opts, starlarkenv.WithTargetTriple(targetTriple))
	}
	return starlarkenv.NewEnvironmentContext(logger, configPath, opts...)
}
