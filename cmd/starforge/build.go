package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/starforge/starforge/starlarkenv"
)

var buildCmd = &cobra.Command{
	Use:   "build [config]",
	Short: "Evaluate a config and resolve its targets",
	Long: `Evaluate a Starlark build configuration file and resolve targets.

Without --target, the config's default target is resolved: the target
registered with default=True, or the first registered target. Each resolved
target is reported with the output directory the build pipeline will use.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBuild,
}

func init() {
	addBuildFlags(buildCmd)
	rootCmd.AddCommand(buildCmd)
}

func addBuildFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("target", nil, "Target to resolve (repeatable)")
	cmd.Flags().Bool("build-script-mode", false, "Prefer the config's build script target")
}

func runBuild(cmd *cobra.Command, args []string) error {
	targets, _ := cmd.Flags().GetStringSlice("target")
	buildScriptMode, _ := cmd.Flags().GetBool("build-script-mode")

	ec, err := newContext(configArg(args))
	if err != nil {
		return err
	}

	var sessionOpts []starlarkenv.SessionOption
	if len(targets) > 0 {
		sessionOpts = append(sessionOpts, starlarkenv.WithWantTargets(targets...))
	}
	if buildScriptMode {
		sessionOpts = append(sessionOpts, starlarkenv.WithBuildScriptMode())
	}

	session, err := starlarkenv.EvaluateFile(ec, sessionOpts...)
	if err != nil {
		return err
	}
	defer session.Close()

	resolved, err := session.ResolveTargets()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, rt := range resolved {
		fmt.Fprintf(out, "resolved target %s (%s) -> %s\n", rt.Name, rt.Value.Type(), rt.OutputDir)
	}
	fmt.Fprintf(out, "build path: %s\n", ec.BuildPath())
	return nil
}
