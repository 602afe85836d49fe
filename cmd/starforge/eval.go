package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.starlark.net/starlark"

	"github.com/starforge/starforge/starlarkenv"
)

var evalCmd = &cobra.Command{
	Use:   "eval [file]",
	Short: "Evaluate a snippet or file (one-shot, no target resolution)",
	Long: `Evaluate Starlark code against a fresh environment and print the result.

Code can be provided via:
  - File argument: starforge eval snippet.star
  - Inline flag: starforge eval -c 'CWD'
  - Stdin: echo 'print(BUILD_TARGET_TRIPLE)' | starforge eval

The snippet sees the same predeclared names a config does. With --config the
environment is derived from that config file's location instead of the
default one; the file does not have to exist, only its directory matters.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEval,
}

func init() {
	evalCmd.Flags().StringP("code", "c", "", "Code to evaluate")
	evalCmd.Flags().String("config", defaultConfigFile, "Config path the environment is derived from")
	rootCmd.AddCommand(evalCmd)
}

func runEval(cmd *cobra.Command, args []string) error {
	code, _ := cmd.Flags().GetString("code")
	configPath, _ := cmd.Flags().GetString("config")

	var source, name string
	switch {
	case code != "":
		source, name = code, "<eval>"
	case len(args) > 0:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		source, name = string(data), args[0]
		configPath = args[0]
	default:
		stat, err := os.Stdin.Stat()
		if err != nil || (stat.Mode()&os.ModeCharDevice) != 0 {
			return cmd.Help()
		}
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return err
		}
		source, name = string(data), "<stdin>"
		if source == "" {
			return cmd.Help()
		}
	}

	ec, err := newContext(configPath)
	if err != nil {
		return err
	}
	session, err := starlarkenv.NewSession(ec, starlarkenv.WithInteractive())
	if err != nil {
		return err
	}
	defer session.Close()

	if name == "<eval>" {
		v, err := session.Eval(source)
		if err != nil {
			return err
		}
		if v != starlark.None {
			fmt.Fprintln(cmd.OutOrStdout(), v.String())
		}
		return nil
	}
	return session.ExecSource(name, source)
}
