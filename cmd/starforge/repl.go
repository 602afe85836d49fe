package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
	"go.starlark.net/starlark"

	"github.com/starforge/starforge/starlarkenv"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive session against a config environment",
	Long: `Start an interactive session with the same predeclared names a config sees.

Features:
  - Command history (up/down arrows)
  - History search (Ctrl+R)
  - Multi-line input (end line with \)

Type 'exit' or 'quit' to end the session, or press Ctrl+D.`,
	RunE: runRepl,
}

func init() {
	replCmd.Flags().String("config", defaultConfigFile, "Config path the environment is derived from")
	replCmd.Flags().String("history", "", "History file (default: ~/.starforge_history)")
	rootCmd.AddCommand(replCmd)
}

func runRepl(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	historyFile, _ := cmd.Flags().GetString("history")

	if historyFile == "" {
		home, _ := os.UserHomeDir()
		historyFile = filepath.Join(home, ".starforge_history")
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

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            ">>> ",
		HistoryFile:       historyFile,
		HistoryLimit:      1000,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return fmt.Errorf("initialize readline: %w", err)
	}
	defer rl.Close()

	fmt.Fprintf(os.Stderr, "starforge REPL, target %s (type 'exit' to quit, Ctrl+D to exit)\n", ec.TargetTriple())

	var multiLine strings.Builder
	inMultiLine := false

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				if inMultiLine {
					multiLine.Reset()
					inMultiLine = false
					rl.SetPrompt(">>> ")
				}
				continue
			}
			if err == io.EOF {
				fmt.Println()
				break
			}
			return fmt.Errorf("read input: %w", err)
		}

		// Multi-line input: trailing backslash continues the statement.
		if strings.HasSuffix(line, "\\") {
			multiLine.WriteString(strings.TrimSuffix(line, "\\"))
			multiLine.WriteString("\n")
			inMultiLine = true
			rl.SetPrompt("... ")
			continue
		}

		if inMultiLine {
			multiLine.WriteString(line)
			line = multiLine.String()
			multiLine.Reset()
			inMultiLine = false
			rl.SetPrompt(">>> ")
		}

		if strings.TrimSpace(line) == "" {
			continue
		}
		if trimmed := strings.TrimSpace(line); trimmed == "exit" || trimmed == "quit" {
			break
		}

		v, err := session.Eval(line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}
		if v != starlark.None {
			fmt.Println(v.String())
		}
	}
	return nil
}
