package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the distribution cache directory",
	Long: `Inspect or clear the python_distributions directory of a config's build
layout. Distributions are resolved into it on first use and reused across
evaluations; clearing it forces the next build to resolve them again.`,
}

var cacheLsCmd = &cobra.Command{
	Use:   "ls [config]",
	Short: "List cached distributions",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCacheLs,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear [config]",
	Short: "Remove all cached distributions",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCacheClear,
}

func init() {
	cacheCmd.AddCommand(cacheLsCmd, cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheLs(cmd *cobra.Command, args []string) error {
	ec, err := newContext(configArg(args))
	if err != nil {
		return err
	}

	dir := ec.PythonDistributionsPath()
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintln(cmd.OutOrStdout(), "No cached distributions.")
			return nil
		}
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No cached distributions.")
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Distributions in %s:\n", dir)
	for _, entry := range entries {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", entry.Name())
	}
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	ec, err := newContext(configArg(args))
	if err != nil {
		return err
	}

	dir := ec.PythonDistributionsPath()
	if err := os.RemoveAll(dir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear distribution cache: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared.")
	return nil
}
