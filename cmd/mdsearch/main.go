package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/mdsearch/internal/config"
)

var (
	cfgFile string
	env     string
)

var rootCmd = &cobra.Command{
	Use:   "mdsearch",
	Short: "Metadata catalog search engine",
	Long: `mdsearch compiles catalog search requests into engine queries, runs them
against versioned index snapshots and aggregates facet summaries.

Example usage:
  mdsearch serve                                  # admin server and search log workers
  mdsearch search --param any=water --param to=20 # one-shot search, JSON output
  mdsearch version`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is config/<env>.yaml)")
	rootCmd.PersistentFlags().StringVar(&env, "env", config.GetEnv(), "environment: local, dev or prod")
}

func loadConfig() (config.Config, error) {
	if cfgFile != "" {
		return config.LoadFile(cfgFile)
	}
	return config.Load(env)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
