package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "unitgrid",
	Short: "unitgrid is a rule-driven grid editor for conveyor unit parameters",
	Long: `unitgrid keeps project grids whose columns enable and validate each other,
serves them over HTTP with live updates, and checks, sorts, renders or exports
project files from the command line.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().String("schema", "", "Schema file (YAML or JSON) overriding the project's own")
}
