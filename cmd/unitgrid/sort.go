package main

import (
	"fmt"

	"github.com/aretw0/unitgrid/pkg/grid"
	"github.com/spf13/cobra"
)

var sortCmd = &cobra.Command{
	Use:   "sort <project.json>",
	Short: "Order a project's rows along their next pointers",
	Long: `Reorders the grid so every row precedes the row its Next column names, then
writes the project as JSON. Rows with an empty Name are dropped and listed on stderr.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := readProject(cmd, args[0])
		if err != nil {
			return err
		}

		e := grid.New(p.InputDataConfig, p.InputData)
		dropped, err := e.SortByFlow()
		if err != nil {
			return err
		}
		for _, r := range dropped {
			fmt.Fprintf(cmd.ErrOrStderr(), "dropped row without a key: %q\n", []string(r))
		}
		p.InputData = e.Rows()

		output, _ := cmd.Flags().GetString("output")
		return writeProject(cmd, output, p)
	},
}

func init() {
	rootCmd.AddCommand(sortCmd)
	sortCmd.Flags().StringP("output", "o", "", "Write to a file instead of stdout")
}
