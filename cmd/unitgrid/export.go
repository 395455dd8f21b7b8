package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/unitgrid/pkg/export"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export <project.json> -o out.xlsx",
	Short: "Export a project's grid to an Excel workbook",
	Long:  `Writes the grid with a frozen header row. Disabled cells are shaded and invalid cells are filled red.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			return errors.New("--output is required")
		}
		p, err := readProject(cmd, args[0])
		if err != nil {
			return err
		}

		f, err := os.Create(output)
		if err != nil {
			return err
		}
		if err := export.Write(f, p); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d rows)\n", output, len(p.InputData))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringP("output", "o", "", "Workbook path")
}
