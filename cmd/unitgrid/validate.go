package main

import (
	"errors"
	"fmt"

	"github.com/aretw0/unitgrid/internal/presentation/tui"
	"github.com/aretw0/unitgrid/pkg/domain"
	"github.com/aretw0/unitgrid/pkg/grid"
	"github.com/aretw0/unitgrid/pkg/schema"
	"github.com/spf13/cobra"
)

var errInvalidGrid = errors.New("grid has invalid cells")

var validateCmd = &cobra.Command{
	Use:   "validate <project.json>",
	Short: "Check a project's grid against its schema",
	Long: `Runs the enable/validate pass over the grid and reports every invalid cell and
every disabled cell that still holds a value. Exits with status 1 when any cell is invalid.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := readProject(cmd, args[0])
		if err != nil {
			return err
		}
		return runValidate(cmd, p)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, p *domain.Project) error {
	out := cmd.OutOrStdout()

	if err := p.InputDataConfig.Check(); err != nil {
		for _, e := range schema.Errors(err) {
			fmt.Fprintf(out, "schema: %v\n", e)
		}
	}

	rows, states := grid.Recompute(p.InputDataConfig, p.InputData)
	names := p.InputDataConfig.Names()
	for _, c := range grid.Cleared(states) {
		fmt.Fprintf(out, "row %d %s: disabled cell holds %q (cleared on save)\n", c.Row+1, names[c.Col], p.InputData[c.Row].Cell(c.Col))
	}
	invalid := grid.Invalid(states)
	for _, c := range invalid {
		col := p.InputDataConfig[c.Col]
		value := rows[c.Row].Cell(c.Col)
		fmt.Fprintf(out, "row %d %s: %v\n", c.Row+1, col.Name, schema.CheckCell(value, col.Rule))
	}

	fmt.Fprintln(out, tui.Status(len(invalid)))
	if len(invalid) > 0 {
		return fmt.Errorf("%w: %d", errInvalidGrid, len(invalid))
	}
	return nil
}
