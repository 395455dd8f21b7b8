package main

import (
	"fmt"

	"github.com/aretw0/unitgrid/internal/presentation/graph"
	"github.com/aretw0/unitgrid/pkg/flow"
	"github.com/aretw0/unitgrid/pkg/grid"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph <project.json>",
	Short: "Visualize the row flow as a Mermaid diagram",
	Long:  `Generates a Mermaid flowchart of the rows' next pointers. Rows holding invalid cells are highlighted.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := readProject(cmd, args[0])
		if err != nil {
			return err
		}

		rows, states := grid.Recompute(p.InputDataConfig, p.InputData)
		overlay := &graph.FlowOverlay{}
		for _, st := range grid.Invalid(states) {
			overlay.Invalid = append(overlay.Invalid, rows[st.Row].Cell(flow.KeyColumn))
		}
		overlay.Current, _ = cmd.Flags().GetString("current")

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(rows, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("current", "", "Key of a row to highlight")
}
