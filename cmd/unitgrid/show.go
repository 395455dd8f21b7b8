package main

import (
	"fmt"

	"github.com/aretw0/unitgrid/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <project.json>",
	Short: "Render a project's grid as a styled table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := readProject(cmd, args[0])
		if err != nil {
			return err
		}

		md := tui.GridMarkdown(p)
		if raw, _ := cmd.Flags().GetBool("markdown"); raw {
			_, err := fmt.Fprint(cmd.OutOrStdout(), md)
			return err
		}

		width, _ := cmd.Flags().GetInt("width")
		render, err := tui.NewRenderer(width)
		if err != nil {
			return err
		}
		out, err := render(md)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		fmt.Fprintln(cmd.OutOrStdout(), tui.Legend())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().Bool("markdown", false, "Print the markdown source instead of rendering it")
	showCmd.Flags().Int("width", 0, "Wrap width (0 disables wrapping)")
}
