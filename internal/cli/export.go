package cli

import (
	"fmt"

	"flowboard-cli/internal/export"

	"github.com/spf13/cobra"
)

func newExportCmd(app *App) *cobra.Command {
	var toDir, title string
	var includeNotes, overwrite bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render the board as markdown (stdout, or files with --to)",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			tasks, err := s.LoadTasks(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}

			opt := export.RenderOptions{IncludeNotes: includeNotes, Title: title}

			if toDir == "" {
				_, err := fmt.Fprint(cmd.OutOrStdout(), export.RenderBoardMarkdown(tasks, opt))
				return err
			}

			res, err := export.WriteBoard(tasks, toDir, overwrite, opt)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": res})
		},
	}

	cmd.Flags().StringVar(&toDir, "to", "", "Directory to write board.md and tasks/ pages into")
	cmd.Flags().StringVar(&title, "title", "", "Heading for the board page")
	cmd.Flags().BoolVar(&includeNotes, "notes", false, "Inline task notes under each entry")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace existing files")

	return cmd
}
