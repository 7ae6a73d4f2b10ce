package cli

import (
	"fmt"

	"flowboard-cli/internal/docs"

	"github.com/spf13/cobra"
)

func newDocsCmd(app *App) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "docs [topic]",
		Short: "Built-in help pages",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				all := docs.All()
				names := make([]string, len(all))
				for i, topic := range all {
					names[i] = topic.Name
				}
				return writeOut(cmd, app, map[string]any{"data": map[string]any{"topics": names}})
			}

			topic, ok := docs.Lookup(args[0])
			if !ok {
				return writeErr(cmd, fmt.Errorf("no help page %q; `flowboard docs` lists the available ones", args[0]))
			}
			if raw {
				_, err := fmt.Fprint(cmd.OutOrStdout(), topic.Markdown)
				return err
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"topic": topic.Name, "markdown": topic.Markdown}})
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print the raw markdown instead of the JSON envelope")

	return cmd
}
