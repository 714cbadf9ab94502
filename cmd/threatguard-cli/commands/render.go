package commands

import (
	"fmt"
	"os"

	"github.com/l3montree-dev/threatguard/threatmodel"
	"github.com/spf13/cobra"
)

func NewRenderCommand() *cobra.Command {
	render := &cobra.Command{
		Use:   "render <model.yaml>",
		Short: "Render a data flow diagram for a model file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := cmd.Flags().GetString("format")
			if err != nil {
				return err
			}
			output, err := cmd.Flags().GetString("output")
			if err != nil {
				return err
			}

			renderer, err := threatmodel.NewRenderer(threatmodel.Format(format))
			if err != nil {
				return err
			}

			_, graph, err := readModelFile(args[0])
			if err != nil {
				return err
			}

			diagram, err := renderer.Render(threatmodel.Annotate(graph))
			if err != nil {
				return err
			}

			if output == "" {
				fmt.Fprint(cmd.OutOrStdout(), diagram)
				return nil
			}
			return os.WriteFile(output, []byte(diagram), 0644)
		},
	}
	render.Flags().StringP("format", "f", string(threatmodel.FormatMermaid), "diagram format: mermaid, svg or plantuml")
	render.Flags().StringP("output", "o", "", "write the diagram to a file instead of stdout")
	return render
}
