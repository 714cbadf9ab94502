package commands

import (
	"os"

	"github.com/l3montree-dev/threatguard/threatmodel"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func NewExportCommand() *cobra.Command {
	export := &cobra.Command{
		Use:   "export <model.yaml>",
		Short: "Analyze a model file and export the threat table",
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
			if output == "" {
				return errors.New("--output is required")
			}

			name, graph, err := readModelFile(args[0])
			if err != nil {
				return err
			}

			engine := threatmodel.NewStrideEngine(threatmodel.DefaultCatalog())
			threats := engine.Analyze(graph)
			annotated := threatmodel.Annotate(graph)
			annotated.StampDiagramIDs(threats)

			report := threatmodel.Report{
				ModelName: name,
				Graph:     annotated,
				Threats:   threats,
			}

			file, err := os.Create(output)
			if err != nil {
				return err
			}
			defer file.Close()

			switch format {
			case "csv":
				return report.WriteCSV(file)
			case "xlsx":
				return report.WriteXLSX(file)
			default:
				return errors.Errorf("unknown export format %s, expected csv or xlsx", format)
			}
		},
	}
	export.Flags().StringP("format", "f", "xlsx", "export format: xlsx or csv")
	export.Flags().StringP("output", "o", "", "output file path")
	return export
}
