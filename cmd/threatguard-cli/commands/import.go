package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/l3montree-dev/threatguard/normalize"
	"github.com/l3montree-dev/threatguard/threatmodel"
	"github.com/l3montree-dev/threatguard/utils"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewImportCommand converts infrastructure sources into the YAML model
// format, so imported architectures can be reviewed and edited before
// analysis.
func NewImportCommand() *cobra.Command {
	importCmd := &cobra.Command{
		Use:   "import <source file>",
		Short: "Convert a terraform or openapi file into a model file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output, err := cmd.Flags().GetString("output")
			if err != nil {
				return err
			}

			raw, err := os.ReadFile(args[0])
			if err != nil {
				return errors.Wrap(err, "could not read source file")
			}

			var parsed normalize.Model
			switch filepath.Ext(args[0]) {
			case ".tf":
				parsed, err = normalize.ParseTerraform(raw, filepath.Base(args[0]))
			case ".yaml", ".yml", ".json":
				parsed, err = normalize.ParseOpenAPI(raw)
			default:
				return errors.Errorf("unsupported source file %s, expected .tf or an openapi document", args[0])
			}
			if err != nil {
				return err
			}

			content, err := yaml.Marshal(toModelFile(parsed))
			if err != nil {
				return err
			}

			if output == "" {
				fmt.Fprint(cmd.OutOrStdout(), string(content))
				return nil
			}
			return os.WriteFile(output, content, 0644)
		},
	}
	importCmd.Flags().StringP("output", "o", "", "write the model file instead of printing it")
	return importCmd
}

func toModelFile(parsed normalize.Model) modelFile {
	return modelFile{
		Name: parsed.Name,
		Components: utils.Map(parsed.Components, func(c threatmodel.Component) fileComponent {
			return fileComponent{
				ID:                 c.ID,
				Name:               c.Name,
				Type:               c.Type,
				Technology:         c.Technology,
				Criticality:        string(c.Criticality),
				DataClassification: c.DataClassification,
				TrustBoundary:      c.TrustBoundary,
			}
		}),
		Flows: utils.Map(parsed.Flows, func(f threatmodel.DataFlow) fileFlow {
			return fileFlow{
				ID:                   f.ID,
				SourceID:             f.SourceID,
				TargetID:             f.TargetID,
				Label:                f.Label,
				Protocol:             f.Protocol,
				DataType:             f.DataType,
				Encrypted:            f.Encrypted,
				Authenticated:        f.Authenticated,
				CrossesTrustBoundary: f.CrossesTrustBoundary,
			}
		}),
		Boundaries: utils.Map(parsed.Boundaries, func(b threatmodel.TrustBoundary) fileTrustBoundary {
			return fileTrustBoundary{Name: b.Name, Members: b.MemberComponentIDs}
		}),
	}
}
