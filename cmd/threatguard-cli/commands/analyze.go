// Copyright (C) 2025 l3montree GmbH
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package commands

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/l3montree-dev/threatguard/services"
	"github.com/l3montree-dev/threatguard/threatmodel"
	"github.com/spf13/cobra"
)

func NewAnalyzeCommand() *cobra.Command {
	analyze := &cobra.Command{
		Use:   "analyze <model.yaml>",
		Short: "Run the STRIDE analysis on a model file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, graph, err := readModelFile(args[0])
			if err != nil {
				return err
			}

			engine := threatmodel.NewStrideEngine(threatmodel.DefaultCatalog())
			threats := engine.Analyze(graph)
			threatmodel.Annotate(graph).StampDiagramIDs(threats)

			asJSON, err := cmd.Flags().GetBool("json")
			if err != nil {
				return err
			}
			if asJSON {
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(threats)
			}

			printThreatTable(name, threats)
			printSummary(threats)
			return nil
		},
	}
	analyze.Flags().Bool("json", false, "print the full threat table as json")
	return analyze
}

func printThreatTable(name string, threats []threatmodel.AnalyzedThreat) {
	sorted := make([]threatmodel.AnalyzedThreat, len(threats))
	copy(sorted, threats)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].RiskScore > sorted[j].RiskScore
	})

	tw := table.NewWriter()
	tw.SetAllowedRowLength(130)
	tw.AppendHeader(table.Row{"Diagram ID", "Component", "Category", "Threat", "Score", "Risk"})
	for _, t := range sorted {
		tw.AppendRow(table.Row{
			t.DiagramID,
			t.SubjectName,
			t.Category,
			text.WrapText(t.Description, 50),
			fmt.Sprintf("%.1f", t.RiskScore),
			colorizeRisk(t.RiskLevel),
		})
	}

	fmt.Printf("Threats for %s:\n", name)
	fmt.Println(tw.Render())
}

func printSummary(threats []threatmodel.AnalyzedThreat) {
	summary := services.Summarize(threats)

	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"Risk", "Count"})
	for _, level := range []threatmodel.RiskLevel{
		threatmodel.RiskCritical,
		threatmodel.RiskHigh,
		threatmodel.RiskMedium,
		threatmodel.RiskLow,
	} {
		tw.AppendRow(table.Row{colorizeRisk(level), summary.ByRiskLevel[level]})
	}
	tw.AppendFooter(table.Row{"Total", summary.TotalThreats})

	fmt.Println(tw.Render())
}

func colorizeRisk(level threatmodel.RiskLevel) string {
	switch level {
	case threatmodel.RiskCritical:
		return text.BgRed.Sprint(string(level))
	case threatmodel.RiskHigh:
		return text.FgRed.Sprint(string(level))
	case threatmodel.RiskMedium:
		return text.FgYellow.Sprint(string(level))
	default:
		return text.FgGreen.Sprint(string(level))
	}
}
