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

package threatmodel

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// Report bundles everything the tabular exporter needs: the annotated graph
// and the analyzed threats referencing it. Both renderers and this exporter
// consume the same graph, so the Diagram ID column always matches the ids in
// the rendered diagrams.
type Report struct {
	ModelName string
	Graph     *AnnotatedGraph
	Threats   []AnalyzedThreat
}

// threatTableHeader is the fixed 21-column enterprise threat table.
var threatTableHeader = []string{
	"Diagram ID",
	"Component",
	"STRIDE Category",
	"Threat Description",
	"Vulnerability",
	"Attack Vector",
	"Threat Actor",
	"Skill Level",
	"Complexity",
	"Likelihood (Pre-Control)",
	"Impact (C/I/A)",
	"Existing Controls",
	"Risk (After Existing Controls)",
	"Gap / Recommendation",
	"Final Risk",
	"Comments",
	"Reviewer",
	"Ticket Reference",
	"CWE References",
	"ATT&CK Techniques",
	"Status",
}

func threatTableRow(t AnalyzedThreat) []string {
	return []string{
		t.DiagramID,
		t.SubjectName,
		string(t.Category),
		t.Description,
		t.Vulnerability,
		t.AttackVector,
		t.ThreatActor,
		t.Skill,
		t.Complexity,
		string(t.LikelihoodPre),
		t.Impact.String(),
		t.ExistingControls,
		string(t.RiskAfterExisting),
		t.GapRecommendation,
		string(t.FinalRisk),
		t.Comments,
		t.Reviewer,
		t.TicketRef,
		strings.Join(t.CWEIDs, ", "),
		strings.Join(t.AttackTechniques, ", "),
		string(t.Status),
	}
}

// csvHeader is the reduced column subset of the CSV export.
var csvHeader = []string{
	"Diagram ID",
	"Component",
	"STRIDE Category",
	"Threat Description",
	"Vulnerability",
	"Likelihood (Pre-Control)",
	"Impact (C/I/A)",
	"Final Risk",
	"Status",
}

// WriteCSV writes the reduced threat table as RFC 4180 CSV. Quoting of
// embedded commas, quotes and newlines is handled by encoding/csv.
func (r Report) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return errors.Wrap(err, "could not write csv header")
	}
	for _, threat := range r.Threats {
		row := []string{
			threat.DiagramID,
			threat.SubjectName,
			string(threat.Category),
			threat.Description,
			threat.Vulnerability,
			string(threat.LikelihoodPre),
			threat.Impact.String(),
			string(threat.FinalRisk),
			string(threat.Status),
		}
		if err := writer.Write(row); err != nil {
			return errors.Wrap(err, "could not write csv row")
		}
	}

	writer.Flush()
	return errors.Wrap(writer.Error(), "could not flush csv")
}

// coverageCounts builds the component x STRIDE-category matrix. Keyed by the
// component's diagram id.
func (r Report) coverageCounts() map[string]map[StrideCategory]int {
	counts := map[string]map[StrideCategory]int{}
	for _, component := range r.Graph.Components {
		counts[component.DiagramID] = map[StrideCategory]int{}
	}
	for _, threat := range r.Threats {
		if row, ok := counts[threat.DiagramID]; ok {
			row[threat.Category]++
		}
	}
	return counts
}
