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

package services

import (
	"bytes"

	"github.com/l3montree-dev/threatguard/database/models"
	"github.com/l3montree-dev/threatguard/shared"
	"github.com/l3montree-dev/threatguard/threatmodel"
	"github.com/l3montree-dev/threatguard/utils"
	"github.com/pkg/errors"
)

type threatModelService struct {
	repository shared.ThreatModelRepository
	engine     *threatmodel.StrideEngine
}

func NewThreatModelService(repository shared.ThreatModelRepository) *threatModelService {
	return &threatModelService{
		repository: repository,
		engine:     threatmodel.NewStrideEngine(threatmodel.DefaultCatalog()),
	}
}

// buildGraph validates the stored rows as a graph. A ValidationError from
// dangling flow endpoints passes through untouched so callers can map it to
// a 422.
func buildGraph(model models.ThreatModel) (*threatmodel.Graph, error) {
	components := utils.Map(model.Components, func(c models.ComponentRow) threatmodel.Component {
		return c.ToComponent()
	})
	flows := utils.Map(model.Flows, func(f models.DataFlowRow) threatmodel.DataFlow {
		return f.ToDataFlow()
	})
	boundaries := utils.Map(model.Boundaries, func(b models.TrustBoundaryRow) threatmodel.TrustBoundary {
		return b.ToTrustBoundary()
	})

	return threatmodel.NewGraph(components, flows, boundaries)
}

// Analyze runs the full pipeline: graph validation, threat synthesis, diagram
// id stamping, persistence of the resulting threat table.
func (s *threatModelService) Analyze(model models.ThreatModel) (shared.AnalysisResult, error) {
	graph, err := buildGraph(model)
	if err != nil {
		return shared.AnalysisResult{}, err
	}

	threats := s.engine.Analyze(graph)
	annotated := threatmodel.Annotate(graph)
	annotated.StampDiagramIDs(threats)

	rows := utils.Map(threats, func(t threatmodel.AnalyzedThreat) models.ThreatRow {
		return models.ThreatRowFromAnalyzed(model.ID, t)
	})
	if err := s.repository.ReplaceThreats(model.ID, rows); err != nil {
		return shared.AnalysisResult{}, errors.Wrap(err, "could not persist analysis result")
	}

	return shared.AnalysisResult{
		Threats: threats,
		Summary: Summarize(threats),
	}, nil
}

func (s *threatModelService) RenderDiagram(model models.ThreatModel, format threatmodel.Format) (string, error) {
	renderer, err := threatmodel.NewRenderer(format)
	if err != nil {
		return "", err
	}

	graph, err := buildGraph(model)
	if err != nil {
		return "", err
	}

	return renderer.Render(threatmodel.Annotate(graph))
}

func (s *threatModelService) ExportCSV(model models.ThreatModel) ([]byte, error) {
	report, err := s.buildReport(model)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := report.WriteCSV(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *threatModelService) ExportXLSX(model models.ThreatModel) ([]byte, error) {
	report, err := s.buildReport(model)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := report.WriteXLSX(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// buildReport re-annotates the graph and re-stamps the stored threats, so the
// exported table and the diagrams share the same ids even when the export
// happens long after the analysis.
func (s *threatModelService) buildReport(model models.ThreatModel) (threatmodel.Report, error) {
	graph, err := buildGraph(model)
	if err != nil {
		return threatmodel.Report{}, err
	}

	annotated := threatmodel.Annotate(graph)
	threats := utils.Map(model.Threats, func(t models.ThreatRow) threatmodel.AnalyzedThreat {
		return t.ToAnalyzed()
	})
	annotated.StampDiagramIDs(threats)

	return threatmodel.Report{
		ModelName: model.Name,
		Graph:     annotated,
		Threats:   threats,
	}, nil
}

// Summarize aggregates a threat list into the dashboard summary.
func Summarize(threats []threatmodel.AnalyzedThreat) shared.AnalysisSummary {
	summary := shared.AnalysisSummary{
		TotalThreats: len(threats),
		ByCategory:   map[threatmodel.StrideCategory]int{},
		ByRiskLevel:  map[threatmodel.RiskLevel]int{},
	}
	for _, t := range threats {
		summary.ByCategory[t.Category]++
		summary.ByRiskLevel[t.RiskLevel]++
		if t.RiskScore > summary.HighestScore {
			summary.HighestScore = t.RiskScore
		}
	}
	return summary
}
