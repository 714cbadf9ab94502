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

package shared

import (
	"github.com/google/uuid"
	"github.com/l3montree-dev/threatguard/database/models"
	"github.com/l3montree-dev/threatguard/threatmodel"
	"gorm.io/gorm"
)

type ThreatModelRepository interface {
	All() ([]models.ThreatModel, error)
	Read(id uuid.UUID) (models.ThreatModel, error)
	ReadWithRelations(id uuid.UUID) (models.ThreatModel, error)
	Create(tx *gorm.DB, model *models.ThreatModel) error
	Save(tx *gorm.DB, model *models.ThreatModel) error
	Delete(tx *gorm.DB, id uuid.UUID) error
	ReplaceThreats(threatModelID uuid.UUID, threats []models.ThreatRow) error
	Transaction(func(tx *gorm.DB) error) error
	GetDB(tx *gorm.DB) *gorm.DB
}

// AnalysisResult bundles everything one analysis run produces.
type AnalysisResult struct {
	Threats []threatmodel.AnalyzedThreat `json:"threats"`
	Summary AnalysisSummary              `json:"summary"`
}

// AnalysisSummary aggregates the threat table for dashboards and the CLI.
type AnalysisSummary struct {
	TotalThreats int                                `json:"totalThreats"`
	ByCategory   map[threatmodel.StrideCategory]int `json:"byCategory"`
	ByRiskLevel  map[threatmodel.RiskLevel]int      `json:"byRiskLevel"`
	HighestScore float64                            `json:"highestScore"`
}

type ThreatModelService interface {
	Analyze(model models.ThreatModel) (AnalysisResult, error)
	RenderDiagram(model models.ThreatModel, format threatmodel.Format) (string, error)
	ExportCSV(model models.ThreatModel) ([]byte, error)
	ExportXLSX(model models.ThreatModel) ([]byte, error)
}
