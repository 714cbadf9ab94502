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

package models

import (
	"github.com/google/uuid"
	"github.com/l3montree-dev/threatguard/threatmodel"
)

// ThreatModel is the persistence root. Components, flows and boundaries are
// the user supplied architecture, threats are the latest analysis result.
type ThreatModel struct {
	Model
	Name        string `json:"name" gorm:"not null;type:text;"`
	Description string `json:"description" gorm:"type:text;"`

	Components []ComponentRow     `json:"components" gorm:"foreignKey:ThreatModelID;constraint:OnDelete:CASCADE;"`
	Flows      []DataFlowRow      `json:"flows" gorm:"foreignKey:ThreatModelID;constraint:OnDelete:CASCADE;"`
	Boundaries []TrustBoundaryRow `json:"boundaries" gorm:"foreignKey:ThreatModelID;constraint:OnDelete:CASCADE;"`
	Threats    []ThreatRow        `json:"threats" gorm:"foreignKey:ThreatModelID;constraint:OnDelete:CASCADE;"`
}

func (m ThreatModel) TableName() string {
	return "threat_models"
}

type ComponentRow struct {
	Model
	ThreatModelID uuid.UUID `json:"threatModelId" gorm:"uniqueIndex:idx_component_model_ref;not null;type:uuid;"`
	// RefID is the model-local identifier flows reference as source and target.
	RefID string `json:"refId" gorm:"uniqueIndex:idx_component_model_ref;not null;type:text;"`

	Name               string                  `json:"name" gorm:"not null;type:text;"`
	Type               string                  `json:"type" gorm:"not null;type:text;"`
	Technology         string                  `json:"technology" gorm:"type:text;"`
	Criticality        threatmodel.Criticality `json:"criticality" gorm:"type:text;"`
	DataClassification string                  `json:"dataClassification" gorm:"type:text;"`
	TrustBoundary      string                  `json:"trustBoundary" gorm:"type:text;"`
}

func (m ComponentRow) TableName() string {
	return "threat_model_components"
}

type DataFlowRow struct {
	Model
	ThreatModelID uuid.UUID `json:"threatModelId" gorm:"uniqueIndex:idx_flow_model_ref;not null;type:uuid;"`
	RefID         string    `json:"refId" gorm:"uniqueIndex:idx_flow_model_ref;not null;type:text;"`

	SourceRefID          string `json:"sourceRefId" gorm:"not null;type:text;"`
	TargetRefID          string `json:"targetRefId" gorm:"not null;type:text;"`
	Label                string `json:"label" gorm:"type:text;"`
	Protocol             string `json:"protocol" gorm:"type:text;"`
	DataType             string `json:"dataType" gorm:"type:text;"`
	Encrypted            bool   `json:"encrypted"`
	Authenticated        bool   `json:"authenticated"`
	CrossesTrustBoundary bool   `json:"crossesTrustBoundary"`
}

func (m DataFlowRow) TableName() string {
	return "threat_model_flows"
}

type TrustBoundaryRow struct {
	Model
	ThreatModelID uuid.UUID `json:"threatModelId" gorm:"not null;type:uuid;"`

	Name string `json:"name" gorm:"not null;type:text;"`
	// Members holds component ref ids, comma separated.
	Members string `json:"members" gorm:"type:text;"`
}

func (m TrustBoundaryRow) TableName() string {
	return "threat_model_boundaries"
}

// ThreatRow is one row of the 21 column threat table.
type ThreatRow struct {
	Model
	ThreatModelID uuid.UUID `json:"threatModelId" gorm:"not null;type:uuid;index;"`

	DiagramID   string                     `json:"diagramId" gorm:"type:text;"`
	SubjectID   string                     `json:"subjectId" gorm:"type:text;"`
	SubjectName string                     `json:"subjectName" gorm:"type:text;"`
	Category    threatmodel.StrideCategory `json:"category" gorm:"type:text;"`
	Description string                     `json:"description" gorm:"type:text;"`

	Vulnerability string `json:"vulnerability" gorm:"type:text;"`
	AttackVector  string `json:"attackVector" gorm:"type:text;"`
	ThreatActor   string `json:"threatActor" gorm:"type:text;"`
	Skill         string `json:"skill" gorm:"type:text;"`
	Complexity    string `json:"complexity" gorm:"type:text;"`

	LikelihoodPre     threatmodel.Likelihood `json:"likelihoodPre" gorm:"type:text;"`
	ImpactC           threatmodel.Impact     `json:"impactC" gorm:"type:text;"`
	ImpactI           threatmodel.Impact     `json:"impactI" gorm:"type:text;"`
	ImpactA           threatmodel.Impact     `json:"impactA" gorm:"type:text;"`
	ExistingControls  string                 `json:"existingControls" gorm:"type:text;"`
	RiskAfterExisting threatmodel.RiskLevel  `json:"riskAfterExisting" gorm:"type:text;"`
	GapRecommendation string                 `json:"gapRecommendation" gorm:"type:text;"`
	FinalRisk         threatmodel.RiskLevel  `json:"finalRisk" gorm:"type:text;"`

	RiskScore float64               `json:"riskScore"`
	RiskLevel threatmodel.RiskLevel `json:"riskLevel" gorm:"type:text;"`

	// semicolon separated lists
	Mitigations      string `json:"mitigations" gorm:"type:text;"`
	CWEIDs           string `json:"cweIds" gorm:"type:text;"`
	AttackTechniques string `json:"attackTechniques" gorm:"type:text;"`

	Comments  string                   `json:"comments" gorm:"type:text;"`
	Reviewer  string                   `json:"reviewer" gorm:"type:text;"`
	TicketRef string                   `json:"ticketRef" gorm:"type:text;"`
	Status    threatmodel.ThreatStatus `json:"status" gorm:"type:text;"`
}

func (m ThreatRow) TableName() string {
	return "threat_model_threats"
}
