package dtos

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/l3montree-dev/threatguard/database/models"
	"github.com/l3montree-dev/threatguard/threatmodel"
	"github.com/l3montree-dev/threatguard/utils"
)

type ComponentDTO struct {
	ID                 string `json:"id" validate:"required"`
	Name               string `json:"name" validate:"required"`
	Type               string `json:"type" validate:"required"`
	Technology         string `json:"technology"`
	Criticality        string `json:"criticality" validate:"omitempty,oneof=low medium high critical"`
	DataClassification string `json:"dataClassification"`
	TrustBoundary      string `json:"trustBoundary"`
}

type DataFlowDTO struct {
	ID                   string `json:"id" validate:"required"`
	SourceID             string `json:"sourceId" validate:"required"`
	TargetID             string `json:"targetId" validate:"required"`
	Label                string `json:"label"`
	Protocol             string `json:"protocol"`
	DataType             string `json:"dataType"`
	Encrypted            bool   `json:"encrypted"`
	Authenticated        bool   `json:"authenticated"`
	CrossesTrustBoundary bool   `json:"crossesTrustBoundary"`
}

type TrustBoundaryDTO struct {
	Name    string   `json:"name" validate:"required"`
	Members []string `json:"members"`
}

type ThreatModelCreateRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`

	Components []ComponentDTO     `json:"components" validate:"required,min=1,dive"`
	Flows      []DataFlowDTO      `json:"flows" validate:"dive"`
	Boundaries []TrustBoundaryDTO `json:"boundaries" validate:"dive"`
}

func (req ThreatModelCreateRequest) ToModel() models.ThreatModel {
	return models.ThreatModel{
		Name:        req.Name,
		Description: req.Description,
		Components: utils.Map(req.Components, func(c ComponentDTO) models.ComponentRow {
			return models.ComponentRow{
				RefID:              c.ID,
				Name:               c.Name,
				Type:               c.Type,
				Technology:         c.Technology,
				Criticality:        threatmodel.Criticality(c.Criticality),
				DataClassification: c.DataClassification,
				TrustBoundary:      c.TrustBoundary,
			}
		}),
		Flows: utils.Map(req.Flows, func(f DataFlowDTO) models.DataFlowRow {
			return models.DataFlowRow{
				RefID:                f.ID,
				SourceRefID:          f.SourceID,
				TargetRefID:          f.TargetID,
				Label:                f.Label,
				Protocol:             f.Protocol,
				DataType:             f.DataType,
				Encrypted:            f.Encrypted,
				Authenticated:        f.Authenticated,
				CrossesTrustBoundary: f.CrossesTrustBoundary,
			}
		}),
		Boundaries: utils.Map(req.Boundaries, func(b TrustBoundaryDTO) models.TrustBoundaryRow {
			return models.TrustBoundaryRow{
				Name:    b.Name,
				Members: strings.Join(b.Members, ","),
			}
		}),
	}
}

type ThreatModelDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	ComponentCount int `json:"componentCount"`
	FlowCount      int `json:"flowCount"`
	ThreatCount    int `json:"threatCount"`
}

func ThreatModelToDTO(model models.ThreatModel) ThreatModelDTO {
	return ThreatModelDTO{
		ID:          model.ID,
		Name:        model.Name,
		Description: model.Description,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,

		ComponentCount: len(model.Components),
		FlowCount:      len(model.Flows),
		ThreatCount:    len(model.Threats),
	}
}

type ThreatModelDetailDTO struct {
	ThreatModelDTO
	Components []ComponentDTO               `json:"components"`
	Flows      []DataFlowDTO                `json:"flows"`
	Boundaries []TrustBoundaryDTO           `json:"boundaries"`
	Threats    []threatmodel.AnalyzedThreat `json:"threats"`
}

func ThreatModelToDetailDTO(model models.ThreatModel) ThreatModelDetailDTO {
	return ThreatModelDetailDTO{
		ThreatModelDTO: ThreatModelToDTO(model),
		Components: utils.Map(model.Components, func(c models.ComponentRow) ComponentDTO {
			return ComponentDTO{
				ID:                 c.RefID,
				Name:               c.Name,
				Type:               c.Type,
				Technology:         c.Technology,
				Criticality:        string(c.Criticality),
				DataClassification: c.DataClassification,
				TrustBoundary:      c.TrustBoundary,
			}
		}),
		Flows: utils.Map(model.Flows, func(f models.DataFlowRow) DataFlowDTO {
			return DataFlowDTO{
				ID:                   f.RefID,
				SourceID:             f.SourceRefID,
				TargetID:             f.TargetRefID,
				Label:                f.Label,
				Protocol:             f.Protocol,
				DataType:             f.DataType,
				Encrypted:            f.Encrypted,
				Authenticated:        f.Authenticated,
				CrossesTrustBoundary: f.CrossesTrustBoundary,
			}
		}),
		Boundaries: utils.Map(model.Boundaries, func(b models.TrustBoundaryRow) TrustBoundaryDTO {
			boundary := b.ToTrustBoundary()
			return TrustBoundaryDTO{
				Name:    boundary.Name,
				Members: boundary.MemberComponentIDs,
			}
		}),
		Threats: utils.Map(model.Threats, func(t models.ThreatRow) threatmodel.AnalyzedThreat {
			return t.ToAnalyzed()
		}),
	}
}
