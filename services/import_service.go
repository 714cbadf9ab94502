package services

import (
	"strings"

	"github.com/l3montree-dev/threatguard/database/models"
	"github.com/l3montree-dev/threatguard/normalize"
	"github.com/l3montree-dev/threatguard/threatmodel"
	"github.com/l3montree-dev/threatguard/utils"
)

// ModelFromNormalized converts parser output into a persistable threat model.
func ModelFromNormalized(parsed normalize.Model) models.ThreatModel {
	return models.ThreatModel{
		Name: parsed.Name,
		Components: utils.Map(parsed.Components, func(c threatmodel.Component) models.ComponentRow {
			return models.ComponentRow{
				RefID:              c.ID,
				Name:               c.Name,
				Type:               c.Type,
				Technology:         c.Technology,
				Criticality:        c.Criticality,
				DataClassification: c.DataClassification,
				TrustBoundary:      c.TrustBoundary,
			}
		}),
		Flows: utils.Map(parsed.Flows, func(f threatmodel.DataFlow) models.DataFlowRow {
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
		Boundaries: utils.Map(parsed.Boundaries, func(b threatmodel.TrustBoundary) models.TrustBoundaryRow {
			return models.TrustBoundaryRow{
				Name:    b.Name,
				Members: strings.Join(b.MemberComponentIDs, ","),
			}
		}),
	}
}
