package models

import (
	"strings"

	"github.com/google/uuid"
	"github.com/l3montree-dev/threatguard/threatmodel"
)

const listSeparator = ";"

func (m ComponentRow) ToComponent() threatmodel.Component {
	return threatmodel.Component{
		ID:                 m.RefID,
		Name:               m.Name,
		Type:               m.Type,
		Technology:         m.Technology,
		Criticality:        m.Criticality,
		DataClassification: m.DataClassification,
		TrustBoundary:      m.TrustBoundary,
	}
}

func (m DataFlowRow) ToDataFlow() threatmodel.DataFlow {
	return threatmodel.DataFlow{
		ID:                   m.RefID,
		SourceID:             m.SourceRefID,
		TargetID:             m.TargetRefID,
		Label:                m.Label,
		Protocol:             m.Protocol,
		DataType:             m.DataType,
		Encrypted:            m.Encrypted,
		Authenticated:        m.Authenticated,
		CrossesTrustBoundary: m.CrossesTrustBoundary,
	}
}

func (m TrustBoundaryRow) ToTrustBoundary() threatmodel.TrustBoundary {
	var members []string
	if m.Members != "" {
		members = strings.Split(m.Members, ",")
	}
	return threatmodel.TrustBoundary{
		Name:               m.Name,
		MemberComponentIDs: members,
	}
}

func ThreatRowFromAnalyzed(threatModelID uuid.UUID, t threatmodel.AnalyzedThreat) ThreatRow {
	return ThreatRow{
		ThreatModelID: threatModelID,

		DiagramID:   t.DiagramID,
		SubjectID:   t.SubjectID,
		SubjectName: t.SubjectName,
		Category:    t.Category,
		Description: t.Description,

		Vulnerability: t.Vulnerability,
		AttackVector:  t.AttackVector,
		ThreatActor:   t.ThreatActor,
		Skill:         t.Skill,
		Complexity:    t.Complexity,

		LikelihoodPre:     t.LikelihoodPre,
		ImpactC:           t.Impact.Confidentiality,
		ImpactI:           t.Impact.Integrity,
		ImpactA:           t.Impact.Availability,
		ExistingControls:  t.ExistingControls,
		RiskAfterExisting: t.RiskAfterExisting,
		GapRecommendation: t.GapRecommendation,
		FinalRisk:         t.FinalRisk,

		RiskScore: t.RiskScore,
		RiskLevel: t.RiskLevel,

		Mitigations:      strings.Join(t.Mitigations, listSeparator),
		CWEIDs:           strings.Join(t.CWEIDs, listSeparator),
		AttackTechniques: strings.Join(t.AttackTechniques, listSeparator),

		Comments:  t.Comments,
		Reviewer:  t.Reviewer,
		TicketRef: t.TicketRef,
		Status:    t.Status,
	}
}

func (m ThreatRow) ToAnalyzed() threatmodel.AnalyzedThreat {
	return threatmodel.AnalyzedThreat{
		DiagramID:   m.DiagramID,
		SubjectID:   m.SubjectID,
		SubjectName: m.SubjectName,
		Category:    m.Category,
		Description: m.Description,

		Vulnerability: m.Vulnerability,
		AttackVector:  m.AttackVector,
		ThreatActor:   m.ThreatActor,
		Skill:         m.Skill,
		Complexity:    m.Complexity,

		LikelihoodPre: m.LikelihoodPre,
		Impact: threatmodel.ImpactCIA{
			Confidentiality: m.ImpactC,
			Integrity:       m.ImpactI,
			Availability:    m.ImpactA,
		},
		ExistingControls:  m.ExistingControls,
		RiskAfterExisting: m.RiskAfterExisting,
		GapRecommendation: m.GapRecommendation,
		FinalRisk:         m.FinalRisk,

		RiskScore: m.RiskScore,
		RiskLevel: m.RiskLevel,

		Mitigations:      splitList(m.Mitigations),
		CWEIDs:           splitList(m.CWEIDs),
		AttackTechniques: splitList(m.AttackTechniques),

		Comments:  m.Comments,
		Reviewer:  m.Reviewer,
		TicketRef: m.TicketRef,
		Status:    m.Status,
	}
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, listSeparator)
}
