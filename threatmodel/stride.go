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
	"fmt"
	"strings"
)

// Fixed scores of the structural flow threats. These are facts about the
// flow itself, not catalog lookups, and exist independent of any template set.
const (
	unencryptedFlowScore     = 16
	unauthenticatedFlowScore = 12
)

// StrideEngine matches an injected threat-template catalog against the
// components and data flows of a graph.
type StrideEngine struct {
	catalog Catalog
}

func NewStrideEngine(catalog Catalog) *StrideEngine {
	return &StrideEngine{catalog: catalog}
}

// NormalizeComponentType lowercases a component type and strips everything
// that is not a letter or digit, so "External_Entity" and "external entity"
// select the same templates.
func NormalizeComponentType(componentType string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(componentType) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (e *StrideEngine) templateApplies(template ThreatTemplate, normalizedType string) bool {
	for _, selector := range template.AppliesTo {
		if selector == "all" {
			return true
		}
		if selector != "" && strings.Contains(normalizedType, NormalizeComponentType(selector)) {
			return true
		}
	}
	return false
}

// Analyze enumerates threats for every component and every data flow of the
// graph. The output order is deterministic: components in input order with
// their matched templates in catalog order, then the data flows in input
// order. Multiple templates matching the same component and category all
// produce their own record - the volume is intentional, reviewers triage in
// the tabular export.
func (e *StrideEngine) Analyze(graph *Graph) []AnalyzedThreat {
	threats := make([]AnalyzedThreat, 0, len(graph.Components)+2*len(graph.Flows))

	for _, component := range graph.Components {
		normalizedType := NormalizeComponentType(component.Type)
		for _, template := range e.catalog.Templates {
			if !e.templateApplies(template, normalizedType) {
				continue
			}
			threats = append(threats, e.contextualize(component, template))
		}
	}

	for _, flow := range graph.Flows {
		threats = append(threats, structuralFlowThreats(graph, flow)...)
	}

	for i := range threats {
		ScoreStages(&threats[i])
	}

	return threats
}

// contextualize turns a matched template into a threat for the concrete
// component. Critical assets raise a low template likelihood to medium and
// carry a 1.5x score multiplier.
func (e *StrideEngine) contextualize(component Component, template ThreatTemplate) AnalyzedThreat {
	likelihood := template.Likelihood
	if component.Criticality == CriticalityCritical && likelihood == LikelihoodLow {
		likelihood = LikelihoodMedium
	}

	score := LikelihoodScore(likelihood) * ImpactScore(template.Impact)
	if component.Criticality == CriticalityCritical {
		score *= criticalAssetMultiplier
	}

	return AnalyzedThreat{
		SubjectID:   component.ID,
		SubjectName: component.Name,
		Category:    template.Category,
		Description: fmt.Sprintf("%s: %s", component.Name, template.Description),

		Vulnerability: template.Vulnerability,
		AttackVector:  template.AttackVector,
		ThreatActor:   template.ThreatActor,
		Skill:         template.Skill,
		Complexity:    template.Complexity,

		LikelihoodPre: likelihood,
		Impact:        UniformImpact(template.Impact),

		RiskScore: score,
		RiskLevel: LevelFromScore(score),

		GapRecommendation: gapRecommendation(template.Mitigations),

		Mitigations:      template.Mitigations,
		CWEIDs:           template.CWEIDs,
		AttackTechniques: template.AttackTechniques,

		Status: StatusIdentified,
	}
}

// gapRecommendation fills the recommendation column of the threat table.
// At synthesis time no controls exist yet, so it is the mitigation list.
func gapRecommendation(mitigations []string) string {
	return strings.Join(mitigations, "; ")
}

// structuralFlowThreats emits the catalog-independent threats a data flow
// carries by construction: an unencrypted flow discloses its payload, an
// unauthenticated flow allows endpoint spoofing.
func structuralFlowThreats(graph *Graph, flow DataFlow) []AnalyzedThreat {
	source, _ := graph.Component(flow.SourceID)
	target, _ := graph.Component(flow.TargetID)
	flowName := fmt.Sprintf("%s -> %s", source.Name, target.Name)

	var threats []AnalyzedThreat

	if !flow.Encrypted {
		mitigations := []string{"Terminate the flow over TLS", "Pin or verify server certificates"}
		threats = append(threats, AnalyzedThreat{
			SubjectID:         flow.ID,
			SubjectName:       flowName,
			Category:          InformationDisclosure,
			Description:       fmt.Sprintf("Data flow %q is not encrypted in transit", flow.Label),
			Vulnerability:     "Plaintext transport",
			AttackVector:      "Passive interception on the network path",
			ThreatActor:       "external attacker",
			Skill:             "low",
			Complexity:        "low",
			LikelihoodPre:     LikelihoodHigh,
			Impact:            ImpactCIA{Confidentiality: ImpactCritical, Integrity: ImpactMedium, Availability: ImpactLow},
			RiskScore:         unencryptedFlowScore,
			RiskLevel:         LevelFromScore(unencryptedFlowScore),
			Mitigations:       mitigations,
			GapRecommendation: gapRecommendation(mitigations),
			CWEIDs:            []string{"CWE-319"},
			Status:            StatusIdentified,
		})
	}

	if !flow.Authenticated {
		mitigations := []string{"Authenticate both endpoints of the flow"}
		threats = append(threats, AnalyzedThreat{
			SubjectID:         flow.ID,
			SubjectName:       flowName,
			Category:          Spoofing,
			Description:       fmt.Sprintf("Data flow %q is not authenticated", flow.Label),
			Vulnerability:     "Unauthenticated channel",
			AttackVector:      "Connecting to the target while claiming to be the source",
			ThreatActor:       "external attacker",
			Skill:             "medium",
			Complexity:        "medium",
			LikelihoodPre:     LikelihoodMedium,
			Impact:            ImpactCIA{Confidentiality: ImpactCritical, Integrity: ImpactCritical, Availability: ImpactLow},
			RiskScore:         unauthenticatedFlowScore,
			RiskLevel:         LevelFromScore(unauthenticatedFlowScore),
			Mitigations:       mitigations,
			GapRecommendation: gapRecommendation(mitigations),
			CWEIDs:            []string{"CWE-306"},
			Status:            StatusIdentified,
		})
	}

	return threats
}
