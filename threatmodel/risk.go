package threatmodel

// RiskLevel is the categorical risk classification derived from a numeric
// likelihood x impact score.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// criticalAssetMultiplier is applied to every template-derived score of a
// component with critical asset criticality.
const criticalAssetMultiplier = 1.5

var likelihoodScores = map[Likelihood]float64{
	LikelihoodVeryLow:  1,
	LikelihoodLow:      2,
	LikelihoodMedium:   3,
	LikelihoodHigh:     4,
	LikelihoodVeryHigh: 5,
}

var impactScores = map[Impact]float64{
	ImpactLow:      1,
	ImpactMedium:   2,
	ImpactHigh:     3,
	ImpactCritical: 4,
}

// LikelihoodScore maps the ordinal likelihood onto 1..5. Unknown values map
// to the middle of the scale rather than failing the pipeline.
func LikelihoodScore(l Likelihood) float64 {
	if s, ok := likelihoodScores[l]; ok {
		return s
	}
	return likelihoodScores[LikelihoodMedium]
}

// ImpactScore maps the ordinal impact onto 1..4.
func ImpactScore(i Impact) float64 {
	if s, ok := impactScores[i]; ok {
		return s
	}
	return impactScores[ImpactMedium]
}

// MaxImpactScore takes the maximum across the CIA triple.
func MaxImpactScore(c ImpactCIA) float64 {
	score := ImpactScore(c.Confidentiality)
	if s := ImpactScore(c.Integrity); s > score {
		score = s
	}
	if s := ImpactScore(c.Availability); s > score {
		score = s
	}
	return score
}

// LevelFromScore is the single canonical score-to-category mapping. Both the
// inline STRIDE analysis and the three-stage tabular scoring go through it,
// so a raw score always classifies the same everywhere.
func LevelFromScore(score float64) RiskLevel {
	switch {
	case score >= 16:
		return RiskCritical
	case score >= 9:
		return RiskHigh
	case score >= 4:
		return RiskMedium
	default:
		return RiskLow
	}
}

// StageScore is the likelihood x max-CIA-impact product used by the tabular
// report stages. Monotonic in both inputs.
func StageScore(l Likelihood, impact ImpactCIA) float64 {
	return LikelihoodScore(l) * MaxImpactScore(impact)
}

// stepDownLikelihood lowers the likelihood by one level, used when existing
// controls are documented for a threat. Floors at very_low.
func stepDownLikelihood(l Likelihood) Likelihood {
	switch l {
	case LikelihoodVeryHigh:
		return LikelihoodHigh
	case LikelihoodHigh:
		return LikelihoodMedium
	case LikelihoodMedium:
		return LikelihoodLow
	default:
		return LikelihoodVeryLow
	}
}

// ScoreStages computes the pre-control, after-existing-controls and final
// risk levels for a threat. Existing controls lower the likelihood one level
// before re-classification; without controls all three stages agree.
func ScoreStages(t *AnalyzedThreat) {
	pre := StageScore(t.LikelihoodPre, t.Impact)

	after := pre
	if t.ExistingControls != "" {
		after = StageScore(stepDownLikelihood(t.LikelihoodPre), t.Impact)
	}

	t.RiskAfterExisting = LevelFromScore(after)
	t.FinalRisk = t.RiskAfterExisting
	if t.Status == StatusMitigated {
		t.FinalRisk = RiskLow
	}
}
