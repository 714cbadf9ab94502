package threatmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testCatalog is a small injected template set so assertions do not depend on
// the embedded default catalog.
func testCatalog() Catalog {
	return Catalog{
		Version: "test",
		Templates: []ThreatTemplate{
			{
				ID:          "T-DB-LOW",
				Category:    Repudiation,
				AppliesTo:   []string{"database"},
				Description: "no change history",
				Likelihood:  LikelihoodLow,
				Impact:      ImpactMedium,
			},
			{
				ID:          "T-ALL",
				Category:    Repudiation,
				AppliesTo:   []string{"all"},
				Description: "no audit trail",
				Likelihood:  LikelihoodMedium,
				Impact:      ImpactMedium,
			},
			{
				ID:          "T-API",
				Category:    ElevationOfPrivilege,
				AppliesTo:   []string{"api"},
				Description: "missing function-level authorization",
				Likelihood:  LikelihoodMedium,
				Impact:      ImpactCritical,
			},
		},
	}
}

func mustGraph(t *testing.T, components []Component, flows []DataFlow) *Graph {
	t.Helper()
	graph, err := NewGraph(components, flows, nil)
	require.NoError(t, err)
	return graph
}

func TestStrideEngineComponentMatching(t *testing.T) {
	engine := NewStrideEngine(testCatalog())

	t.Run("critical database escalates low likelihood and carries the 1.5x multiplier", func(t *testing.T) {
		graph := mustGraph(t, []Component{{ID: "c1", Name: "Orders DB", Type: "database", Criticality: CriticalityCritical}}, nil)

		threats := engine.Analyze(graph)

		require.Len(t, threats, 2) // T-DB-LOW and T-ALL
		escalated := threats[0]
		assert.Equal(t, Repudiation, escalated.Category)
		assert.Equal(t, LikelihoodMedium, escalated.LikelihoodPre)
		// medium (3) * medium impact (2) * 1.5 critical multiplier
		assert.Equal(t, 9.0, escalated.RiskScore)
		assert.Equal(t, RiskHigh, escalated.RiskLevel)
	})

	t.Run("non-critical component keeps the template likelihood and gets no multiplier", func(t *testing.T) {
		graph := mustGraph(t, []Component{{ID: "c1", Name: "Orders DB", Type: "database", Criticality: CriticalityMedium}}, nil)

		threats := engine.Analyze(graph)

		require.Len(t, threats, 2)
		assert.Equal(t, LikelihoodLow, threats[0].LikelihoodPre)
		assert.Equal(t, 4.0, threats[0].RiskScore) // low (2) * medium (2)
	})

	t.Run("type matching is normalized and substring based", func(t *testing.T) {
		graph := mustGraph(t, []Component{{ID: "c1", Name: "Gateway", Type: "API_Gateway", Criticality: CriticalityLow}}, nil)

		threats := engine.Analyze(graph)

		categories := map[StrideCategory]int{}
		for _, threat := range threats {
			categories[threat.Category]++
		}
		// "api" matches the normalized "apigateway", "all" matches anyway
		assert.Equal(t, 1, categories[ElevationOfPrivilege])
		assert.Equal(t, 1, categories[Repudiation])
	})

	t.Run("unknown component type only matches wildcard templates", func(t *testing.T) {
		graph := mustGraph(t, []Component{{ID: "c1", Name: "Mystery", Type: "blockchain", Criticality: CriticalityLow}}, nil)

		threats := engine.Analyze(graph)

		require.Len(t, threats, 1)
		assert.Equal(t, Repudiation, threats[0].Category)
	})

	t.Run("multiple templates matching the same component are all kept", func(t *testing.T) {
		// two repudiation templates both match a database - no deduplication,
		// the volume is the intended behavior
		graph := mustGraph(t, []Component{{ID: "c1", Name: "DB", Type: "database", Criticality: CriticalityLow}}, nil)

		threats := engine.Analyze(graph)

		repudiation := 0
		for _, threat := range threats {
			if threat.Category == Repudiation {
				repudiation++
			}
		}
		assert.Equal(t, 2, repudiation)
	})

	t.Run("output order is deterministic across runs", func(t *testing.T) {
		components := []Component{
			{ID: "c1", Name: "DB", Type: "database", Criticality: CriticalityLow},
			{ID: "c2", Name: "API", Type: "api", Criticality: CriticalityLow},
		}
		flows := []DataFlow{{ID: "f1", SourceID: "c2", TargetID: "c1", Label: "read", Encrypted: false, Authenticated: true}}

		first := engine.Analyze(mustGraph(t, components, flows))
		second := engine.Analyze(mustGraph(t, components, flows))

		require.Equal(t, len(first), len(second))
		for i := range first {
			assert.Equal(t, first[i].SubjectID, second[i].SubjectID)
			assert.Equal(t, first[i].Category, second[i].Category)
		}
		// components in input order, then flows
		assert.Equal(t, "c1", first[0].SubjectID)
		assert.Equal(t, "f1", first[len(first)-1].SubjectID)
	})
}

func TestStrideEngineStructuralFlowThreats(t *testing.T) {
	engine := NewStrideEngine(Catalog{Version: "empty"})

	components := []Component{
		{ID: "c1", Name: "API", Type: "unmatched", Criticality: CriticalityLow},
		{ID: "c2", Name: "DB", Type: "unmatched", Criticality: CriticalityLow},
	}

	t.Run("unencrypted but authenticated flow produces exactly one information disclosure threat", func(t *testing.T) {
		flows := []DataFlow{{ID: "f1", SourceID: "c1", TargetID: "c2", Label: "query", Encrypted: false, Authenticated: true}}

		threats := engine.Analyze(mustGraph(t, components, flows))

		require.Len(t, threats, 1)
		assert.Equal(t, InformationDisclosure, threats[0].Category)
		assert.Equal(t, 16.0, threats[0].RiskScore)
		assert.Equal(t, RiskCritical, threats[0].RiskLevel)
	})

	t.Run("unauthenticated flow produces a spoofing threat with score 12", func(t *testing.T) {
		flows := []DataFlow{{ID: "f1", SourceID: "c1", TargetID: "c2", Label: "query", Encrypted: true, Authenticated: false}}

		threats := engine.Analyze(mustGraph(t, components, flows))

		require.Len(t, threats, 1)
		assert.Equal(t, Spoofing, threats[0].Category)
		assert.Equal(t, 12.0, threats[0].RiskScore)
		assert.Equal(t, RiskHigh, threats[0].RiskLevel)
	})

	t.Run("a flow lacking both protections produces both threats", func(t *testing.T) {
		flows := []DataFlow{{ID: "f1", SourceID: "c1", TargetID: "c2", Label: "query"}}

		threats := engine.Analyze(mustGraph(t, components, flows))

		require.Len(t, threats, 2)
		assert.Equal(t, InformationDisclosure, threats[0].Category)
		assert.Equal(t, Spoofing, threats[1].Category)
	})

	t.Run("structural threats exist independent of the catalog contents", func(t *testing.T) {
		// empty catalog, still a threat per flow defect
		flows := []DataFlow{{ID: "f1", SourceID: "c1", TargetID: "c2", Label: "query", Encrypted: false, Authenticated: true}}

		threats := engine.Analyze(mustGraph(t, components, flows))

		assert.NotEmpty(t, threats)
	})
}

func TestAnalyzedThreatsCarryGapRecommendation(t *testing.T) {
	t.Run("template threats recommend the template mitigations", func(t *testing.T) {
		catalog := Catalog{
			Version: "test",
			Templates: []ThreatTemplate{{
				ID:          "T-API-AUTHZ",
				Category:    ElevationOfPrivilege,
				AppliesTo:   []string{"api"},
				Description: "missing function-level authorization",
				Likelihood:  LikelihoodMedium,
				Impact:      ImpactHigh,
				Mitigations: []string{"Enforce authorization per endpoint", "Deny by default"},
			}},
		}
		engine := NewStrideEngine(catalog)
		graph := mustGraph(t, []Component{{ID: "c1", Name: "API", Type: "api", Criticality: CriticalityLow}}, nil)

		threats := engine.Analyze(graph)

		require.Len(t, threats, 1)
		assert.Equal(t, "Enforce authorization per endpoint; Deny by default", threats[0].GapRecommendation)
	})

	t.Run("structural flow threats recommend their mitigations too", func(t *testing.T) {
		engine := NewStrideEngine(Catalog{Version: "empty"})
		components := []Component{
			{ID: "c1", Name: "API", Type: "unmatched"},
			{ID: "c2", Name: "DB", Type: "unmatched"},
		}
		flows := []DataFlow{{ID: "f1", SourceID: "c1", TargetID: "c2", Label: "query"}}

		threats := engine.Analyze(mustGraph(t, components, flows))

		require.Len(t, threats, 2)
		for _, threat := range threats {
			assert.NotEmpty(t, threat.GapRecommendation)
			assert.Equal(t, gapRecommendation(threat.Mitigations), threat.GapRecommendation)
		}
	})
}
