package threatmodel

// StrideCategory is one of the six STRIDE threat categories.
type StrideCategory string

const (
	Spoofing              StrideCategory = "spoofing"
	Tampering             StrideCategory = "tampering"
	Repudiation           StrideCategory = "repudiation"
	InformationDisclosure StrideCategory = "information_disclosure"
	DenialOfService       StrideCategory = "denial_of_service"
	ElevationOfPrivilege  StrideCategory = "elevation_of_privilege"
)

// StrideCategories lists all six categories in canonical order. The coverage
// matrix and summary aggregates iterate this slice so column order is stable.
var StrideCategories = []StrideCategory{
	Spoofing,
	Tampering,
	Repudiation,
	InformationDisclosure,
	DenialOfService,
	ElevationOfPrivilege,
}

type Criticality string

const (
	CriticalityLow      Criticality = "low"
	CriticalityMedium   Criticality = "medium"
	CriticalityHigh     Criticality = "high"
	CriticalityCritical Criticality = "critical"
)

// Likelihood is a five-level ordinal scale. Threat templates only use the
// middle three levels, the tabular report uses all five.
type Likelihood string

const (
	LikelihoodVeryLow  Likelihood = "very_low"
	LikelihoodLow      Likelihood = "low"
	LikelihoodMedium   Likelihood = "medium"
	LikelihoodHigh     Likelihood = "high"
	LikelihoodVeryHigh Likelihood = "very_high"
)

// Impact is a four-level ordinal scale used for the single-value template
// impact as well as each axis of the CIA triple.
type Impact string

const (
	ImpactLow      Impact = "low"
	ImpactMedium   Impact = "medium"
	ImpactHigh     Impact = "high"
	ImpactCritical Impact = "critical"
)

// ImpactCIA expresses impact along the CIA triad. Scoring takes the maximum
// of the three axes.
type ImpactCIA struct {
	Confidentiality Impact `json:"confidentiality" yaml:"confidentiality"`
	Integrity       Impact `json:"integrity" yaml:"integrity"`
	Availability    Impact `json:"availability" yaml:"availability"`
}

func UniformImpact(i Impact) ImpactCIA {
	return ImpactCIA{Confidentiality: i, Integrity: i, Availability: i}
}

// String renders the triple in the compact C/I/A notation used by the
// tabular export.
func (c ImpactCIA) String() string {
	return "C:" + string(c.Confidentiality) + " I:" + string(c.Integrity) + " A:" + string(c.Availability)
}

type ThreatStatus string

const (
	StatusIdentified  ThreatStatus = "identified"
	StatusInProgress  ThreatStatus = "in_progress"
	StatusMitigated   ThreatStatus = "mitigated"
	StatusAccepted    ThreatStatus = "accepted"
	StatusTransferred ThreatStatus = "transferred"
)

// Component is a node of the system under analysis. DiagramID stays empty
// until the allocator assigned one; the allocator never renumbers a component
// that already carries an id.
type Component struct {
	ID                 string      `json:"id" yaml:"id"`
	DiagramID          string      `json:"diagramId,omitempty" yaml:"diagramId,omitempty"`
	Name               string      `json:"name" yaml:"name"`
	Type               string      `json:"type" yaml:"type"`
	Technology         string      `json:"technology,omitempty" yaml:"technology,omitempty"`
	Criticality        Criticality `json:"criticality" yaml:"criticality"`
	DataClassification string      `json:"dataClassification,omitempty" yaml:"dataClassification,omitempty"`
	TrustBoundary      string      `json:"trustBoundary,omitempty" yaml:"trustBoundary,omitempty"`
}

// DataFlow is a directed edge between two components.
type DataFlow struct {
	ID                   string `json:"id" yaml:"id"`
	DiagramID            string `json:"diagramId,omitempty" yaml:"diagramId,omitempty"`
	SourceID             string `json:"sourceId" yaml:"sourceId"`
	TargetID             string `json:"targetId" yaml:"targetId"`
	Label                string `json:"label" yaml:"label"`
	Protocol             string `json:"protocol,omitempty" yaml:"protocol,omitempty"`
	DataType             string `json:"dataType,omitempty" yaml:"dataType,omitempty"`
	Encrypted            bool   `json:"encrypted" yaml:"encrypted"`
	Authenticated        bool   `json:"authenticated" yaml:"authenticated"`
	CrossesTrustBoundary bool   `json:"crossesTrustBoundary" yaml:"crossesTrustBoundary"`
}

// TrustBoundary is a named security perimeter. MemberComponentIDs is derived
// from components referencing the boundary by name when not given explicitly.
type TrustBoundary struct {
	ID                 string   `json:"id" yaml:"id"`
	Name               string   `json:"name" yaml:"name"`
	Type               string   `json:"type,omitempty" yaml:"type,omitempty"`
	MemberComponentIDs []string `json:"memberComponentIds,omitempty" yaml:"memberComponentIds,omitempty"`
}

// AnalyzedThreat is one enumerated threat against a component or data flow.
// All of it is derived state, recomputed per generation request.
type AnalyzedThreat struct {
	DiagramID   string         `json:"diagramId"`
	SubjectID   string         `json:"subjectId"`
	SubjectName string         `json:"subjectName"`
	Category    StrideCategory `json:"category"`
	Description string         `json:"description"`

	Vulnerability string `json:"vulnerability,omitempty"`
	AttackVector  string `json:"attackVector,omitempty"`
	ThreatActor   string `json:"threatActor,omitempty"`
	Skill         string `json:"skill,omitempty"`
	Complexity    string `json:"complexity,omitempty"`

	LikelihoodPre     Likelihood `json:"likelihoodPre"`
	Impact            ImpactCIA  `json:"impact"`
	ExistingControls  string     `json:"existingControls,omitempty"`
	RiskAfterExisting RiskLevel  `json:"riskAfterExisting"`
	GapRecommendation string     `json:"gapRecommendation,omitempty"`
	FinalRisk         RiskLevel  `json:"finalRisk"`

	RiskScore float64   `json:"riskScore"`
	RiskLevel RiskLevel `json:"riskLevel"`

	Mitigations      []string `json:"mitigations,omitempty"`
	CWEIDs           []string `json:"cweIds,omitempty"`
	AttackTechniques []string `json:"attackTechniques,omitempty"`

	Comments  string `json:"comments,omitempty"`
	Reviewer  string `json:"reviewer,omitempty"`
	TicketRef string `json:"ticketRef,omitempty"`

	Status ThreatStatus `json:"status"`
}
