package threatmodel

import (
	_ "embed"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var defaultCatalogYAML []byte

// ThreatTemplate is one entry of the threat catalog. AppliesTo holds
// component type selectors; the wildcard "all" matches every component,
// anything else matches as a substring of the normalized component type.
type ThreatTemplate struct {
	ID        string         `yaml:"id" json:"id"`
	Category  StrideCategory `yaml:"category" json:"category"`
	AppliesTo []string       `yaml:"appliesTo" json:"appliesTo"`

	Description   string `yaml:"description" json:"description"`
	Vulnerability string `yaml:"vulnerability" json:"vulnerability"`
	AttackVector  string `yaml:"attackVector" json:"attackVector"`
	ThreatActor   string `yaml:"threatActor,omitempty" json:"threatActor,omitempty"`
	Skill         string `yaml:"skill,omitempty" json:"skill,omitempty"`
	Complexity    string `yaml:"complexity,omitempty" json:"complexity,omitempty"`

	Likelihood Likelihood `yaml:"likelihood" json:"likelihood"`
	Impact     Impact     `yaml:"impact" json:"impact"`

	Mitigations      []string `yaml:"mitigations,omitempty" json:"mitigations,omitempty"`
	CWEIDs           []string `yaml:"cwes,omitempty" json:"cwes,omitempty"`
	AttackTechniques []string `yaml:"attackTechniques,omitempty" json:"attackTechniques,omitempty"`
}

// Catalog is an explicit, versioned threat-template set. It is injected into
// the engine instead of living as package state, so tests and tenants can run
// against alternate template sets.
type Catalog struct {
	Version   string           `yaml:"version" json:"version"`
	Templates []ThreatTemplate `yaml:"templates" json:"templates"`
}

// LoadCatalog parses a YAML catalog document.
func LoadCatalog(raw []byte) (Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(raw, &catalog); err != nil {
		return Catalog{}, errors.Wrap(err, "could not parse threat template catalog")
	}
	for i, template := range catalog.Templates {
		if template.ID == "" {
			return Catalog{}, errors.Errorf("template at index %d has no id", i)
		}
		if len(template.AppliesTo) == 0 {
			return Catalog{}, errors.Errorf("template %s does not apply to any component type", template.ID)
		}
	}
	return catalog, nil
}

// DefaultCatalog returns the catalog embedded into the binary.
func DefaultCatalog() Catalog {
	catalog, err := LoadCatalog(defaultCatalogYAML)
	if err != nil {
		// the embedded catalog is covered by tests - reaching this is a build defect
		panic(err)
	}
	return catalog
}
