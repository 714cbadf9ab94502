package normalize

import (
	"fmt"
	"sort"
	"strings"

	"github.com/l3montree-dev/threatguard/threatmodel"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type openapiDocument struct {
	OpenAPI string `yaml:"openapi"`
	Swagger string `yaml:"swagger"`
	Info    struct {
		Title string `yaml:"title"`
	} `yaml:"info"`
	Security []map[string][]string `yaml:"security"`
	Paths    map[string]yaml.Node  `yaml:"paths"`
}

type openapiOperation struct {
	OperationID string                 `yaml:"operationId"`
	Summary     string                 `yaml:"summary"`
	Security    *[]map[string][]string `yaml:"security"`
}

var openapiVerbs = []string{"get", "put", "post", "delete", "options", "head", "patch", "trace"}

// ParseOpenAPI builds threat model inputs from an OpenAPI 3 (or Swagger 2)
// document. The API itself, a generic external client and a backing datastore
// become components. Every operation contributes a client to API flow and an
// API to datastore flow, so each exposed endpoint shows up in the analysis.
//
// Authentication is taken from the security requirements: an operation without
// any effective security requirement (neither its own nor a document level one)
// yields unauthenticated flows, which the analysis flags as spoofing risks.
func ParseOpenAPI(doc []byte) (Model, error) {
	var parsed openapiDocument
	if err := yaml.Unmarshal(doc, &parsed); err != nil {
		return Model{}, errors.Wrap(err, "could not parse openapi document")
	}
	if parsed.OpenAPI == "" && parsed.Swagger == "" {
		return Model{}, errors.New("document is missing an openapi or swagger version field")
	}
	if len(parsed.Paths) == 0 {
		return Model{}, errors.New("document defines no paths")
	}

	apiName := strings.TrimSpace(parsed.Info.Title)
	if apiName == "" {
		apiName = "API"
	}

	model := Model{
		Name: apiName,
		Components: []threatmodel.Component{
			{
				ID:            "client",
				Name:          "API Client",
				Type:          "external_entity",
				Criticality:   threatmodel.CriticalityLow,
				TrustBoundary: "Internet",
			},
			{
				ID:            "api",
				Name:          apiName,
				Type:          "api",
				Technology:    "HTTP",
				Criticality:   threatmodel.CriticalityHigh,
				TrustBoundary: "Application",
			},
			{
				ID:                 "datastore",
				Name:               "Primary Datastore",
				Type:               "database",
				Criticality:        threatmodel.CriticalityCritical,
				DataClassification: "confidential",
				TrustBoundary:      "Data",
			},
		},
	}

	documentSecured := len(parsed.Security) > 0

	paths := make([]string, 0, len(parsed.Paths))
	for path := range parsed.Paths {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		node := parsed.Paths[path]
		var item map[string]yaml.Node
		if err := node.Decode(&item); err != nil {
			return Model{}, errors.Wrapf(err, "could not parse path item %s", path)
		}
		for _, verb := range openapiVerbs {
			opNode, ok := item[verb]
			if !ok {
				continue
			}
			var op openapiOperation
			if err := opNode.Decode(&op); err != nil {
				return Model{}, errors.Wrapf(err, "could not parse %s %s", strings.ToUpper(verb), path)
			}

			authenticated := documentSecured
			if op.Security != nil {
				// an explicit empty security array opts the operation out
				authenticated = len(*op.Security) > 0
			}

			label := op.Summary
			if label == "" {
				label = op.OperationID
			}
			if label == "" {
				label = fmt.Sprintf("%s %s", strings.ToUpper(verb), path)
			}

			opSlug := operationSlug(verb, path)
			model.Flows = append(model.Flows,
				threatmodel.DataFlow{
					ID:                   "flow-client-" + opSlug,
					SourceID:             "client",
					TargetID:             "api",
					Label:                label,
					Protocol:             "HTTPS",
					Encrypted:            true,
					Authenticated:        authenticated,
					CrossesTrustBoundary: true,
				},
				threatmodel.DataFlow{
					ID:            "flow-db-" + opSlug,
					SourceID:      "api",
					TargetID:      "datastore",
					Label:         "persists " + label,
					Protocol:      "SQL",
					Encrypted:     true,
					Authenticated: true,
				},
			)
		}
	}

	if len(model.Flows) == 0 {
		return Model{}, errors.New("document defines no operations")
	}
	return model, nil
}

func operationSlug(verb, path string) string {
	var b strings.Builder
	b.WriteString(verb)
	for _, r := range path {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		default:
			if last := b.String(); len(last) > 0 && last[len(last)-1] != '-' {
				b.WriteByte('-')
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
