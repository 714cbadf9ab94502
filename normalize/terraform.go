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

package normalize

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/pkg/errors"
	"github.com/zclconf/go-cty/cty"

	"github.com/l3montree-dev/threatguard/threatmodel"
)

// Model is the parser output: the threat-model vocabulary the core engine
// consumes. The parsers only promise this shape, nothing else.
type Model struct {
	Name       string
	Components []threatmodel.Component
	Flows      []threatmodel.DataFlow
	Boundaries []threatmodel.TrustBoundary
}

type resourceProfile struct {
	ComponentType      string
	Technology         string
	Criticality        threatmodel.Criticality
	DataClassification string
}

// terraformResourceProfiles maps infrastructure resource types onto the
// component vocabulary. Resource types outside the table are skipped - they
// are infrastructure plumbing, not threat-model subjects.
var terraformResourceProfiles = map[string]resourceProfile{
	"aws_db_instance":                {ComponentType: "database", Technology: "RDS", Criticality: threatmodel.CriticalityCritical, DataClassification: "confidential"},
	"aws_rds_cluster":                {ComponentType: "database", Technology: "RDS", Criticality: threatmodel.CriticalityCritical, DataClassification: "confidential"},
	"aws_dynamodb_table":             {ComponentType: "database", Technology: "DynamoDB", Criticality: threatmodel.CriticalityHigh, DataClassification: "confidential"},
	"aws_s3_bucket":                  {ComponentType: "storage", Technology: "S3", Criticality: threatmodel.CriticalityHigh, DataClassification: "internal"},
	"aws_lambda_function":            {ComponentType: "lambda", Technology: "Lambda", Criticality: threatmodel.CriticalityMedium},
	"aws_instance":                   {ComponentType: "process", Technology: "EC2", Criticality: threatmodel.CriticalityMedium},
	"aws_ecs_service":                {ComponentType: "process", Technology: "ECS", Criticality: threatmodel.CriticalityMedium},
	"aws_lb":                         {ComponentType: "load_balancer", Technology: "ALB", Criticality: threatmodel.CriticalityHigh},
	"aws_alb":                        {ComponentType: "load_balancer", Technology: "ALB", Criticality: threatmodel.CriticalityHigh},
	"aws_elb":                        {ComponentType: "load_balancer", Technology: "ELB", Criticality: threatmodel.CriticalityHigh},
	"aws_api_gateway_rest_api":       {ComponentType: "api_gateway", Technology: "API Gateway", Criticality: threatmodel.CriticalityHigh},
	"aws_apigatewayv2_api":           {ComponentType: "api_gateway", Technology: "API Gateway", Criticality: threatmodel.CriticalityHigh},
	"aws_sqs_queue":                  {ComponentType: "queue", Technology: "SQS", Criticality: threatmodel.CriticalityMedium},
	"aws_elasticache_cluster":        {ComponentType: "cache", Technology: "ElastiCache", Criticality: threatmodel.CriticalityMedium},
	"azurerm_mssql_server":           {ComponentType: "database", Technology: "Azure SQL", Criticality: threatmodel.CriticalityCritical, DataClassification: "confidential"},
	"azurerm_storage_account":        {ComponentType: "storage", Technology: "Azure Storage", Criticality: threatmodel.CriticalityHigh, DataClassification: "internal"},
	"azurerm_function_app":           {ComponentType: "function", Technology: "Azure Functions", Criticality: threatmodel.CriticalityMedium},
	"azurerm_virtual_machine":        {ComponentType: "process", Technology: "Azure VM", Criticality: threatmodel.CriticalityMedium},
	"azurerm_lb":                     {ComponentType: "load_balancer", Technology: "Azure LB", Criticality: threatmodel.CriticalityHigh},
	"azurerm_servicebus_queue":       {ComponentType: "queue", Technology: "Service Bus", Criticality: threatmodel.CriticalityMedium},
	"google_sql_database_instance":   {ComponentType: "database", Technology: "Cloud SQL", Criticality: threatmodel.CriticalityCritical, DataClassification: "confidential"},
	"google_storage_bucket":          {ComponentType: "storage", Technology: "GCS", Criticality: threatmodel.CriticalityHigh, DataClassification: "internal"},
	"google_cloudfunctions_function": {ComponentType: "function", Technology: "Cloud Functions", Criticality: threatmodel.CriticalityMedium},
	"google_compute_instance":        {ComponentType: "process", Technology: "GCE", Criticality: threatmodel.CriticalityMedium},
}

// encryption-at-rest attributes per resource family
var encryptionAttributes = []string{"storage_encrypted", "encrypted", "server_side_encryption"}

// ParseTerraform translates Terraform source into the component/flow
// vocabulary. Flows are inferred along the usual request path: load balancers
// feed compute, compute talks to its datastores. Encryption on a flow is
// taken from the resource attributes that indicate it (HTTPS listeners,
// storage encryption).
func ParseTerraform(src []byte, filename string) (Model, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return Model{}, errors.Wrap(diags, "could not parse terraform source")
	}

	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return Model{}, errors.New("unexpected terraform body type")
	}

	model := Model{Name: strings.TrimSuffix(filename, ".tf")}
	encryptedAtRest := map[string]bool{}
	httpsListener := false

	for _, block := range body.Blocks {
		if block.Type != "resource" || len(block.Labels) < 2 {
			continue
		}
		resourceType, resourceName := block.Labels[0], block.Labels[1]

		if resourceType == "aws_lb_listener" || resourceType == "aws_alb_listener" {
			protocol := strings.ToUpper(stringAttr(block.Body, "protocol"))
			if protocol == "HTTPS" || protocol == "TLS" {
				httpsListener = true
			}
			continue
		}

		profile, known := terraformResourceProfiles[resourceType]
		if !known {
			continue
		}

		id := resourceType + "." + resourceName
		model.Components = append(model.Components, threatmodel.Component{
			ID:                 id,
			Name:               humanizeResourceName(resourceName),
			Type:               profile.ComponentType,
			Technology:         profile.Technology,
			Criticality:        profile.Criticality,
			DataClassification: profile.DataClassification,
		})
		encryptedAtRest[id] = resourceEncrypted(block.Body)
	}

	model.Flows = inferTerraformFlows(model.Components, encryptedAtRest, httpsListener)
	return model, nil
}

// inferTerraformFlows connects load balancers to compute and compute to
// datastores. Cloud-internal flows count as authenticated (IAM), encryption
// follows the resource attributes.
func inferTerraformFlows(components []threatmodel.Component, encryptedAtRest map[string]bool, httpsListener bool) []threatmodel.DataFlow {
	var loadBalancers, compute, datastores []threatmodel.Component
	for _, component := range components {
		switch component.Type {
		case "load_balancer":
			loadBalancers = append(loadBalancers, component)
		case "process", "lambda", "function", "api_gateway":
			compute = append(compute, component)
		case "database", "storage", "cache", "queue":
			datastores = append(datastores, component)
		}
	}

	var flows []threatmodel.DataFlow
	seq := 0
	addFlow := func(source, target threatmodel.Component, label string, encrypted bool) {
		seq++
		flows = append(flows, threatmodel.DataFlow{
			ID:            fmt.Sprintf("flow-%d", seq),
			SourceID:      source.ID,
			TargetID:      target.ID,
			Label:         label,
			Encrypted:     encrypted,
			Authenticated: true,
		})
	}

	for _, lb := range loadBalancers {
		for _, c := range compute {
			addFlow(lb, c, "forwards traffic", httpsListener)
		}
	}
	for _, c := range compute {
		for _, store := range datastores {
			addFlow(c, store, "reads/writes "+store.Name, encryptedAtRest[store.ID])
		}
	}
	return flows
}

func resourceEncrypted(body *hclsyntax.Body) bool {
	for _, name := range encryptionAttributes {
		if boolAttr(body, name) {
			return true
		}
	}
	// nested encryption configuration blocks count as well
	for _, block := range body.Blocks {
		if strings.Contains(block.Type, "encryption") {
			return true
		}
	}
	return false
}

func boolAttr(body *hclsyntax.Body, name string) bool {
	attr, ok := body.Attributes[name]
	if !ok {
		return false
	}
	value, diags := attr.Expr.Value(nil)
	if diags.HasErrors() || value.Type() != cty.Bool {
		return false
	}
	return value.True()
}

func stringAttr(body *hclsyntax.Body, name string) string {
	attr, ok := body.Attributes[name]
	if !ok {
		return ""
	}
	value, diags := attr.Expr.Value(nil)
	if diags.HasErrors() || value.Type() != cty.String {
		return ""
	}
	return value.AsString()
}

func humanizeResourceName(name string) string {
	return strings.Title(strings.ReplaceAll(strings.ReplaceAll(name, "_", " "), "-", " ")) // nolint:staticcheck
}
