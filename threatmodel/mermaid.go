package threatmodel

import (
	"fmt"
	"strings"
)

// MermaidRenderer emits a Mermaid flowchart with one subgraph per trust
// boundary. Node shapes are keyed by component type: cylinders for
// datastores, stadiums for external actors and users, rectangles otherwise.
type MermaidRenderer struct{}

func (r *MermaidRenderer) Render(graph *AnnotatedGraph) (string, error) {
	var b strings.Builder
	b.WriteString("flowchart TD\n")

	inBoundary := map[string]bool{}
	for _, boundary := range graph.Boundaries {
		b.WriteString(fmt.Sprintf("    subgraph %s[%q]\n", mermaidAlias(boundary.Name), boundary.Name))
		for _, memberID := range boundary.MemberComponentIDs {
			component, ok := graph.Component(memberID)
			if !ok {
				continue
			}
			inBoundary[memberID] = true
			b.WriteString("        " + mermaidNode(component) + "\n")
		}
		b.WriteString("    end\n")
	}

	for _, component := range graph.Components {
		if inBoundary[component.ID] {
			continue
		}
		b.WriteString("    " + mermaidNode(component) + "\n")
	}

	b.WriteString("\n")
	for _, flow := range graph.Flows {
		sourceID := graph.diagramIDBySubject[flow.SourceID]
		targetID := graph.diagramIDBySubject[flow.TargetID]

		label := flow.Label
		if flow.Encrypted {
			label += " [encrypted]"
		}
		arrow := "-->"
		if flow.CrossesTrustBoundary {
			// dashed warning edge for boundary crossings
			arrow = "-.->"
			label += " [crosses boundary]"
		}
		b.WriteString(fmt.Sprintf("    %s %s|%q| %s\n", sourceID, arrow, mermaidEscape(label), targetID))
	}

	b.WriteString("\n    %% Legend\n")
	for _, component := range graph.Components {
		b.WriteString(fmt.Sprintf("    %%%% %s = %s\n", component.DiagramID, component.Name))
	}

	return b.String(), nil
}

func mermaidNode(component Component) string {
	name := mermaidEscape(component.Name)
	switch NormalizeComponentType(component.Type) {
	case "database", "storage", "cache":
		return fmt.Sprintf("%s[(%q)]", component.DiagramID, name)
	case "externalentity", "user":
		return fmt.Sprintf("%s([%q])", component.DiagramID, name)
	case "queue":
		return fmt.Sprintf("%s[[%q]]", component.DiagramID, name)
	default:
		return fmt.Sprintf("%s[%q]", component.DiagramID, name)
	}
}

// mermaidEscape keeps free text from breaking out of a quoted mermaid label.
func mermaidEscape(s string) string {
	s = strings.ReplaceAll(s, `"`, "#quot;")
	return strings.ReplaceAll(s, "\n", " ")
}

func mermaidAlias(name string) string {
	alias := slugify(name)
	if alias == "" {
		alias = "boundary"
	}
	return "tb_" + strings.ReplaceAll(alias, "-", "_")
}
