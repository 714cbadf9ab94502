package threatmodel

import (
	"fmt"
	"strings"
)

// PlantUMLRenderer emits a component diagram with one package per trust
// boundary and a stereotype per component type. External entities and users
// are declared as actors.
type PlantUMLRenderer struct{}

func (r *PlantUMLRenderer) Render(graph *AnnotatedGraph) (string, error) {
	var b strings.Builder
	b.WriteString("@startuml\n")
	b.WriteString("skinparam componentStyle rectangle\n\n")

	inBoundary := map[string]bool{}
	for _, boundary := range graph.Boundaries {
		b.WriteString(fmt.Sprintf("package %q {\n", plantumlEscape(boundary.Name)))
		for _, memberID := range boundary.MemberComponentIDs {
			component, ok := graph.Component(memberID)
			if !ok {
				continue
			}
			inBoundary[memberID] = true
			b.WriteString("    " + plantumlNode(component) + "\n")
		}
		b.WriteString("}\n")
	}

	for _, component := range graph.Components {
		if inBoundary[component.ID] {
			continue
		}
		b.WriteString(plantumlNode(component) + "\n")
	}

	b.WriteString("\n")
	for _, flow := range graph.Flows {
		source := plantumlAlias(graph.diagramIDBySubject[flow.SourceID])
		target := plantumlAlias(graph.diagramIDBySubject[flow.TargetID])
		label := flow.Label
		if flow.Encrypted {
			label += " (encrypted)"
		}
		arrow := "-->"
		if flow.CrossesTrustBoundary {
			arrow = "..>"
		}
		b.WriteString(fmt.Sprintf("%s %s %s : %s\n", source, arrow, target, plantumlEscape(label)))
	}

	b.WriteString("\nlegend right\n")
	for _, component := range graph.Components {
		b.WriteString(fmt.Sprintf("    %s = %s\n", component.DiagramID, plantumlEscape(component.Name)))
	}
	b.WriteString("endlegend\n")
	b.WriteString("@enduml\n")
	return b.String(), nil
}

func plantumlNode(component Component) string {
	alias := plantumlAlias(component.DiagramID)
	name := plantumlEscape(fmt.Sprintf("%s\\n%s", component.Name, component.DiagramID))
	switch NormalizeComponentType(component.Type) {
	case "database", "storage", "cache":
		return fmt.Sprintf("database %q as %s <<database>>", name, alias)
	case "queue":
		return fmt.Sprintf("queue %q as %s <<queue>>", name, alias)
	case "externalentity", "user":
		return fmt.Sprintf("actor %q as %s <<actor>>", name, alias)
	default:
		return fmt.Sprintf("component %q as %s <<component>>", name, alias)
	}
}

// plantumlAlias makes the diagram id a legal PlantUML identifier.
func plantumlAlias(diagramID string) string {
	return strings.ReplaceAll(diagramID, "-", "_")
}

func plantumlEscape(s string) string {
	s = strings.ReplaceAll(s, `"`, "'")
	return strings.ReplaceAll(s, "\n", " ")
}
