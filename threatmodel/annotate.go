package threatmodel

// AnnotatedGraph is a per-request snapshot of a validated graph with diagram
// ids and layout coordinates attached. It is derived state: the renderers and
// the tabular exporter both consume the same annotated graph, which is what
// keeps their identifiers consistent.
type AnnotatedGraph struct {
	Components []Component
	Flows      []DataFlow
	Boundaries []TrustBoundary
	Layout     Layout

	diagramIDBySubject map[string]string
	componentsByID     map[string]Component
}

// Annotate allocates diagram ids and computes the layout. The underlying
// graph is not modified; every generation request works on its own copies.
func Annotate(graph *Graph) *AnnotatedGraph {
	components, flows := NewIDAllocator().Allocate(graph)

	annotated := &AnnotatedGraph{
		Components:         components,
		Flows:              flows,
		Boundaries:         append([]TrustBoundary(nil), graph.Boundaries...),
		Layout:             ComputeLayout(components, graph.Boundaries),
		diagramIDBySubject: make(map[string]string, len(components)+len(flows)),
		componentsByID:     make(map[string]Component, len(components)),
	}

	for _, component := range components {
		annotated.diagramIDBySubject[component.ID] = component.DiagramID
		annotated.componentsByID[component.ID] = component
	}
	for _, flow := range flows {
		annotated.diagramIDBySubject[flow.ID] = flow.DiagramID
	}

	return annotated
}

// Component looks a component up by its model id.
func (a *AnnotatedGraph) Component(id string) (Component, bool) {
	component, ok := a.componentsByID[id]
	return component, ok
}

// StampDiagramIDs copies the allocated diagram id of each threat's subject
// (component or data flow) onto the threat record.
func (a *AnnotatedGraph) StampDiagramIDs(threats []AnalyzedThreat) {
	for i := range threats {
		if id, ok := a.diagramIDBySubject[threats[i].SubjectID]; ok {
			threats[i].DiagramID = id
		}
	}
}
