package threatmodel

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError reports every unresolved data-flow endpoint of a model at
// once. A graph that produces one is never analyzed, not even partially.
type ValidationError struct {
	MissingIDs []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("threat model references unknown component ids: %s", strings.Join(e.MissingIDs, ", "))
}

// Graph is the validated in-memory representation of a threat model. The
// constructor copies its inputs, so callers may keep mutating their slices
// without affecting a graph already handed to the engine.
type Graph struct {
	Components []Component
	Flows      []DataFlow
	Boundaries []TrustBoundary

	componentsByID map[string]int
}

// NewGraph validates referential integrity of the flow endpoints. It either
// returns a fully usable graph or a *ValidationError naming every missing id.
func NewGraph(components []Component, flows []DataFlow, boundaries []TrustBoundary) (*Graph, error) {
	g := &Graph{
		Components:     append([]Component(nil), components...),
		Flows:          append([]DataFlow(nil), flows...),
		Boundaries:     append([]TrustBoundary(nil), boundaries...),
		componentsByID: make(map[string]int, len(components)),
	}

	for i, component := range g.Components {
		g.componentsByID[component.ID] = i
	}

	missing := map[string]struct{}{}
	for _, flow := range g.Flows {
		if _, ok := g.componentsByID[flow.SourceID]; !ok {
			missing[flow.SourceID] = struct{}{}
		}
		if _, ok := g.componentsByID[flow.TargetID]; !ok {
			missing[flow.TargetID] = struct{}{}
		}
	}

	if len(missing) > 0 {
		ids := make([]string, 0, len(missing))
		for id := range missing {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		return nil, &ValidationError{MissingIDs: ids}
	}

	g.deriveBoundaryMembers()
	return g, nil
}

// deriveBoundaryMembers fills boundary membership from the components that
// reference a boundary by name. Components naming a boundary nobody declared
// get a synthesized one, so a model does not need an explicit boundary list.
func (g *Graph) deriveBoundaryMembers() {
	byName := map[string]int{}
	for i, boundary := range g.Boundaries {
		byName[boundary.Name] = i
	}

	for _, component := range g.Components {
		if component.TrustBoundary == "" {
			continue
		}
		idx, ok := byName[component.TrustBoundary]
		if !ok {
			g.Boundaries = append(g.Boundaries, TrustBoundary{
				ID:   "tb-" + slugify(component.TrustBoundary),
				Name: component.TrustBoundary,
			})
			idx = len(g.Boundaries) - 1
			byName[component.TrustBoundary] = idx
		}
		if !contains(g.Boundaries[idx].MemberComponentIDs, component.ID) {
			g.Boundaries[idx].MemberComponentIDs = append(g.Boundaries[idx].MemberComponentIDs, component.ID)
		}
	}
}

// Component returns the component with the given id.
func (g *Graph) Component(id string) (Component, bool) {
	idx, ok := g.componentsByID[id]
	if !ok {
		return Component{}, false
	}
	return g.Components[idx], true
}

func contains(s []string, v string) bool {
	for _, e := range s {
		if e == v {
			return true
		}
	}
	return false
}

func slugify(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteRune('-')
		}
	}
	return b.String()
}
