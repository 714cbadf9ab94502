package threatmodel

import (
	"fmt"
	"strconv"
	"strings"
)

// diagramIDPrefix is the fixed component-type to prefix table. Unrecognized
// types fall back to the generic CMP prefix, which is not an error.
var diagramIDPrefix = map[string]string{
	"process":        "PRC",
	"database":       "DB",
	"storage":        "STG",
	"api":            "API",
	"apigateway":     "APGW",
	"externalentity": "EXT",
	"user":           "USR",
	"queue":          "QUE",
	"loadbalancer":   "LB",
	"lambda":         "LMB",
	"function":       "FN",
	"cache":          "CCH",
	"compute":        "CMP",
}

const flowIDPrefix = "DF"

// PrefixForType resolves the diagram-id prefix for a component type.
func PrefixForType(componentType string) string {
	if prefix, ok := diagramIDPrefix[NormalizeComponentType(componentType)]; ok {
		return prefix
	}
	return "CMP"
}

// IDAllocator hands out stable, human-readable diagram identifiers of the
// form D-<PREFIX><NN> with a 1-based, zero-padded, per-prefix sequence.
//
// Allocation is idempotent: anything already carrying a diagram id keeps it.
// Counters are seeded from the maximum index already in use per prefix, never
// from a count of unassigned elements, so a partially annotated model can be
// re-allocated without collisions.
type IDAllocator struct {
	nextIndex map[string]int
}

func NewIDAllocator() *IDAllocator {
	return &IDAllocator{nextIndex: map[string]int{}}
}

// Allocate returns annotated copies of the graph's components and flows. The
// input graph is left untouched, so concurrent generation requests against
// the same stored model cannot race on shared slices.
func (a *IDAllocator) Allocate(graph *Graph) ([]Component, []DataFlow) {
	components := append([]Component(nil), graph.Components...)
	flows := append([]DataFlow(nil), graph.Flows...)

	for _, component := range components {
		a.seed(component.DiagramID)
	}
	for _, flow := range flows {
		a.seed(flow.DiagramID)
	}

	for i := range components {
		if components[i].DiagramID != "" {
			continue
		}
		components[i].DiagramID = a.next(PrefixForType(components[i].Type))
	}
	for i := range flows {
		if flows[i].DiagramID != "" {
			continue
		}
		flows[i].DiagramID = a.next(flowIDPrefix)
	}

	return components, flows
}

func (a *IDAllocator) next(prefix string) string {
	a.nextIndex[prefix]++
	return fmt.Sprintf("D-%s%02d", prefix, a.nextIndex[prefix])
}

// seed raises the per-prefix counter to the highest index already in use.
func (a *IDAllocator) seed(diagramID string) {
	prefix, index, ok := parseDiagramID(diagramID)
	if !ok {
		return
	}
	if index > a.nextIndex[prefix] {
		a.nextIndex[prefix] = index
	}
}

func parseDiagramID(diagramID string) (string, int, bool) {
	if !strings.HasPrefix(diagramID, "D-") {
		return "", 0, false
	}
	rest := diagramID[2:]
	split := len(rest)
	for split > 0 && rest[split-1] >= '0' && rest[split-1] <= '9' {
		split--
	}
	if split == len(rest) || split == 0 {
		return "", 0, false
	}
	index, err := strconv.Atoi(rest[split:])
	if err != nil {
		return "", 0, false
	}
	return rest[:split], index, true
}
