package threatmodel

import (
	"fmt"
	"strings"
)

type svgColors struct {
	Fill   string
	Border string
	Text   string
}

// Fixed per-type palette. Unrecognized types render in the default gray.
var svgPalette = map[string]svgColors{
	"process":        {Fill: "#dbeafe", Border: "#1d4ed8", Text: "#1e3a5f"},
	"database":       {Fill: "#dcfce7", Border: "#15803d", Text: "#14532d"},
	"storage":        {Fill: "#dcfce7", Border: "#15803d", Text: "#14532d"},
	"api":            {Fill: "#ede9fe", Border: "#6d28d9", Text: "#4c1d95"},
	"apigateway":     {Fill: "#ede9fe", Border: "#6d28d9", Text: "#4c1d95"},
	"externalentity": {Fill: "#fee2e2", Border: "#b91c1c", Text: "#7f1d1d"},
	"user":           {Fill: "#fee2e2", Border: "#b91c1c", Text: "#7f1d1d"},
	"queue":          {Fill: "#fef3c7", Border: "#b45309", Text: "#78350f"},
}

var svgDefaultColors = svgColors{Fill: "#f3f4f6", Border: "#4b5563", Text: "#1f2937"}

const (
	svgEncryptedStroke   = "#15803d"
	svgUnencryptedStroke = "#b91c1c"
)

// SVGRenderer emits a standalone SVG 1.1 document with absolute positions
// from the layout engine. All free text is XML-escaped before emission.
type SVGRenderer struct{}

func (r *SVGRenderer) Render(graph *AnnotatedGraph) (string, error) {
	layout := graph.Layout
	legendHeight := 40 + 18*len(graph.Components)
	height := layout.Height + legendHeight

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" version="1.1" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		layout.Width, height, layout.Width, height))

	b.WriteString("  <defs>\n")
	b.WriteString(svgArrowMarker("arrow-encrypted", svgEncryptedStroke))
	b.WriteString(svgArrowMarker("arrow-plain", svgUnencryptedStroke))
	b.WriteString("  </defs>\n")

	for _, boundary := range layout.Boundaries {
		rect := boundary.Rect
		b.WriteString(fmt.Sprintf(`  <rect x="%d" y="%d" width="%d" height="%d" fill="none" stroke="#dc2626" stroke-width="2" stroke-dasharray="8,4"/>`+"\n",
			rect.X, rect.Y, rect.Width, rect.Height))
		b.WriteString(fmt.Sprintf(`  <text x="%d" y="%d" font-size="12" fill="#dc2626">%s</text>`+"\n",
			rect.X+6, rect.Y-6, xmlEscape(boundary.Name)))
	}

	for _, flow := range graph.Flows {
		source, okSource := layout.Nodes[flow.SourceID]
		target, okTarget := layout.Nodes[flow.TargetID]
		if !okSource || !okTarget {
			continue
		}
		stroke, marker := svgUnencryptedStroke, "arrow-plain"
		if flow.Encrypted {
			stroke, marker = svgEncryptedStroke, "arrow-encrypted"
		}
		x1, y1 := source.X+source.Width/2, source.Y+source.Height/2
		x2, y2 := target.X+target.Width/2, target.Y+target.Height/2
		b.WriteString(fmt.Sprintf(`  <line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-width="1.5" marker-end="url(#%s)"/>`+"\n",
			x1, y1, x2, y2, stroke, marker))
		b.WriteString(fmt.Sprintf(`  <text x="%d" y="%d" font-size="10" fill="%s">%s</text>`+"\n",
			(x1+x2)/2, (y1+y2)/2-4, stroke, xmlEscape(flow.Label)))
	}

	for _, component := range graph.Components {
		node, ok := layout.Nodes[component.ID]
		if !ok {
			continue
		}
		colors := svgDefaultColors
		if c, ok := svgPalette[NormalizeComponentType(component.Type)]; ok {
			colors = c
		}
		b.WriteString(fmt.Sprintf(`  <rect x="%d" y="%d" width="%d" height="%d" rx="6" fill="%s" stroke="%s" stroke-width="2"/>`+"\n",
			node.X, node.Y, node.Width, node.Height, colors.Fill, colors.Border))
		b.WriteString(fmt.Sprintf(`  <text x="%d" y="%d" font-size="12" font-weight="bold" text-anchor="middle" fill="%s">%s</text>`+"\n",
			node.X+node.Width/2, node.Y+node.Height/2-6, colors.Text, xmlEscape(component.Name)))
		b.WriteString(fmt.Sprintf(`  <text x="%d" y="%d" font-size="10" text-anchor="middle" fill="%s">%s</text>`+"\n",
			node.X+node.Width/2, node.Y+node.Height/2+12, colors.Text, xmlEscape(component.DiagramID)))
	}

	// legend box mapping every diagram id to its component name
	legendY := layout.Height
	b.WriteString(fmt.Sprintf(`  <rect x="%d" y="%d" width="%d" height="%d" fill="#ffffff" stroke="#9ca3af"/>`+"\n",
		layoutMargin/2, legendY, layout.Width-layoutMargin, legendHeight-10))
	b.WriteString(fmt.Sprintf(`  <text x="%d" y="%d" font-size="12" font-weight="bold">Legend</text>`+"\n",
		layoutMargin/2+10, legendY+20))
	for i, component := range graph.Components {
		b.WriteString(fmt.Sprintf(`  <text x="%d" y="%d" font-size="11">%s = %s</text>`+"\n",
			layoutMargin/2+10, legendY+40+18*i, xmlEscape(component.DiagramID), xmlEscape(component.Name)))
	}

	b.WriteString("</svg>\n")
	return b.String(), nil
}

func svgArrowMarker(id, color string) string {
	return fmt.Sprintf(`    <marker id="%s" markerWidth="10" markerHeight="7" refX="9" refY="3.5" orient="auto"><polygon points="0 0, 10 3.5, 0 7" fill="%s"/></marker>`+"\n", id, color)
}

var xmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func xmlEscape(s string) string {
	return xmlReplacer.Replace(s)
}
