package threatmodel

import "github.com/pkg/errors"

// Format selects a diagram renderer.
type Format string

const (
	FormatMermaid  Format = "mermaid"
	FormatSVG      Format = "svg"
	FormatPlantUML Format = "plantuml"
)

// Renderer turns an annotated graph into diagram text. Rendering a validated
// graph never fails on content - free text is escaped for the target format,
// not rejected.
type Renderer interface {
	Render(graph *AnnotatedGraph) (string, error)
}

// NewRenderer is the factory over the three supported formats.
func NewRenderer(format Format) (Renderer, error) {
	switch format {
	case FormatMermaid:
		return &MermaidRenderer{}, nil
	case FormatSVG:
		return &SVGRenderer{}, nil
	case FormatPlantUML:
		return &PlantUMLRenderer{}, nil
	default:
		return nil, errors.Errorf("unknown diagram format %q", format)
	}
}
