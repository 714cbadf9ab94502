package threatmodel

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func annotatedTestGraph(t *testing.T) *AnnotatedGraph {
	t.Helper()
	graph := mustGraph(t, []Component{
		{ID: "c1", Name: "Web Frontend", Type: "process", TrustBoundary: "DMZ"},
		{ID: "c2", Name: "Orders API", Type: "api", TrustBoundary: "DMZ"},
		{ID: "c3", Name: "Orders DB", Type: "database", TrustBoundary: "Internal"},
		{ID: "c4", Name: "Customer", Type: "user"},
		{ID: "c5", Name: "Billing Queue", Type: "queue", TrustBoundary: "Internal"},
	}, []DataFlow{
		{ID: "f1", SourceID: "c4", TargetID: "c1", Label: "browse", Encrypted: true, Authenticated: false},
		{ID: "f2", SourceID: "c1", TargetID: "c2", Label: "order", Encrypted: true, Authenticated: true},
		{ID: "f3", SourceID: "c2", TargetID: "c3", Label: "persist", Encrypted: false, Authenticated: true, CrossesTrustBoundary: true},
	})
	return Annotate(graph)
}

func TestRendererFactory(t *testing.T) {
	for _, format := range []Format{FormatMermaid, FormatSVG, FormatPlantUML} {
		renderer, err := NewRenderer(format)
		require.NoError(t, err)
		assert.NotNil(t, renderer)
	}

	_, err := NewRenderer("visio")
	assert.Error(t, err)
}

// every diagram id appearing in a rendered diagram must appear in that
// render's legend, across all three formats - the defining consistency
// contract of the subsystem.
func TestDiagramIDLegendRoundTrip(t *testing.T) {
	graph := annotatedTestGraph(t)

	for _, format := range []Format{FormatMermaid, FormatSVG, FormatPlantUML} {
		t.Run(string(format), func(t *testing.T) {
			renderer, err := NewRenderer(format)
			require.NoError(t, err)

			out, err := renderer.Render(graph)
			require.NoError(t, err)

			for _, component := range graph.Components {
				assert.Contains(t, out, component.DiagramID, "diagram id missing from %s output", format)
				// the legend pairs the id with the component name
				assert.Contains(t, out, component.Name)
			}
		})
	}
}

func TestMermaidRenderer(t *testing.T) {
	graph := annotatedTestGraph(t)
	out, err := (&MermaidRenderer{}).Render(graph)
	require.NoError(t, err)

	t.Run("emits one subgraph per trust boundary", func(t *testing.T) {
		assert.Equal(t, 2, strings.Count(out, "subgraph "))
		assert.Contains(t, out, `"DMZ"`)
		assert.Contains(t, out, `"Internal"`)
	})

	t.Run("shapes nodes by component type", func(t *testing.T) {
		assert.Contains(t, out, `[("Orders DB")]`)  // cylinder
		assert.Contains(t, out, `(["Customer"])`)   // stadium
		assert.Contains(t, out, `[["Billing Queue"]]`)
	})

	t.Run("marks encrypted edges and boundary crossings", func(t *testing.T) {
		assert.Contains(t, out, "[encrypted]")
		assert.Contains(t, out, "-.->")
		assert.Contains(t, out, "[crosses boundary]")
	})

	t.Run("escapes quotes in labels", func(t *testing.T) {
		quoted := Annotate(mustGraph(t, []Component{
			{ID: "c1", Name: `the "best" service`, Type: "process"},
		}, nil))
		rendered, err := (&MermaidRenderer{}).Render(quoted)
		require.NoError(t, err)
		assert.NotContains(t, rendered, `"the "best" service"`)
		assert.Contains(t, rendered, "#quot;best#quot;")
	})
}

func TestSVGRenderer(t *testing.T) {
	graph := annotatedTestGraph(t)
	out, err := (&SVGRenderer{}).Render(graph)
	require.NoError(t, err)

	t.Run("is well-formed svg 1.1", func(t *testing.T) {
		assert.True(t, strings.HasPrefix(out, `<?xml version="1.0" encoding="UTF-8"?>`))
		assert.Contains(t, out, `version="1.1"`)
		assert.Contains(t, out, "</svg>")
	})

	t.Run("colors arrows by encryption status", func(t *testing.T) {
		assert.Contains(t, out, "url(#arrow-encrypted)")
		assert.Contains(t, out, "url(#arrow-plain)")
	})

	t.Run("draws boundary boxes", func(t *testing.T) {
		assert.Contains(t, out, "stroke-dasharray")
	})

	t.Run("contains a legend entry per component", func(t *testing.T) {
		assert.Contains(t, out, ">Legend</text>")
		for _, component := range graph.Components {
			assert.Contains(t, out, component.DiagramID+" = "+component.Name)
		}
	})

	t.Run("escapes all free text", func(t *testing.T) {
		hostile := Annotate(mustGraph(t, []Component{
			{ID: "c1", Name: `<script>&"attack"</script>`, Type: "process"},
		}, nil))
		rendered, err := (&SVGRenderer{}).Render(hostile)
		require.NoError(t, err)
		assert.NotContains(t, rendered, "<script>")
		assert.Contains(t, rendered, "&lt;script&gt;&amp;&quot;attack&quot;&lt;/script&gt;")
	})
}

func TestPlantUMLRenderer(t *testing.T) {
	graph := annotatedTestGraph(t)
	out, err := (&PlantUMLRenderer{}).Render(graph)
	require.NoError(t, err)

	t.Run("is a valid plantuml document", func(t *testing.T) {
		assert.True(t, strings.HasPrefix(out, "@startuml"))
		assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "@enduml"))
	})

	t.Run("packages per boundary and stereotypes per type", func(t *testing.T) {
		assert.Contains(t, out, `package "DMZ"`)
		assert.Contains(t, out, `package "Internal"`)
		assert.Contains(t, out, "<<database>>")
		assert.Contains(t, out, "<<queue>>")
		assert.Contains(t, out, "<<component>>")
	})

	t.Run("declares actors for users and external entities", func(t *testing.T) {
		assert.Contains(t, out, "actor ")
		assert.Contains(t, out, "<<actor>>")
	})

	t.Run("contains a legend block", func(t *testing.T) {
		assert.Contains(t, out, "legend right")
		assert.Contains(t, out, "endlegend")
	})
}
