package threatmodel

// Grid geometry. Values are SVG user units; the grid is intentionally dumb -
// diagrams are reviewed by humans, not optimized for edge crossings, and the
// row-major placement stays legible up to a few hundred nodes.
const (
	layoutColumns   = 6
	cellWidth       = 260
	cellHeight      = 170
	nodeWidth       = 200
	nodeHeight      = 100
	layoutMargin    = 60
	boundaryPadding = 24
)

type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

type BoundaryBox struct {
	Name string `json:"name"`
	Rect Rect   `json:"rect"`
}

// Layout holds the 2-D positions of components and the bounding boxes of
// trust boundaries.
type Layout struct {
	Nodes      map[string]Rect `json:"nodes"`
	Boundaries []BoundaryBox   `json:"boundaries"`
	Width      int             `json:"width"`
	Height     int             `json:"height"`
}

// ComputeLayout places components on a row-major grid, 6 per row, in input
// order, and wraps every trust boundary in a rectangle covering the extent of
// its members.
func ComputeLayout(components []Component, boundaries []TrustBoundary) Layout {
	layout := Layout{Nodes: make(map[string]Rect, len(components))}

	for i, component := range components {
		col := i % layoutColumns
		row := i / layoutColumns
		layout.Nodes[component.ID] = Rect{
			X:      layoutMargin + col*cellWidth,
			Y:      layoutMargin + row*cellHeight,
			Width:  nodeWidth,
			Height: nodeHeight,
		}
	}

	for _, boundary := range boundaries {
		box, ok := memberExtent(layout.Nodes, boundary.MemberComponentIDs)
		if !ok {
			continue
		}
		layout.Boundaries = append(layout.Boundaries, BoundaryBox{Name: boundary.Name, Rect: box})
	}

	rows := (len(components) + layoutColumns - 1) / layoutColumns
	cols := len(components)
	if cols > layoutColumns {
		cols = layoutColumns
	}
	layout.Width = 2*layoutMargin + cols*cellWidth
	layout.Height = 2*layoutMargin + rows*cellHeight

	return layout
}

// memberExtent computes the padded bounding rectangle over the placed member
// nodes of a boundary.
func memberExtent(nodes map[string]Rect, memberIDs []string) (Rect, bool) {
	found := false
	var minX, minY, maxX, maxY int
	for _, id := range memberIDs {
		node, ok := nodes[id]
		if !ok {
			continue
		}
		if !found {
			minX, minY = node.X, node.Y
			maxX, maxY = node.X+node.Width, node.Y+node.Height
			found = true
			continue
		}
		if node.X < minX {
			minX = node.X
		}
		if node.Y < minY {
			minY = node.Y
		}
		if node.X+node.Width > maxX {
			maxX = node.X + node.Width
		}
		if node.Y+node.Height > maxY {
			maxY = node.Y + node.Height
		}
	}
	if !found {
		return Rect{}, false
	}
	return Rect{
		X:      minX - boundaryPadding,
		Y:      minY - boundaryPadding,
		Width:  maxX - minX + 2*boundaryPadding,
		Height: maxY - minY + 2*boundaryPadding,
	}, true
}
