package threatmodel

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeLayout(t *testing.T) {
	t.Run("places components row-major with six per row", func(t *testing.T) {
		components := make([]Component, 8)
		for i := range components {
			components[i] = Component{ID: fmt.Sprintf("c%d", i), Type: "process"}
		}

		layout := ComputeLayout(components, nil)

		require.Len(t, layout.Nodes, 8)
		first := layout.Nodes["c0"]
		sixth := layout.Nodes["c5"]
		seventh := layout.Nodes["c6"]

		// first row
		assert.Equal(t, first.Y, sixth.Y)
		assert.Equal(t, first.X+5*cellWidth, sixth.X)
		// wrap to the second row, first column
		assert.Equal(t, first.X, seventh.X)
		assert.Equal(t, first.Y+cellHeight, seventh.Y)
	})

	t.Run("boundary box covers the extent of its members", func(t *testing.T) {
		components := []Component{
			{ID: "c1", Type: "api", TrustBoundary: "DMZ"},
			{ID: "c2", Type: "database", TrustBoundary: "DMZ"},
			{ID: "c3", Type: "process"},
		}
		boundaries := []TrustBoundary{{ID: "tb1", Name: "DMZ", MemberComponentIDs: []string{"c1", "c2"}}}

		layout := ComputeLayout(components, boundaries)

		require.Len(t, layout.Boundaries, 1)
		box := layout.Boundaries[0].Rect
		for _, id := range []string{"c1", "c2"} {
			node := layout.Nodes[id]
			assert.LessOrEqual(t, box.X, node.X)
			assert.LessOrEqual(t, box.Y, node.Y)
			assert.GreaterOrEqual(t, box.X+box.Width, node.X+node.Width)
			assert.GreaterOrEqual(t, box.Y+box.Height, node.Y+node.Height)
		}
	})

	t.Run("boundaries without placed members are skipped", func(t *testing.T) {
		layout := ComputeLayout(
			[]Component{{ID: "c1", Type: "api"}},
			[]TrustBoundary{{ID: "tb1", Name: "Empty"}},
		)
		assert.Empty(t, layout.Boundaries)
	})

	t.Run("canvas grows with the row count", func(t *testing.T) {
		few := ComputeLayout([]Component{{ID: "c1"}}, nil)
		many := ComputeLayout(make([]Component, 13), nil)
		assert.Greater(t, many.Height, few.Height)
	})
}
