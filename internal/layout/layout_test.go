package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func boxes(ids ...string) []Box {
	out := make([]Box, 0, len(ids))
	for _, id := range ids {
		out = append(out, Box{ID: id, Width: NodeWidth, Height: NodeHeight})
	}
	return out
}

func TestLayered_Layout(t *testing.T) {
	l := NewLayered()

	t.Run("ranks follow longest path", func(t *testing.T) {
		pos := l.Layout(boxes("a", "b", "c", "d"), []Link{
			{Source: "a", Target: "b"},
			{Source: "b", Target: "c"},
			{Source: "a", Target: "c"},
		})
		assert.Equal(t, Point{X: 0, Y: 0}, pos["a"])
		assert.Equal(t, Point{X: 450, Y: 0}, pos["b"])
		assert.Equal(t, Point{X: 900, Y: 0}, pos["c"])
		assert.Equal(t, Point{X: 0, Y: 150}, pos["d"])
	})

	t.Run("cycles are laid out", func(t *testing.T) {
		pos := l.Layout(boxes("a", "b"), []Link{
			{Source: "a", Target: "b"},
			{Source: "b", Target: "a"},
		})
		assert.Equal(t, 0.0, pos["a"].X)
		assert.Equal(t, 450.0, pos["b"].X)
	})

	t.Run("deterministic", func(t *testing.T) {
		nodes := boxes("x", "y", "z")
		edges := []Link{{Source: "z", Target: "x"}, {Source: "y", Target: "x"}, {Source: "x", Target: "missing"}}
		assert.Equal(t, l.Layout(nodes, edges), l.Layout(nodes, edges))
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, l.Layout(nil, nil))
	})
}
