package graph

import "eventdocs/internal/resolver"

func (g *Graph) DiagnosticReasonCounts() map[resolver.Reason]int {
	counts := make(map[resolver.Reason]int)
	if g == nil {
		return counts
	}
	for _, d := range g.Diagnostics {
		counts[d.Reason]++
	}
	return counts
}

// LabelCounts tallies edge labels.
func (g *Graph) LabelCounts() map[string]int {
	counts := make(map[string]int)
	if g == nil {
		return counts
	}
	for _, e := range g.Edges {
		counts[e.Label]++
	}
	return counts
}
