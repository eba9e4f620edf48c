// Package layout places graph nodes on a left-to-right layered grid.
package layout

const (
	NodeWidth  = 150
	NodeHeight = 100
	RankSep    = 300
	NodeSep    = 50
)

type Box struct {
	ID     string
	Width  float64
	Height float64
}

type Link struct {
	Source string
	Target string
}

type Point struct {
	X float64
	Y float64
}

// Engine computes node positions. Implementations must be pure: the same
// input yields the same output.
type Engine interface {
	Layout(nodes []Box, edges []Link) map[string]Point
}

// Layered ranks nodes by longest path from their sources and stacks nodes of
// one rank vertically in input order.
type Layered struct {
	RankSep float64
	NodeSep float64
}

func NewLayered() *Layered {
	return &Layered{RankSep: RankSep, NodeSep: NodeSep}
}

func (l *Layered) Layout(nodes []Box, edges []Link) map[string]Point {
	pos := make(map[string]Point, len(nodes))
	if len(nodes) == 0 {
		return pos
	}

	order := make(map[string]int, len(nodes))
	for i, n := range nodes {
		if _, ok := order[n.ID]; !ok {
			order[n.ID] = i
		}
	}
	out := make(map[string][]string)
	for _, e := range edges {
		if _, ok := order[e.Source]; !ok {
			continue
		}
		if _, ok := order[e.Target]; !ok {
			continue
		}
		if e.Source == e.Target {
			continue
		}
		out[e.Source] = append(out[e.Source], e.Target)
	}

	// Back edges found by DFS are ignored so cycles cannot raise ranks forever.
	const (
		unvisited = iota
		active
		done
	)
	state := make(map[string]int, len(nodes))
	var topo []string
	var visit func(id string)
	forward := make(map[string][]string)
	visit = func(id string) {
		state[id] = active
		for _, next := range out[id] {
			switch state[next] {
			case active:
				continue
			case unvisited:
				visit(next)
			}
			forward[id] = append(forward[id], next)
		}
		state[id] = done
		topo = append(topo, id)
	}
	for _, n := range nodes {
		if state[n.ID] == unvisited {
			visit(n.ID)
		}
	}

	rank := make(map[string]int, len(nodes))
	for i := len(topo) - 1; i >= 0; i-- {
		id := topo[i]
		for _, next := range forward[id] {
			if rank[id]+1 > rank[next] {
				rank[next] = rank[id] + 1
			}
		}
	}

	slots := make(map[int]int)
	for _, n := range nodes {
		if _, placed := pos[n.ID]; placed {
			continue
		}
		w, h := n.Width, n.Height
		if w == 0 {
			w = NodeWidth
		}
		if h == 0 {
			h = NodeHeight
		}
		r := rank[n.ID]
		pos[n.ID] = Point{
			X: float64(r) * (w + l.RankSep),
			Y: float64(slots[r]) * (h + l.NodeSep),
		}
		slots[r]++
	}
	return pos
}
