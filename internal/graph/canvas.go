package graph

import (
	"fmt"
	"strings"

	"eventdocs/internal/catalog"
	"eventdocs/internal/resolver"
)

// nodeType is the UI node type of a record.
func nodeType(c catalog.Collection) string {
	switch c {
	case catalog.Actors:
		return "actor"
	case catalog.Views:
		return "view"
	}
	return string(c)
}

// nodeRole is the key the record is stored under in the node data.
func nodeRole(c catalog.Collection) string {
	if c.IsMessage() {
		return "message"
	}
	return c.Singular()
}

func edgeID(src, tgt *catalog.Entity) string {
	return fmt.Sprintf("%s-%s-%s-%s", src.ID, src.Version, tgt.ID, tgt.Version)
}

// colorFromString hashes s into a stable hex colour.
func colorFromString(s string) string {
	var hash int32
	for _, r := range s {
		hash = int32(r) + ((hash << 5) - hash)
	}
	var sb strings.Builder
	sb.WriteByte('#')
	for i := 0; i < 3; i++ {
		v := (hash >> (i * 8)) & 0xff
		fmt.Fprintf(&sb, "%02x", v)
	}
	return sb.String()
}

// canvas accumulates deduplicated nodes and edges. The first node or edge
// registered under an id wins.
type canvas struct {
	focal *catalog.Entity
	mode  Mode

	nodes   []Node
	nodeIdx map[string]bool
	edges   []Edge
	edgeIdx map[string]int
	diags   []resolver.Diagnostic
}

func newCanvas(focal *catalog.Entity, mode Mode) *canvas {
	if mode == "" {
		mode = ModeSimple
	}
	return &canvas{
		focal:   focal,
		mode:    mode,
		nodeIdx: make(map[string]bool),
		edgeIdx: make(map[string]int),
	}
}

func (c *canvas) node(e *catalog.Entity) string {
	id := e.Key()
	if c.nodeIdx[id] {
		return id
	}
	c.nodeIdx[id] = true
	c.nodes = append(c.nodes, Node{
		ID:   id,
		Type: nodeType(e.Collection),
		Data: NodeData{Mode: c.mode, Role: nodeRole(e.Collection), Entity: e},
	})
	return id
}

type edgeOpt func(*Edge)

func withSuffix(suffix string) edgeOpt {
	return func(e *Edge) { e.ID += suffix }
}

func withWarning(msg string) edgeOpt {
	return func(e *Edge) {
		e.ID += "-warning"
		e.Animated = true
		e.Data.Warning = msg
	}
}

func withRoot(source, target *catalog.Entity) edgeOpt {
	return func(e *Edge) {
		e.Data.RootSourceAndTarget = &RootPair{
			Source: Endpoint{ID: source.ID, Version: source.Version, Collection: source.Collection},
			Target: Endpoint{ID: target.ID, Version: target.Version, Collection: target.Collection},
		}
	}
}

// edge registers both endpoints and the edge src -> tgt.
func (c *canvas) edge(src, tgt *catalog.Entity, label string, opts ...edgeOpt) {
	source := c.node(src)
	target := c.node(tgt)

	e := Edge{
		ID:     edgeID(src, tgt),
		Source: source,
		Target: target,
		Label:  label,
		Data:   EdgeData{CustomColor: colorFromString(src.ID)},
	}
	for _, opt := range opts {
		opt(&e)
	}

	if i, ok := c.edgeIdx[e.ID]; ok {
		if kept := c.edges[i].Label; kept != e.Label {
			c.diags = append(c.diags, resolver.Diagnostic{
				Source:     c.focal.Key(),
				Collection: c.focal.Collection,
				Target:     e.ID,
				Reason:     resolver.ReasonLabelConflict,
				Detail:     fmt.Sprintf("kept %q, dropped %q", kept, e.Label),
			})
		}
		return
	}
	c.edgeIdx[e.ID] = len(c.edges)
	c.edges = append(c.edges, e)
}

// keep filters out hidden records and the focal record itself.
func (c *canvas) keep(list []*catalog.Entity) []*catalog.Entity {
	out := make([]*catalog.Entity, 0, len(list))
	for _, e := range list {
		if e == nil || e.Hidden || e.Same(c.focal) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func (c *canvas) missingChannel(owner *catalog.Entity, ref catalog.Reference) {
	d := resolver.Diagnostic{
		Source:     owner.Key(),
		Collection: owner.Collection,
		Target:     ref.String(),
		Reason:     resolver.ReasonChannelMissing,
	}
	for _, existing := range c.diags {
		if existing == d {
			return
		}
	}
	c.diags = append(c.diags, d)
}

func (c *canvas) graph() *Graph {
	g := emptyGraph()
	g.Nodes = append(g.Nodes, c.nodes...)
	g.Edges = append(g.Edges, c.edges...)
	g.Diagnostics = c.diags
	return g
}
