package graph

import (
	"encoding/json"
	"fmt"

	"eventdocs/internal/catalog"
	"eventdocs/internal/resolver"
)

// Kind selects the focal record type of a graph.
type Kind string

const (
	KindActor   Kind = "actor"
	KindView    Kind = "view"
	KindPolicy  Kind = "policy"
	KindEntity  Kind = "entity"
	KindEvent   Kind = "event"
	KindCommand Kind = "command"
	KindQuery   Kind = "query"
)

var kindCollections = map[Kind]catalog.Collection{
	KindActor:   catalog.Actors,
	KindView:    catalog.Views,
	KindPolicy:  catalog.Policies,
	KindEntity:  catalog.Entities,
	KindEvent:   catalog.Events,
	KindCommand: catalog.Commands,
	KindQuery:   catalog.Queries,
}

// ParseKind accepts a singular kind or its collection name.
func ParseKind(s string) (Kind, error) {
	for k, c := range kindCollections {
		if s == string(k) || s == string(c) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown graph kind %q", s)
}

func (k Kind) Collection() catalog.Collection {
	return kindCollections[k]
}

type Mode string

const (
	ModeSimple Mode = "simple"
	ModeFull   Mode = "full"
)

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NodeData is serialised as {"mode": ..., "<role>": record}, e.g.
// {"mode":"simple","message":{...}}.
type NodeData struct {
	Mode   Mode
	Role   string
	Entity *catalog.Entity
}

func (d NodeData) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"mode": d.Mode,
		d.Role: d.Entity,
	})
}

type Node struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Data     NodeData `json:"data"`
	Position Position `json:"position"`
}

type Endpoint struct {
	ID         string             `json:"id"`
	Version    string             `json:"version"`
	Collection catalog.Collection `json:"collection"`
}

type EdgeData struct {
	CustomColor         string     `json:"customColor,omitempty"`
	Warning             string     `json:"warning,omitempty"`
	RootSourceAndTarget *RootPair `json:"rootSourceAndTarget,omitempty"`
}

// RootPair names the records an edge ultimately connects when it passes
// through channels.
type RootPair struct {
	Source Endpoint `json:"source"`
	Target Endpoint `json:"target"`
}

type Edge struct {
	ID       string   `json:"id"`
	Source   string   `json:"source"`
	Target   string   `json:"target"`
	Label    string   `json:"label"`
	Animated bool     `json:"animated"`
	Data     EdgeData `json:"data"`
}

type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`

	// Diagnostics lists label conflicts and missing channels met while
	// building. It is not part of the rendered output.
	Diagnostics []resolver.Diagnostic `json:"-"`
}

func emptyGraph() *Graph {
	return &Graph{Nodes: []Node{}, Edges: []Edge{}}
}

func (g *Graph) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

func (g *Graph) Edge(id string) (Edge, bool) {
	for _, e := range g.Edges {
		if e.ID == id {
			return e, true
		}
	}
	return Edge{}, false
}

// EdgeBetween returns the first edge from source to target.
func (g *Graph) EdgeBetween(source, target string) (Edge, bool) {
	for _, e := range g.Edges {
		if e.Source == source && e.Target == target {
			return e, true
		}
	}
	return Edge{}, false
}

func (g *Graph) NodeIDs() []string {
	out := make([]string, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		out = append(out, n.ID)
	}
	return out
}
