package generator

import (
	"fmt"
	"regexp"
	"strings"

	"eventdocs/internal/graph"
)

// MermaidGenerator renders built graphs as Mermaid flowcharts.
type MermaidGenerator struct {
	// Direction is the flowchart direction, LR when empty.
	Direction string
}

// shapes maps node types to Mermaid node shapes.
var shapes = map[string][2]string{
	"events":   {">", "]"},
	"commands": {"[/", "/]"},
	"queries":  {"[\\", "\\]"},
	"channels": {"[(", ")]"},
	"actor":    {"((", "))"},
	"view":     {"[[", "]]"},
	"policies": {"{{", "}}"},
	"entities": {"([", "])"},
}

// Generate renders g without a code fence.
func (m *MermaidGenerator) Generate(g *graph.Graph) string {
	dir := m.Direction
	if dir == "" {
		dir = "LR"
	}

	var sb strings.Builder
	sb.WriteString("flowchart " + dir + "\n")
	if g == nil {
		return sb.String()
	}

	for _, n := range g.Nodes {
		open, closing := "[", "]"
		if s, ok := shapes[n.Type]; ok {
			open, closing = s[0], s[1]
		}
		sb.WriteString(fmt.Sprintf("    %s%s%q%s\n", sanitizeMermaidID(n.ID), open, nodeLabel(n), closing))
	}
	for _, e := range g.Edges {
		arrow := "-->"
		if e.Animated {
			arrow = "-.->"
		}
		sb.WriteString(fmt.Sprintf("    %s %s|%s| %s\n",
			sanitizeMermaidID(e.Source), arrow, edgeLabel(e.Label), sanitizeMermaidID(e.Target)))
	}
	return sb.String()
}

// GenerateBlock renders g inside a ```mermaid fence for Markdown pages.
func (m *MermaidGenerator) GenerateBlock(g *graph.Graph) string {
	return "```mermaid\n" + m.Generate(g) + "```\n"
}

func nodeLabel(n graph.Node) string {
	e := n.Data.Entity
	if e == nil {
		return n.ID
	}
	return fmt.Sprintf("%s (%s)", e.DisplayName(), e.Version)
}

func edgeLabel(label string) string {
	label = strings.ReplaceAll(label, "|", "/")
	return fmt.Sprintf("%q", label)
}

var nonIDChars = regexp.MustCompile(`[^a-z0-9_]`)

func sanitizeMermaidID(v string) string {
	v = strings.TrimSpace(strings.ToLower(v))
	if v == "" {
		return "node"
	}
	v = nonIDChars.ReplaceAllString(strings.ReplaceAll(v, "-", "_"), "_")
	if v[0] >= '0' && v[0] <= '9' {
		v = "n_" + v
	}
	return v
}
