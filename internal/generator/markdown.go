package generator

import (
	"fmt"
	"strings"

	"eventdocs/internal/catalog"
	"eventdocs/internal/graph"
	"eventdocs/internal/pipeline"
)

// MarkdownGenerator produces a documentation page per enriched record.
type MarkdownGenerator struct {
	mermaid *MermaidGenerator
}

func NewMarkdownGenerator() *MarkdownGenerator {
	return &MarkdownGenerator{mermaid: &MermaidGenerator{}}
}

// relationTitles orders the relationship sections of a page.
var relationTitles = []struct {
	Field catalog.Field
	Title string
}{
	{catalog.FieldReceives, "Receives"},
	{catalog.FieldSends, "Sends"},
	{catalog.FieldSubscribes, "Subscribes to"},
	{catalog.FieldInforms, "Informs"},
	{catalog.FieldReads, "Reads"},
	{catalog.FieldIssues, "Issues"},
}

// EntityPage renders e. g is optional; when present its diagram is embedded.
func (m *MarkdownGenerator) EntityPage(e *pipeline.Enriched, g *graph.Graph) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", e.DisplayName()))
	if s := strings.TrimSpace(e.Summary); s != "" {
		sb.WriteString("> " + s + "\n\n")
	}

	sb.WriteString("| Field | Value |\n|---|---|\n")
	sb.WriteString(fmt.Sprintf("| Id | `%s` |\n", e.ID))
	sb.WriteString(fmt.Sprintf("| Type | %s |\n", e.Collection.Singular()))
	version := e.Version
	if e.IsLatest() {
		version += " (latest)"
	}
	sb.WriteString(fmt.Sprintf("| Version | %s |\n", version))
	if len(e.Versions) > 1 {
		sb.WriteString(fmt.Sprintf("| Versions | %s |\n", strings.Join(e.Versions, ", ")))
	}
	if e.Catalog.FilePath != "" {
		sb.WriteString(fmt.Sprintf("| Source | `%s` |\n", e.Catalog.FilePath))
	}
	sb.WriteString("\n")

	for _, rt := range relationTitles {
		rel, ok := e.Relations[rt.Field]
		if !ok || (len(rel.Resolved) == 0 && len(rel.Raw) == 0) {
			continue
		}
		sb.WriteString("## " + rt.Title + "\n\n")
		for _, r := range rel.Resolved {
			sb.WriteString(fmt.Sprintf("- %s `%s` (%s)\n", r.DisplayName(), r.ID, r.Version))
		}
		for _, ref := range unresolved(rel) {
			sb.WriteString(fmt.Sprintf("- `%s` (not found)\n", ref.String()))
		}
		sb.WriteString("\n")
	}

	writeList(&sb, "Domains", e.Domains)
	writeList(&sb, "Read by", e.ReadBy)
	writeList(&sb, "Entities", e.Owned)

	if len(e.Data.Owners) > 0 {
		sb.WriteString("## Owners\n\n")
		for _, o := range e.Data.Owners {
			sb.WriteString("- " + o.ID + "\n")
		}
		sb.WriteString("\n")
	}

	if g != nil && len(g.Nodes) > 0 {
		sb.WriteString("## Architecture\n\n")
		sb.WriteString(m.mermaid.GenerateBlock(g))
	}
	return sb.String()
}

func writeList(sb *strings.Builder, title string, items []*catalog.Entity) {
	if len(items) == 0 {
		return
	}
	sb.WriteString("## " + title + "\n\n")
	for _, it := range items {
		sb.WriteString(fmt.Sprintf("- %s (%s)\n", it.DisplayName(), it.Version))
	}
	sb.WriteString("\n")
}

// unresolved returns the raw refs no resolved record answers to.
func unresolved(rel pipeline.Relation) []catalog.Reference {
	var out []catalog.Reference
	for _, ref := range rel.Raw {
		found := false
		for _, r := range rel.Resolved {
			if r.ID == ref.ID {
				found = true
				break
			}
		}
		if !found {
			out = append(out, ref)
		}
	}
	return out
}
