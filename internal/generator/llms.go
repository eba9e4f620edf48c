package generator

import (
	"fmt"
	"sort"
	"strings"

	"eventdocs/internal/catalog"
	"eventdocs/internal/resolver"
)

// LLMSOptions configures the text export.
type LLMSOptions struct {
	Organization string
	Tagline      string
	BaseURL      string
}

// flatSections are exported as one line per record.
var flatSections = []struct {
	Collection catalog.Collection
	Title      string
}{
	{catalog.Events, "Events"},
	{catalog.Commands, "Commands"},
	{catalog.Queries, "Queries"},
	{catalog.Services, "Services"},
	{catalog.Domains, "Domains"},
	{catalog.Flows, "Flows"},
	{catalog.Channels, "Channels"},
	{catalog.Containers, "Containers (Databases, External Systems)"},
}

// domainSections are exported grouped by the domains that list them.
var domainSections = []struct {
	Collection catalog.Collection
	Title      string
}{
	{catalog.Entities, "Entities"},
	{catalog.Policies, "Policies"},
	{catalog.Views, "Views"},
}

// LLMSText renders a plain text index of the catalog. Hidden records are
// skipped and only the latest version of each record is listed.
func LLMSText(records map[catalog.Collection][]*catalog.Entity, opts LLMSOptions) string {
	base := strings.TrimRight(opts.BaseURL, "/")
	latest := make(map[catalog.Collection][]*catalog.Entity, len(records))
	maps := make(map[catalog.Collection]*resolver.VersionedMap, len(records))
	for c, items := range records {
		m := resolver.NewVersionedMap(items)
		maps[c] = m
		for _, e := range items {
			if !e.Hidden && m.IsLatest(e) {
				latest[c] = append(latest[c], e)
			}
		}
		sort.SliceStable(latest[c], func(i, j int) bool { return latest[c][i].ID < latest[c][j].ID })
	}

	var sb strings.Builder
	org := opts.Organization
	if org == "" {
		org = "EventCatalog"
	}
	sb.WriteString(fmt.Sprintf("# %s EventCatalog Documentation\n\n", org))
	if opts.Tagline != "" {
		sb.WriteString("> " + opts.Tagline + "\n\n")
	}

	for _, s := range flatSections {
		sb.WriteString("## " + s.Title + "\n\n")
		for _, e := range latest[s.Collection] {
			sb.WriteString(versionedItem(base, e) + "\n")
		}
		sb.WriteString("\n")
	}

	for _, s := range domainSections {
		sb.WriteString("## " + s.Title + "\n\n")
		target := maps[s.Collection]
		for _, d := range latest[catalog.Domains] {
			var lines []string
			for _, ref := range d.Data.Collects(s.Collection) {
				e := target.FindRef(ref)
				if e == nil || e.Hidden {
					continue
				}
				lines = append(lines, "    "+versionedItem(base, e))
			}
			if len(lines) == 0 {
				continue
			}
			sb.WriteString(fmt.Sprintf("- %s Domain\n", d.DisplayName()))
			sb.WriteString(strings.Join(lines, "\n") + "\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Actors\n\n")
	for _, e := range latest[catalog.Actors] {
		sb.WriteString(versionedItem(base, e) + "\n")
	}
	sb.WriteString("\n")

	for _, s := range []struct {
		Collection catalog.Collection
		Title      string
	}{{catalog.Teams, "Teams"}, {catalog.Users, "Users"}} {
		sb.WriteString("## " + s.Title + "\n\n")
		for _, e := range latest[s.Collection] {
			sb.WriteString(fmt.Sprintf("- [%s](%s/docs/%s/%s.mdx) - %s\n", e.ID, base, s.Collection, e.ID, e.DisplayName()))
		}
		sb.WriteString("\n")
	}

	return strings.TrimRight(sb.String(), "\n") + "\n"
}

func versionedItem(base string, e *catalog.Entity) string {
	line := fmt.Sprintf("- [%s - %s](%s/docs/%s/%s/%s.mdx)", e.DisplayName(), e.Version, base, e.Collection, e.ID, e.Version)
	if len(e.Data.Protocols) > 0 {
		line += " - protocols: " + strings.Join(e.Data.Protocols, ", ")
	}
	if s := strings.TrimSpace(e.Summary); s != "" {
		line += " - " + s
	}
	return line
}
