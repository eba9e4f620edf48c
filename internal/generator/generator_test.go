package generator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventdocs/internal/catalog"
	"eventdocs/internal/graph"
	"eventdocs/internal/pipeline"
)

func rec(c catalog.Collection, id, ver string) *catalog.Entity {
	return &catalog.Entity{ID: id, Version: ver, Collection: c, Name: id}
}

func policyGraph() *graph.Graph {
	snap := pipeline.NewSnapshot(map[catalog.Collection][]*catalog.Entity{
		catalog.Policies: {{ID: "OrderPolicy", Version: "1.0.0", Collection: catalog.Policies, Data: catalog.Data{
			Receives: []catalog.Reference{{ID: "OrderCreated"}},
			Sends:    []catalog.Reference{{ID: "ProcessOrder"}},
		}}},
		catalog.Events:   {rec(catalog.Events, "OrderCreated", "1.0.0")},
		catalog.Commands: {rec(catalog.Commands, "ProcessOrder", "1.0.0")},
	})
	return graph.BuildPolicy(snap, "OrderPolicy", "1.0.0", graph.ModeSimple)
}

func TestMermaid_Generate(t *testing.T) {
	out := (&MermaidGenerator{}).Generate(policyGraph())

	assert.True(t, strings.HasPrefix(out, "flowchart LR\n"))
	assert.Contains(t, out, `orderpolicy_1_0_0{{"OrderPolicy (1.0.0)"}}`)
	assert.Contains(t, out, `ordercreated_1_0_0>"OrderCreated (1.0.0)"]`)
	assert.Contains(t, out, `orderpolicy_1_0_0 -->|"dispatches"| processorder_1_0_0`)
	// the event has no producer, so its edge is drawn dotted
	assert.Contains(t, out, `ordercreated_1_0_0 -.->|"triggered by"| orderpolicy_1_0_0`)

	block := (&MermaidGenerator{Direction: "TD"}).GenerateBlock(nil)
	assert.Equal(t, "```mermaid\nflowchart TD\n```\n", block)
}

func TestSanitizeMermaidID(t *testing.T) {
	assert.Equal(t, "orders_topic_1_0_0", sanitizeMermaidID("orders.topic-1.0.0"))
	assert.Equal(t, "n_1st", sanitizeMermaidID("1st"))
	assert.Equal(t, "node", sanitizeMermaidID("  "))
}

func TestMarkdown_EntityPage(t *testing.T) {
	e := &pipeline.Enriched{
		Entity: &catalog.Entity{
			ID: "OrderPolicy", Version: "1.0.0", Collection: catalog.Policies,
			Name: "Order Policy", Summary: "Places orders",
			Data: catalog.Data{Owners: []catalog.Owner{{ID: "dboyne"}}},
		},
		Versions:      []string{"1.0.0", "0.1.0"},
		LatestVersion: "1.0.0",
		Relations: map[catalog.Field]pipeline.Relation{
			catalog.FieldReceives: {
				Resolved: []*catalog.Entity{rec(catalog.Events, "OrderCreated", "1.0.0")},
				Raw:      []catalog.Reference{{ID: "OrderCreated"}, {ID: "Ghost", Version: "2.0.0"}},
			},
			catalog.FieldSends: {Resolved: []*catalog.Entity{}, Raw: []catalog.Reference{}},
		},
		Domains: []*catalog.Entity{rec(catalog.Domains, "Orders", "1.0.0")},
	}

	page := NewMarkdownGenerator().EntityPage(e, policyGraph())

	assert.True(t, strings.HasPrefix(page, "# Order Policy\n\n> Places orders\n"))
	assert.Contains(t, page, "| Version | 1.0.0 (latest) |")
	assert.Contains(t, page, "| Versions | 1.0.0, 0.1.0 |")
	assert.Contains(t, page, "## Receives\n\n- OrderCreated `OrderCreated` (1.0.0)\n- `Ghost@2.0.0` (not found)\n")
	assert.NotContains(t, page, "## Sends")
	assert.Contains(t, page, "## Domains\n\n- Orders (1.0.0)\n")
	assert.Contains(t, page, "## Owners\n\n- dboyne\n")
	assert.Contains(t, page, "```mermaid\nflowchart LR\n")
}

func TestLLMSText(t *testing.T) {
	orders := rec(catalog.Domains, "Orders", "1.0.0")
	orders.Data.Entities = []catalog.Reference{{ID: "Order"}}
	orders.Data.Views = []catalog.Reference{{ID: "SecretView"}}

	oldEvent := rec(catalog.Events, "OrderCreated", "0.9.0")
	event := rec(catalog.Events, "OrderCreated", "1.0.0")
	event.Summary = "An order was created"
	hidden := rec(catalog.Events, "Internal", "1.0.0")
	hidden.Hidden = true
	secret := rec(catalog.Views, "SecretView", "1.0.0")
	secret.Hidden = true
	topic := rec(catalog.Channels, "orders.topic", "1.0.0")
	topic.Data.Protocols = []string{"kafka"}
	team := rec(catalog.Teams, "platform", "")
	team.Name = "Platform Team"

	out := LLMSText(map[catalog.Collection][]*catalog.Entity{
		catalog.Events:   {oldEvent, event, hidden},
		catalog.Domains:  {orders},
		catalog.Entities: {rec(catalog.Entities, "Order", "1.0.0")},
		catalog.Views:    {secret},
		catalog.Channels: {topic},
		catalog.Teams:    {team},
	}, LLMSOptions{Organization: "Acme", Tagline: "Events at Acme", BaseURL: "https://docs.acme.dev/"})

	lines := strings.Split(out, "\n")
	require.NotEmpty(t, lines)
	assert.Equal(t, "# Acme EventCatalog Documentation", lines[0])
	assert.Contains(t, out, "> Events at Acme\n")
	assert.Contains(t, out, "- [OrderCreated - 1.0.0](https://docs.acme.dev/docs/events/OrderCreated/1.0.0.mdx) - An order was created\n")
	assert.NotContains(t, out, "0.9.0")
	assert.NotContains(t, out, "Internal")
	assert.NotContains(t, out, "SecretView")
	assert.Contains(t, out, "- [orders.topic - 1.0.0](https://docs.acme.dev/docs/channels/orders.topic/1.0.0.mdx) - protocols: kafka\n")
	assert.Contains(t, out, "## Entities\n\n- Orders Domain\n    - [Order - 1.0.0](https://docs.acme.dev/docs/entities/Order/1.0.0.mdx)\n")
	assert.Contains(t, out, "- [platform](https://docs.acme.dev/docs/teams/platform.mdx) - Platform Team\n")

	// sections keep their order
	assert.Less(t, strings.Index(out, "## Events"), strings.Index(out, "## Commands"))
	assert.Less(t, strings.Index(out, "## Views"), strings.Index(out, "## Actors"))
	assert.Less(t, strings.Index(out, "## Teams"), strings.Index(out, "## Users"))
}
