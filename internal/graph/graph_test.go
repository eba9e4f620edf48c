package graph

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"eventdocs/internal/catalog"
	"eventdocs/internal/layout"
	"eventdocs/internal/pipeline"
	"eventdocs/internal/resolver"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(c catalog.Collection, id, ver string, data catalog.Data) *catalog.Entity {
	return &catalog.Entity{ID: id, Version: ver, Collection: c, Name: id, Data: data}
}

func refs(ids ...string) []catalog.Reference {
	out := make([]catalog.Reference, 0, len(ids))
	for _, id := range ids {
		out = append(out, catalog.Reference{ID: id})
	}
	return out
}

func snapshot(records ...*catalog.Entity) *pipeline.Snapshot {
	m := make(map[catalog.Collection][]*catalog.Entity)
	for _, r := range records {
		m[r.Collection] = append(m[r.Collection], r)
	}
	return pipeline.NewSnapshot(m)
}

func label(t *testing.T, g *Graph, source, target string) string {
	t.Helper()
	e, ok := g.EdgeBetween(source, target)
	require.True(t, ok, "missing edge %s -> %s", source, target)
	return e.Label
}

func actorFixture() *pipeline.Snapshot {
	return snapshot(
		rec(catalog.Actors, "CustomerSupportAgent", "1.0.0", catalog.Data{
			Reads:  []catalog.Reference{{ID: "OrderSummaryView", Version: "1.0.0"}},
			Issues: []catalog.Reference{{ID: "UpdateInventory", Version: "1.0.0"}},
		}),
		rec(catalog.Views, "OrderSummaryView", "1.0.0", catalog.Data{
			Subscribes: []catalog.Reference{
				{ID: "OrderConfirmed", Version: "0.0.1"},
				{ID: "OrderAmended", Version: "0.0.1"},
			},
			Informs: refs("CustomerSupportAgent"),
		}),
		rec(catalog.Events, "OrderConfirmed", "0.0.1", catalog.Data{}),
		rec(catalog.Events, "OrderAmended", "0.0.1", catalog.Data{}),
		rec(catalog.Commands, "UpdateInventory", "1.0.0", catalog.Data{}),
		rec(catalog.Entities, "InventoryEntity", "1.0.0", catalog.Data{
			Receives: refs("UpdateInventory"),
		}),
		rec(catalog.Services, "InventoryService", "1.0.0", catalog.Data{
			Receives: []catalog.Reference{{ID: "UpdateInventory", Version: "1.0.0"}},
		}),
	)
}

func TestBuildActor(t *testing.T) {
	g := BuildActor(actorFixture(), "CustomerSupportAgent", "1.0.0", ModeSimple)

	assert.ElementsMatch(t, []string{
		"CustomerSupportAgent-1.0.0",
		"OrderSummaryView-1.0.0",
		"OrderConfirmed-0.0.1",
		"OrderAmended-0.0.1",
		"UpdateInventory-1.0.0",
		"InventoryEntity-1.0.0",
		"InventoryService-1.0.0",
	}, g.NodeIDs())
	assert.Len(t, g.Edges, 6)

	assert.Equal(t, "informs", label(t, g, "OrderSummaryView-1.0.0", "CustomerSupportAgent-1.0.0"))
	assert.Equal(t, "issues", label(t, g, "CustomerSupportAgent-1.0.0", "UpdateInventory-1.0.0"))
	assert.Equal(t, "subscribes", label(t, g, "OrderConfirmed-0.0.1", "OrderSummaryView-1.0.0"))
	assert.Equal(t, "subscribes", label(t, g, "OrderAmended-0.0.1", "OrderSummaryView-1.0.0"))
	assert.Equal(t, "subscribes to", label(t, g, "UpdateInventory-1.0.0", "InventoryEntity-1.0.0"))
	assert.Equal(t, "subscribes to", label(t, g, "UpdateInventory-1.0.0", "InventoryService-1.0.0"))

	t.Run("node types and edge ids", func(t *testing.T) {
		actor, _ := g.Node("CustomerSupportAgent-1.0.0")
		assert.Equal(t, "actor", actor.Type)
		view, _ := g.Node("OrderSummaryView-1.0.0")
		assert.Equal(t, "view", view.Type)
		svc, _ := g.Node("InventoryService-1.0.0")
		assert.Equal(t, "services", svc.Type)

		e, ok := g.Edge("OrderSummaryView-1.0.0-CustomerSupportAgent-1.0.0")
		require.True(t, ok)
		assert.NotEmpty(t, e.Data.CustomColor)
	})
}

func TestBuildView(t *testing.T) {
	snap := snapshot(
		rec(catalog.Views, "OrderSummaryView", "1.0.0", catalog.Data{
			Subscribes: refs("OrderConfirmed"),
			Informs:    refs("CustomerSupportAgent"),
		}),
		rec(catalog.Events, "OrderConfirmed", "0.0.1", catalog.Data{}),
		rec(catalog.Services, "OrderService", "1.0.0", catalog.Data{Sends: refs("OrderConfirmed")}),
		rec(catalog.Entities, "Order", "1.0.0", catalog.Data{Sends: refs("OrderConfirmed")}),
		rec(catalog.Actors, "CustomerSupportAgent", "1.0.0", catalog.Data{Issues: refs("UpdateInventory")}),
		rec(catalog.Commands, "UpdateInventory", "1.0.0", catalog.Data{}),
		rec(catalog.Services, "InventoryService", "1.0.0", catalog.Data{Receives: refs("UpdateInventory")}),
	)
	g := BuildView(snap, "OrderSummaryView", "1.0.0", ModeSimple)

	assert.Len(t, g.Nodes, 7)
	assert.Equal(t, "subscribes", label(t, g, "OrderConfirmed-0.0.1", "OrderSummaryView-1.0.0"))
	assert.Equal(t, "publishes event", label(t, g, "OrderService-1.0.0", "OrderConfirmed-0.0.1"))
	assert.Equal(t, "emits", label(t, g, "Order-1.0.0", "OrderConfirmed-0.0.1"))
	assert.Equal(t, "informs", label(t, g, "OrderSummaryView-1.0.0", "CustomerSupportAgent-1.0.0"))
	assert.Equal(t, "issues", label(t, g, "CustomerSupportAgent-1.0.0", "UpdateInventory-1.0.0"))
	assert.Equal(t, "subscribes to", label(t, g, "UpdateInventory-1.0.0", "InventoryService-1.0.0"))
}

func TestBuildPolicy(t *testing.T) {
	t.Run("service as producer and consumer", func(t *testing.T) {
		snap := snapshot(
			rec(catalog.Policies, "OrderPolicy", "1.0.0", catalog.Data{
				Receives: []catalog.Reference{{ID: "OrderCreated", Version: "1.0.0"}},
				Sends:    []catalog.Reference{{ID: "ProcessOrder", Version: "1.0.0"}},
			}),
			rec(catalog.Events, "OrderCreated", "1.0.0", catalog.Data{}),
			rec(catalog.Commands, "ProcessOrder", "1.0.0", catalog.Data{}),
			rec(catalog.Services, "NotificationService", "1.0.0", catalog.Data{
				Sends:    refs("OrderCreated"),
				Receives: refs("ProcessOrder"),
			}),
		)
		g := BuildPolicy(snap, "OrderPolicy", "1.0.0", ModeSimple)

		assert.Len(t, g.Nodes, 4)
		assert.Len(t, g.Edges, 4)
		assert.Equal(t, "publishes event", label(t, g, "NotificationService-1.0.0", "OrderCreated-1.0.0"))
		assert.Equal(t, "triggered by", label(t, g, "OrderCreated-1.0.0", "OrderPolicy-1.0.0"))
		assert.Equal(t, "dispatches", label(t, g, "OrderPolicy-1.0.0", "ProcessOrder-1.0.0"))
		assert.Equal(t, "accepts", label(t, g, "ProcessOrder-1.0.0", "NotificationService-1.0.0"))

		for _, e := range g.Edges {
			if e.Target == "OrderPolicy-1.0.0" {
				assert.Equal(t, "triggered by", e.Label)
			}
		}
	})

	t.Run("channels on the policy", func(t *testing.T) {
		snap := snapshot(
			rec(catalog.Policies, "ChannelPolicy", "1.0.0", catalog.Data{
				Receives: []catalog.Reference{{ID: "PaymentReceived", From: refs("OrderChannel")}},
				Sends:    []catalog.Reference{{ID: "ChargePayment", To: refs("OrderChannel")}},
			}),
			rec(catalog.Events, "PaymentReceived", "1.0.0", catalog.Data{}),
			rec(catalog.Commands, "ChargePayment", "1.0.0", catalog.Data{}),
			rec(catalog.Channels, "OrderChannel", "1.0.0", catalog.Data{}),
		)
		g := BuildPolicy(snap, "ChannelPolicy", "1.0.0", ModeSimple)

		_, ok := g.Node("OrderChannel-1.0.0")
		assert.True(t, ok)
		assert.Equal(t, "routes to", label(t, g, "PaymentReceived-1.0.0", "OrderChannel-1.0.0"))
		assert.Equal(t, "triggered by", label(t, g, "OrderChannel-1.0.0", "ChannelPolicy-1.0.0"))
		assert.Equal(t, "dispatches", label(t, g, "ChannelPolicy-1.0.0", "ChargePayment-1.0.0"))
		assert.Equal(t, "routes to", label(t, g, "ChargePayment-1.0.0", "OrderChannel-1.0.0"))
	})

	t.Run("unlinked producer and consumer channels are both drawn", func(t *testing.T) {
		snap := snapshot(
			rec(catalog.Policies, "ShipPolicy", "1.0.0", catalog.Data{
				Receives: []catalog.Reference{{ID: "OrderPaid", From: refs("consumer.topic")}},
			}),
			rec(catalog.Events, "OrderPaid", "1.0.0", catalog.Data{}),
			rec(catalog.Services, "PaymentService", "1.0.0", catalog.Data{
				Sends: []catalog.Reference{{ID: "OrderPaid", To: refs("producer.topic")}},
			}),
			rec(catalog.Channels, "producer.topic", "1.0.0", catalog.Data{}),
			rec(catalog.Channels, "consumer.topic", "1.0.0", catalog.Data{}),
		)
		g := BuildPolicy(snap, "ShipPolicy", "1.0.0", ModeSimple)

		assert.ElementsMatch(t, []string{
			"ShipPolicy-1.0.0",
			"OrderPaid-1.0.0",
			"PaymentService-1.0.0",
			"producer.topic-1.0.0",
			"consumer.topic-1.0.0",
		}, g.NodeIDs())
		assert.Equal(t, "publishes event", label(t, g, "PaymentService-1.0.0", "OrderPaid-1.0.0"))
		assert.Equal(t, "routes to", label(t, g, "OrderPaid-1.0.0", "producer.topic-1.0.0"))
		assert.Equal(t, "routes to", label(t, g, "OrderPaid-1.0.0", "consumer.topic-1.0.0"))
		assert.Equal(t, "triggered by", label(t, g, "consumer.topic-1.0.0", "ShipPolicy-1.0.0"))
		_, direct := g.EdgeBetween("OrderPaid-1.0.0", "ShipPolicy-1.0.0")
		assert.False(t, direct)
	})

	t.Run("no producer is flagged", func(t *testing.T) {
		snap := snapshot(
			rec(catalog.Policies, "LonelyPolicy", "1.0.0", catalog.Data{Receives: refs("Orphaned")}),
			rec(catalog.Events, "Orphaned", "1.0.0", catalog.Data{}),
		)
		g := BuildPolicy(snap, "LonelyPolicy", "1.0.0", ModeSimple)

		e, ok := g.Edge("Orphaned-1.0.0-LonelyPolicy-1.0.0-warning")
		require.True(t, ok)
		assert.Equal(t, "triggered by", e.Label)
		assert.NotEmpty(t, e.Data.Warning)
	})

	t.Run("range references resolve to the highest match", func(t *testing.T) {
		snap := snapshot(
			rec(catalog.Policies, "RangePolicy", "1.0.0", catalog.Data{
				Receives: []catalog.Reference{{ID: "OrderCreated", Version: "^1.0.0"}},
			}),
			rec(catalog.Events, "OrderCreated", "1.5.0", catalog.Data{}),
			rec(catalog.Events, "OrderCreated", "2.0.0", catalog.Data{}),
		)
		g := BuildPolicy(snap, "RangePolicy", "1.0.0", ModeSimple)

		_, ok := g.Node("OrderCreated-1.5.0")
		assert.True(t, ok)
		_, ok = g.Node("OrderCreated-2.0.0")
		assert.False(t, ok)
	})
}

func TestIsolatedAndMissing(t *testing.T) {
	snap := snapshot(
		rec(catalog.Policies, "IdlePolicy", "1.0.0", catalog.Data{}),
		rec(catalog.Views, "IdleView", "1.0.0", catalog.Data{}),
		rec(catalog.Entities, "IdleEntity", "1.0.0", catalog.Data{}),
		rec(catalog.Actors, "IdleActor", "1.0.0", catalog.Data{}),
	)

	for kind, id := range map[Kind]string{
		KindPolicy: "IdlePolicy",
		KindView:   "IdleView",
		KindEntity: "IdleEntity",
		KindActor:  "IdleActor",
	} {
		t.Run(string(kind), func(t *testing.T) {
			g, err := Build(snap, kind, id, "1.0.0", ModeSimple)
			require.NoError(t, err)
			assert.Len(t, g.Nodes, 1)
			assert.Empty(t, g.Edges)
		})
	}

	t.Run("missing focal yields an empty graph", func(t *testing.T) {
		g, err := Build(snap, KindPolicy, "Nope", "1.0.0", ModeSimple)
		require.NoError(t, err)
		assert.NotNil(t, g.Nodes)
		assert.NotNil(t, g.Edges)
		assert.Empty(t, g.Nodes)
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := Build(snap, Kind("widget"), "IdlePolicy", "1.0.0", ModeSimple)
		assert.Error(t, err)
	})
}

func TestBuildEntity(t *testing.T) {
	t.Run("channel without a consumer side", func(t *testing.T) {
		snap := snapshot(
			rec(catalog.Entities, "Payment", "1.0.0", catalog.Data{
				Sends: []catalog.Reference{{ID: "OrderShipped", To: refs("OrderChannel")}},
			}),
			rec(catalog.Events, "OrderShipped", "1.0.0", catalog.Data{}),
			rec(catalog.Channels, "OrderChannel", "1.0.0", catalog.Data{}),
		)
		g := BuildEntity(snap, "Payment", "1.0.0", ModeSimple)

		_, ok := g.Node("OrderChannel-1.0.0")
		assert.True(t, ok)
		e, ok := g.Edge("OrderShipped-1.0.0-OrderChannel-1.0.0")
		require.True(t, ok)
		assert.Equal(t, "routes to", e.Label)
		assert.Equal(t, "emits", label(t, g, "Payment-1.0.0", "OrderShipped-1.0.0"))
	})

	t.Run("dangling channel falls back to direct connection", func(t *testing.T) {
		snap := snapshot(
			rec(catalog.Entities, "Payment", "1.0.0", catalog.Data{
				Sends: []catalog.Reference{{ID: "OrderShipped", To: refs("GhostChannel")}},
			}),
			rec(catalog.Events, "OrderShipped", "1.0.0", catalog.Data{}),
			rec(catalog.Services, "ShippingService", "1.0.0", catalog.Data{Receives: refs("OrderShipped")}),
		)
		g := BuildEntity(snap, "Payment", "1.0.0", ModeSimple)

		assert.Len(t, g.Nodes, 3)
		assert.Equal(t, "subscribed by", label(t, g, "OrderShipped-1.0.0", "ShippingService-1.0.0"))
		assert.Equal(t, 1, g.DiagnosticReasonCounts()[resolver.ReasonChannelMissing])
	})

	t.Run("receive side with chains", func(t *testing.T) {
		snap := snapshot(
			rec(catalog.Entities, "Payment", "1.0.0", catalog.Data{
				Receives: refs("ProcessPayment", "PaymentProcessed"),
				Sends:    refs("PaymentProcessed"),
			}),
			rec(catalog.Commands, "ProcessPayment", "1.0.0", catalog.Data{}),
			rec(catalog.Events, "PaymentProcessed", "1.0.0", catalog.Data{}),
			rec(catalog.Events, "OrderPlaced", "1.0.0", catalog.Data{}),
			rec(catalog.Policies, "PaymentPolicy", "1.0.0", catalog.Data{
				Receives: refs("OrderPlaced"),
				Sends:    refs("ProcessPayment"),
			}),
			rec(catalog.Services, "OrderService", "1.0.0", catalog.Data{Sends: refs("OrderPlaced")}),
			rec(catalog.Actors, "Cashier", "1.0.0", catalog.Data{Issues: refs("ProcessPayment")}),
		)
		g := BuildEntity(snap, "Payment", "1.0.0", ModeSimple)

		assert.Equal(t, "handles", label(t, g, "ProcessPayment-1.0.0", "Payment-1.0.0"))
		assert.Equal(t, "dispatches", label(t, g, "PaymentPolicy-1.0.0", "ProcessPayment-1.0.0"))
		assert.Equal(t, "triggers", label(t, g, "OrderPlaced-1.0.0", "PaymentPolicy-1.0.0"))
		assert.Equal(t, "publishes event", label(t, g, "OrderService-1.0.0", "OrderPlaced-1.0.0"))
		assert.Equal(t, "issues", label(t, g, "Cashier-1.0.0", "ProcessPayment-1.0.0"))
		assert.Equal(t, "emits", label(t, g, "Payment-1.0.0", "PaymentProcessed-1.0.0"))
		assert.Equal(t, "subscribes to", label(t, g, "PaymentProcessed-1.0.0", "Payment-1.0.0"))

		t.Run("focal appears once and never links to itself", func(t *testing.T) {
			count := 0
			for _, n := range g.Nodes {
				if n.ID == "Payment-1.0.0" {
					count++
				}
			}
			assert.Equal(t, 1, count)
			for _, e := range g.Edges {
				assert.NotEqual(t, e.Source, e.Target)
			}
		})
	})
}

func TestBuildMessage(t *testing.T) {
	t.Run("chained channels", func(t *testing.T) {
		snap := snapshot(
			rec(catalog.Events, "OrderCreated", "1.0.0", catalog.Data{}),
			rec(catalog.Services, "OrderService", "1.0.0", catalog.Data{
				Sends: []catalog.Reference{{ID: "OrderCreated", To: refs("orders.topic")}},
			}),
			rec(catalog.Services, "BillingService", "1.0.0", catalog.Data{
				Receives: []catalog.Reference{{ID: "OrderCreated", From: refs("billing.topic")}},
			}),
			rec(catalog.Services, "AuditService", "1.0.0", catalog.Data{
				Receives: []catalog.Reference{{ID: "OrderCreated", From: refs("audit.topic")}},
			}),
			rec(catalog.Channels, "orders.topic", "1.0.0", catalog.Data{Routes: refs("bridge")}),
			rec(catalog.Channels, "bridge", "1.0.0", catalog.Data{Routes: refs("billing.topic")}),
			rec(catalog.Channels, "billing.topic", "1.0.0", catalog.Data{}),
			rec(catalog.Channels, "audit.topic", "1.0.0", catalog.Data{}),
		)
		g := BuildMessage(snap, catalog.Events, "OrderCreated", "", ModeFull)

		assert.Equal(t, "publishes event", label(t, g, "OrderService-1.0.0", "OrderCreated-1.0.0"))
		assert.Equal(t, "routes to", label(t, g, "OrderCreated-1.0.0", "orders.topic-1.0.0"))
		assert.Equal(t, "routes to", label(t, g, "orders.topic-1.0.0", "bridge-1.0.0"))
		assert.Equal(t, "routes to", label(t, g, "bridge-1.0.0", "billing.topic-1.0.0"))
		assert.Equal(t, "subscribed by", label(t, g, "billing.topic-1.0.0", "BillingService-1.0.0"))

		// no chain to audit.topic: rendered straight from the message
		assert.Equal(t, "routes to", label(t, g, "OrderCreated-1.0.0", "audit.topic-1.0.0"))
		assert.Equal(t, "subscribed by", label(t, g, "audit.topic-1.0.0", "AuditService-1.0.0"))

		e, _ := g.EdgeBetween("billing.topic-1.0.0", "BillingService-1.0.0")
		require.NotNil(t, e.Data.RootSourceAndTarget)
		assert.Equal(t, "OrderCreated", e.Data.RootSourceAndTarget.Source.ID)
	})

	t.Run("service publishing and subscribing", func(t *testing.T) {
		snap := snapshot(
			rec(catalog.Events, "InventoryAdjusted", "1.0.0", catalog.Data{}),
			rec(catalog.Services, "InventoryService", "1.0.0", catalog.Data{
				Sends:    refs("InventoryAdjusted"),
				Receives: refs("InventoryAdjusted"),
			}),
		)
		g := BuildMessage(snap, catalog.Events, "InventoryAdjusted", "1.0.0", ModeSimple)

		e, ok := g.Edge("InventoryAdjusted-1.0.0-InventoryService-1.0.0-both")
		require.True(t, ok)
		assert.Equal(t, "publishes and subscribes", e.Label)
		assert.Equal(t, "subscribed by", label(t, g, "InventoryAdjusted-1.0.0", "InventoryService-1.0.0"))
	})

	t.Run("event chains through policies and views", func(t *testing.T) {
		snap := snapshot(
			rec(catalog.Events, "OrderCreated", "1.0.0", catalog.Data{}),
			rec(catalog.Policies, "OrderPolicy", "1.0.0", catalog.Data{
				Receives: refs("OrderCreated"),
				Sends:    refs("ProcessOrder"),
			}),
			rec(catalog.Commands, "ProcessOrder", "1.0.0", catalog.Data{}),
			rec(catalog.Entities, "Order", "1.0.0", catalog.Data{Receives: refs("ProcessOrder")}),
			rec(catalog.Views, "Dashboard", "1.0.0", catalog.Data{
				Subscribes: refs("OrderCreated"),
				Informs:    refs("Ops"),
			}),
			rec(catalog.Actors, "Ops", "1.0.0", catalog.Data{}),
			&catalog.Entity{ID: "HiddenView", Version: "1.0.0", Collection: catalog.Views, Hidden: true,
				Data: catalog.Data{Subscribes: refs("OrderCreated")}},
		)
		g := BuildMessage(snap, catalog.Events, "OrderCreated", "1.0.0", ModeSimple)

		assert.Equal(t, "triggers", label(t, g, "OrderCreated-1.0.0", "OrderPolicy-1.0.0"))
		assert.Equal(t, "dispatches", label(t, g, "OrderPolicy-1.0.0", "ProcessOrder-1.0.0"))
		assert.Equal(t, "handles", label(t, g, "ProcessOrder-1.0.0", "Order-1.0.0"))
		assert.Equal(t, "subscribes", label(t, g, "OrderCreated-1.0.0", "Dashboard-1.0.0"))
		assert.Equal(t, "informs", label(t, g, "Dashboard-1.0.0", "Ops-1.0.0"))
		_, hidden := g.Node("HiddenView-1.0.0")
		assert.False(t, hidden)
	})

	t.Run("not a message collection", func(t *testing.T) {
		g := BuildMessage(snapshot(), catalog.Services, "X", "", ModeSimple)
		assert.Empty(t, g.Nodes)
	})
}

func TestBuild_Idempotent(t *testing.T) {
	snap := actorFixture()
	g1 := BuildActor(snap, "CustomerSupportAgent", "1.0.0", ModeSimple)
	g2 := BuildActor(snap, "CustomerSupportAgent", "1.0.0", ModeSimple)

	assert.ElementsMatch(t, g1.NodeIDs(), g2.NodeIDs())
	var ids1, ids2 []string
	for _, e := range g1.Edges {
		ids1 = append(ids1, e.ID)
	}
	for _, e := range g2.Edges {
		ids2 = append(ids2, e.ID)
	}
	assert.ElementsMatch(t, ids1, ids2)

	Layout(g1, layout.NewLayered())
	Layout(g2, layout.NewLayered())
	assert.Equal(t, g1.Nodes, g2.Nodes)
}

func TestCanvas_FirstEdgeWins(t *testing.T) {
	a := rec(catalog.Services, "A", "1.0.0", catalog.Data{})
	b := rec(catalog.Events, "B", "1.0.0", catalog.Data{})
	c := newCanvas(a, "")

	c.edge(a, b, "publishes event")
	c.edge(a, b, "publishes event")
	c.edge(a, b, "sends to")
	g := c.graph()

	require.Len(t, g.Edges, 1)
	assert.Equal(t, "publishes event", g.Edges[0].Label)
	assert.Len(t, g.Nodes, 2)
	require.Len(t, g.Diagnostics, 1)
	assert.Equal(t, resolver.ReasonLabelConflict, g.Diagnostics[0].Reason)
	assert.Equal(t, ModeSimple, g.Nodes[0].Data.Mode)
}

func TestGraph_LabelCounts(t *testing.T) {
	g := BuildActor(actorFixture(), "CustomerSupportAgent", "1.0.0", ModeSimple)
	assert.Equal(t, map[string]int{
		"informs":       1,
		"issues":        1,
		"subscribes":    2,
		"subscribes to": 2,
	}, g.LabelCounts())

	var empty *Graph
	assert.Empty(t, empty.LabelCounts())
}

func TestGraph_Validate(t *testing.T) {
	t.Run("built graphs match the contract", func(t *testing.T) {
		snap := actorFixture()
		for _, g := range []*Graph{
			BuildActor(snap, "CustomerSupportAgent", "1.0.0", ModeFull),
			BuildView(snap, "OrderSummaryView", "", ModeSimple),
			BuildMessage(snap, catalog.Commands, "UpdateInventory", "", ModeSimple),
			BuildPolicy(snap, "Missing", "", ModeSimple),
		} {
			Layout(g, layout.NewLayered())
			assert.NoError(t, g.Validate())
		}
	})

	t.Run("contract violations", func(t *testing.T) {
		for name, raw := range map[string]string{
			"missing edges":     `{"nodes":[]}`,
			"node without data": `{"nodes":[{"id":"a","type":"actor","position":{"x":0,"y":0}}],"edges":[]}`,
			"unknown mode":      `{"nodes":[{"id":"a","type":"actor","data":{"mode":"huge","actor":{}},"position":{"x":0,"y":0}}],"edges":[]}`,
			"edge without data": `{"nodes":[],"edges":[{"id":"e","source":"a","target":"b","label":"x"}]}`,
			"not json":          `{`,
		} {
			assert.Error(t, ValidateJSON([]byte(raw)), name)
		}
	})
}

func TestColorFromString(t *testing.T) {
	c := colorFromString("OrderCreated")
	assert.Len(t, c, 7)
	assert.Equal(t, c, colorFromString("OrderCreated"))
	assert.NotEqual(t, c, colorFromString("OrderShipped"))
}

func TestGraph_JSONShape(t *testing.T) {
	g := BuildActor(actorFixture(), "CustomerSupportAgent", "1.0.0", ModeFull)
	Layout(g, layout.NewLayered())

	b, err := json.Marshal(g)
	require.NoError(t, err)

	var out struct {
		Nodes []struct {
			ID       string         `json:"id"`
			Type     string         `json:"type"`
			Data     map[string]any `json:"data"`
			Position Position       `json:"position"`
		} `json:"nodes"`
		Edges []map[string]any `json:"edges"`
	}
	require.NoError(t, json.Unmarshal(b, &out))
	require.NotEmpty(t, out.Nodes)
	assert.Equal(t, "full", out.Nodes[0].Data["mode"])
	assert.Contains(t, out.Nodes[0].Data, "actor")
	for _, e := range out.Edges {
		assert.Contains(t, e, "source")
		assert.Contains(t, e, "target")
		assert.Contains(t, e, "label")
		assert.Contains(t, e, "data")
	}
}

type fakeLoader struct {
	snap *pipeline.Snapshot
	err  error
}

func (f fakeLoader) Snapshot(context.Context) (*pipeline.Snapshot, error) {
	return f.snap, f.err
}

func TestBuilder_Build(t *testing.T) {
	ctx := context.Background()
	b := NewBuilder(fakeLoader{snap: actorFixture()})

	g, err := b.Build(ctx, KindActor, "CustomerSupportAgent", "1.0.0", ModeSimple)
	require.NoError(t, err)
	actor, _ := g.Node("CustomerSupportAgent-1.0.0")
	cmd, _ := g.Node("UpdateInventory-1.0.0")
	assert.Greater(t, cmd.Position.X, actor.Position.X)

	_, err = NewBuilder(fakeLoader{err: errors.New("offline")}).Build(ctx, KindActor, "X", "", ModeSimple)
	assert.Error(t, err)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("policies")
	require.NoError(t, err)
	assert.Equal(t, KindPolicy, k)

	k, err = ParseKind("event")
	require.NoError(t, err)
	assert.Equal(t, catalog.Events, k.Collection())

	_, err = ParseKind("service")
	assert.Error(t, err)
}
