package graph

import (
	"eventdocs/internal/catalog"
	"eventdocs/internal/pipeline"
)

// BuildActor: views the actor reads (with the events feeding them) and the
// commands it issues (with their consumers).
func BuildActor(snap *pipeline.Snapshot, id, version string, mode Mode) *Graph {
	actor := snap.Find(catalog.Actors, id, version)
	if actor == nil {
		return emptyGraph()
	}
	b := newBuild(snap, actor, mode)
	b.node(actor)

	for _, v := range b.keep(b.hydrate(actor, catalog.FieldReads, catalog.Views)) {
		b.edge(v, actor, labelInforms)
		for _, ev := range b.keep(b.hydrate(v, catalog.FieldSubscribes, catalog.Events)) {
			b.edge(ev, v, labelSubscribes)
		}
	}
	for _, cmd := range b.keep(b.hydrate(actor, catalog.FieldIssues, catalog.Commands)) {
		b.issuedCommand(actor, cmd)
	}
	return b.graph()
}

// BuildView: subscribed events with their producers, informed actors with the
// commands they issue.
func BuildView(snap *pipeline.Snapshot, id, version string, mode Mode) *Graph {
	view := snap.Find(catalog.Views, id, version)
	if view == nil {
		return emptyGraph()
	}
	b := newBuild(snap, view, mode)
	b.node(view)

	for _, ev := range b.keep(b.hydrate(view, catalog.FieldSubscribes, catalog.Events)) {
		b.edge(ev, view, labelSubscribes)
		b.linkProducers(ev)
	}
	for _, actor := range b.keep(b.hydrate(view, catalog.FieldInforms, catalog.Actors)) {
		b.edge(view, actor, labelInforms)
		for _, cmd := range b.keep(b.hydrate(actor, catalog.FieldIssues, catalog.Commands)) {
			b.issuedCommand(actor, cmd)
		}
	}
	return b.graph()
}

// BuildPolicy: triggering events with their producers, dispatched commands with
// their consumers.
func BuildPolicy(snap *pipeline.Snapshot, id, version string, mode Mode) *Graph {
	policy := snap.Find(catalog.Policies, id, version)
	if policy == nil {
		return emptyGraph()
	}
	b := newBuild(snap, policy, mode)
	b.node(policy)

	for _, ev := range b.keep(b.hydrate(policy, catalog.FieldReceives, catalog.Events)) {
		b.consumeInto(policy, ev, labelTriggeredBy)
	}
	for _, cmd := range b.keep(b.hydrate(policy, catalog.FieldSends, catalog.Commands)) {
		b.produceFrom(policy, cmd, labelDispatches)
	}
	return b.graph()
}

// BuildEntity: received messages with their producers and, for commands, the
// policies and actors behind them; sent messages with their consumers and, for
// events, the policies and views they drive.
func BuildEntity(snap *pipeline.Snapshot, id, version string, mode Mode) *Graph {
	entity := snap.Find(catalog.Entities, id, version)
	if entity == nil {
		return emptyGraph()
	}
	b := newBuild(snap, entity, mode)
	b.node(entity)

	for _, msg := range b.keep(b.hydrate(entity, catalog.FieldReceives, catalog.Messages...)) {
		b.consumeInto(entity, msg, entityReceiveLabel(msg))
		if msg.Collection == catalog.Commands {
			b.dispatchChain(msg)
			b.commandViewChain(msg)
		}
	}
	for _, msg := range b.keep(b.hydrate(entity, catalog.FieldSends, catalog.Messages...)) {
		b.produceFrom(entity, msg, labelEmits)
		if msg.Collection == catalog.Events {
			b.triggerChain(msg)
			b.eventViewChain(msg)
		}
	}
	return b.graph()
}

// BuildMessage draws an event, command or query with everything that sends or
// receives it.
func BuildMessage(snap *pipeline.Snapshot, collection catalog.Collection, id, version string, mode Mode) *Graph {
	if !collection.IsMessage() {
		return emptyGraph()
	}
	msg := snap.Find(collection, id, version)
	if msg == nil {
		return emptyGraph()
	}
	b := newBuild(snap, msg, mode)
	b.node(msg)

	producers := b.producers(msg)
	for _, p := range producers {
		b.edge(p, msg, producerLabel(p, msg))
		for _, ch := range b.sendChannels(p, msg) {
			b.edge(msg, ch, labelRoutesTo)
		}
	}

	pc := b.producerChannels(msg)
	consumers := b.consumers(msg)
	for _, k := range consumers {
		b.route(msg, pc, b.receiveChannels(k, msg), k, consumerLabel(k, msg))
	}

	for _, p := range producers {
		if p.Collection != catalog.Services {
			continue
		}
		for _, k := range consumers {
			if k.Same(p) {
				b.edge(msg, p, labelPubSub, withSuffix("-both"))
			}
		}
	}

	switch msg.Collection {
	case catalog.Events:
		b.triggerChain(msg)
		b.eventViewChain(msg)
	case catalog.Commands:
		b.dispatchChain(msg)
		b.commandViewChain(msg)
	}
	return b.graph()
}
