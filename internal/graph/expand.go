package graph

import (
	"eventdocs/internal/catalog"
	"eventdocs/internal/index"
	"eventdocs/internal/pipeline"
	"eventdocs/internal/resolver"
)

// build ties a canvas to the snapshot it reads from.
type build struct {
	*canvas
	snap *pipeline.Snapshot
}

func newBuild(snap *pipeline.Snapshot, focal *catalog.Entity, mode Mode) *build {
	return &build{canvas: newCanvas(focal, mode), snap: snap}
}

// hydrate resolves a field of e against the collections it may target.
func (b *build) hydrate(e *catalog.Entity, field catalog.Field, targets ...catalog.Collection) []*catalog.Entity {
	var m *resolver.VersionedMap
	if len(targets) == 1 {
		m = b.snap.Map(targets[0])
	} else {
		m = b.snap.Messages
	}
	return resolver.HydrateField(e, field, m, nil)
}

// terminals are the services and entities that can produce or consume messages.
func (b *build) terminals() []*catalog.Entity {
	var out []*catalog.Entity
	out = append(out, b.snap.Visible(catalog.Services)...)
	out = append(out, b.snap.Visible(catalog.Entities)...)
	return out
}

func (b *build) producers(msg *catalog.Entity) []*catalog.Entity {
	return b.keep(index.ProducersOf(b.terminals(), msg))
}

func (b *build) consumers(msg *catalog.Entity) []*catalog.Entity {
	return b.keep(index.ConsumersOf(b.terminals(), msg))
}

// channels resolves the channel refs owner declared for msg on field.
func (b *build) channels(owner *catalog.Entity, field catalog.Field, msg *catalog.Entity) []*catalog.Entity {
	ref, ok := index.MatchingRef(owner, field, msg)
	if !ok {
		return nil
	}
	refs := ref.To
	if field == catalog.FieldReceives {
		refs = ref.From
	}
	out := make([]*catalog.Entity, 0, len(refs))
	for _, r := range refs {
		ch := b.snap.Network.Resolve(r)
		if ch == nil {
			b.missingChannel(owner, r)
			continue
		}
		out = append(out, ch)
	}
	return out
}

func (b *build) sendChannels(producer, msg *catalog.Entity) []*catalog.Entity {
	return b.channels(producer, catalog.FieldSends, msg)
}

func (b *build) receiveChannels(consumer, msg *catalog.Entity) []*catalog.Entity {
	return b.channels(consumer, catalog.FieldReceives, msg)
}

// producerChannels is the union of the outbound channels every producer of
// msg declared for it, the focal record included.
func (b *build) producerChannels(msg *catalog.Entity) []*catalog.Entity {
	candidates := index.ProducersOf(b.terminals(), msg)
	candidates = append(candidates, index.PoliciesDispatching(b.snap.Visible(catalog.Policies), msg)...)
	seen := make(map[string]bool)
	var out []*catalog.Entity
	for _, p := range candidates {
		for _, ch := range b.sendChannels(p, msg) {
			if seen[ch.Key()] {
				continue
			}
			seen[ch.Key()] = true
			out = append(out, ch)
		}
	}
	return out
}

// linkProducers draws every other terminal producer of msg.
func (b *build) linkProducers(msg *catalog.Entity) {
	for _, p := range b.producers(msg) {
		b.edge(p, msg, producerLabel(p, msg))
	}
}

// route connects msg to consumer through the declared channels:
// none declared connects directly; a single producer channel routes through
// it; consumer channels are reached through the shortest channel chain from a
// producer channel. When no chain exists both sides' channels hang off the
// message.
func (b *build) route(msg *catalog.Entity, producerChannels, consumerChannels []*catalog.Entity, consumer *catalog.Entity, label string, opts ...edgeOpt) {
	switch {
	case len(consumerChannels) == 0 && len(producerChannels) == 1:
		ch := producerChannels[0]
		b.edge(msg, ch, labelRoutesTo)
		b.edge(ch, consumer, label, withRoot(msg, consumer))
	case len(consumerChannels) == 0:
		b.edge(msg, consumer, label, opts...)
	case len(producerChannels) == 0:
		for _, cc := range consumerChannels {
			b.edge(msg, cc, labelRoutesTo)
			b.edge(cc, consumer, label, withRoot(msg, consumer))
		}
	default:
		for _, cc := range consumerChannels {
			linked := false
			for _, pc := range producerChannels {
				chain := b.snap.Network.Chain(pc, cc)
				if len(chain) == 0 {
					continue
				}
				linked = true
				b.edge(msg, chain[0], labelRoutesTo)
				for i := 0; i+1 < len(chain); i++ {
					b.edge(chain[i], chain[i+1], labelRoutesTo, withRoot(msg, consumer))
				}
				b.edge(chain[len(chain)-1], consumer, label, withRoot(msg, consumer))
			}
			if !linked {
				for _, pc := range producerChannels {
					b.edge(msg, pc, labelRoutesTo)
				}
				b.edge(msg, cc, labelRoutesTo)
				b.edge(cc, consumer, label, withRoot(msg, consumer))
			}
		}
	}
}

// consumeInto draws everything needed to show focal consuming msg.
func (b *build) consumeInto(focal, msg *catalog.Entity, label string) {
	b.node(msg)
	b.linkProducers(msg)

	pc := b.producerChannels(msg)
	cc := b.receiveChannels(focal, msg)
	var opts []edgeOpt
	if len(pc) == 0 && len(cc) == 0 && len(b.producers(msg)) == 0 && len(b.dispatchers(msg)) == 0 {
		opts = append(opts, withWarning("no producer found for this message"))
	}
	b.route(msg, pc, cc, focal, label, opts...)
}

// produceFrom draws focal sending msg, the channels focal declared, and the
// consumers of msg.
func (b *build) produceFrom(focal, msg *catalog.Entity, label string) {
	b.edge(focal, msg, label)
	own := b.sendChannels(focal, msg)
	for _, ch := range own {
		b.edge(msg, ch, labelRoutesTo)
	}
	for _, k := range b.consumers(msg) {
		b.route(msg, own, b.receiveChannels(k, msg), k, consumerLabel(k, msg))
	}
}

func (b *build) dispatchers(cmd *catalog.Entity) []*catalog.Entity {
	return b.keep(index.PoliciesDispatching(b.snap.Visible(catalog.Policies), cmd))
}

// dispatchChain: command <- dispatching policies <- triggering events <- their producers.
func (b *build) dispatchChain(cmd *catalog.Entity) {
	for _, pol := range b.dispatchers(cmd) {
		b.edge(pol, cmd, labelDispatches)
		for _, ev := range b.keep(b.hydrate(pol, catalog.FieldReceives, catalog.Events)) {
			b.edge(ev, pol, labelTriggers)
			b.linkProducers(ev)
		}
	}
}

// triggerChain: event -> triggered policies -> dispatched commands -> their consumers.
func (b *build) triggerChain(ev *catalog.Entity) {
	for _, pol := range b.keep(index.PoliciesTriggeredBy(b.snap.Visible(catalog.Policies), ev)) {
		b.edge(ev, pol, labelTriggers)
		for _, cmd := range b.keep(b.hydrate(pol, catalog.FieldSends, catalog.Commands)) {
			b.edge(pol, cmd, labelDispatches)
			for _, k := range b.consumers(cmd) {
				b.edge(cmd, k, consumerLabel(k, cmd))
			}
		}
	}
}

// eventViewChain: event -> subscribed views -> informed actors.
func (b *build) eventViewChain(ev *catalog.Entity) {
	for _, v := range b.keep(index.ViewsSubscribedTo(b.snap.Visible(catalog.Views), ev)) {
		b.edge(ev, v, labelSubscribes)
		for _, a := range b.keep(b.hydrate(v, catalog.FieldInforms, catalog.Actors)) {
			b.edge(v, a, labelInforms)
		}
	}
}

// commandViewChain: views read -> issuing actors -> command.
func (b *build) commandViewChain(cmd *catalog.Entity) {
	for _, a := range b.keep(index.ActorsIssuing(b.snap.Visible(catalog.Actors), cmd)) {
		b.edge(a, cmd, labelIssues)
		for _, v := range b.keep(b.hydrate(a, catalog.FieldReads, catalog.Views)) {
			b.edge(v, a, labelInforms)
		}
	}
}

// issuedCommand draws actor -> command and every terminal consumer of it.
func (b *build) issuedCommand(actor, cmd *catalog.Entity) {
	b.edge(actor, cmd, labelIssues)
	for _, k := range b.consumers(cmd) {
		b.route(cmd, nil, b.receiveChannels(k, cmd), k, labelSubscribesTo)
	}
}
