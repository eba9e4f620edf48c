// Package index answers reverse relationship questions over loaded
// collections: who produces a message, which policies an event triggers, which
// actors read a view. Every query is a pure function with no I/O.
package index

import (
	"eventdocs/internal/catalog"
	"eventdocs/internal/version"
)

// Matches reports whether ref points at target: ids are equal and the ref is
// unversioned, "latest", or its range is satisfied by target's version.
func Matches(ref catalog.Reference, target *catalog.Entity) bool {
	if target == nil || ref.ID != target.ID {
		return false
	}
	return version.IsLatest(ref.Version) || version.Satisfies(target.Version, ref.Version)
}

// MatchingRef returns the first reference in e's field that points at target.
func MatchingRef(e *catalog.Entity, field catalog.Field, target *catalog.Entity) (catalog.Reference, bool) {
	for _, ref := range e.Refs(field) {
		if Matches(ref, target) {
			return ref, true
		}
	}
	return catalog.Reference{}, false
}

// Referencing returns the candidates whose field has a reference to target,
// in candidate order.
func Referencing(candidates []*catalog.Entity, field catalog.Field, target *catalog.Entity) []*catalog.Entity {
	out := []*catalog.Entity{}
	if target == nil {
		return out
	}
	for _, c := range candidates {
		if c == nil {
			continue
		}
		if _, ok := MatchingRef(c, field, target); ok {
			out = append(out, c)
		}
	}
	return out
}

// ProducersOf returns services or entities that send msg.
func ProducersOf(candidates []*catalog.Entity, msg *catalog.Entity) []*catalog.Entity {
	return Referencing(candidates, catalog.FieldSends, msg)
}

// ConsumersOf returns services or entities that receive msg.
func ConsumersOf(candidates []*catalog.Entity, msg *catalog.Entity) []*catalog.Entity {
	return Referencing(candidates, catalog.FieldReceives, msg)
}

func PoliciesTriggeredBy(policies []*catalog.Entity, event *catalog.Entity) []*catalog.Entity {
	return Referencing(policies, catalog.FieldReceives, event)
}

func PoliciesDispatching(policies []*catalog.Entity, command *catalog.Entity) []*catalog.Entity {
	return Referencing(policies, catalog.FieldSends, command)
}

func ViewsSubscribedTo(views []*catalog.Entity, event *catalog.Entity) []*catalog.Entity {
	return Referencing(views, catalog.FieldSubscribes, event)
}

func ViewsInforming(views []*catalog.Entity, actor *catalog.Entity) []*catalog.Entity {
	return Referencing(views, catalog.FieldInforms, actor)
}

func ActorsReading(actors []*catalog.Entity, view *catalog.Entity) []*catalog.Entity {
	return Referencing(actors, catalog.FieldReads, view)
}

func ActorsIssuing(actors []*catalog.Entity, command *catalog.Entity) []*catalog.Entity {
	return Referencing(actors, catalog.FieldIssues, command)
}

// Without drops every record identical to self in collection, id and version.
func Without(list []*catalog.Entity, self *catalog.Entity) []*catalog.Entity {
	if self == nil {
		return list
	}
	out := make([]*catalog.Entity, 0, len(list))
	for _, e := range list {
		if !e.Same(self) {
			out = append(out, e)
		}
	}
	return out
}
