package channel

import (
	"eventdocs/internal/catalog"
	"eventdocs/internal/resolver"
)

// Network is the channel adjacency graph. A channel links to the channels in
// its routes; the graph is built once and searched many times.
type Network struct {
	channels *resolver.VersionedMap
	byKey    map[string]*catalog.Entity
	adj      map[string][]string
}

func NewNetwork(channels []*catalog.Entity) *Network {
	n := &Network{
		channels: resolver.NewVersionedMap(channels),
		byKey:    make(map[string]*catalog.Entity, len(channels)),
		adj:      make(map[string][]string, len(channels)),
	}
	for _, ch := range channels {
		if ch == nil {
			continue
		}
		n.byKey[ch.Key()] = ch
	}
	for _, ch := range channels {
		if ch == nil {
			continue
		}
		seen := make(map[string]bool)
		for _, route := range ch.Data.Routes {
			next := n.channels.FindRef(route)
			if next == nil || seen[next.Key()] {
				continue
			}
			seen[next.Key()] = true
			n.adj[ch.Key()] = append(n.adj[ch.Key()], next.Key())
		}
	}
	return n
}

// Resolve finds a channel by reference, or nil when it does not exist.
func (n *Network) Resolve(ref catalog.Reference) *catalog.Entity {
	if n == nil {
		return nil
	}
	return n.channels.FindRef(ref)
}

// ResolveAll resolves refs, dropping the ones that do not exist.
func (n *Network) ResolveAll(refs []catalog.Reference) []*catalog.Entity {
	if n == nil {
		return []*catalog.Entity{}
	}
	out := make([]*catalog.Entity, 0, len(refs))
	for _, ref := range refs {
		if ch := n.Resolve(ref); ch != nil {
			out = append(out, ch)
		}
	}
	return out
}

// Connected reports whether a routes directly to b.
func (n *Network) Connected(a, b *catalog.Entity) bool {
	if n == nil || a == nil || b == nil {
		return false
	}
	for _, next := range n.adj[a.Key()] {
		if next == b.Key() {
			return true
		}
	}
	return false
}

// Chain returns the shortest ordered channel path from -> to, including both
// ends. The same channel yields a one element chain; unreachable channels
// yield an empty chain. Cycles in the routes are safe.
func (n *Network) Chain(from, to *catalog.Entity) []*catalog.Entity {
	if n == nil || from == nil || to == nil {
		return []*catalog.Entity{}
	}
	if from.Key() == to.Key() {
		return []*catalog.Entity{from}
	}

	parent := map[string]string{from.Key(): ""}
	queue := []string{from.Key()}
	found := false
	for len(queue) > 0 && !found {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range n.adj[cur] {
			if _, seen := parent[next]; seen {
				continue
			}
			parent[next] = cur
			if next == to.Key() {
				found = true
				break
			}
			queue = append(queue, next)
		}
	}
	if !found {
		return []*catalog.Entity{}
	}

	var keys []string
	for k := to.Key(); k != ""; k = parent[k] {
		keys = append(keys, k)
	}
	out := make([]*catalog.Entity, 0, len(keys))
	for i := len(keys) - 1; i >= 0; i-- {
		ch := n.byKey[keys[i]]
		if ch == nil {
			// from/to may be records that were not part of the network.
			if keys[i] == from.Key() {
				ch = from
			} else {
				ch = to
			}
		}
		out = append(out, ch)
	}
	return out
}

// GetChannelChain builds a network over all and searches it once.
func GetChannelChain(producer, consumer *catalog.Entity, all []*catalog.Entity) []*catalog.Entity {
	return NewNetwork(all).Chain(producer, consumer)
}

// IsChannelsConnected reports direct adjacency of a and b within all.
func IsChannelsConnected(a, b *catalog.Entity, all []*catalog.Entity) bool {
	return NewNetwork(all).Connected(a, b)
}
