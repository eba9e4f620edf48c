package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"eventdocs/internal/catalog"
	"eventdocs/internal/channel"
	"eventdocs/internal/resolver"
)

// Source serves raw records by collection. Implementations must be safe for
// concurrent use; collections are fetched in parallel.
type Source interface {
	Collection(ctx context.Context, c catalog.Collection) ([]*catalog.Entity, error)
}

// FolderResolver maps a record to the folder name it was authored in. An
// empty name means unknown.
type FolderResolver interface {
	FolderName(projectDir, id, version string) (string, error)
}

// Load fetches the given collections concurrently.
func Load(ctx context.Context, src Source, cols ...catalog.Collection) (map[catalog.Collection][]*catalog.Entity, error) {
	g, gctx := errgroup.WithContext(ctx)
	results := make([][]*catalog.Entity, len(cols))
	for i, c := range cols {
		g.Go(func() error {
			items, err := src.Collection(gctx, c)
			if err != nil {
				return fmt.Errorf("failed to load %s: %w", c, err)
			}
			results[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[catalog.Collection][]*catalog.Entity, len(cols))
	for i, c := range cols {
		out[c] = results[i]
	}
	return out, nil
}

// graphCollections are the collections a per-entity graph can touch.
var graphCollections = []catalog.Collection{
	catalog.Events, catalog.Commands, catalog.Queries, catalog.Services,
	catalog.Entities, catalog.Policies, catalog.Views, catalog.Actors,
	catalog.Channels, catalog.Domains,
}

// Snapshot is one consistent load of the graph collections with their
// versioned maps and the channel network built once.
type Snapshot struct {
	collections map[catalog.Collection][]*catalog.Entity
	maps        map[catalog.Collection]*resolver.VersionedMap

	Messages *resolver.VersionedMap
	Network  *channel.Network
}

func NewSnapshot(collections map[catalog.Collection][]*catalog.Entity) *Snapshot {
	s := &Snapshot{
		collections: make(map[catalog.Collection][]*catalog.Entity, len(collections)),
		maps:        make(map[catalog.Collection]*resolver.VersionedMap, len(collections)),
	}
	for c, items := range collections {
		s.collections[c] = items
		s.maps[c] = resolver.NewVersionedMap(items)
	}
	s.Messages = resolver.Merge(s.All(catalog.Events), s.All(catalog.Commands), s.All(catalog.Queries))
	s.Network = channel.NewNetwork(s.All(catalog.Channels))
	return s
}

// All returns every record of c, hidden ones included.
func (s *Snapshot) All(c catalog.Collection) []*catalog.Entity {
	return s.collections[c]
}

// Map returns the versioned map of c. Unknown collections get an empty map.
func (s *Snapshot) Map(c catalog.Collection) *resolver.VersionedMap {
	if m, ok := s.maps[c]; ok {
		return m
	}
	return resolver.NewVersionedMap(nil)
}

// Visible returns the records of c that are not hidden.
func (s *Snapshot) Visible(c catalog.Collection) []*catalog.Entity {
	var out []*catalog.Entity
	for _, e := range s.collections[c] {
		if !e.Hidden {
			out = append(out, e)
		}
	}
	return out
}

// Find resolves id/version in collection c.
func (s *Snapshot) Find(c catalog.Collection, id, ver string) *catalog.Entity {
	return s.Map(c).Find(id, ver)
}

// Snapshot loads every graph collection concurrently. Snapshots are never
// cached; each call reflects the source at call time.
func (p *Pipeline) Snapshot(ctx context.Context) (*Snapshot, error) {
	loaded, err := Load(ctx, p.source, graphCollections...)
	if err != nil {
		return nil, err
	}
	return NewSnapshot(loaded), nil
}

// Records loads every collection the source serves, unenriched.
func (p *Pipeline) Records(ctx context.Context) (map[catalog.Collection][]*catalog.Entity, error) {
	return Load(ctx, p.source, catalog.All...)
}
