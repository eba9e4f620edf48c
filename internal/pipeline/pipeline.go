// Package pipeline turns raw collections into enriched, cached listings:
// hidden and superseded records filtered, relationships hydrated, version
// metadata and catalog paths attached.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"eventdocs/internal/catalog"
	"eventdocs/internal/index"
	"eventdocs/internal/observability"
	"eventdocs/internal/resolver"
	"eventdocs/internal/version"
)

// Relation is one relationship field after hydration. Both slices are always
// non-nil; Raw keeps references that did not resolve.
type Relation struct {
	Resolved []*catalog.Entity    `json:"resolved"`
	Raw      []catalog.Reference `json:"raw"`
}

// Paths are the computed catalog locations of a record.
type Paths struct {
	Type       string `json:"type"`
	Path       string `json:"path"`
	FilePath   string `json:"filePath"`
	PublicPath string `json:"publicPath"`
}

type Enriched struct {
	*catalog.Entity

	Versions      []string
	LatestVersion string
	Relations     map[catalog.Field]Relation
	Domains       []*catalog.Entity
	// ReadBy lists the actors reading a view.
	ReadBy []*catalog.Entity
	// Owned lists the entities a service declares.
	Owned   []*catalog.Entity
	Catalog Paths
}

func (e *Enriched) Resolved(f catalog.Field) []*catalog.Entity {
	if r, ok := e.Relations[f]; ok {
		return r.Resolved
	}
	return []*catalog.Entity{}
}

func (e *Enriched) Raw(f catalog.Field) []catalog.Reference {
	if r, ok := e.Relations[f]; ok {
		return r.Raw
	}
	return []catalog.Reference{}
}

func (e *Enriched) IsLatest() bool {
	return e.Version == e.LatestVersion
}

// MarshalJSON flattens relations into "<field>" and "<field>Raw" keys.
func (e *Enriched) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"id":            e.ID,
		"version":       e.Version,
		"collection":    e.Collection,
		"name":          e.DisplayName(),
		"summary":       e.Summary,
		"data":          e.Data,
		"versions":      e.Versions,
		"latestVersion": e.LatestVersion,
		"catalog":       e.Catalog,
		"domains":       keys(e.Domains),
	}
	for f, r := range e.Relations {
		out[string(f)] = keys(r.Resolved)
		out[string(f)+"Raw"] = r.Raw
	}
	if e.ReadBy != nil {
		out["readByActors"] = keys(e.ReadBy)
	}
	if e.Owned != nil {
		out["entities"] = keys(e.Owned)
	}
	return json.Marshal(out)
}

func keys(list []*catalog.Entity) []catalog.Reference {
	out := make([]catalog.Reference, 0, len(list))
	for _, e := range list {
		out = append(out, catalog.Reference{ID: e.ID, Version: e.Version})
	}
	return out
}

type Option func(*Pipeline)

func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

func WithMetrics(m *observability.Collector) Option {
	return func(p *Pipeline) { p.metrics = m }
}

func WithFolderResolver(r FolderResolver) Option {
	return func(p *Pipeline) { p.folders = r }
}

func WithCache(c *Cache) Option {
	return func(p *Pipeline) { p.cache = c }
}

func WithDiagnostics(d *resolver.Diagnostics) Option {
	return func(p *Pipeline) { p.diag = d }
}

// WithDirs sets the catalog project directory and the working directory
// catalog-files paths are computed under.
func WithDirs(projectDir, workDir string) Option {
	return func(p *Pipeline) {
		p.projectDir = projectDir
		p.workDir = workDir
	}
}

type Pipeline struct {
	source     Source
	folders    FolderResolver
	projectDir string
	workDir    string
	cache      *Cache
	diag       *resolver.Diagnostics
	logger     *zap.Logger
	metrics    *observability.Collector
}

func New(source Source, opts ...Option) *Pipeline {
	p := &Pipeline{
		source:     source,
		projectDir: ".",
		cache:      NewCache(),
		diag:       resolver.NewDiagnostics(),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.metrics != nil {
		p.diag.OnAdd(func(d resolver.Diagnostic) {
			p.metrics.UnresolvedReference(string(d.Reason))
		})
	}
	return p
}

func (p *Pipeline) Cache() *Cache {
	return p.cache
}

func (p *Pipeline) Diagnostics() *resolver.Diagnostics {
	return p.diag
}

func (p *Pipeline) Actors(ctx context.Context, allVersions bool) ([]*Enriched, error) {
	return p.enrich(ctx, catalog.Actors, allVersions)
}

func (p *Pipeline) Views(ctx context.Context, allVersions bool) ([]*Enriched, error) {
	return p.enrich(ctx, catalog.Views, allVersions)
}

func (p *Pipeline) Policies(ctx context.Context, allVersions bool) ([]*Enriched, error) {
	return p.enrich(ctx, catalog.Policies, allVersions)
}

func (p *Pipeline) Entities(ctx context.Context, allVersions bool) ([]*Enriched, error) {
	return p.enrich(ctx, catalog.Entities, allVersions)
}

func (p *Pipeline) Services(ctx context.Context, allVersions bool) ([]*Enriched, error) {
	return p.enrich(ctx, catalog.Services, allVersions)
}

// Collection enriches any known collection by name. Collections outside the
// relationship graph get version metadata and paths only.
func (p *Pipeline) Collection(ctx context.Context, name string, allVersions bool) ([]*Enriched, error) {
	c, ok := catalog.ParseCollection(name)
	if !ok {
		return nil, fmt.Errorf("unknown collection %q", name)
	}
	return p.enrich(ctx, c, allVersions)
}

// dependencies lists the collections an enrichment of c reads.
func dependencies(c catalog.Collection) []catalog.Collection {
	deps := []catalog.Collection{c}
	add := func(more ...catalog.Collection) {
		for _, m := range more {
			dup := false
			for _, d := range deps {
				if d == m {
					dup = true
					break
				}
			}
			if !dup {
				deps = append(deps, m)
			}
		}
	}
	for _, rf := range catalog.Schema(c) {
		add(rf.Targets...)
	}
	switch c {
	case catalog.Services, catalog.Entities, catalog.Policies, catalog.Views:
		add(catalog.Domains)
	}
	switch c {
	case catalog.Views:
		add(catalog.Actors)
	case catalog.Services:
		add(catalog.Entities)
	}
	return deps
}

func (p *Pipeline) enrich(ctx context.Context, c catalog.Collection, allVersions bool) ([]*Enriched, error) {
	mode := modeFor(allVersions)
	if cached, ok := p.cache.Get(c, mode); ok {
		p.metrics.CacheLookup(string(c), string(mode), true)
		return cached, nil
	}
	p.metrics.CacheLookup(string(c), string(mode), false)

	gen := p.cache.Generation()
	loaded, err := Load(ctx, p.source, dependencies(c)...)
	if err != nil {
		return nil, err
	}

	maps := make(map[catalog.Collection]*resolver.VersionedMap, len(loaded))
	for col, items := range loaded {
		maps[col] = resolver.NewVersionedMap(items)
	}
	own := maps[c]

	targets := make(map[catalog.Field]*resolver.VersionedMap)
	for _, rf := range catalog.Schema(c) {
		var cols [][]*catalog.Entity
		for _, t := range rf.Targets {
			cols = append(cols, loaded[t])
		}
		targets[rf.Field] = resolver.Merge(cols...)
	}

	domains := latestOnly(loaded[catalog.Domains], maps[catalog.Domains])

	out := make([]*Enriched, 0, len(loaded[c]))
	for _, e := range loaded[c] {
		if e == nil || e.Hidden {
			continue
		}
		if !allVersions && !own.IsLatest(e) {
			continue
		}

		latest := own.Latest(e.ID)
		item := &Enriched{
			Entity:        e,
			Versions:      own.Versions(e.ID),
			LatestVersion: latest.Version,
			Relations:     make(map[catalog.Field]Relation),
			Domains:       domainsReferencing(domains, c, e, own),
			Catalog:       p.paths(c, e),
		}
		for _, rf := range catalog.Schema(c) {
			item.Relations[rf.Field] = Relation{
				Resolved: resolver.HydrateField(e, rf.Field, targets[rf.Field], p.diag),
				Raw:      e.Refs(rf.Field),
			}
		}
		switch c {
		case catalog.Views:
			item.ReadBy = index.ActorsReading(visible(loaded[catalog.Actors]), e)
		case catalog.Services:
			item.Owned, _ = resolver.Hydrate(e, "entities", e.Data.Entities, maps[catalog.Entities], p.diag)
		}
		out = append(out, item)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.DisplayName() != b.DisplayName() {
			return a.DisplayName() < b.DisplayName()
		}
		if a.ID != b.ID {
			return a.ID < b.ID
		}
		return version.Compare(a.Version, b.Version) > 0
	})

	p.logger.Debug("enriched collection",
		zap.String("collection", string(c)),
		zap.String("mode", string(mode)),
		zap.Int("records", len(out)),
		zap.Int("diagnostics", p.diag.Len()),
	)
	return p.cache.Put(c, mode, gen, out), nil
}

func (p *Pipeline) paths(c catalog.Collection, e *catalog.Entity) Paths {
	entry := e.EntryID
	for _, suffix := range []string{"/index.mdx", "/index.md", "index.mdx", "index.md"} {
		entry = strings.TrimSuffix(entry, suffix)
	}
	if entry == "" {
		entry = e.ID
	}

	folder := ""
	if p.folders != nil {
		name, err := p.folders.FolderName(p.projectDir, e.ID, e.Version)
		if err != nil {
			p.logger.Warn("failed to resolve folder name",
				zap.String("id", e.ID),
				zap.String("version", e.Version),
				zap.Error(err),
			)
		}
		folder = name
	}
	if folder == "" {
		folder = e.ID
	}

	return Paths{
		Type:       e.Collection.Singular(),
		Path:       path.Join(string(c), entry),
		FilePath:   filepath.Join(p.workDir, "src", "catalog-files", string(c), filepath.FromSlash(entry)),
		PublicPath: path.Join("/generated", string(c), folder),
	}
}

// domainsReferencing returns the domains listing e. An unversioned membership
// reference only matches the latest record of e's family.
func domainsReferencing(domains []*catalog.Entity, c catalog.Collection, e *catalog.Entity, family *resolver.VersionedMap) []*catalog.Entity {
	out := []*catalog.Entity{}
	for _, d := range domains {
		for _, ref := range d.Data.Collects(c) {
			if ref.ID != e.ID {
				continue
			}
			if version.IsLatest(ref.Version) && !family.IsLatest(e) {
				continue
			}
			if !version.IsLatest(ref.Version) && !version.Satisfies(e.Version, ref.Version) {
				continue
			}
			out = append(out, d)
			break
		}
	}
	return out
}

func latestOnly(items []*catalog.Entity, m *resolver.VersionedMap) []*catalog.Entity {
	var out []*catalog.Entity
	for _, e := range items {
		if !e.Hidden && m.IsLatest(e) {
			out = append(out, e)
		}
	}
	return out
}

func visible(items []*catalog.Entity) []*catalog.Entity {
	var out []*catalog.Entity
	for _, e := range items {
		if !e.Hidden {
			out = append(out, e)
		}
	}
	return out
}
