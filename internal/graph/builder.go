package graph

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"eventdocs/internal/layout"
	"eventdocs/internal/observability"
	"eventdocs/internal/pipeline"
)

// SnapshotLoader provides the collections a graph is built from.
type SnapshotLoader interface {
	Snapshot(ctx context.Context) (*pipeline.Snapshot, error)
}

type Option func(*Builder)

func WithLayout(e layout.Engine) Option {
	return func(b *Builder) { b.engine = e }
}

func WithLogger(l *zap.Logger) Option {
	return func(b *Builder) { b.logger = l }
}

func WithMetrics(m *observability.Collector) Option {
	return func(b *Builder) { b.metrics = m }
}

// Builder loads a fresh snapshot per call, builds the graph for one focal
// record and lays it out. Graphs are never cached.
type Builder struct {
	loader  SnapshotLoader
	engine  layout.Engine
	logger  *zap.Logger
	metrics *observability.Collector
}

func NewBuilder(loader SnapshotLoader, opts ...Option) *Builder {
	b := &Builder{
		loader: loader,
		engine: layout.NewLayered(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Builder) Build(ctx context.Context, kind Kind, id, version string, mode Mode) (*Graph, error) {
	start := time.Now()

	snap, err := b.loader.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load collections: %w", err)
	}

	g, err := Build(snap, kind, id, version, mode)
	if err != nil {
		return nil, err
	}
	Layout(g, b.engine)

	for _, d := range g.Diagnostics {
		b.logger.Warn("graph diagnostic",
			zap.String("kind", string(kind)),
			zap.String("focal", id),
			zap.String("reason", string(d.Reason)),
			zap.String("target", d.Target),
			zap.String("detail", d.Detail),
		)
	}
	b.metrics.GraphBuilt(string(kind), len(g.Nodes) > 0, len(g.Nodes), time.Since(start))
	return g, nil
}

// Build dispatches to the builder for kind. It never lays out.
func Build(snap *pipeline.Snapshot, kind Kind, id, version string, mode Mode) (*Graph, error) {
	switch kind {
	case KindActor:
		return BuildActor(snap, id, version, mode), nil
	case KindView:
		return BuildView(snap, id, version, mode), nil
	case KindPolicy:
		return BuildPolicy(snap, id, version, mode), nil
	case KindEntity:
		return BuildEntity(snap, id, version, mode), nil
	case KindEvent, KindCommand, KindQuery:
		return BuildMessage(snap, kind.Collection(), id, version, mode), nil
	}
	return nil, fmt.Errorf("unknown graph kind %q", kind)
}

// Layout assigns positions to every node of g using engine.
func Layout(g *Graph, engine layout.Engine) {
	if g == nil || engine == nil || len(g.Nodes) == 0 {
		return
	}
	boxes := make([]layout.Box, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		boxes = append(boxes, layout.Box{ID: n.ID, Width: layout.NodeWidth, Height: layout.NodeHeight})
	}
	links := make([]layout.Link, 0, len(g.Edges))
	for _, e := range g.Edges {
		links = append(links, layout.Link{Source: e.Source, Target: e.Target})
	}

	pos := engine.Layout(boxes, links)
	for i := range g.Nodes {
		if p, ok := pos[g.Nodes[i].ID]; ok {
			g.Nodes[i].Position = Position{X: p.X, Y: p.Y}
		}
	}
}
