package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"eventdocs/internal/catalog"
	"eventdocs/internal/graph"
)

var ErrNotFound = errors.New("not found")

// Store combines record and saved graph persistence.
type Store interface {
	RecordStore
	GraphStore
	Close() error
}

// RecordStore persists catalog snapshots and serves them back as a source.
type RecordStore interface {
	// SaveRecords replaces the stored snapshot with records.
	SaveRecords(ctx context.Context, records map[catalog.Collection][]*catalog.Entity) error

	// Collection returns every stored record of c.
	Collection(ctx context.Context, c catalog.Collection) ([]*catalog.Entity, error)
}

// GraphStore keeps rendered graphs so they can be shared by id.
type GraphStore interface {
	SaveGraph(ctx context.Context, kind graph.Kind, id, version string, mode graph.Mode, g *graph.Graph) (string, error)
	LoadGraph(ctx context.Context, graphID string) (*SavedGraph, error)
}

// SavedGraph is a stored graph. Body is the graph exactly as it was rendered.
type SavedGraph struct {
	ID        string          `json:"id"`
	Kind      graph.Kind      `json:"kind"`
	FocalID   string          `json:"focalId"`
	Version   string          `json:"version"`
	Mode      graph.Mode      `json:"mode"`
	CreatedAt time.Time       `json:"createdAt"`
	Body      json.RawMessage `json:"graph"`
}
