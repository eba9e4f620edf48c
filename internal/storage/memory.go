package storage

import (
	"context"
	"sync"

	"eventdocs/internal/catalog"
)

// Memory is an in-memory record source. Replace swaps the whole snapshot, so
// readers never see a partial rescan.
type Memory struct {
	mu      sync.RWMutex
	records map[catalog.Collection][]*catalog.Entity
}

func NewMemory(records map[catalog.Collection][]*catalog.Entity) *Memory {
	m := &Memory{}
	m.Replace(records)
	return m
}

func (m *Memory) Replace(records map[catalog.Collection][]*catalog.Entity) {
	next := make(map[catalog.Collection][]*catalog.Entity, len(records))
	for c, items := range records {
		next[c] = append([]*catalog.Entity(nil), items...)
	}
	m.mu.Lock()
	m.records = next
	m.mu.Unlock()
}

func (m *Memory) SaveRecords(_ context.Context, records map[catalog.Collection][]*catalog.Entity) error {
	m.Replace(records)
	return nil
}

func (m *Memory) Collection(ctx context.Context, c catalog.Collection) ([]*catalog.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*catalog.Entity{}, m.records[c]...), nil
}

// FolderName implements pipeline.FolderResolver from the stored entry ids.
func (m *Memory) FolderName(_, id, ver string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var family []*catalog.Entity
	for _, items := range m.records {
		for _, e := range items {
			if e.ID == id {
				family = append(family, e)
			}
		}
	}
	return folderOf(family, ver), nil
}
