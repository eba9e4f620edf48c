package resolver

import (
	"eventdocs/internal/catalog"
	"eventdocs/internal/version"
)

// VersionedMap groups records by id. Each family is sorted latest first when
// the map is built, so lookups never sort.
type VersionedMap struct {
	families map[string][]*catalog.Entity
}

func NewVersionedMap(entities []*catalog.Entity) *VersionedMap {
	m := &VersionedMap{families: make(map[string][]*catalog.Entity)}
	for _, e := range entities {
		if e == nil {
			continue
		}
		m.families[e.ID] = append(m.families[e.ID], e)
	}
	for _, family := range m.families {
		version.SortDesc(family)
	}
	return m
}

// Find returns the latest record of the family when ver is empty or "latest",
// otherwise the highest record whose version satisfies ver. It returns nil
// when nothing matches.
func (m *VersionedMap) Find(id, ver string) *catalog.Entity {
	if m == nil {
		return nil
	}
	family := m.families[id]
	if len(family) == 0 {
		return nil
	}
	if version.IsLatest(ver) {
		return family[0]
	}
	for _, e := range family {
		if version.Satisfies(e.Version, ver) {
			return e
		}
	}
	return nil
}

// FindRef is Find for a reference.
func (m *VersionedMap) FindRef(ref catalog.Reference) *catalog.Entity {
	return m.Find(ref.ID, ref.Version)
}

// Family returns the records sharing id, latest first.
func (m *VersionedMap) Family(id string) []*catalog.Entity {
	if m == nil {
		return nil
	}
	return m.families[id]
}

func (m *VersionedMap) Latest(id string) *catalog.Entity {
	return m.Find(id, "")
}

// Versions lists every version string of the family, latest first.
func (m *VersionedMap) Versions(id string) []string {
	family := m.Family(id)
	out := make([]string, 0, len(family))
	for _, e := range family {
		out = append(out, e.Version)
	}
	return out
}

// IsLatest reports whether e is the latest member of its family.
func (m *VersionedMap) IsLatest(e *catalog.Entity) bool {
	latest := m.Latest(e.ID)
	return latest != nil && latest.Version == e.Version
}

func (m *VersionedMap) Has(id string) bool {
	return len(m.Family(id)) > 0
}

func (m *VersionedMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.families)
}

// Merge builds one map over several collections, e.g. all message kinds.
func Merge(collections ...[]*catalog.Entity) *VersionedMap {
	var all []*catalog.Entity
	for _, c := range collections {
		all = append(all, c...)
	}
	return NewVersionedMap(all)
}
