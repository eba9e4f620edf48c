package resolver

import "eventdocs/internal/catalog"

// HydrateStats counts what happened to one relationship array.
type HydrateStats struct {
	Attempted int
	Resolved  int
	Skipped   int
}

// Hydrate resolves refs against target. Unresolved references are left out
// of the result and reported to diag; the raw refs are never modified. The
// result is never nil.
func Hydrate(source *catalog.Entity, field catalog.Field, refs []catalog.Reference, target *VersionedMap, diag *Diagnostics) ([]*catalog.Entity, HydrateStats) {
	out := make([]*catalog.Entity, 0, len(refs))
	stats := HydrateStats{Attempted: len(refs)}
	for _, ref := range refs {
		if e := target.FindRef(ref); e != nil {
			out = append(out, e)
			stats.Resolved++
			continue
		}
		stats.Skipped++
		if diag == nil || source == nil {
			continue
		}
		reason := ReasonNoCandidate
		if target.Has(ref.ID) {
			reason = ReasonVersionMismatch
		}
		diag.Add(Diagnostic{
			Source:     source.Key(),
			Collection: source.Collection,
			Field:      field,
			Target:     ref.String(),
			Reason:     reason,
		})
	}
	return out, stats
}

// HydrateField resolves one relationship field of source.
func HydrateField(source *catalog.Entity, field catalog.Field, target *VersionedMap, diag *Diagnostics) []*catalog.Entity {
	out, _ := Hydrate(source, field, source.Refs(field), target, diag)
	return out
}
