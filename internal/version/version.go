// Package version orders and matches the free-form version strings authored on
// catalog records. Strings that parse as semver (leniently, so "1" and "v1" are
// accepted) use semantic ordering; everything else falls back to string order.
package version

import (
	"sort"
	"strings"

	mm "github.com/Masterminds/semver/v3"

	"eventdocs/internal/catalog"
)

const Latest = "latest"

// IsLatest reports whether a reference version means "the latest version".
func IsLatest(spec string) bool {
	s := strings.TrimSpace(spec)
	return s == "" || s == Latest
}

func parse(raw string) *mm.Version {
	v, err := mm.NewVersion(strings.TrimSpace(raw))
	if err != nil {
		return nil
	}
	return v
}

// Compare returns -1, 0 or 1. It is a total order: parsed versions rank above
// unparsable ones and ties are broken by plain string comparison.
func Compare(a, b string) int {
	va, vb := parse(a), parse(b)
	switch {
	case va != nil && vb != nil:
		if c := va.Compare(vb); c != 0 {
			return c
		}
	case va != nil:
		return 1
	case vb != nil:
		return -1
	}
	return strings.Compare(a, b)
}

// SortDesc orders a version family latest first. The sort is stable, so
// records with identical version strings keep their input order.
func SortDesc(family []*catalog.Entity) {
	sort.SliceStable(family, func(i, j int) bool {
		return Compare(family[i].Version, family[j].Version) > 0
	})
}

// LatestOf returns the highest version in the family, or nil when empty.
func LatestOf(family []*catalog.Entity) *catalog.Entity {
	var best *catalog.Entity
	for _, e := range family {
		if e == nil {
			continue
		}
		if best == nil || Compare(e.Version, best.Version) > 0 {
			best = e
		}
	}
	return best
}

// Satisfies reports whether candidate matches a range specifier such as
// "1.0.0", "^1.0.0", "~1.2" or ">=2". "latest" and the empty specifier only
// match the latest member of a family, which Satisfies cannot know, so they
// return false.
func Satisfies(candidate, spec string) bool {
	if IsLatest(spec) {
		return false
	}
	if candidate == spec {
		return true
	}
	v := parse(candidate)
	if v == nil {
		return false
	}
	c, err := mm.NewConstraint(strings.TrimSpace(spec))
	if err != nil {
		return false
	}
	return c.Check(v)
}
