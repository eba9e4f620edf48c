package storage

import (
	"path"
	"strings"

	"eventdocs/internal/catalog"
	"eventdocs/internal/version"
)

// folderOf picks ver (or the latest member) from family and returns the first
// segment of its entry id, e.g. "OrderService" for
// "OrderService/versioned/0.0.1/index.mdx".
func folderOf(family []*catalog.Entity, ver string) string {
	var pick *catalog.Entity
	if version.IsLatest(ver) {
		pick = version.LatestOf(family)
	} else {
		for _, e := range family {
			if e.Version == ver {
				pick = e
				break
			}
		}
	}
	if pick == nil || pick.EntryID == "" {
		return ""
	}
	folder, _, nested := strings.Cut(pick.EntryID, "/")
	if !nested {
		// flat entries such as teams/full-stack.md
		folder = strings.TrimSuffix(folder, path.Ext(folder))
	}
	return folder
}
