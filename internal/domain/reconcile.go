package domain

import "github.com/google/uuid"

// TagDiff is the minimal set of link changes that moves a store's tag set
// from its current state to a target set of names.
type TagDiff struct {
	// RemoveLinkIDs are the external ids of join rows to delete.
	RemoveLinkIDs []uuid.UUID

	// AddNames are tag names that need a new join row. Names absent from
	// the tag dictionary must be inserted there before linking.
	AddNames []string
}

// DiffTags computes the reconciliation between a store's current tags and a
// target set of names. current maps each linked tag name to the external id
// of the join row carrying it; pass an empty map on store creation.
//
// Names present in both sets are untouched, so their join rows keep their
// ids. Duplicate names in target collapse to one. An empty target empties
// the store's tag set; whether that is allowed is the caller's concern,
// not this function's.
func DiffTags(current map[string]uuid.UUID, target []string) TagDiff {
	want := make(map[string]struct{}, len(target))

	var diff TagDiff
	for _, name := range target {
		if _, dup := want[name]; dup {
			continue
		}
		want[name] = struct{}{}
		if _, linked := current[name]; !linked {
			diff.AddNames = append(diff.AddNames, name)
		}
	}
	for name, linkID := range current {
		if _, keep := want[name]; !keep {
			diff.RemoveLinkIDs = append(diff.RemoveLinkIDs, linkID)
		}
	}
	return diff
}
