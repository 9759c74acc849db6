package traverse

import (
	"github.com/jamesainslie/sift/pkg/sift/types"
)

// reduce folds outcomes, already in discovery order, into result.
//
// The first path seen for a hash is remembered but no group is created.
// The second path creates the group [second, first]; later paths are
// appended.
func reduce(result *Result, outcomes []outcome, includeEmpty bool) {
	firstSeen := make(map[string]string)

	for _, o := range outcomes {
		if !o.ok {
			continue
		}
		rec := o.record

		result.Records = append(result.Records, rec)
		result.TypeCounts[rec.Type]++

		if types.IsEmptyHash(rec.Hash) {
			result.Empty = append(result.Empty, types.EmptyEntity{Path: rec.Path})
			if !includeEmpty {
				continue
			}
		}

		first, seen := firstSeen[rec.Hash]
		if !seen {
			firstSeen[rec.Hash] = rec.Path
			continue
		}

		if group, ok := result.Duplicates[rec.Hash]; ok {
			result.Duplicates[rec.Hash] = append(group, rec.Path)
		} else {
			result.Duplicates[rec.Hash] = []string{rec.Path, first}
		}
	}
}
