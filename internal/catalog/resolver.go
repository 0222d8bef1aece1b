package catalog

import (
	"fmt"
	"strings"
)

// Snapshot is the read-only view Resolve operates on. Resolution never
// mutates state and never touches the network.
type Snapshot interface {
	FindByID(id string) (Entry, error)
	All() []Entry
}

// AmbiguousError reports that an identifier matched more than one entry by
// name. Candidates are ordered by id.
type AmbiguousError struct {
	Identifier string
	Candidates []Entry
}

func (e *AmbiguousError) Error() string {
	ids := make([]string, len(e.Candidates))
	for i, c := range e.Candidates {
		ids[i] = c.ID
	}
	return fmt.Sprintf("%q is ambiguous, candidates: %s", e.Identifier, strings.Join(ids, ", "))
}

// Resolve maps a user-supplied identifier to exactly one entry. An exact id
// match wins outright; otherwise a case-insensitive exact name match is
// attempted. Zero name matches fail with ErrNotFound, multiple with
// AmbiguousError.
func Resolve(snap Snapshot, identifier string) (Entry, error) {
	if entry, err := snap.FindByID(identifier); err == nil {
		return entry, nil
	}

	var candidates []Entry
	for _, e := range snap.All() {
		if strings.EqualFold(e.Name, identifier) {
			candidates = append(candidates, e)
		}
	}

	switch len(candidates) {
	case 0:
		return Entry{}, fmt.Errorf("%q: %w", identifier, ErrNotFound)
	case 1:
		return candidates[0], nil
	default:
		sortByID(candidates)
		return Entry{}, &AmbiguousError{Identifier: identifier, Candidates: candidates}
	}
}
