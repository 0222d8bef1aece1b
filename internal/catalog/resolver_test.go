package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapSnapshot is the in-memory Snapshot used by resolver tests.
type mapSnapshot map[string]Entry

func (m mapSnapshot) FindByID(id string) (Entry, error) {
	if entry, ok := m[id]; ok {
		return entry, nil
	}
	return Entry{}, ErrNotFound
}

func (m mapSnapshot) All() []Entry {
	entries := make([]Entry, 0, len(m))
	for _, e := range m {
		entries = append(entries, e)
	}
	return entries
}

func TestResolve_ExactIDWins(t *testing.T) {
	snap := mapSnapshot{
		"autocrop":       {ID: "autocrop", Name: "Something Else"},
		"other_autocrop": {ID: "other_autocrop", Name: "autocrop"},
	}

	// "autocrop" is both an id and another entry's name; the id wins.
	entry, err := Resolve(snap, "autocrop")
	require.NoError(t, err)
	assert.Equal(t, "autocrop", entry.ID)
}

func TestResolve_NameMatchIsCaseInsensitive(t *testing.T) {
	snap := mapSnapshot{
		"mpv_autocrop": {ID: "mpv_autocrop", Name: "Autocrop"},
	}

	entry, err := Resolve(snap, "aUtOcRoP")
	require.NoError(t, err)
	assert.Equal(t, "mpv_autocrop", entry.ID)
}

func TestResolve_Unknown(t *testing.T) {
	snap := mapSnapshot{
		"mpv_autocrop": {ID: "mpv_autocrop", Name: "Autocrop"},
	}

	_, err := Resolve(snap, "no-such-plugin")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolve_AmbiguousNameListsCandidates(t *testing.T) {
	snap := mapSnapshot{
		"autocrop_b": {ID: "autocrop_b", Name: "Autocrop"},
		"autocrop_a": {ID: "autocrop_a", Name: "Autocrop"},
	}

	_, err := Resolve(snap, "Autocrop")

	var ambiguous *AmbiguousError
	require.True(t, errors.As(err, &ambiguous))
	require.Len(t, ambiguous.Candidates, 2)
	assert.Equal(t, "autocrop_a", ambiguous.Candidates[0].ID, "candidates ordered by id")
	assert.Equal(t, "autocrop_b", ambiguous.Candidates[1].ID)
	assert.Contains(t, ambiguous.Error(), "autocrop_a")
	assert.Contains(t, ambiguous.Error(), "autocrop_b")
}
