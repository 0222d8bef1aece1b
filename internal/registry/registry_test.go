package registry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/mplug-cli/mplug/internal/catalog"
)

func testRecord(id string) Record {
	return Record{
		ID:           id,
		LocalPath:    "/tmp/mplug/plugins/" + id,
		InstalledRef: "0123456789abcdef",
		State:        StateEnabled,
		InstalledAt:  time.Now().UTC().Truncate(time.Second),
		Targets: []catalog.InstallTarget{
			{File: id + ".lua", Kind: catalog.KindScript},
		},
	}
}

func openTestRegistry(t *testing.T) (*Registry, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "installed.json")
	reg, err := Open(path)
	require.NoError(t, err)
	return reg, path
}

func TestOpen_MissingFileStartsEmpty(t *testing.T) {
	reg, _ := openTestRegistry(t)
	assert.Empty(t, reg.List())
}

func TestOpen_CorruptFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "installed.json")
	require.NoError(t, os.WriteFile(path, []byte("{truncated"), 0o644))

	_, err := Open(path)
	assert.Error(t, err, "silently dropping state would orphan installed plugins")
}

func TestPutGetRemove(t *testing.T) {
	reg, _ := openTestRegistry(t)

	rec := testRecord("autocrop")
	require.NoError(t, reg.Put(rec))

	got, err := reg.Get("autocrop")
	require.NoError(t, err)
	assert.Equal(t, rec.LocalPath, got.LocalPath)
	assert.Equal(t, StateEnabled, got.State)

	require.NoError(t, reg.Remove("autocrop"))
	_, err = reg.Get("autocrop")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemove_Unknown(t *testing.T) {
	reg, _ := openTestRegistry(t)
	assert.ErrorIs(t, reg.Remove("ghost"), ErrNotFound)
}

func TestSetState(t *testing.T) {
	reg, _ := openTestRegistry(t)
	require.NoError(t, reg.Put(testRecord("autocrop")))

	require.NoError(t, reg.SetState("autocrop", StateDisabled))
	got, err := reg.Get("autocrop")
	require.NoError(t, err)
	assert.Equal(t, StateDisabled, got.State)

	assert.ErrorIs(t, reg.SetState("ghost", StateDisabled), ErrNotFound)
}

func TestList_OrderedByID(t *testing.T) {
	reg, _ := openTestRegistry(t)
	for _, id := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, reg.Put(testRecord(id)))
	}

	records := reg.List()
	require.Len(t, records, 3)
	assert.Equal(t, "alpha", records[0].ID)
	assert.Equal(t, "mid", records[1].ID)
	assert.Equal(t, "zeta", records[2].ID)
}

func TestPersistsAcrossReopen(t *testing.T) {
	reg, path := openTestRegistry(t)
	require.NoError(t, reg.Put(testRecord("autocrop")))
	require.NoError(t, reg.SetState("autocrop", StateDisabled))

	reopened, err := Open(path)
	require.NoError(t, err)
	got, err := reopened.Get("autocrop")
	require.NoError(t, err)
	assert.Equal(t, StateDisabled, got.State)
	assert.Equal(t, "0123456789abcdef", got.InstalledRef)
}

func TestMutationsLeaveNoTempFile(t *testing.T) {
	reg, path := openTestRegistry(t)
	require.NoError(t, reg.Put(testRecord("autocrop")))
	require.NoError(t, reg.Remove("autocrop"))

	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file must not survive a completed write")

	// The final file is always complete, parseable JSON.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var file registryFile
	assert.NoError(t, json.Unmarshal(data, &file))
}

func TestInterruptedWriteKeepsPriorRegistry(t *testing.T) {
	reg, path := openTestRegistry(t)
	require.NoError(t, reg.Put(testRecord("autocrop")))

	// Simulate a crash mid-write of the next mutation: a half-written temp
	// file exists, the real file was never replaced.
	require.NoError(t, os.WriteFile(path+".tmp", []byte(`{"version":"1","plugins":{"ha`), 0o644))

	reopened, err := Open(path)
	require.NoError(t, err)
	got, err := reopened.Get("autocrop")
	require.NoError(t, err)
	assert.Equal(t, StateEnabled, got.State)
}

// TestRegistryMatchesModel drives a random operation sequence against an
// in-memory model and checks the persisted registry never diverges.
func TestRegistryMatchesModel(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		dir, err := os.MkdirTemp("", "mplug-registry-*")
		if err != nil {
			t.Fatalf("create temp dir: %v", err)
		}
		defer os.RemoveAll(dir)

		reg, err := Open(filepath.Join(dir, "installed.json"))
		if err != nil {
			t.Fatalf("open registry: %v", err)
		}

		model := make(map[string]Record)
		ids := rapid.SampledFrom([]string{"a", "b", "c", "d"})

		t.Repeat(map[string]func(*rapid.T){
			"put": func(t *rapid.T) {
				rec := testRecord(ids.Draw(t, "id"))
				if err := reg.Put(rec); err != nil {
					t.Fatalf("put: %v", err)
				}
				model[rec.ID] = rec
			},
			"remove": func(t *rapid.T) {
				id := ids.Draw(t, "id")
				err := reg.Remove(id)
				if _, ok := model[id]; ok {
					if err != nil {
						t.Fatalf("remove existing: %v", err)
					}
					delete(model, id)
				} else if err == nil {
					t.Fatalf("remove of absent %q succeeded", id)
				}
			},
			"setstate": func(t *rapid.T) {
				id := ids.Draw(t, "id")
				state := rapid.SampledFrom([]State{StateEnabled, StateDisabled}).Draw(t, "state")
				err := reg.SetState(id, state)
				if rec, ok := model[id]; ok {
					if err != nil {
						t.Fatalf("setstate existing: %v", err)
					}
					rec.State = state
					model[id] = rec
				} else if err == nil {
					t.Fatalf("setstate of absent %q succeeded", id)
				}
			},
			"": func(t *rapid.T) {
				var want []string
				for id := range model {
					want = append(want, id)
				}
				sort.Strings(want)

				var got []string
				for _, rec := range reg.List() {
					got = append(got, rec.ID)
				}
				if len(got) != len(want) {
					t.Fatalf("list has %d records, model %d", len(got), len(want))
				}
				for i := range want {
					if got[i] != want[i] {
						t.Fatalf("list[%d] = %q, model %q", i, got[i], want[i])
					}
					if reg.records[got[i]].State != model[want[i]].State {
						t.Fatalf("state mismatch for %q", got[i])
					}
				}
			},
		})
	})
}
