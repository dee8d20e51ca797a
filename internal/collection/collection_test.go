package collection

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/dietdesk/internal/database"
	"github.com/dukerupert/dietdesk/internal/store"
)

type item struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (i item) RecordID() int64 { return i.ID }

type memBackend struct {
	data    map[string][]byte
	loadErr error
	saveErr error
	saves   int
}

func newMemBackend() *memBackend {
	return &memBackend{data: make(map[string][]byte)}
}

func (m *memBackend) Load(key string) ([]byte, bool, error) {
	if m.loadErr != nil {
		return nil, false, m.loadErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memBackend) Save(key string, value []byte) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.data[key] = append([]byte(nil), value...)
	return nil
}

var defaults = []item{{ID: 1, Name: "one"}, {ID: 2, Name: "two"}}

func TestOpenPersistsDefault(t *testing.T) {
	b := newMemBackend()
	s := Open(b, "things", defaults, slog.Default())

	assert.Equal(t, defaults, s.Get())
	assert.JSONEq(t, `[{"id":1,"name":"one"},{"id":2,"name":"two"}]`, string(b.data["things"]))
	assert.False(t, s.Degraded())
}

func TestOpenReadsPersistedValue(t *testing.T) {
	b := newMemBackend()
	b.data["things"] = []byte(`[{"id":7,"name":"seven"}]`)

	s := Open(b, "things", defaults, slog.Default())
	assert.Equal(t, []item{{ID: 7, Name: "seven"}}, s.Get())
	assert.Equal(t, int64(8), s.NextID())
}

func TestOpenUnparsableFallsBackToDefault(t *testing.T) {
	b := newMemBackend()
	b.data["things"] = []byte(`{not json`)

	s := Open(b, "things", defaults, slog.Default())
	assert.Equal(t, defaults, s.Get())
	assert.JSONEq(t, `[{"id":1,"name":"one"},{"id":2,"name":"two"}]`, string(b.data["things"]))
}

func TestSetPersistsWholeCollection(t *testing.T) {
	b := newMemBackend()
	s := Open(b, "things", []item{}, slog.Default())

	s.Set([]item{{ID: 3, Name: "three"}})
	assert.JSONEq(t, `[{"id":3,"name":"three"}]`, string(b.data["things"]))
	assert.Equal(t, uint64(1), s.Version())

	s.Set(nil)
	assert.Equal(t, "[]", string(b.data["things"]))
	assert.Empty(t, s.Get())
	assert.Equal(t, uint64(2), s.Version())
}

func TestGetReturnsCopy(t *testing.T) {
	s := Open(newMemBackend(), "things", defaults, slog.Default())

	got := s.Get()
	got[0].Name = "mutated"
	assert.Equal(t, "one", s.Get()[0].Name)
}

func TestUpdateAppliesFunction(t *testing.T) {
	b := newMemBackend()
	s := Open(b, "things", defaults, slog.Default())

	changed := s.Update(func(items []item) ([]item, bool) {
		return append(items, item{ID: 10, Name: "ten"}), true
	})
	assert.True(t, changed)
	assert.Len(t, s.Get(), 3)
	assert.Equal(t, int64(11), s.NextID())
}

func TestUpdateWithoutChangeSkipsPersist(t *testing.T) {
	b := newMemBackend()
	s := Open(b, "things", defaults, slog.Default())
	before := string(b.data["things"])
	version := s.Version()

	changed := s.Update(func(items []item) ([]item, bool) {
		return append(items, item{ID: 99}), false
	})
	assert.False(t, changed)
	assert.Equal(t, version, s.Version())
	assert.Len(t, s.Get(), 2)
	assert.Equal(t, before, string(b.data["things"]))
}

func TestNextIDNeverReused(t *testing.T) {
	b := newMemBackend()
	s := Open(b, "things", defaults, slog.Default())

	id := s.NextID()
	assert.Equal(t, int64(3), id)
	s.Set(append(s.Get(), item{ID: id, Name: "three"}))

	// Delete the highest record; the next id must still move forward.
	s.Set(defaults)
	assert.Equal(t, int64(4), s.NextID())

	// The sequence survives a reopen.
	reopened := Open(b, "things", []item{}, slog.Default())
	assert.Equal(t, int64(5), reopened.NextID())
}

func TestSaveFailureDegradesSilently(t *testing.T) {
	b := newMemBackend()
	var failures []string
	s := Open(b, "things", defaults, slog.Default(), WithFailureHook(func(key, op string) {
		failures = append(failures, key+":"+op)
	}))
	savesBefore := b.saves

	b.saveErr = errors.New("quota exceeded")
	s.Set([]item{{ID: 5, Name: "five"}})

	assert.True(t, s.Degraded())
	assert.Equal(t, []item{{ID: 5, Name: "five"}}, s.Get())
	assert.Equal(t, []string{"things:save"}, failures)

	// Once degraded the backend is left alone.
	b.saveErr = nil
	s.Set([]item{{ID: 6, Name: "six"}})
	assert.Equal(t, savesBefore, b.saves)
	assert.Equal(t, []item{{ID: 6, Name: "six"}}, s.Get())
}

func TestLoadFailureUsesDefaultInMemory(t *testing.T) {
	b := newMemBackend()
	b.loadErr = errors.New("storage unavailable")

	s := Open(b, "things", defaults, slog.Default())
	assert.True(t, s.Degraded())
	assert.Equal(t, defaults, s.Get())
	assert.Empty(t, b.data)
	assert.Equal(t, int64(3), s.NextID())
}

func TestOpenOverSQLite(t *testing.T) {
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	cs := store.NewCollectionStore(db)

	s := Open(cs, "things", defaults, slog.Default())
	s.Set(append(s.Get(), item{ID: s.NextID(), Name: "three"}))

	reopened := Open(cs, "things", []item{}, slog.Default())
	assert.Len(t, reopened.Get(), 3)
	assert.Equal(t, "three", reopened.Get()[2].Name)
	assert.Equal(t, int64(4), reopened.NextID())
}
