// Package collection binds a named, JSON-serialized slice of records to a
// persistence backend. Reads and writes always move the whole collection.
package collection

import (
	"encoding/json"
	"log/slog"
	"slices"
	"strconv"
	"sync"
)

// Record is implemented by every entity kept in a collection.
type Record interface {
	RecordID() int64
}

// Backend loads and saves raw collection values by key.
type Backend interface {
	Load(key string) (value []byte, ok bool, err error)
	Save(key string, value []byte) error
}

// FailureFunc is called whenever a backend operation fails.
type FailureFunc func(key, op string)

type Option func(*options)

type options struct {
	onFailure FailureFunc
}

// WithFailureHook registers a callback for swallowed backend failures.
func WithFailureHook(fn FailureFunc) Option {
	return func(o *options) { o.onFailure = fn }
}

// Store holds one collection in memory and mirrors every change to the
// backend. Backend failures never reach callers: the store logs them and
// continues in memory only for the rest of the process.
type Store[T Record] struct {
	mu       sync.RWMutex
	backend  Backend
	key      string
	items    []T
	version  uint64
	seq      int64
	degraded bool
	logger   *slog.Logger
	opts     options
}

// Open reads the persisted value for key. A missing or unparsable value is
// replaced by def, which is persisted immediately.
func Open[T Record](backend Backend, key string, def []T, logger *slog.Logger, opts ...Option) *Store[T] {
	s := &Store[T]{
		backend: backend,
		key:     key,
		logger:  logger.With("collection", key),
	}
	for _, opt := range opts {
		opt(&s.opts)
	}

	items, ok := s.load()
	if !ok {
		items = slices.Clone(def)
		s.persist(items)
	}
	s.items = items
	s.seq = s.loadSeq()
	for _, item := range items {
		s.seq = max(s.seq, item.RecordID())
	}
	return s
}

func (s *Store[T]) load() ([]T, bool) {
	raw, ok, err := s.backend.Load(s.key)
	if err != nil {
		s.fail("load", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		s.logger.Warn("discarding unparsable collection", "error", err)
		return nil, false
	}
	if items == nil {
		items = []T{}
	}
	return items, true
}

func (s *Store[T]) seqKey() string {
	return s.key + ".seq"
}

func (s *Store[T]) loadSeq() int64 {
	if s.degraded {
		return 0
	}
	raw, ok, err := s.backend.Load(s.seqKey())
	if err != nil {
		s.fail("load", err)
		return 0
	}
	if !ok {
		return 0
	}
	n, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		s.logger.Warn("discarding unparsable id sequence", "error", err)
		return 0
	}
	return n
}

// persist writes items to the backend. Callers hold s.mu or own s exclusively.
func (s *Store[T]) persist(items []T) {
	if s.degraded {
		return
	}
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		s.fail("encode", err)
		return
	}
	if err := s.backend.Save(s.key, data); err != nil {
		s.fail("save", err)
	}
}

func (s *Store[T]) fail(op string, err error) {
	if !s.degraded {
		s.logger.Error("collection persistence failed, continuing in memory", "op", op, "error", err)
	}
	s.degraded = true
	if s.opts.onFailure != nil {
		s.opts.onFailure(s.key, op)
	}
}

// Key returns the storage key of the collection.
func (s *Store[T]) Key() string {
	return s.key
}

// Get returns a copy of the current collection.
func (s *Store[T]) Get() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

// Set replaces the whole collection and persists it.
func (s *Store[T]) Set(items []T) {
	items = slices.Clone(items)
	if items == nil {
		items = []T{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = items
	s.version++
	for _, item := range items {
		s.seq = max(s.seq, item.RecordID())
	}
	s.persist(items)
}

// Update replaces the collection with fn's result while holding the write
// lock, so concurrent read-modify-write sequences cannot interleave. fn
// receives a copy and must not call back into the store. When fn reports no
// change nothing is stored or persisted. Update returns fn's report.
func (s *Store[T]) Update(fn func(items []T) ([]T, bool)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	items, changed := fn(slices.Clone(s.items))
	if !changed {
		return false
	}
	if items == nil {
		items = []T{}
	}
	s.items = items
	s.version++
	for _, item := range items {
		s.seq = max(s.seq, item.RecordID())
	}
	s.persist(items)
	return true
}

// Version increases on every Set or Update.
func (s *Store[T]) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// NextID issues the next identifier. Identifiers are never reused, even after
// the record holding the highest one is deleted.
func (s *Store[T]) NextID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	if !s.degraded {
		if err := s.backend.Save(s.seqKey(), []byte(strconv.FormatInt(s.seq, 10))); err != nil {
			s.fail("save", err)
		}
	}
	return s.seq
}

// Degraded reports whether the store has fallen back to memory-only operation.
func (s *Store[T]) Degraded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.degraded
}
