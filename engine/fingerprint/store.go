package fingerprint

import (
	"encoding/json"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/spf13/afero"

	"github.com/assemble-build/assemble/engine/identifier"
	"github.com/assemble-build/assemble/pkg/apperr"
)

// Store persists Records under a cache root, keyed by TaskId. Writes are
// atomic (temp file, then rename) so a crash mid-write never corrupts the
// previous record. Reads are served from an in-memory LRU in front of the
// filesystem, since a task's record is commonly read more than once in a
// single run (e.g. by Buildable.GetDependencies lookups alongside the
// up-to-date check itself).
type Store struct {
	fs   afero.Fs
	root string

	mu    sync.Mutex
	cache *lru.Cache[string, *Record]

	// crossProcess guards the cache root against concurrent `assemble`
	// invocations. Only meaningful against a real filesystem; left nil
	// when fs is not backed by the OS (e.g. an afero.MemMapFs in tests).
	crossProcess *flock.Flock
}

// NewStore builds a Store rooted at root, read through fs. cacheEntries
// sizes the in-memory LRU front of the on-disk store; pass 0 to disable it.
func NewStore(fs afero.Fs, root string, cacheEntries int) (*Store, error) {
	s := &Store{fs: fs, root: root}
	if cacheEntries > 0 {
		c, err := lru.New[string, *Record](cacheEntries)
		if err != nil {
			return nil, err
		}
		s.cache = c
	}
	if _, ok := fs.(*afero.OsFs); ok {
		s.crossProcess = flock.New(filepath.Join(root, ".assemble-fingerprint.lock"))
	}
	return s, nil
}

func (s *Store) pathFor(taskID identifier.TaskID) string {
	return filepath.Join(s.root, taskID.AsPath()+".json")
}

// Load returns the previously persisted Record for taskID, or nil if none
// exists yet.
func (s *Store) Load(taskID identifier.TaskID) (*Record, error) {
	key := taskID.String()
	if s.cache != nil {
		s.mu.Lock()
		if rec, ok := s.cache.Get(key); ok {
			s.mu.Unlock()
			return rec, nil
		}
		s.mu.Unlock()
	}

	path := s.pathFor(taskID)
	exists, err := afero.Exists(s.fs, path)
	if err != nil {
		return nil, apperr.FingerprintStoreError(key, err)
	}
	if !exists {
		return nil, nil
	}
	raw, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return nil, apperr.FingerprintStoreError(key, err)
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, apperr.FingerprintStoreError(key, err)
	}
	if s.cache != nil {
		s.mu.Lock()
		s.cache.Add(key, &rec)
		s.mu.Unlock()
	}
	return &rec, nil
}

// Save atomically replaces the persisted Record for taskID: the new record
// is written to a temp file in the same directory, then renamed over the
// final path, so a reader never observes a partially written record.
func (s *Store) Save(taskID identifier.TaskID, rec *Record) error {
	key := taskID.String()
	if s.crossProcess != nil {
		if err := s.fs.MkdirAll(s.root, 0o755); err != nil {
			return apperr.FingerprintStoreError(key, err)
		}
		if err := s.crossProcess.Lock(); err != nil {
			return apperr.FingerprintStoreError(key, err)
		}
		defer s.crossProcess.Unlock()
	}

	path := s.pathFor(taskID)
	dir := filepath.Dir(path)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return apperr.FingerprintStoreError(key, err)
	}

	raw, err := json.Marshal(rec)
	if err != nil {
		return apperr.FingerprintStoreError(key, err)
	}

	tmp := path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, raw, 0o644); err != nil {
		return apperr.FingerprintStoreError(key, err)
	}
	if err := s.fs.Rename(tmp, path); err != nil {
		return apperr.FingerprintStoreError(key, err)
	}

	if s.cache != nil {
		s.mu.Lock()
		s.cache.Add(key, rec)
		s.mu.Unlock()
	}
	return nil
}
