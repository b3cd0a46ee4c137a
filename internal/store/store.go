// Package store persists named record collections as JSON documents on
// the local file system.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
)

// Fixed collection keys used by the repositories.
const (
	NotesKey  = "notes:v1"
	EventsKey = "events:v1"
)

// Store owns durability for record collections. Each key maps to one
// JSON file under the root directory; writes are atomic (tmp file →
// fsync → rename) and serialized per key so that two in-flight saves for
// the same collection cannot interleave.
type Store struct {
	root   string // absolute path to the data directory
	logger *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
	files map[string]string // file name → key, for the watcher
}

// New creates a Store rooted at the given directory.
// The directory must already exist.
func New(root string, logger *slog.Logger) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("store: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("store: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("store: root is not a directory: %s", abs)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		root:   abs,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
		files:  make(map[string]string),
	}, nil
}

// fileName maps a collection key to its on-disk file name. Keys use a
// restricted alphabet; anything that could escape the root is rejected.
func fileName(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("store: empty key")
	}
	if strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return "", fmt.Errorf("store: invalid key: %s", key)
	}
	return strings.ReplaceAll(key, ":", "-") + ".json", nil
}

func (s *Store) keyLock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

func (s *Store) register(key, name string) {
	s.mu.Lock()
	s.files[name] = key
	s.mu.Unlock()
}

// keyForFile resolves a watcher file name back to its collection key.
func (s *Store) keyForFile(name string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key, ok := s.files[name]
	return key, ok
}

// Load reads the collection persisted under key into the value pointed
// to by into. A missing file or an unparsable payload leaves into at its
// caller-supplied default and is not treated as an error; only the
// inability to read an existing file is logged.
func (s *Store) Load(key string, into any) error {
	name, err := fileName(key)
	if err != nil {
		return err
	}
	target := reflect.ValueOf(into)
	if target.Kind() != reflect.Pointer || target.IsNil() {
		return fmt.Errorf("store: load target must be a non-nil pointer")
	}
	s.register(key, name)

	lock := s.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	data, err := os.ReadFile(filepath.Join(s.root, name))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("store: read failed, using default",
				slog.String("key", key), slog.String("error", err.Error()))
		}
		return nil
	}

	// Decode into a scratch value so a payload that fails partway
	// through (valid JSON, mismatched types) cannot leak half-decoded
	// records into the caller's collection.
	scratch := reflect.New(target.Type().Elem())
	if err := json.Unmarshal(data, scratch.Interface()); err != nil {
		s.logger.Warn("store: corrupt payload, using default",
			slog.String("key", key), slog.String("error", err.Error()))
		return nil
	}
	target.Elem().Set(scratch.Elem())
	return nil
}

// Save serializes v and atomically replaces the collection under key.
// Write failures are surfaced: callers are expected to at least log the
// error, since the alternative is silent data loss.
func (s *Store) Save(key string, v any) error {
	name, err := fileName(key)
	if err != nil {
		return err
	}
	s.register(key, name)

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("store: marshal %s: %w", key, err)
	}

	lock := s.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	return s.writeAtomic(name, data)
}

// writeAtomic writes data to name under root: tmp file → fsync → rename.
func (s *Store) writeAtomic(name string, data []byte) error {
	tmp, err := os.CreateTemp(s.root, ".ansuz-tmp-*")
	if err != nil {
		return fmt.Errorf("store: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("store: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("store: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("store: close temp: %w", err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.root, name)); err != nil {
		return fmt.Errorf("store: rename: %w", err)
	}
	success = true
	return nil
}

// Root returns the absolute data directory path.
func (s *Store) Root() string {
	return s.root
}
