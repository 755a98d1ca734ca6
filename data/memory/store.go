package memory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/ncobase/keyset/ecode"
	"github.com/ncobase/keyset/paging"
	"go.mongodb.org/mongo-driver/bson"
)

// Store is a set of named collections.
type Store struct {
	mu    sync.RWMutex
	colls map[string]*Collection
}

// NewStore creates a store holding colls.
func NewStore(colls ...*Collection) *Store {
	s := &Store{colls: make(map[string]*Collection)}
	for _, c := range colls {
		s.Add(c)
	}
	return s
}

// Open loads every .jsonl file of dir, or the single file dir names, as a
// collection named after the file.
func Open(path string) (*Store, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	files := []string{path}
	if info.IsDir() {
		if files, err = filepath.Glob(filepath.Join(path, "*.jsonl")); err != nil {
			return nil, err
		}
	}

	s := NewStore()
	for _, file := range files {
		name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		c, err := loadFile(name, file)
		if err != nil {
			return nil, err
		}
		s.Add(c)
	}
	return s, nil
}

func loadFile(name, file string) (*Collection, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadJSONL(name, f)
}

// Add registers c, replacing any collection with the same name.
func (s *Store) Add(c *Collection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.colls[c.Name()] = c
}

// Collection returns the named collection.
func (s *Store) Collection(name string) (*Collection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.colls[name]
	return c, ok
}

// Names returns the collection names in order.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.colls))
	for name := range s.colls {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Query starts a query on the named collection. Unknown collections fail
// with ecode.NotFound.
func (s *Store) Query(_ context.Context, name string, f bson.M) (paging.Query[bson.M], error) {
	c, ok := s.Collection(name)
	if !ok {
		return nil, ecode.New(ecode.NotFound, fmt.Sprintf("collection %q not found", name))
	}
	return c.Find(f), nil
}

// Health always succeeds.
func (s *Store) Health(context.Context) error {
	return nil
}
