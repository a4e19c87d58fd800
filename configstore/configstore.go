// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package configstore holds read-only string dictionaries that a host
// exposes by name.
package configstore

import (
	"strings"
	"sync"

	"code.hybscloud.com/hostcall"
	"github.com/google/btree"
)

const (
	maxNameLen  = 255
	maxKeyLen   = 255
	maxValueLen = 8000
)

type entry struct {
	key   string
	value string
}

// Store is one dictionary. Keys are kept in ascending order.
type Store struct {
	name string
	tree *btree.BTreeG[entry]
}

// New builds a store from items. Oversized keys or values fail with
// hostcall.CodeConfigStoreOpen.
func New(name string, items map[string]string) (*Store, error) {
	if !validName(name) {
		return nil, hostcall.Errorf(hostcall.CodeConfigStoreOpen, "invalid store name %q", name)
	}
	s := &Store{
		name: name,
		tree: btree.NewG(32, func(a, b entry) bool { return a.key < b.key }),
	}
	for k, v := range items {
		if k == "" || len(k) > maxKeyLen {
			return nil, hostcall.Errorf(hostcall.CodeConfigStoreOpen, "store %q: invalid key %q", name, k)
		}
		if len(v) > maxValueLen {
			return nil, hostcall.Errorf(hostcall.CodeConfigStoreOpen, "store %q: value of %q too long", name, k)
		}
		s.tree.ReplaceOrInsert(entry{key: k, value: v})
	}
	return s, nil
}

func validName(name string) bool {
	return name != "" && len(name) <= maxNameLen && !strings.ContainsFunc(name, func(r rune) bool { return r < 0x20 })
}

// Name returns the store name.
func (s *Store) Name() string { return s.name }

func checkKey(key string) error {
	if key == "" || len(key) > maxKeyLen {
		return hostcall.Errorf(hostcall.CodeConfigStoreLookup, "invalid key %q", key)
	}
	return nil
}

// Get returns the value of key and whether it is present. Malformed keys
// fail with hostcall.CodeConfigStoreLookup.
func (s *Store) Get(key string) (string, bool, error) {
	if err := checkKey(key); err != nil {
		return "", false, err
	}
	e, ok := s.tree.Get(entry{key: key})
	return e.value, ok, nil
}

// Contains reports whether key is present.
func (s *Store) Contains(key string) (bool, error) {
	if err := checkKey(key); err != nil {
		return false, err
	}
	return s.tree.Has(entry{key: key}), nil
}

// Keys returns every key in ascending order.
func (s *Store) Keys() []string {
	keys := make([]string, 0, s.tree.Len())
	s.tree.Ascend(func(e entry) bool {
		keys = append(keys, e.key)
		return true
	})
	return keys
}

// KeysWithPrefix returns the keys starting with prefix in ascending order.
func (s *Store) KeysWithPrefix(prefix string) []string {
	var keys []string
	s.tree.AscendGreaterOrEqual(entry{key: prefix}, func(e entry) bool {
		if !strings.HasPrefix(e.key, prefix) {
			return false
		}
		keys = append(keys, e.key)
		return true
	})
	return keys
}

// Len returns the number of keys.
func (s *Store) Len() int { return s.tree.Len() }

// Registry maps names to stores.
type Registry struct {
	mu     sync.RWMutex
	stores map[string]*Store
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{stores: make(map[string]*Store)}
}

// Add registers s. A second store with the same name fails with
// hostcall.CodeConfigStoreOpen.
func (r *Registry) Add(s *Store) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.stores[s.name]; ok {
		return hostcall.Errorf(hostcall.CodeConfigStoreOpen, "store %q already registered", s.name)
	}
	r.stores[s.name] = s
	return nil
}

// Open returns the store called name. Unknown or malformed names fail with
// hostcall.CodeConfigStoreOpen.
func (r *Registry) Open(name string) (*Store, error) {
	if !validName(name) {
		return nil, hostcall.Errorf(hostcall.CodeConfigStoreOpen, "invalid store name %q", name)
	}
	r.mu.RLock()
	s, ok := r.stores[name]
	r.mu.RUnlock()
	if !ok {
		return nil, hostcall.Errorf(hostcall.CodeConfigStoreOpen, "no config store named %q", name)
	}
	return s, nil
}
