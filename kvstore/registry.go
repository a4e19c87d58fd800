// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kvstore

import (
	"errors"
	"slices"
	"sync"
)

// Registry holds the stores a host exposes by name.
type Registry struct {
	mu     sync.RWMutex
	stores map[string]*Store
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{stores: make(map[string]*Store)}
}

// Add registers s under its name.
func (r *Registry) Add(s *Store) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.stores[s.name]; ok {
		return errorf(CodeInvalidStoreOptions, "store %q already registered", s.name)
	}
	r.stores[s.name] = s
	return nil
}

// Open returns the store called name. Unknown names fail with
// CodeStoreNotFound.
func (r *Registry) Open(name string) (*Store, error) {
	if !validStoreName(name) {
		return nil, errorf(CodeInvalidStoreOptions, "invalid store name %q", name)
	}
	r.mu.RLock()
	s, ok := r.stores[name]
	r.mu.RUnlock()
	if !ok {
		return nil, errorf(CodeStoreNotFound, "%q", name)
	}
	return s, nil
}

// Names returns the registered names in ascending order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.stores))
	for name := range r.stores {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Close closes every store.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var errs []error
	for name, s := range r.stores {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(r.stores, name)
	}
	return errors.Join(errs...)
}
