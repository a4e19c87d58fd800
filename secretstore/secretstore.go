// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package secretstore keeps named secrets sealed in memory. Plaintext exists
// only for the duration of a Plaintext call's result.
package secretstore

import (
	"crypto/cipher"
	"crypto/rand"
	"sync"

	"code.hybscloud.com/hostcall"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	maxNameLen   = 255
	maxSecretLen = 64 << 10
)

// Secret is a sealed value.
type Secret struct {
	aead  cipher.AEAD
	name  string
	nonce []byte
	box   []byte
}

func seal(aead cipher.AEAD, name string, plaintext []byte) (*Secret, error) {
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return &Secret{
		aead:  aead,
		name:  name,
		nonce: nonce,
		box:   aead.Seal(nil, nonce, plaintext, []byte(name)),
	}, nil
}

func newAEAD() (cipher.AEAD, error) {
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	return chacha20poly1305.New(key)
}

// FromBytes seals b into a secret that belongs to no store.
func FromBytes(b []byte) (*Secret, error) {
	if len(b) > maxSecretLen {
		return nil, hostcall.Errorf(hostcall.CodeSecretStoreLookup, "secret longer than %d bytes", maxSecretLen)
	}
	aead, err := newAEAD()
	if err != nil {
		return nil, hostcall.WrapError(hostcall.CodeSecretStoreLookup, err)
	}
	s, err := seal(aead, "", b)
	if err != nil {
		return nil, hostcall.WrapError(hostcall.CodeSecretStoreLookup, err)
	}
	return s, nil
}

// Name returns the key the secret was stored under.
func (s *Secret) Name() string { return s.name }

// Plaintext unseals the secret into a fresh slice.
func (s *Secret) Plaintext() ([]byte, error) {
	pt, err := s.aead.Open(nil, s.nonce, s.box, []byte(s.name))
	if err != nil {
		return nil, hostcall.WrapError(hostcall.CodeSecretStoreLookup, err)
	}
	return pt, nil
}

// Store is one named set of secrets sealed under a per-store key.
type Store struct {
	name    string
	aead    cipher.AEAD
	secrets map[string]*Secret
}

// New seals items into a store.
func New(name string, items map[string][]byte) (*Store, error) {
	if !validName(name) {
		return nil, hostcall.Errorf(hostcall.CodeSecretStoreOpen, "invalid store name %q", name)
	}
	aead, err := newAEAD()
	if err != nil {
		return nil, hostcall.WrapError(hostcall.CodeSecretStoreOpen, err)
	}
	s := &Store{name: name, aead: aead, secrets: make(map[string]*Secret, len(items))}
	for k, v := range items {
		if !validName(k) || len(v) > maxSecretLen {
			return nil, hostcall.Errorf(hostcall.CodeSecretStoreOpen, "store %q: invalid secret %q", name, k)
		}
		sec, err := seal(aead, k, v)
		if err != nil {
			return nil, hostcall.WrapError(hostcall.CodeSecretStoreOpen, err)
		}
		s.secrets[k] = sec
	}
	return s, nil
}

func validName(name string) bool {
	return name != "" && len(name) <= maxNameLen
}

// Name returns the store name.
func (s *Store) Name() string { return s.name }

// Get returns the secret called key, or nil if absent. Malformed keys fail
// with hostcall.CodeSecretStoreLookup.
func (s *Store) Get(key string) (*Secret, error) {
	if !validName(key) {
		return nil, hostcall.Errorf(hostcall.CodeSecretStoreLookup, "invalid key %q", key)
	}
	return s.secrets[key], nil
}

// Contains reports whether the store holds a secret called key.
func (s *Store) Contains(key string) (bool, error) {
	sec, err := s.Get(key)
	return sec != nil, err
}

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
// hostcall.CodeSecretStoreOpen.
func (r *Registry) Add(s *Store) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.stores[s.name]; ok {
		return hostcall.Errorf(hostcall.CodeSecretStoreOpen, "store %q already registered", s.name)
	}
	r.stores[s.name] = s
	return nil
}

// Open returns the store called name. Unknown or malformed names fail with
// hostcall.CodeSecretStoreOpen.
func (r *Registry) Open(name string) (*Store, error) {
	if !validName(name) {
		return nil, hostcall.Errorf(hostcall.CodeSecretStoreOpen, "invalid store name %q", name)
	}
	r.mu.RLock()
	s, ok := r.stores[name]
	r.mu.RUnlock()
	if !ok {
		return nil, hostcall.Errorf(hostcall.CodeSecretStoreOpen, "no secret store named %q", name)
	}
	return s, nil
}
