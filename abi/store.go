// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package abi

import (
	"code.hybscloud.com/hostcall"
	"code.hybscloud.com/hostcall/configstore"
	"code.hybscloud.com/hostcall/secretstore"
)

var (
	configStores = hostcall.NewTable[configstore.Store]("ConfigStore")
	secretStores = hostcall.NewTable[secretstore.Store]("SecretStore")
	secrets      = hostcall.NewTable[secretstore.Secret]("Secret")
)

// ConfigStoreOpen opens a config store by name. Unknown names fail with
// hostcall.CodeConfigStoreOpen.
func ConfigStoreOpen(name []byte, out *Handle, errOut *Handle) {
	s, err := func() (*configstore.Store, error) {
		n, err := text(name)
		if err != nil {
			return nil, err
		}
		return runtime().Config.Open(n)
	}()
	s = try(errOut, s, err)
	*out = configStores.Insert(s)
}

// ConfigStoreGet writes the value of key to value and reports whether key
// is present.
func ConfigStoreGet(s Handle, key []byte, value *[]byte, errOut *Handle) bool {
	store := configStores.Borrow(s)
	v, ok, err := func() (string, bool, error) {
		k, err := text(key)
		if err != nil {
			return "", false, err
		}
		return store.Get(k)
	}()
	ok = try(errOut, ok, err)
	if ok {
		*value = []byte(v)
	}
	return ok
}

// ConfigStoreContains reports whether key is present.
func ConfigStoreContains(s Handle, key []byte, errOut *Handle) bool {
	store := configStores.Borrow(s)
	ok, err := func() (bool, error) {
		k, err := text(key)
		if err != nil {
			return false, err
		}
		return store.Contains(k)
	}()
	return try(errOut, ok, err)
}

// SecretStoreOpen opens a secret store by name. Unknown names fail with
// hostcall.CodeSecretStoreOpen.
func SecretStoreOpen(name []byte, out *Handle, errOut *Handle) {
	s, err := func() (*secretstore.Store, error) {
		n, err := text(name)
		if err != nil {
			return nil, err
		}
		return runtime().Secrets.Open(n)
	}()
	s = try(errOut, s, err)
	*out = secretStores.Insert(s)
}

// SecretStoreGet writes a Secret handle for key to out, or the null handle
// if the store has no such secret.
func SecretStoreGet(s Handle, key []byte, out *Handle, errOut *Handle) {
	store := secretStores.Borrow(s)
	sec, err := func() (*secretstore.Secret, error) {
		k, err := text(key)
		if err != nil {
			return nil, err
		}
		return store.Get(k)
	}()
	sec = try(errOut, sec, err)
	*out = secrets.Insert(sec)
}

// SecretStoreContains reports whether the store holds a secret called key.
func SecretStoreContains(s Handle, key []byte, errOut *Handle) bool {
	store := secretStores.Borrow(s)
	ok, err := func() (bool, error) {
		k, err := text(key)
		if err != nil {
			return false, err
		}
		return store.Contains(k)
	}()
	return try(errOut, ok, err)
}

// SecretFromBytes seals a copy of b into a Secret that belongs to no store.
func SecretFromBytes(b []byte, out *Handle, errOut *Handle) {
	sec, err := secretstore.FromBytes(b)
	sec = try(errOut, sec, err)
	*out = secrets.Insert(sec)
}

// SecretPlaintext writes the unsealed value of a Secret to out.
func SecretPlaintext(h Handle, out *[]byte, errOut *Handle) {
	pt, err := secrets.Borrow(h).Plaintext()
	pt = try(errOut, pt, err)
	if err == nil {
		*out = pt
	}
}
