// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package abi

import (
	"math"
	"unicode/utf8"

	"code.hybscloud.com/hostcall"
	"code.hybscloud.com/hostcall/kvstore"
)

var kvStores = hostcall.NewTable[kvstore.Store]("KVStore")

func kvKey(key []byte) (string, error) {
	if !utf8.Valid(key) {
		return "", kvstore.CodeInvalidKey
	}
	return string(key), nil
}

// KVStoreOpen opens a store by name. errOut receives a KVError handle.
func KVStoreOpen(name []byte, out *Handle, errOut *Handle) {
	s, err := func() (*kvstore.Store, error) {
		if !utf8.Valid(name) {
			return nil, kvstore.CodeInvalidStoreOptions
		}
		return runtime().KV.Open(string(name))
	}()
	s = kvTry(errOut, s, err)
	*out = kvStores.Insert(s)
}

// KVStoreInsertAsync starts an overwrite of key with a copy of body and
// writes the correlation id to out.
func KVStoreInsertAsync(s Handle, key, body []byte, out *uint32, errOut *Handle) {
	store := kvStores.Borrow(s)
	id, err := func() (uint32, error) {
		k, err := kvKey(key)
		if err != nil {
			return 0, err
		}
		return store.InsertAsync(k, hostcall.BodyFromBytes(body))
	}()
	*out = kvTry(errOut, id, err)
}

// KVStoreLookupAsync starts a lookup of key.
func KVStoreLookupAsync(s Handle, key []byte, out *uint32, errOut *Handle) {
	store := kvStores.Borrow(s)
	id, err := func() (uint32, error) {
		k, err := kvKey(key)
		if err != nil {
			return 0, err
		}
		return store.LookupAsync(k)
	}()
	*out = kvTry(errOut, id, err)
}

// KVStoreDeleteAsync starts a delete of key.
func KVStoreDeleteAsync(s Handle, key []byte, out *uint32, errOut *Handle) {
	store := kvStores.Borrow(s)
	id, err := func() (uint32, error) {
		k, err := kvKey(key)
		if err != nil {
			return 0, err
		}
		return store.DeleteAsync(k)
	}()
	*out = kvTry(errOut, id, err)
}

// KVStorePendingInsertWait redeems an insert id. Redeeming an id twice
// panics.
func KVStorePendingInsertWait(s Handle, id uint32, errOut *Handle) {
	kvSetErr(errOut, kvStores.Borrow(s).PendingInsertWait(id))
}

// KVStorePendingLookupWait redeems a lookup id and writes the item.
func KVStorePendingLookupWait(s Handle, id uint32, body, metadata *[]byte, generation *uint64, errOut *Handle) {
	r, err := kvStores.Borrow(s).PendingLookupWait(id)
	r = kvTry(errOut, r, err)
	if r == nil {
		return
	}
	*body = r.TakeBody().IntoBytes()
	*metadata = r.Metadata()
	*generation = r.Generation()
}

// KVStorePendingDeleteWait redeems a delete id.
func KVStorePendingDeleteWait(s Handle, id uint32, errOut *Handle) {
	kvSetErr(errOut, kvStores.Borrow(s).PendingDeleteWait(id))
}

// KVStoreListAsync starts a listing of keys starting with prefix, resuming
// after cursor when it is not empty. A zero limit selects the default page
// size.
func KVStoreListAsync(s Handle, prefix, cursor []byte, limit uint32, eventual bool, out *uint32, errOut *Handle) {
	store := kvStores.Borrow(s)
	id, err := func() (uint32, error) {
		if !utf8.Valid(prefix) || !utf8.Valid(cursor) {
			return 0, kvstore.CodeItemBadRequest
		}
		b := store.BuildList().Prefix(string(prefix)).Cursor(string(cursor))
		if limit != 0 {
			b = b.Limit(int(min(limit, math.MaxInt32)))
		}
		if eventual {
			b = b.EventualConsistency()
		}
		return b.ExecuteAsync()
	}()
	*out = kvTry(errOut, id, err)
}

// KVStorePendingListWait redeems a list id. It writes the keys of the page
// and the cursor of the next page, and reports whether there is one.
func KVStorePendingListWait(s Handle, id uint32, keys *[][]byte, next *[]byte, errOut *Handle) bool {
	page, err := kvStores.Borrow(s).PendingListWait(id)
	page = kvTry(errOut, page, err)
	if page == nil {
		return false
	}
	out := make([][]byte, len(page.Keys()))
	for i, k := range page.Keys() {
		out[i] = []byte(k)
	}
	*keys = out
	c, more := page.NextCursor()
	if more {
		*next = []byte(c)
	}
	return more
}
