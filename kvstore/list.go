// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kvstore

import (
	"encoding/base64"

	"code.hybscloud.com/hostcall"
	"github.com/syndtr/goleveldb/leveldb/util"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

// ListMode selects the consistency of a listing.
type ListMode uint8

const (
	ListStrong ListMode = iota
	ListEventual
)

// String returns "strong" or "eventual".
func (m ListMode) String() string {
	if m == ListEventual {
		return "eventual"
	}
	return "strong"
}

// ListPage is one page of keys in ascending order.
type ListPage struct {
	keys   []string
	next   string
	prefix string
	limit  int
	mode   ListMode
}

// Keys returns the keys of the page in ascending order.
func (p *ListPage) Keys() []string { return p.keys }

// NextCursor returns the cursor of the following page, or false on the last
// page.
func (p *ListPage) NextCursor() (string, bool) { return p.next, p.next != "" }

// Prefix returns the prefix the page was listed with.
func (p *ListPage) Prefix() string { return p.prefix }

// Limit returns the page size the page was listed with.
func (p *ListPage) Limit() int { return p.limit }

// Mode returns the consistency the page was listed with.
func (p *ListPage) Mode() ListMode { return p.mode }

// ListBuilder collects list options. Setters return a modified copy.
type ListBuilder struct {
	store  *Store
	prefix string
	cursor string
	limit  int
	mode   ListMode
}

// BuildList starts a strong listing of every key.
func (s *Store) BuildList() *ListBuilder {
	return &ListBuilder{store: s, limit: defaultListLimit}
}

// Prefix restricts the listing to keys starting with p.
func (b *ListBuilder) Prefix(p string) *ListBuilder {
	nb := *b
	nb.prefix = p
	return &nb
}

// Cursor resumes after the page that returned c.
func (b *ListBuilder) Cursor(c string) *ListBuilder {
	nb := *b
	nb.cursor = c
	return &nb
}

// Limit sets the page size, 1 to 1000.
func (b *ListBuilder) Limit(n int) *ListBuilder {
	nb := *b
	nb.limit = n
	return &nb
}

// EventualConsistency accepts a possibly stale listing.
func (b *ListBuilder) EventualConsistency() *ListBuilder {
	nb := *b
	nb.mode = ListEventual
	return &nb
}

func (b *ListBuilder) validate() ([]byte, error) {
	if b.limit <= 0 || b.limit > maxListLimit {
		return nil, errorf(CodeItemBadRequest, "limit %d outside 1..%d", b.limit, maxListLimit)
	}
	var after []byte
	if b.cursor != "" {
		var err error
		after, err = base64.RawURLEncoding.DecodeString(b.cursor)
		if err != nil {
			return nil, errorf(CodeItemBadRequest, "malformed cursor")
		}
	}
	return after, b.store.admit()
}

// Execute returns one page.
func (b *ListBuilder) Execute() (*ListPage, error) {
	after, err := b.validate()
	if err != nil {
		return nil, err
	}
	return b.store.list(*b, after)
}

// ExecuteAsync starts a listing. Option errors fail synchronously.
func (b *ListBuilder) ExecuteAsync() (hostcall.Serial, error) {
	after, err := b.validate()
	if err != nil {
		return 0, err
	}
	opt := *b
	return b.store.lists.Start(func() (*ListPage, error) { return opt.store.list(opt, after) }), nil
}

// Iter returns a cursor that walks every page.
func (b *ListBuilder) Iter() *ListCursor {
	return &ListCursor{b: *b}
}

// List returns the first page of every key.
func (s *Store) List() (*ListPage, error) {
	return s.BuildList().Execute()
}

// ListAsync starts a listing of the first page of every key.
func (s *Store) ListAsync() (hostcall.Serial, error) {
	return s.BuildList().ExecuteAsync()
}

// PendingListWait redeems a list id. Redeeming an id twice panics.
func (s *Store) PendingListWait(id hostcall.Serial) (*ListPage, error) {
	return s.lists.Wait(id)
}

func (s *Store) list(b ListBuilder, after []byte) (*ListPage, error) {
	page := &ListPage{prefix: b.prefix, limit: b.limit, mode: b.mode}
	now := s.opts.Now()
	it := s.db.NewIterator(util.BytesPrefix([]byte(b.prefix)), nil)
	defer it.Release()

	ok := it.First()
	if after != nil {
		ok = it.Seek(after)
		if ok && string(it.Key()) == string(after) {
			ok = it.Next()
		}
	}
	for ; ok; ok = it.Next() {
		r, err := decodeRecord(it.Value())
		if err != nil {
			return nil, err
		}
		if r.expired(now) {
			continue
		}
		if len(page.keys) == b.limit {
			last := page.keys[len(page.keys)-1]
			page.next = base64.RawURLEncoding.EncodeToString([]byte(last))
			break
		}
		page.keys = append(page.keys, string(it.Key()))
	}
	if err := it.Error(); err != nil {
		return nil, wrapError(CodeUnexpected, err)
	}
	return page, nil
}

// ListCursor walks list pages until the last one.
type ListCursor struct {
	b    ListBuilder
	done bool
}

// Next returns the next page. It reports false once the last page has been
// returned or after an error.
func (c *ListCursor) Next() (*ListPage, bool, error) {
	if c.done {
		return nil, false, nil
	}
	page, err := c.b.Execute()
	if err != nil {
		c.done = true
		return nil, false, err
	}
	next, more := page.NextCursor()
	if more {
		c.b.cursor = next
	} else {
		c.done = true
	}
	return page, true, nil
}
