// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kvstore

import (
	"time"

	"code.hybscloud.com/hostcall"
)

// InsertMode decides how an insert combines with an existing item.
type InsertMode uint8

const (
	// InsertOverwrite replaces the item.
	InsertOverwrite InsertMode = iota
	// InsertAdd fails with CodeItemPreconditionFailed if the item exists.
	InsertAdd
	// InsertAppend adds the body after the existing body.
	InsertAppend
	// InsertPrepend adds the body before the existing body.
	InsertPrepend
)

// InsertBuilder collects insert options. Setters return a modified copy.
type InsertBuilder struct {
	store       *Store
	mode        InsertMode
	ifGen       uint64
	hasIfGen    bool
	metadata    []byte
	hasMetadata bool
	ttl         time.Duration
}

// BuildInsert starts an overwrite insert without preconditions.
func (s *Store) BuildInsert() *InsertBuilder {
	return &InsertBuilder{store: s}
}

// Mode selects how the new body combines with an existing one.
func (b *InsertBuilder) Mode(m InsertMode) *InsertBuilder {
	nb := *b
	nb.mode = m
	return &nb
}

// IfGenerationMatch makes the insert fail with CodeItemPreconditionFailed
// unless the item exists with generation gen.
func (b *InsertBuilder) IfGenerationMatch(gen uint64) *InsertBuilder {
	nb := *b
	nb.ifGen, nb.hasIfGen = gen, true
	return &nb
}

// Metadata replaces the item metadata. Without it, the existing metadata
// is kept.
func (b *InsertBuilder) Metadata(md string) *InsertBuilder {
	nb := *b
	nb.metadata, nb.hasMetadata = []byte(md), true
	return &nb
}

// TimeToLive expires the item d after the insert.
func (b *InsertBuilder) TimeToLive(d time.Duration) *InsertBuilder {
	nb := *b
	nb.ttl = d
	return &nb
}

func (b *InsertBuilder) validate(key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if b.mode > InsertPrepend {
		return errorf(CodeItemBadRequest, "unknown insert mode %d", b.mode)
	}
	if len(b.metadata) > maxMetadataLen {
		return errorf(CodeItemBadRequest, "metadata longer than %d bytes", maxMetadataLen)
	}
	if b.ttl < 0 {
		return errorf(CodeItemBadRequest, "negative time to live")
	}
	return b.store.admit()
}

// Execute consumes body and writes it under key.
func (b *InsertBuilder) Execute(key string, body *hostcall.Body) error {
	data := body.IntoBytes()
	if err := b.validate(key); err != nil {
		return err
	}
	return b.store.insert(*b, key, data)
}

// ExecuteAsync consumes body and starts the insert. Validation and rate
// limiting fail synchronously.
func (b *InsertBuilder) ExecuteAsync(key string, body *hostcall.Body) (hostcall.Serial, error) {
	data := body.IntoBytes()
	if err := b.validate(key); err != nil {
		return 0, err
	}
	opt := *b
	return b.store.inserts.Start(func() (struct{}, error) {
		return struct{}{}, opt.store.insert(opt, key, data)
	}), nil
}

// Insert overwrites key with body.
func (s *Store) Insert(key string, body *hostcall.Body) error {
	return s.BuildInsert().Execute(key, body)
}

// InsertAsync starts an overwrite of key with body.
func (s *Store) InsertAsync(key string, body *hostcall.Body) (hostcall.Serial, error) {
	return s.BuildInsert().ExecuteAsync(key, body)
}

// PendingInsertWait redeems an insert id. Redeeming an id twice panics.
func (s *Store) PendingInsertWait(id hostcall.Serial) error {
	_, err := s.inserts.Wait(id)
	return err
}

func (s *Store) insert(b InsertBuilder, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.get(key)
	if err != nil {
		return err
	}
	if b.hasIfGen && (cur == nil || cur.Generation != b.ifGen) {
		return errorf(CodeItemPreconditionFailed, "generation mismatch for %q", key)
	}
	next := &record{Generation: 1}
	if cur != nil {
		next.Generation = cur.Generation + 1
		next.Metadata = cur.Metadata
	}
	switch b.mode {
	case InsertAdd:
		if cur != nil {
			return errorf(CodeItemPreconditionFailed, "%q already exists", key)
		}
		next.Body = data
	case InsertAppend:
		if cur != nil {
			next.Body = append(cur.Body, data...)
		} else {
			next.Body = data
		}
	case InsertPrepend:
		if cur != nil {
			next.Body = append(data, cur.Body...)
		} else {
			next.Body = data
		}
	default:
		next.Body = data
	}
	if len(next.Body) > s.opts.MaxValueSize {
		return errorf(CodeItemPayloadTooLarge, "%d bytes exceeds %d", len(next.Body), s.opts.MaxValueSize)
	}
	if b.hasMetadata {
		next.Metadata = b.metadata
	}
	if b.ttl > 0 {
		next.ExpiresAt = s.opts.Now().Add(b.ttl).UnixNano()
	}
	return s.put(key, next)
}
