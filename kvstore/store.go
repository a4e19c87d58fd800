// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package kvstore is the host's key-value store. Items carry a body, optional
// metadata, a generation number that increases on every write, and an
// optional expiry. Every operation has a blocking form and an asynchronous
// form that returns a correlation id redeemed by the matching Pending*Wait.
package kvstore

import (
	"errors"
	"sync"
	"time"

	"code.hybscloud.com/hostcall"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"golang.org/x/time/rate"
)

// DefaultMaxValueSize bounds item bodies when Options.MaxValueSize is zero.
const DefaultMaxValueSize = 25 << 20

// Options configures a Store.
type Options struct {
	// MaxValueSize bounds the stored body after append or prepend.
	MaxValueSize int
	// RateLimit is the sustained operations per second; zero disables
	// limiting.
	RateLimit float64
	Burst     int
	// Dispatcher runs asynchronous operations. Nil runs each on its own
	// goroutine.
	Dispatcher hostcall.Dispatcher
	// Now overrides the clock used for expiry.
	Now func() time.Time
}

// Store is one named key-value store backed by LevelDB.
type Store struct {
	name    string
	db      *leveldb.DB
	opts    Options
	limiter *rate.Limiter

	// mu serializes read-modify-write sequences.
	mu sync.Mutex

	lookups *hostcall.Correlator[*LookupResponse]
	inserts *hostcall.Correlator[struct{}]
	deletes *hostcall.Correlator[struct{}]
	lists   *hostcall.Correlator[*ListPage]
}

// OpenMemory returns a store held entirely in memory.
func OpenMemory(name string, opts Options) (*Store, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, wrapError(CodeUnexpected, err)
	}
	return newStore(name, db, opts)
}

// OpenFile opens (or creates) a store persisted at path.
func OpenFile(name, path string, opts Options) (*Store, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, wrapError(CodeUnexpected, err)
	}
	return newStore(name, db, opts)
}

func newStore(name string, db *leveldb.DB, opts Options) (*Store, error) {
	if !validStoreName(name) {
		_ = db.Close()
		return nil, errorf(CodeInvalidStoreOptions, "invalid store name %q", name)
	}
	if opts.MaxValueSize < 0 || opts.RateLimit < 0 || opts.Burst < 0 {
		_ = db.Close()
		return nil, errorf(CodeInvalidStoreOptions, "negative limit")
	}
	if opts.MaxValueSize == 0 {
		opts.MaxValueSize = DefaultMaxValueSize
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	s := &Store{
		name:    name,
		db:      db,
		opts:    opts,
		lookups: hostcall.NewCorrelator[*LookupResponse](opts.Dispatcher),
		inserts: hostcall.NewCorrelator[struct{}](opts.Dispatcher),
		deletes: hostcall.NewCorrelator[struct{}](opts.Dispatcher),
		lists:   hostcall.NewCorrelator[*ListPage](opts.Dispatcher),
	}
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst == 0 {
			burst = max(1, int(opts.RateLimit))
		}
		s.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	return s, nil
}

func validStoreName(name string) bool {
	return name != "" && len(name) <= 255
}

// Name returns the store name.
func (s *Store) Name() string { return s.name }

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Release is a no-op; the registry owns the store.
func (s *Store) Release() {}

func (s *Store) admit() error {
	if s.limiter != nil && !s.limiter.AllowN(s.opts.Now(), 1) {
		return errorf(CodeTooManyRequests, "store %q", s.name)
	}
	return nil
}

// read returns the stored record for key, expired or not, or nil.
func (s *Store) read(key string) (*record, error) {
	data, err := s.db.Get([]byte(key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapError(CodeUnexpected, err)
	}
	return decodeRecord(data)
}

// get returns the live record for key, or nil. Callers hold mu. An expired
// record is removed.
func (s *Store) get(key string) (*record, error) {
	r, err := s.read(key)
	if err != nil || r == nil {
		return nil, err
	}
	if r.expired(s.opts.Now()) {
		if err := s.db.Delete([]byte(key), nil); err != nil {
			return nil, wrapError(CodeUnexpected, err)
		}
		return nil, nil
	}
	return r, nil
}

// reap removes key if it still holds an expired record. Readers that saw
// an expired record without holding mu call it; a record written since
// their read survives.
func (s *Store) reap(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = s.get(key)
}

func (s *Store) put(key string, r *record) error {
	data, err := encodeRecord(r)
	if err != nil {
		return wrapError(CodeUnexpected, err)
	}
	if err := s.db.Put([]byte(key), data, nil); err != nil {
		return wrapError(CodeUnexpected, err)
	}
	return nil
}
