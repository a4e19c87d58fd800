// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kvstore

import "code.hybscloud.com/hostcall"

// LookupResponse is a found item.
type LookupResponse struct {
	body       *hostcall.Body
	metadata   []byte
	generation uint64
}

// Body returns the item body.
func (r *LookupResponse) Body() *hostcall.Body { return r.body }

// TakeBody detaches the body, leaving an empty one.
func (r *LookupResponse) TakeBody() *hostcall.Body {
	b := r.body
	r.body = hostcall.NewBody()
	return b
}

// Metadata returns the item metadata, or nil.
func (r *LookupResponse) Metadata() []byte { return r.metadata }

// Generation is the write counter of the item at lookup time.
func (r *LookupResponse) Generation() uint64 { return r.generation }

// Lookup returns the item stored under key. Missing and expired items fail
// with CodeItemNotFound.
func (s *Store) Lookup(key string) (*LookupResponse, error) {
	if err := s.begin(key); err != nil {
		return nil, err
	}
	return s.lookup(key)
}

func (s *Store) lookup(key string) (*LookupResponse, error) {
	r, err := s.read(key)
	if err != nil {
		return nil, err
	}
	if r != nil && r.expired(s.opts.Now()) {
		s.reap(key)
		r = nil
	}
	if r == nil {
		return nil, errorf(CodeItemNotFound, "%q", key)
	}
	return &LookupResponse{
		body:       hostcall.BodyFromBytes(r.Body),
		metadata:   r.Metadata,
		generation: r.Generation,
	}, nil
}

// LookupAsync starts a lookup. Key validation and rate limiting fail
// synchronously; every other outcome is reported by PendingLookupWait.
func (s *Store) LookupAsync(key string) (hostcall.Serial, error) {
	if err := s.begin(key); err != nil {
		return 0, err
	}
	return s.lookups.Start(func() (*LookupResponse, error) { return s.lookup(key) }), nil
}

// PendingLookupWait redeems a LookupAsync id. Redeeming an id twice panics.
func (s *Store) PendingLookupWait(id hostcall.Serial) (*LookupResponse, error) {
	return s.lookups.Wait(id)
}

func (s *Store) begin(key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	return s.admit()
}
