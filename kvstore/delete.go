// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kvstore

import "code.hybscloud.com/hostcall"

// Delete removes key. A missing item fails with CodeItemNotFound.
func (s *Store) Delete(key string) error {
	if err := s.begin(key); err != nil {
		return err
	}
	return s.delete(key)
}

// DeleteAsync starts a delete of key.
func (s *Store) DeleteAsync(key string) (hostcall.Serial, error) {
	if err := s.begin(key); err != nil {
		return 0, err
	}
	return s.deletes.Start(func() (struct{}, error) { return struct{}{}, s.delete(key) }), nil
}

// PendingDeleteWait redeems a delete id. Redeeming an id twice panics.
func (s *Store) PendingDeleteWait(id hostcall.Serial) error {
	_, err := s.deletes.Wait(id)
	return err
}

func (s *Store) delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, err := s.get(key)
	if err != nil {
		return err
	}
	if cur == nil {
		return errorf(CodeItemNotFound, "%q", key)
	}
	if err := s.db.Delete([]byte(key), nil); err != nil {
		return wrapError(CodeUnexpected, err)
	}
	return nil
}
