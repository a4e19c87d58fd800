// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kvstore_test

import (
	"errors"
	"strings"
	"testing"

	"code.hybscloud.com/hostcall"
	"code.hybscloud.com/hostcall/kvstore"
)

func mustPanicPrefix(t *testing.T, prefix string, f func()) {
	t.Helper()
	defer func() {
		r := recover()
		msg, ok := r.(string)
		if !ok || !strings.HasPrefix(msg, prefix) {
			t.Fatalf("panic = %v, want prefix %q", r, prefix)
		}
	}()
	f()
}

func TestAsyncRoundTrip(t *testing.T) {
	skipRace(t)
	s, err := kvstore.OpenMemory("async", kvstore.Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	id, err := s.InsertAsync("k", hostcall.BodyFromString("v"))
	if err != nil {
		t.Fatalf("InsertAsync: %v", err)
	}
	if err := s.PendingInsertWait(id); err != nil {
		t.Fatalf("PendingInsertWait: %v", err)
	}
	mustPanicPrefix(t, "hostcall: ", func() { s.PendingInsertWait(id) })

	lid, err := s.LookupAsync("k")
	if err != nil {
		t.Fatalf("LookupAsync: %v", err)
	}
	r, err := s.PendingLookupWait(lid)
	if err != nil || r.TakeBody().String() != "v" {
		t.Fatalf("PendingLookupWait = %v, %v", r, err)
	}
	if r.Body().Len() != 0 {
		t.Fatal("TakeBody must leave an empty body")
	}

	missing, err := s.LookupAsync("missing")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.PendingLookupWait(missing); !errors.Is(err, kvstore.CodeItemNotFound) {
		t.Fatalf("missing err = %v", err)
	}

	did, err := s.DeleteAsync("k")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.PendingDeleteWait(did); err != nil {
		t.Fatalf("PendingDeleteWait: %v", err)
	}

	lsid, err := s.ListAsync()
	if err != nil {
		t.Fatal(err)
	}
	page, err := s.PendingListWait(lsid)
	if err != nil || len(page.Keys()) != 0 {
		t.Fatalf("PendingListWait = %v, %v", page, err)
	}
}

func TestAsyncInterleaved(t *testing.T) {
	skipRace(t)
	s, err := kvstore.OpenMemory("interleaved", kvstore.Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	ids := make([]hostcall.Serial, 0, 8)
	for _, k := range []string{"a", "b", "c", "d"} {
		id, err := s.InsertAsync(k, hostcall.BodyFromString(k))
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, id)
	}
	// Redeem out of submission order.
	for i := len(ids) - 1; i >= 0; i-- {
		if err := s.PendingInsertWait(ids[i]); err != nil {
			t.Fatalf("wait %d: %v", i, err)
		}
	}
	page, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(page.Keys(), ","); got != "a,b,c,d" {
		t.Fatalf("keys = %s", got)
	}
}
