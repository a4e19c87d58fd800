// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kvstore_test

import (
	"errors"
	"reflect"
	"testing"

	"code.hybscloud.com/hostcall/kvstore"
)

func seed(t *testing.T, s *kvstore.Store, keys ...string) {
	t.Helper()
	for _, k := range keys {
		if err := s.Insert(k, str(k)); err != nil {
			t.Fatalf("Insert(%q): %v", k, err)
		}
	}
}

func TestListPages(t *testing.T) {
	s := newStore(t, kvstore.Options{})
	seed(t, s, "a3", "b1", "a1", "a5", "a2", "a4")

	it := s.BuildList().Prefix("a").Limit(2).Iter()
	var pages [][]string
	for {
		page, ok, err := it.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		if page.Prefix() != "a" || page.Limit() != 2 {
			t.Fatalf("page options = %q %d", page.Prefix(), page.Limit())
		}
		pages = append(pages, page.Keys())
	}
	want := [][]string{{"a1", "a2"}, {"a3", "a4"}, {"a5"}}
	if !reflect.DeepEqual(pages, want) {
		t.Fatalf("pages = %v, want %v", pages, want)
	}
	if _, ok, _ := it.Next(); ok {
		t.Fatal("exhausted cursor returned a page")
	}
}

func TestListCursorResume(t *testing.T) {
	s := newStore(t, kvstore.Options{})
	seed(t, s, "x", "y", "z")

	first, err := s.BuildList().Limit(1).Execute()
	if err != nil {
		t.Fatal(err)
	}
	cur, ok := first.NextCursor()
	if !ok {
		t.Fatal("expected a next cursor")
	}
	second, err := s.BuildList().Limit(5).Cursor(cur).EventualConsistency().Execute()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(second.Keys(), []string{"y", "z"}) {
		t.Fatalf("keys = %v", second.Keys())
	}
	if _, ok := second.NextCursor(); ok {
		t.Fatal("last page must not carry a cursor")
	}
	if second.Mode() != kvstore.ListEventual || second.Mode().String() != "eventual" {
		t.Fatalf("mode = %v", second.Mode())
	}
}

func TestListExactLimit(t *testing.T) {
	s := newStore(t, kvstore.Options{})
	seed(t, s, "p1", "p2")
	page, err := s.BuildList().Limit(2).Execute()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := page.NextCursor(); ok {
		t.Fatal("a page that ends the listing must not carry a cursor")
	}
}

func TestListBadRequest(t *testing.T) {
	s := newStore(t, kvstore.Options{})
	for _, b := range []*kvstore.ListBuilder{
		s.BuildList().Limit(0),
		s.BuildList().Limit(1001),
		s.BuildList().Cursor("not base64!"),
	} {
		if _, err := b.Execute(); !errors.Is(err, kvstore.CodeItemBadRequest) {
			t.Fatalf("err = %v", err)
		}
		if _, err := b.ExecuteAsync(); !errors.Is(err, kvstore.CodeItemBadRequest) {
			t.Fatalf("async err = %v", err)
		}
	}
	it := s.BuildList().Limit(0).Iter()
	if _, ok, err := it.Next(); ok || !errors.Is(err, kvstore.CodeItemBadRequest) {
		t.Fatalf("Iter.Next = %v, %v", ok, err)
	}
	if _, ok, err := it.Next(); ok || err != nil {
		t.Fatal("cursor must stay done after an error")
	}
}
