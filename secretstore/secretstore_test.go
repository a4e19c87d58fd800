// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package secretstore_test

import (
	"bytes"
	"errors"
	"testing"

	"code.hybscloud.com/hostcall"
	"code.hybscloud.com/hostcall/secretstore"
)

func TestSecretStore(t *testing.T) {
	s, err := secretstore.New("vault", map[string][]byte{"api-key": []byte("s3cr3t")})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	sec, err := s.Get("api-key")
	if err != nil || sec == nil {
		t.Fatalf("Get = %v, %v", sec, err)
	}
	if sec.Name() != "api-key" {
		t.Fatalf("Name = %q", sec.Name())
	}
	pt, err := sec.Plaintext()
	if err != nil || !bytes.Equal(pt, []byte("s3cr3t")) {
		t.Fatalf("Plaintext = %q, %v", pt, err)
	}
	pt[0] = 'X'
	again, _ := sec.Plaintext()
	if string(again) != "s3cr3t" {
		t.Fatal("Plaintext must return a fresh copy")
	}

	missing, err := s.Get("other")
	if err != nil || missing != nil {
		t.Fatalf("Get(other) = %v, %v", missing, err)
	}
	if ok, _ := s.Contains("api-key"); !ok {
		t.Fatal("Contains(api-key) = false")
	}
	if _, err := s.Get(""); !errors.Is(err, hostcall.CodeSecretStoreLookup) {
		t.Fatalf("Get(\"\") err = %v", err)
	}
}

func TestSecretFromBytes(t *testing.T) {
	sec, err := secretstore.FromBytes([]byte("inline"))
	if err != nil {
		t.Fatal(err)
	}
	if sec.Name() != "" {
		t.Fatalf("Name = %q", sec.Name())
	}
	pt, err := sec.Plaintext()
	if err != nil || string(pt) != "inline" {
		t.Fatalf("Plaintext = %q, %v", pt, err)
	}
	if _, err := secretstore.FromBytes(make([]byte, 64<<10+1)); !errors.Is(err, hostcall.CodeSecretStoreLookup) {
		t.Fatalf("oversized err = %v", err)
	}
}

func TestSecretRegistry(t *testing.T) {
	reg := secretstore.NewRegistry()
	s, err := secretstore.New("vault", nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := reg.Add(s); err != nil {
		t.Fatal(err)
	}
	if err := reg.Add(s); !errors.Is(err, hostcall.CodeSecretStoreOpen) {
		t.Fatalf("duplicate err = %v", err)
	}
	if got, err := reg.Open("vault"); err != nil || got.Name() != "vault" {
		t.Fatalf("Open = %v, %v", got, err)
	}
	if _, err := reg.Open("nope"); !errors.Is(err, hostcall.CodeSecretStoreOpen) {
		t.Fatalf("Open(nope) err = %v", err)
	}
	if _, err := secretstore.New("", nil); !errors.Is(err, hostcall.CodeSecretStoreOpen) {
		t.Fatalf("New(\"\") err = %v", err)
	}
}
