// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kvstore

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-json-experiment/json"
)

const (
	maxKeyLen      = 1024
	maxMetadataLen = 2000
	acmePrefix     = ".well-known/acme-challenge/"
)

// record is the stored form of an item.
type record struct {
	Body       []byte `json:"body"`
	Metadata   []byte `json:"metadata,omitzero"`
	Generation uint64 `json:"generation"`
	ExpiresAt  int64  `json:"expires_at,omitzero"`
}

func (r *record) expired(now time.Time) bool {
	return r.ExpiresAt != 0 && now.UnixNano() >= r.ExpiresAt
}

func encodeRecord(r *record) ([]byte, error) {
	return json.Marshal(r)
}

func decodeRecord(data []byte) (*record, error) {
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, wrapError(CodeUnexpected, err)
	}
	return &r, nil
}

func validateKey(key string) error {
	switch {
	case key == "":
		return errorf(CodeInvalidKey, "empty key")
	case len(key) > maxKeyLen:
		return errorf(CodeInvalidKey, "key longer than %d bytes", maxKeyLen)
	case !utf8.ValidString(key):
		return errorf(CodeInvalidKey, "key is not valid UTF-8")
	case key == "." || key == "..":
		return errorf(CodeInvalidKey, "key %q is reserved", key)
	case strings.HasPrefix(key, acmePrefix):
		return errorf(CodeInvalidKey, "key uses reserved prefix %q", acmePrefix)
	case strings.ContainsFunc(key, func(r rune) bool { return r < 0x20 || r == 0x7f }):
		return errorf(CodeInvalidKey, "key contains control characters")
	}
	return nil
}
