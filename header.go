// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hostcall

import (
	"maps"
	"net/http"
	"slices"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/http/httpguts"
)

// HeaderValue is one header value with its sensitivity flag. Sensitive
// values are redacted from logs and never indexed by intermediaries.
type HeaderValue struct {
	b         []byte
	sensitive bool
}

// NewHeaderValue copies b into a non-sensitive value.
func NewHeaderValue(b []byte) HeaderValue {
	return HeaderValue{b: slices.Clone(b)}
}

// Bytes returns the raw value. Values handed out by a [Header] or one of
// its cursors own their bytes.
func (v HeaderValue) Bytes() []byte { return v.b }

func (v HeaderValue) clone() HeaderValue {
	v.b = slices.Clone(v.b)
	return v
}

func cloneValues(vs []HeaderValue) []HeaderValue {
	out := make([]HeaderValue, len(vs))
	for i, v := range vs {
		out[i] = v.clone()
	}
	return out
}

// Text returns the value as a string and whether it is valid UTF-8.
func (v HeaderValue) Text() (string, bool) {
	return string(v.b), utf8.Valid(v.b)
}

// IsSensitive reports whether v must be kept out of logs and caches.
func (v HeaderValue) IsSensitive() bool { return v.sensitive }

// WithSensitive returns a copy of v with the sensitivity flag set to s.
func (v HeaderValue) WithSensitive(s bool) HeaderValue {
	v.sensitive = s
	return v
}

type headerField struct {
	name   string
	values []HeaderValue
}

// Header is an ordered multimap of header names to values. Names compare
// case-insensitively and are stored lower-cased.
type Header struct {
	fields []headerField
}

func validateHeader(name string, value []byte) (string, error) {
	if !httpguts.ValidHeaderFieldName(name) {
		return "", errorf(CodeInvalidHeaderName, "%q", name)
	}
	if value != nil && !httpguts.ValidHeaderFieldValue(string(value)) {
		return "", errorf(CodeInvalidHeaderValue, "for %s", name)
	}
	return strings.ToLower(name), nil
}

func (h *Header) index(name string) int {
	name = strings.ToLower(name)
	for i := range h.fields {
		if h.fields[i].name == name {
			return i
		}
	}
	return -1
}

// Set replaces every value of name with value.
func (h *Header) Set(name string, value []byte) error {
	return h.SetValue(name, NewHeaderValue(value))
}

// SetValue is Set with an explicit sensitivity flag.
func (h *Header) SetValue(name string, v HeaderValue) error {
	key, err := validateHeader(name, v.b)
	if err != nil {
		return err
	}
	if i := h.index(key); i >= 0 {
		h.fields[i].values = []HeaderValue{v}
		return nil
	}
	h.fields = append(h.fields, headerField{name: key, values: []HeaderValue{v}})
	return nil
}

// Append adds value after the existing values of name.
func (h *Header) Append(name string, value []byte) error {
	return h.AppendValue(name, NewHeaderValue(value))
}

// AppendValue is Append with an explicit sensitivity flag.
func (h *Header) AppendValue(name string, v HeaderValue) error {
	key, err := validateHeader(name, v.b)
	if err != nil {
		return err
	}
	if i := h.index(key); i >= 0 {
		h.fields[i].values = append(h.fields[i].values, v)
		return nil
	}
	h.fields = append(h.fields, headerField{name: key, values: []HeaderValue{v}})
	return nil
}

// Get returns the first value of name.
func (h *Header) Get(name string) (HeaderValue, bool) {
	if i := h.index(name); i >= 0 {
		return h.fields[i].values[0].clone(), true
	}
	return HeaderValue{}, false
}

// GetAll returns a copy of every value of name.
func (h *Header) GetAll(name string) []HeaderValue {
	if i := h.index(name); i >= 0 {
		return cloneValues(h.fields[i].values)
	}
	return nil
}

// Remove deletes name and reports whether it was present.
func (h *Header) Remove(name string) bool {
	i := h.index(name)
	if i < 0 {
		return false
	}
	h.fields = slices.Delete(h.fields, i, i+1)
	return true
}

// Contains reports whether name is present.
func (h *Header) Contains(name string) bool { return h.index(name) >= 0 }

// Len returns the number of distinct names.
func (h *Header) Len() int { return len(h.fields) }

// Names returns the distinct names in first-insertion order.
func (h *Header) Names() []string {
	names := make([]string, len(h.fields))
	for i := range h.fields {
		names[i] = h.fields[i].name
	}
	return names
}

// Clone returns a deep copy of h.
func (h *Header) Clone() Header {
	out := Header{fields: make([]headerField, len(h.fields))}
	for i, f := range h.fields {
		out.fields[i] = headerField{name: f.name, values: cloneValues(f.values)}
	}
	return out
}

// Values returns a cursor over the values of name. An invalid name fails
// with CodeInvalidHeaderName.
func (h *Header) Values(name string) (*HeaderValuesCursor, error) {
	if !httpguts.ValidHeaderFieldName(name) {
		return nil, errorf(CodeInvalidHeaderName, "%q", name)
	}
	return &HeaderValuesCursor{c: newCursor(h.GetAll(name))}, nil
}

// NamesCursor returns a cursor over the distinct names.
func (h *Header) NamesCursor() *HeaderNamesCursor {
	return &HeaderNamesCursor{c: newCursor(h.Names())}
}

// PairsCursor returns a cursor over every (name, value) pair.
func (h *Header) PairsCursor() *HeadersCursor {
	var pairs []headerPair
	for _, f := range h.fields {
		for _, v := range f.values {
			pairs = append(pairs, headerPair{name: f.name, value: v.clone()})
		}
	}
	return &HeadersCursor{c: newCursor(pairs)}
}

func (h *Header) toHTTP() http.Header {
	out := make(http.Header, len(h.fields))
	for _, f := range h.fields {
		key := http.CanonicalHeaderKey(f.name)
		for _, v := range f.values {
			out[key] = append(out[key], string(v.b))
		}
	}
	return out
}

// headerFromHTTP copies hh in sorted name order, since http.Header does not
// keep insertion order. Values that fail validation are left out and their
// names returned in dropped.
func headerFromHTTP(hh http.Header) (h Header, dropped []string) {
	for _, name := range slices.Sorted(maps.Keys(hh)) {
		for _, v := range hh[name] {
			if err := h.Append(name, []byte(v)); err != nil {
				dropped = append(dropped, strings.ToLower(name))
			}
		}
	}
	return h, dropped
}
