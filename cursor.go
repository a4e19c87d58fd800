// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hostcall

// cursor walks a snapshot one element at a time. Once it reports the end it
// keeps reporting the end.
type cursor[T any] struct {
	items []T
	pos   int
	done  bool
}

func newCursor[T any](items []T) cursor[T] {
	return cursor[T]{items: items}
}

func (c *cursor[T]) next() (T, bool) {
	if c.done || c.pos >= len(c.items) {
		c.done = true
		c.items = nil
		var zero T
		return zero, false
	}
	v := c.items[c.pos]
	c.pos++
	return v, true
}

func (c *cursor[T]) release() {
	c.done = true
	c.items = nil
}

// HeaderValuesCursor yields the values of one header name in order.
type HeaderValuesCursor struct {
	c cursor[HeaderValue]
}

// Next returns the next value, or false once the values are exhausted.
func (c *HeaderValuesCursor) Next() (HeaderValue, bool) { return c.c.next() }

// Release drops the snapshot. Next reports exhaustion afterwards.
func (c *HeaderValuesCursor) Release() { c.c.release() }

// HeaderNamesCursor yields distinct header names in first-insertion order.
type HeaderNamesCursor struct {
	c cursor[string]
}

// Next returns the next name, or false once the names are exhausted.
func (c *HeaderNamesCursor) Next() (string, bool) { return c.c.next() }

// Release drops the snapshot.
func (c *HeaderNamesCursor) Release() { c.c.release() }

type headerPair struct {
	name  string
	value HeaderValue
}

// HeadersCursor yields every (name, value) pair, names in first-insertion
// order and values in insertion order within a name.
type HeadersCursor struct {
	c cursor[headerPair]
}

// Next returns the next pair, or false once the pairs are exhausted.
func (c *HeadersCursor) Next() (string, HeaderValue, bool) {
	p, ok := c.c.next()
	return p.name, p.value, ok
}

// Release drops the snapshot.
func (c *HeadersCursor) Release() { c.c.release() }
