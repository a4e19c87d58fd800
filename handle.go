// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hostcall

import "strconv"

// Handle is an opaque reference to a host-owned resource. Zero means absent.
type Handle = Serial

// owner is the consumed marker embedded in every owned type.
type owner struct {
	consumed bool
}

// take marks the value consumed. A second take panics.
func (o *owner) take(kind string) {
	if o.consumed {
		panic("hostcall: " + kind + " used after it was consumed")
	}
	o.consumed = true
}

// borrow panics if the value has already been consumed.
func (o *owner) borrow(kind string) {
	if o.consumed {
		panic("hostcall: " + kind + " used after it was consumed")
	}
}

// Table maps handles to host-owned values of one type.
//
// Insert transfers ownership into the table. Borrow returns the value and
// keeps the handle live. Take retires the handle and returns the value to the
// caller, which now owns it. Release retires the handle and releases the
// value. Any use of a zero, unknown or retired handle panics.
//
// A Table belongs to the single caller context and is not safe for
// concurrent use.
type Table[T any] struct {
	kind    string
	live    map[Handle]*T
	retired map[Handle]struct{}
}

// NewTable returns an empty table whose handles are reported as kind.
func NewTable[T any](kind string) *Table[T] {
	t := &Table[T]{kind: kind, live: make(map[Handle]*T)}
	if checked {
		t.retired = make(map[Handle]struct{})
	}
	liveHandles.WithLabelValues(kind).Add(0)
	return t
}

// Kind returns the type name the table was created with.
func (t *Table[T]) Kind() string { return t.kind }

// Len returns the number of live handles.
func (t *Table[T]) Len() int { return len(t.live) }

// Insert issues a fresh handle for v. A nil v yields the null handle.
func (t *Table[T]) Insert(v *T) Handle {
	if v == nil {
		return 0
	}
	h := nextSerial()
	t.live[h] = v
	liveHandles.WithLabelValues(t.kind).Inc()
	return h
}

// Borrow returns the value behind h without retiring it.
func (t *Table[T]) Borrow(h Handle) *T {
	v, ok := t.live[h]
	if !ok {
		t.misuse(h)
	}
	return v
}

// Take retires h and hands its value to the caller.
func (t *Table[T]) Take(h Handle) *T {
	v := t.Borrow(h)
	delete(t.live, h)
	if checked {
		t.retired[h] = struct{}{}
	}
	liveHandles.WithLabelValues(t.kind).Dec()
	return v
}

// Release retires h and releases its value. Releasing the null handle is a
// no-op.
func (t *Table[T]) Release(h Handle) {
	if h == 0 {
		return
	}
	v := t.Take(h)
	if r, ok := any(v).(interface{ Release() }); ok {
		r.Release()
	}
}

func (t *Table[T]) misuse(h Handle) {
	switch {
	case h == 0:
		panic("hostcall: null " + t.kind + " handle")
	case checked:
		if _, ok := t.retired[h]; ok {
			panic("hostcall: " + t.kind + " handle " + strconv.FormatUint(uint64(h), 10) + " used after release")
		}
	}
	panic("hostcall: unknown " + t.kind + " handle " + strconv.FormatUint(uint64(h), 10))
}
