// Copyright 2025 The Flatutil Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package flat

import "slices"

// List is a resizable array list. The zero value is an empty list ready for
// use.
type List[T any] struct {
	elems []T
}

// NewList constructs a List with room for capacity elements before the first
// reallocation.
func NewList[T any](capacity int) *List[T] {
	return &List[T]{elems: make([]T, 0, capacity)}
}

// Len returns the number of elements in the list.
func (l *List[T]) Len() int {
	return len(l.elems)
}

// IsEmpty reports whether the list holds no elements.
func (l *List[T]) IsEmpty() bool {
	return len(l.elems) == 0
}

// Get returns the element at index i. It panics if i is out of range.
func (l *List[T]) Get(i int) T {
	return l.elems[i]
}

// Set replaces the element at index i, returning the previous element. It
// panics if i is out of range.
func (l *List[T]) Set(i int, v T) T {
	prev := l.elems[i]
	l.elems[i] = v
	return prev
}

// Append adds elements to the end of the list.
func (l *List[T]) Append(v ...T) {
	l.elems = append(l.elems, v...)
}

// Insert places v at index i, shifting later elements one position toward
// the end. Inserting at Len() appends. It panics if i is out of range.
func (l *List[T]) Insert(i int, v T) {
	l.elems = slices.Insert(l.elems, i, v)
}

// RemoveAt deletes the element at index i, shifting later elements one
// position toward the front, and returns it. It panics if i is out of range.
func (l *List[T]) RemoveAt(i int) T {
	v := l.elems[i]
	l.elems = slices.Delete(l.elems, i, i+1)
	return v
}

// RemoveLast deletes and returns the last element, reporting ok=false on an
// empty list.
func (l *List[T]) RemoveLast() (v T, ok bool) {
	if len(l.elems) == 0 {
		return v, false
	}
	return l.RemoveAt(len(l.elems) - 1), true
}

// Clear removes all elements, retaining the backing array.
func (l *List[T]) Clear() {
	clear(l.elems)
	l.elems = l.elems[:0]
}

// Reserve grows the backing array, if necessary, so that extra additional
// elements can be appended without a reallocation.
func (l *List[T]) Reserve(extra int) {
	l.elems = slices.Grow(l.elems, extra)
}

// Clip releases unused capacity in the backing array.
func (l *List[T]) Clip() {
	l.elems = slices.Clip(l.elems)
}

// All calls yield with each index and element until yield returns false; it
// can be used directly with range.
func (l *List[T]) All(yield func(int, T) bool) {
	for i, v := range l.elems {
		if !yield(i, v) {
			return
		}
	}
}
