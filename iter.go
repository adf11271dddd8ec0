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

// iterNone marks a cursor with no current entry: before the first Next, after
// the pass completes, and after a Remove.
const iterNone = -1

// Iter is a removal-capable cursor over a Map. Each Map owns a single Iter
// which is handed out by Map.Iter and reused across passes, avoiding a
// per-pass allocation; the guard in Map.Iter reports overlapping passes
// immediately instead of corrupting cursor state.
//
// The only mutation permitted during a pass is the cursor's own Remove.
// Modifying the map through any other path invalidates the cursor and leaves
// iteration behavior undefined.
type Iter[K comparable, V any] struct {
	m      *Map[K, V]
	next   int // next slot to examine
	cur    int // slot of the current entry, or iterNone
	active bool
	// suppressed holds keys that were already returned by this pass and were
	// then pulled across the table's wraparound into the not-yet-visited
	// region by a Remove. They are skipped when reached a second time.
	suppressed []K
}

// Iter starts an iteration pass and returns the map's reusable cursor. It
// panics if the previous pass is still active, i.e. has neither run to
// completion nor been released.
func (m *Map[K, V]) Iter() *Iter[K, V] {
	if m.it == nil {
		m.it = &Iter[K, V]{m: m}
	}
	it := m.it
	if it.active {
		panic("flat: map iterator already active")
	}
	it.next = 0
	it.cur = iterNone
	it.active = true
	it.suppressed = it.suppressed[:0]
	return it
}

// Next advances the cursor to the next entry, reporting false when the pass
// is complete. A completed pass releases the cursor for reuse.
func (it *Iter[K, V]) Next() bool {
	m := it.m
	for i := it.next; i <= m.mask; i++ {
		if !m.occupied(i) || it.suppress(i) {
			continue
		}
		it.cur = i
		it.next = i + 1
		return true
	}
	it.next = m.mask + 1
	it.cur = iterNone
	it.active = false
	return false
}

// Key returns the key of the current entry.
func (it *Iter[K, V]) Key() K {
	if it.cur == iterNone {
		panic("flat: iterator has no current entry")
	}
	return it.m.keys[it.cur]
}

// Value returns the value of the current entry.
func (it *Iter[K, V]) Value() V {
	if it.cur == iterNone {
		panic("flat: iterator has no current entry")
	}
	return it.m.vals[it.cur]
}

// Remove deletes the current entry using the same backward-shift algorithm
// as Map.Remove. Entries shifted past the cursor are accounted for, so the
// pass still yields every surviving entry exactly once. Remove panics if
// there is no current entry.
func (it *Iter[K, V]) Remove() {
	if it.cur == iterNone {
		panic("flat: iterator Remove without a current entry")
	}
	it.m.removeAt(it.cur, it)
	it.cur = iterNone
	it.m.checkInvariants()
}

// Release ends a pass early, making the cursor available for reuse. It is a
// no-op on an inactive cursor.
func (it *Iter[K, V]) Release() {
	it.cur = iterNone
	it.active = false
}

// entryMoved records the backward shift of the entry at slot from into slot
// to during a cursor-driven removal. A not-yet-visited entry landing behind
// the cursor rewinds the cursor so the entry is not skipped; an
// already-visited entry pulled across the wraparound into the unvisited
// region is remembered so it is not yielded twice.
func (it *Iter[K, V]) entryMoved(from, to int) {
	switch {
	case from >= it.next && to < it.next:
		it.next = to
	case from < it.next && to >= it.next:
		it.suppressed = append(it.suppressed, it.m.keys[from])
	}
}

// suppress reports whether the entry at slot i was recorded by entryMoved as
// already yielded, consuming the record.
func (it *Iter[K, V]) suppress(i int) bool {
	for j := range it.suppressed {
		if it.m.equalKey(it.suppressed[j], it.m.keys[i]) {
			it.suppressed = append(it.suppressed[:j], it.suppressed[j+1:]...)
			return true
		}
	}
	return false
}

// All calls yield for every entry until yield returns false; it can be used
// directly with range. The map must not be modified during the walk; use
// Iter for removal during iteration.
func (m *Map[K, V]) All(yield func(K, V) bool) {
	for i := 0; i <= m.mask; i++ {
		if m.occupied(i) && !yield(m.keys[i], m.vals[i]) {
			return
		}
	}
}

// Keys calls yield for every key until yield returns false. It is the
// key-set view of All.
func (m *Map[K, V]) Keys(yield func(K) bool) {
	m.All(func(k K, _ V) bool { return yield(k) })
}

// Values calls yield for every value until yield returns false. It is the
// value-collection view of All.
func (m *Map[K, V]) Values(yield func(V) bool) {
	m.All(func(_ K, v V) bool { return yield(v) })
}
