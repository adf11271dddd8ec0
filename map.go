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

// Package flat provides open-addressing hash maps and sets, and a small
// resizable array list.
//
// # Design
//
// A flat.Map stores keys and values directly in a pair of parallel arrays
// whose length is always a power of two, with occupancy tracked in a separate
// bit array. There is no chaining and there are no tombstones. Collisions are
// resolved by linear probing: a key's probe sequence starts at its placement
// index and walks forward one slot at a time, wrapping at the end of the
// table, until the key or an empty slot is found.
//
// Placement multiplies the key's mixed hash code by an odd multiplier and
// shifts the product down into the table's index range:
//
//	index = (mix(hash(key)) * multiplier) >> shift
//
// The multiplier is drawn from a fixed pool keyed by the table's shift and is
// remixed with its predecessor on every resize. A key set that probes
// pathologically under one generation of the table therefore spreads out
// under the next, which is the library's defense against accidental or
// adversarial hash flooding. Callers that observe flooding directly can force
// a new generation with SetHashMultiplier.
//
// Deletion is backward-shift deletion: after a slot is vacated, entries
// probed past it are moved backward, each no further than its own placement
// index allows, until an empty slot terminates the run. Every surviving key
// remains reachable from its placement index by a contiguous probe run, so
// lookups never need deletion markers.
//
// By default a Map[K,V] hashes with the same hash function as Go's builtin
// map[K]V and compares keys with ==. A map variant can install a different
// placement and equality policy (identity, case-insensitive, ...) with
// WithPolicy.
//
// A Map is NOT goroutine-safe.
package flat

import (
	"fmt"
	"math/bits"
	"math/rand/v2"
	"strings"
)

const (
	debug = false

	// minCapacity is the smallest table ever allocated. A table always keeps
	// at least one empty slot, so capacity 1 could hold nothing.
	minCapacity = 2
	// maxCapacity bounds growth so that slot indexes and the threshold
	// arithmetic stay well inside the int range on 64-bit platforms.
	maxCapacity = 1 << 31

	defaultLoadFactor = 0.75
)

// Map is an unordered map from keys to values backed by a single
// open-addressing table. The zero value is not usable; construct with New.
type Map[K comparable, V any] struct {
	// hashKey and equalKey are installed at construction, either from the
	// runtime's hasher for K plus ==, or from an injected Policy. The pair
	// must agree: keys equal under equalKey hash identically under hashKey.
	hashKey  func(*K) uint64
	equalKey func(a, b K) bool
	seed     uint64

	// keys and vals are parallel arrays of length mask+1. occ holds one bit
	// per slot; a clear bit marks an empty slot, so no key value is reserved
	// as an absence sentinel.
	keys []K
	vals []V
	occ  []uint64

	size       int
	mask       int
	shift      uint
	multiplier uint64
	threshold  int
	loadFactor float64

	// it is the map's reusable cursor, allocated on first use.
	it *Iter[K, V]
}

// New constructs a Map with the given initial table capacity, rounded up to a
// power of two of at least minCapacity.
func New[K comparable, V any](initialCapacity int, options ...option[K, V]) *Map[K, V] {
	m := &Map[K, V]{
		seed:       rand.Uint64(),
		loadFactor: defaultLoadFactor,
	}
	for _, op := range options {
		op.apply(m)
	}
	if m.hashKey == nil {
		m.installRuntimeHasher()
	}
	m.rebuild(capacityFor(initialCapacity), 0)
	m.checkInvariants()
	return m
}

// Len returns the number of entries in the map.
func (m *Map[K, V]) Len() int {
	return m.size
}

// IsEmpty reports whether the map holds no entries.
func (m *Map[K, V]) IsEmpty() bool {
	return m.size == 0
}

// Get retrieves the value stored for key, returning ok=false if the key is
// not present.
func (m *Map[K, V]) Get(key K) (value V, ok bool) {
	i, found := m.locate(key)
	if !found {
		return value, false
	}
	return m.vals[i], true
}

// GetOrDefault retrieves the value stored for key, or fallback if the key is
// not present.
func (m *Map[K, V]) GetOrDefault(key K, fallback V) V {
	if v, ok := m.Get(key); ok {
		return v
	}
	return fallback
}

// Contains reports whether key is present.
func (m *Map[K, V]) Contains(key K) bool {
	_, found := m.locate(key)
	return found
}

// Put inserts an entry, overwriting an existing value if an entry with an
// equal key already exists. It returns the previous value, if any.
func (m *Map[K, V]) Put(key K, value V) (prev V, replaced bool) {
	i, found := m.locate(key)
	if found {
		prev = m.vals[i]
		m.vals[i] = value
		m.checkInvariants()
		return prev, true
	}
	m.insertAt(i, key, value)
	m.checkInvariants()
	return prev, false
}

// PutIfAbsent inserts an entry only if no entry with an equal key exists. It
// returns the value left in the map for key, and loaded=true if that value
// was already present.
func (m *Map[K, V]) PutIfAbsent(key K, value V) (existing V, loaded bool) {
	i, found := m.locate(key)
	if found {
		return m.vals[i], true
	}
	m.insertAt(i, key, value)
	m.checkInvariants()
	return value, false
}

// PutAll inserts every entry of src, overwriting existing keys. The two maps
// must use consistent key policies.
func (m *Map[K, V]) PutAll(src *Map[K, V]) {
	m.Reserve(src.Len())
	src.All(func(k K, v V) bool {
		m.Put(k, v)
		return true
	})
}

// Remove deletes the entry for key, returning its value. Removing an absent
// key is a no-op reporting removed=false.
func (m *Map[K, V]) Remove(key K) (prev V, removed bool) {
	i, found := m.locate(key)
	if !found {
		return prev, false
	}
	prev = m.vals[i]
	m.removeAt(i, nil)
	m.checkInvariants()
	return prev, true
}

// Clear removes all entries, retaining the table's current capacity.
func (m *Map[K, V]) Clear() {
	clear(m.keys)
	clear(m.vals)
	clear(m.occ)
	m.size = 0
	m.checkInvariants()
}

// Reset removes all entries and reallocates the table at the given capacity,
// rounded up to a power of two. An illegal capacity panics with the table
// untouched.
func (m *Map[K, V]) Reset(capacity int) {
	c := capacityFor(capacity)
	m.keys, m.vals, m.occ = nil, nil, nil
	m.size = 0
	m.rebuild(c, 0)
	m.checkInvariants()
}

// Shrink rebuilds the table at the smallest power-of-two capacity that both
// covers limit and holds the current contents within the load factor. It is a
// no-op when the table is already that small. Shrink is the only operation
// through which a table's capacity decreases; resizes triggered by Put only
// ever grow.
func (m *Map[K, V]) Shrink(limit int) {
	c := capacityFor(limit)
	if need := capacityForSize(m.size, m.loadFactor); c < need {
		c = need
	}
	if c >= m.capacity() {
		return
	}
	m.rebuild(c, 0)
	m.checkInvariants()
}

// Reserve grows the table, if necessary, so that extra additional entries can
// be inserted without triggering a resize.
func (m *Map[K, V]) Reserve(extra int) {
	if need := capacityForSize(m.size+extra, m.loadFactor); need > m.capacity() {
		m.rebuild(need, 0)
		m.checkInvariants()
	}
}

// HashMultiplier returns the odd multiplier currently mixed into hash codes
// by the placement function.
func (m *Map[K, V]) HashMultiplier() uint64 {
	return m.multiplier
}

// SetHashMultiplier installs a caller-chosen multiplier and rehashes the
// table immediately. It is an escape hatch for callers that have observed
// hash flooding under the current table generation. The low bit of the
// multiplier is forced on; an even multiplier would discard key bits.
func (m *Map[K, V]) SetHashMultiplier(multiplier uint64) {
	m.rebuild(m.capacity(), multiplier|1)
	m.checkInvariants()
}

func (m *Map[K, V]) capacity() int {
	return m.mask + 1
}

func (m *Map[K, V]) occupied(i int) bool {
	return m.occ[i>>6]&(1<<(uint(i)&63)) != 0
}

func (m *Map[K, V]) setOccupied(i int) {
	m.occ[i>>6] |= 1 << (uint(i) & 63)
}

func (m *Map[K, V]) clearOccupied(i int) {
	m.occ[i>>6] &^= 1 << (uint(i) & 63)
}

// place maps a key to the slot its probe sequence starts at, always in
// [0, mask].
func (m *Map[K, V]) place(key *K) int {
	return int((mix(m.hashKey(key)) * m.multiplier) >> m.shift)
}

// locate returns the slot holding key and found=true, or the slot at which
// key would be inserted and found=false. The probe loop terminates because
// size <= threshold < capacity guarantees at least one empty slot.
func (m *Map[K, V]) locate(key K) (i int, found bool) {
	for i = m.place(&key); ; i = (i + 1) & m.mask {
		if !m.occupied(i) {
			return i, false
		}
		if m.equalKey(m.keys[i], key) {
			return i, true
		}
	}
}

// insertAt stores a new entry at slot i, previously returned by locate, and
// grows the table when the insert pushes size past the threshold. An insert
// that would require growing past maxCapacity panics before storing
// anything, leaving the table in its prior valid state.
func (m *Map[K, V]) insertAt(i int, key K, value V) {
	if m.size >= m.threshold && 2*m.capacity() > maxCapacity {
		panic(fmt.Sprintf("flat: capacity %d exceeds maximum %d", 2*m.capacity(), maxCapacity))
	}
	m.keys[i] = key
	m.vals[i] = value
	m.setOccupied(i)
	m.size++
	if m.size > m.threshold {
		m.resize(2 * m.capacity())
	}
}

// removeAt deletes the entry at hole and closes the gap with backward-shift
// deletion: each entry probed past the hole is moved backward, but only as
// far as its own placement index allows, so every surviving key remains
// reachable by a contiguous probe run. When driven by a cursor, entry
// movements are reported so the cursor can keep its position consistent.
func (m *Map[K, V]) removeAt(hole int, it *Iter[K, V]) {
	if debug {
		fmt.Printf("removeAt(%d): size=%d\n", hole, m.size)
	}
	for next := (hole + 1) & m.mask; m.occupied(next); next = (next + 1) & m.mask {
		origin := m.place(&m.keys[next])
		// The entry at next may fall back into the hole only if the hole
		// lies within the entry's probe window, i.e. no closer to origin
		// than the entry's own slot.
		if probeDistance(origin, next, m.mask) > probeDistance(origin, hole, m.mask) {
			if it != nil {
				it.entryMoved(next, hole)
			}
			if debug {
				fmt.Printf("removeAt(shift): %d -> %d (origin=%d)\n", next, hole, origin)
			}
			m.keys[hole] = m.keys[next]
			m.vals[hole] = m.vals[next]
			hole = next
		}
	}
	var zeroK K
	var zeroV V
	m.keys[hole] = zeroK
	m.vals[hole] = zeroV
	m.clearOccupied(hole)
	m.size--
}

// probeDistance returns the number of probe steps needed to reach pos from
// origin, walking forward with wraparound on a table with the given mask.
func probeDistance(origin, pos, mask int) int {
	return (pos - origin) & mask
}

// resize grows the table to newCapacity. This is the only path through which
// a Put changes capacity, and it always doubles; insertAt has already checked
// that the doubled capacity is legal.
func (m *Map[K, V]) resize(newCapacity int) {
	if debug {
		fmt.Printf("resize: capacity=%d->%d size=%d\n", m.capacity(), newCapacity, m.size)
	}
	m.rebuild(newCapacity, 0)
}

// rebuild allocates a table of newCapacity, derives the new mask, shift,
// threshold and multiplier, and reinserts every occupied slot of the old
// table under the new placement function. A zero multiplier means "draw the
// next one from the pool".
func (m *Map[K, V]) rebuild(newCapacity int, multiplier uint64) {
	oldKeys, oldVals, oldOcc := m.keys, m.vals, m.occ

	m.keys = make([]K, newCapacity)
	m.vals = make([]V, newCapacity)
	m.occ = make([]uint64, (newCapacity+63)/64)
	m.size = 0
	m.mask = newCapacity - 1
	m.shift = 64 - uint(bits.Len(uint(m.mask)))
	if multiplier == 0 {
		multiplier = nextMultiplier(m.multiplier, m.shift)
	}
	m.multiplier = multiplier
	m.threshold = computeThreshold(newCapacity, m.loadFactor)

	for i := range oldKeys {
		if oldOcc[i>>6]&(1<<(uint(i)&63)) != 0 {
			m.putResize(oldKeys[i], oldVals[i])
		}
	}
}

// putResize reinserts an entry during rebuild. Every key being reinserted is
// known to be distinct and the new table is already sized for the full
// contents, so both the presence check and the threshold check are skipped.
func (m *Map[K, V]) putResize(key K, value V) {
	i := m.place(&key)
	for m.occupied(i) {
		i = (i + 1) & m.mask
	}
	m.keys[i] = key
	m.vals[i] = value
	m.setOccupied(i)
	m.size++
}

// capacityFor rounds a requested capacity up to a power of two in
// [minCapacity, maxCapacity].
func capacityFor(capacity int) int {
	if capacity <= minCapacity {
		return minCapacity
	}
	if capacity > maxCapacity {
		panic(fmt.Sprintf("flat: capacity %d exceeds maximum %d", capacity, maxCapacity))
	}
	return 1 << bits.Len(uint(capacity-1))
}

// capacityForSize returns the smallest legal capacity whose threshold admits
// size entries under the given load factor.
func capacityForSize(size int, loadFactor float64) int {
	c := minCapacity
	for computeThreshold(c, loadFactor) < size {
		if c == maxCapacity {
			panic(fmt.Sprintf("flat: no capacity holds %d entries at load factor %v", size, loadFactor))
		}
		c *= 2
	}
	return c
}

// computeThreshold returns floor(capacity*loadFactor), clamped below capacity
// so the table always keeps an empty slot to terminate probe runs.
func computeThreshold(capacity int, loadFactor float64) int {
	t := int(float64(capacity) * loadFactor)
	if t >= capacity {
		t = capacity - 1
	}
	return t
}

func (m *Map[K, V]) checkInvariants() {
	if invariants {
		c := m.capacity()
		if c < minCapacity || c&(c-1) != 0 {
			panic(fmt.Sprintf("invariant failed: capacity %d is not a power of two >= %d", c, minCapacity))
		}
		if m.threshold >= c {
			panic(fmt.Sprintf("invariant failed: threshold %d >= capacity %d\n%s", m.threshold, c, m.debugString()))
		}
		if m.size > m.threshold {
			panic(fmt.Sprintf("invariant failed: size %d > threshold %d\n%s", m.size, m.threshold, m.debugString()))
		}
		if m.multiplier&1 == 0 {
			panic(fmt.Sprintf("invariant failed: even multiplier %#x", m.multiplier))
		}

		// Every occupied slot must be found by its own probe sequence at
		// exactly its slot. Finding it anywhere else means either a gap in
		// the probe run or a duplicate key.
		var used int
		for i := 0; i < c; i++ {
			if !m.occupied(i) {
				continue
			}
			used++
			if j, found := m.locate(m.keys[i]); !found || j != i {
				panic(fmt.Sprintf("invariant failed: slot %d unreachable (locate returned %d,%t)\n%s",
					i, j, found, m.debugString()))
			}
		}
		if used != m.size {
			panic(fmt.Sprintf("invariant failed: found %d occupied slots, but size is %d\n%s",
				used, m.size, m.debugString()))
		}
	}
}

func (m *Map[K, V]) debugString() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "capacity=%d size=%d threshold=%d multiplier=%#x\n",
		m.capacity(), m.size, m.threshold, m.multiplier)
	for i := 0; i <= m.mask; i++ {
		if m.occupied(i) {
			fmt.Fprintf(&buf, "  %4d: %v [place=%d]\n", i, m.keys[i], m.place(&m.keys[i]))
		} else {
			fmt.Fprintf(&buf, "  %4d: empty\n", i)
		}
	}
	return buf.String()
}
