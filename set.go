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

// Set is an unordered set of elements backed by the same open-addressing
// engine as Map, instantiated with a zero-sized value payload so the value
// array costs nothing.
type Set[K comparable] struct {
	m *Map[K, struct{}]
}

// NewSet constructs a Set with the given initial table capacity, rounded up
// to a power of two.
func NewSet[K comparable](initialCapacity int, options ...option[K, struct{}]) *Set[K] {
	return &Set[K]{m: New[K, struct{}](initialCapacity, options...)}
}

// Len returns the number of elements in the set.
func (s *Set[K]) Len() int {
	return s.m.Len()
}

// IsEmpty reports whether the set holds no elements.
func (s *Set[K]) IsEmpty() bool {
	return s.m.IsEmpty()
}

// Add inserts key, reporting whether it was newly added.
func (s *Set[K]) Add(key K) bool {
	_, loaded := s.m.PutIfAbsent(key, struct{}{})
	return !loaded
}

// AddAll inserts every element of other.
func (s *Set[K]) AddAll(other *Set[K]) {
	s.m.PutAll(other.m)
}

// Has reports whether key is present.
func (s *Set[K]) Has(key K) bool {
	return s.m.Contains(key)
}

// Remove deletes key, reporting whether it was present.
func (s *Set[K]) Remove(key K) bool {
	_, removed := s.m.Remove(key)
	return removed
}

// Clear removes all elements, retaining the table's current capacity.
func (s *Set[K]) Clear() {
	s.m.Clear()
}

// Reset removes all elements and reallocates the table at the given
// capacity.
func (s *Set[K]) Reset(capacity int) {
	s.m.Reset(capacity)
}

// Shrink rebuilds the table at a smaller capacity; see Map.Shrink.
func (s *Set[K]) Shrink(limit int) {
	s.m.Shrink(limit)
}

// Reserve grows the table, if necessary, so that extra additional elements
// can be added without triggering a resize.
func (s *Set[K]) Reserve(extra int) {
	s.m.Reserve(extra)
}

// Equal reports whether both sets hold the same elements.
func (s *Set[K]) Equal(other *Set[K]) bool {
	if s.Len() != other.Len() {
		return false
	}
	equal := true
	s.All(func(k K) bool {
		if !other.Has(k) {
			equal = false
		}
		return equal
	})
	return equal
}

// All calls yield for every element until yield returns false; it can be
// used directly with range. The set must not be modified during the walk;
// use Iter for removal during iteration.
func (s *Set[K]) All(yield func(K) bool) {
	s.m.Keys(yield)
}

// Iter starts an iteration pass and returns the set's reusable cursor; the
// element is the cursor's Key. See Map.Iter for the reuse contract.
func (s *Set[K]) Iter() *Iter[K, struct{}] {
	return s.m.Iter()
}
