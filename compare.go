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

import "github.com/google/go-cmp/cmp"

// Equal reports whether two maps hold the same keys with equal values. Keys
// are matched through each map's own lookup, so the two maps must use
// consistent policies; values are compared with cmp.Equal.
func Equal[K comparable, V any](a, b *Map[K, V]) bool {
	if a.Len() != b.Len() {
		return false
	}
	equal := true
	a.All(func(k K, v V) bool {
		w, ok := b.Get(k)
		if !ok || !cmp.Equal(v, w) {
			equal = false
		}
		return equal
	})
	return equal
}

// CompareAndDelete removes the entry for key only if its current value
// equals expected, reporting whether an entry was removed. It is a free
// function rather than a method because it constrains V to comparable types.
func CompareAndDelete[K, V comparable](m *Map[K, V], key K, expected V) bool {
	i, found := m.locate(key)
	if !found || m.vals[i] != expected {
		return false
	}
	m.removeAt(i, nil)
	m.checkInvariants()
	return true
}
