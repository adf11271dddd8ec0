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

import "fmt"

// option provides an interface to do work on a Map while it is being created.
type option[K comparable, V any] interface {
	apply(m *Map[K, V])
}

type loadFactorOption[K comparable, V any] struct {
	f float64
}

func (op loadFactorOption[K, V]) apply(m *Map[K, V]) {
	m.loadFactor = op.f
}

// WithLoadFactor is an option to specify the fraction of the table that may
// fill before a resize is triggered. It panics if f is outside (0, 1].
func WithLoadFactor[K comparable, V any](f float64) option[K, V] {
	if !(f > 0 && f <= 1) {
		panic(fmt.Sprintf("flat: load factor %v outside (0, 1]", f))
	}
	return loadFactorOption[K, V]{f}
}

type policyOption[K comparable, V any] struct {
	p Policy[K]
}

func (op policyOption[K, V]) apply(m *Map[K, V]) {
	p := op.p
	m.hashKey = func(key *K) uint64 { return p.Hash(*key, m.seed) }
	m.equalKey = p.Equal
}

// WithPolicy is an option to install the placement and equality policy for a
// map variant, replacing the default of the runtime's hash function and ==.
func WithPolicy[K comparable, V any](p Policy[K]) option[K, V] {
	return policyOption[K, V]{p}
}

type seedOption[K comparable, V any] struct {
	seed uint64
}

func (op seedOption[K, V]) apply(m *Map[K, V]) {
	m.seed = op.seed
}

// WithSeed is an option to fix the hash seed, making placement deterministic
// across map instances. Mostly useful in tests.
func WithSeed[K comparable, V any](seed uint64) option[K, V] {
	return seedOption[K, V]{seed}
}
