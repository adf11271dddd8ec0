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

import (
	"unsafe"

	"github.com/zeebo/xxh3"
)

// Policy bundles the placement hash and the equality predicate of a map
// variant. The two travel together because they must agree: keys equal under
// Equal must hash identically under Hash for every seed, and Equal must be
// reflexive and symmetric.
type Policy[K any] interface {
	Hash(key K, seed uint64) uint64
	Equal(a, b K) bool
}

// StringPolicy hashes string keys with seeded XXH3 instead of the runtime's
// hash function, and compares with ==. Useful when the hash of a key must be
// reproducible across processes.
type StringPolicy struct{}

func (StringPolicy) Hash(key string, seed uint64) uint64 {
	return xxh3.HashStringSeed(key, seed)
}

func (StringPolicy) Equal(a, b string) bool {
	return a == b
}

// CasefoldPolicy treats string keys case-insensitively over the ASCII
// letters: "Get" and "GET" are the same key. Hashing folds to lower case
// before XXH3 so that equal keys always land in the same slot. Bytes outside
// the ASCII letters are compared verbatim.
type CasefoldPolicy struct{}

func (CasefoldPolicy) Hash(key string, seed uint64) uint64 {
	var buf [64]byte
	b := buf[:0]
	if len(key) > len(buf) {
		b = make([]byte, 0, len(key))
	}
	for i := 0; i < len(key); i++ {
		b = append(b, foldASCII(key[i]))
	}
	return xxh3.HashSeed(b, seed)
}

func (CasefoldPolicy) Equal(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		if foldASCII(a[i]) != foldASCII(b[i]) {
			return false
		}
	}
	return true
}

func foldASCII(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		c += 'a' - 'A'
	}
	return c
}

// IdentityPolicy returns a policy for pointer keys that hashes and compares
// the pointer itself, ignoring the pointee: two distinct allocations holding
// equal contents are distinct keys.
func IdentityPolicy[T any]() Policy[*T] {
	return identityPolicy[T]{}
}

type identityPolicy[T any] struct{}

func (identityPolicy[T]) Hash(key *T, seed uint64) uint64 {
	return uint64(uintptr(unsafe.Pointer(key))) ^ seed
}

func (identityPolicy[T]) Equal(a, b *T) bool {
	return a == b
}
