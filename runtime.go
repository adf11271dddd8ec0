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

import "unsafe"

// hashFn matches the signature of the hash functions stored in the Go
// runtime's type descriptors.
type hashFn func(unsafe.Pointer, uintptr) uintptr

// installRuntimeHasher wires the map's key functions to the hash function Go
// uses for the builtin map[K]V and the == operator.
func (m *Map[K, V]) installRuntimeHasher() {
	hash := getRuntimeHasher[K]()
	m.hashKey = func(key *K) uint64 {
		return uint64(hash(noescape(unsafe.Pointer(key)), uintptr(m.seed)))
	}
	m.equalKey = func(a, b K) bool { return a == b }
}

// getRuntimeHasher extracts the hash function for type K from the runtime's
// implementation of map[K]struct{} by reaching into the internals of the
// type descriptor. The struct layouts below mirror the runtime's and must be
// re-verified against new Go releases.
func getRuntimeHasher[K comparable]() hashFn {
	var m map[K]struct{}
	return typeOf(m).mapType().Hasher
}

type (
	rtTFlag   uint8
	rtKind    uint8
	rtNameOff int32
	rtTypeOff int32
)

// rtType mirrors the runtime's type descriptor (abi.Type).
type rtType struct {
	Size_       uintptr
	PtrBytes    uintptr
	Hash        uint32
	TFlag       rtTFlag
	Align_      uint8
	FieldAlign_ uint8
	Kind_       rtKind
	Equal       func(unsafe.Pointer, unsafe.Pointer) bool
	GCData      *byte
	Str         rtNameOff
	PtrToThis   rtTypeOff
}

// rtMapType mirrors the runtime's map type descriptor (abi.MapType).
type rtMapType struct {
	rtType
	Key   *rtType
	Elem  *rtType
	Group *rtType
	// Hasher is the function the runtime applies to keys of the map's key
	// type: (pointer to key, seed) -> hash.
	Hasher func(unsafe.Pointer, uintptr) uintptr
}

func (t *rtType) mapType() *rtMapType {
	return (*rtMapType)(unsafe.Pointer(t))
}

type rtEmptyInterface struct {
	typ  *rtType
	data unsafe.Pointer
}

func typeOf(a any) *rtType {
	eface := *(*rtEmptyInterface)(unsafe.Pointer(&a))
	// Type descriptors are either static or always reachable, so hiding the
	// pointer from escape analysis is safe and keeps a from escaping.
	return (*rtType)(noescape(unsafe.Pointer(eface.typ)))
}

// noescape hides a pointer from escape analysis. noescape is the identity
// function but escape analysis doesn't think the output depends on the
// input. noescape is inlined and currently compiles down to zero
// instructions.
// USE CAREFULLY!
//
//go:nosplit
//go:nocheckptr
func noescape(p unsafe.Pointer) unsafe.Pointer {
	x := uintptr(p)
	return unsafe.Pointer(x ^ 0)
}
