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

// goldenGamma is the odd 64-bit integer closest to 2^64/phi, the increment
// of the splitmix64 sequence.
const goldenGamma = 0x9e3779b97f4a7c15

// mix is the splitmix64 finalizer. It spreads entropy across all 64 bits of
// a raw hash code so that the multiply-shift placement can take its index
// from the top bits.
func mix(h uint64) uint64 {
	h ^= h >> 30
	h *= 0xbf58476d1ce4e5b9
	h ^= h >> 27
	h *= 0x94d049bb133111eb
	h ^= h >> 31
	return h
}

// multiplierPool holds one odd placement multiplier per possible shift
// value. The pool is fixed at startup; tables index it by their shift and
// fold in their previous multiplier, so both growing and explicitly
// rehashing a table changes its placement function.
var multiplierPool = func() [65]uint64 {
	var pool [65]uint64
	x := uint64(goldenGamma)
	for i := range pool {
		x += goldenGamma
		pool[i] = mix(x) | 1
	}
	return pool
}()

// nextMultiplier draws the placement multiplier for a table generation with
// the given shift. Folding in the previous multiplier keeps repeated
// rebuilds at the same shift from converging on a fixed value; the product
// of odd factors stays odd.
func nextMultiplier(prev uint64, shift uint) uint64 {
	return multiplierPool[shift] * (prev | 1)
}
