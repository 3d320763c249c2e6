// Copyright (C) 2024 sixel contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

//go:build amd64

package histogram

import "github.com/klauspost/cpuid"

// packInto accumulates sampled pixels into counts. On AVX2-capable
// hosts pixels are processed four at a time (still scalar Go -- there
// is no vector intrinsic here, just loop unrolling to reduce per-pixel
// branch overhead), mirroring the AVX2-gated/noarch split in
// nightlight's internal/stats_amd64.go and internal/noise_amd64.go.
func packInto(rgb []byte, length, step int, c Control, counts map[uint32]uint32) {
	if cpuid.CPU.AVX2() {
		packIntoUnrolled(rgb, length, step, c, counts)
		return
	}
	packIntoScalar(rgb, length, step, c, counts)
}

func packIntoUnrolled(rgb []byte, length, step int, c Control, counts map[uint32]uint32) {
	i := 0
	for ; i+4*step < length; i += 4 * step {
		for j := 0; j < 4; j++ {
			base := (i + j*step) * 3
			key := Pack(rgb[base], rgb[base+1], rgb[base+2], c)
			counts[key]++
		}
	}
	for ; i < length; i += step {
		base := i * 3
		key := Pack(rgb[base], rgb[base+1], rgb[base+2], c)
		counts[key]++
	}
}

func packIntoScalar(rgb []byte, length, step int, c Control, counts map[uint32]uint32) {
	for i := 0; i < length; i += step {
		base := i * 3
		key := Pack(rgb[base], rgb[base+1], rgb[base+2], c)
		counts[key]++
	}
}
