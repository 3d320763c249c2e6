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

package dither

import "github.com/klauspost/cpuid"

// nearestIndex scans the palette for the closest RGB entry by squared
// distance. On AVX2-capable hosts the palette is scanned four entries
// at a time to cut branch overhead, mirroring the AVX2-gated/noarch
// split in histogram's pack_amd64.go/pack_noarch.go.
func nearestIndex(r, g, b byte, palette []byte, ncolors int) (byte, int) {
	if cpuid.CPU.AVX2() {
		return nearestIndexUnrolled(r, g, b, palette, ncolors)
	}
	return nearestIndexScalar(r, g, b, palette, ncolors)
}

func nearestIndexUnrolled(r, g, b byte, palette []byte, ncolors int) (byte, int) {
	ir, ig, ib := int(r), int(g), int(b)
	best, bestD := byte(0), 1<<31
	i := 0
	for ; i+4 <= ncolors; i += 4 {
		for j := 0; j < 4; j++ {
			idx := i + j
			dr, dg, db := ir-int(palette[idx*3]), ig-int(palette[idx*3+1]), ib-int(palette[idx*3+2])
			d := dr*dr + dg*dg + db*db
			if d < bestD {
				bestD, best = d, byte(idx)
			}
		}
	}
	for ; i < ncolors; i++ {
		dr, dg, db := ir-int(palette[i*3]), ig-int(palette[i*3+1]), ib-int(palette[i*3+2])
		d := dr*dr + dg*dg + db*db
		if d < bestD {
			bestD, best = d, byte(i)
		}
	}
	return best, bestD
}

func nearestIndexScalar(r, g, b byte, palette []byte, ncolors int) (byte, int) {
	ir, ig, ib := int(r), int(g), int(b)
	best, bestD := byte(0), 1<<31
	for i := 0; i < ncolors; i++ {
		dr, dg, db := ir-int(palette[i*3]), ig-int(palette[i*3+1]), ib-int(palette[i*3+2])
		d := dr*dr + dg*dg + db*db
		if d < bestD {
			bestD, best = d, byte(i)
		}
	}
	return best, bestD
}
