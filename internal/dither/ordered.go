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

package dither

// maskA implements mask_a(x,y,c) per spec.md §4.5.2.
func maskA(x, y, c int) float64 {
	return float64(((x+c*67)+y*236)*119&255)/128 - 1
}

// maskX implements mask_x(x,y,c) per spec.md §4.5.2.
func maskX(x, y, c int) float64 {
	return float64(((x+c*29)^(y*149))*1234&511)/256 - 1
}

// orderedDither applies a procedural ±32 mask per channel before
// palette lookup; no residual carries between pixels.
func orderedDither(rgb []byte, w, h int, palette []byte, ncolors int, cfg Config, cache *lookupCache, indices []byte) {
	maskFn := maskA
	if cfg.Method == XDither {
		maskFn = maskX
	}

	for y := 0; y < h; y++ {
		reverse := cfg.Scan == Serpentine && y%2 == 1
		for xi := 0; xi < w; xi++ {
			x := xi
			if reverse {
				x = w - 1 - xi
			}
			base := (y*w + x) * 3
			var biased [3]byte
			for ch := 0; ch < 3; ch++ {
				v := int(float64(rgb[base+ch]) + maskFn(x, y, ch)*32)
				if v < 0 {
					v = 0
				}
				if v > 255 {
					v = 255
				}
				biased[ch] = byte(v)
			}
			idx, _ := cache.lookup(biased[0], biased[1], biased[2], palette, ncolors, cfg.Complexion)
			indices[y*w+x] = idx
		}
	}
}
