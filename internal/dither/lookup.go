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

import (
	colorful "github.com/lucasb-eyer/go-colorful"
)

// lookupShift truncates each channel to 5 bits for the short cache key
// (red in the high bits), the same bucket width as histogram.Bit5; the
// key is not histogram.Pack's rounded, red-low layout.
const lookupShift = 3

func lookupKey(r, g, b byte) uint16 {
	return uint16(r>>lookupShift)<<10 | uint16(g>>lookupShift)<<5 | uint16(b>>lookupShift)
}

// lookupCache memoizes pixel->index lookups, keyed by the coarsely
// quantized input color.
type lookupCache struct {
	entries map[uint16]byte
	ncolors int
}

func newLookupCache(ncolors int) *lookupCache {
	return &lookupCache{entries: make(map[uint16]byte, 256), ncolors: ncolors}
}

// lookup returns the nearest palette index by squared RGB distance,
// optionally biased toward warmer/skin-tone hues when complexion > 0
// (the original_source/src/tosixel.c complexion-bias heuristic,
// re-expressed via go-colorful's HCL decomposition: entries whose hue
// falls in the flesh-tone arc get their distance discounted).
func (c *lookupCache) lookup(r, g, b byte, palette []byte, ncolors int, complexion int) (byte, bool) {
	key := lookupKey(r, g, b)
	if idx, ok := c.entries[key]; ok {
		return idx, true
	}

	if complexion == 0 {
		best, _ := nearestIndex(r, g, b, palette, ncolors)
		c.entries[key] = best
		return best, false
	}

	col := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
	h, _, _ := col.Hcl()
	bias := float64(complexion) / 100

	best, bestD := byte(0), 1<<31
	for i := 0; i < ncolors; i++ {
		pr, pg, pb := palette[i*3], palette[i*3+1], palette[i*3+2]
		dr, dg, db := int(r)-int(pr), int(g)-int(pg), int(b)-int(pb)
		d := dr*dr + dg*dg + db*db
		pcol := colorful.Color{R: float64(pr) / 255, G: float64(pg) / 255, B: float64(pb) / 255}
		ph, _, _ := pcol.Hcl()
		if isFleshHue(ph) && isFleshHue(h) {
			d = int(float64(d) * (1 - 0.25*bias))
		}
		if d < bestD {
			bestD, best = d, byte(i)
		}
	}
	c.entries[key] = best
	return best, false
}

// isFleshHue reports whether an HCL hue angle (degrees) falls in the
// skin-tone arc used by the complexion bias.
func isFleshHue(hueDeg float64) bool {
	return hueDeg >= 20 && hueDeg <= 50
}

// remapFirstUseOrder compacts palette to only the entries indices
// actually references, in first-use order, per §4.5.3.
func remapFirstUseOrder(indices []byte, palette []byte, ncolors int) ([]byte, []byte, int) {
	migration := make([]int, ncolors)
	for i := range migration {
		migration[i] = -1
	}
	next := 0
	out := make([]byte, len(indices))
	for i, idx := range indices {
		m := migration[idx]
		if m == -1 {
			m = next
			migration[idx] = m
			next++
		}
		out[i] = byte(m)
	}
	compact := make([]byte, next*3)
	for old, m := range migration {
		if m == -1 {
			continue
		}
		copy(compact[m*3:m*3+3], palette[old*3:old*3+3])
	}
	return out, compact, next
}
