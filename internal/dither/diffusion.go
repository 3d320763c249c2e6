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

import "github.com/mlnoga/sixel/internal/status"

// kernelTerm is one error-diffusion neighbor: row/col offset (col is
// mirrored on serpentine odd rows) and the weight's numerator over a
// shared denominator.
type kernelTerm struct {
	dr, dc, num int
}

type kernel struct {
	terms []kernelTerm
	denom int
}

var kernels = map[Method]kernel{
	Atkinson: {
		terms: []kernelTerm{
			{0, 1, 1}, {0, 2, 1},
			{1, -1, 1}, {1, 0, 1}, {1, 1, 1},
			{2, 0, 1},
		},
		denom: 8,
	},
	FS: {
		terms: []kernelTerm{
			{0, 1, 7},
			{1, -1, 3}, {1, 0, 5}, {1, 1, 1},
		},
		denom: 16,
	},
	JaJuNi: {
		terms: []kernelTerm{
			{0, 1, 7}, {0, 2, 5},
			{1, -2, 3}, {1, -1, 5}, {1, 0, 7}, {1, 1, 5}, {1, 2, 3},
			{2, -2, 1}, {2, -1, 3}, {2, 0, 5}, {2, 1, 3}, {2, 2, 1},
		},
		denom: 48,
	},
	Stucki: {
		terms: []kernelTerm{
			{0, 1, 8}, {0, 2, 4},
			{1, -2, 2}, {1, -1, 4}, {1, 0, 8}, {1, 1, 4}, {1, 2, 2},
			{2, -2, 1}, {2, -1, 2}, {2, 0, 4}, {2, 1, 2}, {2, 2, 1},
		},
		denom: 42,
	},
	Burkes: {
		terms: []kernelTerm{
			{0, 1, 8}, {0, 2, 4},
			{1, -2, 2}, {1, -1, 4}, {1, 0, 8}, {1, 1, 4}, {1, 2, 2},
		},
		denom: 32,
	},
}

// diffuseErrorKernel runs serpentine-aware error diffusion, mirroring
// column offsets on odd rows when cfg.Scan is Serpentine.
func diffuseErrorKernel(rgb []byte, w, h int, palette []byte, ncolors int, cfg Config, cache *lookupCache, indices []byte) {
	k, ok := kernels[cfg.Method]
	if !ok {
		return
	}

	work := make([]float64, w*h*3)
	for i, v := range rgb {
		work[i] = float64(v)
	}

	for y := 0; y < h; y++ {
		reverse := cfg.Scan == Serpentine && y%2 == 1
		for xi := 0; xi < w; xi++ {
			x := xi
			if reverse {
				x = w - 1 - xi
			}
			base := (y*w + x) * 3

			var old [3]float64
			for ch := 0; ch < 3; ch++ {
				old[ch] = clampF(work[base+ch])
			}

			idx, _ := cache.lookup(byte(old[0]+0.5), byte(old[1]+0.5), byte(old[2]+0.5), palette, ncolors, cfg.Complexion)
			indices[y*w+x] = idx

			var newC [3]float64
			for ch := 0; ch < 3; ch++ {
				newC[ch] = float64(palette[int(idx)*3+ch])
			}

			for ch := 0; ch < 3; ch++ {
				residual := old[ch] - newC[ch]
				for _, term := range k.terms {
					dc := term.dc
					if reverse {
						dc = -dc
					}
					nx, ny := x+dc, y+term.dr
					if nx < 0 || nx >= w || ny < 0 || ny >= h {
						continue
					}
					nbase := (ny*w + nx) * 3
					work[nbase+ch] += residual * float64(term.num) / float64(k.denom)
				}
			}
		}
	}
}

func clampF(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

func validateDimensions(w, h int) *status.Error {
	if w <= 0 || h <= 0 {
		return status.New(status.BadInput, "dither requires positive dimensions, got %dx%d", w, h)
	}
	return nil
}
