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
	"github.com/mlnoga/sixel/internal/status"
)

// neighborWeight is one 8-neighborhood offset and its /16 weight, per
// spec.md §4.5.4 step 3.
type neighborWeight struct {
	dx, dy, num int
}

var unditherNeighbors = [8]neighborWeight{
	{-1, -1, 10}, {0, -1, 16}, {1, -1, 6},
	{-1, 0, 11}, {1, 0, 11},
	{-1, 1, 6}, {0, 1, 16}, {1, 1, 10},
}

// UnditherConfig aggregates k_undither tunables.
type UnditherConfig struct {
	EdgeStrength   int // 0-255
	SimilarityBias int // 0-100
	Refine         bool
}

// scale implements the spec's threshold scaling helper: scale(base, es)
// = base * es / 255.
func scale(base, es int) int {
	return base * es / 255
}

// Undither reconstructs an RGB888 image from a palette-indexed buffer,
// blending each pixel with its 8-neighborhood weighted by palette
// similarity and, optionally, edge strength.
func Undither(indices []byte, w, h int, palette []byte, ncolors int, cfg UnditherConfig) ([]byte, *status.Error) {
	if w <= 0 || h <= 0 {
		return nil, status.New(status.BadInput, "undither requires positive dimensions, got %dx%d", w, h)
	}
	if ncolors <= 0 || len(palette) != ncolors*3 {
		return nil, status.New(status.BadInput, "palette buffer length %d does not match ncolors*3=%d", len(palette), ncolors*3)
	}
	if len(indices) != w*h {
		return nil, status.New(status.BadInput, "indices length %d does not match %dx%d", len(indices), w, h)
	}
	for _, idx := range indices {
		if int(idx) >= ncolors {
			return nil, status.New(status.BadInput, "index %d out of range for %d-color palette", idx, ncolors)
		}
	}

	simTable := buildSimilarityTable(palette, ncolors, cfg.SimilarityBias)

	strong := scale(256, cfg.EdgeStrength)
	detail := scale(160, cfg.EdgeStrength)

	out := make([]byte, w*h*3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			base := (y*w + x) * 3
			centerIdx := indices[y*w+x]
			cr, cg, cb := palette[centerIdx*3], palette[centerIdx*3+1], palette[centerIdx*3+2]

			if cfg.EdgeStrength > 0 {
				mag := prewittMagnitude(indices, palette, w, h, x, y)
				if mag > strong {
					out[base], out[base+1], out[base+2] = cr, cg, cb
					continue
				}
			}

			centerWeight := 8
			if cfg.EdgeStrength > 0 {
				mag := prewittMagnitude(indices, palette, w, h, x, y)
				if mag > detail {
					centerWeight = 24
				}
			}

			var sumR, sumG, sumB, sumW float64
			sumR += float64(cr) * float64(centerWeight)
			sumG += float64(cg) * float64(centerWeight)
			sumB += float64(cb) * float64(centerWeight)
			sumW += float64(centerWeight)

			for _, nb := range unditherNeighbors {
				nx, ny := x+nb.dx, y+nb.dy
				if nx < 0 || nx >= w || ny < 0 || ny >= h {
					continue
				}
				neighborIdx := indices[ny*w+nx]
				score := simTable[centerIdx][neighborIdx]
				if score == 0 {
					continue
				}
				weight := float64(nb.num) * float64(score) / 16
				sumR += float64(palette[neighborIdx*3]) * weight
				sumG += float64(palette[neighborIdx*3+1]) * weight
				sumB += float64(palette[neighborIdx*3+2]) * weight
				sumW += weight
			}

			if sumW == 0 {
				sumW = 1
			}
			out[base] = clampByte(sumR / sumW)
			out[base+1] = clampByte(sumG / sumW)
			out[base+2] = clampByte(sumB / sumW)
		}
	}

	if cfg.Refine {
		refined, err := refine(out, w, h)
		if err == nil {
			return refined, nil
		}
		// best-effort per §4.5.5: allocation failure leaves the
		// unrefined output intact.
	}
	return out, nil
}

func clampByte(v float64) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v + 0.5)
}

// prewittMagnitude computes the Prewitt gradient magnitude of the
// luminance-like quantity Y = R + 2G + B around (x, y), reading
// through the palette.
func prewittMagnitude(indices []byte, palette []byte, w, h, x, y int) int {
	lum := func(px, py int) int {
		if px < 0 {
			px = 0
		}
		if px >= w {
			px = w - 1
		}
		if py < 0 {
			py = 0
		}
		if py >= h {
			py = h - 1
		}
		idx := indices[py*w+px]
		r, g, b := int(palette[idx*3]), int(palette[idx*3+1]), int(palette[idx*3+2])
		return r + 2*g + b
	}

	gx := (lum(x+1, y-1) + lum(x+1, y) + lum(x+1, y+1)) - (lum(x-1, y-1) + lum(x-1, y) + lum(x-1, y+1))
	gy := (lum(x-1, y+1) + lum(x, y+1) + lum(x+1, y+1)) - (lum(x-1, y-1) + lum(x, y-1) + lum(x+1, y-1))
	if gx < 0 {
		gx = -gx
	}
	if gy < 0 {
		gy = -gy
	}
	return gx + gy
}

// buildSimilarityTable derives a [ncolors][ncolors] score in
// {0,2,4,5,7,8} from the ratio between a palette entry's distance to
// a given center and its distance to the nearest other entry, biased
// by similarityBias/100.
func buildSimilarityTable(palette []byte, ncolors int, similarityBias int) [][]int {
	table := make([][]int, ncolors)
	bias := float64(similarityBias) / 100
	for i := 0; i < ncolors; i++ {
		table[i] = make([]int, ncolors)
		ci := [3]int{int(palette[i*3]), int(palette[i*3+1]), int(palette[i*3+2])}
		for j := 0; j < ncolors; j++ {
			if i == j {
				table[i][j] = 8
				continue
			}
			cj := [3]int{int(palette[j*3]), int(palette[j*3+1]), int(palette[j*3+2])}
			dij := sqDistInt(ci, cj)

			nearest := -1
			for k := 0; k < ncolors; k++ {
				if k == i {
					continue
				}
				ck := [3]int{int(palette[k*3]), int(palette[k*3+1]), int(palette[k*3+2])}
				d := sqDistInt(ci, ck)
				if nearest < 0 || d < nearest {
					nearest = d
				}
			}
			if nearest <= 0 {
				table[i][j] = 0
				continue
			}
			ratio := float64(dij) / float64(nearest) * (1 - bias*0.5)
			table[i][j] = bucketScore(ratio)
		}
	}
	return table
}

func sqDistInt(a, b [3]int) int {
	dr, dg, db := a[0]-b[0], a[1]-b[1], a[2]-b[2]
	return dr*dr + dg*dg + db*db
}

// bucketScore maps a distance ratio into the discrete similarity
// scale {0,2,4,5,7,8} -- closer ratios (more similar colors) score
// higher.
func bucketScore(ratio float64) int {
	switch {
	case ratio <= 0.2:
		return 8
	case ratio <= 0.5:
		return 7
	case ratio <= 1.0:
		return 5
	case ratio <= 2.0:
		return 4
	case ratio <= 4.0:
		return 2
	default:
		return 0
	}
}
