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

import "testing"

var twoColorPalette = []byte{0, 0, 0, 255, 255, 255}

// S3 — Floyd-Steinberg on a uniform mid-gray field must produce varied
// indices rather than collapsing to one color.
func TestFloydSteinbergProducesVariation(t *testing.T) {
	w, h := 2, 2
	rgb := make([]byte, w*h*3)
	for i := range rgb {
		rgb[i] = 128
	}
	res, err := Diffuse(rgb, w, h, twoColorPalette, 2, Config{Method: FS, Scan: Raster})
	if err != nil {
		t.Fatal(err)
	}
	allSame := true
	for _, idx := range res.Indices {
		if idx != res.Indices[0] {
			allSame = false
		}
	}
	if allSame {
		t.Fatal("expected dithered output to vary, got uniform indices")
	}
}

// Invariant #5 (visited-once half): a NONE-diffused image (no residual
// carried) reproduces exact nearest-palette indices with no drift.
func TestNoneDiffusionIsPlainLookup(t *testing.T) {
	w, h := 2, 1
	rgb := []byte{10, 10, 10, 250, 250, 250}
	res, err := Diffuse(rgb, w, h, twoColorPalette, 2, Config{Method: None})
	if err != nil {
		t.Fatal(err)
	}
	if res.Indices[0] != 0 || res.Indices[1] != 1 {
		t.Fatalf("expected indices [0,1], got %v", res.Indices)
	}
}

func TestOptimizePaletteCompactsToUsedEntries(t *testing.T) {
	w, h := 2, 1
	rgb := []byte{10, 10, 10, 10, 10, 10}
	palette := []byte{0, 0, 0, 50, 50, 50, 255, 255, 255}
	res, err := Diffuse(rgb, w, h, palette, 3, Config{Method: None, OptimizePalette: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.NColors != 1 {
		t.Fatalf("expected exactly 1 used color, got %d", res.NColors)
	}
	if res.Indices[0] != 0 || res.Indices[1] != 0 {
		t.Fatalf("expected both pixels remapped to index 0, got %v", res.Indices)
	}
}

// S4 — k_undither on a uniform indexed block must reproduce the exact
// palette color everywhere.
func TestUnditherUniformBlockReproducesExactColor(t *testing.T) {
	w, h := 4, 4
	indices := make([]byte, w*h)
	for i := range indices {
		indices[i] = 5
	}
	palette := make([]byte, 6*3)
	palette[5*3], palette[5*3+1], palette[5*3+2] = 100, 150, 200

	out, err := Undither(indices, w, h, palette, 6, UnditherConfig{EdgeStrength: 200, SimilarityBias: 100})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < w*h; i++ {
		r, g, b := out[i*3], out[i*3+1], out[i*3+2]
		if r != 100 || g != 150 || b != 200 {
			t.Fatalf("pixel %d: expected (100,150,200), got (%d,%d,%d)", i, r, g, b)
		}
	}
}

func TestDiffuseRejectsPaletteSizeMismatch(t *testing.T) {
	_, err := Diffuse(make([]byte, 12), 2, 2, make([]byte, 5), 2, Config{})
	if err == nil {
		t.Fatal("expected error for mismatched palette length")
	}
}
